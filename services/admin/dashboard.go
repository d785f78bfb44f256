package admin

import (
	"context"
	"fmt"
	"math"
	"time"

	"aliadolaboral/models"
	"aliadolaboral/utils"

	"go.mongodb.org/mongo-driver/bson"
	"golang.org/x/sync/errgroup"
)

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

func (s *DefaultAdminService) Dashboard(ctx context.Context) (*models.DashboardStats, error) {
	now := s.now()
	since := monthStart(now)

	var (
		workerSubs, lawyerSubs, sold, monthRequests int64
		verified, pending, suspicious, recent       int64
		commissions                                 float64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		workerSubs, err = s.Profiles.CountWorkerSubscriptions(gctx, bson.M{"status": models.SubActive})
		return err
	})
	g.Go(func() (err error) {
		lawyerSubs, err = s.Lawyers.CountSubscriptions(gctx, bson.M{"status": models.SubActive})
		return err
	})
	g.Go(func() (err error) {
		sold, err = s.Contacts.Count(gctx, bson.M{
			"bothPaymentsSucceeded": true,
			"createdAt":             bson.M{"$gte": since},
		})
		return err
	})
	g.Go(func() (err error) {
		monthRequests, err = s.Contacts.Count(gctx, bson.M{"createdAt": bson.M{"$gte": since}})
		return err
	})
	g.Go(func() (err error) {
		commissions, err = s.Contacts.Sum(gctx, bson.M{"commissionStatus": models.CommissionPaid}, "commissionAmount")
		return err
	})
	g.Go(func() (err error) {
		verified, err = s.Lawyers.CountLawyers(gctx, bson.M{"isVerified": true})
		return err
	})
	g.Go(func() (err error) {
		pending, err = s.Lawyers.CountLawyers(gctx, bson.M{"isVerified": false})
		return err
	})
	g.Go(func() (err error) {
		suspicious, err = s.Records.CountAlerts(gctx, bson.M{"resolved": false, "severity": models.SeverityHigh})
		return err
	})
	g.Go(func() (err error) {
		recent, err = s.Contacts.Count(gctx, bson.M{
			"bothPaymentsSucceeded": true,
			"acceptedAt":            bson.M{"$gte": now.Add(-24 * time.Hour)},
		})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to compute dashboard: %w", err)
	}

	breakdown := models.IncomeBreakdown{
		Subscriptions: float64(workerSubs)*WorkerSubFee + float64(lawyerSubs)*LawyerSubMonthly,
		Contacts:      float64(sold) * ContactPlatformFee,
		Commissions:   commissions,
	}
	var conversion float64
	if monthRequests > 0 {
		conversion = round2(float64(sold) / float64(monthRequests) * 100)
	}
	return &models.DashboardStats{
		KPIs: models.DashboardKPIs{
			TotalIncome:     breakdown.Subscriptions + breakdown.Contacts + breakdown.Commissions,
			IncomeBreakdown: breakdown,
			ActiveLawyers:   verified,
			ActiveWorkers:   workerSubs,
			ContactsSold:    sold,
			ConversionRate:  conversion,
		},
		ActionItems: models.DashboardActions{
			PendingLawyers:     pending,
			SuspiciousActivity: suspicious,
			RecentPayments:     recent,
		},
	}, nil
}

func (s *DefaultAdminService) FinancialStats(ctx context.Context) (*models.FinancialStats, error) {
	workers, err := s.Profiles.CountWorkerSubscriptions(ctx, bson.M{"status": models.SubActive})
	if err != nil {
		return nil, fmt.Errorf("failed to count worker subscriptions: %w", err)
	}
	paid, err := s.Contacts.Count(ctx, bson.M{"bothPaymentsSucceeded": true})
	if err != nil {
		return nil, fmt.Errorf("failed to count paid contacts: %w", err)
	}
	commissions, err := s.Contacts.Sum(ctx, bson.M{"commissionStatus": models.CommissionPaid}, "commissionAmount")
	if err != nil {
		return nil, fmt.Errorf("failed to sum commissions: %w", err)
	}
	b := models.IncomeBreakdown{
		Subscriptions: float64(workers) * WorkerSubFee,
		Contacts:      float64(paid) * ContactGrossFee,
		Commissions:   commissions,
	}
	return &models.FinancialStats{
		TotalRevenue: b.Subscriptions + b.Contacts + b.Commissions,
		Breakdown:    b,
		Period:       "All Time (Estimated)",
	}, nil
}

func (s *DefaultAdminService) FinancialHealth(ctx context.Context) (*models.FinancialHealth, error) {
	active := bson.M{"status": models.SubActive}
	workers, err := s.Profiles.CountWorkerSubscriptions(ctx, active)
	if err != nil {
		return nil, fmt.Errorf("failed to count worker subscriptions: %w", err)
	}
	basic, err := s.Lawyers.CountSubscriptions(ctx, bson.M{"status": models.SubActive, "plan": models.PlanBasic})
	if err != nil {
		return nil, fmt.Errorf("failed to count basic plans: %w", err)
	}
	pro, err := s.Lawyers.CountSubscriptions(ctx, bson.M{"status": models.SubActive, "plan": models.PlanPro})
	if err != nil {
		return nil, fmt.Errorf("failed to count pro plans: %w", err)
	}
	pymes, err := s.Users.Count(ctx, bson.M{"role": utils.RolePyme, "subscriptionLevel": models.LevelPremium})
	if err != nil {
		return nil, fmt.Errorf("failed to count premium pymes: %w", err)
	}
	pendingFees, err := s.Contacts.Sum(ctx, bson.M{"commissionStatus": models.CommissionPending}, "commissionAmount")
	if err != nil {
		return nil, fmt.Errorf("failed to sum pending commissions: %w", err)
	}
	hot, err := s.Contacts.Sum(ctx, bson.M{
		"isHot":     true,
		"crmStatus": bson.M{"$nin": bson.A{models.CRMClosedWon, models.CRMClosedLost}},
	}, "estimatedSeverance")
	if err != nil {
		return nil, fmt.Errorf("failed to sum hot pipeline: %w", err)
	}
	total, err := s.Contacts.Count(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to count requests: %w", err)
	}

	mrr := float64(workers)*WorkerSubFee + float64(basic)*LawyerBasicMRR +
		float64(pro)*LawyerProMRR + float64(pymes)*PymePremiumMRR
	cost := float64(total) * AICostPerRequest
	ratio := "∞"
	if cost > 0 {
		ratio = fmt.Sprintf("%.2f", mrr/cost)
	}
	return &models.FinancialHealth{
		MRR:           mrr,
		PendingFees:   pendingFees,
		PipelineValue: round2(hot * PipelineRate),
		Efficiency:    models.Efficiency{Revenue: mrr, Cost: cost, Ratio: ratio},
	}, nil
}

func (s *DefaultAdminService) ImpactKPIs(ctx context.Context) (*models.ImpactKPIs, error) {
	won := bson.M{"crmStatus": models.CRMClosedWon}
	recovered, err := s.Contacts.Sum(ctx, won, "settlementAmount")
	if err != nil {
		return nil, fmt.Errorf("failed to sum settlements: %w", err)
	}
	families, err := s.Contacts.Count(ctx, won)
	if err != nil {
		return nil, fmt.Errorf("failed to count won cases: %w", err)
	}
	resolved, err := s.Contacts.Count(ctx, bson.M{
		"crmStatus":      models.CRMClosedWon,
		"resolutionType": bson.M{"$exists": true},
	})
	if err != nil {
		return nil, err
	}
	conciliated, err := s.Contacts.Count(ctx, bson.M{
		"crmStatus":      models.CRMClosedWon,
		"resolutionType": models.ResolutionConciliation,
	})
	if err != nil {
		return nil, err
	}
	var rate float64
	if resolved > 0 {
		rate = round2(float64(conciliated) / float64(resolved) * 100)
	}
	return &models.ImpactKPIs{MoneyRecovered: recovered, FamiliesHelped: families, ConciliationRate: rate}, nil
}

// CollectiveRadar surfaces employers with several claims as potential class actions.
func (s *DefaultAdminService) CollectiveRadar(ctx context.Context) (*models.CollectiveRadar, error) {
	clusters, err := s.Contacts.CollectiveCases(ctx, clusterMin)
	if err != nil {
		return nil, fmt.Errorf("failed to group collective cases: %w", err)
	}
	for i := range clusters {
		clusters[i].PotentialCommission = round2(clusters[i].TotalSeverance * CollectiveRate)
		clusters[i].Status = "DETECTED"
		clusters[i].Action = "NOTIFY_LAWYERS"
	}
	if clusters == nil {
		clusters = []models.CollectiveCase{}
	}
	return &models.CollectiveRadar{Clusters: clusters, TotalClusters: len(clusters)}, nil
}
