package admin

import (
	"context"
	"fmt"
	"sort"

	"aliadolaboral/models"
	"aliadolaboral/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

const unassigned = "Sin Asignar"

func (s *DefaultAdminService) ListCases(ctx context.Context) ([]models.AdminCase, error) {
	reqs, err := s.Contacts.List(ctx, bson.M{}, casesLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list cases: %w", err)
	}
	workerIDs := make([]string, 0, len(reqs))
	for _, r := range reqs {
		workerIDs = append(workerIDs, r.WorkerID)
	}
	workers, err := s.Users.GetByIDs(ctx, workerIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load workers: %w", err)
	}
	names := map[string]string{}
	out := make([]models.AdminCase, 0, len(reqs))
	for _, r := range reqs {
		row := models.AdminCase{
			ID:                    r.ID,
			WorkerName:            workers[r.WorkerID].FullName,
			LawyerName:            unassigned,
			Status:                r.Status,
			CRMStatus:             r.CRMStatus,
			CaseType:              r.CaseType,
			Urgency:               r.Urgency,
			BothPaymentsSucceeded: r.BothPaymentsSucceeded,
			CreatedAt:             r.CreatedAt,
		}
		if r.LawyerProfileID != "" {
			row.LawyerName = s.lawyerName(ctx, names, r.LawyerProfileID)
		}
		out = append(out, row)
	}
	return out, nil
}

// lawyerName resolves a profile's display name, memoised in cache.
func (s *DefaultAdminService) lawyerName(ctx context.Context, cache map[string]string, profileID string) string {
	if name, ok := cache[profileID]; ok {
		return name
	}
	name := unassigned
	if p, err := s.Lawyers.GetProfileByID(ctx, profileID); err == nil && p != nil {
		name = p.DisplayName
	}
	cache[profileID] = name
	return name
}

func (s *DefaultAdminService) PaymentLogs(ctx context.Context) ([]models.PaymentLog, error) {
	records, err := s.Records.ListPayments(ctx, bson.M{}, paymentsLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	ids := make([]string, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.UserID)
	}
	users, err := s.Users.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load payers: %w", err)
	}
	out := make([]models.PaymentLog, 0, len(records))
	for _, r := range records {
		out = append(out, models.PaymentLog{PaymentRecord: r, UserEmail: users[r.UserID].Email})
	}
	return out, nil
}

var paymentSheetHeader = []string{"ID", "Fecha", "Usuario", "Tipo", "Pasarela", "Monto", "Moneda", "Estado", "Solicitud", "Referencia"}

func (s *DefaultAdminService) ExportPayments(ctx context.Context) ([]byte, error) {
	logs, err := s.PaymentLogs(ctx)
	if err != nil {
		return nil, err
	}
	rows := make([][]interface{}, 0, len(logs))
	for _, l := range logs {
		rows = append(rows, []interface{}{
			l.ID, l.CreatedAt.Format("2006-01-02 15:04"), l.UserEmail, l.Type, l.Gateway,
			l.Amount, l.Currency, l.Status, l.RequestID, l.ExternalID,
		})
	}
	data, err := utils.BuildSheet("Pagos", paymentSheetHeader, rows)
	if err != nil {
		return nil, utils.Internal("Error al generar el reporte", err.Error())
	}
	return data, nil
}

func (s *DefaultAdminService) SecurityLogs(ctx context.Context) ([]models.ActivityLog, error) {
	logs, err := s.Records.ListActivity(ctx, nil, logsLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity: %w", err)
	}
	if logs == nil {
		logs = []models.ActivityLog{}
	}
	return logs, nil
}

func (s *DefaultAdminService) Alerts(ctx context.Context) ([]models.AdminAlert, error) {
	alerts, err := s.Records.ListAlerts(ctx, alertsLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}
	if alerts == nil {
		alerts = []models.AdminAlert{}
	}
	return alerts, nil
}

func (s *DefaultAdminService) ResolveAlert(ctx context.Context, alertID string) error {
	if err := s.Records.ResolveAlert(ctx, alertID); err != nil {
		return utils.NotFound("Alerta no encontrada")
	}
	return nil
}

func (s *DefaultAdminService) PurgeCase(ctx context.Context, actorID, ip, requestID string) error {
	logger := utils.GetLogger()
	req, err := s.Contacts.GetByID(ctx, requestID)
	if err != nil {
		return fmt.Errorf("failed to load request: %w", err)
	}
	if req == nil {
		return utils.NotFound("Solicitud no encontrada")
	}
	if req.Status != models.StatusAccepted || !req.BothPaymentsSucceeded {
		return utils.BadRequest("La solicitud no cumple con los requisitos para ser purgada (debe estar aceptada y pagada)")
	}

	deletedCases, err := s.Cases.DeleteByUser(ctx, req.WorkerID)
	if err != nil {
		return fmt.Errorf("failed to delete legal cases: %w", err)
	}
	paths := make([]string, 0, len(req.Documents)+1)
	for _, d := range req.Documents {
		paths = append(paths, d.Path)
	}
	if req.SettlementDocPath != "" {
		paths = append(paths, req.SettlementDocPath)
	}
	if s.Storage != nil {
		for _, p := range paths {
			if err := s.Storage.Delete(ctx, p); err != nil {
				logger.Warn("purge: failed to delete object", zap.String("path", p), zap.Error(err))
			}
		}
	}
	if err := s.Contacts.Delete(ctx, requestID); err != nil {
		return fmt.Errorf("failed to delete request: %w", err)
	}
	s.audit(ctx, actorID, ip, models.ActionPurgeData, requestID,
		fmt.Sprintf("worker=%s cases=%d files=%d", req.WorkerID, deletedCases, len(paths)))
	logger.Info("request data purged", zap.String("requestId", requestID), zap.String("actorId", actorID))
	return nil
}

// VaultCompliance lists closed cases missing settlement evidence and settlements far below the estimate.
func (s *DefaultAdminService) VaultCompliance(ctx context.Context) (*models.VaultCompliance, error) {
	out := &models.VaultCompliance{
		Anomalies:      []models.ComplianceAnomaly{},
		SuspiciousDocs: []models.SuspiciousDoc{},
		TopEarners:     []models.TopEarner{},
	}
	missing, err := s.Contacts.List(ctx, bson.M{
		"$or": bson.A{
			bson.M{"crmStatus": models.CRMClosedWon},
			bson.M{"commissionStatus": models.CommissionPending},
		},
		"settlementDocStatus": bson.M{"$ne": models.SettlementUploaded},
	}, casesLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list anomalies: %w", err)
	}
	names := map[string]string{}
	for _, r := range missing {
		a := models.ComplianceAnomaly{
			RequestID:  r.ID,
			LawyerName: unassigned,
			Issue:      "Caso cerrado sin documento de liquidación en la bóveda",
		}
		if r.LawyerProfileID != "" {
			a.LawyerName = s.lawyerName(ctx, names, r.LawyerProfileID)
			a.LawyerID = r.LawyerProfileID
		}
		out.Anomalies = append(out.Anomalies, a)
	}

	uploaded, err := s.Contacts.List(ctx, bson.M{"settlementDocStatus": models.SettlementUploaded}, casesLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list settlements: %w", err)
	}
	for _, r := range uploaded {
		if r.EstimatedSeverance > 0 && r.SettlementAmount < r.EstimatedSeverance*LowSettlementRatio {
			out.SuspiciousDocs = append(out.SuspiciousDocs, models.SuspiciousDoc{
				RequestID: r.ID,
				Estimate:  r.EstimatedSeverance,
				Reported:  r.SettlementAmount,
				Flag:      "LOW_SETTLEMENT",
			})
		}
	}

	profiles, err := s.Lawyers.ListProfiles(ctx, bson.M{"lifetimeCommissionSavings": bson.M{"$gt": 0}})
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	sort.SliceStable(profiles, func(i, j int) bool {
		return profiles[i].LifetimeCommissionSavings > profiles[j].LifetimeCommissionSavings
	})
	if len(profiles) > topEarners {
		profiles = profiles[:topEarners]
	}
	for _, p := range profiles {
		out.TopEarners = append(out.TopEarners, models.TopEarner{
			Lawyer:  p.DisplayName,
			Savings: p.LifetimeCommissionSavings,
			Score:   p.Reputation,
		})
	}

	if out.VaultFiles, err = s.Vault.Count(ctx); err != nil {
		return nil, fmt.Errorf("failed to count vault files: %w", err)
	}
	if out.VaultOwners, err = s.Vault.CountOwners(ctx); err != nil {
		return nil, fmt.Errorf("failed to count vault owners: %w", err)
	}
	return out, nil
}
