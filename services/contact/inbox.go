package contact

import (
	"context"
	"fmt"

	"aliadolaboral/models"
	"aliadolaboral/utils"

	"go.mongodb.org/mongo-driver/bson"
)

const (
	maskedValue = "******** (Privado)"
	maskedName  = "Usuario Protegido"
	// Lawyers see their first few leads unmasked.
	trialLeadCount = 3
	// Reassigned requests shown on top of the lawyer's own inbox.
	poolLimit = 20
)

func (s *DefaultContactService) isTrialView(ctx context.Context, lc *lawyerContext) (bool, error) {
	if lc.Sub.IsTrial(s.now()) {
		return true, nil
	}
	total, err := s.Contacts.Count(ctx, bson.M{"lawyerProfileId": lc.Profile.ID})
	if err != nil {
		return false, fmt.Errorf("failed to count lawyer requests: %w", err)
	}
	return total <= trialLeadCount, nil
}

// ListForLawyer returns the lawyer's inbox with worker contact data masked where it is not yet unlocked.
func (s *DefaultContactService) ListForLawyer(ctx context.Context, lawyerUserID, status string) ([]models.LawyerRequestView, error) {
	lc, err := s.loadLawyer(ctx, lawyerUserID)
	if err != nil {
		return nil, err
	}
	reqs, err := s.Contacts.ListByLawyerProfile(ctx, lc.Profile.ID, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list lawyer requests: %w", err)
	}
	if status == "" || status == models.StatusPending {
		pool, err := s.Contacts.List(ctx, bson.M{
			"status":          models.StatusPending,
			"lawyerProfileId": bson.M{"$in": []interface{}{nil, ""}},
		}, poolLimit)
		if err != nil {
			return nil, fmt.Errorf("failed to list reassigned requests: %w", err)
		}
		reqs = append(reqs, pool...)
	}
	trial, err := s.isTrialView(ctx, lc)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(reqs))
	for _, r := range reqs {
		ids = append(ids, r.WorkerID)
	}
	workers, err := s.Users.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load workers: %w", err)
	}

	isPro := lc.Sub.IsPro(s.now())
	views := make([]models.LawyerRequestView, 0, len(reqs))
	for _, r := range reqs {
		views = append(views, maskView(r, workers[r.WorkerID], isPro, trial))
	}
	return views, nil
}

// maskView applies the privacy rule: contact data is visible only with the worker's consent
// and when the lawyer is pro, has paid for the lead, or is still within the trial leads.
func maskView(r models.ContactRequest, worker models.User, isPro, trial bool) models.LawyerRequestView {
	paid := r.Status == models.StatusAccepted || r.BothPaymentsSucceeded
	hasConsent := r.ConsentTimestamp != nil
	view := models.LawyerRequestView{ContactRequest: r}

	if (isPro || paid || trial) && hasConsent {
		view.WorkerName = worker.FullName
		view.WorkerEmail = worker.Email
		view.WorkerPhone = worker.Phone
		return view
	}
	view.WorkerName = maskedName
	view.WorkerEmail = maskedValue
	view.WorkerPhone = maskedValue
	view.IsMasked = true
	view.Upsell = !isPro
	view.PrivacyLock = !hasConsent
	view.UnlockPrice = models.WorkerOpeningFee
	return view
}

func (s *DefaultContactService) ContactInfo(ctx context.Context, lawyerUserID, requestID string) (*models.ContactInfo, error) {
	lc, err := s.loadLawyer(ctx, lawyerUserID)
	if err != nil {
		return nil, err
	}
	req, err := s.ownedRequest(ctx, lc, requestID)
	if err != nil {
		return nil, err
	}
	trial, err := s.isTrialView(ctx, lc)
	if err != nil {
		return nil, err
	}
	if !req.BothPaymentsSucceeded && !trial && !lc.Sub.IsPro(s.now()) {
		return nil, utils.Forbidden("Debes completar el pago para ver los datos de contacto")
	}

	worker, err := s.Users.GetByID(ctx, req.WorkerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load worker: %w", err)
	}
	if worker == nil {
		return nil, utils.NotFound("Usuario no encontrado")
	}
	return &models.ContactInfo{
		RequestID: req.ID,
		FullName:  worker.FullName,
		Email:     worker.Email,
		Phone:     worker.Phone,
	}, nil
}

func (s *DefaultContactService) UpdateCRMStatus(ctx context.Context, lawyerUserID, requestID, status string) (*models.ContactRequest, error) {
	lc, err := s.loadLawyer(ctx, lawyerUserID)
	if err != nil {
		return nil, err
	}
	req, err := s.ownedRequest(ctx, lc, requestID)
	if err != nil {
		return nil, err
	}
	if !models.ValidCRMStatuses[status] {
		return nil, utils.BadRequest("Estado inválido")
	}
	if err := s.Contacts.UpdateFields(ctx, req.ID, bson.M{
		"crmStatus":            status,
		"lastLawyerActivityAt": s.now(),
	}); err != nil {
		return nil, fmt.Errorf("failed to update crm status: %w", err)
	}
	req.CRMStatus = status
	return req, nil
}
