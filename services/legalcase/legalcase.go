// Package legalcase keeps the worker's private case timelines.
package legalcase

import (
	"context"
	"strings"
	"time"

	"aliadolaboral/database/repository"
	"aliadolaboral/models"
	"aliadolaboral/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type LegalCaseService interface {
	Create(ctx context.Context, userID string, in models.CreateCaseRequest) (*models.LegalCase, error)
	List(ctx context.Context, userID string) ([]models.LegalCase, error)
	// AddEvent appends to the timeline of a case owned by userID.
	AddEvent(ctx context.Context, userID, caseID string, in models.AddCaseEventRequest) (*models.CaseEvent, error)
}

type DefaultLegalCaseService struct {
	Cases repository.LegalCaseRepository
	Now   func() time.Time
}

func NewDefaultLegalCaseService(cases repository.LegalCaseRepository) *DefaultLegalCaseService {
	return &DefaultLegalCaseService{Cases: cases, Now: time.Now}
}

func (s *DefaultLegalCaseService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *DefaultLegalCaseService) Create(ctx context.Context, userID string, in models.CreateCaseRequest) (*models.LegalCase, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, utils.BadRequest("El título del caso es requerido")
	}
	start := in.StartDate
	if start.IsZero() {
		start = s.now()
	}
	lc := &models.LegalCase{
		ID:           uuid.New().String(),
		UserID:       userID,
		Title:        title,
		EmployerName: strings.TrimSpace(in.EmployerName),
		StartDate:    start,
		Status:       models.CaseStatusActive,
	}
	if err := s.Cases.Create(ctx, lc); err != nil {
		utils.GetLogger().Error("failed to create legal case", zap.String("userId", userID), zap.Error(err))
		return nil, utils.Internal("Internal server error", err.Error())
	}
	return lc, nil
}

func (s *DefaultLegalCaseService) List(ctx context.Context, userID string) ([]models.LegalCase, error) {
	cases, err := s.Cases.ListByUser(ctx, userID)
	if err != nil {
		return nil, utils.Internal("Internal server error", err.Error())
	}
	if cases == nil {
		cases = []models.LegalCase{}
	}
	return cases, nil
}

func (s *DefaultLegalCaseService) AddEvent(ctx context.Context, userID, caseID string, in models.AddCaseEventRequest) (*models.CaseEvent, error) {
	if strings.TrimSpace(in.EventType) == "" {
		return nil, utils.BadRequest("El tipo de evento es requerido")
	}
	lc, err := s.Cases.GetByID(ctx, caseID)
	if err != nil {
		return nil, utils.Internal("Internal server error", err.Error())
	}
	if lc == nil {
		return nil, utils.NotFound("Caso no encontrado")
	}
	if lc.UserID != userID {
		return nil, utils.Forbidden("No tienes acceso a este caso")
	}
	occurred := in.OccurredAt
	if occurred.IsZero() {
		occurred = s.now()
	}
	event := models.CaseEvent{
		ID:          uuid.New().String(),
		CaseID:      caseID,
		EventType:   strings.TrimSpace(in.EventType),
		Description: in.Description,
		OccurredAt:  occurred,
	}
	if err := s.Cases.AddEvent(ctx, caseID, event); err != nil {
		return nil, utils.Internal("Internal server error", err.Error())
	}
	return &event, nil
}
