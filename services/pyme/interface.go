package pyme

import (
	"context"
	"time"

	"aliadolaboral/database/repository"
	"aliadolaboral/models"
	"aliadolaboral/services/storage"
)

type PymeService interface {
	Profile(ctx context.Context, userID string) (*models.PymeProfile, error)
	UpdateProfile(ctx context.Context, userID string, in models.PymeProfileUpdate) (*models.PymeProfile, error)
	Employees(ctx context.Context, userID string) ([]models.Employee, error)
	AddEmployee(ctx context.Context, userID string, in models.EmployeeInput) (*models.Employee, error)

	CalculateLiquidation(in models.LiquidationInput) (*models.LiquidationResult, error)
	Compliance(ctx context.Context, userID string) (*models.ComplianceScore, error)
	Liability(ctx context.Context, userID string) (*models.LiabilityReport, error)
	ExportLiability(ctx context.Context, userID string) ([]byte, error)
	DraftAct(ctx context.Context, userID string, in models.ActRequest) (*models.AdministrativeAct, error)

	DocumentUploadURL(ctx context.Context, userID string, in models.VaultUploadRequest) (*models.VaultUploadTicket, error)
	AddDocument(ctx context.Context, userID string, in models.PymeDocumentInput) (*models.PymeDocument, error)
	Documents(ctx context.Context, userID string) ([]models.PymeDocument, error)
	AnalyzeContract(ctx context.Context, userID string) (*models.ContractAnalysis, error)
}

// Drafter produces legal text from a prompt.
type Drafter interface {
	Complete(ctx context.Context, system, prompt string, smart bool) (string, error)
}

type DefaultPymeService struct {
	Profiles repository.ProfileRepository
	AI       Drafter
	Storage  storage.ObjectStore
	Now      func() time.Time
}

func NewDefaultPymeService(profiles repository.ProfileRepository, drafter Drafter, store storage.ObjectStore) *DefaultPymeService {
	return &DefaultPymeService{Profiles: profiles, AI: drafter, Storage: store, Now: time.Now}
}

func (s *DefaultPymeService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
