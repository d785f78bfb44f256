package profile

import (
	"context"
	"time"

	"aliadolaboral/database/repository"
	"aliadolaboral/models"
	"aliadolaboral/services/ocr"
	"aliadolaboral/services/storage"
)

// ProfileService covers the public lawyer directory and the profiles users keep about themselves.
type ProfileService interface {
	// Lawyer directory
	ListLawyers(ctx context.Context, filter models.LawyerDirectoryFilter) ([]models.PublicLawyer, error)
	PublicProfile(ctx context.Context, profileID string) (*models.PublicLawyer, error)

	// Lawyer self-service
	MyLawyerProfile(ctx context.Context, userID string) (*models.LawyerAccount, error)
	UpdateLawyerProfile(ctx context.Context, userID string, in models.LawyerProfileUpdate, photo, cedula *models.UploadedFile) (*models.ProfileUpdateResult, error)
	LawyerMetrics(ctx context.Context, userID string) (*models.LawyerMetrics, error)

	// Worker
	WorkerProfile(ctx context.Context, userID string) (*models.WorkerProfileView, error)
	UpsertWorkerProfile(ctx context.Context, userID string, in models.WorkerProfileInput) (*models.WorkerProfileView, error)
	SalaryBenchmark(ctx context.Context, userID string) (*models.SalaryBenchmark, error)
}

const (
	wonCasesShown    = 2
	photoFolder      = "aliado/lawyers"
	minBenchmarkPeer = 3
	// defaultMarketSalary seeds the estimate when neither peers nor the worker's own salary exist.
	defaultMarketSalary = 14000.0
)

type DefaultProfileService struct {
	Users    repository.UserRepository
	Lawyers  repository.LawyerRepository
	Profiles repository.ProfileRepository
	Contacts repository.ContactRepository
	Images   storage.ImageHost
	OCR      ocr.Provider
	Now      func() time.Time
}

func NewDefaultProfileService(
	users repository.UserRepository,
	lawyers repository.LawyerRepository,
	profiles repository.ProfileRepository,
	contacts repository.ContactRepository,
	images storage.ImageHost,
	ocrProvider ocr.Provider,
) *DefaultProfileService {
	return &DefaultProfileService{
		Users:    users,
		Lawyers:  lawyers,
		Profiles: profiles,
		Contacts: contacts,
		Images:   images,
		OCR:      ocrProvider,
		Now:      time.Now,
	}
}

func (s *DefaultProfileService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
