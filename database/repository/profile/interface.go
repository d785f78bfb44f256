package profileRepo

import (
	"context"

	"aliadolaboral/models"

	"go.mongodb.org/mongo-driver/bson"
)

// ProfileRepository stores worker and pyme side data: profiles and worker subscriptions.
type ProfileRepository interface {
	GetWorkerProfile(ctx context.Context, userID string) (*models.WorkerProfile, error)
	UpsertWorkerProfile(ctx context.Context, profile *models.WorkerProfile) error
	// ListPeerSalaries returns the monthly salaries of other workers in the same occupation.
	ListPeerSalaries(ctx context.Context, occupation, excludeUserID string) ([]float64, error)

	CreateWorkerSubscription(ctx context.Context, sub *models.WorkerSubscription) error
	GetWorkerSubscription(ctx context.Context, userID string) (*models.WorkerSubscription, error)
	UpdateWorkerSubscription(ctx context.Context, id string, fields bson.M) error
	CountWorkerSubscriptions(ctx context.Context, filter bson.M) (int64, error)

	CreatePymeProfile(ctx context.Context, profile *models.PymeProfile) error
	GetPymeProfile(ctx context.Context, userID string) (*models.PymeProfile, error)
	UpdatePymeProfile(ctx context.Context, id string, fields bson.M) error
	AddEmployee(ctx context.Context, profileID string, employee models.Employee) error
	// AddPymeDocument files doc on the profile and lowers its riskScore by riskDrop, never below riskFloor.
	AddPymeDocument(ctx context.Context, profileID string, doc models.PymeDocument, riskDrop, riskFloor int) (*models.PymeProfile, error)
}
