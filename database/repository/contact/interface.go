package contactRepo

import (
	"context"
	"time"

	"aliadolaboral/models"

	"go.mongodb.org/mongo-driver/bson"
)

// ContactRepository persists contact requests and answers the scheduler and back-office queries over them.
type ContactRepository interface {
	Create(ctx context.Context, req *models.ContactRequest) error
	GetByID(ctx context.Context, id string) (*models.ContactRequest, error)
	// UpdateFields applies a $set to the request and stamps updatedAt.
	UpdateFields(ctx context.Context, id string, fields bson.M) error
	// UpdateFieldsIf applies fields only when the request also matches cond.
	// It reports whether a document was matched.
	UpdateFieldsIf(ctx context.Context, id string, cond bson.M, fields bson.M) (bool, error)
	// Apply runs an arbitrary update document ($inc, $push...) against the request and stamps updatedAt.
	Apply(ctx context.Context, id string, update bson.M) error
	Delete(ctx context.Context, id string) error

	ListByWorker(ctx context.Context, workerID string) ([]models.ContactRequest, error)
	// ListByLawyerProfile lists a lawyer's requests, optionally narrowed to one status.
	ListByLawyerProfile(ctx context.Context, profileID, status string) ([]models.ContactRequest, error)
	List(ctx context.Context, filter bson.M, limit int64) ([]models.ContactRequest, error)
	Count(ctx context.Context, filter bson.M) (int64, error)
	// Sum adds up a numeric field over the matching requests.
	Sum(ctx context.Context, filter bson.M, field string) (float64, error)

	// FindStaleChats returns active chats whose lawyer has been silent since before cutoff.
	FindStaleChats(ctx context.Context, cutoff time.Time) ([]models.ContactRequest, error)
	// FindUncontacted returns accepted requests still in CRM status NEW since before cutoff.
	FindUncontacted(ctx context.Context, cutoff time.Time) ([]models.ContactRequest, error)
	// FindInactive returns open accepted requests with no lawyer activity since cutoff.
	FindInactive(ctx context.Context, cutoff time.Time) ([]models.ContactRequest, error)
	// ListPendingPayments returns live requests where one side has not paid.
	ListPendingPayments(ctx context.Context) ([]models.ContactRequest, error)
	// CollectiveCases groups requests by employer and keeps employers with more than minCount requests.
	CollectiveCases(ctx context.Context, minCount int) ([]models.CollectiveCase, error)
}
