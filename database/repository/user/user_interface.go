package userRepo

import (
	"context"

	"aliadolaboral/models"

	"go.mongodb.org/mongo-driver/bson"
)

// UserRepository defines methods for user data access.
type UserRepository interface {
	// Create inserts a new user record.
	Create(ctx context.Context, user *models.User) error
	// GetByID retrieves a user by its unique ID. It returns nil when absent.
	GetByID(ctx context.Context, id string) (*models.User, error)
	// GetByEmail retrieves a user by its email address. It returns nil when absent.
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// GetByFirebaseUID retrieves the user linked to a Firebase account.
	GetByFirebaseUID(ctx context.Context, uid string) (*models.User, error)
	// GetByIDs loads several users keyed by id.
	GetByIDs(ctx context.Context, ids []string) (map[string]models.User, error)
	// UpdateFields applies a $set with the given fields.
	UpdateFields(ctx context.Context, id string, fields bson.M) error
	// Delete removes a user record by its ID.
	Delete(ctx context.Context, id string) error
	// ListByRole lists users of a role, newest first. A zero limit means no limit.
	ListByRole(ctx context.Context, role string, limit int64) ([]models.User, error)
	// ListWithPushToken lists users of a role (any role when empty) that registered a push token.
	ListWithPushToken(ctx context.Context, role string) ([]models.User, error)
	// Count counts users matching filter.
	Count(ctx context.Context, filter bson.M) (int64, error)
}
