package lawyerRepo

import (
	"context"

	"aliadolaboral/models"

	"go.mongodb.org/mongo-driver/bson"
)

// LawyerRepository covers lawyers, their public profiles and their subscriptions.
type LawyerRepository interface {
	CreateLawyer(ctx context.Context, lawyer *models.Lawyer) error
	GetLawyerByID(ctx context.Context, id string) (*models.Lawyer, error)
	GetLawyerByUserID(ctx context.Context, userID string) (*models.Lawyer, error)
	UpdateLawyerFields(ctx context.Context, id string, fields bson.M) error
	// IncrementStrikes adds one strike and returns the lawyer after the change.
	IncrementStrikes(ctx context.Context, id string) (*models.Lawyer, error)
	DeleteLawyer(ctx context.Context, id string) error
	ListLawyers(ctx context.Context, filter bson.M, limit int64) ([]models.Lawyer, error)
	CountLawyers(ctx context.Context, filter bson.M) (int64, error)

	CreateProfile(ctx context.Context, profile *models.LawyerProfile) error
	GetProfileByID(ctx context.Context, id string) (*models.LawyerProfile, error)
	GetProfileByLawyerID(ctx context.Context, lawyerID string) (*models.LawyerProfile, error)
	UpdateProfileFields(ctx context.Context, id string, fields bson.M) error
	// IncrementProfile applies $inc counters (reputation, profileViews, successfulCases...).
	IncrementProfile(ctx context.Context, id string, inc bson.M) error
	// ListProfiles returns profiles matching filter, most viewed first.
	ListProfiles(ctx context.Context, filter bson.M) ([]models.LawyerProfile, error)
	DeleteProfileByLawyerID(ctx context.Context, lawyerID string) error

	CreateSubscription(ctx context.Context, sub *models.LawyerSubscription) error
	GetSubscriptionByLawyerID(ctx context.Context, lawyerID string) (*models.LawyerSubscription, error)
	UpdateSubscriptionFields(ctx context.Context, id string, fields bson.M) error
	UpdateSubscriptionByStripeID(ctx context.Context, stripeSubscriptionID string, fields bson.M) error
	ListSubscriptions(ctx context.Context, filter bson.M) ([]models.LawyerSubscription, error)
	CountSubscriptions(ctx context.Context, filter bson.M) (int64, error)
	DeleteSubscriptionByLawyerID(ctx context.Context, lawyerID string) error
}
