package lawyerRepo

import (
	"context"
	"fmt"
	"time"

	"aliadolaboral/database"
	"aliadolaboral/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoLawyerRepo implements LawyerRepository using MongoDB.
type MongoLawyerRepo struct {
	lawyers  *mongo.Collection
	profiles *mongo.Collection
	subs     *mongo.Collection
}

// NewMongoLawyerRepo creates a LawyerRepository backed by the lawyers, lawyer_profiles and lawyer_subscriptions collections.
func NewMongoLawyerRepo() LawyerRepository {
	repo := &MongoLawyerRepo{
		lawyers:  database.Collection("lawyers"),
		profiles: database.Collection("lawyer_profiles"),
		subs:     database.Collection("lawyer_subscriptions"),
	}
	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create indexes: %v\n", err)
	}
	return repo
}

func (r *MongoLawyerRepo) ensureIndexes() error {
	if err := database.EnsureIndexes(r.lawyers, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "userId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "isVerified", Value: 1}}},
	}); err != nil {
		return err
	}
	if err := database.EnsureIndexes(r.profiles, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "lawyerId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "profileViews", Value: -1}}},
	}); err != nil {
		return err
	}
	return database.EnsureIndexes(r.subs, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "lawyerId", Value: 1}}},
		{Keys: bson.D{{Key: "stripeSubscriptionId", Value: 1}}, Options: options.Index().SetSparse(true)},
	})
}

func stamp(created, updated *time.Time) {
	now := time.Now()
	if created.IsZero() {
		*created = now
	}
	*updated = now
}

func (r *MongoLawyerRepo) CreateLawyer(ctx context.Context, lawyer *models.Lawyer) error {
	stamp(&lawyer.CreatedAt, &lawyer.UpdatedAt)
	return database.InsertOne(ctx, r.lawyers, lawyer)
}

func (r *MongoLawyerRepo) GetLawyerByID(ctx context.Context, id string) (*models.Lawyer, error) {
	return database.FindOne[models.Lawyer](ctx, r.lawyers, bson.M{"id": id})
}

func (r *MongoLawyerRepo) GetLawyerByUserID(ctx context.Context, userID string) (*models.Lawyer, error) {
	return database.FindOne[models.Lawyer](ctx, r.lawyers, bson.M{"userId": userID})
}

func (r *MongoLawyerRepo) UpdateLawyerFields(ctx context.Context, id string, fields bson.M) error {
	return database.SetByID(ctx, r.lawyers, id, fields)
}

// IncrementStrikes uses a single findAndModify so concurrent strikes cannot be lost.
func (r *MongoLawyerRepo) IncrementStrikes(ctx context.Context, id string) (*models.Lawyer, error) {
	lawyer, err := database.FindOneAndUpdate[models.Lawyer](ctx, r.lawyers, bson.M{"id": id}, bson.M{
		"$inc": bson.M{"strikes": 1},
		"$set": bson.M{"updatedAt": time.Now()},
	})
	if err != nil {
		return nil, err
	}
	if lawyer == nil {
		return nil, fmt.Errorf("lawyer with id %s not found", id)
	}
	return lawyer, nil
}

func (r *MongoLawyerRepo) DeleteLawyer(ctx context.Context, id string) error {
	return database.DeleteByID(ctx, r.lawyers, id)
}

func (r *MongoLawyerRepo) ListLawyers(ctx context.Context, filter bson.M, limit int64) ([]models.Lawyer, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	return database.FindMany[models.Lawyer](ctx, r.lawyers, filter, opts)
}

func (r *MongoLawyerRepo) CountLawyers(ctx context.Context, filter bson.M) (int64, error) {
	return database.Count(ctx, r.lawyers, filter)
}

func (r *MongoLawyerRepo) CreateProfile(ctx context.Context, profile *models.LawyerProfile) error {
	stamp(&profile.CreatedAt, &profile.UpdatedAt)
	if profile.Specialties == nil {
		profile.Specialties = []string{}
	}
	if profile.AvailableStates == nil {
		profile.AvailableStates = []string{}
	}
	if profile.CaseTypes == nil {
		profile.CaseTypes = []string{}
	}
	return database.InsertOne(ctx, r.profiles, profile)
}

func (r *MongoLawyerRepo) GetProfileByID(ctx context.Context, id string) (*models.LawyerProfile, error) {
	return database.FindOne[models.LawyerProfile](ctx, r.profiles, bson.M{"id": id})
}

func (r *MongoLawyerRepo) GetProfileByLawyerID(ctx context.Context, lawyerID string) (*models.LawyerProfile, error) {
	return database.FindOne[models.LawyerProfile](ctx, r.profiles, bson.M{"lawyerId": lawyerID})
}

func (r *MongoLawyerRepo) UpdateProfileFields(ctx context.Context, id string, fields bson.M) error {
	return database.SetByID(ctx, r.profiles, id, fields)
}

func (r *MongoLawyerRepo) IncrementProfile(ctx context.Context, id string, inc bson.M) error {
	matched, err := database.UpdateOne(ctx, r.profiles, bson.M{"id": id}, bson.M{
		"$inc": inc,
		"$set": bson.M{"updatedAt": time.Now()},
	})
	if err != nil {
		return err
	}
	if !matched {
		return fmt.Errorf("lawyer profile with id %s not found", id)
	}
	return nil
}

func (r *MongoLawyerRepo) ListProfiles(ctx context.Context, filter bson.M) ([]models.LawyerProfile, error) {
	opts := options.Find().SetSort(bson.D{{Key: "profileViews", Value: -1}})
	return database.FindMany[models.LawyerProfile](ctx, r.profiles, filter, opts)
}

func (r *MongoLawyerRepo) DeleteProfileByLawyerID(ctx context.Context, lawyerID string) error {
	ctx, cancel := context.WithTimeout(ctx, database.DefaultTimeout)
	defer cancel()
	if _, err := r.profiles.DeleteMany(ctx, bson.M{"lawyerId": lawyerID}); err != nil {
		return fmt.Errorf("failed to delete profile for lawyer %s: %w", lawyerID, err)
	}
	return nil
}

func (r *MongoLawyerRepo) CreateSubscription(ctx context.Context, sub *models.LawyerSubscription) error {
	stamp(&sub.CreatedAt, &sub.UpdatedAt)
	return database.InsertOne(ctx, r.subs, sub)
}

// GetSubscriptionByLawyerID returns the most recent subscription of the lawyer.
func (r *MongoLawyerRepo) GetSubscriptionByLawyerID(ctx context.Context, lawyerID string) (*models.LawyerSubscription, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	return database.FindOne[models.LawyerSubscription](ctx, r.subs, bson.M{"lawyerId": lawyerID}, opts)
}

func (r *MongoLawyerRepo) UpdateSubscriptionFields(ctx context.Context, id string, fields bson.M) error {
	return database.SetByID(ctx, r.subs, id, fields)
}

func (r *MongoLawyerRepo) UpdateSubscriptionByStripeID(ctx context.Context, stripeSubscriptionID string, fields bson.M) error {
	fields["updatedAt"] = time.Now()
	_, err := database.UpdateOne(ctx, r.subs, bson.M{"stripeSubscriptionId": stripeSubscriptionID}, bson.M{"$set": fields})
	return err
}

func (r *MongoLawyerRepo) ListSubscriptions(ctx context.Context, filter bson.M) ([]models.LawyerSubscription, error) {
	return database.FindMany[models.LawyerSubscription](ctx, r.subs, filter)
}

func (r *MongoLawyerRepo) CountSubscriptions(ctx context.Context, filter bson.M) (int64, error) {
	return database.Count(ctx, r.subs, filter)
}

func (r *MongoLawyerRepo) DeleteSubscriptionByLawyerID(ctx context.Context, lawyerID string) error {
	ctx, cancel := context.WithTimeout(ctx, database.DefaultTimeout)
	defer cancel()
	if _, err := r.subs.DeleteMany(ctx, bson.M{"lawyerId": lawyerID}); err != nil {
		return fmt.Errorf("failed to delete subscriptions for lawyer %s: %w", lawyerID, err)
	}
	return nil
}
