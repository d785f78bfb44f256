package repotest

import (
	"context"
	"fmt"
	"sort"
	"time"

	"aliadolaboral/database/repository"
	"aliadolaboral/models"

	"go.mongodb.org/mongo-driver/bson"
)

// Lawyers is an in-memory LawyerRepository.
type Lawyers struct {
	lawyers  *docStore
	profiles *docStore
	subs     *docStore
}

var _ repository.LawyerRepository = (*Lawyers)(nil)

func NewLawyers() *Lawyers {
	return &Lawyers{lawyers: newDocStore(), profiles: newDocStore(), subs: newDocStore()}
}

func first[T any](s *docStore, filter bson.M) (*T, error) {
	found, err := findAs[T](s, filter)
	if err != nil || len(found) == 0 {
		return nil, err
	}
	return &found[0], nil
}

func setOrFail(s *docStore, kind, id string, fields bson.M) error {
	ok, err := s.update(id, nil, fields, nil)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%s with id %s not found", kind, id)
	}
	return nil
}

func (l *Lawyers) CreateLawyer(ctx context.Context, lawyer *models.Lawyer) error {
	now := time.Now()
	lawyer.CreatedAt, lawyer.UpdatedAt = now, now
	return l.lawyers.put(lawyer.ID, lawyer)
}

func (l *Lawyers) GetLawyerByID(ctx context.Context, id string) (*models.Lawyer, error) {
	return first[models.Lawyer](l.lawyers, bson.M{"id": id})
}

func (l *Lawyers) GetLawyerByUserID(ctx context.Context, userID string) (*models.Lawyer, error) {
	return first[models.Lawyer](l.lawyers, bson.M{"userId": userID})
}

func (l *Lawyers) UpdateLawyerFields(ctx context.Context, id string, fields bson.M) error {
	return setOrFail(l.lawyers, "lawyer", id, fields)
}

func (l *Lawyers) IncrementStrikes(ctx context.Context, id string) (*models.Lawyer, error) {
	ok, err := l.lawyers.update(id, nil, nil, bson.M{"strikes": 1})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("lawyer with id %s not found", id)
	}
	return l.GetLawyerByID(ctx, id)
}

func (l *Lawyers) DeleteLawyer(ctx context.Context, id string) error {
	l.lawyers.remove(id)
	return nil
}

func (l *Lawyers) ListLawyers(ctx context.Context, filter bson.M, limit int64) ([]models.Lawyer, error) {
	out, err := findAs[models.Lawyer](l.lawyers, filter)
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, err
}

func (l *Lawyers) CountLawyers(ctx context.Context, filter bson.M) (int64, error) {
	return int64(len(l.lawyers.find(filter))), nil
}

func (l *Lawyers) CreateProfile(ctx context.Context, profile *models.LawyerProfile) error {
	now := time.Now()
	profile.CreatedAt, profile.UpdatedAt = now, now
	return l.profiles.put(profile.ID, profile)
}

func (l *Lawyers) GetProfileByID(ctx context.Context, id string) (*models.LawyerProfile, error) {
	return first[models.LawyerProfile](l.profiles, bson.M{"id": id})
}

func (l *Lawyers) GetProfileByLawyerID(ctx context.Context, lawyerID string) (*models.LawyerProfile, error) {
	return first[models.LawyerProfile](l.profiles, bson.M{"lawyerId": lawyerID})
}

func (l *Lawyers) UpdateProfileFields(ctx context.Context, id string, fields bson.M) error {
	return setOrFail(l.profiles, "lawyer profile", id, fields)
}

func (l *Lawyers) IncrementProfile(ctx context.Context, id string, inc bson.M) error {
	ok, err := l.profiles.update(id, nil, nil, inc)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("lawyer profile with id %s not found", id)
	}
	return nil
}

func (l *Lawyers) ListProfiles(ctx context.Context, filter bson.M) ([]models.LawyerProfile, error) {
	out, err := findAs[models.LawyerProfile](l.profiles, filter)
	sort.SliceStable(out, func(i, j int) bool { return out[i].ProfileViews > out[j].ProfileViews })
	return out, err
}

func (l *Lawyers) DeleteProfileByLawyerID(ctx context.Context, lawyerID string) error {
	for _, d := range l.profiles.find(bson.M{"lawyerId": lawyerID}) {
		l.profiles.remove(fmt.Sprint(d["id"]))
	}
	return nil
}

func (l *Lawyers) CreateSubscription(ctx context.Context, sub *models.LawyerSubscription) error {
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = time.Now()
	}
	sub.UpdatedAt = sub.CreatedAt
	return l.subs.put(sub.ID, sub)
}

func (l *Lawyers) GetSubscriptionByLawyerID(ctx context.Context, lawyerID string) (*models.LawyerSubscription, error) {
	subs, err := findAs[models.LawyerSubscription](l.subs, bson.M{"lawyerId": lawyerID})
	if err != nil || len(subs) == 0 {
		return nil, err
	}
	latest := subs[0]
	for _, s := range subs[1:] {
		if s.CreatedAt.After(latest.CreatedAt) {
			latest = s
		}
	}
	return &latest, nil
}

func (l *Lawyers) UpdateSubscriptionFields(ctx context.Context, id string, fields bson.M) error {
	return setOrFail(l.subs, "subscription", id, fields)
}

func (l *Lawyers) UpdateSubscriptionByStripeID(ctx context.Context, stripeSubscriptionID string, fields bson.M) error {
	for _, d := range l.subs.find(bson.M{"stripeSubscriptionId": stripeSubscriptionID}) {
		if _, err := l.subs.update(fmt.Sprint(d["id"]), nil, fields, nil); err != nil {
			return err
		}
		break
	}
	return nil
}

func (l *Lawyers) ListSubscriptions(ctx context.Context, filter bson.M) ([]models.LawyerSubscription, error) {
	return findAs[models.LawyerSubscription](l.subs, filter)
}

func (l *Lawyers) CountSubscriptions(ctx context.Context, filter bson.M) (int64, error) {
	return int64(len(l.subs.find(filter))), nil
}

func (l *Lawyers) DeleteSubscriptionByLawyerID(ctx context.Context, lawyerID string) error {
	for _, d := range l.subs.find(bson.M{"lawyerId": lawyerID}) {
		l.subs.remove(fmt.Sprint(d["id"]))
	}
	return nil
}

// SeedLawyer stores a user, lawyer, profile and subscription in one go and returns the profile.
func (l *Lawyers) SeedLawyer(users *Users, userID, plan string, verified bool) *models.LawyerProfile {
	ctx := context.Background()
	_ = users.Create(ctx, &models.User{ID: userID, Email: userID + "@example.com", FullName: "Lic. " + userID, Role: "lawyer", Phone: "5512345678"})
	lawyerID := "lawyer-" + userID
	_ = l.CreateLawyer(ctx, &models.Lawyer{ID: lawyerID, UserID: userID, LicenseNumber: "CED-" + userID, IsVerified: verified, Status: models.LawyerActive})
	profile := &models.LawyerProfile{ID: "profile-" + userID, LawyerID: lawyerID, UserID: userID, DisplayName: "Lic. " + userID}
	_ = l.CreateProfile(ctx, profile)
	if plan != "" {
		_ = l.CreateSubscription(ctx, &models.LawyerSubscription{ID: "sub-" + userID, LawyerID: lawyerID, UserID: userID, Plan: plan, Status: models.SubActive})
	}
	return profile
}
