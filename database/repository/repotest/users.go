package repotest

import (
	"context"
	"fmt"
	"time"

	"aliadolaboral/database/repository"
	"aliadolaboral/models"

	"go.mongodb.org/mongo-driver/bson"
)

// Users is an in-memory UserRepository.
type Users struct {
	store *docStore
}

var _ repository.UserRepository = (*Users)(nil)

func NewUsers(users ...*models.User) *Users {
	u := &Users{store: newDocStore()}
	for _, user := range users {
		_ = u.Create(context.Background(), user)
	}
	return u
}

func (u *Users) one(filter bson.M) (*models.User, error) {
	found, err := findAs[models.User](u.store, filter)
	if err != nil || len(found) == 0 {
		return nil, err
	}
	return &found[0], nil
}

func (u *Users) Create(ctx context.Context, user *models.User) error {
	now := time.Now()
	user.CreatedAt, user.UpdatedAt = now, now
	return u.store.put(user.ID, user)
}

func (u *Users) GetByID(ctx context.Context, id string) (*models.User, error) {
	return u.one(bson.M{"id": id})
}

func (u *Users) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return u.one(bson.M{"email": email})
}

func (u *Users) GetByFirebaseUID(ctx context.Context, uid string) (*models.User, error) {
	return u.one(bson.M{"firebaseUid": uid})
}

func (u *Users) GetByIDs(ctx context.Context, ids []string) (map[string]models.User, error) {
	out := make(map[string]models.User, len(ids))
	for _, id := range ids {
		if user, _ := u.GetByID(ctx, id); user != nil {
			out[id] = *user
		}
	}
	return out, nil
}

func (u *Users) UpdateFields(ctx context.Context, id string, fields bson.M) error {
	ok, err := u.store.update(id, nil, fields, nil)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("user with id %s not found", id)
	}
	return nil
}

func (u *Users) Delete(ctx context.Context, id string) error {
	if !u.store.remove(id) {
		return fmt.Errorf("user with id %s not found", id)
	}
	return nil
}

func (u *Users) ListByRole(ctx context.Context, role string, limit int64) ([]models.User, error) {
	users, err := findAs[models.User](u.store, bson.M{"role": role})
	if limit > 0 && int64(len(users)) > limit {
		users = users[:limit]
	}
	return users, err
}

func (u *Users) ListWithPushToken(ctx context.Context, role string) ([]models.User, error) {
	filter := bson.M{"pushToken": bson.M{"$nin": bson.A{nil, ""}}}
	if role != "" {
		filter["role"] = role
	}
	return findAs[models.User](u.store, filter)
}

func (u *Users) Count(ctx context.Context, filter bson.M) (int64, error) {
	return int64(len(u.store.find(filter))), nil
}

// MustGet returns the stored user or panics.
func (u *Users) MustGet(id string) *models.User {
	user, _ := u.GetByID(context.Background(), id)
	if user == nil {
		panic("user " + id + " not found")
	}
	return user
}
