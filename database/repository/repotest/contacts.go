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

// Contacts is an in-memory ContactRepository.
type Contacts struct {
	store *docStore
}

var _ repository.ContactRepository = (*Contacts)(nil)

func NewContacts(reqs ...*models.ContactRequest) *Contacts {
	c := &Contacts{store: newDocStore()}
	for _, r := range reqs {
		_ = c.Create(context.Background(), r)
	}
	return c
}

// SetClock makes updatedAt stamps follow now instead of the wall clock.
func (c *Contacts) SetClock(now func() time.Time) {
	c.store.mu.Lock()
	c.store.clock = now
	c.store.mu.Unlock()
}

func (c *Contacts) Create(ctx context.Context, req *models.ContactRequest) error {
	if req.CreatedAt.IsZero() {
		req.CreatedAt = c.store.now()
	}
	req.UpdatedAt = req.CreatedAt
	return c.store.put(req.ID, req)
}

func (c *Contacts) GetByID(ctx context.Context, id string) (*models.ContactRequest, error) {
	var req models.ContactRequest
	ok, err := c.store.get(id, &req)
	if !ok || err != nil {
		return nil, err
	}
	return &req, nil
}

// MustGet returns the stored request or panics; for assertions.
func (c *Contacts) MustGet(id string) *models.ContactRequest {
	req, err := c.GetByID(context.Background(), id)
	if err != nil || req == nil {
		panic(fmt.Sprintf("contact request %s not found: %v", id, err))
	}
	return req
}

func (c *Contacts) UpdateFields(ctx context.Context, id string, fields bson.M) error {
	ok, err := c.store.update(id, nil, fields, nil)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("contact request with id %s not found", id)
	}
	return nil
}

func (c *Contacts) UpdateFieldsIf(ctx context.Context, id string, cond bson.M, fields bson.M) (bool, error) {
	return c.store.update(id, cond, fields, nil)
}

func (c *Contacts) Apply(ctx context.Context, id string, update bson.M) error {
	set, _ := update["$set"].(bson.M)
	inc, _ := update["$inc"].(bson.M)
	ok, err := c.store.update(id, nil, set, inc)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("contact request with id %s not found", id)
	}
	if push, ok := update["$push"].(bson.M); ok {
		for field, v := range push {
			if _, err := c.store.push(id, field, v); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *Contacts) Delete(ctx context.Context, id string) error {
	if !c.store.remove(id) {
		return fmt.Errorf("contact request with id %s not found", id)
	}
	return nil
}

func newestFirst(reqs []models.ContactRequest) []models.ContactRequest {
	sort.SliceStable(reqs, func(i, j int) bool { return reqs[i].CreatedAt.After(reqs[j].CreatedAt) })
	return reqs
}

func (c *Contacts) ListByWorker(ctx context.Context, workerID string) ([]models.ContactRequest, error) {
	reqs, err := findAs[models.ContactRequest](c.store, bson.M{"workerId": workerID})
	return newestFirst(reqs), err
}

func (c *Contacts) ListByLawyerProfile(ctx context.Context, profileID, status string) ([]models.ContactRequest, error) {
	filter := bson.M{"lawyerProfileId": profileID}
	if status != "" {
		filter["status"] = status
	}
	reqs, err := findAs[models.ContactRequest](c.store, filter)
	return newestFirst(reqs), err
}

func (c *Contacts) List(ctx context.Context, filter bson.M, limit int64) ([]models.ContactRequest, error) {
	reqs, err := findAs[models.ContactRequest](c.store, filter)
	if err != nil {
		return nil, err
	}
	reqs = newestFirst(reqs)
	if limit > 0 && int64(len(reqs)) > limit {
		reqs = reqs[:limit]
	}
	return reqs, nil
}

func (c *Contacts) Count(ctx context.Context, filter bson.M) (int64, error) {
	return int64(len(c.store.find(filter))), nil
}

func (c *Contacts) Sum(ctx context.Context, filter bson.M, field string) (float64, error) {
	var total float64
	for _, d := range c.store.find(filter) {
		total += toFloat(lookup(d, field))
	}
	return total, nil
}

func (c *Contacts) FindStaleChats(ctx context.Context, cutoff time.Time) ([]models.ContactRequest, error) {
	return findAs[models.ContactRequest](c.store, bson.M{
		"status":               models.StatusAccepted,
		"subStatus":            models.SubChatActive,
		"lastLawyerActivityAt": bson.M{"$lt": cutoff},
	})
}

func (c *Contacts) FindUncontacted(ctx context.Context, cutoff time.Time) ([]models.ContactRequest, error) {
	return findAs[models.ContactRequest](c.store, bson.M{
		"status":     models.StatusAccepted,
		"crmStatus":  models.CRMNew,
		"acceptedAt": bson.M{"$lt": cutoff},
	})
}

func (c *Contacts) FindInactive(ctx context.Context, cutoff time.Time) ([]models.ContactRequest, error) {
	return findAs[models.ContactRequest](c.store, bson.M{
		"status":               models.StatusAccepted,
		"closedAt":             bson.M{"$exists": false},
		"crmStatus":            bson.M{"$nin": bson.A{models.CRMClosedWon, models.CRMClosedLost}},
		"subStatus":            bson.M{"$ne": models.SubNeedsAttention},
		"lastLawyerActivityAt": bson.M{"$lt": cutoff},
	})
}

func (c *Contacts) ListPendingPayments(ctx context.Context) ([]models.ContactRequest, error) {
	reqs, err := findAs[models.ContactRequest](c.store, bson.M{
		"$or":    bson.A{bson.M{"workerPaid": false}, bson.M{"lawyerPaid": false}},
		"status": bson.M{"$nin": bson.A{models.StatusRejected, models.StatusCanceled, models.StatusExpired}},
	})
	return newestFirst(reqs), err
}

func (c *Contacts) CollectiveCases(ctx context.Context, minCount int) ([]models.CollectiveCase, error) {
	reqs, err := findAs[models.ContactRequest](c.store, nil)
	if err != nil {
		return nil, err
	}
	byEmployer := map[string]*models.CollectiveCase{}
	var names []string
	for _, r := range reqs {
		if r.EmployerName == "" {
			continue
		}
		cc, ok := byEmployer[r.EmployerName]
		if !ok {
			cc = &models.CollectiveCase{EmployerName: r.EmployerName}
			byEmployer[r.EmployerName] = cc
			names = append(names, r.EmployerName)
		}
		cc.Count++
		cc.TotalSeverance += r.EstimatedSeverance
	}
	var out []models.CollectiveCase
	for _, n := range names {
		if cc := byEmployer[n]; cc.Count > minCount {
			out = append(out, *cc)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out, nil
}
