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

// LegalCases is an in-memory LegalCaseRepository.
type LegalCases struct {
	store *docStore
}

var _ repository.LegalCaseRepository = (*LegalCases)(nil)

func NewLegalCases() *LegalCases {
	return &LegalCases{store: newDocStore()}
}

func (l *LegalCases) Create(ctx context.Context, lc *models.LegalCase) error {
	now := time.Now()
	lc.CreatedAt, lc.UpdatedAt = now, now
	if lc.History == nil {
		lc.History = []models.CaseEvent{}
	}
	return l.store.put(lc.ID, lc)
}

func (l *LegalCases) GetByID(ctx context.Context, id string) (*models.LegalCase, error) {
	return first[models.LegalCase](l.store, bson.M{"id": id})
}

func (l *LegalCases) ListByUser(ctx context.Context, userID string) ([]models.LegalCase, error) {
	out, err := findAs[models.LegalCase](l.store, bson.M{"userId": userID})
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, err
}

func (l *LegalCases) AddEvent(ctx context.Context, id string, event models.CaseEvent) error {
	doc, err := normalize(event)
	if err != nil {
		return err
	}
	ok, err := l.store.push(id, "history", doc)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("legal case %s not found", id)
	}
	_, err = l.store.update(id, nil, nil, nil)
	return err
}

func (l *LegalCases) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	var n int64
	for _, d := range l.store.find(bson.M{"userId": userID}) {
		if l.store.remove(fmt.Sprint(d["id"])) {
			n++
		}
	}
	return n, nil
}

// Vault is an in-memory VaultRepository.
type Vault struct {
	store *docStore
}

var _ repository.VaultRepository = (*Vault)(nil)

func NewVault() *Vault {
	return &Vault{store: newDocStore()}
}

func (v *Vault) Create(ctx context.Context, file *models.VaultFile) error {
	file.CreatedAt = time.Now()
	return v.store.put(file.ID, file)
}

func (v *Vault) GetByID(ctx context.Context, id string) (*models.VaultFile, error) {
	return first[models.VaultFile](v.store, bson.M{"id": id})
}

func (v *Vault) ListByUser(ctx context.Context, userID string) ([]models.VaultFile, error) {
	out, err := findAs[models.VaultFile](v.store, bson.M{"userId": userID})
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, err
}

func (v *Vault) Delete(ctx context.Context, id string) error {
	if !v.store.remove(id) {
		return fmt.Errorf("vault file %s not found", id)
	}
	return nil
}

func (v *Vault) Count(ctx context.Context) (int64, error) {
	return int64(len(v.store.find(nil))), nil
}

func (v *Vault) CountOwners(ctx context.Context) (int64, error) {
	owners := map[string]bool{}
	for _, d := range v.store.find(nil) {
		owners[fmt.Sprint(d["userId"])] = true
	}
	return int64(len(owners)), nil
}
