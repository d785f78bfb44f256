package repotest

import (
	"context"
	"fmt"
	"time"

	"aliadolaboral/database/repository"
	"aliadolaboral/models"

	"go.mongodb.org/mongo-driver/bson"
)

// Profiles is an in-memory ProfileRepository.
type Profiles struct {
	workers    *docStore
	workerSubs *docStore
	pymes      *docStore
}

var _ repository.ProfileRepository = (*Profiles)(nil)

func NewProfiles() *Profiles {
	return &Profiles{workers: newDocStore(), workerSubs: newDocStore(), pymes: newDocStore()}
}

func (p *Profiles) GetWorkerProfile(ctx context.Context, userID string) (*models.WorkerProfile, error) {
	return first[models.WorkerProfile](p.workers, bson.M{"userId": userID})
}

func (p *Profiles) UpsertWorkerProfile(ctx context.Context, profile *models.WorkerProfile) error {
	existing, err := p.GetWorkerProfile(ctx, profile.UserID)
	if err != nil {
		return err
	}
	now := time.Now()
	profile.UpdatedAt = now
	if existing == nil {
		profile.CreatedAt = now
		return p.workers.put(profile.ID, profile)
	}
	_, err = p.workers.update(existing.ID, nil, bson.M{
		"occupation":     profile.Occupation,
		"industry":       profile.Industry,
		"state":          profile.State,
		"employerName":   profile.EmployerName,
		"monthlySalary":  profile.MonthlySalary,
		"yearsOfService": profile.YearsOfService,
	}, nil)
	return err
}

func (p *Profiles) ListPeerSalaries(ctx context.Context, occupation, excludeUserID string) ([]float64, error) {
	peers, err := findAs[models.WorkerProfile](p.workers, bson.M{
		"occupation":    occupation,
		"userId":        bson.M{"$ne": excludeUserID},
		"monthlySalary": bson.M{"$gt": 0},
	})
	if err != nil {
		return nil, err
	}
	out := make([]float64, 0, len(peers))
	for _, peer := range peers {
		out = append(out, peer.MonthlySalary)
	}
	return out, nil
}

func (p *Profiles) CreateWorkerSubscription(ctx context.Context, sub *models.WorkerSubscription) error {
	now := time.Now()
	sub.CreatedAt, sub.UpdatedAt = now, now
	return p.workerSubs.put(sub.ID, sub)
}

func (p *Profiles) GetWorkerSubscription(ctx context.Context, userID string) (*models.WorkerSubscription, error) {
	subs, err := findAs[models.WorkerSubscription](p.workerSubs, bson.M{"userId": userID})
	if err != nil || len(subs) == 0 {
		return nil, err
	}
	return &subs[len(subs)-1], nil
}

func (p *Profiles) UpdateWorkerSubscription(ctx context.Context, id string, fields bson.M) error {
	return setOrFail(p.workerSubs, "worker subscription", id, fields)
}

func (p *Profiles) CountWorkerSubscriptions(ctx context.Context, filter bson.M) (int64, error) {
	return int64(len(p.workerSubs.find(filter))), nil
}

func (p *Profiles) CreatePymeProfile(ctx context.Context, profile *models.PymeProfile) error {
	now := time.Now()
	profile.CreatedAt, profile.UpdatedAt = now, now
	if profile.Employees == nil {
		profile.Employees = []models.Employee{}
	}
	return p.pymes.put(profile.ID, profile)
}

func (p *Profiles) GetPymeProfile(ctx context.Context, userID string) (*models.PymeProfile, error) {
	return first[models.PymeProfile](p.pymes, bson.M{"userId": userID})
}

func (p *Profiles) UpdatePymeProfile(ctx context.Context, id string, fields bson.M) error {
	return setOrFail(p.pymes, "pyme profile", id, fields)
}

func (p *Profiles) AddEmployee(ctx context.Context, profileID string, employee models.Employee) error {
	doc, err := normalize(employee)
	if err != nil {
		return err
	}
	ok, err := p.pymes.push(profileID, "employees", doc)
	if err != nil {
		return err
	}
	if !ok {
		return setOrFail(p.pymes, "pyme profile", profileID, nil)
	}
	return nil
}

func (p *Profiles) AddPymeDocument(ctx context.Context, profileID string, d models.PymeDocument, riskDrop, riskFloor int) (*models.PymeProfile, error) {
	doc, err := normalize(d)
	if err != nil {
		return nil, err
	}
	p.pymes.mu.Lock()
	stored, ok := p.pymes.docs[profileID]
	if !ok {
		p.pymes.mu.Unlock()
		return nil, fmt.Errorf("pyme profile with id %s not found", profileID)
	}
	risk := int(toFloat(stored["riskScore"])) - riskDrop
	if risk < riskFloor {
		risk = riskFloor
	}
	list, _ := stored["documents"].(bson.A)
	stored["documents"] = append(list, doc)
	stored["riskScore"] = risk
	stored["updatedAt"] = p.pymes.now()
	p.pymes.mu.Unlock()

	var out models.PymeProfile
	if _, err := p.pymes.get(profileID, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
