package models

import "time"

const CaseStatusActive = "active"

// LegalCase is a worker's own case tracker, independent of marketplace requests.
type LegalCase struct {
	ID           string      `bson:"id" json:"id"`
	UserID       string      `bson:"userId" json:"userId"`
	Title        string      `bson:"title" json:"title"`
	EmployerName string      `bson:"employerName" json:"employerName"`
	StartDate    time.Time   `bson:"startDate" json:"startDate"`
	Status       string      `bson:"status" json:"status"`
	History      []CaseEvent `bson:"history" json:"history"`
	CreatedAt    time.Time   `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time   `bson:"updatedAt" json:"updatedAt"`
}

// CaseEvent is one entry on a case timeline.
type CaseEvent struct {
	ID          string    `bson:"id" json:"id"`
	CaseID      string    `bson:"caseId" json:"caseId"`
	EventType   string    `bson:"eventType" json:"eventType"`
	Description string    `bson:"description" json:"description"`
	OccurredAt  time.Time `bson:"occurredAt" json:"occurredAt"`
}

type CreateCaseRequest struct {
	Title        string    `json:"title"`
	EmployerName string    `json:"employerName"`
	StartDate    time.Time `json:"startDate"`
}

type AddCaseEventRequest struct {
	EventType   string    `json:"eventType"`
	Description string    `json:"description"`
	OccurredAt  time.Time `json:"occurredAt"`
}
