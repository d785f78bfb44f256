package models

import "time"

// LegalNews is a processed labor-law headline.
type LegalNews struct {
	ID             string    `bson:"id" json:"id"`
	Title          string    `bson:"title" json:"title"`
	Link           string    `bson:"link" json:"link"`
	Source         string    `bson:"source,omitempty" json:"source,omitempty"`
	ImageURL       string    `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`
	ClickableTitle string    `bson:"clickableTitle" json:"clickableTitle"`
	WorkerSummary  string    `bson:"workerSummary" json:"workerSummary"`
	PymeSummary    string    `bson:"pymeSummary" json:"pymeSummary"`
	LawyerSummary  string    `bson:"lawyerSummary" json:"lawyerSummary"`
	QuizQuestion   string    `bson:"quizQuestion,omitempty" json:"quizQuestion,omitempty"`
	OriginalText   string    `bson:"originalText,omitempty" json:"-"`
	PublishedAt    time.Time `bson:"publishedAt" json:"publishedAt"`
	CreatedAt      time.Time `bson:"createdAt" json:"createdAt"`
}

// NewsFeedItem is the role-specific view of a headline.
type NewsFeedItem struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Summary      string    `json:"summary"`
	Link         string    `json:"link,omitempty"`
	ImageURL     string    `json:"imageUrl,omitempty"`
	QuizQuestion string    `json:"quizQuestion,omitempty"`
	RoleContext  string    `json:"roleContext"`
	PublishedAt  time.Time `json:"publishedAt"`
}

// CreateNewsRequest is the admin body for manual headlines.
// When only OriginalText is given the summaries are written by the model.
type CreateNewsRequest struct {
	OriginalText  string `json:"originalText"`
	Title         string `json:"title"`
	Link          string `json:"link"`
	WorkerSummary string `json:"workerSummary"`
	PymeSummary   string `json:"pymeSummary"`
	LawyerSummary string `json:"lawyerSummary"`
	ImageURL      string `json:"imageUrl"`
}
