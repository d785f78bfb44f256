package models

// PushPayload is the queued push message for one recipient.
type PushPayload struct {
	UserID string            `json:"userId"`
	Token  string            `json:"token,omitempty"`
	Title  string            `json:"title"`
	Body   string            `json:"body"`
	Data   map[string]string `json:"data,omitempty"`
}

// BroadcastPayload targets every user of a role, or everyone when Role is empty.
type BroadcastPayload struct {
	Role  string            `json:"role,omitempty"`
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
}

// CaseAnalysisPayload asks the worker to run LLM analysis on a request.
type CaseAnalysisPayload struct {
	RequestID string `json:"requestId"`
}
