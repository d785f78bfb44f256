package models

// LegalSection is a published legal document.
type LegalSection struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Summary  string `json:"summary"`
	Content  string `json:"content"`
	Audience string `json:"audience"`
	Version  string `json:"version"`
	Updated  string `json:"updated"`
}

// AudienceAll marks documents shown to every role.
const AudienceAll = "all"
