package models

// AIMessage is one turn of an assistant conversation.
type AIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// AIContext is the per-user conversation kept in Redis.
type AIContext struct {
	Persona string      `json:"persona"`
	History []AIMessage `json:"history"`
}

// AIChatRequest is the body of the assistant endpoint.
type AIChatRequest struct {
	Message string `json:"message"`
	Persona string `json:"persona"`
	Mode    string `json:"mode"`
}

// AIChatResponse is the assistant's reply.
type AIChatResponse struct {
	Reply          string `json:"reply"`
	Persona        string `json:"persona"`
	Model          string `json:"model"`
	RequiresLawyer bool   `json:"requiresLawyer"`
	TokensUsed     int    `json:"tokensUsed"`
}

// CaseAnalysis is the structured LLM assessment of a new request.
type CaseAnalysis struct {
	Resumen       string  `json:"resumen"`
	Urgencia      int     `json:"urgencia"`
	EsCaliente    bool    `json:"es_caliente"`
	EsColectivo   bool    `json:"es_colectivo"`
	EsMaquinaria  bool    `json:"es_maquinaria"`
	MontoEstimado float64 `json:"monto_estimado"`
	PrecioLead    float64 `json:"precio_sugerido_lead"`
}

// Personas and modes.
const (
	PersonaElias      = "elias"
	PersonaVeronica   = "veronica"
	ModeLegalDrafting = "LEGAL_DRAFTING"
)
