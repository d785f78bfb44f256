package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"aliadolaboral/models"
	"aliadolaboral/utils"

	"go.uber.org/zap"
)

var personaPrompts = map[string]string{
	models.PersonaElias: `Eres Elías, un asistente de orientación laboral claro, empático y práctico.
Ayudas a trabajadores mexicanos a entender sus derechos según la Ley Federal del Trabajo.
No eres abogado ni das asesoría legal vinculante. En casos complejos recomiendas contactar a un abogado verificado.
Responde con pasos sencillos y evita la jerga legal.`,
	models.PersonaVeronica: `Eres Verónica, una asistente con enfoque legal preventivo, formal pero cálida.
Priorizas la educación sobre derechos laborales y explicas el porqué legal.
No eres abogada ni das asesoría personalizada. Usa frases como "según la Ley Federal del Trabajo" y evita afirmar hechos definitivos.
En casos complejos recomiendas contactar a un abogado verificado.`,
}

var complexKeywords = []string{"demandar", "juzgado", "despido injustificado", "violencia", "amenaza"}

// LegalDisclaimer is appended to every assistant reply.
const LegalDisclaimer = "\n\n> ⚖️ *Aviso Legal*: Esta respuesta es informativa y generada por IA. No constituye asesoría legal vinculante. Para casos reales, contacta a un abogado verificado en la sección \"Solicitar Abogado\"."

// AIService is the assistant and the LLM backed helpers other services use.
type AIService interface {
	Chat(ctx context.Context, user *models.User, req models.AIChatRequest) (*models.AIChatResponse, error)
	ClearConversation(ctx context.Context, userID string) error
	// Complete runs a single prompt, using the larger model when smart is set.
	Complete(ctx context.Context, system, prompt string, smart bool) (string, error)
	AnalyzeCase(ctx context.Context, req *models.ContactRequest) (*models.CaseAnalysis, error)
}

type DefaultAIService struct {
	Primary  LLM
	Fallback LLM
	Store    *RedisContextStore
	Quota    *TokenQuota
	Now      func() time.Time
}

func NewDefaultAIService(primary, fallback LLM, store *RedisContextStore, quota *TokenQuota) *DefaultAIService {
	return &DefaultAIService{Primary: primary, Fallback: fallback, Store: store, Quota: quota, Now: time.Now}
}

func (s *DefaultAIService) complete(ctx context.Context, model string, msgs []models.AIMessage, maxTokens int) (*Completion, error) {
	out, err := s.Primary.Complete(ctx, model, msgs, maxTokens)
	if err == nil {
		return out, nil
	}
	if s.Fallback == nil {
		return nil, err
	}
	utils.GetLogger().Warn("primary LLM failed, using fallback", zap.Error(err))
	return s.Fallback.Complete(ctx, model, msgs, maxTokens)
}

// isQuotaBound reports whether the user is limited to the free daily allowance.
func isQuotaBound(user *models.User) bool {
	return user != nil && user.Role == utils.RoleWorker && (user.Plan == "" || user.Plan == models.PlanFree)
}

func (s *DefaultAIService) Chat(ctx context.Context, user *models.User, req models.AIChatRequest) (*models.AIChatResponse, error) {
	if strings.TrimSpace(req.Message) == "" {
		return nil, utils.BadRequest("El mensaje es requerido")
	}
	now := s.Now()

	if isQuotaBound(user) && s.Quota != nil {
		exceeded, err := s.Quota.Exceeded(ctx, user.ID, now)
		if err != nil {
			utils.GetLogger().Warn("quota check failed", zap.String("userId", user.ID), zap.Error(err))
		}
		if exceeded {
			return nil, utils.TooManyRequests("Límite diario excedido 🛑").
				WithExtra("message", "Has alcanzado tu límite diario de consultas gratuitas. Suscríbete a Premium para continuar ilimitadamente.").
				WithExtra("isQuotaError", true)
		}
	}

	persona := req.Persona
	system, ok := personaPrompts[persona]
	if !ok {
		persona = models.PersonaElias
		system = personaPrompts[persona]
	}

	aiCtx, err := s.Store.Get(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("load context: %w", err)
	}
	if aiCtx.Persona != persona {
		aiCtx = &models.AIContext{Persona: persona}
	}
	aiCtx.History = append(aiCtx.History, models.AIMessage{Role: "user", Content: req.Message})

	model, maxTokens := ModelFast, 250
	if req.Mode == models.ModeLegalDrafting {
		model, maxTokens = ModelSmart, 2048
	}

	msgs := append([]models.AIMessage{{Role: "system", Content: system}}, TrimHistory(aiCtx.History)...)
	out, err := s.complete(ctx, model, msgs, maxTokens)
	if err != nil {
		return nil, utils.Internal("Error interno de IA", "El servicio de IA informa un error temporal. Intenta de nuevo.")
	}
	reply := out.Text
	if reply == "" {
		reply = "Lo siento, hubo un error de conexión."
	}

	aiCtx.History = append(aiCtx.History, models.AIMessage{Role: "assistant", Content: reply})
	if err := s.Store.Set(ctx, user.ID, aiCtx); err != nil {
		utils.GetLogger().Warn("failed to save AI context", zap.Error(err))
	}
	if isQuotaBound(user) && s.Quota != nil {
		if err := s.Quota.Add(ctx, user.ID, out.TotalTokens, now); err != nil {
			utils.GetLogger().Warn("failed to track token usage", zap.Error(err))
		}
	}

	return &models.AIChatResponse{
		Reply:          reply + LegalDisclaimer,
		Persona:        persona,
		Model:          out.Model,
		RequiresLawyer: RequiresLawyer(reply),
		TokensUsed:     out.TotalTokens,
	}, nil
}

// RequiresLawyer reports whether a reply mentions a situation that needs a lawyer.
func RequiresLawyer(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range complexKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func (s *DefaultAIService) ClearConversation(ctx context.Context, userID string) error {
	return s.Store.Clear(ctx, userID)
}

func (s *DefaultAIService) Complete(ctx context.Context, system, prompt string, smart bool) (string, error) {
	model, maxTokens := ModelFast, 1024
	if smart {
		model, maxTokens = ModelSmart, 2048
	}
	msgs := []models.AIMessage{{Role: "user", Content: prompt}}
	if system != "" {
		msgs = append([]models.AIMessage{{Role: "system", Content: system}}, msgs...)
	}
	out, err := s.complete(ctx, model, msgs, maxTokens)
	if err != nil {
		return "", err
	}
	return out.Text, nil
}

const caseAnalysisPrompt = `Actúa como consultor legal senior y analista de negocio de la plataforma "Aliado Laboral".
Analiza el relato del trabajador y responde SOLO con JSON estricto con esta forma:
{"resumen": string, "urgencia": 1-10, "es_caliente": boolean, "es_colectivo": boolean, "es_maquinaria": boolean, "monto_estimado": number, "precio_sugerido_lead": number}
Reglas: si menciona maquinaria, robots, automatización o cierre de línea, es_maquinaria=true (Art. 439 LFT).
Si hay más de un afectado, es_colectivo=true. precio_sugerido_lead entre 150 y 500 MXN según el valor del caso.
El resumen es un pitch de dos líneas para el abogado.

Tipo de caso: %s
Empresa: %s
Antigüedad (años): %.1f
Monto estimado declarado: %.2f
Relato: %s`

var jsonObject = regexp.MustCompile(`(?s)\{.*\}`)

// ParseJSONObject extracts the first JSON object from an LLM reply into out.
func ParseJSONObject(text string, out interface{}) error {
	raw := jsonObject.FindString(text)
	if raw == "" {
		return fmt.Errorf("no JSON object in model output")
	}
	return json.Unmarshal([]byte(raw), out)
}

func (s *DefaultAIService) AnalyzeCase(ctx context.Context, req *models.ContactRequest) (*models.CaseAnalysis, error) {
	prompt := fmt.Sprintf(caseAnalysisPrompt, req.CaseType, req.EmployerName, req.YearsOfService, req.EstimatedSeverance, req.Description)
	text, err := s.Complete(ctx, "", prompt, true)
	if err != nil {
		return nil, err
	}
	var analysis models.CaseAnalysis
	if err := ParseJSONObject(text, &analysis); err != nil {
		return nil, fmt.Errorf("failed to parse case analysis: %w", err)
	}
	return &analysis, nil
}
