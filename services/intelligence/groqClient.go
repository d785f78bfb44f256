package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"aliadolaboral/models"

	"github.com/tidwall/gjson"
)

// Groq models.
const (
	ModelFast  = "llama-3.1-8b-instant"
	ModelSmart = "llama-3.3-70b-versatile"
)

// Completion is one chat-completions answer.
type Completion struct {
	Text        string
	TotalTokens int
	Model       string
}

// LLM produces chat completions.
type LLM interface {
	Complete(ctx context.Context, model string, messages []models.AIMessage, maxTokens int) (*Completion, error)
}

// GroqClient calls Groq's OpenAI compatible chat-completions endpoint.
type GroqClient struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
}

func NewGroqClient(baseURL, apiKey string) *GroqClient {
	return &GroqClient{BaseURL: baseURL, APIKey: apiKey, HTTP: &http.Client{Timeout: 60 * time.Second}}
}

func (g *GroqClient) Complete(ctx context.Context, model string, messages []models.AIMessage, maxTokens int) (*Completion, error) {
	if g.APIKey == "" {
		return nil, fmt.Errorf("groq api key not configured")
	}
	body, err := json.Marshal(map[string]interface{}{
		"model":       model,
		"messages":    messages,
		"temperature": 0.5,
		"max_tokens":  maxTokens,
	})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+g.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("groq request failed: %w", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("groq status %d: %s", resp.StatusCode, gjson.GetBytes(raw, "error.message").String())
	}

	res := gjson.ParseBytes(raw)
	return &Completion{
		Text:        res.Get("choices.0.message.content").String(),
		TotalTokens: int(res.Get("usage.total_tokens").Int()),
		Model:       res.Get("model").String(),
	}, nil
}

// GeminiLLM adapts GeminiClient to the LLM interface by flattening the conversation.
type GeminiLLM struct {
	Client *GeminiClient
}

func (g GeminiLLM) Complete(ctx context.Context, _ string, messages []models.AIMessage, _ int) (*Completion, error) {
	var buf bytes.Buffer
	for _, m := range messages {
		fmt.Fprintf(&buf, "[%s]\n%s\n\n", m.Role, m.Content)
	}
	text, err := g.Client.GenerateContent(ctx, buf.String())
	if err != nil {
		return nil, err
	}
	return &Completion{Text: text, Model: "gemini"}, nil
}
