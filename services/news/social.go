package news

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"aliadolaboral/models"
	"aliadolaboral/utils"

	"go.uber.org/zap"
)

const (
	publicNewsURL = "https://aliadolaboral.com/news/"
	socialEvent   = "news.published"
)

var socialHashtags = []string{"#DerechosLaborales", "#AliadoLaboral", "#AbogadosMexico", "#JusticiaLaboral"}

// SocialPublisher forwards a published headline to the marketing automation.
type SocialPublisher interface {
	Publish(ctx context.Context, n *models.LegalNews) error
}

type socialPost struct {
	Event string          `json:"event"`
	Data  socialPostEntry `json:"data"`
}

type socialPostEntry struct {
	Title     string   `json:"title"`
	Content   string   `json:"content"`
	Category  string   `json:"category"`
	Link      string   `json:"link"`
	Timestamp string   `json:"timestamp"`
	Hashtags  []string `json:"hashtags"`
}

// WebhookPublisher posts headlines to a Zapier/Make style webhook. An empty URL turns it off.
type WebhookPublisher struct {
	URL  string
	HTTP *http.Client
}

func NewWebhookPublisher(url string) *WebhookPublisher {
	return &WebhookPublisher{URL: url, HTTP: &http.Client{Timeout: 10 * time.Second}}
}

func (p *WebhookPublisher) Publish(ctx context.Context, n *models.LegalNews) error {
	if p.URL == "" {
		utils.GetLogger().Debug("social webhook not configured, skipping broadcast", zap.String("newsId", n.ID))
		return nil
	}
	b, err := json.Marshal(socialPost{
		Event: socialEvent,
		Data: socialPostEntry{
			Title:     firstNonEmpty(n.ClickableTitle, n.Title),
			Content:   firstNonEmpty(n.LawyerSummary, n.WorkerSummary),
			Category:  "Legal",
			Link:      publicNewsURL + n.ID,
			Timestamp: n.CreatedAt.UTC().Format("2006-01-02T15:04:05.000Z"),
			Hashtags:  socialHashtags,
		},
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.URL, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("social webhook failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("social webhook failed: status %d", resp.StatusCode)
	}
	return nil
}

// shareSocial is best effort; a failed post never blocks publishing.
func (s *DefaultNewsService) shareSocial(ctx context.Context, n *models.LegalNews) {
	if s.Social == nil {
		return
	}
	if err := s.Social.Publish(ctx, n); err != nil {
		utils.GetLogger().Warn("news: social broadcast failed", zap.String("newsId", n.ID), zap.Error(err))
		return
	}
	utils.GetLogger().Info("news: shared to social webhook", zap.String("newsId", n.ID))
}
