package news

import (
	"context"
	"fmt"
	"hash/fnv"
	"regexp"
	"strings"
	"time"

	"aliadolaboral/models"
	"aliadolaboral/utils"

	"github.com/google/uuid"
	"github.com/mmcdole/gofeed"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

var stockImages = []string{
	"https://images.unsplash.com/photo-1589829085413-56de8ae18c73?auto=format&fit=crop&w=800&q=80",
	"https://images.unsplash.com/photo-1505664194779-8beaceb93744?auto=format&fit=crop&w=800&q=80",
	"https://images.unsplash.com/photo-1479142506502-19b3a3b7ff33?auto=format&fit=crop&w=800&q=80",
	"https://images.unsplash.com/photo-1555374018-13a8994ab246?auto=format&fit=crop&w=800&q=80",
	"https://images.unsplash.com/photo-1521791136064-7986c2920216?auto=format&fit=crop&w=800&q=80",
}

const editorPrompt = `Eres un editor experto de una App Laboral en México.
Solo procesa noticias que ocurran en MÉXICO o que afecten directamente al sistema laboral mexicano.
Reescribe la noticia para que sea útil y fácil de leer.
Responde ÚNICAMENTE con un objeto JSON válido, sin texto antes ni después:
{
  "titulo_clickeable": "Título corto y directo (máximo 15 palabras).",
  "resumen_trabajador": "Explicación sencilla para el empleado, sin tecnicismos.",
  "resumen_pyme": "Enfocado en el dueño de negocio. Tono urgente.",
  "resumen_abogado": "Enfoque técnico para abogados.",
  "pregunta_quiz": "Pregunta sencilla de opción múltiple (solo la pregunta)."
}`

const pendingSummary = "Resumen pendiente (IA analizando...)"

var fenceRe = regexp.MustCompile("```(?:json)?")

// stockImage picks a stable illustration for a headline.
func stockImage(key string) string {
	h := fnv.New32a()
	h.Write([]byte(key))
	return stockImages[int(h.Sum32())%len(stockImages)]
}

func feedRole(role string) string {
	switch role {
	case utils.RoleLawyer, utils.RolePyme, utils.RoleAdmin:
		return role
	}
	return utils.RoleWorker
}

func (s *DefaultNewsService) Feed(ctx context.Context, role string) ([]models.NewsFeedItem, error) {
	role = feedRole(role)
	if items, ok := s.cachedFeed(ctx, role); ok {
		return items, nil
	}
	list, err := s.Repo.ListNews(ctx, feedLimit, 0)
	if err != nil {
		return nil, utils.Internal("Error al obtener noticias", err.Error())
	}
	if len(list) == 0 {
		return []models.NewsFeedItem{{
			ID:           "welcome-news",
			Title:        "Bienvenido a Aliado Laboral",
			Summary:      "Mantente informado sobre las últimas noticias laborales, cambios en la ley y consejos para proteger tus derechos. ¡Pronto verás más contenido aquí!",
			ImageURL:     stockImages[0],
			QuizQuestion: "¿Sabías que tienes derecho a aguinaldo antes del 20 de diciembre?",
			RoleContext:  role,
			PublishedAt:  s.now(),
		}}, nil
	}
	items := make([]models.NewsFeedItem, 0, len(list))
	for _, n := range list {
		summary := n.WorkerSummary
		switch role {
		case utils.RoleLawyer:
			summary = n.LawyerSummary
		case utils.RolePyme, utils.RoleAdmin:
			summary = n.PymeSummary
		}
		title := n.ClickableTitle
		if title == "" {
			title = n.Title
		}
		items = append(items, models.NewsFeedItem{
			ID:           n.ID,
			Title:        title,
			Summary:      summary,
			Link:         n.Link,
			ImageURL:     n.ImageURL,
			QuizQuestion: n.QuizQuestion,
			RoleContext:  role,
			PublishedAt:  n.PublishedAt,
		})
	}
	s.storeFeed(ctx, role, items)
	return items, nil
}

func (s *DefaultNewsService) Create(ctx context.Context, in models.CreateNewsRequest, image *models.UploadedFile) (*models.LegalNews, error) {
	now := s.now()
	n := &models.LegalNews{
		ID:            uuid.New().String(),
		Title:         strings.TrimSpace(in.Title),
		Link:          strings.TrimSpace(in.Link),
		Source:        "Aliado Laboral",
		ImageURL:      in.ImageURL,
		WorkerSummary: in.WorkerSummary,
		PymeSummary:   in.PymeSummary,
		LawyerSummary: in.LawyerSummary,
		OriginalText:  in.OriginalText,
		PublishedAt:   now,
		CreatedAt:     now,
	}
	if n.WorkerSummary == "" {
		if len(strings.TrimSpace(in.OriginalText)) < minSourceText {
			return nil, utils.BadRequest("El texto de la noticia es muy corto")
		}
		processed, err := s.summarize(ctx, in.OriginalText)
		if err != nil {
			return nil, utils.Internal("La IA no pudo procesar la noticia en este momento", err.Error())
		}
		applySummary(n, processed)
	}
	n.ClickableTitle = firstNonEmpty(n.ClickableTitle, n.Title)
	n.Title = firstNonEmpty(n.Title, n.ClickableTitle)
	if n.Title == "" {
		return nil, utils.BadRequest("Título requerido")
	}
	if n.Link == "" {
		n.Link = "https://aliadolaboral.com/news/" + n.ID
	}
	if image != nil && s.Images != nil {
		url, err := s.Images.UploadImage(ctx, image.Data, imageFolder)
		if err != nil {
			utils.GetLogger().Warn("failed to upload news image", zap.Error(err))
		} else {
			n.ImageURL = url
		}
	}
	if n.ImageURL == "" {
		n.ImageURL = stockImage(n.Link)
	}
	if err := s.Repo.UpsertNews(ctx, n); err != nil {
		return nil, utils.Internal("Error interno al crear noticia", err.Error())
	}
	s.invalidateFeed(ctx)
	s.shareSocial(ctx, n)
	return n, nil
}

func (s *DefaultNewsService) Delete(ctx context.Context, id string) error {
	if err := s.Repo.DeleteNews(ctx, id); err != nil {
		return utils.Internal("No se pudo eliminar la noticia", err.Error())
	}
	s.invalidateFeed(ctx)
	return nil
}

func (s *DefaultNewsService) Ingest(ctx context.Context) (*models.LegalNews, error) {
	logger := utils.GetLogger()
	feed, err := s.Fetcher.Fetch(ctx, s.FeedURL)
	if err != nil {
		logger.Error("news: failed to fetch feed", zap.String("url", s.FeedURL), zap.Error(err))
		return nil, fmt.Errorf("failed to fetch news feed: %w", err)
	}
	now := s.now()
	top := freshest(feed.Items, now)
	if top == nil {
		logger.Info("news: no fresh items", zap.Int("items", len(feed.Items)))
		return nil, nil
	}
	exists, err := s.Repo.ExistsByLink(ctx, top.Link)
	if err != nil {
		return nil, fmt.Errorf("failed to check news: %w", err)
	}
	if exists {
		logger.Info("news: top item already published", zap.String("link", top.Link))
		return nil, nil
	}

	snippet := firstNonEmpty(top.Description, top.Content, "Google News")
	text := fmt.Sprintf("TITULO: %s\nFUENTE: %s\nLINK: %s\n\n(Analiza este fragmento y genera una noticia útil).", top.Title, snippet, top.Link)
	n := &models.LegalNews{
		ID:           uuid.New().String(),
		Title:        top.Title,
		Link:         top.Link,
		Source:       sourceName(feed, top),
		ImageURL:     stockImage(top.Link),
		OriginalText: text,
		PublishedAt:  *top.PublishedParsed,
		CreatedAt:    now,
	}
	processed, err := s.summarize(ctx, text)
	if err != nil {
		logger.Warn("news: summarizer failed, publishing raw snippet", zap.Error(err))
		n.ClickableTitle = firstNonEmpty(top.Title, "Noticia Laboral")
		n.WorkerSummary = pendingSummary + "\n\n" + firstNonEmpty(top.Description, "Sin detalles.")
		n.PymeSummary = pendingSummary
		n.LawyerSummary = pendingSummary
		n.QuizQuestion = "¿Te interesa esta noticia?"
	} else {
		applySummary(n, processed)
	}
	if err := s.Repo.UpsertNews(ctx, n); err != nil {
		return nil, fmt.Errorf("failed to save news: %w", err)
	}
	s.invalidateFeed(ctx)

	if s.Notifier != nil {
		body := firstNonEmpty(n.ClickableTitle, "Actualización importante sobre la LFT.")
		if err := s.Notifier.Broadcast(ctx, "", "🗞️ Nueva Noticia Laboral", body, map[string]string{"type": "news", "newsId": n.ID}); err != nil {
			logger.Warn("news: broadcast failed", zap.Error(err))
		}
	}
	s.shareSocial(ctx, n)
	logger.Info("news: published", zap.String("id", n.ID), zap.String("title", n.ClickableTitle))
	return n, nil
}

func (s *DefaultNewsService) Cleanup(ctx context.Context) (int64, error) {
	removed, err := s.Repo.DeleteOlderThan(ctx, s.now().Add(-retention))
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		s.invalidateFeed(ctx)
	}
	utils.GetLogger().Info("news: cleanup done", zap.Int64("removed", removed))
	return removed, nil
}

// freshest returns the first item published in the last day.
func freshest(items []*gofeed.Item, now time.Time) *gofeed.Item {
	cutoff := now.Add(-freshWindow)
	for _, it := range items {
		if it.PublishedParsed != nil && it.PublishedParsed.After(cutoff) && it.Link != "" {
			return it
		}
	}
	return nil
}

func sourceName(feed *gofeed.Feed, item *gofeed.Item) string {
	if item.Author != nil && item.Author.Name != "" {
		return item.Author.Name
	}
	return firstNonEmpty(feed.Title, "Google News")
}

type summary struct {
	title, worker, pyme, lawyer, quiz string
}

func (s *DefaultNewsService) summarize(ctx context.Context, text string) (*summary, error) {
	if s.AI == nil {
		return nil, fmt.Errorf("no summarizer configured")
	}
	out, err := s.AI.Complete(ctx, editorPrompt, "TEXTO ORIGINAL:\n\"\"\""+text+"\"\"\"", true)
	if err != nil {
		return nil, err
	}
	clean := strings.TrimSpace(fenceRe.ReplaceAllString(out, ""))
	if !gjson.Valid(clean) {
		return nil, fmt.Errorf("summarizer returned invalid JSON")
	}
	res := gjson.Parse(clean)
	sum := &summary{
		title:  res.Get("titulo_clickeable").String(),
		worker: res.Get("resumen_trabajador").String(),
		pyme:   res.Get("resumen_pyme").String(),
		lawyer: res.Get("resumen_abogado").String(),
		quiz:   res.Get("pregunta_quiz").String(),
	}
	if sum.title == "" || sum.worker == "" {
		return nil, fmt.Errorf("summarizer response missing fields")
	}
	return sum, nil
}

func applySummary(n *models.LegalNews, sum *summary) {
	n.ClickableTitle = sum.title
	n.WorkerSummary = sum.worker
	n.PymeSummary = sum.pyme
	n.LawyerSummary = sum.lawyer
	n.QuizQuestion = sum.quiz
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
