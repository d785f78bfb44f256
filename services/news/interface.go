package news

import (
	"context"
	"time"

	"aliadolaboral/config"
	"aliadolaboral/database/repository"
	"aliadolaboral/models"
	"aliadolaboral/services/notification"
	"aliadolaboral/services/storage"

	"github.com/go-redis/redis/v8"
	"github.com/mmcdole/gofeed"
)

// DefaultFeedURL is the Google News search for federal labor law news in Mexico.
const DefaultFeedURL = "https://news.google.com/rss/search?q=ley+federal+del+trabajo+mexico&hl=es-419&gl=MX&ceid=MX:es-419"

const (
	feedLimit     = 20
	freshWindow   = 24 * time.Hour
	retention     = 7 * 24 * time.Hour
	feedCacheTTL  = time.Hour
	imageFolder   = "aliado/news"
	minSourceText = 20
)

type NewsService interface {
	// Feed returns the latest headlines with the summary written for role.
	Feed(ctx context.Context, role string) ([]models.NewsFeedItem, error)
	Create(ctx context.Context, in models.CreateNewsRequest, image *models.UploadedFile) (*models.LegalNews, error)
	Delete(ctx context.Context, id string) error
	// Ingest pulls the RSS feed and publishes the freshest unseen headline.
	Ingest(ctx context.Context) (*models.LegalNews, error)
	// Cleanup removes headlines older than a week.
	Cleanup(ctx context.Context) (int64, error)
}

// Summarizer rewrites source text with the language model.
type Summarizer interface {
	Complete(ctx context.Context, system, prompt string, smart bool) (string, error)
}

// FeedFetcher downloads and parses an RSS or Atom feed.
type FeedFetcher interface {
	Fetch(ctx context.Context, url string) (*gofeed.Feed, error)
}

// GofeedFetcher fetches feeds with gofeed.
type GofeedFetcher struct {
	Parser *gofeed.Parser
}

func NewGofeedFetcher() *GofeedFetcher {
	return &GofeedFetcher{Parser: gofeed.NewParser()}
}

func (f *GofeedFetcher) Fetch(ctx context.Context, url string) (*gofeed.Feed, error) {
	return f.Parser.ParseURLWithContext(url, ctx)
}

type DefaultNewsService struct {
	Repo     repository.FeedRepository
	AI       Summarizer
	Notifier notification.NotificationService
	Images   storage.ImageHost
	Fetcher  FeedFetcher
	Social   SocialPublisher
	Cache    *redis.Client
	FeedURL  string
	Now      func() time.Time
}

func NewDefaultNewsService(
	repo repository.FeedRepository,
	summarizer Summarizer,
	notifier notification.NotificationService,
	images storage.ImageHost,
	cache *redis.Client,
	feedURL string,
) *DefaultNewsService {
	if feedURL == "" {
		feedURL = DefaultFeedURL
	}
	return &DefaultNewsService{
		Repo:     repo,
		AI:       summarizer,
		Notifier: notifier,
		Images:   images,
		Fetcher:  NewGofeedFetcher(),
		Social:   NewWebhookPublisher(config.AppConfig.SocialWebhookURL),
		Cache:    cache,
		FeedURL:  feedURL,
		Now:      time.Now,
	}
}

func (s *DefaultNewsService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
