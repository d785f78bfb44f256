package repotest

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"aliadolaboral/database/repository"
	"aliadolaboral/models"

	"go.mongodb.org/mongo-driver/bson"
)

// News is an in-memory FeedRepository keyed by link.
type News struct {
	store *docStore
}

var _ repository.FeedRepository = (*News)(nil)

func NewNews() *News {
	return &News{store: newDocStore()}
}

func (n *News) UpsertNews(ctx context.Context, news *models.LegalNews) error {
	if news.Link == "" {
		return errors.New("news item must have a link")
	}
	if news.CreatedAt.IsZero() {
		news.CreatedAt = time.Now()
	}
	doc, err := normalize(news)
	if err != nil {
		return err
	}
	if ok, err := n.store.update(news.Link, nil, doc, nil); err != nil || ok {
		return err
	}
	return n.store.put(news.Link, news)
}

func (n *News) sorted(filter bson.M) ([]models.LegalNews, error) {
	out, err := findAs[models.LegalNews](n.store, filter)
	sort.SliceStable(out, func(i, j int) bool { return out[i].PublishedAt.After(out[j].PublishedAt) })
	return out, err
}

func (n *News) GetLatest(ctx context.Context) (*models.LegalNews, error) {
	all, err := n.sorted(nil)
	if err != nil || len(all) == 0 {
		return nil, err
	}
	return &all[0], nil
}

func (n *News) ExistsByLink(ctx context.Context, link string) (bool, error) {
	return len(n.store.find(bson.M{"link": link})) > 0, nil
}

func (n *News) ListNews(ctx context.Context, limit, offset int) ([]models.LegalNews, error) {
	all, err := n.sorted(nil)
	if err != nil {
		return nil, err
	}
	if offset >= len(all) {
		return []models.LegalNews{}, nil
	}
	all = all[offset:]
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (n *News) DeleteNews(ctx context.Context, id string) error {
	for _, d := range n.store.find(bson.M{"id": id}) {
		n.store.remove(fmt.Sprint(d["link"]))
		return nil
	}
	return fmt.Errorf("news with id %s not found", id)
}

func (n *News) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	var removed int64
	for _, d := range n.store.find(bson.M{"publishedAt": bson.M{"$lt": cutoff}}) {
		if n.store.remove(fmt.Sprint(d["link"])) {
			removed++
		}
	}
	return removed, nil
}
