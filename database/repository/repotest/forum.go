package repotest

import (
	"context"
	"fmt"
	"sort"
	"time"

	"aliadolaboral/database/repository"
	"aliadolaboral/models"

	"go.mongodb.org/mongo-driver/bson"
)

// Forum is an in-memory ForumRepository.
type Forum struct {
	posts   *docStore
	answers *docStore
	votes   *docStore
}

var _ repository.ForumRepository = (*Forum)(nil)

func NewForum() *Forum {
	return &Forum{posts: newDocStore(), answers: newDocStore(), votes: newDocStore()}
}

func (f *Forum) CreatePost(ctx context.Context, post *models.ForumPost) error {
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now()
	}
	post.UpdatedAt = post.CreatedAt
	return f.posts.put(post.ID, post)
}

func (f *Forum) GetPost(ctx context.Context, id string) (*models.ForumPost, error) {
	return first[models.ForumPost](f.posts, bson.M{"id": id})
}

func (f *Forum) ListPosts(ctx context.Context, filter bson.M, limit int64) ([]models.ForumPost, error) {
	posts, err := findAs[models.ForumPost](f.posts, filter)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(posts, func(i, j int) bool { return posts[i].CreatedAt.After(posts[j].CreatedAt) })
	if limit > 0 && int64(len(posts)) > limit {
		posts = posts[:limit]
	}
	return posts, nil
}

func (f *Forum) UpdatePost(ctx context.Context, id string, update bson.M) error {
	set, _ := update["$set"].(bson.M)
	inc, _ := update["$inc"].(bson.M)
	_, err := f.posts.update(id, nil, set, inc)
	return err
}

func (f *Forum) DeletePost(ctx context.Context, id string) error {
	if !f.posts.remove(id) {
		return fmt.Errorf("forum post with id %s not found", id)
	}
	return nil
}

func (f *Forum) CreateAnswer(ctx context.Context, answer *models.ForumAnswer) error {
	if answer.CreatedAt.IsZero() {
		answer.CreatedAt = time.Now()
	}
	return f.answers.put(answer.ID, answer)
}

func (f *Forum) GetAnswer(ctx context.Context, id string) (*models.ForumAnswer, error) {
	return first[models.ForumAnswer](f.answers, bson.M{"id": id})
}

func (f *Forum) ListAnswers(ctx context.Context, postID string) ([]models.ForumAnswer, error) {
	answers, err := findAs[models.ForumAnswer](f.answers, bson.M{"postId": postID})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(answers, func(i, j int) bool {
		if answers[i].IsAccepted != answers[j].IsAccepted {
			return answers[i].IsAccepted
		}
		return answers[i].CreatedAt.Before(answers[j].CreatedAt)
	})
	return answers, nil
}

func (f *Forum) IncrementAnswerScore(ctx context.Context, id string, delta int) error {
	_, err := f.answers.modify(id, nil, nil, bson.M{"score": delta}, false)
	return err
}

func (f *Forum) DeleteAnswer(ctx context.Context, id string) error {
	if !f.answers.remove(id) {
		return fmt.Errorf("forum answer with id %s not found", id)
	}
	return nil
}

func (f *Forum) DeleteAnswersByPost(ctx context.Context, postID string) error {
	for _, d := range f.answers.find(bson.M{"postId": postID}) {
		f.answers.remove(d["id"].(string))
	}
	return nil
}

func (f *Forum) GetVote(ctx context.Context, answerID, userID string) (*models.ForumVote, error) {
	return first[models.ForumVote](f.votes, bson.M{"answerId": answerID, "userId": userID})
}

func (f *Forum) CreateVote(ctx context.Context, vote *models.ForumVote) error {
	if existing, _ := f.GetVote(ctx, vote.AnswerID, vote.UserID); existing != nil {
		return fmt.Errorf("duplicate vote for answer %s", vote.AnswerID)
	}
	now := time.Now()
	vote.CreatedAt, vote.UpdatedAt = now, now
	return f.votes.put(vote.ID, vote)
}

func (f *Forum) UpdateVoteValue(ctx context.Context, id string, value int) error {
	return setOrFail(f.votes, "forum vote", id, bson.M{"value": value})
}
