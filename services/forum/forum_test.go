package forum

import (
	"context"
	"net/http"
	"testing"
	"time"

	"aliadolaboral/database/repository/repotest"
	"aliadolaboral/models"
	"aliadolaboral/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	svc     *DefaultForumService
	forum   *repotest.Forum
	lawyers *repotest.Lawyers
	profile *models.LawyerProfile
	now     time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	users := repotest.NewUsers(&models.User{ID: "w1", FullName: "Juana Pérez", Role: utils.RoleWorker})
	f := &fixture{forum: repotest.NewForum(), lawyers: repotest.NewLawyers(), now: time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)}
	f.profile = f.lawyers.SeedLawyer(users, "lic1", models.PlanBasic, true)
	f.svc = NewDefaultForumService(f.forum, users, f.lawyers)
	f.svc.Now = func() time.Time { return f.now }
	return f
}

func requireStatus(t *testing.T, err error, status int) {
	t.Helper()
	var appErr *utils.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, status, appErr.Status)
}

func TestContainsPhoneNumber(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"llámame al 5512345678", true},
		{"mi cel 55 1234 5678 0", true},
		{"55.12.34.56.78", true},
		{"tengo 3 años trabajando", false},
		{"folio 123456789", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ContainsPhoneNumber(tt.text), tt.text)
	}
}

func TestMaskProfanity(t *testing.T) {
	assert.Equal(t, "mi jefe es un *******", MaskProfanity("mi jefe es un pendejo"))
	assert.Equal(t, "****** trabajo", MaskProfanity("Pinche trabajo"))
	// Whole words only.
	assert.Equal(t, "computadora", MaskProfanity("computadora"))
}

func TestCreatePost(t *testing.T) {
	f := newFixture(t)

	post, err := f.svc.CreatePost(context.Background(), "w1", models.CreatePostRequest{
		Title: "¿Me pueden despedir?", Content: "Mi jefe es un idiota", Topic: "despido",
	})
	require.NoError(t, err)
	assert.Equal(t, "Mi jefe es un ******", post.Content)
	assert.Equal(t, "Juana Pérez", post.AuthorName)

	_, err = f.svc.CreatePost(context.Background(), "w1", models.CreatePostRequest{
		Title: "Ayuda", Content: "escríbeme al 55-1234-5678",
	})
	requireStatus(t, err, http.StatusBadRequest)

	_, err = f.svc.CreatePost(context.Background(), "w1", models.CreatePostRequest{Title: " ", Content: "x"})
	requireStatus(t, err, http.StatusBadRequest)
}

func TestListPosts_WindowAndFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.forum.CreatePost(ctx, &models.ForumPost{ID: "old", Topic: "despido", CreatedAt: f.now.Add(-8 * 24 * time.Hour)}))
	require.NoError(t, f.forum.CreatePost(ctx, &models.ForumPost{ID: "new", Topic: "despido", CreatedAt: f.now.Add(-time.Hour)}))
	require.NoError(t, f.forum.CreatePost(ctx, &models.ForumPost{ID: "answered", Topic: "salario", AnswerCount: 2, CreatedAt: f.now.Add(-2 * time.Hour)}))
	require.NoError(t, f.forum.CreatePost(ctx, &models.ForumPost{ID: "hidden", Topic: "despido", IsHidden: true, CreatedAt: f.now.Add(-time.Hour)}))

	posts, err := f.svc.ListPosts(ctx, utils.RoleWorker, "", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"new", "answered"}, postIDs(posts))

	posts, err = f.svc.ListPosts(ctx, utils.RoleWorker, "", FilterUnanswered)
	require.NoError(t, err)
	assert.Equal(t, []string{"new"}, postIDs(posts))

	posts, err = f.svc.ListPosts(ctx, utils.RoleAdmin, "despido", "")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"old", "new", "hidden"}, postIDs(posts))
}

func postIDs(posts []models.ForumPost) []string {
	out := make([]string, 0, len(posts))
	for _, p := range posts {
		out = append(out, p.ID)
	}
	return out
}

func TestAnswerAndDetail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.forum.CreatePost(ctx, &models.ForumPost{ID: "p1", AuthorID: "w1", CreatedAt: f.now}))

	lawyerAnswer, err := f.svc.Answer(ctx, "lic1", "p1", models.CreateAnswerRequest{Content: "Tienes derecho a indemnización"})
	require.NoError(t, err)
	assert.Equal(t, f.profile.LawyerID, lawyerAnswer.LawyerID)

	reply, err := f.svc.Answer(ctx, "w1", "p1", models.CreateAnswerRequest{Content: "Gracias", ParentID: lawyerAnswer.ID})
	require.NoError(t, err)
	assert.Empty(t, reply.LawyerID)
	assert.Equal(t, lawyerAnswer.ID, reply.ParentID)

	_, err = f.svc.Answer(ctx, "w1", "p1", models.CreateAnswerRequest{Content: "x", ParentID: "nope"})
	requireStatus(t, err, http.StatusBadRequest)
	_, err = f.svc.Answer(ctx, "w1", "missing", models.CreateAnswerRequest{Content: "x"})
	requireStatus(t, err, http.StatusNotFound)

	detail, err := f.svc.GetPost(ctx, utils.RoleWorker, "p1")
	require.NoError(t, err)
	assert.Len(t, detail.Answers, 2)
	assert.Equal(t, 2, detail.AnswerCount)
	assert.Equal(t, 1, detail.Views)

	stored, err := f.forum.GetPost(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 1, stored.Views)
}

func TestVote_ReputationAndFlip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.forum.CreateAnswer(ctx, &models.ForumAnswer{ID: "a1", PostID: "p1", AuthorID: "lic1", LawyerID: f.profile.LawyerID}))

	res, err := f.svc.Vote(ctx, "w1", "a1", 1)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, 1, res.NewScore)

	res, err = f.svc.Vote(ctx, "w1", "a1", 1)
	require.NoError(t, err)
	assert.Equal(t, "Already voted", res.Message)

	res, err = f.svc.Vote(ctx, "w1", "a1", -1)
	require.NoError(t, err)
	assert.Equal(t, -1, res.NewScore)

	answer, err := f.forum.GetAnswer(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, -1, answer.Score)

	profile, err := f.lawyers.GetProfileByID(ctx, f.profile.ID)
	require.NoError(t, err)
	// +0.5 for the like, then -1.0 for flipping it.
	assert.InDelta(t, -0.5, profile.Reputation, 1e-9)

	_, err = f.svc.Vote(ctx, "w1", "a1", 3)
	requireStatus(t, err, http.StatusBadRequest)
}

func TestDeleteAndHide(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.forum.CreatePost(ctx, &models.ForumPost{ID: "p1", AuthorID: "w1", AnswerCount: 1, CreatedAt: f.now}))
	require.NoError(t, f.forum.CreateAnswer(ctx, &models.ForumAnswer{ID: "a1", PostID: "p1", AuthorID: "lic1"}))

	requireStatus(t, f.svc.DeleteAnswer(ctx, "w1", utils.RoleWorker, "a1"), http.StatusForbidden)
	require.NoError(t, f.svc.DeleteAnswer(ctx, "lic1", utils.RoleLawyer, "a1"))
	post, err := f.forum.GetPost(ctx, "p1")
	require.NoError(t, err)
	assert.Zero(t, post.AnswerCount)

	require.NoError(t, f.svc.HidePost(ctx, "p1"))
	_, err = f.svc.GetPost(ctx, utils.RoleWorker, "p1")
	requireStatus(t, err, http.StatusNotFound)

	requireStatus(t, f.svc.DeletePost(ctx, "lic1", utils.RoleLawyer, "p1"), http.StatusForbidden)
	require.NoError(t, f.svc.DeletePost(ctx, "admin1", utils.RoleAdmin, "p1"))
	post, err = f.forum.GetPost(ctx, "p1")
	require.NoError(t, err)
	assert.Nil(t, post)
}
