package vault

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"aliadolaboral/database/repository/repotest"
	"aliadolaboral/models"
	"aliadolaboral/services/storage/storagetest"
	"aliadolaboral/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type env struct {
	svc      *DefaultVaultService
	files    *repotest.Vault
	contacts *repotest.Contacts
	lawyers  *repotest.Lawyers
	users    *repotest.Users
	records  *repotest.Records
	store    *storagetest.Memory
}

func newEnv(t *testing.T) *env {
	t.Helper()
	e := &env{
		files:    repotest.NewVault(),
		contacts: repotest.NewContacts(),
		lawyers:  repotest.NewLawyers(),
		users:    repotest.NewUsers(),
		records:  repotest.NewRecords(),
		store:    storagetest.NewMemory(),
	}
	e.svc = NewDefaultVaultService(e.files, e.contacts, e.lawyers, e.records, e.store)
	e.svc.Now = func() time.Time { return time.UnixMilli(1700000000000) }
	return e
}

func status(t *testing.T, err error) int {
	t.Helper()
	var appErr *utils.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %v", err)
	return appErr.Status
}

func TestUploadURL(t *testing.T) {
	e := newEnv(t)
	ticket, err := e.svc.UploadURL(context.Background(), "w1", models.VaultUploadRequest{FileName: "../recibo.pdf", ContentType: "application/pdf"})
	require.NoError(t, err)
	assert.Equal(t, "users/w1/vault/1700000000000_recibo.pdf", ticket.Path)
	assert.Equal(t, "https://storage.example/put/"+ticket.Path, ticket.UploadURL)
	assert.Equal(t, time.UnixMilli(1700000000000).Add(15*time.Minute), ticket.ExpiresAt)

	_, err = e.svc.UploadURL(context.Background(), "w1", models.VaultUploadRequest{FileName: "x.pdf"})
	assert.Equal(t, http.StatusBadRequest, status(t, err))
}

func TestSaveListDelete(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.svc.Save(ctx, "w1", models.SaveVaultFileRequest{Name: "a.pdf", Path: "users/w2/vault/a.pdf"})
	assert.Equal(t, http.StatusForbidden, status(t, err))
	_, err = e.svc.Save(ctx, "w1", models.SaveVaultFileRequest{Name: "a.pdf"})
	assert.Equal(t, http.StatusBadRequest, status(t, err))

	require.NoError(t, e.store.Upload(ctx, "users/w1/vault/1_a.pdf", "application/pdf", []byte("pdf")))
	f, err := e.svc.Save(ctx, "w1", models.SaveVaultFileRequest{Name: "a.pdf", Path: "users/w1/vault/1_a.pdf", Size: 3})
	require.NoError(t, err)
	require.Len(t, e.records.Events, 1)
	assert.Equal(t, models.EventVaultFileUploaded, e.records.Events[0].Event)

	list, err := e.svc.List(ctx, "w1")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	assert.Equal(t, http.StatusForbidden, status(t, e.svc.Delete(ctx, "w2", f.ID)))
	assert.Equal(t, http.StatusNotFound, status(t, e.svc.Delete(ctx, "w1", "missing")))

	require.NoError(t, e.svc.Delete(ctx, "w1", f.ID))
	assert.False(t, e.store.Has("users/w1/vault/1_a.pdf"))
	list, _ = e.svc.List(ctx, "w1")
	assert.Empty(t, list)
}

func TestLawyerAccessThroughAcceptedRequest(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	profile := e.lawyers.SeedLawyer(e.users, "l1", models.PlanBasic, true)
	e.lawyers.SeedLawyer(e.users, "l2", models.PlanBasic, true)
	require.NoError(t, e.contacts.Create(ctx, &models.ContactRequest{ID: "r1", WorkerID: "w1", LawyerProfileID: profile.ID, Status: models.StatusAccepted}))
	require.NoError(t, e.contacts.Create(ctx, &models.ContactRequest{ID: "r2", WorkerID: "w1", LawyerProfileID: profile.ID, Status: models.StatusPending}))
	f, err := e.svc.Save(ctx, "w1", models.SaveVaultFileRequest{Name: "a.pdf", Path: "users/w1/vault/1_a.pdf", ContentType: "application/pdf"})
	require.NoError(t, err)

	own, err := e.svc.DownloadURL(ctx, "w1", f.ID, "")
	require.NoError(t, err)
	assert.Equal(t, "https://storage.example/get/users/w1/vault/1_a.pdf", own.DownloadURL)

	_, err = e.svc.DownloadURL(ctx, "l1", f.ID, "")
	assert.Equal(t, http.StatusForbidden, status(t, err))
	_, err = e.svc.DownloadURL(ctx, "l1", f.ID, "r2")
	assert.Equal(t, http.StatusForbidden, status(t, err), "request not accepted")
	_, err = e.svc.DownloadURL(ctx, "l2", f.ID, "r1")
	assert.Equal(t, http.StatusForbidden, status(t, err), "another lawyer")

	shared, err := e.svc.DownloadURL(ctx, "l1", f.ID, "r1")
	require.NoError(t, err)
	assert.Equal(t, "a.pdf", shared.FileName)
	assert.Equal(t, "application/pdf", shared.FileType)

	files, err := e.svc.ListForLawyer(ctx, "l1", "r1")
	require.NoError(t, err)
	assert.Len(t, files, 1)
	_, err = e.svc.ListForLawyer(ctx, "l2", "r1")
	assert.Equal(t, http.StatusForbidden, status(t, err))
	_, err = e.svc.ListForLawyer(ctx, "l1", "nope")
	assert.Equal(t, http.StatusNotFound, status(t, err))
}
