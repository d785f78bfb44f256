package pyme

import (
	"context"
	"net/http"
	"testing"
	"time"

	"aliadolaboral/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentUploadURL(t *testing.T) {
	svc, _ := newService(t, nil)
	ctx := context.Background()

	ticket, err := svc.DocumentUploadURL(ctx, "p1", models.VaultUploadRequest{FileName: "../reglamento.pdf", ContentType: "application/pdf"})
	require.NoError(t, err)
	assert.Equal(t, "users/p1/pyme-documents/1772366400000_reglamento.pdf", ticket.Path)
	assert.Contains(t, ticket.UploadURL, ticket.Path)
	assert.Equal(t, now.Add(15*time.Minute), ticket.ExpiresAt)

	_, err = svc.DocumentUploadURL(ctx, "p1", models.VaultUploadRequest{FileName: "a.pdf"})
	assert.Equal(t, http.StatusBadRequest, status(t, err))

	_, err = svc.DocumentUploadURL(ctx, "nobody", models.VaultUploadRequest{FileName: "a.pdf", ContentType: "application/pdf"})
	assert.Equal(t, http.StatusNotFound, status(t, err))
}

func TestAddDocumentLowersRiskDownToFloor(t *testing.T) {
	svc, profiles := newService(t, nil)
	ctx := context.Background()

	doc, err := svc.AddDocument(ctx, "p1", models.PymeDocumentInput{
		Type: "contract", Path: "users/p1/pyme-documents/1_contrato.pdf", FileSize: 2048,
	})
	require.NoError(t, err)
	assert.Equal(t, "Documento 1", doc.Name)
	assert.Equal(t, "https://storage.example/get/users/p1/pyme-documents/1_contrato.pdf", doc.URL)

	p, err := profiles.GetPymeProfile(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 45, p.RiskScore)

	for i := 0; i < 10; i++ {
		svc.Now = func() time.Time { return now.Add(time.Duration(i+1) * time.Minute) }
		_, err = svc.AddDocument(ctx, "p1", models.PymeDocumentInput{
			Type: "policy", Name: "Política", Path: "users/p1/pyme-documents/x.pdf",
		})
		require.NoError(t, err)
	}
	p, err = profiles.GetPymeProfile(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, minRiskScore, p.RiskScore)

	docs, err := svc.Documents(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, docs, 11)
	assert.Equal(t, "Política", docs[0].Name, "newest first")
	assert.Equal(t, "Documento 1", docs[10].Name)
	assert.NotEmpty(t, docs[0].URL)
}

func TestAddDocumentRejectsForeignPaths(t *testing.T) {
	svc, profiles := newService(t, nil)
	ctx := context.Background()

	_, err := svc.AddDocument(ctx, "p1", models.PymeDocumentInput{Type: "contract", Path: "users/p2/pyme-documents/a.pdf"})
	assert.Equal(t, http.StatusForbidden, status(t, err))
	_, err = svc.AddDocument(ctx, "p1", models.PymeDocumentInput{Type: "contract", Path: "users/p1/pyme-documents/../vault/a.pdf"})
	assert.Equal(t, http.StatusForbidden, status(t, err))
	_, err = svc.AddDocument(ctx, "p1", models.PymeDocumentInput{Path: "users/p1/pyme-documents/a.pdf"})
	assert.Equal(t, http.StatusBadRequest, status(t, err))

	p, err := profiles.GetPymeProfile(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 50, p.RiskScore)
	assert.Empty(t, p.Documents)
}

func TestAnalyzeContract(t *testing.T) {
	svc, _ := newService(t, nil)
	res, err := svc.AnalyzeContract(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "medium", res.RiskLevel)
	assert.Len(t, res.Issues, 3)
}
