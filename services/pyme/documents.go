package pyme

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"
	"time"

	"aliadolaboral/models"
	"aliadolaboral/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	documentUploadTTL   = 15 * time.Minute
	documentDownloadTTL = time.Hour

	// Each filed document lowers the profile risk by riskPerDocument, down to minRiskScore.
	riskPerDocument = 5
	minRiskScore    = 10
)

func documentPrefix(userID string) string {
	return "users/" + userID + "/pyme-documents/"
}

func (s *DefaultPymeService) DocumentUploadURL(ctx context.Context, userID string, in models.VaultUploadRequest) (*models.VaultUploadTicket, error) {
	if _, err := s.Profile(ctx, userID); err != nil {
		return nil, err
	}
	name := path.Base(strings.TrimSpace(in.FileName))
	if name == "" || name == "." || name == "/" || in.ContentType == "" {
		return nil, utils.BadRequest("Nombre de archivo y tipo son requeridos")
	}
	now := s.now()
	objectPath := fmt.Sprintf("%s%d_%s", documentPrefix(userID), now.UnixMilli(), name)
	url, err := s.Storage.SignedUploadURL(objectPath, in.ContentType, documentUploadTTL)
	if err != nil {
		return nil, utils.Internal("Error al preparar la subida del documento", err.Error())
	}
	return &models.VaultUploadTicket{UploadURL: url, Path: objectPath, ExpiresAt: now.Add(documentUploadTTL)}, nil
}

func (s *DefaultPymeService) AddDocument(ctx context.Context, userID string, in models.PymeDocumentInput) (*models.PymeDocument, error) {
	p, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Type) == "" || in.Path == "" {
		return nil, utils.BadRequest("Tipo y archivo del documento son requeridos")
	}
	if !strings.HasPrefix(in.Path, documentPrefix(userID)) || strings.Contains(in.Path, "..") {
		return nil, utils.Forbidden("Ruta de archivo inválida")
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = fmt.Sprintf("Documento %d", len(p.Documents)+1)
	}
	doc := models.PymeDocument{
		ID:          uuid.New().String(),
		Type:        strings.TrimSpace(in.Type),
		Name:        name,
		Path:        in.Path,
		ContentType: in.ContentType,
		FileSize:    in.FileSize,
		CreatedAt:   s.now(),
	}
	updated, err := s.Profiles.AddPymeDocument(ctx, p.ID, doc, riskPerDocument, minRiskScore)
	if err != nil {
		return nil, utils.Internal("Error interno", err.Error())
	}
	utils.GetLogger().Info("pyme document filed",
		zap.String("userId", userID), zap.String("type", doc.Type), zap.Int("riskScore", updated.RiskScore))
	s.sign(&doc)
	return &doc, nil
}

func (s *DefaultPymeService) Documents(ctx context.Context, userID string) ([]models.PymeDocument, error) {
	p, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	docs := append([]models.PymeDocument{}, p.Documents...)
	sort.SliceStable(docs, func(i, j int) bool { return docs[i].CreatedAt.After(docs[j].CreatedAt) })
	for i := range docs {
		s.sign(&docs[i])
	}
	return docs, nil
}

func (s *DefaultPymeService) sign(doc *models.PymeDocument) {
	url, err := s.Storage.SignedDownloadURL(doc.Path, documentDownloadTTL)
	if err != nil {
		utils.GetLogger().Warn("failed to sign pyme document", zap.String("path", doc.Path), zap.Error(err))
		return
	}
	doc.URL = url
}

// AnalyzeContract returns the standard checklist shown to basic-plan pymes; nothing is read or stored.
func (s *DefaultPymeService) AnalyzeContract(ctx context.Context, userID string) (*models.ContractAnalysis, error) {
	if _, err := s.Profile(ctx, userID); err != nil {
		return nil, err
	}
	return &models.ContractAnalysis{
		RiskLevel: "medium",
		Issues: []models.ContractIssue{
			{ID: 1, Text: "No se detectó jornada laboral específica", Severity: "high"},
			{ID: 2, Text: "Falta cláusula de confidencialidad", Severity: "medium"},
			{ID: 3, Text: "Lugar de trabajo no definido claramente", Severity: "low"},
		},
		Recommendation: "Te recomendamos usar nuestros formatos estándar (Pro) para asegurar cumplimiento.",
	}, nil
}
