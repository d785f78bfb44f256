package vault

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"aliadolaboral/database/repository"
	"aliadolaboral/models"
	"aliadolaboral/services/storage"
	"aliadolaboral/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	uploadTTL   = 15 * time.Minute
	downloadTTL = time.Hour
)

// VaultService manages the worker's private evidence vault.
type VaultService interface {
	UploadURL(ctx context.Context, userID string, in models.VaultUploadRequest) (*models.VaultUploadTicket, error)
	Save(ctx context.Context, userID string, in models.SaveVaultFileRequest) (*models.VaultFile, error)
	List(ctx context.Context, userID string) ([]models.VaultFile, error)
	Delete(ctx context.Context, userID, fileID string) error
	// DownloadURL signs a read link for the owner, or for the lawyer of an accepted request of the owner.
	DownloadURL(ctx context.Context, userID, fileID, requestID string) (*models.VaultDownload, error)
	// ListForLawyer lists the worker's files to the lawyer who accepted requestID.
	ListForLawyer(ctx context.Context, lawyerUserID, requestID string) ([]models.VaultFile, error)
}

type DefaultVaultService struct {
	Files    repository.VaultRepository
	Contacts repository.ContactRepository
	Lawyers  repository.LawyerRepository
	Records  repository.RecordRepository
	Storage  storage.ObjectStore
	Now      func() time.Time
}

func NewDefaultVaultService(
	files repository.VaultRepository,
	contacts repository.ContactRepository,
	lawyers repository.LawyerRepository,
	records repository.RecordRepository,
	store storage.ObjectStore,
) *DefaultVaultService {
	return &DefaultVaultService{Files: files, Contacts: contacts, Lawyers: lawyers, Records: records, Storage: store, Now: time.Now}
}

func (s *DefaultVaultService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func vaultPrefix(userID string) string {
	return "users/" + userID + "/vault/"
}

func (s *DefaultVaultService) UploadURL(ctx context.Context, userID string, in models.VaultUploadRequest) (*models.VaultUploadTicket, error) {
	name := path.Base(strings.TrimSpace(in.FileName))
	if name == "" || name == "." || name == "/" || in.ContentType == "" {
		return nil, utils.BadRequest("Nombre de archivo y tipo son requeridos")
	}
	now := s.now()
	objectPath := fmt.Sprintf("%s%d_%s", vaultPrefix(userID), now.UnixMilli(), name)
	url, err := s.Storage.SignedUploadURL(objectPath, in.ContentType, uploadTTL)
	if err != nil {
		return nil, utils.Internal("Error al preparar la subida al baúl", err.Error())
	}
	return &models.VaultUploadTicket{UploadURL: url, Path: objectPath, ExpiresAt: now.Add(uploadTTL)}, nil
}

func (s *DefaultVaultService) Save(ctx context.Context, userID string, in models.SaveVaultFileRequest) (*models.VaultFile, error) {
	if in.Name == "" || in.Path == "" {
		return nil, utils.BadRequest("Metadata de archivo incompleta")
	}
	if !strings.HasPrefix(in.Path, vaultPrefix(userID)) || strings.Contains(in.Path, "..") {
		return nil, utils.Forbidden("Ruta de archivo inválida")
	}
	file := &models.VaultFile{
		ID:          uuid.New().String(),
		UserID:      userID,
		Name:        in.Name,
		Path:        in.Path,
		ContentType: in.ContentType,
		Size:        in.Size,
		Category:    in.Category,
	}
	if err := s.Files.Create(ctx, file); err != nil {
		return nil, utils.Internal("Error al registrar el archivo en el sistema", err.Error())
	}
	if s.Records != nil {
		if err := s.Records.CreateEvent(ctx, &models.AnalyticsEvent{
			UserID:     userID,
			Event:      models.EventVaultFileUploaded,
			Properties: map[string]interface{}{"size": in.Size, "category": in.Category},
		}); err != nil {
			utils.GetLogger().Warn("failed to track vault upload", zap.String("userId", userID), zap.Error(err))
		}
	}
	return file, nil
}

func (s *DefaultVaultService) List(ctx context.Context, userID string) ([]models.VaultFile, error) {
	files, err := s.Files.ListByUser(ctx, userID)
	if err != nil {
		return nil, utils.Internal("Error al obtener tus archivos", err.Error())
	}
	if files == nil {
		files = []models.VaultFile{}
	}
	return files, nil
}

func (s *DefaultVaultService) getFile(ctx context.Context, fileID string) (*models.VaultFile, error) {
	file, err := s.Files.GetByID(ctx, fileID)
	if err != nil {
		return nil, utils.Internal("Error al obtener el archivo", err.Error())
	}
	if file == nil {
		return nil, utils.NotFound("Archivo no encontrado")
	}
	return file, nil
}

func (s *DefaultVaultService) Delete(ctx context.Context, userID, fileID string) error {
	file, err := s.getFile(ctx, fileID)
	if err != nil {
		return err
	}
	if file.UserID != userID {
		return utils.Forbidden("No tienes permiso para eliminar este archivo")
	}
	if err := s.Storage.Delete(ctx, file.Path); err != nil {
		utils.GetLogger().Warn("vault object missing during delete", zap.String("path", file.Path), zap.Error(err))
	}
	if err := s.Files.Delete(ctx, file.ID); err != nil {
		return utils.Internal("Error al eliminar el archivo", err.Error())
	}
	return nil
}

// sharedWith reports whether lawyerUserID is the lawyer of the accepted request requestID of workerID.
func (s *DefaultVaultService) sharedWith(ctx context.Context, lawyerUserID, workerID, requestID string) (bool, error) {
	if requestID == "" {
		return false, nil
	}
	req, err := s.Contacts.GetByID(ctx, requestID)
	if err != nil || req == nil {
		return false, err
	}
	if req.WorkerID != workerID || req.Status != models.StatusAccepted {
		return false, nil
	}
	lawyer, err := s.Lawyers.GetLawyerByUserID(ctx, lawyerUserID)
	if err != nil || lawyer == nil {
		return false, err
	}
	profile, err := s.Lawyers.GetProfileByLawyerID(ctx, lawyer.ID)
	if err != nil || profile == nil {
		return false, err
	}
	return req.LawyerProfileID == profile.ID, nil
}

func (s *DefaultVaultService) DownloadURL(ctx context.Context, userID, fileID, requestID string) (*models.VaultDownload, error) {
	file, err := s.getFile(ctx, fileID)
	if err != nil {
		return nil, err
	}
	allowed := file.UserID == userID
	if !allowed {
		if allowed, err = s.sharedWith(ctx, userID, file.UserID, requestID); err != nil {
			return nil, utils.Internal("Error al generar enlace de descarga", err.Error())
		}
	}
	if !allowed {
		return nil, utils.Forbidden("No tienes permiso para acceder a este archivo")
	}
	url, err := s.Storage.SignedDownloadURL(file.Path, downloadTTL)
	if err != nil {
		return nil, utils.Internal("Error al generar enlace de descarga", err.Error())
	}
	return &models.VaultDownload{DownloadURL: url, FileName: file.Name, FileType: file.ContentType}, nil
}

func (s *DefaultVaultService) ListForLawyer(ctx context.Context, lawyerUserID, requestID string) ([]models.VaultFile, error) {
	req, err := s.Contacts.GetByID(ctx, requestID)
	if err != nil {
		return nil, utils.Internal("Error al obtener archivos", err.Error())
	}
	if req == nil {
		return nil, utils.NotFound("Solicitud no encontrada")
	}
	ok, err := s.sharedWith(ctx, lawyerUserID, req.WorkerID, requestID)
	if err != nil {
		return nil, utils.Internal("Error al obtener archivos", err.Error())
	}
	if !ok {
		return nil, utils.Forbidden("No tienes permiso para acceder a este baúl")
	}
	return s.List(ctx, req.WorkerID)
}
