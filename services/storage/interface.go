package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"aliadolaboral/config"
	"aliadolaboral/utils"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// ObjectStore keeps private files (request documents, settlements, vault evidence).
type ObjectStore interface {
	Upload(ctx context.Context, objectPath, contentType string, data []byte) error
	Delete(ctx context.Context, objectPath string) error
	// SignedUploadURL lets a client PUT an object directly for ttl.
	SignedUploadURL(objectPath, contentType string, ttl time.Duration) (string, error)
	// SignedDownloadURL grants read access for ttl.
	SignedDownloadURL(objectPath string, ttl time.Duration) (string, error)
}

// FirebaseStorageService implements ObjectStore using the Firebase storage bucket.
type FirebaseStorageService struct {
	client         *storage.Client
	bucketName     string
	serviceAccount *config.ServiceAccount
}

// NewFirebaseStorageService creates a new FirebaseStorageService.
func NewFirebaseStorageService(ctx context.Context, serviceAccountJSONPath string) (*FirebaseStorageService, error) {
	client, err := storage.NewClient(ctx, option.WithCredentialsFile(serviceAccountJSONPath))
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	// Load service account for signing URLs
	sa, err := utils.LoadServiceAccount(serviceAccountJSONPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load service account for signing URLs: %w", err)
	}

	bucket := config.BucketName(sa)
	if bucket == "" {
		return nil, fmt.Errorf("no storage bucket configured")
	}
	return &FirebaseStorageService{
		client:         client,
		bucketName:     bucket,
		serviceAccount: sa,
	}, nil
}

func (s *FirebaseStorageService) Upload(ctx context.Context, objectPath, contentType string, data []byte) error {
	w := s.client.Bucket(s.bucketName).Object(objectPath).NewWriter(ctx)
	w.ObjectAttrs.ContentType = contentType

	if _, err := bytes.NewReader(data).WriteTo(w); err != nil {
		w.Close()
		return fmt.Errorf("failed to copy file to storage: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close writer: %w", err)
	}
	return nil
}

// Delete deletes an object from the bucket.
func (s *FirebaseStorageService) Delete(ctx context.Context, objectPath string) error {
	obj := s.client.Bucket(s.bucketName).Object(objectPath)
	if err := obj.Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func (s *FirebaseStorageService) SignedUploadURL(objectPath, contentType string, ttl time.Duration) (string, error) {
	return s.sign(objectPath, "PUT", contentType, ttl)
}

func (s *FirebaseStorageService) SignedDownloadURL(objectPath string, ttl time.Duration) (string, error) {
	return s.sign(objectPath, "GET", "", ttl)
}

func (s *FirebaseStorageService) sign(objectPath, method, contentType string, ttl time.Duration) (string, error) {
	url, err := storage.SignedURL(s.bucketName, objectPath, &storage.SignedURLOptions{
		GoogleAccessID: s.serviceAccount.ClientEmail,
		PrivateKey:     []byte(strings.ReplaceAll(s.serviceAccount.PrivateKey, `\n`, "\n")),
		Method:         method,
		ContentType:    contentType,
		Expires:        time.Now().Add(ttl),
		Scheme:         storage.SigningSchemeV4,
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate signed URL: %w", err)
	}
	return url, nil
}
