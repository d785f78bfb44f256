package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// ImageHost stores public images such as lawyer profile photos.
type ImageHost interface {
	UploadImage(ctx context.Context, data []byte, folder string) (string, error)
	DeleteImage(ctx context.Context, publicID string) error
}

// CloudinaryImageHost implements ImageHost with Cloudinary.
type CloudinaryImageHost struct {
	cld *cloudinary.Cloudinary
}

// NewCloudinaryImageHost creates a CloudinaryImageHost from account credentials.
func NewCloudinaryImageHost(cloudName, apiKey, apiSecret string) (*CloudinaryImageHost, error) {
	if cloudName == "" || apiKey == "" || apiSecret == "" {
		return nil, fmt.Errorf("cloudinary credentials not set in configuration")
	}
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Cloudinary: %w", err)
	}
	return &CloudinaryImageHost{cld: cld}, nil
}

// UploadImage uploads data into folder and returns the secure URL.
func (s *CloudinaryImageHost) UploadImage(ctx context.Context, data []byte, folder string) (string, error) {
	result, err := s.cld.Upload.Upload(ctx, bytes.NewReader(data), uploader.UploadParams{
		Folder: folder,
	})
	if err != nil {
		return "", fmt.Errorf("CloudinaryImageHost: failed to upload image: %w", err)
	}
	if result.SecureURL == "" {
		return "", fmt.Errorf("CloudinaryImageHost: no URL returned")
	}
	return result.SecureURL, nil
}

// DeleteImage deletes an image given its public ID.
func (s *CloudinaryImageHost) DeleteImage(ctx context.Context, publicID string) error {
	_, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		return fmt.Errorf("CloudinaryImageHost: failed to delete image: %w", err)
	}
	return nil
}
