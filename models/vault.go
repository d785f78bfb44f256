package models

import "time"

// VaultFile is evidence a worker keeps in private storage.
type VaultFile struct {
	ID          string    `bson:"id" json:"id"`
	UserID      string    `bson:"userId" json:"userId"`
	Name        string    `bson:"name" json:"name"`
	Path        string    `bson:"path" json:"path"`
	ContentType string    `bson:"contentType" json:"contentType"`
	Size        int64     `bson:"size" json:"size"`
	Category    string    `bson:"category" json:"category"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
}

// VaultUploadRequest asks for a signed upload URL.
type VaultUploadRequest struct {
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType"`
}

// VaultUploadTicket is the signed URL plus the storage path to save afterwards.
type VaultUploadTicket struct {
	UploadURL string    `json:"uploadUrl"`
	Path      string    `json:"path"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// SaveVaultFileRequest registers an uploaded object.
type SaveVaultFileRequest struct {
	Name        string `json:"name"`
	Path        string `json:"path"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
	Category    string `json:"category"`
}

// VaultDownload is a short lived link to a vault file.
type VaultDownload struct {
	DownloadURL string `json:"downloadUrl"`
	FileName    string `json:"fileName"`
	FileType    string `json:"fileType"`
}
