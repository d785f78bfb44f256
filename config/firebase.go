package config

// ServiceAccount holds the fields of the Google service account key needed to sign URLs.
type ServiceAccount struct {
	ClientEmail string `json:"client_email"`
	PrivateKey  string `json:"private_key"`
	ProjectID   string `json:"project_id"`
}

// BucketName returns the storage bucket, falling back to the project's default Firebase bucket.
func BucketName(sa *ServiceAccount) string {
	if AppConfig.FirebaseBucket != "" {
		return AppConfig.FirebaseBucket
	}
	if sa != nil && sa.ProjectID != "" {
		return sa.ProjectID + ".appspot.com"
	}
	return ""
}
