package auth

import (
	"context"

	"aliadolaboral/database/repository"
	"aliadolaboral/models"
	"aliadolaboral/services/notification"
	"aliadolaboral/utils"

	firebaseAuth "firebase.google.com/go/v4/auth"
	"github.com/go-redis/redis/v8"
)

type AuthService interface {
	// Password accounts
	Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error)
	Login(ctx context.Context, req models.LoginRequest, ip string) (*models.AuthResponse, error)

	// Firebase accounts
	SocialLogin(ctx context.Context, req models.SocialLoginRequest) (*models.AuthResponse, error)
	// ResolveFirebaseUser maps a verified Firebase token to a local user, creating a worker when none exists.
	ResolveFirebaseUser(ctx context.Context, token *firebaseAuth.Token) (*models.User, error)

	// Account
	Me(ctx context.Context, userID string) (*models.User, error)
	UpdateProfile(ctx context.Context, userID string, update models.ProfileUpdate) (*models.User, error)
	SavePushToken(ctx context.Context, userID, token string) error
	SendPhoneVerification(ctx context.Context, userID, phone string) error
	VerifyPhone(ctx context.Context, userID, code string) error
}

// TokenVerifier is satisfied by the Firebase auth client.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*firebaseAuth.Token, error)
}

// DefaultAuthService is the production implementation.
type DefaultAuthService struct {
	Users    repository.UserRepository
	Lawyers  repository.LawyerRepository
	Profiles repository.ProfileRepository
	Records  repository.RecordRepository
	Firebase TokenVerifier
	Notifier notification.NotificationService
	OTPCache *redis.Client
}

func NewDefaultAuthService(users repository.UserRepository, lawyers repository.LawyerRepository, profiles repository.ProfileRepository,
	records repository.RecordRepository, firebase TokenVerifier, notifier notification.NotificationService) *DefaultAuthService {
	return &DefaultAuthService{
		Users:    users,
		Lawyers:  lawyers,
		Profiles: profiles,
		Records:  records,
		Firebase: firebase,
		Notifier: notifier,
	}
}

func (s *DefaultAuthService) otpClient() *redis.Client {
	if s.OTPCache != nil {
		return s.OTPCache
	}
	return utils.GetOTPCacheClient()
}
