package auth

import (
	"context"
	"fmt"
	"strings"

	"aliadolaboral/models"
	"aliadolaboral/utils"

	firebaseAuth "firebase.google.com/go/v4/auth"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

func claimString(token *firebaseAuth.Token, key string) string {
	if token == nil || token.Claims == nil {
		return ""
	}
	if v, ok := token.Claims[key].(string); ok {
		return v
	}
	return ""
}

// SocialLogin verifies a Firebase ID token and signs the user in, registering them on first use.
func (s *DefaultAuthService) SocialLogin(ctx context.Context, req models.SocialLoginRequest) (*models.AuthResponse, error) {
	if req.IDToken == "" {
		return nil, utils.BadRequest("Token de Firebase requerido")
	}
	if s.Firebase == nil {
		return nil, utils.Internal("Autenticación social no disponible", "")
	}
	token, err := s.Firebase.VerifyIDToken(ctx, req.IDToken)
	if err != nil {
		utils.GetLogger().Warn("SocialLogin: invalid firebase token", zap.Error(err))
		return nil, utils.Unauthorized("Token inválido")
	}

	user, err := s.findFirebaseUser(ctx, token)
	if err != nil {
		return nil, err
	}
	if user == nil {
		role := req.Role
		if role != utils.RoleLawyer && role != utils.RolePyme {
			role = utils.RoleWorker
		}
		name := req.FullName
		if name == "" {
			name = claimString(token, "name")
		}
		user, err = s.createFirebaseUser(ctx, token, role, name)
		if err != nil {
			return nil, err
		}
	}

	jwtToken, err := utils.GenerateToken(user.ID, user.Role, utils.SocialTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &models.AuthResponse{Token: jwtToken, User: user}, nil
}

// ResolveFirebaseUser is used by the auth middleware when the bearer token is not one of ours.
func (s *DefaultAuthService) ResolveFirebaseUser(ctx context.Context, token *firebaseAuth.Token) (*models.User, error) {
	user, err := s.findFirebaseUser(ctx, token)
	if err != nil || user != nil {
		return user, err
	}
	return s.createFirebaseUser(ctx, token, utils.RoleWorker, claimString(token, "name"))
}

// findFirebaseUser looks the user up by uid, then links an existing account with the same email.
func (s *DefaultAuthService) findFirebaseUser(ctx context.Context, token *firebaseAuth.Token) (*models.User, error) {
	user, err := s.Users.GetByFirebaseUID(ctx, token.UID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up firebase user: %w", err)
	}
	if user != nil {
		return user, nil
	}

	email := strings.ToLower(claimString(token, "email"))
	if email == "" {
		return nil, nil
	}
	user, err = s.Users.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user by email: %w", err)
	}
	if user == nil {
		return nil, nil
	}
	if err := s.Users.UpdateFields(ctx, user.ID, bson.M{"firebaseUid": token.UID}); err != nil {
		utils.GetLogger().Warn("failed to link firebase uid", zap.String("userId", user.ID), zap.Error(err))
	}
	user.FirebaseUID = token.UID
	return user, nil
}

func (s *DefaultAuthService) createFirebaseUser(ctx context.Context, token *firebaseAuth.Token, role, name string) (*models.User, error) {
	user := &models.User{
		ID:                uuid.New().String(),
		Email:             strings.ToLower(claimString(token, "email")),
		FullName:          name,
		Role:              role,
		Plan:              models.PlanFree,
		SubscriptionLevel: models.LevelNone,
		AuthProvider:      "firebase",
		FirebaseUID:       token.UID,
	}
	switch role {
	case utils.RoleLawyer:
		user.Plan = models.PlanBasic
		user.ProfileStatus = models.ProfileIncomplete
	case utils.RolePyme:
		user.SubscriptionLevel = models.LevelBasic
		user.ProfileStatus = models.ProfileIncomplete
	}
	if err := s.Users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create firebase user: %w", err)
	}
	// Lawyers finish their profile (license number) before their lawyer record exists.
	if role != utils.RoleLawyer {
		if err := s.createRoleRecords(ctx, user, ""); err != nil {
			utils.GetLogger().Error("failed to create role records", zap.String("userId", user.ID), zap.Error(err))
		}
	}
	return user, nil
}
