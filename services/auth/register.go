package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"aliadolaboral/models"
	"aliadolaboral/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	registerFailed = "No se pudo completar el registro"
	lawyerPending  = "Tu cuenta está pendiente de verificación por un administrador. Te notificaremos cuando sea aprobada."
)

// Register creates a password account together with the records its role needs.
func (s *DefaultAuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return nil, utils.BadRequest("Email y contraseña son requeridos")
	}
	role := req.Role
	if role == "" {
		role = utils.RoleWorker
	}
	if role != utils.RoleWorker && role != utils.RoleLawyer && role != utils.RolePyme {
		return nil, utils.BadRequest("Rol inválido")
	}
	if role == utils.RoleLawyer && strings.TrimSpace(req.LicenseNumber) == "" {
		return nil, utils.BadRequest("La cédula profesional es requerida para abogados")
	}

	existing, err := s.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		utils.GetLogger().Error("Register: failed to check for existing user", zap.Error(err))
		return nil, utils.Internal(registerFailed, "")
	}
	if existing != nil {
		return nil, utils.BadRequest("El usuario ya existe")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:                uuid.New().String(),
		Email:             req.Email,
		PasswordHash:      string(hash),
		FullName:          req.FullName,
		Phone:             req.Phone,
		Role:              role,
		Plan:              models.PlanFree,
		SubscriptionLevel: models.LevelNone,
		AuthProvider:      "password",
	}
	if role == utils.RoleLawyer {
		user.Plan = models.PlanBasic
	}
	if role == utils.RolePyme {
		user.SubscriptionLevel = models.LevelBasic
	}
	if err := s.Users.Create(ctx, user); err != nil {
		utils.GetLogger().Error("Register: failed to create user", zap.Error(err))
		return nil, utils.Internal(registerFailed, "")
	}

	if err := s.createRoleRecords(ctx, user, strings.TrimSpace(req.LicenseNumber)); err != nil {
		utils.GetLogger().Error("Register: failed to create role records, rolling back user",
			zap.String("userId", user.ID), zap.Error(err))
		if delErr := s.Users.Delete(ctx, user.ID); delErr != nil {
			utils.GetLogger().Error("Register: rollback failed", zap.String("userId", user.ID), zap.Error(delErr))
		}
		return nil, utils.Internal(registerFailed, "")
	}

	token, err := utils.GenerateToken(user.ID, user.Role, utils.SessionTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &models.AuthResponse{Token: token, User: user}, nil
}

// createRoleRecords provisions the subscription and profile rows each role starts with.
func (s *DefaultAuthService) createRoleRecords(ctx context.Context, user *models.User, licenseNumber string) error {
	switch user.Role {
	case utils.RoleWorker:
		return s.Profiles.CreateWorkerSubscription(ctx, &models.WorkerSubscription{
			ID:     uuid.New().String(),
			UserID: user.ID,
			Status: models.SubInactive,
			Amount: models.WorkerMonthlyFee,
		})

	case utils.RoleLawyer:
		lawyer := &models.Lawyer{
			ID:            uuid.New().String(),
			UserID:        user.ID,
			LicenseNumber: licenseNumber,
			Status:        models.LawyerActive,
		}
		if err := s.Lawyers.CreateLawyer(ctx, lawyer); err != nil {
			return err
		}
		if err := s.Lawyers.CreateProfile(ctx, &models.LawyerProfile{
			ID:          uuid.New().String(),
			LawyerID:    lawyer.ID,
			UserID:      user.ID,
			DisplayName: user.FullName,
		}); err != nil {
			return err
		}
		return s.Lawyers.CreateSubscription(ctx, &models.LawyerSubscription{
			ID:        uuid.New().String(),
			LawyerID:  lawyer.ID,
			UserID:    user.ID,
			Plan:      models.PlanBasic,
			Status:    models.SubInactive,
			Amount:    99,
			AutoRenew: true,
		})

	case utils.RolePyme:
		return s.Profiles.CreatePymeProfile(ctx, &models.PymeProfile{
			ID:        uuid.New().String(),
			UserID:    user.ID,
			RiskScore: 50,
		})
	}
	return nil
}

// Login checks the password and, for lawyers, that an administrator approved the account.
func (s *DefaultAuthService) Login(ctx context.Context, req models.LoginRequest, ip string) (*models.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	user, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		utils.GetLogger().Error("Login: failed to load user", zap.Error(err))
		return nil, utils.Internal("Error al iniciar sesión", "")
	}
	if user == nil || user.PasswordHash == "" ||
		bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		s.logFailedLogin(ctx, user, email, ip)
		return nil, utils.Unauthorized("Credenciales inválidas")
	}

	if user.Role == utils.RoleLawyer {
		lawyer, err := s.Lawyers.GetLawyerByUserID(ctx, user.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load lawyer: %w", err)
		}
		if lawyer != nil && !lawyer.IsVerified {
			return nil, utils.Forbidden(lawyerPending)
		}
	}

	token, err := utils.GenerateToken(user.ID, user.Role, utils.SessionTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &models.AuthResponse{Token: token, User: user}, nil
}

func (s *DefaultAuthService) logFailedLogin(ctx context.Context, user *models.User, email, ip string) {
	if s.Records == nil {
		return
	}
	entry := &models.ActivityLog{
		ID:        uuid.New().String(),
		Action:    models.ActionLoginFailed,
		Details:   email,
		IP:        ip,
		CreatedAt: time.Now(),
	}
	if user != nil {
		entry.TargetID = user.ID
	}
	if err := s.Records.LogActivity(ctx, entry); err != nil {
		utils.GetLogger().Warn("Login: failed to record failed attempt", zap.Error(err))
	}
}
