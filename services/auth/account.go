package auth

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"aliadolaboral/config"
	"aliadolaboral/models"
	"aliadolaboral/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

var phoneRe = regexp.MustCompile(`^\d{10}$`)

func (s *DefaultAuthService) Me(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return nil, utils.NotFound("Usuario no encontrado")
	}
	return user, nil
}

func (s *DefaultAuthService) UpdateProfile(ctx context.Context, userID string, update models.ProfileUpdate) (*models.User, error) {
	fields := bson.M{}
	if update.FullName != nil {
		fields["fullName"] = strings.TrimSpace(*update.FullName)
	}
	if update.Phone != nil {
		fields["phone"] = strings.TrimSpace(*update.Phone)
		// A new number has to be verified again.
		fields["phoneVerified"] = false
	}
	if len(fields) == 0 {
		return nil, utils.BadRequest("No hay campos para actualizar")
	}
	if err := s.Users.UpdateFields(ctx, userID, fields); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return s.Me(ctx, userID)
}

func (s *DefaultAuthService) SavePushToken(ctx context.Context, userID, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return utils.BadRequest("Token requerido")
	}
	if err := s.Users.UpdateFields(ctx, userID, bson.M{"pushToken": token}); err != nil {
		return fmt.Errorf("failed to save push token: %w", err)
	}
	return nil
}

// SendPhoneVerification stores a fresh 6 digit code and sends it to the user's device.
func (s *DefaultAuthService) SendPhoneVerification(ctx context.Context, userID, phone string) error {
	phone = strings.TrimSpace(phone)
	if !phoneRe.MatchString(phone) {
		return utils.BadRequest("Número de teléfono inválido (10 dígitos)")
	}
	code, err := utils.GenerateNumericCode(6)
	if err != nil {
		return fmt.Errorf("failed to generate code: %w", err)
	}
	pc := utils.PhoneCode{Code: code, Phone: phone, ExpiresAt: time.Now().Add(utils.PhoneCodeTTL)}
	if err := utils.SavePhoneCode(ctx, s.otpClient(), userID, pc); err != nil {
		return err
	}
	if err := s.Users.UpdateFields(ctx, userID, bson.M{"phone": phone, "phoneVerified": false}); err != nil {
		return fmt.Errorf("failed to save phone: %w", err)
	}

	if !config.IsProduction() {
		utils.GetLogger().Info("phone verification code", zap.String("userId", userID), zap.String("code", code))
	}
	if s.Notifier != nil {
		body := fmt.Sprintf("Tu código de verificación es %s", code)
		if err := s.Notifier.NotifyUser(ctx, userID, "Aliado Laboral", body, map[string]string{"type": "phone_code"}); err != nil {
			utils.GetLogger().Warn("failed to send verification code", zap.String("userId", userID), zap.Error(err))
		}
	}
	return nil
}

func (s *DefaultAuthService) VerifyPhone(ctx context.Context, userID, code string) error {
	pc, err := utils.VerifyPhoneCode(ctx, s.otpClient(), userID, strings.TrimSpace(code), time.Now())
	if err != nil {
		return err
	}
	if err := s.Users.UpdateFields(ctx, userID, bson.M{"phone": pc.Phone, "phoneVerified": true}); err != nil {
		return fmt.Errorf("failed to mark phone verified: %w", err)
	}
	return nil
}
