package utils

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"math/big"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	phoneCodePrefix = "phonecode:"
	// PhoneCodeTTL is how long a verification code stays valid.
	PhoneCodeTTL = 10 * time.Minute
	// The record outlives the code so an expired code can be told apart from a missing one.
	phoneCodeRetention = 24 * time.Hour
)

var (
	ErrNoPendingCode = BadRequest("No hay código pendiente")
	ErrWrongCode     = BadRequest("Código incorrecto")
	ErrCodeExpired   = BadRequest("El código ha expirado")
)

// PhoneCode is the pending verification for a user's phone.
type PhoneCode struct {
	Code      string    `json:"code"`
	Phone     string    `json:"phone"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// GenerateNumericCode returns a uniformly random code of the given number of digits.
func GenerateNumericCode(digits int) (string, error) {
	code := make([]byte, digits)
	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", fmt.Errorf("failed to generate random digit: %w", err)
		}
		code[i] = byte('0' + n.Int64())
	}
	return string(code), nil
}

// SavePhoneCode stores a fresh code for userID.
func SavePhoneCode(ctx context.Context, client *redis.Client, userID string, pc PhoneCode) error {
	data, err := json.Marshal(pc)
	if err != nil {
		return fmt.Errorf("failed to marshal phone code: %w", err)
	}
	if err := client.Set(ctx, phoneCodePrefix+userID, data, phoneCodeRetention).Err(); err != nil {
		return fmt.Errorf("failed to save phone code: %w", err)
	}
	return nil
}

// VerifyPhoneCode checks code against the stored record and consumes it on success.
func VerifyPhoneCode(ctx context.Context, client *redis.Client, userID, code string, now time.Time) (*PhoneCode, error) {
	raw, err := client.Get(ctx, phoneCodePrefix+userID).Result()
	if err == redis.Nil {
		return nil, ErrNoPendingCode
	}
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve phone code: %w", err)
	}
	var pc PhoneCode
	if err := json.Unmarshal([]byte(raw), &pc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal phone code: %w", err)
	}
	if pc.Code != code {
		return nil, ErrWrongCode
	}
	if now.After(pc.ExpiresAt) {
		return nil, ErrCodeExpired
	}
	if err := client.Del(ctx, phoneCodePrefix+userID).Err(); err != nil {
		GetLogger().Sugar().Warnf("failed to delete phone code for %s: %v", userID, err)
	}
	return &pc, nil
}
