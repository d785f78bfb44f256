package middleware

import (
	"context"
	"net/http"
	"strings"

	"aliadolaboral/services/auth"
	"aliadolaboral/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// Context keys set by AuthMiddleware.
const (
	CtxUserID = "userID"
	CtxRole   = "role"
	CtxUser   = "user"
)

// Authenticator resolves bearer tokens: our own JWTs first, Firebase ID tokens otherwise.
type Authenticator struct {
	Auth     auth.AuthService
	Firebase auth.TokenVerifier
	// Cache holds resolved Firebase sessions by token hash. Optional.
	Cache *redis.Client
}

func NewAuthenticator(authService auth.AuthService, firebase auth.TokenVerifier, cache *redis.Client) *Authenticator {
	return &Authenticator{Auth: authService, Firebase: firebase, Cache: cache}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

// AuthMiddleware requires a valid bearer token and sets userID and role in the context.
func (a *Authenticator) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Acceso denegado. Token no proporcionado."})
			return
		}

		if userID, role, err := utils.ExtractClaims(tokenString); err == nil {
			c.Set(CtxUserID, userID)
			c.Set(CtxRole, role)
			c.Next()
			return
		}

		session, err := a.firebaseSession(c.Request.Context(), tokenString)
		if err != nil || session == nil {
			if err != nil {
				utils.GetLogger().Debug("auth: token rejected", zap.Error(err))
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token inválido o expirado"})
			return
		}
		c.Set(CtxUserID, session.UserID)
		c.Set(CtxRole, session.Role)
		c.Next()
	}
}

// OptionalAuthMiddleware identifies the caller when a valid token is sent and lets anonymous requests through.
func (a *Authenticator) OptionalAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			c.Next()
			return
		}
		if userID, role, err := utils.ExtractClaims(tokenString); err == nil {
			c.Set(CtxUserID, userID)
			c.Set(CtxRole, role)
		} else if session, err := a.firebaseSession(c.Request.Context(), tokenString); err == nil && session != nil {
			c.Set(CtxUserID, session.UserID)
			c.Set(CtxRole, session.Role)
		}
		c.Next()
	}
}

func (a *Authenticator) firebaseSession(ctx context.Context, tokenString string) (*utils.AuthSession, error) {
	if a.Firebase == nil {
		return nil, nil
	}
	hash := utils.HashToken(tokenString)
	if a.Cache != nil {
		if cached, err := utils.GetAuthSession(ctx, a.Cache, hash); err == nil && cached != nil {
			return cached, nil
		} else if err != nil {
			utils.GetLogger().Warn("auth: session cache unavailable, falling back to firebase", zap.Error(err))
		}
	}

	token, err := a.Firebase.VerifyIDToken(ctx, tokenString)
	if err != nil {
		return nil, err
	}
	user, err := a.Auth.ResolveFirebaseUser(ctx, token)
	if err != nil || user == nil {
		return nil, err
	}
	session := utils.AuthSession{UserID: user.ID, Role: user.Role, Email: user.Email, Source: "firebase"}
	if a.Cache != nil {
		if err := utils.SaveAuthSession(ctx, a.Cache, hash, session); err != nil {
			utils.GetLogger().Warn("auth: failed to cache session", zap.Error(err))
		}
	}
	return &session, nil
}

// UserID returns the authenticated user id.
func UserID(c *gin.Context) string {
	return c.GetString(CtxUserID)
}

// Role returns the authenticated user's role as carried by the token or refreshed by RequireRole.
func Role(c *gin.Context) string {
	return c.GetString(CtxRole)
}
