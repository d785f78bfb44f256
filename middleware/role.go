package middleware

import (
	"net/http"

	"aliadolaboral/database/repository"
	"aliadolaboral/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequireRole reloads the caller and lets through only unblocked users of one of roles.
// The fresh user is stored under CtxUser.
func RequireRole(users repository.UserRepository, roles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *gin.Context) {
		user, err := users.GetByID(c.Request.Context(), UserID(c))
		if err != nil {
			utils.GetLogger().Error("RequireRole: failed to load user", zap.String("userId", UserID(c)), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Error al verificar permisos"})
			return
		}
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Usuario no encontrado"})
			return
		}
		if user.IsBlocked {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":   "Acceso Denegado",
				"message": "Tu cuenta ha sido bloqueada permanentemente.",
				"reason":  user.BlockReason,
			})
			return
		}
		if len(allowed) > 0 && !allowed[user.Role] {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Acceso denegado. Rol no autorizado."})
			return
		}
		c.Set(CtxRole, user.Role)
		c.Set(CtxUser, user)
		c.Next()
	}
}
