package middleware

import (
	"net/http"

	"aliadolaboral/database/repository"
	"aliadolaboral/utils"

	"github.com/gin-gonic/gin"
)

// AdminMiddleware checks the admin role against the database rather than the token.
func AdminMiddleware(users repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := users.GetByID(c.Request.Context(), UserID(c))
		if err != nil || user == nil || user.Role != utils.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden: Admin access required"})
			return
		}
		c.Set(CtxRole, user.Role)
		c.Set(CtxUser, user)
		c.Next()
	}
}
