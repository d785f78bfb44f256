package middleware

import (
	"aliadolaboral/services/subscription"
	"aliadolaboral/utils"

	"github.com/gin-gonic/gin"
)

// RequireActiveSubscription gates worker content behind an active membership.
func RequireActiveSubscription(subs subscription.SubscriptionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := subs.CheckWorkerAccess(c.Request.Context(), UserID(c)); err != nil {
			utils.RespondError(c, err)
			c.Abort()
			return
		}
		c.Next()
	}
}
