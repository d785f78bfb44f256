package handlers

import (
	"aliadolaboral/middleware"
	"aliadolaboral/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// getLogger returns the shared logger tagged with the route and caller.
func getLogger(c *gin.Context) *zap.Logger {
	if l, exists := c.Get("logger"); exists {
		if logger, ok := l.(*zap.Logger); ok {
			return logger
		}
	}
	return utils.GetLogger().With(zap.String("path", c.FullPath()), zap.String("userId", middleware.UserID(c)))
}
