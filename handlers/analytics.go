package handlers

import (
	"net/http"

	"aliadolaboral/middleware"
	"aliadolaboral/models"
	"aliadolaboral/services/analytics"
	"aliadolaboral/utils"

	"github.com/gin-gonic/gin"
)

type AnalyticsHandler struct {
	Service analytics.AnalyticsService
}

func NewAnalyticsHandler(s analytics.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{Service: s}
}

func (h *AnalyticsHandler) TrackHandler(c *gin.Context) {
	var in models.EventInput
	_ = c.ShouldBindJSON(&in)
	if err := h.Service.Track(c.Request.Context(), middleware.UserID(c), in); err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *AnalyticsHandler) DashboardHandler(c *gin.Context) {
	d, err := h.Service.Dashboard(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}
