package handlers

import (
	"net/http"

	"aliadolaboral/middleware"
	"aliadolaboral/models"
	ai "aliadolaboral/services/intelligence"
	"aliadolaboral/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AIHandler serves the legal assistant chat and voice note transcription.
type AIHandler struct {
	Service     ai.AIService
	Transcriber ai.Transcriber
}

func NewAIHandler(s ai.AIService, t ai.Transcriber) *AIHandler {
	return &AIHandler{Service: s, Transcriber: t}
}

// ChatHandler expects RequireRole to have loaded the caller.
func (h *AIHandler) ChatHandler(c *gin.Context) {
	var req models.AIChatRequest
	if !bindJSON(c, &req) {
		return
	}
	user, ok := c.Get(middleware.CtxUser)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, "Usuario no encontrado", "")
		return
	}
	res, err := h.Service.Chat(c.Request.Context(), user.(*models.User), req)
	if err != nil {
		getLogger(c).Warn("ai chat failed", zap.Error(err))
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *AIHandler) ClearHandler(c *gin.Context) {
	if err := h.Service.ClearConversation(c.Request.Context(), middleware.UserID(c)); err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
