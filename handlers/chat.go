package handlers

import (
	"net/http"

	"aliadolaboral/middleware"
	"aliadolaboral/models"
	"aliadolaboral/services/chat"
	"aliadolaboral/utils"

	"github.com/gin-gonic/gin"
)

type ChatHandler struct {
	Service chat.ChatService
}

func NewChatHandler(s chat.ChatService) *ChatHandler {
	return &ChatHandler{Service: s}
}

func (h *ChatHandler) SendHandler(c *gin.Context) {
	var in models.SendMessageRequest
	if !bindJSON(c, &in) {
		return
	}
	res, err := h.Service.Send(c.Request.Context(), middleware.UserID(c), c.Param("requestId"), in.Content)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (h *ChatHandler) HistoryHandler(c *gin.Context) {
	msgs, err := h.Service.History(c.Request.Context(), middleware.UserID(c), c.Param("requestId"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, msgs)
}

func (h *ChatHandler) MarkReadHandler(c *gin.Context) {
	if err := h.Service.MarkRead(c.Request.Context(), middleware.UserID(c), c.Param("requestId")); err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
