package handlers

import (
	"io"
	"net/http"

	"aliadolaboral/services/webhook"
	"aliadolaboral/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const maxWebhookBody = 1 << 20

type WebhookHandler struct {
	Service webhook.WebhookService
}

func NewWebhookHandler(s webhook.WebhookService) *WebhookHandler {
	return &WebhookHandler{Service: s}
}

// StripeHandler needs the raw body for the signature check.
func (h *WebhookHandler) StripeHandler(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		utils.JSONError(c, http.StatusServiceUnavailable, "Error leyendo el cuerpo", err.Error())
		return
	}
	if err := h.Service.HandleStripe(c.Request.Context(), payload, c.GetHeader("Stripe-Signature")); err != nil {
		getLogger(c).Error("stripe webhook failed", zap.Error(err))
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}

func (h *WebhookHandler) MercadoPagoHandler(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Error leyendo el cuerpo", err.Error())
		return
	}
	dataID := c.Query("data.id")
	if dataID == "" {
		dataID = c.Query("id")
	}
	if err := h.Service.HandleMercadoPago(c.Request.Context(), body, c.Request.Header, dataID); err != nil {
		getLogger(c).Error("mercadopago webhook failed", zap.Error(err))
		utils.RespondError(c, err)
		return
	}
	c.Status(http.StatusOK)
}
