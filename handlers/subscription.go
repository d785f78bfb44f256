package handlers

import (
	"net/http"

	"aliadolaboral/middleware"
	"aliadolaboral/models"
	"aliadolaboral/services/subscription"
	"aliadolaboral/utils"

	"github.com/gin-gonic/gin"
)

type SubscriptionHandler struct {
	Service subscription.SubscriptionService
}

func NewSubscriptionHandler(s subscription.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{Service: s}
}

func (h *SubscriptionHandler) StatusHandler(c *gin.Context) {
	st, err := h.Service.Status(c.Request.Context(), middleware.UserID(c), middleware.Role(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (h *SubscriptionHandler) ActivateHandler(c *gin.Context) {
	var in models.ActivatePlanRequest
	if !bindJSON(c, &in) {
		return
	}
	res, err := h.Service.Activate(c.Request.Context(), middleware.UserID(c), middleware.Role(c), in.PlanType)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *SubscriptionHandler) ConfirmPaymentHandler(c *gin.Context) {
	var in models.ConfirmPlanRequest
	if !bindJSON(c, &in) {
		return
	}
	st, err := h.Service.ConfirmPayment(c.Request.Context(), middleware.UserID(c), in.PaymentIntentID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "subscription": st})
}

func (h *SubscriptionHandler) ActivateFreeHandler(c *gin.Context) {
	var in models.ActivateFreeRequest
	if !bindJSON(c, &in) {
		return
	}
	if err := h.Service.ActivateFree(c.Request.Context(), middleware.UserID(c), middleware.Role(c), in.PlanType); err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *SubscriptionHandler) CancelAutoRenewHandler(c *gin.Context) {
	if err := h.Service.CancelAutoRenew(c.Request.Context(), middleware.UserID(c), middleware.Role(c)); err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Renovación automática cancelada"})
}

func (h *SubscriptionHandler) MySubscriptionHandler(c *gin.Context) {
	sub, err := h.Service.MySubscription(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sub)
}

func (h *SubscriptionHandler) SubscribeHandler(c *gin.Context) {
	var in models.WorkerSubscribeRequest
	_ = c.ShouldBindJSON(&in)
	res, err := h.Service.Subscribe(c.Request.Context(), middleware.UserID(c), in.PaymentProvider)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *SubscriptionHandler) CancelHandler(c *gin.Context) {
	sub, err := h.Service.Cancel(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Suscripción cancelada", "subscription": sub})
}
