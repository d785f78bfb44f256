package handlers

import (
	"net/http"

	"aliadolaboral/middleware"
	"aliadolaboral/models"
	"aliadolaboral/services/auth"
	"aliadolaboral/utils"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	Service auth.AuthService
}

func NewAuthHandler(s auth.AuthService) *AuthHandler {
	return &AuthHandler{Service: s}
}

func (h *AuthHandler) RegisterHandler(c *gin.Context) {
	var req models.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.Service.Register(c.Request.Context(), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (h *AuthHandler) LoginHandler(c *gin.Context) {
	var req models.LoginRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.Service.Login(c.Request.Context(), req, middleware.ClientIP(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *AuthHandler) SocialLoginHandler(c *gin.Context) {
	var req models.SocialLoginRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.Service.SocialLogin(c.Request.Context(), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *AuthHandler) MeHandler(c *gin.Context) {
	user, err := h.Service.Me(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (h *AuthHandler) UpdateProfileHandler(c *gin.Context) {
	var req models.ProfileUpdate
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.Service.UpdateProfile(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Perfil actualizado", "user": user})
}

func (h *AuthHandler) PushTokenHandler(c *gin.Context) {
	var req struct {
		Token string `json:"token"`
	}
	_ = c.ShouldBindJSON(&req)
	if req.Token == "" {
		utils.JSONError(c, http.StatusBadRequest, "Token requerido", "")
		return
	}
	if err := h.Service.SavePushToken(c.Request.Context(), middleware.UserID(c), req.Token); err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Token actualizado"})
}

func (h *AuthHandler) SendVerificationHandler(c *gin.Context) {
	var req struct {
		Phone string `json:"phone"`
	}
	if !bindJSON(c, &req) {
		return
	}
	if err := h.Service.SendPhoneVerification(c.Request.Context(), middleware.UserID(c), req.Phone); err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Código enviado"})
}

func (h *AuthHandler) VerifyPhoneHandler(c *gin.Context) {
	var req struct {
		Code string `json:"code"`
	}
	if !bindJSON(c, &req) {
		return
	}
	if err := h.Service.VerifyPhone(c.Request.Context(), middleware.UserID(c), req.Code); err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Teléfono verificado", "phoneVerified": true})
}
