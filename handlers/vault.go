package handlers

import (
	"net/http"

	"aliadolaboral/middleware"
	"aliadolaboral/models"
	"aliadolaboral/services/vault"
	"aliadolaboral/utils"

	"github.com/gin-gonic/gin"
)

type VaultHandler struct {
	Service vault.VaultService
}

func NewVaultHandler(s vault.VaultService) *VaultHandler {
	return &VaultHandler{Service: s}
}

func (h *VaultHandler) UploadURLHandler(c *gin.Context) {
	var in models.VaultUploadRequest
	if !bindJSON(c, &in) {
		return
	}
	ticket, err := h.Service.UploadURL(c.Request.Context(), middleware.UserID(c), in)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ticket)
}

func (h *VaultHandler) SaveHandler(c *gin.Context) {
	var in models.SaveVaultFileRequest
	if !bindJSON(c, &in) {
		return
	}
	file, err := h.Service.Save(c.Request.Context(), middleware.UserID(c), in)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, file)
}

func (h *VaultHandler) ListHandler(c *gin.Context) {
	files, err := h.Service.List(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, files)
}

// DownloadHandler accepts ?requestId= so the lawyer of an accepted request can read the worker's file.
func (h *VaultHandler) DownloadHandler(c *gin.Context) {
	link, err := h.Service.DownloadURL(c.Request.Context(), middleware.UserID(c), c.Param("fileId"), c.Query("requestId"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, link)
}

func (h *VaultHandler) DeleteHandler(c *gin.Context) {
	if err := h.Service.Delete(c.Request.Context(), middleware.UserID(c), c.Param("fileId")); err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Archivo eliminado"})
}

func (h *VaultHandler) LawyerListHandler(c *gin.Context) {
	files, err := h.Service.ListForLawyer(c.Request.Context(), middleware.UserID(c), c.Param("requestId"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, files)
}
