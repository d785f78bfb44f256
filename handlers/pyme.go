package handlers

import (
	"net/http"

	"aliadolaboral/middleware"
	"aliadolaboral/models"
	"aliadolaboral/services/pyme"
	"aliadolaboral/utils"

	"github.com/gin-gonic/gin"
)

type PymeHandler struct {
	Service pyme.PymeService
}

func NewPymeHandler(s pyme.PymeService) *PymeHandler {
	return &PymeHandler{Service: s}
}

func (h *PymeHandler) ProfileHandler(c *gin.Context) {
	p, err := h.Service.Profile(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *PymeHandler) UpdateProfileHandler(c *gin.Context) {
	var in models.PymeProfileUpdate
	if !bindJSON(c, &in) {
		return
	}
	p, err := h.Service.UpdateProfile(c.Request.Context(), middleware.UserID(c), in)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *PymeHandler) EmployeesHandler(c *gin.Context) {
	list, err := h.Service.Employees(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *PymeHandler) AddEmployeeHandler(c *gin.Context) {
	var in models.EmployeeInput
	if !bindJSON(c, &in) {
		return
	}
	e, err := h.Service.AddEmployee(c.Request.Context(), middleware.UserID(c), in)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, e)
}

func (h *PymeHandler) LiquidationHandler(c *gin.Context) {
	var in models.LiquidationInput
	if !bindJSON(c, &in) {
		return
	}
	res, err := h.Service.CalculateLiquidation(in)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *PymeHandler) ComplianceHandler(c *gin.Context) {
	res, err := h.Service.Compliance(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *PymeHandler) LiabilityHandler(c *gin.Context) {
	res, err := h.Service.Liability(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *PymeHandler) ExportLiabilityHandler(c *gin.Context) {
	data, err := h.Service.ExportLiability(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	sendFile(c, xlsxContentType, "pasivo-laboral.xlsx", data)
}

func (h *PymeHandler) DraftActHandler(c *gin.Context) {
	var in models.ActRequest
	if !bindJSON(c, &in) {
		return
	}
	act, err := h.Service.DraftAct(c.Request.Context(), middleware.UserID(c), in)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, act)
}

func (h *PymeHandler) DocumentUploadURLHandler(c *gin.Context) {
	var in models.VaultUploadRequest
	if !bindJSON(c, &in) {
		return
	}
	ticket, err := h.Service.DocumentUploadURL(c.Request.Context(), middleware.UserID(c), in)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ticket)
}

func (h *PymeHandler) AddDocumentHandler(c *gin.Context) {
	var in models.PymeDocumentInput
	if !bindJSON(c, &in) {
		return
	}
	doc, err := h.Service.AddDocument(c.Request.Context(), middleware.UserID(c), in)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, doc)
}

func (h *PymeHandler) DocumentsHandler(c *gin.Context) {
	docs, err := h.Service.Documents(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, docs)
}

func (h *PymeHandler) AnalyzeContractHandler(c *gin.Context) {
	res, err := h.Service.AnalyzeContract(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
