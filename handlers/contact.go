package handlers

import (
	"net/http"

	"aliadolaboral/middleware"
	"aliadolaboral/models"
	"aliadolaboral/services/contact"
	"aliadolaboral/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ContactHandler exposes the contact request lifecycle to workers and lawyers.
type ContactHandler struct {
	Service contact.ContactService
}

func NewContactHandler(s contact.ContactService) *ContactHandler {
	return &ContactHandler{Service: s}
}

// CreateHandler accepts JSON or multipart (with "documents" files).
func (h *ContactHandler) CreateHandler(c *gin.Context) {
	var in models.CreateContactRequest
	if err := c.ShouldBind(&in); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Datos inválidos", err.Error())
		return
	}
	docs, err := formFiles(c, "documents")
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	res, err := h.Service.Create(c.Request.Context(), middleware.UserID(c), in, docs)
	if err != nil {
		getLogger(c).Warn("contact request not created", zap.Error(err))
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (h *ContactHandler) MyRequestsHandler(c *gin.Context) {
	list, err := h.Service.ListForWorker(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *ContactHandler) LawyerRequestsHandler(c *gin.Context) {
	list, err := h.Service.ListForLawyer(c.Request.Context(), middleware.UserID(c), c.Query("status"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *ContactHandler) AcceptHandler(c *gin.Context) {
	var in models.AcceptContactRequest
	_ = c.ShouldBindJSON(&in)
	req, err := h.Service.Accept(c.Request.Context(), middleware.UserID(c), c.Param("id"), in.PaymentMethodID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":        "Solicitud aceptada. Ya puedes contactar al trabajador.",
		"contactRequest": req,
	})
}

func (h *ContactHandler) RejectHandler(c *gin.Context) {
	var in models.ReasonRequest
	_ = c.ShouldBindJSON(&in)
	req, err := h.Service.Reject(c.Request.Context(), middleware.UserID(c), c.Param("id"), in.Reason)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Solicitud rechazada", "contactRequest": req})
}

func (h *ContactHandler) ContactInfoHandler(c *gin.Context) {
	info, err := h.Service.ContactInfo(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

func (h *ContactHandler) CRMStatusHandler(c *gin.Context) {
	var in models.CRMStatusRequest
	if !bindJSON(c, &in) {
		return
	}
	req, err := h.Service.UpdateCRMStatus(c.Request.Context(), middleware.UserID(c), c.Param("id"), in.Status)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

func (h *ContactHandler) CloseHandler(c *gin.Context) {
	var in models.CloseCaseRequest
	if !bindJSON(c, &in) {
		return
	}
	res, err := h.Service.Close(c.Request.Context(), middleware.UserID(c), c.Param("id"), in.SettlementAmount, in.ResolutionType)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// SettlementHandler takes the signed settlement as multipart "document".
func (h *ContactHandler) SettlementHandler(c *gin.Context) {
	doc, err := formFile(c, "document")
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	if doc == nil {
		utils.JSONError(c, http.StatusBadRequest, "Se requiere el documento del convenio", "")
		return
	}
	res, err := h.Service.UploadSettlement(c.Request.Context(), middleware.UserID(c), c.Param("id"), c.PostForm("resolutionType"), *doc)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *ContactHandler) ReportFraudHandler(c *gin.Context) {
	var in models.ReasonRequest
	_ = c.ShouldBindJSON(&in)
	if err := h.Service.ReportFraud(c.Request.Context(), middleware.UserID(c), c.Param("id"), in.Reason); err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Reporte recibido. El usuario ha sido bloqueado."})
}

func (h *ContactHandler) CaseFileHandler(c *gin.Context) {
	pdf, err := h.Service.CaseFile(c.Request.Context(), middleware.UserID(c), middleware.Role(c), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	sendFile(c, "application/pdf", "expediente-"+c.Param("id")+".pdf", pdf)
}
