package handlers

import (
	"net/http"

	"aliadolaboral/middleware"
	"aliadolaboral/models"
	"aliadolaboral/services/jurisdiction"
	"aliadolaboral/services/legalcase"
	"aliadolaboral/utils"

	"github.com/gin-gonic/gin"
)

// LegalHandler serves the worker's self-help tools: jurisdiction finder and case tracker.
type LegalHandler struct {
	Jurisdiction jurisdiction.JurisdictionService
	Cases        legalcase.LegalCaseService
}

func NewLegalHandler(j jurisdiction.JurisdictionService, cases legalcase.LegalCaseService) *LegalHandler {
	return &LegalHandler{Jurisdiction: j, Cases: cases}
}

func (h *LegalHandler) FindJurisdictionHandler(c *gin.Context) {
	var in models.JurisdictionRequest
	_ = c.ShouldBindJSON(&in)
	res, err := h.Jurisdiction.Resolve(in)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *LegalHandler) CreateCaseHandler(c *gin.Context) {
	var in models.CreateCaseRequest
	if !bindJSON(c, &in) {
		return
	}
	lc, err := h.Cases.Create(c.Request.Context(), middleware.UserID(c), in)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, lc)
}

func (h *LegalHandler) ListCasesHandler(c *gin.Context) {
	list, err := h.Cases.List(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *LegalHandler) AddCaseEventHandler(c *gin.Context) {
	var in models.AddCaseEventRequest
	if !bindJSON(c, &in) {
		return
	}
	ev, err := h.Cases.AddEvent(c.Request.Context(), middleware.UserID(c), c.Param("caseId"), in)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ev)
}
