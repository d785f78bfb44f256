package handlers

import (
	"net/http"
	"time"

	"aliadolaboral/middleware"
	"aliadolaboral/models"
	"aliadolaboral/services/accountant"
	"aliadolaboral/services/admin"
	"aliadolaboral/services/supervisor"
	"aliadolaboral/utils"

	"github.com/gin-gonic/gin"
)

// AdminHandler encapsulates the back office: admin console, verification queue and accounting.
type AdminHandler struct {
	Admin      admin.AdminService
	Supervisor supervisor.SupervisorService
	Accountant accountant.AccountantService
}

func NewAdminHandler(a admin.AdminService, s supervisor.SupervisorService, acc accountant.AccountantService) *AdminHandler {
	return &AdminHandler{Admin: a, Supervisor: s, Accountant: acc}
}

// respond writes v, or the error when err is set.
func respond(c *gin.Context, v interface{}, err error) {
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (h *AdminHandler) DashboardHandler(c *gin.Context) {
	v, err := h.Admin.Dashboard(c.Request.Context())
	respond(c, v, err)
}

func (h *AdminHandler) FinancialStatsHandler(c *gin.Context) {
	v, err := h.Admin.FinancialStats(c.Request.Context())
	respond(c, v, err)
}

func (h *AdminHandler) FinancialHealthHandler(c *gin.Context) {
	v, err := h.Admin.FinancialHealth(c.Request.Context())
	respond(c, v, err)
}

func (h *AdminHandler) ImpactHandler(c *gin.Context) {
	v, err := h.Admin.ImpactKPIs(c.Request.Context())
	respond(c, v, err)
}

func (h *AdminHandler) CollectiveRadarHandler(c *gin.Context) {
	v, err := h.Admin.CollectiveRadar(c.Request.Context())
	respond(c, v, err)
}

func (h *AdminHandler) VaultComplianceHandler(c *gin.Context) {
	v, err := h.Admin.VaultCompliance(c.Request.Context())
	respond(c, v, err)
}

func (h *AdminHandler) LawyersHandler(c *gin.Context) {
	v, err := h.Admin.ListLawyers(c.Request.Context())
	respond(c, v, err)
}

func (h *AdminHandler) WorkersHandler(c *gin.Context) {
	v, err := h.Admin.ListWorkers(c.Request.Context())
	respond(c, v, err)
}

func (h *AdminHandler) PymesHandler(c *gin.Context) {
	v, err := h.Admin.ListPymes(c.Request.Context())
	respond(c, v, err)
}

func (h *AdminHandler) CasesHandler(c *gin.Context) {
	v, err := h.Admin.ListCases(c.Request.Context())
	respond(c, v, err)
}

func (h *AdminHandler) VerifyLawyerHandler(c *gin.Context) {
	in := models.VerifyLawyerRequest{IsVerified: true}
	_ = c.ShouldBindJSON(&in)
	lawyer, err := h.Supervisor.SetVerified(c.Request.Context(), middleware.UserID(c), c.Param("lawyerId"), in.IsVerified)
	respond(c, lawyer, err)
}

func (h *AdminHandler) StrikeHandler(c *gin.Context) {
	var in models.StrikeRequest
	_ = c.ShouldBindJSON(&in)
	v, err := h.Admin.AddStrike(c.Request.Context(), middleware.UserID(c), middleware.ClientIP(c), c.Param("lawyerId"), in.Reason)
	respond(c, v, err)
}

func (h *AdminHandler) UpdateSubscriptionHandler(c *gin.Context) {
	var in models.SubscriptionOverride
	if !bindJSON(c, &in) {
		return
	}
	user, err := h.Admin.UpdateUserSubscription(c.Request.Context(), middleware.UserID(c), c.Param("userId"), in)
	respond(c, gin.H{"success": true, "user": user}, err)
}

func (h *AdminHandler) PaymentLogsHandler(c *gin.Context) {
	v, err := h.Admin.PaymentLogs(c.Request.Context())
	respond(c, v, err)
}

func (h *AdminHandler) ExportPaymentsHandler(c *gin.Context) {
	data, err := h.Admin.ExportPayments(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	sendFile(c, xlsxContentType, "pagos-"+time.Now().Format("2006-01-02")+".xlsx", data)
}

func (h *AdminHandler) SecurityLogsHandler(c *gin.Context) {
	v, err := h.Admin.SecurityLogs(c.Request.Context())
	respond(c, v, err)
}

func (h *AdminHandler) AlertsHandler(c *gin.Context) {
	v, err := h.Admin.Alerts(c.Request.Context())
	respond(c, v, err)
}

func (h *AdminHandler) ResolveAlertHandler(c *gin.Context) {
	err := h.Admin.ResolveAlert(c.Request.Context(), c.Param("alertId"))
	respond(c, gin.H{"success": true}, err)
}

func (h *AdminHandler) PurgeCaseHandler(c *gin.Context) {
	err := h.Admin.PurgeCase(c.Request.Context(), middleware.UserID(c), middleware.ClientIP(c), c.Param("requestId"))
	respond(c, gin.H{"success": true, "message": "Datos del caso eliminados"}, err)
}

func (h *AdminHandler) PublicConfigHandler(c *gin.Context) {
	v, err := h.Admin.PromoConfig(c.Request.Context())
	respond(c, v, err)
}

func (h *AdminHandler) UpdateConfigHandler(c *gin.Context) {
	var in models.PromoConfig
	if !bindJSON(c, &in) {
		return
	}
	err := h.Admin.UpdatePromoConfig(c.Request.Context(), in)
	respond(c, gin.H{"success": true, "config": in}, err)
}

// LegalSectionsHandler lists the legal texts for ?role=, or all of them.
func (h *AdminHandler) LegalSectionsHandler(c *gin.Context) {
	if role := c.Query("role"); role != "" {
		c.JSON(http.StatusOK, h.Admin.GetLegalSectionsFor(role))
		return
	}
	c.JSON(http.StatusOK, h.Admin.GetLegalSections())
}

// Supervisor

func (h *AdminHandler) PendingLawyersHandler(c *gin.Context) {
	v, err := h.Supervisor.PendingLawyers(c.Request.Context())
	respond(c, v, err)
}

func (h *AdminHandler) SupervisorVerifyHandler(c *gin.Context) {
	lawyer, err := h.Supervisor.SetVerified(c.Request.Context(), middleware.UserID(c), c.Param("id"), true)
	respond(c, gin.H{"message": "Abogado verificado", "lawyer": lawyer}, err)
}

func (h *AdminHandler) SupervisorRejectHandler(c *gin.Context) {
	err := h.Supervisor.Reject(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	respond(c, gin.H{"message": "Solicitud de abogado rechazada"}, err)
}

func (h *AdminHandler) SupervisorStatsHandler(c *gin.Context) {
	v, err := h.Supervisor.Stats(c.Request.Context())
	respond(c, v, err)
}

// Accountant

func (h *AdminHandler) PendingPaymentsHandler(c *gin.Context) {
	v, err := h.Accountant.PendingPayments(c.Request.Context())
	respond(c, v, err)
}

func (h *AdminHandler) VerifyPaymentHandler(c *gin.Context) {
	var in models.ManualPaymentRequest
	if !bindJSON(c, &in) {
		return
	}
	req, err := h.Accountant.VerifyPayment(c.Request.Context(), middleware.UserID(c), c.Param("id"), in)
	respond(c, gin.H{"message": "Pago verificado", "request": req}, err)
}
