package routes

import (
	"time"

	"aliadolaboral/config"
	"aliadolaboral/handlers"
	"aliadolaboral/middleware"
	"aliadolaboral/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterAuthRoutes registers account endpoints; the group carries the stricter login limiter.
func RegisterAuthRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle) {
	g := api.Group("/auth")
	g.Use(middleware.RateLimitMiddleware(config.AppConfig.AuthRateLimit, config.AuthRateWindow))
	{
		g.POST("/register", hb.AuthHandler.RegisterHandler)
		g.POST("/login", hb.AuthHandler.LoginHandler)
		g.POST("/social-login", hb.AuthHandler.SocialLoginHandler)

		protected := g.Group("")
		protected.Use(hb.Auth.AuthMiddleware())
		protected.GET("/me", hb.AuthHandler.MeHandler)
		protected.PUT("/profile", hb.AuthHandler.UpdateProfileHandler)
		protected.POST("/push-token", hb.AuthHandler.PushTokenHandler)
		protected.POST("/send-verification", hb.AuthHandler.SendVerificationHandler)
		protected.POST("/verify-phone", hb.AuthHandler.VerifyPhoneHandler)
	}
}

// RegisterContactRoutes registers the worker/lawyer contact lifecycle.
func RegisterContactRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle) {
	g := api.Group("/contact")
	g.Use(hb.Auth.AuthMiddleware())
	{
		worker := middleware.RequireRole(hb.Users, utils.RoleWorker)
		lawyer := middleware.RequireRole(hb.Users, utils.RoleLawyer)
		g.POST("", worker, hb.ContactHandler.CreateHandler)
		g.GET("/my-requests", worker, hb.ContactHandler.MyRequestsHandler)
		g.GET("/lawyer-requests", lawyer, hb.ContactHandler.LawyerRequestsHandler)
		g.PUT("/:id/accept", lawyer, hb.ContactHandler.AcceptHandler)
		g.PUT("/:id/reject", lawyer, hb.ContactHandler.RejectHandler)
		g.GET("/:id/contact-info", lawyer, hb.ContactHandler.ContactInfoHandler)
		g.PUT("/:id/crm-status", lawyer, hb.ContactHandler.CRMStatusHandler)
		g.POST("/:id/close", lawyer, hb.ContactHandler.CloseHandler)
		g.POST("/:id/settlement", lawyer, hb.ContactHandler.SettlementHandler)
		g.POST("/:id/report-fraud", lawyer, hb.ContactHandler.ReportFraudHandler)
		g.GET("/:id/case-file", middleware.RequireRole(hb.Users, utils.RoleLawyer, utils.RoleAdmin), hb.ContactHandler.CaseFileHandler)
	}
}

func RegisterChatRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle) {
	g := api.Group("/chat")
	g.Use(hb.Auth.AuthMiddleware())
	{
		g.POST("/:requestId/messages", hb.ChatHandler.SendHandler)
		g.GET("/:requestId/messages", hb.ChatHandler.HistoryHandler)
		g.PUT("/:requestId/read", hb.ChatHandler.MarkReadHandler)
	}
}

// RegisterForumRoutes registers the public forum; reads accept an optional token so admins see hidden posts.
func RegisterForumRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle) {
	g := api.Group("/forum")
	{
		g.GET("/posts", hb.Auth.OptionalAuthMiddleware(), hb.ForumHandler.ListPostsHandler)
		g.GET("/posts/:postId", hb.Auth.OptionalAuthMiddleware(), hb.ForumHandler.GetPostHandler)

		protected := g.Group("")
		protected.Use(hb.Auth.AuthMiddleware(), middleware.RequireRole(hb.Users))
		protected.POST("/posts", hb.ForumHandler.CreatePostHandler)
		protected.POST("/posts/:postId/answer", hb.ForumHandler.AnswerHandler)
		protected.POST("/answers/:answerId/vote", hb.ForumHandler.VoteHandler)
		protected.DELETE("/posts/:postId", hb.ForumHandler.DeletePostHandler)
		protected.DELETE("/answers/:answerId", hb.ForumHandler.DeleteAnswerHandler)
		protected.PUT("/posts/:postId/hide", middleware.AdminMiddleware(hb.Users), hb.ForumHandler.HidePostHandler)
	}
}

// RegisterProfileRoutes registers lawyer directory and worker profile endpoints.
func RegisterProfileRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle) {
	lawyers := api.Group("/lawyer-profile")
	{
		lawyers.GET("/public", hb.ProfileHandler.ListLawyersHandler)
		lawyers.GET("/public/:id", hb.ProfileHandler.PublicProfileHandler)

		own := lawyers.Group("")
		own.Use(hb.Auth.AuthMiddleware(), middleware.RequireRole(hb.Users, utils.RoleLawyer))
		own.GET("/my-profile", hb.ProfileHandler.MyLawyerProfileHandler)
		own.PUT("/my-profile", hb.ProfileHandler.UpdateLawyerProfileHandler)
		own.GET("/my-metrics", hb.ProfileHandler.LawyerMetricsHandler)
	}

	workers := api.Group("/worker-profile")
	workers.Use(hb.Auth.AuthMiddleware(), middleware.RequireRole(hb.Users, utils.RoleWorker))
	{
		workers.GET("", hb.ProfileHandler.WorkerProfileHandler)
		workers.PUT("", hb.ProfileHandler.UpsertWorkerProfileHandler)
		workers.GET("/benchmark", middleware.RequireActiveSubscription(hb.Subscriptions), hb.ProfileHandler.SalaryBenchmarkHandler)
	}
}

func RegisterPymeRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle) {
	g := api.Group("/pyme-profile")
	g.Use(hb.Auth.AuthMiddleware(), middleware.RequireRole(hb.Users, utils.RolePyme))
	{
		g.GET("", hb.PymeHandler.ProfileHandler)
		g.PUT("", hb.PymeHandler.UpdateProfileHandler)
		g.GET("/compliance", hb.PymeHandler.ComplianceHandler)
		g.POST("/calculate", hb.PymeHandler.LiquidationHandler)
		g.GET("/employees", hb.PymeHandler.EmployeesHandler)
		g.POST("/employees", hb.PymeHandler.AddEmployeeHandler)
		g.GET("/documents", hb.PymeHandler.DocumentsHandler)
		g.POST("/documents/upload-url", hb.PymeHandler.DocumentUploadURLHandler)
		g.POST("/documents/upload", hb.PymeHandler.AddDocumentHandler)
		g.POST("/documents/analyze-contract", hb.PymeHandler.AnalyzeContractHandler)
		g.GET("/liability", hb.PymeHandler.LiabilityHandler)
		g.GET("/liability/export", hb.PymeHandler.ExportLiabilityHandler)
		g.POST("/generate-acta", hb.PymeHandler.DraftActHandler)
	}
}

// RegisterSubscriptionRoutes registers plan checkout and the worker monthly subscription.
func RegisterSubscriptionRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle) {
	plans := api.Group("/subscription")
	plans.Use(hb.Auth.AuthMiddleware())
	{
		plans.GET("/status", hb.SubscriptionHandler.StatusHandler)
		plans.POST("/activate", hb.SubscriptionHandler.ActivateHandler)
		plans.POST("/confirm-payment", hb.SubscriptionHandler.ConfirmPaymentHandler)
		plans.POST("/activate-free", hb.SubscriptionHandler.ActivateFreeHandler)
		plans.POST("/cancel-auto-renew", hb.SubscriptionHandler.CancelAutoRenewHandler)
	}

	workers := api.Group("/worker-subscription")
	workers.Use(hb.Auth.AuthMiddleware(), middleware.RequireRole(hb.Users, utils.RoleWorker))
	{
		workers.GET("/my-subscription", hb.SubscriptionHandler.MySubscriptionHandler)
		workers.POST("/subscribe", hb.SubscriptionHandler.SubscribeHandler)
		workers.POST("/cancel", hb.SubscriptionHandler.CancelHandler)
	}
}

// RegisterWebhookRoutes registers unauthenticated gateway callbacks; both verify their own signatures.
func RegisterWebhookRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle) {
	g := api.Group("/webhooks")
	{
		g.POST("/stripe", hb.WebhookHandler.StripeHandler)
		g.POST("/mercadopago", hb.WebhookHandler.MercadoPagoHandler)
	}
}

// RegisterAdminRoutes registers the back office: admin console, supervisor and accountant desks.
func RegisterAdminRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle) {
	admin := api.Group("/admin")
	admin.Use(hb.Auth.AuthMiddleware(), middleware.AdminMiddleware(hb.Users))
	{
		admin.GET("/dashboard", hb.AdminHandler.DashboardHandler)
		admin.GET("/impact", hb.AdminHandler.ImpactHandler)
		admin.GET("/collective-radar", hb.AdminHandler.CollectiveRadarHandler)
		admin.GET("/vault-compliance", hb.AdminHandler.VaultComplianceHandler)

		admin.GET("/lawyers", hb.AdminHandler.LawyersHandler)
		admin.PUT("/lawyers/:lawyerId/verify", hb.AdminHandler.VerifyLawyerHandler)
		admin.POST("/lawyers/:lawyerId/strike", hb.AdminHandler.StrikeHandler)
		admin.GET("/workers", hb.AdminHandler.WorkersHandler)
		admin.GET("/pymes", hb.AdminHandler.PymesHandler)
		admin.PUT("/users/:userId/subscription", hb.AdminHandler.UpdateSubscriptionHandler)

		admin.GET("/financials/stats", hb.AdminHandler.FinancialStatsHandler)
		admin.GET("/financials/health", hb.AdminHandler.FinancialHealthHandler)
		admin.GET("/financials/logs", hb.AdminHandler.PaymentLogsHandler)
		admin.GET("/financials/logs/export", hb.AdminHandler.ExportPaymentsHandler)

		admin.GET("/cases", hb.AdminHandler.CasesHandler)
		admin.POST("/cases/:requestId/purge", hb.AdminHandler.PurgeCaseHandler)

		admin.GET("/security/logs", hb.AdminHandler.SecurityLogsHandler)
		admin.GET("/security/alerts", hb.AdminHandler.AlertsHandler)
		admin.PUT("/security/alerts/:alertId/resolve", hb.AdminHandler.ResolveAlertHandler)
	}

	supervisor := api.Group("/supervisor")
	supervisor.Use(hb.Auth.AuthMiddleware(), middleware.RequireRole(hb.Users, utils.RoleSupervisor, utils.RoleAdmin))
	{
		supervisor.GET("/pending-lawyers", hb.AdminHandler.PendingLawyersHandler)
		supervisor.PUT("/verify-lawyer/:id", hb.AdminHandler.SupervisorVerifyHandler)
		supervisor.DELETE("/reject-lawyer/:id", hb.AdminHandler.SupervisorRejectHandler)
		supervisor.GET("/stats", hb.AdminHandler.SupervisorStatsHandler)
	}

	accountant := api.Group("/accountant")
	accountant.Use(hb.Auth.AuthMiddleware(), middleware.RequireRole(hb.Users, utils.RoleAccountant, utils.RoleAdmin))
	{
		accountant.GET("/pending-payments", hb.AdminHandler.PendingPaymentsHandler)
		accountant.PUT("/verify-payment/:id", hb.AdminHandler.VerifyPaymentHandler)
	}
}

func RegisterSystemRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle) {
	g := api.Group("/system")
	{
		g.GET("/public", hb.AdminHandler.PublicConfigHandler)
		g.GET("/legal-sections", hb.Auth.OptionalAuthMiddleware(), hb.AdminHandler.LegalSectionsHandler)
		g.PUT("/update", hb.Auth.AuthMiddleware(), middleware.AdminMiddleware(hb.Users), hb.AdminHandler.UpdateConfigHandler)
	}
}

func RegisterNewsRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle) {
	g := api.Group("/news")
	{
		g.GET("", hb.Auth.OptionalAuthMiddleware(), hb.NewsHandler.FeedHandler)

		admin := g.Group("")
		admin.Use(hb.Auth.AuthMiddleware(), middleware.AdminMiddleware(hb.Users))
		admin.POST("", hb.NewsHandler.CreateHandler)
		admin.POST("/trigger", hb.NewsHandler.TriggerHandler)
		admin.DELETE("/:id", hb.NewsHandler.DeleteHandler)
	}
}

func RegisterAnalyticsRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle) {
	g := api.Group("/analytics")
	{
		g.POST("/event", hb.Auth.OptionalAuthMiddleware(), hb.AnalyticsHandler.TrackHandler)
		g.GET("/metrics", hb.Auth.AuthMiddleware(), middleware.AdminMiddleware(hb.Users), hb.AnalyticsHandler.DashboardHandler)
	}
}

// RegisterVaultRoutes registers the worker evidence vault and the lawyer read path.
func RegisterVaultRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle) {
	g := api.Group("/vault")
	g.Use(hb.Auth.AuthMiddleware())
	{
		g.POST("/upload-url", hb.VaultHandler.UploadURLHandler)
		g.POST("/metadata", hb.VaultHandler.SaveHandler)
		g.GET("/files", hb.VaultHandler.ListHandler)
		g.GET("/files/:fileId/download", hb.VaultHandler.DownloadHandler)
		g.DELETE("/files/:fileId", hb.VaultHandler.DeleteHandler)
		g.GET("/requests/:requestId/files", middleware.RequireRole(hb.Users, utils.RoleLawyer), hb.VaultHandler.LawyerListHandler)
	}
}

// RegisterLegalRoutes registers the jurisdiction finder and the personal case tracker.
func RegisterLegalRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle) {
	api.POST("/jurisdiction/find", hb.LegalHandler.FindJurisdictionHandler)

	cases := api.Group("/cases")
	cases.Use(hb.Auth.AuthMiddleware())
	{
		cases.POST("", hb.LegalHandler.CreateCaseHandler)
		cases.GET("", hb.LegalHandler.ListCasesHandler)
		cases.POST("/:caseId/history", hb.LegalHandler.AddCaseEventHandler)
	}
}

func RegisterAIRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle) {
	g := api.Group("/ai")
	g.Use(hb.Auth.AuthMiddleware(), middleware.RequireRole(hb.Users))
	{
		g.POST("/chat", hb.AIHandler.ChatHandler)
		g.DELETE("/chat", hb.AIHandler.ClearHandler)
		g.POST("/transcribe", hb.AIHandler.TranscribeHandler)
	}
}

// RegisterHealthRoutes registers the health snapshot and the prometheus scrape endpoint.
func RegisterHealthRoutes(r *gin.Engine) {
	r.GET("/health", handlers.HealthHandler)
	r.GET("/api/health", handlers.HealthHandler)
	r.GET("/metrics", utils.MetricsHandler())
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "Stripe-Signature", "x-signature", "x-request-id"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(utils.MetricsMiddleware())

	RegisterHealthRoutes(r)

	api := r.Group("/api")
	api.Use(middleware.RateLimitMiddleware(config.AppConfig.GlobalRateLimit, config.GlobalRateWindow))

	RegisterAuthRoutes(api, hb)
	RegisterContactRoutes(api, hb)
	RegisterChatRoutes(api, hb)
	RegisterForumRoutes(api, hb)
	RegisterProfileRoutes(api, hb)
	RegisterPymeRoutes(api, hb)
	RegisterSubscriptionRoutes(api, hb)
	RegisterWebhookRoutes(api, hb)
	RegisterAdminRoutes(api, hb)
	RegisterSystemRoutes(api, hb)
	RegisterNewsRoutes(api, hb)
	RegisterAnalyticsRoutes(api, hb)
	RegisterVaultRoutes(api, hb)
	RegisterLegalRoutes(api, hb)
	RegisterAIRoutes(api, hb)
}
