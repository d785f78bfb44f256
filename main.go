package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"aliadolaboral/config"
	"aliadolaboral/cron"
	"aliadolaboral/database"
	"aliadolaboral/database/repository"
	"aliadolaboral/handlers"
	"aliadolaboral/middleware"
	"aliadolaboral/routes"
	"aliadolaboral/services/accountant"
	"aliadolaboral/services/admin"
	"aliadolaboral/services/analytics"
	"aliadolaboral/services/auth"
	"aliadolaboral/services/chat"
	"aliadolaboral/services/contact"
	"aliadolaboral/services/forum"
	ai "aliadolaboral/services/intelligence"
	"aliadolaboral/services/jurisdiction"
	"aliadolaboral/services/legalcase"
	"aliadolaboral/services/news"
	"aliadolaboral/services/notification"
	"aliadolaboral/services/ocr"
	"aliadolaboral/services/payment"
	"aliadolaboral/services/profile"
	"aliadolaboral/services/pyme"
	"aliadolaboral/services/sla"
	"aliadolaboral/services/storage"
	"aliadolaboral/services/subscription"
	"aliadolaboral/services/supervisor"
	"aliadolaboral/services/vault"
	"aliadolaboral/services/webhook"
	"aliadolaboral/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"github.com/stripe/stripe-go/v76"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()
	defer logger.Sync()

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	database.InitDB()
	utils.InitRedis()
	utils.FirebaseInit()
	stripe.Key = config.AppConfig.StripeKey

	rootCtx, stop := context.WithCancel(context.Background())
	defer stop()

	// storage.
	objectStore, err := storage.NewFirebaseStorageService(rootCtx, config.AppConfig.FirebaseCredentialsFile)
	if err != nil {
		logger.Fatal("main: failed to initialize firebase storage", zap.Error(err))
	}
	imageHost, err := storage.NewCloudinaryImageHost(
		config.AppConfig.CloudinaryCloudName,
		config.AppConfig.CloudinaryAPIKey,
		config.AppConfig.CloudinaryAPISecret,
	)
	if err != nil {
		logger.Fatal("main: failed to initialize cloudinary", zap.Error(err))
	}

	// repositories.
	userRepo := repository.NewMongoUserRepository()
	lawyerRepo := repository.NewMongoLawyerRepo()
	profileRepo := repository.NewMongoProfileRepo()
	contactRepo := repository.NewMongoContactRepo()
	chatRepo := repository.NewMongoChatRepo()
	forumRepo := repository.NewMongoForumRepo()
	recordRepo := repository.NewMongoRecordRepo()
	feedRepo := repository.NewMongoFeedRepo()
	caseRepo := repository.NewMongoLegalCaseRepo()
	vaultRepo := repository.NewMongoVaultRepo()

	// queue.
	queue := asynq.NewClient(cron.RedisOpt())
	defer queue.Close()

	// LLMs.
	gemini, err := ai.NewGeminiClient(rootCtx, config.AppConfig.GeminiAPIKey)
	if err != nil {
		logger.Fatal("main: failed to initialize gemini", zap.Error(err))
	}
	defer gemini.Close()
	groq := ai.NewGroqClient(config.AppConfig.GroqBaseURL, config.AppConfig.GroqAPIKey)
	aiService := ai.NewDefaultAIService(
		groq,
		ai.GeminiLLM{Client: gemini},
		ai.NewRedisContextStore(utils.GetCacheClient(), 24*time.Hour),
		ai.NewTokenQuota(utils.GetCacheClient(), ai.DailyFreeTokens),
	)
	transcriber := &ai.SpeechTranscriber{CredentialsFile: config.AppConfig.FirebaseCredentialsFile}
	ocrProvider := ocr.NewGeminiProvider(gemini)

	// services.
	notificationService, err := notification.NewDefaultNotificationService(userRepo, queue, notification.NewExpoClient(), utils.FCMClient)
	if err != nil {
		logger.Fatal("main: failed to initialize notifications", zap.Error(err))
	}
	stripeGateway := payment.NewStripeService(userRepo)
	mpGateway := payment.NewMercadoPagoClient()

	authService := auth.NewDefaultAuthService(userRepo, lawyerRepo, profileRepo, recordRepo, utils.FirebaseAuth, notificationService)
	authService.OTPCache = utils.GetOTPCacheClient()

	contactService := contact.NewDefaultContactService(contactRepo, userRepo, lawyerRepo, chatRepo, recordRepo,
		stripeGateway, mpGateway, objectStore, ocrProvider, notificationService, queue, aiService)
	chatService := chat.NewDefaultChatService(contactRepo, lawyerRepo, userRepo, chatRepo, notificationService)
	forumService := forum.NewDefaultForumService(forumRepo, userRepo, lawyerRepo)
	slaService := sla.NewDefaultSLAService(contactRepo, lawyerRepo, chatRepo, recordRepo, notificationService)
	subscriptionService := subscription.NewDefaultSubscriptionService(userRepo, lawyerRepo, profileRepo, recordRepo, stripeGateway, mpGateway)
	adminService := admin.NewDefaultAdminService(userRepo, lawyerRepo, profileRepo, contactRepo, recordRepo,
		vaultRepo, caseRepo, objectStore, slaService, subscriptionService)
	supervisorService := supervisor.NewDefaultSupervisorService(userRepo, lawyerRepo, contactRepo, recordRepo, notificationService)
	accountantService := accountant.NewDefaultAccountantService(contactRepo, userRepo, lawyerRepo, recordRepo, contactService)
	webhookService := webhook.NewDefaultWebhookService(contactRepo, lawyerRepo, recordRepo, contactService,
		stripeGateway, mpGateway, utils.GetCacheClient(), config.AppConfig.MPWebhookSecret)
	profileService := profile.NewDefaultProfileService(userRepo, lawyerRepo, profileRepo, contactRepo, imageHost, ocrProvider)
	pymeService := pyme.NewDefaultPymeService(profileRepo, aiService, objectStore)
	newsService := news.NewDefaultNewsService(feedRepo, aiService, notificationService, imageHost,
		utils.GetCacheClient(), config.AppConfig.NewsFeedURL)
	analyticsService := analytics.NewDefaultAnalyticsService(recordRepo, contactRepo)
	vaultService := vault.NewDefaultVaultService(vaultRepo, contactRepo, lawyerRepo, recordRepo, objectStore)
	jurisdictionService, err := jurisdiction.NewDefaultJurisdictionService()
	if err != nil {
		logger.Fatal("main: failed to load jurisdiction directory", zap.Error(err))
	}
	caseService := legalcase.NewDefaultLegalCaseService(caseRepo)

	// background jobs.
	worker := cron.StartWorker(cron.Jobs{
		Push:     notificationService,
		Analyzer: contactService,
		SLA:      slaService,
		News:     newsService,
	})
	scheduler, err := cron.NewScheduler()
	if err != nil {
		logger.Fatal("main: failed to register scheduled jobs", zap.Error(err))
	}
	if err := scheduler.Start(); err != nil {
		logger.Error("main: scheduler failed to start", zap.Error(err))
	}

	utils.StartHealthMonitor(rootCtx, map[string]*redis.Client{
		"cache": utils.GetCacheClient(),
		"auth":  utils.GetAuthCacheClient(),
		"otp":   utils.GetOTPCacheClient(),
	}, database.MongoClient)

	handlerBundle := &handlers.HandlerBundle{
		Users:         userRepo,
		Auth:          middleware.NewAuthenticator(authService, utils.FirebaseAuth, utils.GetAuthCacheClient()),
		Subscriptions: subscriptionService,

		AuthHandler:         handlers.NewAuthHandler(authService),
		ContactHandler:      handlers.NewContactHandler(contactService),
		ChatHandler:         handlers.NewChatHandler(chatService),
		ForumHandler:        handlers.NewForumHandler(forumService),
		ProfileHandler:      handlers.NewProfileHandler(profileService),
		PymeHandler:         handlers.NewPymeHandler(pymeService),
		NewsHandler:         handlers.NewNewsHandler(newsService),
		AnalyticsHandler:    handlers.NewAnalyticsHandler(analyticsService),
		VaultHandler:        handlers.NewVaultHandler(vaultService),
		LegalHandler:        handlers.NewLegalHandler(jurisdictionService, caseService),
		SubscriptionHandler: handlers.NewSubscriptionHandler(subscriptionService),
		WebhookHandler:      handlers.NewWebhookHandler(webhookService),
		AdminHandler:        handlers.NewAdminHandler(adminService, supervisorService, accountantService),
		AIHandler:           handlers.NewAIHandler(aiService, transcriber),
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(utils.ErrorHandler())
	routes.RegisterRoutes(router, handlerBundle)

	port := config.AppConfig.AppPort
	if port == "" {
		port = "3000"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")
	stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Errorf("main: server forced to shutdown: %v", err)
	}
	scheduler.Shutdown()
	worker.Shutdown()
	if err := database.MongoClient.Disconnect(ctx); err != nil {
		logger.Warn("main: mongo disconnect failed", zap.Error(err))
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
