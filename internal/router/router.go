package router

import (
	"time"

	"velora/config"
	"velora/internal/handler"
	"velora/internal/middleware"
	"velora/internal/repository"
	"velora/internal/service"
	"velora/internal/ws"
	"velora/pkg/cloudinary"
	"velora/pkg/llm"
	"velora/pkg/novita"
	"velora/pkg/payment"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func Setup(cfg *config.Config, db *gorm.DB, cloud cloudinary.Client, imageProvider *novita.Client, chatProvider *llm.Client, paymentProvider payment.Provider) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	// Skip gin.Logger() to reduce log noise; use gin.Default() if you need request logging
	r.Use(middleware.RateLimit(middleware.NewRateLimiter(100, 60*time.Second)))
	generationLimiter := middleware.RateLimitPerUser(middleware.NewRateLimiter(10, 60*time.Second))

	// Repositories
	userRepo := repository.NewUserRepository(db)
	ledgerRepo := repository.NewLedgerRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	packageRepo := repository.NewPackageRepository(db)
	generationRepo := repository.NewGenerationRepository(db)
	characterRepo := repository.NewCharacterRepository(db)
	chatRepo := repository.NewChatRepository(db)
	bannerRepo := repository.NewBannerRepository(db)
	faqRepo := repository.NewFAQRepository(db)
	suggestionRepo := repository.NewSuggestionRepository(db)
	settingRepo := repository.NewSettingRepository(db)
	blogRepo := repository.NewBlogRepository(db)
	collectionRepo := repository.NewCollectionRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)

	chatHub := ws.NewHub()

	// Services
	authSvc := service.NewAuthService(cfg, userRepo, ledgerRepo)
	notifSvc := service.NewNotificationService(notificationRepo)
	generationSvc := service.NewGenerationService(&cfg.Tokens, ledgerRepo, generationRepo, imageProvider, cloud, notifSvc)
	chatSvc := service.NewChatService(&cfg.Tokens, chatRepo, characterRepo, ledgerRepo, chatProvider)

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc, auditRepo)
	googleOAuthHandler := handler.NewGoogleOAuthHandler(cfg, authSvc, auditRepo)
	meHandler := handler.NewMeHandler(userRepo, ledgerRepo)
	tokenHandler := handler.NewTokenHandler(ledgerRepo)
	paymentHandler := handler.NewPaymentHandler(cfg, paymentRepo, packageRepo, ledgerRepo, notifSvc, paymentProvider)
	paymentWebhookHandler := handler.NewPaymentWebhookHandler(paymentRepo, ledgerRepo, auditRepo, notifSvc, cfg)
	generationHandler := handler.NewGenerationHandler(generationSvc, generationRepo)
	characterHandler := handler.NewCharacterHandler(characterRepo)
	chatHandler := handler.NewChatHandler(chatRepo, characterRepo, chatSvc)
	contentHandler := handler.NewContentHandler(bannerRepo, faqRepo, suggestionRepo, settingRepo)
	blogHandler := handler.NewBlogHandler(blogRepo)
	collectionHandler := handler.NewCollectionHandler(collectionRepo)
	notificationHandler := handler.NewNotificationHandler(notificationRepo)
	uploadHandler := handler.NewUploadHandler(cloud)
	adminHandler := handler.NewAdminHandler(userRepo, paymentRepo, generationRepo, ledgerRepo, packageRepo, auditRepo, notifSvc)

	authMw := middleware.AuthRequired(&cfg.JWT)

	api := r.Group("/api/v1")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/refresh", authHandler.Refresh)
			authGroup.POST("/logout", authMw, authHandler.Logout)
			authGroup.PATCH("/change-password", authMw, authHandler.ChangePassword)
			authGroup.GET("/google", googleOAuthHandler.Redirect)
			authGroup.GET("/google/callback", googleOAuthHandler.Callback)
			authGroup.POST("/google/token", googleOAuthHandler.Token)
		}

		// Public catalog and content
		api.GET("/characters", characterHandler.List)
		api.GET("/characters/:slug", characterHandler.Get)
		api.GET("/packages", paymentHandler.ListPackages)
		api.GET("/banners", contentHandler.ListBanners)
		api.GET("/faqs", contentHandler.ListFAQs)
		api.GET("/suggestions", contentHandler.ListSuggestions)
		api.GET("/settings", contentHandler.GetSettings)
		api.GET("/blog", blogHandler.List)
		api.GET("/blog/:slug", blogHandler.Get)
		api.GET("/collections", collectionHandler.List)
		api.GET("/collections/:slug", collectionHandler.Get)

		me := api.Group("/me")
		me.Use(authMw)
		{
			me.GET("/profile", meHandler.GetProfile)
			me.PATCH("/profile", meHandler.UpdateProfile)
			me.GET("/tokens", tokenHandler.GetBalance)
			me.GET("/tokens/transactions", tokenHandler.GetTransactions)
			me.GET("/payments", paymentHandler.ListMine)
			me.POST("/payments/:payment_id/verify", paymentHandler.Verify)
			me.GET("/generations", generationHandler.ListMine)
			me.GET("/favorites", characterHandler.ListFavorites)
			me.GET("/notifications", notificationHandler.List)
			me.PUT("/notifications/:id/read", notificationHandler.MarkRead)
		}

		api.POST("/payments/checkout", authMw, paymentHandler.Checkout)
		api.POST("/generations", authMw, generationLimiter, generationHandler.Create)
		api.GET("/generations/:request_id", authMw, generationHandler.Get)
		api.POST("/favorites/:character_id", authMw, characterHandler.AddFavorite)
		api.DELETE("/favorites/:character_id", authMw, characterHandler.RemoveFavorite)

		chat := api.Group("/chat")
		chat.Use(authMw)
		{
			chat.POST("/sessions", chatHandler.CreateSession)
			chat.GET("/sessions", chatHandler.ListSessions)
			chat.DELETE("/sessions/:session_id", chatHandler.DeleteSession)
			chat.GET("/sessions/:session_id/messages", chatHandler.GetMessages)
			chat.POST("/sessions/:session_id/messages", chatHandler.SendMessage)
		}

		admin := api.Group("/admin")
		admin.Use(authMw, middleware.AdminOnly())
		{
			admin.GET("/stats", adminHandler.Stats)
			admin.GET("/users", adminHandler.ListUsers)
			admin.GET("/users/:id", adminHandler.GetUser)
			admin.GET("/audit-logs", adminHandler.ListAuditLogs)

			admin.GET("/tokens/usage-stats", tokenHandler.GetUsageStats)
			admin.GET("/tokens/reconcile/:user_id", tokenHandler.Reconcile)
			admin.POST("/tokens/grant", adminHandler.GrantBonus)

			admin.GET("/packages", adminHandler.ListPackages)
			admin.POST("/packages", adminHandler.CreatePackage)
			admin.PUT("/packages/:id", adminHandler.UpdatePackage)
			admin.DELETE("/packages/:id", adminHandler.DeletePackage)

			admin.GET("/characters", characterHandler.AdminList)
			admin.POST("/characters", characterHandler.AdminCreate)
			admin.PUT("/characters/:id", characterHandler.AdminUpdate)
			admin.DELETE("/characters/:id", characterHandler.AdminDelete)

			admin.GET("/banners", contentHandler.AdminListBanners)
			admin.POST("/banners", contentHandler.AdminCreateBanner)
			admin.PUT("/banners/:id", contentHandler.AdminUpdateBanner)
			admin.DELETE("/banners/:id", contentHandler.AdminDeleteBanner)

			admin.GET("/faqs", contentHandler.AdminListFAQs)
			admin.POST("/faqs", contentHandler.AdminCreateFAQ)
			admin.PUT("/faqs/:id", contentHandler.AdminUpdateFAQ)
			admin.DELETE("/faqs/:id", contentHandler.AdminDeleteFAQ)

			admin.GET("/suggestions", contentHandler.AdminListSuggestions)
			admin.POST("/suggestions", contentHandler.AdminCreateSuggestion)
			admin.PUT("/suggestions/:id", contentHandler.AdminUpdateSuggestion)
			admin.DELETE("/suggestions/:id", contentHandler.AdminDeleteSuggestion)

			admin.PUT("/settings", contentHandler.AdminSetSettings)

			admin.GET("/blog", blogHandler.AdminList)
			admin.POST("/blog", blogHandler.AdminCreate)
			admin.PUT("/blog/:id", blogHandler.AdminUpdate)
			admin.DELETE("/blog/:id", blogHandler.AdminDelete)

			admin.GET("/collections", collectionHandler.AdminList)
			admin.POST("/collections", collectionHandler.AdminCreate)
			admin.PUT("/collections/:id", collectionHandler.AdminUpdate)
			admin.DELETE("/collections/:id", collectionHandler.AdminDelete)
			admin.POST("/collections/:id/images", collectionHandler.AdminAddImage)
			admin.DELETE("/collections/:id/images/:image_id", collectionHandler.AdminRemoveImage)

			admin.POST("/upload", uploadHandler.UploadImage)
		}

		api.POST("/webhooks/payment", paymentWebhookHandler.Handle)
	}

	r.GET("/ws/chat", handler.UpgradeChatWS(&cfg.JWT, chatHub, chatRepo, chatSvc))

	return r
}
