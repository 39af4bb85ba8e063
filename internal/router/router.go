package router

import (
	"github.com/gin-gonic/gin"
	"github.com/venturelink/venturelink-backend/config"
	"github.com/venturelink/venturelink-backend/internal/app/controller"
	"github.com/venturelink/venturelink-backend/internal/middleware"
)

type Router struct {
	authController         *controller.AuthController
	businessController     *controller.BusinessController
	verificationController *controller.VerificationController
	connectionController   *controller.ConnectionController
	conversationController *controller.ConversationController
	milestoneController    *controller.MilestoneController
	matchController        *controller.MatchController
	notificationController *controller.NotificationController
	uploadController       *controller.UploadController
	reportController       *controller.ReportController
	authMiddleware         *middleware.AuthMiddleware
	config                 *config.Config
}

func NewRouter(
	authController *controller.AuthController,
	businessController *controller.BusinessController,
	verificationController *controller.VerificationController,
	connectionController *controller.ConnectionController,
	conversationController *controller.ConversationController,
	milestoneController *controller.MilestoneController,
	matchController *controller.MatchController,
	notificationController *controller.NotificationController,
	uploadController *controller.UploadController,
	reportController *controller.ReportController,
	authMiddleware *middleware.AuthMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:         authController,
		businessController:     businessController,
		verificationController: verificationController,
		connectionController:   connectionController,
		conversationController: conversationController,
		milestoneController:    milestoneController,
		matchController:        matchController,
		notificationController: notificationController,
		uploadController:       uploadController,
		reportController:       reportController,
		authMiddleware:         authMiddleware,
		config:                 cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"message": "VentureLink API is running",
		})
	})

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", r.authController.Register)
			auth.POST("/login", r.authController.Login)
			auth.POST("/refresh", r.authController.RefreshToken)
			auth.POST("/logout", r.authMiddleware.Authenticate(), r.authController.Logout)
			auth.GET("/me", r.authMiddleware.Authenticate(), r.authController.GetMe)
			auth.PATCH("/me", r.authMiddleware.Authenticate(), r.authController.UpdateProfile)
		}

		businesses := v1.Group("/businesses")
		{
			// Public directory endpoints
			businesses.GET("", r.businessController.ListBusinesses)
			businesses.GET("/:id", r.businessController.GetBusiness)
			businesses.GET("/:id/verification/score", r.verificationController.GetScore)
			businesses.GET("/:id/verification/tier", r.verificationController.GetTier)

			businesses.GET("/mine",
				r.authMiddleware.Authenticate(),
				r.businessController.GetMyBusinesses,
			)
			businesses.POST("",
				r.authMiddleware.Authenticate(),
				r.authMiddleware.RequireRole("business", "admin"),
				r.businessController.CreateBusiness,
			)
			businesses.PATCH("/:id",
				r.authMiddleware.Authenticate(),
				r.businessController.UpdateBusiness,
			)

			businesses.GET("/:id/documents",
				r.authMiddleware.Authenticate(),
				r.verificationController.ListDocuments,
			)
			businesses.POST("/:id/documents",
				r.authMiddleware.Authenticate(),
				r.verificationController.UploadDocument,
			)
		}

		documents := v1.Group("/documents")
		documents.Use(r.authMiddleware.Authenticate())
		{
			documents.DELETE("/:id", r.verificationController.DeleteDocument)
		}

		connections := v1.Group("/connections")
		connections.Use(r.authMiddleware.Authenticate())
		{
			connections.GET("", r.connectionController.GetMyConnections)
			connections.POST("", r.connectionController.InitiateConnection)
			connections.GET("/:id", r.connectionController.GetConnection)
			connections.POST("/:id/respond", r.connectionController.RespondToConnection)
			connections.POST("/:id/decline", r.connectionController.DeclineConnection)

			connections.GET("/:id/milestones", r.milestoneController.GetMilestones)
			connections.POST("/:id/milestones", r.milestoneController.ProposeMilestone)
		}

		milestones := v1.Group("/milestones")
		milestones.Use(r.authMiddleware.Authenticate())
		{
			milestones.POST("/:id/agree", r.milestoneController.AgreeMilestone)
			milestones.POST("/:id/reject", r.milestoneController.RejectMilestone)
			milestones.POST("/:id/complete", r.milestoneController.CompleteMilestone)
			milestones.POST("/:id/cancel", r.milestoneController.CancelMilestone)
			milestones.POST("/:id/extensions", r.milestoneController.RequestExtension)
		}

		extensions := v1.Group("/extensions")
		extensions.Use(r.authMiddleware.Authenticate())
		{
			extensions.POST("/:id/decide", r.milestoneController.DecideExtension)
		}

		conversations := v1.Group("/conversations")
		conversations.Use(r.authMiddleware.Authenticate())
		{
			conversations.GET("", r.conversationController.GetMyConversations)
			conversations.GET("/:id/messages", r.conversationController.GetMessages)
			conversations.POST("/:id/messages", r.conversationController.SendMessage)
			conversations.POST("/:id/read", r.conversationController.MarkAsRead)
			conversations.POST("/:id/join", r.conversationController.JoinConversation)
			conversations.POST("/:id/leave", r.conversationController.LeaveConversation)
		}

		// WebSocket endpoint authenticates via ?token= since browsers
		// cannot set headers on WebSocket requests
		v1.GET("/ws", r.authMiddleware.Authenticate(), r.conversationController.HandleWebSocket)

		matches := v1.Group("/matches")
		matches.Use(r.authMiddleware.Authenticate())
		{
			matches.GET("", r.matchController.GetSuggestions)
			matches.POST("/generate", r.matchController.GenerateSuggestions)
			matches.POST("/:id/dismiss", r.matchController.DismissSuggestion)
		}

		notifications := v1.Group("/notifications")
		notifications.Use(r.authMiddleware.Authenticate())
		{
			notifications.GET("", r.notificationController.GetNotifications)
			notifications.GET("/unread-count", r.notificationController.GetUnreadCount)
			notifications.POST("/read-all", r.notificationController.MarkAllAsRead)
			notifications.POST("/:id/read", r.notificationController.MarkAsRead)
			notifications.DELETE("/:id", r.notificationController.DeleteNotification)
		}

		upload := v1.Group("/upload")
		upload.Use(r.authMiddleware.Authenticate())
		{
			upload.POST("/presigned-url", r.uploadController.GetPresignedURL)
		}

		admin := v1.Group("/admin")
		admin.Use(r.authMiddleware.Authenticate(), r.authMiddleware.RequireRole("admin"))
		{
			admin.GET("/documents/pending", r.verificationController.ListPendingDocuments)
			admin.POST("/documents/:id/approve", r.verificationController.ApproveDocument)
			admin.POST("/documents/:id/reject", r.verificationController.RejectDocument)
			admin.GET("/reports/verification-ledger", r.reportController.DownloadVerificationLedger)
		}
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
