package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dkruglov/freemarket-backend/internal/config"
	"github.com/dkruglov/freemarket-backend/internal/http/handlers"
	"github.com/dkruglov/freemarket-backend/internal/http/middleware"
	"github.com/dkruglov/freemarket-backend/internal/models"
	"github.com/dkruglov/freemarket-backend/internal/service"
)

func SetupRouter(
	cfg *config.Config,
	authHandler *handlers.AuthHandler,
	projectHandler *handlers.ProjectHandler,
	bidHandler *handlers.BidHandler,
	engagementHandler *handlers.EngagementHandler,
	disputeHandler *handlers.DisputeHandler,
	reviewHandler *handlers.ReviewHandler,
	conversationHandler *handlers.ConversationHandler,
	notificationHandler *handlers.NotificationHandler,
	mediaHandler *handlers.MediaHandler,
	healthHandler *handlers.HealthHandler,
	tokenManager *service.TokenManager,
) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", healthHandler.Health)
	r.StaticFS("/media", http.Dir(cfg.MediaStoragePath))

	api := r.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod))
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/refresh", authHandler.Refresh)
	}

	// Публичные маршруты
	api.GET("/projects", projectHandler.ListProjects)
	api.GET("/projects/:id", middleware.UUIDValidator("id"), projectHandler.GetProject)
	api.GET("/users/:id/reviews", middleware.UUIDValidator("id"), reviewHandler.ListUserReviews)
	api.GET("/businesses/:id/profile", middleware.UUIDValidator("id"), authHandler.GetBusinessProfile)
	api.GET("/freelancers/:id/profile", middleware.UUIDValidator("id"), authHandler.GetFreelancerProfile)

	// Защищённые маршруты
	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(tokenManager))
	{
		protected.GET("/users/me", authHandler.Me)
		protected.PUT("/businesses/me/profile", middleware.RequireRole(models.RoleBusiness), authHandler.UpdateBusinessProfile)
		protected.PUT("/freelancers/me/profile", middleware.RequireRole(models.RoleFreelancer), authHandler.UpdateFreelancerProfile)

		// Проекты
		business := middleware.RequireRole(models.RoleBusiness)
		freelancer := middleware.RequireRole(models.RoleFreelancer)

		protected.POST("/projects", business, projectHandler.CreateProject)
		protected.PUT("/projects/:id", business, middleware.UUIDValidator("id"), projectHandler.UpdateProject)
		protected.POST("/projects/:id/close", business, middleware.UUIDValidator("id"), projectHandler.CloseProject)
		protected.GET("/businesses/me/projects", business, projectHandler.ListMyProjects)
		protected.GET("/projects/:id/bids", business, middleware.UUIDValidator("id"), bidHandler.ListProjectBids)

		// Ставки
		protected.POST("/bids", freelancer, bidHandler.CreateBid)
		protected.GET("/bids/:id", middleware.UUIDValidator("id"), bidHandler.GetBid)
		protected.POST("/bids/:id/status", business, middleware.UUIDValidator("id"), bidHandler.UpdateBidStatus)
		protected.DELETE("/bids/:id", freelancer, middleware.UUIDValidator("id"), bidHandler.WithdrawBid)
		protected.GET("/freelancers/me/bids", freelancer, bidHandler.ListMyBids)

		// Принятие ставки: создаёт сотрудничество, идемпотентно
		protected.POST("/bids/:id/accept", business, middleware.UUIDValidator("id"), bidHandler.AcceptBid)

		// Сотрудничества
		protected.GET("/engagements/:id", middleware.UUIDValidator("id"), engagementHandler.GetEngagement)
		protected.GET("/businesses/me/engagements", business, engagementHandler.ListMyEngagements)
		protected.GET("/freelancers/me/engagements", freelancer, engagementHandler.ListMyEngagements)
		protected.POST("/engagements/:id/start", middleware.UUIDValidator("id"), engagementHandler.StartEngagement)
		protected.POST("/engagements/:id/complete", middleware.UUIDValidator("id"), engagementHandler.CompleteEngagement)
		protected.POST("/engagements/:id/cancel", middleware.UUIDValidator("id"), engagementHandler.CancelEngagement)
		protected.POST("/engagements/:id/milestones", middleware.UUIDValidator("id"), engagementHandler.AppendMilestones)
		protected.POST("/engagements/:id/payment-status", business, middleware.UUIDValidator("id"), engagementHandler.UpdatePaymentStatus)
		protected.GET("/engagements/:id/payment-status", middleware.UUIDValidator("id"), engagementHandler.GetPaymentStatus)
		protected.POST("/engagements/:id/mark-received", freelancer, middleware.UUIDValidator("id"), engagementHandler.MarkReceived)

		// Этапы
		protected.PUT("/milestones/:id", middleware.UUIDValidator("id"), engagementHandler.UpdateMilestone)
		protected.POST("/milestones/:id/start", middleware.UUIDValidator("id"), engagementHandler.StartMilestone)
		protected.POST("/milestones/:id/submit", middleware.UUIDValidator("id"), engagementHandler.SubmitMilestone)
		protected.POST("/milestones/:id/approve", middleware.UUIDValidator("id"), engagementHandler.ApproveMilestone)
		protected.POST("/milestones/:id/reject", middleware.UUIDValidator("id"), engagementHandler.RejectMilestone)
		protected.POST("/milestones/:id/deliverables", middleware.UUIDValidator("id"), engagementHandler.AddDeliverable)
		protected.GET("/milestones/:id/deliverables", middleware.UUIDValidator("id"), engagementHandler.ListDeliverables)

		// Споры
		protected.POST("/engagements/:id/disputes", middleware.UUIDValidator("id"), disputeHandler.CreateDispute)
		protected.GET("/engagements/:id/disputes", middleware.UUIDValidator("id"), disputeHandler.ListEngagementDisputes)
		protected.GET("/disputes/:id", middleware.UUIDValidator("id"), disputeHandler.GetDispute)
		protected.POST("/disputes/:id/attachments", middleware.UUIDValidator("id"), disputeHandler.AddAttachment)

		// Отзывы
		protected.POST("/engagements/:id/reviews", middleware.UUIDValidator("id"), reviewHandler.CreateReview)
		protected.GET("/engagements/:id/reviews", middleware.UUIDValidator("id"), reviewHandler.ListEngagementReviews)
		protected.GET("/engagements/:id/reviews/can-review", middleware.UUIDValidator("id"), reviewHandler.CanReview)

		// Переписки
		protected.POST("/conversations", conversationHandler.CreateConversation)
		protected.GET("/conversations", conversationHandler.ListMyConversations)
		protected.GET("/conversations/:id", middleware.UUIDValidator("id"), conversationHandler.GetConversation)
		protected.POST("/conversations/:id/messages", middleware.UUIDValidator("id"), conversationHandler.SendMessage)
		protected.GET("/conversations/:id/messages", middleware.UUIDValidator("id"), conversationHandler.ListMessages)

		// Уведомления
		protected.GET("/notifications", notificationHandler.ListMyNotifications)
		protected.GET("/notifications/unread-count", notificationHandler.CountUnread)
		protected.POST("/notifications/:id/read", middleware.UUIDValidator("id"), notificationHandler.MarkRead)
		protected.POST("/notifications/read-all", notificationHandler.MarkAllRead)

		// Загрузка файлов
		protected.POST("/media/upload", mediaHandler.Upload)

		// Администрирование
		admin := protected.Group("/admin")
		admin.Use(middleware.RequireAdmin())
		{
			admin.GET("/disputes", disputeHandler.ListOpenDisputes)
			admin.POST("/disputes/:id/resolve", middleware.UUIDValidator("id"), disputeHandler.ResolveDispute)
		}
	}

	return r
}
