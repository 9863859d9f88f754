package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/breathfree/quit_go_server/config"
	"github.com/breathfree/quit_go_server/internal/api/handler"
	"github.com/breathfree/quit_go_server/internal/api/middleware"
	"github.com/breathfree/quit_go_server/internal/model"
	"github.com/breathfree/quit_go_server/internal/pkg/inflight"
)

// InFlight 操作名，同时作为 redis key 的一部分
const (
	opPlanCreate    = "plan_create"
	opPlanUpdate    = "plan_update"
	opPlanCancel    = "plan_cancel"
	opPaymentCreate = "payment_create"
	opProgressLog   = "progress_log"
)

type Router struct {
	authHandler         *handler.AuthHandler
	userHandler         *handler.UserHandler
	subscriptionHandler *handler.SubscriptionHandler
	paymentHandler      *handler.PaymentHandler
	smokingHandler      *handler.SmokingStatusHandler
	quitPlanHandler     *handler.QuitPlanHandler
	progressHandler     *handler.ProgressHandler
	coachHandler        *handler.CoachHandler
	feedbackHandler     *handler.FeedbackHandler
	adminHandler        *handler.AdminHandler
	websocketHandler    *handler.WebSocketHandler
	accessChecker       middleware.AccessChecker
	guard               *inflight.Guard
	cfg                 *config.Config
}

func NewRouter(
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	subscriptionHandler *handler.SubscriptionHandler,
	paymentHandler *handler.PaymentHandler,
	smokingHandler *handler.SmokingStatusHandler,
	quitPlanHandler *handler.QuitPlanHandler,
	progressHandler *handler.ProgressHandler,
	coachHandler *handler.CoachHandler,
	feedbackHandler *handler.FeedbackHandler,
	adminHandler *handler.AdminHandler,
	websocketHandler *handler.WebSocketHandler,
	accessChecker middleware.AccessChecker,
	guard *inflight.Guard,
	cfg *config.Config,
) *Router {
	return &Router{
		authHandler:         authHandler,
		userHandler:         userHandler,
		subscriptionHandler: subscriptionHandler,
		paymentHandler:      paymentHandler,
		smokingHandler:      smokingHandler,
		quitPlanHandler:     quitPlanHandler,
		progressHandler:     progressHandler,
		coachHandler:        coachHandler,
		feedbackHandler:     feedbackHandler,
		adminHandler:        adminHandler,
		websocketHandler:    websocketHandler,
		accessChecker:       accessChecker,
		guard:               guard,
		cfg:                 cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	if r.cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger())
	engine.Use(middleware.Metrics())
	engine.Use(middleware.CORS(r.cfg.CORS))

	if r.cfg.Metrics.Enabled {
		path := r.cfg.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		engine.GET(path, gin.WrapH(promhttp.Handler()))
	}

	api := engine.Group("/api/v1")
	{
		// WebSocket
		api.GET("/ws", r.websocketHandler.Handle)

		// 公开接口 - 认证
		auth := api.Group("/auth")
		{
			auth.POST("/register", r.authHandler.Register)
			auth.POST("/login", r.authHandler.Login)
			auth.GET("/google", r.authHandler.GoogleAuth)
			auth.GET("/google/callback", r.authHandler.GoogleCallback)
		}

		// 公开接口 - 套餐、网关回跳
		api.GET("/memberships", r.subscriptionHandler.Memberships)
		api.GET("/payMembership/return", r.paymentHandler.Return)

		// 需要认证的接口
		authenticated := api.Group("")
		authenticated.Use(middleware.Auth(r.cfg.JWT.Secret))
		{
			// 用户
			user := authenticated.Group("/user")
			{
				user.GET("/profile", r.userHandler.GetProfile)
				user.PUT("/profile", r.userHandler.UpdateProfile)
				user.POST("/avatar", r.userHandler.UploadAvatar)
			}

			// 订阅
			sub := authenticated.Group("/subscription")
			{
				sub.GET("/status", r.subscriptionHandler.Status)
				sub.GET("/history", r.subscriptionHandler.History)
				sub.PUT("/cancel", r.subscriptionHandler.Cancel)
				sub.PUT("/extend/:id", r.paymentHandler.Extend)
			}

			// 支付
			pay := authenticated.Group("/payMembership")
			{
				pay.POST("", middleware.InFlight(r.guard, opPaymentCreate), r.paymentHandler.Create)
				pay.GET("/:txnRef/qr", r.paymentHandler.QRCode)
				pay.POST("/confirm-payment", r.paymentHandler.Confirm)
			}

			// 吸烟状况
			smoking := authenticated.Group("/smoking-status")
			{
				smoking.GET("", r.smokingHandler.Get)
				smoking.POST("", r.smokingHandler.Upsert)
				smoking.DELETE("", r.smokingHandler.Delete)
			}

			// 反馈
			authenticated.POST("/feedback", r.feedbackHandler.Submit)
			authenticated.POST("/ratings", r.feedbackHandler.Rate)

			// 以下需要有效订阅
			gated := authenticated.Group("")
			gated.Use(middleware.SubscriptionRequired(r.accessChecker))
			{
				plans := gated.Group("/quit-plans")
				{
					plans.GET("/suggestions", r.quitPlanHandler.Suggest)
					plans.GET("/current", r.quitPlanHandler.Current)
					plans.GET("/history", r.quitPlanHandler.History)
					plans.POST("", middleware.InFlight(r.guard, opPlanCreate), r.quitPlanHandler.Create)
					plans.PUT("/:id", middleware.InFlight(r.guard, opPlanUpdate), r.quitPlanHandler.Update)
					plans.PUT("/:id/cancel", middleware.InFlight(r.guard, opPlanCancel), r.quitPlanHandler.Cancel)
				}

				logs := gated.Group("/progress-logs")
				{
					logs.POST("", middleware.InFlight(r.guard, opProgressLog), r.progressHandler.LogToday)
					logs.GET("", r.progressHandler.List)
					logs.GET("/today", r.progressHandler.Today)
					logs.GET("/statistics", r.progressHandler.Statistics)
					logs.GET("/chart", r.progressHandler.Chart)
					logs.GET("/report", r.progressHandler.Report)
				}

				coach := gated.Group("/coach")
				{
					coach.GET("", r.coachHandler.Chats)
					coach.GET("/:id", r.coachHandler.Messages)
					coach.POST("/:id", r.coachHandler.Send)
				}
			}

			// 管理后台
			admin := authenticated.Group("/admin")
			admin.Use(middleware.RequireRole(model.RoleAdmin))
			{
				admin.GET("/users", r.adminHandler.ListUsers)
				admin.GET("/users/export", r.adminHandler.ExportUsers)
				admin.PUT("/users/:id", r.adminHandler.UpdateUser)
				admin.DELETE("/users/:id", r.adminHandler.DeleteUser)
				admin.GET("/membership/statistics", r.adminHandler.Statistics)

				admin.GET("/memberships", r.subscriptionHandler.AdminMemberships)
				admin.POST("/memberships", r.subscriptionHandler.CreateMembership)
				admin.PUT("/memberships/:id", r.subscriptionHandler.UpdateMembership)
				admin.DELETE("/memberships/:id", r.subscriptionHandler.DeleteMembership)

				admin.GET("/feedback", r.feedbackHandler.List)
				admin.PUT("/feedback/:id", r.feedbackHandler.UpdateStatus)
				admin.DELETE("/feedback/:id", r.feedbackHandler.Delete)
				admin.GET("/ratings", r.feedbackHandler.Ratings)
				admin.DELETE("/ratings/:id", r.feedbackHandler.DeleteRating)
			}
		}
	}

	return engine
}
