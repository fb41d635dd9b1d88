package main

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"onec-traders.backend/internal/interfaces/http/handlers"
	"onec-traders.backend/internal/interfaces/http/middleware"
)

const (
	serviceName    = "onec-traders-backend"
	serviceVersion = "1.0.0"
)

type routeDeps struct {
	planHandler           *handlers.PlanHandler
	authHandler           *handlers.AuthHandler
	investmentHandler     *handlers.InvestmentHandler
	walletHandler         *handlers.WalletHandler
	notificationHandler   *handlers.NotificationHandler
	adminHandler          *handlers.AdminHandler
	authMiddleware        gin.HandlerFunc
	idempotencyMiddleware gin.HandlerFunc
}

func applyCORSMiddleware(r *gin.Engine, origins []string) {
	corsConfig := cors.DefaultConfig()
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = origins
		corsConfig.AllowCredentials = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"}
	corsConfig.AllowHeaders = []string{
		"Origin", "Content-Type", "Content-Length", "Accept", "Authorization",
		middleware.RequestIDHeader, middleware.IdempotencyHeader,
	}
	corsConfig.ExposeHeaders = []string{middleware.RequestIDHeader}
	corsConfig.MaxAge = 12 * time.Hour
	r.Use(cors.New(corsConfig))
}

func registerHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": serviceName,
			"version": serviceVersion,
		})
	})
}

func registerMetricsRoute(r *gin.Engine, reg *prometheus.Registry) {
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})))
}

func registerAPIV1Routes(r *gin.Engine, d routeDeps) {
	v1 := r.Group("/api/v1")
	{
		// Plan catalog (public)
		plans := v1.Group("/plans")
		{
			plans.GET("", d.planHandler.ListPlans)
			plans.GET("/:type", d.planHandler.GetPlan)
		}

		// Auth routes
		auth := v1.Group("/auth")
		{
			auth.POST("/register", d.authHandler.Register)
		}

		v1.GET("/me", d.authMiddleware, d.authHandler.GetMe)
		v1.GET("/referrals", d.authMiddleware, d.authHandler.ListReferrals)

		// Investment routes (protected)
		investments := v1.Group("/investments")
		investments.Use(d.authMiddleware)
		{
			investments.POST("", d.idempotencyMiddleware, d.investmentHandler.CreateInvestment)
			investments.GET("", d.investmentHandler.ListInvestments)
			investments.GET("/:id", d.investmentHandler.GetInvestment)
			investments.GET("/:id/commissions", d.investmentHandler.ListCommissions)
			investments.POST("/:id/cancel", d.investmentHandler.CancelInvestment)
		}

		// Ledger routes (protected)
		v1.GET("/transactions", d.authMiddleware, d.walletHandler.ListTransactions)
		v1.POST("/withdrawals", d.authMiddleware, d.idempotencyMiddleware, d.walletHandler.RequestWithdrawal)

		// Notification routes (protected)
		notifications := v1.Group("/notifications")
		notifications.Use(d.authMiddleware)
		{
			notifications.GET("", d.notificationHandler.ListNotifications)
			notifications.GET("/unread-count", d.notificationHandler.UnreadCount)
			notifications.PATCH("/:id/read", d.notificationHandler.MarkRead)
			notifications.DELETE("/:id", d.notificationHandler.DeleteNotification)
		}

		// Admin routes (protected)
		admin := v1.Group("/admin")
		admin.Use(d.authMiddleware, middleware.RequireAdmin())
		{
			admin.POST("/accrual/run", d.adminHandler.RunAccrual)
			admin.POST("/withdrawals/:id/review", d.walletHandler.ReviewWithdrawal)
			admin.POST("/deposits", d.walletHandler.RecordDeposit)
			admin.POST("/investments/:id/cancel", d.investmentHandler.CancelInvestment)
			admin.DELETE("/notifications/:id", d.notificationHandler.DeleteNotification)
		}
	}
}
