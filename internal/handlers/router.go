package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"dare-backend/internal/config"
	"dare-backend/internal/middleware"
	"dare-backend/internal/services"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type RouterDeps struct {
	Config  *config.Config
	DB      *gorm.DB
	Cache   Pinger
	Limiter services.RateLimiter
	JWT     *services.JWTService
	Auth    *services.AuthService
	Engine  *services.SettlementEngine
	Dares   *services.DareService
	Users   *services.UserService
	Log     *logrus.Logger
}

func NewRouter(deps RouterDeps) *gin.Engine {
	authHandler := NewAuthHandler(deps.Auth, deps.Log)
	dareHandler := NewDareHandler(deps.Dares, deps.Engine, deps.Log)
	betHandler := NewBetHandler(deps.Engine, deps.Log)
	payoutHandler := NewPayoutHandler(deps.Engine, deps.Log)
	userHandler := NewUserHandler(deps.Users, deps.Log)

	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(deps.Log))

	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	router.GET("/healthz", health(deps.DB, deps.Cache))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.POST("/auth/wallet", authHandler.WalletLogin)

	auth := middleware.AuthMiddleware(deps.JWT)
	limitBets := middleware.RateLimitMiddleware(deps.Limiter, services.ActionBet, deps.Config.RateLimitBets, deps.Log)
	limitClaims := middleware.RateLimitMiddleware(deps.Limiter, services.ActionClaim, deps.Config.RateLimitClaims, deps.Log)

	api := router.Group("/api")
	{
		dares := api.Group("/dares")
		{
			dares.GET("", dareHandler.ListDares)
			dares.GET("/:id", dareHandler.GetDare)
			dares.GET("/:id/bets", dareHandler.ListBets)
			dares.POST("", auth, dareHandler.CreateDare)
			dares.POST("/:id/proof", auth, dareHandler.SubmitProof)
		}

		bets := api.Group("/bets", auth)
		{
			bets.POST("", limitBets, betHandler.PlaceBet)
			bets.PATCH("/:onChainId", betHandler.UpdateBet)
		}

		payouts := api.Group("/payouts", limitClaims)
		{
			payouts.POST("/claim", payoutHandler.Claim)
			payouts.POST("/creator-fee", payoutHandler.ClaimCreatorFee)
			payouts.POST("/completer-reward", payoutHandler.ClaimCompleterReward)
			payouts.POST("/winnings", payoutHandler.ClaimWinnings)
			payouts.POST("/cash-out", payoutHandler.CashOut)
		}

		users := api.Group("/users")
		{
			users.PUT("/me", auth, userHandler.UpdateMe)
			users.GET("/:wallet", userHandler.GetProfile)
			users.GET("/:wallet/payouts", userHandler.GetPayouts)
		}
	}

	return router
}

func health(db *gorm.DB, cache Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		status := gin.H{"database": "ok", "redis": "ok"}
		code := http.StatusOK

		if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
			status["database"] = "unavailable"
			code = http.StatusServiceUnavailable
		}
		if cache != nil {
			if err := cache.Ping(ctx); err != nil {
				status["redis"] = "unavailable"
				code = http.StatusServiceUnavailable
			}
		}

		c.JSON(code, status)
	}
}
