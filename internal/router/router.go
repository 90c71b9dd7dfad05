package router

import (
	"time"

	"tably/config"
	"tably/internal/handler"
	"tably/internal/ledger"
	"tably/internal/middleware"
	"tably/internal/repository"
	"tably/internal/service"
	"tably/pkg/chain"
	"tably/pkg/venuewallet"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Deps bundles everything Setup wires so main and tests build it the same way.
type Deps struct {
	PayoutSvc *service.PayoutService
}

func Setup(cfg *config.Config, db *gorm.DB, rdb *redis.Client) (*gin.Engine, *Deps) {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	// Repositories
	profileRepo := repository.NewProfileRepository(db)
	stakeRepo := repository.NewStakeRepository(db)
	withdrawalRepo := repository.NewWithdrawalRepository(db)
	membershipRepo := repository.NewMembershipRepository(db)
	venueRepo := repository.NewVenueRepository(db)
	reconRepo := repository.NewReconciliationRepository(db)

	// External clients
	wallet := venuewallet.New(cfg.VenueWallet.BaseURL, cfg.VenueWallet.APIKey, cfg.VenueWallet.Timeout)
	chainClient := chain.New(cfg.Chain.BaseURL, cfg.Chain.APIKey, cfg.Chain.CustodyAccount, cfg.Chain.Timeout)

	// Services
	ldg := ledger.New(db)
	authSvc := service.NewAuthService(cfg, profileRepo)
	stakeSvc := service.NewStakeService(stakeRepo, withdrawalRepo)
	depositSvc := service.NewDepositService(stakeRepo, profileRepo)
	settlementSvc := service.NewSettlementService(ldg, membershipRepo, venueRepo, withdrawalRepo, reconRepo, wallet)
	payoutSvc := service.NewPayoutService(stakeRepo, reconRepo, chainClient)

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc)
	stakeHandler := handler.NewStakeHandler(ldg, stakeSvc)
	settlementHandler := handler.NewSettlementHandler(settlementSvc, membershipRepo, venueRepo)
	depositWebhookHandler := handler.NewDepositWebhookHandler(depositSvc, cfg.Deposits.WebhookSecret)
	adminHandler := handler.NewAdminHandler(payoutSvc, reconRepo, venueRepo)

	authMw := middleware.AuthRequired(&cfg.JWT)
	limiter := middleware.NewRedisRateLimiter(rdb, 100, 60*time.Second)
	// Keyed by profile where auth has run, by client IP before that, so the
	// limiter middleware sits after authMw on authenticated groups.
	rateMw := middleware.RateLimit(limiter)

	api := r.Group("/api/v1")
	{
		authGroup := api.Group("/auth")
		authGroup.Use(rateMw)
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}

		me := api.Group("/me")
		me.Use(authMw, rateMw)
		{
			me.GET("/balance", stakeHandler.GetBalance)
			me.GET("/stakes", stakeHandler.ListStakes)
			me.GET("/withdrawals", stakeHandler.ListWithdrawals)
			me.PUT("/wallet", authHandler.SetWallet)
		}
		api.POST("/stakes/:id/unstake", authMw, rateMw, stakeHandler.RequestUnstake)

		venues := api.Group("/venues")
		venues.Use(authMw, rateMw)
		{
			venues.GET("", settlementHandler.ListVenues)
			venues.POST("/:id/memberships", settlementHandler.Join)
			venues.POST("/:id/check-in", settlementHandler.CheckIn)
			venues.POST("/:id/check-out", settlementHandler.CheckOut)
		}

		// Webhooks are not rate limited: the sender retries on any non-2xx and
		// throttling would only delay ledger credits.
		api.POST("/webhooks/deposit", depositWebhookHandler.Handle)

		admin := api.Group("/admin")
		admin.Use(authMw, middleware.RequireRole("ADMIN"), rateMw)
		{
			admin.POST("/payouts/run", adminHandler.RunPayouts)
			admin.GET("/reconciliation", adminHandler.ListReconciliation)
			admin.POST("/reconciliation/:id/resolve", adminHandler.ResolveReconciliation)
			admin.POST("/venues", adminHandler.CreateVenue)
		}
	}

	return r, &Deps{PayoutSvc: payoutSvc}
}
