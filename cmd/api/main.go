package main

import (
	"context"

	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"dare-backend/internal/config"
	"dare-backend/internal/db"
	"dare-backend/internal/handlers"
	"dare-backend/internal/services"
)

func main() {
	log := logrus.New()

	if err := godotenv.Load(); err != nil {
		log.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	setupLogger(log, cfg)

	database, err := db.Open(cfg, log)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}

	redisService, err := services.NewRedisService(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisService.Close()

	client := rpc.New(cfg.SolanaRPCURL)

	txVerifier, err := services.NewSolanaTransactionVerifier(client, cfg.TreasuryWallet)
	if err != nil {
		log.Fatalf("Failed to create transaction verifier: %v", err)
	}

	var treasury services.Treasury
	if cfg.TreasuryPrivateKey != "" {
		treasury, err = services.NewSolanaTreasury(client, cfg.TreasuryPrivateKey, cfg.TreasuryWallet)
		if err != nil {
			log.Fatalf("Failed to load treasury key: %v", err)
		}
	} else {
		log.Warn("TREASURY_PRIVATE_KEY not set, payouts are recorded but not transferred")
		treasury = services.NewLedgerTreasury(log)
	}

	authorizer := services.NewSignedRequestAuthorizer(
		services.NewWalletSignatureVerifier(), redisService, cfg.ClaimSignatureTTL, nil)
	jwtService := services.NewJWTService(cfg)

	engine := services.NewSettlementEngine(services.EngineDeps{
		DB:         database,
		TxVerifier: txVerifier,
		Treasury:   treasury,
		Authorizer: authorizer,
		Feed:       redisService,
		Log:        log,
	})

	reportUnsettledPayouts(log, engine)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := handlers.NewRouter(handlers.RouterDeps{
		Config:  cfg,
		DB:      database,
		Cache:   redisService,
		Limiter: redisService,
		JWT:     jwtService,
		Auth:    services.NewAuthService(database, authorizer, jwtService, log),
		Engine:  engine,
		Dares:   services.NewDareService(database, log, nil),
		Users:   services.NewUserService(database, redisService, log),
		Log:     log,
	})

	log.WithFields(logrus.Fields{
		"port":    cfg.Port,
		"env":     cfg.Env,
		"network": cfg.SolanaRPCURL,
	}).Info("Server starting")
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func setupLogger(log *logrus.Logger, cfg *config.Config) {
	if cfg.IsProduction() {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Warnf("Invalid LOG_LEVEL %q, using info", cfg.LogLevel)
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
}

// reportUnsettledPayouts surfaces payouts whose transfer outcome is unknown. They are
// never retried automatically; an operator checks each signature on chain.
func reportUnsettledPayouts(log *logrus.Logger, engine *services.SettlementEngine) {
	payouts, err := engine.UnsettledPayouts(context.Background(), 100)
	if err != nil {
		log.WithError(err).Warn("Failed to check unsettled payouts")
		return
	}
	for _, p := range payouts {
		log.WithFields(logrus.Fields{
			"payout_id": p.ID,
			"kind":      p.Kind,
			"dare_id":   p.DareID,
			"bet_id":    p.BetID,
			"wallet":    p.Wallet,
			"amount":    int64(p.Amount),
			"status":    p.Status,
			"error":     p.LastError,
		}).Warn("Payout needs reconciliation")
	}
}
