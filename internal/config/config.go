package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Env  string
	Port string

	DatabaseDriver string
	DatabaseDSN    string

	RedisURL  string
	RedisPass string
	RedisDB   int

	JWTSecret string
	JWTExpiry time.Duration

	SolanaRPCURL       string
	TreasuryWallet     string
	TreasuryPrivateKey string

	// ClaimSignatureTTL bounds how old a signed claim timestamp may be.
	ClaimSignatureTTL time.Duration

	LogLevel string

	RateLimitBets   int
	RateLimitClaims int
}

func Load() (*Config, error) {
	cfg := &Config{
		Env:                getEnv("ENV", "development"),
		Port:               getEnv("PORT", "8080"),
		DatabaseDriver:     getEnv("DATABASE_DRIVER", "postgres"),
		DatabaseDSN:        os.Getenv("DATABASE_DSN"),
		RedisURL:           getEnv("REDIS_URL", "localhost:6379"),
		RedisPass:          os.Getenv("REDIS_PASSWORD"),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		SolanaRPCURL:       getEnv("SOLANA_RPC_URL", "https://api.devnet.solana.com"),
		TreasuryWallet:     os.Getenv("TREASURY_WALLET"),
		TreasuryPrivateKey: os.Getenv("TREASURY_PRIVATE_KEY"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
	}

	var err error
	if cfg.RedisDB, err = getEnvInt("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if cfg.RateLimitBets, err = getEnvInt("RATE_LIMIT_BETS", 30); err != nil {
		return nil, err
	}
	if cfg.RateLimitClaims, err = getEnvInt("RATE_LIMIT_CLAIMS", 60); err != nil {
		return nil, err
	}
	if cfg.JWTExpiry, err = getEnvDuration("JWT_EXPIRY", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.ClaimSignatureTTL, err = getEnvDuration("CLAIM_SIGNATURE_TTL", 5*time.Minute); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.DatabaseDSN == "" {
		return fmt.Errorf("DATABASE_DSN is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.TreasuryWallet == "" {
		return fmt.Errorf("TREASURY_WALLET is required")
	}

	switch c.DatabaseDriver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER: %s", c.DatabaseDriver)
	}

	return nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %v", key, err)
	}
	return n, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %v", key, err)
	}
	return d, nil
}
