package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"dare-backend/internal/config"
	"dare-backend/internal/models"
	"dare-backend/internal/services"
)

func TestRedisService(t *testing.T) {
	cfg := &config.Config{
		RedisURL:  "localhost:6379",
		RedisPass: "",
		RedisDB:   0,
	}

	redisService, err := services.NewRedisService(cfg)
	if err != nil {
		t.Skipf("Redis not available: %v", err)
	}
	defer redisService.Close()

	ctx := context.Background()
	wallet := "redis-test-" + models.GenerateID()
	signature := "sig-" + models.GenerateID()

	fresh, err := redisService.MarkSignatureUsed(ctx, signature, time.Minute)
	require.NoError(t, err)
	require.True(t, fresh)

	fresh, err = redisService.MarkSignatureUsed(ctx, signature, time.Minute)
	require.NoError(t, err)
	require.False(t, fresh, "a signature must only be accepted once")

	for i := 0; i < 3; i++ {
		record := &models.PayoutRecord{
			ID:        models.GeneratePayoutID(),
			Wallet:    wallet,
			DareID:    "dare-1",
			Kind:      models.PayoutKindWinnings,
			Amount:    models.Lamports(i + 1),
			CreatedAt: time.Now().Add(time.Duration(i) * time.Millisecond),
		}
		require.NoError(t, redisService.SavePayout(ctx, record))
	}

	payouts, err := redisService.GetUserPayouts(ctx, wallet, 10)
	require.NoError(t, err)
	require.Len(t, payouts, 3)
	require.Equal(t, models.Lamports(3), payouts[0].Amount, "newest payout first")

	for i := 1; i <= 5; i++ {
		allowed, err := redisService.CheckRateLimit(ctx, wallet, services.ActionBet, 5, time.Minute)
		require.NoError(t, err)
		require.True(t, allowed, "request %d should be allowed", i)
	}

	allowed, err := redisService.CheckRateLimit(ctx, wallet, services.ActionBet, 5, time.Minute)
	require.NoError(t, err)
	require.False(t, allowed, "6th request should be rate limited")

	require.NoError(t, redisService.ClearRateLimit(ctx, wallet, services.ActionBet))
}
