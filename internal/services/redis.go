package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"dare-backend/internal/config"
	"dare-backend/internal/models"
)

// ReplayGuard remembers signatures that were already accepted.
type ReplayGuard interface {
	// MarkSignatureUsed reports false when the signature was seen before.
	MarkSignatureUsed(ctx context.Context, signature string, ttl time.Duration) (bool, error)
}

type PayoutFeed interface {
	SavePayout(ctx context.Context, record *models.PayoutRecord) error
	GetUserPayouts(ctx context.Context, wallet string, limit int64) ([]*models.PayoutRecord, error)
}

type RateLimiter interface {
	CheckRateLimit(ctx context.Context, subject, action string, limit int, window time.Duration) (bool, error)
}

type RedisService struct {
	client *redis.Client
}

func NewRedisService(cfg *config.Config) (*RedisService, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisURL,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDB,
	})

	if _, err := client.Ping(context.Background()).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %v", err)
	}

	return &RedisService{client: client}, nil
}

func (s *RedisService) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisService) Close() error {
	return s.client.Close()
}

func (s *RedisService) MarkSignatureUsed(ctx context.Context, signature string, ttl time.Duration) (bool, error) {
	key := fmt.Sprintf(KeyUsedSignature, signature)

	fresh, err := s.client.SetNX(ctx, key, time.Now().Unix(), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to record signature: %v", err)
	}
	return fresh, nil
}

func (s *RedisService) CheckRateLimit(
	ctx context.Context, subject, action string, limit int, window time.Duration,
) (bool, error) {
	key := fmt.Sprintf(KeyRateLimit, subject, action)

	count, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check rate limit: %v", err)
	}

	if count == 1 {
		s.client.Expire(ctx, key, window)
	}

	return count <= int64(limit), nil
}

func (s *RedisService) SavePayout(ctx context.Context, record *models.PayoutRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal payout: %v", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, fmt.Sprintf(KeyPayout, record.ID), data, TTLPayout)

	userKey := fmt.Sprintf(KeyUserPayouts, record.Wallet)
	pipe.ZAdd(ctx, userKey, redis.Z{
		Score:  float64(record.CreatedAt.UnixMilli()),
		Member: record.ID,
	})
	// Keep only the most recent entries.
	pipe.ZRemRangeByRank(ctx, userKey, 0, -(MaxPayoutHistory + 1))
	pipe.Expire(ctx, userKey, TTLPayout)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save payout: %v", err)
	}
	return nil
}

func (s *RedisService) GetUserPayouts(ctx context.Context, wallet string, limit int64) ([]*models.PayoutRecord, error) {
	if limit <= 0 || limit > MaxPayoutHistory {
		limit = 50
	}

	ids, err := s.client.ZRevRange(ctx, fmt.Sprintf(KeyUserPayouts, wallet), 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get payout IDs: %v", err)
	}
	if len(ids) == 0 {
		return []*models.PayoutRecord{}, nil
	}

	pipe := s.client.Pipeline()
	cmds := make([]*redis.StringCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.Get(ctx, fmt.Sprintf(KeyPayout, id))
	}

	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("pipeline execution failed: %v", err)
	}

	records := make([]*models.PayoutRecord, 0, len(ids))
	for _, cmd := range cmds {
		data, err := cmd.Result()
		if err != nil {
			continue
		}

		var record models.PayoutRecord
		if err := json.Unmarshal([]byte(data), &record); err != nil {
			continue
		}
		records = append(records, &record)
	}

	return records, nil
}

func (s *RedisService) ClearRateLimit(ctx context.Context, subject, action string) error {
	return s.client.Del(ctx, fmt.Sprintf(KeyRateLimit, subject, action)).Err()
}
