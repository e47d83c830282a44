package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"dare-backend/internal/models"
)

type MockTxVerifier struct {
	VerifyTransferFunc func(ctx context.Context, txSignature, from string, amount models.Lamports) error
}

func (m *MockTxVerifier) VerifyTransfer(ctx context.Context, txSignature, from string, amount models.Lamports) error {
	if m.VerifyTransferFunc != nil {
		return m.VerifyTransferFunc(ctx, txSignature, from, amount)
	}

	return nil
}

type Transfer struct {
	To     string
	Amount models.Lamports
}

// MockTreasury records every transfer it was asked to make.
type MockTreasury struct {
	TransferFunc func(ctx context.Context, to string, amount models.Lamports) (string, error)

	mu        sync.Mutex
	transfers []Transfer
}

func (m *MockTreasury) Transfer(ctx context.Context, to string, amount models.Lamports) (string, error) {
	if m.TransferFunc != nil {
		sig, err := m.TransferFunc(ctx, to, amount)
		if err != nil {
			return "", err
		}
		m.record(to, amount)
		return sig, nil
	}

	n := m.record(to, amount)
	return fmt.Sprintf("transfer-%d", n), nil
}

func (m *MockTreasury) Transfers() []Transfer {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Transfer(nil), m.transfers...)
}

func (m *MockTreasury) Paid(to string) models.Lamports {
	var total models.Lamports
	for _, t := range m.Transfers() {
		if t.To == to {
			total += t.Amount
		}
	}
	return total
}

func (m *MockTreasury) record(to string, amount models.Lamports) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transfers = append(m.transfers, Transfer{To: to, Amount: amount})
	return len(m.transfers)
}

// MockReplayGuard keeps used signatures in memory unless MarkSignatureUsedFunc is set.
type MockReplayGuard struct {
	MarkSignatureUsedFunc func(ctx context.Context, signature string, ttl time.Duration) (bool, error)

	mu   sync.Mutex
	used map[string]bool
}

func (m *MockReplayGuard) MarkSignatureUsed(ctx context.Context, signature string, ttl time.Duration) (bool, error) {
	if m.MarkSignatureUsedFunc != nil {
		return m.MarkSignatureUsedFunc(ctx, signature, ttl)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.used == nil {
		m.used = make(map[string]bool)
	}
	if m.used[signature] {
		return false, nil
	}
	m.used[signature] = true
	return true, nil
}

// MockPayoutFeed is an in-memory payout activity feed.
type MockPayoutFeed struct {
	SavePayoutFunc func(ctx context.Context, record *models.PayoutRecord) error

	mu      sync.Mutex
	records []*models.PayoutRecord
}

func (m *MockPayoutFeed) SavePayout(ctx context.Context, record *models.PayoutRecord) error {
	if m.SavePayoutFunc != nil {
		return m.SavePayoutFunc(ctx, record)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, record)
	return nil
}

func (m *MockPayoutFeed) GetUserPayouts(_ context.Context, wallet string, limit int64) ([]*models.PayoutRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := []*models.PayoutRecord{}
	for i := len(m.records) - 1; i >= 0 && (limit <= 0 || int64(len(out)) < limit); i-- {
		if m.records[i].Wallet == wallet {
			out = append(out, m.records[i])
		}
	}
	return out, nil
}

type MockRateLimiter struct {
	CheckRateLimitFunc func(ctx context.Context, subject, action string, limit int, window time.Duration) (bool, error)
}

func (m *MockRateLimiter) CheckRateLimit(
	ctx context.Context, subject, action string, limit int, window time.Duration,
) (bool, error) {
	if m.CheckRateLimitFunc != nil {
		return m.CheckRateLimitFunc(ctx, subject, action, limit, window)
	}

	return true, nil
}
