package services

import "time"

const (
	KeyUsedSignature = "sig:used:%s"
	KeyPayout        = "payout:%s"
	KeyUserPayouts   = "user:%s:payouts"
	KeyRateLimit     = "ratelimit:%s:%s"

	TTLPayout = 30 * 24 * time.Hour // 30 days

	MaxPayoutHistory = 100

	ActionBet   = "bet"
	ActionClaim = "claim"
)
