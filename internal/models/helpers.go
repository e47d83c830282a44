package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

func GenerateID() string {
	return uuid.NewString()
}

func GeneratePayoutID() string {
	return fmt.Sprintf("payout_%s_%s",
		time.Now().Format("20060102"),
		uuid.NewString())
}

func (r *CreateDareRequest) Validate(now time.Time) error {
	if strings.TrimSpace(r.Title) == "" {
		return fmt.Errorf("title must not be blank")
	}
	if !r.Deadline.After(now) {
		return fmt.Errorf("deadline must be in the future")
	}
	if r.MinBet < 0 {
		return fmt.Errorf("minimum bet must not be negative")
	}
	return nil
}

func (r *PlaceBetRequest) Validate() (Lamports, error) {
	if r.DareID == "" && r.DareOnChainID == "" {
		return 0, fmt.Errorf("dareId or dareOnChainId is required")
	}
	if !r.BetType.Valid() {
		return 0, fmt.Errorf("invalid bet type: %s", r.BetType)
	}

	amount, err := r.AmountInput.Resolve()
	if err != nil {
		return 0, err
	}
	if amount <= 0 {
		return 0, fmt.Errorf("bet amount must be positive")
	}
	return amount, nil
}

func (r *UpdateBetRequest) Validate() error {
	if r.IsClaimed == nil && r.IsEarlyCashOut == nil {
		return fmt.Errorf("nothing to update")
	}
	if (r.IsClaimed != nil && !*r.IsClaimed) || (r.IsEarlyCashOut != nil && !*r.IsEarlyCashOut) {
		return fmt.Errorf("bet flags cannot be reset")
	}
	if r.IsClaimed != nil && r.IsEarlyCashOut != nil {
		return fmt.Errorf("a bet cannot be both claimed and cashed out")
	}
	return nil
}

func FormatSOL(l Lamports) string {
	return l.SOL().StringFixed(9)
}
