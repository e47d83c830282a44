package models

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// Lamports is the only currency unit used inside the service.
type Lamports int64

const LamportsPerSOL = 1_000_000_000

var maxLamports = decimal.NewFromInt(math.MaxInt64)

func (l Lamports) SOL() decimal.Decimal {
	return decimal.New(int64(l), -9)
}

func (l Lamports) String() string {
	return l.SOL().String() + " SOL"
}

// LamportsFromSOL converts a decimal SOL amount, rejecting sub-lamport precision.
func LamportsFromSOL(sol decimal.Decimal) (Lamports, error) {
	scaled := sol.Shift(9)
	if !scaled.IsInteger() {
		return 0, fmt.Errorf("amount %s has more than 9 decimal places", sol.String())
	}
	if scaled.IsNegative() {
		return 0, fmt.Errorf("amount must not be negative")
	}
	if scaled.GreaterThan(maxLamports) {
		return 0, fmt.Errorf("amount %s is too large", sol.String())
	}
	return Lamports(scaled.IntPart()), nil
}

// AmountInput accepts either raw lamports or a decimal SOL value, never both.
type AmountInput struct {
	Lamports *int64          `json:"amount"`
	SOL      *decimal.Decimal `json:"amountSol"`
}

func (a AmountInput) Resolve() (Lamports, error) {
	switch {
	case a.Lamports != nil && a.SOL != nil:
		return 0, fmt.Errorf("provide either amount or amountSol, not both")
	case a.Lamports != nil:
		if *a.Lamports < 0 {
			return 0, fmt.Errorf("amount must not be negative")
		}
		return Lamports(*a.Lamports), nil
	case a.SOL != nil:
		return LamportsFromSOL(*a.SOL)
	default:
		return 0, fmt.Errorf("amount is required")
	}
}
