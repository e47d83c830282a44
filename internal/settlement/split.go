package settlement

import (
	"math/big"
	"time"

	"dare-backend/internal/errorx"
	"dare-backend/internal/models"
)

const (
	BasisPoints        = 10_000
	CreatorFeeBps      = 200
	CompleterRewardBps = 5_000
	WinnersShareBps    = 4_800
	CashOutPenaltyBps  = 1_000

	// CashOutCutoff is how long before the deadline early cash-out closes.
	CashOutCutoff = 10 * time.Minute
)

var (
	ErrDareOpen         = errorx.New(errorx.Conflict, "dare is not resolved yet")
	ErrDareNotCompleted = errorx.New(errorx.Conflict, "dare was not completed")
	ErrEmptyPool        = errorx.New(errorx.Conflict, "dare pool is empty")
	ErrAlreadyClaimed   = errorx.New(errorx.Conflict, "payout already claimed")
	ErrNotCreator       = errorx.New(errorx.Forbidden, "wallet is not the dare creator")
	ErrNotCompleter     = errorx.New(errorx.Forbidden, "wallet did not submit the completion proof")
	ErrNotBettor        = errorx.New(errorx.Forbidden, "wallet did not place this bet")
	ErrLosingBet        = errorx.New(errorx.Conflict, "bet is not on the winning side")
	ErrNoWinningPool    = errorx.New(errorx.Conflict, "no bets on the winning side")
	ErrBetCashedOut     = errorx.New(errorx.Conflict, "bet was cashed out early")
	ErrCashOutClosed    = errorx.New(errorx.Conflict, "early cash-out window is closed")
)

func CreatorFee(totalPool models.Lamports) models.Lamports {
	return mulDiv(int64(totalPool), CreatorFeeBps, BasisPoints)
}

func CompleterReward(totalPool models.Lamports) models.Lamports {
	return mulDiv(int64(totalPool), CompleterRewardBps, BasisPoints)
}

// WinningsShare is totalPool * 48% * amount / winningSidePool, floored once.
func WinningsShare(totalPool, amount, winningSidePool models.Lamports) models.Lamports {
	if winningSidePool <= 0 {
		return 0
	}
	num := new(big.Int).Mul(big.NewInt(int64(totalPool)), big.NewInt(WinnersShareBps))
	num.Mul(num, big.NewInt(int64(amount)))
	den := new(big.Int).Mul(big.NewInt(BasisPoints), big.NewInt(int64(winningSidePool)))
	return models.Lamports(num.Quo(num, den).Int64())
}

func CashOutRefund(amount models.Lamports) models.Lamports {
	return mulDiv(int64(amount), BasisPoints-CashOutPenaltyBps, BasisPoints)
}

func CashOutDeadline(d *models.Dare) time.Time {
	return d.Deadline.Add(-CashOutCutoff)
}

func mulDiv(a, b, c int64) models.Lamports {
	r := new(big.Int).Mul(big.NewInt(a), big.NewInt(b))
	return models.Lamports(r.Quo(r, big.NewInt(c)).Int64())
}

// CheckCreatorFee returns the creator's 2% of the pool. Unlike a bare split it also
// requires the dare to be resolved: while a dare is open the pool can still grow or
// shrink, so the fee is not claimable until it completes or expires.
func CheckCreatorFee(d *models.Dare, wallet string, now time.Time) (models.Lamports, error) {
	if !StateOf(d, now).Resolved() {
		return 0, ErrDareOpen
	}
	if d.Creator != wallet {
		return 0, ErrNotCreator
	}
	if d.CreatorFeeClaimed {
		return 0, ErrAlreadyClaimed
	}
	if d.TotalPool <= 0 {
		return 0, ErrEmptyPool
	}
	return CreatorFee(d.TotalPool), nil
}

func CheckCompleterReward(d *models.Dare, wallet string, now time.Time) (models.Lamports, error) {
	if StateOf(d, now) != StateCompleted {
		return 0, ErrDareNotCompleted
	}
	if d.Proof.Submitter == "" || d.Proof.Submitter != wallet {
		return 0, ErrNotCompleter
	}
	if d.CompleterFeeClaimed {
		return 0, ErrAlreadyClaimed
	}
	if d.TotalPool <= 0 {
		return 0, ErrEmptyPool
	}
	return CompleterReward(d.TotalPool), nil
}

func CheckWinnings(d *models.Dare, bet *models.Bet, wallet string, now time.Time) (models.Lamports, error) {
	side, resolved := StateOf(d, now).WinningSide()
	if !resolved {
		return 0, ErrDareOpen
	}
	if bet.Bettor != wallet {
		return 0, ErrNotBettor
	}
	if bet.IsEarlyCashOut {
		return 0, ErrBetCashedOut
	}
	if bet.IsClaimed {
		return 0, ErrAlreadyClaimed
	}
	if bet.BetType != side {
		return 0, ErrLosingBet
	}
	pool := d.SidePool(side)
	if pool <= 0 {
		return 0, ErrNoWinningPool
	}
	return WinningsShare(d.TotalPool, bet.Amount, pool), nil
}

func CheckCashOut(d *models.Dare, bet *models.Bet, wallet string, now time.Time) (models.Lamports, error) {
	if StateOf(d, now) != StateOpen || !now.Before(CashOutDeadline(d)) {
		return 0, ErrCashOutClosed
	}
	if bet.Bettor != wallet {
		return 0, ErrNotBettor
	}
	if bet.IsEarlyCashOut {
		return 0, ErrBetCashedOut
	}
	if bet.IsClaimed {
		return 0, ErrAlreadyClaimed
	}
	return CashOutRefund(bet.Amount), nil
}
