package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"dare-backend/internal/errorx"
	"dare-backend/internal/metrics"
	"dare-backend/internal/models"
	"dare-backend/internal/repository"
	"dare-backend/internal/settlement"
)

type EngineDeps struct {
	DB         *gorm.DB
	TxVerifier TransactionVerifier
	Treasury   Treasury
	Authorizer *SignedRequestAuthorizer
	// Feed is optional; payouts are still settled when it is nil.
	Feed  PayoutFeed
	Log   *logrus.Logger
	Clock Clock
}

// SettlementEngine records bets and pays out claims against the persistent store.
// Every state change is a conditional update, so concurrent requests for the same
// entitlement settle at most once.
type SettlementEngine struct {
	db         *gorm.DB
	dares      repository.DareRepository
	bets       repository.BetRepository
	users      repository.UserRepository
	payouts    repository.PayoutRepository
	txVerifier TransactionVerifier
	treasury   Treasury
	auth       *SignedRequestAuthorizer
	feed       PayoutFeed
	log        *logrus.Logger
	now        Clock
}

func NewSettlementEngine(deps EngineDeps) *SettlementEngine {
	clock := deps.Clock
	if clock == nil {
		clock = systemClock
	}
	return &SettlementEngine{
		db:         deps.DB,
		dares:      repository.NewDareRepository(deps.DB),
		bets:       repository.NewBetRepository(deps.DB),
		users:      repository.NewUserRepository(deps.DB),
		payouts:    repository.NewPayoutRepository(deps.DB),
		txVerifier: deps.TxVerifier,
		treasury:   deps.Treasury,
		auth:       deps.Authorizer,
		feed:       deps.Feed,
		log:        deps.Log,
		now:        clock,
	}
}

// PlaceBet records a bet after its on-chain transfer was verified. The bet row and the
// pool increment are written in one transaction.
func (e *SettlementEngine) PlaceBet(ctx context.Context, wallet string, req *models.PlaceBetRequest) (*models.Bet, error) {
	amount, err := req.Validate()
	if err != nil {
		return nil, rejectBet("invalid", errorx.New(errorx.BadRequest, "invalid bet: %v", err))
	}
	if req.Bettor != wallet {
		return nil, rejectBet("wallet_mismatch", ErrWalletMismatch)
	}

	ref := req.DareID
	if ref == "" {
		ref = req.DareOnChainID
	}
	dare, err := e.findDare(ctx, ref)
	if err != nil {
		return nil, rejectBet("dare_not_found", err)
	}

	now := e.now()
	if settlement.StateOf(dare, now) != settlement.StateOpen {
		return nil, rejectBet("closed", ErrBettingClosed)
	}
	if amount < dare.MinBet {
		return nil, rejectBet("below_min", errorx.New(errorx.BadRequest,
			"bet is below the minimum of %s SOL", models.FormatSOL(dare.MinBet)))
	}

	used, err := e.bets.ExistsByTxSignature(ctx, req.TxSignature)
	if err != nil {
		return nil, fmt.Errorf("failed to check transaction signature: %w", err)
	}
	if used {
		return nil, rejectBet("replay", ErrTxSignatureUsed)
	}

	start := time.Now()
	err = e.txVerifier.VerifyTransfer(ctx, req.TxSignature, req.Bettor, amount)
	metrics.TxVerificationDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, rejectBet("unverified", errorx.New(errorx.Upstream, "transaction verification failed: %v", err))
	}

	bet := &models.Bet{
		ID:          models.GenerateID(),
		OnChainID:   req.OnChainID,
		DareID:      dare.ID,
		Bettor:      req.Bettor,
		Amount:      amount,
		BetType:     req.BetType,
		TxSignature: req.TxSignature,
	}
	if bet.OnChainID == "" {
		bet.OnChainID = bet.ID
	}

	err = e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := e.bets.WithTx(tx).Create(ctx, bet); err != nil {
			return err
		}
		return e.dares.WithTx(tx).AddToPool(ctx, dare.ID, bet.BetType, amount, now)
	})
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return nil, rejectBet("replay", ErrBetAlreadyRecorded)
	case errors.Is(err, repository.ErrConditionFailed):
		return nil, rejectBet("closed", ErrBettingClosed)
	case err != nil:
		return nil, fmt.Errorf("failed to record bet: %w", err)
	}

	if err := e.users.EnsureExists(ctx, bet.Bettor); err != nil {
		e.log.WithError(err).WithField("wallet", bet.Bettor).Warn("Failed to create bettor profile")
	}

	metrics.BetsPlaced.WithLabelValues(string(bet.BetType)).Inc()
	metrics.BetVolumeLamports.Add(float64(amount))

	e.log.WithFields(logrus.Fields{
		"dare_id":  dare.ID,
		"bet_id":   bet.ID,
		"bettor":   bet.Bettor,
		"bet_type": bet.BetType,
		"amount":   int64(amount),
	}).Info("Bet recorded")

	return bet, nil
}

// UpdateBet applies a terminal flag to a bet on behalf of its owner. Unlike the payout
// routes it moves no funds: the claim or refund is assumed to have settled elsewhere.
func (e *SettlementEngine) UpdateBet(
	ctx context.Context, wallet, onChainID string, req *models.UpdateBetRequest,
) (*models.Bet, error) {
	if err := req.Validate(); err != nil {
		return nil, errorx.New(errorx.BadRequest, "invalid bet update: %v", err)
	}

	bet, err := e.bets.GetByOnChainID(ctx, onChainID)
	if err != nil {
		return nil, notFound(err, ErrBetNotFound)
	}
	if bet.Bettor != wallet {
		return nil, settlement.ErrNotBettor
	}

	dare, err := e.dares.GetByID(ctx, bet.DareID)
	if err != nil {
		return nil, notFound(err, ErrDareNotFound)
	}
	now := e.now()

	if req.IsClaimed != nil {
		amount, err := settlement.CheckWinnings(dare, bet, wallet, now)
		if err != nil {
			return nil, err
		}
		err = e.bets.MarkClaimed(ctx, bet.ID, amount)
		if err := conditional(err, settlement.ErrAlreadyClaimed); err != nil {
			return nil, err
		}
	} else {
		refund, err := settlement.CheckCashOut(dare, bet, wallet, now)
		if err != nil {
			return nil, err
		}
		err = e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return e.markCashedOut(ctx, tx, bet, refund, now)
		})
		if err != nil {
			return nil, err
		}
	}

	e.log.WithFields(logrus.Fields{
		"bet_id":            bet.ID,
		"is_claimed":        req.IsClaimed != nil,
		"is_early_cash_out": req.IsEarlyCashOut != nil,
	}).Info("Bet flags updated")

	return e.bets.GetByID(ctx, bet.ID)
}

// Claimable lists what wallet could claim on the dare right now, in claim order.
func (e *SettlementEngine) Claimable(ctx context.Context, dareRef, wallet string) ([]models.Entitlement, error) {
	dare, err := e.findDare(ctx, dareRef)
	if err != nil {
		return nil, err
	}
	bets, err := e.bets.ListByDareAndBettor(ctx, dare.ID, wallet)
	if err != nil {
		return nil, fmt.Errorf("failed to list bets: %w", err)
	}
	return settlement.Entitlements(dare, bets, wallet, e.now()), nil
}

// Claim pays the first entitlement the wallet holds on the dare, in the order
// creator fee, completer reward, winnings. One entitlement per call.
func (e *SettlementEngine) Claim(ctx context.Context, req *models.ClaimRequest) (*models.PayoutResult, error) {
	dare, err := e.authorizeClaim(ctx, ActionClaimAny, req)
	if err != nil {
		return nil, err
	}

	now := e.now()
	bets, err := e.bets.ListByDareAndBettor(ctx, dare.ID, req.UserWallet)
	if err != nil {
		return nil, fmt.Errorf("failed to list bets: %w", err)
	}

	entitlements := settlement.Entitlements(dare, bets, req.UserWallet, now)
	if len(entitlements) == 0 {
		return nil, ErrNothingToClaim
	}

	next := entitlements[0]
	switch next.Kind {
	case models.PayoutKindCreatorFee:
		return e.claimCreatorFee(ctx, dare, req.UserWallet, now)
	case models.PayoutKindCompleterReward:
		return e.claimCompleterReward(ctx, dare, req.UserWallet, now)
	default:
		return e.claimWinnings(ctx, dare, req.UserWallet, next.BetID, now)
	}
}

func (e *SettlementEngine) ClaimCreatorFee(ctx context.Context, req *models.ClaimRequest) (*models.PayoutResult, error) {
	dare, err := e.authorizeClaim(ctx, ActionClaimCreatorFee, req)
	if err != nil {
		return nil, err
	}
	return e.claimCreatorFee(ctx, dare, req.UserWallet, e.now())
}

func (e *SettlementEngine) ClaimCompleterReward(ctx context.Context, req *models.ClaimRequest) (*models.PayoutResult, error) {
	dare, err := e.authorizeClaim(ctx, ActionClaimCompleterReward, req)
	if err != nil {
		return nil, err
	}
	return e.claimCompleterReward(ctx, dare, req.UserWallet, e.now())
}

// ClaimWinnings pays req.BetID, or the wallet's first unclaimed winning bet when no
// bet is named.
func (e *SettlementEngine) ClaimWinnings(ctx context.Context, req *models.ClaimRequest) (*models.PayoutResult, error) {
	dare, err := e.authorizeClaim(ctx, ActionClaimWinnings, req)
	if err != nil {
		return nil, err
	}
	return e.claimWinnings(ctx, dare, req.UserWallet, req.BetID, e.now())
}

// CashOut refunds a bet minus the early cash-out penalty and removes its original
// amount from the pools.
func (e *SettlementEngine) CashOut(ctx context.Context, req *models.ClaimRequest) (*models.PayoutResult, error) {
	if req.BetID == "" {
		return nil, errorx.New(errorx.BadRequest, "betId is required")
	}
	dare, err := e.authorizeClaim(ctx, ActionCashOut, req)
	if err != nil {
		return nil, err
	}

	bet, err := e.betOnDare(ctx, dare, req.BetID)
	if err != nil {
		return nil, err
	}

	now := e.now()
	refund, err := settlement.CheckCashOut(dare, bet, req.UserWallet, now)
	if err != nil {
		return nil, payoutRejected(models.PayoutKindCashOut, err)
	}

	return e.settle(ctx, payout{
		kind:   models.PayoutKindCashOut,
		dareID: dare.ID,
		betID:  bet.ID,
		wallet: req.UserWallet,
		amount: refund,
		mark: func(tx *gorm.DB) error {
			return e.markCashedOut(ctx, tx, bet, refund, now)
		},
		release: func(tx *gorm.DB) error {
			if err := e.bets.WithTx(tx).ReleaseCashedOut(ctx, bet.ID); err != nil {
				return err
			}
			return e.dares.WithTx(tx).RestorePool(ctx, bet.DareID, bet.BetType, bet.Amount)
		},
	})
}

func (e *SettlementEngine) claimCreatorFee(
	ctx context.Context, dare *models.Dare, wallet string, now time.Time,
) (*models.PayoutResult, error) {
	amount, err := settlement.CheckCreatorFee(dare, wallet, now)
	if err != nil {
		return nil, payoutRejected(models.PayoutKindCreatorFee, err)
	}

	return e.settle(ctx, payout{
		kind:   models.PayoutKindCreatorFee,
		dareID: dare.ID,
		wallet: wallet,
		amount: amount,
		mark: func(tx *gorm.DB) error {
			return conditional(e.dares.WithTx(tx).MarkCreatorFeeClaimed(ctx, dare.ID), settlement.ErrAlreadyClaimed)
		},
		release: func(tx *gorm.DB) error {
			return e.dares.WithTx(tx).ReleaseCreatorFee(ctx, dare.ID)
		},
	})
}

func (e *SettlementEngine) claimCompleterReward(
	ctx context.Context, dare *models.Dare, wallet string, now time.Time,
) (*models.PayoutResult, error) {
	amount, err := settlement.CheckCompleterReward(dare, wallet, now)
	if err != nil {
		return nil, payoutRejected(models.PayoutKindCompleterReward, err)
	}

	return e.settle(ctx, payout{
		kind:   models.PayoutKindCompleterReward,
		dareID: dare.ID,
		wallet: wallet,
		amount: amount,
		mark: func(tx *gorm.DB) error {
			return conditional(e.dares.WithTx(tx).MarkCompleterFeeClaimed(ctx, dare.ID), settlement.ErrAlreadyClaimed)
		},
		release: func(tx *gorm.DB) error {
			return e.dares.WithTx(tx).ReleaseCompleterFee(ctx, dare.ID)
		},
	})
}

func (e *SettlementEngine) claimWinnings(
	ctx context.Context, dare *models.Dare, wallet, betID string, now time.Time,
) (*models.PayoutResult, error) {
	var (
		bet    *models.Bet
		amount models.Lamports
		err    error
	)
	if betID != "" {
		if bet, err = e.betOnDare(ctx, dare, betID); err != nil {
			return nil, err
		}
		if amount, err = settlement.CheckWinnings(dare, bet, wallet, now); err != nil {
			return nil, payoutRejected(models.PayoutKindWinnings, err)
		}
	} else {
		if bet, amount, err = e.firstWinningBet(ctx, dare, wallet, now); err != nil {
			return nil, payoutRejected(models.PayoutKindWinnings, err)
		}
	}

	return e.settle(ctx, payout{
		kind:   models.PayoutKindWinnings,
		dareID: dare.ID,
		betID:  bet.ID,
		wallet: wallet,
		amount: amount,
		mark: func(tx *gorm.DB) error {
			return conditional(e.bets.WithTx(tx).MarkClaimed(ctx, bet.ID, amount), settlement.ErrAlreadyClaimed)
		},
		release: func(tx *gorm.DB) error {
			return e.bets.WithTx(tx).ReleaseClaimed(ctx, bet.ID)
		},
	})
}

// firstWinningBet returns the error of the last bet checked when none is eligible, so
// a wallet with a single losing bet learns why.
func (e *SettlementEngine) firstWinningBet(
	ctx context.Context, dare *models.Dare, wallet string, now time.Time,
) (*models.Bet, models.Lamports, error) {
	bets, err := e.bets.ListByDareAndBettor(ctx, dare.ID, wallet)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list bets: %w", err)
	}
	if len(bets) == 0 {
		return nil, 0, settlement.ErrNotBettor
	}

	var lastErr error
	for i := range bets {
		amount, err := settlement.CheckWinnings(dare, &bets[i], wallet, now)
		if err == nil {
			return &bets[i], amount, nil
		}
		lastErr = err
	}
	return nil, 0, lastErr
}

func (e *SettlementEngine) markCashedOut(
	ctx context.Context, tx *gorm.DB, bet *models.Bet, refund models.Lamports, now time.Time,
) error {
	if err := conditional(e.bets.WithTx(tx).MarkCashedOut(ctx, bet.ID, refund), ErrBetSettled); err != nil {
		return err
	}
	err := e.dares.WithTx(tx).RemoveFromPool(ctx, bet.DareID, bet.BetType, bet.Amount, now.Add(settlement.CashOutCutoff))
	return conditional(err, settlement.ErrCashOutClosed)
}

type payout struct {
	kind   models.PayoutKind
	dareID string
	betID  string
	wallet string
	amount models.Lamports

	// mark flips the claim state; release undoes it when the transfer never left.
	mark    func(tx *gorm.DB) error
	release func(tx *gorm.DB) error
}

// settle commits the claim flag together with a PENDING payout row before any funds
// move, then transfers. The flag is only released when the treasury reports the
// transfer was never sent; any other failure leaves it set and the payout
// UNCONFIRMED, so an entitlement is never paid twice.
func (e *SettlementEngine) settle(ctx context.Context, p payout) (*models.PayoutResult, error) {
	record := &models.Payout{
		ID:     models.GeneratePayoutID(),
		Kind:   p.kind,
		DareID: p.dareID,
		BetID:  p.betID,
		Wallet: p.wallet,
		Amount: p.amount,
		Status: models.PayoutStatusPending,
	}
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := p.mark(tx); err != nil {
			return err
		}
		return e.payouts.WithTx(tx).Create(ctx, record)
	})
	if err != nil {
		return nil, e.payoutFailed(p, err)
	}

	var signature string
	if p.amount > 0 {
		signature, err = e.treasury.Transfer(ctx, p.wallet, p.amount)
		if err != nil {
			return nil, e.transferFailed(ctx, p, record.ID, err)
		}
	}

	// The funds have moved; bookkeeping failures from here on are logged, not returned.
	ctx = context.WithoutCancel(ctx)
	if err := e.payouts.MarkSent(ctx, record.ID, signature); err != nil {
		e.log.WithError(err).WithField("payout_id", record.ID).Error("Failed to mark payout sent")
	}
	if p.betID != "" && signature != "" {
		if err := e.bets.SetPayoutSignature(ctx, p.betID, signature); err != nil {
			e.log.WithError(err).WithField("bet_id", p.betID).Error("Failed to store payout signature")
		}
	}

	metrics.PayoutsTotal.WithLabelValues(string(p.kind)).Inc()
	metrics.PayoutLamports.WithLabelValues(string(p.kind)).Add(float64(p.amount))

	e.recordPayout(ctx, p, signature)

	e.log.WithFields(logrus.Fields{
		"kind":         p.kind,
		"dare_id":      p.dareID,
		"bet_id":       p.betID,
		"wallet":       p.wallet,
		"amount":       int64(p.amount),
		"payout_id":    record.ID,
		"tx_signature": signature,
	}).Info("Payout settled")

	return &models.PayoutResult{
		Kind:        p.kind,
		DareID:      p.dareID,
		BetID:       p.betID,
		Amount:      p.amount,
		AmountSOL:   models.FormatSOL(p.amount),
		TxSignature: signature,
	}, nil
}

func (e *SettlementEngine) transferFailed(ctx context.Context, p payout, payoutID string, transferErr error) error {
	ctx = context.WithoutCancel(ctx)
	fields := logrus.Fields{
		"kind":      p.kind,
		"dare_id":   p.dareID,
		"bet_id":    p.betID,
		"wallet":    p.wallet,
		"amount":    int64(p.amount),
		"payout_id": payoutID,
	}

	if errors.Is(transferErr, ErrTransferNotSent) {
		err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := p.release(tx); err != nil {
				return err
			}
			return e.payouts.WithTx(tx).Delete(ctx, payoutID)
		})
		if err != nil {
			// Still PENDING with the flag set; reconciliation picks it up.
			e.log.WithError(err).WithFields(fields).Error("Failed to release claim after unsent transfer")
		}
		return e.payoutFailed(p, fmt.Errorf("treasury transfer failed: %w", transferErr))
	}

	if err := e.payouts.MarkUnconfirmed(ctx, payoutID, transferErr.Error()); err != nil {
		e.log.WithError(err).WithFields(fields).Error("Failed to mark payout unconfirmed")
	}
	e.log.WithError(transferErr).WithFields(fields).Error("Payout transfer outcome unknown")
	metrics.PayoutsFailed.WithLabelValues(string(p.kind), "unconfirmed").Inc()
	return ErrPayoutUnconfirmed
}

func (e *SettlementEngine) payoutFailed(p payout, err error) error {
	metrics.PayoutsFailed.WithLabelValues(string(p.kind), failureReason(err)).Inc()
	e.log.WithError(err).WithFields(logrus.Fields{
		"kind":    p.kind,
		"dare_id": p.dareID,
		"bet_id":  p.betID,
		"wallet":  p.wallet,
	}).Warn("Payout not settled")
	return err
}

// UnsettledPayouts lists payouts left PENDING or UNCONFIRMED. Each may or may not
// have reached the chain and must be checked there before any retry.
func (e *SettlementEngine) UnsettledPayouts(ctx context.Context, limit int) ([]models.Payout, error) {
	payouts, err := e.payouts.ListUnsettled(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list unsettled payouts: %w", err)
	}
	return payouts, nil
}

func (e *SettlementEngine) recordPayout(ctx context.Context, p payout, signature string) {
	if e.feed == nil {
		return
	}
	record := &models.PayoutRecord{
		ID:          models.GeneratePayoutID(),
		Wallet:      p.wallet,
		DareID:      p.dareID,
		BetID:       p.betID,
		Kind:        p.kind,
		Amount:      p.amount,
		TxSignature: signature,
		CreatedAt:   e.now(),
	}
	if err := e.feed.SavePayout(ctx, record); err != nil {
		e.log.WithError(err).WithField("wallet", p.wallet).Warn("Failed to record payout activity")
	}
}

func (e *SettlementEngine) authorizeClaim(ctx context.Context, action string, req *models.ClaimRequest) (*models.Dare, error) {
	if err := e.auth.Authorize(ctx, req.UserWallet, action, req.DareID, req.Timestamp, req.Signature); err != nil {
		return nil, err
	}
	return e.findDare(ctx, req.DareID)
}

func (e *SettlementEngine) findDare(ctx context.Context, ref string) (*models.Dare, error) {
	dare, err := e.dares.GetByRef(ctx, ref)
	if err != nil {
		return nil, notFound(err, ErrDareNotFound)
	}
	return dare, nil
}

func (e *SettlementEngine) betOnDare(ctx context.Context, dare *models.Dare, betID string) (*models.Bet, error) {
	bet, err := e.bets.GetByID(ctx, betID)
	if err != nil {
		return nil, notFound(err, ErrBetNotFound)
	}
	if bet.DareID != dare.ID {
		return nil, ErrBetNotFound
	}
	return bet, nil
}

func rejectBet(reason string, err error) error {
	metrics.BetsRejected.WithLabelValues(reason).Inc()
	return err
}

func payoutRejected(kind models.PayoutKind, err error) error {
	metrics.PayoutsFailed.WithLabelValues(string(kind), failureReason(err)).Inc()
	return err
}

func failureReason(err error) string {
	switch errorx.CodeOf(err) {
	case errorx.Conflict:
		return "conflict"
	case errorx.Forbidden:
		return "forbidden"
	case errorx.Unauthenticated:
		return "unauthenticated"
	case errorx.NotFound:
		return "not_found"
	case errorx.BadRequest:
		return "bad_request"
	default:
		return "internal"
	}
}

// conditional maps a conditional update that matched nothing to conflict.
func conditional(err error, conflict error) error {
	if errors.Is(err, repository.ErrConditionFailed) {
		return conflict
	}
	return err
}

func notFound(err error, missing error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return missing
	}
	return err
}
