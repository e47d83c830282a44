package services

import "dare-backend/internal/errorx"

var (
	ErrDareNotFound = errorx.New(errorx.NotFound, "dare not found")
	ErrBetNotFound  = errorx.New(errorx.NotFound, "bet not found")
	ErrUserNotFound = errorx.New(errorx.NotFound, "user not found")

	ErrDareExists         = errorx.New(errorx.Conflict, "dare with this on-chain id already exists")
	ErrBettingClosed      = errorx.New(errorx.Conflict, "dare is no longer accepting bets")
	ErrTxSignatureUsed    = errorx.New(errorx.Conflict, "transaction signature already used")
	ErrBetAlreadyRecorded = errorx.New(errorx.Conflict, "bet transaction or on-chain id already recorded")
	ErrBetSettled         = errorx.New(errorx.Conflict, "bet was already claimed or cashed out")
	ErrProofClosed        = errorx.New(errorx.Conflict, "dare no longer accepts completion proofs")
	ErrNothingToClaim     = errorx.New(errorx.Conflict, "nothing to claim on this dare")
	ErrUsernameTaken      = errorx.New(errorx.Conflict, "username already taken")
	ErrDareRefTaken       = errorx.New(errorx.Conflict, "on-chain id collides with an existing dare id")

	ErrPayoutUnconfirmed = errorx.New(errorx.Upstream, "payout was submitted but not confirmed; it will be reconciled")

	ErrInvalidSignature = errorx.New(errorx.Unauthenticated, "invalid wallet signature")
	ErrStaleTimestamp   = errorx.New(errorx.Unauthenticated, "signed timestamp is outside the accepted window")
	ErrSignatureReused  = errorx.New(errorx.Unauthenticated, "signature already used")

	ErrWalletMismatch = errorx.New(errorx.Forbidden, "wallet does not match the authenticated session")
	ErrCreatorProof   = errorx.New(errorx.Forbidden, "the creator cannot complete their own dare")
)
