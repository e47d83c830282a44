package models

import "time"

type PayoutKind string

const (
	PayoutKindCreatorFee      PayoutKind = "CREATOR_FEE"
	PayoutKindCompleterReward PayoutKind = "COMPLETER_REWARD"
	PayoutKindWinnings        PayoutKind = "WINNINGS"
	PayoutKindCashOut         PayoutKind = "CASH_OUT"
)

// PayoutRecord is an entry in a wallet's payout activity feed.
type PayoutRecord struct {
	ID          string     `json:"id"`
	Wallet      string     `json:"wallet"`
	DareID      string     `json:"dareId"`
	BetID       string     `json:"betId,omitempty"`
	Kind        PayoutKind `json:"kind"`
	Amount      Lamports   `json:"amount"`
	TxSignature string     `json:"txSignature,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

type PayoutResult struct {
	Kind        PayoutKind `json:"kind"`
	DareID      string     `json:"dareId"`
	BetID       string     `json:"betId,omitempty"`
	Amount      Lamports   `json:"amount"`
	AmountSOL   string     `json:"amountSol"`
	TxSignature string     `json:"txSignature,omitempty"`
}

type PayoutStatus string

const (
	// PayoutStatusPending is committed with the claim flag, before any transfer is sent.
	PayoutStatusPending     PayoutStatus = "PENDING"
	PayoutStatusSent        PayoutStatus = "SENT"
	PayoutStatusUnconfirmed PayoutStatus = "UNCONFIRMED"
)

// Payout is the durable ledger row for one settled entitlement. Rows left PENDING or
// UNCONFIRMED may have moved funds and need reconciling against the chain.
type Payout struct {
	ID          string       `json:"id" gorm:"primaryKey;size:64"`
	Kind        PayoutKind   `json:"kind" gorm:"size:24;not null"`
	DareID      string       `json:"dareId" gorm:"index;size:36;not null"`
	BetID       string       `json:"betId,omitempty" gorm:"size:36"`
	Wallet      string       `json:"wallet" gorm:"index;size:64;not null"`
	Amount      Lamports     `json:"amount" gorm:"not null"`
	Status      PayoutStatus `json:"status" gorm:"index;size:16;not null"`
	TxSignature string       `json:"txSignature,omitempty" gorm:"size:128"`
	LastError   string       `json:"lastError,omitempty" gorm:"type:text"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}
