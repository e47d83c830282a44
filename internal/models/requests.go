package models

import "time"

type WalletLoginRequest struct {
	Wallet    string `json:"wallet" binding:"required"`
	Timestamp int64  `json:"timestamp" binding:"required"`
	Signature string `json:"signature" binding:"required"`
}

type CreateDareRequest struct {
	OnChainID   string    `json:"onChainId"`
	Title       string    `json:"title" binding:"required,max=200"`
	Description string    `json:"description" binding:"max=5000"`
	Deadline    time.Time `json:"deadline" binding:"required"`
	MinBet      int64     `json:"minBet" binding:"min=0"`
}

type SubmitProofRequest struct {
	ProofHash   string `json:"proofHash" binding:"required,max=128"`
	Description string `json:"description" binding:"max=5000"`
}

type PlaceBetRequest struct {
	AmountInput

	Bettor        string  `json:"bettor" binding:"required"`
	DareID        string  `json:"dareId"`
	DareOnChainID string  `json:"dareOnChainId"`
	BetType       BetType `json:"betType" binding:"required"`
	TxSignature   string  `json:"txSignature" binding:"required"`
	OnChainID     string  `json:"onChainId"`
}

type UpdateBetRequest struct {
	IsClaimed      *bool `json:"isClaimed"`
	IsEarlyCashOut *bool `json:"isEarlyCashOut"`
}

// ClaimRequest is signed by UserWallet over "<action>:<dareId>:<timestamp>".
type ClaimRequest struct {
	DareID     string `json:"dareId" binding:"required"`
	UserWallet string `json:"userWallet" binding:"required"`
	Signature  string `json:"signature" binding:"required"`
	Timestamp  int64  `json:"timestamp" binding:"required"`
	BetID      string `json:"betId"`
}

type UpdateProfileRequest struct {
	Username  *string `json:"username" binding:"omitempty,min=3,max=32"`
	Bio       *string `json:"bio" binding:"omitempty,max=500"`
	AvatarURL *string `json:"avatarUrl" binding:"omitempty,max=512"`
}

type ListDaresQuery struct {
	Creator string `form:"creator"`
	State   string `form:"state" binding:"omitempty,oneof=open completed expired"`
	Page    int    `form:"page"`
	Limit   int    `form:"limit"`
}
