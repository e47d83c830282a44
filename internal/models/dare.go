package models

import "time"

type ProofStatus string

const (
	ProofStatusPending  ProofStatus = "PENDING"
	ProofStatusApproved ProofStatus = "APPROVED"
	ProofStatusRejected ProofStatus = "REJECTED"
)

type CompletionProof struct {
	Submitter   string      `json:"submitter" gorm:"size:64"`
	ProofHash   string      `json:"proofHash" gorm:"size:128"`
	Description string      `json:"description" gorm:"type:text"`
	SubmittedAt *time.Time  `json:"submittedAt"`
	Status      ProofStatus `json:"status" gorm:"size:16"`
}

type Dare struct {
	ID          string    `json:"id" gorm:"primaryKey;size:36"`
	OnChainID   string    `json:"onChainId" gorm:"uniqueIndex;size:128;not null"`
	Creator     string    `json:"creator" gorm:"index;size:64;not null"`
	Title       string    `json:"title" gorm:"size:200;not null"`
	Description string    `json:"description" gorm:"type:text"`
	Deadline    time.Time `json:"deadline" gorm:"index;not null"`
	MinBet      Lamports  `json:"minBet" gorm:"not null;default:0"`

	// TotalPool == WillDoPool + WontDoPool at all times.
	TotalPool  Lamports `json:"totalPool" gorm:"not null;default:0"`
	WillDoPool Lamports `json:"willDoPool" gorm:"not null;default:0"`
	WontDoPool Lamports `json:"wontDoPool" gorm:"not null;default:0"`

	IsCompleted         bool `json:"isCompleted" gorm:"not null;default:false"`
	CreatorFeeClaimed   bool `json:"creatorFeeClaimed" gorm:"not null;default:false"`
	CompleterFeeClaimed bool `json:"completerFeeClaimed" gorm:"not null;default:false"`

	Proof CompletionProof `json:"-" gorm:"embedded;embeddedPrefix:proof_"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CompletionProof returns nil until a proof has been submitted.
func (d *Dare) CompletionProof() *CompletionProof {
	if d.Proof.Submitter == "" {
		return nil
	}
	proof := d.Proof
	return &proof
}

func (d *Dare) SidePool(betType BetType) Lamports {
	if betType == BetTypeWillDo {
		return d.WillDoPool
	}
	return d.WontDoPool
}
