package models

import "time"

type BetType string

const (
	BetTypeWillDo BetType = "WILL_DO"
	BetTypeWontDo BetType = "WONT_DO"
)

func (t BetType) Valid() bool {
	return t == BetTypeWillDo || t == BetTypeWontDo
}

type Bet struct {
	ID          string   `json:"id" gorm:"primaryKey;size:36"`
	OnChainID   string   `json:"onChainId" gorm:"uniqueIndex;size:128;not null"`
	DareID      string   `json:"dareId" gorm:"index;size:36;not null"`
	Bettor      string   `json:"bettor" gorm:"index;size:64;not null"`
	Amount      Lamports `json:"amount" gorm:"not null"`
	BetType     BetType  `json:"betType" gorm:"size:16;not null"`
	TxSignature string   `json:"txSignature" gorm:"uniqueIndex;size:128;not null"`

	// IsClaimed and IsEarlyCashOut are mutually exclusive and never reset.
	IsClaimed      bool `json:"isClaimed" gorm:"not null;default:false"`
	IsEarlyCashOut bool `json:"isEarlyCashOut" gorm:"not null;default:false"`

	PayoutAmount    Lamports `json:"payoutAmount" gorm:"not null;default:0"`
	PayoutSignature string   `json:"payoutSignature,omitempty" gorm:"size:128"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (b *Bet) Settled() bool {
	return b.IsClaimed || b.IsEarlyCashOut
}
