package models

import "time"

type DareResponse struct {
	Dare
	State           string           `json:"state"`
	CompletionProof *CompletionProof `json:"completionProof"`
	TotalPoolSOL    string           `json:"totalPoolSol"`
	WillDoPoolSOL   string           `json:"willDoPoolSol"`
	WontDoPoolSOL   string           `json:"wontDoPoolSol"`
	CashOutCutoff   time.Time        `json:"cashOutCutoff"`
	Claimable       []Entitlement    `json:"claimable,omitempty"`
}

type BetResponse struct {
	Bet
	AmountSOL string `json:"amountSol"`
}

// Entitlement is a payout a wallet could claim right now.
type Entitlement struct {
	Kind      PayoutKind `json:"kind"`
	BetID     string     `json:"betId,omitempty"`
	Amount    Lamports   `json:"amount"`
	AmountSOL string     `json:"amountSol"`
}

func NewBetResponse(b *Bet) BetResponse {
	return BetResponse{Bet: *b, AmountSOL: FormatSOL(b.Amount)}
}
