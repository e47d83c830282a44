package services

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"dare-backend/internal/models"
)

// TransactionVerifier confirms that a bet's on-chain transfer really happened.
type TransactionVerifier interface {
	VerifyTransfer(ctx context.Context, txSignature, from string, amount models.Lamports) error
}

type SolanaTransactionVerifier struct {
	client   *rpc.Client
	treasury solana.PublicKey
}

func NewSolanaTransactionVerifier(client *rpc.Client, treasuryWallet string) (*SolanaTransactionVerifier, error) {
	treasury, err := solana.PublicKeyFromBase58(treasuryWallet)
	if err != nil {
		return nil, fmt.Errorf("invalid treasury wallet: %v", err)
	}
	return &SolanaTransactionVerifier{client: client, treasury: treasury}, nil
}

// VerifyTransfer requires a successful, confirmed transaction signed by from in which
// from paid out and the treasury received at least amount lamports.
func (v *SolanaTransactionVerifier) VerifyTransfer(
	ctx context.Context, txSignature, from string, amount models.Lamports,
) error {
	sig, err := solana.SignatureFromBase58(txSignature)
	if err != nil {
		return fmt.Errorf("malformed transaction signature: %v", err)
	}
	payer, err := solana.PublicKeyFromBase58(from)
	if err != nil {
		return fmt.Errorf("malformed bettor wallet: %v", err)
	}

	maxVersion := uint64(0)
	out, err := v.client.GetTransaction(ctx, sig, &rpc.GetTransactionOpts{
		Encoding:                       solana.EncodingBase64,
		Commitment:                     rpc.CommitmentConfirmed,
		MaxSupportedTransactionVersion: &maxVersion,
	})
	if err != nil {
		return fmt.Errorf("failed to fetch transaction: %v", err)
	}
	if out == nil || out.Meta == nil || out.Transaction == nil {
		return fmt.Errorf("transaction not found")
	}
	if out.Meta.Err != nil {
		return fmt.Errorf("transaction failed on chain: %v", out.Meta.Err)
	}

	tx, err := out.Transaction.GetTransaction()
	if err != nil {
		return fmt.Errorf("failed to decode transaction: %v", err)
	}

	keys := tx.Message.AccountKeys
	payerIdx, treasuryIdx := indexOf(keys, payer), indexOf(keys, v.treasury)
	if payerIdx < 0 || payerIdx >= int(tx.Message.Header.NumRequiredSignatures) {
		return fmt.Errorf("transaction was not signed by the bettor")
	}
	if treasuryIdx < 0 {
		return fmt.Errorf("transaction does not credit the treasury")
	}

	pre, post := out.Meta.PreBalances, out.Meta.PostBalances
	if treasuryIdx >= len(pre) || treasuryIdx >= len(post) || payerIdx >= len(pre) || payerIdx >= len(post) {
		return fmt.Errorf("transaction balances unavailable")
	}

	received := int64(post[treasuryIdx]) - int64(pre[treasuryIdx])
	if received < int64(amount) {
		return fmt.Errorf("treasury received %d lamports, expected %d", received, amount)
	}

	sent := int64(pre[payerIdx]) - int64(post[payerIdx])
	if payerIdx == 0 {
		// The fee payer is always the first account key.
		sent -= int64(out.Meta.Fee)
	}
	if sent < int64(amount) {
		return fmt.Errorf("bettor sent %d lamports, expected %d", sent, amount)
	}

	return nil
}

func indexOf(keys solana.PublicKeySlice, key solana.PublicKey) int {
	for i, k := range keys {
		if k.Equals(key) {
			return i
		}
	}
	return -1
}
