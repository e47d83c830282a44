package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
	"github.com/sirupsen/logrus"

	"dare-backend/internal/models"
)

// ErrTransferNotSent marks a transfer failure that happened before anything reached
// the network. Any other Transfer error may have moved funds.
var ErrTransferNotSent = errors.New("transfer not sent")

// Treasury pays lamports out of the platform wallet and returns the transfer signature.
type Treasury interface {
	Transfer(ctx context.Context, to string, amount models.Lamports) (string, error)
}

type SolanaTreasury struct {
	client *rpc.Client
	key    solana.PrivateKey
}

func NewSolanaTreasury(client *rpc.Client, privateKey, treasuryWallet string) (*SolanaTreasury, error) {
	key, err := solana.PrivateKeyFromBase58(privateKey)
	if err != nil {
		return nil, fmt.Errorf("invalid treasury private key: %v", err)
	}
	if key.PublicKey().String() != treasuryWallet {
		return nil, fmt.Errorf("treasury private key does not match TREASURY_WALLET")
	}
	return &SolanaTreasury{client: client, key: key}, nil
}

func (t *SolanaTreasury) Transfer(ctx context.Context, to string, amount models.Lamports) (string, error) {
	if amount <= 0 {
		return "", fmt.Errorf("%w: transfer amount must be positive", ErrTransferNotSent)
	}
	recipient, err := solana.PublicKeyFromBase58(to)
	if err != nil {
		return "", fmt.Errorf("%w: invalid recipient: %v", ErrTransferNotSent, err)
	}

	recent, err := t.client.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return "", fmt.Errorf("%w: failed to get blockhash: %v", ErrTransferNotSent, err)
	}

	payer := t.key.PublicKey()
	tx, err := solana.NewTransaction(
		[]solana.Instruction{
			system.NewTransferInstruction(uint64(amount), payer, recipient).Build(),
		},
		recent.Value.Blockhash,
		solana.TransactionPayer(payer),
	)
	if err != nil {
		return "", fmt.Errorf("%w: failed to build transfer: %v", ErrTransferNotSent, err)
	}

	if _, err := tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(payer) {
			return &t.key
		}
		return nil
	}); err != nil {
		return "", fmt.Errorf("%w: failed to sign transfer: %v", ErrTransferNotSent, err)
	}

	sig, err := t.client.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		PreflightCommitment: rpc.CommitmentFinalized,
	})
	if err != nil {
		// A JSON-RPC error means the node rejected the transaction in preflight.
		var rpcErr *jsonrpc.RPCError
		if errors.As(err, &rpcErr) {
			return "", fmt.Errorf("%w: transfer rejected: %v", ErrTransferNotSent, err)
		}
		return "", fmt.Errorf("failed to send transfer: %w", err)
	}
	return sig.String(), nil
}

// LedgerTreasury records payouts without moving funds. Used when no treasury key is
// configured; payouts then settle out of band.
type LedgerTreasury struct {
	log *logrus.Logger
}

func NewLedgerTreasury(log *logrus.Logger) *LedgerTreasury {
	return &LedgerTreasury{log: log}
}

func (t *LedgerTreasury) Transfer(_ context.Context, to string, amount models.Lamports) (string, error) {
	t.log.WithFields(logrus.Fields{
		"to":     to,
		"amount": int64(amount),
	}).Warn("Treasury key not configured, payout recorded without transfer")
	return "", nil
}
