package services

import (
	"crypto/ed25519"
	"encoding/base64"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

const (
	ActionLogin                = "login"
	ActionClaimAny             = "claim"
	ActionClaimCreatorFee      = "claim_creator_fee"
	ActionClaimCompleterReward = "claim_completer_reward"
	ActionClaimWinnings        = "claim_winnings"
	ActionCashOut              = "cash_out"
)

// SignatureVerifier checks a detached wallet signature over a plain-text message.
type SignatureVerifier interface {
	Verify(wallet, message, signature string) bool
}

type WalletSignatureVerifier struct{}

func NewWalletSignatureVerifier() *WalletSignatureVerifier {
	return &WalletSignatureVerifier{}
}

func (v *WalletSignatureVerifier) Verify(wallet, message, signature string) bool {
	pubkey, err := solana.PublicKeyFromBase58(wallet)
	if err != nil {
		return false
	}

	sig, err := decodeSignature(signature)
	if err != nil {
		return false
	}

	return ed25519.Verify(pubkey[:], []byte(message), sig[:])
}

// SignedMessage builds the text a wallet signs: "<action>:<subject>:<timestamp>".
func SignedMessage(action, subject string, timestamp int64) string {
	return fmt.Sprintf("%s:%s:%d", action, subject, timestamp)
}

// Wallet adapters emit base58; some browser wallets hand back base64.
func decodeSignature(s string) (solana.Signature, error) {
	if sig, err := solana.SignatureFromBase58(s); err == nil {
		return sig, nil
	}

	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("signature is neither base58 nor base64")
	}
	if len(raw) != ed25519.SignatureSize {
		return solana.Signature{}, fmt.Errorf("signature must be %d bytes, got %d", ed25519.SignatureSize, len(raw))
	}

	var sig solana.Signature
	copy(sig[:], raw)
	return sig, nil
}
