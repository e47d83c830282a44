package services

import (
	"context"
	"fmt"
	"time"
)

// Clock returns the current time. Services expect UTC.
type Clock func() time.Time

func systemClock() time.Time {
	return time.Now().UTC()
}

// SignedRequestAuthorizer checks requests signed by a wallet over
// "<action>:<subject>:<timestamp>". The timestamp is unix milliseconds.
type SignedRequestAuthorizer struct {
	verifier SignatureVerifier
	guard    ReplayGuard
	window   time.Duration
	now      Clock
}

func NewSignedRequestAuthorizer(verifier SignatureVerifier, guard ReplayGuard, window time.Duration, clock Clock) *SignedRequestAuthorizer {
	if clock == nil {
		clock = systemClock
	}
	return &SignedRequestAuthorizer{
		verifier: verifier,
		guard:    guard,
		window:   window,
		now:      clock,
	}
}

func (a *SignedRequestAuthorizer) Authorize(
	ctx context.Context, wallet, action, subject string, timestamp int64, signature string,
) error {
	age := a.now().Sub(time.UnixMilli(timestamp))
	if age > a.window || age < -a.window {
		return ErrStaleTimestamp
	}

	if !a.verifier.Verify(wallet, SignedMessage(action, subject, timestamp), signature) {
		return ErrInvalidSignature
	}

	// Remembered for twice the window so a signature cannot outlive its record.
	fresh, err := a.guard.MarkSignatureUsed(ctx, signature, 2*a.window)
	if err != nil {
		return fmt.Errorf("replay check failed: %w", err)
	}
	if !fresh {
		return ErrSignatureReused
	}
	return nil
}
