package services_test

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"dare-backend/internal/models"
	"dare-backend/internal/services"
	"dare-backend/internal/testutil"
)

const sol = models.LamportsPerSOL

type harness struct {
	db       *gorm.DB
	engine   *services.SettlementEngine
	dares    *services.DareService
	users    *services.UserService
	auth     *services.SignedRequestAuthorizer
	treasury *testutil.MockTreasury
	verifier *testutil.MockTxVerifier
	feed     *testutil.MockPayoutFeed
	now      time.Time
	txSeq    int
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)

	h := &harness{
		db:       testutil.NewTestDB(t),
		treasury: &testutil.MockTreasury{},
		verifier: &testutil.MockTxVerifier{},
		feed:     &testutil.MockPayoutFeed{},
		now:      time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC),
	}
	clock := func() time.Time { return h.now }

	h.auth = services.NewSignedRequestAuthorizer(
		services.NewWalletSignatureVerifier(), &testutil.MockReplayGuard{}, 5*time.Minute, clock)
	h.engine = services.NewSettlementEngine(services.EngineDeps{
		DB:         h.db,
		TxVerifier: h.verifier,
		Treasury:   h.treasury,
		Authorizer: h.auth,
		Feed:       h.feed,
		Log:        log,
		Clock:      clock,
	})
	h.dares = services.NewDareService(h.db, log, clock)
	h.users = services.NewUserService(h.db, h.feed, log)
	return h
}

type wallet struct {
	key  solana.PrivateKey
	addr string
}

func newWallet(t *testing.T) wallet {
	t.Helper()
	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	return wallet{key: key, addr: key.PublicKey().String()}
}

func (w wallet) sign(t *testing.T, action, subject string, ts int64) string {
	t.Helper()
	sig, err := w.key.Sign([]byte(services.SignedMessage(action, subject, ts)))
	require.NoError(t, err)
	return sig.String()
}

func (h *harness) claim(t *testing.T, w wallet, action, dareID, betID string) *models.ClaimRequest {
	t.Helper()
	ts := h.now.UnixMilli()
	return &models.ClaimRequest{
		DareID:     dareID,
		UserWallet: w.addr,
		Signature:  w.sign(t, action, dareID, ts),
		Timestamp:  ts,
		BetID:      betID,
	}
}

func (h *harness) createDare(t *testing.T, creator wallet, deadline time.Duration) *models.DareResponse {
	t.Helper()
	dare, err := h.dares.CreateDare(context.Background(), creator.addr, &models.CreateDareRequest{
		Title:    "Jump into the harbour",
		Deadline: h.now.Add(deadline),
	})
	require.NoError(t, err)
	return dare
}

func (h *harness) placeBet(
	t *testing.T, bettor wallet, dareID string, amount models.Lamports, betType models.BetType,
) (*models.Bet, error) {
	t.Helper()
	h.txSeq++
	lamports := int64(amount)
	return h.engine.PlaceBet(context.Background(), bettor.addr, &models.PlaceBetRequest{
		AmountInput: models.AmountInput{Lamports: &lamports},
		Bettor:      bettor.addr,
		DareID:      dareID,
		BetType:     betType,
		TxSignature: fmt.Sprintf("tx-%d", h.txSeq),
	})
}

func (h *harness) mustBet(t *testing.T, bettor wallet, dareID string, amount models.Lamports, betType models.BetType) *models.Bet {
	t.Helper()
	bet, err := h.placeBet(t, bettor, dareID, amount, betType)
	require.NoError(t, err)
	return bet
}

func (h *harness) submitProof(t *testing.T, completer wallet, dareID string) {
	t.Helper()
	_, err := h.dares.SubmitProof(context.Background(), completer.addr, dareID, &models.SubmitProofRequest{
		ProofHash: "QmProof",
	})
	require.NoError(t, err)
}

func (h *harness) dare(t *testing.T, id string) *models.DareResponse {
	t.Helper()
	dare, err := h.dares.GetDare(context.Background(), id)
	require.NoError(t, err)
	return dare
}

func requirePoolsBalanced(t *testing.T, d *models.DareResponse) {
	t.Helper()
	require.Equal(t, d.TotalPool, d.WillDoPool+d.WontDoPool)
	require.GreaterOrEqual(t, int64(d.WillDoPool), int64(0))
	require.GreaterOrEqual(t, int64(d.WontDoPool), int64(0))
}
