package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"dare-backend/internal/models"
	"dare-backend/internal/repository"
	"dare-backend/internal/testutil"
)

func seedDare(t *testing.T, repo repository.DareRepository, deadline time.Time) *models.Dare {
	dare := &models.Dare{
		ID:        models.GenerateID(),
		OnChainID: "chain-" + models.GenerateID(),
		Creator:   "creator",
		Title:     "Swim in the lake",
		Deadline:  deadline,
	}
	require.NoError(t, repo.Create(context.Background(), dare))
	return dare
}

func TestDareRepository_PoolUpdates(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewDareRepository(testutil.NewTestDB(t))
	now := time.Now().UTC()
	dare := seedDare(t, repo, now.Add(time.Hour))

	require.NoError(t, repo.AddToPool(ctx, dare.ID, models.BetTypeWillDo, 5, now))
	require.NoError(t, repo.AddToPool(ctx, dare.ID, models.BetTypeWontDo, 3, now))
	require.NoError(t, repo.RemoveFromPool(ctx, dare.ID, models.BetTypeWontDo, 2, now.Add(10*time.Minute)))

	got, err := repo.GetByRef(ctx, dare.OnChainID)
	require.NoError(t, err)
	require.Equal(t, models.Lamports(6), got.TotalPool)
	require.Equal(t, models.Lamports(5), got.WillDoPool)
	require.Equal(t, models.Lamports(1), got.WontDoPool)

	// Never drive a side below zero.
	require.ErrorIs(t, repo.RemoveFromPool(ctx, dare.ID, models.BetTypeWontDo, 2, now), repository.ErrConditionFailed)

	// Cash-out closes once the cutoff reaches the deadline.
	err = repo.RemoveFromPool(ctx, dare.ID, models.BetTypeWillDo, 1, dare.Deadline)
	require.ErrorIs(t, err, repository.ErrConditionFailed)

	// No more bets once the deadline passed.
	err = repo.AddToPool(ctx, dare.ID, models.BetTypeWillDo, 1, dare.Deadline)
	require.ErrorIs(t, err, repository.ErrConditionFailed)
}

func TestDareRepository_ClaimFlagsFlipOnce(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewDareRepository(testutil.NewTestDB(t))
	now := time.Now().UTC()
	dare := seedDare(t, repo, now.Add(time.Hour))

	// Nothing to pay from an empty pool.
	require.ErrorIs(t, repo.MarkCreatorFeeClaimed(ctx, dare.ID), repository.ErrConditionFailed)

	require.NoError(t, repo.AddToPool(ctx, dare.ID, models.BetTypeWillDo, 10, now))
	require.ErrorIs(t, repo.MarkCompleterFeeClaimed(ctx, dare.ID), repository.ErrConditionFailed)

	submittedAt := now
	proof := models.CompletionProof{
		Submitter:   "completer",
		ProofHash:   "Qm123",
		SubmittedAt: &submittedAt,
		Status:      models.ProofStatusApproved,
	}
	require.NoError(t, repo.MarkCompleted(ctx, dare.ID, proof, now))
	require.ErrorIs(t, repo.MarkCompleted(ctx, dare.ID, proof, now), repository.ErrConditionFailed)

	require.NoError(t, repo.MarkCreatorFeeClaimed(ctx, dare.ID))
	require.ErrorIs(t, repo.MarkCreatorFeeClaimed(ctx, dare.ID), repository.ErrConditionFailed)
	require.NoError(t, repo.MarkCompleterFeeClaimed(ctx, dare.ID))
	require.ErrorIs(t, repo.MarkCompleterFeeClaimed(ctx, dare.ID), repository.ErrConditionFailed)

	got, err := repo.GetByID(ctx, dare.ID)
	require.NoError(t, err)
	require.True(t, got.IsCompleted)
	require.True(t, got.CreatorFeeClaimed)
	require.True(t, got.CompleterFeeClaimed)
	require.Equal(t, "completer", got.CompletionProof().Submitter)

	count, err := repo.CountByProofSubmitter(ctx, "completer")
	require.NoError(t, err)
	require.Equal(t, int64(1), count)
}

func TestDareRepository_ListByState(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewDareRepository(testutil.NewTestDB(t))
	now := time.Now().UTC()

	open := seedDare(t, repo, now.Add(time.Hour))
	seedDare(t, repo, now.Add(-time.Hour))

	dares, total, err := repo.List(ctx, repository.DareFilter{State: "open", Now: now, Limit: 10})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Equal(t, open.ID, dares[0].ID)

	_, total, err = repo.List(ctx, repository.DareFilter{State: "expired", Now: now, Limit: 10})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)

	_, total, err = repo.List(ctx, repository.DareFilter{Creator: "creator", Now: now, Limit: 10})
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
}

func TestDareRepository_GetByRefPrefersID(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewDareRepository(testutil.NewTestDB(t))
	now := time.Now().UTC()

	victim := seedDare(t, repo, now.Add(time.Hour))
	shadow := &models.Dare{
		ID:        models.GenerateID(),
		OnChainID: victim.ID,
		Creator:   "mallory",
		Title:     "Shadow",
		Deadline:  now.Add(time.Hour),
	}
	require.NoError(t, repo.Create(ctx, shadow))

	for i := 0; i < 5; i++ {
		got, err := repo.GetByRef(ctx, victim.ID)
		require.NoError(t, err)
		require.Equal(t, victim.ID, got.ID)
	}

	got, err := repo.GetByRef(ctx, victim.OnChainID)
	require.NoError(t, err)
	require.Equal(t, victim.ID, got.ID)

	_, err = repo.GetByRef(ctx, "missing")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestDareRepository_ReleaseAndRestore(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewDareRepository(testutil.NewTestDB(t))
	now := time.Now().UTC()
	dare := seedDare(t, repo, now.Add(time.Hour))

	require.ErrorIs(t, repo.ReleaseCreatorFee(ctx, dare.ID), repository.ErrConditionFailed)

	require.NoError(t, repo.AddToPool(ctx, dare.ID, models.BetTypeWontDo, 100, now))
	require.NoError(t, repo.MarkCreatorFeeClaimed(ctx, dare.ID))
	require.NoError(t, repo.ReleaseCreatorFee(ctx, dare.ID))
	require.NoError(t, repo.MarkCreatorFeeClaimed(ctx, dare.ID))

	require.NoError(t, repo.RemoveFromPool(ctx, dare.ID, models.BetTypeWontDo, 100, now))
	require.NoError(t, repo.RestorePool(ctx, dare.ID, models.BetTypeWontDo, 100))

	got, err := repo.GetByID(ctx, dare.ID)
	require.NoError(t, err)
	require.Equal(t, models.Lamports(100), got.TotalPool)
	require.Equal(t, models.Lamports(100), got.WontDoPool)
	require.True(t, got.CreatorFeeClaimed)
}

func TestPayoutRepository_Lifecycle(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewPayoutRepository(testutil.NewTestDB(t))

	newPayout := func(wallet string) *models.Payout {
		p := &models.Payout{
			ID:     models.GeneratePayoutID(),
			Kind:   models.PayoutKindWinnings,
			DareID: "dare-1",
			Wallet: wallet,
			Amount: 100,
			Status: models.PayoutStatusPending,
		}
		require.NoError(t, repo.Create(ctx, p))
		return p
	}
	sent, lost, unsent := newPayout("alice"), newPayout("bob"), newPayout("carol")

	require.NoError(t, repo.MarkSent(ctx, sent.ID, "sig-1"))
	require.NoError(t, repo.MarkUnconfirmed(ctx, lost.ID, "timeout"))
	require.NoError(t, repo.Delete(ctx, unsent.ID))

	// Only PENDING payouts can be deleted or marked unconfirmed.
	require.ErrorIs(t, repo.Delete(ctx, lost.ID), repository.ErrConditionFailed)
	require.ErrorIs(t, repo.MarkUnconfirmed(ctx, sent.ID, "late"), repository.ErrConditionFailed)

	got, err := repo.GetByID(ctx, sent.ID)
	require.NoError(t, err)
	require.Equal(t, models.PayoutStatusSent, got.Status)
	require.Equal(t, "sig-1", got.TxSignature)

	unsettled, err := repo.ListUnsettled(ctx, 10)
	require.NoError(t, err)
	require.Len(t, unsettled, 1)
	require.Equal(t, lost.ID, unsettled[0].ID)
	require.Equal(t, "timeout", unsettled[0].LastError)
}

func TestBetRepository_TerminalFlags(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewBetRepository(testutil.NewTestDB(t))

	bet := &models.Bet{
		ID:          models.GenerateID(),
		OnChainID:   "bet-chain-1",
		DareID:      "dare-1",
		Bettor:      "alice",
		Amount:      100,
		BetType:     models.BetTypeWillDo,
		TxSignature: "sig-1",
	}
	require.NoError(t, repo.Create(ctx, bet))

	exists, err := repo.ExistsByTxSignature(ctx, "sig-1")
	require.NoError(t, err)
	require.True(t, exists)

	dup := *bet
	dup.ID, dup.OnChainID = models.GenerateID(), "bet-chain-2"
	require.ErrorIs(t, repo.Create(ctx, &dup), gorm.ErrDuplicatedKey)

	require.NoError(t, repo.MarkCashedOut(ctx, bet.ID, 90))
	require.ErrorIs(t, repo.MarkClaimed(ctx, bet.ID, 50), repository.ErrConditionFailed)
	require.ErrorIs(t, repo.MarkCashedOut(ctx, bet.ID, 90), repository.ErrConditionFailed)

	got, err := repo.GetByOnChainID(ctx, "bet-chain-1")
	require.NoError(t, err)
	require.True(t, got.IsEarlyCashOut)
	require.False(t, got.IsClaimed)
	require.Equal(t, models.Lamports(90), got.PayoutAmount)

	require.NoError(t, repo.ReleaseCashedOut(ctx, bet.ID))
	require.ErrorIs(t, repo.ReleaseCashedOut(ctx, bet.ID), repository.ErrConditionFailed)
	require.NoError(t, repo.MarkClaimed(ctx, bet.ID, 50))
	require.NoError(t, repo.ReleaseClaimed(ctx, bet.ID))

	got, err = repo.GetByID(ctx, bet.ID)
	require.NoError(t, err)
	require.False(t, got.IsEarlyCashOut)
	require.False(t, got.IsClaimed)
	require.Zero(t, got.PayoutAmount)
}

func TestUserRepository_Upsert(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewUserRepository(testutil.NewTestDB(t))

	require.NoError(t, repo.EnsureExists(ctx, "alice"))
	require.NoError(t, repo.EnsureExists(ctx, "alice"))

	name := "alice_w"
	require.NoError(t, repo.Upsert(ctx, &models.User{Wallet: "alice", Username: &name, Bio: "hi"}))

	got, err := repo.GetByWallet(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, "alice_w", *got.Username)
	require.Equal(t, "hi", got.Bio)
}
