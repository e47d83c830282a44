package repository

import (
	"context"

	"gorm.io/gorm"

	"dare-backend/internal/models"
)

type BetRepository interface {
	WithTx(tx *gorm.DB) BetRepository

	Create(ctx context.Context, bet *models.Bet) error
	GetByID(ctx context.Context, id string) (*models.Bet, error)
	GetByOnChainID(ctx context.Context, onChainID string) (*models.Bet, error)
	ExistsByTxSignature(ctx context.Context, txSignature string) (bool, error)
	ListByDare(ctx context.Context, dareID string) ([]models.Bet, error)
	ListByDareAndBettor(ctx context.Context, dareID, bettor string) ([]models.Bet, error)
	CountByBettor(ctx context.Context, wallet string) (int64, error)

	MarkClaimed(ctx context.Context, betID string, payout models.Lamports) error
	MarkCashedOut(ctx context.Context, betID string, refund models.Lamports) error
	SetPayoutSignature(ctx context.Context, betID, signature string) error
	ReleaseClaimed(ctx context.Context, betID string) error
	ReleaseCashedOut(ctx context.Context, betID string) error
}

type betRepository struct {
	db *gorm.DB
}

func NewBetRepository(db *gorm.DB) BetRepository {
	return &betRepository{db: db}
}

func (r *betRepository) WithTx(tx *gorm.DB) BetRepository {
	return &betRepository{db: tx}
}

func (r *betRepository) Create(ctx context.Context, bet *models.Bet) error {
	return r.db.WithContext(ctx).Create(bet).Error
}

func (r *betRepository) GetByID(ctx context.Context, id string) (*models.Bet, error) {
	var bet models.Bet
	if err := r.db.WithContext(ctx).Take(&bet, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &bet, nil
}

func (r *betRepository) GetByOnChainID(ctx context.Context, onChainID string) (*models.Bet, error) {
	var bet models.Bet
	if err := r.db.WithContext(ctx).Take(&bet, "on_chain_id = ?", onChainID).Error; err != nil {
		return nil, err
	}
	return &bet, nil
}

func (r *betRepository) ExistsByTxSignature(ctx context.Context, txSignature string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Bet{}).
		Where("tx_signature = ?", txSignature).
		Count(&count).Error
	return count > 0, err
}

func (r *betRepository) ListByDare(ctx context.Context, dareID string) ([]models.Bet, error) {
	var bets []models.Bet
	err := r.db.WithContext(ctx).
		Where("dare_id = ?", dareID).
		Order("created_at ASC").
		Find(&bets).Error
	return bets, err
}

func (r *betRepository) ListByDareAndBettor(ctx context.Context, dareID, bettor string) ([]models.Bet, error) {
	var bets []models.Bet
	err := r.db.WithContext(ctx).
		Where("dare_id = ? AND bettor = ?", dareID, bettor).
		Order("created_at ASC").
		Find(&bets).Error
	return bets, err
}

func (r *betRepository) CountByBettor(ctx context.Context, wallet string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Bet{}).
		Where("bettor = ?", wallet).
		Count(&count).Error
	return count, err
}

func (r *betRepository) MarkClaimed(ctx context.Context, betID string, payout models.Lamports) error {
	tx := r.db.WithContext(ctx).Model(&models.Bet{}).
		Where("id = ? AND is_claimed = ? AND is_early_cash_out = ?", betID, false, false).
		Updates(map[string]any{"is_claimed": true, "payout_amount": payout})
	return checkAffected(tx)
}

func (r *betRepository) MarkCashedOut(ctx context.Context, betID string, refund models.Lamports) error {
	tx := r.db.WithContext(ctx).Model(&models.Bet{}).
		Where("id = ? AND is_claimed = ? AND is_early_cash_out = ?", betID, false, false).
		Updates(map[string]any{"is_early_cash_out": true, "payout_amount": refund})
	return checkAffected(tx)
}

func (r *betRepository) SetPayoutSignature(ctx context.Context, betID, signature string) error {
	return r.db.WithContext(ctx).Model(&models.Bet{}).
		Where("id = ?", betID).
		Update("payout_signature", signature).Error
}

// ReleaseClaimed reverts MarkClaimed for a payout that was never sent.
func (r *betRepository) ReleaseClaimed(ctx context.Context, betID string) error {
	tx := r.db.WithContext(ctx).Model(&models.Bet{}).
		Where("id = ? AND is_claimed = ?", betID, true).
		Updates(map[string]any{"is_claimed": false, "payout_amount": 0})
	return checkAffected(tx)
}

func (r *betRepository) ReleaseCashedOut(ctx context.Context, betID string) error {
	tx := r.db.WithContext(ctx).Model(&models.Bet{}).
		Where("id = ? AND is_early_cash_out = ?", betID, true).
		Updates(map[string]any{"is_early_cash_out": false, "payout_amount": 0})
	return checkAffected(tx)
}
