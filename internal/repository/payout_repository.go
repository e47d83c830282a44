package repository

import (
	"context"

	"gorm.io/gorm"

	"dare-backend/internal/models"
)

type PayoutRepository interface {
	WithTx(tx *gorm.DB) PayoutRepository

	Create(ctx context.Context, payout *models.Payout) error
	GetByID(ctx context.Context, id string) (*models.Payout, error)
	MarkSent(ctx context.Context, id, signature string) error
	MarkUnconfirmed(ctx context.Context, id, reason string) error
	Delete(ctx context.Context, id string) error
	ListUnsettled(ctx context.Context, limit int) ([]models.Payout, error)
}

type payoutRepository struct {
	db *gorm.DB
}

func NewPayoutRepository(db *gorm.DB) PayoutRepository {
	return &payoutRepository{db: db}
}

func (r *payoutRepository) WithTx(tx *gorm.DB) PayoutRepository {
	return &payoutRepository{db: tx}
}

func (r *payoutRepository) Create(ctx context.Context, payout *models.Payout) error {
	return r.db.WithContext(ctx).Create(payout).Error
}

func (r *payoutRepository) GetByID(ctx context.Context, id string) (*models.Payout, error) {
	var payout models.Payout
	if err := r.db.WithContext(ctx).Take(&payout, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &payout, nil
}

func (r *payoutRepository) MarkSent(ctx context.Context, id, signature string) error {
	tx := r.db.WithContext(ctx).Model(&models.Payout{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":       models.PayoutStatusSent,
			"tx_signature": signature,
			"last_error":   "",
		})
	return checkAffected(tx)
}

func (r *payoutRepository) MarkUnconfirmed(ctx context.Context, id, reason string) error {
	tx := r.db.WithContext(ctx).Model(&models.Payout{}).
		Where("id = ? AND status = ?", id, models.PayoutStatusPending).
		Updates(map[string]any{
			"status":     models.PayoutStatusUnconfirmed,
			"last_error": reason,
		})
	return checkAffected(tx)
}

// Delete removes a payout that is known never to have been sent.
func (r *payoutRepository) Delete(ctx context.Context, id string) error {
	tx := r.db.WithContext(ctx).
		Where("id = ? AND status = ?", id, models.PayoutStatusPending).
		Delete(&models.Payout{})
	return checkAffected(tx)
}

// ListUnsettled returns PENDING and UNCONFIRMED payouts, oldest first.
func (r *payoutRepository) ListUnsettled(ctx context.Context, limit int) ([]models.Payout, error) {
	var payouts []models.Payout
	err := r.db.WithContext(ctx).
		Where("status IN ?", []models.PayoutStatus{models.PayoutStatusPending, models.PayoutStatusUnconfirmed}).
		Order("created_at ASC").
		Limit(limit).
		Find(&payouts).Error
	return payouts, err
}
