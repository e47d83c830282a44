package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"dare-backend/internal/models"
)

// ErrConditionFailed is returned when a conditional update matched no row.
var ErrConditionFailed = errors.New("update condition not met")

type DareFilter struct {
	Creator string
	// State filters on the derived state as of Now.
	State  string
	Now    time.Time
	Offset int
	Limit  int
}

type DareRepository interface {
	WithTx(tx *gorm.DB) DareRepository

	Create(ctx context.Context, dare *models.Dare) error
	GetByID(ctx context.Context, id string) (*models.Dare, error)
	GetByRef(ctx context.Context, ref string) (*models.Dare, error)
	List(ctx context.Context, filter DareFilter) ([]models.Dare, int64, error)
	CountByCreator(ctx context.Context, wallet string) (int64, error)
	CountByProofSubmitter(ctx context.Context, wallet string) (int64, error)

	AddToPool(ctx context.Context, dareID string, betType models.BetType, amount models.Lamports, now time.Time) error
	RemoveFromPool(ctx context.Context, dareID string, betType models.BetType, amount models.Lamports, cashOutCutoff time.Time) error
	MarkCompleted(ctx context.Context, dareID string, proof models.CompletionProof, now time.Time) error
	MarkCreatorFeeClaimed(ctx context.Context, dareID string) error
	MarkCompleterFeeClaimed(ctx context.Context, dareID string) error
	ReleaseCreatorFee(ctx context.Context, dareID string) error
	ReleaseCompleterFee(ctx context.Context, dareID string) error
	RestorePool(ctx context.Context, dareID string, betType models.BetType, amount models.Lamports) error
}

type dareRepository struct {
	db *gorm.DB
}

func NewDareRepository(db *gorm.DB) DareRepository {
	return &dareRepository{db: db}
}

func (r *dareRepository) WithTx(tx *gorm.DB) DareRepository {
	return &dareRepository{db: tx}
}

func (r *dareRepository) Create(ctx context.Context, dare *models.Dare) error {
	return r.db.WithContext(ctx).Create(dare).Error
}

func (r *dareRepository) GetByID(ctx context.Context, id string) (*models.Dare, error) {
	var dare models.Dare
	if err := r.db.WithContext(ctx).Take(&dare, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &dare, nil
}

// GetByRef resolves the internal id first and only then the on-chain id, so a ref
// always means the same dare.
func (r *dareRepository) GetByRef(ctx context.Context, ref string) (*models.Dare, error) {
	dare, err := r.GetByID(ctx, ref)
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dare, err
	}

	var byChain models.Dare
	if err := r.db.WithContext(ctx).Take(&byChain, "on_chain_id = ?", ref).Error; err != nil {
		return nil, err
	}
	return &byChain, nil
}

func (r *dareRepository) List(ctx context.Context, filter DareFilter) ([]models.Dare, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Dare{})

	if filter.Creator != "" {
		query = query.Where("creator = ?", filter.Creator)
	}

	switch filter.State {
	case "open":
		query = query.Where("is_completed = ? AND deadline > ?", false, filter.Now)
	case "completed":
		query = query.Where("is_completed = ?", true)
	case "expired":
		query = query.Where("is_completed = ? AND deadline <= ?", false, filter.Now)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var dares []models.Dare
	err := query.Order("created_at DESC").
		Offset(filter.Offset).
		Limit(filter.Limit).
		Find(&dares).Error
	if err != nil {
		return nil, 0, err
	}

	return dares, total, nil
}

func (r *dareRepository) CountByCreator(ctx context.Context, wallet string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Dare{}).
		Where("creator = ?", wallet).
		Count(&count).Error
	return count, err
}

func (r *dareRepository) CountByProofSubmitter(ctx context.Context, wallet string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Dare{}).
		Where("proof_submitter = ?", wallet).
		Count(&count).Error
	return count, err
}

// AddToPool increments totalPool and the matching side pool in one statement, and
// only while the dare is still open for betting.
func (r *dareRepository) AddToPool(
	ctx context.Context, dareID string, betType models.BetType, amount models.Lamports, now time.Time,
) error {
	side := sidePoolColumn(betType)
	tx := r.db.WithContext(ctx).Model(&models.Dare{}).
		Where("id = ? AND is_completed = ? AND deadline > ?", dareID, false, now).
		Updates(map[string]any{
			"total_pool": gorm.Expr("total_pool + ?", amount),
			side:         gorm.Expr(side+" + ?", amount),
		})
	return checkAffected(tx)
}

// RemoveFromPool reverses AddToPool for an early cash-out. It matches only while the
// dare is uncompleted and its deadline is later than cashOutCutoff (now + cutoff window).
func (r *dareRepository) RemoveFromPool(
	ctx context.Context, dareID string, betType models.BetType, amount models.Lamports, cashOutCutoff time.Time,
) error {
	side := sidePoolColumn(betType)
	tx := r.db.WithContext(ctx).Model(&models.Dare{}).
		Where("id = ? AND is_completed = ? AND deadline > ?", dareID, false, cashOutCutoff).
		Where("total_pool >= ? AND "+side+" >= ?", amount, amount).
		Updates(map[string]any{
			"total_pool": gorm.Expr("total_pool - ?", amount),
			side:         gorm.Expr(side+" - ?", amount),
		})
	return checkAffected(tx)
}

func (r *dareRepository) MarkCompleted(
	ctx context.Context, dareID string, proof models.CompletionProof, now time.Time,
) error {
	tx := r.db.WithContext(ctx).Model(&models.Dare{}).
		Where("id = ? AND is_completed = ? AND deadline > ?", dareID, false, now).
		Updates(map[string]any{
			"is_completed":       true,
			"proof_submitter":    proof.Submitter,
			"proof_proof_hash":   proof.ProofHash,
			"proof_description":  proof.Description,
			"proof_submitted_at": proof.SubmittedAt,
			"proof_status":       proof.Status,
		})
	return checkAffected(tx)
}

func (r *dareRepository) MarkCreatorFeeClaimed(ctx context.Context, dareID string) error {
	tx := r.db.WithContext(ctx).Model(&models.Dare{}).
		Where("id = ? AND creator_fee_claimed = ? AND total_pool > 0", dareID, false).
		Update("creator_fee_claimed", true)
	return checkAffected(tx)
}

func (r *dareRepository) MarkCompleterFeeClaimed(ctx context.Context, dareID string) error {
	tx := r.db.WithContext(ctx).Model(&models.Dare{}).
		Where("id = ? AND completer_fee_claimed = ? AND is_completed = ? AND total_pool > 0",
			dareID, false, true).
		Update("completer_fee_claimed", true)
	return checkAffected(tx)
}

// ReleaseCreatorFee clears a claim flag whose payout was never sent.
func (r *dareRepository) ReleaseCreatorFee(ctx context.Context, dareID string) error {
	tx := r.db.WithContext(ctx).Model(&models.Dare{}).
		Where("id = ? AND creator_fee_claimed = ?", dareID, true).
		Update("creator_fee_claimed", false)
	return checkAffected(tx)
}

func (r *dareRepository) ReleaseCompleterFee(ctx context.Context, dareID string) error {
	tx := r.db.WithContext(ctx).Model(&models.Dare{}).
		Where("id = ? AND completer_fee_claimed = ?", dareID, true).
		Update("completer_fee_claimed", false)
	return checkAffected(tx)
}

// RestorePool puts a cashed-out amount back regardless of the betting window; it
// undoes a RemoveFromPool whose refund was never sent.
func (r *dareRepository) RestorePool(
	ctx context.Context, dareID string, betType models.BetType, amount models.Lamports,
) error {
	side := sidePoolColumn(betType)
	tx := r.db.WithContext(ctx).Model(&models.Dare{}).
		Where("id = ?", dareID).
		Updates(map[string]any{
			"total_pool": gorm.Expr("total_pool + ?", amount),
			side:         gorm.Expr(side+" + ?", amount),
		})
	return checkAffected(tx)
}

func sidePoolColumn(betType models.BetType) string {
	if betType == models.BetTypeWillDo {
		return "will_do_pool"
	}
	return "wont_do_pool"
}

func checkAffected(tx *gorm.DB) error {
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrConditionFailed
	}
	return nil
}
