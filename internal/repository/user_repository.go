package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"dare-backend/internal/models"
)

type UserRepository interface {
	GetByWallet(ctx context.Context, wallet string) (*models.User, error)
	// Upsert creates the user or overwrites its mutable profile columns.
	Upsert(ctx context.Context, user *models.User) error
	EnsureExists(ctx context.Context, wallet string) error
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByWallet(ctx context.Context, wallet string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Take(&user, "wallet = ?", wallet).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Upsert(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "wallet"}},
		DoUpdates: clause.AssignmentColumns([]string{"username", "bio", "avatar_url", "updated_at"}),
	}).Create(user).Error
}

func (r *userRepository) EnsureExists(ctx context.Context, wallet string) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.User{Wallet: wallet}).Error
}
