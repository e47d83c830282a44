package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"dare-backend/internal/models"
	"dare-backend/internal/repository"
)

type UserService struct {
	users repository.UserRepository
	dares repository.DareRepository
	bets  repository.BetRepository
	feed  PayoutFeed
	log   *logrus.Logger
}

func NewUserService(db *gorm.DB, feed PayoutFeed, log *logrus.Logger) *UserService {
	return &UserService{
		users: repository.NewUserRepository(db),
		dares: repository.NewDareRepository(db),
		bets:  repository.NewBetRepository(db),
		feed:  feed,
		log:   log,
	}
}

// GetProfile returns the stored profile with its activity counts. A wallet that never
// saved a profile but has activity still gets one.
func (s *UserService) GetProfile(ctx context.Context, wallet string) (*models.UserProfile, error) {
	user, err := s.users.GetByWallet(ctx, wallet)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	stats, err := s.stats(ctx, wallet)
	if err != nil {
		return nil, err
	}

	if user == nil {
		if stats == (models.UserStats{}) {
			return nil, ErrUserNotFound
		}
		user = &models.User{Wallet: wallet}
	}

	return &models.UserProfile{User: *user, Stats: stats}, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, wallet string, req *models.UpdateProfileRequest) (*models.UserProfile, error) {
	user, err := s.users.GetByWallet(ctx, wallet)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		user = &models.User{Wallet: wallet}
	case err != nil:
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if req.Username != nil {
		name := strings.TrimSpace(*req.Username)
		if name == "" {
			user.Username = nil
		} else {
			user.Username = &name
		}
	}
	if req.Bio != nil {
		user.Bio = *req.Bio
	}
	if req.AvatarURL != nil {
		user.AvatarURL = *req.AvatarURL
	}

	user.UpdatedAt = time.Now().UTC()
	if err := s.users.Upsert(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("failed to save profile: %w", err)
	}

	s.log.WithField("wallet", wallet).Info("Profile updated")

	return s.GetProfile(ctx, wallet)
}

func (s *UserService) GetPayouts(ctx context.Context, wallet string, limit int64) ([]*models.PayoutRecord, error) {
	if s.feed == nil {
		return []*models.PayoutRecord{}, nil
	}
	return s.feed.GetUserPayouts(ctx, wallet, limit)
}

func (s *UserService) stats(ctx context.Context, wallet string) (models.UserStats, error) {
	var (
		stats models.UserStats
		err   error
	)
	if stats.DaresCreated, err = s.dares.CountByCreator(ctx, wallet); err != nil {
		return stats, fmt.Errorf("failed to count dares: %w", err)
	}
	if stats.BetsPlaced, err = s.bets.CountByBettor(ctx, wallet); err != nil {
		return stats, fmt.Errorf("failed to count bets: %w", err)
	}
	if stats.ProofsSubmitted, err = s.dares.CountByProofSubmitter(ctx, wallet); err != nil {
		return stats, fmt.Errorf("failed to count proofs: %w", err)
	}
	return stats, nil
}
