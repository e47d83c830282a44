package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"dare-backend/internal/models"
	"dare-backend/internal/repository"
)

type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	Wallet    string    `json:"wallet"`
}

// AuthService signs a wallet in after it signed "login:<wallet>:<timestamp>".
type AuthService struct {
	auth  *SignedRequestAuthorizer
	jwt   *JWTService
	users repository.UserRepository
	log   *logrus.Logger
}

func NewAuthService(db *gorm.DB, auth *SignedRequestAuthorizer, jwt *JWTService, log *logrus.Logger) *AuthService {
	return &AuthService{
		auth:  auth,
		jwt:   jwt,
		users: repository.NewUserRepository(db),
		log:   log,
	}
}

func (s *AuthService) Login(ctx context.Context, req *models.WalletLoginRequest) (*LoginResult, error) {
	if err := s.auth.Authorize(ctx, req.Wallet, ActionLogin, req.Wallet, req.Timestamp, req.Signature); err != nil {
		return nil, err
	}

	if err := s.users.EnsureExists(ctx, req.Wallet); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	token, expiresAt, err := s.jwt.GenerateToken(req.Wallet)
	if err != nil {
		return nil, err
	}

	s.log.WithField("wallet", req.Wallet).Info("Wallet signed in")

	return &LoginResult{Token: token, ExpiresAt: expiresAt, Wallet: req.Wallet}, nil
}
