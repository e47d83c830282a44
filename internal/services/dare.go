package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"dare-backend/internal/errorx"
	"dare-backend/internal/metrics"
	"dare-backend/internal/models"
	"dare-backend/internal/repository"
	"dare-backend/internal/settlement"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type DareList struct {
	Dares []models.DareResponse `json:"dares"`
	Total int64                 `json:"total"`
	Page  int                   `json:"page"`
	Limit int                   `json:"limit"`
}

type DareService struct {
	dares repository.DareRepository
	bets  repository.BetRepository
	users repository.UserRepository
	log   *logrus.Logger
	now   Clock
}

func NewDareService(db *gorm.DB, log *logrus.Logger, clock Clock) *DareService {
	if clock == nil {
		clock = systemClock
	}
	return &DareService{
		dares: repository.NewDareRepository(db),
		bets:  repository.NewBetRepository(db),
		users: repository.NewUserRepository(db),
		log:   log,
		now:   clock,
	}
}

func (s *DareService) CreateDare(ctx context.Context, wallet string, req *models.CreateDareRequest) (*models.DareResponse, error) {
	now := s.now()
	if err := req.Validate(now); err != nil {
		return nil, errorx.New(errorx.BadRequest, "invalid dare: %v", err)
	}

	dare := &models.Dare{
		ID:          models.GenerateID(),
		OnChainID:   req.OnChainID,
		Creator:     wallet,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Deadline:    req.Deadline.UTC(),
		MinBet:      models.Lamports(req.MinBet),
	}
	if dare.OnChainID == "" {
		dare.OnChainID = dare.ID
	} else {
		// Refs resolve ids before on-chain ids; an on-chain id shadowing another
		// dare's id would still be ambiguous to clients.
		_, err := s.dares.GetByID(ctx, dare.OnChainID)
		switch {
		case err == nil:
			return nil, ErrDareRefTaken
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return nil, fmt.Errorf("failed to check on-chain id: %w", err)
		}
	}

	if err := s.dares.Create(ctx, dare); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDareExists
		}
		return nil, fmt.Errorf("failed to create dare: %w", err)
	}

	if err := s.users.EnsureExists(ctx, wallet); err != nil {
		s.log.WithError(err).WithField("wallet", wallet).Warn("Failed to create creator profile")
	}

	metrics.DaresCreated.Inc()
	s.log.WithFields(logrus.Fields{
		"dare_id":  dare.ID,
		"creator":  wallet,
		"deadline": dare.Deadline,
	}).Info("Dare created")

	resp := NewDareResponse(dare, now)
	return &resp, nil
}

// GetDare resolves ref as either the internal id or the on-chain id.
func (s *DareService) GetDare(ctx context.Context, ref string) (*models.DareResponse, error) {
	dare, err := s.dares.GetByRef(ctx, ref)
	if err != nil {
		return nil, notFound(err, ErrDareNotFound)
	}
	resp := NewDareResponse(dare, s.now())
	return &resp, nil
}

func (s *DareService) ListDares(ctx context.Context, query *models.ListDaresQuery) (*DareList, error) {
	if query.State != "" {
		if _, ok := settlement.ParseState(query.State); !ok {
			return nil, errorx.New(errorx.BadRequest, "unknown state: %s", query.State)
		}
	}

	page, limit := query.Page, query.Limit
	if page < 1 {
		page = 1
	}
	if limit <= 0 || limit > maxPageSize {
		limit = defaultPageSize
	}

	now := s.now()
	dares, total, err := s.dares.List(ctx, repository.DareFilter{
		Creator: query.Creator,
		State:   query.State,
		Now:     now,
		Offset:  (page - 1) * limit,
		Limit:   limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list dares: %w", err)
	}

	out := make([]models.DareResponse, 0, len(dares))
	for i := range dares {
		out = append(out, NewDareResponse(&dares[i], now))
	}

	return &DareList{Dares: out, Total: total, Page: page, Limit: limit}, nil
}

// SubmitProof records the completion proof and resolves the dare as completed.
// Proofs are accepted only while the dare is open, and never from its creator.
func (s *DareService) SubmitProof(
	ctx context.Context, wallet, ref string, req *models.SubmitProofRequest,
) (*models.DareResponse, error) {
	dare, err := s.dares.GetByRef(ctx, ref)
	if err != nil {
		return nil, notFound(err, ErrDareNotFound)
	}
	if dare.Creator == wallet {
		return nil, ErrCreatorProof
	}

	now := s.now()
	if settlement.StateOf(dare, now) != settlement.StateOpen {
		return nil, ErrProofClosed
	}

	proof := models.CompletionProof{
		Submitter:   wallet,
		ProofHash:   strings.TrimSpace(req.ProofHash),
		Description: req.Description,
		SubmittedAt: &now,
		Status:      models.ProofStatusApproved,
	}
	if proof.ProofHash == "" {
		return nil, errorx.New(errorx.BadRequest, "proof hash must not be blank")
	}

	err = s.dares.MarkCompleted(ctx, dare.ID, proof, now)
	if err := conditional(err, ErrProofClosed); err != nil {
		return nil, err
	}

	if err := s.users.EnsureExists(ctx, wallet); err != nil {
		s.log.WithError(err).WithField("wallet", wallet).Warn("Failed to create completer profile")
	}

	metrics.ProofsSubmitted.Inc()
	s.log.WithFields(logrus.Fields{
		"dare_id":   dare.ID,
		"completer": wallet,
	}).Info("Completion proof accepted")

	return s.GetDare(ctx, dare.ID)
}

func (s *DareService) ListBets(ctx context.Context, ref string) ([]models.BetResponse, error) {
	dare, err := s.dares.GetByRef(ctx, ref)
	if err != nil {
		return nil, notFound(err, ErrDareNotFound)
	}

	bets, err := s.bets.ListByDare(ctx, dare.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bets: %w", err)
	}

	out := make([]models.BetResponse, 0, len(bets))
	for i := range bets {
		out = append(out, models.NewBetResponse(&bets[i]))
	}
	return out, nil
}

func NewDareResponse(d *models.Dare, now time.Time) models.DareResponse {
	return models.DareResponse{
		Dare:            *d,
		State:           string(settlement.StateOf(d, now)),
		CompletionProof: d.CompletionProof(),
		TotalPoolSOL:    models.FormatSOL(d.TotalPool),
		WillDoPoolSOL:   models.FormatSOL(d.WillDoPool),
		WontDoPoolSOL:   models.FormatSOL(d.WontDoPool),
		CashOutCutoff:   settlement.CashOutDeadline(d),
	}
}
