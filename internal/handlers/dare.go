package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"dare-backend/internal/middleware"
	"dare-backend/internal/models"
	"dare-backend/internal/services"
)

type DareHandler struct {
	dares  *services.DareService
	engine *services.SettlementEngine
	log    *logrus.Logger
}

func NewDareHandler(dares *services.DareService, engine *services.SettlementEngine, log *logrus.Logger) *DareHandler {
	return &DareHandler{dares: dares, engine: engine, log: log}
}

func (h *DareHandler) ListDares(c *gin.Context) {
	var query models.ListDaresQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		invalidRequest(c, err)
		return
	}

	list, err := h.dares.ListDares(c.Request.Context(), &query)
	if err != nil {
		respondError(c, h.log, "Failed to list dares", err)
		return
	}

	c.JSON(http.StatusOK, list)
}

// GetDare accepts the internal id or the on-chain id. With ?wallet= it also lists
// what that wallet could claim right now.
func (h *DareHandler) GetDare(c *gin.Context) {
	ctx := c.Request.Context()

	dare, err := h.dares.GetDare(ctx, c.Param("id"))
	if err != nil {
		respondError(c, h.log, "Failed to get dare", err)
		return
	}

	if wallet := c.Query("wallet"); wallet != "" {
		claimable, err := h.engine.Claimable(ctx, dare.ID, wallet)
		if err != nil {
			respondError(c, h.log, "Failed to compute claimable payouts", err)
			return
		}
		dare.Claimable = claimable
	}

	c.JSON(http.StatusOK, dare)
}

func (h *DareHandler) CreateDare(c *gin.Context) {
	var req models.CreateDareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}

	dare, err := h.dares.CreateDare(c.Request.Context(), c.GetString(middleware.ContextWallet), &req)
	if err != nil {
		respondError(c, h.log, "Failed to create dare", err)
		return
	}

	c.JSON(http.StatusCreated, dare)
}

func (h *DareHandler) SubmitProof(c *gin.Context) {
	var req models.SubmitProofRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}

	dare, err := h.dares.SubmitProof(c.Request.Context(), c.GetString(middleware.ContextWallet), c.Param("id"), &req)
	if err != nil {
		respondError(c, h.log, "Failed to submit proof", err)
		return
	}

	c.JSON(http.StatusOK, dare)
}

func (h *DareHandler) ListBets(c *gin.Context) {
	bets, err := h.dares.ListBets(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.log, "Failed to list bets", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"bets": bets})
}
