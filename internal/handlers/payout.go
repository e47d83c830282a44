package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"dare-backend/internal/models"
	"dare-backend/internal/services"
)

type claimFunc func(ctx context.Context, req *models.ClaimRequest) (*models.PayoutResult, error)

// PayoutHandler serves the signed claim routes. They carry no JWT; the wallet
// signature over the claim message authenticates each request.
type PayoutHandler struct {
	engine *services.SettlementEngine
	log    *logrus.Logger
}

func NewPayoutHandler(engine *services.SettlementEngine, log *logrus.Logger) *PayoutHandler {
	return &PayoutHandler{engine: engine, log: log}
}

func (h *PayoutHandler) Claim(c *gin.Context) {
	h.handle(c, h.engine.Claim)
}

func (h *PayoutHandler) ClaimCreatorFee(c *gin.Context) {
	h.handle(c, h.engine.ClaimCreatorFee)
}

func (h *PayoutHandler) ClaimCompleterReward(c *gin.Context) {
	h.handle(c, h.engine.ClaimCompleterReward)
}

func (h *PayoutHandler) ClaimWinnings(c *gin.Context) {
	h.handle(c, h.engine.ClaimWinnings)
}

func (h *PayoutHandler) CashOut(c *gin.Context) {
	h.handle(c, h.engine.CashOut)
}

func (h *PayoutHandler) handle(c *gin.Context, claim claimFunc) {
	var req models.ClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}

	result, err := claim(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.log, "Failed to claim payout", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"payout":  result,
	})
}
