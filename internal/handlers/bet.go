package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"dare-backend/internal/middleware"
	"dare-backend/internal/models"
	"dare-backend/internal/services"
)

type BetHandler struct {
	engine *services.SettlementEngine
	log    *logrus.Logger
}

func NewBetHandler(engine *services.SettlementEngine, log *logrus.Logger) *BetHandler {
	return &BetHandler{engine: engine, log: log}
}

func (h *BetHandler) PlaceBet(c *gin.Context) {
	var req models.PlaceBetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}

	bet, err := h.engine.PlaceBet(c.Request.Context(), c.GetString(middleware.ContextWallet), &req)
	if err != nil {
		respondError(c, h.log, "Failed to place bet", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"bet":     models.NewBetResponse(bet),
	})
}

func (h *BetHandler) UpdateBet(c *gin.Context) {
	var req models.UpdateBetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}

	bet, err := h.engine.UpdateBet(c.Request.Context(), c.GetString(middleware.ContextWallet), c.Param("onChainId"), &req)
	if err != nil {
		respondError(c, h.log, "Failed to update bet", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"bet":     models.NewBetResponse(bet),
	})
}
