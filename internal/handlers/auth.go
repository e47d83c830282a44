package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"dare-backend/internal/models"
	"dare-backend/internal/services"
)

type AuthHandler struct {
	auth *services.AuthService
	log  *logrus.Logger
}

func NewAuthHandler(auth *services.AuthService, log *logrus.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, log: log}
}

// WalletLogin exchanges a signed "login:<wallet>:<timestamp>" message for a JWT.
func (h *AuthHandler) WalletLogin(c *gin.Context) {
	var req models.WalletLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}

	result, err := h.auth.Login(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.log, "Authentication failed", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"token":   result.Token,
		"expires": result.ExpiresAt,
		"wallet":  result.Wallet,
	})
}
