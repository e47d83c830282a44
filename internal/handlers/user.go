package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"dare-backend/internal/middleware"
	"dare-backend/internal/models"
	"dare-backend/internal/services"
)

type UserHandler struct {
	users *services.UserService
	log   *logrus.Logger
}

func NewUserHandler(users *services.UserService, log *logrus.Logger) *UserHandler {
	return &UserHandler{users: users, log: log}
}

func (h *UserHandler) GetProfile(c *gin.Context) {
	profile, err := h.users.GetProfile(c.Request.Context(), c.Param("wallet"))
	if err != nil {
		respondError(c, h.log, "Failed to get profile", err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

func (h *UserHandler) UpdateMe(c *gin.Context) {
	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}

	profile, err := h.users.UpdateProfile(c.Request.Context(), c.GetString(middleware.ContextWallet), &req)
	if err != nil {
		respondError(c, h.log, "Failed to update profile", err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

func (h *UserHandler) GetPayouts(c *gin.Context) {
	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "50"), 10, 64)

	payouts, err := h.users.GetPayouts(c.Request.Context(), c.Param("wallet"), limit)
	if err != nil {
		respondError(c, h.log, "Failed to get payouts", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"payouts": payouts,
	})
}
