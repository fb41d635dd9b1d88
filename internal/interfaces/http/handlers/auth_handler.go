package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"onec-traders.backend/internal/domain/entities"
	domainerrors "onec-traders.backend/internal/domain/errors"
	"onec-traders.backend/internal/interfaces/http/response"
	"onec-traders.backend/internal/usecases"
)

type userService interface {
	RegisterUser(ctx context.Context, input *entities.RegisterUserInput) (*entities.User, error)
	GetProfile(ctx context.Context, userID uuid.UUID) (*entities.User, error)
	ListReferrals(ctx context.Context, userID uuid.UUID) ([]*entities.Referral, error)
}

// AuthHandler handles registration and account endpoints
type AuthHandler struct {
	userUsecase userService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(userUsecase *usecases.UserUsecase) *AuthHandler {
	return &AuthHandler{userUsecase: userUsecase}
}

// Register handles user registration
// POST /api/v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var input entities.RegisterUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	user, err := h.userUsecase.RegisterUser(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"user":    user,
	})
}

// GetMe returns the current user's profile
// GET /api/v1/me
func (h *AuthHandler) GetMe(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	user, err := h.userUsecase.GetProfile(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"user": user})
}

// ListReferrals lists the current user's downline
// GET /api/v1/referrals
func (h *AuthHandler) ListReferrals(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	referrals, err := h.userUsecase.ListReferrals(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if referrals == nil {
		referrals = []*entities.Referral{}
	}
	response.Success(c, http.StatusOK, gin.H{"referrals": referrals})
}
