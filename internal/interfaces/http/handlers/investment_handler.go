package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"onec-traders.backend/internal/domain/entities"
	domainerrors "onec-traders.backend/internal/domain/errors"
	"onec-traders.backend/internal/interfaces/http/middleware"
	"onec-traders.backend/internal/interfaces/http/response"
	"onec-traders.backend/internal/usecases"
)

type investmentService interface {
	CreateInvestment(ctx context.Context, userID uuid.UUID, input *entities.CreateInvestmentInput) (*entities.Investment, error)
	GetInvestment(ctx context.Context, actorID, id uuid.UUID, isAdmin bool) (*entities.Investment, error)
	ListInvestments(ctx context.Context, userID uuid.UUID) ([]*entities.Investment, error)
	ListCommissions(ctx context.Context, actorID, id uuid.UUID, isAdmin bool) ([]*entities.ReferralCommission, error)
	CancelInvestment(ctx context.Context, actorID, id uuid.UUID, isAdmin bool) (*entities.Investment, error)
}

// InvestmentHandler handles investment endpoints
type InvestmentHandler struct {
	investmentUsecase investmentService
}

// NewInvestmentHandler creates a new investment handler
func NewInvestmentHandler(investmentUsecase *usecases.InvestmentUsecase) *InvestmentHandler {
	return &InvestmentHandler{investmentUsecase: investmentUsecase}
}

// CreateInvestment opens an investment from the user's balance
// POST /api/v1/investments
func (h *InvestmentHandler) CreateInvestment(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var input entities.CreateInvestmentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	inv, err := h.investmentUsecase.CreateInvestment(c.Request.Context(), userID, &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"message":    "Investment created successfully",
		"investment": inv,
	})
}

// ListInvestments lists the current user's investments
// GET /api/v1/investments
func (h *InvestmentHandler) ListInvestments(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	items, err := h.investmentUsecase.ListInvestments(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if items == nil {
		items = []*entities.Investment{}
	}
	response.Success(c, http.StatusOK, gin.H{"investments": items})
}

// GetInvestment returns one investment
// GET /api/v1/investments/:id
func (h *InvestmentHandler) GetInvestment(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id", "investment")
	if !ok {
		return
	}

	inv, err := h.investmentUsecase.GetInvestment(c.Request.Context(), userID, id, middleware.IsAdmin(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"investment": inv})
}

// ListCommissions lists referral commission paid on an investment
// GET /api/v1/investments/:id/commissions
func (h *InvestmentHandler) ListCommissions(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id", "investment")
	if !ok {
		return
	}

	items, err := h.investmentUsecase.ListCommissions(c.Request.Context(), userID, id, middleware.IsAdmin(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	if items == nil {
		items = []*entities.ReferralCommission{}
	}
	response.Success(c, http.StatusOK, gin.H{"commissions": items})
}

// CancelInvestment cancels an active investment
// POST /api/v1/investments/:id/cancel
func (h *InvestmentHandler) CancelInvestment(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id", "investment")
	if !ok {
		return
	}

	inv, err := h.investmentUsecase.CancelInvestment(c.Request.Context(), userID, id, middleware.IsAdmin(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"message":    "Investment cancelled",
		"investment": inv,
	})
}
