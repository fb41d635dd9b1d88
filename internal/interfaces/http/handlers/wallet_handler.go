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
	"onec-traders.backend/pkg/utils"
)

type walletService interface {
	RequestWithdrawal(ctx context.Context, userID uuid.UUID, input *entities.WithdrawalRequestInput) (*entities.Transaction, error)
	ReviewWithdrawal(ctx context.Context, id uuid.UUID, input *entities.WithdrawalReviewInput) (*entities.Transaction, error)
	RecordDeposit(ctx context.Context, input *entities.DepositInput) (*entities.Transaction, error)
	ListTransactions(ctx context.Context, userID uuid.UUID, txType *entities.TransactionType, pagination utils.PaginationParams) ([]*entities.Transaction, *utils.PaginationMeta, error)
}

var transactionTypes = map[entities.TransactionType]bool{
	entities.TransactionTypeDeposit:    true,
	entities.TransactionTypeWithdrawal: true,
	entities.TransactionTypeROI:        true,
	entities.TransactionTypeReferral:   true,
	entities.TransactionTypeTask:       true,
}

// WalletHandler handles balance movement endpoints
type WalletHandler struct {
	walletUsecase walletService
}

// NewWalletHandler creates a new wallet handler
func NewWalletHandler(walletUsecase *usecases.WalletUsecase) *WalletHandler {
	return &WalletHandler{walletUsecase: walletUsecase}
}

// ListTransactions lists the current user's ledger
// GET /api/v1/transactions?type=roi&page=1&limit=20
func (h *WalletHandler) ListTransactions(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var txType *entities.TransactionType
	if raw := c.Query("type"); raw != "" {
		t := entities.TransactionType(raw)
		if !transactionTypes[t] {
			response.Error(c, domainerrors.BadRequest("Invalid transaction type"))
			return
		}
		txType = &t
	}

	items, meta, err := h.walletUsecase.ListTransactions(c.Request.Context(), userID, txType, paginationFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	if items == nil {
		items = []*entities.Transaction{}
	}
	response.Success(c, http.StatusOK, gin.H{
		"transactions": items,
		"meta":         meta,
	})
}

// RequestWithdrawal debits the balance into a pending withdrawal
// POST /api/v1/withdrawals
func (h *WalletHandler) RequestWithdrawal(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var input entities.WithdrawalRequestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	tx, err := h.walletUsecase.RequestWithdrawal(c.Request.Context(), userID, &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{
		"message":     "Withdrawal requested",
		"transaction": tx,
	})
}

// ReviewWithdrawal approves or rejects a pending withdrawal
// POST /api/v1/admin/withdrawals/:id/review
func (h *WalletHandler) ReviewWithdrawal(c *gin.Context) {
	id, ok := idParam(c, "id", "transaction")
	if !ok {
		return
	}

	var input entities.WithdrawalReviewInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	tx, err := h.walletUsecase.ReviewWithdrawal(c.Request.Context(), id, &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"transaction": tx})
}

// RecordDeposit credits a confirmed deposit
// POST /api/v1/admin/deposits
func (h *WalletHandler) RecordDeposit(c *gin.Context) {
	var input entities.DepositInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	tx, err := h.walletUsecase.RecordDeposit(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"transaction": tx})
}
