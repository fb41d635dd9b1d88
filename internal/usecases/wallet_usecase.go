package usecases

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"
	"onec-traders.backend/internal/domain/entities"
	domainerrors "onec-traders.backend/internal/domain/errors"
	domainRepos "onec-traders.backend/internal/domain/repositories"
	"onec-traders.backend/pkg/logger"
	"onec-traders.backend/pkg/utils"
)

// WalletUsecase moves money in and out of user balances
type WalletUsecase struct {
	uow       domainRepos.UnitOfWork
	userRepo  domainRepos.UserRepository
	txRepo    domainRepos.TransactionRepository
	notifier  Notifier
	minAmount decimal.Decimal
	now       func() time.Time
}

// NewWalletUsecase creates a wallet usecase
func NewWalletUsecase(
	uow domainRepos.UnitOfWork,
	userRepo domainRepos.UserRepository,
	txRepo domainRepos.TransactionRepository,
	notifier Notifier,
	minWithdrawal decimal.Decimal,
) *WalletUsecase {
	return &WalletUsecase{
		uow:       uow,
		userRepo:  userRepo,
		txRepo:    txRepo,
		notifier:  notifier,
		minAmount: minWithdrawal,
		now:       time.Now,
	}
}

// normalizeAddress returns the EIP-55 checksummed form of a hex address
func normalizeAddress(address string) (string, error) {
	address = strings.TrimSpace(address)
	if !common.IsHexAddress(address) {
		return "", domainerrors.BadRequest("invalid withdrawal address")
	}
	addr := common.HexToAddress(address)
	if addr == (common.Address{}) {
		return "", domainerrors.BadRequest("invalid withdrawal address")
	}
	return addr.Hex(), nil
}

// RequestWithdrawal debits the balance and records a pending withdrawal
func (uc *WalletUsecase) RequestWithdrawal(ctx context.Context, userID uuid.UUID, input *entities.WithdrawalRequestInput) (*entities.Transaction, error) {
	amount := utils.RoundCents(input.Amount)
	if !amount.IsPositive() {
		return nil, domainerrors.BadRequest("amount must be positive")
	}
	if amount.LessThan(uc.minAmount) {
		return nil, domainerrors.BadRequest(fmt.Sprintf("minimum withdrawal is $%s", uc.minAmount.StringFixed(2)))
	}
	address, err := normalizeAddress(input.Address)
	if err != nil {
		return nil, err
	}

	now := uc.now().UTC()
	tx := &entities.Transaction{
		ID:                utils.GenerateUUIDv7(),
		UserID:            userID,
		Type:              entities.TransactionTypeWithdrawal,
		Amount:            amount,
		Status:            entities.TransactionStatusPending,
		Description:       "Withdrawal to " + address,
		WithdrawalAddress: null.StringFrom(address),
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	err = uc.uow.Do(ctx, func(txCtx context.Context) error {
		if err := uc.userRepo.IncrementBalances(txCtx, userID, entities.UserBalanceDelta{Balance: amount.Neg()}); err != nil {
			return err
		}
		return uc.txRepo.Create(txCtx, tx)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "Withdrawal requested",
		zap.String("transaction_id", tx.ID.String()),
		zap.String("user_id", userID.String()),
		zap.String("amount", amount.StringFixed(2)),
	)
	return tx, nil
}

// ReviewWithdrawal settles a pending withdrawal. Approval completes it and
// counts it as withdrawn; rejection refunds the balance.
func (uc *WalletUsecase) ReviewWithdrawal(ctx context.Context, id uuid.UUID, input *entities.WithdrawalReviewInput) (*entities.Transaction, error) {
	var tx *entities.Transaction
	err := uc.uow.Do(ctx, func(txCtx context.Context) error {
		lockedCtx := uc.uow.WithLock(txCtx)
		current, err := uc.txRepo.GetByID(lockedCtx, id)
		if err != nil {
			return err
		}
		if current.Type != entities.TransactionTypeWithdrawal {
			return domainerrors.BadRequest("transaction is not a withdrawal")
		}

		update := entities.TransactionStatusUpdate{Status: entities.TransactionStatusCancelled}
		delta := entities.UserBalanceDelta{Balance: current.Amount}
		if input.Approve {
			update = entities.TransactionStatusUpdate{
				Status:      entities.TransactionStatusCompleted,
				CompletedAt: null.TimeFrom(uc.now().UTC()),
			}
			if hash := strings.TrimSpace(input.TxHash); hash != "" {
				update.TxHash = null.StringFrom(hash)
			}
			delta = entities.UserBalanceDelta{TotalWithdrawn: current.Amount}
		}
		if !current.Status.CanTransitionTo(update.Status) {
			return domainerrors.ErrInvalidTransition
		}

		if err := uc.txRepo.UpdateStatus(txCtx, id, entities.TransactionStatusPending, update); err != nil {
			return err
		}
		if err := uc.userRepo.IncrementBalances(txCtx, current.UserID, delta); err != nil {
			return err
		}

		current.Status = update.Status
		current.TxHash = update.TxHash
		current.CompletedAt = update.CompletedAt
		tx = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "Withdrawal reviewed",
		zap.String("transaction_id", id.String()),
		zap.String("status", string(tx.Status)),
	)
	if uc.notifier != nil {
		n := &entities.Notification{
			UserID:      tx.UserID,
			Title:       "Withdrawal completed",
			Message:     fmt.Sprintf("Your withdrawal of $%s was sent.", tx.Amount.StringFixed(2)),
			Type:        entities.NotificationTypeSuccess,
			RelatedID:   null.StringFrom(tx.ID.String()),
			RelatedType: null.StringFrom("transaction"),
		}
		if tx.Status != entities.TransactionStatusCompleted {
			n.Title = "Withdrawal rejected"
			n.Message = fmt.Sprintf("Your withdrawal of $%s was rejected and refunded.", tx.Amount.StringFixed(2))
			n.Type = entities.NotificationTypeError
		}
		uc.notifier.Notify(ctx, n)
	}
	return tx, nil
}

// RecordDeposit credits a confirmed deposit to a user
func (uc *WalletUsecase) RecordDeposit(ctx context.Context, input *entities.DepositInput) (*entities.Transaction, error) {
	amount := utils.RoundCents(input.Amount)
	if !amount.IsPositive() {
		return nil, domainerrors.BadRequest("amount must be positive")
	}

	now := uc.now().UTC()
	description := strings.TrimSpace(input.Description)
	if description == "" {
		description = "Deposit"
	}
	tx := &entities.Transaction{
		ID:          utils.GenerateUUIDv7(),
		UserID:      input.UserID,
		Type:        entities.TransactionTypeDeposit,
		Amount:      amount,
		Status:      entities.TransactionStatusCompleted,
		Description: description,
		CompletedAt: null.TimeFrom(now),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if hash := strings.TrimSpace(input.TxHash); hash != "" {
		tx.TxHash = null.StringFrom(hash)
	}

	err := uc.uow.Do(ctx, func(txCtx context.Context) error {
		if err := uc.userRepo.IncrementBalances(txCtx, input.UserID, entities.UserBalanceDelta{
			Balance:       amount,
			TotalDeposits: amount,
		}); err != nil {
			return err
		}
		return uc.txRepo.Create(txCtx, tx)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "Deposit recorded",
		zap.String("transaction_id", tx.ID.String()),
		zap.String("user_id", input.UserID.String()),
		zap.String("amount", amount.StringFixed(2)),
	)
	if uc.notifier != nil {
		uc.notifier.Notify(ctx, &entities.Notification{
			UserID:      input.UserID,
			Title:       "Deposit received",
			Message:     fmt.Sprintf("$%s was added to your balance.", amount.StringFixed(2)),
			Type:        entities.NotificationTypeSuccess,
			RelatedID:   null.StringFrom(tx.ID.String()),
			RelatedType: null.StringFrom("transaction"),
		})
	}
	return tx, nil
}

// ListTransactions lists a user's ledger, optionally filtered by type
func (uc *WalletUsecase) ListTransactions(ctx context.Context, userID uuid.UUID, txType *entities.TransactionType, pagination utils.PaginationParams) ([]*entities.Transaction, *utils.PaginationMeta, error) {
	txs, total, err := uc.txRepo.ListByUser(ctx, userID, txType, pagination)
	if err != nil {
		return nil, nil, err
	}
	meta := utils.CalculateMeta(total, pagination.Page, pagination.Limit)
	return txs, &meta, nil
}
