package usecases

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"onec-traders.backend/internal/domain/entities"
	domainerrors "onec-traders.backend/internal/domain/errors"
	domainRepos "onec-traders.backend/internal/domain/repositories"
	"onec-traders.backend/pkg/crypto"
	"onec-traders.backend/pkg/logger"
	"onec-traders.backend/pkg/utils"
)

const maxReferralCodeAttempts = 5

// UserUsecase handles registration and the referral graph
type UserUsecase struct {
	uow          domainRepos.UnitOfWork
	userRepo     domainRepos.UserRepository
	referralRepo domainRepos.ReferralRepository
	resolver     *ReferralResolver
	notifier     Notifier
	hashPassword func(string) (string, error)
	newCode      func() (string, error)
	now          func() time.Time
}

// NewUserUsecase creates a user usecase
func NewUserUsecase(
	uow domainRepos.UnitOfWork,
	userRepo domainRepos.UserRepository,
	referralRepo domainRepos.ReferralRepository,
	resolver *ReferralResolver,
	notifier Notifier,
) *UserUsecase {
	return &UserUsecase{
		uow:          uow,
		userRepo:     userRepo,
		referralRepo: referralRepo,
		resolver:     resolver,
		notifier:     notifier,
		hashPassword: crypto.HashPassword,
		newCode:      crypto.GenerateReferralCode,
		now:          time.Now,
	}
}

// RegisterUser creates an account and one referral edge per ancestor it joins under
func (uc *UserUsecase) RegisterUser(ctx context.Context, input *entities.RegisterUserInput) (*entities.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if _, err := uc.userRepo.GetByEmail(ctx, email); err == nil {
		return nil, domainerrors.Conflict("email already registered")
	} else if !errors.Is(err, domainerrors.ErrNotFound) {
		return nil, err
	}

	referredBy := strings.ToUpper(strings.TrimSpace(input.ReferralCode))
	if referredBy != "" {
		if _, err := uc.userRepo.GetByReferralCode(ctx, referredBy); err != nil {
			if errors.Is(err, domainerrors.ErrNotFound) {
				return nil, domainerrors.BadRequest("invalid referral code")
			}
			return nil, err
		}
	}

	code, err := uc.uniqueReferralCode(ctx)
	if err != nil {
		return nil, err
	}

	hash, err := uc.hashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	now := uc.now().UTC()
	user := &entities.User{
		ID:             utils.GenerateUUIDv7(),
		Username:       strings.TrimSpace(input.Username),
		Email:          email,
		PasswordHash:   hash,
		ReferralCode:   code,
		ReferredBy:     referredBy,
		Balance:        decimal.Zero,
		TotalInvested:  decimal.Zero,
		TotalEarnings:  decimal.Zero,
		TotalWithdrawn: decimal.Zero,
		TotalDeposits:  decimal.Zero,
		Role:           entities.UserRoleUser,
		Status:         entities.UserStatusActive,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	var ancestors []entities.Ancestor
	err = uc.uow.Do(ctx, func(txCtx context.Context) error {
		if err := uc.userRepo.Create(txCtx, user); err != nil {
			if errors.Is(err, domainerrors.ErrAlreadyExists) {
				return domainerrors.Conflict("username or email already registered")
			}
			return err
		}

		ancestors = uc.resolver.CollectAncestors(txCtx, user)
		for _, a := range ancestors {
			if err := uc.referralRepo.Create(txCtx, &entities.Referral{
				ID:             utils.GenerateUUIDv7(),
				ReferrerID:     a.User.ID,
				ReferredUserID: user.ID,
				Level:          a.Level,
				TotalEarnings:  decimal.Zero,
				Status:         entities.ReferralStatusActive,
				CreatedAt:      now,
				UpdatedAt:      now,
			}); err != nil {
				return fmt.Errorf("create level %d referral: %w", a.Level, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "User registered",
		zap.String("user_id", user.ID.String()),
		zap.String("referred_by", referredBy),
		zap.Int("ancestors", len(ancestors)),
	)
	if uc.notifier != nil && len(ancestors) > 0 {
		uc.notifier.Notify(ctx, &entities.Notification{
			UserID:  ancestors[0].User.ID,
			Title:   "New referral",
			Message: fmt.Sprintf("%s joined with your referral code.", user.Username),
			Type:    entities.NotificationTypeInfo,
		})
	}
	return user, nil
}

func (uc *UserUsecase) uniqueReferralCode(ctx context.Context) (string, error) {
	for i := 0; i < maxReferralCodeAttempts; i++ {
		code, err := uc.newCode()
		if err != nil {
			return "", err
		}
		_, err = uc.userRepo.GetByReferralCode(ctx, code)
		if errors.Is(err, domainerrors.ErrNotFound) {
			return code, nil
		}
		if err != nil {
			return "", err
		}
	}
	return "", fmt.Errorf("no free referral code after %d attempts", maxReferralCodeAttempts)
}

// GetProfile returns a user's account
func (uc *UserUsecase) GetProfile(ctx context.Context, userID uuid.UUID) (*entities.User, error) {
	return uc.userRepo.GetByID(ctx, userID)
}

// ListReferrals lists the user's downline edges, nearest level first
func (uc *UserUsecase) ListReferrals(ctx context.Context, userID uuid.UUID) ([]*entities.Referral, error) {
	return uc.referralRepo.ListByReferrer(ctx, userID)
}
