package usecases

import (
	"context"
	"errors"
	"iter"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"onec-traders.backend/internal/domain/entities"
	domainerrors "onec-traders.backend/internal/domain/errors"
	domainRepos "onec-traders.backend/internal/domain/repositories"
	"onec-traders.backend/pkg/logger"
)

// ReferralResolver walks the referred-by chain upward
type ReferralResolver struct {
	userRepo domainRepos.UserRepository
	maxDepth int
}

// NewReferralResolver creates a resolver bounded at MaxReferralDepth
func NewReferralResolver(userRepo domainRepos.UserRepository) *ReferralResolver {
	return &ReferralResolver{userRepo: userRepo, maxDepth: entities.MaxReferralDepth}
}

// ResolveAncestors loads userID and yields its ancestors, level 1 first.
// An unknown user yields nothing.
func (r *ReferralResolver) ResolveAncestors(ctx context.Context, userID uuid.UUID) iter.Seq[entities.Ancestor] {
	return func(yield func(entities.Ancestor) bool) {
		user, err := r.userRepo.GetByID(ctx, userID)
		if err != nil {
			r.logUnresolvable(ctx, userID, 0, err)
			return
		}
		for a := range r.Ancestors(ctx, user) {
			if !yield(a) {
				return
			}
		}
	}
}

// Ancestors yields user's referral chain, level 1 first, at most maxDepth long.
// The walk stops quietly at a code that does not resolve or at a user already
// visited. Each range re-walks the chain from the store.
func (r *ReferralResolver) Ancestors(ctx context.Context, user *entities.User) iter.Seq[entities.Ancestor] {
	return func(yield func(entities.Ancestor) bool) {
		seen := map[uuid.UUID]struct{}{user.ID: {}}
		current := user

		for level := 1; level <= r.maxDepth; level++ {
			if current.ReferredBy == "" || ctx.Err() != nil {
				return
			}

			parent, err := r.userRepo.GetByReferralCode(ctx, current.ReferredBy)
			if err != nil {
				r.logUnresolvable(ctx, current.ID, level, err)
				return
			}
			if _, dup := seen[parent.ID]; dup {
				logger.Warn(ctx, "Referral cycle detected",
					zap.String("user_id", user.ID.String()),
					zap.String("ancestor_id", parent.ID.String()),
					zap.Int("level", level),
				)
				return
			}
			seen[parent.ID] = struct{}{}

			if !yield(entities.Ancestor{Level: level, User: parent}) {
				return
			}
			current = parent
		}
	}
}

// CollectAncestors materialises the chain
func (r *ReferralResolver) CollectAncestors(ctx context.Context, user *entities.User) []entities.Ancestor {
	var chain []entities.Ancestor
	for a := range r.Ancestors(ctx, user) {
		chain = append(chain, a)
	}
	return chain
}

func (r *ReferralResolver) logUnresolvable(ctx context.Context, userID uuid.UUID, level int, err error) {
	fields := []zap.Field{
		zap.String("user_id", userID.String()),
		zap.Int("level", level),
		zap.Error(errors.Join(domainerrors.ErrAncestorUnresolvable, err)),
	}
	if errors.Is(err, domainerrors.ErrNotFound) {
		logger.Debug(ctx, "Referral chain truncated", fields...)
		return
	}
	logger.Warn(ctx, "Referral chain truncated by store error", fields...)
}
