package ports

import (
	"context"

	"github.com/storefront/catalog-api/internal/core/domain"
)

// UpdateUserInput carries the optional fields of a partial user update.
// Nil means "leave unchanged".
type UpdateUserInput struct {
	Username *string
	Email    *string
}

type AuthService interface {
	Register(ctx context.Context, username, password, email string) (*domain.User, error)
	Login(ctx context.Context, username, password string) (*domain.TokenPair, *domain.User, error)
	// Refresh exchanges a valid refresh token for a fresh token pair.
	Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error)
	CurrentUser(ctx context.Context, userID string) (*domain.User, error)
	// UpdateUser and DeleteUser enforce the self-only rule: callerID must
	// equal targetID or the call fails with ErrSelfOnly before any lookup.
	UpdateUser(ctx context.Context, callerID, targetID string, input UpdateUserInput) (*domain.User, error)
	DeleteUser(ctx context.Context, callerID, targetID string) error
}
