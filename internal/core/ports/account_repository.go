package ports

import (
	"context"

	"github.com/sosalert/sos-service/internal/core/domain"
)

// AccountRepository persists users. Implementations must reject a duplicate
// username atomically with domain.ErrUsernameTaken.
type AccountRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	// FindByUsername returns domain.ErrUserNotFound when no row matches.
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
}
