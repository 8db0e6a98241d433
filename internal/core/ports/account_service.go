package ports

import (
	"context"

	"github.com/sosalert/sos-service/internal/core/domain"
)

type AccountService interface {
	Register(ctx context.Context, username, password, contact string) (*domain.User, error)
	Authenticate(ctx context.Context, username, password string) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
}
