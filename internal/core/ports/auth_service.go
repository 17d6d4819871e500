package ports

import (
	"context"
	"time"

	"github.com/userhub/user-service/internal/core/domain"
)

// LoginResult is returned by a successful password login.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      UserResult
}

// AuthService issues and verifies caller credentials.
type AuthService interface {
	Login(ctx context.Context, username, password string) (*LoginResult, error)
	// Authenticate checks username/password directly (HTTP Basic).
	Authenticate(ctx context.Context, username, password string) (*domain.Identity, error)
	// ParseToken verifies a bearer token and returns the identity it encodes.
	ParseToken(token string) (*domain.Identity, error)
}
