package middleware

import (
	"fmt"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/userhub/user-service/internal/core/domain"
	"github.com/userhub/user-service/internal/core/ports"
)

// IdentityKey is the echo context key holding the caller's *domain.Identity.
const IdentityKey = "identity"

const wwwAuthenticate = `Bearer realm="user-service", Basic realm="user-service"`

// IdentityFrom returns the identity set by Auth, or nil.
func IdentityFrom(c echo.Context) *domain.Identity {
	id, _ := c.Get(IdentityKey).(*domain.Identity)
	return id
}

// Auth resolves the caller from a Bearer token or HTTP Basic credentials and
// stores the identity in the context. Requests without usable credentials fail
// with domain.ErrUnauthorized.
func Auth(auth ports.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity, err := authenticate(c, auth)
			if err != nil {
				c.Response().Header().Set(echo.HeaderWWWAuthenticate, wwwAuthenticate)
				return err
			}

			c.Set(IdentityKey, identity)
			return next(c)
		}
	}
}

func authenticate(c echo.Context, auth ports.AuthService) (*domain.Identity, error) {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if header == "" {
		return nil, fmt.Errorf("missing authorization header: %w", domain.ErrUnauthorized)
	}

	scheme, credentials, ok := strings.Cut(header, " ")
	if !ok || strings.TrimSpace(credentials) == "" {
		return nil, fmt.Errorf("malformed authorization header: %w", domain.ErrUnauthorized)
	}

	switch {
	case strings.EqualFold(scheme, "bearer"):
		return auth.ParseToken(strings.TrimSpace(credentials))
	case strings.EqualFold(scheme, "basic"):
		username, password, ok := c.Request().BasicAuth()
		if !ok {
			return nil, fmt.Errorf("malformed basic credentials: %w", domain.ErrUnauthorized)
		}
		return auth.Authenticate(c.Request().Context(), username, password)
	default:
		return nil, fmt.Errorf("unsupported authorization scheme %q: %w", scheme, domain.ErrUnauthorized)
	}
}
