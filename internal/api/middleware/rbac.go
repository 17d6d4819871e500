package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/userhub/user-service/internal/core/domain"
)

// RequireRole lets the request through when the caller holds any of roles.
// It must run after Auth.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity := IdentityFrom(c)
			if identity == nil {
				return domain.ErrUnauthorized
			}
			for _, r := range roles {
				if identity.HasRole(r) {
					return next(c)
				}
			}
			return domain.ErrForbidden
		}
	}
}
