package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/userhub/user-service/internal/api/middleware"
	"github.com/userhub/user-service/internal/core/domain"
)

// ctxIdentity returns the caller resolved by the Auth middleware, or
// domain.ErrUnauthorized when the route was registered without Auth.
func ctxIdentity(c echo.Context) (*domain.Identity, error) {
	identity := middleware.IdentityFrom(c)
	if identity == nil {
		return nil, domain.ErrUnauthorized
	}
	return identity, nil
}
