package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/userhub/user-service/internal/api/response"
	"github.com/userhub/user-service/internal/core/domain"
)

const (
	msgValidationFailed = "Validation failed"
	msgForbidden        = "You don't have permission to access this resource"
	msgBadCredentials   = "Invalid username or password"
	msgUnauthorized     = "Full authentication is required to access this resource"
)

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that maps domain error
// kinds to status codes and renders every failure as a response.Envelope.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg, data := resolveError(err, log, c)

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, response.Failure(msg, data))
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string, any) {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return http.StatusBadRequest, msgValidationFailed, verr.Fields
	}

	var nf *domain.NotFoundError
	if errors.As(err, &nf) {
		return http.StatusNotFound, nf.Error(), nil
	}
	var ce *domain.ConflictError
	if errors.As(err, &ce) {
		return http.StatusConflict, ce.Error(), nil
	}

	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "Resource not found", nil
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, "Resource already exists", nil
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, msgForbidden, nil
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, msgBadCredentials, nil
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, msgUnauthorized, nil
	}

	// Echo's own errors: bind failures, unknown routes, rate limiting.
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if he.Code >= http.StatusInternalServerError {
			log.Error().Err(err).Str("method", c.Request().Method).Str("path", c.Path()).Msg("http error")
		}
		return he.Code, fmt.Sprintf("%v", he.Message), nil
	}

	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "An unexpected error occurred: " + err.Error(), nil
}
