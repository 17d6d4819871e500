package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/userhub/user-service/internal/api/response"
	"github.com/userhub/user-service/internal/core/ports"
)

const tokenTypeBearer = "Bearer"

type AuthHandler struct {
	auth  ports.AuthService
	users ports.UserService
}

func NewAuthHandler(auth ports.AuthService, users ports.UserService) *AuthHandler {
	return &AuthHandler{auth: auth, users: users}
}

// Login authenticates a user and returns a JWT token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  response.Envelope[loginResponse]
// @Failure      400   {object}  response.Envelope[map[string]string]
// @Failure      401   {object}  response.Envelope[any]
// @Router       /api/v1/auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	res, err := h.auth.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, response.Success("Login successful", loginResponse{
		Token:     res.Token,
		TokenType: tokenTypeBearer,
		ExpiresAt: res.ExpiresAt,
		User:      toUserResponse(&res.User),
	}))
}

// Me returns the authenticated caller.
//
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Security     BasicAuth
// @Success      200  {object}  response.Envelope[userResponse]
// @Failure      401  {object}  response.Envelope[any]
// @Router       /api/v1/auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	result, err := h.users.GetUserByID(c.Request().Context(), identity.UserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, response.Success("User retrieved successfully", toUserResponse(result)))
}
