package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/userhub/user-service/internal/api/response"
	"github.com/userhub/user-service/internal/core/domain"
	"github.com/userhub/user-service/internal/core/ports"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100

	// HeaderIdempotencyKey identifies a create request for safe retries.
	HeaderIdempotencyKey = "Idempotency-Key"
	// HeaderIdempotentReplayed marks a response served from a previous create.
	HeaderIdempotentReplayed = "Idempotent-Replayed"
)

// errMalformedJSON is returned when a request body cannot be decoded.
var errMalformedJSON = echo.NewHTTPError(http.StatusBadRequest, "Malformed JSON request")

type UserHandler struct {
	users ports.UserService
}

func NewUserHandler(users ports.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// Create registers a new user.
//
// @Summary      Create a user
// @Description  Public registration. Roles default to ROLE_USER. A repeated Idempotency-Key returns the user created by the first request.
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header    string             false  "Client-chosen key for safe retries"
// @Param        body             body      createUserRequest  true   "User to create"
// @Success      201  {object}  response.Envelope[userResponse]
// @Failure      400  {object}  response.Envelope[map[string]string]
// @Failure      409  {object}  response.Envelope[any]
// @Failure      429  {object}  response.Envelope[any]
// @Router       /api/v1/users [post]
func (h *UserHandler) Create(c echo.Context) error {
	var req createUserRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	input := toUserInput(req.Username, req.Email, req.Password, req.Roles)
	input.IdempotencyKey = c.Request().Header.Get(HeaderIdempotencyKey)

	result, err := h.users.CreateUser(c.Request().Context(), input)
	if err != nil {
		return err
	}

	if result.Replayed {
		c.Response().Header().Set(HeaderIdempotentReplayed, "true")
	}
	return c.JSON(http.StatusCreated, response.Success("User created successfully", toUserResponse(result)))
}

// GetByID returns a single user.
//
// @Summary      Get a user by id
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Security     BasicAuth
// @Param        id   path      int  true  "User ID"
// @Success      200  {object}  response.Envelope[userResponse]
// @Failure      400  {object}  response.Envelope[any]
// @Failure      401  {object}  response.Envelope[any]
// @Failure      404  {object}  response.Envelope[any]
// @Router       /api/v1/users/{id} [get]
func (h *UserHandler) GetByID(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	result, err := h.users.GetUserByID(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, response.Success("User retrieved successfully", toUserResponse(result)))
}

// GetByUsername returns a single user looked up by username.
//
// @Summary      Get a user by username
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Security     BasicAuth
// @Param        username  path      string  true  "Username"
// @Success      200       {object}  response.Envelope[userResponse]
// @Failure      401       {object}  response.Envelope[any]
// @Failure      404       {object}  response.Envelope[any]
// @Router       /api/v1/users/username/{username} [get]
func (h *UserHandler) GetByUsername(c echo.Context) error {
	result, err := h.users.GetUserByUsername(c.Request().Context(), c.Param("username"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, response.Success("User retrieved successfully", toUserResponse(result)))
}

// List returns one page of users.
//
// @Summary      List users
// @Description  Admin only. Sizes above 100 are clamped to 100.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Security     BasicAuth
// @Param        page     query     int     false  "Zero-based page index"  default(0)
// @Param        size     query     int     false  "Page size"              default(10)
// @Param        sortBy   query     string  false  "Sort field"             Enums(id, username, email, createdAt, updatedAt)  default(id)
// @Param        sortDir  query     string  false  "Sort direction"         Enums(asc, desc)  default(asc)
// @Success      200      {object}  response.Envelope[userPageResponse]
// @Failure      400      {object}  response.Envelope[map[string]string]
// @Failure      401      {object}  response.Envelope[any]
// @Failure      403      {object}  response.Envelope[any]
// @Router       /api/v1/users [get]
func (h *UserHandler) List(c echo.Context) error {
	input := ports.ListUsersInput{
		Page:    0,
		Size:    defaultPageSize,
		SortBy:  "id",
		SortDir: "asc",
	}

	errs := echo.QueryParamsBinder(c).
		Int("page", &input.Page).
		Int("size", &input.Size).
		String("sortBy", &input.SortBy).
		String("sortDir", &input.SortDir).
		BindErrors()
	if len(errs) > 0 {
		verr := &domain.ValidationError{}
		for _, err := range errs {
			var be *echo.BindingError
			if errors.As(err, &be) {
				verr.Add(be.Field, fmt.Sprintf("%s must be an integer", be.Field))
			}
		}
		if err := verr.OrNil(); err != nil {
			return err
		}
	}

	if input.Size > maxPageSize {
		input.Size = maxPageSize
	}

	page, err := h.users.GetAllUsers(c.Request().Context(), input)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, response.Success("Users retrieved successfully", toUserPageResponse(page)))
}

// Update modifies a user. Empty password and roles keep their current values.
//
// @Summary      Update a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Security     BasicAuth
// @Param        id    path      int                true  "User ID"
// @Param        body  body      updateUserRequest  true  "New user data"
// @Success      200   {object}  response.Envelope[userResponse]
// @Failure      400   {object}  response.Envelope[map[string]string]
// @Failure      401   {object}  response.Envelope[any]
// @Failure      404   {object}  response.Envelope[any]
// @Failure      409   {object}  response.Envelope[any]
// @Router       /api/v1/users/{id} [put]
func (h *UserHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var req updateUserRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	result, err := h.users.UpdateUser(c.Request().Context(), id, toUserInput(req.Username, req.Email, req.Password, req.Roles))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, response.Success("User updated successfully", toUserResponse(result)))
}

// Delete permanently removes a user.
//
// @Summary      Delete a user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Security     BasicAuth
// @Param        id   path      int  true  "User ID"
// @Success      200  {object}  response.Envelope[any]
// @Failure      401  {object}  response.Envelope[any]
// @Failure      403  {object}  response.Envelope[any]
// @Failure      404  {object}  response.Envelope[any]
// @Router       /api/v1/users/{id} [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	if err := h.users.DeleteUser(c.Request().Context(), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, response.Success[any]("User deleted successfully", nil))
}

// bindJSON decodes the request body. Decode failures become a 400 with a fixed
// message; an unsupported content type keeps echo's 415.
func bindJSON(c echo.Context, dst any) error {
	if err := (&echo.DefaultBinder{}).BindBody(c, dst); err != nil {
		if errors.Is(err, echo.ErrUnsupportedMediaType) {
			return err
		}
		return errMalformedJSON
	}
	return nil
}

func pathID(c echo.Context) (int64, error) {
	raw := c.Param("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid user id: %s", raw))
	}
	return id, nil
}
