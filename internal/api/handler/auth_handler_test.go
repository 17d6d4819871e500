package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/userhub/user-service/internal/api/middleware"
	"github.com/userhub/user-service/internal/core/domain"
	"github.com/userhub/user-service/internal/core/ports"
)

type stubAuthService struct {
	loginFn func(ctx context.Context, username, password string) (*ports.LoginResult, error)
}

func (s *stubAuthService) Login(ctx context.Context, username, password string) (*ports.LoginResult, error) {
	return s.loginFn(ctx, username, password)
}

func (s *stubAuthService) Authenticate(context.Context, string, string) (*domain.Identity, error) {
	return nil, errors.New("not used")
}

func (s *stubAuthService) ParseToken(string) (*domain.Identity, error) {
	return nil, errors.New("not used")
}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func TestAuthHandler_Login_Success(t *testing.T) {
	e := newTestEcho()
	expires := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	stub := &stubAuthService{
		loginFn: func(_ context.Context, username, password string) (*ports.LoginResult, error) {
			if username != "alice" || password != "secret" {
				t.Fatalf("unexpected args: %s %s", username, password)
			}
			return &ports.LoginResult{
				Token:     "token123",
				ExpiresAt: expires,
				User:      ports.UserResult{ID: 1, Username: "alice", Roles: []string{domain.RoleAdmin}},
			}, nil
		},
	}
	h := NewAuthHandler(stub, &stubUserService{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"username":"alice","password":"secret"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			Token     string `json:"token"`
			TokenType string `json:"tokenType"`
			User      struct {
				Username string `json:"username"`
			} `json:"user"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if !resp.Success || resp.Data.Token != "token123" || resp.Data.TokenType != "Bearer" || resp.Data.User.Username != "alice" {
		t.Fatalf("unexpected payload: %s", rec.Body.String())
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		loginFn: func(context.Context, string, string) (*ports.LoginResult, error) {
			return nil, domain.ErrInvalidCredentials
		},
	}
	h := NewAuthHandler(stub, &stubUserService{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"username":"alice","password":"bad"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c := e.NewContext(req, httptest.NewRecorder())

	if err := h.Login(c); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthHandler_Login_MissingFields(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		loginFn: func(context.Context, string, string) (*ports.LoginResult, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	h := NewAuthHandler(stub, &stubUserService{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c := e.NewContext(req, httptest.NewRecorder())

	var verr *domain.ValidationError
	if err := h.Login(c); !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Fields["username"] != "Username is required" || verr.Fields["password"] != "Password is required" {
		t.Fatalf("unexpected fields: %v", verr.Fields)
	}
}

func TestAuthHandler_Login_InvalidPayload(t *testing.T) {
	e := newTestEcho()
	h := NewAuthHandler(&stubAuthService{}, &stubUserService{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader("{"))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c := e.NewContext(req, httptest.NewRecorder())

	if err := h.Login(c); err != errMalformedJSON {
		t.Fatalf("expected malformed JSON error, got %v", err)
	}
}

func TestAuthHandler_Me(t *testing.T) {
	e := newTestEcho()
	users := &stubUserService{
		getByIDFn: func(_ context.Context, id int64) (*ports.UserResult, error) {
			return &ports.UserResult{ID: id, Username: "alice"}, nil
		},
	}
	h := NewAuthHandler(&stubAuthService{}, users)

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil), rec)
	c.Set(middleware.IdentityKey, &domain.Identity{UserID: 3, Username: "alice"})

	if err := h.Me(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), `"id":3`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestAuthHandler_Me_Anonymous(t *testing.T) {
	e := newTestEcho()
	h := NewAuthHandler(&stubAuthService{}, &stubUserService{})
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil), httptest.NewRecorder())

	if err := h.Me(c); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}
