package api

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/userhub/user-service/internal/api/handler"
	"github.com/userhub/user-service/internal/core/service"
	"github.com/userhub/user-service/internal/infrastructure/db/memory"
	"github.com/userhub/user-service/internal/infrastructure/security"
)

type envelope struct {
	Success   bool            `json:"success"`
	Message   string          `json:"message"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

func newTestRouter(t *testing.T) *echo.Echo {
	t.Helper()
	repo := memory.NewUserRepository()
	hasher := security.NewBcryptHasher(bcrypt.MinCost)
	log := zerolog.Nop()

	users := service.NewUserService(repo, hasher, nil, log)
	auth := service.NewAuthService(repo, hasher, "router-test-secret", time.Hour, log)

	return NewRouter(Dependencies{
		Users:       users,
		Auth:        auth,
		Checks:      map[string]handler.Checker{"store": repo},
		Logger:      log,
		DocsEnabled: true,
		Registry:    prometheus.NewRegistry(),
	})
}

func do(t *testing.T, e *echo.Echo, method, path, body string, headers map[string]string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		_ = json.Unmarshal(rec.Body.Bytes(), &env)
	}
	return rec, env
}

func basic(user, pass string) map[string]string {
	return map[string]string{
		echo.HeaderAuthorization: "Basic " + base64.StdEncoding.EncodeToString([]byte(user+":"+pass)),
	}
}

func bearer(token string) map[string]string {
	return map[string]string{echo.HeaderAuthorization: "Bearer " + token}
}

func TestRouter_UserLifecycle(t *testing.T) {
	e := newTestRouter(t)

	// Public registration.
	rec, env := do(t, e, http.MethodPost, "/api/v1/users",
		`{"username":"alice","email":"alice@example.com","password":"secret1"}`, nil)
	if rec.Code != http.StatusCreated || !env.Success || env.Message != "User created successfully" {
		t.Fatalf("create: %d %s", rec.Code, rec.Body.String())
	}
	if env.Timestamp.IsZero() {
		t.Fatalf("envelope timestamp missing")
	}
	if strings.Contains(rec.Body.String(), "password") {
		t.Fatalf("password leaked: %s", rec.Body.String())
	}
	var created struct {
		ID    int64    `json:"id"`
		Roles []string `json:"roles"`
	}
	_ = json.Unmarshal(env.Data, &created)
	if created.ID != 1 || len(created.Roles) != 1 || created.Roles[0] != "ROLE_USER" {
		t.Fatalf("unexpected created user: %s", env.Data)
	}

	// Duplicate username.
	rec, env = do(t, e, http.MethodPost, "/api/v1/users",
		`{"username":"alice","email":"other@example.com","password":"secret1"}`, nil)
	if rec.Code != http.StatusConflict || env.Success || env.Message != "Username is already taken" {
		t.Fatalf("duplicate: %d %s", rec.Code, rec.Body.String())
	}

	// Read own record with Basic credentials.
	rec, env = do(t, e, http.MethodGet, "/api/v1/users/1", "", basic("alice", "secret1"))
	if rec.Code != http.StatusOK || env.Message != "User retrieved successfully" {
		t.Fatalf("get: %d %s", rec.Code, rec.Body.String())
	}

	rec, env = do(t, e, http.MethodGet, "/api/v1/users/username/alice", "", basic("alice", "secret1"))
	if rec.Code != http.StatusOK {
		t.Fatalf("get by username: %d %s", rec.Code, rec.Body.String())
	}

	// Unknown id.
	rec, env = do(t, e, http.MethodGet, "/api/v1/users/999", "", basic("alice", "secret1"))
	if rec.Code != http.StatusNotFound || env.Message != "User not found with id: 999" {
		t.Fatalf("not found: %d %s", rec.Code, rec.Body.String())
	}

	// Non-numeric id.
	rec, env = do(t, e, http.MethodGet, "/api/v1/users/abc", "", basic("alice", "secret1"))
	if rec.Code != http.StatusBadRequest || env.Message != "Invalid user id: abc" {
		t.Fatalf("bad id: %d %s", rec.Code, rec.Body.String())
	}

	// Update keeps the password when omitted.
	rec, _ = do(t, e, http.MethodPut, "/api/v1/users/1",
		`{"username":"alice","email":"alice@new.example.com"}`, basic("alice", "secret1"))
	if rec.Code != http.StatusOK {
		t.Fatalf("update: %d %s", rec.Code, rec.Body.String())
	}
	rec, _ = do(t, e, http.MethodGet, "/api/v1/auth/me", "", basic("alice", "secret1"))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "alice@new.example.com") {
		t.Fatalf("me after update: %d %s", rec.Code, rec.Body.String())
	}
}

func TestRouter_AccessPolicy(t *testing.T) {
	e := newTestRouter(t)

	do(t, e, http.MethodPost, "/api/v1/users", `{"username":"admin","email":"admin@example.com","password":"adminpass","roles":["ROLE_ADMIN","ROLE_USER"]}`, nil)
	do(t, e, http.MethodPost, "/api/v1/users", `{"username":"bob","email":"bob@example.com","password":"bobpass"}`, nil)

	// Anonymous.
	rec, env := do(t, e, http.MethodGet, "/api/v1/users", "", nil)
	if rec.Code != http.StatusUnauthorized || env.Success {
		t.Fatalf("anonymous list: %d %s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get(echo.HeaderWWWAuthenticate) == "" {
		t.Fatalf("expected WWW-Authenticate challenge")
	}

	// Wrong password.
	rec, env = do(t, e, http.MethodGet, "/api/v1/users/1", "", basic("bob", "nope"))
	if rec.Code != http.StatusUnauthorized || env.Message != "Invalid username or password" {
		t.Fatalf("bad password: %d %s", rec.Code, rec.Body.String())
	}

	// Authenticated but not admin.
	rec, env = do(t, e, http.MethodGet, "/api/v1/users", "", basic("bob", "bobpass"))
	if rec.Code != http.StatusForbidden || env.Message != "You don't have permission to access this resource" {
		t.Fatalf("non-admin list: %d %s", rec.Code, rec.Body.String())
	}
	rec, _ = do(t, e, http.MethodDelete, "/api/v1/users/1", "", basic("bob", "bobpass"))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("non-admin delete: %d", rec.Code)
	}

	// Admin via bearer token.
	rec, env = do(t, e, http.MethodPost, "/api/v1/auth/login", `{"username":"admin","password":"adminpass"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("login: %d %s", rec.Code, rec.Body.String())
	}
	var login struct {
		Token     string `json:"token"`
		TokenType string `json:"tokenType"`
	}
	_ = json.Unmarshal(env.Data, &login)
	if login.Token == "" || login.TokenType != "Bearer" {
		t.Fatalf("unexpected login data: %s", env.Data)
	}

	rec, env = do(t, e, http.MethodGet, "/api/v1/users?size=1&sortBy=username&sortDir=desc", "", bearer(login.Token))
	if rec.Code != http.StatusOK || env.Message != "Users retrieved successfully" {
		t.Fatalf("admin list: %d %s", rec.Code, rec.Body.String())
	}
	var page struct {
		Content       []struct{ Username string } `json:"content"`
		TotalElements int64                       `json:"totalElements"`
		TotalPages    int                         `json:"totalPages"`
	}
	_ = json.Unmarshal(env.Data, &page)
	if page.TotalElements != 2 || page.TotalPages != 2 || len(page.Content) != 1 || page.Content[0].Username != "bob" {
		t.Fatalf("unexpected page: %s", env.Data)
	}

	rec, env = do(t, e, http.MethodGet, "/api/v1/users?sortBy=password", "", bearer(login.Token))
	if rec.Code != http.StatusBadRequest || env.Message != "Validation failed" {
		t.Fatalf("bad sort: %d %s", rec.Code, rec.Body.String())
	}

	rec, env = do(t, e, http.MethodDelete, "/api/v1/users/2", "", bearer(login.Token))
	if rec.Code != http.StatusOK || env.Message != "User deleted successfully" || string(env.Data) != "null" {
		t.Fatalf("admin delete: %d %s", rec.Code, rec.Body.String())
	}
	rec, _ = do(t, e, http.MethodDelete, "/api/v1/users/2", "", bearer(login.Token))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("second delete: %d", rec.Code)
	}

	rec, _ = do(t, e, http.MethodGet, "/api/v1/users/1", "", bearer("garbage"))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("garbage token: %d", rec.Code)
	}
}

func TestRouter_ValidationAndMalformedBodies(t *testing.T) {
	e := newTestRouter(t)

	rec, env := do(t, e, http.MethodPost, "/api/v1/users", `{"username":"","email":"bad","password":"1"}`, nil)
	if rec.Code != http.StatusBadRequest || env.Message != "Validation failed" {
		t.Fatalf("validation: %d %s", rec.Code, rec.Body.String())
	}
	var fields map[string]string
	_ = json.Unmarshal(env.Data, &fields)
	if fields["username"] != "Username is required" || fields["email"] != "Email should be valid" || fields["password"] == "" {
		t.Fatalf("unexpected fields: %v", fields)
	}

	rec, env = do(t, e, http.MethodPost, "/api/v1/users", `{"username":`, nil)
	if rec.Code != http.StatusBadRequest || env.Message != "Malformed JSON request" {
		t.Fatalf("malformed: %d %s", rec.Code, rec.Body.String())
	}

	rec, _ = do(t, e, http.MethodPost, "/api/v1/users/", `{"username":"carol","email":"carol@example.com","password":"secret1"}`, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("trailing slash: %d %s", rec.Code, rec.Body.String())
	}
}

func TestRouter_OperationalEndpoints(t *testing.T) {
	e := newTestRouter(t)

	for path, want := range map[string]int{
		"/health":                http.StatusOK,
		"/health/ready":          http.StatusOK,
		"/metrics":               http.StatusOK,
		"/swagger/index.html":    http.StatusOK,
		"/swagger/doc.json":      http.StatusOK,
		"/api/v1/does-not-exist": http.StatusNotFound,
	} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != want {
			t.Errorf("%s: expected %d, got %d", path, want, rec.Code)
		}
	}

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Header().Get(echo.HeaderXRequestID) == "" {
		t.Errorf("expected request id header")
	}
}
