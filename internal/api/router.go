package api

import (
	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/userhub/user-service/docs" // registers the swagger spec

	"github.com/userhub/user-service/internal/api/handler"
	"github.com/userhub/user-service/internal/api/middleware"
	"github.com/userhub/user-service/internal/core/domain"
	"github.com/userhub/user-service/internal/core/ports"
)

const metricsNamespace = "usersvc"

// Dependencies is everything NewRouter wires into the HTTP layer.
type Dependencies struct {
	Users  ports.UserService
	Auth   ports.AuthService
	Checks map[string]handler.Checker
	Logger zerolog.Logger

	CORSOrigins    []string
	RateLimitRPS   float64
	RateLimitBurst int
	DocsEnabled    bool

	// Registry receives the HTTP metrics and backs /metrics. Nil means the
	// Prometheus default registry.
	Registry *prometheus.Registry
}

// NewRouter builds the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if deps.Registry != nil {
		registerer, gatherer = deps.Registry, deps.Registry
	}

	// --- Global middleware ---
	e.Pre(echomiddleware.RemoveTrailingSlash())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.RequestLogger(deps.Logger))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: deps.CORSOrigins,
		AllowHeaders: []string{
			echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept,
			echo.HeaderAuthorization, handler.HeaderIdempotencyKey,
		},
		ExposeHeaders: []string{echo.HeaderXRequestID, handler.HeaderIdempotentReplayed},
	}))
	e.Use(echomiddleware.BodyLimit("1M"))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  metricsNamespace,
		Registerer: registerer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))

	// --- Handlers ---
	userHandler := handler.NewUserHandler(deps.Users)
	authHandler := handler.NewAuthHandler(deps.Auth, deps.Users)
	healthHandler := handler.NewHealthHandler(deps.Checks)

	authenticated := middleware.Auth(deps.Auth)
	adminOnly := middleware.RequireRole(domain.AuthorityAdmin)
	rateLimited := middleware.RateLimit(deps.RateLimitRPS, deps.RateLimitBurst)

	// --- Operational endpoints (no auth) ---
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	if deps.DocsEnabled {
		e.GET("/swagger/*", echoSwagger.WrapHandler)
	}

	v1 := e.Group("/api/v1")

	// --- Auth ---
	auth := v1.Group("/auth")
	auth.POST("/login", authHandler.Login, rateLimited)
	auth.GET("/me", authHandler.Me, authenticated)

	// --- Users ---
	users := v1.Group("/users")
	users.POST("", userHandler.Create, rateLimited)
	users.GET("", userHandler.List, authenticated, adminOnly)
	users.GET("/username/:username", userHandler.GetByUsername, authenticated)
	users.GET("/:id", userHandler.GetByID, authenticated)
	users.PUT("/:id", userHandler.Update, authenticated)
	users.DELETE("/:id", userHandler.Delete, authenticated, adminOnly)

	return e
}
