// @title           User Service API
// @version         1.0
// @description     User registration, lookup and administration with HTTP Basic or JWT bearer authentication.
// @BasePath        /
//
// @securityDefinitions.basic BasicAuth
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the token returned by /auth/login.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/userhub/user-service/internal/api"
	"github.com/userhub/user-service/internal/api/handler"
	"github.com/userhub/user-service/internal/core/ports"
	"github.com/userhub/user-service/internal/core/service"
	"github.com/userhub/user-service/internal/infrastructure/config"
	"github.com/userhub/user-service/internal/infrastructure/db/memory"
	"github.com/userhub/user-service/internal/infrastructure/db/mongo"
	"github.com/userhub/user-service/internal/infrastructure/db/postgres"
	"github.com/userhub/user-service/internal/infrastructure/db/redis"
	"github.com/userhub/user-service/internal/infrastructure/security"
	"github.com/userhub/user-service/pkg/logger"
)

const serviceName = "user-service"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", serviceName, err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: serviceName,
	})

	repo, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	checks := map[string]handler.Checker{"store": repo}

	var idem ports.IdempotencyStore
	if cfg.Redis.Enabled {
		client, err := redis.Connect(ctx, redis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return err
		}
		defer closeRedis(client, log)

		store := redis.NewIdempotencyStore(client, cfg.Redis.IdempotencyTTL)
		idem = store
		checks["redis"] = store
		log.Info().Str("addr", cfg.Redis.Addr).Msg("idempotency keys enabled")
	}

	hasher := security.NewBcryptHasher(cfg.Auth.BcryptCost)
	users := service.NewUserService(repo, hasher, idem, log)
	auth := service.NewAuthService(repo, hasher, cfg.Auth.JWTSecret, cfg.Auth.JWTTTL, log)

	if err := seedAdmin(ctx, users, cfg.Admin, log); err != nil {
		return err
	}

	e := api.NewRouter(api.Dependencies{
		Users:          users,
		Auth:           auth,
		Checks:         checks,
		Logger:         log,
		CORSOrigins:    cfg.HTTP.CORSOrigins,
		RateLimitRPS:   cfg.HTTP.RateLimitRPS,
		RateLimitBurst: cfg.HTTP.RateLimitBurst,
		DocsEnabled:    cfg.DocsEnabled,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      e,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("store", cfg.StoreDriver).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	log.Info().Msg("server stopped")
	return nil
}

// openStore connects the configured user store and prepares its schema.
func openStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (ports.UserRepository, func(), error) {
	switch cfg.StoreDriver {
	case config.StoreMongo:
		client, db, err := mongo.Connect(ctx, mongo.Config{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
		})
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() {
			if err := client.Disconnect(context.Background()); err != nil {
				log.Warn().Err(err).Msg("mongo disconnect")
			}
		}

		repo := mongo.NewUserRepository(db)
		if err := repo.EnsureIndexes(ctx); err != nil {
			closeFn()
			return nil, nil, fmt.Errorf("mongo indexes: %w", err)
		}
		log.Info().Str("database", cfg.Mongo.Database).Msg("connected to mongo")
		return repo, closeFn, nil

	case config.StorePostgres:
		pool, err := postgres.Connect(ctx, postgres.Config{
			DSN:      cfg.Postgres.DSN,
			MaxConns: cfg.Postgres.MaxConns,
		})
		if err != nil {
			return nil, nil, err
		}
		if err := postgres.Migrate(pool, log); err != nil {
			pool.Close()
			return nil, nil, err
		}
		log.Info().Msg("connected to postgres")
		return postgres.NewUserRepository(pool), pool.Close, nil

	default:
		log.Warn().Msg("using in-memory store, data is lost on restart")
		return memory.NewUserRepository(), func() {}, nil
	}
}

func closeRedis(client *goredis.Client, log zerolog.Logger) {
	if err := client.Close(); err != nil {
		log.Warn().Err(err).Msg("redis close")
	}
}
