package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/userhub/user-service/internal/core/domain"
	"github.com/userhub/user-service/internal/core/ports"
	"github.com/userhub/user-service/internal/metrics"
)

const (
	tokenIssuer     = "user-service"
	defaultTokenTTL = 24 * time.Hour
)

// tokenClaims is the JWT payload; Subject holds the decimal user id.
type tokenClaims struct {
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
	jwt.RegisteredClaims
}

// AuthService implements password login, HTTP Basic checks and bearer token verification.
type AuthService struct {
	repo      ports.UserRepository
	hasher    ports.PasswordHasher
	jwtSecret []byte
	tokenTTL  time.Duration
	logger    zerolog.Logger
	now       func() time.Time
}

func NewAuthService(repo ports.UserRepository, hasher ports.PasswordHasher, jwtSecret string, tokenTTL time.Duration, logger zerolog.Logger) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = defaultTokenTTL
	}
	return &AuthService{
		repo:      repo,
		hasher:    hasher,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*ports.LoginResult, error) {
	user, err := s.verify(ctx, username, password)
	if err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("login", "failure").Inc()
		return nil, err
	}

	token, expiresAt, err := s.generateToken(user)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	metrics.AuthAttemptsTotal.WithLabelValues("login", "success").Inc()
	s.logger.Info().Int64("user_id", user.ID).Msg("user logged in")

	return &ports.LoginResult{Token: token, ExpiresAt: expiresAt, User: toResult(user)}, nil
}

func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*domain.Identity, error) {
	user, err := s.verify(ctx, username, password)
	if err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("basic", "failure").Inc()
		return nil, err
	}
	metrics.AuthAttemptsTotal.WithLabelValues("basic", "success").Inc()
	return domain.IdentityFromUser(user, "basic"), nil
}

func (s *AuthService) ParseToken(token string) (*domain.Identity, error) {
	claims := &tokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return s.jwtSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid {
		metrics.AuthAttemptsTotal.WithLabelValues("bearer", "failure").Inc()
		return nil, fmt.Errorf("parse token: %w", domain.ErrUnauthorized)
	}

	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("bearer", "failure").Inc()
		return nil, fmt.Errorf("token subject %q: %w", claims.Subject, domain.ErrUnauthorized)
	}

	metrics.AuthAttemptsTotal.WithLabelValues("bearer", "success").Inc()
	return &domain.Identity{
		UserID:   id,
		Username: claims.Username,
		Roles:    domain.NormalizeRoles(claims.Roles),
		Scheme:   "bearer",
	}, nil
}

// verify loads the user and checks the password. An unknown username and a wrong
// password both yield ErrInvalidCredentials.
func (s *AuthService) verify(ctx context.Context, username, password string) (*domain.User, error) {
	if username == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("verify credentials: %w", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}
	return user, nil
}

func (s *AuthService) generateToken(user *domain.User) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.tokenTTL)

	claims := tokenClaims{
		Username: user.Username,
		Roles:    domain.NormalizeRoles(user.Roles),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   strconv.FormatInt(user.ID, 10),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}
