package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/userhub/user-service/internal/core/domain"
	"github.com/userhub/user-service/internal/core/ports"
	"github.com/userhub/user-service/internal/metrics"
)

const sortDirDesc = "desc"

// UserService implements ports.UserService.
type UserService struct {
	repo   ports.UserRepository
	hasher ports.PasswordHasher
	idem   ports.IdempotencyStore // optional
	logger zerolog.Logger
}

// NewUserService wires the service. idem may be nil to disable Idempotency-Key support.
func NewUserService(repo ports.UserRepository, hasher ports.PasswordHasher, idem ports.IdempotencyStore, logger zerolog.Logger) *UserService {
	return &UserService{repo: repo, hasher: hasher, idem: idem, logger: logger}
}

// CreateUser registers a new user. The existence pre-checks give precise messages;
// the store's unique constraint remains the final arbiter for concurrent creates.
func (s *UserService) CreateUser(ctx context.Context, input ports.UserInput) (*ports.UserResult, error) {
	if replay := s.replay(ctx, input); replay != nil {
		return replay, nil
	}

	taken, err := s.repo.ExistsByUsername(ctx, input.Username)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	if taken {
		return nil, s.conflict(domain.ErrUsernameTaken)
	}
	taken, err = s.repo.ExistsByEmail(ctx, input.Email)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	if taken {
		return nil, s.conflict(domain.ErrEmailTaken)
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	roles := domain.NormalizeRoles(input.Roles)
	if len(roles) == 0 {
		roles = []string{domain.RoleUser}
	}

	saved, err := s.repo.Save(ctx, &domain.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hash,
		Roles:        roles,
	})
	if err != nil {
		var ce *domain.ConflictError
		if errors.As(err, &ce) {
			return nil, s.conflict(ce)
		}
		s.logger.Error().Err(err).Str("username", input.Username).Msg("failed to create user")
		return nil, fmt.Errorf("create user: %w", err)
	}

	metrics.UsersCreatedTotal.Inc()
	s.logger.Info().Int64("user_id", saved.ID).Str("username", saved.Username).Msg("user created")

	if input.IdempotencyKey != "" && s.idem != nil {
		if err := s.idem.Remember(ctx, input.IdempotencyKey, saved.ID); err != nil {
			s.logger.Warn().Err(err).Str("idempotency_key", input.IdempotencyKey).Msg("failed to record idempotency key")
		}
	}

	result := toResult(saved)
	return &result, nil
}

// replay returns the user a previous request with the same key created, or nil.
// The recorded user must match the request's username and email. Store errors
// degrade to a normal create.
func (s *UserService) replay(ctx context.Context, input ports.UserInput) *ports.UserResult {
	key := input.IdempotencyKey
	if key == "" || s.idem == nil {
		return nil
	}
	id, found, err := s.idem.Lookup(ctx, key)
	if err != nil {
		s.logger.Warn().Err(err).Str("idempotency_key", key).Msg("idempotency lookup failed, creating anyway")
		return nil
	}
	if !found {
		return nil
	}
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		// The user may have been deleted since; treat the key as stale.
		s.logger.Debug().Err(err).Int64("user_id", id).Msg("idempotency key points to missing user")
		return nil
	}
	if user.Username != input.Username || user.Email != input.Email {
		s.logger.Warn().Str("idempotency_key", key).Msg("idempotency key reused for a different user, ignoring it")
		return nil
	}

	metrics.IdempotentReplaysTotal.Inc()
	s.logger.Info().Str("idempotency_key", key).Int64("user_id", id).Msg("idempotent replay")

	result := toResult(user)
	result.Replayed = true
	return &result
}

func (s *UserService) GetUserByID(ctx context.Context, id int64) (*ports.UserResult, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "id", id)
	}
	result := toResult(user)
	return &result, nil
}

func (s *UserService) GetUserByUsername(ctx context.Context, username string) (*ports.UserResult, error) {
	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return nil, notFound(err, "username", username)
	}
	result := toResult(user)
	return &result, nil
}

// GetAllUsers returns one zero-indexed page. Only "desc" (any case) sorts descending.
func (s *UserService) GetAllUsers(ctx context.Context, input ports.ListUsersInput) (*ports.UserPage, error) {
	sortBy := ports.SortField(input.SortBy)
	if sortBy == "" {
		sortBy = ports.SortByID
	}

	verr := &domain.ValidationError{}
	if input.Page < 0 {
		verr.Add("page", "Page index must not be less than zero")
	}
	if input.Size < 1 {
		verr.Add("size", "Page size must not be less than one")
	}
	if !sortBy.Valid() {
		verr.Add("sortBy", fmt.Sprintf("Cannot sort by %q", input.SortBy))
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	req := ports.PageRequest{
		Page:       input.Page,
		Size:       input.Size,
		SortBy:     sortBy,
		Descending: strings.EqualFold(input.SortDir, sortDirDesc),
	}

	users, total, err := s.repo.FindAll(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	items := make([]ports.UserResult, len(users))
	for i, u := range users {
		items[i] = toResult(u)
	}

	totalPages := int((total + int64(req.Size) - 1) / int64(req.Size))

	return &ports.UserPage{
		Items:      items,
		Total:      total,
		Page:       req.Page,
		Size:       req.Size,
		TotalPages: totalPages,
	}, nil
}

// UpdateUser applies a partial update: username and email are always written,
// password and roles only when non-empty.
func (s *UserService) UpdateUser(ctx context.Context, id int64, input ports.UserInput) (*ports.UserResult, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "id", id)
	}

	user.Username = input.Username
	user.Email = input.Email

	if input.Password != "" {
		hash, err := s.hasher.Hash(input.Password)
		if err != nil {
			return nil, fmt.Errorf("update user: %w", err)
		}
		user.PasswordHash = hash
	}

	if roles := domain.NormalizeRoles(input.Roles); len(roles) > 0 {
		user.Roles = roles
	}

	saved, err := s.repo.Save(ctx, user)
	if err != nil {
		var ce *domain.ConflictError
		if errors.As(err, &ce) {
			return nil, s.conflict(ce)
		}
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.UserNotFound("id", id)
		}
		s.logger.Error().Err(err).Int64("user_id", id).Msg("failed to update user")
		return nil, fmt.Errorf("update user: %w", err)
	}

	metrics.UsersUpdatedTotal.Inc()
	s.logger.Info().Int64("user_id", saved.ID).Msg("user updated")

	result := toResult(saved)
	return &result, nil
}

func (s *UserService) DeleteUser(ctx context.Context, id int64) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return notFound(err, "id", id)
	}
	if err := s.repo.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	metrics.UsersDeletedTotal.Inc()
	s.logger.Info().Int64("user_id", id).Msg("user deleted")
	return nil
}

func (s *UserService) conflict(ce *domain.ConflictError) error {
	metrics.UserConflictsTotal.WithLabelValues(ce.Field).Inc()
	return ce
}

// notFound converts a store miss into the client-facing NotFoundError and wraps
// anything else unchanged.
func notFound(err error, field string, value any) error {
	if errors.Is(err, domain.ErrUserNotFound) {
		return domain.UserNotFound(field, value)
	}
	return fmt.Errorf("find user by %s: %w", field, err)
}

// toResult maps an entity to its read model. The password hash is never copied.
func toResult(u *domain.User) ports.UserResult {
	return ports.UserResult{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Roles:     append([]string(nil), u.Roles...),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
