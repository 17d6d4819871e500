package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/userhub/user-service/internal/core/domain"
	"github.com/userhub/user-service/internal/core/ports"
)

const (
	pgUniqueViolation = "23505"

	constraintUsername = "users_username_key"
	constraintEmail    = "users_email_key"

	userColumns = `id, username, email, password_hash, roles, created_at, updated_at`

	insertUserQuery = `
		INSERT INTO users (username, email, password_hash, roles, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		RETURNING id`
	updateUserQuery = `
		UPDATE users
		SET username = $2, email = $3, password_hash = $4, roles = $5, updated_at = $6
		WHERE id = $1
		RETURNING created_at`
	deleteUserQuery = `DELETE FROM users WHERE id = $1`
	countUsersQuery = `SELECT COUNT(*) FROM users`
)

var _ ports.UserRepository = (*UserRepository)(nil)

// orderColumns whitelists the ORDER BY expression for each sort field.
var orderColumns = map[ports.SortField]string{
	ports.SortByID:        "id",
	ports.SortByUsername:  "username",
	ports.SortByEmail:     "email",
	ports.SortByCreatedAt: "created_at",
	ports.SortByUpdatedAt: "updated_at",
}

type userRow struct {
	ID           int64     `db:"id"`
	Username     string    `db:"username"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	Roles        []string  `db:"roles"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (r *userRow) toDomain() *domain.User {
	return &domain.User{
		ID:           r.ID,
		Username:     r.Username,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		Roles:        domain.NormalizeRoles(r.Roles),
		CreatedAt:    r.CreatedAt.UTC(),
		UpdatedAt:    r.UpdatedAt.UTC(),
	}
}

type UserRepository struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{
		pool: pool,
		now:  func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
	}
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *UserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`, username)
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, email)
}

func (r *UserRepository) Save(ctx context.Context, user *domain.User) (*domain.User, error) {
	saved := user.Clone()
	saved.UpdatedAt = r.now()
	if saved.Roles == nil {
		saved.Roles = []string{}
	}

	if saved.ID == 0 {
		saved.CreatedAt = saved.UpdatedAt
		err := r.pool.QueryRow(ctx, insertUserQuery,
			saved.Username, saved.Email, saved.PasswordHash, saved.Roles, saved.CreatedAt,
		).Scan(&saved.ID)
		if err != nil {
			if ce := uniqueViolation(err); ce != nil {
				return nil, ce
			}
			return nil, fmt.Errorf("insert user: %w", err)
		}
		return saved, nil
	}

	err := r.pool.QueryRow(ctx, updateUserQuery,
		saved.ID, saved.Username, saved.Email, saved.PasswordHash, saved.Roles, saved.UpdatedAt,
	).Scan(&saved.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		if ce := uniqueViolation(err); ce != nil {
			return nil, ce
		}
		return nil, fmt.Errorf("update user %d: %w", saved.ID, err)
	}
	saved.CreatedAt = saved.CreatedAt.UTC()
	return saved, nil
}

func (r *UserRepository) DeleteByID(ctx context.Context, id int64) error {
	if _, err := r.pool.Exec(ctx, deleteUserQuery, id); err != nil {
		return fmt.Errorf("delete user %d: %w", id, err)
	}
	return nil
}

func (r *UserRepository) FindAll(ctx context.Context, page ports.PageRequest) ([]*domain.User, int64, error) {
	var total int64
	if err := r.pool.QueryRow(ctx, countUsersQuery).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	query := `SELECT ` + userColumns + ` FROM users ORDER BY ` + orderBy(page) + ` LIMIT $1 OFFSET $2`

	var rows []userRow
	if err := pgxscan.Select(ctx, r.pool, &rows, query, page.Size, page.Offset()); err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}

	users := make([]*domain.User, len(rows))
	for i := range rows {
		users[i] = rows[i].toDomain()
	}
	return users, total, nil
}

func (r *UserRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func (r *UserRepository) getOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	var row userRow
	if err := pgxscan.Get(ctx, r.pool, &row, query, arg); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return row.toDomain(), nil
}

func (r *UserRepository) exists(ctx context.Context, query string, arg any) (bool, error) {
	var found bool
	if err := r.pool.QueryRow(ctx, query, arg).Scan(&found); err != nil {
		return false, fmt.Errorf("check user exists: %w", err)
	}
	return found, nil
}

// orderBy renders the ORDER BY clause; id breaks ties.
func orderBy(page ports.PageRequest) string {
	dir := "ASC"
	if page.Descending {
		dir = "DESC"
	}
	col, ok := orderColumns[page.SortBy]
	if !ok {
		col = "id"
	}
	if col == "id" {
		return "id " + dir
	}
	return col + " " + dir + ", id " + dir
}

// uniqueViolation maps a 23505 error to the conflict for the violated constraint.
func uniqueViolation(err error) *domain.ConflictError {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgUniqueViolation {
		return nil
	}
	switch pgErr.ConstraintName {
	case constraintEmail:
		return domain.ErrEmailTaken
	case constraintUsername:
		return domain.ErrUsernameTaken
	}
	return &domain.ConflictError{Field: pgErr.ConstraintName, Message: "Duplicate value violates " + pgErr.ConstraintName}
}
