package ports

import (
	"context"
	"time"
)

// UserInput is the writable part of a user as received from a client.
// On update an empty Password or empty Roles means "leave unchanged".
type UserInput struct {
	Username string
	Email    string
	Password string
	Roles    []string
	// IdempotencyKey is only honoured by CreateUser.
	IdempotencyKey string
}

// UserResult is the read model returned to clients. It has no password field.
type UserResult struct {
	ID        int64
	Username  string
	Email     string
	Roles     []string
	CreatedAt time.Time
	UpdatedAt time.Time
	// Replayed is true when CreateUser matched an existing Idempotency-Key.
	Replayed bool
}

// ListUsersInput carries raw list parameters; SortDir is case-insensitive and
// anything other than "desc" sorts ascending.
type ListUsersInput struct {
	Page    int
	Size    int
	SortBy  string
	SortDir string
}

// UserPage is one page of users.
type UserPage struct {
	Items      []UserResult
	Total      int64
	Page       int
	Size       int
	TotalPages int
}

// UserService defines the user management use cases.
type UserService interface {
	CreateUser(ctx context.Context, input UserInput) (*UserResult, error)
	GetUserByID(ctx context.Context, id int64) (*UserResult, error)
	GetUserByUsername(ctx context.Context, username string) (*UserResult, error)
	GetAllUsers(ctx context.Context, input ListUsersInput) (*UserPage, error)
	UpdateUser(ctx context.Context, id int64, input UserInput) (*UserResult, error)
	DeleteUser(ctx context.Context, id int64) error
}
