package ports

import (
	"context"
	"math"

	"github.com/userhub/user-service/internal/core/domain"
)

// SortField is a sortable user attribute, named as it appears in the API.
type SortField string

const (
	SortByID        SortField = "id"
	SortByUsername  SortField = "username"
	SortByEmail     SortField = "email"
	SortByCreatedAt SortField = "createdAt"
	SortByUpdatedAt SortField = "updatedAt"
)

// SortFields lists every accepted SortField.
var SortFields = []SortField{SortByID, SortByUsername, SortByEmail, SortByCreatedAt, SortByUpdatedAt}

// Valid reports whether f is one of SortFields.
func (f SortField) Valid() bool {
	for _, s := range SortFields {
		if f == s {
			return true
		}
	}
	return false
}

// PageRequest carries paging and ordering for FindAll. Page is zero-based.
type PageRequest struct {
	Page       int
	Size       int
	SortBy     SortField
	Descending bool
}

// Offset is the number of rows skipped before the requested page. It saturates
// at math.MaxInt64, so a page past any real store is empty rather than negative.
func (p PageRequest) Offset() int64 {
	if p.Page <= 0 || p.Size <= 0 {
		return 0
	}
	if int64(p.Page) > math.MaxInt64/int64(p.Size) {
		return math.MaxInt64
	}
	return int64(p.Page) * int64(p.Size)
}

// UserRepository persists users. Username and email uniqueness is enforced by
// the store itself; violations surface as domain.ErrUsernameTaken or
// domain.ErrEmailTaken from Save.
type UserRepository interface {
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	// Save inserts when ID is zero (assigning ID and both timestamps) and
	// updates otherwise (refreshing UpdatedAt).
	Save(ctx context.Context, user *domain.User) (*domain.User, error)
	// DeleteByID is a no-op when the user does not exist.
	DeleteByID(ctx context.Context, id int64) error
	// FindAll returns one page of users and the total number of users.
	FindAll(ctx context.Context, page PageRequest) ([]*domain.User, int64, error)
	Ping(ctx context.Context) error
}
