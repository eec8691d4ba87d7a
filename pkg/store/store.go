package store

import (
	"errors"
	"time"

	"artsearch/pkg/domain"
)

// ErrUserNotFound is returned by favorite mutations when no user record
// exists for the email. Read paths treat an absent user as an empty result
// instead.
var ErrUserNotFound = errors.New("user not found")

// Store defines persistence operations for users and their embedded
// favorites sequence.
type Store interface {
	// users
	SaveUser(domain.User) error
	HasUserEmail(email string) (bool, error)
	GetUserByEmail(email string) (domain.User, bool, error)
	// DeleteUserByEmail is idempotent; deleting an absent user is not an error.
	DeleteUserByEmail(email string) error

	// favorites
	AddFavorite(email, artistID string, addedAt time.Time) error
	RemoveFavorite(email, artistID string) error
	ListFavorites(email string) ([]domain.FavoriteEntry, error)
}
