package store

import (
	"sync"
	"time"

	"artsearch/pkg/domain"
)

// MemoryStore keeps user records in-process. Used by tests and local runs
// without a database.
type MemoryStore struct {
	mu    sync.RWMutex
	users map[string]domain.User // key: email
}

// NewMemoryStore initializes an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{users: make(map[string]domain.User)}
}

// SaveUser registers or replaces a user record.
func (m *MemoryStore) SaveUser(u domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u.Favorites == nil {
		u.Favorites = []domain.FavoriteEntry{}
	}
	m.users[u.Email] = u
	return nil
}

// HasUserEmail checks if email exists.
func (m *MemoryStore) HasUserEmail(email string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.users[email]
	return ok, nil
}

// GetUserByEmail looks up a user by email.
func (m *MemoryStore) GetUserByEmail(email string) (domain.User, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[email]
	return u, ok, nil
}

// DeleteUserByEmail removes the record; deleting an absent user is a no-op.
func (m *MemoryStore) DeleteUserByEmail(email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.users, email)
	return nil
}

// AddFavorite appends an entry to the user's favorites sequence.
func (m *MemoryStore) AddFavorite(email, artistID string, addedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[email]
	if !ok {
		return ErrUserNotFound
	}
	u.Favorites = append(u.Favorites, domain.FavoriteEntry{ArtistID: artistID, AddedAt: addedAt})
	u.UpdatedAt = time.Now().UTC()
	m.users[email] = u
	return nil
}

// RemoveFavorite drops all entries matching the artist id.
func (m *MemoryStore) RemoveFavorite(email, artistID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[email]
	if !ok {
		return nil
	}
	kept := make([]domain.FavoriteEntry, 0, len(u.Favorites))
	for _, entry := range u.Favorites {
		if entry.ArtistID != artistID {
			kept = append(kept, entry)
		}
	}
	u.Favorites = kept
	u.UpdatedAt = time.Now().UTC()
	m.users[email] = u
	return nil
}

// ListFavorites returns the favorites sequence in insertion order.
func (m *MemoryStore) ListFavorites(email string) ([]domain.FavoriteEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[email]
	if !ok {
		return []domain.FavoriteEntry{}, nil
	}
	out := make([]domain.FavoriteEntry, len(u.Favorites))
	copy(out, u.Favorites)
	return out, nil
}
