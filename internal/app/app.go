package app

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"artsearch/internal/session"
	"artsearch/pkg/auth"
	"artsearch/pkg/domain"
	"artsearch/pkg/store"
)

// Config holds runtime configuration for the core application.
type Config struct {
	DatabaseURL string
	JWTSecret   string
	SessionTTL  time.Duration
	Store       store.Store
	Sessions    *session.Issuer
}

// App wires together the credential store and the session issuer.
type App struct {
	store    store.Store
	sessions *session.Issuer
	now      func() time.Time
}

// New constructs the application with database storage and session issuing.
func New(cfg Config) (*App, error) {
	dataStore := cfg.Store
	if dataStore == nil {
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("database URL required")
		}
		var err error
		dataStore, err = store.NewGormStore(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("init postgres store: %w", err)
		}
	}
	sessions := cfg.Sessions
	if sessions == nil {
		if strings.TrimSpace(cfg.JWTSecret) == "" {
			return nil, fmt.Errorf("jwt secret required")
		}
		sessions = session.New(cfg.JWTSecret, cfg.SessionTTL)
	}
	return &App{
		store:    dataStore,
		sessions: sessions,
		now:      func() time.Time { return time.Now().UTC() },
	}, nil
}

// SessionTTL returns the configured session lifetime.
func (a *App) SessionTTL() time.Duration {
	return a.sessions.TTL()
}

// Register creates a user record. No session token is issued; the caller
// must log in separately.
func (a *App) Register(fullname, email, password string) error {
	fullname = strings.TrimSpace(fullname)
	email = strings.TrimSpace(email)
	if fullname == "" || email == "" || password == "" {
		return ErrFieldsRequired
	}
	exists, err := a.store.HasUserEmail(email)
	if err != nil {
		return fmt.Errorf("check email: %w", err)
	}
	if exists {
		return ErrEmailAlreadyExists
	}
	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	now := a.now()
	user := domain.User{
		ID:              uuid.NewString(),
		FullName:        fullname,
		Email:           email,
		PasswordHash:    passwordHash,
		ProfileImageURL: AvatarURL(email),
		Favorites:       []domain.FavoriteEntry{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := a.store.SaveUser(user); err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

// Login validates credentials and returns the identity plus a signed
// session token.
func (a *App) Login(email, password string) (domain.Identity, string, error) {
	user, ok, err := a.store.GetUserByEmail(email)
	if err != nil {
		return domain.Identity{}, "", fmt.Errorf("fetch user: %w", err)
	}
	if !ok {
		return domain.Identity{}, "", ErrInvalidCredentials
	}
	if !auth.CheckPassword(password, user.PasswordHash) {
		return domain.Identity{}, "", ErrInvalidCredentials
	}
	identity := domain.Identity{
		Email:           user.Email,
		Name:            user.FullName,
		ProfileImageURL: user.ProfileImageURL,
		IsAuthenticated: true,
	}
	token, err := a.sessions.Issue(identity)
	if err != nil {
		return domain.Identity{}, "", fmt.Errorf("issue session token: %w", err)
	}
	return identity, token, nil
}

// VerifySession validates a session token and returns its identity claims.
func (a *App) VerifySession(token string) (domain.Identity, error) {
	return a.sessions.Verify(token)
}

// AddFavorite appends a timestamped entry to the user's favorites.
func (a *App) AddFavorite(email, artistID string) error {
	if strings.TrimSpace(email) == "" {
		return ErrEmailRequired
	}
	if strings.TrimSpace(artistID) == "" {
		return ErrArtistIDRequired
	}
	return a.store.AddFavorite(email, artistID, a.now())
}

// RemoveFavorite removes every favorite matching the artist id. Removing an
// id that was never added still succeeds.
func (a *App) RemoveFavorite(email, artistID string) error {
	if strings.TrimSpace(email) == "" {
		return ErrEmailRequired
	}
	return a.store.RemoveFavorite(email, artistID)
}

// ListFavorites returns the user's favorites; unknown emails yield an empty
// sequence.
func (a *App) ListFavorites(email string) ([]domain.FavoriteEntry, error) {
	return a.store.ListFavorites(email)
}

// DeleteAccount removes the user record. Idempotent.
func (a *App) DeleteAccount(email string) error {
	if strings.TrimSpace(email) == "" {
		return ErrEmailRequired
	}
	return a.store.DeleteUserByEmail(email)
}

// AvatarURL derives a deterministic identicon URL from the normalized email.
func AvatarURL(email string) string {
	normalized := strings.ToLower(strings.TrimSpace(email))
	sum := sha256.Sum256([]byte(normalized))
	return fmt.Sprintf("https://www.gravatar.com/avatar/%s?s=200&d=identicon", hex.EncodeToString(sum[:]))
}
