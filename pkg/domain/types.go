package domain

import "time"

// User is an account stored in the user collection. Favorites are embedded
// in the record as an ordered sequence, document-store style.
type User struct {
	ID              string          `json:"id"`
	FullName        string          `json:"fullname"`
	Email           string          `json:"email"`
	PasswordHash    string          `json:"-"`
	ProfileImageURL string          `json:"profileImageUrl"`
	Favorites       []FavoriteEntry `json:"favorites"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// FavoriteEntry links an account to an artist id, timestamped at creation.
// Entries are appended unconditionally; duplicates are allowed.
type FavoriteEntry struct {
	ArtistID string    `json:"artist_id"`
	AddedAt  time.Time `json:"added_at"`
}

// Identity is the claim set embedded in a session token and returned by /me.
type Identity struct {
	Email           string `json:"email"`
	Name            string `json:"name"`
	ProfileImageURL string `json:"profileImageUrl"`
	IsAuthenticated bool   `json:"isAuthenticated"`
}
