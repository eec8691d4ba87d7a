package store

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	"artsearch/pkg/domain"
)

// UserModel is the GORM model for the user collection. Favorites live in a
// JSONB column so the record keeps the embedded-sequence shape: ordered,
// appended unconditionally, removed by matching artist id.
type UserModel struct {
	ID              string `gorm:"primaryKey"`
	FullName        string `gorm:"not null"`
	Email           string `gorm:"uniqueIndex;not null"`
	PasswordHash    string `gorm:"not null"`
	ProfileImageURL string
	Favorites       datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt       time.Time      `gorm:"not null"`
	UpdatedAt       time.Time
}

func userToModel(u domain.User) (UserModel, error) {
	favorites, err := encodeFavorites(u.Favorites)
	if err != nil {
		return UserModel{}, err
	}
	return UserModel{
		ID:              u.ID,
		FullName:        u.FullName,
		Email:           u.Email,
		PasswordHash:    u.PasswordHash,
		ProfileImageURL: u.ProfileImageURL,
		Favorites:       favorites,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}, nil
}

func userFromModel(m UserModel) (domain.User, error) {
	favorites, err := decodeFavorites(m.Favorites)
	if err != nil {
		return domain.User{}, err
	}
	return domain.User{
		ID:              m.ID,
		FullName:        m.FullName,
		Email:           m.Email,
		PasswordHash:    m.PasswordHash,
		ProfileImageURL: m.ProfileImageURL,
		Favorites:       favorites,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}, nil
}

func encodeFavorites(favorites []domain.FavoriteEntry) (datatypes.JSON, error) {
	if favorites == nil {
		favorites = []domain.FavoriteEntry{}
	}
	raw, err := json.Marshal(favorites)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

func decodeFavorites(raw datatypes.JSON) ([]domain.FavoriteEntry, error) {
	if len(raw) == 0 {
		return []domain.FavoriteEntry{}, nil
	}
	var favorites []domain.FavoriteEntry
	if err := json.Unmarshal(raw, &favorites); err != nil {
		return nil, err
	}
	if favorites == nil {
		favorites = []domain.FavoriteEntry{}
	}
	return favorites, nil
}
