package store

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"artsearch/pkg/domain"
)

// GormStore implements Store using GORM + Postgres.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore opens the DB and runs auto-migrations.
func NewGormStore(dsn string) (*GormStore, error) {
	gormLog := gormlogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormLog})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.AutoMigrate(&UserModel{}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	return &GormStore{db: db}, nil
}

// SaveUser registers or updates a user.
func (s *GormStore) SaveUser(u domain.User) error {
	model, err := userToModel(u)
	if err != nil {
		return err
	}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"full_name", "email", "password_hash", "profile_image_url", "favorites", "updated_at"}),
	}).Create(&model).Error
}

// HasUserEmail checks if email exists.
func (s *GormStore) HasUserEmail(email string) (bool, error) {
	var count int64
	if err := s.db.Model(&UserModel{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetUserByEmail looks up a user by email.
func (s *GormStore) GetUserByEmail(email string) (domain.User, bool, error) {
	var model UserModel
	if err := s.db.Where("email = ?", email).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.User{}, false, nil
		}
		return domain.User{}, false, err
	}
	user, err := userFromModel(model)
	if err != nil {
		return domain.User{}, false, err
	}
	return user, true, nil
}

// DeleteUserByEmail removes the user record. Absent users are not an error.
func (s *GormStore) DeleteUserByEmail(email string) error {
	return s.db.Delete(&UserModel{}, "email = ?", email).Error
}

// AddFavorite appends one entry to the user's favorites sequence.
// The append is unconditional; duplicates are kept.
func (s *GormStore) AddFavorite(email, artistID string, addedAt time.Time) error {
	return s.mutateFavorites(email, func(favorites []domain.FavoriteEntry) []domain.FavoriteEntry {
		return append(favorites, domain.FavoriteEntry{ArtistID: artistID, AddedAt: addedAt})
	})
}

// RemoveFavorite drops every entry matching the artist id. Removing an id
// that is not present leaves the sequence unchanged and succeeds.
func (s *GormStore) RemoveFavorite(email, artistID string) error {
	err := s.mutateFavorites(email, func(favorites []domain.FavoriteEntry) []domain.FavoriteEntry {
		kept := favorites[:0]
		for _, entry := range favorites {
			if entry.ArtistID != artistID {
				kept = append(kept, entry)
			}
		}
		return kept
	})
	if errors.Is(err, ErrUserNotFound) {
		return nil
	}
	return err
}

// ListFavorites returns the favorites sequence in insertion order.
// Unknown emails yield an empty sequence, not an error.
func (s *GormStore) ListFavorites(email string) ([]domain.FavoriteEntry, error) {
	user, ok, err := s.GetUserByEmail(email)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []domain.FavoriteEntry{}, nil
	}
	return user.Favorites, nil
}

func (s *GormStore) mutateFavorites(email string, mutate func([]domain.FavoriteEntry) []domain.FavoriteEntry) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var model UserModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&model, "email = ?", email).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}
		favorites, err := decodeFavorites(model.Favorites)
		if err != nil {
			return err
		}
		encoded, err := encodeFavorites(mutate(favorites))
		if err != nil {
			return err
		}
		return tx.Model(&UserModel{}).
			Where("email = ?", email).
			Updates(map[string]any{
				"favorites":  encoded,
				"updated_at": time.Now().UTC(),
			}).Error
	})
}
