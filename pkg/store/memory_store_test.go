package store

import (
	"errors"
	"testing"
	"time"

	"artsearch/pkg/domain"
)

func seedUser(t *testing.T, s *MemoryStore, email string) {
	t.Helper()
	err := s.SaveUser(domain.User{
		ID:        "u-1",
		FullName:  "Alice",
		Email:     email,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("save user: %v", err)
	}
}

func TestAddThenRemoveFavoriteRestoresOriginalSet(t *testing.T) {
	s := NewMemoryStore()
	seedUser(t, s, "alice@example.com")

	if err := s.AddFavorite("alice@example.com", "artist-1", time.Now().UTC()); err != nil {
		t.Fatalf("add favorite: %v", err)
	}
	favorites, err := s.ListFavorites("alice@example.com")
	if err != nil {
		t.Fatalf("list favorites: %v", err)
	}
	if len(favorites) != 1 || favorites[0].ArtistID != "artist-1" {
		t.Fatalf("unexpected favorites after add: %+v", favorites)
	}

	if err := s.RemoveFavorite("alice@example.com", "artist-1"); err != nil {
		t.Fatalf("remove favorite: %v", err)
	}
	favorites, err = s.ListFavorites("alice@example.com")
	if err != nil {
		t.Fatalf("list favorites after remove: %v", err)
	}
	if len(favorites) != 0 {
		t.Fatalf("expected empty favorites, got %+v", favorites)
	}
}

func TestAddFavoriteKeepsDuplicatesAndOrder(t *testing.T) {
	s := NewMemoryStore()
	seedUser(t, s, "alice@example.com")

	for _, id := range []string{"artist-1", "artist-2", "artist-1"} {
		if err := s.AddFavorite("alice@example.com", id, time.Now().UTC()); err != nil {
			t.Fatalf("add favorite %s: %v", id, err)
		}
	}
	favorites, err := s.ListFavorites("alice@example.com")
	if err != nil {
		t.Fatalf("list favorites: %v", err)
	}
	got := []string{}
	for _, entry := range favorites {
		got = append(got, entry.ArtistID)
	}
	want := []string{"artist-1", "artist-2", "artist-1"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestRemoveFavoriteMissingIDLeavesListUnchanged(t *testing.T) {
	s := NewMemoryStore()
	seedUser(t, s, "alice@example.com")
	if err := s.AddFavorite("alice@example.com", "artist-1", time.Now().UTC()); err != nil {
		t.Fatalf("add favorite: %v", err)
	}

	if err := s.RemoveFavorite("alice@example.com", "artist-404"); err != nil {
		t.Fatalf("remove missing favorite should succeed: %v", err)
	}
	favorites, _ := s.ListFavorites("alice@example.com")
	if len(favorites) != 1 {
		t.Fatalf("expected list unchanged, got %+v", favorites)
	}
}

func TestAddFavoriteUnknownUserFails(t *testing.T) {
	s := NewMemoryStore()
	err := s.AddFavorite("ghost@example.com", "artist-1", time.Now().UTC())
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got: %v", err)
	}
}

func TestListFavoritesUnknownEmailReturnsEmpty(t *testing.T) {
	s := NewMemoryStore()
	favorites, err := s.ListFavorites("ghost@example.com")
	if err != nil {
		t.Fatalf("list favorites for unknown email: %v", err)
	}
	if favorites == nil || len(favorites) != 0 {
		t.Fatalf("expected empty slice, got %#v", favorites)
	}
}

func TestDeleteUserByEmailIsIdempotent(t *testing.T) {
	s := NewMemoryStore()
	seedUser(t, s, "alice@example.com")

	if err := s.DeleteUserByEmail("alice@example.com"); err != nil {
		t.Fatalf("delete user: %v", err)
	}
	if err := s.DeleteUserByEmail("alice@example.com"); err != nil {
		t.Fatalf("second delete should succeed: %v", err)
	}
	if ok, _ := s.HasUserEmail("alice@example.com"); ok {
		t.Fatalf("expected user gone")
	}
}
