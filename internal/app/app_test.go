package app

import (
	"errors"
	"strings"
	"testing"
	"time"

	"artsearch/pkg/store"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	a, err := New(Config{
		Store:      store.NewMemoryStore(),
		JWTSecret:  "test-secret",
		SessionTTL: time.Hour,
	})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	return a
}

func TestRegisterRequiresAllFields(t *testing.T) {
	a := newTestApp(t)
	cases := [][3]string{
		{"", "alice@example.com", "pw123"},
		{"Alice", "", "pw123"},
		{"Alice", "alice@example.com", ""},
	}
	for _, c := range cases {
		if err := a.Register(c[0], c[1], c[2]); !errors.Is(err, ErrFieldsRequired) {
			t.Fatalf("expected ErrFieldsRequired for %v, got: %v", c, err)
		}
	}
}

func TestRegisterSameEmailTwiceConflicts(t *testing.T) {
	a := newTestApp(t)
	if err := a.Register("Alice", "alice@example.com", "pw123"); err != nil {
		t.Fatalf("first register: %v", err)
	}
	err := a.Register("Alice Again", "alice@example.com", "other-password")
	if !errors.Is(err, ErrEmailAlreadyExists) {
		t.Fatalf("expected ErrEmailAlreadyExists, got: %v", err)
	}
}

func TestLoginErrorIsIdenticalForUnknownEmailAndWrongPassword(t *testing.T) {
	a := newTestApp(t)
	if err := a.Register("Alice", "alice@example.com", "pw123"); err != nil {
		t.Fatalf("register: %v", err)
	}

	_, _, unknownErr := a.Login("nobody@example.com", "pw123")
	_, _, wrongErr := a.Login("alice@example.com", "wrong")
	if unknownErr == nil || wrongErr == nil {
		t.Fatalf("expected both logins to fail, got %v and %v", unknownErr, wrongErr)
	}
	if unknownErr.Error() != wrongErr.Error() {
		t.Fatalf("error messages must match: %q vs %q", unknownErr, wrongErr)
	}
	if !errors.Is(unknownErr, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got: %v", unknownErr)
	}
}

func TestLoginIssuesVerifiableSessionToken(t *testing.T) {
	a := newTestApp(t)
	if err := a.Register("Alice", "alice@example.com", "pw123"); err != nil {
		t.Fatalf("register: %v", err)
	}
	identity, token, err := a.Login("alice@example.com", "pw123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if token == "" {
		t.Fatalf("expected session token")
	}
	if identity.Name != "Alice" || !identity.IsAuthenticated {
		t.Fatalf("unexpected identity: %+v", identity)
	}

	verified, err := a.VerifySession(token)
	if err != nil {
		t.Fatalf("verify session: %v", err)
	}
	if verified.Email != "alice@example.com" {
		t.Fatalf("unexpected verified email: %q", verified.Email)
	}
	if verified.ProfileImageURL != AvatarURL("alice@example.com") {
		t.Fatalf("unexpected avatar claim: %q", verified.ProfileImageURL)
	}
}

func TestFavoritesScenario(t *testing.T) {
	a := newTestApp(t)
	if err := a.Register("Alice", "alice@example.com", "pw123"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, _, err := a.Login("alice@example.com", "pw123"); err != nil {
		t.Fatalf("login: %v", err)
	}

	if err := a.AddFavorite("alice@example.com", "artist-1"); err != nil {
		t.Fatalf("add favorite: %v", err)
	}
	favorites, err := a.ListFavorites("alice@example.com")
	if err != nil {
		t.Fatalf("list favorites: %v", err)
	}
	if len(favorites) != 1 || favorites[0].ArtistID != "artist-1" {
		t.Fatalf("unexpected favorites: %+v", favorites)
	}
	if favorites[0].AddedAt.IsZero() {
		t.Fatalf("expected timestamp on favorite entry")
	}

	if err := a.RemoveFavorite("alice@example.com", "artist-1"); err != nil {
		t.Fatalf("remove favorite: %v", err)
	}
	favorites, err = a.ListFavorites("alice@example.com")
	if err != nil {
		t.Fatalf("list favorites after remove: %v", err)
	}
	if len(favorites) != 0 {
		t.Fatalf("expected empty favorites, got %+v", favorites)
	}
}

func TestAddFavoriteUnknownUserDoesNotCreateShellRecord(t *testing.T) {
	a := newTestApp(t)
	err := a.AddFavorite("ghost@example.com", "artist-1")
	if !errors.Is(err, store.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got: %v", err)
	}
	favorites, err := a.ListFavorites("ghost@example.com")
	if err != nil {
		t.Fatalf("list favorites: %v", err)
	}
	if len(favorites) != 0 {
		t.Fatalf("no shell record expected, got %+v", favorites)
	}
}

func TestDeleteAccountIsIdempotent(t *testing.T) {
	a := newTestApp(t)
	if err := a.Register("Alice", "alice@example.com", "pw123"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := a.DeleteAccount("alice@example.com"); err != nil {
		t.Fatalf("delete account: %v", err)
	}
	if err := a.DeleteAccount("alice@example.com"); err != nil {
		t.Fatalf("second delete should succeed: %v", err)
	}
	if _, _, err := a.Login("alice@example.com", "pw123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected login to fail after deletion, got: %v", err)
	}
}

func TestAvatarURLNormalizesEmail(t *testing.T) {
	a := AvatarURL("  Alice@Example.COM ")
	b := AvatarURL("alice@example.com")
	if a != b {
		t.Fatalf("avatar URL should be derived from normalized email: %q vs %q", a, b)
	}
	if !strings.HasPrefix(a, "https://www.gravatar.com/avatar/") || !strings.HasSuffix(a, "?s=200&d=identicon") {
		t.Fatalf("unexpected avatar URL shape: %q", a)
	}
}
