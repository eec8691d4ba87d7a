// Package client is a session-scoped Go client for the artsearch gateway.
// It mirrors the browser app's data layer: a cookie-backed session, a
// 30-minute favorites cache, an unexpiring artist-detail cache, and
// staggered hydration of favorite artists.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"artsearch/internal/artsy"
	"artsearch/pkg/domain"
)

const (
	favoritesCacheTTL  = 30 * time.Minute
	defaultStagger     = 200 * time.Millisecond
	missingImageURL    = "/assets/shared/missing_image.png"
	defaultHTTPTimeout = 15 * time.Second
)

// ErrNotLoggedIn is returned by operations that need a session.
var ErrNotLoggedIn = errors.New("not logged in")

// APIError is a non-2xx gateway response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gateway status %d: %s", e.Status, e.Message)
}

// Favorite is a favorited artist hydrated with its upstream details.
type Favorite struct {
	artsy.Artist
	AddedAt time.Time `json:"added_at"`
	Time    string    `json:"time"`
}

type favoritesCacheEntry struct {
	entries   []domain.FavoriteEntry
	fetchedAt time.Time
}

// Client talks to the gateway on behalf of one user session.
type Client struct {
	baseURL    string
	httpClient *http.Client
	notifier   *Notifier
	now        func() time.Time
	stagger    time.Duration

	mu          sync.Mutex
	email       string
	hasLoaded   bool
	current     []Favorite
	favCache    map[string]favoritesCacheEntry
	artistCache map[string]artsy.Artist

	tickerOn  bool
	done      chan struct{}
	closeOnce sync.Once
}

// New builds a client with its own cookie jar for the auth-token cookie.
func New(baseURL string) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("init cookie jar: %w", err)
	}
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		httpClient:  &http.Client{Jar: jar, Timeout: defaultHTTPTimeout},
		notifier:    NewNotifier(),
		now:         time.Now,
		stagger:     defaultStagger,
		favCache:    make(map[string]favoritesCacheEntry),
		artistCache: make(map[string]artsy.Artist),
		done:        make(chan struct{}),
	}, nil
}

// Notifier exposes the toast feed for rendering.
func (c *Client) Notifier() *Notifier { return c.notifier }

// Close stops the relative-time updater.
func (c *Client) Close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// Register creates an account. It does not log in.
func (c *Client) Register(ctx context.Context, fullName, email, password string) error {
	payload := map[string]string{"fullname": fullName, "email": email, "password": password}
	return c.doJSON(ctx, http.MethodPost, "/api/register", payload, nil)
}

// Login exchanges credentials for the session cookie and remembers the email.
func (c *Client) Login(ctx context.Context, email, password string) error {
	payload := map[string]string{"email": email, "password": password}
	if err := c.doJSON(ctx, http.MethodPost, "/api/login", payload, nil); err != nil {
		return err
	}
	c.mu.Lock()
	c.email = email
	c.mu.Unlock()
	return nil
}

// Logout clears the cookie server-side and drops all session state.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.doJSON(ctx, http.MethodPost, "/api/logout", nil, nil); err != nil {
		return err
	}
	c.mu.Lock()
	c.email = ""
	c.hasLoaded = false
	c.current = nil
	c.mu.Unlock()
	return nil
}

// Me returns the verified session claims.
func (c *Client) Me(ctx context.Context) (domain.Identity, error) {
	var identity domain.Identity
	if err := c.doJSON(ctx, http.MethodGet, "/me", nil, &identity); err != nil {
		return domain.Identity{}, err
	}
	return identity, nil
}

// DeleteAccount removes the logged-in user's record.
func (c *Client) DeleteAccount(ctx context.Context) error {
	email, err := c.sessionEmail()
	if err != nil {
		return err
	}
	payload := map[string]string{"email": email}
	if err := c.doJSON(ctx, http.MethodDelete, "/api/delete-account", payload, nil); err != nil {
		return err
	}
	c.mu.Lock()
	delete(c.favCache, email)
	c.email = ""
	c.hasLoaded = false
	c.current = nil
	c.mu.Unlock()
	return nil
}

// SearchArtists proxies the free-text search and tags each result with
// whether it is already favorited.
func (c *Client) SearchArtists(ctx context.Context, query string) ([]TaggedResult, error) {
	var results []artsy.SearchResult
	path := "/api/artist-search/" + query
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &results); err != nil {
		return nil, err
	}
	return c.TagFavorites(results), nil
}

// ArtistDetails fetches one artist, consulting the detail cache first.
func (c *Client) ArtistDetails(ctx context.Context, artistID string) (artsy.Artist, error) {
	c.mu.Lock()
	cached, ok := c.artistCache[artistID]
	c.mu.Unlock()
	if ok {
		return cached, nil
	}
	var artist artsy.Artist
	if err := c.doJSON(ctx, http.MethodGet, "/api/artist-details/"+artistID, nil, &artist); err != nil {
		return artsy.Artist{}, err
	}
	c.mu.Lock()
	c.artistCache[artistID] = artist
	c.mu.Unlock()
	return artist, nil
}

// LoadFavoritesIfNeeded fetches and hydrates favorites once per session.
// ResetCache re-arms it.
func (c *Client) LoadFavoritesIfNeeded(ctx context.Context) ([]Favorite, error) {
	c.mu.Lock()
	if c.hasLoaded {
		out := snapshotFavorites(c.current)
		c.mu.Unlock()
		return out, nil
	}
	c.mu.Unlock()
	favorites, err := c.FetchFavorites(ctx)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.hasLoaded = true
	c.startTickerLocked()
	c.mu.Unlock()
	return favorites, nil
}

// ResetCache forces the next LoadFavoritesIfNeeded to fetch again.
func (c *Client) ResetCache() {
	c.mu.Lock()
	c.hasLoaded = false
	c.mu.Unlock()
}

// FetchFavorites returns the hydrated favorites list. The raw entry list is
// cached for 30 minutes per email; artist details are cached indefinitely.
func (c *Client) FetchFavorites(ctx context.Context) ([]Favorite, error) {
	email, err := c.sessionEmail()
	if err != nil {
		return nil, err
	}
	entries, err := c.favoriteEntries(ctx, email)
	if err != nil {
		return nil, err
	}
	favorites, err := c.hydrate(ctx, entries)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.current = favorites
	out := snapshotFavorites(c.current)
	c.mu.Unlock()
	return out, nil
}

func (c *Client) favoriteEntries(ctx context.Context, email string) ([]domain.FavoriteEntry, error) {
	now := c.now()
	c.mu.Lock()
	cached, ok := c.favCache[email]
	c.mu.Unlock()
	if ok && now.Sub(cached.fetchedAt) < favoritesCacheTTL {
		return cached.entries, nil
	}
	var body struct {
		Favorites []domain.FavoriteEntry `json:"favorites"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/favorites/"+email, nil, &body); err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.favCache[email] = favoritesCacheEntry{entries: body.Favorites, fetchedAt: now}
	c.mu.Unlock()
	return body.Favorites, nil
}

// hydrate resolves artist details for each entry, staggering fetches by
// 200ms per item to go easy on the upstream API.
func (c *Client) hydrate(ctx context.Context, entries []domain.FavoriteEntry) ([]Favorite, error) {
	favorites := make([]Favorite, len(entries))
	g, ctx := errgroup.WithContext(ctx)
	for i, entry := range entries {
		i, entry := i, entry
		g.Go(func() error {
			if err := sleepCtx(ctx, time.Duration(i)*c.stagger); err != nil {
				return err
			}
			artist, err := c.ArtistDetails(ctx, entry.ArtistID)
			if err != nil {
				var apiErr *APIError
				if !errors.As(err, &apiErr) || apiErr.Status != http.StatusNotFound {
					return err
				}
				artist = placeholderArtist(entry.ArtistID)
			}
			favorites[i] = Favorite{
				Artist:  artist,
				AddedAt: entry.AddedAt,
				Time:    RelativeTime(entry.AddedAt, c.now()),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return favorites, nil
}

// placeholderArtist stands in for an artist the catalog no longer serves.
func placeholderArtist(artistID string) artsy.Artist {
	var artist artsy.Artist
	artist.ID = artistID
	artist.Links.Thumbnail.Href = missingImageURL
	return artist
}

// AddFavorite records a favorite, invalidates the cached list, and shows a
// success toast.
func (c *Client) AddFavorite(ctx context.Context, artistID string) error {
	if artistID == "" {
		return errors.New("artist id is required")
	}
	email, err := c.sessionEmail()
	if err != nil {
		return err
	}
	payload := map[string]string{"email": email}
	if err := c.doJSON(ctx, http.MethodPost, "/api/add-favourite/"+artistID, payload, nil); err != nil {
		return err
	}
	c.mu.Lock()
	delete(c.favCache, email)
	c.mu.Unlock()
	c.notifier.Show("Added to favorites", ToastSuccess)
	_, err = c.FetchFavorites(ctx)
	return err
}

// RemoveFavorite deletes a favorite, invalidates the cached list, and shows
// a removal toast.
func (c *Client) RemoveFavorite(ctx context.Context, artistID string) error {
	email, err := c.sessionEmail()
	if err != nil {
		return err
	}
	payload := map[string]string{"email": email}
	if err := c.doJSON(ctx, http.MethodDelete, "/api/remove-favorite/"+artistID, payload, nil); err != nil {
		return err
	}
	c.mu.Lock()
	delete(c.favCache, email)
	kept := c.current[:0]
	for _, f := range c.current {
		if f.ID != artistID {
			kept = append(kept, f)
		}
	}
	c.current = kept
	c.mu.Unlock()
	c.notifier.Show("Removed from favorites", ToastDanger)
	return nil
}

// FavoriteIDs lists the artist ids in the hydrated favorites list.
func (c *Client) FavoriteIDs() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	ids := make([]string, 0, len(c.current))
	for _, f := range c.current {
		ids = append(ids, f.ID)
	}
	return ids
}

// IsFavorite reports whether the artist id is in the hydrated list.
func (c *Client) IsFavorite(artistID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, f := range c.current {
		if f.ID == artistID {
			return true
		}
	}
	return false
}

// TaggedResult is a search result annotated with favorite membership.
type TaggedResult struct {
	artsy.SearchResult
	IsFavorite bool `json:"isFavorite"`
}

// TagFavorites annotates search results against the current favorites.
func (c *Client) TagFavorites(results []artsy.SearchResult) []TaggedResult {
	tagged := make([]TaggedResult, len(results))
	for i, r := range results {
		tagged[i] = TaggedResult{
			SearchResult: r,
			IsFavorite:   c.IsFavorite(ArtistIDFromSelfLink(r.Links.Self.Href)),
		}
	}
	return tagged
}

// ArtistIDFromSelfLink pulls the artist id out of a catalog self link like
// https://api.artsy.net/api/artists/<id>.
func ArtistIDFromSelfLink(href string) string {
	parts := strings.Split(href, "/")
	if len(parts) < 6 {
		return ""
	}
	return parts[5]
}

// Favorites returns a snapshot of the last hydrated list.
func (c *Client) Favorites() []Favorite {
	c.mu.Lock()
	defer c.mu.Unlock()
	return snapshotFavorites(c.current)
}

func (c *Client) refreshRelativeTimes() {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.current {
		c.current[i].Time = RelativeTime(c.current[i].AddedAt, now)
	}
}

func (c *Client) startTickerLocked() {
	if c.tickerOn {
		return
	}
	c.tickerOn = true
	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-c.done:
				return
			case <-ticker.C:
				c.refreshRelativeTimes()
			}
		}
	}()
}

func (c *Client) sessionEmail() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.email == "" {
		return "", ErrNotLoggedIn
	}
	return c.email, nil
}

func snapshotFavorites(favorites []Favorite) []Favorite {
	out := make([]Favorite, len(favorites))
	copy(out, favorites)
	return out
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (c *Client) doJSON(ctx context.Context, method, path string, payload, out any) error {
	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		var errBody struct {
			Message string `json:"message"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&errBody)
		msg := errBody.Message
		if msg == "" {
			msg = resp.Status
		}
		return &APIError{Status: resp.StatusCode, Message: msg}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
