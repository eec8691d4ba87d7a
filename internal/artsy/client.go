package artsy

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultBaseURL is the production art-catalog API root.
const DefaultBaseURL = "https://api.artsy.net/api"

const (
	tokenHeader      = "X-Xapp-Token"
	searchPageSize   = 10
	artworksPageSize = 10
)

// APIError represents an upstream error response. The status code is carried
// so callers can surface it verbatim.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("upstream status %d: %s", e.Status, e.Message)
}

// TokenSource supplies the current upstream access token.
type TokenSource interface {
	Token() string
}

// Client queries the art-catalog API using a shared access token.
type Client struct {
	baseURL    string
	tokens     TokenSource
	httpClient *http.Client
}

// NewClient constructs an upstream client.
func NewClient(baseURL string, tokens TokenSource) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		tokens:     tokens,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// SearchArtists runs a free-text search, capped at 10 embedded results.
func (c *Client) SearchArtists(ctx context.Context, query string) ([]SearchResult, error) {
	path := fmt.Sprintf("/search?q=%s&size=%d", url.QueryEscape(query), searchPageSize)
	var envelope searchEnvelope
	if err := c.getJSON(ctx, path, &envelope); err != nil {
		return nil, err
	}
	results := envelope.Embedded.Results
	if results == nil {
		results = []SearchResult{}
	}
	return results, nil
}

// GetArtist fetches one artist by id.
func (c *Client) GetArtist(ctx context.Context, artistID string) (Artist, error) {
	var artist Artist
	path := "/artists/" + url.PathEscape(artistID)
	if err := c.getJSON(ctx, path, &artist); err != nil {
		return Artist{}, err
	}
	return artist, nil
}

// SimilarArtists returns the similarity lookup envelope unmodified.
func (c *Client) SimilarArtists(ctx context.Context, artistID string) (ArtistsEnvelope, error) {
	var envelope ArtistsEnvelope
	path := "/artists?similar_to_artist_id=" + url.QueryEscape(artistID)
	if err := c.getJSON(ctx, path, &envelope); err != nil {
		return ArtistsEnvelope{}, err
	}
	return envelope, nil
}

// ArtistArtworks lists up to 10 artworks for the artist.
func (c *Client) ArtistArtworks(ctx context.Context, artistID string) ([]Artwork, error) {
	path := fmt.Sprintf("/artworks?artist_id=%s&size=%d", url.QueryEscape(artistID), artworksPageSize)
	var envelope artworksEnvelope
	if err := c.getJSON(ctx, path, &envelope); err != nil {
		return nil, err
	}
	artworks := envelope.Embedded.Artworks
	if artworks == nil {
		artworks = []Artwork{}
	}
	return artworks, nil
}

// Genes lists categories for an artwork id.
func (c *Client) Genes(ctx context.Context, artworkID string) ([]Gene, error) {
	path := "/genes?q=" + url.QueryEscape(artworkID)
	var envelope genesEnvelope
	if err := c.getJSON(ctx, path, &envelope); err != nil {
		return nil, err
	}
	genes := envelope.Embedded.Genes
	if genes == nil {
		genes = []Gene{}
	}
	return genes, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	if c.tokens != nil {
		req.Header.Set(tokenHeader, c.tokens.Token())
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		var errResp struct {
			Message string `json:"message"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&errResp)
		msg := errResp.Message
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
