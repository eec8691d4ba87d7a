package artsy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"
)

const (
	tokenPath = "/tokens/xapp_token"

	// refreshMargin is how far ahead of expiry the next refresh fires.
	refreshMargin = 10 * time.Minute
	// refreshRetryDelay spaces retries after a failed refresh.
	refreshRetryDelay = 30 * time.Second
	// minRefreshInterval floors the schedule against very short-lived tokens.
	minRefreshInterval = time.Minute
)

// TokenManager owns the process-wide upstream access token. It is the single
// writer: Start refreshes the token immediately and then again ahead of each
// expiry, while Token never blocks on a refresh. A request racing a silent
// expiry sees the stale value and the resulting upstream 401 is forwarded,
// not treated as a local fault.
type TokenManager struct {
	baseURL      string
	clientID     string
	clientSecret string
	httpClient   *http.Client
	now          func() time.Time

	mu        sync.RWMutex
	token     string
	expiresAt time.Time
}

// NewTokenManager constructs a manager for the upstream credential exchange.
func NewTokenManager(baseURL, clientID, clientSecret string) *TokenManager {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	return &TokenManager{
		baseURL:      strings.TrimRight(baseURL, "/"),
		clientID:     clientID,
		clientSecret: clientSecret,
		httpClient:   &http.Client{Timeout: 10 * time.Second},
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Token returns the current token value without validating freshness.
func (m *TokenManager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

// ExpiresAt returns the current token's expiry.
func (m *TokenManager) ExpiresAt() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.expiresAt
}

// Refresh exchanges the client credentials for a fresh access token.
func (m *TokenManager) Refresh(ctx context.Context) error {
	payload, err := json.Marshal(map[string]string{
		"client_id":     m.clientID,
		"client_secret": m.clientSecret,
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+tokenPath, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := m.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("token exchange: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return &APIError{Status: resp.StatusCode, Message: "token exchange failed"}
	}
	var body struct {
		Token     string    `json:"token"`
		ExpiresAt time.Time `json:"expires_at"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("decode token response: %w", err)
	}
	if strings.TrimSpace(body.Token) == "" {
		return fmt.Errorf("token exchange returned empty token")
	}

	m.mu.Lock()
	m.token = body.Token
	m.expiresAt = body.ExpiresAt
	m.mu.Unlock()

	slog.Info("upstream token refreshed", "expires_at", body.ExpiresAt)
	return nil
}

// Start refreshes once immediately and then keeps the token fresh in a
// background goroutine until ctx is cancelled.
func (m *TokenManager) Start(ctx context.Context) {
	if err := m.Refresh(ctx); err != nil {
		slog.Error("initial upstream token refresh failed", "err", err)
	}
	go m.loop(ctx)
}

func (m *TokenManager) loop(ctx context.Context) {
	for {
		wait := refreshInterval(m.ExpiresAt(), m.now())
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
		if err := m.Refresh(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			slog.Warn("upstream token refresh failed", "err", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(refreshRetryDelay):
			}
		}
	}
}

// refreshInterval schedules the next refresh ahead of expiry. A zero or past
// expiry falls back to the retry delay so the loop keeps probing.
func refreshInterval(expiresAt, now time.Time) time.Duration {
	if expiresAt.IsZero() {
		return refreshRetryDelay
	}
	wait := expiresAt.Sub(now) - refreshMargin
	if wait < minRefreshInterval {
		if remaining := expiresAt.Sub(now); remaining <= 0 {
			return refreshRetryDelay
		}
		return minRefreshInterval
	}
	return wait
}
