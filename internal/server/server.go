package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"artsearch/internal/app"
	"artsearch/internal/artsy"
	"artsearch/internal/ratelimit"
	"artsearch/internal/session"
	"artsearch/internal/util"
	"artsearch/pkg/domain"
	"artsearch/pkg/store"
)

const authCookieName = "auth-token"

// Config wires required dependencies for the HTTP server.
type Config struct {
	App                        *app.App
	Artsy                      *artsy.Client
	RedisAddr                  string
	RedisPassword              string
	RegisterRateLimitPerMinute int
	LoginRateLimitPerMinute    int
	CookieSecure               bool
	StaticDir                  string
	AllowedOrigins             []string
	TrustedProxyCIDRs          []string
}

// Server exposes the HTTP API: upstream proxy routes, auth, and favorites.
type Server struct {
	app             *app.App
	artsy           *artsy.Client
	mux             *http.ServeMux
	cookieSecure    bool
	allowedOrigins  []string
	trustedProxies  *util.TrustedProxies
	registerLimiter *ratelimit.FixedWindowLimiter
	loginLimiter    *ratelimit.FixedWindowLimiter
}

// New constructs the server with routes configured.
func New(cfg Config) (*Server, error) {
	registerLimit := cfg.RegisterRateLimitPerMinute
	if registerLimit <= 0 {
		registerLimit = 5
	}
	loginLimit := cfg.LoginRateLimitPerMinute
	if loginLimit <= 0 {
		loginLimit = 10
	}
	if strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil, errors.New("redis addr is required for rate limiting")
	}
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	rateWindow := time.Minute
	newLimiter := func(name string, limit int) (*ratelimit.FixedWindowLimiter, error) {
		limiter, err := ratelimit.NewFixedWindow(redisClient, "artsearch:ratelimit:"+name, limit, rateWindow)
		if err != nil {
			return nil, fmt.Errorf("init %s limiter: %w", name, err)
		}
		return limiter, nil
	}
	registerLimiter, err := newLimiter("register", registerLimit)
	if err != nil {
		return nil, err
	}
	loginLimiter, err := newLimiter("login", loginLimit)
	if err != nil {
		return nil, err
	}
	trustedProxies, err := util.NewTrustedProxies(cfg.TrustedProxyCIDRs)
	if err != nil {
		return nil, fmt.Errorf("parse trusted proxies: %w", err)
	}
	s := &Server{
		app:             cfg.App,
		artsy:           cfg.Artsy,
		mux:             http.NewServeMux(),
		cookieSecure:    cfg.CookieSecure,
		allowedOrigins:  cfg.AllowedOrigins,
		trustedProxies:  trustedProxies,
		registerLimiter: registerLimiter,
		loginLimiter:    loginLimiter,
	}
	s.routes(cfg.StaticDir)
	return s, nil
}

// Router returns the configured handler with middleware applied.
func (s *Server) Router() http.Handler {
	return util.WithSecurityHeaders(
		util.WithCORS(s.allowedOrigins,
			util.WithRequestID(
				util.WithRequestLog("artsearch", s.mux))))
}

func (s *Server) routes(staticDir string) {
	s.mux.HandleFunc("/healthz", s.handleHealth)

	// upstream proxy
	s.mux.HandleFunc("/api/artist-search/", s.handleArtistSearch)
	s.mux.HandleFunc("/api/artist-details/", s.handleArtistDetails)
	s.mux.HandleFunc("/api/similar-artist/", s.handleSimilarArtists)
	s.mux.HandleFunc("/api/artworks/", s.handleArtworks)
	s.mux.HandleFunc("/api/genes/", s.handleGenes)

	// auth
	s.mux.HandleFunc("/api/register", s.handleRegister)
	s.mux.HandleFunc("/api/login", s.handleLogin)
	s.mux.HandleFunc("/api/logout", s.handleLogout)
	s.mux.HandleFunc("/me", s.handleMe)

	// favorites & account
	s.mux.Handle("/api/add-favourite/", s.withSession(s.handleAddFavorite))
	s.mux.Handle("/api/remove-favorite/", s.withSession(s.handleRemoveFavorite))
	s.mux.Handle("/api/delete-account", s.withSession(s.handleDeleteAccount))
	s.mux.HandleFunc("/api/favorites/", s.handleListFavorites)

	if staticDir != "" {
		s.mux.Handle("/", http.FileServer(http.Dir(staticDir)))
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// session wrapper
type sessionHandler func(http.ResponseWriter, *http.Request, domain.Identity)

func (s *Server) withSession(next sessionHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := s.authorize(r)
		if !ok {
			s.audit(r, "session.verify", "fail")
			writeError(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}
		next(w, r, identity)
	})
}

func (s *Server) authorize(r *http.Request) (domain.Identity, bool) {
	cookie, err := r.Cookie(authCookieName)
	if err != nil {
		return domain.Identity{}, false
	}
	identity, err := s.app.VerifySession(cookie.Value)
	if err != nil {
		return domain.Identity{}, false
	}
	return identity, true
}

// upstream proxy handlers

func (s *Server) handleArtistSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	name := strings.TrimPrefix(r.URL.Path, "/api/artist-search/")
	results, err := s.artsy.SearchArtists(r.Context(), name)
	if err != nil {
		s.writeUpstreamError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (s *Server) handleArtistDetails(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/api/artist-details/")
	artist, err := s.artsy.GetArtist(r.Context(), id)
	if err != nil {
		s.writeUpstreamError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, artist)
}

func (s *Server) handleSimilarArtists(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/api/similar-artist/")
	envelope, err := s.artsy.SimilarArtists(r.Context(), id)
	if err != nil {
		s.writeUpstreamError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope)
}

func (s *Server) handleArtworks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/api/artworks/")
	artworks, err := s.artsy.ArtistArtworks(r.Context(), id)
	if err != nil {
		s.writeUpstreamError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, artworks)
}

func (s *Server) handleGenes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	artworkID := strings.TrimPrefix(r.URL.Path, "/api/genes/")
	genes, err := s.artsy.Genes(r.Context(), artworkID)
	if err != nil {
		s.writeUpstreamError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, genes)
}

// auth handlers

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if !s.allowRate(w, r, s.registerLimiter, "too many registration attempts") {
		s.audit(r, "register", "rate_limited")
		return
	}
	var req registerRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		s.audit(r, "register", "fail", "reason", "invalid_json")
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := s.app.Register(req.FullName, req.Email, req.Password); err != nil {
		s.audit(r, "register", "fail", "reason", err.Error())
		s.writeAppError(w, err)
		return
	}
	s.audit(r, "register", "success")
	writeJSON(w, http.StatusOK, map[string]string{"message": "User registered successfully"})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if !s.allowRate(w, r, s.loginLimiter, "too many login attempts") {
		s.audit(r, "login", "rate_limited")
		return
	}
	var req loginRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		s.audit(r, "login", "fail", "reason", "invalid_json")
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	_, token, err := s.app.Login(req.Email, req.Password)
	if err != nil {
		s.audit(r, "login", "fail", "reason", "credentials_rejected")
		s.writeAppError(w, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     authCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.app.SessionTTL().Seconds()),
		HttpOnly: true,
		Secure:   s.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	s.audit(r, "login", "success")
	writeJSON(w, http.StatusOK, map[string]string{"message": "Login successful"})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	// Clearing the cookie is all logout does; the token itself stays valid
	// until its natural expiry.
	http.SetCookie(w, &http.Cookie{
		Name:     authCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	s.audit(r, "logout", "success")
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	identity, ok := s.authorize(r)
	if !ok {
		s.audit(r, "me", "fail")
		writeError(w, http.StatusUnauthorized, "Invalid or expired token")
		return
	}
	writeJSON(w, http.StatusOK, identity)
}

// favorites handlers

func (s *Server) handleAddFavorite(w http.ResponseWriter, r *http.Request, identity domain.Identity) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	artistID := strings.TrimPrefix(r.URL.Path, "/api/add-favourite/")
	if artistID == "" {
		writeError(w, http.StatusBadRequest, "Artist ID is required")
		return
	}
	email, ok := s.resolveEmail(w, r, identity, "favorite.add")
	if !ok {
		return
	}
	if err := s.app.AddFavorite(email, artistID); err != nil {
		s.audit(r, "favorite.add", "fail", "reason", err.Error())
		s.writeAppError(w, err)
		return
	}
	s.audit(r, "favorite.add", "success", "artist_id", artistID)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Favourite added successfully"})
}

func (s *Server) handleRemoveFavorite(w http.ResponseWriter, r *http.Request, identity domain.Identity) {
	if r.Method != http.MethodDelete {
		methodNotAllowed(w)
		return
	}
	artistID := strings.TrimPrefix(r.URL.Path, "/api/remove-favorite/")
	email, ok := s.resolveEmail(w, r, identity, "favorite.remove")
	if !ok {
		return
	}
	if err := s.app.RemoveFavorite(email, artistID); err != nil {
		s.audit(r, "favorite.remove", "fail", "reason", err.Error())
		s.writeAppError(w, err)
		return
	}
	s.audit(r, "favorite.remove", "success", "artist_id", artistID)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Favourite removed successfully"})
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request, identity domain.Identity) {
	if r.Method != http.MethodDelete {
		methodNotAllowed(w)
		return
	}
	email, ok := s.resolveEmail(w, r, identity, "account.delete")
	if !ok {
		return
	}
	if err := s.app.DeleteAccount(email); err != nil {
		s.audit(r, "account.delete", "fail", "reason", err.Error())
		s.writeAppError(w, err)
		return
	}
	s.audit(r, "account.delete", "success")
	writeJSON(w, http.StatusOK, map[string]string{"message": "Account deleted."})
}

func (s *Server) handleListFavorites(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	email := strings.TrimPrefix(r.URL.Path, "/api/favorites/")
	favorites, err := s.app.ListFavorites(email)
	if err != nil {
		s.audit(r, "favorite.list", "fail", "reason", err.Error())
		writeError(w, http.StatusInternalServerError, "Error fetching favorites")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"favorites": favorites})
}

// resolveEmail binds the request to the verified session identity. A body
// email is still accepted for wire compatibility but must match the session.
func (s *Server) resolveEmail(w http.ResponseWriter, r *http.Request, identity domain.Identity, event string) (string, bool) {
	var req emailRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		s.audit(r, event, "fail", "reason", "invalid_json")
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return "", false
	}
	email := strings.TrimSpace(req.Email)
	if email == "" {
		return identity.Email, true
	}
	if !strings.EqualFold(email, identity.Email) {
		s.audit(r, event, "fail", "reason", "email_session_mismatch")
		writeError(w, http.StatusForbidden, "email does not match session")
		return "", false
	}
	return identity.Email, true
}

func methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

type registerRequest struct {
	FullName string `json:"fullname"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type emailRequest struct {
	Email string `json:"email"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

// writeAppError maps core application errors onto status codes with
// user-safe messages; anything unexpected becomes a generic 500.
func (s *Server) writeAppError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, app.ErrFieldsRequired),
		errors.Is(err, app.ErrEmailAlreadyExists),
		errors.Is(err, app.ErrInvalidCredentials),
		errors.Is(err, app.ErrArtistIDRequired),
		errors.Is(err, app.ErrEmailRequired):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrUserNotFound):
		writeError(w, http.StatusBadRequest, "user not found")
	case errors.Is(err, session.ErrInvalidToken):
		writeError(w, http.StatusUnauthorized, "Invalid or expired token")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// writeUpstreamError surfaces upstream status codes verbatim and hides the
// upstream message behind a generic one.
func (s *Server) writeUpstreamError(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *artsy.APIError
	if errors.As(err, &apiErr) {
		s.audit(r, "upstream.proxy", "fail", "status", apiErr.Status)
		writeError(w, apiErr.Status, "upstream request failed")
		return
	}
	s.audit(r, "upstream.proxy", "fail", "reason", err.Error())
	writeError(w, http.StatusBadGateway, "upstream unavailable")
}

func (s *Server) audit(r *http.Request, event, outcome string, attrs ...any) {
	logAttrs := []any{
		"event", event,
		"outcome", outcome,
		"path", r.URL.Path,
		"method", r.Method,
		"ip", util.ClientIP(r, s.trustedProxies),
	}
	logAttrs = append(logAttrs, attrs...)
	if outcome == "success" {
		slog.Info("security_event", logAttrs...)
		return
	}
	slog.Warn("security_event", logAttrs...)
}

func (s *Server) allowRate(w http.ResponseWriter, r *http.Request, limiter *ratelimit.FixedWindowLimiter, msg string) bool {
	key := r.URL.Path + "|" + util.ClientIP(r, s.trustedProxies)
	if limiter.Allow(key) {
		return true
	}
	w.Header().Set("Retry-After", "60")
	writeError(w, http.StatusTooManyRequests, msg)
	return false
}
