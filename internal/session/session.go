package session

import (
	"errors"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"artsearch/pkg/domain"
)

// DefaultTTL is the session lifetime: tokens expire one hour after issuance.
const DefaultTTL = time.Hour

// ErrInvalidToken covers missing, malformed, badly signed, and expired tokens.
var ErrInvalidToken = errors.New("invalid or expired token")

type sessionClaims struct {
	Name            string `json:"name"`
	ProfileImageURL string `json:"profileImageUrl"`
	IsAuthenticated bool   `json:"isAuthenticated"`
	jwt.RegisteredClaims
}

// Issuer issues and validates HS256 session tokens carrying identity claims.
// Tokens are stateless: validity is determined entirely by signature and the
// embedded expiration, no server-side session table exists.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// New builds an issuer signing with the given secret.
func New(secret string, ttl time.Duration) *Issuer {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Issuer{
		secret: []byte(secret),
		ttl:    ttl,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// TTL returns the configured session lifetime.
func (i *Issuer) TTL() time.Duration {
	return i.ttl
}

// Issue signs a token embedding the identity claims, expiring after the TTL.
func (i *Issuer) Issue(identity domain.Identity) (string, error) {
	now := i.now()
	claims := sessionClaims{
		Name:            identity.Name,
		ProfileImageURL: identity.ProfileImageURL,
		IsAuthenticated: true,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.Email,
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
}

// Verify validates signature and expiration and returns the embedded claims.
func (i *Issuer) Verify(token string) (domain.Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.Identity{}, ErrInvalidToken
	}
	claims := sessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil || !parsed.Valid {
		return domain.Identity{}, ErrInvalidToken
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return domain.Identity{}, ErrInvalidToken
	}
	return domain.Identity{
		Email:           claims.Subject,
		Name:            claims.Name,
		ProfileImageURL: claims.ProfileImageURL,
		IsAuthenticated: claims.IsAuthenticated,
	}, nil
}
