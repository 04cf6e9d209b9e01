// Package auth issues and validates the bearer tokens the mobile client
// sends with every request, and injects the current user into the
// request context for handlers downstream.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const (
	// DefaultTokenTTL is how long an issued token stays valid.
	DefaultTokenTTL = 30 * 24 * time.Hour

	// minSecretLen guards against trivially brute-forceable signing keys.
	minSecretLen = 32
)

var (
	// ErrTokenInvalid is returned for tokens that fail signature or
	// structural validation, including expired ones.
	ErrTokenInvalid = errors.New("invalid or expired token")
)

// AuthUser is the per-request view of the signed-in user. It is built
// from a fresh user fetch on every request, so role changes, blocks, and
// approval revocations take effect immediately.
type AuthUser struct {
	ID         primitive.ObjectID
	Name       string
	Phone      string
	GlobalRole string
	IsBlocked  bool
	IsApproved bool
}

// UserFetcher loads the current user record for the given ID.
// Implemented by the user store.
type UserFetcher interface {
	FetchAuthUser(ctx context.Context, id primitive.ObjectID) (*AuthUser, error)
}

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// CurrentUser returns the user in context and a found flag.
func CurrentUser(r *http.Request) (*AuthUser, bool) {
	u, ok := r.Context().Value(currentUserKey).(*AuthUser)
	return u, ok
}

func withUser(r *http.Request, u *AuthUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}

// WithTestUser injects a user into the request context, bypassing token
// parsing. Test helper only.
func WithTestUser(r *http.Request, u *AuthUser) *http.Request {
	return withUser(r, u)
}

// claims is the JWT payload we issue. Subject carries the user ID hex.
type claims struct {
	Name string `json:"name,omitempty"`
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// TokenManager signs and validates bearer tokens.
type TokenManager struct {
	secret  []byte
	ttl     time.Duration
	fetcher UserFetcher
	log     *zap.Logger
}

// NewTokenManager builds a TokenManager. The secret must be at least 32
// bytes; allowWeak relaxes that for dev and tests.
func NewTokenManager(secret string, ttl time.Duration, allowWeak bool, logger *zap.Logger) (*TokenManager, error) {
	if len(secret) < minSecretLen && !allowWeak {
		return nil, fmt.Errorf("token secret too short: %d bytes, need %d", len(secret), minSecretLen)
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenManager{
		secret: []byte(secret),
		ttl:    ttl,
		log:    logger,
	}, nil
}

// SetUserFetcher wires the store used to refresh user data per request.
func (tm *TokenManager) SetUserFetcher(f UserFetcher) {
	tm.fetcher = f
}

// Issue creates a signed token for the given user.
func (tm *TokenManager) Issue(userID primitive.ObjectID, name, globalRole string, now time.Time) (string, error) {
	c := claims{
		Name: name,
		Role: globalRole,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.Hex(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tm.ttl)),
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := tok.SignedString(tm.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ParseUserID validates a token and returns the user ID it carries.
func (tm *TokenManager) ParseUserID(token string) (primitive.ObjectID, error) {
	var c claims
	parsed, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return tm.secret, nil
	})
	if err != nil || !parsed.Valid {
		return primitive.NilObjectID, ErrTokenInvalid
	}
	id, err := primitive.ObjectIDFromHex(c.Subject)
	if err != nil {
		return primitive.NilObjectID, ErrTokenInvalid
	}
	return id, nil
}

// LoadTokenUser injects the user into context if the request carries a
// valid bearer token. Blocked and unapproved users are treated as not
// signed in; an unreachable user store fails the request with 503 so a
// store outage is never reported as an authorization problem.
func (tm *TokenManager) LoadTokenUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		userID, err := tm.ParseUserID(token)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		if tm.fetcher == nil {
			next.ServeHTTP(w, r)
			return
		}
		u, err := tm.fetcher.FetchAuthUser(r.Context(), userID)
		if err != nil {
			tm.log.Error("auth: user fetch failed", zap.String("user_id", userID.Hex()), zap.Error(err))
			http.Error(w, `{"error":"service unavailable"}`, http.StatusServiceUnavailable)
			return
		}
		if u == nil || u.IsBlocked || !u.IsApproved {
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, withUser(r, u))
	})
}

// RequireSignedIn ensures there is a user in context (set by
// LoadTokenUser). API callers get a plain 401 JSON body.
func RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); ok {
			next.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"unauthorized"}`))
	})
}

// RequireSuperAdmin ensures the signed-in user holds the superadmin
// global role. 401 when not signed in, 403 otherwise.
func RequireSuperAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := CurrentUser(r)
		if !ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"unauthorized"}`))
			return
		}
		if !strings.EqualFold(u.GlobalRole, "superadmin") {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"error":"forbidden"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(h) > len(prefix) && strings.EqualFold(h[:len(prefix)], prefix) {
		return strings.TrimSpace(h[len(prefix):])
	}
	return ""
}
