// Package client provides a token-aware HTTP client for the auth service:
// a refresh coordinator that guarantees at most one in-flight refresh per
// session, and an API client that attaches bearer tokens and retries once
// after a refresh.
package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/sync/singleflight"

	"github.com/mislam/topinspect/domain"
)

// proactiveRefreshFraction is the remaining share of the access token's
// lifetime below which a refresh is triggered before the token actually
// expires.
const proactiveRefreshFraction = 0.10

var ErrNotAuthenticated = errors.New("client: not authenticated")

// TokenStore holds the session's current token pair.
type TokenStore interface {
	Load() (*domain.TokenPair, error)
	Save(pair *domain.TokenPair) error
	Clear() error
}

// MemoryTokenStore is a TokenStore backed by process memory.
type MemoryTokenStore struct {
	mu   sync.RWMutex
	pair *domain.TokenPair
}

func NewMemoryTokenStore() *MemoryTokenStore { return &MemoryTokenStore{} }

func (s *MemoryTokenStore) Load() (*domain.TokenPair, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.pair == nil {
		return nil, nil
	}
	cp := *s.pair
	return &cp, nil
}

func (s *MemoryTokenStore) Save(pair *domain.TokenPair) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *pair
	s.pair = &cp
	return nil
}

func (s *MemoryTokenStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pair = nil
	return nil
}

// RefreshFunc exchanges a refresh token for a new pair.
type RefreshFunc func(ctx context.Context, refreshToken string) (*domain.TokenPair, error)

// LogoutFunc revokes a refresh token server-side. Best effort.
type LogoutFunc func(ctx context.Context, refreshToken string) error

// Coordinator serializes refreshes for one session. Concurrent callers that
// observe an expiring access token attach to the single in-flight refresh
// instead of racing the single-use rotation; the shared call settles once
// and everyone gets its result. A refresh rejected by the server clears the
// session: a rejected refresh token is unrecoverable. Rate limits and
// transport errors surface to the caller with the session intact.
type Coordinator struct {
	store   TokenStore
	refresh RefreshFunc
	logout  LogoutFunc
	group   singleflight.Group

	// now is swappable for tests.
	now func() time.Time
}

func NewCoordinator(store TokenStore, refresh RefreshFunc, logout LogoutFunc) *Coordinator {
	return &Coordinator{store: store, refresh: refresh, logout: logout, now: time.Now}
}

// AccessToken returns a usable access token, refreshing first when the
// current one is inside the proactive window or already expired.
func (c *Coordinator) AccessToken(ctx context.Context) (string, error) {
	pair, err := c.store.Load()
	if err != nil {
		return "", err
	}
	if pair == nil {
		return "", ErrNotAuthenticated
	}

	if !c.needsRefresh(pair.AccessToken) {
		return pair.AccessToken, nil
	}

	refreshed, err := c.Refresh(ctx)
	if err != nil {
		return "", err
	}
	return refreshed.AccessToken, nil
}

// Refresh rotates the session's refresh token, deduplicating concurrent
// callers onto one shared operation. When the server rejects the refresh
// token the local session is cleared and server-side revocation attempted;
// any other failure leaves the stored pair untouched.
func (c *Coordinator) Refresh(ctx context.Context) (*domain.TokenPair, error) {
	v, err, _ := c.group.Do("refresh", func() (interface{}, error) {
		pair, err := c.store.Load()
		if err != nil {
			return nil, err
		}
		if pair == nil {
			return nil, ErrNotAuthenticated
		}

		// The shared refresh must not die with the first caller that
		// gives up; late attachers still need its result.
		next, err := c.refresh(context.WithoutCancel(ctx), pair.RefreshToken)
		if err != nil {
			if isRefreshRejected(err) {
				c.handleRefreshFailure(pair.RefreshToken)
			}
			return nil, fmt.Errorf("refresh failed: %w", err)
		}
		if err := c.store.Save(next); err != nil {
			return nil, err
		}
		return next, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.TokenPair), nil
}

// Logout revokes the session server-side (best effort) and clears the store.
func (c *Coordinator) Logout(ctx context.Context) error {
	pair, err := c.store.Load()
	if err != nil {
		return err
	}
	if pair != nil && c.logout != nil {
		_ = c.logout(ctx, pair.RefreshToken)
	}
	return c.store.Clear()
}

// isRefreshRejected reports whether a refresh error means the refresh token
// itself was refused. Only a 401 ends the session; a 429 means the rotation
// cooldown is active and the presented token is still valid, and transport
// errors say nothing about the token at all.
func isRefreshRejected(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

func (c *Coordinator) handleRefreshFailure(refreshToken string) {
	_ = c.store.Clear()
	if c.logout != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = c.logout(ctx, refreshToken)
	}
}

// needsRefresh reports whether the token's remaining lifetime has dropped
// below proactiveRefreshFraction of its total TTL. Claims are read without
// signature verification: the client only schedules around exp, it never
// trusts the token for authorization. Unparseable tokens count as expiring.
func (c *Coordinator) needsRefresh(accessToken string) bool {
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(accessToken, claims); err != nil {
		return true
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return true
	}
	iat, err := claims.GetIssuedAt()
	if err != nil || iat == nil {
		return true
	}

	total := exp.Sub(iat.Time)
	if total <= 0 {
		return true
	}
	remaining := exp.Sub(c.now())
	return float64(remaining) < float64(total)*proactiveRefreshFraction
}
