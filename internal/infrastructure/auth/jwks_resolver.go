package auth

import (
	"context"
	"crypto"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mislam/topinspect/domain"
)

// JWKSResolver implements domain.KeyResolver by fetching provider JWKS
// documents over HTTP. Fetched documents are cached in Redis with a TTL so a
// key rollover or an unknown kid triggers at most one upstream fetch per TTL
// window.
type JWKSResolver struct {
	urls        map[domain.AuthProvider]string
	httpClient  *http.Client
	redisClient *redis.Client
	cacheTTL    time.Duration
}

type jwksDocument struct {
	Keys []jwksKey `json:"keys"`
}

type jwksKey struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	Use string `json:"use"`
	N   string `json:"n"`
	E   string `json:"e"`
}

// NewJWKSResolver creates a resolver for the given provider endpoint map.
// redisClient may be nil, which disables caching.
func NewJWKSResolver(urls map[domain.AuthProvider]string, redisClient *redis.Client, cacheTTL time.Duration) *JWKSResolver {
	return &JWKSResolver{
		urls:        urls,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		redisClient: redisClient,
		cacheTTL:    cacheTTL,
	}
}

// ResolveKey implements domain.KeyResolver
func (r *JWKSResolver) ResolveKey(ctx context.Context, provider domain.AuthProvider, kid string) (crypto.PublicKey, error) {
	raw, err := r.document(ctx, provider)
	if err != nil {
		return nil, err
	}

	var doc jwksDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse %s JWKS: %w", provider, err)
	}

	for _, key := range doc.Keys {
		if key.Kid != kid {
			continue
		}
		if key.Kty != "RSA" {
			return nil, fmt.Errorf("unsupported key type %q for kid %s", key.Kty, kid)
		}
		return rsaPublicKey(key)
	}
	return nil, fmt.Errorf("no %s signing key found for kid %s", provider, kid)
}

func (r *JWKSResolver) document(ctx context.Context, provider domain.AuthProvider) ([]byte, error) {
	cacheKey := "jwks:" + string(provider)

	if r.redisClient != nil {
		if cached, err := r.redisClient.Get(ctx, cacheKey).Bytes(); err == nil {
			return cached, nil
		}
	}

	url, ok := r.urls[provider]
	if !ok {
		return nil, fmt.Errorf("no JWKS endpoint configured for provider %s", provider)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build JWKS request: %w", err)
	}
	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s JWKS: %w", provider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d fetching %s JWKS", resp.StatusCode, provider)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s JWKS: %w", provider, err)
	}

	if r.redisClient != nil {
		if err := r.redisClient.Set(ctx, cacheKey, raw, r.cacheTTL).Err(); err != nil {
			// Cache failures degrade to refetching, never to rejecting.
			return raw, nil
		}
	}
	return raw, nil
}

func rsaPublicKey(key jwksKey) (*rsa.PublicKey, error) {
	nBytes, err := base64.RawURLEncoding.DecodeString(key.N)
	if err != nil {
		return nil, fmt.Errorf("invalid modulus for kid %s: %w", key.Kid, err)
	}
	eBytes, err := base64.RawURLEncoding.DecodeString(key.E)
	if err != nil {
		return nil, fmt.Errorf("invalid exponent for kid %s: %w", key.Kid, err)
	}

	e := 0
	for _, b := range eBytes {
		e = e<<8 | int(b)
	}
	if e == 0 {
		return nil, fmt.Errorf("zero exponent for kid %s", key.Kid)
	}

	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(nBytes),
		E: e,
	}, nil
}
