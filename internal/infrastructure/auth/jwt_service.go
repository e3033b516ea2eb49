package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mislam/topinspect/domain"
)

// refreshTokenLength is the fixed width of the base36 encoding of 128 bits
// of entropy. Shorter big integers are left-padded so every token looks the
// same on the wire.
const refreshTokenLength = 24

// JWTServiceImpl implements domain.TokenService. Access tokens are stateless
// HS256 claim bundles; refresh tokens are opaque strings persisted one row
// per device.
type JWTServiceImpl struct {
	secretKey  []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	tokenRepo  domain.TokenRepository
}

// NewJWTService creates a new token service
func NewJWTService(secretKey string, accessTTL, refreshTTL time.Duration, tokenRepo domain.TokenRepository) domain.TokenService {
	return &JWTServiceImpl{
		secretKey:  []byte(secretKey),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		tokenRepo:  tokenRepo,
	}
}

// IssueAccessToken implements domain.TokenService. Claims are exactly
// {sub, iat, exp}.
func (j *JWTServiceImpl) IssueAccessToken(authID string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": authID,
		"iat": now.Unix(),
		"exp": now.Add(j.accessTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.secretKey)
}

// IssueRefreshToken implements domain.TokenService. 16 random bytes are
// interpreted as one big integer and rendered in base36, giving a
// fixed-length lowercase alphanumeric token regardless of leading zero bytes.
func (j *JWTServiceImpl) IssueRefreshToken() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}

	encoded := new(big.Int).SetBytes(buf).Text(36)
	for len(encoded) < refreshTokenLength {
		encoded = "0" + encoded
	}
	return encoded[len(encoded)-refreshTokenLength:], nil
}

// IssueTokenPair implements domain.TokenService. Every call inserts a fresh
// refresh token row; rotation of existing rows belongs to the refresh
// service.
func (j *JWTServiceImpl) IssueTokenPair(ctx context.Context, authID string, deviceInfo *string) (*domain.TokenPair, error) {
	accessToken, err := j.IssueAccessToken(authID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue access token: %w", err)
	}

	refreshToken, err := j.IssueRefreshToken()
	if err != nil {
		return nil, fmt.Errorf("failed to issue refresh token: %w", err)
	}

	now := time.Now()
	row := &domain.RefreshToken{
		AuthID:     authID,
		Token:      refreshToken,
		DeviceInfo: deviceInfo,
		ExpiresAt:  now.Add(j.refreshTTL),
		LastUsedAt: now,
	}
	if err := j.tokenRepo.Create(ctx, row); err != nil {
		return nil, fmt.Errorf("failed to persist refresh token: %w", err)
	}

	return &domain.TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// ValidateAccessToken implements domain.TokenService, distinguishing expiry
// from forgery so callers can treat them differently.
func (j *JWTServiceImpl) ValidateAccessToken(tokenString string) (*domain.AccessClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domain.ErrTokenMalformed
		}
		return j.secretKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired
		}
		return nil, domain.ErrTokenInvalid
	}
	if !token.Valid {
		return nil, domain.ErrTokenInvalid
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, domain.ErrTokenMalformed
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return nil, domain.ErrTokenMalformed
	}
	iat, ok := claims["iat"].(float64)
	if !ok {
		return nil, domain.ErrTokenMalformed
	}
	exp, ok := claims["exp"].(float64)
	if !ok {
		return nil, domain.ErrTokenMalformed
	}

	if time.Unix(int64(exp), 0).Before(time.Now()) {
		return nil, domain.ErrTokenExpired
	}

	return &domain.AccessClaims{
		Subject:   sub,
		IssuedAt:  int64(iat),
		ExpiresAt: int64(exp),
	}, nil
}
