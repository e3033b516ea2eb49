package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mislam/topinspect/domain"
)

// TokenRepositoryImpl implements domain.TokenRepository using GORM
type TokenRepositoryImpl struct {
	db *gorm.DB
}

// DBRefreshToken holds one row per device. Rows are never deleted; logout
// stamps revoked_at and rotation rewrites token/expires_at/last_used_at.
type DBRefreshToken struct {
	ID         string    `gorm:"primaryKey;size:36"`
	AuthID     string    `gorm:"index;size:36"`
	Token      string    `gorm:"uniqueIndex;size:64"`
	DeviceInfo *string   `gorm:"type:text"`
	ExpiresAt  time.Time `gorm:"index"`
	RevokedAt  *time.Time
	LastUsedAt time.Time
	CreatedAt  time.Time
}

func (DBRefreshToken) TableName() string {
	return "refresh_tokens"
}

// NewTokenRepository creates a new refresh token repository
func NewTokenRepository(db *gorm.DB) domain.TokenRepository {
	return &TokenRepositoryImpl{db: db}
}

// Create implements domain.TokenRepository
func (r *TokenRepositoryImpl) Create(ctx context.Context, token *domain.RefreshToken) error {
	if token.ID == "" {
		token.ID = uuid.NewString()
	}
	row := &DBRefreshToken{
		ID:         token.ID,
		AuthID:     token.AuthID,
		Token:      token.Token,
		DeviceInfo: token.DeviceInfo,
		ExpiresAt:  token.ExpiresAt,
		LastUsedAt: token.LastUsedAt,
	}
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return err
	}
	token.CreatedAt = row.CreatedAt
	return nil
}

// FindByToken implements domain.TokenRepository
func (r *TokenRepositoryImpl) FindByToken(ctx context.Context, token string) (*domain.RefreshToken, error) {
	var row DBRefreshToken
	err := r.db.WithContext(ctx).Where("token = ?", token).First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, domain.ErrRefreshTokenNotFound
		}
		return nil, err
	}
	return &domain.RefreshToken{
		ID:         row.ID,
		AuthID:     row.AuthID,
		Token:      row.Token,
		DeviceInfo: row.DeviceInfo,
		ExpiresAt:  row.ExpiresAt,
		RevokedAt:  row.RevokedAt,
		LastUsedAt: row.LastUsedAt,
		CreatedAt:  row.CreatedAt,
	}, nil
}

// Rotate implements domain.TokenRepository. The WHERE clause pins the row to
// the presented token value, so of N concurrent rotations exactly one
// matches and the rest report false.
func (r *TokenRepositoryImpl) Rotate(ctx context.Context, oldToken, newToken string, expiresAt, lastUsedAt time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&DBRefreshToken{}).
		Where("token = ? AND revoked_at IS NULL", oldToken).
		Updates(map[string]interface{}{
			"token":        newToken,
			"expires_at":   expiresAt,
			"last_used_at": lastUsedAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// Revoke implements domain.TokenRepository. Revoking an already revoked or
// unknown token reports false.
func (r *TokenRepositoryImpl) Revoke(ctx context.Context, token string, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&DBRefreshToken{}).
		Where("token = ? AND revoked_at IS NULL", token).
		Update("revoked_at", at)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
