package repositories

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mislam/topinspect/domain"
)

// AuthRepositoryImpl implements domain.AuthRepository using GORM
type AuthRepositoryImpl struct {
	db *gorm.DB
}

// DBAuthIdentity is the database model for AuthIdentity. The composite
// unique index guarantees one identity per (provider, identifier); the email
// unique index guarantees global email uniqueness across providers.
type DBAuthIdentity struct {
	ID         string  `gorm:"primaryKey;size:36"`
	Provider   string  `gorm:"size:16;uniqueIndex:idx_auth_provider_identifier"`
	Identifier string  `gorm:"size:255;uniqueIndex:idx_auth_provider_identifier"`
	Email      *string `gorm:"size:255;uniqueIndex"`
}

func (DBAuthIdentity) TableName() string {
	return "auth_identities"
}

// NewAuthRepository creates a new identity repository
func NewAuthRepository(db *gorm.DB) domain.AuthRepository {
	return &AuthRepositoryImpl{db: db}
}

// Create implements domain.AuthRepository. A zero ID is filled in.
func (r *AuthRepositoryImpl) Create(ctx context.Context, identity *domain.AuthIdentity) error {
	if identity.ID == "" {
		identity.ID = uuid.NewString()
	}
	row := &DBAuthIdentity{
		ID:         identity.ID,
		Provider:   string(identity.Provider),
		Identifier: identity.Identifier,
		Email:      identity.Email,
	}
	return r.db.WithContext(ctx).Create(row).Error
}

// FindByProviderIdentifier implements domain.AuthRepository
func (r *AuthRepositoryImpl) FindByProviderIdentifier(ctx context.Context, provider domain.AuthProvider, identifier string) (*domain.AuthIdentity, error) {
	var row DBAuthIdentity
	err := r.db.WithContext(ctx).
		Where("provider = ? AND identifier = ?", string(provider), identifier).
		First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return dbToIdentity(&row), nil
}

// FindByEmail implements domain.AuthRepository
func (r *AuthRepositoryImpl) FindByEmail(ctx context.Context, email string) (*domain.AuthIdentity, error) {
	var row DBAuthIdentity
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return dbToIdentity(&row), nil
}

// FindByID implements domain.AuthRepository
func (r *AuthRepositoryImpl) FindByID(ctx context.Context, id string) (*domain.AuthIdentity, error) {
	var row DBAuthIdentity
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return dbToIdentity(&row), nil
}

// UpdateEmail implements domain.AuthRepository
func (r *AuthRepositoryImpl) UpdateEmail(ctx context.Context, id, email string) error {
	return r.db.WithContext(ctx).
		Model(&DBAuthIdentity{}).
		Where("id = ?", id).
		Update("email", email).Error
}

// Delete implements domain.AuthRepository. Profiles cascade via shared key.
func (r *AuthRepositoryImpl) Delete(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&DBUserProfile{}).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&DBAuthIdentity{}).Error
}

func dbToIdentity(row *DBAuthIdentity) *domain.AuthIdentity {
	return &domain.AuthIdentity{
		ID:         row.ID,
		Provider:   domain.AuthProvider(row.Provider),
		Identifier: row.Identifier,
		Email:      row.Email,
	}
}
