package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/mislam/topinspect/domain"
)

// UserRepositoryImpl implements domain.UserRepository using GORM
type UserRepositoryImpl struct {
	db *gorm.DB
}

// DBUserProfile shares its primary key with DBAuthIdentity.
type DBUserProfile struct {
	ID        string `gorm:"primaryKey;size:36"`
	Name      string `gorm:"size:255"`
	Gender    string `gorm:"size:16"`
	BirthYear int
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (DBUserProfile) TableName() string {
	return "user_profiles"
}

// NewUserRepository creates a new profile repository
func NewUserRepository(db *gorm.DB) domain.UserRepository {
	return &UserRepositoryImpl{db: db}
}

// Create implements domain.UserRepository
func (r *UserRepositoryImpl) Create(ctx context.Context, profile *domain.UserProfile) error {
	row := &DBUserProfile{
		ID:        profile.ID,
		Name:      profile.Name,
		Gender:    profile.Gender,
		BirthYear: profile.BirthYear,
	}
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return err
	}
	profile.CreatedAt = row.CreatedAt
	profile.UpdatedAt = row.UpdatedAt
	return nil
}

// FindByID implements domain.UserRepository
func (r *UserRepositoryImpl) FindByID(ctx context.Context, id string) (*domain.UserProfile, error) {
	var row DBUserProfile
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return &domain.UserProfile{
		ID:        row.ID,
		Name:      row.Name,
		Gender:    row.Gender,
		BirthYear: row.BirthYear,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}, nil
}
