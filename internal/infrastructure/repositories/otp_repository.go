package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mislam/topinspect/domain"
)

// OtpRepositoryImpl implements domain.OtpRepository using GORM
type OtpRepositoryImpl struct {
	db *gorm.DB
}

// DBOtpChallenge keys one live challenge per phone.
type DBOtpChallenge struct {
	Phone     string    `gorm:"primaryKey;size:32"`
	Code      string    `gorm:"size:16"`
	Attempts  int
	ExpiresAt time.Time `gorm:"index"`
	CreatedAt time.Time
}

func (DBOtpChallenge) TableName() string {
	return "otp_challenges"
}

// NewOtpRepository creates a new challenge repository
func NewOtpRepository(db *gorm.DB) domain.OtpRepository {
	return &OtpRepositoryImpl{db: db}
}

// Upsert implements domain.OtpRepository. A new request always replaces any
// prior challenge for the phone: fresh code, attempts reset, new expiry.
func (r *OtpRepositoryImpl) Upsert(ctx context.Context, challenge *domain.OtpChallenge) error {
	row := &DBOtpChallenge{
		Phone:     challenge.Phone,
		Code:      challenge.Code,
		Attempts:  challenge.Attempts,
		ExpiresAt: challenge.ExpiresAt,
		CreatedAt: challenge.CreatedAt,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "phone"}},
		DoUpdates: clause.AssignmentColumns([]string{"code", "attempts", "expires_at", "created_at"}),
	}).Create(row).Error
}

// FindByPhone implements domain.OtpRepository
func (r *OtpRepositoryImpl) FindByPhone(ctx context.Context, phone string) (*domain.OtpChallenge, error) {
	var row DBOtpChallenge
	err := r.db.WithContext(ctx).Where("phone = ?", phone).First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &domain.OtpChallenge{
		Phone:     row.Phone,
		Code:      row.Code,
		Attempts:  row.Attempts,
		ExpiresAt: row.ExpiresAt,
		CreatedAt: row.CreatedAt,
	}, nil
}

// IncrementAttempts implements domain.OtpRepository. The increment runs as a
// single UPDATE; the storage engine's row-level atomicity keeps concurrent
// wrong guesses from losing counts.
func (r *OtpRepositoryImpl) IncrementAttempts(ctx context.Context, phone string) (int, error) {
	err := r.db.WithContext(ctx).
		Model(&DBOtpChallenge{}).
		Where("phone = ?", phone).
		UpdateColumn("attempts", gorm.Expr("attempts + 1")).Error
	if err != nil {
		return 0, err
	}
	var row DBOtpChallenge
	if err := r.db.WithContext(ctx).Where("phone = ?", phone).First(&row).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return 0, nil
		}
		return 0, err
	}
	return row.Attempts, nil
}

// Delete implements domain.OtpRepository
func (r *OtpRepositoryImpl) Delete(ctx context.Context, phone string) error {
	return r.db.WithContext(ctx).Where("phone = ?", phone).Delete(&DBOtpChallenge{}).Error
}
