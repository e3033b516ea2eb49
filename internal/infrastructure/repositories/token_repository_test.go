package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mislam/topinspect/domain"
)

func createTestToken(t *testing.T, repo domain.TokenRepository, value string) *domain.RefreshToken {
	t.Helper()

	token := &domain.RefreshToken{
		AuthID:     "auth-1",
		Token:      value,
		ExpiresAt:  time.Now().Add(time.Hour),
		LastUsedAt: time.Now().Add(-time.Hour),
	}
	if err := repo.Create(context.Background(), token); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	return token
}

func TestTokenRepositoryImpl_CreateAndFind(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTokenRepository(db)

	created := createTestToken(t, repo, "token-value-1")
	if created.ID == "" {
		t.Fatal("Create() left ID empty")
	}

	found, err := repo.FindByToken(context.Background(), "token-value-1")
	if err != nil {
		t.Fatalf("FindByToken() error = %v", err)
	}
	if found.ID != created.ID || found.AuthID != "auth-1" {
		t.Errorf("found = %+v, want id %q auth auth-1", found, created.ID)
	}
	if found.RevokedAt != nil {
		t.Error("fresh token already revoked")
	}

	if _, err := repo.FindByToken(context.Background(), "missing"); !errors.Is(err, domain.ErrRefreshTokenNotFound) {
		t.Fatalf("FindByToken() error = %v, want ErrRefreshTokenNotFound", err)
	}
}

func TestTokenRepositoryImpl_RotateKeepsRowIdentity(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTokenRepository(db)
	ctx := context.Background()

	created := createTestToken(t, repo, "old-value")

	newExpiry := time.Now().Add(2 * time.Hour)
	now := time.Now()
	rotated, err := repo.Rotate(ctx, "old-value", "new-value", newExpiry, now)
	if err != nil {
		t.Fatalf("Rotate() error = %v", err)
	}
	if !rotated {
		t.Fatal("Rotate() = false, want true")
	}

	// The old value is gone, the new value maps to the same row.
	if _, err := repo.FindByToken(ctx, "old-value"); !errors.Is(err, domain.ErrRefreshTokenNotFound) {
		t.Fatalf("old value still resolvable, error = %v", err)
	}
	found, err := repo.FindByToken(ctx, "new-value")
	if err != nil {
		t.Fatalf("FindByToken(new) error = %v", err)
	}
	if found.ID != created.ID {
		t.Errorf("rotation changed row identity: %q -> %q", created.ID, found.ID)
	}

	var count int64
	if err := db.Model(&DBRefreshToken{}).Where("auth_id = ?", "auth-1").Count(&count).Error; err != nil {
		t.Fatalf("count error = %v", err)
	}
	if count != 1 {
		t.Errorf("rows after rotation = %d, want 1", count)
	}
}

func TestTokenRepositoryImpl_RotateIsSingleUse(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTokenRepository(db)
	ctx := context.Background()

	createTestToken(t, repo, "old-value")

	first, err := repo.Rotate(ctx, "old-value", "next-1", time.Now().Add(time.Hour), time.Now())
	if err != nil {
		t.Fatalf("Rotate() error = %v", err)
	}
	second, err := repo.Rotate(ctx, "old-value", "next-2", time.Now().Add(time.Hour), time.Now())
	if err != nil {
		t.Fatalf("second Rotate() error = %v", err)
	}
	if !first || second {
		t.Fatalf("rotations = (%v, %v), want (true, false)", first, second)
	}
}

func TestTokenRepositoryImpl_RotateSkipsRevokedRows(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTokenRepository(db)
	ctx := context.Background()

	createTestToken(t, repo, "revoked-value")
	if ok, err := repo.Revoke(ctx, "revoked-value", time.Now()); err != nil || !ok {
		t.Fatalf("Revoke() = (%v, %v), want (true, nil)", ok, err)
	}

	rotated, err := repo.Rotate(ctx, "revoked-value", "new-value", time.Now().Add(time.Hour), time.Now())
	if err != nil {
		t.Fatalf("Rotate() error = %v", err)
	}
	if rotated {
		t.Fatal("Rotate() succeeded on a revoked row")
	}
}

func TestTokenRepositoryImpl_RevokeIsTerminal(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTokenRepository(db)
	ctx := context.Background()

	createTestToken(t, repo, "token-value-1")

	first, err := repo.Revoke(ctx, "token-value-1", time.Now())
	if err != nil {
		t.Fatalf("Revoke() error = %v", err)
	}
	second, err := repo.Revoke(ctx, "token-value-1", time.Now())
	if err != nil {
		t.Fatalf("second Revoke() error = %v", err)
	}
	if !first || second {
		t.Fatalf("revocations = (%v, %v), want (true, false)", first, second)
	}

	// The row survives revocation for audit.
	found, err := repo.FindByToken(ctx, "token-value-1")
	if err != nil {
		t.Fatalf("FindByToken() error = %v", err)
	}
	if found.RevokedAt == nil {
		t.Error("revoked row has nil RevokedAt")
	}

	if ok, err := repo.Revoke(ctx, "missing", time.Now()); err != nil || ok {
		t.Fatalf("Revoke(missing) = (%v, %v), want (false, nil)", ok, err)
	}
}
