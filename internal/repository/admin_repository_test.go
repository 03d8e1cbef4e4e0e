package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"portfolio-sync/internal/config"
	"portfolio-sync/internal/domain/user"
)

func TestAdminRepository_HashesPlainPassword(t *testing.T) {
	repo, err := NewAdminRepository(config.AdminConfig{Username: " Admin ", Password: "s3cret!"}, quietLogger())
	require.NoError(t, err)

	u, err := repo.GetByUsername(context.Background(), "admin")
	require.NoError(t, err)
	assert.Equal(t, "admin", u.Username)
	assert.Equal(t, user.IDFor("admin"), u.ID)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("s3cret!")))

	byID, err := repo.GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, u, byID)
}

func TestAdminRepository_UnknownUser(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("pw"), bcrypt.MinCost)
	require.NoError(t, err)
	repo, err := NewAdminRepository(config.AdminConfig{Username: "admin", PasswordHash: string(hash)}, quietLogger())
	require.NoError(t, err)

	_, err = repo.GetByUsername(context.Background(), "someone")
	assert.ErrorIs(t, err, user.ErrNotFound)
	_, err = repo.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, user.ErrNotFound)
}

func TestAdminRepository_RejectsBadConfig(t *testing.T) {
	_, err := NewAdminRepository(config.AdminConfig{Username: "admin"}, quietLogger())
	assert.ErrorIs(t, err, ErrAdminNotConfigured)

	_, err = NewAdminRepository(config.AdminConfig{Password: "pw"}, quietLogger())
	assert.ErrorIs(t, err, ErrAdminNotConfigured)

	_, err = NewAdminRepository(config.AdminConfig{Username: "admin", PasswordHash: "plain"}, quietLogger())
	assert.Error(t, err)
}
