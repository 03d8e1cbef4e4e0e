package repository

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"portfolio-sync/internal/config"
	"portfolio-sync/internal/domain/user"
)

var ErrAdminNotConfigured = errors.New("admin account not configured")

// AdminRepository serves the single configured administrator.
type AdminRepository struct {
	admin user.User
}

var _ user.Repository = (*AdminRepository)(nil)

// NewAdminRepository builds the admin account from configuration. A plain
// password is hashed here so it never has to be compared in clear.
func NewAdminRepository(cfg config.AdminConfig, logger *log.Logger) (*AdminRepository, error) {
	if logger == nil {
		logger = log.Default()
	}
	username := normalizeUsername(cfg.Username)
	if username == "" {
		return nil, ErrAdminNotConfigured
	}

	hash := strings.TrimSpace(cfg.PasswordHash)
	if hash == "" {
		if cfg.Password == "" {
			return nil, ErrAdminNotConfigured
		}
		b, err := bcrypt.GenerateFromPassword([]byte(cfg.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		hash = string(b)
		logger.Printf("[Auth] ADMIN_PASSWORD set in clear, prefer ADMIN_PASSWORD_HASH | username=%s", username)
	} else if _, err := bcrypt.Cost([]byte(hash)); err != nil {
		return nil, err
	}

	return &AdminRepository{admin: user.User{
		ID:           user.IDFor(username),
		Username:     username,
		PasswordHash: hash,
	}}, nil
}

func (r *AdminRepository) GetByID(_ context.Context, id uuid.UUID) (user.User, error) {
	if r == nil || id != r.admin.ID {
		return user.User{}, user.ErrNotFound
	}
	return r.admin, nil
}

func (r *AdminRepository) GetByUsername(_ context.Context, username string) (user.User, error) {
	if r == nil || normalizeUsername(username) != r.admin.Username {
		return user.User{}, user.ErrNotFound
	}
	return r.admin, nil
}

func normalizeUsername(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
