package usecase

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"portfolio-sync/internal/domain/user"
	"portfolio-sync/internal/pkg/jwt"
	ucauth "portfolio-sync/internal/usecase/auth"
)

var (
	ErrUnauthorized        = errors.New("unauthorized")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
	ErrInternal            = errors.New("internal error")
)

type AuthUsecase interface {
	Login(ctx context.Context, in ucauth.LoginInput) (user.User, jwt.Pair, error)
	Refresh(ctx context.Context, refreshToken string) (jwt.Pair, error)
	Logout(ctx context.Context, userID uuid.UUID) bool
}

type Auth struct {
	authSvc  *ucauth.Service
	users    user.Repository
	jwt      jwt.Service
	sessions *SessionRegistry
}

func NewAuthUsecase(users user.Repository, jwtSvc jwt.Service, sessions *SessionRegistry) *Auth {
	return &Auth{authSvc: ucauth.NewService(users), users: users, jwt: jwtSvc, sessions: sessions}
}

func (u *Auth) Login(ctx context.Context, in ucauth.LoginInput) (user.User, jwt.Pair, error) {
	usr, err := u.authSvc.Login(ctx, in)
	if err != nil {
		return user.User{}, jwt.Pair{}, err
	}

	pair, err := u.issue(usr)
	if err != nil {
		return user.User{}, jwt.Pair{}, err
	}
	return usr, pair, nil
}

// Refresh exchanges a refresh token for a new access/refresh pair.
func (u *Auth) Refresh(ctx context.Context, refreshToken string) (jwt.Pair, error) {
	if refreshToken == "" {
		return jwt.Pair{}, ErrUnauthorized
	}

	claims, err := u.jwt.Verify(refreshToken, jwt.KindRefresh)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return jwt.Pair{}, ErrRefreshTokenExpired
		}
		return jwt.Pair{}, ErrInvalidRefreshToken
	}
	adminID, err := claims.AdminID()
	if err != nil {
		return jwt.Pair{}, ErrInvalidRefreshToken
	}

	usr, err := u.users.GetByID(ctx, adminID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return jwt.Pair{}, ErrUnauthorized
		}
		return jwt.Pair{}, ErrInternal
	}

	return u.issue(usr)
}

// Logout drops the admin's editing session along with any unsaved drafts.
// Tokens stay valid until they expire.
func (u *Auth) Logout(_ context.Context, userID uuid.UUID) bool {
	if u.sessions == nil {
		return false
	}
	return u.sessions.Drop(userID)
}

func (u *Auth) issue(usr user.User) (jwt.Pair, error) {
	pair, err := u.jwt.IssuePair(usr.ID, usr.Username)
	if err != nil {
		return jwt.Pair{}, ErrInternal
	}
	return pair, nil
}
