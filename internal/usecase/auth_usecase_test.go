package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"portfolio-sync/internal/domain/user"
	"portfolio-sync/internal/pkg/jwt"
	"portfolio-sync/internal/pubsub"
	"portfolio-sync/internal/repository"
	"portfolio-sync/internal/storage"
	ucauth "portfolio-sync/internal/usecase/auth"
)

type mockUserRepo struct {
	u   user.User
	err error
}

func (m mockUserRepo) GetByID(_ context.Context, id uuid.UUID) (user.User, error) {
	if m.err != nil {
		return user.User{}, m.err
	}
	if id != m.u.ID {
		return user.User{}, user.ErrNotFound
	}
	return m.u, nil
}

func (m mockUserRepo) GetByUsername(_ context.Context, username string) (user.User, error) {
	if m.err != nil {
		return user.User{}, m.err
	}
	if username != m.u.Username {
		return user.User{}, user.ErrNotFound
	}
	return m.u, nil
}

func testTokens() *jwt.HMACService {
	return jwt.NewHMACService(jwt.Config{
		Issuer:        "portfolio",
		AccessSecret:  "a",
		RefreshSecret: "r",
		AccessTTL:     time.Hour,
		RefreshTTL:    2 * time.Hour,
	})
}

func newAuthFixture(t *testing.T) (*Auth, user.User, *jwt.HMACService, *SessionRegistry) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	require.NoError(t, err)
	u := user.User{ID: user.IDFor("admin"), Username: "admin", PasswordHash: string(hash)}

	svc := testTokens()
	reg := NewSessionRegistry(repository.NewContentSlots(storage.NewMemory().Session(), quietLogger(), nil), pubsub.NewBus(), quietLogger(), nil)
	return NewAuthUsecase(mockUserRepo{u: u}, svc, reg), u, svc, reg
}

func TestAuth_Login(t *testing.T) {
	uc, u, svc, _ := newAuthFixture(t)

	got, pair, err := uc.Login(context.Background(), ucauth.LoginInput{Username: "admin", Password: "correct horse"})
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Empty(t, got.PasswordHash)
	assert.False(t, pair.AccessExpiresAt.IsZero())

	claims, err := svc.Verify(pair.Access, jwt.KindAccess)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Username)
	id, err := claims.AdminID()
	require.NoError(t, err)
	assert.Equal(t, u.ID, id)

	_, err = svc.Verify(pair.Refresh, jwt.KindRefresh)
	require.NoError(t, err)
}

func TestAuth_LoginRejectsBadCredentials(t *testing.T) {
	uc, _, _, _ := newAuthFixture(t)
	for _, in := range []ucauth.LoginInput{
		{Username: "admin", Password: "wrong"},
		{Username: "nobody", Password: "correct horse"},
		{Username: "", Password: "correct horse"},
		{Username: "admin", Password: ""},
	} {
		_, _, err := uc.Login(context.Background(), in)
		assert.ErrorIs(t, err, ucauth.ErrInvalidCredentials, "%+v", in)
	}
}

func TestAuth_LoginRepositoryFailure(t *testing.T) {
	uc := NewAuthUsecase(mockUserRepo{err: errors.New("down")}, testTokens(), nil)
	_, _, err := uc.Login(context.Background(), ucauth.LoginInput{Username: "admin", Password: "x"})
	assert.ErrorIs(t, err, ucauth.ErrInternal)
}

func TestAuth_Refresh(t *testing.T) {
	uc, u, svc, _ := newAuthFixture(t)
	_, pair, err := uc.Login(context.Background(), ucauth.LoginInput{Username: "admin", Password: "correct horse"})
	require.NoError(t, err)

	next, err := uc.Refresh(context.Background(), pair.Refresh)
	require.NoError(t, err)
	assert.NotEqual(t, pair.Refresh, next.Refresh)
	claims, err := svc.Verify(next.Access, jwt.KindAccess)
	require.NoError(t, err)
	id, err := claims.AdminID()
	require.NoError(t, err)
	assert.Equal(t, u.ID, id)

	_, err = uc.Refresh(context.Background(), pair.Access)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
	_, err = uc.Refresh(context.Background(), "")
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, err = uc.Refresh(context.Background(), "garbage")
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestAuth_RefreshForUnknownAdmin(t *testing.T) {
	svc := testTokens()
	uc := NewAuthUsecase(mockUserRepo{u: user.User{ID: uuid.New(), Username: "admin"}}, svc, nil)

	pair, err := svc.IssuePair(uuid.New(), "ghost")
	require.NoError(t, err)
	_, err = uc.Refresh(context.Background(), pair.Refresh)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestAuth_LogoutDropsSession(t *testing.T) {
	uc, u, _, reg := newAuthFixture(t)
	_, err := reg.Get(context.Background(), u.ID)
	require.NoError(t, err)

	assert.True(t, uc.Logout(context.Background(), u.ID))
	assert.Equal(t, 0, reg.Len())
	assert.False(t, uc.Logout(context.Background(), u.ID))
}
