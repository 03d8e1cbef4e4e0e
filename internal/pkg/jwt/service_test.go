package jwt

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() *HMACService {
	return NewHMACService(Config{
		Issuer:        "portfolio",
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		AccessTTL:     24 * time.Hour,
		RefreshTTL:    7 * 24 * time.Hour,
	})
}

func TestHMACService_IssuePair(t *testing.T) {
	svc := newTestService()
	id := uuid.New()

	pair, err := svc.IssuePair(id, "admin")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), pair.AccessExpiresAt, 5*time.Second)

	claims, err := svc.Verify(pair.Access, KindAccess)
	require.NoError(t, err)
	got, err := claims.AdminID()
	require.NoError(t, err)
	assert.Equal(t, id, got)
	assert.Equal(t, "admin", claims.Username)
	assert.Equal(t, "portfolio", claims.Issuer)

	claims, err = svc.Verify(pair.Refresh, KindRefresh)
	require.NoError(t, err)
	assert.Equal(t, KindRefresh, claims.Kind)
	assert.Empty(t, claims.Username)
}

func TestHMACService_KindsDoNotCross(t *testing.T) {
	svc := newTestService()
	pair, err := svc.IssuePair(uuid.New(), "admin")
	require.NoError(t, err)

	_, err = svc.Verify(pair.Access, KindRefresh)
	assert.ErrorIs(t, err, ErrTokenInvalid)
	_, err = svc.Verify(pair.Refresh, KindAccess)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	same := NewHMACService(Config{AccessSecret: "s", RefreshSecret: "s", AccessTTL: time.Hour, RefreshTTL: time.Hour})
	pair, err = same.IssuePair(uuid.New(), "admin")
	require.NoError(t, err)
	_, err = same.Verify(pair.Refresh, KindAccess)
	assert.ErrorIs(t, err, ErrWrongKind)
}

func TestHMACService_PairsAreUnique(t *testing.T) {
	svc := newTestService()
	id := uuid.New()

	a, err := svc.IssuePair(id, "admin")
	require.NoError(t, err)
	b, err := svc.IssuePair(id, "admin")
	require.NoError(t, err)
	assert.NotEqual(t, a.Refresh, b.Refresh)
	assert.NotEqual(t, a.Access, b.Access)
}

func TestHMACService_Expired(t *testing.T) {
	svc := newTestService()
	issued := time.Now().Add(-25 * time.Hour)
	svc.now = func() time.Time { return issued }

	pair, err := svc.IssuePair(uuid.New(), "admin")
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.Verify(pair.Access, KindAccess)
	assert.ErrorIs(t, err, ErrTokenExpired)
	_, err = svc.Verify(pair.Refresh, KindRefresh)
	assert.NoError(t, err)
}

func TestHMACService_RejectsForeignTokens(t *testing.T) {
	other := NewHMACService(Config{Issuer: "portfolio", AccessSecret: "x", RefreshSecret: "y", AccessTTL: time.Hour, RefreshTTL: time.Hour})
	pair, err := other.IssuePair(uuid.New(), "admin")
	require.NoError(t, err)
	_, err = newTestService().Verify(pair.Access, KindAccess)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	elsewhere := NewHMACService(Config{Issuer: "someone-else", AccessSecret: "access-secret", RefreshSecret: "r", AccessTTL: time.Hour, RefreshTTL: time.Hour})
	pair, err = elsewhere.IssuePair(uuid.New(), "admin")
	require.NoError(t, err)
	_, err = newTestService().Verify(pair.Access, KindAccess)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = newTestService().Verify("not-a-token", KindAccess)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestHMACService_MissingKey(t *testing.T) {
	svc := NewHMACService(Config{RefreshSecret: "refresh", AccessTTL: time.Hour, RefreshTTL: time.Hour})
	_, err := svc.IssuePair(uuid.New(), "admin")
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = newTestService().IssuePair(uuid.Nil, "admin")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
