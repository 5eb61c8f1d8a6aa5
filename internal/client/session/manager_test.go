package session

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/supportportal/internal/client/client"
	"github.com/dmitrijs2005/supportportal/internal/client/models"
	"github.com/dmitrijs2005/supportportal/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/supportportal/internal/common"
	"github.com/dmitrijs2005/supportportal/internal/logging"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)

func setupStore(t *testing.T) *metadata.SQLiteStore {
	t.Helper()
	db, err := client.InitDatabase(context.Background(), filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return metadata.NewSQLiteStore(db)
}

func newManager(t *testing.T) (*Manager, *metadata.SQLiteStore) {
	t.Helper()
	store := setupStore(t)
	m := NewManager(store, logging.NewDiscardLogger(), WithClock(func() time.Time { return testNow }))
	require.NoError(t, m.Init(context.Background()))
	return m, store
}

func makeToken(t *testing.T, exp *time.Time) string {
	t.Helper()
	claims := jwt.RegisteredClaims{Subject: "jdoe"}
	if exp != nil {
		claims.ExpiresAt = jwt.NewNumericDate(*exp)
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("server-side-secret"))
	require.NoError(t, err)
	return tok
}

func ptr(t time.Time) *time.Time { return &t }

func TestIsAuthenticated(t *testing.T) {
	future := testNow.Add(time.Hour)
	past := testNow.Add(-time.Second)

	tests := []struct {
		name  string
		token string
		save  bool
		want  bool
	}{
		{name: "no token", save: false, want: false},
		{name: "valid future expiry", token: makeToken(t, &future), save: true, want: true},
		{name: "expired", token: makeToken(t, &past), save: true, want: false},
		{name: "expiry equal to now is not future", token: makeToken(t, ptr(testNow)), save: true, want: false},
		{name: "no exp claim", token: makeToken(t, nil), save: true, want: false},
		{name: "malformed", token: "abc.def.ghi", save: true, want: false},
		{name: "garbage", token: "not-a-token", save: true, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := newManager(t)
			ctx := context.Background()
			if tt.save {
				require.NoError(t, m.SaveCredential(ctx, tt.token))
			}

			assert.Equal(t, tt.want, m.IsAuthenticated(ctx))
			if tt.want {
				assert.Equal(t, models.ViewManagement, m.Gate(ctx))
				assert.NoError(t, m.Check(ctx))
			} else {
				assert.Equal(t, models.ViewLogin, m.Gate(ctx))
				assert.ErrorIs(t, m.Check(ctx), common.ErrSessionExpired)
			}
		})
	}
}

func TestGate_ReevaluatedOnEveryCall(t *testing.T) {
	store := setupStore(t)
	now := testNow
	m := NewManager(store, logging.NewDiscardLogger(), WithClock(func() time.Time { return now }))
	ctx := context.Background()

	exp := testNow.Add(time.Minute)
	require.NoError(t, m.SaveCredential(ctx, makeToken(t, &exp)))
	require.Equal(t, models.ViewManagement, m.Gate(ctx))

	now = testNow.Add(2 * time.Minute)
	assert.Equal(t, models.ViewLogin, m.Gate(ctx))
}

func TestLogout_AlwaysLeavesUnauthenticated(t *testing.T) {
	m, store := newManager(t)
	ctx := context.Background()

	exp := testNow.Add(time.Hour)
	require.NoError(t, m.Establish(ctx, makeToken(t, &exp), models.User{Username: "jdoe"}))
	require.True(t, m.IsAuthenticated(ctx))

	require.NoError(t, m.Logout(ctx))
	assert.False(t, m.IsAuthenticated(ctx))
	_, ok := m.CachedIdentity(ctx)
	assert.False(t, ok)

	v, err := store.Get(ctx, common.StorageKeyUser)
	require.NoError(t, err)
	assert.Nil(t, v)

	// Logging out twice is harmless.
	require.NoError(t, m.Teardown(ctx))
	assert.False(t, m.IsAuthenticated(ctx))
}

func TestEstablish_PersistsTokenAndIdentity(t *testing.T) {
	m, store := newManager(t)
	ctx := context.Background()

	require.NoError(t, m.Establish(ctx, "abc.def.ghi", models.User{Username: "jdoe", FirstName: "John"}))

	tok, ok := m.Credential(ctx)
	require.True(t, ok)
	assert.Equal(t, "abc.def.ghi", tok)
	assert.Equal(t, "abc.def.ghi", m.Token(ctx))

	u, ok := m.CachedIdentity(ctx)
	require.True(t, ok)
	assert.Equal(t, "jdoe", u.Username)
	assert.True(t, m.IsCurrentUser("jdoe"))
	assert.False(t, m.IsCurrentUser("other"))

	// A second manager over the same store sees the session after Init.
	m2 := NewManager(store, logging.NewDiscardLogger())
	require.NoError(t, m2.Init(ctx))
	u2, ok := m2.CachedIdentity(ctx)
	require.True(t, ok)
	assert.Equal(t, "John", u2.FirstName)
}

func TestCachedIdentity_IsACopy(t *testing.T) {
	m, _ := newManager(t)
	ctx := context.Background()

	require.NoError(t, m.CacheIdentity(ctx, models.User{Username: "jdoe", Authorities: []string{"user:read"}}))

	u, _ := m.CachedIdentity(ctx)
	u.Username = "mutated"
	u.Authorities[0] = "mutated"

	again, _ := m.CachedIdentity(ctx)
	assert.Equal(t, "jdoe", again.Username)
	assert.Equal(t, "user:read", again.Authorities[0])
}

func TestInit_CorruptIdentityReadsAsAbsent(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, common.StorageKeyUser, []byte("{not json")))

	m := NewManager(store, logging.NewDiscardLogger())
	require.NoError(t, m.Init(ctx))

	_, ok := m.CachedIdentity(ctx)
	assert.False(t, ok)
}

func TestDecodeExpiry(t *testing.T) {
	exp := testNow.Add(time.Hour).Truncate(time.Second)

	got, err := DecodeExpiry(makeToken(t, &exp))
	require.NoError(t, err)
	assert.True(t, exp.Equal(got))

	_, err = DecodeExpiry("abc.def.ghi")
	assert.ErrorIs(t, err, common.ErrInvalidToken)

	_, err = DecodeExpiry(makeToken(t, nil))
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}
