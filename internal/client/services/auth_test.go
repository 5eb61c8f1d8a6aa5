package services

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/dmitrijs2005/supportportal/internal/client/client"
	"github.com/dmitrijs2005/supportportal/internal/client/models"
	"github.com/dmitrijs2005/supportportal/internal/client/notification"
	"github.com/dmitrijs2005/supportportal/internal/common"
	"github.com/dmitrijs2005/supportportal/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuth(f *fixture) AuthService {
	return NewAuthService(f.client, f.session, f.recorder, logging.NewDiscardLogger())
}

func TestLogin_Success(t *testing.T) {
	fc := newFakeClient()
	fc.LoginRet = &client.LoginResult{Token: "abc.def.ghi", User: person("jdoe", "John", "Doe", "john@example.com")}
	f := newFixture(t, fc)
	ctx := context.Background()

	view, err := newAuth(f).Login(ctx, models.Credentials{Username: "jdoe", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, models.ViewManagement, view)

	tok, ok := f.session.Credential(ctx)
	require.True(t, ok)
	assert.Equal(t, "abc.def.ghi", tok)

	identity, ok := f.session.CachedIdentity(ctx)
	require.True(t, ok)
	assert.Equal(t, "jdoe", identity.Username)
	assert.Empty(t, f.recorder.All())
}

func TestLogin_Rejected(t *testing.T) {
	fc := newFakeClient()
	fc.LoginErr = &client.RemoteError{
		Op:         "login",
		StatusCode: http.StatusUnauthorized,
		Message:    "Username / password incorrect. Please try again",
		Err:        client.ErrUnauthorized,
	}
	f := newFixture(t, fc)
	ctx := context.Background()

	view, err := newAuth(f).Login(ctx, models.Credentials{Username: "jdoe", Password: "wrong"})
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrAuthenticationFailure)
	assert.ErrorIs(t, err, client.ErrUnauthorized)
	assert.Equal(t, models.ViewLogin, view)

	_, ok := f.session.Credential(ctx)
	assert.False(t, ok)

	assert.Equal(t, []notification.Notification{
		{Kind: notification.KindError, Message: "Username / password incorrect. Please try again"},
	}, f.recorder.All())
}

func TestLogin_TransportFailureUsesFallback(t *testing.T) {
	fc := newFakeClient()
	fc.LoginErr = &client.RemoteError{Op: "login", Err: errors.Join(client.ErrUnavailable, errors.New("dial tcp: refused"))}
	f := newFixture(t, fc)

	view, err := newAuth(f).Login(context.Background(), models.Credentials{Username: "jdoe", Password: "x"})
	require.ErrorIs(t, err, client.ErrUnavailable)
	assert.Equal(t, models.ViewLogin, view)

	last, _ := f.recorder.Last()
	assert.Equal(t, notification.Notification{Kind: notification.KindError, Message: common.FallbackMessage}, last)
}

func TestLogin_MissingTokenHeader(t *testing.T) {
	fc := newFakeClient()
	fc.LoginRet = &client.LoginResult{User: person("jdoe", "John", "Doe", "john@example.com")}
	f := newFixture(t, fc)
	ctx := context.Background()

	view, err := newAuth(f).Login(ctx, models.Credentials{Username: "jdoe", Password: "secret"})
	require.ErrorIs(t, err, common.ErrAuthenticationFailure)
	assert.Equal(t, models.ViewLogin, view)

	_, ok := f.session.CachedIdentity(ctx)
	assert.False(t, ok)

	last, _ := f.recorder.Last()
	assert.Equal(t, notification.KindError, last.Kind)
	assert.Equal(t, common.FallbackMessage, last.Message)
}

func TestLogout(t *testing.T) {
	f := newFixture(t, newFakeClient())
	f.login(t, person("jdoe", "John", "Doe", "john@example.com"))
	ctx := context.Background()

	require.NoError(t, newAuth(f).Logout(ctx))

	assert.False(t, f.session.IsAuthenticated(ctx))
	_, ok := f.session.Credential(ctx)
	assert.False(t, ok)
	_, ok = f.session.CachedIdentity(ctx)
	assert.False(t, ok)

	last, _ := f.recorder.Last()
	assert.Equal(t, notification.Notification{Kind: notification.KindSuccess, Message: "You have been successfully logged out."}, last)
}

func TestAuthClose(t *testing.T) {
	fc := newFakeClient()
	fc.CloseErr = errors.New("close failed")
	f := newFixture(t, fc)

	assert.EqualError(t, newAuth(f).Close(context.Background()), "close failed")
}
