// Package services contains the application services of the support portal
// client. This file holds login and logout; users.go keeps the directory
// mirror and profile_image.go handles image uploads.
package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/supportportal/internal/client/client"
	"github.com/dmitrijs2005/supportportal/internal/client/models"
	"github.com/dmitrijs2005/supportportal/internal/client/notification"
	"github.com/dmitrijs2005/supportportal/internal/common"
	"github.com/dmitrijs2005/supportportal/internal/logging"
)

// Session is what AuthService needs from the session manager.
type Session interface {
	Establish(ctx context.Context, token string, identity models.User) error
	Logout(ctx context.Context) error
}

// AuthService defines authentication operations for the CLI.
//
// Contract:
//   - Login: authenticate against the server, persist the bearer token and
//     identity, and report which view to show next.
//   - Logout: drop the local session; no remote call is made.
//   - Close: release underlying client resources.
type AuthService interface {
	Login(ctx context.Context, creds models.Credentials) (models.View, error)
	Logout(ctx context.Context) error
	Close(ctx context.Context) error
}

type authService struct {
	client   client.Client
	session  Session
	notifier notification.Notifier
	logger   logging.Logger
}

func NewAuthService(c client.Client, session Session, n notification.Notifier, logger logging.Logger) AuthService {
	return &authService{client: c, session: session, notifier: n, logger: logger}
}

// Login never retries. Any failure is shown as an ERROR notification with
// the server's message, and the operator stays on the login view.
func (a *authService) Login(ctx context.Context, creds models.Credentials) (models.View, error) {
	res, err := a.client.Login(ctx, creds)
	if released(ctx) {
		return models.ViewLogin, ctx.Err()
	}
	if err != nil {
		a.notifier.Notify(notification.KindError, client.ServerMessage(err))
		return models.ViewLogin, fmt.Errorf("%w: %w", common.ErrAuthenticationFailure, err)
	}
	if res.Token == "" {
		a.logger.Warn(ctx, "login response carried no token", "header", common.TokenHeaderName)
		a.notifier.Notify(notification.KindError, "")
		return models.ViewLogin, fmt.Errorf("%w: no %s header", common.ErrAuthenticationFailure, common.TokenHeaderName)
	}

	if err := a.session.Establish(ctx, res.Token, res.User); err != nil {
		a.notifier.Notify(notification.KindError, "")
		return models.ViewLogin, fmt.Errorf("login: %w", err)
	}

	a.logger.Info(ctx, "logged in", "username", res.User.Username)
	return models.ViewManagement, nil
}

func (a *authService) Logout(ctx context.Context) error {
	if err := a.session.Logout(ctx); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	a.notifier.Notify(notification.KindSuccess, "You have been successfully logged out.")
	return nil
}

func (a *authService) Close(ctx context.Context) error {
	return a.client.Close()
}
