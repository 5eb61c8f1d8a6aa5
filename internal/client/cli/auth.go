package cli

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/supportportal/internal/client/models"
	"github.com/dmitrijs2005/supportportal/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Login prompts for credentials and authenticates once. A failed attempt
// has already been shown as a notification and leaves the operator on the
// login view.
func (a *App) Login(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer wipe(password)

	view, err := a.authService.Login(ctx, models.Credentials{Username: username, Password: string(password)})
	if err != nil {
		if errors.Is(err, common.ErrAuthenticationFailure) {
			return nil
		}
		return err
	}

	if view == models.ViewManagement {
		a.enterManagement(ctx)
	}
	return nil
}

// Logout ends the session locally and leaves the management view.
func (a *App) Logout(ctx context.Context) error {
	a.leaveManagement()
	return a.authService.Logout(ctx)
}

func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
