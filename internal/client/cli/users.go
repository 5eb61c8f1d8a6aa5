package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/dmitrijs2005/supportportal/internal/client/models"
	"github.com/dmitrijs2005/supportportal/internal/common"
)

// List prints the visible part of the mirror without contacting the server.
func (a *App) List(ctx context.Context) error {
	printUsers(a.out, a.userService.Users())
	return nil
}

func (a *App) Refresh(ctx context.Context) error {
	users, err := a.userService.Refresh(a.viewCtx(ctx), true)
	if err != nil {
		return a.handle(ctx, err)
	}
	printUsers(a.out, users)
	return nil
}

func (a *App) Search(ctx context.Context, query string) error {
	users, err := a.userService.Search(a.viewCtx(ctx), query)
	if err != nil {
		return a.handle(ctx, err)
	}
	printUsers(a.out, users)
	return nil
}

func (a *App) Show(ctx context.Context, username string) error {
	u, ok := a.findUser(username)
	if !ok {
		a.println("No such user:", username)
		return nil
	}
	a.userService.SelectUser(u)
	defer a.userService.CloseModal()

	printUser(a.out, *a.userService.View().Selected)
	return nil
}

func (a *App) WhoAmI(ctx context.Context) error {
	me, ok := a.session.CachedIdentity(ctx)
	if !ok {
		return a.handle(ctx, common.ErrSessionExpired)
	}
	printUser(a.out, me)
	return nil
}

// Add walks the operator through the create surface.
func (a *App) Add(ctx context.Context) error {
	a.userService.BeginCreate()

	u, image, err := promptUser(a.reader, a.out, models.User{Role: "ROLE_USER", Active: true, NotLocked: true})
	if err != nil {
		a.userService.CloseModal()
		return err
	}
	a.userService.StageImage(image)

	if _, err := a.userService.Create(a.viewCtx(ctx), u, nil); err != nil {
		a.userService.CloseModal()
		return a.handle(ctx, err)
	}
	return nil
}

// Edit opens the edit surface for username. Answers left empty keep the
// current values.
func (a *App) Edit(ctx context.Context, username string) error {
	current, ok := a.findUser(username)
	if !ok {
		a.println("No such user:", username)
		return nil
	}
	a.userService.BeginEdit(current)

	base := current
	for {
		u, image, err := promptUser(a.reader, a.out, base)
		if err != nil {
			a.userService.CloseModal()
			return err
		}
		a.userService.StageImage(image)

		_, err = a.userService.Update(a.viewCtx(ctx), current.Username, u, nil)
		if err == nil {
			return nil
		}
		// A failed update leaves the edit surface open; the answers typed
		// so far become the defaults of the next attempt.
		if !a.retryable(err) {
			a.userService.CloseModal()
			return a.handle(ctx, err)
		}
		if again, _ := GetYesNo(a.reader, "Try again", false, a.out); !again {
			a.userService.CloseModal()
			return a.handle(ctx, err)
		}
		base = u
	}
}

// retryable reports whether a failed mutation may be offered again from
// the still-open surface.
func (a *App) retryable(err error) bool {
	if errors.Is(err, common.ErrSessionExpired) || errors.Is(err, context.Canceled) {
		return false
	}
	return a.userService.View().ActiveModal == models.ModalEditUser
}

// EditMe edits the operator's own profile.
func (a *App) EditMe(ctx context.Context) error {
	me, ok := a.session.CachedIdentity(ctx)
	if !ok {
		return a.handle(ctx, common.ErrSessionExpired)
	}

	u, image, err := promptUser(a.reader, a.out, me)
	if err != nil {
		return err
	}

	_, err = a.userService.UpdateSelf(a.viewCtx(ctx), u, image)
	return a.handle(ctx, err)
}

func (a *App) Delete(ctx context.Context, username string) error {
	if a.session.IsCurrentUser(username) {
		a.println("You cannot delete the account you are logged in with.")
		return nil
	}
	ok, err := GetYesNo(a.reader, fmt.Sprintf("Delete %s?", username), false, a.out)
	if err != nil || !ok {
		return err
	}

	_, err = a.userService.Delete(a.viewCtx(ctx), username)
	return a.handle(ctx, err)
}

func (a *App) ResetPassword(ctx context.Context, email string) error {
	if email == "" {
		var err error
		if email, err = getSimpleText(a.reader, "Email address", a.out); err != nil {
			return err
		}
	}
	_, err := a.userService.ResetPassword(a.viewCtx(ctx), email)
	return a.handle(ctx, err)
}

func (a *App) findUser(username string) (models.User, bool) {
	for _, u := range a.userService.Users() {
		if u.Username == username {
			return u, true
		}
	}
	return models.User{}, false
}

// promptUser asks for every editable field, offering the values of base as
// defaults, plus an optional image path.
func promptUser(r *bufio.Reader, w io.Writer, base models.User) (models.User, *models.Image, error) {
	u := base.Clone()
	var err error

	fields := []struct {
		prompt string
		dst    *string
	}{
		{"First name", &u.FirstName},
		{"Last name", &u.LastName},
		{"Username", &u.Username},
		{"Email", &u.Email},
		{"Role", &u.Role},
	}
	for _, f := range fields {
		if *f.dst, err = GetTextWithDefault(r, f.prompt, *f.dst, w); err != nil {
			return models.User{}, nil, err
		}
	}

	if u.Active, err = GetYesNo(r, "Active", base.Active, w); err != nil {
		return models.User{}, nil, err
	}
	// The backend calls this flag isNonLocked.
	if u.NotLocked, err = GetYesNo(r, "Unlocked", base.NotLocked, w); err != nil {
		return models.User{}, nil, err
	}

	for {
		path, err := GetSimpleText(r, "Profile image path (empty for none)", w)
		if err != nil {
			return models.User{}, nil, err
		}
		image, err := LoadImage(path)
		if err == nil {
			return u, image, nil
		}
		_, _ = fmt.Fprintln(w, "Cannot use image:", err)
	}
}
