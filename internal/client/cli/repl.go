package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn(ctx context.Context) bool
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	List(ctx context.Context) error
	Refresh(ctx context.Context) error
	Search(ctx context.Context, query string) error
	Show(ctx context.Context, username string) error
	WhoAmI(ctx context.Context) error
	Add(ctx context.Context) error
	Edit(ctx context.Context, username string) error
	EditMe(ctx context.Context) error
	Delete(ctx context.Context, username string) error
	ResetPassword(ctx context.Context, email string) error
	Upload(ctx context.Context, path string) error
	Progress(ctx context.Context) error
	Stats(ctx context.Context) error
}

// gated lists the commands that need an authenticated session. The gate is
// checked on every one of them, so a token that expired while idle sends
// the operator to the login view on the next attempt.
var gated = map[string]bool{
	"l": true, "list": true, "refresh": true, "search": true, "show": true,
	"whoami": true, "add": true, "edit": true, "editme": true, "delete": true,
	"resetpassword": true, "upload": true, "progress": true, "logout": true,
}

// runREPL starts a simple read–eval–print loop for the support portal CLI.
//
// It reads a line from reader, parses the first token as the command and
// dispatches to methods on 'a'. The loop exits on EOF or when the user
// types "exit" or "quit".
//
//	Not logged in:
//	  - help                   show available commands
//	  - login                  authenticate
//	  - stats                  show remote call counters
//	  - exit | quit            leave the program
//
//	Logged in:
//	  - (l)ist                 list users from the local mirror
//	  - refresh                reload users from the server
//	  - search <text>          filter by name, email or username
//	  - show <username>        show one user
//	  - whoami                 show the logged-in user
//	  - add                    create a user
//	  - edit <username>        edit a user
//	  - editme                 edit your own profile
//	  - delete <username>      delete a user
//	  - resetpassword [email]  send a new password
//	  - upload [path]          replace your profile image
//	  - progress               show the profile image upload state
//	  - stats                  show remote call counters
//	  - logout                 log out
//	  - exit | quit            leave the program
//
// Errors returned by command handlers are not printed here; operation
// failures have been shown as notifications already.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("sp %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		arg := strings.Join(parts[1:], " ")

		if gated[cmd] && !a.isLoggedIn(ctx) {
			printlnFn("Please log in first.")
			_ = a.Login(ctx)
			continue
		}

		switch cmd {
		case "help":
			if a.isLoggedIn(ctx) {
				printlnFn("Available commands: (l)ist, refresh, search, show, whoami, add, edit, editme, delete, resetpassword, upload, progress, stats, logout, exit")
			} else {
				printlnFn("Available commands: login, stats, exit")
			}

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "l", "list":
			_ = a.List(ctx)

		case "refresh":
			_ = a.Refresh(ctx)

		case "search":
			_ = a.Search(ctx, arg)

		case "show":
			if arg == "" {
				printlnFn("Usage: show <username>")
				continue
			}
			_ = a.Show(ctx, arg)

		case "whoami":
			_ = a.WhoAmI(ctx)

		case "add":
			_ = a.Add(ctx)

		case "edit":
			if arg == "" {
				printlnFn("Usage: edit <username>")
				continue
			}
			_ = a.Edit(ctx, arg)

		case "editme":
			_ = a.EditMe(ctx)

		case "delete":
			if arg == "" {
				printlnFn("Usage: delete <username>")
				continue
			}
			_ = a.Delete(ctx, arg)

		case "resetpassword":
			_ = a.ResetPassword(ctx, arg)

		case "upload":
			_ = a.Upload(ctx, arg)

		case "progress":
			_ = a.Progress(ctx)

		case "stats":
			_ = a.Stats(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			return
		}
	}
}
