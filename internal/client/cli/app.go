package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/dmitrijs2005/supportportal/internal/client/client"
	"github.com/dmitrijs2005/supportportal/internal/client/config"
	"github.com/dmitrijs2005/supportportal/internal/client/models"
	"github.com/dmitrijs2005/supportportal/internal/client/notification"
	"github.com/dmitrijs2005/supportportal/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/supportportal/internal/client/scope"
	"github.com/dmitrijs2005/supportportal/internal/client/services"
	"github.com/dmitrijs2005/supportportal/internal/client/session"
	"github.com/dmitrijs2005/supportportal/internal/client/upload"
	"github.com/dmitrijs2005/supportportal/internal/common"
	"github.com/dmitrijs2005/supportportal/internal/filex"
	"github.com/dmitrijs2005/supportportal/internal/logging"
)

// errNoView is returned when a management command runs after the view was
// torn down.
var errNoView = fmt.Errorf("management view closed: %w", common.ErrSessionExpired)

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	session *session.Manager

	authService  services.AuthService
	userService  services.UserService
	imageService services.ProfileImageService

	reader *bufio.Reader
	out    io.Writer

	mu sync.Mutex
	// view is the management view's scope; nil while on the login view.
	view *scope.Group
}

// NewApp wires storage, session, remote client and services from c. Logs
// go to stderr, everything meant for the operator goes to stdout.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewTextLogger(os.Stderr, c.LogLevel)
	return newApp(ctx, c, logger, os.Stdin, os.Stdout)
}

func newApp(ctx context.Context, c *config.Config, logger logging.Logger, in io.Reader, out io.Writer) (*App, error) {
	if _, err := filex.EnsureParentDir(c.DatabasePath); err != nil {
		logger.Error(ctx, "error preparing database directory", "path", c.DatabasePath, "error", err)
		return nil, err
	}

	db, err := client.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		logger.Error(ctx, "error initializing database", "path", c.DatabasePath, "error", err)
		return nil, err
	}

	store := metadata.NewSQLiteStore(db)
	mgr := session.NewManager(store, logger)
	if err := mgr.Init(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	api, err := client.NewHTTPClient(c.ServerURL,
		client.WithHTTPTimeout(c.HTTPTimeout),
		client.WithRetryMaxElapsed(c.RetryMaxElapsed),
		client.WithTokenSource(mgr.Token),
		client.WithLogger(logger),
	)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	notifier := notification.NewDispatcher(notification.NewTerminalPresenter(out), logger)

	return &App{
		config:       c,
		logger:       logger,
		db:           db,
		session:      mgr,
		authService:  services.NewAuthService(api, mgr, notifier, logger),
		userService:  services.NewUserService(api, store, mgr, notifier, logger),
		imageService: services.NewProfileImageService(api, mgr, upload.NewTracker(), notifier, logger),
		reader:       bufio.NewReader(in),
		out:          out,
	}, nil
}

// Run shows the view the session gate allows and then serves commands until
// the operator exits.
func (a *App) Run(ctx context.Context) {
	defer a.Close(ctx)

	a.println("Welcome to the Support Portal CLI (type 'help' for commands)")
	if a.session.Gate(ctx) == models.ViewManagement {
		a.enterManagement(ctx)
	} else {
		_ = a.Login(ctx)
	}
	runREPL(ctx, a, a.status, a.reader)
}

// Close tears down the management view and releases resources. The
// persisted session is kept for the next start.
func (a *App) Close(ctx context.Context) {
	a.leaveManagement()
	a.logStats(ctx)
	if err := a.authService.Close(ctx); err != nil {
		a.logger.Warn(ctx, "closing remote client", "error", err)
	}
	if err := a.db.Close(); err != nil {
		a.logger.Warn(ctx, "closing database", "error", err)
	}
}

// isLoggedIn runs the session gate. Falling back to the login view tears
// the management scope down so nothing started there can still report.
func (a *App) isLoggedIn(ctx context.Context) bool {
	if a.session.Gate(ctx) == models.ViewManagement {
		return true
	}
	a.leaveManagement()
	return false
}

// enterManagement opens the management scope and loads the directory,
// first from the local cache and then from the server.
func (a *App) enterManagement(ctx context.Context) {
	a.mu.Lock()
	if a.view == nil {
		a.view = scope.New(ctx)
	}
	viewCtx := a.view.Context()
	a.mu.Unlock()

	if err := a.userService.LoadCached(viewCtx); err != nil {
		a.logger.Warn(ctx, "loading cached users", "error", err)
	}
	if _, err := a.userService.Refresh(viewCtx, true); err != nil {
		a.logger.Debug(ctx, "initial refresh failed", "error", err)
	}
}

func (a *App) leaveManagement() {
	a.mu.Lock()
	g := a.view
	a.view = nil
	a.mu.Unlock()

	if g != nil {
		g.Close()
	}
}

// viewCtx is the context management commands run under.
func (a *App) viewCtx(ctx context.Context) context.Context {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.view == nil {
		return ctx
	}
	return a.view.Context()
}

// background starts fn inside the management scope.
func (a *App) background(fn func(ctx context.Context)) bool {
	a.mu.Lock()
	g := a.view
	a.mu.Unlock()
	if g == nil {
		return false
	}
	return g.Go(fn)
}

func (a *App) status() string {
	me, ok := a.session.CachedIdentity(context.Background())
	if !ok {
		return "(logged out)"
	}
	s := me.Username
	if st := a.imageService.Progress(); st.Phase == upload.PhaseUploading {
		s = fmt.Sprintf("%s upload %d%%", s, st.Percentage)
	}
	return "(" + s + ")"
}

// handle decides what a failed command means for the REPL. Operation
// failures were already shown as notifications; an expired session sends
// the operator back to the login view.
func (a *App) handle(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, common.ErrSessionExpired) {
		a.leaveManagement()
		a.println("Your session has expired. Please log in again.")
		return a.Login(ctx)
	}
	a.logger.Debug(ctx, "command failed", "error", err)
	return err
}

func (a *App) println(args ...any) {
	_, _ = fmt.Fprintln(a.out, args...)
}
