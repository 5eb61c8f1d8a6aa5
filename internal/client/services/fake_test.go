package services

import (
	"context"
	"net/http"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/supportportal/internal/client/client"
	"github.com/dmitrijs2005/supportportal/internal/client/models"
	"github.com/dmitrijs2005/supportportal/internal/client/notification/notificationtest"
	"github.com/dmitrijs2005/supportportal/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/supportportal/internal/client/session"
	"github.com/dmitrijs2005/supportportal/internal/logging"
	"github.com/stretchr/testify/require"
)

// ---- fake client ----

// fakeClient implements client.Client over an in-memory directory so that
// refresh-after-mutation can be observed end to end.
type fakeClient struct {
	mu sync.Mutex

	directory []models.User

	LoginRet *client.LoginResult
	LoginErr error

	ListErr    error
	ListHook   func(ctx context.Context) // runs before ListUsers answers
	AddErr     error
	UpdateErr  error
	DeleteErr  error
	ResetErr   error
	ResetMsg   string
	DeleteMsg  string
	UploadRet  *client.UploadResult
	UploadErr  error
	UploadHook func(progress client.ProgressFunc)
	CloseErr   error

	ListCalls      int
	LastForm       client.UserForm
	LastDeleted    string
	LastResetEmail string
	LastUploadUser string
	LastUploadImg  models.Image
}

func newFakeClient(users ...models.User) *fakeClient {
	return &fakeClient{directory: users}
}

func (f *fakeClient) Login(ctx context.Context, creds models.Credentials) (*client.LoginResult, error) {
	return f.LoginRet, f.LoginErr
}

func (f *fakeClient) ListUsers(ctx context.Context) ([]models.User, error) {
	if f.ListHook != nil {
		f.ListHook(ctx)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ListCalls++
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	return append([]models.User{}, f.directory...), nil
}

func (f *fakeClient) AddUser(ctx context.Context, form client.UserForm) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LastForm = form
	if f.AddErr != nil {
		return nil, f.AddErr
	}
	u := form.User
	u.ID = int64(len(f.directory) + 1)
	f.directory = append(f.directory, u)
	return &u, nil
}

func (f *fakeClient) UpdateUser(ctx context.Context, form client.UserForm) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LastForm = form
	if f.UpdateErr != nil {
		return nil, f.UpdateErr
	}
	for i, u := range f.directory {
		if u.Username == form.CurrentUsername {
			next := form.User
			next.ID = u.ID
			f.directory[i] = next
			return &next, nil
		}
	}
	return nil, &client.RemoteError{Op: "update user", StatusCode: http.StatusBadRequest, Message: "User not found", Err: client.ErrRemoteFailure}
}

func (f *fakeClient) ResetPassword(ctx context.Context, email string) (*models.StatusMessage, error) {
	f.LastResetEmail = email
	if f.ResetErr != nil {
		return nil, f.ResetErr
	}
	return &models.StatusMessage{Message: f.ResetMsg}, nil
}

func (f *fakeClient) UpdateProfileImage(ctx context.Context, username string, image models.Image, progress client.ProgressFunc) (*client.UploadResult, error) {
	f.LastUploadUser = username
	f.LastUploadImg = image
	if f.UploadHook != nil {
		f.UploadHook(progress)
	}
	return f.UploadRet, f.UploadErr
}

func (f *fakeClient) DeleteUser(ctx context.Context, username string) (*models.StatusMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LastDeleted = username
	if f.DeleteErr != nil {
		return nil, f.DeleteErr
	}
	for i, u := range f.directory {
		if u.Username == username {
			f.directory = append(f.directory[:i], f.directory[i+1:]...)
			break
		}
	}
	return &models.StatusMessage{Message: f.DeleteMsg}, nil
}

func (f *fakeClient) Close() error { return f.CloseErr }

// ---- helpers ----

type fixture struct {
	client   *fakeClient
	store    *metadata.SQLiteStore
	session  *session.Manager
	recorder *notificationtest.Recorder
}

func newFixture(t *testing.T, fc *fakeClient) *fixture {
	t.Helper()
	db, err := client.InitDatabase(context.Background(), filepath.Join(t.TempDir(), "client.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	store := metadata.NewSQLiteStore(db)
	m := session.NewManager(store, logging.NewDiscardLogger())
	require.NoError(t, m.Init(context.Background()))

	return &fixture{client: fc, store: store, session: m, recorder: &notificationtest.Recorder{}}
}

func (f *fixture) users() UserService {
	return NewUserService(f.client, f.store, f.session, f.recorder, logging.NewDiscardLogger())
}

func (f *fixture) login(t *testing.T, identity models.User) {
	t.Helper()
	require.NoError(t, f.session.Establish(context.Background(), "abc.def.ghi", identity))
}

func remoteErr(status int, msg string) error {
	return &client.RemoteError{Op: "test", StatusCode: status, Message: msg, Err: client.ErrRemoteFailure}
}

func person(username, first, last, email string) models.User {
	return models.User{Username: username, FirstName: first, LastName: last, Email: email, Active: true, NotLocked: true}
}

func fiveUsers() []models.User {
	return []models.User{
		person("jdoe", "John", "Doe", "john@example.com"),
		person("asmith", "Anna", "Smith", "anna@example.com"),
		person("bwayne", "Bruce", "Wayne", "bruce@wayne.com"),
		person("ckent", "Clark", "Kent", "clark@daily.com"),
		person("dprince", "Diana", "Prince", "diana@themyscira.org"),
	}
}

var fixedNow = time.Date(2026, 10, 14, 9, 30, 0, 0, time.UTC)
