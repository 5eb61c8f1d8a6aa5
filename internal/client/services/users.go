package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/dmitrijs2005/supportportal/internal/client/client"
	"github.com/dmitrijs2005/supportportal/internal/client/models"
	"github.com/dmitrijs2005/supportportal/internal/client/notification"
	"github.com/dmitrijs2005/supportportal/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/supportportal/internal/common"
	"github.com/dmitrijs2005/supportportal/internal/logging"
)

// IdentityCache is the part of the session the directory operations need.
type IdentityCache interface {
	CachedIdentity(ctx context.Context) (models.User, bool)
	CacheIdentity(ctx context.Context, identity models.User) error
	IsCurrentUser(username string) bool
}

// UserService keeps a local mirror of the remote user directory and drives
// the management view.
//
// Every successful create, update and delete is followed by a full refresh
// before the call returns, so the mirror never holds a locally patched
// entry. Failures are reported through the notifier and also returned;
// callers must not notify again.
type UserService interface {
	LoadCached(ctx context.Context) error
	Refresh(ctx context.Context, notify bool) ([]models.User, error)
	Create(ctx context.Context, user models.User, image *models.Image) (*models.User, error)
	Update(ctx context.Context, priorUsername string, user models.User, image *models.Image) (*models.User, error)
	UpdateSelf(ctx context.Context, user models.User, image *models.Image) (*models.User, error)
	Delete(ctx context.Context, username string) (string, error)
	ResetPassword(ctx context.Context, email string) (string, error)
	Search(ctx context.Context, query string) ([]models.User, error)

	BeginCreate()
	BeginEdit(user models.User)
	SelectUser(user models.User)
	CloseModal()
	StageImage(image *models.Image)
	View() models.ViewState
	Users() []models.User
}

type userService struct {
	client   client.Client
	repo     metadata.Repository
	identity IdentityCache
	notifier notification.Notifier
	logger   logging.Logger

	// seq numbers refresh requests; applied is the newest one whose
	// response made it into the mirror.
	seq atomic.Uint64

	mu       sync.Mutex
	applied  uint64
	mirror   []models.User
	filtered []models.User
	view     models.ViewState
	inflight int
}

func NewUserService(c client.Client, repo metadata.Repository, identity IdentityCache, n notification.Notifier, logger logging.Logger) UserService {
	return &userService{
		client:   c,
		repo:     repo,
		identity: identity,
		notifier: n,
		logger:   logger,
		mirror:   []models.User{},
		view:     models.ViewState{ActiveModal: models.ModalNone},
	}
}

// LoadCached primes the mirror from the persisted copy of the last refresh.
// A copy that does not decode leaves the mirror empty.
func (s *userService) LoadCached(ctx context.Context) error {
	blob, err := s.repo.Get(ctx, common.StorageKeyUsers)
	if err != nil {
		return fmt.Errorf("load cached users: %w", err)
	}
	if len(blob) == 0 {
		return nil
	}

	var users []models.User
	if err := json.Unmarshal(blob, &users); err != nil {
		s.logger.Warn(ctx, "discarding cached users", "error", fmt.Errorf("%w: %v", common.ErrValidationGap, err))
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.applied == 0 {
		s.mirror = users
	}
	return nil
}

func (s *userService) Refresh(ctx context.Context, notify bool) ([]models.User, error) {
	seq := s.seq.Add(1)
	s.beginRefreshing()
	defer s.endRefreshing()

	users, err := s.client.ListUsers(ctx)
	if released(ctx) {
		return nil, ctx.Err()
	}
	if err != nil {
		s.notifier.Notify(notification.KindError, client.ServerMessage(err))
		return s.Users(), fmt.Errorf("refresh users: %w", err)
	}

	s.mu.Lock()
	if seq <= s.applied {
		s.mu.Unlock()
		s.logger.Debug(ctx, "dropping stale user list", "seq", seq)
		return s.Users(), nil
	}
	s.applied = seq
	s.mirror = users
	s.filtered = nil
	s.mu.Unlock()

	s.persist(ctx, users)
	if notify {
		s.notifier.Notify(notification.KindSuccess, fmt.Sprintf("%d user(s) loaded successfully.", len(users)))
	}
	return cloneUsers(users), nil
}

func (s *userService) Create(ctx context.Context, user models.User, image *models.Image) (*models.User, error) {
	form := client.UserForm{User: user, Image: s.imageFor(image)}

	created, err := s.client.AddUser(ctx, form)
	if released(ctx) {
		return nil, ctx.Err()
	}
	if err != nil {
		s.notifier.Notify(notification.KindError, client.ServerMessage(err))
		s.clearImage()
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.CloseModal()
	_, _ = s.Refresh(ctx, false)
	s.clearImage()
	s.notifier.Notify(notification.KindSuccess, fmt.Sprintf("%s %s added successfully", created.FirstName, created.LastName))
	return created, nil
}

// Update sends the edited entry addressed by priorUsername. An empty
// priorUsername falls back to the edit surface's prior username and then
// to the entry's own username.
func (s *userService) Update(ctx context.Context, priorUsername string, user models.User, image *models.Image) (*models.User, error) {
	if priorUsername == "" {
		priorUsername = s.View().PriorUsername
	}
	if priorUsername == "" {
		priorUsername = user.Username
	}
	form := client.UserForm{CurrentUsername: priorUsername, User: user, Image: s.imageFor(image)}

	updated, err := s.client.UpdateUser(ctx, form)
	if released(ctx) {
		return nil, ctx.Err()
	}
	if err != nil {
		s.notifier.Notify(notification.KindError, client.ServerMessage(err))
		s.clearImage()
		return nil, fmt.Errorf("update user: %w", err)
	}

	if s.identity.IsCurrentUser(priorUsername) {
		s.recache(ctx, *updated)
	}
	s.CloseModal()
	_, _ = s.Refresh(ctx, false)
	s.clearImage()
	s.notifier.Notify(notification.KindSuccess, fmt.Sprintf("%s %s updated successfully", updated.FirstName, updated.LastName))
	return updated, nil
}

// UpdateSelf edits the operator's own entry, addressed by the cached
// identity.
func (s *userService) UpdateSelf(ctx context.Context, user models.User, image *models.Image) (*models.User, error) {
	me, ok := s.identity.CachedIdentity(ctx)
	if !ok {
		return nil, common.ErrSessionExpired
	}
	form := client.UserForm{CurrentUsername: me.Username, User: user, Image: s.imageFor(image)}

	s.beginRefreshing()
	defer s.endRefreshing()

	updated, err := s.client.UpdateUser(ctx, form)
	if released(ctx) {
		return nil, ctx.Err()
	}
	if err != nil {
		s.notifier.Notify(notification.KindError, client.ServerMessage(err))
		s.clearImage()
		return nil, fmt.Errorf("update profile: %w", err)
	}

	if s.identity.IsCurrentUser(me.Username) {
		s.recache(ctx, *updated)
	}
	_, _ = s.Refresh(ctx, false)
	s.clearImage()
	s.notifier.Notify(notification.KindSuccess, fmt.Sprintf("%s %s updated successfully", updated.FirstName, updated.LastName))
	return updated, nil
}

// Delete removes username. The server's confirmation is shown at ERROR
// severity, then the mirror is reloaded with a count notification.
func (s *userService) Delete(ctx context.Context, username string) (string, error) {
	resp, err := s.client.DeleteUser(ctx, username)
	if released(ctx) {
		return "", ctx.Err()
	}
	if err != nil {
		s.notifier.Notify(notification.KindError, client.ServerMessage(err))
		s.clearImage()
		return "", fmt.Errorf("delete user: %w", err)
	}

	s.notifier.Notify(notification.KindError, resp.Message)
	_, _ = s.Refresh(ctx, true)
	return resp.Message, nil
}

func (s *userService) ResetPassword(ctx context.Context, email string) (string, error) {
	s.beginRefreshing()
	defer s.endRefreshing()

	resp, err := s.client.ResetPassword(ctx, email)
	if released(ctx) {
		return "", ctx.Err()
	}
	if err != nil {
		s.notifier.Notify(notification.KindWarning, client.ServerMessage(err))
		return "", fmt.Errorf("reset password: %w", err)
	}

	s.notifier.Notify(notification.KindSuccess, resp.Message)
	return resp.Message, nil
}

// Search narrows the visible list to entries matching query. An empty query
// or a query without matches reloads the full directory instead.
func (s *userService) Search(ctx context.Context, query string) ([]models.User, error) {
	var results []models.User
	if query != "" {
		s.mu.Lock()
		for _, u := range s.mirror {
			if u.Matches(query) {
				results = append(results, u.Clone())
			}
		}
		s.mu.Unlock()
	}

	if len(results) == 0 {
		s.mu.Lock()
		s.filtered = nil
		s.mu.Unlock()
		return s.Refresh(ctx, false)
	}

	s.mu.Lock()
	s.filtered = results
	s.mu.Unlock()
	return cloneUsers(results), nil
}

func (s *userService) BeginCreate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.ActiveModal = models.ModalCreateUser
	s.view.Selected = nil
	s.view.PriorUsername = ""
}

func (s *userService) BeginEdit(user models.User) {
	c := user.Clone()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.ActiveModal = models.ModalEditUser
	s.view.Selected = &c
	s.view.PriorUsername = user.Username
}

func (s *userService) SelectUser(user models.User) {
	c := user.Clone()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.ActiveModal = models.ModalUserInfo
	s.view.Selected = &c
}

// CloseModal hides any open surface and forgets what it was editing. A
// staged image survives; it is cleared by the operation that consumes it.
func (s *userService) CloseModal() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.ActiveModal = models.ModalNone
	s.view.Selected = nil
	s.view.PriorUsername = ""
}

func (s *userService) StageImage(image *models.Image) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if image.Empty() {
		s.view.StagedImage = nil
		return
	}
	c := *image
	s.view.StagedImage = &c
}

func (s *userService) View() models.ViewState {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.view
	if v.Selected != nil {
		c := v.Selected.Clone()
		v.Selected = &c
	}
	if v.StagedImage != nil {
		c := *v.StagedImage
		v.StagedImage = &c
	}
	v.Refreshing = s.inflight > 0
	return v
}

// Users returns the visible list: the search results when a search is
// active, otherwise the whole mirror.
func (s *userService) Users() []models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.filtered != nil {
		return cloneUsers(s.filtered)
	}
	return cloneUsers(s.mirror)
}

// imageFor picks the explicit image when given, otherwise the staged one.
func (s *userService) imageFor(image *models.Image) *models.Image {
	if !image.Empty() {
		return image
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.view.StagedImage.Empty() {
		return nil
	}
	c := *s.view.StagedImage
	return &c
}

func (s *userService) clearImage() {
	s.mu.Lock()
	s.view.StagedImage = nil
	s.mu.Unlock()
}

func (s *userService) recache(ctx context.Context, u models.User) {
	if err := s.identity.CacheIdentity(ctx, u); err != nil {
		s.logger.Error(ctx, "caching identity failed", "error", err)
	}
}

func (s *userService) persist(ctx context.Context, users []models.User) {
	blob, err := json.Marshal(users)
	if err == nil {
		err = s.repo.Set(ctx, common.StorageKeyUsers, blob)
	}
	if err != nil {
		s.logger.Warn(ctx, "caching users failed", "error", err)
	}
}

func (s *userService) beginRefreshing() {
	s.mu.Lock()
	s.inflight++
	s.mu.Unlock()
}

func (s *userService) endRefreshing() {
	s.mu.Lock()
	s.inflight--
	s.mu.Unlock()
}

// released reports whether the scope that issued a call went away while the
// call was in flight. Its continuation must then not run.
func released(ctx context.Context) bool {
	return ctx.Err() != nil
}

func cloneUsers(in []models.User) []models.User {
	out := make([]models.User, len(in))
	for i, u := range in {
		out[i] = u.Clone()
	}
	return out
}
