package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/supportportal/internal/client/models"
	"github.com/dmitrijs2005/supportportal/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/supportportal/internal/common"
	"github.com/dmitrijs2005/supportportal/internal/logging"
)

// Manager decides whether an operator is authenticated and holds the cached
// identity. There is one Manager per process; Init loads persisted state
// and Teardown clears it.
//
// The identity is replaced wholesale on every write and handed out as a
// copy, so callers can never mutate it in place.
type Manager struct {
	store  metadata.Store
	tokens *TokenStore
	logger logging.Logger
	now    func() time.Time

	mu       sync.RWMutex
	identity *models.User
}

type ManagerOption func(*Manager)

// WithClock overrides the time source used by expiry checks.
func WithClock(now func() time.Time) ManagerOption {
	return func(m *Manager) { m.now = now }
}

func NewManager(store metadata.Store, logger logging.Logger, opts ...ManagerOption) *Manager {
	m := &Manager{
		store:  store,
		tokens: NewTokenStore(store, logger),
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Init reads the persisted identity into memory. A blob that no longer
// decodes is dropped rather than reported.
func (m *Manager) Init(ctx context.Context) error {
	u, err := m.loadIdentity(ctx)
	switch {
	case errors.Is(err, common.ErrValidationGap):
		m.logger.Warn(ctx, "discarding cached identity", "error", err)
		u = nil
	case err != nil:
		return err
	}

	m.mu.Lock()
	m.identity = u
	m.mu.Unlock()

	if m.IsAuthenticated(ctx) {
		m.logger.Info(ctx, "resumed session", "username", usernameOf(u))
	}
	return nil
}

// Teardown ends the session. It is equivalent to Logout.
func (m *Manager) Teardown(ctx context.Context) error {
	return m.Logout(ctx)
}

func (m *Manager) SaveCredential(ctx context.Context, token string) error {
	return m.tokens.SaveCredential(ctx, token)
}

func (m *Manager) Credential(ctx context.Context) (string, bool) {
	return m.tokens.Credential(ctx)
}

// Token is a TokenSource for the remote client.
func (m *Manager) Token(ctx context.Context) string {
	token, _ := m.tokens.Credential(ctx)
	return token
}

// IsAuthenticated reports whether a token is stored and its expiry lies
// strictly in the future. It never fails: a missing, malformed or expired
// token is simply "not authenticated".
func (m *Manager) IsAuthenticated(ctx context.Context) bool {
	token, ok := m.tokens.Credential(ctx)
	if !ok {
		return false
	}
	exp, err := DecodeExpiry(token)
	if err != nil {
		m.logger.Debug(ctx, "stored token is not usable", "error", err)
		return false
	}
	return exp.After(m.now())
}

// Check returns common.ErrSessionExpired when the operator has to log in
// again.
func (m *Manager) Check(ctx context.Context) error {
	if !m.IsAuthenticated(ctx) {
		return common.ErrSessionExpired
	}
	return nil
}

// Gate picks the view the operator may see right now. It is evaluated on
// every gated navigation so an externally expired token is noticed on the
// next attempt.
func (m *Manager) Gate(ctx context.Context) models.View {
	if m.IsAuthenticated(ctx) {
		return models.ViewManagement
	}
	return models.ViewLogin
}

// Establish stores the credential and identity of a fresh login in one
// transaction.
func (m *Manager) Establish(ctx context.Context, token string, identity models.User) error {
	blob, err := json.Marshal(identity)
	if err != nil {
		return fmt.Errorf("encode identity: %w", err)
	}

	err = m.store.Atomically(ctx, func(ctx context.Context, repo metadata.Repository) error {
		if err := saveCredential(ctx, repo, token); err != nil {
			return err
		}
		return repo.Set(ctx, common.StorageKeyUser, blob)
	})
	if err != nil {
		return fmt.Errorf("establish session: %w", err)
	}

	m.setIdentity(identity)
	return nil
}

// CacheIdentity persists identity wholesale and makes it the current one.
func (m *Manager) CacheIdentity(ctx context.Context, identity models.User) error {
	blob, err := json.Marshal(identity)
	if err != nil {
		return fmt.Errorf("encode identity: %w", err)
	}
	if err := m.store.Set(ctx, common.StorageKeyUser, blob); err != nil {
		return fmt.Errorf("cache identity: %w", err)
	}
	m.setIdentity(identity)
	return nil
}

// CachedIdentity returns a copy of the current identity.
func (m *Manager) CachedIdentity(ctx context.Context) (models.User, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.identity == nil {
		return models.User{}, false
	}
	return m.identity.Clone(), true
}

// IsCurrentUser reports whether username belongs to the logged-in operator.
func (m *Manager) IsCurrentUser(username string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.identity != nil && m.identity.Username == username
}

// Logout is local and synchronous: credential and identity are removed and
// no remote call is made.
func (m *Manager) Logout(ctx context.Context) error {
	m.mu.Lock()
	m.identity = nil
	m.mu.Unlock()

	return m.tokens.ClearCredential(ctx)
}

func (m *Manager) setIdentity(u models.User) {
	c := u.Clone()
	m.mu.Lock()
	m.identity = &c
	m.mu.Unlock()
}

func (m *Manager) loadIdentity(ctx context.Context) (*models.User, error) {
	blob, err := m.store.Get(ctx, common.StorageKeyUser)
	if err != nil {
		return nil, fmt.Errorf("load identity: %w", err)
	}
	if len(blob) == 0 {
		return nil, nil
	}
	var u models.User
	if err := json.Unmarshal(blob, &u); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrValidationGap, err)
	}
	return &u, nil
}

func usernameOf(u *models.User) string {
	if u == nil {
		return ""
	}
	return u.Username
}
