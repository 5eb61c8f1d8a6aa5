// Package session owns the operator's authenticated session: the persisted
// bearer credential, its expiry, and the cached identity of the logged-in
// user.
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/supportportal/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/supportportal/internal/common"
	"github.com/dmitrijs2005/supportportal/internal/logging"
	"github.com/golang-jwt/jwt/v5"
)

// TokenStore persists the bearer credential under a well-known key.
// It performs no validation; expiry is only decoded on demand.
type TokenStore struct {
	repo   metadata.Repository
	logger logging.Logger
}

func NewTokenStore(repo metadata.Repository, logger logging.Logger) *TokenStore {
	return &TokenStore{repo: repo, logger: logger}
}

func (s *TokenStore) SaveCredential(ctx context.Context, token string) error {
	return saveCredential(ctx, s.repo, token)
}

func saveCredential(ctx context.Context, repo metadata.Repository, token string) error {
	if err := repo.Set(ctx, common.StorageKeyToken, []byte(token)); err != nil {
		return fmt.Errorf("save credential: %w", err)
	}
	return nil
}

// Credential returns the stored token. Storage failures are logged and
// read as "no token".
func (s *TokenStore) Credential(ctx context.Context) (string, bool) {
	v, err := s.repo.Get(ctx, common.StorageKeyToken)
	if err != nil {
		s.logger.Warn(ctx, "reading credential failed", "error", err)
		return "", false
	}
	if len(v) == 0 {
		return "", false
	}
	return string(v), true
}

// ClearCredential removes the token together with the cached identity.
func (s *TokenStore) ClearCredential(ctx context.Context) error {
	if err := s.repo.Delete(ctx, common.StorageKeyToken, common.StorageKeyUser); err != nil {
		return fmt.Errorf("clear credential: %w", err)
	}
	return nil
}

// DecodeExpiry reads the exp claim of a JWT without verifying its
// signature; the client never holds the signing key and the server checks
// every request anyway.
func DecodeExpiry(token string) (time.Time, error) {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}
	if exp == nil {
		return time.Time{}, fmt.Errorf("%w: no exp claim", common.ErrInvalidToken)
	}
	return exp.Time, nil
}
