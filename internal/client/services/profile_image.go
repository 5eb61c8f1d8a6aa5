package services

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrijs2005/supportportal/internal/client/client"
	"github.com/dmitrijs2005/supportportal/internal/client/models"
	"github.com/dmitrijs2005/supportportal/internal/client/notification"
	"github.com/dmitrijs2005/supportportal/internal/client/upload"
	"github.com/dmitrijs2005/supportportal/internal/common"
	"github.com/dmitrijs2005/supportportal/internal/logging"
)

// ProfileImageService replaces the operator's own profile image and reports
// transfer progress into a Tracker.
type ProfileImageService interface {
	Upload(ctx context.Context, image models.Image) error
	Progress() upload.State
}

type profileImageService struct {
	client   client.Client
	identity IdentityCache
	tracker  *upload.Tracker
	notifier notification.Notifier
	logger   logging.Logger
	now      func() time.Time
}

func NewProfileImageService(c client.Client, identity IdentityCache, tracker *upload.Tracker, n notification.Notifier, logger logging.Logger) ProfileImageService {
	return &profileImageService{
		client:   c,
		identity: identity,
		tracker:  tracker,
		notifier: n,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *profileImageService) Progress() upload.State {
	return s.tracker.State()
}

// Upload sends image for the cached identity. Only a 200 answer changes the
// identity: it is re-cached with the returned URL plus a cache-busting
// "time" query so viewers fetch the new picture.
func (s *profileImageService) Upload(ctx context.Context, image models.Image) error {
	me, ok := s.identity.CachedIdentity(ctx)
	if !ok {
		return common.ErrSessionExpired
	}

	s.tracker.Start()
	res, err := s.client.UpdateProfileImage(ctx, me.Username, image, s.tracker.Progress)
	if released(ctx) {
		return ctx.Err()
	}
	if err != nil {
		s.tracker.Fail(err)
		s.notifier.Notify(notification.KindError, client.ServerMessage(err))
		return fmt.Errorf("upload profile image: %w", err)
	}

	s.tracker.Complete(res.StatusCode)
	if res.StatusCode != http.StatusOK || res.User == nil {
		s.notifier.Notify(notification.KindError, "Unable to upload image, Please try again.")
		return fmt.Errorf("upload profile image: status %d: %w", res.StatusCode, common.ErrUploadRejected)
	}

	url := fmt.Sprintf("%s?time=%d", res.User.ProfileImageURL, s.now().UnixMilli())
	if err := s.identity.CacheIdentity(ctx, me.WithProfileImage(url)); err != nil {
		s.logger.Error(ctx, "caching identity failed", "error", err)
	}
	s.notifier.Notify(notification.KindSuccess, "Profile image updated successfully")
	return nil
}
