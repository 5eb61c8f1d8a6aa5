// Package notificationtest provides an in-memory notification sink for
// tests of components that notify the operator.
package notificationtest

import (
	"sync"

	"github.com/dmitrijs2005/supportportal/internal/client/notification"
	"github.com/dmitrijs2005/supportportal/internal/common"
)

// Recorder keeps every notification in memory. It is both a Presenter and
// a Notifier.
type Recorder struct {
	mu    sync.Mutex
	items []notification.Notification
}

func (r *Recorder) Present(n notification.Notification) {
	r.mu.Lock()
	r.items = append(r.items, n)
	r.mu.Unlock()
}

// Notify applies the same fallback text as the Dispatcher.
func (r *Recorder) Notify(kind notification.Kind, message string) {
	if message == "" {
		message = common.FallbackMessage
	}
	r.Present(notification.Notification{Kind: kind, Message: message})
}

func (r *Recorder) All() []notification.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notification.Notification(nil), r.items...)
}

func (r *Recorder) Last() (notification.Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.items) == 0 {
		return notification.Notification{}, false
	}
	return r.items[len(r.items)-1], true
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	r.items = nil
	r.mu.Unlock()
}
