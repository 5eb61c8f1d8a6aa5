// Package notification delivers operator-facing messages of a small, closed
// set of kinds to a Presenter.
package notification

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/dmitrijs2005/supportportal/internal/common"
	"github.com/dmitrijs2005/supportportal/internal/logging"
)

type Kind string

const (
	KindSuccess Kind = "SUCCESS"
	KindError   Kind = "ERROR"
	KindWarning Kind = "WARNING"
	KindInfo    Kind = "INFO"
)

func (k Kind) Valid() bool {
	switch k {
	case KindSuccess, KindError, KindWarning, KindInfo:
		return true
	}
	return false
}

type Notification struct {
	Kind    Kind
	Message string
}

// Presenter shows a notification to the operator.
type Presenter interface {
	Present(n Notification)
}

// Notifier is what the services depend on.
type Notifier interface {
	Notify(kind Kind, message string)
}

// Dispatcher forwards notifications to a Presenter. Empty messages are
// replaced with common.FallbackMessage and unknown kinds are shown as ERROR.
type Dispatcher struct {
	presenter Presenter
	logger    logging.Logger
}

func NewDispatcher(p Presenter, logger logging.Logger) *Dispatcher {
	return &Dispatcher{presenter: p, logger: logger}
}

// Notify never fails. A panicking presenter is recovered and logged.
func (d *Dispatcher) Notify(kind Kind, message string) {
	if message == "" {
		message = common.FallbackMessage
	}
	if !kind.Valid() {
		d.logger.Warn(context.Background(), "unknown notification kind", "kind", string(kind))
		kind = KindError
	}

	defer func() {
		if r := recover(); r != nil {
			d.logger.Error(context.Background(), "presenter panicked", "panic", r, "kind", string(kind))
		}
	}()
	d.presenter.Present(Notification{Kind: kind, Message: message})
}

// TerminalPresenter writes "[KIND] message" lines.
type TerminalPresenter struct {
	mu sync.Mutex
	w  io.Writer
}

func NewTerminalPresenter(w io.Writer) *TerminalPresenter {
	return &TerminalPresenter{w: w}
}

func (p *TerminalPresenter) Present(n Notification) {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, _ = fmt.Fprintf(p.w, "[%s] %s\n", n.Kind, n.Message)
}
