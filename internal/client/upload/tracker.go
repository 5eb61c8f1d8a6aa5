// Package upload tracks the progress of a single profile image transfer.
package upload

import (
	"math"
	"net/http"
	"sync"
)

type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseUploading Phase = "uploading"
	PhaseDone      Phase = "done"
)

// State is a snapshot of the tracker. Succeeded is only meaningful once
// Phase is PhaseDone.
type State struct {
	Phase      Phase
	Percentage int
	Succeeded  bool
}

// Tracker moves idle -> uploading(0..100) -> done. Percentages never go
// down within one transfer. There is no cancelled state.
type Tracker struct {
	mu    sync.Mutex
	state State
}

func NewTracker() *Tracker {
	return &Tracker{state: State{Phase: PhaseIdle}}
}

// Start resets the tracker for a new transfer.
func (t *Tracker) Start() {
	t.mu.Lock()
	t.state = State{Phase: PhaseUploading}
	t.mu.Unlock()
}

// Progress records loaded of total bytes sent. Reports with total <= 0 and
// reports outside an active transfer are ignored.
func (t *Tracker) Progress(loaded, total int64) {
	if total <= 0 {
		return
	}
	pct := int(math.Round(100 * float64(loaded) / float64(total)))
	pct = max(0, min(100, pct))

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state.Phase != PhaseUploading {
		return
	}
	if pct > t.state.Percentage {
		t.state.Percentage = pct
	}
}

// Complete finishes the transfer with the final HTTP status. Only 200 is a
// success.
func (t *Tracker) Complete(status int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state.Phase = PhaseDone
	t.state.Succeeded = status == http.StatusOK
	if t.state.Succeeded {
		t.state.Percentage = 100
	}
}

// Fail finishes the transfer after a request error.
func (t *Tracker) Fail(error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state.Phase = PhaseDone
	t.state.Succeeded = false
}

func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}
