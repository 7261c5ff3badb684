// Package arbiter tracks which user trigger currently owns the displayed
// location result and discards late results from superseded triggers.
//
// A slow ambient-location resolution must not overwrite a result the user
// already navigated away from: every resolution captures a ticket at
// request time, and the result is applied only if the display mode has
// not changed by completion. There is no queuing and no retry; a stale
// result is simply dropped.
package arbiter

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Mode is the information source that owns the display.
type Mode int

const (
	// ModeAmbient lets ambient/background positioning drive the display.
	ModeAmbient Mode = iota
	// ModeManual restricts the display to explicit point selections.
	ModeManual
	// ModeSaved displays a persisted favorite point until the next user
	// action.
	ModeSaved
)

// String implements fmt.Stringer.
func (m Mode) String() string {
	switch m {
	case ModeAmbient:
		return "ambient"
	case ModeManual:
		return "manual"
	case ModeSaved:
		return "saved"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Ticket snapshots the arbiter state at request time.
type Ticket struct {
	Mode Mode
	gen  uint64
}

// Arbiter holds the single process-wide source mode. Mode transitions
// come only from explicit user-facing triggers, which the surrounding
// event model serializes; the mutex guards against concurrent resolution
// completions reading mid-transition state.
type Arbiter struct {
	mu   sync.Mutex
	mode Mode
	gen  uint64
}

// New returns an Arbiter starting in ambient mode.
func New() *Arbiter {
	return &Arbiter{mode: ModeAmbient}
}

// Mode returns the current display owner.
func (a *Arbiter) Mode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mode
}

// SetMode transitions to the given mode. The generation advances only on
// an actual change, so re-triggering the current mode does not invalidate
// in-flight resolutions.
func (a *Arbiter) SetMode(m Mode) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.mode == m {
		return
	}
	zap.L().Debug("arbiter: mode transition",
		zap.Stringer("from", a.mode),
		zap.Stringer("to", m),
	)
	a.mode = m
	a.gen++
}

// ToggleManual flips between ambient and manual point selection. From
// saved mode it moves to manual, the next user action.
func (a *Arbiter) ToggleManual() {
	if a.Mode() == ModeManual {
		a.SetMode(ModeAmbient)
	} else {
		a.SetMode(ModeManual)
	}
}

// OpenSaved marks a persisted favorite point as the display owner.
func (a *Arbiter) OpenSaved() { a.SetMode(ModeSaved) }

// ReturnToAmbient hands the display back to ambient positioning.
func (a *Arbiter) ReturnToAmbient() { a.SetMode(ModeAmbient) }

// Begin captures the current mode and generation for a resolution
// request.
func (a *Arbiter) Begin() Ticket {
	a.mu.Lock()
	defer a.mu.Unlock()
	return Ticket{Mode: a.mode, gen: a.gen}
}

// Commit runs apply iff the mode has not changed since the ticket was
// issued, and reports whether it ran. A superseded result is dropped
// silently; the caller may re-trigger if still relevant.
func (a *Arbiter) Commit(t Ticket, apply func()) bool {
	a.mu.Lock()
	current := a.gen
	a.mu.Unlock()

	if current != t.gen {
		zap.L().Debug("arbiter: dropping stale result",
			zap.Stringer("issued_mode", t.Mode),
		)
		return false
	}
	apply()
	return true
}
