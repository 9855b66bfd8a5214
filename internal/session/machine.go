package session

import (
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/mudra/internal/finger"
)

// Machine holds one session's state and is its only mutation point.
// It does no locking; callers that share a Machine across goroutines must
// serialize access themselves.
type Machine struct {
	state     State
	sessionID string
	now       func() time.Time
	newID     func() string
}

// Option configures a Machine.
type Option func(*Machine)

// WithClock sets the time source used to stamp events.
func WithClock(now func() time.Time) Option {
	return func(m *Machine) {
		m.now = now
	}
}

// WithIDGenerator sets the session ID source.
func WithIDGenerator(newID func() string) Option {
	return func(m *Machine) {
		m.newID = newID
	}
}

// NewMachine creates a Machine in the initial idle state.
func NewMachine(opts ...Option) *Machine {
	m := &Machine{
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Advance feeds one frame's pattern through the transition and returns the
// stamped events. Call it only for frames where a hand was detected.
func (m *Machine) Advance(pattern finger.Pattern) []Event {
	next, events := Advance(m.state, pattern)
	if len(events) == 0 {
		m.state = next
		return nil
	}

	ts := m.now()
	for i := range events {
		if events[i].Kind == KindStarted {
			m.sessionID = m.newID()
		}
		events[i].SessionID = m.sessionID
		events[i].Time = ts
	}
	if !next.Active {
		m.sessionID = ""
	}

	m.state = next
	return events
}

// State returns a copy of the current state.
func (m *Machine) State() State {
	return m.state
}

// SessionID returns the ID of the open session, or "" when idle.
func (m *Machine) SessionID() string {
	return m.sessionID
}

// Reset returns the machine to the initial idle state.
func (m *Machine) Reset() {
	m.state = State{}
	m.sessionID = ""
}
