// Package session drives the gesture-capture session from per-frame finger patterns.
package session

import (
	"fmt"
	"time"

	"github.com/ayusman/mudra/internal/finger"
)

// Trigger patterns.
var (
	// StartPattern (thumb only) opens a capture session.
	StartPattern = finger.Pattern{true, false, false, false, false}
	// EndPattern (thumb and pinky) closes a capture session.
	EndPattern = finger.Pattern{true, false, false, false, true}
)

// Phase is the coarse state of a session.
type Phase string

const (
	// PhaseIdle means no capture session is open.
	PhaseIdle Phase = "idle"
	// PhaseCapturing means pattern changes are being reported.
	PhaseCapturing Phase = "capturing"
)

// Kind identifies an event type.
type Kind string

const (
	KindStarted Kind = "session_started"
	KindChanged Kind = "pattern_changed"
	KindEnded   Kind = "session_ended"
)

// State is the session state carried between frames. The zero value is the
// initial state: not capturing, previous pattern all down.
type State struct {
	Previous finger.Pattern `json:"previous"`
	Active   bool           `json:"active"`
}

// Phase returns PhaseCapturing while a session is open.
func (s State) Phase() Phase {
	if s.Active {
		return PhaseCapturing
	}
	return PhaseIdle
}

// Event is a notification produced by a transition.
type Event struct {
	Kind    Kind           `json:"type"`
	Pattern finger.Pattern `json:"pattern"`
	// SessionID and Time are stamped by Machine; Advance leaves them empty.
	SessionID string    `json:"session_id,omitempty"`
	Time      time.Time `json:"time"`
}

// Text renders the event as a console line.
func (e Event) Text() string {
	switch e.Kind {
	case KindStarted:
		return "Starting finger print module"
	case KindChanged:
		return "Finger status (thumb to pinky): " + e.Pattern.String()
	case KindEnded:
		return "Ending finger print module"
	default:
		return fmt.Sprintf("unknown event %q", e.Kind)
	}
}

// Advance applies one frame's pattern to the state and returns the new state
// with the events it produced, in order. The checks run in a fixed order and
// each sees the effect of the previous one:
//
//  1. StartPattern while idle opens the session.
//  2. While open, a pattern that differs from the previous frame and is not
//     StartPattern is reported as changed.
//  3. EndPattern while open closes the session.
//
// The pattern always becomes the new previous pattern. A frame can therefore
// report EndPattern as a change and close the session at once.
func Advance(state State, pattern finger.Pattern) (State, []Event) {
	var events []Event

	if pattern == StartPattern && !state.Active {
		events = append(events, Event{Kind: KindStarted, Pattern: pattern})
		state.Active = true
	}

	if state.Active && pattern != state.Previous && pattern != StartPattern {
		events = append(events, Event{Kind: KindChanged, Pattern: pattern})
	}

	if pattern == EndPattern && state.Active {
		events = append(events, Event{Kind: KindEnded, Pattern: pattern})
		state.Active = false
	}

	state.Previous = pattern
	return state, events
}
