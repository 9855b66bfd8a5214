// Package sink routes session events to their consumers.
package sink

import (
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog"

	"github.com/ayusman/mudra/internal/session"
)

// Sink consumes session events. Handle is called from the frame loop and
// must not block for long.
type Sink interface {
	Handle(e session.Event)
}

// Func adapts a plain function to a Sink.
type Func func(e session.Event)

// Handle calls f(e).
func (f Func) Handle(e session.Event) {
	f(e)
}

// Multi fans events out to several sinks in registration order.
type Multi struct {
	mu    sync.RWMutex
	sinks []Sink
}

// NewMulti creates a Multi over the given sinks; nil sinks are skipped.
func NewMulti(sinks ...Sink) *Multi {
	m := &Multi{}
	for _, s := range sinks {
		m.Add(s)
	}
	return m
}

// Add registers another sink.
func (m *Multi) Add(s Sink) {
	if s == nil {
		return
	}
	m.mu.Lock()
	m.sinks = append(m.sinks, s)
	m.mu.Unlock()
}

// Len returns the number of registered sinks.
func (m *Multi) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sinks)
}

// Handle delivers e to every registered sink.
func (m *Multi) Handle(e session.Event) {
	m.mu.RLock()
	sinks := make([]Sink, len(m.sinks))
	copy(sinks, m.sinks)
	m.mu.RUnlock()

	for _, s := range sinks {
		s.Handle(e)
	}
}

// LogSink writes one structured log line per event.
type LogSink struct {
	logger zerolog.Logger
}

// NewLogSink creates a LogSink.
func NewLogSink(logger zerolog.Logger) *LogSink {
	return &LogSink{logger: logger.With().Str("component", "events").Logger()}
}

// Handle logs e at info level.
func (s *LogSink) Handle(e session.Event) {
	s.logger.Info().
		Str("type", string(e.Kind)).
		Str("pattern", e.Pattern.Bits()).
		Str("session", e.SessionID).
		Msg(e.Text())
}

// TextSink prints the plain console line of each event, one per line.
type TextSink struct {
	mu  sync.Mutex
	w   io.Writer
	err error
}

// NewTextSink creates a TextSink writing to w.
func NewTextSink(w io.Writer) *TextSink {
	return &TextSink{w: w}
}

// Handle writes e.Text() followed by a newline. The first write error is
// kept and later events are dropped.
func (s *TextSink) Handle(e session.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return
	}
	if _, err := fmt.Fprintln(s.w, e.Text()); err != nil {
		s.err = err
	}
}

// Err returns the first write error, if any.
func (s *TextSink) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}
