package sink

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"

	"github.com/ayusman/mudra/internal/finger"
	"github.com/ayusman/mudra/internal/session"
)

func changed(bits string) session.Event {
	p, err := finger.ParsePattern(bits)
	if err != nil {
		panic(err)
	}
	return session.Event{Kind: session.KindChanged, Pattern: p, SessionID: "s1"}
}

func TestMulti(t *testing.T) {
	var order []string
	a := Func(func(e session.Event) { order = append(order, "a:"+e.Pattern.Bits()) })
	b := Func(func(e session.Event) { order = append(order, "b:"+e.Pattern.Bits()) })

	m := NewMulti(a, nil)
	m.Add(b)
	m.Add(nil)

	if m.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", m.Len())
	}

	m.Handle(changed("11000"))
	m.Handle(changed("11100"))

	want := []string{"a:11000", "b:11000", "a:11100", "b:11100"}
	if diff := cmp.Diff(want, order); diff != "" {
		t.Errorf("delivery order (-want +got):\n%s", diff)
	}
}

func TestTextSink(t *testing.T) {
	var buf bytes.Buffer
	s := NewTextSink(&buf)

	s.Handle(session.Event{Kind: session.KindStarted, Pattern: session.StartPattern})
	s.Handle(changed("11000"))
	s.Handle(session.Event{Kind: session.KindEnded, Pattern: session.EndPattern})

	want := "Starting finger print module\n" +
		"Finger status (thumb to pinky): [true true false false false]\n" +
		"Ending finger print module\n"
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("output (-want +got):\n%s", diff)
	}
	if s.Err() != nil {
		t.Errorf("Err() = %v", s.Err())
	}
}

type failingWriter struct{ writes int }

func (w *failingWriter) Write(p []byte) (int, error) {
	w.writes++
	return 0, errors.New("closed")
}

func TestTextSink_StopsAfterError(t *testing.T) {
	w := &failingWriter{}
	s := NewTextSink(w)

	s.Handle(changed("11000"))
	s.Handle(changed("11100"))

	if s.Err() == nil {
		t.Fatal("expected write error")
	}
	if w.writes != 1 {
		t.Errorf("writes = %d, want 1", w.writes)
	}
}

func TestLogSink(t *testing.T) {
	var buf bytes.Buffer
	s := NewLogSink(zerolog.New(&buf))

	s.Handle(changed("10001"))

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("log line is not JSON: %v (%q)", err, buf.String())
	}

	want := map[string]any{
		"level":     "info",
		"component": "events",
		"type":      "pattern_changed",
		"pattern":   "10001",
		"session":   "s1",
		"message":   "Finger status (thumb to pinky): [true false false false true]",
	}
	if diff := cmp.Diff(want, line); diff != "" {
		t.Errorf("log fields (-want +got):\n%s", diff)
	}
	if strings.Count(buf.String(), "\n") != 1 {
		t.Errorf("expected one line, got %q", buf.String())
	}
}
