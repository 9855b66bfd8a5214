package api

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/ayusman/mudra/internal/finger"
	"github.com/ayusman/mudra/internal/plugin"
	"github.com/ayusman/mudra/internal/session"
	"github.com/ayusman/mudra/internal/store"
)

// newTestStore creates a new Store with a temporary database for testing.
func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() {
		s.Close()
	})

	return s
}

type fakePlugins map[string]*plugin.Plugin

func (f fakePlugins) Get(name string) (*plugin.Plugin, error) {
	p, ok := f[name]
	if !ok {
		return nil, errors.New("plugin not found")
	}
	return p, nil
}

func (f fakePlugins) List() []*plugin.Plugin {
	var out []*plugin.Plugin
	for _, p := range f {
		out = append(out, p)
	}
	return out
}

type fakeController struct {
	state     session.State
	sessionID string
	enabled   bool
	resets    int
	setErr    error
}

func (c *fakeController) State() session.State { return c.state }
func (c *fakeController) SessionID() string    { return c.sessionID }
func (c *fakeController) IsEnabled() bool      { return c.enabled }

func (c *fakeController) Reset() {
	c.resets++
	c.state = session.State{}
	c.sessionID = ""
}

func (c *fakeController) SetEnabled(enabled bool) error {
	if c.setErr != nil {
		return c.setErr
	}
	c.enabled = enabled
	return nil
}

var capturingState = session.State{
	Previous: finger.Pattern{true, true, false, false, false},
	Active:   true,
}
