package plugin

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ayusman/mudra/internal/session"
	"github.com/ayusman/mudra/internal/store"
)

// BindingLister looks up the enabled bindings for an event.
type BindingLister interface {
	ListByEvent(event string) ([]*store.Binding, error)
}

// Result records one finished plugin run.
type Result struct {
	BindingID string
	Plugin    string
	Action    string
	Event     session.Kind
	Response  *Response
	Err       error
}

// Dispatcher is an event sink that runs the plugin actions bound to each
// session event. Runs are asynchronous; there is no ordering between them.
type Dispatcher struct {
	bindings BindingLister
	plugins  *Manager
	executor *Executor
	logger   zerolog.Logger

	// OnResult, when set, is called after every run.
	OnResult func(Result)

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(bindings BindingLister, plugins *Manager, executor *Executor, logger zerolog.Logger) *Dispatcher {
	ctx, cancel := context.WithCancel(context.Background())
	return &Dispatcher{
		bindings: bindings,
		plugins:  plugins,
		executor: executor,
		logger:   logger.With().Str("component", "dispatcher").Logger(),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Handle starts a run for every enabled binding of e's kind.
func (d *Dispatcher) Handle(e session.Event) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}

	bindings, err := d.bindings.ListByEvent(string(e.Kind))
	if err != nil {
		d.logger.Error().Err(err).Str("event", string(e.Kind)).Msg("failed to list bindings")
		return
	}

	for _, b := range bindings {
		p, err := d.plugins.Get(b.PluginName)
		if err != nil {
			d.logger.Warn().Err(err).Str("binding", b.ID).Str("plugin", b.PluginName).Msg("binding skipped")
			continue
		}
		if !p.HasAction(b.ActionName) {
			d.logger.Warn().Str("binding", b.ID).Str("plugin", b.PluginName).Str("action", b.ActionName).
				Msg("binding skipped: plugin has no such action")
			continue
		}
		if !p.Accepts(string(e.Kind)) {
			d.logger.Debug().Str("binding", b.ID).Str("plugin", b.PluginName).Msg("plugin does not accept event")
			continue
		}

		req := NewRequest(b, e)
		d.wg.Add(1)
		go d.run(b, p, req, e.Kind)
	}
}

func (d *Dispatcher) run(b *store.Binding, p *Plugin, req *Request, kind session.Kind) {
	defer d.wg.Done()

	start := time.Now()
	resp, err := d.executor.Execute(d.ctx, p, req)
	if err == nil && !resp.Success {
		err = errors.New(resp.Error)
	}

	log := d.logger.With().
		Str("binding", b.ID).
		Str("plugin", p.Manifest.Name).
		Str("action", b.ActionName).
		Str("event", string(kind)).
		Dur("took", time.Since(start)).
		Logger()
	if err != nil {
		log.Error().Err(err).Msg("plugin action failed")
	} else {
		log.Debug().Msg("plugin action done")
	}

	if d.OnResult != nil {
		d.OnResult(Result{
			BindingID: b.ID,
			Plugin:    p.Manifest.Name,
			Action:    b.ActionName,
			Event:     kind,
			Response:  resp,
			Err:       err,
		})
	}
}

// Wait blocks until every started run has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Close stops accepting events, cancels in-flight runs and waits for them.
func (d *Dispatcher) Close() error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	d.cancel()
	d.wg.Wait()
	return nil
}

// NewRequest builds the plugin request for a binding fired by e.
func NewRequest(b *store.Binding, e session.Event) *Request {
	req := &Request{
		Action:    b.ActionName,
		Event:     string(e.Kind),
		Pattern:   e.Pattern.Bits(),
		Fingers:   e.Pattern[:],
		SessionID: e.SessionID,
		Config:    b.Config,
	}
	if !e.Time.IsZero() {
		req.Time = e.Time.Format(time.RFC3339Nano)
	}
	return req
}
