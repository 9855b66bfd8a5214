// Package app runs the mudra frame pipeline: capture, hand detection, finger
// classification and the gesture session, fanning session events out to sinks.
package app

import (
	"sync"

	"github.com/rs/zerolog"
	"go.uber.org/multierr"
	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/finger"
	"github.com/ayusman/mudra/internal/session"
	"github.com/ayusman/mudra/internal/sink"
	"github.com/ayusman/mudra/internal/store"
)

// Display shows annotated frames and reports when the user asks to quit.
type Display interface {
	Show(frame *gocv.Mat)
	Quit() bool
	Close() error
}

// Config holds the collaborators of an App. Camera and Detector are required
// for Run; everything else is optional.
type Config struct {
	Camera   capture.Camera
	Detector detector.Detector
	// Settings persists the enabled toggle when set.
	Settings *store.SettingRepository
	// Display receives every annotated frame when set.
	Display Display
	// PublishFrames keeps the latest annotated frame as JPEG for LatestJPEG.
	PublishFrames bool
	Sinks         []sink.Sink
	Logger        zerolog.Logger
	// MachineOptions configure the session machine.
	MachineOptions []session.Option
}

// App is the main application that turns frames into session events.
type App struct {
	camera        capture.Camera
	detector      detector.Detector
	settings      *store.SettingRepository
	display       Display
	publishFrames bool
	sinks         *sink.Multi
	logger        zerolog.Logger

	// emitMu keeps events from different frames in order at the sinks.
	emitMu sync.Mutex

	mu      sync.RWMutex
	machine *session.Machine
	current finger.Pattern
	enabled bool

	frameMu   sync.RWMutex
	frameSeq  uint64
	frameJPEG []byte
}

// New creates an App. The enabled state is loaded from Settings, defaulting
// to enabled.
func New(config Config) *App {
	a := &App{
		camera:        config.Camera,
		detector:      config.Detector,
		settings:      config.Settings,
		display:       config.Display,
		publishFrames: config.PublishFrames,
		sinks:         sink.NewMulti(config.Sinks...),
		logger:        config.Logger.With().Str("component", "app").Logger(),
		machine:       session.NewMachine(config.MachineOptions...),
		enabled:       true,
	}
	if a.settings != nil {
		a.enabled = a.settings.GetBool(store.SettingEnabled, true)
	}
	return a
}

// Subscribe adds an event sink.
func (a *App) Subscribe(s sink.Sink) {
	a.sinks.Add(s)
}

// ProcessHands runs one frame's detections through the session. Only the
// first hand is tracked; a frame without hands leaves the session untouched.
// The produced events are delivered to every sink and returned.
func (a *App) ProcessHands(hands []detector.HandLandmarks) []session.Event {
	if len(hands) == 0 {
		return nil
	}

	pattern, err := finger.Classify(hands[0].Points[:])
	if err != nil {
		a.logger.Warn().Err(err).Msg("hand skipped")
		return nil
	}

	a.emitMu.Lock()
	defer a.emitMu.Unlock()

	a.mu.Lock()
	a.current = pattern
	events := a.machine.Advance(pattern)
	a.mu.Unlock()

	for _, e := range events {
		a.sinks.Handle(e)
	}
	return events
}

// SetEnabled turns frame processing on or off and persists the choice.
func (a *App) SetEnabled(enabled bool) error {
	a.mu.Lock()
	a.enabled = enabled
	a.mu.Unlock()

	a.logger.Info().Bool("enabled", enabled).Msg("capture toggled")

	if a.settings == nil {
		return nil
	}
	return a.settings.SetBool(store.SettingEnabled, enabled)
}

// IsEnabled returns whether frames are being processed.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// State returns the current session state.
func (a *App) State() session.State {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.machine.State()
}

// SessionID returns the ID of the open session, or "".
func (a *App) SessionID() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.machine.SessionID()
}

// Reset drops any open session without emitting events.
func (a *App) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.machine.Reset()
	a.current = finger.None
	a.logger.Info().Msg("session reset")
}

// LatestJPEG returns the most recent annotated frame and its sequence number.
// It is empty unless PublishFrames is set.
func (a *App) LatestJPEG() (uint64, []byte) {
	a.frameMu.RLock()
	defer a.frameMu.RUnlock()
	return a.frameSeq, a.frameJPEG
}

// Close releases the camera, detector and display.
func (a *App) Close() error {
	var err error
	if a.camera != nil {
		err = multierr.Append(err, a.camera.Close())
	}
	if a.detector != nil {
		err = multierr.Append(err, a.detector.Close())
	}
	if a.display != nil {
		err = multierr.Append(err, a.display.Close())
	}
	return err
}
