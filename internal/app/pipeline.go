package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/overlay"
	"github.com/ayusman/mudra/internal/session"
)

// Run opens the camera and processes frames at the camera's rate until ctx
// ends, the display asks to quit or the camera reports end of stream.
func (a *App) Run(ctx context.Context) error {
	if a.camera == nil || a.detector == nil {
		return errors.New("app: camera and detector are required")
	}

	if err := a.camera.Open(); err != nil {
		return fmt.Errorf("open camera: %w", err)
	}
	defer a.camera.Close()

	fps := a.camera.FPS()
	if fps <= 0 {
		fps = capture.DefaultFPS
	}
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	a.logger.Info().Int("fps", fps).Msg("frame loop started")
	defer a.logger.Info().Msg("frame loop stopped")

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		frame, err := a.camera.ReadFrame()
		if errors.Is(err, capture.ErrEndOfStream) {
			a.logger.Info().Msg("camera end of stream")
			return nil
		}
		if err != nil {
			a.logger.Warn().Err(err).Msg("failed to read frame")
			continue
		}

		a.ProcessFrame(frame)
		frame.Close()

		if a.display != nil && a.display.Quit() {
			a.logger.Info().Msg("quit requested from preview")
			return nil
		}
	}
}

// ProcessFrame detects hands in frame, advances the session, and, when a
// display or frame publishing is configured, annotates frame in place.
// A disabled App only annotates.
func (a *App) ProcessFrame(frame *gocv.Mat) []session.Event {
	var (
		hands  []detector.HandLandmarks
		events []session.Event
	)

	if a.IsEnabled() {
		var err error
		hands, err = a.detector.Detect(frame)
		if err != nil {
			a.logger.Warn().Err(err).Msg("hand detection failed")
		} else {
			events = a.ProcessHands(hands)
		}
	}

	if a.display == nil && !a.publishFrames {
		return events
	}

	if len(hands) > 0 {
		overlay.DrawLandmarks(frame, &hands[0])
	}
	a.mu.RLock()
	state, current := a.machine.State(), a.current
	a.mu.RUnlock()
	overlay.DrawStatus(frame, state, current)

	if a.display != nil {
		a.display.Show(frame)
	}
	if a.publishFrames {
		a.publish(frame)
	}
	return events
}

func (a *App) publish(frame *gocv.Mat) {
	buf, err := gocv.IMEncode(".jpg", *frame)
	if err != nil {
		a.logger.Debug().Err(err).Msg("failed to encode frame")
		return
	}
	data := bytes.Clone(buf.GetBytes())
	buf.Close()

	a.frameMu.Lock()
	a.frameSeq++
	a.frameJPEG = data
	a.frameMu.Unlock()
}
