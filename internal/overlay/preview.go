package overlay

import (
	"sync"

	"gocv.io/x/gocv"
)

// Keys that close the preview.
const (
	KeyQuit   = 'q'
	KeyEscape = 27
)

// Preview is an OpenCV window showing annotated frames.
type Preview struct {
	mu     sync.Mutex
	window *gocv.Window
	quit   bool
}

// NewPreview opens a window with the given title.
func NewPreview(title string) *Preview {
	return &Preview{window: gocv.NewWindow(title)}
}

// Show displays frame and polls the keyboard once.
func (p *Preview) Show(frame *gocv.Mat) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.window == nil || frame == nil || frame.Empty() {
		return
	}
	p.window.IMShow(*frame)
	if IsQuitKey(p.window.WaitKey(1)) {
		p.quit = true
	}
}

// Quit reports whether the quit key has been pressed.
func (p *Preview) Quit() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.quit
}

// Close destroys the window.
func (p *Preview) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.window == nil {
		return nil
	}
	err := p.window.Close()
	p.window = nil
	return err
}

// IsQuitKey reports whether key, as returned by WaitKey, closes the preview.
// Modifier bits above the low byte are ignored.
func IsQuitKey(key int) bool {
	key &= 0xFF
	return key == KeyQuit || key == KeyEscape
}
