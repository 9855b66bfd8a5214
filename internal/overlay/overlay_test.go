package overlay

import (
	"image"
	"os"
	"testing"

	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/finger"
	"github.com/ayusman/mudra/internal/session"
)

func TestPixelPoint(t *testing.T) {
	tests := []struct {
		name string
		p    detector.Point3D
		want image.Point
	}{
		{name: "origin", p: detector.Point3D{X: 0, Y: 0}, want: image.Pt(0, 0)},
		{name: "center", p: detector.Point3D{X: 0.5, Y: 0.5}, want: image.Pt(320, 240)},
		{name: "clamped high", p: detector.Point3D{X: 1.2, Y: 1}, want: image.Pt(639, 479)},
		{name: "clamped low", p: detector.Point3D{X: -0.1, Y: -3}, want: image.Pt(0, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PixelPoint(tt.p, 640, 480); got != tt.want {
				t.Errorf("PixelPoint() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHandConnections(t *testing.T) {
	seen := make(map[int]bool)
	for _, c := range HandConnections {
		for _, idx := range c {
			if idx < 0 || idx >= detector.NumLandmarks {
				t.Fatalf("connection %v has out of range index", c)
			}
			seen[idx] = true
		}
	}
	if len(seen) != detector.NumLandmarks {
		t.Errorf("skeleton touches %d landmarks, want %d", len(seen), detector.NumLandmarks)
	}
}

func TestStatusText(t *testing.T) {
	p := finger.Pattern{true, true, false, false, false}

	if got := StatusText(session.State{}, p); got != "idle  11000" {
		t.Errorf("StatusText(idle) = %q", got)
	}
	if got := StatusText(session.State{Active: true}, p); got != "capturing  11000" {
		t.Errorf("StatusText(capturing) = %q", got)
	}
}

func TestDrawLandmarks(t *testing.T) {
	frame := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame.Close()

	hand := detector.OpenPalmLandmarks()
	DrawLandmarks(&frame, &hand)
	DrawStatus(&frame, session.State{Active: true}, finger.ClassifyHand(&hand))

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(frame, &gray, gocv.ColorBGRToGray)
	if gocv.CountNonZero(gray) == 0 {
		t.Error("nothing was drawn onto the frame")
	}
}

func TestDraw_IgnoresEmptyInput(t *testing.T) {
	empty := gocv.NewMat()
	defer empty.Close()

	hand := detector.OpenPalmLandmarks()
	DrawLandmarks(&empty, &hand)
	DrawLandmarks(nil, &hand)
	DrawStatus(nil, session.State{}, finger.Pattern{})
	DrawStatus(&empty, session.State{}, finger.Pattern{})
}

func TestIsQuitKey(t *testing.T) {
	for key, want := range map[int]bool{
		'q':      true,
		27:       true,
		-1:       false,
		'a':      false,
		0x100071: true, // q with NumLock on GTK
		0x10001b: true,
		0x100061: false,
	} {
		if got := IsQuitKey(key); got != want {
			t.Errorf("IsQuitKey(%d) = %v, want %v", key, got, want)
		}
	}
}

func TestPreview_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	if os.Getenv("DISPLAY") == "" && os.Getenv("WAYLAND_DISPLAY") == "" {
		t.Skip("skipping test - no display available")
	}

	p := NewPreview("mudra-test")
	defer p.Close()

	frame := gocv.NewMatWithSize(120, 160, gocv.MatTypeCV8UC3)
	defer frame.Close()
	p.Show(&frame)

	if p.Quit() {
		t.Error("Quit() should be false without a key press")
	}
	if err := p.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	p.Show(&frame)
}
