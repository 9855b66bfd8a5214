// Package overlay draws hand landmarks and session status onto frames and
// shows them in a preview window.
package overlay

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/finger"
	"github.com/ayusman/mudra/internal/session"
)

// Connection joins two landmark indices in the hand skeleton.
type Connection [2]int

// HandConnections is the MediaPipe hand skeleton.
var HandConnections = []Connection{
	{detector.Wrist, detector.ThumbCMC},
	{detector.ThumbCMC, detector.ThumbMCP},
	{detector.ThumbMCP, detector.ThumbIP},
	{detector.ThumbIP, detector.ThumbTip},
	{detector.Wrist, detector.IndexMCP},
	{detector.IndexMCP, detector.IndexPIP},
	{detector.IndexPIP, detector.IndexDIP},
	{detector.IndexDIP, detector.IndexTip},
	{detector.IndexMCP, detector.MiddleMCP},
	{detector.MiddleMCP, detector.MiddlePIP},
	{detector.MiddlePIP, detector.MiddleDIP},
	{detector.MiddleDIP, detector.MiddleTip},
	{detector.MiddleMCP, detector.RingMCP},
	{detector.RingMCP, detector.RingPIP},
	{detector.RingPIP, detector.RingDIP},
	{detector.RingDIP, detector.RingTip},
	{detector.RingMCP, detector.PinkyMCP},
	{detector.Wrist, detector.PinkyMCP},
	{detector.PinkyMCP, detector.PinkyPIP},
	{detector.PinkyPIP, detector.PinkyDIP},
	{detector.PinkyDIP, detector.PinkyTip},
}

var (
	landmarkColor   = color.RGBA{R: 255, G: 0, B: 0, A: 0}
	connectionColor = color.RGBA{R: 0, G: 255, B: 0, A: 0}
	idleColor       = color.RGBA{R: 255, G: 255, B: 255, A: 0}
	capturingColor  = color.RGBA{R: 0, G: 200, B: 255, A: 0}
)

const (
	landmarkRadius = 4
	lineThickness  = 2
)

// PixelPoint maps a normalized landmark to pixel coordinates in a frame of
// the given size. Coordinates outside [0,1] are clamped to the frame edge.
func PixelPoint(p detector.Point3D, cols, rows int) image.Point {
	return image.Point{
		X: clamp(int(p.X*float64(cols)), 0, cols-1),
		Y: clamp(int(p.Y*float64(rows)), 0, rows-1),
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// DrawLandmarks draws the hand skeleton and its 21 landmark dots onto frame.
func DrawLandmarks(frame *gocv.Mat, hand *detector.HandLandmarks) {
	if frame == nil || frame.Empty() || hand == nil {
		return
	}

	cols, rows := frame.Cols(), frame.Rows()
	var pts [detector.NumLandmarks]image.Point
	for i, p := range hand.Points {
		pts[i] = PixelPoint(p, cols, rows)
	}

	for _, c := range HandConnections {
		gocv.Line(frame, pts[c[0]], pts[c[1]], connectionColor, lineThickness)
	}
	for _, pt := range pts {
		gocv.Circle(frame, pt, landmarkRadius, landmarkColor, -1)
	}
}

// StatusText is the banner drawn by DrawStatus.
func StatusText(state session.State, pattern finger.Pattern) string {
	return string(state.Phase()) + "  " + pattern.Bits()
}

// DrawStatus writes the session phase and the current pattern in the top-left
// corner of frame.
func DrawStatus(frame *gocv.Mat, state session.State, pattern finger.Pattern) {
	if frame == nil || frame.Empty() {
		return
	}

	c := idleColor
	if state.Active {
		c = capturingColor
	}
	gocv.PutText(frame, StatusText(state, pattern), image.Pt(10, 30), gocv.FontHersheySimplex, 0.8, c, lineThickness)
}
