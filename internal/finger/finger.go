// Package finger classifies a hand pose into a per-finger extension pattern.
package finger

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ayusman/mudra/internal/detector"
)

// ErrInvalidInput is returned when the landmark set does not have the
// 21-point MediaPipe shape.
var ErrInvalidInput = errors.New("invalid landmark input")

// Finger identifies one finger; the order is the order of a Pattern.
type Finger int

const (
	Thumb Finger = iota
	Index
	Middle
	Ring
	Pinky
	NumFingers = 5
)

var fingerNames = [NumFingers]string{"thumb", "index", "middle", "ring", "pinky"}

// String returns the lowercase finger name.
func (f Finger) String() string {
	if f < 0 || int(f) >= NumFingers {
		return fmt.Sprintf("finger(%d)", int(f))
	}
	return fingerNames[f]
}

// joints maps each finger to its (tip, reference joint) landmark indices.
// The thumb is compared against its IP joint, the others against the PIP joint.
var joints = [NumFingers][2]int{
	Thumb:  {detector.ThumbTip, detector.ThumbIP},
	Index:  {detector.IndexTip, detector.IndexPIP},
	Middle: {detector.MiddleTip, detector.MiddlePIP},
	Ring:   {detector.RingTip, detector.RingPIP},
	Pinky:  {detector.PinkyTip, detector.PinkyPIP},
}

// Pattern is the extension state of thumb, index, middle, ring and pinky.
// Patterns are plain values: == compares them positionally.
type Pattern [NumFingers]bool

// None is the pattern with every finger down.
var None Pattern

// Up reports whether finger f is extended.
func (p Pattern) Up(f Finger) bool {
	return p[f]
}

// Count returns the number of extended fingers.
func (p Pattern) Count() int {
	n := 0
	for _, up := range p {
		if up {
			n++
		}
	}
	return n
}

// String renders the pattern as a boolean list, thumb first.
func (p Pattern) String() string {
	return fmt.Sprint([NumFingers]bool(p))
}

// Bits renders the pattern as five 0/1 digits, thumb first, e.g. "10001".
func (p Pattern) Bits() string {
	var b strings.Builder
	for _, up := range p {
		if up {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	return b.String()
}

// ParsePattern parses the Bits form.
func ParsePattern(s string) (Pattern, error) {
	var p Pattern
	if len(s) != NumFingers {
		return p, fmt.Errorf("pattern %q: want %d digits", s, NumFingers)
	}
	for i := 0; i < NumFingers; i++ {
		switch s[i] {
		case '1':
			p[i] = true
		case '0':
		default:
			return Pattern{}, fmt.Errorf("pattern %q: invalid digit %q", s, s[i])
		}
	}
	return p, nil
}

// MarshalJSON encodes the pattern as an array of five booleans.
func (p Pattern) MarshalJSON() ([]byte, error) {
	return json.Marshal([NumFingers]bool(p))
}

// UnmarshalJSON decodes an array of exactly five booleans.
func (p *Pattern) UnmarshalJSON(data []byte) error {
	var raw []bool
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != NumFingers {
		return fmt.Errorf("pattern: got %d values, want %d", len(raw), NumFingers)
	}
	copy(p[:], raw)
	return nil
}

// IsUp reports whether the tip landmark sits higher in the image than the
// joint landmark. Image Y grows downward, so higher means a smaller Y.
func IsUp(points []detector.Point3D, tip, joint int) bool {
	return points[tip].Y < points[joint].Y
}

// Classify derives the finger pattern from one hand's landmarks.
//
// The test is purely vertical and assumes an upright hand facing the camera;
// rotation, sideways thumb extension and occlusion are not accounted for.
// points must hold exactly 21 MediaPipe-ordered landmarks, otherwise an
// error wrapping ErrInvalidInput is returned.
func Classify(points []detector.Point3D) (Pattern, error) {
	if len(points) != detector.NumLandmarks {
		return Pattern{}, fmt.Errorf("%w: got %d landmarks, want %d", ErrInvalidInput, len(points), detector.NumLandmarks)
	}

	var p Pattern
	for f, j := range joints {
		p[f] = IsUp(points, j[0], j[1])
	}
	return p, nil
}

// ClassifyHand is Classify for a detector hand, whose fixed-size point array
// cannot be malformed. A nil hand yields None.
func ClassifyHand(h *detector.HandLandmarks) Pattern {
	if h == nil {
		return None
	}
	p, _ := Classify(h.Points[:])
	return p
}
