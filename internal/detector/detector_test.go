package detector

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

const epsilon = 1e-9

func TestDistance(t *testing.T) {
	tests := []struct {
		name string
		a, b Point3D
		want float64
	}{
		{"same point", Point3D{X: 0.3, Y: 0.4, Z: 0.1}, Point3D{X: 0.3, Y: 0.4, Z: 0.1}, 0},
		{"3-4-5 in plane", Point3D{}, Point3D{X: 3, Y: 4}, 5},
		{"uses depth", Point3D{}, Point3D{X: 2, Y: 3, Z: 6}, 7},
		{"symmetric", Point3D{X: 2, Y: 3, Z: 6}, Point3D{}, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Distance(tt.a, tt.b); math.Abs(got-tt.want) > epsilon {
				t.Errorf("Distance() = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestNewHandLandmarks(t *testing.T) {
	t.Run("accepts exactly 21 points", func(t *testing.T) {
		points := make([]Point3D, NumLandmarks)
		for i := range points {
			points[i] = Point3D{X: float64(i) / 100, Y: float64(i) / 50}
		}

		hand, err := NewHandLandmarks(points, "Left", 0.8)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if hand.Points[PinkyTip] != points[PinkyTip] {
			t.Errorf("pinky tip = %+v, want %+v", hand.Points[PinkyTip], points[PinkyTip])
		}
		if hand.Handedness != "Left" || hand.Score != 0.8 {
			t.Errorf("metadata not preserved: %q %f", hand.Handedness, hand.Score)
		}
	})

	for _, n := range []int{0, 20, 22} {
		t.Run(fmt.Sprintf("rejects %d points", n), func(t *testing.T) {
			_, err := NewHandLandmarks(make([]Point3D, n), "Right", 1)
			if !errors.Is(err, ErrMalformedHand) {
				t.Errorf("expected ErrMalformedHand, got %v", err)
			}
		})
	}
}

func TestDecodeResponse(t *testing.T) {
	point := `{"x":0.5,"y":0.5,"z":0}`
	fullHand := `{"points":[` + strings.TrimSuffix(strings.Repeat(point+",", NumLandmarks), ",") + `],"handedness":"Right","score":0.9}`
	shortHand := `{"points":[` + point + `],"handedness":"Right","score":0.9}`

	t.Run("no hands", func(t *testing.T) {
		hands, err := decodeResponse([]byte(`{"hands":[]}`))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(hands) != 0 {
			t.Errorf("expected no hands, got %d", len(hands))
		}
	})

	t.Run("one hand", func(t *testing.T) {
		hands, err := decodeResponse([]byte(`{"hands":[` + fullHand + `]}`))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(hands) != 1 {
			t.Fatalf("expected 1 hand, got %d", len(hands))
		}
		if hands[0].Points[Wrist].X != 0.5 {
			t.Errorf("wrist X = %f, want 0.5", hands[0].Points[Wrist].X)
		}
	})

	t.Run("malformed hand fails the frame", func(t *testing.T) {
		_, err := decodeResponse([]byte(`{"hands":[` + fullHand + `,` + shortHand + `]}`))
		if !errors.Is(err, ErrMalformedHand) {
			t.Errorf("expected ErrMalformedHand, got %v", err)
		}
	})

	t.Run("invalid json", func(t *testing.T) {
		if _, err := decodeResponse([]byte(`{"hands":`)); err == nil {
			t.Error("expected parse error")
		}
	})
}

func TestMediaPipeDetector_Args(t *testing.T) {
	d := &MediaPipeDetector{
		config:     DefaultConfig(),
		scriptPath: "/opt/mudra/scripts/mediapipe_service.py",
		logger:     zerolog.Nop(),
	}

	got := strings.Join(d.args(), " ")
	want := "/opt/mudra/scripts/mediapipe_service.py --max-hands 1 --min-detection-confidence 0.7 --min-tracking-confidence 0.7"
	if got != want {
		t.Errorf("args = %q, want %q", got, want)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.MaxHands != 1 {
		t.Errorf("MaxHands = %d, want 1", cfg.MaxHands)
	}
	if cfg.MinConfidence < 0.7 || cfg.MinTrackingConf < 0.7 {
		t.Errorf("thresholds = %f/%f, want >= 0.7", cfg.MinConfidence, cfg.MinTrackingConf)
	}
}

func TestMockDetector(t *testing.T) {
	t.Run("returns empty hands by default", func(t *testing.T) {
		mock := NewMockDetector()

		hands, err := mock.Detect(nil)

		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if hands != nil {
			t.Errorf("expected nil hands, got %v", hands)
		}
	})

	t.Run("drains queue before falling back", func(t *testing.T) {
		mock := NewMockDetector()
		mock.SetHands([]HandLandmarks{OpenPalmLandmarks()})
		mock.Enqueue([]HandLandmarks{FistLandmarks()}, nil)

		first, _ := mock.Detect(nil)
		second, _ := mock.Detect(nil)
		third, _ := mock.Detect(nil)

		if len(first) != 1 || first[0] != FistLandmarks() {
			t.Errorf("first frame = %v, want fist", first)
		}
		if second != nil {
			t.Errorf("second frame = %v, want no hands", second)
		}
		if len(third) != 1 || third[0] != OpenPalmLandmarks() {
			t.Errorf("third frame = %v, want open palm", third)
		}
		if mock.Calls() != 3 {
			t.Errorf("Calls() = %d, want 3", mock.Calls())
		}
	})

	t.Run("returns configured error", func(t *testing.T) {
		mock := NewMockDetector()

		expectedErr := errors.New("detection failed")
		mock.SetError(expectedErr)

		hands, err := mock.Detect(nil)

		if err != expectedErr {
			t.Errorf("expected error %v, got %v", expectedErr, err)
		}
		if hands != nil {
			t.Errorf("expected nil hands when error is set, got %v", hands)
		}
	})

	t.Run("Close marks closed", func(t *testing.T) {
		mock := NewMockDetector()

		if err := mock.Close(); err != nil {
			t.Errorf("expected Close to return nil, got %v", err)
		}
		if !mock.Closed() {
			t.Error("expected Closed() after Close")
		}
	})

	t.Run("implements Detector interface", func(t *testing.T) {
		var _ Detector = (*MockDetector)(nil)
	})
}

func TestLandmarksForFingers(t *testing.T) {
	joints := [5][2]int{
		{ThumbTip, ThumbIP},
		{IndexTip, IndexPIP},
		{MiddleTip, MiddlePIP},
		{RingTip, RingPIP},
		{PinkyTip, PinkyPIP},
	}

	for mask := 0; mask < 32; mask++ {
		var up [5]bool
		for f := range up {
			up[f] = mask&(1<<f) != 0
		}

		hand := LandmarksForFingers(up)
		for f, pair := range joints {
			tipAbove := hand.Points[pair[0]].Y < hand.Points[pair[1]].Y
			if tipAbove != up[f] {
				t.Errorf("mask %05b finger %d: tip above joint = %v, want %v", mask, f, tipAbove, up[f])
			}
		}
	}
}

func TestThumbsUpLandmarks(t *testing.T) {
	landmarks := ThumbsUpLandmarks()

	if landmarks.Points[ThumbTip].Y >= landmarks.Points[ThumbIP].Y {
		t.Error("thumb tip should be above thumb IP (lower Y value)")
	}

	curled := [][2]int{{IndexTip, IndexPIP}, {MiddleTip, MiddlePIP}, {RingTip, RingPIP}, {PinkyTip, PinkyPIP}}
	for _, pair := range curled {
		if landmarks.Points[pair[0]].Y < landmarks.Points[pair[1]].Y {
			t.Errorf("landmark %d should sit below joint %d", pair[0], pair[1])
		}
	}
}

func TestOpenPalmLandmarks(t *testing.T) {
	landmarks := OpenPalmLandmarks()

	extended := [][2]int{
		{ThumbTip, ThumbIP},
		{IndexTip, IndexPIP},
		{MiddleTip, MiddlePIP},
		{RingTip, RingPIP},
		{PinkyTip, PinkyPIP},
	}
	for _, pair := range extended {
		if landmarks.Points[pair[0]].Y >= landmarks.Points[pair[1]].Y {
			t.Errorf("landmark %d should sit above joint %d", pair[0], pair[1])
		}
	}

	t.Run("fingers are properly ordered left to right", func(t *testing.T) {
		if landmarks.Points[PinkyMCP].X >= landmarks.Points[RingMCP].X {
			t.Error("pinky should be to the left of ring finger")
		}
		if landmarks.Points[RingMCP].X >= landmarks.Points[MiddleMCP].X {
			t.Error("ring should be to the left of middle finger")
		}
		if landmarks.Points[MiddleMCP].X >= landmarks.Points[IndexMCP].X {
			t.Error("middle should be to the left of index finger")
		}
	})
}
