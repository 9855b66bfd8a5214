package finger

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/ayusman/mudra/internal/detector"
)

func TestClassify_Fixtures(t *testing.T) {
	tests := []struct {
		name string
		hand detector.HandLandmarks
		want Pattern
	}{
		{"thumbs up", detector.ThumbsUpLandmarks(), Pattern{true, false, false, false, false}},
		{"open palm", detector.OpenPalmLandmarks(), Pattern{true, true, true, true, true}},
		{"fist", detector.FistLandmarks(), None},
		{"thumb and pinky", detector.ThumbPinkyLandmarks(), Pattern{true, false, false, false, true}},
		{"thumb and index", detector.ThumbIndexLandmarks(), Pattern{true, true, false, false, false}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Classify(tt.hand.Points[:])
			if err != nil {
				t.Fatalf("Classify() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Classify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClassify_EveryPattern(t *testing.T) {
	for mask := 0; mask < 32; mask++ {
		var want Pattern
		for f := range want {
			want[f] = mask&(1<<f) != 0
		}

		hand := detector.LandmarksForFingers(want)
		if got := ClassifyHand(&hand); got != want {
			t.Errorf("mask %05b: ClassifyHand() = %v, want %v", mask, got, want)
		}
	}
}

func TestClassify_Deterministic(t *testing.T) {
	hand := detector.ThumbsUpLandmarks()

	first, _ := Classify(hand.Points[:])
	for i := 0; i < 10; i++ {
		again, _ := Classify(hand.Points[:])
		if again != first {
			t.Fatalf("call %d returned %v, first call returned %v", i, again, first)
		}
	}
}

func TestClassify_DoesNotModifyInput(t *testing.T) {
	hand := detector.OpenPalmLandmarks()
	before := hand

	if _, err := Classify(hand.Points[:]); err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if hand != before {
		t.Error("Classify modified its input")
	}
}

func TestClassify_InvalidInput(t *testing.T) {
	for _, n := range []int{0, 5, 20, 22} {
		_, err := Classify(make([]detector.Point3D, n))
		if !errors.Is(err, ErrInvalidInput) {
			t.Errorf("%d points: expected ErrInvalidInput, got %v", n, err)
		}
	}
}

func TestClassify_StrictlyAbove(t *testing.T) {
	points := make([]detector.Point3D, detector.NumLandmarks)
	// Tip level with the joint is not extended.
	points[detector.IndexTip] = detector.Point3D{Y: 0.5}
	points[detector.IndexPIP] = detector.Point3D{Y: 0.5}
	// Depth and lateral offset are ignored.
	points[detector.MiddleTip] = detector.Point3D{X: 0.9, Y: 0.4, Z: 5}
	points[detector.MiddlePIP] = detector.Point3D{X: 0.1, Y: 0.5, Z: -5}

	got, err := Classify(points)
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	want := Pattern{false, false, true, false, false}
	if got != want {
		t.Errorf("Classify() = %v, want %v", got, want)
	}
}

func TestClassifyHand_Nil(t *testing.T) {
	if got := ClassifyHand(nil); got != None {
		t.Errorf("ClassifyHand(nil) = %v, want %v", got, None)
	}
}

func TestPattern_Formatting(t *testing.T) {
	p := Pattern{true, true, false, false, true}

	if got := p.String(); got != "[true true false false true]" {
		t.Errorf("String() = %q", got)
	}
	if got := p.Bits(); got != "11001" {
		t.Errorf("Bits() = %q", got)
	}
	if got := p.Count(); got != 3 {
		t.Errorf("Count() = %d, want 3", got)
	}
	if !p.Up(Pinky) || p.Up(Ring) {
		t.Error("Up() disagrees with pattern")
	}
	if Thumb.String() != "thumb" || Pinky.String() != "pinky" {
		t.Errorf("finger names = %s, %s", Thumb, Pinky)
	}
}

func TestParsePattern(t *testing.T) {
	tests := []struct {
		in      string
		want    Pattern
		wantErr bool
	}{
		{in: "10000", want: Pattern{true}},
		{in: "10001", want: Pattern{true, false, false, false, true}},
		{in: "00000", want: None},
		{in: "1000", wantErr: true},
		{in: "100001", wantErr: true},
		{in: "10x00", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePattern(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParsePattern() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParsePattern() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPattern_JSON(t *testing.T) {
	data, err := json.Marshal(Pattern{true, false, false, false, true})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(data) != "[true,false,false,false,true]" {
		t.Errorf("Marshal() = %s", data)
	}

	var short Pattern
	if err := json.Unmarshal([]byte("[true,false]"), &short); err == nil {
		t.Error("expected error for a 2-value pattern")
	}
}
