package detector

import (
	"image"
	"math"
	"testing"
)

func TestToPixels(t *testing.T) {
	h := HandLandmarks{Handedness: "Left"}
	h.Points[Wrist] = Point3D{X: 0.5, Y: 0.5}
	h.Points[IndexTip] = Point3D{X: 0.25, Y: 0.75}

	hand := h.ToPixels(640, 480)

	if len(hand.Landmarks) != NumLandmarks {
		t.Fatalf("expected %d landmarks, got %d", NumLandmarks, len(hand.Landmarks))
	}
	if hand.Handedness != "Left" {
		t.Errorf("handedness not carried over: %q", hand.Handedness)
	}
	if got, want := hand.Landmarks[Wrist], image.Pt(320, 240); got != want {
		t.Errorf("wrist = %v, want %v", got, want)
	}
	if got, want := hand.Landmarks[IndexTip], image.Pt(160, 360); got != want {
		t.Errorf("index tip = %v, want %v", got, want)
	}
}

func TestPixelDistance(t *testing.T) {
	if got := PixelDistance(image.Pt(0, 0), image.Pt(3, 4)); got != 5 {
		t.Errorf("distance = %f, want 5", got)
	}
	if got := PixelDistance(image.Pt(7, 7), image.Pt(7, 7)); got != 0 {
		t.Errorf("distance of identical points = %f, want 0", got)
	}
}

func TestMakeHand_ExtensionGeometry(t *testing.T) {
	// The fixtures must actually satisfy the extension rules the
	// classifier applies, otherwise higher-level tests lie.
	tip := []int{IndexTip, MiddleTip, RingTip, PinkyTip}

	extended := MakeHand(true, true, true, true, true)
	for _, id := range tip {
		if extended.Points[id].Y >= extended.Points[id-2].Y {
			t.Errorf("landmark %d should be above its PIP when extended", id)
		}
	}
	wrist := extended.Points[Wrist]
	if dist3(wrist, extended.Points[ThumbTip]) <= dist3(wrist, extended.Points[ThumbIP]) {
		t.Error("extended thumb tip should be farther from wrist than IP")
	}

	retracted := MakeHand(false, false, false, false, false)
	for _, id := range tip {
		if retracted.Points[id].Y <= retracted.Points[id-2].Y {
			t.Errorf("landmark %d should be below its PIP when retracted", id)
		}
	}
	wrist = retracted.Points[Wrist]
	if dist3(wrist, retracted.Points[ThumbTip]) >= dist3(wrist, retracted.Points[ThumbIP]) {
		t.Error("retracted thumb tip should be closer to wrist than IP")
	}
}

func TestPinchHand_TipsClose(t *testing.T) {
	hand := PinchHand().ToPixels(640, 480)
	d := PixelDistance(hand.Landmarks[ThumbTip], hand.Landmarks[IndexTip])
	if d >= 40 {
		t.Errorf("pinch fixture tips are %f px apart, want < 40", d)
	}

	// The drawing pose must not accidentally read as a pinch.
	hand = PointingHand().ToPixels(640, 480)
	d = PixelDistance(hand.Landmarks[ThumbTip], hand.Landmarks[IndexTip])
	if d < 40 {
		t.Errorf("pointing fixture tips are %f px apart, would misread as pinch", d)
	}
}

func TestMockDetector(t *testing.T) {
	m := NewMockDetector()
	m.SetHands([]HandLandmarks{PointingHand()})

	hands, err := m.Detect(nil)
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	if len(hands) != 1 {
		t.Fatalf("expected 1 hand, got %d", len(hands))
	}
	if hands[0].Handedness != "Right" {
		t.Errorf("unexpected handedness %q", hands[0].Handedness)
	}
}

func dist3(a, b Point3D) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	dz := a.Z - b.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}
