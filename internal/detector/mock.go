package detector

import (
	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	hands []HandLandmarks
	err   error
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by Detect.
func (m *MockDetector) SetHands(hands []HandLandmarks) {
	m.hands = hands
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.err = err
}

// Detect returns the pre-configured hands or error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.hands, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// MakeHand builds a synthetic right hand with the requested finger
// extension states, in normalized coordinates with the wrist near the
// bottom of the frame. The poses satisfy the classifier's extension rules:
// non-thumb fingers extend upward (tip above PIP), the thumb extends
// sideways far enough that the wrist-to-tip distance exceeds wrist-to-IP.
func MakeHand(thumb, index, middle, ring, pinky bool) HandLandmarks {
	h := HandLandmarks{Handedness: "Right", Score: 0.95}

	h.Points[Wrist] = Point3D{X: 0.50, Y: 0.80}
	h.Points[ThumbCMC] = Point3D{X: 0.58, Y: 0.74}
	h.Points[ThumbMCP] = Point3D{X: 0.64, Y: 0.68}
	if thumb {
		h.Points[ThumbIP] = Point3D{X: 0.70, Y: 0.62}
		h.Points[ThumbTip] = Point3D{X: 0.76, Y: 0.56}
	} else {
		h.Points[ThumbIP] = Point3D{X: 0.60, Y: 0.66}
		h.Points[ThumbTip] = Point3D{X: 0.58, Y: 0.68}
	}

	fingers := []struct {
		mcp      int
		x        float64
		extended bool
	}{
		{IndexMCP, 0.58, index},
		{MiddleMCP, 0.52, middle},
		{RingMCP, 0.46, ring},
		{PinkyMCP, 0.40, pinky},
	}
	for _, f := range fingers {
		h.Points[f.mcp] = Point3D{X: f.x, Y: 0.60}
		if f.extended {
			h.Points[f.mcp+1] = Point3D{X: f.x, Y: 0.50} // PIP
			h.Points[f.mcp+2] = Point3D{X: f.x, Y: 0.42} // DIP
			h.Points[f.mcp+3] = Point3D{X: f.x, Y: 0.34} // tip
		} else {
			h.Points[f.mcp+1] = Point3D{X: f.x, Y: 0.55}
			h.Points[f.mcp+2] = Point3D{X: f.x, Y: 0.60}
			h.Points[f.mcp+3] = Point3D{X: f.x, Y: 0.65}
		}
	}

	return h
}

// PointingHand is an index-finger-only pose (the drawing gesture).
func PointingHand() HandLandmarks {
	return MakeHand(false, true, false, false, false)
}

// OpenPalmHand has all five fingers extended (the pause gesture).
func OpenPalmHand() HandLandmarks {
	return MakeHand(true, true, true, true, true)
}

// FistHand has all five fingers retracted (the clear gesture).
func FistHand() HandLandmarks {
	return MakeHand(false, false, false, false, false)
}

// TwoFingerHand has index and middle extended (the navigate gesture).
func TwoFingerHand() HandLandmarks {
	return MakeHand(false, true, true, false, false)
}

// FourFingerHand has everything but the thumb extended (the erase gesture).
func FourFingerHand() HandLandmarks {
	return MakeHand(false, true, true, true, true)
}

// PinchHand has an extended thumb curled over to touch the extended index
// tip (the color-cycle gesture).
func PinchHand() HandLandmarks {
	h := MakeHand(true, true, false, false, false)
	h.Points[ThumbIP] = Point3D{X: 0.66, Y: 0.50}
	h.Points[ThumbTip] = Point3D{X: 0.59, Y: 0.36}
	return h
}
