// Package detector provides hand detection interfaces and landmark types.
package detector

import (
	"image"
	"math"
)

// Hand landmark indices following the MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// Point3D is a landmark position in the detector's normalized coordinate
// space: x and y in [0,1] relative to the frame, z is relative depth.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// HandLandmarks is one detected hand: the 21 landmarks in normalized
// coordinates plus handedness and detection score.
type HandLandmarks struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Handedness string                `json:"handedness"` // "Left" or "Right"
	Score      float64               `json:"score"`
}

// Hand is a detected hand projected into frame-pixel coordinates, the form
// the gesture classifier and drawing pipeline consume. Landmarks is indexed
// by the landmark constants above and normally holds NumLandmarks entries;
// consumers treat shorter slices as "no hand".
type Hand struct {
	Landmarks  []image.Point
	Handedness string
}

// ToPixels projects the normalized landmarks onto a frame of the given
// dimensions.
func (h *HandLandmarks) ToPixels(width, height int) Hand {
	hand := Hand{
		Landmarks:  make([]image.Point, NumLandmarks),
		Handedness: h.Handedness,
	}
	for i := range h.Points {
		hand.Landmarks[i] = image.Pt(
			int(h.Points[i].X*float64(width)),
			int(h.Points[i].Y*float64(height)),
		)
	}
	return hand
}

// PixelDistance is the Euclidean distance between two pixel landmarks.
func PixelDistance(a, b image.Point) float64 {
	dx := float64(a.X - b.X)
	dy := float64(a.Y - b.Y)
	return math.Sqrt(dx*dx + dy*dy)
}
