// Package gesture classifies hand-landmark frames into drawing intents.
package gesture

import (
	"image"

	"github.com/ayusman/airsig/internal/detector"
)

// Label is a discrete semantic gesture.
type Label string

// The closed gesture set. Every landmark frame classifies to exactly one
// of these; None covers unmatched finger combinations and malformed input.
const (
	None     Label = "none"
	Draw     Label = "draw"
	Navigate Label = "navigate"
	Erase    Label = "erase"
	Fist     Label = "fist"
	PalmOpen Label = "palm_open"
	Pinch    Label = "pinch"
)

const (
	// DefaultPinchThreshold is the thumb-to-index distance in pixels
	// below which the hand reads as a pinch. Resolution dependent, so
	// overridable via the Classifier config.
	DefaultPinchThreshold = 40.0

	// historySize is how many raw classifications feed the majority
	// vote. Five frames debounces single-frame misreads without adding
	// noticeable latency at 30 Hz.
	historySize = 5
)

// Classifier turns a 21-landmark frame into a gesture label, smoothing
// single-frame misclassifications with a short majority-vote history.
//
// Not safe for concurrent use; callers keep one classifier per hand slot
// so that the histories of two hands never mix.
type Classifier struct {
	pinchThreshold float64
	history        []Label
}

// NewClassifier creates a Classifier. pinchThreshold <= 0 selects the
// default.
func NewClassifier(pinchThreshold float64) *Classifier {
	if pinchThreshold <= 0 {
		pinchThreshold = DefaultPinchThreshold
	}
	return &Classifier{
		pinchThreshold: pinchThreshold,
		history:        make([]Label, 0, historySize),
	}
}

// Classify maps a landmark frame to a gesture label and a confidence.
// Fewer than 21 landmarks soft-fails to (None, 0) without touching the
// history. Confidence is currently always 1.0 for a classified frame;
// callers must not depend on graded values yet.
func (c *Classifier) Classify(landmarks []image.Point, handedness string) (Label, float64) {
	if len(landmarks) < detector.NumLandmarks {
		return None, 0.0
	}

	raw := c.classifyFrame(landmarks)

	if len(c.history) >= historySize {
		c.history = c.history[1:]
	}
	c.history = append(c.history, raw)

	return majority(c.history), 1.0
}

// Reset clears the vote history, e.g. when a hand slot is reassigned.
func (c *Classifier) Reset() {
	c.history = c.history[:0]
}

// classifyFrame applies the classification rules to a single frame,
// bypassing temporal smoothing. Precedence resolves overlapping
// conditions: a fist would otherwise also satisfy the pinch distance.
func (c *Classifier) classifyFrame(landmarks []image.Point) Label {
	fingers := fingerStates(landmarks)
	extended := 0
	for _, f := range fingers {
		if f {
			extended++
		}
	}

	thumb, index, middle, ring, pinky := fingers[0], fingers[1], fingers[2], fingers[3], fingers[4]

	switch {
	case extended == 0:
		return Fist
	case extended == 5:
		return PalmOpen
	case !thumb && index && middle && ring && pinky:
		return Erase
	case detector.PixelDistance(landmarks[detector.ThumbTip], landmarks[detector.IndexTip]) < c.pinchThreshold:
		return Pinch
	case index && !middle && !ring && !pinky:
		return Draw
	case index && middle && !ring && !pinky:
		return Navigate
	default:
		return None
	}
}

// fingerStates derives the [thumb, index, middle, ring, pinky] extension
// vector. The thumb compares wrist-to-tip against wrist-to-IP distance,
// which is invariant to hand orientation; the other fingers are extended
// when the tip sits above the PIP joint (image y grows downward).
func fingerStates(landmarks []image.Point) [5]bool {
	var fingers [5]bool

	wrist := landmarks[detector.Wrist]
	tipDist := detector.PixelDistance(wrist, landmarks[detector.ThumbTip])
	ipDist := detector.PixelDistance(wrist, landmarks[detector.ThumbIP])
	fingers[0] = tipDist > ipDist

	tips := []int{detector.IndexTip, detector.MiddleTip, detector.RingTip, detector.PinkyTip}
	for i, tip := range tips {
		fingers[i+1] = landmarks[tip].Y < landmarks[tip-2].Y
	}

	return fingers
}

// majority returns the most frequent label in the history. Ties break in
// favor of the label seen earliest, which keeps the result deterministic
// and stable while a new gesture is still gathering votes.
func majority(history []Label) Label {
	counts := make(map[Label]int, len(history))
	best := 0
	for _, l := range history {
		counts[l]++
		if counts[l] > best {
			best = counts[l]
		}
	}
	for _, l := range history {
		if counts[l] == best {
			return l
		}
	}
	return None
}
