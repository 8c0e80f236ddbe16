package app

import (
	"image"
	"testing"

	"github.com/ayusman/airsig/internal/canvas"
	"github.com/ayusman/airsig/internal/detector"
	"github.com/ayusman/airsig/internal/gesture"
)

// newTestDriver builds a driver on a small black canvas with smoothing
// off so fingertip positions land exactly where the fixtures put them.
func newTestDriver(t *testing.T) (*Driver, *canvas.Engine) {
	t.Helper()
	engine := canvas.NewEngine(640, 480, canvas.Color("black"))
	t.Cleanup(engine.Close)

	d := NewDriver(engine, DriverConfig{
		SmoothingEnabled: false,
		BrushColor:       "red",
		BrushSize:        5,
		BrushOpacity:     1.0,
	})
	return d, engine
}

// feed pushes the same hand pose for n frames, advancing time by 33 ms.
func feed(d *Driver, h detector.HandLandmarks, n int, t0 float64) float64 {
	hand := h.ToPixels(640, 480)
	for i := 0; i < n; i++ {
		d.ProcessHands([]detector.Hand{hand}, t0)
		t0 += 0.033
	}
	return t0
}

// shiftHand moves every landmark horizontally in normalized space.
func shiftHand(h detector.HandLandmarks, dx float64) detector.HandLandmarks {
	for i := range h.Points {
		h.Points[i].X += dx
	}
	return h
}

func TestDriver_DrawStroke(t *testing.T) {
	d, engine := newTestDriver(t)

	pointing := detector.PointingHand()
	clock := feed(d, pointing, 2, 0)
	feed(d, shiftHand(pointing, 0.05), 1, clock)

	if d.Gesture() != gesture.Draw {
		t.Fatalf("gesture = %q, want draw", d.Gesture())
	}

	// One snapshot for the stroke start.
	if engine.UndoDepth() != 1 {
		t.Errorf("undo depth = %d, want 1 for a single stroke", engine.UndoDepth())
	}

	tip := pointing.ToPixels(640, 480).Landmarks[detector.IndexTip]
	c := engine.Canvas()
	defer c.Close()
	v := c.GetVecbAt(tip.Y, tip.X)
	if v[2] != 255 {
		t.Errorf("fingertip pixel = %v, want red ink", v)
	}
}

func TestDriver_SeparateStrokesSeparateSnapshots(t *testing.T) {
	d, engine := newTestDriver(t)

	pointing := detector.PointingHand()
	palm := detector.OpenPalmHand()

	clock := feed(d, pointing, 4, 0)
	// Palm needs a few frames to win the majority vote and end the stroke.
	clock = feed(d, palm, 6, clock)
	feed(d, pointing, 6, clock)

	if engine.UndoDepth() != 2 {
		t.Errorf("undo depth = %d, want 2 for two strokes", engine.UndoDepth())
	}
}

func TestDriver_EraseUsesWiderBrush(t *testing.T) {
	d, engine := newTestDriver(t)

	// Paint a patch first, then erase over it with the four-finger pose.
	engine.SaveState()
	center := detector.FourFingerHand().ToPixels(640, 480).Landmarks[detector.IndexTip]
	engine.DrawLine(&center, &center, canvas.Color("red"), 20)

	feed(d, detector.FourFingerHand(), 6, 0)

	if d.Gesture() != gesture.Erase {
		t.Fatalf("gesture = %q, want erase", d.Gesture())
	}

	c := engine.Canvas()
	defer c.Close()
	// Eraser radius is 3x brush size = 15, wide enough to cover the patch center.
	v := c.GetVecbAt(center.Y, center.X)
	if v[2] != 0 {
		t.Errorf("center pixel = %v, want erased to background", v)
	}
}

func TestDriver_FistClearsOnce(t *testing.T) {
	d, engine := newTestDriver(t)

	clock := feed(d, detector.PointingHand(), 4, 0)
	depthBefore := engine.UndoDepth()

	feed(d, detector.FistHand(), 8, clock)

	if d.Gesture() != gesture.Fist {
		t.Fatalf("gesture = %q, want fist", d.Gesture())
	}
	// Clear saves exactly one snapshot despite the held fist.
	if got := engine.UndoDepth(); got != depthBefore+1 {
		t.Errorf("undo depth = %d, want %d (one clear)", got, depthBefore+1)
	}

	tip := detector.PointingHand().ToPixels(640, 480).Landmarks[detector.IndexTip]
	c := engine.Canvas()
	defer c.Close()
	if v := c.GetVecbAt(tip.Y, tip.X); v[2] != 0 {
		t.Errorf("pixel = %v after clear, want background", v)
	}
}

func TestDriver_PinchCyclesColorOnce(t *testing.T) {
	d, _ := newTestDriver(t)

	if d.BrushColor() != "red" {
		t.Fatalf("initial color = %q", d.BrushColor())
	}

	// A held pinch across many frames advances exactly one palette step.
	clock := feed(d, detector.PinchHand(), 10, 0)
	if d.Gesture() != gesture.Pinch {
		t.Fatalf("gesture = %q, want pinch", d.Gesture())
	}
	if d.BrushColor() != "blue" {
		t.Errorf("color after held pinch = %q, want blue", d.BrushColor())
	}

	// Release (no hands) and pinch again: one more step.
	for i := 0; i < 6; i++ {
		d.ProcessHands(nil, clock)
		clock += 0.033
	}
	feed(d, detector.PinchHand(), 6, clock)
	if d.BrushColor() != "green" {
		t.Errorf("color after second pinch = %q, want green", d.BrushColor())
	}
}

func TestDriver_PaletteWrapsAround(t *testing.T) {
	d, _ := newTestDriver(t)

	clock := 0.0
	for i := 0; i < len(canvas.CycleOrder); i++ {
		clock = feed(d, detector.PinchHand(), 4, clock)
		for j := 0; j < 6; j++ {
			d.ProcessHands(nil, clock)
			clock += 0.033
		}
	}

	if d.BrushColor() != "red" {
		t.Errorf("color after a full cycle = %q, want red again", d.BrushColor())
	}
}

func TestDriver_ShapeToolTwoNavigatesCommit(t *testing.T) {
	d, engine := newTestDriver(t)

	d.SetShapeTool(canvas.ShapeRectangle)

	// First navigate gesture places the anchor; holding it places nothing more.
	nav := detector.TwoFingerHand()
	clock := feed(d, nav, 6, 0)
	if d.Gesture() != gesture.Navigate {
		t.Fatalf("gesture = %q, want navigate", d.Gesture())
	}
	if engine.UndoDepth() != 0 {
		t.Fatalf("shape committed after one point, undo depth %d", engine.UndoDepth())
	}

	// Leave navigate, then place the second point elsewhere.
	clock = feed(d, detector.OpenPalmHand(), 6, clock)
	feed(d, shiftHand(nav, 0.1), 6, clock)

	if engine.UndoDepth() != 1 {
		t.Fatalf("undo depth = %d after second point, want 1", engine.UndoDepth())
	}

	// Rectangle edge passes through the anchor fingertip.
	anchor := nav.ToPixels(640, 480).Landmarks[detector.IndexTip]
	c := engine.Canvas()
	defer c.Close()
	if v := c.GetVecbAt(anchor.Y, anchor.X); v[2] != 255 {
		t.Errorf("anchor pixel = %v, want rectangle ink", v)
	}
	if d.ShapeTool() != canvas.ShapeRectangle {
		t.Error("shape tool should stay armed until cleared")
	}
	if !d.Modified() {
		t.Error("shape commit did not set the modified flag")
	}
}

func TestDriver_HeldNavigatePlacesOnePoint(t *testing.T) {
	d, engine := newTestDriver(t)

	d.SetShapeTool(canvas.ShapeLine)

	// A long held navigate never supplies the second point on its own.
	feed(d, detector.TwoFingerHand(), 30, 0)

	if engine.UndoDepth() != 0 {
		t.Errorf("held navigate committed a shape, undo depth %d", engine.UndoDepth())
	}

	// Disarming drops the pending anchor.
	d.ClearShapeTool()
	if d.ShapeTool() != "" {
		t.Error("shape tool still armed after clear")
	}
}

func TestDriver_BothHandsDraw(t *testing.T) {
	d, engine := newTestDriver(t)

	first := detector.PointingHand().ToPixels(640, 480)
	second := shiftHand(detector.PointingHand(), -0.2).ToPixels(640, 480)

	clock := 0.0
	for i := 0; i < 4; i++ {
		d.ProcessHands([]detector.Hand{first, second}, clock)
		clock += 0.033
	}

	// Each hand opened its own stroke with its own snapshot.
	if engine.UndoDepth() != 2 {
		t.Errorf("undo depth = %d, want 2 for two simultaneous strokes", engine.UndoDepth())
	}

	c := engine.Canvas()
	defer c.Close()
	for _, hand := range []detector.Hand{first, second} {
		tip := hand.Landmarks[detector.IndexTip]
		if v := c.GetVecbAt(tip.Y, tip.X); v[2] != 255 {
			t.Errorf("fingertip (%d,%d) = %v, want ink from both hands", tip.X, tip.Y, v)
		}
	}
}

func TestDriver_SecondHandPinchCyclesColor(t *testing.T) {
	d, _ := newTestDriver(t)

	drawing := detector.PointingHand().ToPixels(640, 480)
	pinching := detector.PinchHand().ToPixels(640, 480)

	clock := 0.0
	for i := 0; i < 6; i++ {
		d.ProcessHands([]detector.Hand{drawing, pinching}, clock)
		clock += 0.033
	}

	// The reported gesture follows slot 0; the pinch still acted.
	if d.Gesture() != gesture.Draw {
		t.Fatalf("gesture = %q, want draw from the first hand", d.Gesture())
	}
	if d.BrushColor() != "blue" {
		t.Errorf("color = %q, want blue after the second hand's pinch", d.BrushColor())
	}
}

func TestDriver_VanishedHandEndsItsStroke(t *testing.T) {
	d, engine := newTestDriver(t)

	first := detector.PointingHand().ToPixels(640, 480)
	second := shiftHand(detector.PointingHand(), -0.2).ToPixels(640, 480)

	clock := 0.0
	for i := 0; i < 4; i++ {
		d.ProcessHands([]detector.Hand{first, second}, clock)
		clock += 0.033
	}
	// Second hand leaves, then comes back: its continuity resets, so the
	// return opens a fresh stroke with a fresh snapshot.
	for i := 0; i < 4; i++ {
		d.ProcessHands([]detector.Hand{first}, clock)
		clock += 0.033
	}
	for i := 0; i < 4; i++ {
		d.ProcessHands([]detector.Hand{first, second}, clock)
		clock += 0.033
	}

	if engine.UndoDepth() != 3 {
		t.Errorf("undo depth = %d, want 3 (two first strokes plus a resumed second)", engine.UndoDepth())
	}
}

func TestDriver_BrushSettings(t *testing.T) {
	d, _ := newTestDriver(t)

	d.SetBrushSize(12)
	if d.BrushSize() != 12 {
		t.Errorf("brush size = %d", d.BrushSize())
	}
	d.SetBrushSize(0)
	if d.BrushSize() != 12 {
		t.Error("invalid brush size accepted")
	}

	d.SetBrushColor("magenta")
	if d.BrushColor() != "magenta" {
		t.Errorf("brush color = %q", d.BrushColor())
	}
	d.SetBrushColor("not-a-color")
	if d.BrushColor() != "magenta" {
		t.Error("unknown color name accepted")
	}
}

func TestDriver_ModifiedFlag(t *testing.T) {
	d, _ := newTestDriver(t)

	if d.Modified() {
		t.Error("fresh driver reports modifications")
	}

	feed(d, detector.PointingHand(), 3, 0)
	if !d.Modified() {
		t.Error("drawing did not set the modified flag")
	}

	d.ClearModified()
	if d.Modified() {
		t.Error("ClearModified did not reset the flag")
	}
}

func TestDriver_MalformedHandIsIgnored(t *testing.T) {
	d, engine := newTestDriver(t)

	short := detector.Hand{Landmarks: make([]image.Point, 5), Handedness: "Right"}
	d.ProcessHands([]detector.Hand{short}, 0)

	if d.Gesture() != gesture.None {
		t.Errorf("gesture = %q for malformed hand, want none", d.Gesture())
	}
	if engine.UndoDepth() != 0 {
		t.Error("malformed hand produced canvas activity")
	}
}
