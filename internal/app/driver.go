package app

import (
	"image"
	"sync"

	"github.com/ayusman/airsig/internal/canvas"
	"github.com/ayusman/airsig/internal/detector"
	"github.com/ayusman/airsig/internal/filter"
	"github.com/ayusman/airsig/internal/gesture"
)

// maxHands is how many simultaneous hands keep classifier and smoother
// state. Only the primary slot drives the canvas.
const maxHands = 2

// DriverConfig carries the tunables the gesture driver needs.
type DriverConfig struct {
	SmoothingEnabled bool
	SmoothingLevel   filter.Stabilization
	JitterThreshold  int
	PinchThreshold   float64
	BrushColor       string
	BrushSize        int
	BrushOpacity     float64
}

// Driver translates classified gestures into canvas operations. Every
// hand slot carries its own classifier, smoother, stroke continuity, and
// edge-trigger state so that the temporal state of two hands never
// mixes; both hands can draw or erase at once. Brush setup and the shape
// tool are session-wide, and the shape tool listens to slot 0 only.
type Driver struct {
	mu     sync.RWMutex
	engine *canvas.Engine
	config DriverConfig

	classifiers [maxHands]*gesture.Classifier
	smoothers   [maxHands]*filter.PointSmoother
	prevPoints  [maxHands]*image.Point
	pinchHeld   [maxHands]bool
	fistHeld    [maxHands]bool

	colorIndex int
	brushSize  int
	opacity    float64

	shapeTool    canvas.Shape
	shapeAnchor  *image.Point
	navigateHeld bool

	current  gesture.Label
	modified bool
}

// NewDriver creates a Driver writing to the given engine.
func NewDriver(engine *canvas.Engine, config DriverConfig) *Driver {
	d := &Driver{
		engine:    engine,
		config:    config,
		brushSize: config.BrushSize,
		opacity:   config.BrushOpacity,
		current:   gesture.None,
	}
	if d.brushSize < 1 {
		d.brushSize = 5
	}
	if d.opacity <= 0 || d.opacity > 1 {
		d.opacity = 1.0
	}

	d.colorIndex = 0
	for i, name := range canvas.CycleOrder {
		if name == config.BrushColor {
			d.colorIndex = i
			break
		}
	}

	for i := 0; i < maxHands; i++ {
		d.classifiers[i] = gesture.NewClassifier(config.PinchThreshold)
		d.smoothers[i] = filter.NewPointSmoother(config.SmoothingLevel, config.JitterThreshold)
	}

	return d
}

// ProcessHands consumes one frame's worth of detected hands. t is the
// frame timestamp in seconds. Every hand runs through the full dispatch;
// slot 0 additionally feeds the shape tool and the reported gesture.
func (d *Driver) ProcessHands(hands []detector.Hand, t float64) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(hands) > maxHands {
		hands = hands[:maxHands]
	}

	// Slots with no hand this frame lose their temporal state, so a hand
	// re-entering the frame starts clean.
	for i := len(hands); i < maxHands; i++ {
		d.resetSlotLocked(i)
	}
	if len(hands) == 0 {
		d.current = gesture.None
		return
	}

	for i := range hands {
		label, _ := d.classifiers[i].Classify(hands[i].Landmarks, hands[i].Handedness)
		if i == 0 {
			d.current = label
		}

		var tip *image.Point
		if len(hands[i].Landmarks) > detector.IndexTip {
			p := hands[i].Landmarks[detector.IndexTip]
			tip = &p
		}
		if d.config.SmoothingEnabled {
			tip = d.smoothers[i].Smooth(tip, t)
		}

		d.dispatchLocked(i, label, tip)
	}
}

// resetSlotLocked drops all per-hand state for an empty slot.
func (d *Driver) resetSlotLocked(slot int) {
	d.prevPoints[slot] = nil
	d.pinchHeld[slot] = false
	d.fistHeld[slot] = false
	if slot == 0 {
		d.navigateHeld = false
	}
	d.classifiers[slot].Reset()
	d.smoothers[slot].Reset()
}

// dispatchLocked routes one hand's gesture to its canvas action.
func (d *Driver) dispatchLocked(slot int, label gesture.Label, tip *image.Point) {
	if label != gesture.Pinch {
		d.pinchHeld[slot] = false
	}
	if label != gesture.Fist {
		d.fistHeld[slot] = false
	}
	if slot == 0 && label != gesture.Navigate {
		d.navigateHeld = false
	}

	switch label {
	case gesture.Draw:
		d.handleDrawLocked(slot, tip)
	case gesture.Erase:
		d.handleEraseLocked(slot, tip)
	case gesture.Navigate:
		d.endStrokeLocked(slot)
		if slot == 0 {
			d.handleNavigateLocked(tip)
		}
	case gesture.Fist:
		d.endStrokeLocked(slot)
		if !d.fistHeld[slot] {
			d.fistHeld[slot] = true
			d.engine.Clear()
			d.modified = true
		}
	case gesture.PalmOpen:
		d.endStrokeLocked(slot)
	case gesture.Pinch:
		d.endStrokeLocked(slot)
		if !d.pinchHeld[slot] {
			d.pinchHeld[slot] = true
			d.colorIndex = (d.colorIndex + 1) % len(canvas.CycleOrder)
		}
	default:
		d.endStrokeLocked(slot)
	}
}

// handleNavigateLocked feeds the shape tool. With a tool armed, each
// distinct navigate gesture places one point: the first arms the anchor,
// the second commits the shape. Holding the gesture places only one
// point; the hand must leave navigate before the next one registers.
func (d *Driver) handleNavigateLocked(tip *image.Point) {
	if d.shapeTool == "" || tip == nil || d.navigateHeld {
		return
	}
	d.navigateHeld = true

	if d.shapeAnchor == nil {
		p := *tip
		d.shapeAnchor = &p
		return
	}

	c := canvas.BlendToward(canvas.Color(canvas.CycleOrder[d.colorIndex]), d.engine.Background(), d.opacity)
	d.engine.DrawShape(d.shapeTool, *d.shapeAnchor, *tip, c, d.brushSize)
	d.shapeAnchor = nil
	d.modified = true
}

// handleDrawLocked continues or starts a freehand stroke for one hand.
func (d *Driver) handleDrawLocked(slot int, tip *image.Point) {
	if tip == nil {
		d.endStrokeLocked(slot)
		return
	}

	if d.prevPoints[slot] == nil {
		d.engine.SaveState()
		d.prevPoints[slot] = tip
		return
	}

	c := canvas.BlendToward(canvas.Color(canvas.CycleOrder[d.colorIndex]), d.engine.Background(), d.opacity)
	d.engine.DrawLine(d.prevPoints[slot], tip, c, d.brushSize)
	d.prevPoints[slot] = tip
	d.modified = true
}

// handleEraseLocked erases around the fingertip. The eraser is three
// brush widths across so cleanup is faster than drawing.
func (d *Driver) handleEraseLocked(slot int, tip *image.Point) {
	if tip == nil {
		d.endStrokeLocked(slot)
		return
	}

	if d.prevPoints[slot] == nil {
		d.engine.SaveState()
	}
	d.engine.Erase(tip, 3*d.brushSize)
	d.prevPoints[slot] = tip
	d.modified = true
}

// endStrokeLocked terminates one hand's in-progress stroke.
func (d *Driver) endStrokeLocked(slot int) {
	d.prevPoints[slot] = nil
}

// Gesture returns the label of the primary hand from the last frame.
func (d *Driver) Gesture() gesture.Label {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.current
}

// BrushColor returns the active brush color name.
func (d *Driver) BrushColor() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return canvas.CycleOrder[d.colorIndex]
}

// SetBrushColor selects a palette color by name. Unknown names are ignored.
func (d *Driver) SetBrushColor(name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, n := range canvas.CycleOrder {
		if n == name {
			d.colorIndex = i
			return
		}
	}
}

// BrushSize returns the stroke thickness in pixels.
func (d *Driver) BrushSize() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.brushSize
}

// SetBrushSize sets the stroke thickness. Values outside 1..100 are ignored.
func (d *Driver) SetBrushSize(size int) {
	if size < 1 || size > 100 {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.brushSize = size
}

// BrushOpacity returns the brush opacity in [0, 1].
func (d *Driver) BrushOpacity() float64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.opacity
}

// SetShapeTool arms a shape tool. The next two navigate gestures place
// the shape's corner points.
func (d *Driver) SetShapeTool(kind canvas.Shape) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.shapeTool = kind
	d.shapeAnchor = nil
}

// ClearShapeTool returns to freehand drawing and drops a pending anchor.
func (d *Driver) ClearShapeTool() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.shapeTool = ""
	d.shapeAnchor = nil
}

// ShapeTool returns the armed shape tool, or "" for freehand.
func (d *Driver) ShapeTool() canvas.Shape {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.shapeTool
}

// Modified reports whether the canvas changed since the last ClearModified.
// The autosave loop uses this to skip idle periods.
func (d *Driver) Modified() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.modified
}

// ClearModified resets the modification flag, typically after a save.
func (d *Driver) ClearModified() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.modified = false
}
