// Package canvas implements the persistent drawing surface: brush and
// erase primitives, snapshot-based undo/redo, and frame compositing.
package canvas

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"sync"

	"gocv.io/x/gocv"
)

const (
	// MaxHistory bounds the undo and redo stacks. Oldest snapshots are
	// silently evicted once the bound is exceeded.
	MaxHistory = 20

	// overlayThreshold is the grayscale level separating drawn pixels
	// from canvas background during compositing.
	overlayThreshold = 50
)

// ErrInvalidCanvas is returned when a restored canvas buffer does not
// match the engine's dimensions or pixel format.
var ErrInvalidCanvas = errors.New("invalid canvas buffer")

// Shape identifies a two-point shape primitive.
type Shape string

const (
	ShapeCircle    Shape = "circle"
	ShapeRectangle Shape = "rectangle"
	ShapeLine      Shape = "line"
	ShapeArrow     Shape = "arrow"
)

// Engine owns the canvas buffer and its undo/redo history. The canvas is
// mutated only by the frame-processing goroutine; Canvas and EncodePNG are
// the cross-thread read paths and always return copies. All methods take
// the engine lock, held only for the duration of the buffer operation.
type Engine struct {
	mu         sync.Mutex
	canvas     gocv.Mat
	width      int
	height     int
	background color.RGBA

	undo []gocv.Mat
	redo []gocv.Mat
}

// NewEngine creates an engine with a canvas of the given size filled with
// the background color. The initial blank canvas is pushed as the first
// undo snapshot, so the undo stack is never empty.
func NewEngine(width, height int, background color.RGBA) *Engine {
	e := &Engine{
		width:      width,
		height:     height,
		background: background,
		canvas:     newFilledMat(width, height, background),
	}
	e.undo = append(e.undo, e.canvas.Clone())
	return e
}

// newFilledMat creates a BGR mat of the given size filled with c.
func newFilledMat(width, height int, c color.RGBA) gocv.Mat {
	scalar := gocv.NewScalar(float64(c.B), float64(c.G), float64(c.R), 0)
	return gocv.NewMatWithSizeFromScalar(scalar, height, width, gocv.MatTypeCV8UC3)
}

// Size returns the current canvas dimensions.
func (e *Engine) Size() (width, height int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.width, e.height
}

// Background returns the canvas background color.
func (e *Engine) Background() color.RGBA {
	return e.background
}

// DrawLine paints a stroke segment from p1 to p2. Either point being nil
// is a no-op. Segments longer than twice the thickness are bridged with
// filled circles along the way so fast strokes leave no gaps between
// frames. Callers save a snapshot once per stroke, not per segment.
func (e *Engine) DrawLine(p1, p2 *image.Point, c color.RGBA, thickness int) {
	if p1 == nil || p2 == nil {
		return
	}
	if thickness < 1 {
		thickness = 1
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	dx := float64(p2.X - p1.X)
	dy := float64(p2.Y - p1.Y)
	dist := dx*dx + dy*dy

	limit := float64(2 * thickness)
	if dist > limit*limit {
		e.bridgeGap(*p1, *p2, c, thickness)
	}

	gocv.Line(&e.canvas, *p1, *p2, c, thickness)
}

// bridgeGap fills the segment between two distant points with circles of
// radius thickness/2 at sub-thickness intervals.
func (e *Engine) bridgeGap(p1, p2 image.Point, c color.RGBA, thickness int) {
	dx := float64(p2.X - p1.X)
	dy := float64(p2.Y - p1.Y)
	dist := math.Hypot(dx, dy)

	radius := thickness / 2
	if radius < 1 {
		radius = 1
	}
	step := float64(radius)

	for d := step; d < dist; d += step {
		t := d / dist
		pt := image.Pt(p1.X+int(dx*t), p1.Y+int(dy*t))
		gocv.Circle(&e.canvas, pt, radius, c, -1)
	}
}

// Erase paints a filled background-color circle at center. A nil center
// is a no-op. Stroke snapshot discipline matches DrawLine.
func (e *Engine) Erase(center *image.Point, radius int) {
	if center == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	gocv.Circle(&e.canvas, *center, radius, e.background, -1)
}

// DrawShape commits a two-point shape primitive onto the canvas as a
// single undoable action (a snapshot is saved before drawing).
func (e *Engine) DrawShape(kind Shape, p1, p2 image.Point, c color.RGBA, thickness int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.saveStateLocked()

	switch kind {
	case ShapeCircle:
		center := image.Pt((p1.X+p2.X)/2, (p1.Y+p2.Y)/2)
		radius := int(math.Hypot(float64(p2.X-p1.X), float64(p2.Y-p1.Y))) / 2
		gocv.Circle(&e.canvas, center, radius, c, thickness)
	case ShapeRectangle:
		gocv.Rectangle(&e.canvas, image.Rect(p1.X, p1.Y, p2.X, p2.Y), c, thickness)
	case ShapeLine:
		gocv.Line(&e.canvas, p1, p2, c, thickness)
	case ShapeArrow:
		gocv.ArrowedLine(&e.canvas, p1, p2, c, thickness)
	}
}

// Clear saves a snapshot and resets the canvas to the background color.
// Always undoable.
func (e *Engine) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.saveStateLocked()
	e.canvas.Close()
	e.canvas = newFilledMat(e.width, e.height, e.background)
}

// SaveState pushes a snapshot of the current canvas onto the undo stack
// and invalidates all redo history. Called once at the start of each
// stroke.
func (e *Engine) SaveState() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.saveStateLocked()
}

func (e *Engine) saveStateLocked() {
	if len(e.undo) >= MaxHistory {
		old := e.undo[0]
		old.Close()
		e.undo = e.undo[1:]
	}
	e.undo = append(e.undo, e.canvas.Clone())

	for i := range e.redo {
		e.redo[i].Close()
	}
	e.redo = e.redo[:0]
}

// Undo reverts the most recent saved state. Returns false without
// changing anything when only the initial snapshot remains.
func (e *Engine) Undo() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.undo) <= 1 {
		return false
	}

	top := e.undo[len(e.undo)-1]
	e.undo = e.undo[:len(e.undo)-1]

	if len(e.redo) >= MaxHistory {
		old := e.redo[0]
		old.Close()
		e.redo = e.redo[1:]
	}
	e.redo = append(e.redo, top)

	e.canvas.Close()
	e.canvas = e.undo[len(e.undo)-1].Clone()
	return true
}

// Redo reapplies the most recently undone state. Returns false when the
// redo stack is empty.
func (e *Engine) Redo() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.redo) == 0 {
		return false
	}

	top := e.redo[len(e.redo)-1]
	e.redo = e.redo[:len(e.redo)-1]

	if len(e.undo) >= MaxHistory {
		old := e.undo[0]
		old.Close()
		e.undo = e.undo[1:]
	}
	e.undo = append(e.undo, top)

	e.canvas.Close()
	e.canvas = top.Clone()
	return true
}

// UndoDepth reports how many undo steps are currently available.
func (e *Engine) UndoDepth() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.undo) - 1
}

// RedoDepth reports how many redo steps are currently available.
func (e *Engine) RedoDepth() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.redo)
}

// OverlayOnFrame composites the canvas over a live video frame in place.
// Background pixels pass the frame through, drawn pixels occlude it:
// the canvas grayscale is inverse-thresholded into a mask, the frame is
// ANDed with the mask, then the canvas is ORed in. If the frame size
// differs from the canvas, the canvas is resized to match first.
func (e *Engine) OverlayOnFrame(frame *gocv.Mat) {
	if frame == nil || frame.Empty() {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if frame.Cols() != e.width || frame.Rows() != e.height {
		e.resizeLocked(frame.Cols(), frame.Rows())
	}

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(e.canvas, &gray, gocv.ColorBGRToGray)

	mask := gocv.NewMat()
	defer mask.Close()
	gocv.Threshold(gray, &mask, overlayThreshold, 255, gocv.ThresholdBinaryInv)

	maskBGR := gocv.NewMat()
	defer maskBGR.Close()
	gocv.CvtColor(mask, &maskBGR, gocv.ColorGrayToBGR)

	gocv.BitwiseAnd(*frame, maskBGR, frame)
	gocv.BitwiseOr(*frame, e.canvas, frame)
}

// resizeLocked rescales the live canvas to the new dimensions. History
// snapshots keep their original size; restoring one restores that size.
func (e *Engine) resizeLocked(width, height int) {
	resized := gocv.NewMat()
	gocv.Resize(e.canvas, &resized, image.Pt(width, height), 0, 0, gocv.InterpolationLinear)
	e.canvas.Close()
	e.canvas = resized
	e.width = width
	e.height = height
}

// Canvas returns an independent copy of the canvas buffer. The caller
// owns the returned mat and must close it.
func (e *Engine) Canvas() gocv.Mat {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.canvas.Clone()
}

// EncodePNG returns the canvas encoded as PNG bytes.
func (e *Engine) EncodePNG() ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	buf, err := gocv.IMEncode(".png", e.canvas)
	if err != nil {
		return nil, fmt.Errorf("encode canvas: %w", err)
	}
	defer buf.Close()

	out := make([]byte, buf.Len())
	copy(out, buf.GetBytes())
	return out, nil
}

// SetCanvas replaces the canvas content with a restored buffer, saving a
// snapshot first so the restore is undoable. The buffer is validated
// against the engine's dimensions and pixel format before being accepted;
// a mismatch returns ErrInvalidCanvas and leaves the canvas untouched.
func (e *Engine) SetCanvas(m gocv.Mat) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if m.Empty() {
		return fmt.Errorf("%w: empty buffer", ErrInvalidCanvas)
	}
	if m.Channels() != 3 || m.Type() != gocv.MatTypeCV8UC3 {
		return fmt.Errorf("%w: expected 3-channel 8-bit, got type %d", ErrInvalidCanvas, m.Type())
	}
	if m.Cols() != e.width || m.Rows() != e.height {
		return fmt.Errorf("%w: dimensions %dx%d, engine is %dx%d",
			ErrInvalidCanvas, m.Cols(), m.Rows(), e.width, e.height)
	}

	e.saveStateLocked()
	m.CopyTo(&e.canvas)
	return nil
}

// Close releases the canvas and all history snapshots.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.canvas.Close()
	for i := range e.undo {
		e.undo[i].Close()
	}
	for i := range e.redo {
		e.redo[i].Close()
	}
	e.undo = nil
	e.redo = nil
}
