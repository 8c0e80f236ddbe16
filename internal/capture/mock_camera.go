package capture

import (
	"errors"
	"image/color"
	"sync"

	"gocv.io/x/gocv"
)

// ErrPlaybackExhausted is returned by a non-looping MockCamera once the
// frame sequence runs out.
var ErrPlaybackExhausted = errors.New("playback exhausted")

// MockCamera satisfies Camera by playing back a fixed frame sequence.
// Tests drive the pipeline with it instead of capture hardware.
type MockCamera struct {
	mu     sync.Mutex
	frames []*gocv.Mat
	cursor int
	loop   bool
	open   bool
	fps    int
}

// NewMockCamera plays the given frames in order, restarting from the
// first when loop is set.
func NewMockCamera(frames []*gocv.Mat, loop bool) *MockCamera {
	return &MockCamera{frames: frames, loop: loop, fps: DefaultFPS}
}

// NewSolidFrameCamera loops a single uniformly colored frame, the usual
// backdrop behind the synthetic hand fixtures. The caller owns the
// returned frame and closes it after the camera is done.
func NewSolidFrameCamera(width, height int, c color.RGBA) (*MockCamera, *gocv.Mat) {
	frame := gocv.NewMatWithSizeFromScalar(
		gocv.NewScalar(float64(c.B), float64(c.G), float64(c.R), 0),
		height, width, gocv.MatTypeCV8UC3,
	)
	return NewMockCamera([]*gocv.Mat{&frame}, true), &frame
}

func (c *MockCamera) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.open = true
	c.cursor = 0
	return nil
}

func (c *MockCamera) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.open = false
	return nil
}

// ReadFrame hands out a copy, so the pipeline may enhance and composite
// in place without corrupting the source sequence.
func (c *MockCamera) ReadFrame() (*gocv.Mat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.open {
		return nil, ErrCameraNotOpen
	}
	if c.cursor >= len(c.frames) {
		if !c.loop || len(c.frames) == 0 {
			return nil, ErrPlaybackExhausted
		}
		c.cursor = 0
	}

	frame := c.frames[c.cursor].Clone()
	c.cursor++
	return &frame, nil
}

// SetFPS adjusts the nominal rate the pipeline pacer sees. Non-positive
// values are ignored, matching the hardware camera.
func (c *MockCamera) SetFPS(fps int) {
	if fps <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fps = fps
}

func (c *MockCamera) FPS() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fps
}

func (c *MockCamera) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open
}

// Rewind restarts playback from the first frame.
func (c *MockCamera) Rewind() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cursor = 0
}
