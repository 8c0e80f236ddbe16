package app

import (
	"errors"
	"fmt"
	"sync"

	"gocv.io/x/gocv"
)

// MaxRecordingFrames caps a session recording. At 30 FPS this is ten
// minutes, which bounds disk use when a session is left running.
const MaxRecordingFrames = 18000

// ErrRecordingFull is returned by Write once the frame cap is reached.
var ErrRecordingFull = errors.New("recording reached frame limit")

// Recorder writes composited frames to a video file. The writer is
// opened lazily on the first frame because the codec needs the actual
// frame dimensions.
type Recorder struct {
	mu       sync.Mutex
	path     string
	fps      float64
	writer   *gocv.VideoWriter
	frames   int
	paused   bool
	finished bool
}

// NewRecorder creates a recorder targeting the given file. The extension
// selects the container; .avi with MJPG is the portable default.
func NewRecorder(path string, fps float64) *Recorder {
	if fps <= 0 {
		fps = 30
	}
	return &Recorder{path: path, fps: fps}
}

// Write appends one frame. Paused recorders drop frames silently.
// Returns ErrRecordingFull exactly when the cap is hit; later writes are
// dropped without error.
func (r *Recorder) Write(frame *gocv.Mat) error {
	if frame == nil || frame.Empty() {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.paused || r.finished {
		return nil
	}

	if r.writer == nil {
		w, err := gocv.VideoWriterFile(r.path, "MJPG", r.fps, frame.Cols(), frame.Rows(), true)
		if err != nil {
			return fmt.Errorf("open recording %s: %w", r.path, err)
		}
		r.writer = w
	}

	if err := r.writer.Write(*frame); err != nil {
		return fmt.Errorf("write recording frame: %w", err)
	}
	r.frames++

	if r.frames >= MaxRecordingFrames {
		r.finished = true
		return ErrRecordingFull
	}
	return nil
}

// Pause stops accepting frames without closing the file.
func (r *Recorder) Pause() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paused = true
}

// Resume continues a paused recording. A finished recording stays finished.
func (r *Recorder) Resume() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paused = false
}

// Frames returns how many frames have been written.
func (r *Recorder) Frames() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frames
}

// Recording reports whether the recorder is accepting frames.
func (r *Recorder) Recording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return !r.paused && !r.finished
}

// Close finalizes the video file.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.finished = true
	if r.writer == nil {
		return nil
	}
	err := r.writer.Close()
	r.writer = nil
	return err
}
