package app

import (
	"sync"

	"gocv.io/x/gocv"
)

// FrameMailbox is a single-slot, latest-wins buffer between the frame
// pipeline and its consumers (MJPEG stream, snapshots). The producer
// always overwrites; slow consumers skip frames instead of applying
// backpressure to the capture loop.
type FrameMailbox struct {
	mu    sync.Mutex
	frame gocv.Mat
	set   bool
	seq   uint64
}

// NewFrameMailbox creates an empty mailbox.
func NewFrameMailbox() *FrameMailbox {
	return &FrameMailbox{}
}

// Set stores a copy of frame, replacing whatever was there.
func (m *FrameMailbox) Set(frame gocv.Mat) {
	if frame.Empty() {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.set {
		m.frame.Close()
	}
	m.frame = frame.Clone()
	m.set = true
	m.seq++
}

// Get returns a copy of the latest frame and its sequence number. The
// second return is false while no frame has ever been set. The caller
// owns the returned mat and must close it.
func (m *FrameMailbox) Get() (gocv.Mat, uint64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.set {
		return gocv.Mat{}, 0, false
	}
	return m.frame.Clone(), m.seq, true
}

// Close releases the stored frame.
func (m *FrameMailbox) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.set {
		m.frame.Close()
		m.set = false
	}
}
