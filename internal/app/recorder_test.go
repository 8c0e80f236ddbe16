package app

import (
	"os"
	"path/filepath"
	"testing"

	"gocv.io/x/gocv"
)

func recordingFrame() gocv.Mat {
	return gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 128, 0), 120, 160, gocv.MatTypeCV8UC3)
}

func TestRecorder_WritesFrames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.avi")
	r := NewRecorder(path, 30)

	frame := recordingFrame()
	defer frame.Close()

	for i := 0; i < 5; i++ {
		if err := r.Write(&frame); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
	}
	if r.Frames() != 5 {
		t.Errorf("frames = %d, want 5", r.Frames())
	}

	if err := r.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("recording file missing: %v", err)
	}
	if info.Size() == 0 {
		t.Error("recording file is empty")
	}
}

func TestRecorder_PauseDropsFrames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.avi")
	r := NewRecorder(path, 30)
	defer r.Close()

	frame := recordingFrame()
	defer frame.Close()

	r.Pause()
	if err := r.Write(&frame); err != nil {
		t.Fatalf("paused Write() error = %v", err)
	}
	if r.Frames() != 0 {
		t.Error("paused recorder counted a frame")
	}
	if r.Recording() {
		t.Error("paused recorder reports recording")
	}

	r.Resume()
	if err := r.Write(&frame); err != nil {
		t.Fatalf("resumed Write() error = %v", err)
	}
	if r.Frames() != 1 {
		t.Errorf("frames = %d after resume, want 1", r.Frames())
	}
}

func TestRecorder_NilAndEmptyFrames(t *testing.T) {
	r := NewRecorder(filepath.Join(t.TempDir(), "session.avi"), 30)
	defer r.Close()

	if err := r.Write(nil); err != nil {
		t.Errorf("nil frame error = %v", err)
	}
	empty := gocv.NewMat()
	defer empty.Close()
	if err := r.Write(&empty); err != nil {
		t.Errorf("empty frame error = %v", err)
	}
	if r.Frames() != 0 {
		t.Error("degenerate frames were counted")
	}
}

func TestRecorder_ClosedStaysFinished(t *testing.T) {
	r := NewRecorder(filepath.Join(t.TempDir(), "session.avi"), 30)

	frame := recordingFrame()
	defer frame.Close()

	r.Write(&frame)
	r.Close()

	if err := r.Write(&frame); err != nil {
		t.Errorf("write after close error = %v", err)
	}
	if r.Frames() != 1 {
		t.Error("frame written after close")
	}
	if r.Recording() {
		t.Error("closed recorder reports recording")
	}
}
