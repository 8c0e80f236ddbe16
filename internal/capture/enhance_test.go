package capture

import (
	"image"
	"image/color"
	"testing"

	"gocv.io/x/gocv"
)

func TestEnhance_NilAndEmptyFrames(t *testing.T) {
	e := NewFrameEnhancer(true, false)
	e.Enhance(nil)

	empty := gocv.NewMat()
	defer empty.Close()
	e.Enhance(&empty)
}

func TestEnhance_BrightensFrame(t *testing.T) {
	e := NewFrameEnhancer(false, false)

	frame := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(100, 100, 100, 0), 120, 160, gocv.MatTypeCV8UC3)
	defer frame.Close()

	e.Enhance(&frame)

	// alpha 1.1, beta 10: 100 -> 120
	v := frame.GetVecbAt(60, 80)
	if v[0] < 115 || v[0] > 125 {
		t.Errorf("enhanced value = %d, want ~120", v[0])
	}
}

func TestEnhance_LowLightBoostsMore(t *testing.T) {
	normal := NewFrameEnhancer(false, false)
	low := NewFrameEnhancer(false, true)

	f1 := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(60, 60, 60, 0), 120, 160, gocv.MatTypeCV8UC3)
	defer f1.Close()
	f2 := f1.Clone()
	defer f2.Close()

	normal.Enhance(&f1)
	low.Enhance(&f2)

	if f2.GetVecbAt(60, 80)[0] <= f1.GetVecbAt(60, 80)[0] {
		t.Error("low-light mode is not brighter than normal mode")
	}
}

func TestEnhance_MirrorFlips(t *testing.T) {
	e := NewFrameEnhancer(true, false)

	// Dark frame with a bright column near the left edge.
	frame := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), 120, 160, gocv.MatTypeCV8UC3)
	defer frame.Close()
	gocv.Line(&frame, image.Pt(10, 0), image.Pt(10, 119), color.RGBA{R: 255, G: 255, B: 255, A: 255}, 3)

	e.Enhance(&frame)

	left := frame.GetVecbAt(60, 10)
	right := frame.GetVecbAt(60, 149)
	if right[0] < 100 {
		t.Error("bright column did not move to the mirrored side")
	}
	if left[0] > 100 {
		t.Error("bright column still present on the original side")
	}
}

func TestEnhance_ToggleLowLight(t *testing.T) {
	e := NewFrameEnhancer(false, false)
	if e.LowLight() {
		t.Error("low light enabled by default")
	}
	e.SetLowLight(true)
	if !e.LowLight() {
		t.Error("SetLowLight(true) did not stick")
	}
}
