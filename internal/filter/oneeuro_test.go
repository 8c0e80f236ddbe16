package filter

import (
	"math"
	"testing"
)

func TestOneEuro_FirstCallPassthrough(t *testing.T) {
	f := NewOneEuro(1.0, 0.007, 1.0)

	got := f.Filter(123.4, 0.0)
	if got != 123.4 {
		t.Errorf("first call should return input unchanged, got %f", got)
	}
}

func TestOneEuro_StepConvergence(t *testing.T) {
	f := NewOneEuro(1.0, 0.007, 1.0)

	// Initialize at 0, then feed a constant step of 100.
	f.Filter(0, 0)

	prev := 0.0
	for i := 1; i <= 200; i++ {
		ts := float64(i) * 0.033 // ~30 Hz
		got := f.Filter(100, ts)

		// Output must approach the target monotonically, never overshoot.
		if got < prev {
			t.Fatalf("output decreased at step %d: %f -> %f", i, prev, got)
		}
		if got > 100 {
			t.Fatalf("output overshot target at step %d: %f", i, got)
		}
		prev = got
	}

	if math.Abs(prev-100) > 1.0 {
		t.Errorf("filter did not converge, final value %f", prev)
	}
}

func TestOneEuro_RepeatedTimestamp(t *testing.T) {
	f := NewOneEuro(1.0, 0.007, 1.0)

	f.Filter(10, 1.0)
	// Same timestamp again must not divide by zero or go non-finite.
	got := f.Filter(20, 1.0)
	if math.IsNaN(got) || math.IsInf(got, 0) {
		t.Fatalf("non-finite output for repeated timestamp: %f", got)
	}
	if got < 10 || got > 20 {
		t.Errorf("output %f outside [10, 20]", got)
	}
}

func TestOneEuro_FastMotionTracksCloser(t *testing.T) {
	slow := NewOneEuro(1.0, 0.007, 1.0)
	fast := NewOneEuro(1.0, 0.007, 1.0)
	slow.Filter(0, 0)
	fast.Filter(0, 0)

	// Slow input: small steps. Fast input: large steps. After the same
	// number of samples the fast filter should sit proportionally closer
	// to its input because the adaptive cutoff opens up with velocity.
	var slowOut, fastOut float64
	for i := 1; i <= 30; i++ {
		ts := float64(i) * 0.033
		slowOut = slow.Filter(float64(i), ts)       // 1 px/frame
		fastOut = fast.Filter(float64(i)*100.0, ts) // 100 px/frame
	}

	slowLag := (30.0 - slowOut) / 30.0
	fastLag := (3000.0 - fastOut) / 3000.0
	if fastLag >= slowLag {
		t.Errorf("fast motion should lag relatively less: slow %f fast %f", slowLag, fastLag)
	}
}

func TestOneEuro_Reset(t *testing.T) {
	f := NewOneEuro(1.0, 0.007, 1.0)
	f.Filter(50, 0)
	f.Filter(60, 0.1)

	f.Reset()

	got := f.Filter(999, 5.0)
	if got != 999 {
		t.Errorf("first call after reset should pass through, got %f", got)
	}
}
