// Package filter provides temporal smoothing for fingertip trajectories.
package filter

import "math"

// Default one-euro parameters. Lower minCutoff/beta trades responsiveness
// for stability; higher values track fast strokes with less lag.
const (
	DefaultMinCutoff = 1.0
	DefaultBeta      = 0.007
	DefaultDCutoff   = 1.0

	// minDT is the floor for the time delta between samples.
	// Repeated timestamps would otherwise divide by zero.
	minDT = 0.001
)

// OneEuroFilter is a single-axis low-pass filter with a velocity-adaptive
// cutoff frequency. Fast motion raises the cutoff so the filter trusts new
// samples more; near-stationary input is smoothed aggressively.
//
// One instance filters one axis. Timestamps are expected to be
// monotonically non-decreasing per instance.
type OneEuroFilter struct {
	minCutoff float64
	beta      float64
	dCutoff   float64

	xPrev       float64
	dxPrev      float64
	tPrev       float64
	initialized bool
}

// NewOneEuro creates a OneEuroFilter with the given tuning parameters.
// Non-positive cutoffs fall back to the defaults.
func NewOneEuro(minCutoff, beta, dCutoff float64) *OneEuroFilter {
	if minCutoff <= 0 {
		minCutoff = DefaultMinCutoff
	}
	if dCutoff <= 0 {
		dCutoff = DefaultDCutoff
	}
	return &OneEuroFilter{
		minCutoff: minCutoff,
		beta:      beta,
		dCutoff:   dCutoff,
	}
}

// Filter applies the filter to value x observed at time t (seconds).
// The first call initializes the filter and returns x unchanged.
func (f *OneEuroFilter) Filter(x, t float64) float64 {
	if !f.initialized {
		f.xPrev = x
		f.tPrev = t
		f.dxPrev = 0
		f.initialized = true
		return x
	}

	dt := t - f.tPrev
	if dt <= 0 {
		dt = minDT
	}

	// Smooth the raw derivative, then derive the adaptive cutoff from it.
	dx := (x - f.xPrev) / dt
	edx := smooth(dx, f.dxPrev, alpha(dt, f.dCutoff))

	cutoff := f.minCutoff + f.beta*math.Abs(edx)
	xFiltered := smooth(x, f.xPrev, alpha(dt, cutoff))

	f.xPrev = xFiltered
	f.dxPrev = edx
	f.tPrev = t

	return xFiltered
}

// Reset discards all filter state. The next Filter call reinitializes.
func (f *OneEuroFilter) Reset() {
	f.initialized = false
	f.xPrev = 0
	f.dxPrev = 0
	f.tPrev = 0
}

// alpha computes the one-pole smoothing coefficient for a cutoff frequency.
func alpha(dt, cutoff float64) float64 {
	tau := 1.0 / (2 * math.Pi * cutoff)
	return 1.0 / (1.0 + tau/dt)
}

// smooth applies exponential smoothing with coefficient a.
func smooth(x, xPrev, a float64) float64 {
	return a*x + (1-a)*xPrev
}
