package filter

import "image"

// Stabilization selects a preset trade-off between responsiveness and
// stability for the point smoother.
type Stabilization string

const (
	// StabilizationLow favors responsiveness: short averaging window,
	// high cutoff.
	StabilizationLow Stabilization = "low"
	// StabilizationMedium is the balanced default.
	StabilizationMedium Stabilization = "medium"
	// StabilizationHigh favors stability: long window, low cutoff,
	// wide jitter dead-zone.
	StabilizationHigh Stabilization = "high"
)

// preset holds the tuning triple for a stabilization level.
type preset struct {
	minCutoff  float64
	beta       float64
	windowSize int
	jitter     int
}

var presets = map[Stabilization]preset{
	StabilizationLow:    {minCutoff: 1.5, beta: 0.02, windowSize: 2, jitter: 3},
	StabilizationMedium: {minCutoff: 1.0, beta: 0.007, windowSize: 3, jitter: 5},
	StabilizationHigh:   {minCutoff: 0.5, beta: 0.004, windowSize: 5, jitter: 8},
}

// PointSmoother stabilizes a 2-D pixel trajectory. It composes two
// one-euro filters (one per axis) with a jitter gate that suppresses
// sub-threshold tremor entirely and a moving-average window over the
// filtered output.
//
// Not safe for concurrent use; callers keep one smoother per hand slot.
type PointSmoother struct {
	fx, fy *OneEuroFilter

	windowSize int
	jitter     int
	history    []image.Point

	stable    image.Point
	hasStable bool
}

// NewPointSmoother creates a smoother for the given stabilization level.
// jitterThreshold overrides the level's default dead-zone when positive.
// Unknown levels fall back to medium.
func NewPointSmoother(level Stabilization, jitterThreshold int) *PointSmoother {
	p, ok := presets[level]
	if !ok {
		p = presets[StabilizationMedium]
	}
	jitter := p.jitter
	if jitterThreshold > 0 {
		jitter = jitterThreshold
	}
	return &PointSmoother{
		fx:         NewOneEuro(p.minCutoff, p.beta, DefaultDCutoff),
		fy:         NewOneEuro(p.minCutoff, p.beta, DefaultDCutoff),
		windowSize: p.windowSize,
		jitter:     jitter,
		history:    make([]image.Point, 0, p.windowSize),
	}
}

// Smooth filters a fingertip point observed at time t (seconds).
// A nil point means "no fingertip this frame": nil is returned and no
// state changes, so a single missing sample never resets the filters.
// Callers that want a reset call Reset explicitly.
func (s *PointSmoother) Smooth(p *image.Point, t float64) *image.Point {
	if p == nil {
		return nil
	}

	// Jitter gate: sub-threshold movement around the last accepted point
	// is reported as no movement at all.
	if s.hasStable && abs(p.X-s.stable.X) < s.jitter && abs(p.Y-s.stable.Y) < s.jitter {
		out := s.stable
		return &out
	}

	x := s.fx.Filter(float64(p.X), t)
	y := s.fy.Filter(float64(p.Y), t)

	if len(s.history) >= s.windowSize {
		s.history = s.history[1:]
	}
	s.history = append(s.history, image.Pt(int(x), int(y)))

	var sumX, sumY int
	for _, h := range s.history {
		sumX += h.X
		sumY += h.Y
	}
	n := len(s.history)
	mean := image.Pt(sumX/n, sumY/n)

	s.stable = mean
	s.hasStable = true

	out := mean
	return &out
}

// Reset discards all filter and history state. Used when smoothing is
// toggled or the stabilization level changes, to avoid blending samples
// across configurations.
func (s *PointSmoother) Reset() {
	s.fx.Reset()
	s.fy.Reset()
	s.history = s.history[:0]
	s.hasStable = false
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
