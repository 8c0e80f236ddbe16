package canvas

import "image/color"

// Named brush colors. CycleOrder is the order the pinch gesture steps
// through them.
var (
	palette = map[string]color.RGBA{
		"red":     {R: 255, A: 255},
		"green":   {G: 255, A: 255},
		"blue":    {B: 255, A: 255},
		"yellow":  {R: 255, G: 255, A: 255},
		"cyan":    {G: 255, B: 255, A: 255},
		"magenta": {R: 255, B: 255, A: 255},
		"white":   {R: 255, G: 255, B: 255, A: 255},
		"black":   {A: 255},
	}

	// CycleOrder lists the palette names in pinch-cycle order.
	CycleOrder = []string{"red", "blue", "green", "yellow", "cyan", "magenta", "white", "black"}
)

// Color looks up a named palette color. Unknown names return white.
func Color(name string) color.RGBA {
	if c, ok := palette[name]; ok {
		return c
	}
	return color.RGBA{R: 255, G: 255, B: 255, A: 255}
}

// ColorNames returns the available palette names in cycle order.
func ColorNames() []string {
	names := make([]string, len(CycleOrder))
	copy(names, CycleOrder)
	return names
}

// BlendToward mixes c toward bg by (1 - opacity). Opacity 1 returns c
// unchanged, opacity 0 returns bg. Used to apply brush opacity before a
// color ever reaches the engine, which stores no per-pixel alpha.
func BlendToward(c, bg color.RGBA, opacity float64) color.RGBA {
	if opacity >= 1 {
		return c
	}
	if opacity < 0 {
		opacity = 0
	}
	mix := func(a, b uint8) uint8 {
		return uint8(float64(a)*opacity + float64(b)*(1-opacity))
	}
	return color.RGBA{
		R: mix(c.R, bg.R),
		G: mix(c.G, bg.G),
		B: mix(c.B, bg.B),
		A: 255,
	}
}
