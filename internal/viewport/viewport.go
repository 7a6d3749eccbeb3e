// Package viewport derives the scroll-driven presentation state of the site:
// whether the desktop navigation is hidden, how opaque the background shade
// is, and how far the background layer is shifted for the parallax effect.
//
// Compute is a pure function of the current ScrollState. Observer wires it to
// injected event sources and applies the result to a Sink at most once per
// frame.
package viewport

import "math"

const (
	// NavHideThreshold is the scroll offset (px) above which the desktop
	// navigation is hidden.
	NavHideThreshold = 40
	// ShadeRamp is the scroll distance (px) over which the shade fades in.
	ShadeRamp = 220
	// ParallaxFactor is the fraction of the scroll offset applied to the
	// background layer on narrow viewports.
	ParallaxFactor = 0.28

	// MobileMaxWidth is the widest viewport (px) treated as mobile.
	MobileMaxWidth = 640
	// BackgroundMaxWidth is the widest viewport (px) with background parallax.
	BackgroundMaxWidth = 900
)

// WidthClass is the breakpoint bucket of the current viewport width.
type WidthClass uint8

const (
	// Desktop is wider than BackgroundMaxWidth.
	Desktop WidthClass = iota
	// Tablet is wider than MobileMaxWidth, up to BackgroundMaxWidth.
	Tablet
	// Mobile is up to MobileMaxWidth.
	Mobile
)

func (c WidthClass) String() string {
	switch c {
	case Mobile:
		return "mobile"
	case Tablet:
		return "tablet"
	default:
		return "desktop"
	}
}

// ClassifyWidth maps a viewport width in pixels to its WidthClass.
func ClassifyWidth(px int) WidthClass {
	switch {
	case px <= MobileMaxWidth:
		return Mobile
	case px <= BackgroundMaxWidth:
		return Tablet
	default:
		return Desktop
	}
}

// ScrollState is the input of a single recomputation.
type ScrollState struct {
	ScrollY       int
	Width         WidthClass
	ReducedMotion bool
}

// Visuals is the derived presentation state.
type Visuals struct {
	NavHidden      bool
	ShadeOpacity   float64
	ParallaxOffset int
}

// Compute derives Visuals from s. maxOpacity is the per-route shade ceiling;
// zero disables the shade.
func Compute(s ScrollState, maxOpacity float64) Visuals {
	y := max(s.ScrollY, 0)

	var v Visuals
	v.NavHidden = s.Width != Mobile && y > NavHideThreshold

	if maxOpacity > 0 && !s.ReducedMotion {
		t := math.Min(1, float64(y)/ShadeRamp)
		v.ShadeOpacity = round3(t * maxOpacity)
	}

	if s.Width != Desktop {
		v.ParallaxOffset = int(math.Round(float64(y) * ParallaxFactor))
	}
	return v
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
