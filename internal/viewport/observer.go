package viewport

import (
	"sync"
	"sync/atomic"
)

// Event is a kind of viewport notification an Observer listens to.
type Event uint8

const (
	EventScroll Event = iota + 1
	EventResize
	EventMediaChange
)

func (e Event) String() string {
	switch e {
	case EventScroll:
		return "scroll"
	case EventResize:
		return "resize"
	case EventMediaChange:
		return "media-change"
	default:
		return "unknown"
	}
}

// EventSource delivers viewport events. Subscribe returns a function that
// removes the subscription; calling it more than once must be safe.
type EventSource interface {
	Subscribe(ev Event, fn func()) (dispose func())
}

// ScrollSource reports the current vertical scroll offset in pixels.
type ScrollSource interface {
	ScrollY() int
}

// MediaQuery evaluates "(max-width: px)" against the current viewport.
type MediaQuery interface {
	MaxWidth(px int) bool
}

// MotionPreference reports whether the user asked for reduced motion.
type MotionPreference interface {
	ReducedMotion() bool
}

// FrameScheduler runs fn before the next rendered frame.
type FrameScheduler interface {
	RequestFrame(fn func())
}

// Sink receives the presentation writes.
type Sink interface {
	SetNavHidden(hidden bool)
	SetShadeOpacity(opacity float64)
	SetParallaxOffset(px int)
}

// Sources bundles everything an Observer reads from and writes to.
// Motion is optional; a nil Motion means motion is not reduced.
type Sources struct {
	Scroll ScrollSource
	Media  MediaQuery
	Motion MotionPreference
	Events EventSource
	Frames FrameScheduler
	Sink   Sink
}

func (s Sources) complete() bool {
	return s.Scroll != nil && s.Media != nil && s.Events != nil && s.Frames != nil && s.Sink != nil
}

// applied caches the last values written to the Sink.
type applied struct {
	valid bool
	v     Visuals
}

// Observer keeps a Sink in sync with the viewport.
//
// Events of any kind request a frame; while a frame is pending further events
// are dropped, so the Sink is written at most once per frame.
type Observer struct {
	src     Sources
	pending atomic.Bool

	mu         sync.Mutex
	maxOpacity float64
	last       applied
	disposers  []func()
	closed     bool
}

// Attach builds an Observer, applies the current state immediately and
// subscribes to scroll, resize and media-change events. It returns false and
// attaches nothing when any required source is missing.
func Attach(src Sources, maxOpacity float64) (*Observer, bool) {
	if !src.complete() {
		return nil, false
	}

	o := &Observer{src: src, maxOpacity: maxOpacity}
	o.apply()

	disposers := make([]func(), 0, 3)
	for _, ev := range []Event{EventScroll, EventResize, EventMediaChange} {
		disposers = append(disposers, src.Events.Subscribe(ev, o.schedule))
	}
	o.mu.Lock()
	o.disposers = disposers
	o.mu.Unlock()

	return o, true
}

// schedule requests a frame unless one is already pending.
func (o *Observer) schedule() {
	if o.pending.CompareAndSwap(false, true) {
		o.src.Frames.RequestFrame(o.frame)
	}
}

func (o *Observer) frame() {
	o.pending.Store(false)
	o.apply()
}

// state reads the sources. Breakpoints are evaluated on every call because
// the viewport may have been resized or rotated since the last event.
func (o *Observer) state() ScrollState {
	s := ScrollState{ScrollY: o.src.Scroll.ScrollY()}
	switch {
	case o.src.Media.MaxWidth(MobileMaxWidth):
		s.Width = Mobile
	case o.src.Media.MaxWidth(BackgroundMaxWidth):
		s.Width = Tablet
	default:
		s.Width = Desktop
	}
	if o.src.Motion != nil {
		s.ReducedMotion = o.src.Motion.ReducedMotion()
	}
	return s
}

func (o *Observer) apply() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return
	}

	v := Compute(o.state(), o.maxOpacity)
	sink := o.src.Sink
	if !o.last.valid || o.last.v.NavHidden != v.NavHidden {
		sink.SetNavHidden(v.NavHidden)
	}
	if !o.last.valid || o.last.v.ShadeOpacity != v.ShadeOpacity {
		sink.SetShadeOpacity(v.ShadeOpacity)
	}
	if !o.last.valid || o.last.v.ParallaxOffset != v.ParallaxOffset {
		sink.SetParallaxOffset(v.ParallaxOffset)
	}
	o.last = applied{valid: true, v: v}
}

// Visuals returns the last applied values.
func (o *Observer) Visuals() Visuals {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.last.v
}

// SetMaxOpacity changes the shade ceiling after a route switch. The cache is
// dropped so every output is written again.
func (o *Observer) SetMaxOpacity(v float64) {
	o.mu.Lock()
	o.maxOpacity = v
	o.last = applied{}
	o.mu.Unlock()

	o.apply()
}

// Close removes all subscriptions and resets the parallax offset to zero.
// Frames already requested become no-ops.
func (o *Observer) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return
	}
	o.closed = true

	for _, dispose := range o.disposers {
		dispose()
	}
	o.disposers = nil
	o.src.Sink.SetParallaxOffset(0)
	o.last = applied{}
}
