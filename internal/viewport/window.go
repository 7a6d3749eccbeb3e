package viewport

import "sync"

// Window is a settable viewport implementing ScrollSource, MediaQuery and
// MotionPreference. It backs previews and tests where no rendering surface
// exists.
type Window struct {
	mu      sync.RWMutex
	width   int
	scrollY int
	reduced bool
}

// NewWindow creates a Window of the given width scrolled to the top.
func NewWindow(width int) *Window {
	return &Window{width: width}
}

func (w *Window) ScrollY() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.scrollY
}

func (w *Window) MaxWidth(px int) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.width <= px
}

func (w *Window) ReducedMotion() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.reduced
}

// ScrollTo sets the scroll offset.
func (w *Window) ScrollTo(y int) {
	w.mu.Lock()
	w.scrollY = y
	w.mu.Unlock()
}

// Resize sets the viewport width.
func (w *Window) Resize(width int) {
	w.mu.Lock()
	w.width = width
	w.mu.Unlock()
}

// SetReducedMotion sets the motion preference.
func (w *Window) SetReducedMotion(reduced bool) {
	w.mu.Lock()
	w.reduced = reduced
	w.mu.Unlock()
}
