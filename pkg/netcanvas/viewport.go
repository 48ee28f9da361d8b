package netcanvas

import "sync"

// Viewport reports the host's drawable size and notifies on changes.
type Viewport interface {
	Size() (w, h int)
	// Subscribe registers fn for size changes and returns a func that
	// removes it. The returned func is safe to call more than once.
	Subscribe(fn func(w, h int)) (unsubscribe func())
}

// Window is an in-memory Viewport that hosts push sizes into.
type Window struct {
	mu        sync.Mutex
	w, h      int
	nextID    int
	listeners map[int]func(w, h int)
}

// NewWindow returns a Window of the given size.
func NewWindow(w, h int) *Window {
	return &Window{w: w, h: h, listeners: make(map[int]func(int, int))}
}

func (win *Window) Size() (int, int) {
	win.mu.Lock()
	defer win.mu.Unlock()
	return win.w, win.h
}

func (win *Window) Subscribe(fn func(w, h int)) func() {
	win.mu.Lock()
	defer win.mu.Unlock()
	id := win.nextID
	win.nextID++
	win.listeners[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			win.mu.Lock()
			delete(win.listeners, id)
			win.mu.Unlock()
		})
	}
}

// Resize records the new size and notifies every listener, even when the
// size is unchanged. Listeners run outside the window's lock.
func (win *Window) Resize(w, h int) {
	win.mu.Lock()
	win.w, win.h = w, h
	fns := make([]func(int, int), 0, len(win.listeners))
	for _, fn := range win.listeners {
		fns = append(fns, fn)
	}
	win.mu.Unlock()

	for _, fn := range fns {
		fn(w, h)
	}
}

// Listeners returns the number of active subscriptions.
func (win *Window) Listeners() int {
	win.mu.Lock()
	defer win.mu.Unlock()
	return len(win.listeners)
}
