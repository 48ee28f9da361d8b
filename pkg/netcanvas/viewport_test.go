package netcanvas

import "testing"

func TestWindowSubscribe(t *testing.T) {
	win := NewWindow(10, 20)
	var got [][2]int
	unsub := win.Subscribe(func(w, h int) { got = append(got, [2]int{w, h}) })

	win.Resize(30, 40)
	win.Resize(30, 40)
	if len(got) != 2 {
		t.Fatalf("listener called %d times, want 2", len(got))
	}
	if w, h := win.Size(); w != 30 || h != 40 {
		t.Errorf("size = %dx%d, want 30x40", w, h)
	}

	unsub()
	unsub()
	if win.Listeners() != 0 {
		t.Errorf("listeners = %d after unsubscribe", win.Listeners())
	}
	win.Resize(1, 1)
	if len(got) != 2 {
		t.Errorf("unsubscribed listener still called")
	}
}

func TestWindowListenerMayUnsubscribe(t *testing.T) {
	win := NewWindow(1, 1)
	var unsub func()
	calls := 0
	unsub = win.Subscribe(func(int, int) {
		calls++
		unsub()
	})
	win.Resize(2, 2)
	win.Resize(3, 3)
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}
