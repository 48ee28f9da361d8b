package testutil

import (
	"image/color"
	"sync"

	"github.com/vanderheijden86/spectra/pkg/netcanvas"
)

// RecordedFrame holds the draw calls between two Clear calls.
type RecordedFrame struct {
	Lines []netcanvas.Segment
	Dots  []netcanvas.Dot
}

// Recorder is a netcanvas.Surface that remembers every call.
type Recorder struct {
	mu         sync.Mutex
	width      int
	height     int
	resizes    [][2]int
	frames     []RecordedFrame
	cur        *RecordedFrame
	presents   int
	background color.NRGBA
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Resize(w, h int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.width, r.height = w, h
	r.resizes = append(r.resizes, [2]int{w, h})
}

func (r *Recorder) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = append(r.frames, RecordedFrame{})
	r.cur = &r.frames[len(r.frames)-1]
}

func (r *Recorder) Line(s netcanvas.Segment) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current().Lines = append(r.current().Lines, s)
}

func (r *Recorder) Circle(d netcanvas.Dot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current().Dots = append(r.current().Dots, d)
}

func (r *Recorder) Present() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.presents++
}

func (r *Recorder) SetBackground(c color.NRGBA) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.background = c
}

// current returns the open frame, opening one if draws arrive before Clear.
func (r *Recorder) current() *RecordedFrame {
	if r.cur == nil {
		r.frames = append(r.frames, RecordedFrame{})
		r.cur = &r.frames[len(r.frames)-1]
	}
	return r.cur
}

// Frames returns the number of frames started with Clear.
func (r *Recorder) Frames() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.frames)
}

// Last returns a copy of the most recent frame.
func (r *Recorder) Last() RecordedFrame {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.frames) == 0 {
		return RecordedFrame{}
	}
	f := r.frames[len(r.frames)-1]
	return RecordedFrame{
		Lines: append([]netcanvas.Segment(nil), f.Lines...),
		Dots:  append([]netcanvas.Dot(nil), f.Dots...),
	}
}

// Size returns the last size passed to Resize.
func (r *Recorder) Size() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.width, r.height
}

// Resizes returns every size passed to Resize, in order.
func (r *Recorder) Resizes() [][2]int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][2]int(nil), r.resizes...)
}

// Presents returns how many frames were presented.
func (r *Recorder) Presents() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.presents
}

// Background returns the last background colour set.
func (r *Recorder) Background() color.NRGBA {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.background
}
