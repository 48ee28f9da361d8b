// Package netcanvas animates a biological network as drifting particles
// joined by proximity edges.
//
// A Renderer owns one particle per input node. Every frame it advances the
// particles by their constant velocity, wraps them around the canvas edges
// (toroidal topology), connects every pair closer than the proximity
// threshold and draws edges and particles onto a Surface.
//
// The frame loop is cooperative: each frame schedules the next one through a
// Scheduler, so hosts decide what a "frame" is. ManualScheduler steps frames
// on demand (tests, exports), FrameClock follows the wall clock, and the
// terminal host delivers frames as bubbletea messages.
//
// Typical use:
//
//	win := netcanvas.NewWindow(800, 600)
//	r := netcanvas.New(netcanvas.Config{
//	    Surface:   surface.NewRaster(),
//	    Scheduler: netcanvas.NewFrameClock(60),
//	    Viewport:  win,
//	    Theme:     theme.Default(),
//	})
//	r.SetNodes(nodes)
//	if err := r.Start(); err != nil {
//	    return err
//	}
//	defer r.Stop()
package netcanvas
