package graphics

// Mouse buttons reported to pointer handlers.
const (
	MouseLeft   = 0
	MouseRight  = 1
	MouseMiddle = 2
)

// Context defines the interface for an OpenGL window context. Event
// handlers run on the thread that calls EndFrame.
type Context interface {
	MakeCurrent()
	Shutdown()
	ShouldClose() bool
	SetShouldClose(bool)
	EndFrame()
	GetFramebufferSize() (int, int)
	GetWindowSize() (int, int)
	SetTitle(string)
	Time() float64

	// OnKey runs f when the key for the printable character r is pressed
	// or repeats. Letters match regardless of case; ' ' is the space bar.
	OnKey(r rune, f func())
	// OnCursorMove receives cursor positions in window coordinates.
	OnCursorMove(f func(x, y float64))
	OnMouseButton(f func(button int, pressed bool, x, y float64))
	OnScroll(f func(yoff float64))
}
