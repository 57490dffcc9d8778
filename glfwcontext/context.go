package glfwcontext

import (
	"log/slog"
	"runtime"
	"unicode"

	glfw "github.com/go-gl/glfw/v3.3/glfw"

	"github.com/richinsley/goparticlefield/graphics"
)

var _ graphics.Context = (*Context)(nil)

// WindowOptions describe the window to create.
type WindowOptions struct {
	Title  string
	Width  int
	Height int
	VSync  bool
}

// Context wraps a GLFW window and dispatches its input events.
type Context struct {
	window *glfw.Window
	// A map to store functions to be called on key presses.
	keyCallbacks map[glfw.Key]func()

	cursorMove  func(x, y float64)
	mouseButton func(button int, pressed bool, x, y float64)
	scroll      func(yoff float64)
}

// New creates and initializes a new GLFW window and returns a Context object.
func New(opts WindowOptions) (*Context, error) {
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.Samples, 4)

	win, err := glfw.CreateWindow(opts.Width, opts.Height, opts.Title, nil, nil)
	if err != nil {
		return nil, err
	}
	win.MakeContextCurrent()
	if opts.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}

	c := &Context{
		window:       win,
		keyCallbacks: make(map[glfw.Key]func()),
	}

	win.SetKeyCallback(c.glfwKeyCallback)
	win.SetCursorPosCallback(c.glfwCursorPosCallback)
	win.SetMouseButtonCallback(c.glfwMouseButtonCallback)
	win.SetScrollCallback(c.glfwScrollCallback)

	return c, nil
}

// RegisterKeyCallback allows the main application to register a function to be
// called when a specific key is pressed.
func (c *Context) RegisterKeyCallback(key glfw.Key, f func()) {
	c.keyCallbacks[key] = f
}

// OnKey registers f for the printable character r. GLFW key codes for
// printable keys are their upper case ASCII values.
func (c *Context) OnKey(r rune, f func()) {
	c.RegisterKeyCallback(glfw.Key(unicode.ToUpper(r)), f)
}

func (c *Context) OnCursorMove(f func(x, y float64)) { c.cursorMove = f }

func (c *Context) OnMouseButton(f func(button int, pressed bool, x, y float64)) { c.mouseButton = f }

func (c *Context) OnScroll(f func(yoff float64)) { c.scroll = f }

func (c *Context) glfwKeyCallback(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	// Handle the default Escape key behavior
	if key == glfw.KeyEscape && action == glfw.Press {
		w.SetShouldClose(true)
	}

	if action == glfw.Press || action == glfw.Repeat {
		if callback, ok := c.keyCallbacks[key]; ok {
			callback()
		}
	}
}

func (c *Context) glfwCursorPosCallback(w *glfw.Window, x, y float64) {
	if c.cursorMove != nil {
		c.cursorMove(x, y)
	}
}

func (c *Context) glfwMouseButtonCallback(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
	if c.mouseButton == nil {
		return
	}
	x, y := w.GetCursorPos()
	c.mouseButton(int(button), action == glfw.Press, x, y)
}

func (c *Context) glfwScrollCallback(w *glfw.Window, xoff, yoff float64) {
	if c.scroll != nil {
		c.scroll(yoff)
	}
}

// MakeCurrent makes the context current for the calling goroutine.
func (c *Context) MakeCurrent() {
	c.window.MakeContextCurrent()
}

// Shutdown only destroys the window.
func (c *Context) Shutdown() {
	c.window.Destroy()
}

func (c *Context) ShouldClose() bool {
	return c.window.ShouldClose()
}

func (c *Context) SetShouldClose(v bool) {
	c.window.SetShouldClose(v)
}

// EndFrame presents the frame and dispatches pending input events.
func (c *Context) EndFrame() {
	c.window.SwapBuffers()
	glfw.PollEvents()
}

func (c *Context) GetFramebufferSize() (int, int) {
	return c.window.GetFramebufferSize()
}

func (c *Context) GetWindowSize() (int, int) {
	return c.window.GetSize()
}

func (c *Context) SetTitle(title string) {
	c.window.SetTitle(title)
}

func (c *Context) Time() float64 {
	return glfw.GetTime()
}

// InitGraphics initializes the main graphics subsystem (GLFW). Must be called from the main thread.
func InitGraphics() error {
	runtime.LockOSThread()
	if err := glfw.Init(); err != nil {
		return err
	}
	slog.Info("GLFW initialized")
	return nil
}

// TerminateGraphics shuts down the graphics subsystem. Must be called from the main thread.
func TerminateGraphics() {
	glfw.Terminate()
	slog.Info("GLFW terminated")
}
