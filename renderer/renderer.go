package renderer

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/richinsley/goparticlefield/camera"
	"github.com/richinsley/goparticlefield/field"
	"github.com/richinsley/goparticlefield/graphics"
	"github.com/richinsley/goparticlefield/panel"
	"github.com/richinsley/goparticlefield/stats"
)

// glInitOnce ensures gl.Init() is called only once.
var glInitOnce sync.Once

// Scene is everything the renderer draws and drives.
type Scene struct {
	Field  *field.Field
	Panel  *panel.Panel
	Camera *camera.Camera
	Orbit  *camera.OrbitControls
	Stats  *stats.Reporter
	// Background is the clear color.
	Background [3]float32
}

// Renderer owns the GL state for the particle field and runs the frame
// loop on the calling (main) thread.
type Renderer struct {
	context graphics.Context
	scene   Scene
	pass    *RenderPass
}

// NewRenderer initialises OpenGL on ctx and builds the particle pass.
func NewRenderer(ctx graphics.Context, scene Scene) (*Renderer, error) {
	r := &Renderer{
		context: ctx,
		scene:   scene,
	}

	if err := InitGL(ctx); err != nil {
		return nil, err
	}

	var err error
	r.pass, err = newRenderPass(scene.Field.Points())
	if err != nil {
		return nil, err
	}

	gl.Enable(gl.PROGRAM_POINT_SIZE)
	gl.Enable(gl.DEPTH_TEST)
	gl.DepthMask(false)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	bg := scene.Background
	gl.ClearColor(bg[0], bg[1], bg[2], 1)

	bindInput(ctx, scene.Field, scene.Panel, scene.Camera, scene.Orbit, r.viewport)
	return r, nil
}

// InitGL makes ctx current and loads the OpenGL function pointers. Textures
// may be created once it has returned.
func InitGL(ctx graphics.Context) error {
	// Make the context current BEFORE initializing OpenGL.
	ctx.MakeCurrent()

	var initErr error
	glInitOnce.Do(func() {
		initErr = gl.Init()
		if initErr == nil {
			slog.Info("OpenGL initialized", "version", gl.GoStr(gl.GetString(gl.VERSION)))
		}
	})
	if initErr != nil {
		return fmt.Errorf("failed to initialize OpenGL: %w", initErr)
	}
	return nil
}

// viewport returns the window size and the framebuffer to window ratio.
func (r *Renderer) viewport() field.Viewport {
	w, h := r.context.GetWindowSize()
	fbw, _ := r.context.GetFramebufferSize()
	ratio := 1.0
	if w > 0 {
		ratio = float64(fbw) / float64(w)
	}
	return field.Viewport{Width: w, Height: h, PixelRatio: ratio}
}

// RenderFrame advances the field to elapsed seconds and draws it.
func (r *Renderer) RenderFrame(elapsed float64) {
	vp := r.viewport()
	r.scene.Camera.SetViewport(vp.Width, vp.Height)
	r.scene.Orbit.SetViewHeight(vp.Height)
	r.scene.Orbit.Update()

	r.scene.Field.Tick(elapsed, vp)

	fbWidth, fbHeight := r.context.GetFramebufferSize()
	gl.Viewport(0, 0, int32(fbWidth), int32(fbHeight))
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	r.pass.Draw(r.scene.Field.Uniforms(), r.scene.Camera.View(), r.scene.Camera.Projection())
}

// Run mounts the field and renders until the window is closed.
func (r *Renderer) Run() {
	startTime := r.context.Time()
	last := 0.0
	r.scene.Field.Mount(0)

	for !r.context.ShouldClose() {
		currentTime := r.context.Time() - startTime

		r.RenderFrame(currentTime)
		r.context.EndFrame()

		if r.scene.Stats != nil {
			r.scene.Stats.Frame(currentTime, currentTime-last, r.context.SetTitle)
		}
		last = currentTime
	}
}

// Shutdown frees GL resources. The window itself is shut down by its owner.
func (r *Renderer) Shutdown() {
	if r.pass != nil {
		r.pass.Destroy()
	}
}

func newProgram(vertexShaderSource, fragmentShaderSource string) (uint32, error) {
	vertexShader, err := compileShader(vertexShaderSource, gl.VERTEX_SHADER)
	if err != nil {
		return 0, err
	}
	fragmentShader, err := compileShader(fragmentShaderSource, gl.FRAGMENT_SHADER)
	if err != nil {
		gl.DeleteShader(vertexShader)
		return 0, err
	}

	program := gl.CreateProgram()
	gl.AttachShader(program, vertexShader)
	gl.AttachShader(program, fragmentShader)
	gl.LinkProgram(program)

	gl.DeleteShader(vertexShader)
	gl.DeleteShader(fragmentShader)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(log))
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("failed to link program: %v", log)
	}

	return program, nil
}

func compileShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		logText := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(logText))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("failed to compile shader: %v", logText)
	}
	return shader, nil
}
