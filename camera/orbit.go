package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const polarEpsilon = 1e-6

// DragMode selects what a pointer drag does to the camera.
type DragMode int

const (
	DragNone DragMode = iota
	DragRotate
	DragPan
)

// OrbitControls rotates, pans and dollies a Camera around its target.
// With damping enabled, input accumulates into deltas that decay over
// successive Update calls instead of being applied at once.
type OrbitControls struct {
	camera *Camera

	EnableDamping bool
	DampingFactor float32
	RotateSpeed   float32
	ZoomSpeed     float32
	MinDistance   float32
	MaxDistance   float32

	// spherical deltas (theta around Y, phi from +Y)
	deltaTheta float64
	deltaPhi   float64
	scale      float64
	panOffset  mgl32.Vec3

	drag       DragMode
	lastX      float64
	lastY      float64
	viewHeight int
}

// NewOrbitControls attaches controls to cam. dampingFactor is used only
// when damping is enabled.
func NewOrbitControls(cam *Camera, damping bool, dampingFactor float32) *OrbitControls {
	return &OrbitControls{
		camera:        cam,
		EnableDamping: damping,
		DampingFactor: dampingFactor,
		RotateSpeed:   1,
		ZoomSpeed:     1,
		MinDistance:   0.5,
		MaxDistance:   500,
		scale:         1,
		viewHeight:    1,
	}
}

// SetViewHeight records the viewport height in window units; drag deltas
// are scaled by it.
func (o *OrbitControls) SetViewHeight(h int) {
	if h > 0 {
		o.viewHeight = h
	}
}

// BeginDrag starts a rotate or pan gesture at window position (x, y).
func (o *OrbitControls) BeginDrag(mode DragMode, x, y float64) {
	o.drag = mode
	o.lastX = x
	o.lastY = y
}

// EndDrag finishes the current gesture.
func (o *OrbitControls) EndDrag() {
	o.drag = DragNone
}

// Dragging reports the active gesture.
func (o *OrbitControls) Dragging() DragMode {
	return o.drag
}

// Move feeds a pointer position while a gesture is active.
func (o *OrbitControls) Move(x, y float64) {
	if o.drag == DragNone {
		return
	}
	dx := x - o.lastX
	dy := y - o.lastY
	o.lastX = x
	o.lastY = y

	h := float64(o.viewHeight)
	switch o.drag {
	case DragRotate:
		o.RotateLeft(2 * math.Pi * dx / h * float64(o.RotateSpeed))
		o.RotateUp(2 * math.Pi * dy / h * float64(o.RotateSpeed))
	case DragPan:
		o.Pan(dx, dy)
	}
}

// Scroll dollies the camera; positive offsets move it towards the target.
func (o *OrbitControls) Scroll(yoff float64) {
	if yoff == 0 {
		return
	}
	step := math.Pow(0.95, float64(o.ZoomSpeed))
	if yoff > 0 {
		o.scale *= step
	} else {
		o.scale /= step
	}
}

// RotateLeft rotates around the target's vertical axis by angle radians.
func (o *OrbitControls) RotateLeft(angle float64) {
	o.deltaTheta -= angle
}

// RotateUp tilts the camera by angle radians.
func (o *OrbitControls) RotateUp(angle float64) {
	o.deltaPhi -= angle
}

// Pan moves the target in the view plane by a window-space delta.
func (o *OrbitControls) Pan(dx, dy float64) {
	c := o.camera
	offset := c.Position.Sub(c.Target)
	targetDistance := float64(offset.Len()) * math.Tan(float64(mgl32.DegToRad(c.FOV))/2)
	h := float64(o.viewHeight)

	view := c.View()
	right := mgl32.Vec3{view.At(0, 0), view.At(0, 1), view.At(0, 2)}
	up := mgl32.Vec3{view.At(1, 0), view.At(1, 1), view.At(1, 2)}

	left := right.Mul(float32(-2 * dx * targetDistance / h))
	upward := up.Mul(float32(2 * dy * targetDistance / h))
	o.panOffset = o.panOffset.Add(left).Add(upward)
}

// Update applies pending deltas to the camera. It returns true when the
// camera moved.
func (o *OrbitControls) Update() bool {
	c := o.camera
	offset := c.Position.Sub(c.Target)

	radius := float64(offset.Len())
	theta := math.Atan2(float64(offset.X()), float64(offset.Z()))
	phi := 0.0
	if radius > 0 {
		phi = math.Acos(clamp(float64(offset.Y())/radius, -1, 1))
	}

	factor := 1.0
	if o.EnableDamping {
		factor = float64(o.DampingFactor)
	}
	theta += o.deltaTheta * factor
	phi += o.deltaPhi * factor
	phi = clamp(phi, polarEpsilon, math.Pi-polarEpsilon)

	radius = clamp(radius*o.scale, float64(o.MinDistance), float64(o.MaxDistance))

	before := c.Position
	c.Target = c.Target.Add(o.panOffset.Mul(float32(factor)))

	sinPhi := math.Sin(phi)
	offset = mgl32.Vec3{
		float32(radius * sinPhi * math.Sin(theta)),
		float32(radius * math.Cos(phi)),
		float32(radius * sinPhi * math.Cos(theta)),
	}
	c.Position = c.Target.Add(offset)

	if o.EnableDamping {
		keep := 1 - factor
		o.deltaTheta *= keep
		o.deltaPhi *= keep
		o.panOffset = o.panOffset.Mul(float32(keep))
	} else {
		o.deltaTheta = 0
		o.deltaPhi = 0
		o.panOffset = mgl32.Vec3{}
	}
	o.scale = 1

	return c.Position.Sub(before).Len() > 1e-6
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
