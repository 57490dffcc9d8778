// Package camera provides a perspective camera and orbit-style controls.
package camera

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/richinsley/goparticlefield/picking"
)

// Camera is a perspective camera looking at Target.
type Camera struct {
	// FOV is the vertical field of view in degrees.
	FOV    float32
	Aspect float32
	Near   float32
	Far    float32

	Position mgl32.Vec3
	Target   mgl32.Vec3
	Up       mgl32.Vec3
}

// New creates a camera at position looking at the origin.
func New(fov float32, position mgl32.Vec3, near, far float32) *Camera {
	return &Camera{
		FOV:      fov,
		Aspect:   1,
		Near:     near,
		Far:      far,
		Position: position,
		Up:       mgl32.Vec3{0, 1, 0},
	}
}

// SetViewport updates the aspect ratio from a viewport size.
func (c *Camera) SetViewport(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	c.Aspect = float32(width) / float32(height)
}

// View returns the world-to-camera matrix.
func (c *Camera) View() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position, c.Target, c.Up)
}

// Projection returns the perspective projection matrix.
func (c *Camera) Projection() mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.FOV), c.Aspect, c.Near, c.Far)
}

// Ray returns the ray from the camera through a point given in normalised
// device coordinates.
func (c *Camera) Ray(ndc mgl32.Vec2) picking.Ray {
	inv := c.Projection().Mul4(c.View()).Inv()
	p := inv.Mul4x1(mgl32.Vec4{ndc.X(), ndc.Y(), 0.5, 1})
	world := p.Vec3().Mul(1 / p.W())
	return picking.Ray{
		Origin:    c.Position,
		Direction: world.Sub(c.Position).Normalize(),
	}
}
