package field

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	// MinMouseDistance bounds the inverse-distance mouse term so a vertex
	// sitting exactly under the pointer gets a finite push.
	MinMouseDistance = 0.01
	// ProgressAmplitude scales the z offset of the entry animation.
	ProgressAmplitude = 10.0
	// DistortionAmplitude scales the time-varying xy wobble.
	DistortionAmplitude = 0.1
)

// Displace evaluates the vertex shader's position logic on the CPU for one
// vertex. It matches the GLSL in the shader package.
func Displace(pos mgl32.Vec3, angle float32, u *Uniforms) mgl32.Vec3 {
	p := pos
	t := float64(u.Time)

	if u.Distortion == 1 {
		p[0] += float32(math.Sin(float64(p.Y())+t) * DistortionAmplitude)
		p[1] += float32(math.Cos(float64(p.X())+t) * DistortionAmplitude)
	}

	dist := float64(p.Sub(u.Mouse).Len())
	if dist < MinMouseDistance {
		dist = MinMouseDistance
	}
	strength := 1 / dist
	a := float64(angle)
	d := mgl32.Vec3{
		float32(math.Cos(a) * strength),
		float32(math.Sin(a) * strength),
		1,
	}
	p = p.Add(d.Normalize().Mul(float32(strength)))

	p[2] += float32(math.Sin(float64(u.Progress)*a) * ProgressAmplitude)
	return p
}
