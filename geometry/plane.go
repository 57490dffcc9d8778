// Package geometry builds the point-cloud buffers drawn by the renderer.
package geometry

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl32"
)

// Sphere bounds a set of points.
type Sphere struct {
	Center mgl32.Vec3
	Radius float32
}

// Points holds the vertex buffers of a subdivided plane drawn as GL_POINTS.
// Positions are packed xyz, UVs packed uv, and Angles carry one scalar per
// vertex used to desynchronise per-vertex animation.
type Points struct {
	Width, Height        float32
	SegmentsX, SegmentsY int

	positions []float32
	uvs       []float32
	angles    []float32
	bounds    Sphere
}

// NewPlane builds a width x height plane in the XY plane, centred on the
// origin, with segX x segY subdivisions. The grid includes both boundary
// edges, so it has (segX+1)*(segY+1) vertices. Vertices are laid out row by
// row starting at the top edge (y = +height/2). Every vertex gets an angle in
// [0, 2π) drawn from rng; the angles never change afterwards.
func NewPlane(width, height float32, segX, segY int, rng *rand.Rand) (*Points, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("plane size must be positive, got %gx%g", width, height)
	}
	if segX < 1 || segY < 1 {
		return nil, fmt.Errorf("plane subdivision must be at least 1x1, got %dx%d", segX, segY)
	}
	if rng == nil {
		return nil, fmt.Errorf("plane requires a random source for vertex angles")
	}

	gridX1 := segX + 1
	gridY1 := segY + 1
	count := gridX1 * gridY1

	p := &Points{
		Width:     width,
		Height:    height,
		SegmentsX: segX,
		SegmentsY: segY,
		positions: make([]float32, 0, count*3),
		uvs:       make([]float32, 0, count*2),
		angles:    make([]float32, count),
	}

	halfW := width / 2
	halfH := height / 2
	segW := width / float32(segX)
	segH := height / float32(segY)

	for iy := 0; iy < gridY1; iy++ {
		y := float32(iy)*segH - halfH
		for ix := 0; ix < gridX1; ix++ {
			x := float32(ix)*segW - halfW
			p.positions = append(p.positions, x, -y, 0)
			p.uvs = append(p.uvs, float32(ix)/float32(segX), 1-float32(iy)/float32(segY))
		}
	}

	for i := range p.angles {
		p.angles[i] = float32(rng.Float64() * 2 * math.Pi)
		// float32 rounding can land exactly on 2π
		if p.angles[i] >= 2*math.Pi {
			p.angles[i] = 0
		}
	}

	p.bounds = computeBounds(p.positions)
	return p, nil
}

// Count returns the number of vertices.
func (p *Points) Count() int {
	return len(p.positions) / 3
}

// Positions returns the packed xyz buffer. Callers must not modify it.
func (p *Points) Positions() []float32 { return p.positions }

// UVs returns the packed uv buffer. Callers must not modify it.
func (p *Points) UVs() []float32 { return p.uvs }

// Angles returns the per-vertex angle buffer. Callers must not modify it.
func (p *Points) Angles() []float32 { return p.angles }

// Bounds returns the bounding sphere of the positions.
func (p *Points) Bounds() Sphere { return p.bounds }

// Position returns the i-th vertex position.
func (p *Points) Position(i int) mgl32.Vec3 {
	return mgl32.Vec3{p.positions[i*3], p.positions[i*3+1], p.positions[i*3+2]}
}

// computeBounds centres the sphere on the bounding box and takes the largest
// distance from that centre as the radius.
func computeBounds(positions []float32) Sphere {
	if len(positions) < 3 {
		return Sphere{}
	}
	lo := mgl32.Vec3{positions[0], positions[1], positions[2]}
	hi := lo
	for i := 3; i < len(positions); i += 3 {
		for k := 0; k < 3; k++ {
			v := positions[i+k]
			if v < lo[k] {
				lo[k] = v
			}
			if v > hi[k] {
				hi[k] = v
			}
		}
	}
	center := lo.Add(hi).Mul(0.5)

	var maxSq float32
	for i := 0; i < len(positions); i += 3 {
		d := mgl32.Vec3{positions[i], positions[i+1], positions[i+2]}.Sub(center)
		if sq := d.Dot(d); sq > maxSq {
			maxSq = sq
		}
	}
	return Sphere{Center: center, Radius: float32(math.Sqrt(float64(maxSq)))}
}
