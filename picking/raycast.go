// Package picking casts rays from screen positions into the point cloud.
package picking

import (
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/richinsley/goparticlefield/geometry"
)

// DefaultThreshold is the world-space radius within which a point counts as
// hit by a ray.
const DefaultThreshold = 1.0

// Ray is a half-line with a normalised direction.
type Ray struct {
	Origin    mgl32.Vec3
	Direction mgl32.Vec3
}

// Intersection describes one point hit by a ray.
type Intersection struct {
	// Distance from the ray origin to Point.
	Distance float32
	// DistanceToRay is the distance between the vertex and the ray.
	DistanceToRay float32
	// Point is the closest point on the ray to the vertex, in world space.
	Point mgl32.Vec3
	// Index is the vertex index in the geometry.
	Index int
}

// NDC maps window coordinates (origin top-left, y down) to normalised device
// coordinates (origin centre, y up).
func NDC(x, y float64, width, height int) mgl32.Vec2 {
	if width <= 0 || height <= 0 {
		return mgl32.Vec2{}
	}
	return mgl32.Vec2{
		float32(x/float64(width)*2 - 1),
		float32(-(y/float64(height))*2 + 1),
	}
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float32) mgl32.Vec3 {
	return r.Origin.Add(r.Direction.Mul(t))
}

// ClosestPoint returns the point on the ray nearest to p. Points behind the
// origin map to the origin.
func (r Ray) ClosestPoint(p mgl32.Vec3) mgl32.Vec3 {
	t := p.Sub(r.Origin).Dot(r.Direction)
	if t < 0 {
		return r.Origin
	}
	return r.At(t)
}

// DistanceSqToPoint returns the squared distance between p and the ray.
func (r Ray) DistanceSqToPoint(p mgl32.Vec3) float32 {
	d := r.ClosestPoint(p).Sub(p)
	return d.Dot(d)
}

// IntersectsSphere reports whether the ray passes within s.
func (r Ray) IntersectsSphere(s geometry.Sphere) bool {
	return r.DistanceSqToPoint(s.Center) <= s.Radius*s.Radius
}

// IntersectPoints tests every vertex of pts against the ray and returns the
// hits sorted by distance from the ray origin, nearest first. A vertex is hit
// when it lies within threshold of the ray; hits nearer than near or farther
// than far are dropped.
func IntersectPoints(r Ray, pts *geometry.Points, threshold, near, far float32) []Intersection {
	bounds := pts.Bounds()
	bounds.Radius += threshold
	if !r.IntersectsSphere(bounds) {
		return nil
	}

	thresholdSq := threshold * threshold
	positions := pts.Positions()

	var hits []Intersection
	for i := 0; i*3+2 < len(positions); i++ {
		p := mgl32.Vec3{positions[i*3], positions[i*3+1], positions[i*3+2]}
		distSq := r.DistanceSqToPoint(p)
		if distSq >= thresholdSq {
			continue
		}
		point := r.ClosestPoint(p)
		distance := r.Origin.Sub(point).Len()
		if distance < near || distance > far {
			continue
		}
		hits = append(hits, Intersection{
			Distance:      distance,
			DistanceToRay: float32(math.Sqrt(float64(distSq))),
			Point:         point,
			Index:         i,
		})
	}

	sort.SliceStable(hits, func(a, b int) bool {
		return hits[a].Distance < hits[b].Distance
	})
	return hits
}
