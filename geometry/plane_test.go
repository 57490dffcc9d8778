package geometry

import (
	"math"
	"math/rand/v2"
	"testing"
)

func newRNG() *rand.Rand {
	return rand.New(rand.NewPCG(1, 2))
}

func TestNewPlaneVertexCount(t *testing.T) {
	p, err := NewPlane(10, 10, 128, 128, newRNG())
	if err != nil {
		t.Fatalf("NewPlane failed: %v", err)
	}

	if p.Count() != 16641 {
		t.Errorf("expected 16641 vertices, got %d", p.Count())
	}
	if len(p.Angles()) != p.Count() {
		t.Errorf("expected %d angles, got %d", p.Count(), len(p.Angles()))
	}
	if len(p.UVs()) != p.Count()*2 {
		t.Errorf("expected %d uv components, got %d", p.Count()*2, len(p.UVs()))
	}
}

func TestNewPlaneAnglesInRange(t *testing.T) {
	p, err := NewPlane(10, 10, 32, 16, newRNG())
	if err != nil {
		t.Fatalf("NewPlane failed: %v", err)
	}

	for i, a := range p.Angles() {
		if a < 0 || a >= 2*math.Pi {
			t.Fatalf("angle %d out of [0, 2π): %f", i, a)
		}
	}
}

func TestNewPlaneLayout(t *testing.T) {
	p, err := NewPlane(10, 4, 2, 2, newRNG())
	if err != nil {
		t.Fatalf("NewPlane failed: %v", err)
	}

	testCases := []struct {
		index int
		x, y  float32
		u, v  float32
	}{
		{0, -5, 2, 0, 1},    // top-left
		{2, 5, 2, 1, 1},     // top-right
		{4, 0, 0, 0.5, 0.5}, // centre
		{6, -5, -2, 0, 0},   // bottom-left
		{8, 5, -2, 1, 0},    // bottom-right
	}

	uvs := p.UVs()
	for _, tc := range testCases {
		pos := p.Position(tc.index)
		if pos.X() != tc.x || pos.Y() != tc.y || pos.Z() != 0 {
			t.Errorf("vertex %d: expected (%g, %g, 0), got %v", tc.index, tc.x, tc.y, pos)
		}
		u, v := uvs[tc.index*2], uvs[tc.index*2+1]
		if u != tc.u || v != tc.v {
			t.Errorf("vertex %d: expected uv (%g, %g), got (%g, %g)", tc.index, tc.u, tc.v, u, v)
		}
	}
}

func TestNewPlaneBounds(t *testing.T) {
	p, err := NewPlane(10, 10, 8, 8, newRNG())
	if err != nil {
		t.Fatalf("NewPlane failed: %v", err)
	}

	b := p.Bounds()
	if b.Center.Len() > 1e-5 {
		t.Errorf("expected bounds centred on origin, got %v", b.Center)
	}
	want := float32(math.Sqrt(50))
	if math.Abs(float64(b.Radius-want)) > 1e-4 {
		t.Errorf("expected radius %f, got %f", want, b.Radius)
	}
}

func TestNewPlaneRejectsBadInput(t *testing.T) {
	testCases := []struct {
		name       string
		w, h       float32
		segX, segY int
	}{
		{"zero width", 0, 10, 4, 4},
		{"negative height", 10, -1, 4, 4},
		{"zero segments", 10, 10, 0, 4},
	}

	for _, tc := range testCases {
		if _, err := NewPlane(tc.w, tc.h, tc.segX, tc.segY, newRNG()); err == nil {
			t.Errorf("%s: expected error", tc.name)
		}
	}
	if _, err := NewPlane(10, 10, 4, 4, nil); err == nil {
		t.Error("nil rng: expected error")
	}
}

func TestAnglesDeterministicPerSeed(t *testing.T) {
	a, _ := NewPlane(10, 10, 4, 4, rand.New(rand.NewPCG(7, 7)))
	b, _ := NewPlane(10, 10, 4, 4, rand.New(rand.NewPCG(7, 7)))

	for i := range a.Angles() {
		if a.Angles()[i] != b.Angles()[i] {
			t.Fatalf("angle %d differs for the same seed: %f vs %f", i, a.Angles()[i], b.Angles()[i])
		}
	}
}
