package field

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/richinsley/goparticlefield/camera"
	"github.com/richinsley/goparticlefield/geometry"
)

type fakeTexture struct {
	id      uint32
	updates int
}

func (t *fakeTexture) GetTextureID() uint32 { return t.id }
func (t *fakeTexture) Update()              { t.updates++ }

type fakePlayer struct {
	playing bool
	plays   int
	pauses  int
	err     error
}

func (p *fakePlayer) Play() error {
	p.plays++
	if p.err != nil {
		return p.err
	}
	p.playing = true
	return nil
}

func (p *fakePlayer) Pause() error {
	p.pauses++
	p.playing = false
	return p.err
}

func (p *fakePlayer) Playing() bool { return p.playing }

type fixture struct {
	field  *Field
	image  *fakeTexture
	video  *fakeTexture
	player *fakePlayer
	cam    *camera.Camera
	vp     Viewport
}

func newFixture(t *testing.T, params Params) *fixture {
	t.Helper()
	pts, err := geometry.NewPlane(10, 10, 128, 128, rand.New(rand.NewPCG(11, 12)))
	if err != nil {
		t.Fatalf("NewPlane failed: %v", err)
	}

	fx := &fixture{
		image:  &fakeTexture{id: 1},
		video:  &fakeTexture{id: 2},
		player: &fakePlayer{},
		cam:    camera.New(35, mgl32.Vec3{0, 0, 18}, 0.1, 1000),
		vp:     Viewport{Width: 1280, Height: 720, PixelRatio: 1},
	}
	fx.cam.SetViewport(fx.vp.Width, fx.vp.Height)

	fx.field, err = New(pts, params, fx.image, fx.video, fx.player, DefaultOptions())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return fx
}

func TestNewInitialUniforms(t *testing.T) {
	fx := newFixture(t, DefaultParams())
	u := fx.field.Uniforms()

	if u.Mouse != FarPoint {
		t.Errorf("expected mouse at sentinel, got %v", u.Mouse)
	}
	if u.Size != 0.2 {
		t.Errorf("expected size 0.2, got %f", u.Size)
	}
	if u.Progress != 1 {
		t.Errorf("expected progress 1, got %f", u.Progress)
	}
	if u.Texture != fx.image {
		t.Errorf("expected image texture bound")
	}
	if fx.player.playing {
		t.Error("expected video paused initially")
	}
}

func TestNewRejectsInvalidParams(t *testing.T) {
	pts, _ := geometry.NewPlane(10, 10, 4, 4, rand.New(rand.NewPCG(1, 1)))
	p := DefaultParams()
	p.MediaType = "slideshow"

	if _, err := New(pts, p, nil, nil, nil, DefaultOptions()); err == nil {
		t.Error("expected error for unknown media type")
	}
}

func TestPointerOutsideFieldSetsSentinel(t *testing.T) {
	fx := newFixture(t, DefaultParams())

	// first hit the field so the uniform moves off the sentinel
	fx.field.OnPointerMove(640, 360, fx.vp, fx.cam)
	if fx.field.Uniforms().Mouse == FarPoint {
		t.Fatal("expected a hit at the window centre")
	}

	corners := []struct{ x, y float64 }{
		{0, 0},
		{1280, 0},
		{0, 720},
		{1279, 719},
		{20, 360},
	}
	for _, c := range corners {
		fx.field.OnPointerMove(c.x, c.y, fx.vp, fx.cam)
		if got := fx.field.Uniforms().Mouse; got != FarPoint {
			t.Errorf("pointer (%g, %g): expected sentinel, got %v", c.x, c.y, got)
		}
	}
}

func TestPointerHitUsesNearestIntersection(t *testing.T) {
	fx := newFixture(t, DefaultParams())

	x, y := 700.0, 300.0
	fx.field.OnPointerMove(x, y, fx.vp, fx.cam)
	got := fx.field.Uniforms().Mouse
	if got == FarPoint {
		t.Fatal("expected a hit")
	}

	// the nearest hit on a ray from +Z towards a z=0 plane lies in front of
	// the plane, on the camera side
	if got.Z() <= 0 {
		t.Errorf("expected nearest hit in front of the plane, got z=%f", got.Z())
	}
	ray := fx.cam.Ray(mgl32.Vec2{float32(x/1280*2 - 1), float32(-(y/720)*2 + 1)})
	if d := ray.DistanceSqToPoint(got); d > 1e-4 {
		t.Errorf("expected hit on the pointer ray, squared distance %f", d)
	}
	// the first hit is closer to the camera than the plane crossing
	crossing := ray.At(-ray.Origin.Z() / ray.Direction.Z())
	if got.Sub(ray.Origin).Len() >= crossing.Sub(ray.Origin).Len() {
		t.Errorf("expected nearest hit before the plane crossing")
	}
}

func TestAnglesStableAcrossFrames(t *testing.T) {
	fx := newFixture(t, DefaultParams())
	before := append([]float32(nil), fx.field.Points().Angles()...)

	fx.field.Mount(0)
	for i := 0; i < 10; i++ {
		fx.field.Tick(float64(i)*0.016, fx.vp)
		fx.field.OnPointerMove(float64(600+i), 360, fx.vp, fx.cam)
	}

	after := fx.field.Points().Angles()
	if len(after) != fx.field.Points().Count() {
		t.Fatalf("expected %d angles, got %d", fx.field.Points().Count(), len(after))
	}
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("angle %d changed: %f -> %f", i, before[i], after[i])
		}
	}
}

func TestMediaToggleSwapsTexture(t *testing.T) {
	fx := newFixture(t, DefaultParams())

	p := fx.field.Params()
	p.MediaType = MediaMovie
	if err := fx.field.SetParams(p); err != nil {
		t.Fatalf("SetParams failed: %v", err)
	}
	if fx.field.Uniforms().Texture != fx.video {
		t.Error("expected video texture bound immediately after switching to movie")
	}
	if fx.image.id != 1 || fx.image.updates != 0 {
		t.Error("expected image texture untouched")
	}

	p.MediaType = MediaImage
	if err := fx.field.SetParams(p); err != nil {
		t.Fatalf("SetParams failed: %v", err)
	}
	if fx.field.Uniforms().Texture != fx.image {
		t.Error("expected image texture re-selected")
	}
}

func TestPlaybackRules(t *testing.T) {
	fx := newFixture(t, DefaultParams())

	// play while showing the image: no playback
	p := fx.field.Params()
	p.PlayVideo = true
	fx.field.SetParams(p)
	if fx.player.playing {
		t.Error("expected no playback while media is image")
	}
	if fx.player.plays != 0 {
		t.Errorf("expected Play not called, got %d calls", fx.player.plays)
	}

	// switch to movie with play on: starts
	p.MediaType = MediaMovie
	fx.field.SetParams(p)
	if !fx.player.playing {
		t.Error("expected playback in movie mode with play on")
	}

	// toggle play off: pauses
	p.PlayVideo = false
	fx.field.SetParams(p)
	if fx.player.playing {
		t.Error("expected pause when play toggled off")
	}

	// play on again then leave movie mode: pauses
	p.PlayVideo = true
	fx.field.SetParams(p)
	p.MediaType = MediaImage
	fx.field.SetParams(p)
	if fx.player.playing {
		t.Error("expected pause when leaving movie mode")
	}
}

func TestPlaybackErrorIsNotFatal(t *testing.T) {
	fx := newFixture(t, DefaultParams())
	fx.player.err = errors.New("decoder gone")

	p := fx.field.Params()
	p.MediaType = MediaMovie
	p.PlayVideo = true
	if err := fx.field.SetParams(p); err != nil {
		t.Errorf("expected playback failure to be logged, not returned: %v", err)
	}
	if fx.field.Params().MediaType != MediaMovie {
		t.Error("expected params applied despite playback failure")
	}
}

func TestSetParamsDefersToTick(t *testing.T) {
	fx := newFixture(t, DefaultParams())

	p := fx.field.Params()
	p.PointSize = 0.45
	p.Distortion = true
	fx.field.SetParams(p)

	u := fx.field.Uniforms()
	if u.Size != 0.2 || u.Distortion != 0 {
		t.Errorf("expected uniforms unchanged before tick, got size=%f distortion=%f", u.Size, u.Distortion)
	}

	fx.field.Tick(1.5, fx.vp)
	if u.Size != 0.45 {
		t.Errorf("expected size 0.45 after tick, got %f", u.Size)
	}
	if u.Distortion != 1 {
		t.Errorf("expected distortion 1 after tick, got %f", u.Distortion)
	}
	if u.Time != 1.5 {
		t.Errorf("expected time 1.5, got %f", u.Time)
	}
}

func TestSetParamsRejectsInvalid(t *testing.T) {
	fx := newFixture(t, DefaultParams())

	testCases := []Params{
		{PointSize: -0.1, Progress: 1, MediaType: MediaImage},
		{PointSize: 0.2, Progress: 1.5, MediaType: MediaImage},
		{PointSize: 0.2, Progress: 1, MediaType: "gif"},
	}
	for _, p := range testCases {
		if err := fx.field.SetParams(p); err == nil {
			t.Errorf("expected error for %+v", p)
		}
	}
	if fx.field.Params() != DefaultParams() {
		t.Errorf("expected params unchanged, got %+v", fx.field.Params())
	}
}

func TestTickResolution(t *testing.T) {
	fx := newFixture(t, DefaultParams())

	testCases := []struct {
		vp   Viewport
		want mgl32.Vec2
	}{
		{Viewport{800, 600, 1}, mgl32.Vec2{800, 600}},
		{Viewport{800, 600, 1.5}, mgl32.Vec2{1200, 900}},
		{Viewport{800, 600, 3}, mgl32.Vec2{1600, 1200}}, // capped at 2
		{Viewport{800, 600, 0}, mgl32.Vec2{800, 600}},
	}
	for _, tc := range testCases {
		fx.field.Tick(0, tc.vp)
		if got := fx.field.Uniforms().Resolution; got != tc.want {
			t.Errorf("viewport %+v: expected resolution %v, got %v", tc.vp, tc.want, got)
		}
	}
}

func TestTickUpdatesBoundTextureOnly(t *testing.T) {
	fx := newFixture(t, DefaultParams())

	fx.field.Tick(0, fx.vp)
	fx.field.Tick(0.1, fx.vp)
	if fx.image.updates != 2 || fx.video.updates != 0 {
		t.Errorf("expected only image updated, got image=%d video=%d", fx.image.updates, fx.video.updates)
	}
}

func TestNilTextureIsBlank(t *testing.T) {
	pts, _ := geometry.NewPlane(10, 10, 4, 4, rand.New(rand.NewPCG(1, 1)))
	p := DefaultParams()
	p.MediaType = MediaMovie
	p.PlayVideo = true

	f, err := New(pts, p, &fakeTexture{id: 1}, nil, nil, DefaultOptions())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if f.Uniforms().Texture != nil {
		t.Error("expected no texture bound when the video is missing")
	}
	f.Tick(0, Viewport{Width: 100, Height: 100, PixelRatio: 1})
}

func TestEntryAnimation(t *testing.T) {
	fx := newFixture(t, DefaultParams())

	fx.field.Mount(0)
	fx.field.Tick(0, fx.vp)
	if p := fx.field.Uniforms().Progress; math.Abs(float64(p-1)) > 1e-6 {
		t.Errorf("expected progress ≈1 at t=0, got %f", p)
	}

	fx.field.Tick(0.5, fx.vp)
	if p := fx.field.Uniforms().Progress; math.Abs(float64(p-0.9375)) > 1e-6 {
		t.Errorf("expected progress 0.9375 at t=0.5, got %f", p)
	}

	fx.field.Tick(1, fx.vp)
	if p := fx.field.Uniforms().Progress; math.Abs(float64(p-0.5)) > 1e-6 {
		t.Errorf("expected progress 0.5 at t=1, got %f", p)
	}

	fx.field.Tick(1.5, fx.vp)
	if p := fx.field.Uniforms().Progress; math.Abs(float64(p-0.0625)) > 1e-6 {
		t.Errorf("expected progress 0.0625 at t=1.5, got %f", p)
	}

	fx.field.Tick(2, fx.vp)
	if p := fx.field.Uniforms().Progress; p != 0 {
		t.Errorf("expected progress 0 at t=2, got %f", p)
	}

	// a second mount does not replay the animation
	fx.field.Mount(5)
	fx.field.Tick(5, fx.vp)
	if p := fx.field.Uniforms().Progress; p != 0 {
		t.Errorf("expected progress to stay 0, got %f", p)
	}

	// the panel's progress value does not drive the uniform after mount
	params := fx.field.Params()
	params.Progress = 0.8
	fx.field.SetParams(params)
	fx.field.Tick(6, fx.vp)
	if p := fx.field.Uniforms().Progress; p != 0 {
		t.Errorf("expected progress owned by the tween, got %f", p)
	}
}
