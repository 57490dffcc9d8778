// Package field drives the particle field: it owns the shader uniform
// record, maps pointer movement onto the point cloud and keeps the bound
// texture and video playback in step with the control panel.
package field

import (
	"log/slog"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/richinsley/goparticlefield/geometry"
	"github.com/richinsley/goparticlefield/picking"
	"github.com/richinsley/goparticlefield/tween"
)

// FarPoint is written to the mouse uniform when the pointer is not over the
// field. It is far enough away that the displacement term vanishes.
var FarPoint = mgl32.Vec3{999, 999, 999}

// MaxPixelRatio caps the device pixel ratio used for the resolution uniform.
const MaxPixelRatio = 2.0

// Texture is a GPU texture that can be bound to the points.
type Texture interface {
	GetTextureID() uint32
	// Update runs once per frame on the render thread.
	Update()
}

// Playback controls a video source.
type Playback interface {
	Play() error
	Pause() error
	Playing() bool
}

// Viewer casts picking rays for normalised device coordinates.
type Viewer interface {
	Ray(ndc mgl32.Vec2) picking.Ray
}

// Viewport is the window size in window units plus the device pixel ratio.
type Viewport struct {
	Width      int
	Height     int
	PixelRatio float64
}

// Uniforms mirrors the shader uniform block. The renderer uploads it every
// frame.
type Uniforms struct {
	Resolution mgl32.Vec2
	Size       float32
	Progress   float32
	Mouse      mgl32.Vec3
	Time       float32
	Distortion float32
	Texture    Texture
}

// Options tune picking and the entry animation.
type Options struct {
	// PickThreshold is the world-space radius around each point that counts
	// as a hit.
	PickThreshold float32
	// Near and Far bound the hit distance from the camera.
	Near, Far float32
	// EntryDuration is the length in seconds of the mount animation.
	EntryDuration float64
}

// DefaultOptions returns the picking and animation defaults.
func DefaultOptions() Options {
	return Options{
		PickThreshold: picking.DefaultThreshold,
		Near:          0,
		Far:           float32(1e9),
		EntryDuration: 2,
	}
}

// Field is the particle field controller.
type Field struct {
	points   *geometry.Points
	params   Params
	uniforms Uniforms
	opts     Options

	image  Texture
	video  Texture
	player Playback

	entry *tween.Tween
}

// New builds a controller for pts. image and video may be nil when the
// corresponding asset is unavailable; player may be nil when there is no
// video.
func New(pts *geometry.Points, params Params, image, video Texture, player Playback, opts Options) (*Field, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	f := &Field{
		points: pts,
		params: params,
		opts:   opts,
		image:  image,
		video:  video,
		player: player,
	}
	f.uniforms = Uniforms{
		Size:       params.PointSize,
		Progress:   params.Progress,
		Mouse:      FarPoint,
		Distortion: boolToFloat(params.Distortion),
	}
	f.uniforms.Texture = f.textureFor(params.MediaType)
	f.syncPlayback()
	return f, nil
}

// Points returns the geometry.
func (f *Field) Points() *geometry.Points { return f.points }

// Params returns the current panel values.
func (f *Field) Params() Params { return f.params }

// Uniforms returns the uniform record. The renderer reads it after Tick.
func (f *Field) Uniforms() *Uniforms { return &f.uniforms }

// Mount starts the entry animation that eases Progress down to zero. Only
// the first call has an effect.
func (f *Field) Mount(now float64) {
	if f.entry != nil {
		return
	}
	f.entry = tween.To(&f.uniforms.Progress, 0, f.opts.EntryDuration, tween.Power2InOut)
	f.entry.Start(now)
	slog.Debug("entry animation started", "from", f.uniforms.Progress, "duration", f.opts.EntryDuration)
}

// SetParams replaces the panel values. Size and distortion reach the
// uniforms on the next Tick; a media change rebinds the texture at once.
// Invalid params are rejected and the previous values are kept.
func (f *Field) SetParams(p Params) error {
	if err := p.Validate(); err != nil {
		return err
	}
	prev := f.params
	f.params = p

	if p.MediaType != prev.MediaType {
		f.uniforms.Texture = f.textureFor(p.MediaType)
		slog.Info("media source changed", "media", p.MediaType)
	}
	if p.MediaType != prev.MediaType || p.PlayVideo != prev.PlayVideo {
		f.syncPlayback()
	}
	return nil
}

// OnPointerMove projects a window-space pointer position onto the point
// cloud and stores the nearest hit in the mouse uniform, or FarPoint when
// nothing is hit.
func (f *Field) OnPointerMove(x, y float64, vp Viewport, viewer Viewer) {
	ndc := picking.NDC(x, y, vp.Width, vp.Height)
	ray := viewer.Ray(ndc)

	hits := picking.IntersectPoints(ray, f.points, f.opts.PickThreshold, f.opts.Near, f.opts.Far)
	if len(hits) > 0 {
		f.uniforms.Mouse = hits[0].Point
		return
	}
	f.uniforms.Mouse = FarPoint
}

// Tick advances the field to elapsed seconds since start.
func (f *Field) Tick(elapsed float64, vp Viewport) {
	if f.entry != nil {
		f.entry.Step(elapsed)
	}

	ratio := vp.PixelRatio
	if ratio <= 0 {
		ratio = 1
	}
	if ratio > MaxPixelRatio {
		ratio = MaxPixelRatio
	}

	u := &f.uniforms
	u.Resolution = mgl32.Vec2{
		float32(float64(vp.Width) * ratio),
		float32(float64(vp.Height) * ratio),
	}
	u.Size = f.params.PointSize
	u.Time = float32(elapsed)
	u.Distortion = boolToFloat(f.params.Distortion)

	if u.Texture != nil {
		u.Texture.Update()
	}
}

func (f *Field) textureFor(m MediaType) Texture {
	if m == MediaMovie {
		return f.video
	}
	return f.image
}

// syncPlayback plays the video only while the movie is selected and the
// play toggle is on.
func (f *Field) syncPlayback() {
	if f.player == nil {
		return
	}
	var err error
	if f.params.ShouldPlay() {
		err = f.player.Play()
	} else {
		err = f.player.Pause()
	}
	if err != nil {
		slog.Warn("video playback change failed", "play", f.params.ShouldPlay(), "error", err)
	}
}

func boolToFloat(b bool) float32 {
	if b {
		return 1
	}
	return 0
}
