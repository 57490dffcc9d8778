package renderer

import (
	"github.com/richinsley/goparticlefield/camera"
	"github.com/richinsley/goparticlefield/field"
	"github.com/richinsley/goparticlefield/graphics"
	"github.com/richinsley/goparticlefield/panel"
)

// Key bindings for the control panel.
const (
	KeyIncreaseSize     = '='
	KeyDecreaseSize     = '-'
	KeyToggleDistortion = 'D'
	KeyToggleMedia      = 'M'
	KeyTogglePlay       = ' '
	KeyIncreaseProgress = ']'
	KeyDecreaseProgress = '['
)

// viewportFunc reports the current window size and pixel ratio.
type viewportFunc func() field.Viewport

// bindInput routes window events: keys drive the panel, drags drive the
// orbit controls and every cursor move re-picks the field.
func bindInput(ctx graphics.Context, f *field.Field, p *panel.Panel, cam *camera.Camera, orbit *camera.OrbitControls, viewport viewportFunc) {
	ctx.OnKey(KeyIncreaseSize, p.IncreaseSize)
	ctx.OnKey(KeyDecreaseSize, p.DecreaseSize)
	ctx.OnKey(KeyToggleDistortion, p.ToggleDistortion)
	ctx.OnKey(KeyToggleMedia, p.ToggleMedia)
	ctx.OnKey(KeyTogglePlay, p.TogglePlay)
	ctx.OnKey(KeyIncreaseProgress, p.IncreaseProgress)
	ctx.OnKey(KeyDecreaseProgress, p.DecreaseProgress)

	ctx.OnCursorMove(func(x, y float64) {
		orbit.Move(x, y)
		f.OnPointerMove(x, y, viewport(), cam)
	})

	ctx.OnMouseButton(func(button int, pressed bool, x, y float64) {
		if !pressed {
			orbit.EndDrag()
			return
		}
		switch button {
		case graphics.MouseLeft:
			orbit.BeginDrag(camera.DragRotate, x, y)
		case graphics.MouseRight:
			orbit.BeginDrag(camera.DragPan, x, y)
		}
	})

	ctx.OnScroll(orbit.Scroll)
}
