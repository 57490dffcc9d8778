// Package panel is the keyboard control panel for the particle field. It
// keeps the live parameter values, applies stepped changes within their
// bounds and hands every new value set to a single change callback.
package panel

import (
	"log/slog"

	"github.com/richinsley/goparticlefield/field"
)

const (
	SizeStep     = 0.05
	ProgressStep = 0.01
)

// Panel holds the current params and forwards changes.
type Panel struct {
	params   field.Params
	onChange func(field.Params) error
}

// New creates a panel starting at params. onChange receives every updated
// parameter set; when it returns an error the panel keeps its previous
// values.
func New(params field.Params, onChange func(field.Params) error) *Panel {
	return &Panel{params: params, onChange: onChange}
}

// Params returns the current values.
func (p *Panel) Params() field.Params { return p.params }

// Set applies a complete parameter set.
func (p *Panel) Set(next field.Params) error {
	if p.onChange != nil {
		if err := p.onChange(next); err != nil {
			slog.Warn("panel change rejected", "error", err)
			return err
		}
	}
	p.params = next
	return nil
}

func (p *Panel) IncreaseSize() {
	next := p.params
	next.PointSize = roundStep(next.PointSize+SizeStep, SizeStep)
	p.apply(next, "point_size", next.PointSize)
}

func (p *Panel) DecreaseSize() {
	next := p.params
	next.PointSize = roundStep(next.PointSize-SizeStep, SizeStep)
	if next.PointSize < 0 {
		next.PointSize = 0
	}
	p.apply(next, "point_size", next.PointSize)
}

func (p *Panel) IncreaseProgress() {
	next := p.params
	next.Progress = min(roundStep(next.Progress+ProgressStep, ProgressStep), 1)
	p.apply(next, "progress", next.Progress)
}

func (p *Panel) DecreaseProgress() {
	next := p.params
	next.Progress = max(roundStep(next.Progress-ProgressStep, ProgressStep), 0)
	p.apply(next, "progress", next.Progress)
}

func (p *Panel) ToggleDistortion() {
	next := p.params
	next.Distortion = !next.Distortion
	p.apply(next, "distortion", next.Distortion)
}

// ToggleMedia flips between the image and the movie.
func (p *Panel) ToggleMedia() {
	next := p.params
	if next.MediaType == field.MediaMovie {
		next.MediaType = field.MediaImage
	} else {
		next.MediaType = field.MediaMovie
	}
	p.apply(next, "media_type", next.MediaType)
}

func (p *Panel) TogglePlay() {
	next := p.params
	next.PlayVideo = !next.PlayVideo
	p.apply(next, "play_video", next.PlayVideo)
}

func (p *Panel) apply(next field.Params, key string, value any) {
	if err := p.Set(next); err != nil {
		return
	}
	slog.Info("panel", key, value)
}

// roundStep snaps v to the nearest multiple of step so repeated stepping
// does not accumulate float error.
func roundStep(v, step float32) float32 {
	n := v / step
	if n < 0 {
		return -float32(int(-n+0.5)) * step
	}
	return float32(int(n+0.5)) * step
}
