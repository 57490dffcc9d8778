package field

import "fmt"

// MediaType selects the texture source bound to the points.
type MediaType string

const (
	MediaImage MediaType = "image"
	MediaMovie MediaType = "movie"
)

// Valid reports whether m is a known media type.
func (m MediaType) Valid() bool {
	return m == MediaImage || m == MediaMovie
}

// Params are the live-tunable values exposed by the control panel.
type Params struct {
	PointSize  float32   `yaml:"point_size"`
	Progress   float32   `yaml:"progress"`
	Distortion bool      `yaml:"distortion"`
	MediaType  MediaType `yaml:"media_type"`
	PlayVideo  bool      `yaml:"play_video"`
}

// DefaultParams returns the panel's initial values.
func DefaultParams() Params {
	return Params{
		PointSize: 0.2,
		Progress:  1,
		MediaType: MediaImage,
	}
}

// Validate checks the parameter ranges.
func (p Params) Validate() error {
	if p.PointSize < 0 {
		return fmt.Errorf("point size must be non-negative, got %g", p.PointSize)
	}
	if p.Progress < 0 || p.Progress > 1 {
		return fmt.Errorf("progress must be within [0, 1], got %g", p.Progress)
	}
	if !p.MediaType.Valid() {
		return fmt.Errorf("unknown media type %q", p.MediaType)
	}
	return nil
}

// ShouldPlay reports whether the video should be running for these params.
func (p Params) ShouldPlay() bool {
	return p.MediaType == MediaMovie && p.PlayVideo
}
