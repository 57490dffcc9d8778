// Package options loads the viewer configuration. Embedded defaults are
// decoded first, a user YAML file is layered on top and command line flags
// win over both.
package options

import (
	_ "embed"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/richinsley/goparticlefield/field"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Options is the full viewer configuration.
type Options struct {
	Window  WindowOptions  `yaml:"window"`
	Camera  CameraOptions  `yaml:"camera"`
	Field   FieldOptions   `yaml:"field"`
	Panel   field.Params   `yaml:"panel"`
	Media   MediaOptions   `yaml:"media"`
	Picking PickingOptions `yaml:"picking"`
	Stats   StatsOptions   `yaml:"stats"`
	Log     LogOptions     `yaml:"log"`
}

type WindowOptions struct {
	Title      string `yaml:"title"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	VSync      bool   `yaml:"vsync"`
	Background string `yaml:"background"`
}

type CameraOptions struct {
	FOV           float32    `yaml:"fov"`
	Position      [3]float32 `yaml:"position"`
	Near          float32    `yaml:"near"`
	Far           float32    `yaml:"far"`
	Damping       bool       `yaml:"damping"`
	DampingFactor float32    `yaml:"damping_factor"`
}

// FieldOptions describe the subdivided plane the points are taken from.
type FieldOptions struct {
	Width         float32 `yaml:"width"`
	Height        float32 `yaml:"height"`
	SegmentsX     int     `yaml:"segments_x"`
	SegmentsY     int     `yaml:"segments_y"`
	Seed          uint64  `yaml:"seed"`
	EntryDuration float64 `yaml:"entry_duration"`
}

type MediaOptions struct {
	Image string `yaml:"image"`
	Video string `yaml:"video"`
	Loop  bool   `yaml:"loop"`
	// Audio plays the video's soundtrack alongside the frames.
	Audio  bool   `yaml:"audio"`
	FFmpeg string `yaml:"ffmpeg"`
}

type PickingOptions struct {
	Threshold float32 `yaml:"threshold"`
	Near      float32 `yaml:"near"`
	Far       float32 `yaml:"far"`
}

type StatsOptions struct {
	Window        int           `yaml:"window"`
	TitleInterval time.Duration `yaml:"title_interval"`
	LogInterval   time.Duration `yaml:"log_interval"`
}

type LogOptions struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Defaults returns the embedded configuration.
func Defaults() (*Options, error) {
	o := &Options{}
	if err := yaml.Unmarshal(defaultsYAML, o); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}
	return o, nil
}

// Load reads the YAML file at path over the embedded defaults. An empty
// path yields the defaults.
func Load(path string) (*Options, error) {
	o, err := Defaults()
	if err != nil {
		return nil, err
	}
	if path == "" {
		return o, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, o); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return o, nil
}

// Validate checks the loaded values.
func (o *Options) Validate() error {
	var errs []error
	if o.Window.Width <= 0 || o.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("window size must be positive, got %dx%d", o.Window.Width, o.Window.Height))
	}
	if _, err := ParseColor(o.Window.Background); err != nil {
		errs = append(errs, err)
	}
	if o.Camera.FOV <= 0 || o.Camera.FOV >= 180 {
		errs = append(errs, fmt.Errorf("camera fov must be within (0, 180), got %g", o.Camera.FOV))
	}
	if o.Camera.Near <= 0 || o.Camera.Far <= o.Camera.Near {
		errs = append(errs, fmt.Errorf("camera clip range invalid: near %g, far %g", o.Camera.Near, o.Camera.Far))
	}
	if o.Field.Width <= 0 || o.Field.Height <= 0 || o.Field.SegmentsX < 1 || o.Field.SegmentsY < 1 {
		errs = append(errs, fmt.Errorf("field plane invalid: %gx%g with %dx%d segments",
			o.Field.Width, o.Field.Height, o.Field.SegmentsX, o.Field.SegmentsY))
	}
	if o.Field.EntryDuration < 0 {
		errs = append(errs, fmt.Errorf("entry duration must be non-negative, got %g", o.Field.EntryDuration))
	}
	if err := o.Panel.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("panel: %w", err))
	}
	if o.Picking.Threshold <= 0 {
		errs = append(errs, fmt.Errorf("picking threshold must be positive, got %g", o.Picking.Threshold))
	}
	if o.Stats.Window < 1 {
		errs = append(errs, fmt.Errorf("stats window must be at least 1, got %d", o.Stats.Window))
	}
	if _, err := o.Log.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// ParseColor converts "#rrggbb" into normalised RGB components.
func ParseColor(s string) ([3]float32, error) {
	var c [3]float32
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 {
		return c, fmt.Errorf("invalid color %q: want #rrggbb", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return c, fmt.Errorf("invalid color %q: %w", s, err)
	}
	c[0] = float32((v>>16)&0xff) / 255
	c[1] = float32((v>>8)&0xff) / 255
	c[2] = float32(v&0xff) / 255
	return c, nil
}

// SlogLevel maps the configured level name.
func (l LogOptions) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(l.Level)); err != nil {
		return lvl, fmt.Errorf("invalid log level %q: %w", l.Level, err)
	}
	return lvl, nil
}

// Flags are the command line overrides. Only flags that were set on the
// command line are applied.
type Flags struct {
	Config   *string
	Width    *int
	Height   *int
	Image    *string
	Video    *string
	Audio    *bool
	FFmpeg   *string
	Seed     *uint64
	LogLevel *string
	Help     *bool

	set map[string]bool
}

// RegisterFlags defines the command line flags on fs.
func RegisterFlags(fs *flag.FlagSet) *Flags {
	return &Flags{
		Config:   fs.String("config", "", "Path to a YAML config file"),
		Width:    fs.Int("width", 1280, "Window width"),
		Height:   fs.Int("height", 720, "Window height"),
		Image:    fs.String("image", "", "Image texture path"),
		Video:    fs.String("video", "", "Video texture path"),
		Audio:    fs.Bool("audio", false, "Play the video's soundtrack"),
		FFmpeg:   fs.String("ffmpeg", "", "Path to ffmpeg executable"),
		Seed:     fs.Uint64("seed", 1, "Random seed for the point angles"),
		LogLevel: fs.String("log-level", "info", "Log level (debug, info, warn, error)"),
		Help:     fs.Bool("help", false, "Show help message"),
	}
}

// Parse parses args and records which flags were given.
func (f *Flags) Parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return err
	}
	f.set = make(map[string]bool)
	fs.Visit(func(fl *flag.Flag) { f.set[fl.Name] = true })
	return nil
}

// Apply copies the explicitly set flags onto o.
func (f *Flags) Apply(o *Options) {
	if f.set["width"] {
		o.Window.Width = *f.Width
	}
	if f.set["height"] {
		o.Window.Height = *f.Height
	}
	if f.set["image"] {
		o.Media.Image = *f.Image
	}
	if f.set["video"] {
		o.Media.Video = *f.Video
	}
	if f.set["audio"] {
		o.Media.Audio = *f.Audio
	}
	if f.set["ffmpeg"] {
		o.Media.FFmpeg = *f.FFmpeg
	}
	if f.set["seed"] {
		o.Field.Seed = *f.Seed
	}
	if f.set["log-level"] {
		o.Log.Level = *f.LogLevel
	}
}
