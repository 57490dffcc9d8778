package main

import (
	"flag"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"runtime"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/richinsley/goparticlefield/audio"
	"github.com/richinsley/goparticlefield/camera"
	"github.com/richinsley/goparticlefield/field"
	"github.com/richinsley/goparticlefield/geometry"
	"github.com/richinsley/goparticlefield/glfwcontext"
	"github.com/richinsley/goparticlefield/inputs"
	"github.com/richinsley/goparticlefield/options"
	"github.com/richinsley/goparticlefield/panel"
	"github.com/richinsley/goparticlefield/renderer"
	"github.com/richinsley/goparticlefield/stats"
)

func init() {
	runtime.LockOSThread()
}

func setupLogging(opts options.LogOptions) {
	level, err := opts.SlogLevel()
	if err != nil {
		level = slog.LevelInfo
	}
	handlerOpts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if opts.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, handlerOpts)
	} else {
		// JSON to stdout for structured logging
		handler = slog.NewJSONHandler(os.Stdout, handlerOpts)
	}
	slog.SetDefault(slog.New(handler))
}

// media holds whatever textures loaded. Missing ones stay nil so the field
// draws blank for that source.
type media struct {
	image      *inputs.ImageChannel
	video      *inputs.VideoChannel
	soundtrack *audio.Soundtrack
}

func loadMedia(opts options.MediaOptions) *media {
	m := &media{}

	img, err := inputs.LoadImageChannel(opts.Image)
	if err != nil {
		slog.Error("image unavailable", "path", opts.Image, "error", err)
	} else {
		m.image = img
	}

	video, err := inputs.NewVideoChannel(opts.Video, inputs.VideoOptions{FFmpegPath: opts.FFmpeg, Loop: opts.Loop})
	if err != nil {
		slog.Error("video unavailable", "path", opts.Video, "error", err)
		return m
	}
	m.video = video

	if opts.Audio && video.Info().HasAudio {
		st, err := audio.NewSoundtrack(opts.Video, audio.SoundtrackOptions{FFmpegPath: opts.FFmpeg, Loop: opts.Loop})
		if err != nil {
			slog.Error("soundtrack unavailable", "path", opts.Video, "error", err)
		} else {
			m.soundtrack = st
			video.Follow(st)
		}
	}
	return m
}

// channels returns the loaded textures, video first.
func (m *media) channels() []inputs.IChannel {
	var chs []inputs.IChannel
	if m.video != nil {
		chs = append(chs, m.video)
	}
	if m.image != nil {
		chs = append(chs, m.image)
	}
	return chs
}

func (m *media) destroy() {
	if m.soundtrack != nil {
		if err := m.soundtrack.Close(); err != nil {
			slog.Warn("closing soundtrack", "error", err)
		}
	}
	for _, ch := range m.channels() {
		ch.Destroy()
	}
}

// textures returns the media as field interfaces, keeping absent sources
// as untyped nil.
func (m *media) textures() (image, video field.Texture, player field.Playback) {
	if m.image != nil {
		image = m.image
	}
	if m.video != nil {
		video = m.video
		player = m.video
	}
	return image, video, player
}

func run(opts *options.Options) error {
	if err := glfwcontext.InitGraphics(); err != nil {
		return fmt.Errorf("failed to initialize graphics: %w", err)
	}
	defer glfwcontext.TerminateGraphics()

	ctx, err := glfwcontext.New(glfwcontext.WindowOptions{
		Title:  opts.Window.Title,
		Width:  opts.Window.Width,
		Height: opts.Window.Height,
		VSync:  opts.Window.VSync,
	})
	if err != nil {
		return fmt.Errorf("failed to create window: %w", err)
	}
	defer ctx.Shutdown()

	if err := renderer.InitGL(ctx); err != nil {
		return err
	}

	seed := opts.Field.Seed
	pts, err := geometry.NewPlane(opts.Field.Width, opts.Field.Height, opts.Field.SegmentsX, opts.Field.SegmentsY,
		rand.New(rand.NewPCG(seed, seed)))
	if err != nil {
		return fmt.Errorf("building field geometry: %w", err)
	}
	slog.Info("field geometry built", "points", pts.Count(), "seed", seed)

	m := loadMedia(opts.Media)
	defer m.destroy()
	for _, ch := range m.channels() {
		res := ch.ChannelRes()
		slog.Info("texture ready", "width", res[0], "height", res[1])
	}

	image, video, player := m.textures()
	f, err := field.New(pts, opts.Panel, image, video, player, field.Options{
		PickThreshold: opts.Picking.Threshold,
		Near:          opts.Picking.Near,
		Far:           opts.Picking.Far,
		EntryDuration: opts.Field.EntryDuration,
	})
	if err != nil {
		return fmt.Errorf("creating field: %w", err)
	}

	cam := camera.New(opts.Camera.FOV, mgl32.Vec3(opts.Camera.Position), opts.Camera.Near, opts.Camera.Far)
	orbit := camera.NewOrbitControls(cam, opts.Camera.Damping, opts.Camera.DampingFactor)

	background, err := options.ParseColor(opts.Window.Background)
	if err != nil {
		return err
	}

	r, err := renderer.NewRenderer(ctx, renderer.Scene{
		Field:      f,
		Panel:      panel.New(f.Params(), f.SetParams),
		Camera:     cam,
		Orbit:      orbit,
		Stats:      stats.NewReporter(stats.NewFrames(opts.Stats.Window), opts.Window.Title, opts.Stats.TitleInterval, opts.Stats.LogInterval),
		Background: background,
	})
	if err != nil {
		return fmt.Errorf("failed to create renderer: %w", err)
	}
	defer r.Shutdown()

	slog.Info("starting interactive render loop")
	r.Run()
	return nil
}

func main() {
	flags := options.RegisterFlags(flag.CommandLine)
	if err := flags.Parse(flag.CommandLine, os.Args[1:]); err != nil {
		os.Exit(2)
	}

	if *flags.Help {
		fmt.Println("Particle field viewer")
		flag.PrintDefaults()
		return
	}

	opts, err := options.Load(*flags.Config)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	flags.Apply(opts)
	if err := opts.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}
	setupLogging(opts.Log)

	if err := run(opts); err != nil {
		slog.Error("particle field failed", "error", err)
		os.Exit(1)
	}
}
