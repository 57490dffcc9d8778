package audio

// Playback uses portaudio.
// macos:	brew install portaudio
// debian:	sudo apt-get install portaudio19-dev
// windows:	pacman -S mingw-w64-x86_64-portaudio

import (
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os/exec"
	"sync/atomic"

	"github.com/gordonklaus/portaudio"
	ffmpeg "github.com/u2takey/ffmpeg-go"
)

const (
	SampleRate      = 44100
	decodeChannels  = 2
	framesPerBuffer = 1024
	// about half a second of stereo audio
	queueCapacity = SampleRate
)

// SoundtrackOptions configure the decoder.
type SoundtrackOptions struct {
	FFmpegPath string
	Loop       bool
}

// Soundtrack plays the audio track of a media file. ffmpeg decodes to
// interleaved stereo float32 into a SampleQueue and a portaudio output
// stream drains it. It starts paused.
type Soundtrack struct {
	queue  *SampleQueue
	mixer  *mixer
	stream *portaudio.Stream

	cmd    *exec.Cmd
	reader *io.PipeReader
	writer *io.PipeWriter
	done   chan struct{}
}

// mixer fills output buffers from the queue.
type mixer struct {
	queue    *SampleQueue
	playing  atomic.Bool
	channels int
	scratch  []float32
}

// fill writes one callback's worth of interleaved samples into out.
// Paused output is silence and leaves the queue alone.
func (m *mixer) fill(out []float32) {
	if !m.playing.Load() {
		clear(out)
		return
	}
	if m.channels == decodeChannels {
		n := m.queue.ReadInto(out)
		clear(out[n:])
		return
	}

	// mono device
	want := len(out) * decodeChannels
	if cap(m.scratch) < want {
		m.scratch = make([]float32, want)
	}
	stereo := m.scratch[:want]
	n := m.queue.ReadInto(stereo)
	clear(stereo[n:])
	DownmixStereoToMonoInto(out, stereo)
}

// decodeF32LE converts little-endian float32 bytes to samples. Trailing
// bytes that do not form a whole sample are ignored.
func decodeF32LE(dst []float32, b []byte) []float32 {
	n := len(b) / 4
	dst = dst[:0]
	for i := 0; i < n; i++ {
		dst = append(dst, math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:])))
	}
	return dst
}

// NewSoundtrack opens the default output device and starts decoding path.
func NewSoundtrack(path string, opts SoundtrackOptions) (*Soundtrack, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize portaudio: %w", err)
	}

	channels := decodeChannels
	if dev, err := portaudio.DefaultOutputDevice(); err == nil && dev.MaxOutputChannels < decodeChannels {
		channels = 1
	}

	q := NewSampleQueue(queueCapacity)
	s := &Soundtrack{
		queue: q,
		mixer: &mixer{queue: q, channels: channels},
		done:  make(chan struct{}),
	}

	stream, err := portaudio.OpenDefaultStream(0, channels, SampleRate, framesPerBuffer, s.mixer.fill)
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("failed to open audio stream: %w", err)
	}
	s.stream = stream

	if err := s.startDecoder(path, opts); err != nil {
		stream.Close()
		portaudio.Terminate()
		return nil, err
	}

	if err := stream.Start(); err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to start audio stream: %w", err)
	}
	slog.Info("soundtrack ready", "path", path, "channels", channels, "sample_rate", SampleRate)
	return s, nil
}

func (s *Soundtrack) startDecoder(path string, opts SoundtrackOptions) error {
	s.reader, s.writer = io.Pipe()

	inputArgs := ffmpeg.KwArgs{}
	if opts.Loop {
		inputArgs["stream_loop"] = "-1"
	}
	ffmpegCmd := ffmpeg.Input(path, inputArgs).
		Output("pipe:", ffmpeg.KwArgs{
			"f":        "f32le",
			"ac":       fmt.Sprint(decodeChannels),
			"ar":       fmt.Sprint(SampleRate),
			"vn":       "",
			"loglevel": "error",
		}).
		WithOutput(s.writer).
		ErrorToStdOut()
	if opts.FFmpegPath != "" {
		ffmpegCmd.SetFfmpegPath(opts.FFmpegPath)
	}

	s.cmd = ffmpegCmd.Compile()
	if err := s.cmd.Start(); err != nil {
		return fmt.Errorf("starting audio decoder: %w", err)
	}
	go func() {
		if err := s.cmd.Wait(); err != nil {
			slog.Debug("audio decoder exited", "error", err)
		}
		s.writer.Close()
	}()
	go s.pump()
	return nil
}

// pump moves decoded samples into the queue. Write blocks while the queue
// is full, which in turn stalls ffmpeg.
func (s *Soundtrack) pump() {
	defer close(s.done)

	buf := make([]byte, framesPerBuffer*decodeChannels*4)
	samples := make([]float32, 0, framesPerBuffer*decodeChannels)
	for {
		n, err := io.ReadFull(s.reader, buf)
		if n > 0 {
			samples = decodeF32LE(samples, buf[:n])
			if !s.queue.Write(samples) {
				return
			}
		}
		if err != nil {
			return
		}
	}
}

func (s *Soundtrack) Play() error {
	s.mixer.playing.Store(true)
	return nil
}

func (s *Soundtrack) Pause() error {
	s.mixer.playing.Store(false)
	return nil
}

func (s *Soundtrack) Playing() bool {
	return s.mixer.playing.Load()
}

// Close stops playback and the decoder.
func (s *Soundtrack) Close() error {
	s.queue.Close()
	s.reader.CloseWithError(io.ErrClosedPipe)
	if s.cmd != nil && s.cmd.Process != nil {
		s.cmd.Process.Kill()
	}
	<-s.done

	var err error
	if s.stream != nil {
		if cerr := s.stream.Close(); cerr != nil {
			err = cerr
		}
	}
	if terr := portaudio.Terminate(); err == nil {
		err = terr
	}
	return err
}
