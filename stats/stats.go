// Package stats tracks frame timing for the window title overlay.
package stats

import (
	"fmt"
	"log/slog"
	"time"

	"gonum.org/v1/gonum/stat"
)

// Frames keeps a rolling window of frame durations in seconds.
type Frames struct {
	window []float64
	next   int
	filled bool

	total int64
}

// Summary is a snapshot of the current window.
type Summary struct {
	Frames int64
	FPS    float64
	MeanMS float64
	StdMS  float64
}

// NewFrames allocates a window of size samples.
func NewFrames(size int) *Frames {
	if size < 1 {
		size = 1
	}
	return &Frames{window: make([]float64, size)}
}

// Add records one frame duration.
func (f *Frames) Add(dt float64) {
	if dt < 0 {
		return
	}
	f.window[f.next] = dt
	f.next++
	if f.next == len(f.window) {
		f.next = 0
		f.filled = true
	}
	f.total++
}

func (f *Frames) samples() []float64 {
	if f.filled {
		return f.window
	}
	return f.window[:f.next]
}

// Summary computes FPS and frame-time spread over the window.
func (f *Frames) Summary() Summary {
	s := Summary{Frames: f.total}
	x := f.samples()
	if len(x) == 0 {
		return s
	}
	var mean, std float64
	if len(x) == 1 {
		mean = x[0]
	} else {
		mean, std = stat.MeanStdDev(x, nil)
	}
	if mean > 0 {
		s.FPS = 1 / mean
	}
	s.MeanMS = mean * 1000
	s.StdMS = std * 1000
	return s
}

// Title formats s for the window title.
func (s Summary) Title(base string) string {
	return fmt.Sprintf("%s | %.0f fps | %.2f ms ± %.2f", base, s.FPS, s.MeanMS, s.StdMS)
}

// Reporter refreshes the title and periodically logs the summary.
type Reporter struct {
	frames *Frames
	base   string

	titleEvery time.Duration
	logEvery   time.Duration
	lastTitle  float64
	lastLog    float64
}

// NewReporter wraps frames. A zero logEvery disables logging.
func NewReporter(frames *Frames, base string, titleEvery, logEvery time.Duration) *Reporter {
	return &Reporter{
		frames:     frames,
		base:       base,
		titleEvery: titleEvery,
		logEvery:   logEvery,
	}
}

// Frame records dt at time now (seconds) and calls setTitle when the title
// is due.
func (r *Reporter) Frame(now, dt float64, setTitle func(string)) {
	r.frames.Add(dt)

	if now-r.lastTitle >= r.titleEvery.Seconds() {
		r.lastTitle = now
		if setTitle != nil {
			setTitle(r.frames.Summary().Title(r.base))
		}
	}
	if r.logEvery > 0 && now-r.lastLog >= r.logEvery.Seconds() {
		r.lastLog = now
		s := r.frames.Summary()
		slog.Info("frame stats", "frames", s.Frames, "fps", s.FPS, "mean_ms", s.MeanMS, "std_ms", s.StdMS)
	}
}
