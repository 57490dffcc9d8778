package inputs

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"
)

// FramePump reads fixed-size raw frames from a decoder pipe and keeps the
// most recent one. The first frame is read even while paused so a paused
// video still shows a picture. After that, a paused pump stops reading, so
// the decoder blocks on its write and holds its position.
type FramePump struct {
	frameSize int
	interval  time.Duration

	mu      sync.Mutex
	cond    *sync.Cond
	playing bool
	closed  bool
	latest  []byte
	seq     uint64
	err     error

	first     chan struct{}
	firstOnce sync.Once
	done      chan struct{}
}

// NewFramePump creates a paused pump for frames of frameSize bytes. A
// non-zero interval paces reads to one frame per interval.
func NewFramePump(frameSize int, interval time.Duration) *FramePump {
	p := &FramePump{
		frameSize: frameSize,
		interval:  interval,
		latest:    make([]byte, frameSize),
		first:     make(chan struct{}),
		done:      make(chan struct{}),
	}
	p.cond = sync.NewCond(&p.mu)
	return p
}

// Run reads frames from r until it fails or the pump is closed. It is meant
// to run on its own goroutine.
func (p *FramePump) Run(r io.Reader) {
	defer close(p.done)
	defer p.markFirst()

	back := make([]byte, p.frameSize)
	var next time.Time
	for {
		p.mu.Lock()
		wasPaused := false
		for !p.playing && !p.closed && p.seq > 0 {
			wasPaused = true
			p.cond.Wait()
		}
		if p.closed {
			p.mu.Unlock()
			return
		}
		p.mu.Unlock()

		if wasPaused || next.IsZero() {
			next = time.Now()
		}

		if _, err := io.ReadFull(r, back); err != nil {
			p.mu.Lock()
			if !p.closed && !errors.Is(err, io.ErrClosedPipe) && err != io.EOF {
				p.err = fmt.Errorf("reading video frame: %w", err)
			}
			p.mu.Unlock()
			return
		}

		p.mu.Lock()
		p.latest, back = back, p.latest
		p.seq++
		p.mu.Unlock()
		p.markFirst()

		if p.interval > 0 {
			next = next.Add(p.interval)
			if wait := time.Until(next); wait > 0 {
				time.Sleep(wait)
			} else if -wait > p.interval {
				// Too far behind; restart the clock instead of bursting.
				next = time.Now()
			}
		}
	}
}

func (p *FramePump) markFirst() {
	p.firstOnce.Do(func() { close(p.first) })
}

// First is closed once the first frame is available or Run has returned
// without one.
func (p *FramePump) First() <-chan struct{} {
	return p.first
}

// Play resumes reading.
func (p *FramePump) Play() {
	p.mu.Lock()
	p.playing = true
	p.mu.Unlock()
	p.cond.Broadcast()
}

// Pause stops reading after the current frame.
func (p *FramePump) Pause() {
	p.mu.Lock()
	p.playing = false
	p.mu.Unlock()
}

// Playing reports whether the pump is reading.
func (p *FramePump) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

// CopyLatest copies the newest frame into dst when it is newer than seen.
// It returns the frame's sequence number and whether dst was written.
func (p *FramePump) CopyLatest(dst []byte, seen uint64) (uint64, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.seq == seen {
		return seen, false
	}
	copy(dst, p.latest)
	return p.seq, true
}

// Err returns the read error that stopped the pump, if any.
func (p *FramePump) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

// Close stops the pump once its current read returns. The caller must
// also close the reader if a read may be blocked.
func (p *FramePump) Close() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	p.cond.Broadcast()
}

// Done is closed when Run returns.
func (p *FramePump) Done() <-chan struct{} {
	return p.done
}
