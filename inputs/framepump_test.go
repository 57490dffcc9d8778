package inputs

import (
	"bytes"
	"errors"
	"io"
	"testing"
	"time"
)

func frames(n, size int) []byte {
	var buf bytes.Buffer
	for i := 0; i < n; i++ {
		buf.Write(bytes.Repeat([]byte{byte(i + 1)}, size))
	}
	return buf.Bytes()
}

func waitDone(t *testing.T, p *FramePump) {
	t.Helper()
	select {
	case <-p.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("pump did not stop")
	}
}

func TestFramePumpKeepsLatestFrame(t *testing.T) {
	p := NewFramePump(4, 0)
	p.Play()
	go p.Run(bytes.NewReader(frames(3, 4)))
	waitDone(t, p)

	dst := make([]byte, 4)
	seq, ok := p.CopyLatest(dst, 0)
	if !ok || seq != 3 {
		t.Fatalf("expected frame 3, got seq %d ok %v", seq, ok)
	}
	if !bytes.Equal(dst, []byte{3, 3, 3, 3}) {
		t.Errorf("expected last frame bytes, got %v", dst)
	}
	if _, ok := p.CopyLatest(dst, seq); ok {
		t.Error("expected no new frame for an already seen sequence")
	}
	if err := p.Err(); err != nil {
		t.Errorf("expected clean end of stream, got %v", err)
	}
}

func TestFramePumpPausedDoesNotRead(t *testing.T) {
	r, w := io.Pipe()
	p := NewFramePump(2, 0)
	go p.Run(r)

	// the first frame is taken even while paused
	w.Write([]byte{1, 1})
	<-p.First()

	written := make(chan struct{})
	go func() {
		w.Write([]byte{9, 9})
		close(written)
	}()

	select {
	case <-written:
		t.Fatal("expected paused pump to leave the writer blocked")
	case <-time.After(50 * time.Millisecond):
	}

	p.Play()
	select {
	case <-written:
	case <-time.After(2 * time.Second):
		t.Fatal("expected playing pump to read")
	}

	p.Close()
	r.CloseWithError(io.ErrClosedPipe)
	waitDone(t, p)
	if err := p.Err(); err != nil {
		t.Errorf("expected no error after close, got %v", err)
	}
}

func TestFramePumpShortFrameIsError(t *testing.T) {
	p := NewFramePump(4, 0)
	p.Play()
	go p.Run(bytes.NewReader([]byte{1, 2}))
	waitDone(t, p)

	if err := p.Err(); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("expected unexpected EOF, got %v", err)
	}
}

func TestFramePumpPlayingToggle(t *testing.T) {
	p := NewFramePump(1, 0)
	if p.Playing() {
		t.Error("expected a new pump to start paused")
	}
	p.Play()
	if !p.Playing() {
		t.Error("expected playing after Play")
	}
	p.Pause()
	if p.Playing() {
		t.Error("expected paused after Pause")
	}
}

func TestFramePumpPacing(t *testing.T) {
	p := NewFramePump(1, 20*time.Millisecond)
	p.Play()
	start := time.Now()
	go p.Run(bytes.NewReader(frames(4, 1)))
	waitDone(t, p)

	// four frames at 20ms spacing
	if elapsed := time.Since(start); elapsed < 60*time.Millisecond {
		t.Errorf("expected paced reads to take at least 60ms, took %v", elapsed)
	}
}

func TestFramePumpPrimesFirstFrameWhilePaused(t *testing.T) {
	r, w := io.Pipe()
	p := NewFramePump(2, 0)
	go p.Run(r)
	go w.Write([]byte{7, 7})

	select {
	case <-p.First():
	case <-time.After(2 * time.Second):
		t.Fatal("expected the first frame while paused")
	}
	if p.Playing() {
		t.Error("expected the pump to stay paused")
	}

	dst := make([]byte, 2)
	seq, ok := p.CopyLatest(dst, 0)
	if !ok || seq != 1 || !bytes.Equal(dst, []byte{7, 7}) {
		t.Errorf("expected first frame [7 7] at seq 1, got %v seq %d ok %v", dst, seq, ok)
	}

	p.Close()
	r.CloseWithError(io.ErrClosedPipe)
	waitDone(t, p)
}

func TestFramePumpFirstClosesOnEmptyStream(t *testing.T) {
	p := NewFramePump(4, 0)
	go p.Run(bytes.NewReader(nil))
	waitDone(t, p)

	select {
	case <-p.First():
	default:
		t.Error("expected First to be closed when the stream ends without a frame")
	}
	if _, ok := p.CopyLatest(make([]byte, 4), 0); ok {
		t.Error("expected no frame from an empty stream")
	}
}
