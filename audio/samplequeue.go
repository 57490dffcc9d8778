package audio

import (
	"sync"
)

// SampleQueue is a bounded FIFO of interleaved float32 samples shared by a
// decoder goroutine and the audio callback. Writers block while it is
// full; readers never block.
type SampleQueue struct {
	mu       sync.Mutex
	space    *sync.Cond
	buffers  [][]float32
	capacity int
	avail    int
	closed   bool

	totalWritten int64
	totalRead    int64
}

// NewSampleQueue creates a queue holding up to capacity samples.
func NewSampleQueue(capacity int) *SampleQueue {
	q := &SampleQueue{capacity: max(capacity, 1)}
	q.space = sync.NewCond(&q.mu)
	return q
}

// Write appends samples, blocking until there is room. It returns false
// once the queue is closed.
func (q *SampleQueue) Write(samples []float32) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(samples) > 0 {
		for q.avail >= q.capacity && !q.closed {
			q.space.Wait()
		}
		if q.closed {
			return false
		}
		n := min(len(samples), q.capacity-q.avail)
		chunk := make([]float32, n)
		copy(chunk, samples[:n])
		q.buffers = append(q.buffers, chunk)
		q.avail += n
		q.totalWritten += int64(n)
		samples = samples[n:]
	}
	return true
}

// ReadInto fills dst with the oldest samples and returns how many were
// copied. The rest of dst is left untouched.
func (q *SampleQueue) ReadInto(dst []float32) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	pos := 0
	for len(q.buffers) > 0 && pos < len(dst) {
		buffer := q.buffers[0]
		n := copy(dst[pos:], buffer)
		pos += n
		if n == len(buffer) {
			q.buffers = q.buffers[1:]
		} else {
			q.buffers[0] = buffer[n:]
		}
	}
	q.avail -= pos
	q.totalRead += int64(pos)
	if pos > 0 {
		q.space.Broadcast()
	}
	return pos
}

// AvailableSamples returns the number of queued samples.
func (q *SampleQueue) AvailableSamples() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.avail
}

func (q *SampleQueue) TotalSamplesWritten() int64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.totalWritten
}

// Close wakes blocked writers and makes further writes fail.
func (q *SampleQueue) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.space.Broadcast()
}
