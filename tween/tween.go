// Package tween animates a float32 value towards a target over time.
package tween

import "math"

// Ease maps normalised progress in [0,1] to eased progress.
type Ease func(t float64) float64

// Linear is the identity easing.
func Linear(t float64) float64 { return t }

// Power2InOut is the power2 in-out curve: cubic acceleration through the
// first half and cubic deceleration through the second.
func Power2InOut(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	return 1 - math.Pow(-2*t+2, 3)/2
}

// Tween writes an eased interpolation from a start value to an end value
// into Target. It runs once; there is no way to cancel or restart it.
type Tween struct {
	target   *float32
	from     float32
	to       float32
	duration float64
	ease     Ease

	start   float64
	started bool
	done    bool
}

// To creates a tween that drives *target from its current value to `to`
// over duration seconds. A nil ease means Linear.
func To(target *float32, to float32, duration float64, ease Ease) *Tween {
	if ease == nil {
		ease = Linear
	}
	return &Tween{
		target:   target,
		to:       to,
		duration: duration,
		ease:     ease,
	}
}

// Start fixes the start time and captures the starting value. Later calls
// are ignored.
func (t *Tween) Start(now float64) {
	if t.started {
		return
	}
	t.started = true
	t.start = now
	t.from = *t.target
}

// Started reports whether Start has been called.
func (t *Tween) Started() bool { return t.started }

// Done reports whether the tween reached its end value.
func (t *Tween) Done() bool { return t.done }

// Value returns the tweened value at time now without writing it.
func (t *Tween) Value(now float64) float32 {
	if !t.started {
		return *t.target
	}
	p := 1.0
	if t.duration > 0 {
		p = (now - t.start) / t.duration
	}
	if p <= 0 {
		return t.from
	}
	if p >= 1 {
		return t.to
	}
	e := t.ease(p)
	return t.from + (t.to-t.from)*float32(e)
}

// Step writes the value at time now into the target. It returns true while
// the tween is still running.
func (t *Tween) Step(now float64) bool {
	if !t.started || t.done {
		return false
	}
	*t.target = t.Value(now)
	if now-t.start >= t.duration {
		t.done = true
	}
	return !t.done
}
