package reconcile

import (
	"image/color"
	"math"
	"time"
)

// Ease maps linear progress in [0,1] to eased progress.
type Ease func(t float64) float64

// EaseCubicInOut accelerates through the first half and decelerates
// through the second.
func EaseCubicInOut(t float64) float64 {
	t *= 2
	if t <= 1 {
		return t * t * t / 2
	}
	t -= 2
	return (t*t*t + 2) / 2
}

// EaseLinear is the identity easing.
func EaseLinear(t float64) float64 {
	return t
}

// tween interpolates between two values over a fixed duration. Retargeting
// builds a new tween whose from is the old tween's value at that instant.
type tween[T any] struct {
	from, to T
	start    time.Time
	duration time.Duration
	ease     Ease
	lerp     func(a, b T, t float64) T
}

func (tw tween[T]) progress(now time.Time) float64 {
	if tw.duration <= 0 {
		return 1
	}
	elapsed := now.Sub(tw.start)
	if elapsed <= 0 {
		return 0
	}
	if elapsed >= tw.duration {
		return 1
	}
	return float64(elapsed) / float64(tw.duration)
}

func (tw tween[T]) at(now time.Time) T {
	p := tw.progress(now)
	if p >= 1 {
		return tw.to
	}
	if p <= 0 {
		return tw.from
	}
	e := tw.ease
	if e == nil {
		e = EaseCubicInOut
	}
	return tw.lerp(tw.from, tw.to, e(p))
}

func (tw tween[T]) done(now time.Time) bool {
	return tw.progress(now) >= 1
}

// retarget returns a tween from the current value toward to.
func (tw tween[T]) retarget(now time.Time, to T, d time.Duration) tween[T] {
	return tween[T]{from: tw.at(now), to: to, start: now, duration: d, ease: tw.ease, lerp: tw.lerp}
}

func still[T any](v T, lerp func(a, b T, t float64) T, ease Ease) tween[T] {
	return tween[T]{from: v, to: v, lerp: lerp, ease: ease}
}

func lerpFloat(a, b, t float64) float64 {
	return a + (b-a)*t
}

func lerpColor(a, b color.RGBA, t float64) color.RGBA {
	ch := func(x, y uint8) uint8 {
		return uint8(math.Round(lerpFloat(float64(x), float64(y), t)))
	}
	return color.RGBA{R: ch(a.R, b.R), G: ch(a.G, b.G), B: ch(a.B, b.B), A: ch(a.A, b.A)}
}

func lerpAttrs(a, b Attrs, t float64) Attrs {
	return Attrs{
		X:      lerpFloat(a.X, b.X, t),
		Y:      lerpFloat(a.Y, b.Y, t),
		Width:  lerpFloat(a.Width, b.Width, t),
		Height: lerpFloat(a.Height, b.Height, t),
		Fill:   lerpColor(a.Fill, b.Fill, t),
	}
}
