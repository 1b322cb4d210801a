package scale

import (
	"math"
	"strconv"
)

// Linear maps a numeric domain onto a pixel range. The range may be
// inverted (for example [height, 0] so larger values sit higher).
type Linear struct {
	d0, d1 float64
	r0, r1 float64
}

// NewLinear returns a linear scale.
func NewLinear(d0, d1, r0, r1 float64) *Linear {
	return &Linear{d0: d0, d1: d1, r0: r0, r1: r1}
}

// SetDomain replaces the numeric domain.
func (l *Linear) SetDomain(d0, d1 float64) {
	l.d0, l.d1 = d0, d1
}

// SetRange replaces the pixel range.
func (l *Linear) SetRange(r0, r1 float64) {
	l.r0, l.r1 = r0, r1
}

// Domain returns the numeric domain.
func (l *Linear) Domain() (float64, float64) {
	return l.d0, l.d1
}

// Range returns the pixel range.
func (l *Linear) Range() (float64, float64) {
	return l.r0, l.r1
}

// Map converts v to pixels. A degenerate domain maps everything to the
// middle of the range.
func (l *Linear) Map(v float64) float64 {
	span := l.d1 - l.d0
	if span == 0 {
		return (l.r0 + l.r1) / 2
	}
	t := (v - l.d0) / span
	return l.r0 + t*(l.r1-l.r0)
}

// Ticks returns roughly count evenly spaced round values (multiples of
// 1, 2 or 5 times a power of ten) within the domain.
func (l *Linear) Ticks(count int) []float64 {
	return Ticks(l.d0, l.d1, count)
}

// Nice extends the domain outwards to the nearest tick step.
func (l *Linear) Nice(count int) {
	step := TickStep(l.d0, l.d1, count)
	if step == 0 || math.IsNaN(step) || math.IsInf(step, 0) {
		return
	}
	l.d0 = math.Floor(l.d0/step) * step
	l.d1 = math.Ceil(l.d1/step) * step
}

var (
	e10 = math.Sqrt(50)
	e5  = math.Sqrt(10)
	e2  = math.Sqrt(2)
)

// TickStep returns the tick spacing Ticks would use.
func TickStep(start, stop float64, count int) float64 {
	if count <= 0 || start == stop {
		return 0
	}
	power, factor := tickIncrement(start, stop, count)
	return factor * math.Pow(10, power)
}

func tickIncrement(start, stop float64, count int) (power, factor float64) {
	step := math.Abs(stop-start) / float64(count)
	power = math.Floor(math.Log10(step))
	errRatio := step / math.Pow(10, power)
	factor = 1
	switch {
	case errRatio >= e10:
		factor = 10
	case errRatio >= e5:
		factor = 5
	case errRatio >= e2:
		factor = 2
	}
	return power, factor
}

// Ticks returns round values between start and stop inclusive.
func Ticks(start, stop float64, count int) []float64 {
	if count <= 0 || math.IsNaN(start) || math.IsNaN(stop) {
		return nil
	}
	if start == stop {
		return []float64{start}
	}
	reverse := stop < start
	if reverse {
		start, stop = stop, start
	}

	power, factor := tickIncrement(start, stop, count)

	var ticks []float64
	if power < 0 {
		// Divide by the inverse step so 0.1-style steps stay exact.
		inc := math.Pow(10, -power) / factor
		i0 := math.Ceil(start * inc)
		i1 := math.Floor(stop * inc)
		for i := i0; i <= i1; i++ {
			ticks = append(ticks, i/inc)
		}
	} else {
		inc := math.Pow(10, power) * factor
		i0 := math.Ceil(start / inc)
		i1 := math.Floor(stop / inc)
		for i := i0; i <= i1; i++ {
			ticks = append(ticks, i*inc)
		}
	}

	if reverse {
		for i, j := 0, len(ticks)-1; i < j; i, j = i+1, j-1 {
			ticks[i], ticks[j] = ticks[j], ticks[i]
		}
	}
	return ticks
}

// TickFormat returns a formatter that prints ticks with just enough
// decimals to tell neighbouring ticks apart.
func (l *Linear) TickFormat(count int) func(float64) string {
	step := TickStep(l.d0, l.d1, count)
	decimals := 0
	if step > 0 && !math.IsInf(step, 0) {
		decimals = max(0, int(-math.Floor(math.Log10(step)+1e-9)))
	}
	return func(v float64) string {
		return strconv.FormatFloat(v, 'f', decimals, 64)
	}
}
