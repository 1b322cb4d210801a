// Package scale maps chart data onto pixel space: condition keys onto
// horizontal bands, severities onto vertical pixels and conditions onto
// palette colours.
package scale

// DefaultPadding is the band padding fraction used for both the gaps between
// bars and the outer margins.
const DefaultPadding = 0.1

// Band maps an ordered set of keys onto equal, non-overlapping pixel bands.
type Band struct {
	keys    []string
	index   map[string]int
	r0, r1  float64
	padding float64
	align   float64

	step      float64
	bandwidth float64
	start     float64
}

// NewBand returns a band scale over the pixel range [r0, r1].
func NewBand(r0, r1, padding float64) *Band {
	if padding < 0 {
		padding = 0
	}
	if padding > 1 {
		padding = 1
	}
	b := &Band{r0: r0, r1: r1, padding: padding, align: 0.5}
	b.rescale()
	return b
}

// SetDomain replaces the ordered key set and recomputes band geometry.
// Duplicate keys keep their first position.
func (b *Band) SetDomain(keys []string) {
	b.keys = b.keys[:0]
	b.index = make(map[string]int, len(keys))
	for _, k := range keys {
		if _, dup := b.index[k]; dup {
			continue
		}
		b.index[k] = len(b.keys)
		b.keys = append(b.keys, k)
	}
	b.rescale()
}

// SetRange changes the pixel range.
func (b *Band) SetRange(r0, r1 float64) {
	b.r0, b.r1 = r0, r1
	b.rescale()
}

func (b *Band) rescale() {
	n := float64(len(b.keys))
	lo, hi := b.r0, b.r1
	if hi < lo {
		lo, hi = hi, lo
	}
	slots := n - b.padding + 2*b.padding
	if slots < 1 {
		slots = 1
	}
	b.step = (hi - lo) / slots
	b.start = lo + (hi-lo-b.step*(n-b.padding))*b.align
	b.bandwidth = b.step * (1 - b.padding)
}

// Domain returns the current keys in order.
func (b *Band) Domain() []string {
	return append([]string(nil), b.keys...)
}

// Position returns the left edge of key's band.
func (b *Band) Position(key string) (float64, bool) {
	i, ok := b.index[key]
	if !ok {
		return 0, false
	}
	return b.start + b.step*float64(i), true
}

// Center returns the midpoint of key's band.
func (b *Band) Center(key string) (float64, bool) {
	x, ok := b.Position(key)
	if !ok {
		return 0, false
	}
	return x + b.bandwidth/2, true
}

// Bandwidth returns the width of every band.
func (b *Band) Bandwidth() float64 {
	return b.bandwidth
}

// Step returns the distance between the starts of adjacent bands.
func (b *Band) Step() float64 {
	return b.step
}
