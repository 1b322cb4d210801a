// Package reconcile keeps a keyed collection of bar elements in step with
// the latest aggregate. Each pass classifies keys as enter, update or exit
// and starts tweens toward the new geometry; a pass issued while tweens are
// still running retargets them from their current interpolated values.
//
// A Reconciler is owned by a single event loop and is not safe for
// concurrent use.
package reconcile

import (
	"image/color"
	"sort"
	"time"

	"github.com/vanderheijden86/tremorview/pkg/metrics"
)

// Default animation timings.
const (
	DefaultDuration      = 500 * time.Millisecond
	DefaultHoverDuration = 300 * time.Millisecond
	DefaultDimOpacity    = 0.3
)

// State is the lifecycle position of an element.
type State int

const (
	Absent State = iota
	Entering
	Present
	Exiting
)

func (s State) String() string {
	switch s {
	case Entering:
		return "entering"
	case Present:
		return "present"
	case Exiting:
		return "exiting"
	default:
		return "absent"
	}
}

// Attrs are the animated attributes of a bar.
type Attrs struct {
	X, Y          float64
	Width, Height float64
	Fill          color.RGBA
}

// Target is the desired end state of one keyed element.
type Target struct {
	Key string
	Attrs
}

// Diff lists how a pass classified keys.
type Diff struct {
	Entered []string
	Updated []string
	Exited  []string
}

// ElementFrame is an element's interpolated attributes at one instant.
type ElementFrame struct {
	Key     string
	State   State
	Attrs   Attrs
	Opacity float64
	Hovered bool
}

// Options configures timings and the baseline elements grow from.
type Options struct {
	Duration      time.Duration
	HoverDuration time.Duration
	DimOpacity    float64
	// Baseline is the pixel y of value zero; entering bars start there and
	// exiting bars collapse onto it.
	Baseline float64
	Ease     Ease
}

type element struct {
	key     string
	state   State
	attrs   tween[Attrs]
	opacity tween[float64]
	seq     int
}

// Reconciler owns the visual elements of one chart.
type Reconciler struct {
	opts     Options
	elements map[string]*element
	order    []string
	hovered  string
	seq      int
}

// New returns an empty Reconciler. Zero timings fall back to the defaults;
// pass a negative duration for instant transitions.
func New(opts Options) *Reconciler {
	if opts.Duration == 0 {
		opts.Duration = DefaultDuration
	}
	if opts.HoverDuration == 0 {
		opts.HoverDuration = DefaultHoverDuration
	}
	if opts.DimOpacity == 0 {
		opts.DimOpacity = DefaultDimOpacity
	}
	if opts.Ease == nil {
		opts.Ease = EaseCubicInOut
	}
	return &Reconciler{opts: opts, elements: make(map[string]*element)}
}

// Apply reconciles the elements against targets, which must have unique
// keys in display order.
func (r *Reconciler) Apply(now time.Time, targets []Target) Diff {
	defer metrics.Timer(metrics.Reconcile)()

	r.Tick(now)

	var diff Diff
	wanted := make(map[string]bool, len(targets))
	order := make([]string, 0, len(targets))
	for _, t := range targets {
		if wanted[t.Key] {
			continue
		}
		wanted[t.Key] = true
		order = append(order, t.Key)

		if el, ok := r.elements[t.Key]; ok {
			el.attrs = el.attrs.retarget(now, t.Attrs, r.opts.Duration)
			if el.state == Exiting {
				el.state = Present
				el.opacity = el.opacity.retarget(now, r.restingOpacity(t.Key), r.opts.HoverDuration)
			}
			diff.Updated = append(diff.Updated, t.Key)
			continue
		}

		start := Attrs{X: t.X, Y: r.opts.Baseline, Width: t.Width, Height: 0, Fill: t.Fill}
		r.seq++
		r.elements[t.Key] = &element{
			key:     t.Key,
			state:   Entering,
			attrs:   tween[Attrs]{from: start, to: t.Attrs, start: now, duration: r.opts.Duration, ease: r.opts.Ease, lerp: lerpAttrs},
			opacity: still(r.restingOpacity(t.Key), lerpFloat, r.opts.Ease),
			seq:     r.seq,
		}
		diff.Entered = append(diff.Entered, t.Key)
	}

	for _, key := range r.order {
		if wanted[key] {
			continue
		}
		el := r.elements[key]
		if el == nil || el.state == Exiting {
			continue
		}
		cur := el.attrs.at(now)
		collapsed := Attrs{X: cur.X, Y: r.opts.Baseline, Width: cur.Width, Height: 0, Fill: cur.Fill}
		el.attrs = el.attrs.retarget(now, collapsed, r.opts.Duration)
		el.state = Exiting
		diff.Exited = append(diff.Exited, key)
	}

	r.order = order
	if r.hovered != "" && !wanted[r.hovered] {
		r.Leave(now)
	}
	return diff
}

// Tick finishes transitions that have completed by now: entering elements
// become present and exiting elements are destroyed. It returns the keys
// removed.
func (r *Reconciler) Tick(now time.Time) []string {
	var removed []string
	for key, el := range r.elements {
		if !el.attrs.done(now) {
			continue
		}
		switch el.state {
		case Entering:
			el.state = Present
		case Exiting:
			delete(r.elements, key)
			removed = append(removed, key)
		}
	}
	sort.Strings(removed)
	return removed
}

// Keys returns the live (non-exiting) element keys in display order.
func (r *Reconciler) Keys() []string {
	return append([]string(nil), r.order...)
}

// Len returns the number of elements still held, exiting ones included.
func (r *Reconciler) Len() int {
	return len(r.elements)
}

// State returns key's lifecycle state.
func (r *Reconciler) State(key string) State {
	if el, ok := r.elements[key]; ok {
		return el.state
	}
	return Absent
}

// Animating reports whether any tween is still running at now.
func (r *Reconciler) Animating(now time.Time) bool {
	for _, el := range r.elements {
		if !el.attrs.done(now) || !el.opacity.done(now) {
			return true
		}
	}
	return false
}

// Frame returns every element's interpolated attributes at now: live
// elements in display order, then exiting elements in creation order.
func (r *Reconciler) Frame(now time.Time) []ElementFrame {
	out := make([]ElementFrame, 0, len(r.elements))
	for _, key := range r.order {
		if el, ok := r.elements[key]; ok {
			out = append(out, r.frameOf(el, now))
		}
	}

	var exiting []*element
	for _, el := range r.elements {
		if el.state == Exiting {
			exiting = append(exiting, el)
		}
	}
	sort.Slice(exiting, func(i, j int) bool { return exiting[i].seq < exiting[j].seq })
	for _, el := range exiting {
		out = append(out, r.frameOf(el, now))
	}
	return out
}

func (r *Reconciler) frameOf(el *element, now time.Time) ElementFrame {
	return ElementFrame{
		Key:     el.key,
		State:   el.state,
		Attrs:   el.attrs.at(now),
		Opacity: el.opacity.at(now),
		Hovered: el.key == r.hovered,
	}
}

// SetBaseline moves the pixel y that enter and exit animations use.
func (r *Reconciler) SetBaseline(y float64) {
	r.opts.Baseline = y
}
