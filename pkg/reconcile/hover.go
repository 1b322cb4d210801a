package reconcile

import "time"

// Hover highlights key: every other element fades to the dim opacity while
// key returns to full opacity. Hovering never changes lifecycle states.
// It reports false when key is not a live element.
func (r *Reconciler) Hover(now time.Time, key string) bool {
	el, ok := r.elements[key]
	if !ok || el.state == Exiting {
		return false
	}
	r.hovered = key
	for k, e := range r.elements {
		target := r.opts.DimOpacity
		if k == key {
			target = 1
		}
		e.opacity = e.opacity.retarget(now, target, r.opts.HoverDuration)
	}
	return true
}

// Leave clears the hover and restores full opacity everywhere.
func (r *Reconciler) Leave(now time.Time) {
	r.hovered = ""
	for _, e := range r.elements {
		e.opacity = e.opacity.retarget(now, 1, r.opts.HoverDuration)
	}
}

// Hovered returns the hovered key, or "".
func (r *Reconciler) Hovered() string {
	return r.hovered
}

func (r *Reconciler) restingOpacity(key string) float64 {
	if r.hovered == "" || r.hovered == key {
		return 1
	}
	return r.opts.DimOpacity
}

// Tooltip timings and the visible opacity.
const (
	TooltipFadeIn  = 200 * time.Millisecond
	TooltipFadeOut = 500 * time.Millisecond
	TooltipOpacity = 0.9
)

// Tooltip tracks the fade state of the hover tooltip. Its content is
// derived from the hovered key's summary by the caller.
type Tooltip struct {
	Key     string
	FadeIn  time.Duration
	FadeOut time.Duration
	opacity tween[float64]
}

// NewTooltip returns a hidden tooltip.
func NewTooltip(fadeIn, fadeOut time.Duration) *Tooltip {
	if fadeIn == 0 {
		fadeIn = TooltipFadeIn
	}
	if fadeOut == 0 {
		fadeOut = TooltipFadeOut
	}
	return &Tooltip{FadeIn: fadeIn, FadeOut: fadeOut, opacity: still(0.0, lerpFloat, EaseCubicInOut)}
}

// Show fades the tooltip in for key.
func (t *Tooltip) Show(now time.Time, key string) {
	t.Key = key
	t.opacity = t.opacity.retarget(now, TooltipOpacity, t.FadeIn)
}

// Hide fades the tooltip out. Key stays set until the fade completes so the
// content remains readable while it disappears.
func (t *Tooltip) Hide(now time.Time) {
	t.opacity = t.opacity.retarget(now, 0, t.FadeOut)
}

// Opacity returns the tooltip opacity at now.
func (t *Tooltip) Opacity(now time.Time) float64 {
	return t.opacity.at(now)
}

// Visible reports whether the tooltip should be drawn at now.
func (t *Tooltip) Visible(now time.Time) bool {
	return t.Key != "" && t.Opacity(now) > 0
}

// Animating reports whether the fade is still running.
func (t *Tooltip) Animating(now time.Time) bool {
	return !t.opacity.done(now)
}
