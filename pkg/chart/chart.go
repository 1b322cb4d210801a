// Package chart wires the record store, filter selection, aggregator, scales
// and reconciler into one controller. Frontends (the terminal UI and the
// snapshot exporter) call its event methods and draw what Frame returns.
//
// A Controller is owned by a single event loop and is not safe for
// concurrent use.
package chart

import (
	"slices"
	"time"

	"github.com/vanderheijden86/tremorview/pkg/aggregate"
	"github.com/vanderheijden86/tremorview/pkg/debug"
	"github.com/vanderheijden86/tremorview/pkg/filter"
	"github.com/vanderheijden86/tremorview/pkg/loader"
	"github.com/vanderheijden86/tremorview/pkg/metrics"
	"github.com/vanderheijden86/tremorview/pkg/model"
	"github.com/vanderheijden86/tremorview/pkg/reconcile"
	"github.com/vanderheijden86/tremorview/pkg/scale"
)

// Pass is the outcome of one render pass.
type Pass struct {
	Task       string
	Conditions []string
	Summaries  []model.GroupSummary
	Diff       reconcile.Diff
}

// Controller holds all chart state for one loaded dataset.
type Controller struct {
	store *loader.Store
	opts  Options

	tasks      []string
	conditions []string
	sel        filter.Selection

	scales    *scale.Manager
	colors    *scale.Ordinal
	rec       *reconcile.Reconciler
	tip       *reconcile.Tooltip
	gridlines []float64

	summaries []model.GroupSummary
	byKey     map[string]model.GroupSummary
}

// New builds a controller over store with every condition checked and the
// task set to All. It does not render; call Render for the first pass.
func New(store *loader.Store, opts Options) *Controller {
	opts = opts.withDefaults()
	c := &Controller{
		store:      store,
		opts:       opts,
		conditions: store.Conditions(),
		colors:     scale.NewOrdinal(opts.Palette),
		byKey:      make(map[string]model.GroupSummary),
	}
	c.tasks = append([]string{filter.AllTasks}, store.TaskNames()...)
	c.sel = filter.NewSelection(c.conditions)

	// Colours follow dataset order, not the order bars first appear.
	for _, cond := range c.conditions {
		c.colors.Color(cond)
	}

	w, h := opts.Layout.PlotWidth(), opts.Layout.PlotHeight()
	c.scales = scale.NewManager(w, h, opts.Padding, opts.Policy)
	c.scales.SetGlobalMax(store.MaxSeverity())
	c.gridlines = gridlines(store.MaxSeverity(), h, opts.TickCount)

	c.rec = reconcile.New(reconcile.Options{
		Duration:      opts.Duration,
		HoverDuration: opts.HoverDuration,
		Baseline:      c.scales.Baseline(),
		Ease:          opts.Ease,
	})
	c.tip = reconcile.NewTooltip(opts.TooltipFadeIn, opts.TooltipFadeOut)

	debug.Log("chart: %d records, %d tasks, %d conditions, domain=%s",
		store.Len(), len(c.tasks)-1, len(c.conditions), opts.Policy)
	return c
}

// gridlines are fixed where the load-time value domain puts them.
func gridlines(max, height float64, count int) []float64 {
	grid := scale.NewLinear(0, upper(max), height, 0)
	var out []float64
	for _, v := range grid.Ticks(count) {
		out = append(out, grid.Map(v))
	}
	return out
}

// Replace swaps in a reloaded store and runs a pass. Bars, colours and the
// hover carry over, so changed values animate from where they are. The task
// falls back to All when it no longer exists; unchecked conditions stay
// unchecked, and conditions new to the data are checked only when every
// condition was checked before.
func (c *Controller) Replace(now time.Time, store *loader.Store) Pass {
	prev := c.sel
	allChecked := len(prev.Checked()) == len(c.conditions)

	c.store = store
	c.conditions = store.Conditions()
	c.tasks = append([]string{filter.AllTasks}, store.TaskNames()...)
	for _, cond := range c.conditions {
		c.colors.Color(cond)
	}
	c.scales.SetGlobalMax(store.MaxSeverity())
	c.gridlines = gridlines(store.MaxSeverity(), c.opts.Layout.PlotHeight(), c.opts.TickCount)

	task := prev.Task
	if !slices.Contains(c.tasks, task) {
		task = filter.AllTasks
	}
	next := filter.NewSelection(c.conditions).WithTask(task)
	if !allChecked {
		for _, cond := range c.conditions {
			if !prev.IsChecked(cond) {
				next = next.Toggle(cond)
			}
		}
	}
	c.sel = next

	debug.Log("chart: reloaded %d records, %d tasks, %d conditions",
		store.Len(), len(c.tasks)-1, len(c.conditions))
	return c.Render(now)
}

func upper(v float64) float64 {
	if v <= 0 {
		return 1
	}
	return v
}

// Store returns the underlying record store.
func (c *Controller) Store() *loader.Store {
	return c.store
}

// Options returns the effective options.
func (c *Controller) Options() Options {
	return c.opts
}

// Tasks returns the task picker entries: All first, then task names in
// dataset order.
func (c *Controller) Tasks() []string {
	return append([]string(nil), c.tasks...)
}

// Conditions returns every condition in dataset order.
func (c *Controller) Conditions() []string {
	return append([]string(nil), c.conditions...)
}

// Selection returns the current filter selection.
func (c *Controller) Selection() filter.Selection {
	return c.sel
}

// Summaries returns the summaries of the latest pass.
func (c *Controller) Summaries() []model.GroupSummary {
	return c.summaries
}

// Summary returns the latest summary for key.
func (c *Controller) Summary(key string) (model.GroupSummary, bool) {
	s, ok := c.byKey[key]
	return s, ok
}

// Scales exposes the scale manager for renderers.
func (c *Controller) Scales() *scale.Manager {
	return c.scales
}

// Color returns the fixed colour of a condition.
func (c *Controller) Color(cond string) string {
	return scale.Hex(c.colors.Color(cond))
}

// SetTask selects a task (AllTasks for every task) and runs a pass.
func (c *Controller) SetTask(now time.Time, task string) Pass {
	c.sel = c.sel.WithTask(task)
	return c.Render(now)
}

// ToggleCondition flips one checkbox and runs a pass.
func (c *Controller) ToggleCondition(now time.Time, cond string) Pass {
	c.sel = c.sel.Toggle(cond)
	return c.Render(now)
}

// SetConditions checks exactly conds and runs a pass. An empty list applies
// no condition filter.
func (c *Controller) SetConditions(now time.Time, conds []string) Pass {
	next := filter.NewSelection(c.conditions).WithTask(c.sel.Task)
	if len(conds) > 0 {
		want := make(map[string]bool, len(conds))
		for _, cond := range conds {
			want[cond] = true
		}
		for _, cond := range c.conditions {
			if !want[cond] {
				next = next.Toggle(cond)
			}
		}
	}
	c.sel = next
	return c.Render(now)
}

// CheckAll checks every condition and runs a pass.
func (c *Controller) CheckAll(now time.Time) Pass {
	c.sel = c.sel.CheckAll(c.conditions)
	return c.Render(now)
}

// Render runs filter, aggregate, scale update and reconciliation for the
// current selection.
func (c *Controller) Render(now time.Time) Pass {
	defer metrics.TimerWithCallback(metrics.UIRender, func(d time.Duration) {
		debug.LogTiming("render pass", d)
	})()

	pred := c.sel.Predicate()
	stop := metrics.Timer(metrics.Filter)
	records := c.store.Filter(pred)
	stop()

	summaries := aggregate.Aggregate(records)
	keys := model.Keys(summaries)
	c.scales.Update(keys, aggregate.MaxMean(summaries))

	base := c.scales.Baseline()
	c.rec.SetBaseline(base)
	width := c.scales.X.Bandwidth()
	targets := make([]reconcile.Target, 0, len(summaries))
	for _, s := range summaries {
		x, _ := c.scales.X.Position(s.Condition)
		y := c.scales.Y.Map(s.MeanSeverity)
		targets = append(targets, reconcile.Target{
			Key: s.Condition,
			Attrs: reconcile.Attrs{
				X:      x,
				Y:      y,
				Width:  width,
				Height: base - y,
				Fill:   c.colors.Color(s.Condition),
			},
		})
	}

	diff := c.rec.Apply(now, targets)
	if c.tip.Key != "" && c.rec.Hovered() == "" {
		c.tip.Hide(now)
	}

	c.summaries = summaries
	c.byKey = make(map[string]model.GroupSummary, len(summaries))
	for _, s := range summaries {
		c.byKey[s.Condition] = s
	}

	debug.Log("pass task=%s checked=%v: %d records, %d bars (+%d ~%d -%d)",
		c.sel.Task, c.sel.Checked(), len(records), len(summaries),
		len(diff.Entered), len(diff.Updated), len(diff.Exited))

	return Pass{
		Task:       c.sel.Task,
		Conditions: c.sel.Checked(),
		Summaries:  summaries,
		Diff:       diff,
	}
}

// Tick finishes completed transitions.
func (c *Controller) Tick(now time.Time) {
	c.rec.Tick(now)
}

// Animating reports whether bars or the tooltip are still moving.
func (c *Controller) Animating(now time.Time) bool {
	return c.rec.Animating(now) || c.tip.Animating(now)
}

// Keys returns the live bar keys in display order.
func (c *Controller) Keys() []string {
	return c.rec.Keys()
}

// Hover highlights a bar and shows its tooltip.
func (c *Controller) Hover(now time.Time, key string) bool {
	if !c.rec.Hover(now, key) {
		return false
	}
	c.tip.Show(now, key)
	return true
}

// Leave clears the highlight and fades the tooltip out.
func (c *Controller) Leave(now time.Time) {
	c.rec.Leave(now)
	c.tip.Hide(now)
}

// Hovered returns the highlighted key, or "".
func (c *Controller) Hovered() string {
	return c.rec.Hovered()
}

// HoverStep moves the highlight delta bars along the live keys, wrapping at
// either end, and returns the new key. With nothing hovered a positive step
// starts at the first bar and a negative one at the last.
func (c *Controller) HoverStep(now time.Time, delta int) string {
	keys := c.rec.Keys()
	if len(keys) == 0 {
		return ""
	}
	idx := -1
	for i, k := range keys {
		if k == c.rec.Hovered() {
			idx = i
			break
		}
	}
	var next int
	switch {
	case idx < 0 && delta < 0:
		next = len(keys) - 1
	case idx < 0:
		next = 0
	default:
		next = ((idx+delta)%len(keys) + len(keys)) % len(keys)
	}
	c.Hover(now, keys[next])
	return keys[next]
}

// TaskDescription describes the selected task.
func (c *Controller) TaskDescription() string {
	return model.DescribeTask(c.sel.Task)
}
