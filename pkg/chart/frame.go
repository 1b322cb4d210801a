package chart

import (
	"image/color"
	"time"

	"github.com/vanderheijden86/tremorview/pkg/reconcile"
)

// Axis titles.
const (
	XAxisTitle = "Condition"
	YAxisTitle = "Average Tremor Severity (g)"
)

// Bar is one drawable bar in plot-area coordinates (origin at the top-left
// corner inside the margins).
type Bar struct {
	Key     string
	X, Y    float64
	Width   float64
	Height  float64
	Fill    color.RGBA
	Opacity float64
	State   reconcile.State
	Hovered bool
}

// Tick is one labelled axis position in plot-area pixels.
type Tick struct {
	Pos   float64
	Label string
}

// TooltipFrame is the tooltip to draw, if any.
type TooltipFrame struct {
	Key     string
	Lines   []TooltipLine
	Opacity float64
	// AnchorX and AnchorY place the tooltip next to the top of its bar.
	AnchorX, AnchorY float64
}

// Frame is everything a renderer needs for one instant.
type Frame struct {
	Layout          Layout
	Bars            []Bar
	XTicks          []Tick
	YTicks          []Tick
	Gridlines       []float64
	XTitle          string
	YTitle          string
	Task            string
	TaskDescription string
	Tooltip         *TooltipFrame
}

// Frame samples the chart at now.
func (c *Controller) Frame(now time.Time) Frame {
	f := Frame{
		Layout:          c.opts.Layout,
		Gridlines:       append([]float64(nil), c.gridlines...),
		XTitle:          XAxisTitle,
		YTitle:          YAxisTitle,
		Task:            c.sel.Task,
		TaskDescription: c.TaskDescription(),
	}

	for _, el := range c.rec.Frame(now) {
		f.Bars = append(f.Bars, Bar{
			Key:     el.Key,
			X:       el.Attrs.X,
			Y:       el.Attrs.Y,
			Width:   el.Attrs.Width,
			Height:  el.Attrs.Height,
			Fill:    el.Attrs.Fill,
			Opacity: el.Opacity,
			State:   el.State,
			Hovered: el.Hovered,
		})
	}

	for _, key := range c.scales.X.Domain() {
		if x, ok := c.scales.X.Center(key); ok {
			f.XTicks = append(f.XTicks, Tick{Pos: x, Label: key})
		}
	}

	format := c.scales.Y.TickFormat(c.opts.TickCount)
	for _, v := range c.scales.Y.Ticks(c.opts.TickCount) {
		f.YTicks = append(f.YTicks, Tick{Pos: c.scales.Y.Map(v), Label: format(v)})
	}

	if c.tip.Visible(now) {
		tf := &TooltipFrame{
			Key:     c.tip.Key,
			Lines:   c.Tooltip(c.tip.Key),
			Opacity: c.tip.Opacity(now),
		}
		for _, b := range f.Bars {
			if b.Key == c.tip.Key {
				tf.AnchorX = b.X + b.Width + 5
				tf.AnchorY = b.Y - 28
				break
			}
		}
		if len(tf.Lines) > 0 {
			f.Tooltip = tf
		}
	}
	return f
}
