package chart

import (
	"fmt"
	"image/color"
	"strings"
	"time"

	"github.com/vanderheijden86/tremorview/pkg/reconcile"
	"github.com/vanderheijden86/tremorview/pkg/scale"
)

// Layout is the outer chart size and the margins around the plot area.
type Layout struct {
	Width        float64 `yaml:"width" json:"width"`
	Height       float64 `yaml:"height" json:"height"`
	MarginTop    float64 `yaml:"margin_top" json:"margin_top"`
	MarginRight  float64 `yaml:"margin_right" json:"margin_right"`
	MarginBottom float64 `yaml:"margin_bottom" json:"margin_bottom"`
	MarginLeft   float64 `yaml:"margin_left" json:"margin_left"`
}

// DefaultLayout is a 1000x500 canvas with room for both axis titles.
func DefaultLayout() Layout {
	return Layout{Width: 1000, Height: 500, MarginTop: 50, MarginRight: 30, MarginBottom: 60, MarginLeft: 60}
}

// PlotWidth is the width inside the margins.
func (l Layout) PlotWidth() float64 {
	return max(0, l.Width-l.MarginLeft-l.MarginRight)
}

// PlotHeight is the height inside the margins.
func (l Layout) PlotHeight() float64 {
	return max(0, l.Height-l.MarginTop-l.MarginBottom)
}

// TooltipMode selects which summary fields the hover tooltip lists.
type TooltipMode int

const (
	// TooltipDemographics lists max severity and the demographic means.
	TooltipDemographics TooltipMode = iota
	// TooltipSeverity lists max severity only.
	TooltipSeverity
	// TooltipTask lists the representative task, its description and max severity.
	TooltipTask
)

func (m TooltipMode) String() string {
	switch m {
	case TooltipSeverity:
		return "severity"
	case TooltipTask:
		return "task"
	default:
		return "demographics"
	}
}

// ParseTooltipMode parses "severity", "demographics" or "task".
func ParseTooltipMode(s string) (TooltipMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "demographics":
		return TooltipDemographics, nil
	case "severity":
		return TooltipSeverity, nil
	case "task":
		return TooltipTask, nil
	default:
		return TooltipDemographics, fmt.Errorf("unknown tooltip mode %q (want severity, demographics or task)", s)
	}
}

// NoPadding turns off band padding; a zero Options.Padding means the default.
const NoPadding = -1.0

// Options configures a Controller. Zero values fall back to defaults.
type Options struct {
	Layout  Layout
	Padding float64 // NoPadding (or any negative value) for touching bars
	Policy  scale.DomainPolicy
	Tooltip TooltipMode

	Duration       time.Duration
	HoverDuration  time.Duration
	TooltipFadeIn  time.Duration
	TooltipFadeOut time.Duration
	Ease           reconcile.Ease

	Palette []color.RGBA
	// TickCount is the approximate number of value axis ticks.
	TickCount int
}

func (o Options) withDefaults() Options {
	if o.Layout == (Layout{}) {
		o.Layout = DefaultLayout()
	}
	if o.Padding == 0 {
		o.Padding = scale.DefaultPadding
	}
	if len(o.Palette) == 0 {
		o.Palette = scale.Category10
	}
	if o.TickCount <= 0 {
		o.TickCount = 10
	}
	return o
}
