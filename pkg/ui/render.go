package ui

import (
	"math"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/vanderheijden86/tremorview/pkg/chart"
	"github.com/vanderheijden86/tremorview/pkg/scale"
)

const (
	minPlotCols  = 10
	minPlotRows  = 4
	tooltipWidth = 34
)

// cellKind distinguishes what occupies a plot cell, for grouping runs of
// identically styled cells into one Render call.
type cellKind int

const (
	cellBlank cellKind = iota
	cellGrid
	cellBar
)

type cell struct {
	kind cellKind
	text string
	bar  int // index into the frame's bars when kind == cellBar
}

// chartGrid maps plot-area pixels onto terminal cells.
type chartGrid struct {
	cols, rows int
	pw, ph     float64 // pixels per column and per row
}

func newChartGrid(f chart.Frame, cols, rows int) chartGrid {
	cols = max(cols, minPlotCols)
	rows = max(rows, minPlotRows)
	return chartGrid{
		cols: cols,
		rows: rows,
		pw:   f.Layout.PlotWidth() / float64(cols),
		ph:   f.Layout.PlotHeight() / float64(rows),
	}
}

func (g chartGrid) row(y float64) int {
	return int(math.Round(y / g.ph))
}

// span returns the half-open column range a bar covers. Every bar with a
// positive width gets at least one column.
func (g chartGrid) span(b chart.Bar) (int, int) {
	start := int(math.Floor(b.X/g.pw + 1e-9))
	end := int(math.Floor((b.X+b.Width)/g.pw + 1e-9))
	if end <= start && b.Width > 0 {
		end = start + 1
	}
	return clamp(start, 0, g.cols), clamp(end, 0, g.cols)
}

// fill returns the eighth-block glyph for bar b in row r, or "" when the
// bar does not reach the row.
func (g chartGrid) fill(b chart.Bar, r int) string {
	top := float64(r) * g.ph
	bottom := top + g.ph
	overlap := math.Min(bottom, b.Y+b.Height) - math.Max(top, b.Y)
	if overlap <= 0 {
		return ""
	}
	n := int(math.Round(overlap / g.ph * 8))
	if n <= 0 {
		return ""
	}
	return eighths[min(n, 8)]
}

// renderChart draws a frame as a vertical bar chart in a cols x rows cell
// area (plus gutter, axis and label rows).
func renderChart(t Theme, f chart.Frame, cols, rows int, hovered string) string {
	gutter := 0
	tickAt := make(map[int]string)
	for _, tk := range f.YTicks {
		gutter = max(gutter, runewidth.StringWidth(tk.Label))
	}
	g := newChartGrid(f, cols-gutter-1, rows)
	for _, tk := range f.YTicks {
		tickAt[clamp(g.row(tk.Pos), 0, g.rows)] = tk.Label
	}
	gridAt := make(map[int]bool)
	for _, y := range f.Gridlines {
		if r := g.row(y); r >= 0 && r < g.rows {
			gridAt[r] = true
		}
	}

	owner := make([]int, g.cols)
	for c := range owner {
		owner[c] = -1
	}
	// Live bars come first in the frame and win shared columns.
	for i := len(f.Bars) - 1; i >= 0; i-- {
		start, end := g.span(f.Bars[i])
		for c := start; c < end; c++ {
			owner[c] = i
		}
	}

	var sb strings.Builder
	sb.WriteString(t.MutedText.Render(truncate(f.YTitle, gutter+1+g.cols)))
	sb.WriteByte('\n')

	row := make([]cell, g.cols)
	for r := 0; r < g.rows; r++ {
		for c := range row {
			row[c] = cell{kind: cellBlank, text: " "}
			if gridAt[r] {
				row[c] = cell{kind: cellGrid, text: "┈"}
			}
			if i := owner[c]; i >= 0 {
				if glyph := g.fill(f.Bars[i], r); glyph != "" {
					row[c] = cell{kind: cellBar, text: glyph, bar: i}
				}
			}
		}

		axis := "│"
		label, isTick := tickAt[r]
		if isTick {
			axis = "┤"
		}
		sb.WriteString(t.Axis.Render(padLeft(label, gutter) + axis))
		writeCells(&sb, t, f.Bars, row)
		sb.WriteByte('\n')
	}

	sb.WriteString(t.Axis.Render(padLeft(tickAt[g.rows], gutter) + "└" + strings.Repeat("─", g.cols)))
	sb.WriteByte('\n')
	sb.WriteString(strings.Repeat(" ", gutter+1))
	sb.WriteString(renderXLabels(t, f, g, hovered))
	sb.WriteByte('\n')
	title := strings.Repeat(" ", gutter+1+max(0, (g.cols-runewidth.StringWidth(f.XTitle))/2))
	sb.WriteString(title + t.MutedText.Render(f.XTitle))
	return sb.String()
}

func writeCells(sb *strings.Builder, t Theme, bars []chart.Bar, row []cell) {
	for i := 0; i < len(row); {
		j := i
		var run strings.Builder
		for j < len(row) && sameStyle(row[i], row[j], bars) {
			run.WriteString(row[j].text)
			j++
		}
		switch c := row[i]; c.kind {
		case cellBar:
			b := bars[c.bar]
			sb.WriteString(t.BarStyle(scale.Hex(b.Fill), b.Opacity).Render(run.String()))
		case cellGrid:
			sb.WriteString(t.Gridline.Render(run.String()))
		default:
			sb.WriteString(run.String())
		}
		i = j
	}
}

func sameStyle(a, b cell, bars []chart.Bar) bool {
	if a.kind != b.kind {
		return false
	}
	if a.kind != cellBar {
		return true
	}
	return a.bar == b.bar
}

// renderXLabels centres each condition label under its band, truncated to
// the band's share of the axis.
func renderXLabels(t Theme, f chart.Frame, g chartGrid, hovered string) string {
	if len(f.XTicks) == 0 {
		return ""
	}
	avail := max(1, g.cols/len(f.XTicks)-1)
	var sb strings.Builder
	cursor := 0
	for _, tk := range f.XTicks {
		label := truncate(tk.Label, avail)
		start := max(cursor, centerIn(label, int(tk.Pos/g.pw)))
		w := runewidth.StringWidth(label)
		if start+w > g.cols {
			break
		}
		sb.WriteString(strings.Repeat(" ", start-cursor))
		if tk.Label == hovered {
			sb.WriteString(t.HoveredText.Render(label))
		} else {
			sb.WriteString(t.Axis.Render(label))
		}
		cursor = start + w
	}
	return sb.String()
}

// renderTooltip draws the tooltip box, faint while it is mostly faded.
func renderTooltip(t Theme, tip *chart.TooltipFrame) string {
	if tip == nil {
		return ""
	}
	inner := tooltipWidth - 4
	lines := make([]string, 0, len(tip.Lines)+1)
	lines = append(lines, t.Title.Render(truncate(tip.Key, inner)))
	for _, l := range tip.Lines {
		label := l.Label + ": "
		value := truncate(l.Value, max(1, inner-runewidth.StringWidth(label)))
		lines = append(lines, t.TooltipKey.Render(label)+value)
	}
	box := t.TooltipBox.Width(tooltipWidth - 2)
	if tip.Opacity < 0.5 {
		box = box.Faint(true)
	}
	return box.Render(strings.Join(lines, "\n"))
}
