// Package export writes chart frames and summaries to files: SVG and PNG
// snapshots of the bar chart, a SQLite database of the aggregate and a JSON
// summary for scripts.
package export

import (
	"bytes"
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strings"

	"git.sr.ht/~sbinet/gg"
	"github.com/ajstarks/svgo"
	"github.com/mattn/go-runewidth"
	"golang.org/x/image/font/basicfont"

	"github.com/vanderheijden86/tremorview/pkg/chart"
	"github.com/vanderheijden86/tremorview/pkg/metrics"
)

// Snapshot formats.
const (
	FormatSVG = "svg"
	FormatPNG = "png"
)

// SnapshotOptions controls snapshot export.
type SnapshotOptions struct {
	Path   string // Output path; format inferred from extension when Format empty
	Format string // "svg" or "png" (case-insensitive)
	Title  string // Optional heading drawn in the top margin
}

// ResolveFormat returns the snapshot format and the (possibly extended) path.
// A path without extension defaults to SVG.
func ResolveFormat(path, format string) (string, string, error) {
	if path == "" {
		return "", "", fmt.Errorf("output path is required")
	}
	format = strings.ToLower(strings.TrimPrefix(format, "."))
	if format == "" {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".svg":
			format = FormatSVG
		case ".png":
			format = FormatPNG
		case "":
			format = FormatSVG
			path += ".svg"
		default:
			return "", "", fmt.Errorf("cannot infer snapshot format from %q (use .svg or .png)", path)
		}
	}
	if format != FormatSVG && format != FormatPNG {
		return "", "", fmt.Errorf("unsupported format %q (want svg or png)", format)
	}
	return format, path, nil
}

// SaveSnapshot renders f to opts.Path.
func SaveSnapshot(f chart.Frame, opts SnapshotOptions) error {
	format, path, err := ResolveFormat(opts.Path, opts.Format)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create parent dir: %w", err)
	}

	var buf bytes.Buffer
	switch format {
	case FormatSVG:
		err = RenderSVG(&buf, f, opts.Title)
	case FormatPNG:
		err = RenderPNG(&buf, f, opts.Title)
	}
	if err != nil {
		return fmt.Errorf("render %s: %w", format, err)
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

var (
	colorBackdrop = color.RGBA{0xff, 0xff, 0xff, 0xff}
	colorGrid     = color.RGBA{0xdd, 0xdd, 0xdd, 0xff}
	colorAxis     = color.RGBA{0x00, 0x00, 0x00, 0xff}
	colorText     = color.RGBA{0x11, 0x11, 0x11, 0xff}
	colorSubtle   = color.RGBA{0x66, 0x66, 0x66, 0xff}
	colorTipBG    = color.RGBA{0xff, 0xff, 0xff, 0xff}
	colorTipEdge  = color.RGBA{0x99, 0x99, 0x99, 0xff}
)

const (
	tickLen       = 6
	labelMaxWidth = 14
	tipLineHeight = 16
	tipPad        = 8
)

// RenderSVG writes f as an SVG document.
func RenderSVG(w io.Writer, f chart.Frame, title string) error {
	defer metrics.Timer(metrics.RenderSVG)()

	l := f.Layout
	width, height := int(l.Width), int(l.Height)
	plotW, plotH := l.PlotWidth(), l.PlotHeight()

	canvas := svg.New(w)
	canvas.Start(width, height)
	canvas.Rect(0, 0, width, height, fmt.Sprintf("fill:%s", css(colorBackdrop)))
	if title != "" {
		canvas.Text(int(l.MarginLeft), 20, title, fmt.Sprintf("fill:%s;font-size:14px;font-family:sans-serif;font-weight:bold", css(colorText)))
	}
	if f.TaskDescription != "" {
		canvas.Text(int(l.MarginLeft), 38, f.TaskDescription, fmt.Sprintf("fill:%s;font-size:12px;font-family:sans-serif", css(colorSubtle)))
	}

	canvas.Gtransform(fmt.Sprintf("translate(%d,%d)", int(l.MarginLeft), int(l.MarginTop)))

	canvas.Group(`class="gridlines"`)
	for _, y := range f.Gridlines {
		canvas.Line(0, px(y), px(plotW), px(y), `class="gridline"`, fmt.Sprintf("stroke:%s;stroke-width:1", css(colorGrid)))
	}
	canvas.Gend()

	for _, b := range f.Bars {
		canvas.Rect(px(b.X), px(b.Y), px(b.Width), px(b.Height),
			`class="bar"`,
			fmt.Sprintf(`data-key="%s"`, attr(b.Key)),
			fmt.Sprintf("fill:%s;fill-opacity:%.2f", css(b.Fill), b.Opacity))
	}

	// x axis
	canvas.Line(0, px(plotH), px(plotW), px(plotH), fmt.Sprintf("stroke:%s", css(colorAxis)))
	for _, tk := range f.XTicks {
		x := px(tk.Pos)
		canvas.Line(x, px(plotH), x, px(plotH)+tickLen, fmt.Sprintf("stroke:%s", css(colorAxis)))
		canvas.Text(x, px(plotH)+20, runewidth.Truncate(tk.Label, labelMaxWidth, "…"),
			`class="x-tick"`, fmt.Sprintf("fill:%s;font-size:10px;font-family:sans-serif;text-anchor:middle", css(colorText)))
	}

	// y axis
	canvas.Line(0, 0, 0, px(plotH), fmt.Sprintf("stroke:%s", css(colorAxis)))
	for _, tk := range f.YTicks {
		y := px(tk.Pos)
		canvas.Line(-tickLen, y, 0, y, fmt.Sprintf("stroke:%s", css(colorAxis)))
		canvas.Text(-tickLen-3, y+3, tk.Label,
			`class="y-tick"`, fmt.Sprintf("fill:%s;font-size:10px;font-family:sans-serif;text-anchor:end", css(colorText)))
	}

	canvas.Text(px(plotW/2), px(plotH+l.MarginBottom-10), f.XTitle,
		`class="axis-label"`, fmt.Sprintf("fill:%s;font-size:12px;font-family:sans-serif;text-anchor:middle", css(colorText)))
	canvas.TranslateRotate(px(-l.MarginLeft+20), px(plotH/2), -90)
	canvas.Text(0, 0, f.YTitle,
		`class="axis-label"`, fmt.Sprintf("fill:%s;font-size:12px;font-family:sans-serif;text-anchor:middle", css(colorText)))
	canvas.Gend()

	if tip := f.Tooltip; tip != nil {
		boxW, boxH := tooltipBox(tip)
		x, y := px(tip.AnchorX), px(tip.AnchorY)
		canvas.Group(`class="tooltip"`, fmt.Sprintf("opacity:%.2f", tip.Opacity))
		canvas.Rect(x, y, boxW, boxH, fmt.Sprintf("fill:%s;stroke:%s;stroke-width:1", css(colorTipBG), css(colorTipEdge)))
		for i, line := range tip.Lines {
			canvas.Text(x+tipPad, y+tipPad+12+i*tipLineHeight, line.String(),
				fmt.Sprintf("fill:%s;font-size:12px;font-family:sans-serif", css(colorText)))
		}
		canvas.Gend()
	}

	canvas.Gend()
	canvas.End()
	return nil
}

// RenderPNG rasterises f and writes it as PNG.
func RenderPNG(w io.Writer, f chart.Frame, title string) error {
	defer metrics.Timer(metrics.RenderPNG)()

	l := f.Layout
	plotW, plotH := l.PlotWidth(), l.PlotHeight()

	dc := gg.NewContext(int(l.Width), int(l.Height))
	dc.SetColor(colorBackdrop)
	dc.Clear()
	dc.SetFontFace(basicfont.Face7x13)

	if title != "" {
		dc.SetColor(colorText)
		dc.DrawStringAnchored(title, l.MarginLeft, 16, 0, 0.5)
	}
	if f.TaskDescription != "" {
		dc.SetColor(colorSubtle)
		dc.DrawStringAnchored(f.TaskDescription, l.MarginLeft, 34, 0, 0.5)
	}

	dc.Push()
	dc.Translate(l.MarginLeft, l.MarginTop)

	dc.SetColor(colorGrid)
	dc.SetLineWidth(1)
	for _, y := range f.Gridlines {
		dc.DrawLine(0, y, plotW, y)
		dc.Stroke()
	}

	for _, b := range f.Bars {
		dc.SetColor(withOpacity(b.Fill, b.Opacity))
		dc.DrawRectangle(b.X, b.Y, b.Width, b.Height)
		dc.Fill()
	}

	dc.SetColor(colorAxis)
	dc.DrawLine(0, plotH, plotW, plotH)
	dc.Stroke()
	dc.DrawLine(0, 0, 0, plotH)
	dc.Stroke()

	for _, tk := range f.XTicks {
		dc.DrawLine(tk.Pos, plotH, tk.Pos, plotH+tickLen)
		dc.Stroke()
		dc.DrawStringAnchored(runewidth.Truncate(tk.Label, labelMaxWidth, "..."), tk.Pos, plotH+18, 0.5, 0.5)
	}
	for _, tk := range f.YTicks {
		dc.DrawLine(-tickLen, tk.Pos, 0, tk.Pos)
		dc.Stroke()
		dc.DrawStringAnchored(tk.Label, -tickLen-3, tk.Pos, 1, 0.5)
	}

	dc.DrawStringAnchored(f.XTitle, plotW/2, plotH+l.MarginBottom-10, 0.5, 0.5)
	yx, yy := -l.MarginLeft+20, plotH/2
	dc.Push()
	dc.RotateAbout(gg.Radians(-90), yx, yy)
	dc.DrawStringAnchored(f.YTitle, yx, yy, 0.5, 0.5)
	dc.Pop()

	if tip := f.Tooltip; tip != nil {
		boxW, boxH := tooltipBox(tip)
		dc.SetColor(withOpacity(colorTipBG, tip.Opacity))
		dc.DrawRectangle(tip.AnchorX, tip.AnchorY, float64(boxW), float64(boxH))
		dc.Fill()
		dc.SetColor(withOpacity(colorTipEdge, tip.Opacity))
		dc.DrawRectangle(tip.AnchorX, tip.AnchorY, float64(boxW), float64(boxH))
		dc.Stroke()
		dc.SetColor(withOpacity(colorText, tip.Opacity))
		for i, line := range tip.Lines {
			dc.DrawStringAnchored(line.String(), tip.AnchorX+tipPad, tip.AnchorY+tipPad+8+float64(i*tipLineHeight), 0, 0.5)
		}
	}
	dc.Pop()

	return dc.EncodePNG(w)
}

func tooltipBox(tip *chart.TooltipFrame) (int, int) {
	widest := 0
	for _, line := range tip.Lines {
		widest = max(widest, runewidth.StringWidth(line.String()))
	}
	return widest*7 + 2*tipPad, len(tip.Lines)*tipLineHeight + 2*tipPad
}

func withOpacity(c color.RGBA, opacity float64) color.NRGBA {
	opacity = min(max(opacity, 0), 1)
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: uint8(float64(c.A) * opacity)}
}

func px(v float64) int {
	if v < 0 {
		return int(v - 0.5)
	}
	return int(v + 0.5)
}

func css(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func attr(s string) string {
	r := strings.NewReplacer(`&`, "&amp;", `"`, "&quot;", `<`, "&lt;", `>`, "&gt;")
	return r.Replace(s)
}
