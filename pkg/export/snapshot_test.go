package export

import (
	"bytes"
	"encoding/xml"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

type svgNode struct {
	XMLName xml.Name
	Attrs   []xml.Attr `xml:",any,attr"`
	Text    string     `xml:",chardata"`
	Nodes   []svgNode  `xml:",any"`
}

func (n svgNode) attr(name string) string {
	for _, a := range n.Attrs {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

func (n svgNode) walk(fn func(svgNode)) {
	fn(n)
	for _, c := range n.Nodes {
		c.walk(fn)
	}
}

func parseSVG(t *testing.T, data []byte) svgNode {
	t.Helper()
	var root svgNode
	if err := xml.Unmarshal(data, &root); err != nil {
		t.Fatalf("SVG is not valid XML: %v\n%s", err, data)
	}
	if root.XMLName.Local != "svg" {
		t.Fatalf("root element = %q", root.XMLName.Local)
	}
	return root
}

func TestResolveFormat(t *testing.T) {
	tests := []struct {
		path, format string
		wantFmt      string
		wantPath     string
		wantErr      bool
	}{
		{path: "out.svg", wantFmt: "svg", wantPath: "out.svg"},
		{path: "out.PNG", wantFmt: "png", wantPath: "out.PNG"},
		{path: "out", wantFmt: "svg", wantPath: "out.svg"},
		{path: "out.dat", format: ".png", wantFmt: "png", wantPath: "out.dat"},
		{path: "out.gif", wantErr: true},
		{path: "out.svg", format: "pdf", wantErr: true},
		{path: "", wantErr: true},
	}
	for _, tt := range tests {
		gotFmt, gotPath, err := ResolveFormat(tt.path, tt.format)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ResolveFormat(%q, %q) expected error", tt.path, tt.format)
			}
			continue
		}
		if err != nil || gotFmt != tt.wantFmt || gotPath != tt.wantPath {
			t.Errorf("ResolveFormat(%q, %q) = %q, %q, %v", tt.path, tt.format, gotFmt, gotPath, err)
		}
	}
}

func TestRenderSVG_Structure(t *testing.T) {
	c := testController(t)
	var buf bytes.Buffer
	if err := RenderSVG(&buf, settled(c), "Tremor <severity>"); err != nil {
		t.Fatalf("RenderSVG: %v", err)
	}
	root := parseSVG(t, buf.Bytes())

	if root.attr("width") != "1000" || root.attr("height") != "500" {
		t.Fatalf("svg size = %sx%s", root.attr("width"), root.attr("height"))
	}

	var bars, gridlines int
	var texts []string
	keys := map[string]bool{}
	root.walk(func(n svgNode) {
		switch n.XMLName.Local {
		case "rect":
			if n.attr("class") == "bar" {
				bars++
				keys[n.attr("data-key")] = true
				if !strings.Contains(n.attr("style"), "fill:#") {
					t.Errorf("bar without fill: %q", n.attr("style"))
				}
			}
		case "line":
			if n.attr("class") == "gridline" {
				gridlines++
			}
		case "text":
			texts = append(texts, n.Text)
		}
	})

	if bars != 3 {
		t.Fatalf("bars = %d, want 3", bars)
	}
	if !keys["HC & <ctl>"] {
		t.Fatalf("escaped key not round-tripped: %v", keys)
	}
	if gridlines == 0 {
		t.Fatal("expected gridlines")
	}
	joined := strings.Join(texts, "|")
	for _, want := range []string{"Condition", "Average Tremor Severity (g)", "Tremor <severity>", "Average of all tasks."} {
		if !strings.Contains(joined, want) {
			t.Errorf("missing text %q in %q", want, joined)
		}
	}
}

func TestRenderSVG_TooltipAndDimming(t *testing.T) {
	c := testController(t)
	later := t0.Add(time.Second)
	c.Tick(later)
	c.Hover(later, "PD")

	var buf bytes.Buffer
	if err := RenderSVG(&buf, c.Frame(later.Add(time.Second)), ""); err != nil {
		t.Fatalf("RenderSVG: %v", err)
	}
	root := parseSVG(t, buf.Bytes())

	var tooltip bool
	root.walk(func(n svgNode) {
		if n.XMLName.Local == "g" && n.attr("class") == "tooltip" {
			tooltip = true
		}
		if n.XMLName.Local == "rect" && n.attr("class") == "bar" {
			dimmed := strings.Contains(n.attr("style"), "fill-opacity:0.30")
			if (n.attr("data-key") == "PD") == dimmed {
				t.Errorf("bar %s style %q", n.attr("data-key"), n.attr("style"))
			}
		}
	})
	if !tooltip {
		t.Fatal("expected tooltip group")
	}
	if !strings.Contains(buf.String(), "Max Severity: 1.2000") {
		t.Fatal("tooltip text missing")
	}
}

func TestRenderSVG_EmptyChartStillHasAxes(t *testing.T) {
	c := testController(t)
	c.SetTask(t0, "NoSuchTask")
	var buf bytes.Buffer
	if err := RenderSVG(&buf, settled(c), ""); err != nil {
		t.Fatalf("RenderSVG: %v", err)
	}
	root := parseSVG(t, buf.Bytes())
	var bars, yTicks int
	root.walk(func(n svgNode) {
		if n.attr("class") == "bar" {
			bars++
		}
		if n.attr("class") == "y-tick" {
			yTicks++
		}
	})
	if bars != 0 || yTicks == 0 {
		t.Fatalf("bars=%d yTicks=%d", bars, yTicks)
	}
}

func TestSaveSnapshot_PNG(t *testing.T) {
	c := testController(t)
	out := filepath.Join(t.TempDir(), "nested", "chart.png")
	if err := SaveSnapshot(settled(c), SnapshotOptions{Path: out, Title: "tremor"}); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}
	f, err := os.Open(out)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 1000 || b.Dy() != 500 {
		t.Fatalf("png size = %v", b)
	}
}

func TestSaveSnapshot_SVGFile(t *testing.T) {
	c := testController(t)
	out := filepath.Join(t.TempDir(), "chart")
	if err := SaveSnapshot(settled(c), SnapshotOptions{Path: out}); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}
	data, err := os.ReadFile(out + ".svg")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	parseSVG(t, data)
}
