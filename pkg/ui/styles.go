package ui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// SpaceSM is the gap between side-by-side panels, in cells.
const SpaceSM = 2

// Opacity below which a bar cell is drawn faint. Hover dimming lands at 0.3.
const dimThreshold = 0.6

// Adaptive colors for light and dark terminals. Light mode colors are tuned
// for WCAG AA contrast on white backgrounds.
var (
	ColorBgSubtle    = lipgloss.AdaptiveColor{Light: "#E8E8E8", Dark: "#363949"}
	ColorBgHighlight = lipgloss.AdaptiveColor{Light: "#D0D0D0", Dark: "#44475A"}
	ColorText        = lipgloss.AdaptiveColor{Light: "#1A1A1A", Dark: "#F8F8F2"}
	ColorSubtext     = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#BFBFBF"}
	ColorMuted       = lipgloss.AdaptiveColor{Light: "#666666", Dark: "#6272A4"}

	ColorPrimary   = lipgloss.AdaptiveColor{Light: "#6B47D9", Dark: "#BD93F9"}
	ColorSecondary = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#6272A4"}
	ColorInfo      = lipgloss.AdaptiveColor{Light: "#006080", Dark: "#8BE9FD"}
	ColorDanger    = lipgloss.AdaptiveColor{Light: "#CC0000", Dark: "#FF5555"}
)

// Lower eighth blocks, index n draws n/8 of a cell from the bottom.
var eighths = []string{" ", "▁", "▂", "▃", "▄", "▅", "▆", "▇", "█"}

// RenderCheckbox renders a legend entry for a condition. n is the toggle
// key, or 0 when the condition has none.
func RenderCheckbox(t Theme, n int, label, hex string, checked bool) string {
	box := "[ ]"
	if checked {
		box = "[x]"
	}
	swatch := t.Renderer.NewStyle().Foreground(ThemeFg(hex)).Render("■")
	text := t.Renderer.NewStyle().Foreground(ColorText).Render(label)
	if !checked {
		swatch = t.MutedText.Render("□")
		text = t.MutedText.Render(label)
	}
	num := " "
	if n > 0 {
		num = strconv.Itoa(n)
	}
	return t.MutedText.Render(num) + " " + box + " " + swatch + " " + text
}

// RenderDivider renders a horizontal divider line
func RenderDivider(width int) string {
	if width <= 0 {
		return ""
	}
	return lipgloss.NewStyle().
		Foreground(ColorBgHighlight).
		Render(strings.Repeat("─", width))
}
