package ui

import (
	"os"

	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/lipgloss"
)

// TermProfile holds the detected terminal color profile. Computed once at
// package init so every style helper can branch without re-detecting.
var TermProfile colorprofile.Profile

func init() {
	TermProfile = colorprofile.Detect(os.Stdout, os.Environ())
}

// ThemeFg returns the given hex color for ANSI256+ terminals and a safe
// ANSI white (color 7) for 16-color or lower terminals.
func ThemeFg(hex string) lipgloss.TerminalColor {
	if TermProfile < colorprofile.ANSI256 {
		return lipgloss.ANSIColor(7)
	}
	return lipgloss.Color(hex)
}

// Theme carries the renderer and precomputed styles for one program.
type Theme struct {
	Renderer *lipgloss.Renderer

	Primary   lipgloss.AdaptiveColor
	Secondary lipgloss.AdaptiveColor
	Subtext   lipgloss.AdaptiveColor
	Border    lipgloss.AdaptiveColor
	Highlight lipgloss.AdaptiveColor
	Muted     lipgloss.AdaptiveColor
	Danger    lipgloss.AdaptiveColor

	Title       lipgloss.Style
	Header      lipgloss.Style
	Selected    lipgloss.Style
	MutedText   lipgloss.Style
	Axis        lipgloss.Style
	Gridline    lipgloss.Style
	Error       lipgloss.Style
	Status      lipgloss.Style
	TooltipBox  lipgloss.Style
	TooltipKey  lipgloss.Style
	HoveredText lipgloss.Style
}

// DefaultTheme returns the Dracula-inspired adaptive theme.
func DefaultTheme(r *lipgloss.Renderer) Theme {
	t := Theme{
		Renderer: r,

		Primary:   ColorPrimary,
		Secondary: ColorSecondary,
		Subtext:   ColorSubtext,
		Border:    lipgloss.AdaptiveColor{Light: "#AAAAAA", Dark: "#44475A"},
		Highlight: ColorBgHighlight,
		Muted:     ColorMuted,
		Danger:    ColorDanger,
	}

	t.Title = r.NewStyle().Foreground(t.Primary).Bold(true)

	t.Header = r.NewStyle().
		Background(t.Primary).
		Foreground(lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#282A36"}).
		Bold(true).
		Padding(0, 1)

	t.Selected = r.NewStyle().
		Background(t.Highlight).
		Foreground(t.Primary).
		Bold(true).
		Padding(0, 1)

	t.MutedText = r.NewStyle().Foreground(t.Muted)
	t.Axis = r.NewStyle().Foreground(t.Subtext)
	t.Gridline = r.NewStyle().Foreground(ColorBgSubtle)
	t.Error = r.NewStyle().Foreground(t.Danger).Bold(true)
	t.Status = r.NewStyle().Foreground(ColorInfo)

	t.TooltipBox = r.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Border).
		Padding(0, 1)
	t.TooltipKey = r.NewStyle().Foreground(t.Subtext)
	t.HoveredText = r.NewStyle().Foreground(t.Primary).Bold(true).Underline(true)

	return t
}

// BarStyle returns the style for a bar cell. Bars faded by hover dimming or
// exit transitions render faint.
func (t Theme) BarStyle(hex string, opacity float64) lipgloss.Style {
	s := t.Renderer.NewStyle().Foreground(ThemeFg(hex))
	if opacity < dimThreshold {
		s = s.Faint(true)
	}
	return s
}

// TestTheme returns a theme suitable for use in tests.
func TestTheme() Theme {
	return DefaultTheme(lipgloss.NewRenderer(os.Stdout))
}
