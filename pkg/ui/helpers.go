package ui

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// truncateRunesHelper truncates a string to max visual width (cells), adding suffix if needed.
// Uses go-runewidth to handle wide characters correctly.
func truncateRunesHelper(s string, maxWidth int, suffix string) string {
	if maxWidth <= 0 {
		return ""
	}

	width := runewidth.StringWidth(s)
	if width <= maxWidth {
		return s
	}

	suffixWidth := runewidth.StringWidth(suffix)
	if suffixWidth > maxWidth {
		return runewidth.Truncate(suffix, maxWidth, "")
	}

	targetWidth := maxWidth - suffixWidth
	return runewidth.Truncate(s, targetWidth, "") + suffix
}

// truncate shortens s to maxWidth display cells with an ellipsis.
func truncate(s string, maxWidth int) string {
	return truncateRunesHelper(s, maxWidth, "…")
}

// padLeft pads s with spaces on the left to width display cells.
func padLeft(s string, width int) string {
	w := runewidth.StringWidth(s)
	if w >= width {
		return s
	}
	return strings.Repeat(" ", width-w) + s
}

// centerIn returns the column at which s starts when centred on col.
func centerIn(s string, col int) int {
	start := col - runewidth.StringWidth(s)/2
	if start < 0 {
		return 0
	}
	return start
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
