package ui

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

const helpMarkdown = `# tv

Average tremor severity per condition for the selected task.

## Selection

| Key | Action |
|-----|--------|
| **tab** / **]** | Next task |
| **shift+tab** / **[** | Previous task |
| **1**-**9** | Toggle the numbered condition |
| **a** | Check every condition |

## Bars

| Key | Action |
|-----|--------|
| **←** / **→** | Move the highlight between bars |
| **esc** | Clear the highlight |
| **y** | Copy the tooltip to the clipboard |

## Other

| Key | Action |
|-----|--------|
| **r** | Reload the data file |
| **?** | Toggle this help |
| **q** | Quit |

Unchecking every condition shows all of them. The value axis stays fixed to
the largest severity in the file unless ` + "`--domain filtered`" + ` is set.
`

// renderHelp renders the help panel for the given width. Plain markdown is
// returned when glamour cannot build a renderer.
func renderHelp(width int) string {
	wrap := clamp(width-4, 20, 100)
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		return helpMarkdown
	}
	out, err := r.Render(helpMarkdown)
	if err != nil {
		return helpMarkdown
	}
	return strings.TrimRight(out, " \n\r\t")
}
