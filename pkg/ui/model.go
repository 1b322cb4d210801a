// Package ui is the interactive terminal frontend: a bubbletea model that
// loads the dataset, owns a chart.Controller and animates its frames.
package ui

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/tremorview/pkg/chart"
	"github.com/vanderheijden86/tremorview/pkg/config"
	"github.com/vanderheijden86/tremorview/pkg/debug"
	"github.com/vanderheijden86/tremorview/pkg/watcher"
)

// Layout fallbacks used before the first WindowSizeMsg.
const (
	defaultWidth         = 100
	defaultFrameInterval = 60 * time.Millisecond
	chromeRows           = 12 // header, legend, axis, labels, status and help lines
	maxNumberedConds     = 9
)

// Model is the bubbletea model for tv.
type Model struct {
	cfg   config.Config
	opts  chart.Options
	keys  keyMap
	help  help.Model
	spin  spinner.Model
	theme Theme
	watch *watcher.Watcher

	chart   *chart.Controller
	loading bool
	loadErr error

	width, height int
	showHelp      bool
	helpView      string

	status    string
	statusErr bool
	statusSeq int

	animating bool

	clock     func() time.Time
	clipboard func(string) error
}

// NewModel creates a model that loads cfg.DataPath on Init.
func NewModel(cfg config.Config, opts chart.Options) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(ColorInfo).Bold(true)

	return Model{
		cfg:       cfg,
		opts:      opts,
		keys:      defaultKeyMap(),
		help:      help.New(),
		spin:      s,
		theme:     DefaultTheme(lipgloss.DefaultRenderer()),
		loading:   true,
		clock:     time.Now,
		clipboard: clipboard.WriteAll,
	}
}

// WithWatcher attaches a started file watcher; changes trigger a reload.
func (m Model) WithWatcher(w *watcher.Watcher) Model {
	m.watch = w
	return m
}

// Chart returns the controller, or nil before the data has loaded.
func (m Model) Chart() *chart.Controller {
	return m.chart
}

// Err returns the initial load error, if any.
func (m Model) Err() error {
	return m.loadErr
}

// Init starts the load and, when present, the file watch.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spin.Tick, LoadDataCmd(m.cfg.DataPath, false)}
	if m.watch != nil {
		cmds = append(cmds, WatchFileCmd(m.watch))
	}
	return tea.Batch(cmds...)
}

// Update handles one message.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		if m.showHelp {
			m.helpView = renderHelp(m.width)
		}
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case DataLoadedMsg:
		return m.handleLoaded(msg)

	case DataLoadErrorMsg:
		debug.Failure("load "+m.cfg.DataPath, msg.Err)
		if msg.Reload && m.chart != nil {
			return m, m.setStatus("Reload failed: "+msg.Err.Error(), true)
		}
		m.loading = false
		m.loadErr = msg.Err
		m.chart = nil
		return m, nil

	case FileChangedMsg:
		cmds := []tea.Cmd{LoadDataCmd(m.cfg.DataPath, true)}
		if m.watch != nil {
			cmds = append(cmds, WatchFileCmd(m.watch))
		}
		cmds = append(cmds, m.setStatus("Data file changed, reloading…", false))
		return m, tea.Batch(cmds...)

	case frameMsg:
		m.animating = false
		if m.chart == nil {
			return m, nil
		}
		now := m.clock()
		m.chart.Tick(now)
		if m.chart.Animating(now) {
			return m, m.animate()
		}
		return m, nil

	case statusClearMsg:
		if msg.seq == m.statusSeq {
			m.status = ""
			m.statusErr = false
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleLoaded(msg DataLoadedMsg) (tea.Model, tea.Cmd) {
	m.loading = false
	m.loadErr = nil

	now := m.clock()
	if msg.Reload && m.chart != nil {
		m.chart.Replace(now, msg.Store)
	} else {
		m.chart = chart.New(msg.Store, m.opts)
		task := m.cfg.Task
		if !contains(m.chart.Tasks(), task) {
			task = ""
		}
		m.chart.SetTask(now, task)
		if len(m.cfg.Conditions) > 0 {
			m.chart.SetConditions(now, m.cfg.Conditions)
		}
	}

	cmds := []tea.Cmd{m.animate()}
	if msg.Reload {
		cmds = append(cmds, m.setStatus("Reloaded "+filepath.Base(m.cfg.DataPath), false))
	}
	return m, tea.Batch(cmds...)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}
	if m.showHelp {
		if key.Matches(msg, m.keys.Help, m.keys.Clear) {
			m.showHelp = false
		}
		return m, nil
	}
	if key.Matches(msg, m.keys.Help) {
		m.showHelp = true
		m.helpView = renderHelp(m.width)
		return m, nil
	}
	if key.Matches(msg, m.keys.Reload) {
		return m, tea.Batch(
			LoadDataCmd(m.cfg.DataPath, m.chart != nil),
			m.setStatus("Reloading…", false),
		)
	}
	if m.chart == nil {
		return m, nil
	}

	now := m.clock()
	switch {
	case key.Matches(msg, m.keys.NextTask):
		m.cycleTask(now, 1)
	case key.Matches(msg, m.keys.PrevTask):
		m.cycleTask(now, -1)
	case key.Matches(msg, m.keys.Toggle):
		idx := int(msg.String()[0] - '1')
		conds := m.chart.Conditions()
		if idx >= len(conds) {
			return m, nil
		}
		m.chart.ToggleCondition(now, conds[idx])
	case key.Matches(msg, m.keys.CheckAll):
		m.chart.CheckAll(now)
	case key.Matches(msg, m.keys.HoverNext):
		m.chart.HoverStep(now, 1)
	case key.Matches(msg, m.keys.HoverPrev):
		m.chart.HoverStep(now, -1)
	case key.Matches(msg, m.keys.Clear):
		m.chart.Leave(now)
	case key.Matches(msg, m.keys.Copy):
		return m, m.copyTooltip()
	default:
		return m, nil
	}
	return m, m.animate()
}

func (m *Model) cycleTask(now time.Time, delta int) {
	tasks := m.chart.Tasks()
	idx := 0
	for i, t := range tasks {
		if t == m.chart.Selection().Task {
			idx = i
			break
		}
	}
	next := ((idx+delta)%len(tasks) + len(tasks)) % len(tasks)
	m.chart.SetTask(now, tasks[next])
}

func (m *Model) copyTooltip() tea.Cmd {
	hovered := m.chart.Hovered()
	if hovered == "" {
		return m.setStatus("Highlight a bar first (←/→)", true)
	}
	if err := m.clipboard(m.chart.TooltipText(hovered)); err != nil {
		return m.setStatus("Clipboard error: "+err.Error(), true)
	}
	return m.setStatus(fmt.Sprintf("📋 Copied %s to clipboard", hovered), false)
}

// animate schedules the next frame unless one is already pending.
func (m *Model) animate() tea.Cmd {
	if m.animating || m.chart == nil {
		return nil
	}
	m.animating = true
	interval := m.cfg.Animation.FrameInterval
	if interval <= 0 {
		interval = defaultFrameInterval
	}
	return frameCmd(interval)
}

func (m *Model) setStatus(s string, isErr bool) tea.Cmd {
	m.statusSeq++
	m.status = s
	m.statusErr = isErr
	return statusClearCmd(m.statusSeq)
}

// View renders the current frame.
func (m Model) View() string {
	if m.loading {
		return fmt.Sprintf("\n  %s Loading %s…\n", m.spin.View(), m.cfg.DataPath)
	}
	if m.loadErr != nil {
		return "\n  " + m.theme.Error.Render("Error loading data") +
			"\n\n  " + m.loadErr.Error() +
			"\n\n  " + m.theme.MutedText.Render("r retry • q quit") + "\n"
	}
	if m.showHelp {
		return m.helpView
	}

	width := m.width
	if width <= 0 {
		width = defaultWidth
	}
	rows := m.cfg.UI.BarHeight
	if m.height > 0 {
		rows = min(rows, m.height-chromeRows)
	}

	f := m.chart.Frame(m.clock())
	sections := []string{
		m.renderHeader(f, width),
		m.theme.MutedText.Render(truncate(f.TaskDescription, width)),
		m.renderLegend(width),
		RenderDivider(width),
	}

	sideTip := width >= 80
	cols := width - 1
	if sideTip {
		cols -= tooltipWidth + SpaceSM
	}
	body := renderChart(m.theme, f, cols, rows, m.chart.Hovered())
	tip := renderTooltip(m.theme, f.Tooltip)
	switch {
	case tip != "" && sideTip:
		body = lipgloss.JoinHorizontal(lipgloss.Top, body,
			lipgloss.NewStyle().MarginLeft(SpaceSM).Render(tip))
	case tip != "":
		body = lipgloss.JoinVertical(lipgloss.Left, body, tip)
	}
	sections = append(sections, body)
	if len(f.Bars) == 0 {
		sections = append(sections, m.theme.MutedText.Render("No records match this selection"))
	}

	sections = append(sections, "", m.renderStatus(width))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderHeader(f chart.Frame, width int) string {
	parts := []string{m.theme.Header.Render("tv")}
	for _, t := range m.chart.Tasks() {
		if t == f.Task {
			parts = append(parts, m.theme.Selected.Render(t))
		} else {
			parts = append(parts, m.theme.MutedText.Render(t))
		}
	}
	line := strings.Join(parts, " ")
	if lipgloss.Width(line) > width {
		// Too many tasks to list; show only the selected one.
		line = m.theme.Header.Render("tv") + " " + m.theme.Selected.Render(truncate(f.Task, width-8))
	}
	return line
}

func (m Model) renderLegend(width int) string {
	sel := m.chart.Selection()
	var lines []string
	var cur []string
	curWidth := 0
	for i, cond := range m.chart.Conditions() {
		n := 0
		if i < maxNumberedConds {
			n = i + 1
		}
		entry := RenderCheckbox(m.theme, n, truncate(cond, 24), m.chart.Color(cond), sel.IsChecked(cond))
		w := lipgloss.Width(entry) + SpaceSM
		if curWidth+w > width && len(cur) > 0 {
			lines = append(lines, strings.Join(cur, "  "))
			cur, curWidth = nil, 0
		}
		cur = append(cur, entry)
		curWidth += w
	}
	if len(cur) > 0 {
		lines = append(lines, strings.Join(cur, "  "))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderStatus(width int) string {
	helpLine := m.help.View(m.keys)
	if m.status == "" {
		return helpLine
	}
	style := m.theme.Status
	if m.statusErr {
		style = m.theme.Error
	}
	return style.Render(truncate(m.status, width)) + "\n" + helpLine
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
