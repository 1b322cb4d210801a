package ui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vanderheijden86/tremorview/pkg/chart"
	"github.com/vanderheijden86/tremorview/pkg/config"
	"github.com/vanderheijden86/tremorview/pkg/filter"
	"github.com/vanderheijden86/tremorview/pkg/loader"
	"github.com/vanderheijden86/tremorview/pkg/model"
	"github.com/vanderheijden86/tremorview/pkg/testutil"
)

var t0 = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newTestModel(t *testing.T, cfg config.Config) Model {
	t.Helper()
	opts, err := cfg.ChartOptions()
	if err != nil {
		t.Fatalf("chart options: %v", err)
	}
	m := NewModel(cfg, opts)
	m.clock = func() time.Time { return t0 }
	return m
}

// loaded returns a model that has received the example dataset.
func loaded(t *testing.T) Model {
	t.Helper()
	m := newTestModel(t, config.DefaultConfig())
	m = send(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	return send(t, m, DataLoadedMsg{Store: loader.NewStore(testutil.Example())})
}

func send(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	updated, _ := m.Update(msg)
	return updated.(Model)
}

func TestLoadingView(t *testing.T) {
	m := newTestModel(t, config.DefaultConfig())
	if !strings.Contains(m.View(), "Loading condition.csv") {
		t.Fatalf("expected loading view, got %q", m.View())
	}
	if m.Chart() != nil {
		t.Fatal("no chart before data arrives")
	}
}

func TestDataLoaded_BuildsChart(t *testing.T) {
	m := loaded(t)
	if m.Chart() == nil {
		t.Fatal("expected chart after DataLoadedMsg")
	}
	testutil.AssertKeys(t, m.Chart().Keys(), []string{"A", "B"})
	if !m.animating {
		t.Fatal("expected the entering bars to start the frame loop")
	}

	view := m.View()
	for _, want := range []string{"Average Tremor Severity (g)", "Condition", "All", "Relaxed", "TouchNose", model.AllTasksDescription} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestDataLoaded_AppliesConfiguredSelection(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Task = "TouchNose"
	cfg.Conditions = []string{"A"}
	m := newTestModel(t, cfg)
	m = send(t, m, DataLoadedMsg{Store: loader.NewStore(testutil.Example())})

	sel := m.Chart().Selection()
	if sel.Task != "TouchNose" {
		t.Fatalf("task = %q", sel.Task)
	}
	testutil.AssertKeys(t, sel.Checked(), []string{"A"})
	testutil.AssertKeys(t, m.Chart().Keys(), []string{"A"})
}

func TestDataLoaded_UnknownTaskFallsBackToAll(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Task = "Juggling"
	m := newTestModel(t, cfg)
	m = send(t, m, DataLoadedMsg{Store: loader.NewStore(testutil.Example())})
	if got := m.Chart().Selection().Task; got != filter.AllTasks {
		t.Fatalf("task = %q, want %q", got, filter.AllTasks)
	}
}

func TestDataLoadError_DrawsNothing(t *testing.T) {
	m := newTestModel(t, config.DefaultConfig())
	m = send(t, m, DataLoadErrorMsg{Err: errors.New("boom")})
	if m.Chart() != nil {
		t.Fatal("failed load must not build a chart")
	}
	if m.Err() == nil {
		t.Fatal("expected Err to report the failure")
	}
	view := m.View()
	if !strings.Contains(view, "Error loading data") || !strings.Contains(view, "boom") {
		t.Fatalf("unexpected error view: %q", view)
	}
}

func TestReloadError_KeepsChart(t *testing.T) {
	m := loaded(t)
	m = send(t, m, DataLoadErrorMsg{Err: errors.New("disk gone"), Reload: true})
	if m.Chart() == nil {
		t.Fatal("reload failure dropped the chart")
	}
	if !m.statusErr || !strings.Contains(m.status, "disk gone") {
		t.Fatalf("status = %q", m.status)
	}
}

func TestTaskCycling(t *testing.T) {
	m := loaded(t)
	// Tasks are All, Relaxed, TouchNose.
	m = send(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if got := m.Chart().Selection().Task; got != "Relaxed" {
		t.Fatalf("after tab task = %q", got)
	}
	m = send(t, m, keyRunes("]"))
	if got := m.Chart().Selection().Task; got != "TouchNose" {
		t.Fatalf("after ] task = %q", got)
	}
	m = send(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if got := m.Chart().Selection().Task; got != filter.AllTasks {
		t.Fatalf("tab should wrap to All, got %q", got)
	}
	m = send(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	if got := m.Chart().Selection().Task; got != "TouchNose" {
		t.Fatalf("shift+tab should wrap back, got %q", got)
	}
	m = send(t, m, keyRunes("["))
	if got := m.Chart().Selection().Task; got != "Relaxed" {
		t.Fatalf("after [ task = %q", got)
	}
}

func TestToggleAndCheckAll(t *testing.T) {
	m := loaded(t)
	m = send(t, m, keyRunes("2"))
	if m.Chart().Selection().IsChecked("B") {
		t.Fatal("2 should uncheck B")
	}
	testutil.AssertKeys(t, m.Chart().Keys(), []string{"A"})

	// Out of range numbers are ignored.
	m = send(t, m, keyRunes("9"))
	testutil.AssertKeys(t, m.Chart().Keys(), []string{"A"})

	m = send(t, m, keyRunes("a"))
	testutil.AssertKeys(t, m.Chart().Keys(), []string{"A", "B"})
}

func TestHoverAndClear(t *testing.T) {
	m := loaded(t)
	m = send(t, m, tea.KeyMsg{Type: tea.KeyRight})
	if got := m.Chart().Hovered(); got != "A" {
		t.Fatalf("hovered = %q, want A", got)
	}
	m = send(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	if got := m.Chart().Hovered(); got != "B" {
		t.Fatalf("left should wrap to B, got %q", got)
	}

	m.clock = func() time.Time { return t0.Add(time.Second) }
	if !strings.Contains(m.View(), "Max Severity: 6.0000") {
		t.Fatalf("tooltip missing from view:\n%s", m.View())
	}

	m = send(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if got := m.Chart().Hovered(); got != "" {
		t.Fatalf("esc should clear hover, got %q", got)
	}
}

func TestCopyTooltip(t *testing.T) {
	m := loaded(t)
	var copied string
	m.clipboard = func(s string) error {
		copied = s
		return nil
	}

	m = send(t, m, keyRunes("y"))
	if copied != "" || !m.statusErr {
		t.Fatal("copy without a highlighted bar should only warn")
	}

	m = send(t, m, tea.KeyMsg{Type: tea.KeyRight})
	m = send(t, m, keyRunes("y"))
	if !strings.Contains(copied, "Max Severity: 4.0000") {
		t.Fatalf("copied %q", copied)
	}
	if m.statusErr || !strings.Contains(m.status, "Copied A") {
		t.Fatalf("status = %q", m.status)
	}

	m.clipboard = func(string) error { return errors.New("no clipboard") }
	m = send(t, m, keyRunes("y"))
	if !m.statusErr || !strings.Contains(m.status, "no clipboard") {
		t.Fatalf("status = %q", m.status)
	}
}

func TestStatusClears(t *testing.T) {
	m := loaded(t)
	m.setStatus("one", false)
	stale := m.statusSeq
	m.setStatus("two", false)

	m = send(t, m, statusClearMsg{seq: stale})
	if m.status != "two" {
		t.Fatalf("stale clear removed the newer status: %q", m.status)
	}
	m = send(t, m, statusClearMsg{seq: m.statusSeq})
	if m.status != "" {
		t.Fatalf("status = %q, want empty", m.status)
	}
}

func TestHelpToggle(t *testing.T) {
	m := loaded(t)
	m = send(t, m, keyRunes("?"))
	if !m.showHelp || !strings.Contains(m.View(), "Selection") {
		t.Fatal("expected help panel")
	}
	// Chart keys are swallowed while help is open.
	m = send(t, m, keyRunes("2"))
	if !m.Chart().Selection().IsChecked("B") {
		t.Fatal("toggle leaked through the help panel")
	}
	m = send(t, m, keyRunes("?"))
	if m.showHelp {
		t.Fatal("? should close help")
	}
}

func TestQuit(t *testing.T) {
	m := loaded(t)
	_, cmd := m.Update(keyRunes("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("q should quit")
	}
}

func TestFrameLoopStopsWhenSettled(t *testing.T) {
	m := loaded(t)

	m = send(t, m, frameMsg{})
	if !m.animating {
		t.Fatal("frame loop stopped mid-transition")
	}

	m.clock = func() time.Time { return t0.Add(time.Hour) }
	updated, cmd := m.Update(frameMsg{})
	m = updated.(Model)
	if cmd != nil || m.animating {
		t.Fatal("frame loop should stop once transitions finish")
	}
}

func TestReload_PreservesSelectionAndHover(t *testing.T) {
	m := loaded(t)
	m = send(t, m, tea.KeyMsg{Type: tea.KeyTab}) // Relaxed
	m = send(t, m, tea.KeyMsg{Type: tea.KeyRight})

	records := append(testutil.Example(), model.Record{Condition: "C", TaskName: "Relaxed", TremorSeverity: 1})
	m = send(t, m, DataLoadedMsg{Store: loader.NewStore(records), Reload: true})

	c := m.Chart()
	if c.Selection().Task != "Relaxed" {
		t.Fatalf("task = %q after reload", c.Selection().Task)
	}
	testutil.AssertKeys(t, c.Keys(), []string{"A", "B", "C"})
	if c.Hovered() != "A" {
		t.Fatalf("hover = %q after reload", c.Hovered())
	}
	if !strings.Contains(m.status, "Reloaded") {
		t.Fatalf("status = %q", m.status)
	}
}

func TestReload_KeepsUncheckedConditions(t *testing.T) {
	m := loaded(t)
	m = send(t, m, keyRunes("1")) // uncheck A
	m = send(t, m, DataLoadedMsg{Store: loader.NewStore(testutil.Example()), Reload: true})
	testutil.AssertKeys(t, m.Chart().Keys(), []string{"B"})
}

func TestFileChanged_SchedulesReload(t *testing.T) {
	m := loaded(t)
	updated, cmd := m.Update(FileChangedMsg{})
	m = updated.(Model)
	if cmd == nil {
		t.Fatal("expected reload command")
	}
	if !strings.Contains(m.status, "reloading") {
		t.Fatalf("status = %q", m.status)
	}
}

func TestLoadDataCmd(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteCSV(t, dir, "condition.csv", testutil.Example())

	msg := LoadDataCmd(path, false)()
	got, ok := msg.(DataLoadedMsg)
	if !ok {
		t.Fatalf("expected DataLoadedMsg, got %T", msg)
	}
	if got.Store.Len() != 3 || got.Reload {
		t.Fatalf("unexpected msg %+v", got)
	}

	msg = LoadDataCmd(dir+"/missing.csv", true)()
	errMsg, ok := msg.(DataLoadErrorMsg)
	if !ok {
		t.Fatalf("expected DataLoadErrorMsg, got %T", msg)
	}
	var le *loader.LoadError
	if !errors.As(errMsg.Err, &le) || !errMsg.Reload {
		t.Fatalf("unexpected error msg %+v", errMsg)
	}
}

func TestEmptySelectionMessage(t *testing.T) {
	m := loaded(t)
	// B has no TouchNose records; A is unchecked.
	m = send(t, m, keyRunes("1"))
	m = send(t, m, keyRunes("["))
	m.clock = func() time.Time { return t0.Add(time.Hour) }
	m = send(t, m, frameMsg{})
	if len(m.Chart().Keys()) != 0 {
		t.Fatalf("keys = %v", m.Chart().Keys())
	}
	if !strings.Contains(m.View(), "No records match") {
		t.Fatal("expected empty-selection note")
	}
}

func TestRenderChart_FullBarReachesTop(t *testing.T) {
	m := loaded(t)
	f := m.Chart().Frame(t0.Add(time.Hour))
	out := renderChart(TestTheme(), f, 60, 10, "")
	lines := strings.Split(out, "\n")
	// Title line, then the top plot row: B is the tallest bar.
	if !strings.Contains(lines[1], "█") {
		t.Fatalf("top row has no full block:\n%s", out)
	}
	if !strings.Contains(out, "└") {
		t.Fatal("missing axis corner")
	}
}

func TestRenderTooltipNil(t *testing.T) {
	if renderTooltip(TestTheme(), nil) != "" {
		t.Fatal("nil tooltip should render nothing")
	}
	box := renderTooltip(TestTheme(), &chart.TooltipFrame{
		Key:     "ET",
		Lines:   []chart.TooltipLine{{Label: "Max Severity", Value: "1.2000"}},
		Opacity: 0.9,
	})
	if !strings.Contains(box, "Max Severity: 1.2000") {
		t.Fatalf("tooltip box = %q", box)
	}
}
