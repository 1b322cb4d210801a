package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/vanderheijden86/tremorview/pkg/config"
	"github.com/vanderheijden86/tremorview/pkg/export"
	"github.com/vanderheijden86/tremorview/pkg/loader"
	"github.com/vanderheijden86/tremorview/pkg/testutil"
)

// isolate keeps the user's config file and TV_DATA out of the test.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	t.Setenv(loader.DataFileEnvVar, "")
	return dir
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestParseFlags(t *testing.T) {
	var stderr bytes.Buffer
	f, _, err := parseFlags([]string{"--task", "Relaxed", "--conditions", "A,B", "--robot-summary"}, &stderr)
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	if f.task != "Relaxed" || f.conditions != "A,B" || !f.robot {
		t.Fatalf("unexpected flags: %+v", f)
	}

	if _, _, err := parseFlags([]string{"extra"}, &stderr); err == nil {
		t.Fatal("expected error for positional arguments")
	}
	if _, _, err := parseFlags([]string{"--no-such-flag"}, &stderr); err == nil {
		t.Fatal("expected error for unknown flag")
	}
}

func TestSplitList(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"A", []string{"A"}},
		{" A , B ,,C ", []string{"A", "B", "C"}},
		{",", nil},
	}
	for _, tt := range tests {
		if got := splitList(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("splitList(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestApplyFlags_DataPrecedence(t *testing.T) {
	dir := isolate(t)
	fromEnv := testutil.WriteCSV(t, dir, "env.csv", testutil.Example())
	fromFlag := testutil.WriteCSV(t, dir, "flag.csv", testutil.Example())

	cfg := config.DefaultConfig()
	cfg.DataPath = filepath.Join(dir, "config.csv")
	if err := applyFlags(&cfg, cliFlags{}); err != nil {
		t.Fatalf("applyFlags: %v", err)
	}
	if cfg.DataPath != filepath.Join(dir, "config.csv") {
		t.Errorf("config path lost: %s", cfg.DataPath)
	}

	t.Setenv(loader.DataFileEnvVar, fromEnv)
	cfg = config.DefaultConfig()
	if err := applyFlags(&cfg, cliFlags{}); err != nil {
		t.Fatalf("applyFlags: %v", err)
	}
	if cfg.DataPath != fromEnv {
		t.Errorf("env should beat config: got %s", cfg.DataPath)
	}

	cfg = config.DefaultConfig()
	if err := applyFlags(&cfg, cliFlags{data: fromFlag, task: "Relaxed", conditions: "A", domain: "filtered"}); err != nil {
		t.Fatalf("applyFlags: %v", err)
	}
	if cfg.DataPath != fromFlag {
		t.Errorf("flag should beat env: got %s", cfg.DataPath)
	}
	if cfg.Task != "Relaxed" || !reflect.DeepEqual(cfg.Conditions, []string{"A"}) || cfg.Chart.DomainPolicy != "filtered" {
		t.Errorf("flags not applied: %+v", cfg)
	}
}

func TestApplyFlags_DirectoryData(t *testing.T) {
	dir := isolate(t)
	want := testutil.WriteCSV(t, dir, "condition.csv", testutil.Example())

	cfg := config.DefaultConfig()
	if err := applyFlags(&cfg, cliFlags{data: dir}); err != nil {
		t.Fatalf("applyFlags: %v", err)
	}
	if cfg.DataPath != want {
		t.Errorf("DataPath = %s, want %s", cfg.DataPath, want)
	}
}

func TestApplyFlags_InvalidDomain(t *testing.T) {
	isolate(t)
	cfg := config.DefaultConfig()
	if err := applyFlags(&cfg, cliFlags{data: "x.csv", domain: "sideways"}); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestExportPlan(t *testing.T) {
	if _, err := exportPlan(cliFlags{format: "svg"}); err == nil {
		t.Error("--format without --export should fail")
	}
	if _, err := exportPlan(cliFlags{export: "chart.gif"}); err == nil {
		t.Error("unsupported extension should fail")
	}
	p, err := exportPlan(cliFlags{export: "chart.svg", exportDB: "out.db"})
	if err != nil {
		t.Fatalf("exportPlan: %v", err)
	}
	if p.Empty() || p.Snapshot.Path != "chart.svg" || p.DBPath != "out.db" {
		t.Errorf("unexpected plan: %+v", p)
	}
	if p, _ := exportPlan(cliFlags{}); !p.Empty() {
		t.Errorf("expected empty plan, got %+v", p)
	}
}

func TestRun_VersionAndHelp(t *testing.T) {
	isolate(t)
	code, out, _ := runCLI(t, "--version")
	if code != exitOK || !strings.HasPrefix(out, "tv ") {
		t.Fatalf("--version: code=%d out=%q", code, out)
	}

	code, out, _ = runCLI(t, "--help")
	if code != exitOK || !strings.Contains(out, "Usage: tv") || !strings.Contains(out, "-robot-summary") {
		t.Fatalf("--help: code=%d out=%q", code, out)
	}
}

func TestRun_UsageErrors(t *testing.T) {
	dir := isolate(t)
	data := testutil.WriteCSV(t, dir, "condition.csv", testutil.Example())

	tests := []struct {
		name string
		args []string
	}{
		{"positional", []string{"extra"}},
		{"bad domain", []string{"--data", data, "--domain", "sideways", "--robot-summary"}},
		{"bad tooltip", []string{"--data", data, "--tooltip", "everything", "--robot-summary"}},
		{"format alone", []string{"--data", data, "--format", "png"}},
		{"missing config", []string{"--config", filepath.Join(dir, "nope.yaml"), "--robot-summary"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, stderr := runCLI(t, tt.args...)
			if code != exitUsage {
				t.Fatalf("exit = %d, want %d (stderr %q)", code, exitUsage, stderr)
			}
			if !strings.Contains(stderr, "Error") {
				t.Errorf("stderr should explain the failure: %q", stderr)
			}
		})
	}
}

func TestRun_RuntimeErrors(t *testing.T) {
	dir := isolate(t)
	data := testutil.WriteCSV(t, dir, "condition.csv", testutil.Example())

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing data", []string{"--data", filepath.Join(dir, "missing.csv"), "--robot-summary"}, "missing.csv"},
		{"unknown task", []string{"--data", data, "--task", "Juggling", "--robot-summary"}, "Juggling"},
		{"unknown condition", []string{"--data", data, "--conditions", "Z", "--robot-summary"}, `"Z"`},
		{"unknown hover", []string{"--data", data, "--hover", "Q", "--robot-summary"}, `"Q"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, stderr := runCLI(t, tt.args...)
			if code != exitError {
				t.Fatalf("exit = %d, want %d (stderr %q)", code, exitError, stderr)
			}
			if !strings.Contains(stderr, tt.want) {
				t.Errorf("stderr %q should mention %s", stderr, tt.want)
			}
		})
	}
}

func TestRun_RobotSummary(t *testing.T) {
	dir := isolate(t)
	data := testutil.WriteCSV(t, dir, "condition.csv", testutil.Example())

	code, out, stderr := runCLI(t, "--data", data, "--task", "Relaxed", "--robot-summary")
	if code != exitOK {
		t.Fatalf("exit = %d, stderr %q", code, stderr)
	}

	var summary export.RobotSummary
	if err := json.Unmarshal([]byte(out), &summary); err != nil {
		t.Fatalf("stdout is not JSON: %v\n%s", err, out)
	}
	if summary.Task != "Relaxed" || summary.RecordCount != 3 {
		t.Errorf("unexpected header: task=%q records=%d", summary.Task, summary.RecordCount)
	}
	if len(summary.Bars) != 2 {
		t.Fatalf("expected 2 bars, got %d", len(summary.Bars))
	}
	byCond := map[string]float64{}
	for _, b := range summary.Bars {
		byCond[b.Condition] = b.MeanSeverity
	}
	testutil.AssertNear(t, "A mean", byCond["A"], 2, testutil.Tolerance)
	testutil.AssertNear(t, "B mean", byCond["B"], 6, testutil.Tolerance)
}

func TestRun_ExportsAllOutputs(t *testing.T) {
	dir := isolate(t)
	data := testutil.WriteCSV(t, dir, "condition.csv", testutil.Example())
	svgPath := filepath.Join(dir, "out", "chart.svg")
	pngPath := filepath.Join(dir, "out", "chart")
	dbPath := filepath.Join(dir, "out", "summary.db")
	jsonPath := filepath.Join(dir, "out", "summary.json")

	code, out, stderr := runCLI(t, "--data", data, "--export", svgPath, "--export-db", dbPath,
		"--export-json", jsonPath, "--hover", "B", "--title", "Tremor")
	if code != exitOK {
		t.Fatalf("exit = %d, stderr %q", code, stderr)
	}
	if out != "" {
		t.Errorf("stdout should stay empty without --robot-summary, got %q", out)
	}

	svg, err := os.ReadFile(svgPath)
	if err != nil {
		t.Fatalf("read svg: %v", err)
	}
	for _, want := range []string{"<svg", "Tremor", "Max Severity"} {
		if !bytes.Contains(svg, []byte(want)) {
			t.Errorf("svg missing %q", want)
		}
	}
	for _, p := range []string{dbPath, jsonPath} {
		if info, err := os.Stat(p); err != nil || info.Size() == 0 {
			t.Errorf("%s not written: %v", p, err)
		}
	}

	code, _, stderr = runCLI(t, "--data", data, "--export", pngPath, "--format", "png")
	if code != exitOK {
		t.Fatalf("png export: exit = %d, stderr %q", code, stderr)
	}
	png, err := os.ReadFile(pngPath)
	if err != nil {
		t.Fatalf("read png: %v", err)
	}
	if !bytes.HasPrefix(png, []byte("\x89PNG")) {
		t.Error("png export lacks PNG signature")
	}
}

func TestRun_ConfigFileSelection(t *testing.T) {
	dir := isolate(t)
	data := testutil.WriteCSV(t, dir, "condition.csv", testutil.Example())
	cfgPath := filepath.Join(dir, "tv.yaml")
	yaml := "data_path: " + data + "\ntask: TouchNose\nchart:\n  domain_policy: filtered\n"
	if err := os.WriteFile(cfgPath, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	code, out, stderr := runCLI(t, "--config", cfgPath, "--robot-summary")
	if code != exitOK {
		t.Fatalf("exit = %d, stderr %q", code, stderr)
	}
	var summary export.RobotSummary
	if err := json.Unmarshal([]byte(out), &summary); err != nil {
		t.Fatalf("stdout is not JSON: %v", err)
	}
	if summary.Task != "TouchNose" || summary.DomainPolicy != "filtered" {
		t.Errorf("config not applied: task=%q policy=%q", summary.Task, summary.DomainPolicy)
	}
	if len(summary.Bars) != 1 || summary.Bars[0].Condition != "A" {
		t.Errorf("unexpected bars: %+v", summary.Bars)
	}
}

func TestBuildChart(t *testing.T) {
	dir := isolate(t)
	store, err := loader.LoadRecordsFromFile(testutil.WriteCSV(t, dir, "condition.csv", testutil.Example()))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	opts, err := config.DefaultConfig().ChartOptions()
	if err != nil {
		t.Fatalf("options: %v", err)
	}

	cfg := config.DefaultConfig()
	cfg.Task = "Relaxed"
	cfg.Conditions = []string{"B"}
	c, err := buildChart(store, cfg, opts)
	if err != nil {
		t.Fatalf("buildChart: %v", err)
	}
	testutil.AssertKeys(t, c.Keys(), []string{"B"})

	cfg.Conditions = []string{"C"}
	if _, err := buildChart(store, cfg, opts); err == nil || !strings.Contains(err.Error(), "have A, B") {
		t.Errorf("expected unknown condition error listing choices, got %v", err)
	}
	cfg.Conditions = nil
	cfg.Task = "Nope"
	if _, err := buildChart(store, cfg, opts); err == nil {
		t.Error("expected unknown task error")
	}
}

func TestRunHeadless_Cancelled(t *testing.T) {
	dir := isolate(t)
	cfg := config.DefaultConfig()
	cfg.DataPath = testutil.WriteCSV(t, dir, "condition.csv", testutil.Example())
	opts, _ := cfg.ChartOptions()
	plan := export.Plan{DBPath: filepath.Join(dir, "out.db")}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := runHeadless(ctx, cfg, opts, plan, headlessOptions{}, &bytes.Buffer{}); err == nil {
		t.Fatal("expected cancellation error")
	}
	if _, err := os.Stat(plan.DBPath); err == nil {
		t.Error("cancelled run should not write the database")
	}
}

func TestInitialPick(t *testing.T) {
	dir := isolate(t)
	store, err := loader.LoadRecordsFromFile(testutil.WriteCSV(t, dir, "condition.csv", testutil.Example()))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	task, conds := initialPick(store, config.DefaultConfig())
	if task != "All" || !reflect.DeepEqual(conds, []string{"A", "B"}) {
		t.Errorf("defaults: task=%q conds=%v", task, conds)
	}

	cfg := config.DefaultConfig()
	cfg.Task = "TouchNose"
	cfg.Conditions = []string{"B"}
	task, conds = initialPick(store, cfg)
	if task != "TouchNose" || !reflect.DeepEqual(conds, []string{"B"}) {
		t.Errorf("configured: task=%q conds=%v", task, conds)
	}

	cfg.Task = "Gone"
	if task, _ = initialPick(store, cfg); task != "All" {
		t.Errorf("unknown task should fall back to All, got %q", task)
	}
}
