// Command tv draws the average tremor severity per condition, either as an
// animated terminal chart or as headless SVG/PNG/SQLite/JSON exports.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/pprof"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/vanderheijden86/tremorview/pkg/config"
	"github.com/vanderheijden86/tremorview/pkg/debug"
	"github.com/vanderheijden86/tremorview/pkg/export"
	"github.com/vanderheijden86/tremorview/pkg/loader"
	"github.com/vanderheijden86/tremorview/pkg/metrics"
	"github.com/vanderheijden86/tremorview/pkg/version"
)

// Exit codes.
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

// cliFlags holds every command-line option. Empty strings mean "not set" so
// config file values survive.
type cliFlags struct {
	data       string
	task       string
	conditions string
	domain     string
	tooltip    string
	configPath string

	export     string
	format     string
	title      string
	exportDB   string
	exportJSON string
	hover      string
	robot      bool
	pick       bool
	noWatch    bool

	cpuProfile  string
	showMetrics bool
	version     bool
	help        bool
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func parseFlags(args []string, stderr io.Writer) (cliFlags, *flag.FlagSet, error) {
	var f cliFlags
	fs := flag.NewFlagSet("tv", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&f.data, "data", "", "Path to the tremor CSV (or a directory containing condition.csv); env "+loader.DataFileEnvVar)
	fs.StringVar(&f.task, "task", "", "Initial task (default: All)")
	fs.StringVar(&f.conditions, "conditions", "", "Comma-separated conditions to check (default: all)")
	fs.StringVar(&f.domain, "domain", "", "Value axis domain: global or filtered")
	fs.StringVar(&f.tooltip, "tooltip", "", "Tooltip content: severity, demographics or task")
	fs.StringVar(&f.configPath, "config", "", "Config file (default: "+config.ConfigPath()+")")

	fs.StringVar(&f.export, "export", "", "Write a chart snapshot (.svg or .png) and exit")
	fs.StringVar(&f.format, "format", "", "Snapshot format when the extension is missing or ambiguous: svg or png")
	fs.StringVar(&f.title, "title", "", "Heading drawn above the snapshot")
	fs.StringVar(&f.exportDB, "export-db", "", "Write a SQLite summary database and exit")
	fs.StringVar(&f.exportJSON, "export-json", "", "Write the JSON summary to a file and exit")
	fs.StringVar(&f.hover, "hover", "", "Highlight a condition (with tooltip) in exported snapshots")
	fs.BoolVar(&f.robot, "robot-summary", false, "Print the JSON summary to stdout and exit")
	fs.BoolVar(&f.pick, "pick", false, "Choose task and conditions interactively first")
	fs.BoolVar(&f.noWatch, "no-watch", false, "Do not reload when the data file changes (TUI only)")

	fs.StringVar(&f.cpuProfile, "cpu-profile", "", "Write CPU profile to file")
	fs.BoolVar(&f.showMetrics, "metrics", false, "Print pipeline timing metrics to stderr on exit")
	fs.BoolVar(&f.version, "version", false, "Show version")
	fs.BoolVar(&f.help, "help", false, "Show help")

	if err := fs.Parse(args); err != nil {
		return f, fs, err
	}
	if fs.NArg() > 0 {
		return f, fs, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}
	return f, fs, nil
}

func run(args []string, stdout, stderr io.Writer) int {
	flags, fs, err := parseFlags(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return exitOK
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	}

	if flags.help {
		fmt.Fprintln(stdout, "Usage: tv [options]")
		fmt.Fprintln(stdout, "\nAverage tremor severity per condition, by movement task.")
		fs.SetOutput(stdout)
		fs.PrintDefaults()
		return exitOK
	}
	if flags.version {
		fmt.Fprintf(stdout, "tv %s\n", version.Version)
		return exitOK
	}

	if flags.cpuProfile != "" {
		f, err := os.Create(flags.cpuProfile)
		if err != nil {
			fmt.Fprintf(stderr, "Could not create CPU profile: %v\n", err)
			return exitError
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Fprintf(stderr, "Could not start CPU profile: %v\n", err)
			return exitError
		}
		defer pprof.StopCPUProfile()
	}
	if flags.showMetrics {
		defer func() {
			fmt.Fprintln(stderr, "Timing metrics:")
			_ = export.WriteJSON(stderr, metrics.AllTimingStats())
		}()
	}

	cfg, err := loadConfig(flags.configPath)
	if err != nil {
		if flags.configPath != "" {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return exitUsage
		}
		// Non-fatal: a broken user config falls back to defaults.
		fmt.Fprintf(stderr, "Warning: %v (using defaults)\n", err)
		cfg = config.DefaultConfig()
	}
	if err := applyFlags(&cfg, flags); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	}
	debug.Dump("config", cfg)
	opts, err := cfg.ChartOptions()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	}

	plan, err := exportPlan(flags)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	}

	if flags.pick {
		if !isTerminal(os.Stdin) {
			fmt.Fprintln(stderr, "Error: --pick needs an interactive terminal")
			return exitUsage
		}
		if err := pickSelection(&cfg); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return exitError
		}
	}

	headless := !plan.Empty() || flags.robot
	if !headless && !isTerminal(os.Stdout) {
		// Piped output: emit the summary instead of drawing a TUI.
		debug.Log("stdout is not a terminal, printing summary")
		headless, flags.robot = true, true
	}

	if headless {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		if err := runHeadless(ctx, cfg, opts, plan, headlessOptions{robot: flags.robot, hover: flags.hover}, stdout); err != nil {
			debug.Failure("headless", err)
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return exitError
		}
		return exitOK
	}

	if flags.noWatch {
		off := false
		cfg.UI.Watch = &off
	}
	if err := runTUI(cfg, opts); err != nil {
		fmt.Fprintf(stderr, "Error running tv: %v\n", err)
		return exitError
	}
	return exitOK
}

func loadConfig(path string) (config.Config, error) {
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return config.DefaultConfig(), fmt.Errorf("config file: %w", err)
		}
		return config.LoadFrom(path)
	}
	return config.Load()
}

// applyFlags merges command-line values over cfg. The data path resolves in
// order: --data, TV_DATA, config file, default.
func applyFlags(cfg *config.Config, f cliFlags) error {
	data := f.data
	if data == "" {
		data = os.Getenv(loader.DataFileEnvVar)
	}
	if data == "" {
		data = cfg.DataPath
	}
	path, err := loader.ResolveDataPath(data)
	if err != nil {
		return err
	}
	cfg.DataPath = path

	if f.task != "" {
		cfg.Task = f.task
	}
	if f.conditions != "" {
		cfg.Conditions = splitList(f.conditions)
	}
	if f.domain != "" {
		cfg.Chart.DomainPolicy = f.domain
	}
	if f.tooltip != "" {
		cfg.Chart.Tooltip = f.tooltip
	}
	return cfg.Validate()
}

func exportPlan(f cliFlags) (export.Plan, error) {
	p := export.Plan{
		Snapshot: export.SnapshotOptions{Path: f.export, Format: f.format, Title: f.title},
		DBPath:   f.exportDB,
		JSONPath: f.exportJSON,
	}
	if f.export == "" {
		if f.format != "" {
			return p, errors.New("--format requires --export")
		}
		return p, nil
	}
	if _, _, err := export.ResolveFormat(f.export, f.format); err != nil {
		return p, err
	}
	return p, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
