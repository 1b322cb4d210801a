package main

import (
	"errors"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vanderheijden86/tremorview/pkg/chart"
	"github.com/vanderheijden86/tremorview/pkg/config"
	"github.com/vanderheijden86/tremorview/pkg/debug"
	"github.com/vanderheijden86/tremorview/pkg/ui"
	"github.com/vanderheijden86/tremorview/pkg/watcher"
)

func runTUI(cfg config.Config, opts chart.Options) error {
	if debug.Enabled() {
		// Debug output would corrupt the alternate screen.
		if f, err := openDebugLog(); err == nil {
			defer f.Close()
			debug.SetOutput(f)
		}
	}

	m := ui.NewModel(cfg, opts)
	if cfg.WatchEnabled() {
		w, err := watcher.NewWatcher(cfg.DataPath)
		if err == nil {
			err = w.Start()
		}
		if err != nil {
			debug.Log("watch disabled: %v", err)
		} else {
			defer w.Stop()
			m = m.WithWatcher(w)
		}
	}
	return runTUIProgram(m)
}

func openDebugLog() (*os.File, error) {
	dir := config.CacheDir()
	if dir == "" {
		return nil, errors.New("no cache directory")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return os.OpenFile(filepath.Join(dir, "debug.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
}

func runTUIProgram(m ui.Model) error {
	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithoutSignalHandler(),
	)

	runDone := make(chan struct{})
	defer close(runDone)

	// Graceful shutdown on SIGINT/SIGTERM.
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-runDone:
			return
		case <-sigCh:
		}

		p.Quit()

		select {
		case <-runDone:
			return
		case <-sigCh:
		case <-time.After(5 * time.Second):
		}

		p.Kill()
	}()

	// Optional auto-quit for automated tests: set TV_TUI_AUTOCLOSE_MS.
	if v := os.Getenv("TV_TUI_AUTOCLOSE_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			go func() {
				timer := time.NewTimer(time.Duration(ms) * time.Millisecond)
				defer timer.Stop()

				select {
				case <-runDone:
					return
				case <-timer.C:
				}

				p.Quit()

				select {
				case <-runDone:
					return
				case <-time.After(2 * time.Second):
				}

				p.Kill()
			}()
		}
	}

	final, err := p.Run()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, tea.ErrInterrupted) {
			return nil
		}
		return err
	}
	if fm, ok := final.(ui.Model); ok && fm.Err() != nil {
		return fm.Err()
	}
	return nil
}
