package main

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/vanderheijden86/tremorview/pkg/chart"
	"github.com/vanderheijden86/tremorview/pkg/config"
	"github.com/vanderheijden86/tremorview/pkg/debug"
	"github.com/vanderheijden86/tremorview/pkg/export"
	"github.com/vanderheijden86/tremorview/pkg/loader"
)

// settleAfter is far enough past the last pass for every transition to end.
const settleAfter = time.Hour

type headlessOptions struct {
	robot bool
	hover string
}

// runHeadless loads the data, runs one pass for the configured selection,
// settles the transitions and writes the planned outputs.
func runHeadless(ctx context.Context, cfg config.Config, opts chart.Options, plan export.Plan, ho headlessOptions, stdout io.Writer) error {
	defer debug.LogEnterExit("headless")()

	store, err := loader.LoadRecordsFromFile(cfg.DataPath)
	if err != nil {
		return err
	}
	c, err := buildChart(store, cfg, opts)
	if err != nil {
		return err
	}

	now := time.Now()
	if ho.hover != "" && !c.Hover(now, ho.hover) {
		return fmt.Errorf("cannot highlight %q: no such bar (have %s)", ho.hover, strings.Join(c.Keys(), ", "))
	}

	settled := now.Add(settleAfter)
	c.Tick(settled)
	frame := c.Frame(settled)
	summary := export.NewRobotSummary(c)

	if err := export.Run(ctx, plan, frame, export.NewSQLiteExporter(c), &summary); err != nil {
		return err
	}
	if ho.robot {
		return export.WriteJSON(stdout, summary)
	}
	return nil
}

// buildChart creates the controller and applies the configured selection.
// Unlike the TUI, a task or condition missing from the data is an error.
func buildChart(store *loader.Store, cfg config.Config, opts chart.Options) (*chart.Controller, error) {
	c := chart.New(store, opts)
	now := time.Now()

	if cfg.Task != "" && !slices.Contains(c.Tasks(), cfg.Task) {
		return nil, fmt.Errorf("unknown task %q (have %s)", cfg.Task, strings.Join(c.Tasks(), ", "))
	}
	for _, cond := range cfg.Conditions {
		if !slices.Contains(c.Conditions(), cond) {
			return nil, fmt.Errorf("unknown condition %q (have %s)", cond, strings.Join(c.Conditions(), ", "))
		}
	}

	c.SetTask(now, cfg.Task)
	if len(cfg.Conditions) > 0 {
		c.SetConditions(now, cfg.Conditions)
	}
	return c, nil
}
