package main

import (
	"errors"
	"fmt"
	"slices"

	"github.com/charmbracelet/huh"

	"github.com/vanderheijden86/tremorview/pkg/config"
	"github.com/vanderheijden86/tremorview/pkg/filter"
	"github.com/vanderheijden86/tremorview/pkg/loader"
	"github.com/vanderheijden86/tremorview/pkg/model"
)

// pickSelection asks for the task and conditions with a huh form and stores
// the answers in cfg.
func pickSelection(cfg *config.Config) error {
	store, err := loader.LoadRecordsFromFile(cfg.DataPath)
	if err != nil {
		return err
	}

	task, conds := initialPick(store, *cfg)
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Task").
				DescriptionFunc(func() string { return model.DescribeTask(task) }, &task).
				Options(huh.NewOptions(append([]string{filter.AllTasks}, store.TaskNames()...)...)...).
				Value(&task),
			huh.NewMultiSelect[string]().
				Title("Conditions").
				Description("Leave everything unchecked to show all conditions.").
				Options(conditionOptions(store.Conditions(), conds)...).
				Value(&conds),
		),
	)
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return fmt.Errorf("selection cancelled")
		}
		return err
	}

	cfg.Task = task
	cfg.Conditions = conds
	return nil
}

// initialPick seeds the form from cfg, defaulting to All and every condition.
func initialPick(store *loader.Store, cfg config.Config) (string, []string) {
	task := cfg.Task
	if task == "" || !slices.Contains(store.TaskNames(), task) {
		task = filter.AllTasks
	}
	conds := slices.Clone(cfg.Conditions)
	if len(conds) == 0 {
		conds = store.Conditions()
	}
	return task, conds
}

func conditionOptions(all, checked []string) []huh.Option[string] {
	opts := make([]huh.Option[string], 0, len(all))
	for _, c := range all {
		opts = append(opts, huh.NewOption(c, c).Selected(slices.Contains(checked, c)))
	}
	return opts
}
