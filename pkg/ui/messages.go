package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vanderheijden86/tremorview/pkg/debug"
	"github.com/vanderheijden86/tremorview/pkg/loader"
	"github.com/vanderheijden86/tremorview/pkg/watcher"
)

// DataLoadedMsg carries a freshly parsed dataset.
type DataLoadedMsg struct {
	Store  *loader.Store
	Reload bool
}

// DataLoadErrorMsg reports a failed load. Nothing is drawn for a failed
// initial load; a failed reload keeps the previous chart.
type DataLoadErrorMsg struct {
	Err    error
	Reload bool
}

// FileChangedMsg is sent when the data file changes on disk.
type FileChangedMsg struct{}

// frameMsg advances running transitions.
type frameMsg struct{}

// statusClearMsg hides a transient status line if it is still current.
type statusClearMsg struct{ seq int }

// LoadDataCmd parses the dataset off the event loop.
func LoadDataCmd(path string, reload bool) tea.Cmd {
	return func() tea.Msg {
		store, err := loader.LoadRecordsFromFileWithOptions(path, loader.ParseOptions{
			// Warnings go to the debug log so they do not corrupt the screen.
			WarningHandler: func(msg string) { debug.Log("loader: %s", msg) },
		})
		if err != nil {
			return DataLoadErrorMsg{Err: err, Reload: reload}
		}
		return DataLoadedMsg{Store: store, Reload: reload}
	}
}

// WatchFileCmd returns a command that waits for file changes and sends FileChangedMsg
func WatchFileCmd(w *watcher.Watcher) tea.Cmd {
	return func() tea.Msg {
		<-w.Changed()
		return FileChangedMsg{}
	}
}

func frameCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(time.Time) tea.Msg {
		return frameMsg{}
	})
}

func statusClearCmd(seq int) tea.Cmd {
	return tea.Tick(3*time.Second, func(time.Time) tea.Msg {
		return statusClearMsg{seq: seq}
	})
}
