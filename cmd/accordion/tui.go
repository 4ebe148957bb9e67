package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vanderheijden86/accordion/internal/datasource"
	"github.com/vanderheijden86/accordion/pkg/config"
	"github.com/vanderheijden86/accordion/pkg/ui"
	"github.com/vanderheijden86/accordion/pkg/watcher"
)

func newTUICmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive folder list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, a)
		},
	}
}

func runTUI(cmd *cobra.Command, a *app) error {
	ctx := cmd.Context()
	store, src, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	list, err := a.openList(ctx, store, a.cfg.UI.SampleData)
	if err != nil {
		// The list is usable empty; ctrl+r retries the load.
		a.log.WithError(err).Warn("initial load failed")
	}

	opts := []ui.Option{ui.WithLogger(a.log), ui.WithHelp(a.cfg.UI.ShowHelp)}
	if a.cfg.Watch.Enabled && src.Watchable() {
		w, err := newStoreWatcher(a, src.Path, src.Type == datasource.SourceTypeSQLite)
		if err != nil {
			a.log.WithError(err).Warn("store changes from other processes will not be picked up")
		} else {
			defer w.Stop()
			opts = append(opts, ui.WithWatcher(w))
		}
	}

	logPath := ""
	if dir := config.StateDir(); dir != "" {
		logPath = filepath.Join(dir, "accordion.log")
	}
	return ui.Run(ctx, list, logPath, opts...)
}

// newStoreWatcher starts a watcher on a file store.
func newStoreWatcher(a *app, path string, sqlite bool) (*watcher.Watcher, error) {
	opts := []watcher.WatcherOption{
		watcher.WithDebounceDuration(a.cfg.Watch.Debounce),
		watcher.WithPollInterval(a.cfg.Watch.PollInterval),
		watcher.WithOnError(func(err error) {
			a.log.WithError(err).WithField("path", path).Warn("store watcher")
		}),
	}
	if sqlite {
		opts = append(opts, watcher.WithSidecars(watcher.SQLiteSidecars...))
	}
	w, err := watcher.NewWatcher(path, opts...)
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}
	if err := w.Start(); err != nil {
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}
	a.log.WithField("polling", w.IsPolling()).Debugf("watching %s (%s)", path, w.FilesystemType())
	return w, nil
}
