package main

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"golang.org/x/term"

	"github.com/vanderheijden86/accordion/internal/datasource"
	"github.com/vanderheijden86/accordion/pkg/accordion"
	"github.com/vanderheijden86/accordion/pkg/config"
	"github.com/vanderheijden86/accordion/pkg/debug"
)

// app carries what every subcommand needs: flags, configuration and the
// logger.
type app struct {
	storeFlag  string
	configFlag string

	cfg config.Config
	log *logrus.Logger

	// isTerminal reports whether stdin and stdout are a terminal.
	isTerminal func() bool
}

func newApp() *app {
	return &app{
		log: debug.Logger(),
		isTerminal: func() bool {
			return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
		},
	}
}

// configPath returns the file settings are read from and saved to.
func (a *app) configPath() string {
	if a.configFlag != "" {
		return a.configFlag
	}
	return config.ConfigPath()
}

func (a *app) loadConfig() error {
	cfg, err := config.LoadFrom(a.configPath())
	if err != nil {
		return err
	}
	a.cfg = cfg
	return nil
}

// source detects the store the flags and config point at.
func (a *app) source() (datasource.DataSource, error) {
	return datasource.Detect(a.cfg.ResolveDSN(a.storeFlag))
}

func (a *app) openStore(ctx context.Context) (datasource.Store, datasource.DataSource, error) {
	src, err := a.source()
	if err != nil {
		return nil, src, err
	}
	a.log.WithField("store", src.Type).Debugf("opening %s", src.Path)
	store, err := datasource.OpenSource(ctx, src)
	if err != nil {
		return nil, src, err
	}
	return store, src, nil
}

// openList loads the folder list over store with the configured settings.
func (a *app) openList(ctx context.Context, store datasource.Store, sampleData bool) (*accordion.Model, error) {
	return accordion.New(ctx, store,
		accordion.WithLogger(a.log),
		accordion.WithSettings(accordion.Settings{
			SortKey:   a.cfg.Sort.Key,
			Ascending: a.cfg.Sort.Ascending,
		}),
		accordion.WithSaveSettings(a.saveSort),
		accordion.WithDefaultTitle(a.cfg.UI.DefaultTitle),
		accordion.WithSampleData(sampleData),
	)
}

// saveSort persists sort changes into the config file.
func (a *app) saveSort(s accordion.Settings) error {
	a.cfg.Sort = config.SortConfig{Key: s.SortKey, Ascending: s.Ascending}
	path := a.configPath()
	if path == "" {
		return fmt.Errorf("cannot determine config directory")
	}
	return config.SaveTo(a.cfg, path)
}

// withList opens the store and the list, runs fn, and closes the store.
func (a *app) withList(ctx context.Context, fn func(list *accordion.Model) error) error {
	store, _, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	list, err := a.openList(ctx, store, false)
	if err != nil {
		return err
	}
	return fn(list)
}
