package accordion

import (
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/vanderheijden86/accordion/pkg/debug"
	"github.com/vanderheijden86/accordion/pkg/model"
)

// Settings is the process-wide list configuration: the active sort key and
// direction. The caller loads it, hands it in, and persists it through the
// save hook every time it changes.
type Settings struct {
	SortKey   model.SortKey `yaml:"key" json:"key"`
	Ascending bool          `yaml:"ascending" json:"ascending"`
}

// DefaultSettings returns manual order, ascending.
func DefaultSettings() Settings {
	return Settings{SortKey: model.SortManual, Ascending: true}
}

// Direction returns the sort direction the settings describe.
func (s Settings) Direction() model.SortDirection {
	return model.DirectionOf(s.Ascending)
}

// Option configures a Model.
type Option func(*Model)

// WithSettings sets the initial sort settings.
func WithSettings(s Settings) Option {
	return func(m *Model) { m.settings = s }
}

// WithSaveSettings registers the hook called with the new settings on every
// sort change.
func WithSaveSettings(fn func(Settings) error) Option {
	return func(m *Model) { m.saveSettings = fn }
}

// WithLogger sets the logger. Defaults to the process logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(m *Model) {
		if l != nil {
			m.log = l
		}
	}
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Model) {
		if now != nil {
			m.now = now
		}
	}
}

// WithIDGenerator overrides the id source (UUIDv4 by default).
func WithIDGenerator(fn func() string) Option {
	return func(m *Model) {
		if fn != nil {
			m.newID = fn
		}
	}
}

// WithDefaultTitle sets the title of folders added without one.
func WithDefaultTitle(title string) Option {
	return func(m *Model) {
		if title != "" {
			m.defaultTitle = title
		}
	}
}

// WithSampleData seeds the sample folders when the first load finds an
// empty store.
func WithSampleData(enabled bool) Option {
	return func(m *Model) { m.sampleData = enabled }
}

func defaults(m *Model) {
	m.settings = DefaultSettings()
	m.log = debug.Logger()
	m.now = time.Now
	m.newID = func() string { return uuid.NewString() }
	m.defaultTitle = model.DefaultTitle
}
