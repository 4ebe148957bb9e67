// Package debug owns the process logger and the opt-in debug facility.
//
// Debug logging is enabled by setting the ACCORDION_DEBUG environment
// variable:
//
//	ACCORDION_DEBUG=1 accordion list
//
// The process logger writes to stderr at warn level. When debug is enabled
// the level drops to debug and the helpers below start producing output.
// When disabled (default), the helpers are no-ops.
//
// Usage:
//
//	import "github.com/vanderheijden86/accordion/pkg/debug"
//
//	func myFunc() {
//	    defer debug.Trace("myFunc")()
//	    debug.Log("processing %d folders", count)
//	}
package debug

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// EnvVar turns debug logging on when set to any non-empty value.
const EnvVar = "ACCORDION_DEBUG"

var (
	mu      sync.Mutex
	enabled bool
	logger  *logrus.Logger
)

func init() {
	logger = newLogger(os.Stderr)
	if os.Getenv(EnvVar) != "" {
		SetEnabled(true)
	}
}

func newLogger(w io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(logrus.WarnLevel)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "15:04:05.000000",
	})
	return l
}

// Logger returns the process logger. Components take it as a
// logrus.FieldLogger and add their own fields.
func Logger() *logrus.Logger {
	mu.Lock()
	defer mu.Unlock()
	return logger
}

// SetOutput redirects the process logger, e.g. to a file while the
// terminal UI owns the screen.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	logger.SetOutput(w)
}

// Enabled returns whether debug logging is enabled.
func Enabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return enabled
}

// SetEnabled allows programmatic control of debug logging.
func SetEnabled(e bool) {
	mu.Lock()
	defer mu.Unlock()
	enabled = e
	if e {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.WarnLevel)
	}
}

// Log writes a debug message if debug logging is enabled.
// Uses printf-style formatting.
func Log(format string, args ...any) {
	if !Enabled() {
		return
	}
	Logger().Debugf(format, args...)
}

// LogTiming writes a timing message if debug logging is enabled.
func LogTiming(name string, d time.Duration) {
	if !Enabled() {
		return
	}
	Logger().WithField("elapsed", d).Debugf("%s done", name)
}

// Trace logs function entry and exit with timing.
//
//	func myFunc() {
//	    defer debug.Trace("myFunc")()
//	}
func Trace(name string) func() {
	if !Enabled() {
		return func() {}
	}
	Logger().Debugf("-> %s", name)
	start := time.Now()
	return func() {
		Logger().Debugf("<- %s (%v)", name, time.Since(start))
	}
}

// Dump logs a value with its type for debugging complex structures.
func Dump(name string, v any) {
	if !Enabled() {
		return
	}
	Logger().Debugf("%s: %T = %+v", name, v, v)
}

// AssertNoError logs and panics if err is not nil.
// Only active when debug is enabled.
func AssertNoError(err error, context string) {
	if !Enabled() || err == nil {
		return
	}
	Logger().Errorf("ASSERTION FAILED: %s: %v", context, err)
	panic(fmt.Sprintf("debug assertion failed: %s: %v", context, err))
}
