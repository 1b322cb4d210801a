// Package debug provides the diagnostic log for tv.
//
// Verbose logging is enabled by setting the TV_DEBUG environment variable:
//
//	TV_DEBUG=1 tv --export chart.svg
//
// When enabled, Log and friends write to stderr with timestamps; when
// disabled they are no-ops. Failure reports written with Failure are always
// emitted, since a failed data load must reach the user even without
// TV_DEBUG.
//
// Usage:
//
//	import "github.com/vanderheijden86/tremorview/pkg/debug"
//
//	func render() {
//	    defer debug.LogEnterExit("render")()
//	    debug.Log("rendering %d bars", n)
//	}
package debug

import (
	"io"
	"log"
	"os"
	"sync"
	"time"
)

const prefix = "[TV_DEBUG] "

var (
	mu      sync.Mutex
	enabled bool
	logger  = log.New(os.Stderr, prefix, log.Ltime|log.Lmicroseconds)
)

func init() {
	enabled = os.Getenv("TV_DEBUG") != ""
}

// Enabled returns whether verbose logging is enabled.
func Enabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return enabled
}

// SetEnabled allows programmatic control of verbose logging.
func SetEnabled(e bool) {
	mu.Lock()
	enabled = e
	mu.Unlock()
}

// SetOutput redirects the diagnostic log. The TUI points it at a file so
// log lines do not corrupt the alternate screen.
func SetOutput(w io.Writer) {
	mu.Lock()
	logger = log.New(w, prefix, log.Ltime|log.Lmicroseconds)
	mu.Unlock()
}

func current() (*log.Logger, bool) {
	mu.Lock()
	defer mu.Unlock()
	return logger, enabled
}

// Log writes a debug message if debug logging is enabled.
func Log(format string, args ...any) {
	l, on := current()
	if !on {
		return
	}
	l.Printf(format, args...)
}

// LogTiming writes a timing message if debug logging is enabled.
func LogTiming(name string, d time.Duration) {
	l, on := current()
	if !on {
		return
	}
	l.Printf("%s took %v", name, d)
}

// LogEnterExit logs function entry and exit with timing.
//
//	defer debug.LogEnterExit("aggregate")()
func LogEnterExit(name string) func() {
	l, on := current()
	if !on {
		return func() {}
	}
	l.Printf("-> %s", name)
	start := time.Now()
	return func() {
		l.Printf("<- %s (%v)", name, time.Since(start))
	}
}

// Dump logs a value with its type.
func Dump(name string, v any) {
	l, on := current()
	if !on {
		return
	}
	l.Printf("%s: %T = %+v", name, v, v)
}

// Failure reports an error on the diagnostic channel regardless of TV_DEBUG.
func Failure(context string, err error) {
	if err == nil {
		return
	}
	l, _ := current()
	l.Printf("ERROR %s: %v", context, err)
}
