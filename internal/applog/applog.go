// Package applog is a thin wrapper over the standard log package that
// tags every line with a component name, the way the teacher's main.go
// and internal/janitor package do ad hoc with string prefixes.
package applog

import (
	"fmt"
	"log"
	"sync/atomic"
)

// verboseEnabled gates every Logger's Debug output process-wide. Most
// loggers are package-level vars created at init time, before main has
// parsed config, so verbosity can't live on the Logger value itself — it's
// set once, from main, via SetVerbose.
var verboseEnabled atomic.Bool

// SetVerbose enables or disables Debug-level logging for every Logger in
// the process. main wires this from cfg.IsLocal(), matching spec.md's
// APP_ENV=local debug/local mode.
func SetVerbose(v bool) {
	verboseEnabled.Store(v)
}

// Logger prefixes every line with a bracketed component tag, e.g. "[Session]".
type Logger struct {
	tag string
}

// New returns a Logger tagged with component.
func New(component string) *Logger {
	return &Logger{tag: "[" + component + "]"}
}

// Info logs at info level, unconditionally.
func (l *Logger) Info(format string, args ...any) {
	log.Printf("%s %s", l.tag, fmt.Sprintf(format, args...))
}

// Error logs at error level, unconditionally.
func (l *Logger) Error(format string, args ...any) {
	log.Printf("%s ERROR: %s", l.tag, fmt.Sprintf(format, args...))
}

// Debug logs only when SetVerbose(true) has been called — used for the
// APP_ENV=local debug/local mode spec.md mentions.
func (l *Logger) Debug(format string, args ...any) {
	if !verboseEnabled.Load() {
		return
	}
	log.Printf("%s DEBUG: %s", l.tag, fmt.Sprintf(format, args...))
}
