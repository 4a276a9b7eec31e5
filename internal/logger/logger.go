// Package logger provides verbose logging for the raildocs CLI.
// Debug, Info and Section output is gated on the --verbose flag; Warn is
// always printed so degradation (fallback mode, failed chunks, storage
// errors) stays visible. Everything goes to stderr, keeping stdout clean
// for command output.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
)

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr
)

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// IsVerbose reports whether verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput redirects log output, os.Stderr by default. Used in tests.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// Debug prints a pipeline detail message in verbose mode.
func Debug(format string, args ...any) {
	write(true, "[DEBUG] "+format, args)
}

// Info prints a pipeline progress message in verbose mode.
func Info(format string, args ...any) {
	write(true, "[INFO] "+format, args)
}

// Warn prints a degradation message. Warnings are not gated on verbose
// mode: a silently degraded result would be indistinguishable from a
// full one.
func Warn(format string, args ...any) {
	write(false, "[WARN] "+format, args)
}

// Section prints a section header in verbose mode.
func Section(name string) {
	write(true, "\n=== %s ===", []any{name})
}

func write(gated bool, format string, args []any) {
	mu.RLock()
	defer mu.RUnlock()
	if gated && !verbose {
		return
	}
	fmt.Fprintf(output, format+"\n", args...)
}
