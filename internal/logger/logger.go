// Package logger is the extraction pipeline's diagnostic channel.
// Debug and info lines are gated behind the --verbose flag; warnings
// always reach the user, since a truncated or abandoned source changes
// how much trust the results deserve. Everything goes to stderr so
// piped fragment output stays clean.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
)

const (
	levelDebug = "DEBUG"
	levelInfo  = "INFO"
	levelWarn  = "WARN"
)

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr
)

// SetVerbose enables or disables the debug and info levels.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// IsVerbose reports whether the debug and info levels are enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput redirects log lines, primarily for tests. Defaults to
// os.Stderr.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// Debug logs fine-grained pipeline detail: per-file skips, decrypt
// attempts, streaming offsets. Verbose only.
func Debug(format string, args ...any) {
	emit(levelDebug, true, format, args...)
}

// Info logs run-level milestones. Verbose only.
func Info(format string, args ...any) {
	emit(levelInfo, true, format, args...)
}

// Warn logs conditions that degrade results, such as a chunk ceiling
// cutting a source short. Always printed.
func Warn(format string, args ...any) {
	emit(levelWarn, false, format, args...)
}

// Section prints a run phase header in verbose mode.
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		fmt.Fprintf(output, "\n=== %s ===\n", name)
	}
}

func emit(level string, gated bool, format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if gated && !verbose {
		return
	}
	fmt.Fprintf(output, "["+level+"] "+format+"\n", args...)
}
