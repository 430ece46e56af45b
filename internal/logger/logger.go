// Package logger provides verbose logging for the htmltab CLI.
// When verbose mode is enabled via the --verbose flag, debug messages
// describing acquisition, extraction and table selection are printed
// to stderr. Prefixes are coloured when stderr is a terminal.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var (
	mu      sync.Mutex
	verbose bool
	output  io.Writer = os.Stderr
	styled            = isTerminal(os.Stderr)
)

var (
	debugStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	sectionStyle = lipgloss.NewStyle().Bold(true)
)

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.Lock()
	defer mu.Unlock()
	return verbose
}

// SetOutput sets the output writer for verbose logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
	styled = isTerminal(w)
}

// Debug prints a message if verbose mode is enabled.
func Debug(format string, args ...any) {
	logf(debugStyle, "[DEBUG]", format, args...)
}

// Info prints an informational message if verbose mode is enabled.
func Info(format string, args ...any) {
	logf(infoStyle, "[INFO]", format, args...)
}

// Warn prints a warning message if verbose mode is enabled.
func Warn(format string, args ...any) {
	logf(warnStyle, "[WARN]", format, args...)
}

// Section prints a section header if verbose mode is enabled.
func Section(name string) {
	mu.Lock()
	defer mu.Unlock()
	if !verbose {
		return
	}
	header := fmt.Sprintf("=== %s ===", name)
	if styled {
		header = sectionStyle.Render(header)
	}
	fmt.Fprintf(output, "\n%s\n", header)
}

// Timed returns a function that logs how long a stage took when called.
//
//	defer logger.Timed("extract")()
func Timed(stage string) func() {
	start := time.Now()
	return func() {
		Debug("%s took %s", stage, time.Since(start).Round(time.Microsecond))
	}
}

func logf(style lipgloss.Style, prefix, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	if !verbose {
		return
	}
	if styled {
		prefix = style.Render(prefix)
	}
	fmt.Fprintf(output, prefix+" "+format+"\n", args...)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
