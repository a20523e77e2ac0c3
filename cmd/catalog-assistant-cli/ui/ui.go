// Package ui provides terminal output helpers for the catalog assistant CLI.
package ui

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
)

var verboseFlag bool

// Init applies the color and verbose settings.
func Init(noColor, verbose bool) {
	verboseFlag = verbose
	if noColor {
		color.NoColor = true
	}
}

var (
	sectionColor = color.New(color.FgCyan, color.Bold)
	successColor = color.New(color.FgGreen)
	errorColor   = color.New(color.FgRed)
)

// Section displays a section header.
func Section(title string) {
	fmt.Fprintln(os.Stdout)
	sectionColor.Fprintln(os.Stdout, title)
	fmt.Fprintf(os.Stdout, "%s\n\n", strings.Repeat("=", len(title)))
}

// Info displays an informational message.
func Info(format string, args ...interface{}) {
	fmt.Fprintf(os.Stdout, "ℹ %s\n", fmt.Sprintf(format, args...))
}

// Verbose displays a message only when verbose output is enabled.
func Verbose(format string, args ...interface{}) {
	if verboseFlag {
		fmt.Fprintf(os.Stdout, "  %s\n", fmt.Sprintf(format, args...))
	}
}

// Success displays a success message.
func Success(format string, args ...interface{}) {
	successColor.Fprintf(os.Stdout, "✓ %s\n", fmt.Sprintf(format, args...))
}

// Error displays an error message to stderr.
func Error(format string, args ...interface{}) {
	errorColor.Fprintf(os.Stderr, "✗ %s\n", fmt.Sprintf(format, args...))
}

// KeyValue displays a key-value pair.
func KeyValue(key, value string) {
	fmt.Fprintf(os.Stdout, "  %s: %s\n", key, value)
}
