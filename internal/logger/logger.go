package logger

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
)

const (
	colorReset  = "\033[0m"
	colorCyan   = "\033[36m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorRed    = "\033[31m"
	colorBold   = "\033[1m"
	colorDim    = "\033[2m"
)

// useColor is evaluated per call because tests redirect os.Stdout.
func useColor() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

func paint(color, s string) string {
	if !useColor() {
		return s
	}
	return color + s + colorReset
}

func emit(color, symbol, tag, msg string) {
	fmt.Fprintf(os.Stdout, "%s %s %s\n", paint(color, symbol), paint(colorBold, "["+tag+"]"), msg)
}

// Info logs an informational message with a tag.
func Info(tag, msg string) {
	emit(colorCyan, "•", tag, msg)
}

// Success logs a success message with a tag.
func Success(tag, msg string) {
	emit(colorGreen, "✓", tag, msg)
}

// Warn logs a warning message with a tag.
func Warn(tag, msg string) {
	emit(colorYellow, "!", tag, msg)
}

// Error logs an error message with a tag.
func Error(tag, msg string) {
	emit(colorRed, "✗", tag, msg)
}

// Banner prints the startup banner with the build version.
func Banner(version string) {
	if version == "" {
		version = "dev"
	}
	fmt.Fprintln(os.Stdout, paint(colorCyan, "─────────────────────────────────────"))
	fmt.Fprintf(os.Stdout, "  %s %s\n", paint(colorBold, "eve-refinery"), paint(colorDim, version))
	fmt.Fprintln(os.Stdout, paint(colorCyan, "─────────────────────────────────────"))
}

// Section prints a section header, used before a block of Stats lines.
func Section(title string) {
	fmt.Fprintf(os.Stdout, "\n%s\n", paint(colorBold, title))
}

// Stats prints an aligned key/value statistics line.
func Stats(key string, value interface{}) {
	fmt.Fprintf(os.Stdout, "  %-18s %v\n", key+":", value)
}
