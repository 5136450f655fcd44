package ui

import (
	"fmt"
	"os"

	"github.com/fatih/color"
)

// Renderer handles status output on stderr, keeping stdout clean for the
// report itself.
type Renderer struct{}

// NewRenderer creates a new Renderer instance
func NewRenderer() *Renderer {
	return &Renderer{}
}

// Colors
var (
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	dim    = color.New(color.Faint).SprintFunc()
)

// Success prints a success message
func (r *Renderer) Success(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintf(os.Stderr, "%s %s\n", green("✓"), msg)
}

// Error prints an error message
func (r *Renderer) Error(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintf(os.Stderr, "%s %s\n", red("✗"), msg)
}

// Warning prints a warning message
func (r *Renderer) Warning(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintf(os.Stderr, "%s %s\n", yellow("!"), msg)
}

// Info prints an info message
func (r *Renderer) Info(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintf(os.Stderr, "  %s\n", msg)
}

// Dim prints dimmed/secondary text
func (r *Renderer) Dim(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintf(os.Stderr, "  %s\n", dim(msg))
}
