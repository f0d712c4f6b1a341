// Package util provides small text helpers for terminal output.
package util

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Ellipsis marks text that was cut short.
const Ellipsis = "…"

// FitWidth shortens s to at most width terminal columns, ending it with
// Ellipsis when something was cut. Escape sequences take no room and wide
// characters count as two columns. A non-positive width yields "".
func FitWidth(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= width {
		return s
	}
	return ansi.Truncate(s, width, Ellipsis)
}

// PadRight extends s with spaces to width terminal columns. Strings that are
// already wider are returned unchanged.
func PadRight(s string, width int) string {
	pad := width - lipgloss.Width(s)
	if pad <= 0 {
		return s
	}
	return s + strings.Repeat(" ", pad)
}
