package tui

import (
	"github.com/muesli/termenv"

	"github.com/aretw0/gantry/pkg/domain"
)

// statusColors maps terminal foreground colors onto run statuses.
var statusColors = map[domain.Status]string{
	domain.StatusQueued:    "#9ca3af",
	domain.StatusRunning:   "#fbbf24",
	domain.StatusSucceeded: "#34d399",
	domain.StatusFailed:    "#f87171",
	domain.StatusCanceled:  "#a78bfa",
	domain.StatusSkipped:   "#6b7280",
}

// statusSymbols are single-rune markers shown next to job and step names.
var statusSymbols = map[domain.Status]string{
	domain.StatusQueued:    "·",
	domain.StatusRunning:   "»",
	domain.StatusSucceeded: "✓",
	domain.StatusFailed:    "✗",
	domain.StatusCanceled:  "⊘",
	domain.StatusSkipped:   "-",
}

// FormatStatus returns a colored status string for terminal output.
// On dumb terminals termenv degrades to plain text.
func FormatStatus(s domain.Status) string {
	p := termenv.ColorProfile()
	color, ok := statusColors[s]
	if !ok {
		return string(s)
	}
	return termenv.String(string(s)).Foreground(p.Color(color)).String()
}

// StatusSymbol returns a colored one-rune marker for the status.
func StatusSymbol(s domain.Status) string {
	symbol, ok := statusSymbols[s]
	if !ok {
		symbol = "?"
	}
	p := termenv.ColorProfile()
	color, ok := statusColors[s]
	if !ok {
		return symbol
	}
	return termenv.String(symbol).Foreground(p.Color(color)).String()
}
