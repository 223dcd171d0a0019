// Package ui provides terminal styling for trc CLI output.
package ui

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/tracehq/trace/internal/types"
)

// Semantic colors, adaptive to light/dark terminals.
var (
	ColorOpen = lipgloss.AdaptiveColor{
		Light: "#399ee6",
		Dark:  "#59c2ff",
	}
	ColorProgress = lipgloss.AdaptiveColor{
		Light: "#f2ae49",
		Dark:  "#ffb454",
	}
	ColorClosed = lipgloss.AdaptiveColor{
		Light: "#86b300",
		Dark:  "#c2d94c",
	}
	ColorBlocked = lipgloss.AdaptiveColor{
		Light: "#f07171",
		Dark:  "#f07178",
	}
	ColorMuted = lipgloss.AdaptiveColor{
		Light: "#828c99",
		Dark:  "#6c7680",
	}
)

var (
	OpenStyle     = lipgloss.NewStyle().Foreground(ColorOpen)
	ProgressStyle = lipgloss.NewStyle().Foreground(ColorProgress)
	ClosedStyle   = lipgloss.NewStyle().Foreground(ColorClosed)
	BlockedStyle  = lipgloss.NewStyle().Foreground(ColorBlocked)
	MutedStyle    = lipgloss.NewStyle().Foreground(ColorMuted)
	HeaderStyle   = lipgloss.NewStyle().Bold(true)
)

// Status glyphs.
const (
	GlyphOpen       = "○"
	GlyphInProgress = "◐"
	GlyphClosed     = "●"
	GlyphBlocked    = "✗"
)

// Tree drawing characters.
const (
	TreeBranch = "├── "
	TreeLast   = "└── "
	TreePipe   = "│   "
	TreeSpace  = "    "
)

func init() {
	// Styled output only when stdout is a terminal; piped output stays plain.
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

// StatusGlyph returns the glyph for a status, styled.
func StatusGlyph(s types.Status) string {
	switch s {
	case types.StatusInProgress:
		return ProgressStyle.Render(GlyphInProgress)
	case types.StatusClosed:
		return ClosedStyle.Render(GlyphClosed)
	case types.StatusBlocked:
		return BlockedStyle.Render(GlyphBlocked)
	default:
		return OpenStyle.Render(GlyphOpen)
	}
}

// StatusLabel returns the status name, styled.
func StatusLabel(s types.Status) string {
	switch s {
	case types.StatusInProgress:
		return ProgressStyle.Render(string(s))
	case types.StatusClosed:
		return ClosedStyle.Render(string(s))
	case types.StatusBlocked:
		return BlockedStyle.Render(string(s))
	default:
		return OpenStyle.Render(string(s))
	}
}

// PriorityLabel renders a priority as P0..P4, with P0 and P1 highlighted.
func PriorityLabel(p int) string {
	label := fmt.Sprintf("P%d", p)
	if p <= 1 {
		return BlockedStyle.Render(label)
	}
	if p >= 4 {
		return MutedStyle.Render(label)
	}
	return label
}

// IssueLine formats the one-line list representation of an issue.
func IssueLine(issue *types.Issue) string {
	return fmt.Sprintf("%s %-24s %s %s",
		StatusGlyph(issue.Status), issue.ID, PriorityLabel(issue.Priority), issue.Title)
}
