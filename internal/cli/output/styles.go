package output

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Styles holds the lipgloss styles used for terminal output.
type Styles struct {
	Header1 lipgloss.Style
	Header2 lipgloss.Style
	Bold    lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style

	// Diff lines
	Added   lipgloss.Style
	Removed lipgloss.Style
	Hunk    lipgloss.Style

	// Status icons; Value() is the bare icon.
	StatusSuccess lipgloss.Style
	StatusFailed  lipgloss.Style
	StatusSkipped lipgloss.Style
	StatusPending lipgloss.Style
}

// NewStyles builds styles bound to w. Without a terminal the styles carry
// no colors.
func NewStyles(w io.Writer, isTTY bool) *Styles {
	r := lipgloss.NewRenderer(w)
	s := &Styles{
		Header1: r.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		Header2: r.NewStyle().Bold(true),
		Bold:    r.NewStyle().Bold(true),
		Muted:   r.NewStyle().Foreground(lipgloss.Color("8")),
		Success: r.NewStyle().Foreground(lipgloss.Color("10")),
		Warning: r.NewStyle().Foreground(lipgloss.Color("11")),
		Error:   r.NewStyle().Foreground(lipgloss.Color("9")),

		Added:   r.NewStyle().Foreground(lipgloss.Color("10")),
		Removed: r.NewStyle().Foreground(lipgloss.Color("9")),
		Hunk:    r.NewStyle().Foreground(lipgloss.Color("14")),

		StatusSuccess: r.NewStyle().Foreground(lipgloss.Color("10")).SetString("✓"),
		StatusFailed:  r.NewStyle().Foreground(lipgloss.Color("9")).SetString("✗"),
		StatusSkipped: r.NewStyle().Foreground(lipgloss.Color("8")).SetString("-"),
		StatusPending: r.NewStyle().Foreground(lipgloss.Color("11")).SetString("•"),
	}
	if !isTTY {
		plain := r.NewStyle()
		s.Header1, s.Header2, s.Bold, s.Muted = plain, plain, plain, plain
		s.Success, s.Warning, s.Error = plain, plain, plain
		s.Added, s.Removed, s.Hunk = plain, plain, plain
		s.StatusSuccess = plain.SetString("✓")
		s.StatusFailed = plain.SetString("✗")
		s.StatusSkipped = plain.SetString("-")
		s.StatusPending = plain.SetString("•")
	}
	return s
}
