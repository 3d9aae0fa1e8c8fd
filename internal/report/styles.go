package report

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Palette
var (
	colorPass  = lipgloss.Color("#9ece6a")
	colorFail  = lipgloss.Color("#f7768e")
	colorWarn  = lipgloss.Color("#e0af68")
	colorMuted = lipgloss.Color("#565f89")
	colorTitle = lipgloss.Color("#7aa2f7")
)

type styles struct {
	pass    lipgloss.Style
	fail    lipgloss.Style
	warn    lipgloss.Style
	muted   lipgloss.Style
	title   lipgloss.Style
	code    lipgloss.Style
	summary lipgloss.Style
}

// newStyles builds styles bound to w. With color off every style is plain.
func newStyles(w io.Writer, color bool) styles {
	r := lipgloss.NewRenderer(w)
	base := r.NewStyle()
	if !color {
		return styles{
			pass: base, fail: base, warn: base, muted: base,
			title: base, code: base, summary: base,
		}
	}
	return styles{
		pass:    base.Foreground(colorPass).Bold(true),
		fail:    base.Foreground(colorFail).Bold(true),
		warn:    base.Foreground(colorWarn),
		muted:   base.Foreground(colorMuted),
		title:   base.Foreground(colorTitle).Bold(true),
		code:    base.Bold(true),
		summary: base.Border(lipgloss.RoundedBorder()).BorderForeground(colorMuted).Padding(0, 1),
	}
}
