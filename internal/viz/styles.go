package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

// styles are the lipgloss styles derived from one theme.
type styles struct {
	theme   Theme
	title   lipgloss.Style
	label   lipgloss.Style
	value   lipgloss.Style
	muted   lipgloss.Style
	playing lipgloss.Style
	paused  lipgloss.Style
	err     lipgloss.Style
	panel   lipgloss.Style
	active  lipgloss.Style
	help    lipgloss.Style
	graph   lipgloss.Style
}

func newStyles(t Theme) styles {
	return styles{
		theme:   t,
		title:   lipgloss.NewStyle().Bold(true).Foreground(t.Title),
		label:   lipgloss.NewStyle().Foreground(t.Muted).Width(12),
		value:   lipgloss.NewStyle().Foreground(t.Text),
		muted:   lipgloss.NewStyle().Foreground(t.Muted),
		playing: lipgloss.NewStyle().Bold(true).Foreground(t.Playing),
		paused:  lipgloss.NewStyle().Bold(true).Foreground(t.Paused),
		err:     lipgloss.NewStyle().Bold(true).Foreground(t.Error),
		panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Border).
			Padding(0, 1),
		active: lipgloss.NewStyle().Bold(true).Foreground(t.Accent),
		help:   lipgloss.NewStyle().Foreground(t.Muted).Italic(true).MarginTop(1),
		graph:  lipgloss.NewStyle().Foreground(t.Title).Padding(1, 0),
	}
}

// GradientText colors each rune of text along a blend from one color to
// another.
func GradientText(text string, from, to lipgloss.Color) string {
	runes := []rune(text)
	if len(runes) == 0 {
		return ""
	}
	a, errA := colorful.Hex(string(from))
	b, errB := colorful.Hex(string(to))
	if errA != nil || errB != nil {
		return lipgloss.NewStyle().Foreground(from).Render(text)
	}

	var sb strings.Builder
	for i, r := range runes {
		t := 0.0
		if len(runes) > 1 {
			t = float64(i) / float64(len(runes)-1)
		}
		c := a.BlendLab(b, t).Clamped()
		sb.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(c.Hex())).Render(string(r)))
	}
	return sb.String()
}

// ProgressBar draws a bar of width cells filled to p in [0, 1].
func ProgressBar(p float64, width int, t Theme) string {
	filled := int(p * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	bar := GradientText(strings.Repeat("█", filled), t.From, t.To)
	return bar + lipgloss.NewStyle().Foreground(t.Muted).Render(strings.Repeat("░", width-filled))
}

var sparkChars = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Sparkline draws the last width values, scaled between their min and max.
func Sparkline(values []float64, width int) string {
	if len(values) == 0 {
		return strings.Repeat("─", width)
	}
	if len(values) > width {
		values = values[len(values)-width:]
	}

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	rng := hi - lo
	if rng == 0 {
		rng = 1
	}

	var sb strings.Builder
	for _, v := range values {
		idx := int((v - lo) / rng * float64(len(sparkChars)-1))
		idx = max(0, min(idx, len(sparkChars)-1))
		sb.WriteRune(sparkChars[idx])
	}
	return sb.String()
}

// Separator is a muted rule with a centered diamond.
func Separator(width int, t Theme) string {
	if width < 8 {
		width = 8
	}
	mid := width / 2
	line := strings.Repeat("─", mid-2) + " ◆ " + strings.Repeat("─", width-mid-2)
	return lipgloss.NewStyle().Foreground(t.Muted).Render(line)
}
