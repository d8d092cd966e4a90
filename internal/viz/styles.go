package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func headerStyle() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(CurrentTheme.Secondary).MarginBottom(1)
}

func labelStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(CurrentTheme.Muted).Width(12)
}

func valueStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(CurrentTheme.Primary).Bold(true)
}

func helpStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(CurrentTheme.Muted).Italic(true).MarginTop(1)
}

// ProgressBar renders done/total as a bar of the given width.
func ProgressBar(fraction float64, width int) string {
	filled := int(fraction * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	color := CurrentTheme.Warning
	if fraction >= 1 {
		color = CurrentTheme.Success
	}
	return lipgloss.NewStyle().Foreground(color).Render(bar)
}

// Sparkline renders the last `width` values, colored by distance from target.
func Sparkline(values []float64, target float64, width int) string {
	if len(values) == 0 {
		return strings.Repeat("─", width)
	}
	if len(values) > width {
		values = values[len(values)-width:]
	}

	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}

	near := lipgloss.NewStyle().Foreground(CurrentTheme.Success)
	far := lipgloss.NewStyle().Foreground(CurrentTheme.Error)

	var sb strings.Builder
	for _, v := range values {
		idx := int((v - lo) / span * float64(len(chars)-1))
		c := string(chars[idx])
		if v-target < 1 && target-v < 1 {
			sb.WriteString(near.Render(c))
		} else {
			sb.WriteString(far.Render(c))
		}
	}
	return sb.String()
}
