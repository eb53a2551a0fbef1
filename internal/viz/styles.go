package viz

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/longsim/internal/vehicle"
)

var (
	GlassPanel = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444466")).
			Padding(0, 2)

	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#00ffff"))

	Subtle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666688"))

	StatusRunning = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00ff88"))

	StatusPaused = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ffaa00"))

	Warning = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#ff4444"))

	MetricValue = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00ccff")).
			Bold(true)

	MetricLabel = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888899")).
			Width(14)

	KeyHint = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666688")).
		Italic(true)

	SparkHigh = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ff88"))
	SparkMid  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffcc00"))
	SparkLow  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff4444"))
)

// Metric renders one "label value" line.
func Metric(label string, value float64, unit string) string {
	return MetricLabel.Render(label) + MetricValue.Render(fmt.Sprintf("%10.3f", value)) + " " + Subtle.Render(unit)
}

// StatePanel renders the five state fields and the inputs in a bordered box.
func StatePanel(t float64, s vehicle.State, throttle, incline float64) string {
	lines := []string{
		Title.Render(fmt.Sprintf("t = %.2f s", t)),
		Metric("position", s.X, "m"),
		Metric("velocity", s.V, "m/s"),
		Metric("accel", s.A, "m/s²"),
		Metric("engine speed", s.W, "rad/s"),
		Metric("engine accel", s.WDot, "rad/s²"),
		Metric("throttle", throttle, ""),
		Metric("incline", incline, "rad"),
	}
	if !s.IsValid() {
		lines = append(lines, Warning.Render("state is not finite"))
	}
	return GlassPanel.Render(strings.Join(lines, "\n"))
}

// ProgressBar renders a progress bar colored by completion.
func ProgressBar(percent float64, width int) string {
	filled := int(percent * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)

	if percent > 0.8 {
		return SparkHigh.Render(bar)
	} else if percent > 0.4 {
		return SparkMid.Render(bar)
	}
	return SparkLow.Render(bar)
}
