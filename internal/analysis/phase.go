package analysis

import (
	"math"
	"strings"
)

// Point is one (x, y) pair of a phase portrait.
type Point struct{ X, Y float64 }

// PhasePortrait holds two signals plotted against each other, e.g. velocity
// against engine speed.
type PhasePortrait struct {
	XLabel, YLabel string
	Points         []Point
}

// NewPhasePortrait pairs xs with ys, skipping pairs with a non-finite member.
func NewPhasePortrait(xLabel string, xs []float64, yLabel string, ys []float64) *PhasePortrait {
	n := len(xs)
	if len(ys) < n {
		n = len(ys)
	}
	p := &PhasePortrait{XLabel: xLabel, YLabel: yLabel, Points: make([]Point, 0, n)}
	for i := 0; i < n; i++ {
		if !finite(xs[i]) || !finite(ys[i]) {
			continue
		}
		p.Points = append(p.Points, Point{X: xs[i], Y: ys[i]})
	}
	return p
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// ASCII renders the portrait on a width x height character grid.
func (p *PhasePortrait) ASCII(width, height int) string {
	if p == nil || len(p.Points) == 0 || width < 2 || height < 2 {
		return ""
	}

	minX, maxX := p.Points[0].X, p.Points[0].X
	minY, maxY := p.Points[0].Y, p.Points[0].Y
	for _, pt := range p.Points {
		minX = math.Min(minX, pt.X)
		maxX = math.Max(maxX, pt.X)
		minY = math.Min(minY, pt.Y)
		maxY = math.Max(maxY, pt.Y)
	}

	// Pad 10% on each side.
	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	for _, pt := range p.Points {
		col := int((pt.X - minX) / rangeX * float64(width-1))
		row := height - 1 - int((pt.Y-minY)/rangeY*float64(height-1))
		if row >= 0 && row < height && col >= 0 && col < width {
			canvas[row][col] = '•'
		}
	}

	// Zero axes where they cross the visible area.
	if minX <= 0 && maxX >= 0 {
		col := int((0 - minX) / rangeX * float64(width-1))
		for row := 0; row < height; row++ {
			if canvas[row][col] == ' ' {
				canvas[row][col] = '│'
			}
		}
	}
	if minY <= 0 && maxY >= 0 {
		row := height - 1 - int((0-minY)/rangeY*float64(height-1))
		for col := 0; col < width; col++ {
			if canvas[row][col] == ' ' {
				canvas[row][col] = '─'
			}
		}
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}
