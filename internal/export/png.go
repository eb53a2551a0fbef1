// Package export renders recorded runs to image files.
package export

import (
	"bufio"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/san-kum/longsim/internal/sim"
)

var ErrNoData = errors.New("export: no finite data to plot")

// Chart is one line plot of a run signal against time.
type Chart struct {
	File   string
	Title  string
	YLabel string
	Values func(*sim.Result) []float64
}

// DefaultCharts are written by SaveRunPlots.
var DefaultCharts = []Chart{
	{File: "position.png", Title: "Position x(t)", YLabel: "x (m)", Values: (*sim.Result).Positions},
	{File: "velocity.png", Title: "Velocity v(t)", YLabel: "v (m/s)", Values: (*sim.Result).Velocities},
	{File: "acceleration.png", Title: "Acceleration a(t)", YLabel: "a (m/s²)", Values: (*sim.Result).Accelerations},
	{File: "engine_speed.png", Title: "Engine Speed ω_e(t)", YLabel: "ω_e (rad/s)", Values: (*sim.Result).EngineSpeeds},
	{File: "throttle.png", Title: "Throttle", YLabel: "throttle", Values: (*sim.Result).Throttles},
}

func limitedTicker(maxLabels int, labelFmt string) plot.Ticker {
	if maxLabels < 2 {
		maxLabels = 2
	}
	return plot.TickerFunc(func(min, max float64) []plot.Tick {
		if math.IsNaN(min) || math.IsNaN(max) || math.IsInf(min, 0) || math.IsInf(max, 0) {
			return nil
		}
		if min == max {
			return []plot.Tick{{Value: min, Label: fmt.Sprintf(labelFmt, min)}}
		}
		step := (max - min) / float64(maxLabels-1)
		ticks := make([]plot.Tick, 0, maxLabels)
		for i := 0; i < maxLabels; i++ {
			v := min + float64(i)*step
			ticks = append(ticks, plot.Tick{Value: v, Label: fmt.Sprintf(labelFmt, v)})
		}
		return ticks
	})
}

func stylePlot(p *plot.Plot) {
	p.Title.TextStyle.Font.Size = vg.Points(18)
	p.Title.Padding = vg.Points(10)

	p.X.Label.TextStyle.Font.Size = vg.Points(14)
	p.Y.Label.TextStyle.Font.Size = vg.Points(14)
	p.X.Padding = vg.Points(10)
	p.Y.Padding = vg.Points(10)

	p.X.Tick.Label.Font.Size = vg.Points(11)
	p.Y.Tick.Label.Font.Size = vg.Points(11)

	p.X.Tick.Marker = limitedTicker(9, "%.1f")
	p.Y.Tick.Marker = limitedTicker(9, "%.2f")
	p.Add(plotter.NewGrid())
}

// LinePlot builds a styled plot of ys against xs. Non-finite points are
// dropped.
func LinePlot(title, xlabel, ylabel string, xs, ys []float64) (*plot.Plot, error) {
	if len(xs) != len(ys) {
		return nil, fmt.Errorf("export: %d x values for %d y values", len(xs), len(ys))
	}

	pts := make(plotter.XYs, 0, len(xs))
	for i := range xs {
		if math.IsNaN(ys[i]) || math.IsInf(ys[i], 0) {
			continue
		}
		pts = append(pts, plotter.XY{X: xs[i], Y: ys[i]})
	}
	if len(pts) == 0 {
		return nil, ErrNoData
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xlabel
	p.Y.Label.Text = ylabel
	stylePlot(p)

	line, err := plotter.NewLine(pts)
	if err != nil {
		return nil, err
	}
	line.LineStyle.Width = vg.Points(2)
	p.Add(line)
	return p, nil
}

// SavePNG writes p at the given size in inches and dpi.
func SavePNG(p *plot.Plot, widthIn, heightIn float64, dpi int, filename string) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return fmt.Errorf("cannot create directory: %w", err)
	}
	c := vgimg.NewWith(
		vgimg.UseWH(vg.Length(widthIn)*vg.Inch, vg.Length(heightIn)*vg.Inch),
		vgimg.UseDPI(dpi),
	)
	p.Draw(draw.New(c))

	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("cannot create png: %w", err)
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	if _, err := (vgimg.PngCanvas{Canvas: c}).WriteTo(bw); err != nil {
		return fmt.Errorf("cannot write png: %w", err)
	}
	return bw.Flush()
}

// SaveRunPlots writes one PNG per chart into dir and returns the paths.
func SaveRunPlots(dir string, r *sim.Result, charts []Chart, dpi int) ([]string, error) {
	times := r.Times()
	paths := make([]string, 0, len(charts))
	for _, c := range charts {
		p, err := LinePlot(c.Title, "time (s)", c.YLabel, times, c.Values(r))
		if err != nil {
			return paths, fmt.Errorf("%s: %w", c.File, err)
		}
		path := filepath.Join(dir, c.File)
		if err := SavePNG(p, 8, 5, dpi, path); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}
