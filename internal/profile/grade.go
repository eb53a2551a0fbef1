package profile

import (
	"errors"
	"math"
)

var ErrSegment = errors.New("profile: grade segment needs a positive run")

// Slope describes one straight road section by its vertical rise over its
// horizontal run. Negative rise is downhill.
type Slope struct {
	Rise float64 `yaml:"rise" json:"rise"`
	Run  float64 `yaml:"run" json:"run"`
}

// Angle returns atan(rise/run).
func (s Slope) Angle() float64 { return math.Atan(s.Rise / s.Run) }

// Length returns the distance travelled along the section.
func (s Slope) Length() float64 { return math.Sqrt(s.Run*s.Run + s.Rise*s.Rise) }

// Grade is a road made of consecutive slopes followed by flat ground.
// Position is measured along the road surface. A position exactly on a
// section boundary belongs to the earlier section.
type Grade struct {
	ends   []float64
	angles []float64
}

func NewGrade(slopes ...Slope) (*Grade, error) {
	g := &Grade{
		ends:   make([]float64, len(slopes)),
		angles: make([]float64, len(slopes)),
	}
	var end float64
	for i, s := range slopes {
		if !(s.Run > 0) {
			return nil, ErrSegment
		}
		end += s.Length()
		g.ends[i] = end
		g.angles[i] = s.Angle()
	}
	return g, nil
}

func MustGrade(slopes ...Slope) *Grade {
	g, err := NewGrade(slopes...)
	if err != nil {
		panic(err)
	}
	return g
}

func (g *Grade) At(x float64) float64 {
	for i, end := range g.ends {
		if x <= end {
			return g.angles[i]
		}
	}
	return 0
}

// Ends returns the road position at which each section stops.
func (g *Grade) Ends() []float64 {
	cp := make([]float64, len(g.ends))
	copy(cp, g.ends)
	return cp
}

// Flat is a level road.
type Flat struct{}

func (Flat) At(float64) float64 { return 0 }
