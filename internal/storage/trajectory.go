package storage

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

var ErrTrajectoryLength = errors.New("storage: times and positions differ in length")

// TrajectorySep separates the two columns of a trajectory file.
const TrajectorySep = ", "

// WriteTrajectory writes one "time, position" line per sample, each value in
// %.18e scientific notation. The output is byte-identical to a two-column
// array saved with numpy.savetxt(delimiter=", ") and default fmt.
func WriteTrajectory(w io.Writer, times, positions []float64) error {
	if len(times) != len(positions) {
		return ErrTrajectoryLength
	}

	bw := bufio.NewWriter(w)
	for i := range times {
		if _, err := bw.WriteString(formatSci(times[i]) + TrajectorySep + formatSci(positions[i]) + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ReadTrajectory parses a file written by WriteTrajectory.
func ReadTrajectory(r io.Reader) (times, positions []float64, err error) {
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		parts := strings.Split(text, ",")
		if len(parts) != 2 {
			return nil, nil, fmt.Errorf("trajectory line %d: expected 2 columns, got %d", line, len(parts))
		}
		t, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		if err != nil {
			return nil, nil, fmt.Errorf("trajectory line %d: %w", line, err)
		}
		x, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			return nil, nil, fmt.Errorf("trajectory line %d: %w", line, err)
		}
		times = append(times, t)
		positions = append(positions, x)
	}
	return times, positions, sc.Err()
}

// formatSci matches Python's "%.18e", which spells non-finite values
// "nan", "inf" and "-inf".
func formatSci(v float64) string {
	switch {
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}
	return fmt.Sprintf("%.18e", v)
}
