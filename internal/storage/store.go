package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/longsim/internal/sim"
	"github.com/san-kum/longsim/internal/vehicle"
)

const (
	metadataFile = "metadata.json"
	statesFile   = "states.csv"
)

var ErrMalformedRow = errors.New("storage: malformed states row")

var statesHeader = []string{"time", "x", "v", "a", "w", "wdot", "throttle", "incline"}

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Profile   string             `json:"profile"`
	Timestamp time.Time          `json:"timestamp"`
	Dt        float64            `json:"dt"`
	Duration  float64            `json:"duration"`
	Samples   int                `json:"samples"`
	Hardened  bool               `json:"hardened"`
	Params    vehicle.Params     `json:"params"`
	Init      vehicle.State      `json:"init"`
	Metrics   map[string]float64 `json:"metrics"`
}

// Save writes <base>/<id>/metadata.json and states.csv. ID, Timestamp,
// Samples and Metrics are filled in from the run.
func (s *Store) Save(meta RunMetadata, result *sim.Result) (string, error) {
	now := time.Now()
	meta.ID = fmt.Sprintf("%s_%d", meta.Profile, now.UnixNano())
	meta.Timestamp = now
	meta.Samples = len(result.Samples)
	meta.Metrics = result.Metrics

	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeStates(filepath.Join(runDir, statesFile), result.Samples); err != nil {
		return "", err
	}
	return meta.ID, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeStates(path string, samples []sim.Sample) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(statesHeader); err != nil {
		return err
	}

	for _, sm := range samples {
		row := make([]string, 0, len(statesHeader))
		for _, v := range append([]float64{sm.T}, append(sm.State.Slice(), sm.Throttle, sm.Incline)...) {
			row = append(row, strconv.FormatFloat(v, 'g', -1, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// List returns stored runs oldest first. Directories without readable
// metadata are skipped.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return &meta, nil
}

// LoadStates reads the recorded samples of a run back.
func (s *Store) LoadStates(runID string) ([]sim.Sample, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, statesFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []sim.Sample{}, nil
	}

	samples := make([]sim.Sample, 0, len(records)-1)
	for i, record := range records[1:] {
		if len(record) != len(statesHeader) {
			return nil, fmt.Errorf("%w: line %d has %d fields", ErrMalformedRow, i+2, len(record))
		}
		vals := make([]float64, len(record))
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedRow, i+2, err)
			}
			vals[j] = v
		}
		samples = append(samples, sim.Sample{
			Step:     i,
			T:        vals[0],
			State:    vehicle.State{X: vals[1], V: vals[2], A: vals[3], W: vals[4], WDot: vals[5]},
			Throttle: vals[6],
			Incline:  vals[7],
		})
	}
	return samples, nil
}

// Dir returns the directory holding a run's files.
func (s *Store) Dir(runID string) string {
	return filepath.Join(s.baseDir, runID)
}
