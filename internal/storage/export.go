package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/longsim/internal/sim"
)

type ExportData struct {
	Run     RunMetadata  `json:"run"`
	Samples []sim.Sample `json:"samples"`
}

// ExportJSON writes a run and its samples as indented JSON. Non-finite
// samples cannot be encoded and make it fail.
func ExportJSON(w io.Writer, meta RunMetadata, samples []sim.Sample) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(ExportData{Run: meta, Samples: samples})
}
