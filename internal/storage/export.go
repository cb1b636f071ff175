package storage

import (
	"encoding/json"
	"io"
)

type ExportData struct {
	RunMetadata
	Data []SampleRecord `json:"data"`
}

// ExportJSON writes a run's metadata and samples as one indented document.
func (s *Store) ExportJSON(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	samples, err := s.LoadSamples(runID)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(ExportData{RunMetadata: *meta, Data: sampleRecords(samples)})
}
