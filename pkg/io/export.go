package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"

	"github.com/matzehuels/tarper/pkg/pipeline"
)

// Ordering is one stored file ordering.
type Ordering struct {
	Source   string    `json:"source,omitempty"`
	Scheme   string    `json:"scheme,omitempty"`
	Strategy string    `json:"strategy,omitempty"`
	Cost     int64     `json:"cost,omitempty"`
	Measured bool      `json:"measured,omitempty"`
	RunID    uuid.UUID `json:"run_id,omitzero"`
	Files    []string  `json:"files"`
}

// FromResult converts a pipeline result run with opts.
func FromResult(opts pipeline.Options, res *pipeline.Result) Ordering {
	return Ordering{
		Source:   opts.Source,
		Scheme:   opts.Scheme,
		Strategy: res.Strategy,
		Cost:     res.Cost,
		Measured: res.Measured,
		RunID:    res.RunID,
		Files:    res.Order,
	}
}

// WriteJSON encodes o as indented JSON and writes it to w.
func WriteJSON(o Ordering, w io.Writer) error {
	return encode(o, w)
}

// ExportJSON writes o to a JSON file at path.
// This is a convenience wrapper around [WriteJSON] for file-based output.
func ExportJSON(o Ordering, path string) error {
	return exportFile(o, path)
}

// ExportAllJSON writes several orderings to path as a JSON array.
func ExportAllJSON(orderings []Ordering, path string) error {
	return exportFile(orderings, path)
}

func exportFile(v any, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := encode(v, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func encode(v any, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}
