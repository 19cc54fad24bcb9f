package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/tarper/pkg/errors"
)

// ReadJSON decodes an ordering from r.
//
// The input is either a single ordering object or an array of them, as
// written by [ExportAllJSON]. For an array the cheapest measured entry is
// returned, or the first entry when none was measured.
//
// ReadJSON returns an INVALID_INPUT error if the JSON is malformed, the
// array is empty, or the chosen ordering has no files, an empty entry or a
// duplicate. ReadJSON does not close r.
func ReadJSON(r io.Reader) (Ordering, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Ordering{}, fmt.Errorf("read: %w", err)
	}

	var o Ordering
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '[' {
		var all []Ordering
		if err := json.Unmarshal(trimmed, &all); err != nil {
			return Ordering{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode")
		}
		if len(all) == 0 {
			return Ordering{}, errors.New(errors.ErrCodeInvalidInput, "no orderings")
		}
		o = cheapest(all)
	} else if err := json.Unmarshal(data, &o); err != nil {
		return Ordering{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode")
	}

	if err := validate(o.Files); err != nil {
		return Ordering{}, err
	}
	return o, nil
}

// ImportJSON reads a JSON file at path and returns the decoded ordering.
// The error wraps the underlying cause with the file path for context.
func ImportJSON(path string) (Ordering, error) {
	f, err := os.Open(path)
	if err != nil {
		return Ordering{}, errors.Wrap(errors.ErrCodeNotFound, err, "open %s", path)
	}
	defer f.Close()

	o, err := ReadJSON(f)
	if err != nil {
		return Ordering{}, fmt.Errorf("%s: %w", path, err)
	}
	return o, nil
}

func cheapest(all []Ordering) Ordering {
	best := all[0]
	for _, o := range all[1:] {
		if o.Measured && (!best.Measured || o.Cost < best.Cost) {
			best = o
		}
	}
	return best
}

func validate(files []string) error {
	if len(files) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "ordering has no files")
	}
	seen := make(map[string]bool, len(files))
	for _, f := range files {
		if f == "" {
			return errors.New(errors.ErrCodeInvalidInput, "ordering contains an empty path")
		}
		if seen[f] {
			return errors.New(errors.ErrCodeInvalidInput, "ordering repeats %q", f)
		}
		seen[f] = true
	}
	return nil
}
