package io

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/tarper/pkg/errors"
	"github.com/matzehuels/tarper/pkg/pipeline"
)

func TestWriteReadJSON(t *testing.T) {
	want := Ordering{
		Source:   "src",
		Scheme:   "zst",
		Strategy: "mcts",
		Cost:     1234,
		Measured: true,
		RunID:    uuid.New(),
		Files:    []string{"b.go", "a.go", "lib/c.go"},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(want, &buf))
	require.Contains(t, buf.String(), `"run_id"`)

	got, err := ReadJSON(&buf)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestWriteJSONOmitsEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(Ordering{Files: []string{"a"}}, &buf))
	require.NotContains(t, buf.String(), "run_id")
	require.NotContains(t, buf.String(), "cost")
}

func TestReadJSONArrayPicksCheapest(t *testing.T) {
	in := `[
	  {"strategy": "default", "cost": 100, "measured": true, "files": ["a", "b"]},
	  {"strategy": "binsort", "files": ["b", "a"]},
	  {"strategy": "mcts", "cost": 90, "measured": true, "files": ["b", "a"]}
	]`
	o, err := ReadJSON(strings.NewReader(in))
	require.NoError(t, err)
	require.Equal(t, "mcts", o.Strategy)
}

func TestReadJSONArrayUnmeasured(t *testing.T) {
	in := `[{"strategy": "x", "files": ["a"]}, {"strategy": "y", "files": ["b"]}]`
	o, err := ReadJSON(strings.NewReader(in))
	require.NoError(t, err)
	require.Equal(t, "x", o.Strategy)
}

func TestReadJSONInvalid(t *testing.T) {
	tests := map[string]string{
		"malformed":   `{"files": [`,
		"no files":    `{"strategy": "mcts"}`,
		"empty entry": `{"files": ["a", ""]}`,
		"duplicate":   `{"files": ["a", "b", "a"]}`,
		"empty array": `[]`,
	}
	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ReadJSON(strings.NewReader(in))
			require.True(t, errors.Is(err, errors.ErrCodeInvalidInput), "got %v", err)
		})
	}
}

func TestExportImportFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "order.json")

	opts := pipeline.Options{Source: "src", Scheme: "gz"}
	res := &pipeline.Result{Strategy: "size", Order: []string{"a", "b"}, Cost: 10, Measured: true}
	require.NoError(t, ExportJSON(FromResult(opts, res), path))

	o, err := ImportJSON(path)
	require.NoError(t, err)
	require.Equal(t, "src", o.Source)
	require.Equal(t, "gz", o.Scheme)
	require.Equal(t, []string{"a", "b"}, o.Files)

	all := filepath.Join(dir, "all.json")
	require.NoError(t, ExportAllJSON([]Ordering{
		{Strategy: "default", Cost: 12, Measured: true, Files: []string{"a", "b"}},
		FromResult(opts, res),
	}, all))
	o, err = ImportJSON(all)
	require.NoError(t, err)
	require.Equal(t, "size", o.Strategy)

	_, err = ImportJSON(filepath.Join(dir, "missing.json"))
	require.True(t, errors.Is(err, errors.ErrCodeNotFound))
}
