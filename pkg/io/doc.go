// Package io provides JSON import and export for file orderings.
//
// # Overview
//
// A search can take a long time, so its result is worth keeping. This
// package stores an ordering together with the facts needed to reuse it
// later: which directory it orders, which compression scheme it was measured
// with, and what it cost.
//
// # JSON Format
//
//	{
//	  "source": "./src",
//	  "scheme": "zst",
//	  "strategy": "mcts",
//	  "cost": 183422,
//	  "measured": true,
//	  "run_id": "6f1c8a0e-...",
//	  "files": ["cmd/main.go", "go.mod", "go.sum"]
//	}
//
// Only "files" is required. Paths are slash-separated and relative to the
// source directory, exactly as the scanner produces them.
//
// # Import
//
// Use [ImportJSON] to read an ordering from a file path, or [ReadJSON] to read
// from any io.Reader:
//
//	o, err := io.ImportJSON("order.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Both reject an empty file list, empty entries and duplicates.
//
// # Export
//
// Use [ExportJSON] to write an ordering to a file, or [WriteJSON] to write
// to any io.Writer. [ExportAllJSON] writes several orderings as a JSON array,
// which is what "tarper run --all --save" produces; [ImportJSON] accepts both
// shapes and returns the cheapest measured entry of an array.
package io
