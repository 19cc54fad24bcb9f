// Package pkg provides the core libraries for tarper.
//
// # Overview
//
// tarper searches for the order of files inside a tar archive that makes the
// compressed archive smallest. Compressors find more redundancy when similar
// content sits close together, so the order matters. The pkg directory is
// organized into these areas:
//
//  1. [search] - The prefix tree of evaluated orderings and its sampling
//  2. [strategy] - The catalog of ordering strategies
//  3. [oracle] - Measuring an ordering by building and compressing the archive
//  4. [pipeline] - Orchestration (scan → search → measure → write)
//  5. [cache], [scan], [similarity], [io] - Supporting infrastructure
//
// # Architecture
//
//	Source directory
//	       ↓
//	  [scan] package (enumerate regular files)
//	       ↓
//	  [strategy] package (search, using [oracle] for every candidate)
//	       ↓
//	  [pipeline] package (measure, write <target>_<strategy>.tar.<scheme>)
//
// # Quick Start
//
//	runner := pipeline.NewRunner(nil, nil, logger)
//	res, err := runner.Execute(ctx, pipeline.Options{
//	    Source:   "./src",
//	    Strategy: "mcts",
//	    Scheme:   "zst",
//	})
//
// [search]: github.com/matzehuels/tarper/pkg/search
// [strategy]: github.com/matzehuels/tarper/pkg/strategy
// [oracle]: github.com/matzehuels/tarper/pkg/oracle
// [pipeline]: github.com/matzehuels/tarper/pkg/pipeline
// [cache]: github.com/matzehuels/tarper/pkg/cache
// [scan]: github.com/matzehuels/tarper/pkg/scan
// [similarity]: github.com/matzehuels/tarper/pkg/similarity
// [io]: github.com/matzehuels/tarper/pkg/io
package pkg
