// Package oracle measures the cost of a file ordering.
//
// The cost of an ordering is the size in bytes of a tar archive containing the
// files in that order, compressed with a fixed [Scheme]. Every search
// strategy treats the measurement as a black box through the [Oracle]
// interface:
//
//	arc, err := oracle.NewArchive(root, oracle.Zstd)
//	if err != nil {
//	    return err
//	}
//	defer arc.Close()
//
//	size, err := arc.Cost(ctx, []string{"b.go", "a.go", "c.go"})
//
// # Failures
//
// A measurement that cannot be produced is reported as an ORACLE_FAILURE
// error from pkg/errors, never as a made-up size. Search strategies treat such
// failures as recoverable and skip the candidate. Fewer than two files is
// INVALID_INPUT.
//
// # Wrappers
//
// [Cached] memoizes costs in a [cache.Cache] keyed by the scheme, the
// ordering and a fingerprint of every file. [Tracker] counts evaluations,
// remembers the cheapest ordering seen so far and reports every call to the
// registered observability hooks.
package oracle
