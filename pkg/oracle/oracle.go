package oracle

import (
	"context"
	"strings"

	"github.com/matzehuels/tarper/pkg/errors"
)

// Oracle measures the compressed size of an ordering of files.
type Oracle interface {
	Cost(ctx context.Context, files []string) (int64, error)
}

// Func adapts a plain function to [Oracle].
type Func func(ctx context.Context, files []string) (int64, error)

// Cost calls f.
func (f Func) Cost(ctx context.Context, files []string) (int64, error) { return f(ctx, files) }

// Scheme selects the compressor applied to the tar stream.
type Scheme string

const (
	// Gzip compresses with gzip at the default level.
	Gzip Scheme = "gz"
	// Zstd compresses with zstd at its best level and a 128 MiB window,
	// the equivalent of `zstd -19 --long`.
	Zstd Scheme = "zst"
)

// Schemes lists the supported schemes.
var Schemes = []Scheme{Gzip, Zstd}

// ParseScheme accepts a scheme name or a common alias ("gzip", ".gz",
// "zstd", ".zst").
func ParseScheme(s string) (Scheme, error) {
	switch strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), ".") {
	case "gz", "gzip":
		return Gzip, nil
	case "zst", "zstd":
		return Zstd, nil
	}
	return "", errors.New(errors.ErrCodeInvalidScheme, "unknown compression scheme %q (want gz or zst)", s)
}

// Extension returns the archive file extension, e.g. ".tar.gz".
func (s Scheme) Extension() string { return ".tar." + string(s) }

// String returns the scheme name.
func (s Scheme) String() string { return string(s) }
