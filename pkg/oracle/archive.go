package oracle

import (
	"archive/tar"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	"github.com/matzehuels/tarper/pkg/errors"
)

// zstdWindow matches the 128 MiB window of `zstd --long`.
const zstdWindow = 1 << 27

// candidateName is the fixed file name each measurement is written to inside
// the private workspace.
const candidateName = "candidate.tar"

// Archive is the [Oracle] backed by real archives. File identifiers are
// slash-separated paths relative to the source root.
//
// Archive is safe for concurrent use; measurements are serialized because
// they share one file name in the workspace.
type Archive struct {
	root      string
	scheme    Scheme
	workspace string

	mu sync.Mutex
}

// NewArchive creates an oracle over the files below root. It allocates a
// private workspace directory that [Archive.Close] removes.
func NewArchive(root string, scheme Scheme) (*Archive, error) {
	if _, err := ParseScheme(string(scheme)); err != nil {
		return nil, err
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNotFound, err, "source %s", root)
	}
	if !info.IsDir() {
		return nil, errors.New(errors.ErrCodeInvalidPath, "source %s is not a directory", root)
	}
	ws, err := os.MkdirTemp("", "tarper-"+uuid.NewString()[:8]+"-")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "create workspace")
	}
	return &Archive{root: root, scheme: scheme, workspace: ws}, nil
}

// Scheme returns the compression scheme.
func (a *Archive) Scheme() Scheme { return a.scheme }

// Root returns the source directory.
func (a *Archive) Root() string { return a.root }

// Cost writes the compressed archive of files to the workspace and returns
// its size. The file is removed before Cost returns.
func (a *Archive) Cost(ctx context.Context, files []string) (int64, error) {
	if len(files) < errors.MinFiles {
		return 0, errors.New(errors.ErrCodeInvalidInput, "need at least %d files, got %d", errors.MinFiles, len(files))
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	path := filepath.Join(a.workspace, candidateName+"."+string(a.scheme))
	defer os.Remove(path)

	f, err := os.Create(path)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeOracleFailure, err, "create candidate archive")
	}
	if err := WriteArchive(ctx, f, a.root, files, a.scheme); err != nil {
		f.Close()
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		return 0, errors.Wrap(errors.ErrCodeOracleFailure, err, "write candidate archive")
	}
	if err := f.Close(); err != nil {
		return 0, errors.Wrap(errors.ErrCodeOracleFailure, err, "close candidate archive")
	}

	info, err := os.Stat(path)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeOracleFailure, err, "stat candidate archive")
	}
	return info.Size(), nil
}

// Close removes the workspace.
func (a *Archive) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return os.RemoveAll(a.workspace)
}

// WriteArchive streams a tar archive of files (relative to root, in order)
// through the compressor for scheme into w.
//
// Headers carry name, mode, size and modification time only; owner fields are
// cleared so archives of identical trees are identical across machines.
func WriteArchive(ctx context.Context, w io.Writer, root string, files []string, scheme Scheme) error {
	cw, err := compressor(w, scheme)
	if err != nil {
		return err
	}
	tw := tar.NewWriter(cw)

	for _, name := range files {
		if err := ctx.Err(); err != nil {
			cw.Close()
			return err
		}
		if err := appendFile(tw, root, name); err != nil {
			cw.Close()
			return err
		}
	}
	if err := tw.Close(); err != nil {
		cw.Close()
		return fmt.Errorf("close tar: %w", err)
	}
	if err := cw.Close(); err != nil {
		return fmt.Errorf("close %s: %w", scheme, err)
	}
	return nil
}

func compressor(w io.Writer, scheme Scheme) (io.WriteCloser, error) {
	switch scheme {
	case Gzip:
		return gzip.NewWriterLevel(w, gzip.DefaultCompression)
	case Zstd:
		return zstd.NewWriter(w,
			zstd.WithEncoderLevel(zstd.SpeedBestCompression),
			zstd.WithWindowSize(zstdWindow),
			zstd.WithEncoderConcurrency(1),
		)
	}
	return nil, errors.New(errors.ErrCodeInvalidScheme, "unknown compression scheme %q", scheme)
}

func appendFile(tw *tar.Writer, root, name string) error {
	f, err := os.Open(filepath.Join(root, filepath.FromSlash(name)))
	if stderrors.Is(err, fs.ErrNotExist) {
		return errors.Wrap(errors.ErrCodeFileNotFound, err, "%s", name)
	}
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%s: not a regular file", name)
	}
	hdr, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	hdr.Name = name
	hdr.Uid, hdr.Gid = 0, 0
	hdr.Uname, hdr.Gname = "", ""
	hdr.ModTime = info.ModTime().Truncate(time.Second)
	if err := tw.WriteHeader(hdr); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if _, err := io.Copy(tw, f); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

var _ Oracle = (*Archive)(nil)
