package strategy

import (
	"bufio"
	"bytes"
	"context"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/matzehuels/tarper/pkg/errors"
)

// Binsort delegates to the external binsort tool, which clusters files by
// content similarity and prints them one per line.
type Binsort struct{}

func (Binsort) Name() string     { return "binsort" }
func (Binsort) Describe() string { return "order printed by the external binsort tool" }
func (Binsort) Evaluates() bool  { return false }

func (Binsort) Order(ctx context.Context, env *Env) ([]string, error) {
	bin, err := exec.LookPath(env.Options.Binsort)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeUnsupported, err, "binsort executable %q not found", env.Options.Binsort)
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, env.Root)
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "binsort: %s", strings.TrimSpace(stderr.String()))
	}
	return parseBinsort(env, out), nil
}

// parseBinsort maps the tool's output lines to file identifiers. Lines may
// be absolute or relative to the working directory; directories, blank
// lines, unknown paths and repeats are dropped. Files the tool did not
// print are appended in scan order so the result is always a permutation.
func parseBinsort(env *Env, out []byte) []string {
	known := make(map[string]bool, len(env.Files))
	for _, f := range env.Files {
		known[f.Path] = true
	}

	absRoot, _ := filepath.Abs(env.Root)
	seen := make(map[string]bool, len(env.Files))
	order := make([]string, 0, len(env.Files))

	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		id := identifier(env.Root, absRoot, line)
		if !known[id] || seen[id] {
			continue
		}
		seen[id] = true
		order = append(order, id)
	}
	for _, f := range env.Files {
		if !seen[f.Path] {
			order = append(order, f.Path)
		}
	}
	return order
}

func identifier(root, absRoot, line string) string {
	for _, base := range []string{root, absRoot} {
		if rel, err := filepath.Rel(base, line); err == nil && !strings.HasPrefix(rel, "..") {
			return filepath.ToSlash(rel)
		}
	}
	return filepath.ToSlash(line)
}
