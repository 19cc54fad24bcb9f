package cli

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/tarper/pkg/errors"
	orderio "github.com/matzehuels/tarper/pkg/io"
)

func writeSource(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range map[string]string{
		"a.txt":     "alpha alpha alpha\n",
		"b.txt":     "bravo bravo bravo\n",
		"sub/c.txt": "charlie charlie\n",
	} {
		path := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func runPack(t *testing.T, args ...string) error {
	t.Helper()
	cmd := New(io.Discard, LogInfo).packCommand()
	cmd.SetArgs(args)
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	return cmd.Execute()
}

func TestPackWritesArchive(t *testing.T) {
	src := writeSource(t)
	dir := t.TempDir()
	order := filepath.Join(dir, "order.json")
	if err := orderio.ExportJSON(orderio.Ordering{
		Scheme: "zst",
		Files:  []string{"sub/c.txt", "b.txt", "a.txt"},
	}, order); err != nil {
		t.Fatal(err)
	}

	out := filepath.Join(dir, "out", "src.tar.zst")
	if err := runPack(t, src, "--order", order, "-o", out); err != nil {
		t.Fatalf("pack error: %v", err)
	}
	info, err := os.Stat(out)
	if err != nil {
		t.Fatalf("archive not written: %v", err)
	}
	if info.Size() == 0 {
		t.Error("archive is empty")
	}
}

func TestPackRejectsStaleOrdering(t *testing.T) {
	src := writeSource(t)
	order := filepath.Join(t.TempDir(), "order.json")
	if err := orderio.ExportJSON(orderio.Ordering{Files: []string{"a.txt", "b.txt"}}, order); err != nil {
		t.Fatal(err)
	}

	err := runPack(t, src, "--order", order, "-o", filepath.Join(t.TempDir(), "x.tar.gz"))
	if !errors.Is(err, errors.ErrCodeInvariantViolation) {
		t.Errorf("pack error = %v, want INVARIANT_VIOLATION", err)
	}
}

func TestPackRequiresOrder(t *testing.T) {
	if err := runPack(t, writeSource(t)); err == nil {
		t.Error("expected an error without --order")
	}
}
