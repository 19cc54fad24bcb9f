package search

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"

	"github.com/goccy/go-graphviz"
)

// DOTOptions controls [Tree.ToDOT].
type DOTOptions struct {
	// MaxDepth limits how many levels below the root are emitted. Zero means no limit.
	MaxDepth int
	// Ranks labels nodes with their position in the sample ordering instead of
	// the file's base name.
	Ranks bool
}

// ToDOT returns a Graphviz DOT representation of the tree.
//
// Each node is labeled with its key and its [best, worst] cost bounds. Nodes
// on a best path (Best equal to the root's Best) are highlighted. The tree is
// not modified.
func (t *Tree) ToDOT(opts DOTOptions) string {
	var buf bytes.Buffer
	buf.WriteString("digraph SearchTree {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [fontname=\"SF Mono, Menlo, monospace\", fontsize=12, shape=box, style=\"filled,rounded\", fillcolor=white];\n")
	buf.WriteString("  edge [arrowhead=none];\n\n")

	t.writeDOTNode(&buf, t.root, 0, 0, opts)

	buf.WriteString("}\n")
	return buf.String()
}

func (t *Tree) writeDOTNode(buf *bytes.Buffer, n *Node, id, depth int, opts DOTOptions) int {
	nodeID := fmt.Sprintf("n%d", id)
	next := id + 1

	fill := "white"
	if n.recorded && t.root.recorded && n.best == t.root.best {
		fill = "palegreen"
	}
	fmt.Fprintf(buf, "  %s [label=%q, fillcolor=%s];\n", nodeID, t.dotLabel(n, opts), fill)

	if opts.MaxDepth > 0 && depth >= opts.MaxDepth {
		return next
	}
	for _, c := range n.Children() {
		fmt.Fprintf(buf, "  %s -> n%d;\n", nodeID, next)
		next = t.writeDOTNode(buf, c, next, depth+1, opts)
	}
	return next
}

func (t *Tree) dotLabel(n *Node, opts DOTOptions) string {
	name := "root"
	if n.parent != nil {
		name = filepath.Base(n.key)
		if opts.Ranks {
			if r, ok := t.sampleOrder[n.key]; ok {
				name = fmt.Sprintf("#%d", r)
			}
		}
	}
	if !n.recorded {
		return name
	}
	return fmt.Sprintf("%s\n[%d, %d]", name, n.best, n.worst)
}

// RenderSVG renders the tree as an SVG image via Graphviz.
//
// Errors are returned if Graphviz cannot initialize, the DOT is malformed, or
// rendering fails. Large trees should be limited with DOTOptions.MaxDepth.
func (t *Tree) RenderSVG(ctx context.Context, opts DOTOptions) ([]byte, error) {
	dot := t.ToDOT(opts)

	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
