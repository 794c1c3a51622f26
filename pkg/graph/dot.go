package graph

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"
)

// DOTOptions configures [ToDOT].
type DOTOptions struct {
	// Configuration marks packages as included (true) or excluded (false).
	// Excluded packages are drawn greyed out; nil draws every package plain.
	Configuration map[string]bool
	// Detailed adds version, architecture and license to node labels.
	Detailed bool
}

// ToDOT converts a graph to Graphviz DOT format. depends_on edges are solid,
// conflicts_with edges are dashed red, and unresolved packages get a dotted
// outline.
func ToDOT(g *Graph, opts DOTOptions) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, p := range g.Packages() {
		attrs := []string{fmt.Sprintf("label=%q", dotLabel(p, opts.Detailed))}
		attrs = append(attrs, dotStyle(p, opts.Configuration)...)
		fmt.Fprintf(&buf, "  %q [%s];\n", p.Name, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		if e.Relationship == ConflictsWith {
			fmt.Fprintf(&buf, "  %q -> %q [style=dashed, color=\"#c0392b\", arrowhead=tee];\n", e.From, e.To)
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q;\n", e.From, e.To)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func dotLabel(p *Package, detailed bool) string {
	if !detailed {
		return p.Name
	}
	var parts []string
	for _, kv := range [][2]string{
		{"version", p.Version},
		{"arch", p.Architecture},
		{"license", p.License},
	} {
		if kv[1] != "" {
			parts = append(parts, kv[0]+": "+kv[1])
		}
	}
	if len(parts) == 0 {
		return p.Name
	}
	return p.Name + "\n" + strings.Join(parts, "\n")
}

func dotStyle(p *Package, config map[string]bool) []string {
	var attrs []string
	if config != nil && !config[p.Name] {
		attrs = append(attrs, "fillcolor=lightgrey", "fontcolor=\"#7f7f7f\"")
	}
	if p.Unresolved {
		attrs = append(attrs, "style=\"rounded,filled,dotted\"")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
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
