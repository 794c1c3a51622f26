package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// =============================================================================
// Snapshot - Wire Format
// =============================================================================

// Snapshot is the serialized form of a graph embedded in resolution results.
// Node and edge order follow graph insertion order so that a snapshot can be
// turned back into an equivalent graph.
type Snapshot struct {
	Nodes []Node `json:"nodes"`
	Edges []Link `json:"edges"`
}

// Node is the serialized form of a package.
type Node struct {
	ID           string `json:"id"`
	Version      string `json:"version"`
	Architecture string `json:"architecture"`
	License      string `json:"license"`
	Unresolved   bool   `json:"unresolved,omitempty"`
	Truncated    bool   `json:"truncated,omitempty"`
}

// Link is the serialized form of an edge.
type Link struct {
	Source       string       `json:"source"`
	Target       string       `json:"target"`
	Relationship Relationship `json:"relationship"`
}

// Snapshot converts the graph to its wire format.
func (g *Graph) Snapshot() Snapshot {
	out := Snapshot{
		Nodes: make([]Node, 0, len(g.order)),
		Edges: make([]Link, 0, len(g.edges)),
	}
	for _, p := range g.Packages() {
		out.Nodes = append(out.Nodes, Node{
			ID:           p.Name,
			Version:      p.Version,
			Architecture: p.Architecture,
			License:      p.License,
			Unresolved:   p.Unresolved,
			Truncated:    p.Truncated,
		})
	}
	for _, e := range g.edges {
		out.Edges = append(out.Edges, Link{Source: e.From, Target: e.To, Relationship: e.Relationship})
	}
	return out
}

// FromSnapshot rebuilds a graph from its wire format. Feature vectors and
// free-form metadata are not part of a snapshot and come back empty.
func FromSnapshot(s Snapshot) (*Graph, error) {
	g := New()
	for _, n := range s.Nodes {
		if err := g.AddPackage(Package{
			Name:         n.ID,
			Version:      n.Version,
			Architecture: n.Architecture,
			License:      n.License,
			Unresolved:   n.Unresolved,
			Truncated:    n.Truncated,
		}); err != nil {
			return nil, fmt.Errorf("node %q: %w", n.ID, err)
		}
	}
	for _, l := range s.Edges {
		if err := g.AddEdge(Edge{From: l.Source, To: l.Target, Relationship: l.Relationship}); err != nil {
			return nil, fmt.Errorf("edge %s -> %s: %w", l.Source, l.Target, err)
		}
	}
	return g, nil
}

// =============================================================================
// Serialization API
// =============================================================================

// MarshalGraph converts a graph to indented JSON bytes.
func MarshalGraph(g *Graph) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteGraph(g, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteGraph writes a graph snapshot as JSON to w.
func WriteGraph(g *Graph, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(g.Snapshot()); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ReadGraph decodes a JSON snapshot from r into a graph.
func ReadGraph(r io.Reader) (*Graph, error) {
	var s Snapshot
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return FromSnapshot(s)
}
