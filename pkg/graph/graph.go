package graph

import (
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrInvalidNodeID is returned by [Graph.AddPackage] when the package
	// name is empty. Every package needs a non-empty identity.
	ErrInvalidNodeID = errors.New("package name must not be empty")

	// ErrUnknownSourceNode is returned by [Graph.AddEdge] when the From
	// package does not exist.
	ErrUnknownSourceNode = errors.New("unknown source package")

	// ErrUnknownTargetNode is returned by [Graph.AddEdge] when the To
	// package does not exist.
	ErrUnknownTargetNode = errors.New("unknown target package")

	// ErrInvalidRelationship is returned by [Graph.AddEdge] for a
	// relationship other than depends_on or conflicts_with.
	ErrInvalidRelationship = errors.New("invalid edge relationship")

	// ErrInvalidEdgeEndpoint is returned by [Graph.Validate] when an edge
	// references a package that doesn't exist.
	ErrInvalidEdgeEndpoint = errors.New("invalid edge endpoint")
)

// Relationship is the meaning of a directed edge.
type Relationship string

const (
	// DependsOn means From needs To installed.
	DependsOn Relationship = "depends_on"
	// ConflictsWith means From cannot be installed alongside To.
	ConflictsWith Relationship = "conflicts_with"
)

// Valid reports whether r is one of the known relationships.
func (r Relationship) Valid() bool {
	return r == DependsOn || r == ConflictsWith
}

// UnmarshalText rejects unknown relationships.
func (r *Relationship) UnmarshalText(b []byte) error {
	v := Relationship(b)
	if !v.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidRelationship, string(b))
	}
	*r = v
	return nil
}

// DefaultEdgeWeight is applied to edges added with a zero weight.
const DefaultEdgeWeight = 1.0

// Metadata stores arbitrary key-value pairs attached to a package.
// Metadata maps are never nil once a package is in a graph.
type Metadata map[string]any

// Package is a node of the dependency graph.
//
// Name is the identity within one graph; two packages with the same name are
// the same node. Features is filled once the graph is fully built and is not
// recomputed afterwards.
type Package struct {
	Name            string
	Version         string
	Architecture    string
	License         string
	DependencyCount int
	ApplicationType string
	Metadata        Metadata
	Features        []float64

	// Unresolved marks a package whose metadata could not be fetched.
	// It stays in the graph so edges pointing at it remain valid.
	Unresolved bool
	// Truncated marks a package beyond the depth limit whose own
	// dependencies were not expanded.
	Truncated bool
}

// ID returns the package identity.
func (p *Package) ID() string { return p.Name }

// Edge is a directed relationship between two packages.
type Edge struct {
	From         string
	To           string
	Relationship Relationship
	Weight       float64
}

type edgeKey struct {
	from, to string
	rel      Relationship
}

// Graph is a directed package graph that preserves insertion order for both
// packages and edges. Unlike a DAG it accepts cycles; detecting them is the
// job of the analyze package.
//
// The zero value is not usable - use New. A Graph is not safe for concurrent
// mutation; once built it may be read from many goroutines.
type Graph struct {
	order    []string
	nodes    map[string]*Package
	edges    []Edge
	index    map[edgeKey]struct{}
	outgoing map[string][]string // depends_on only
	incoming map[string][]string // depends_on only
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		nodes:    make(map[string]*Package),
		index:    make(map[edgeKey]struct{}),
		outgoing: make(map[string][]string),
		incoming: make(map[string][]string),
	}
}

// AddPackage inserts p, or updates the existing package with the same name
// in place. Updating keeps the package's original insertion position.
func (g *Graph) AddPackage(p Package) error {
	if p.Name == "" {
		return ErrInvalidNodeID
	}
	if p.Metadata == nil {
		p.Metadata = Metadata{}
	}
	if existing, ok := g.nodes[p.Name]; ok {
		*existing = p
		return nil
	}
	node := p
	g.nodes[p.Name] = &node
	g.order = append(g.order, p.Name)
	return nil
}

// AddEdge adds a directed edge between two existing packages. An empty
// relationship defaults to depends_on and a zero weight to
// [DefaultEdgeWeight]. Adding an edge that already exists with the same
// relationship is a no-op.
func (g *Graph) AddEdge(e Edge) error {
	if _, ok := g.nodes[e.From]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSourceNode, e.From)
	}
	if _, ok := g.nodes[e.To]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTargetNode, e.To)
	}
	if e.Relationship == "" {
		e.Relationship = DependsOn
	}
	if !e.Relationship.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidRelationship, e.Relationship)
	}
	if e.Weight == 0 {
		e.Weight = DefaultEdgeWeight
	}

	key := edgeKey{e.From, e.To, e.Relationship}
	if _, dup := g.index[key]; dup {
		return nil
	}
	g.index[key] = struct{}{}
	g.edges = append(g.edges, e)
	if e.Relationship == DependsOn {
		g.outgoing[e.From] = append(g.outgoing[e.From], e.To)
		g.incoming[e.To] = append(g.incoming[e.To], e.From)
	}
	return nil
}

// Package returns the package with the given name and true, or nil and false.
// The pointer refers to the package stored in the graph.
func (g *Graph) Package(id string) (*Package, bool) {
	p, ok := g.nodes[id]
	return p, ok
}

// Has reports whether a package with the given name exists.
func (g *Graph) Has(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

// Packages returns all packages in insertion order.
func (g *Graph) Packages() []*Package {
	out := make([]*Package, len(g.order))
	for i, id := range g.order {
		out[i] = g.nodes[id]
	}
	return out
}

// IDs returns all package names in insertion order.
func (g *Graph) IDs() []string { return slices.Clone(g.order) }

// Positions maps each package name to its insertion index.
func (g *Graph) Positions() map[string]int {
	m := make(map[string]int, len(g.order))
	for i, id := range g.order {
		m[id] = i
	}
	return m
}

// Edges returns a copy of all edges in insertion order.
func (g *Graph) Edges() []Edge { return slices.Clone(g.edges) }

// EdgesOf returns the edges with the given relationship, in insertion order.
func (g *Graph) EdgesOf(rel Relationship) []Edge {
	var out []Edge
	for _, e := range g.edges {
		if e.Relationship == rel {
			out = append(out, e)
		}
	}
	return out
}

// HasEdge reports whether the edge from→to with relationship rel exists.
func (g *Graph) HasEdge(from, to string, rel Relationship) bool {
	_, ok := g.index[edgeKey{from, to, rel}]
	return ok
}

// Dependencies returns the depends_on targets of id in insertion order.
// The returned slice should be treated as read-only.
func (g *Graph) Dependencies(id string) []string { return g.outgoing[id] }

// Dependents returns the packages that depend on id.
// The returned slice should be treated as read-only.
func (g *Graph) Dependents(id string) []string { return g.incoming[id] }

// NodeCount returns the number of packages.
func (g *Graph) NodeCount() int { return len(g.order) }

// EdgeCount returns the number of edges of every relationship.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Unresolved returns the names of packages marked unresolved, in insertion order.
func (g *Graph) Unresolved() []string {
	var out []string
	for _, id := range g.order {
		if g.nodes[id].Unresolved {
			out = append(out, id)
		}
	}
	return out
}

// Validate checks that every edge references existing packages.
func (g *Graph) Validate() error {
	for _, e := range g.edges {
		if !g.Has(e.From) || !g.Has(e.To) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidEdgeEndpoint, e.From, e.To)
		}
	}
	return nil
}
