package graph

import (
	"bytes"
	"encoding/json"
	"errors"
	"slices"
	"strings"
	"testing"
)

func TestAddPackage_EmptyName(t *testing.T) {
	g := New()
	if err := g.AddPackage(Package{}); !errors.Is(err, ErrInvalidNodeID) {
		t.Errorf("AddPackage() error = %v, want ErrInvalidNodeID", err)
	}
}

func TestAddPackage_UpdateKeepsPosition(t *testing.T) {
	g := New()
	g.AddPackage(Package{Name: "a", Version: "1.0.0"})
	g.AddPackage(Package{Name: "b"})
	g.AddPackage(Package{Name: "a", Version: "2.0.0"})

	if got := g.IDs(); !slices.Equal(got, []string{"a", "b"}) {
		t.Errorf("IDs() = %v, want [a b]", got)
	}
	p, _ := g.Package("a")
	if p.Version != "2.0.0" {
		t.Errorf("Version = %q, want 2.0.0", p.Version)
	}
	if p.Metadata == nil {
		t.Error("Metadata should be initialised")
	}
}

func TestAddEdge(t *testing.T) {
	tests := []struct {
		name string
		edge Edge
		want error
	}{
		{"valid", Edge{From: "a", To: "b"}, nil},
		{"conflict", Edge{From: "a", To: "b", Relationship: ConflictsWith}, nil},
		{"unknown source", Edge{From: "x", To: "b"}, ErrUnknownSourceNode},
		{"unknown target", Edge{From: "a", To: "x"}, ErrUnknownTargetNode},
		{"bad relationship", Edge{From: "a", To: "b", Relationship: "requires"}, ErrInvalidRelationship},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New()
			g.AddPackage(Package{Name: "a"})
			g.AddPackage(Package{Name: "b"})
			err := g.AddEdge(tt.edge)
			if tt.want == nil && err != nil {
				t.Fatalf("AddEdge() error = %v", err)
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Fatalf("AddEdge() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestAddEdge_Defaults(t *testing.T) {
	g := New()
	g.AddPackage(Package{Name: "a"})
	g.AddPackage(Package{Name: "b"})
	g.AddEdge(Edge{From: "a", To: "b"})

	e := g.Edges()[0]
	if e.Relationship != DependsOn {
		t.Errorf("Relationship = %q, want depends_on", e.Relationship)
	}
	if e.Weight != DefaultEdgeWeight {
		t.Errorf("Weight = %v, want %v", e.Weight, DefaultEdgeWeight)
	}
}

func TestAddEdge_DuplicateIsNoOp(t *testing.T) {
	g := New()
	g.AddPackage(Package{Name: "a"})
	g.AddPackage(Package{Name: "b"})
	g.AddEdge(Edge{From: "a", To: "b"})
	g.AddEdge(Edge{From: "a", To: "b", Relationship: DependsOn})
	g.AddEdge(Edge{From: "a", To: "b", Relationship: ConflictsWith})

	if g.EdgeCount() != 2 {
		t.Errorf("EdgeCount() = %d, want 2", g.EdgeCount())
	}
	if got := g.Dependencies("a"); !slices.Equal(got, []string{"b"}) {
		t.Errorf("Dependencies(a) = %v, want [b]", got)
	}
	if got := g.Dependents("b"); !slices.Equal(got, []string{"a"}) {
		t.Errorf("Dependents(b) = %v, want [a]", got)
	}
	if !g.HasEdge("a", "b", ConflictsWith) {
		t.Error("HasEdge(conflicts_with) = false")
	}
	if got := len(g.EdgesOf(ConflictsWith)); got != 1 {
		t.Errorf("EdgesOf(conflicts_with) = %d edges, want 1", got)
	}
}

func TestAllowsCycles(t *testing.T) {
	g := New()
	g.AddPackage(Package{Name: "a"})
	g.AddPackage(Package{Name: "b"})
	if err := g.AddEdge(Edge{From: "a", To: "b"}); err != nil {
		t.Fatal(err)
	}
	if err := g.AddEdge(Edge{From: "b", To: "a"}); err != nil {
		t.Fatalf("AddEdge() back edge error = %v", err)
	}
	if err := g.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestUnresolved(t *testing.T) {
	g := New()
	g.AddPackage(Package{Name: "a"})
	g.AddPackage(Package{Name: "b", Unresolved: true})
	g.AddPackage(Package{Name: "c", Unresolved: true})

	if got := g.Unresolved(); !slices.Equal(got, []string{"b", "c"}) {
		t.Errorf("Unresolved() = %v, want [b c]", got)
	}
}

func TestRelationship_UnmarshalText(t *testing.T) {
	var r Relationship
	if err := json.Unmarshal([]byte(`"conflicts_with"`), &r); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if r != ConflictsWith {
		t.Errorf("r = %q, want conflicts_with", r)
	}
	if err := json.Unmarshal([]byte(`"replaces"`), &r); err == nil {
		t.Error("Unmarshal() accepted unknown relationship")
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	g := New()
	g.AddPackage(Package{Name: "web", Version: "1.0.0", Architecture: "x86_64", License: "MIT"})
	g.AddPackage(Package{Name: "db", Version: "2.0.0", Unresolved: true})
	g.AddEdge(Edge{From: "web", To: "db"})
	g.AddEdge(Edge{From: "db", To: "web", Relationship: ConflictsWith})

	var buf bytes.Buffer
	if err := WriteGraph(g, &buf); err != nil {
		t.Fatalf("WriteGraph() error = %v", err)
	}
	if !strings.Contains(buf.String(), `"relationship": "depends_on"`) {
		t.Errorf("snapshot missing relationship field:\n%s", buf.String())
	}

	got, err := ReadGraph(&buf)
	if err != nil {
		t.Fatalf("ReadGraph() error = %v", err)
	}
	if !slices.Equal(got.IDs(), g.IDs()) {
		t.Errorf("IDs() = %v, want %v", got.IDs(), g.IDs())
	}
	if !slices.Equal(got.Edges(), g.Edges()) {
		t.Errorf("Edges() = %v, want %v", got.Edges(), g.Edges())
	}
	db, _ := got.Package("db")
	if !db.Unresolved {
		t.Error("db should stay unresolved")
	}
}

func TestReadGraph_UnknownEndpoint(t *testing.T) {
	in := `{"nodes":[{"id":"a"}],"edges":[{"source":"a","target":"b","relationship":"depends_on"}]}`
	if _, err := ReadGraph(strings.NewReader(in)); !errors.Is(err, ErrUnknownTargetNode) {
		t.Errorf("ReadGraph() error = %v, want ErrUnknownTargetNode", err)
	}
}

func TestToDOT(t *testing.T) {
	g := New()
	g.AddPackage(Package{Name: "a", Version: "1.0.0"})
	g.AddPackage(Package{Name: "b", Unresolved: true})
	g.AddPackage(Package{Name: "c"})
	g.AddEdge(Edge{From: "a", To: "b"})
	g.AddEdge(Edge{From: "b", To: "c", Relationship: ConflictsWith})

	dot := ToDOT(g, DOTOptions{
		Configuration: map[string]bool{"a": true, "b": true, "c": false},
		Detailed:      true,
	})

	for _, want := range []string{
		"digraph G",
		`"a" -> "b";`,
		`"b" -> "c" [style=dashed`,
		`version: 1.0.0`,
		`"c" [label="c", fillcolor=lightgrey`,
		"dotted",
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT() missing %q:\n%s", want, dot)
		}
	}
}
