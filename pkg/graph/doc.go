// Package graph provides the package dependency graph used by every stage of
// resolution, along with its JSON wire format and Graphviz rendering.
//
// # Overview
//
// A [Graph] holds [Package] nodes keyed by name and directed [Edge] values
// tagged with a [Relationship]: [DependsOn] for ordinary dependencies and
// [ConflictsWith] for declared incompatibilities. Both packages and edges keep
// their insertion order, which makes every downstream algorithm
// deterministic.
//
//	g := graph.New()
//	g.AddPackage(graph.Package{Name: "app", Version: "1.0.0"})
//	g.AddPackage(graph.Package{Name: "lib", Version: "2.1.0"})
//	g.AddEdge(graph.Edge{From: "app", To: "lib"})
//
// Re-adding a package with an existing name updates it in place, and
// replaying an identical edge is a no-op. Cycles are allowed: the graph
// models what the metadata store reports, and the analyze package reports
// cycles as findings.
//
// # Serialization
//
// [Graph.Snapshot] produces the node-link form embedded in resolution
// results:
//
//	{
//	  "nodes": [{"id": "app", "version": "1.0.0", "architecture": "", "license": ""}],
//	  "edges": [{"source": "app", "target": "lib", "relationship": "depends_on"}]
//	}
//
// [MarshalGraph], [WriteGraph] and [ReadGraph] move snapshots through bytes
// and streams.
//
// # Rendering
//
// [ToDOT] draws a graph (optionally shaded by a chosen configuration) as
// Graphviz DOT, and [RenderSVG] turns DOT into SVG with go-graphviz.
//
// # Concurrency
//
// Graphs are not safe for concurrent mutation. A fully built graph is only
// read by later stages and can be shared between goroutines.
package graph
