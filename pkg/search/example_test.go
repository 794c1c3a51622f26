package search_test

import (
	"context"
	"fmt"

	"github.com/matzehuels/stacksolve/pkg/analyze"
	"github.com/matzehuels/stacksolve/pkg/graph"
	"github.com/matzehuels/stacksolve/pkg/search"
)

func ExampleSearch() {
	g := graph.New()
	_ = g.AddPackage(graph.Package{Name: "libx-1.0"})
	_ = g.AddPackage(graph.Package{Name: "libx-2.0"})
	_ = g.AddPackage(graph.Package{Name: "app"})

	conflicts := analyze.DetectConflicts(g)
	cost := search.NewCost(g, conflicts, nil, search.DefaultCostOptions())
	r := search.Search(context.Background(), g, conflicts, cost, search.Options{Seed: search.DefaultSeed})

	fmt.Println(r.Method)
	fmt.Println("both majors installed:", r.Included["libx-1.0"] && r.Included["libx-2.0"])
	fmt.Println("app installed:", r.Included["app"])
	// Output:
	// stochastic
	// both majors installed: false
	// app installed: true
}
