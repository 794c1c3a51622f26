// Package pkg holds the libraries behind stacksolve, a dependency resolver
// that turns a requested package set into a conflict-free configuration.
//
// # Architecture
//
// The data flow of one resolution:
//
//	requested names
//	      ↓
//	[deps] Builder (consults a Store, retries, caches)
//	      ↓
//	[graph] Graph
//	      ↓
//	[analyze] DetectCycles + DetectConflicts
//	      ↓
//	[score] compatibility features, [search] cost + stochastic/greedy search
//	      ↓
//	[engine] Result (appended to a bounded history)
//
// # Packages
//
// Domain:
//
//   - [graph]: the package graph, its JSON snapshot and DOT/SVG rendering
//   - [deps]: the Store contract, the graph Builder and the cached store
//   - [analyze]: cycle and conflict detection
//   - [score]: feature vectors and pairwise compatibility
//   - [search]: the cost function and configuration search
//   - [engine]: the end-to-end resolution and its history
//
// Infrastructure:
//
//   - [errors]: coded errors shared by the CLI and the HTTP API
//   - [retry]: retry with exponential backoff
//   - [cache]: null, file and Redis caches
//   - [observability]: hooks and their Prometheus implementation
//   - [buildinfo]: version information
//
// # Quick Start
//
//	store, _ := catalog.Load("packages.toml")
//	e := engine.New(store, engine.Options{})
//	res, err := e.Resolve(ctx, []string{"web-app"}, engine.Constraints{})
//	if err != nil {
//	    return err
//	}
//	fmt.Println(res.SearchMethod, res.Confidence, res.Included())
//
// [graph]: https://pkg.go.dev/github.com/matzehuels/stacksolve/pkg/graph
// [deps]: https://pkg.go.dev/github.com/matzehuels/stacksolve/pkg/deps
// [analyze]: https://pkg.go.dev/github.com/matzehuels/stacksolve/pkg/analyze
// [score]: https://pkg.go.dev/github.com/matzehuels/stacksolve/pkg/score
// [search]: https://pkg.go.dev/github.com/matzehuels/stacksolve/pkg/search
// [engine]: https://pkg.go.dev/github.com/matzehuels/stacksolve/pkg/engine
// [errors]: https://pkg.go.dev/github.com/matzehuels/stacksolve/pkg/errors
// [retry]: https://pkg.go.dev/github.com/matzehuels/stacksolve/pkg/retry
// [cache]: https://pkg.go.dev/github.com/matzehuels/stacksolve/pkg/cache
// [observability]: https://pkg.go.dev/github.com/matzehuels/stacksolve/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/stacksolve/pkg/buildinfo
package pkg
