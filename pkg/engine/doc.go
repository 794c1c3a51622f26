// Package engine orchestrates a full dependency resolution.
//
// [Engine.Resolve] validates the request, builds the dependency graph from
// the configured deps.Store, detects cycles and conflicts, searches for the
// cheapest include/exclude configuration and records the [Result] in a
// bounded in-memory [History]:
//
//	store, _ := catalog.Load("catalog.toml")
//	eng := engine.New(store, engine.Options{})
//	res, err := eng.Resolve(ctx, []string{"web-app"}, engine.Constraints{})
//
// An Engine is safe for concurrent use. Each call builds its own graph; the
// history is the only state shared between calls.
//
// # Constraints
//
// [Constraints] override engine defaults per call. Nil fields keep the
// default, and zero values for max_depth and search_budget do too. A
// deadline bounds the whole call. When it passes while the graph is being
// built, packages not yet fetched are marked unresolved and the search runs
// on the partial graph. When it passes during the search, the best
// configuration found so far is returned with a " (timeout)" method suffix
// and halved confidence. Only a requested package whose metadata could not
// be fetched in time fails the call, with TIMEOUT.
package engine
