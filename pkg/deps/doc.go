// Package deps builds dependency graphs from a package metadata store.
//
// # Overview
//
// A [Store] answers two questions about a package: its direct dependencies
// and its descriptive metadata (version, architecture, license, declared
// conflicts). The [Builder] expands a requested set breadth-first, one
// level at a time, fetching each level with a bounded worker pool:
//
//	b := deps.NewBuilder(store, deps.Options{MaxDepth: 6})
//	g, err := b.Build(ctx, []string{"web-app", "worker"})
//
// # Failure Handling
//
// Every store call runs under [Options.LookupTimeout] and is retried with
// exponential backoff when the failure is transient (timeouts, or errors
// wrapped with retry.Retryable). A store signals an unknown package with
// [NotFound], which is never retried.
//
//   - A requested package that cannot be fetched aborts the build with
//     PACKAGE_NOT_FOUND (or METADATA_FETCH for persistent transient errors).
//   - A transitive package that cannot be fetched stays in the graph marked
//     Unresolved, and expansion stops along that branch.
//   - Packages at MaxDepth are added but not expanded and are marked
//     Truncated.
//
// Declared conflicts become conflicts_with edges once the whole graph is
// known; targets outside the graph are ignored. Finally every package is
// annotated with its compatibility feature vector.
//
// # Stores
//
// Two stores ship with the module:
//
//   - [catalog]: an in-memory store read from a TOML file
//   - [mongostore]: documents in a MongoDB collection
//
// [NewCached] wraps any store with a cache.Cache (file or Redis) so repeated
// resolutions skip remote lookups.
//
// [catalog]: github.com/matzehuels/stacksolve/pkg/deps/catalog
// [mongostore]: github.com/matzehuels/stacksolve/pkg/deps/mongostore
package deps
