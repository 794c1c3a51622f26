// Package search chooses which packages of a dependency graph to include.
//
// A configuration is a boolean per package. [NewCost] builds the function
// that prices a configuration: every conflict whose entities are all
// included adds its severity weight, straying from the target include ratio
// adds a balance penalty, and every included depends_on pair adds its
// incompatibility (1 minus the pair's compatibility score).
//
// [Search] minimises that cost with one of two methods, picked by graph size:
//
//   - stochastic (at most [DefaultExhaustiveLimit] packages): random-restart
//     hill climbing. Each restart draws a random configuration from its own
//     PCG stream seeded with (Seed, restart index) and flips single packages
//     while that lowers the cost. Restarts run on a worker pool and are
//     reduced in index order, so a fixed seed always yields the same result.
//   - greedy_fallback (larger graphs): include packages in insertion order
//     unless that would complete a high-severity conflict.
//
// Confidence is the share of restarts that landed within [Tolerance] of the
// best cost, or [GreedyConfidence] for the greedy pass. When the context
// ends early the best result so far is returned, the method is suffixed with
// " (timeout)" and confidence is halved.
package search
