package search

import (
	"context"
	"math"
	"math/rand/v2"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/stacksolve/pkg/analyze"
	"github.com/matzehuels/stacksolve/pkg/graph"
)

// Method names reported in [Result.Method].
const (
	MethodStochastic = "stochastic"
	MethodGreedy     = "greedy_fallback"
	TimeoutSuffix    = " (timeout)"
)

// Search defaults.
const (
	DefaultBudget          = 1000
	DefaultExhaustiveLimit = 20
	DefaultSeed            = 42
	// Tolerance is the relative distance from the best cost within which a
	// restart counts towards confidence.
	Tolerance = 0.05
	// GreedyConfidence is reported for the greedy pass, which has no
	// restarts to measure.
	GreedyConfidence = 0.6
)

// Options configures [Search].
type Options struct {
	// Budget is the number of random restarts (default: 1000).
	Budget int
	// Seed derives every restart's random stream. Zero is a valid seed.
	Seed uint64
	// ExhaustiveLimit is the largest graph searched stochastically
	// (default: 20). Larger graphs use the greedy pass.
	ExhaustiveLimit int
	// Workers bounds concurrent restarts (default: GOMAXPROCS).
	Workers int
}

// WithDefaults returns a copy of o with zero fields replaced by defaults.
func (o Options) WithDefaults() Options {
	if o.Budget <= 0 {
		o.Budget = DefaultBudget
	}
	if o.ExhaustiveLimit <= 0 {
		o.ExhaustiveLimit = DefaultExhaustiveLimit
	}
	if o.Workers <= 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}
	return o
}

// Candidate is one include/exclude configuration and its cost.
type Candidate struct {
	Included map[string]bool `json:"included"`
	Cost     float64         `json:"cost"`
}

// IncludedIDs returns the included package names in the given order.
func (c Candidate) IncludedIDs(order []string) []string {
	var out []string
	for _, id := range order {
		if c.Included[id] {
			out = append(out, id)
		}
	}
	return out
}

// Result is the outcome of a search.
type Result struct {
	Candidate
	Method     string
	Confidence float64
	TimedOut   bool
	// Restarts counts the restarts that ran to completion.
	Restarts int
}

// Search picks the configuration of g with the lowest cost. conflicts are
// only consulted by the greedy pass; the stochastic pass sees them through
// cost. Search never fails: when ctx ends it returns the best result found
// so far with TimedOut set.
func Search(ctx context.Context, g *graph.Graph, conflicts []analyze.Conflict, cost CostFunc, opts Options) Result {
	opts = opts.WithDefaults()

	var r Result
	if g.NodeCount() > opts.ExhaustiveLimit {
		r = greedy(ctx, g, conflicts, cost)
	} else {
		r = stochastic(ctx, g, cost, opts)
	}
	if r.TimedOut {
		r.Method += TimeoutSuffix
		r.Confidence /= 2
	}
	return r
}

type restart struct {
	mask []bool
	cost float64
	done bool
}

func stochastic(ctx context.Context, g *graph.Graph, cost CostFunc, opts Options) Result {
	n := g.NodeCount()
	results := make([]restart, opts.Budget)

	var eg errgroup.Group
	eg.SetLimit(opts.Workers)
	for i := range opts.Budget {
		if ctx.Err() != nil {
			break
		}
		eg.Go(func() error {
			results[i] = climb(ctx, n, cost, rand.New(rand.NewPCG(opts.Seed, uint64(i))))
			return nil
		})
	}
	_ = eg.Wait()

	best := -1
	completed := 0
	for i, r := range results {
		if !r.done {
			continue
		}
		completed++
		if best < 0 || r.cost < results[best].cost {
			best = i
		}
	}

	out := Result{Method: MethodStochastic, Restarts: completed, TimedOut: completed < opts.Budget}
	if best < 0 {
		// Nothing finished: fall back to installing everything.
		mask := make([]bool, n)
		for i := range mask {
			mask[i] = true
		}
		out.Candidate = candidate(g, mask, cost(mask))
		return out
	}

	bestCost := results[best].cost
	threshold := bestCost + Tolerance*math.Abs(bestCost) + 1e-9
	near := 0
	for _, r := range results {
		if r.done && r.cost <= threshold {
			near++
		}
	}
	out.Candidate = candidate(g, results[best].mask, bestCost)
	out.Confidence = float64(near) / float64(completed)
	return out
}

// climb runs one restart: a random start followed by first-improvement
// single-flip hill climbing. The restart is discarded if ctx ends first.
func climb(ctx context.Context, n int, cost CostFunc, rng *rand.Rand) restart {
	if ctx.Err() != nil {
		return restart{}
	}
	mask := make([]bool, n)
	for i := range mask {
		mask[i] = rng.IntN(2) == 1
	}
	current := cost(mask)

	for improved := true; improved; {
		if ctx.Err() != nil {
			return restart{}
		}
		improved = false
		for i := range mask {
			mask[i] = !mask[i]
			if c := cost(mask); c < current {
				current = c
				improved = true
				break
			}
			mask[i] = !mask[i]
		}
	}
	return restart{mask: mask, cost: current, done: true}
}

func greedy(ctx context.Context, g *graph.Graph, conflicts []analyze.Conflict, cost CostFunc) Result {
	pos := g.Positions()
	var high [][]int
	for _, c := range conflicts {
		if c.Severity != analyze.SeverityHigh {
			continue
		}
		members := make([]int, 0, len(c.Entities))
		for _, id := range c.Entities {
			if i, ok := pos[id]; ok {
				members = append(members, i)
			}
		}
		if len(members) == len(c.Entities) && len(members) > 0 {
			high = append(high, members)
		}
	}

	mask := make([]bool, g.NodeCount())
	timedOut := false
	for i := range mask {
		if ctx.Err() != nil {
			timedOut = true
			break
		}
		mask[i] = true
		for _, members := range high {
			if allIncluded(mask, members) {
				mask[i] = false
				break
			}
		}
	}

	return Result{
		Candidate:  candidate(g, mask, cost(mask)),
		Method:     MethodGreedy,
		Confidence: GreedyConfidence,
		TimedOut:   timedOut,
	}
}

func candidate(g *graph.Graph, mask []bool, cost float64) Candidate {
	included := make(map[string]bool, len(mask))
	for i, id := range g.IDs() {
		included[id] = mask[i]
	}
	return Candidate{Included: included, Cost: cost}
}
