package search

import (
	"math"

	"github.com/matzehuels/stacksolve/pkg/analyze"
	"github.com/matzehuels/stacksolve/pkg/graph"
	"github.com/matzehuels/stacksolve/pkg/score"
)

// Cost defaults.
const (
	DefaultTargetRatio         = 0.7
	DefaultBalanceWeight       = 1.0
	DefaultCompatibilityWeight = 0.5
)

// DefaultSeverityWeights prices a fully included conflict by its severity.
var DefaultSeverityWeights = map[analyze.Severity]float64{
	analyze.SeverityHigh:   10,
	analyze.SeverityMedium: 3,
	analyze.SeverityLow:    1,
}

// CostFunc prices a configuration given as one inclusion flag per package,
// indexed by graph insertion position. Lower is better.
type CostFunc func(included []bool) float64

// CostOptions tunes [NewCost].
type CostOptions struct {
	// TargetRatio is the preferred fraction of included packages, in [0,1].
	TargetRatio float64
	// BalanceWeight scales the penalty for missing the target ratio.
	BalanceWeight float64
	// CompatibilityWeight scales the incompatibility of included
	// depends_on pairs. Zero disables the term.
	CompatibilityWeight float64
	// SeverityWeights overrides [DefaultSeverityWeights] when non-nil.
	SeverityWeights map[analyze.Severity]float64
}

// DefaultCostOptions returns the default cost tuning.
func DefaultCostOptions() CostOptions {
	return CostOptions{
		TargetRatio:         DefaultTargetRatio,
		BalanceWeight:       DefaultBalanceWeight,
		CompatibilityWeight: DefaultCompatibilityWeight,
	}
}

type weightedSet struct {
	members []int
	weight  float64
}

// NewCost builds the cost function for g and its conflicts. scorer may be
// nil, in which case a fresh [score.Scorer] over g is used. Conflicts naming
// a package that is not in g can never be fully included and are ignored.
func NewCost(g *graph.Graph, conflicts []analyze.Conflict, scorer *score.Scorer, opts CostOptions) CostFunc {
	weights := opts.SeverityWeights
	if weights == nil {
		weights = DefaultSeverityWeights
	}
	if scorer == nil {
		scorer = score.NewScorer(g)
	}
	pos := g.Positions()
	n := g.NodeCount()

	var sets []weightedSet
	for _, c := range conflicts {
		if ws, ok := conflictSet(c, pos, weights); ok {
			sets = append(sets, ws)
		}
	}

	var pairs []weightedSet
	if opts.CompatibilityWeight != 0 {
		for _, e := range g.EdgesOf(graph.DependsOn) {
			if e.From == e.To {
				continue
			}
			pairs = append(pairs, weightedSet{
				members: []int{pos[e.From], pos[e.To]},
				weight:  opts.CompatibilityWeight * (1 - scorer.Pair(e.From, e.To)),
			})
		}
	}

	target := opts.TargetRatio * float64(n)
	return func(included []bool) float64 {
		var cost float64
		for _, s := range sets {
			if allIncluded(included, s.members) {
				cost += s.weight
			}
		}
		count := 0
		for _, in := range included {
			if in {
				count++
			}
		}
		cost += opts.BalanceWeight * math.Abs(float64(count)-target)
		for _, p := range pairs {
			if allIncluded(included, p.members) {
				cost += p.weight
			}
		}
		return cost
	}
}

func conflictSet(c analyze.Conflict, pos map[string]int, weights map[analyze.Severity]float64) (weightedSet, bool) {
	members := make([]int, 0, len(c.Entities))
	for _, id := range c.Entities {
		i, ok := pos[id]
		if !ok {
			return weightedSet{}, false
		}
		members = append(members, i)
	}
	if len(members) == 0 {
		return weightedSet{}, false
	}
	return weightedSet{members: members, weight: weights[c.Severity]}, true
}

func allIncluded(included []bool, members []int) bool {
	for _, m := range members {
		if !included[m] {
			return false
		}
	}
	return true
}
