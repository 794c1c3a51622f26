package score

import (
	"math"
	"sync"

	"github.com/matzehuels/stacksolve/pkg/graph"
)

// Neutral is the score for a pair where either vector carries no signal.
const Neutral = 0.5

// Score returns the cosine similarity of a and b clamped to [0,1]. Vectors
// of different length are compared over their common prefix.
func Score(a, b []float64) float64 {
	n := min(len(a), len(b))
	var dot, na, nb float64
	for i := range n {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return Neutral
	}
	s := dot / (math.Sqrt(na) * math.Sqrt(nb))
	return math.Max(0, math.Min(1, s))
}

// Scorer scores package pairs of one graph, caching each unordered pair.
type Scorer struct {
	g *graph.Graph

	mu    sync.Mutex
	cache map[[2]string]float64
}

// NewScorer returns a scorer over g. Packages without a precomputed feature
// vector are extracted on demand.
func NewScorer(g *graph.Graph) *Scorer {
	return &Scorer{g: g, cache: make(map[[2]string]float64)}
}

// Pair returns the compatibility of packages a and b. Unknown packages score
// [Neutral].
func (s *Scorer) Pair(a, b string) float64 {
	key := [2]string{a, b}
	if b < a {
		key = [2]string{b, a}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.cache[key]; ok {
		return v
	}
	pa, okA := s.g.Package(a)
	pb, okB := s.g.Package(b)
	v := Neutral
	if okA && okB {
		v = Score(vector(pa), vector(pb))
	}
	s.cache[key] = v
	return v
}

func vector(p *graph.Package) []float64 {
	if len(p.Features) == Dimensions {
		return p.Features
	}
	return Extract(p)
}

// Annotate fills in the feature vector of every package in g.
func Annotate(g *graph.Graph) {
	for _, p := range g.Packages() {
		p.Features = Extract(p)
	}
}
