package engine

import (
	"encoding/json"
	"time"

	"github.com/matzehuels/stacksolve/pkg/analyze"
	"github.com/matzehuels/stacksolve/pkg/graph"
)

// Result is the outcome of one resolution. Results are immutable once
// returned and may be shared between goroutines.
type Result struct {
	ID            string             `json:"resolution_id"`
	Requested     []string           `json:"requested_packages"`
	Graph         graph.Snapshot     `json:"graph"`
	Cycles        [][]string         `json:"cycles"`
	Conflicts     []analyze.Conflict `json:"conflicts"`
	Configuration map[string]bool    `json:"chosen_configuration"`
	Confidence    float64            `json:"confidence"`
	SearchMethod  string             `json:"search_method"`
	Duration      time.Duration      `json:"-"`
	DurationMS    uint64             `json:"duration_ms"`

	Cost       float64   `json:"cost"`
	Unresolved []string  `json:"unresolved,omitempty"`
	Restarts   int       `json:"restarts"`
	TimedOut   bool      `json:"timed_out,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Included returns the included package ids in graph order.
func (r *Result) Included() []string {
	var out []string
	for _, n := range r.Graph.Nodes {
		if r.Configuration[n.ID] {
			out = append(out, n.ID)
		}
	}
	return out
}

// Excluded returns the excluded package ids in graph order.
func (r *Result) Excluded() []string {
	var out []string
	for _, n := range r.Graph.Nodes {
		if !r.Configuration[n.ID] {
			out = append(out, n.ID)
		}
	}
	return out
}

// MarshalIndent renders r as indented JSON.
func (r *Result) MarshalIndent() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}
