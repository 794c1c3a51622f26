package engine

import (
	"math"

	"github.com/matzehuels/stacksolve/pkg/errors"
)

// Constraints tune a single resolution. Nil fields take engine defaults.
type Constraints struct {
	MaxDepth           *int     `json:"max_depth,omitempty" toml:"max_depth"`
	SearchBudget       *int     `json:"search_budget,omitempty" toml:"search_budget"`
	DeadlineMS         *int     `json:"deadline_ms,omitempty" toml:"deadline_ms"`
	TargetIncludeRatio *float64 `json:"target_include_ratio,omitempty" toml:"target_include_ratio"`
	Seed               *uint64  `json:"seed,omitempty" toml:"seed"`
}

// Validate rejects negative limits and ratios outside [0,1] with an
// INVALID_CONSTRAINT error.
func (c Constraints) Validate() error {
	for _, f := range []struct {
		name string
		v    *int
	}{
		{"max_depth", c.MaxDepth},
		{"search_budget", c.SearchBudget},
		{"deadline_ms", c.DeadlineMS},
	} {
		if f.v != nil && *f.v < 0 {
			return errors.New(errors.ErrCodeInvalidConstraint, "%s must be >= 0, got %d", f.name, *f.v)
		}
	}
	if r := c.TargetIncludeRatio; r != nil && (math.IsNaN(*r) || *r < 0 || *r > 1) {
		return errors.New(errors.ErrCodeInvalidConstraint, "target_include_ratio must be within [0, 1], got %v", *r)
	}
	return nil
}

// Merge returns c with every nil field taken from fallback.
func (c Constraints) Merge(fallback Constraints) Constraints {
	if c.MaxDepth == nil {
		c.MaxDepth = fallback.MaxDepth
	}
	if c.SearchBudget == nil {
		c.SearchBudget = fallback.SearchBudget
	}
	if c.DeadlineMS == nil {
		c.DeadlineMS = fallback.DeadlineMS
	}
	if c.TargetIncludeRatio == nil {
		c.TargetIncludeRatio = fallback.TargetIncludeRatio
	}
	if c.Seed == nil {
		c.Seed = fallback.Seed
	}
	return c
}
