package engine

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/stacksolve/pkg/analyze"
	"github.com/matzehuels/stacksolve/pkg/deps"
	"github.com/matzehuels/stacksolve/pkg/errors"
	"github.com/matzehuels/stacksolve/pkg/graph"
	"github.com/matzehuels/stacksolve/pkg/observability"
	"github.com/matzehuels/stacksolve/pkg/score"
	"github.com/matzehuels/stacksolve/pkg/search"
)

// Options configures an [Engine].
type Options struct {
	History int                 // Results retained (default: 1000)
	Logger  *log.Logger         // Default: log.Default()
	Build   deps.Options        // Graph builder defaults
	Search  search.Options      // Search defaults; a zero Seed uses search.DefaultSeed
	Cost    *search.CostOptions // Cost tuning (default: search.DefaultCostOptions())
}

// WithDefaults returns a copy of Options with zero values replaced by defaults.
func (o Options) WithDefaults() Options {
	opts := o
	if opts.History <= 0 {
		opts.History = DefaultHistorySize
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Build.Logger == nil {
		opts.Build.Logger = opts.Logger
	}
	if opts.Search.Seed == 0 {
		opts.Search.Seed = search.DefaultSeed
	}
	if opts.Cost == nil {
		c := search.DefaultCostOptions()
		opts.Cost = &c
	}
	return opts
}

// Engine resolves requested package sets against one metadata store.
type Engine struct {
	store   deps.Store
	opts    Options
	history *History
}

// New creates an engine over store.
func New(store deps.Store, opts Options) *Engine {
	opts = opts.WithDefaults()
	return &Engine{store: store, opts: opts, history: NewHistory(opts.History)}
}

// History returns the engine's result log.
func (e *Engine) History() *History { return e.history }

// Resolve builds, analyzes and searches the dependency graph of requested.
//
// Invalid constraints or package names fail with INVALID_CONSTRAINT or
// INVALID_PACKAGE before any lookup. An unknown requested package fails
// with PACKAGE_NOT_FOUND, and one whose metadata is still pending at the
// deadline with TIMEOUT. Cycles, conflicts, unresolved transitive
// dependencies and an expired deadline are reported in the result
// rather than as errors.
func (e *Engine) Resolve(ctx context.Context, requested []string, c Constraints) (*Result, error) {
	start := time.Now()
	hooks := observability.Resolve()
	hooks.OnResolveStart(ctx, len(requested))

	res, err := e.resolve(ctx, requested, c, start)

	var summary observability.ResolveSummary
	if err == nil {
		summary = observability.ResolveSummary{
			Nodes:      len(res.Graph.Nodes),
			Unresolved: len(res.Unresolved),
			Cycles:     len(res.Cycles),
			Conflicts:  len(res.Conflicts),
			Method:     res.SearchMethod,
			Confidence: res.Confidence,
		}
	}
	hooks.OnResolveComplete(ctx, summary, time.Since(start), err)
	return res, err
}

func (e *Engine) resolve(ctx context.Context, requested []string, c Constraints, start time.Time) (*Result, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if err := errors.ValidatePackageNames(requested); err != nil {
		return nil, err
	}

	// The deadline covers the whole resolution. Lookups still pending when
	// it expires become unresolved packages and the search returns its
	// best candidate so far.
	if c.DeadlineMS != nil && *c.DeadlineMS > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithDeadline(ctx, start.Add(time.Duration(*c.DeadlineMS)*time.Millisecond))
		defer cancel()
	}

	g, err := e.build(ctx, requested, c)
	if err != nil {
		return nil, err
	}

	cycles := analyze.DetectCycles(g)
	conflicts := append(analyze.DetectConflicts(g), analyze.CycleConflicts(cycles)...)

	costOpts := *e.opts.Cost
	if c.TargetIncludeRatio != nil {
		costOpts.TargetRatio = *c.TargetIncludeRatio
	}
	searchOpts := e.opts.Search
	if c.SearchBudget != nil && *c.SearchBudget > 0 {
		searchOpts.Budget = *c.SearchBudget
	}
	if c.Seed != nil {
		searchOpts.Seed = *c.Seed
	}
	cost := search.NewCost(g, conflicts, score.NewScorer(g), costOpts)

	sr := search.Search(ctx, g, conflicts, cost, searchOpts)

	elapsed := time.Since(start)
	res := &Result{
		ID:            uuid.NewString(),
		Requested:     append([]string{}, requested...),
		Graph:         g.Snapshot(),
		Cycles:        nonNil(cycles),
		Conflicts:     nonNil(conflicts),
		Configuration: sr.Included,
		Confidence:    sr.Confidence,
		SearchMethod:  sr.Method,
		Duration:      elapsed,
		DurationMS:    uint64(elapsed.Milliseconds()),
		Cost:          sr.Cost,
		Unresolved:    g.Unresolved(),
		Restarts:      sr.Restarts,
		TimedOut:      sr.TimedOut,
		CreatedAt:     start.UTC(),
	}
	e.history.Add(res)

	logger := e.opts.Logger
	if sr.TimedOut {
		logger.Warn("deadline reached", "id", res.ID, "restarts", sr.Restarts)
	}
	logger.Info("resolved",
		"id", res.ID,
		"packages", g.NodeCount(),
		"conflicts", len(conflicts),
		"cycles", len(cycles),
		"method", sr.Method,
		"confidence", sr.Confidence,
		"duration", elapsed.Round(time.Millisecond),
	)
	return res, nil
}

func (e *Engine) build(ctx context.Context, requested []string, c Constraints) (*graph.Graph, error) {
	opts := e.opts.Build
	if c.MaxDepth != nil && *c.MaxDepth > 0 {
		opts.MaxDepth = *c.MaxDepth
	}

	start := time.Now()
	g, err := deps.NewBuilder(e.store, opts).Build(ctx, requested)
	nodes := 0
	if g != nil {
		nodes = g.NodeCount()
	}
	observability.Resolve().OnBuildComplete(ctx, nodes, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	e.opts.Logger.Debug("graph built", "packages", nodes, "edges", g.EdgeCount(), "unresolved", len(g.Unresolved()))
	return g, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
