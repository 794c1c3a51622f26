package deps

import (
	"context"
	stderrors "errors"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stacksolve/pkg/errors"
	"github.com/matzehuels/stacksolve/pkg/graph"
	"github.com/matzehuels/stacksolve/pkg/observability"
	"github.com/matzehuels/stacksolve/pkg/retry"
	"github.com/matzehuels/stacksolve/pkg/score"
)

// Builder turns a list of requested packages into a dependency graph by
// crawling a [Store].
type Builder struct {
	store Store
	opts  Options
}

// NewBuilder creates a builder over store. Zero options take defaults.
func NewBuilder(store Store, opts Options) *Builder {
	return &Builder{store: store, opts: opts.WithDefaults()}
}

// Options returns the effective builder options.
func (b *Builder) Options() Options { return b.opts }

// Build expands requested breadth-first, one depth level at a time.
//
// Lookups within a level run concurrently but their results are applied in
// discovery order, so the same store always yields the same graph with the
// same insertion order. A requested package that is unknown or cannot be
// fetched fails the build; a transitive one is kept as an unresolved node
// and not expanded. Packages at MaxDepth get their metadata but are marked
// truncated instead of expanded.
//
// Once ctx is done no further lookups are issued: every package still
// pending becomes unresolved and the partial graph is returned. Only a
// requested package whose metadata was never fetched fails with TIMEOUT.
func (b *Builder) Build(ctx context.Context, requested []string) (*graph.Graph, error) {
	roots := dedupe(requested)
	if len(roots) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "no packages requested")
	}

	c := &crawler{
		ctx:      ctx,
		opts:     b.opts,
		store:    b.store,
		source:   SourceName(b.store),
		log:      b.opts.Logger,
		g:        graph.New(),
		visited:  make(map[string]bool),
		declared: make(map[string][]string),
	}
	return c.run(roots)
}

type crawler struct {
	ctx    context.Context
	opts   Options
	store  Store
	source string
	log    *log.Logger

	g        *graph.Graph
	visited  map[string]bool
	declared map[string][]string
}

type job struct {
	name  string
	depth int
}

type result struct {
	job
	meta *Metadata
	deps []string
	err  error
}

func (c *crawler) run(roots []string) (*graph.Graph, error) {
	frontier := make([]job, 0, len(roots))
	for _, r := range roots {
		c.visited[r] = true
		frontier = append(frontier, job{name: r})
	}

	for len(frontier) > 0 {
		c.log.Debug("expanding level", "depth", frontier[0].depth, "packages", len(frontier))
		var next []job
		for _, r := range c.fetchLevel(frontier) {
			n, err := c.apply(r)
			if err != nil {
				return nil, err
			}
			next = append(next, n...)
		}
		frontier = next
	}

	c.linkConflicts()
	score.Annotate(c.g)
	return c.g, nil
}

// fetchLevel looks up every job with a bounded worker pool. results[i]
// belongs to jobs[i].
func (c *crawler) fetchLevel(jobs []job) []result {
	results := make([]result, len(jobs))
	queue := make(chan int)

	var wg sync.WaitGroup
	for range min(c.opts.Workers, len(jobs)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range queue {
				results[i] = c.fetch(jobs[i])
			}
		}()
	}
	for i := range jobs {
		queue <- i
	}
	close(queue)
	wg.Wait()
	return results
}

func (c *crawler) fetch(j job) result {
	r := result{job: j}
	r.err = c.lookup(j.name, "metadata", func(ctx context.Context) error {
		m, err := c.store.Metadata(ctx, j.name)
		r.meta = m
		return err
	})
	if r.err != nil || j.depth >= c.opts.MaxDepth {
		return r
	}
	r.err = c.lookup(j.name, "dependencies", func(ctx context.Context) error {
		d, err := c.store.Dependencies(ctx, j.name)
		r.deps = d
		return err
	})
	return r
}

// lookup runs one store call under the per-call timeout with bounded retry.
// A call that hits its own timeout is retried like any transient failure.
func (c *crawler) lookup(name, op string, fn func(context.Context) error) error {
	if err := c.ctx.Err(); err != nil {
		return err
	}
	policy := retry.Policy{
		Retries: c.opts.Retries,
		Delay:   c.opts.RetryDelay,
		OnRetry: func(n int, err error) {
			observability.Store().OnRetry(c.ctx, c.source, name, n, err)
			c.log.Debug("retrying lookup", "package", name, "op", op, "retry", n, "err", err)
		},
	}
	return retry.Do(c.ctx, policy, func(ctx context.Context) error {
		lctx, cancel := context.WithTimeout(ctx, c.opts.LookupTimeout)
		defer cancel()

		start := time.Now()
		err := fn(lctx)
		observability.Store().OnLookup(ctx, c.source, op, time.Since(start), err)
		if err != nil && ctx.Err() == nil && stderrors.Is(lctx.Err(), context.DeadlineExceeded) && !retry.IsRetryable(err) {
			err = retry.Retryable(err)
		}
		return err
	})
}

// apply adds one lookup result to the graph and returns the newly
// discovered packages to visit next.
func (c *crawler) apply(r result) ([]job, error) {
	if r.err != nil {
		if r.depth == 0 && (r.meta == nil || c.ctx.Err() == nil) {
			return nil, c.rootError(r)
		}
		if c.ctx.Err() != nil {
			c.log.Debug("lookup skipped after deadline", "package", r.name)
		} else {
			c.log.Warn("dependency unresolved", "package", r.name, "err", r.err)
		}
		pkg := toPackage(r.name, r.meta)
		pkg.Unresolved = true
		_ = c.g.AddPackage(pkg)
		if r.meta != nil && len(r.meta.Conflicts) > 0 {
			c.declared[r.name] = r.meta.Conflicts
		}
		return nil, nil
	}

	pkg := toPackage(r.name, r.meta)
	pkg.Truncated = r.depth >= c.opts.MaxDepth
	if err := c.g.AddPackage(pkg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "add package %s", r.name)
	}
	if r.meta != nil && len(r.meta.Conflicts) > 0 {
		c.declared[r.name] = r.meta.Conflicts
	}

	var next []job
	for _, dep := range dedupe(r.deps) {
		if !c.g.Has(dep) {
			_ = c.g.AddPackage(graph.Package{Name: dep})
		}
		if err := c.g.AddEdge(graph.Edge{From: r.name, To: dep, Relationship: graph.DependsOn}); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "add edge %s -> %s", r.name, dep)
		}
		if !c.visited[dep] {
			c.visited[dep] = true
			next = append(next, job{name: dep, depth: r.depth + 1})
		}
	}
	return next, nil
}

func (c *crawler) rootError(r result) error {
	switch {
	case stderrors.Is(r.err, ErrPackageNotFound):
		return errors.Wrap(errors.ErrCodePackageNotFound, r.err, "requested package %q", r.name)
	case c.ctx.Err() != nil:
		return errors.Wrap(errors.ErrCodeTimeout, c.ctx.Err(), "build interrupted")
	default:
		return errors.Wrap(errors.ErrCodeMetadataFetch, r.err, "fetch requested package %q", r.name)
	}
}

// linkConflicts turns declared conflicts into conflicts_with edges once every
// package is known. Targets outside the graph are ignored.
func (c *crawler) linkConflicts() {
	for _, id := range c.g.IDs() {
		for _, target := range c.declared[id] {
			if target == id || !c.g.Has(target) {
				continue
			}
			_ = c.g.AddEdge(graph.Edge{From: id, To: target, Relationship: graph.ConflictsWith})
		}
	}
}

func toPackage(name string, m *Metadata) graph.Package {
	if m == nil {
		return graph.Package{Name: name}
	}
	return graph.Package{
		Name:            name,
		Version:         m.Version,
		Architecture:    m.Architecture,
		License:         m.License,
		DependencyCount: m.DependencyCount,
		ApplicationType: m.ApplicationType,
		Metadata:        graph.Metadata(maps.Clone(m.Metadata)),
	}
}

func dedupe(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return slices.Clip(out)
}
