package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stacksolve/pkg/engine"
	"github.com/matzehuels/stacksolve/pkg/errors"
)

// Output formats for resolve and render.
const (
	formatText = "text"
	formatJSON = "json"
	formatDOT  = "dot"
	formatSVG  = "svg"
)

// resolveOpts holds the command-line flags for the resolve command.
type resolveOpts struct {
	store       storeFlags
	maxDepth    int
	budget      int
	deadline    time.Duration
	ratio       float64
	seed        uint64
	format      string
	output      string
	detailed    bool
	interactive bool
}

// resolveCommand creates the resolve command.
func (c *CLI) resolveCommand() *cobra.Command {
	var opts resolveOpts

	cmd := &cobra.Command{
		Use:   "resolve <package>...",
		Short: "Resolve a package set into a conflict-free configuration",
		Long: `Resolve builds the dependency graph of the requested packages, reports cycles
and conflicts, and searches for the configuration with the lowest cost.

Packages are read from a TOML catalog (--catalog) or a MongoDB collection
(--mongo-uri).`,
		Example: `  stacksolve resolve --catalog packages.toml web-app
  stacksolve resolve --catalog packages.toml --format json --budget 200 api worker
  stacksolve resolve --mongo-uri mongodb://localhost:27017 --format svg -o graph.svg api`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			constraints, err := opts.constraints(cmd)
			if err != nil {
				return err
			}
			return c.runResolve(cmd.Context(), args, constraints, opts)
		},
	}

	opts.store.register(cmd)
	cmd.Flags().IntVar(&opts.maxDepth, "max-depth", 0, "maximum dependency hops from a requested package")
	cmd.Flags().IntVar(&opts.budget, "budget", 0, "random restarts for the stochastic search")
	cmd.Flags().DurationVar(&opts.deadline, "deadline", 0, "stop searching after this long and keep the best result")
	cmd.Flags().Float64Var(&opts.ratio, "ratio", 0, "target fraction of packages to include (0..1)")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 0, "search seed")
	cmd.Flags().StringVarP(&opts.format, "format", "f", formatText, "output format: text, json, dot, svg")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show package details in dot/svg output")
	cmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "browse conflicts interactively")

	return cmd
}

// constraints builds constraints from the flags the user actually set.
func (o resolveOpts) constraints(cmd *cobra.Command) (engine.Constraints, error) {
	var c engine.Constraints
	flags := cmd.Flags()
	if flags.Changed("max-depth") {
		c.MaxDepth = &o.maxDepth
	}
	if flags.Changed("budget") {
		c.SearchBudget = &o.budget
	}
	if flags.Changed("deadline") {
		ms := int(o.deadline.Milliseconds())
		c.DeadlineMS = &ms
	}
	if flags.Changed("ratio") {
		c.TargetIncludeRatio = &o.ratio
	}
	if flags.Changed("seed") {
		c.Seed = &o.seed
	}
	switch o.format {
	case formatText, formatJSON, formatDOT, formatSVG:
	default:
		return c, errors.New(errors.ErrCodeInvalidFormat, "unknown format %q (want text, json, dot or svg)", o.format)
	}
	return c, c.Validate()
}

func (c *CLI) runResolve(ctx context.Context, requested []string, constraints engine.Constraints, opts resolveOpts) error {
	logger := loggerFromContext(ctx)
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}

	store, closeStore, err := c.openStore(ctx, opts.store)
	if err != nil {
		return err
	}
	defer closeStore()

	build := cfg.Resolve.buildOptions()
	build.Logger = logger
	e := engine.New(store, engine.Options{History: 1, Logger: logger, Build: build})

	var spin *Spinner
	if opts.format == formatText && !opts.interactive && opts.output == "" {
		spin = newSpinnerWithContext(ctx, fmt.Sprintf("Resolving %d package(s)...", len(requested)))
		spin.Start()
	}
	prog := newProgress(logger)
	res, err := e.Resolve(ctx, requested, constraints.Merge(cfg.Resolve.Constraints))
	if spin != nil {
		spin.Stop()
	}
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Resolved %d packages", len(res.Graph.Nodes)))

	if opts.interactive {
		return browseResult(res)
	}
	return writeResult(ctx, res, opts.format, opts.output, opts.detailed)
}

// writeResult renders res in format to path, or stdout when path is empty.
func writeResult(ctx context.Context, res *engine.Result, format, path string, detailed bool) error {
	if format == formatText {
		if path != "" {
			return errors.New(errors.ErrCodeInvalidFormat, "text output cannot be written to a file; use json")
		}
		printResult(res)
		return nil
	}

	var data []byte
	var err error
	switch format {
	case formatJSON:
		data, err = res.MarshalIndent()
		data = append(data, '\n')
	case formatDOT:
		var dot string
		dot, err = resultDOT(res, detailed)
		data = []byte(dot)
	case formatSVG:
		data, err = resultSVG(ctx, res, detailed)
	default:
		err = errors.New(errors.ErrCodeInvalidFormat, "unknown format %q", format)
	}
	if err != nil {
		return err
	}

	if path == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	printFile(path)
	return nil
}
