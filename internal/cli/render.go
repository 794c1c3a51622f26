package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stacksolve/pkg/engine"
	"github.com/matzehuels/stacksolve/pkg/errors"
	"github.com/matzehuels/stacksolve/pkg/graph"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	format   string // dot or svg
	output   string // output file (stdout when empty)
	detailed bool   // version, architecture and license in labels
}

// renderCommand creates the render command, which draws a resolution saved
// with "resolve --format json".
func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{format: formatSVG}

	cmd := &cobra.Command{
		Use:   "render <result.json>",
		Short: "Render a saved resolution as DOT or SVG",
		Long: `Render draws the graph of a resolution saved with "resolve --format json".
Excluded packages are greyed out and declared conflicts are drawn as dashed
red edges. Use "-" to read from stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.format != formatDOT && opts.format != formatSVG {
				return errors.New(errors.ErrCodeInvalidFormat, "render supports dot and svg, got %q", opts.format)
			}
			res, err := readResult(args[0])
			if err != nil {
				return err
			}
			return writeResult(cmd.Context(), res, opts.format, opts.output, opts.detailed)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: dot, svg")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show version, architecture and license in labels")

	return cmd
}

// readResult decodes a Result from path, or stdin for "-".
func readResult(path string) (*engine.Result, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	var res engine.Result
	if err := json.NewDecoder(r).Decode(&res); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode resolution %s", path)
	}
	return &res, nil
}

func resultDOT(res *engine.Result, detailed bool) (string, error) {
	g, err := graph.FromSnapshot(res.Graph)
	if err != nil {
		return "", fmt.Errorf("rebuild graph: %w", err)
	}
	return graph.ToDOT(g, graph.DOTOptions{Configuration: res.Configuration, Detailed: detailed}), nil
}

func resultSVG(ctx context.Context, res *engine.Result, detailed bool) ([]byte, error) {
	dot, err := resultDOT(res, detailed)
	if err != nil {
		return nil, err
	}
	return graph.RenderSVG(ctx, dot)
}
