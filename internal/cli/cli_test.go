package cli

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/stacksolve/pkg/engine"
	"github.com/matzehuels/stacksolve/pkg/errors"
)

const testCatalog = `
[packages.web]
version = "1.0.0"
license = "MIT"
dependencies = ["json-1.4", "json-2.0", "log"]

[packages."json-1.4"]
version = "1.4.0"

[packages."json-2.0"]
version = "2.0.0"

[packages.log]
version = "0.9.0"
`

// run executes the root command with args in an isolated environment.
func run(t *testing.T, args ...string) error {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	t.Setenv(envMongoURI, "")
	t.Setenv(envRedisURL, "")
	t.Setenv(envCatalog, "")

	root := New(io.Discard, LogInfo).RootCommand()
	root.SetArgs(args)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	return root.ExecuteContext(context.Background())
}

func TestResolveCommandJSON(t *testing.T) {
	dir := t.TempDir()
	cat := writeFile(t, dir, "packages.toml", testCatalog)
	out := filepath.Join(dir, "result.json")

	if err := run(t, "resolve", "--catalog", cat, "--format", "json", "--budget", "50", "--seed", "9", "-o", out, "web"); err != nil {
		t.Fatalf("resolve error = %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	var res engine.Result
	if err := json.Unmarshal(data, &res); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if !slices.Equal(res.Requested, []string{"web"}) {
		t.Errorf("Requested = %v", res.Requested)
	}
	if len(res.Graph.Nodes) != 4 {
		t.Errorf("nodes = %d, want 4", len(res.Graph.Nodes))
	}
	if len(res.Conflicts) != 1 || res.Conflicts[0].Kind != "version_conflict" {
		t.Errorf("Conflicts = %v", res.Conflicts)
	}
	if res.Configuration["json-1.4"] && res.Configuration["json-2.0"] {
		t.Error("both json majors included")
	}

	t.Run("render dot", func(t *testing.T) {
		dot := filepath.Join(dir, "graph.dot")
		if err := run(t, "render", "--format", "dot", "-o", dot, out); err != nil {
			t.Fatalf("render error = %v", err)
		}
		b, err := os.ReadFile(dot)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.HasPrefix(string(b), "digraph G {") || !strings.Contains(string(b), `"web" -> "log"`) {
			t.Errorf("dot output:\n%s", b)
		}
	})
}

func TestResolveCommandErrors(t *testing.T) {
	dir := t.TempDir()
	cat := writeFile(t, dir, "packages.toml", testCatalog)

	tests := []struct {
		name string
		args []string
		code errors.Code
	}{
		{"no source", []string{"resolve", "web"}, errors.ErrCodeInvalidInput},
		{"unknown package", []string{"resolve", "--catalog", cat, "-f", "json", "ghost"}, errors.ErrCodePackageNotFound},
		{"bad format", []string{"resolve", "--catalog", cat, "-f", "yaml", "web"}, errors.ErrCodeInvalidFormat},
		{"bad ratio", []string{"resolve", "--catalog", cat, "--ratio", "2", "web"}, errors.ErrCodeInvalidConstraint},
		{"negative budget", []string{"resolve", "--catalog", cat, "--budget", "-1", "web"}, errors.ErrCodeInvalidConstraint},
		{"text to file", []string{"resolve", "--catalog", cat, "-o", filepath.Join(dir, "x.txt"), "web"}, errors.ErrCodeInvalidFormat},
		{"render json", []string{"render", "-f", "json", "whatever.json"}, errors.ErrCodeInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := run(t, tt.args...)
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestCatalogCheckCommand(t *testing.T) {
	dir := t.TempDir()

	good := writeFile(t, dir, "good.toml", testCatalog)
	if err := run(t, "catalog", "check", good); err != nil {
		t.Errorf("check good catalog error = %v", err)
	}

	bad := writeFile(t, dir, "bad.toml", "[packages.a]\ndependencies = [\"a\", \"b\"]\n")
	err := run(t, "catalog", "check", bad)
	if !errors.Is(err, errors.ErrCodeInvalidCatalog) {
		t.Errorf("check bad catalog error = %v, want INVALID_CATALOG", err)
	}
}

func TestCatalogImportRequiresURI(t *testing.T) {
	cat := writeFile(t, t.TempDir(), "packages.toml", testCatalog)
	err := run(t, "catalog", "import", cat)
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("import error = %v, want INVALID_INPUT", err)
	}
}

func TestCacheClearCommand(t *testing.T) {
	if err := run(t, "cache", "clear"); err != nil {
		t.Errorf("cache clear error = %v", err)
	}
}

func TestConstraintsFromFlags(t *testing.T) {
	cmd := New(io.Discard, LogInfo).resolveCommand()
	if err := cmd.ParseFlags([]string{"--budget", "10", "--deadline", "1.5s"}); err != nil {
		t.Fatal(err)
	}
	var opts resolveOpts
	opts.format = formatText
	opts.budget = 10
	opts.deadline = 1500 * time.Millisecond

	c, err := opts.constraints(cmd)
	if err != nil {
		t.Fatalf("constraints() error = %v", err)
	}
	if c.SearchBudget == nil || *c.SearchBudget != 10 {
		t.Errorf("SearchBudget = %v", c.SearchBudget)
	}
	if c.DeadlineMS == nil || *c.DeadlineMS != 1500 {
		t.Errorf("DeadlineMS = %v", c.DeadlineMS)
	}
	if c.MaxDepth != nil || c.Seed != nil || c.TargetIncludeRatio != nil {
		t.Errorf("unset flags produced constraints: %+v", c)
	}
}
