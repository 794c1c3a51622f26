package catalog

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/matzehuels/stacksolve/pkg/deps"
	"github.com/matzehuels/stacksolve/pkg/errors"
)

const sample = `
[packages.requests]
version = "2.31.0"
license = "Apache-2.0"
architecture = "noarch"
application_type = "web"
dependencies = ["urllib3", "idna"]

[packages.requests.metadata]
author = "Kenneth Reitz"

[packages.urllib3]
version = "2.0.7"

[packages.idna]
version = "3.4"
dependency_count = 7

[packages.mysql-client]
version = "8.0.0"
conflicts = ["mariadb-client", "ghost"]
dependencies = ["mysql-client", "nowhere"]
`

func TestParse(t *testing.T) {
	c, err := Parse(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if c.Len() != 4 {
		t.Errorf("Len() = %d, want 4", c.Len())
	}

	ctx := context.Background()
	m, err := c.Metadata(ctx, "requests")
	if err != nil {
		t.Fatalf("Metadata() error = %v", err)
	}
	if m.Version != "2.31.0" || m.ApplicationType != "web" || m.DependencyCount != 2 {
		t.Errorf("Metadata() = %+v", m)
	}
	if m.Metadata["author"] != "Kenneth Reitz" {
		t.Errorf("author = %v", m.Metadata["author"])
	}

	idna, _ := c.Metadata(ctx, "idna")
	if idna.DependencyCount != 7 {
		t.Errorf("explicit dependency_count = %d, want 7", idna.DependencyCount)
	}

	d, _ := c.Dependencies(ctx, "requests")
	if !slices.Equal(d, []string{"urllib3", "idna"}) {
		t.Errorf("Dependencies() = %v", d)
	}
}

func TestNotFound(t *testing.T) {
	c := New(map[string]Entry{"a": {}})
	ctx := context.Background()

	if _, err := c.Metadata(ctx, "b"); !deps.IsNotFound(err) {
		t.Errorf("Metadata(b) error = %v, want not found", err)
	}
	if _, err := c.Dependencies(ctx, "b"); !deps.IsNotFound(err) {
		t.Errorf("Dependencies(b) error = %v, want not found", err)
	}
}

func TestMetadataIsCopied(t *testing.T) {
	c := New(map[string]Entry{"a": {Metadata: map[string]any{"k": "v"}, Dependencies: []string{"b"}}})
	ctx := context.Background()

	m, _ := c.Metadata(ctx, "a")
	m.Metadata["k"] = "changed"
	d, _ := c.Dependencies(ctx, "a")
	d[0] = "changed"

	again, _ := c.Metadata(ctx, "a")
	if again.Metadata["k"] != "v" {
		t.Error("catalog metadata was mutated through a lookup result")
	}
	if d2, _ := c.Dependencies(ctx, "a"); d2[0] != "b" {
		t.Error("catalog dependencies were mutated through a lookup result")
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.toml")
	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := c.Names(); !slices.Equal(got, []string{"idna", "mysql-client", "requests", "urllib3"}) {
		t.Errorf("Names() = %v", got)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); !errors.Is(err, errors.ErrCodeInvalidCatalog) {
		t.Errorf("Load(missing) error = %v, want INVALID_CATALOG", err)
	}
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"syntax", "[packages.a\nversion = 1"},
		{"bad name", "[packages.\"../etc\"]\nversion = \"1\""},
		{"wrong type", "[packages.a]\ndependencies = \"b\""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse(strings.NewReader(tt.in)); !errors.Is(err, errors.ErrCodeInvalidCatalog) {
				t.Errorf("Parse() error = %v, want INVALID_CATALOG", err)
			}
		})
	}
}

func TestCheck(t *testing.T) {
	c, err := Parse(strings.NewReader(sample))
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for _, p := range c.Check() {
		got = append(got, p.String())
	}
	want := []string{
		`mysql-client: depends on itself`,
		`mysql-client: unknown dependency "nowhere"`,
		`mysql-client: unknown conflict target "mariadb-client"`,
		`mysql-client: unknown conflict target "ghost"`,
	}
	if !slices.Equal(got, want) {
		t.Errorf("Check() = %q, want %q", got, want)
	}
}
