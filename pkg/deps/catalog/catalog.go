// Package catalog provides an in-memory package metadata store, loadable
// from a TOML file.
//
// A catalog file lists one table per package:
//
//	[packages.requests]
//	version = "2.31.0"
//	license = "Apache-2.0"
//	application_type = "web"
//	dependencies = ["urllib3", "idna"]
//
//	[packages.requests.metadata]
//	author = "Kenneth Reitz"
//
//	[packages.mysql-client]
//	version = "8.0.0"
//	conflicts = ["mariadb-client"]
//
// dependency_count defaults to the number of listed dependencies.
package catalog

import (
	"context"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/stacksolve/pkg/deps"
	"github.com/matzehuels/stacksolve/pkg/errors"
)

// Entry describes one package of a catalog.
type Entry struct {
	Version         string         `toml:"version"`
	Architecture    string         `toml:"architecture"`
	License         string         `toml:"license"`
	ApplicationType string         `toml:"application_type"`
	DependencyCount *int           `toml:"dependency_count"`
	Dependencies    []string       `toml:"dependencies"`
	Conflicts       []string       `toml:"conflicts"`
	Metadata        map[string]any `toml:"metadata"`
}

type file struct {
	Packages map[string]Entry `toml:"packages"`
}

// Catalog is a read-only map of package entries. It is safe for
// concurrent use once constructed.
type Catalog struct {
	name    string
	entries map[string]Entry
}

// New builds a catalog from entries. The map is copied.
func New(entries map[string]Entry) *Catalog {
	return &Catalog{name: "catalog", entries: maps.Clone(entries)}
}

// Load reads a TOML catalog file.
func Load(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidCatalog, err, "open catalog")
	}
	defer f.Close()
	return Parse(f)
}

// Parse decodes a TOML catalog and validates its package names.
func Parse(r io.Reader) (*Catalog, error) {
	var f file
	if _, err := toml.NewDecoder(r).Decode(&f); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidCatalog, err, "decode catalog")
	}
	for _, name := range slices.Sorted(maps.Keys(f.Packages)) {
		if err := errors.ValidatePackageName(name); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidCatalog, err, "package %q", name)
		}
	}
	return &Catalog{name: "catalog", entries: f.Packages}, nil
}

// Name identifies the store in logs, metrics and cache keys.
func (c *Catalog) Name() string { return c.name }

// Len returns the number of packages.
func (c *Catalog) Len() int { return len(c.entries) }

// Names returns every package name, sorted.
func (c *Catalog) Names() []string {
	return slices.Sorted(maps.Keys(c.entries))
}

// Dependencies returns the direct dependencies of name.
func (c *Catalog) Dependencies(_ context.Context, name string) ([]string, error) {
	e, ok := c.entries[name]
	if !ok {
		return nil, deps.NotFound(name)
	}
	return slices.Clone(e.Dependencies), nil
}

// Metadata returns the metadata of name.
func (c *Catalog) Metadata(_ context.Context, name string) (*deps.Metadata, error) {
	e, ok := c.entries[name]
	if !ok {
		return nil, deps.NotFound(name)
	}
	count := len(e.Dependencies)
	if e.DependencyCount != nil {
		count = *e.DependencyCount
	}
	return &deps.Metadata{
		Version:         e.Version,
		Architecture:    e.Architecture,
		License:         e.License,
		DependencyCount: count,
		ApplicationType: e.ApplicationType,
		Metadata:        maps.Clone(e.Metadata),
		Conflicts:       slices.Clone(e.Conflicts),
	}, nil
}

// Problem is a consistency issue found by [Catalog.Check].
type Problem struct {
	Package string
	Message string
}

func (p Problem) String() string { return fmt.Sprintf("%s: %s", p.Package, p.Message) }

// Check reports references to unknown packages and self references. A
// catalog with problems still works as a store; unknown dependencies simply
// resolve as unresolved nodes.
func (c *Catalog) Check() []Problem {
	var out []Problem
	for _, name := range c.Names() {
		e := c.entries[name]
		for _, d := range e.Dependencies {
			switch {
			case d == name:
				out = append(out, Problem{name, "depends on itself"})
			case !c.has(d):
				out = append(out, Problem{name, fmt.Sprintf("unknown dependency %q", d)})
			}
		}
		for _, x := range e.Conflicts {
			switch {
			case x == name:
				out = append(out, Problem{name, "conflicts with itself"})
			case !c.has(x):
				out = append(out, Problem{name, fmt.Sprintf("unknown conflict target %q", x)})
			}
		}
		if e.DependencyCount != nil && *e.DependencyCount < 0 {
			out = append(out, Problem{name, "negative dependency_count"})
		}
	}
	return out
}

func (c *Catalog) has(name string) bool {
	_, ok := c.entries[name]
	return ok
}

var _ deps.Store = (*Catalog)(nil)
