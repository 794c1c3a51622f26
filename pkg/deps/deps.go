package deps

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stacksolve/pkg/errors"
)

const (
	DefaultMaxDepth      = 10                     // Default hops expanded from a requested root
	DefaultLookupTimeout = 5 * time.Second        // Default bound on one store call
	DefaultRetries       = 2                      // Default retries after a failed lookup
	DefaultRetryDelay    = 100 * time.Millisecond // Default first backoff delay
	DefaultWorkers       = 8                      // Default concurrent lookups per level
	DefaultCacheTTL      = 24 * time.Hour         // Default lifetime of cached lookups
)

// ErrPackageNotFound matches, via errors.Is, every error a [Store] returns
// for a package it does not know.
var ErrPackageNotFound = errors.Sentinel(errors.ErrCodePackageNotFound)

// NotFound returns a PACKAGE_NOT_FOUND error for name.
func NotFound(name string) error {
	return errors.New(errors.ErrCodePackageNotFound, "package %q not found", name)
}

// IsNotFound reports whether err means the package is unknown.
func IsNotFound(err error) bool {
	return errors.Is(err, errors.ErrCodePackageNotFound)
}

// Store supplies raw package facts. Implementations must be safe for
// concurrent use. Unknown packages fail with an error matching
// [ErrPackageNotFound]; transient failures should be wrapped with
// retry.Retryable so the builder retries them.
type Store interface {
	// Dependencies returns the direct dependency names of a package.
	Dependencies(ctx context.Context, name string) ([]string, error)
	// Metadata returns the descriptive facts of a package.
	Metadata(ctx context.Context, name string) (*Metadata, error)
}

// Namer is implemented by stores that can name themselves for logs,
// metrics and cache keys.
type Namer interface {
	Name() string
}

// SourceName returns s's name, or "store" when it has none.
func SourceName(s Store) string {
	if n, ok := s.(Namer); ok {
		return n.Name()
	}
	return "store"
}

// Metadata holds the facts a store knows about one package.
type Metadata struct {
	Version         string         `json:"version" toml:"version" bson:"version"`
	Architecture    string         `json:"architecture,omitempty" toml:"architecture" bson:"architecture,omitempty"`
	License         string         `json:"license,omitempty" toml:"license" bson:"license,omitempty"`
	DependencyCount int            `json:"dependency_count" toml:"dependency_count" bson:"dependency_count"`
	ApplicationType string         `json:"application_type,omitempty" toml:"application_type" bson:"application_type,omitempty"`
	Metadata        map[string]any `json:"metadata,omitempty" toml:"metadata" bson:"metadata,omitempty"`
	// Conflicts names packages this one cannot be installed alongside.
	Conflicts []string `json:"conflicts,omitempty" toml:"conflicts" bson:"conflicts,omitempty"`
}

// Options configures [Builder].
type Options struct {
	MaxDepth      int           // Hops expanded from any root (default: 10)
	LookupTimeout time.Duration // Bound on each store call (default: 5s)
	Retries       int           // Retries after a transient failure (default: 2, negative for none)
	RetryDelay    time.Duration // First backoff delay, doubled per retry (default: 100ms)
	Workers       int           // Concurrent lookups per level (default: 8)
	Logger        *log.Logger   // Progress and failure logging (default: log.Default())
}

// WithDefaults returns a copy of Options with zero values replaced by defaults.
func (o Options) WithDefaults() Options {
	opts := o
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	if opts.LookupTimeout <= 0 {
		opts.LookupTimeout = DefaultLookupTimeout
	}
	switch {
	case opts.Retries == 0:
		opts.Retries = DefaultRetries
	case opts.Retries < 0:
		opts.Retries = 0
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = DefaultRetryDelay
	}
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return opts
}
