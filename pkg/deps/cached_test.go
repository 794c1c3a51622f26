package deps

import (
	"context"
	"slices"
	"testing"

	"github.com/matzehuels/stacksolve/pkg/cache"
)

func TestCached(t *testing.T) {
	ctx := context.Background()
	inner := newMapStore(map[string]fakePkg{
		"a": {meta: Metadata{Version: "1.2.0", Metadata: map[string]any{"author": "x"}}, deps: []string{"b"}},
	})
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	c := NewCached(inner, fc, nil, 0)

	for range 3 {
		m, err := c.Metadata(ctx, "a")
		if err != nil {
			t.Fatalf("Metadata() error = %v", err)
		}
		if m.Version != "1.2.0" || m.Metadata["author"] != "x" {
			t.Errorf("Metadata() = %+v", m)
		}
		d, err := c.Dependencies(ctx, "a")
		if err != nil || !slices.Equal(d, []string{"b"}) {
			t.Errorf("Dependencies() = %v, %v", d, err)
		}
	}

	if got := inner.callCount("a"); got != 2 {
		t.Errorf("inner calls = %d, want 2 (one per lookup kind)", got)
	}
	if c.Name() != "map" {
		t.Errorf("Name() = %q, want map", c.Name())
	}
}

func TestCached_ErrorsNotCached(t *testing.T) {
	ctx := context.Background()
	inner := newMapStore(map[string]fakePkg{"a": {}}).failTimes("a", 1)
	c := NewCached(inner, cache.NewNullCache(), nil, 0)

	if _, err := c.Metadata(ctx, "a"); err == nil {
		t.Fatal("first lookup should fail")
	}
	if _, err := c.Metadata(ctx, "a"); err != nil {
		t.Fatalf("second lookup error = %v", err)
	}
	if _, err := c.Metadata(ctx, "ghost"); !IsNotFound(err) {
		t.Errorf("Metadata(ghost) error = %v, want not found", err)
	}
}
