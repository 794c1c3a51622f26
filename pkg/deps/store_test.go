package deps

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/matzehuels/stacksolve/pkg/retry"
)

// mapStore is a Store over a fixed map, with optional scripted failures.
type mapStore struct {
	pkgs map[string]fakePkg

	mu    sync.Mutex
	fails     map[string]int // remaining retryable failures per package
	depsFails map[string]int // same, for Dependencies only
	delays    map[string]time.Duration
	calls     map[string]int
}

type fakePkg struct {
	meta Metadata
	deps []string
}

var errFlaky = errors.New("connection reset")

func newMapStore(pkgs map[string]fakePkg) *mapStore {
	return &mapStore{
		pkgs:      pkgs,
		fails:     map[string]int{},
		depsFails: map[string]int{},
		delays:    map[string]time.Duration{},
		calls:     map[string]int{},
	}
}

func (s *mapStore) failDepsTimes(name string, n int) *mapStore {
	s.depsFails[name] = n
	return s
}

// slow makes every Metadata lookup of name sleep for d, ignoring ctx.
func (s *mapStore) slow(name string, d time.Duration) *mapStore {
	s.delays[name] = d
	return s
}

func (s *mapStore) failTimes(name string, n int) *mapStore {
	s.fails[name] = n
	return s
}

func (s *mapStore) hit(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[name]++
	if s.fails[name] > 0 {
		s.fails[name]--
		return retry.Retryable(errFlaky)
	}
	return nil
}

func (s *mapStore) callCount(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[name]
}

func (s *mapStore) Name() string { return "map" }

func (s *mapStore) Dependencies(_ context.Context, name string) ([]string, error) {
	if err := s.hit(name); err != nil {
		return nil, err
	}
	s.mu.Lock()
	failing := s.depsFails[name] > 0
	if failing {
		s.depsFails[name]--
	}
	s.mu.Unlock()
	if failing {
		return nil, retry.Retryable(errFlaky)
	}
	p, ok := s.pkgs[name]
	if !ok {
		return nil, NotFound(name)
	}
	return p.deps, nil
}

func (s *mapStore) Metadata(_ context.Context, name string) (*Metadata, error) {
	if err := s.hit(name); err != nil {
		return nil, err
	}
	s.mu.Lock()
	d := s.delays[name]
	s.mu.Unlock()
	time.Sleep(d)
	p, ok := s.pkgs[name]
	if !ok {
		return nil, NotFound(name)
	}
	m := p.meta
	return &m, nil
}
