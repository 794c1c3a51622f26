package engine

import "sync"

// DefaultHistorySize is the number of results an engine remembers.
const DefaultHistorySize = 1000

// History is a bounded, append-only log of results. When full, the oldest
// result is evicted. It is safe for concurrent use.
type History struct {
	mu    sync.Mutex
	buf   []*Result
	start int
	n     int
	byID  map[string]*Result
}

// NewHistory creates a history holding at most capacity results
// (DefaultHistorySize when capacity <= 0).
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultHistorySize
	}
	return &History{buf: make([]*Result, capacity), byID: make(map[string]*Result)}
}

// Add appends r, evicting the oldest result if the history is full.
func (h *History) Add(r *Result) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.n == len(h.buf) {
		delete(h.byID, h.buf[h.start].ID)
		h.buf[h.start] = r
		h.start = (h.start + 1) % len(h.buf)
	} else {
		h.buf[(h.start+h.n)%len(h.buf)] = r
		h.n++
	}
	h.byID[r.ID] = r
}

// Get returns the result with the given id, if it is still retained.
func (h *History) Get(id string) (*Result, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	r, ok := h.byID[id]
	return r, ok
}

// List returns the retained results, oldest first.
func (h *History) List() []*Result {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]*Result, h.n)
	for i := range h.n {
		out[i] = h.buf[(h.start+i)%len(h.buf)]
	}
	return out
}

// Len returns the number of retained results.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.n
}

// Cap returns the maximum number of retained results.
func (h *History) Cap() int { return len(h.buf) }
