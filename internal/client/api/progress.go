package api

import "sync"

// Progress tracks in-flight requests per logical operation, keyed by
// (HTTP verb, resource path). The view layer reads it to disable buttons
// and show spinners while an operation is pending. Concurrent requests to
// the same key share one reported state.
type Progress struct {
	mu       sync.Mutex
	inflight map[string]int
}

func NewProgress() *Progress {
	return &Progress{inflight: make(map[string]int)}
}

func progressKey(method, path string) string {
	return method + " " + path
}

func (p *Progress) start(method, path string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.inflight[progressKey(method, path)]++
}

func (p *Progress) done(method, path string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	key := progressKey(method, path)
	if n := p.inflight[key]; n > 1 {
		p.inflight[key] = n - 1
	} else {
		delete(p.inflight, key)
	}
}

// InFlight reports whether at least one request for the keyed operation
// is currently pending.
func (p *Progress) InFlight(method, path string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.inflight[progressKey(method, path)] > 0
}

// Busy reports whether any request is pending at all.
func (p *Progress) Busy() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.inflight) > 0
}
