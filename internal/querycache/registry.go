package querycache

import (
	"strings"
	"sync"
)

// Registry keeps one Cache per browser session.
type Registry struct {
	mu     sync.Mutex
	opts   Options
	caches map[string]*Cache
}

func NewRegistry(opts Options) *Registry {
	return &Registry{opts: opts, caches: make(map[string]*Cache)}
}

// For returns the cache of session sid, creating it on first use.
func (r *Registry) For(sid string) *Cache {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.caches[sid]
	if !ok {
		c = New(r.opts)
		r.caches[strings.Clone(sid)] = c
	}
	return c
}

// Drop closes and forgets the cache of sid.
func (r *Registry) Drop(sid string) {
	r.mu.Lock()
	c, ok := r.caches[sid]
	delete(r.caches, sid)
	r.mu.Unlock()
	if ok {
		c.Close()
	}
}

// Retain closes and forgets every cache whose sid keep rejects.
func (r *Registry) Retain(keep func(sid string) bool) int {
	r.mu.Lock()
	var gone []*Cache
	for sid, c := range r.caches {
		if !keep(sid) {
			gone = append(gone, c)
			delete(r.caches, sid)
		}
	}
	r.mu.Unlock()
	for _, c := range gone {
		c.Close()
	}
	return len(gone)
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.caches)
}
