// Package querycache is a keyed cache for data fetched from the backend.
//
// Each key moves through Idle -> Loading -> Ready|Failed. Concurrent readers
// of a key share one fetch. Invalidate returns the key to Idle so the next
// read fetches again; responses from fetches issued before the latest one for
// the same key are handed to their caller but never stored.
package querycache

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

type State int

const (
	Idle State = iota
	Loading
	Ready
	Failed
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	}
	return "idle"
}

// ErrClosed is returned to readers of a cache that was closed, typically
// because the session logged out.
var ErrClosed = errors.New("query cache closed")

// Key identifies a query, e.g. Key{"vendor", "abc"}. Invalidating a key also
// invalidates every key it prefixes.
type Key []string

func (k Key) String() string { return strings.Join(k, "/") }

// clone copies the key down to its strings, which may alias request buffers.
func (k Key) clone() Key {
	out := make(Key, len(k))
	for i, s := range k {
		out[i] = strings.Clone(s)
	}
	return out
}

func (k Key) hasPrefix(p Key) bool {
	if len(p) > len(k) {
		return false
	}
	for i := range p {
		if k[i] != p[i] {
			return false
		}
	}
	return true
}

// Entry is a read-only snapshot of one key.
type Entry struct {
	Key       Key
	Data      any
	FetchedAt time.Time
	State     State
	Err       error
	Seq       uint64
}

type entry struct {
	key       Key
	data      any
	fetchedAt time.Time
	state     State
	err       error
	gen       uint64 // bumped by Invalidate; part of the flight key
	issued    uint64 // last sequence number handed to a fetch
	applied   uint64 // sequence number whose result is stored
}

type Fetcher func(ctx context.Context) (any, error)

type Options struct {
	StaleTime time.Duration
	Now       func() time.Time
}

type Cache struct {
	mu        sync.Mutex
	entries   map[string]*entry
	group     singleflight.Group
	staleTime time.Duration
	now       func() time.Time
	closed    bool
}

func New(opts Options) *Cache {
	if opts.StaleTime <= 0 {
		opts.StaleTime = 5 * time.Minute
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Cache{entries: make(map[string]*entry), staleTime: opts.StaleTime, now: opts.Now}
}

func (c *Cache) lookup(k Key) *entry {
	e, ok := c.entries[k.String()]
	if !ok {
		e = &entry{key: k.clone()}
		c.entries[e.key.String()] = e
	}
	return e
}

func (c *Cache) fresh(e *entry) bool {
	return e.state == Ready && c.now().Sub(e.fetchedAt) < c.staleTime
}

// Get returns the cached value for k or runs fetch. The fetch itself is not
// tied to ctx cancellation so that other readers waiting on it still get a
// result; a reader whose ctx ends returns ctx.Err() immediately.
func (c *Cache) Get(ctx context.Context, k Key, fetch Fetcher) (any, error) {
	for {
		v, err := c.get(ctx, k, fetch)
		if !errors.Is(err, errGenerationMoved) {
			return v, err
		}
	}
}

// errGenerationMoved sends readers of a flight that was invalidated before
// it started back to join the flight of the current generation.
var errGenerationMoved = errors.New("query cache generation moved")

func (c *Cache) get(ctx context.Context, k Key, fetch Fetcher) (any, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrClosed
	}
	e := c.lookup(k)
	if c.fresh(e) {
		data := e.data
		c.mu.Unlock()
		lookups.WithLabelValues("hit").Inc()
		return data, nil
	}
	gen := e.gen
	flight := k.String() + "#" + strconv.FormatUint(gen, 10)
	c.mu.Unlock()

	detached := context.WithoutCancel(ctx)
	ch := c.group.DoChan(flight, func() (any, error) {
		seq, data, step := c.begin(e, gen)
		switch step {
		case reuse:
			return data, nil
		case moved:
			return nil, errGenerationMoved
		}
		data, err := fetch(detached)
		c.settle(e, seq, data, err)
		return data, err
	})

	select {
	case res := <-ch:
		if errors.Is(res.Err, errGenerationMoved) {
			return nil, res.Err
		}
		if res.Shared {
			lookups.WithLabelValues("shared").Inc()
		} else {
			lookups.WithLabelValues("miss").Inc()
		}
		return res.Val, res.Err
	case <-ctx.Done():
		lookups.WithLabelValues("abandoned").Inc()
		return nil, ctx.Err()
	}
}

type step int

const (
	fetchNow step = iota
	reuse
	moved
)

// begin claims the next sequence number for e. A flight that starts just
// after another one for the same generation completed finds the entry fresh
// and reuses it. A flight whose generation was invalidated before it started
// does not fetch; its readers retry on the current generation instead of
// running a second fetch beside it.
func (c *Cache) begin(e *entry, gen uint64) (uint64, any, step) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e.gen != gen {
		return 0, nil, moved
	}
	if c.fresh(e) {
		return 0, e.data, reuse
	}
	e.issued++
	e.state = Loading
	return e.issued, nil, fetchNow
}

// settle is the only place entry data is written.
func (c *Cache) settle(e *entry, seq uint64, data any, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || seq != e.issued {
		discarded.Inc()
		return
	}
	e.applied = seq
	if err != nil {
		fetches.WithLabelValues("error").Inc()
		e.state = Failed
		e.err = err
		return
	}
	fetches.WithLabelValues("ok").Inc()
	e.state = Ready
	e.data = data
	e.err = nil
	e.fetchedAt = c.now()
}

// Invalidate marks every key prefixed by one of keys as stale. When it
// returns, the next Get of such a key starts a new fetch, and any fetch
// already in flight for it can no longer overwrite the entry.
func (c *Cache) Invalidate(keys ...Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.entries {
		for _, k := range keys {
			if e.key.hasPrefix(k) {
				c.invalidate(e)
				break
			}
		}
	}
}

func (c *Cache) invalidate(e *entry) {
	e.gen++
	if e.state == Loading {
		// The running fetch holds e.issued; taking a fresh number makes its
		// result stale even if no new fetch is started.
		e.issued++
	}
	e.state = Idle
	invalidations.Inc()
}

// Peek returns a snapshot of k without fetching.
func (c *Cache) Peek(k Key) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[k.String()]
	if !ok {
		return Entry{Key: k, State: Idle}, false
	}
	return Entry{Key: e.key, Data: e.data, FetchedAt: e.fetchedAt, State: e.state, Err: e.err, Seq: e.applied}, true
}

// Close drops every entry; responses still in flight are discarded.
func (c *Cache) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.entries = make(map[string]*entry)
}

// Query is the typed form of Get.
func Query[T any](ctx context.Context, c *Cache, k Key, fetch func(context.Context) (T, error)) (T, error) {
	v, err := c.Get(ctx, k, func(ctx context.Context) (any, error) { return fetch(ctx) })
	if err != nil {
		var zero T
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		var zero T
		return zero, errors.New("query cache: unexpected type for " + k.String())
	}
	return t, nil
}
