// Package memo wraps pure functions with a bounded, least-recently-used
// result cache.
//
// A Memoizer is safe for concurrent use. Concurrent misses on the same key
// share a single computation, so each key is computed at most once while it
// stays resident. Evicted keys are simply recomputed on their next call.
package memo

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"
)

// DefaultCapacity is the number of entries a cache holds unless told otherwise.
const DefaultCapacity = 100

// ErrCapacity is returned by New for a capacity below one.
var ErrCapacity = errors.New("memo: capacity must be positive")

// Stats is a snapshot of a Memoizer's counters.
type Stats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Len       int
}

type options struct {
	log logrus.FieldLogger
}

// Option configures a Memoizer.
type Option func(*options)

// WithLogger makes the Memoizer trace evictions to l.
func WithLogger(l logrus.FieldLogger) Option {
	return func(o *options) {
		o.log = l
	}
}

// flight is one computation in progress. done is closed once val or
// panicked is set.
type flight[V any] struct {
	done     chan struct{}
	val      V
	panicked any
}

// Memoizer caches the results of fn keyed by its argument.
type Memoizer[K comparable, V any] struct {
	fn    func(K) V
	store *lru.Cache[K, V]
	log   logrus.FieldLogger

	mu      sync.Mutex
	flights map[K]*flight[V]

	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64
}

// New returns a Memoizer around fn holding at most capacity results.
// fn may call back into the returned Memoizer for smaller keys.
func New[K comparable, V any](capacity int, fn func(K) V, opts ...Option) (*Memoizer[K, V], error) {
	if capacity < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrCapacity, capacity)
	}

	o := options{log: discardLogger()}
	for _, opt := range opts {
		opt(&o)
	}

	m := &Memoizer[K, V]{fn: fn, log: o.log, flights: make(map[K]*flight[V])}
	store, err := lru.NewWithEvict[K, V](capacity, m.onEvict)
	if err != nil {
		return nil, fmt.Errorf("memo: %w", err)
	}
	m.store = store

	return m, nil
}

// Call returns fn(key), computing it only if key is not cached.
func (m *Memoizer[K, V]) Call(key K) V {
	if v, ok := m.store.Get(key); ok {
		m.hits.Add(1)
		return v
	}

	m.mu.Lock()
	if f, ok := m.flights[key]; ok {
		m.mu.Unlock()
		<-f.done
		if f.panicked != nil {
			panic(f.panicked)
		}
		m.hits.Add(1)
		return f.val
	}
	// Filled by another flight between our lookup and now.
	if v, ok := m.store.Peek(key); ok {
		m.mu.Unlock()
		m.hits.Add(1)
		return v
	}
	f := &flight[V]{done: make(chan struct{})}
	m.flights[key] = f
	m.mu.Unlock()

	m.misses.Add(1)
	m.run(key, f)
	return f.val
}

// run computes key for f and stores the result before releasing waiters.
// A panic in fn is handed to every waiter and then re-raised.
func (m *Memoizer[K, V]) run(key K, f *flight[V]) {
	defer func() {
		if r := recover(); r != nil {
			f.panicked = r
		}

		m.mu.Lock()
		delete(m.flights, key)
		m.mu.Unlock()
		close(f.done)

		if f.panicked != nil {
			panic(f.panicked)
		}
	}()

	f.val = m.fn(key)
	m.store.Add(key, f.val)
}

// Contains reports whether key is cached without touching its recency.
func (m *Memoizer[K, V]) Contains(key K) bool {
	return m.store.Contains(key)
}

// Len returns the number of cached results.
func (m *Memoizer[K, V]) Len() int {
	return m.store.Len()
}

// Purge drops every cached result. Purged entries count as evictions.
func (m *Memoizer[K, V]) Purge() {
	m.store.Purge()
}

// Stats returns the current counters.
func (m *Memoizer[K, V]) Stats() Stats {
	return Stats{
		Hits:      m.hits.Load(),
		Misses:    m.misses.Load(),
		Evictions: m.evictions.Load(),
		Len:       m.store.Len(),
	}
}

func (m *Memoizer[K, V]) onEvict(key K, _ V) {
	m.evictions.Add(1)
	m.log.WithField("key", key).Trace("memo: evicted")
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
