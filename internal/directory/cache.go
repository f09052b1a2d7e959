// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Userdir Contributors

package directory

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/oops"
)

// DefaultCacheTTL is the time-to-live of a memoized read.
const DefaultCacheTTL = 5 * time.Minute

// cacheHits and cacheMisses count cache outcomes by entry kind
// ("active", "all", "login"). Register with RegisterCacheMetrics at startup.
var (
	cacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "userdir_cache_hits_total",
			Help: "Total number of directory cache hits by entry kind",
		},
		[]string{"kind"},
	)
	cacheMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "userdir_cache_misses_total",
			Help: "Total number of directory cache misses by entry kind",
		},
		[]string{"kind"},
	)
)

// RegisterCacheMetrics registers directory cache metrics with the given
// Prometheus registry.
func RegisterCacheMetrics(reg prometheus.Registerer) {
	reg.MustRegister(cacheHits, cacheMisses)
}

// listEntry is a memoized list snapshot with an absolute expiry.
type listEntry struct {
	users     []User
	expiresAt time.Time
}

// userEntry is a memoized per-login lookup. The user is never nil: absent
// logins are not cached, so a nil here is a cache integrity violation.
type userEntry struct {
	user      *User
	expiresAt time.Time
}

// CacheOption configures Cache behavior.
type CacheOption func(*Cache)

// WithTTL overrides the entry time-to-live.
func WithTTL(ttl time.Duration) CacheOption {
	return func(c *Cache) {
		c.ttl = ttl
	}
}

// withNow overrides the clock, for expiry tests.
func withNow(now func() time.Time) CacheOption {
	return func(c *Cache) {
		c.now = now
	}
}

// Cache memoizes the Store's read operations with bounded staleness. Every
// mutating operation must call Invalidate with the touched logins before
// returning to its caller, which gives the mutator read-after-write
// consistency; other readers may see old entries until expiry or that
// invalidation.
//
// Entries are written whole under the write lock, so a concurrent reader
// never observes a half-written entry. Concurrent misses for the same key may
// recompute more than once.
type Cache struct {
	store *Store
	ttl   time.Duration
	now   func() time.Time

	mu      sync.RWMutex
	active  *listEntry
	all     *listEntry
	byLogin map[string]*userEntry
}

// NewCache creates a cache over store with the default 5-minute TTL.
func NewCache(store *Store, opts ...CacheOption) *Cache {
	c := &Cache{
		store:   store,
		ttl:     DefaultCacheTTL,
		now:     time.Now,
		byLogin: make(map[string]*userEntry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListActive returns the memoized active-user snapshot, refreshing it from
// the store on miss or expiry.
func (c *Cache) ListActive() []User {
	c.mu.RLock()
	entry := c.active
	c.mu.RUnlock()

	if entry != nil && c.now().Before(entry.expiresAt) {
		cacheHits.WithLabelValues("active").Inc()
		return entry.users
	}
	cacheMisses.WithLabelValues("active").Inc()

	users := c.store.ListActive()
	c.mu.Lock()
	c.active = &listEntry{users: users, expiresAt: c.now().Add(c.ttl)}
	c.mu.Unlock()
	return users
}

// ListAll returns the memoized all-user snapshot, revoked records included.
func (c *Cache) ListAll() []User {
	c.mu.RLock()
	entry := c.all
	c.mu.RUnlock()

	if entry != nil && c.now().Before(entry.expiresAt) {
		cacheHits.WithLabelValues("all").Inc()
		return entry.users
	}
	cacheMisses.WithLabelValues("all").Inc()

	users := c.store.ListAll()
	c.mu.Lock()
	c.all = &listEntry{users: users, expiresAt: c.now().Add(c.ttl)}
	c.mu.Unlock()
	return users
}

// GetByLogin returns the memoized record for login. Absent logins fail with
// USER_NOT_FOUND and are never memoized, so a cached nil can only mean the
// cache itself is corrupt; that surfaces as CACHE_INTEGRITY rather than a
// fabricated result.
func (c *Cache) GetByLogin(login string) (*User, error) {
	c.mu.RLock()
	entry := c.byLogin[login]
	c.mu.RUnlock()

	if entry != nil && c.now().Before(entry.expiresAt) {
		if entry.user == nil {
			return nil, oops.Code(CodeCacheIntegrity).
				With("login", login).
				Errorf("cache returned nil for login %q", login)
		}
		cacheHits.WithLabelValues("login").Inc()
		return copyUser(entry.user), nil
	}
	cacheMisses.WithLabelValues("login").Inc()

	u, ok := c.store.Get(login)
	if !ok {
		return nil, notFound(login)
	}

	c.mu.Lock()
	c.byLogin[login] = &userEntry{user: u, expiresAt: c.now().Add(c.ttl)}
	c.mu.Unlock()
	return copyUser(u), nil
}

// Invalidate drops both list entries and the per-login entry for every given
// login. It is unconditional: it does not check whether the entries would
// have changed.
func (c *Cache) Invalidate(logins ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.active = nil
	c.all = nil
	for _, login := range logins {
		delete(c.byLogin, login)
	}
}
