/*
Copyright 2026 Dima Krasner

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package redirect

import (
	"context"
	"hash/crc32"
	"log/slog"
	"sync"

	"github.com/dimkr/twitlinks/lock"
)

// Store persists resolved links.
type Store interface {
	Save(ctx context.Context, link string, res Result) error
}

// Cache resolves each link at most once, even if the same link is resolved concurrently.
type Cache struct {
	resolver *Resolver
	store    Store
	locks    []lock.Lock
	mu       sync.Mutex
	results  map[string]Result
}

// NewCache returns a new [Cache].
//
// store may be nil.
func NewCache(resolver *Resolver, store Store) *Cache {
	c := Cache{
		resolver: resolver,
		store:    store,
		locks:    make([]lock.Lock, resolver.Config.MaxResolverRequests),
		results:  map[string]Result{},
	}
	for i := 0; i < len(c.locks); i++ {
		c.locks[i] = lock.New()
	}

	return &c
}

// Warm adds previously resolved links to the cache.
func (c *Cache) Warm(results map[string]Result) {
	c.mu.Lock()
	for link, res := range results {
		c.results[link] = res
	}
	c.mu.Unlock()
}

func (c *Cache) get(link string) (Result, bool) {
	c.mu.Lock()
	res, ok := c.results[link]
	c.mu.Unlock()
	return res, ok
}

// Resolve returns the cached result for a link or resolves it.
//
// The returned bool is true if the result was cached.
func (c *Cache) Resolve(ctx context.Context, log *slog.Logger, link string) (Result, bool) {
	if res, ok := c.get(link); ok {
		return res, true
	}

	l := c.locks[crc32.ChecksumIEEE([]byte(link))%uint32(len(c.locks))]
	if err := l.Lock(ctx); err != nil {
		return Result{Reason: ReasonNetworkError, Err: err}, false
	}
	defer l.Unlock()

	// another goroutine might have resolved this link while we waited
	if res, ok := c.get(link); ok {
		return res, true
	}

	res := c.resolver.ResolveString(ctx, log, link)

	c.mu.Lock()
	c.results[link] = res
	c.mu.Unlock()

	// network errors are usually temporary
	if c.store != nil && res.Reason != ReasonNetworkError {
		if err := c.store.Save(ctx, link, res); err != nil {
			log.WarnContext(ctx, "Failed to cache link", "link", link, "error", err)
		}
	}

	return res, false
}

// Len returns the number of cached links.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.results)
}
