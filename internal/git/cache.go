package git

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"
)

// statusCache memoizes one Status per repository. Concurrent misses for the
// same repository share a single build; failed builds are not remembered.
type statusCache struct {
	mu     sync.Mutex
	values map[string]Status
	gens   map[string]uint64
	closed bool
	group  singleflight.Group
}

func newStatusCache() *statusCache {
	return &statusCache{
		values: map[string]Status{},
		gens:   map[string]uint64{},
	}
}

// getOrCreate returns the cached Status for key or runs build. A shared
// build runs under the context of the caller that started it; the other
// callers only stop waiting when their own ctx ends, and start over if the
// build they were sharing was cancelled.
func (c *statusCache) getOrCreate(ctx context.Context, key string, build func(context.Context) (Status, error)) (Status, error) {
	for {
		c.mu.Lock()
		if status, ok := c.values[key]; ok {
			c.mu.Unlock()
			return status, nil
		}
		gen := c.gens[key]
		c.mu.Unlock()

		flight := fmt.Sprintf("%s\x00%d", key, gen)
		ch := c.group.DoChan(flight, func() (any, error) {
			status, err := build(ctx)
			if err != nil {
				return nil, err
			}
			c.mu.Lock()
			if !c.closed && c.gens[key] == gen {
				c.values[key] = status
			}
			c.mu.Unlock()
			return status, nil
		})

		var res singleflight.Result
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case res = <-ch:
		}
		if res.Err != nil {
			if isContextError(res.Err) && ctx.Err() == nil {
				continue
			}
			return nil, res.Err
		}
		status, _ := res.Val.(Status)
		return status, nil
	}
}

// invalidate drops the entry for key. Builds already in flight finish but
// their result is not stored.
func (c *statusCache) invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.values, key)
	c.gens[key]++
}

func (c *statusCache) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	clear(c.values)
}

func isContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
