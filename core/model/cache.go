// core/model/cache.go
package model

import (
	"container/list"
	"sync"
)

// lambdaKey identifies one memoized per-error-class rate vector by the exact
// numeric pair it was computed from.
type lambdaKey struct {
	c, err float64
}

// lambdaCache is a size-bounded memo for per-error-class Poisson rates with
// O(1) hit/insert and LRU eviction. It is owned by a single model instance,
// so its lifetime ends with the model; parameter sweeps cannot grow it past
// cap entries. Multi-start optimization evaluates one model from several
// goroutines at once, so access is serialized.
type lambdaCache struct {
	mu  sync.Mutex
	cap int
	ll  *list.List
	m   map[lambdaKey]*list.Element
}

type lambdaNode struct {
	k lambdaKey
	v []float64
}

func newLambdaCache(capacity int) *lambdaCache {
	if capacity <= 0 {
		capacity = 4096
	}
	return &lambdaCache{cap: capacity, ll: list.New(), m: make(map[lambdaKey]*list.Element, capacity)}
}

// get returns the cached vector for k, or nil.
func (c *lambdaCache) get(k lambdaKey) []float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.m[k]; ok {
		c.ll.MoveToFront(e)
		return e.Value.(*lambdaNode).v
	}
	return nil
}

// put inserts v for k, evicting the least recently used entry when full.
func (c *lambdaCache) put(k lambdaKey, v []float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.m[k]; ok {
		c.ll.MoveToFront(e)
		e.Value.(*lambdaNode).v = v
		return
	}
	e := c.ll.PushFront(&lambdaNode{k: k, v: v})
	c.m[k] = e
	if c.ll.Len() > c.cap {
		tail := c.ll.Back()
		if tail != nil {
			c.ll.Remove(tail)
			delete(c.m, tail.Value.(*lambdaNode).k)
		}
	}
}
