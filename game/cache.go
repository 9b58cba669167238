package game

import (
	"sync"

	"github.com/domino14/bullseye/geometry"
)

const cacheShards = 64

type outcomeShard struct {
	sync.RWMutex
	objects map[geometry.Vec2][]HitProbability
}

// outcomeCache maps aim points to their hit distribution. Entries are
// written once and never evicted. Two goroutines computing the same aim
// at once both do the work and the first store wins.
type outcomeCache struct {
	shards [cacheShards]outcomeShard
}

func newOutcomeCache() *outcomeCache {
	c := &outcomeCache{}
	for i := range c.shards {
		c.shards[i].objects = make(map[geometry.Vec2][]HitProbability)
	}
	return c
}

func (c *outcomeCache) shard(aim geometry.Vec2) *outcomeShard {
	return &c.shards[aim.Hash()%cacheShards]
}

func (c *outcomeCache) get(aim geometry.Vec2) ([]HitProbability, bool) {
	s := c.shard(aim)
	s.RLock()
	defer s.RUnlock()
	v, ok := s.objects[aim]
	return v, ok
}

func (c *outcomeCache) put(aim geometry.Vec2, v []HitProbability) []HitProbability {
	s := c.shard(aim)
	s.Lock()
	defer s.Unlock()
	if existing, ok := s.objects[aim]; ok {
		return existing
	}
	s.objects[aim] = v
	return v
}

func (c *outcomeCache) len() int {
	n := 0
	for i := range c.shards {
		c.shards[i].RLock()
		n += len(c.shards[i].objects)
		c.shards[i].RUnlock()
	}
	return n
}
