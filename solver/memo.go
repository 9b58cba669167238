package solver

import (
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/domino14/bullseye/game"
)

// memo is a write-once table of solved states. Concurrent requests for
// the same unsolved state share one computation.
type memo[V any] struct {
	sync.RWMutex
	table  map[game.State]V
	flight singleflight.Group
}

func newMemo[V any]() *memo[V] {
	return &memo[V]{table: make(map[game.State]V)}
}

func (m *memo[V]) lookup(s game.State) (V, bool) {
	m.RLock()
	defer m.RUnlock()
	v, ok := m.table[s]
	return v, ok
}

func (m *memo[V]) size() int {
	m.RLock()
	defer m.RUnlock()
	return len(m.table)
}

// get returns the cached value for s, computing and storing it first if
// needed. Errors are not cached.
func (m *memo[V]) get(s game.State, compute func() (V, error)) (V, error) {
	if v, ok := m.lookup(s); ok {
		return v, nil
	}
	v, err, _ := m.flight.Do(strconv.Itoa(int(s)), func() (any, error) {
		if v, ok := m.lookup(s); ok {
			return v, nil
		}
		v, err := compute()
		if err != nil {
			return nil, err
		}
		m.Lock()
		m.table[s] = v
		m.Unlock()
		return v, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return v.(V), nil
}
