package cache

import (
	"container/list"
	"context"
	"sync"
	"time"
)

// DefaultMaxEntries bounds a Memory store built by NewMemory.
const DefaultMaxEntries = 10000

type memoryItem struct {
	entry   Entry
	expires time.Time
	path    string
	tags    []string
	elem    *list.Element
}

// Memory is a process-local Store. Entries are evicted lazily on read, eagerly
// on invalidation, and oldest first once maxEntries is reached.
type Memory struct {
	mu         sync.Mutex
	items      map[string]*memoryItem
	order      *list.List
	paths      map[string]map[string]struct{}
	tags       map[string]map[string]struct{}
	gens       map[string]int64
	maxEntries int
	now        func() time.Time
}

func NewMemory() *Memory {
	return NewMemoryWithLimit(DefaultMaxEntries)
}

// NewMemoryWithLimit keeps at most maxEntries entries; zero or less means unbounded.
func NewMemoryWithLimit(maxEntries int) *Memory {
	return &Memory{
		items:      make(map[string]*memoryItem),
		order:      list.New(),
		paths:      make(map[string]map[string]struct{}),
		tags:       make(map[string]map[string]struct{}),
		gens:       make(map[string]int64),
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

func (m *Memory) Get(_ context.Context, key string) (*Entry, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.items[key]
	if !ok {
		return nil, false, nil
	}
	if !item.expires.IsZero() && !m.now().Before(item.expires) {
		m.removeLocked(key)
		return nil, false, nil
	}
	entry := item.entry
	return &entry, true, nil
}

func (m *Memory) Generation(_ context.Context, path string, tags []string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.generationLocked(path, tags), nil
}

func (m *Memory) Set(_ context.Context, key, path string, tags []string, entry Entry, ttl time.Duration, generation int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.generationLocked(path, tags) != generation {
		return ErrStale
	}

	m.removeLocked(key)
	for m.maxEntries > 0 && len(m.items) >= m.maxEntries {
		m.removeLocked(m.order.Front().Value.(string))
	}

	item := &memoryItem{entry: entry, path: NormalizePath(path), tags: append([]string(nil), tags...)}
	if ttl > 0 {
		item.expires = m.now().Add(ttl)
	}
	item.elem = m.order.PushBack(key)
	m.items[key] = item
	index(m.paths, item.path, key)
	for _, tag := range item.tags {
		index(m.tags, tag, key)
	}
	return nil
}

func (m *Memory) InvalidatePath(_ context.Context, path string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	path = NormalizePath(path)
	m.gens[pathGeneration(path)]++
	return m.dropLocked(m.paths[path]), nil
}

func (m *Memory) InvalidateTag(_ context.Context, tag string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gens[tagGeneration(tag)]++
	return m.dropLocked(m.tags[tag]), nil
}

func (m *Memory) Close() error { return nil }

func (m *Memory) generationLocked(path string, tags []string) int64 {
	gen := m.gens[pathGeneration(NormalizePath(path))]
	for _, tag := range tags {
		gen += m.gens[tagGeneration(tag)]
	}
	return gen
}

func (m *Memory) dropLocked(keys map[string]struct{}) int {
	// copy first: removeLocked mutates the set being ranged over
	victims := make([]string, 0, len(keys))
	for k := range keys {
		victims = append(victims, k)
	}
	for _, k := range victims {
		m.removeLocked(k)
	}
	return len(victims)
}

func (m *Memory) removeLocked(key string) {
	item, ok := m.items[key]
	if !ok {
		return
	}
	delete(m.items, key)
	m.order.Remove(item.elem)
	unindex(m.paths, item.path, key)
	for _, tag := range item.tags {
		unindex(m.tags, tag, key)
	}
}

func index(idx map[string]map[string]struct{}, name, key string) {
	set, ok := idx[name]
	if !ok {
		set = make(map[string]struct{})
		idx[name] = set
	}
	set[key] = struct{}{}
}

func unindex(idx map[string]map[string]struct{}, name, key string) {
	set, ok := idx[name]
	if !ok {
		return
	}
	delete(set, key)
	if len(set) == 0 {
		delete(idx, name)
	}
}
