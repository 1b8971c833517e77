package cache

import (
	"container/list"
	"sync"
	"time"
)

// Memory is the in-process level: an LRU bounded by total bytes.
type Memory struct {
	capacity int64
	size     int64

	items    map[string]*list.Element
	eviction *list.List // Front is most recently used

	mu    sync.Mutex
	stats Stats
}

type memoryEntry struct {
	key     string
	item    Item
	created time.Time
	hits    int64
}

// NewMemory returns an empty memory level holding up to capacity bytes.
func NewMemory(capacity int64) *Memory {
	return &Memory{
		capacity: capacity,
		items:    make(map[string]*list.Element),
		eviction: list.New(),
		stats:    Stats{Capacity: capacity},
	}
}

// Get implements Store.
func (m *Memory) Get(key string) (Item, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	elem, ok := m.items[key]
	if !ok {
		m.stats.Misses++
		return Item{}, false
	}

	m.eviction.MoveToFront(elem)
	entry := elem.Value.(*memoryEntry)
	entry.hits++

	m.stats.Hits++
	m.stats.LastAccess = time.Now()
	return entry.item, true
}

// Put implements Store.
func (m *Memory) Put(key string, item Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := item.size()
	if n > m.capacity {
		return ErrItemTooLarge
	}

	if elem, ok := m.items[key]; ok {
		m.remove(elem)
	}
	for m.size+n > m.capacity && m.eviction.Len() > 0 {
		m.evictOldest()
	}

	m.items[key] = m.eviction.PushFront(&memoryEntry{
		key:     key,
		item:    item,
		created: time.Now(),
	})
	m.size += n
	return nil
}

// Delete implements Store.
func (m *Memory) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if elem, ok := m.items[key]; ok {
		m.remove(elem)
	}
	return nil
}

// Clear implements Store.
func (m *Memory) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.items = make(map[string]*list.Element)
	m.eviction.Init()
	m.size = 0
	return nil
}

// Size implements Store.
func (m *Memory) Size() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.size
}

// Contains reports whether key is cached without touching its recency.
func (m *Memory) Contains(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.items[key]
	return ok
}

// Stats implements Store.
func (m *Memory) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.stats
	s.Size = m.size
	s.Items = int64(len(m.items))
	s.computeHitRate()
	return s
}

// Resize changes the capacity, evicting as needed.
func (m *Memory) Resize(capacity int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.capacity = capacity
	m.stats.Capacity = capacity
	for m.size > m.capacity && m.eviction.Len() > 0 {
		m.evictOldest()
	}
}

// Prune removes entries created more than maxAge ago.
func (m *Memory) Prune(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	pruned := 0
	for elem := m.eviction.Back(); elem != nil; {
		prev := elem.Prev()
		if elem.Value.(*memoryEntry).created.Before(cutoff) {
			m.remove(elem)
			pruned++
		}
		elem = prev
	}
	return pruned
}

// must be called with the lock held
func (m *Memory) evictOldest() {
	if elem := m.eviction.Back(); elem != nil {
		m.remove(elem)
		m.stats.Evictions++
		m.stats.LastEvict = time.Now()
	}
}

// must be called with the lock held
func (m *Memory) remove(elem *list.Element) {
	m.eviction.Remove(elem)
	entry := elem.Value.(*memoryEntry)
	delete(m.items, entry.key)
	m.size -= entry.item.size()
}
