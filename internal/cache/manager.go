package cache

import (
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Manager fronts the disk level with the memory level. Disk hits are
// promoted to memory; writes go to both.
type Manager struct {
	memory *Memory
	disk   *Disk // nil when Config.Dir is empty
	config Config

	cleanupStop chan struct{}
	cleanupWg   sync.WaitGroup
	closeOnce   sync.Once

	mu    sync.Mutex
	stats ManagerStats
}

// ManagerStats aggregates both levels.
type ManagerStats struct {
	Hits        int64
	Misses      int64
	MemoryHits  int64
	DiskHits    int64
	Promotions  int64
	CleanupRuns int64
	LastCleanup time.Time
	HitRate     float64

	Memory Stats
	Disk   Stats
}

// NewManager opens the cache described by cfg.
func NewManager(cfg Config) (*Manager, error) {
	m := &Manager{
		memory:      NewMemory(cfg.MemoryCapacity),
		config:      cfg,
		cleanupStop: make(chan struct{}),
	}

	if cfg.Dir != "" {
		disk, err := NewDisk(cfg.Dir, cfg.DiskCapacity, cfg.CompressionLevel)
		if err != nil {
			return nil, fmt.Errorf("failed to create disk cache: %w", err)
		}
		m.disk = disk
	}

	if cfg.CleanupInterval > 0 && cfg.TTL > 0 {
		m.startCleanup()
	}
	return m, nil
}

// Get looks key up in memory, then on disk.
func (m *Manager) Get(key Key) (Item, bool) {
	h := key.Hash()

	if item, ok := m.memory.Get(h); ok {
		m.count(func(s *ManagerStats) {
			s.Hits++
			s.MemoryHits++
		})
		return item, true
	}

	if m.disk != nil {
		if item, ok := m.disk.Get(h); ok {
			// Promotion is best effort; large items just stay on disk.
			promoted := m.memory.Put(h, item) == nil
			m.count(func(s *ManagerStats) {
				s.Hits++
				s.DiskHits++
				if promoted {
					s.Promotions++
				}
			})
			return item, true
		}
	}

	m.count(func(s *ManagerStats) { s.Misses++ })
	return Item{}, false
}

// Put stores item under key in both levels.
func (m *Manager) Put(key Key, item Item) error {
	h := key.Hash()

	if err := m.memory.Put(h, item); err != nil && err != ErrItemTooLarge {
		return fmt.Errorf("memory cache: %w", err)
	}
	if m.disk != nil {
		if err := m.disk.Put(h, item); err != nil {
			return fmt.Errorf("disk cache: %w", err)
		}
	}
	log.Debug("Cached artifact", "key", key, "bytes", len(item.Data))
	return nil
}

// Delete removes key from both levels.
func (m *Manager) Delete(key Key) error {
	h := key.Hash()
	_ = m.memory.Delete(h)
	if m.disk != nil {
		return m.disk.Delete(h)
	}
	return nil
}

// Clear empties both levels.
func (m *Manager) Clear() error {
	_ = m.memory.Clear()
	if m.disk != nil {
		if err := m.disk.Clear(); err != nil {
			return fmt.Errorf("disk cache: %w", err)
		}
	}
	return nil
}

// Prune removes artifacts older than the configured TTL and returns how
// many disk entries went away.
func (m *Manager) Prune() int {
	m.count(func(s *ManagerStats) {
		s.CleanupRuns++
		s.LastCleanup = time.Now()
	})
	if m.config.TTL <= 0 {
		return 0
	}

	m.memory.Prune(m.config.TTL)
	if m.disk == nil {
		return 0
	}
	removed := m.disk.Prune(m.config.TTL)
	if removed > 0 {
		log.Debug("Pruned expired artifacts", "count", removed)
	}
	return removed
}

// Entries lists what is stored on disk.
func (m *Manager) Entries() []Entry {
	if m.disk == nil {
		return nil
	}
	return m.disk.Entries()
}

// Dir returns the disk directory, or "" when the disk level is disabled.
func (m *Manager) Dir() string {
	if m.disk == nil {
		return ""
	}
	return m.disk.Dir()
}

// Stats returns statistics for both levels.
func (m *Manager) Stats() ManagerStats {
	m.mu.Lock()
	s := m.stats
	m.mu.Unlock()

	s.Memory = m.memory.Stats()
	if m.disk != nil {
		s.Disk = m.disk.Stats()
	}
	if s.Hits+s.Misses > 0 {
		s.HitRate = float64(s.Hits) / float64(s.Hits+s.Misses)
	}
	return s
}

// Close stops the cleanup routine and saves the disk index.
func (m *Manager) Close() error {
	var err error
	m.closeOnce.Do(func() {
		close(m.cleanupStop)
		m.cleanupWg.Wait()
		if m.disk != nil {
			if cerr := m.disk.Close(); cerr != nil {
				err = fmt.Errorf("failed to close disk cache: %w", cerr)
			}
		}
	})
	return err
}

func (m *Manager) count(fn func(*ManagerStats)) {
	m.mu.Lock()
	fn(&m.stats)
	m.mu.Unlock()
}

func (m *Manager) startCleanup() {
	ticker := time.NewTicker(m.config.CleanupInterval)
	m.cleanupWg.Add(1)

	go func() {
		defer m.cleanupWg.Done()
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				m.Prune()
			case <-m.cleanupStop:
				return
			}
		}
	}()
}
