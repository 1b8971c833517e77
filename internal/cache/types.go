package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrItemTooLarge is returned when an item exceeds the cache capacity.
	ErrItemTooLarge = errors.New("item too large for cache")

	// ErrCorrupted is returned when a stored artifact cannot be read back.
	ErrCorrupted = errors.New("cache data corrupted")
)

// Level is a cache tier.
type Level int

const (
	// LevelMemory is the in-process LRU.
	LevelMemory Level = iota
	// LevelDisk is the compressed on-disk store.
	LevelDisk
)

// String returns the string representation of the level.
func (l Level) String() string {
	switch l {
	case LevelMemory:
		return "memory"
	case LevelDisk:
		return "disk"
	default:
		return "unknown"
	}
}

// Kind is the type of generated artifact.
type Kind string

const (
	KindAudio       Kind = "audio"
	KindArt         Kind = "art"
	KindInfographic Kind = "infographic"
)

// Key identifies a generated artifact. Two requests with equal keys are
// expected to produce interchangeable results.
type Key struct {
	Kind     Kind
	PoemID   int
	Language string
	Model    string
	Variant  string // Art style; empty otherwise
}

// String returns a readable form of the key.
func (k Key) String() string {
	s := fmt.Sprintf("%s/%d/%s/%s", k.Kind, k.PoemID, k.Language, k.Model)
	if k.Variant != "" {
		s += "/" + k.Variant
	}
	return s
}

// Hash returns the fixed-length identifier used for storage.
func (k Key) Hash() string {
	sum := sha256.Sum256([]byte(k.String()))
	return hex.EncodeToString(sum[:16])
}

// Item is a cached artifact.
type Item struct {
	Data     []byte
	MIMEType string
}

func (i Item) size() int64 { return int64(len(i.Data)) }

// Stats holds cache performance metrics.
type Stats struct {
	Capacity  int64 // Maximum size in bytes
	Size      int64 // Current size in bytes
	Items     int64
	Hits      int64
	Misses    int64
	Evictions int64
	HitRate   float64 // Hits / (Hits + Misses)

	LastAccess time.Time
	LastEvict  time.Time
}

func (s *Stats) computeHitRate() {
	if s.Hits+s.Misses > 0 {
		s.HitRate = float64(s.Hits) / float64(s.Hits+s.Misses)
	}
}

// Config holds cache settings.
type Config struct {
	MemoryCapacity   int64  // Bytes
	DiskCapacity     int64  // Bytes
	Dir              string // Directory for the disk level; empty disables it
	CompressionLevel int    // Zstd level, 0 disables compression

	TTL             time.Duration // Age after which artifacts expire; 0 keeps them
	CleanupInterval time.Duration // How often to prune; 0 disables the routine
}

// DefaultConfig returns the default settings for a cache rooted at dir.
func DefaultConfig(dir string) Config {
	return Config{
		MemoryCapacity:   64 << 20,
		DiskCapacity:     512 << 20,
		Dir:              dir,
		CompressionLevel: 3,
		TTL:              30 * 24 * time.Hour,
		CleanupInterval:  time.Hour,
	}
}

// Store is implemented by each cache level.
type Store interface {
	Get(key string) (Item, bool)
	Put(key string, item Item) error
	Delete(key string) error
	Clear() error
	Size() int64
	Contains(key string) bool
	Stats() Stats
	Prune(maxAge time.Duration) int
}
