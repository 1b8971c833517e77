package cache

import (
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/klauspost/compress/zstd"
)

const (
	indexName = "artifacts.index"
	// Artifacts below this size are stored as is.
	compressThreshold = 1024
)

// Disk is the persistent level. Artifacts are stored one per file, zstd
// compressed when that makes them smaller, with a gob encoded index.
type Disk struct {
	dir      string
	capacity int64
	size     int64

	encoder *zstd.Encoder
	decoder *zstd.Decoder

	index map[string]*diskEntry

	mu    sync.Mutex
	stats Stats
}

// diskEntry is persisted in the index, so its fields are exported for gob.
type diskEntry struct {
	Key        string
	File       string // Base name within dir
	MIMEType   string
	Size       int64 // On disk
	RawSize    int64
	Compressed bool
	Created    time.Time
	LastAccess time.Time
	Hits       int64
}

// NewDisk opens or creates a disk level in dir. A compression level of 0
// stores artifacts uncompressed.
func NewDisk(dir string, capacity int64, compressionLevel int) (*Disk, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	d := &Disk{
		dir:      dir,
		capacity: capacity,
		index:    make(map[string]*diskEntry),
		stats:    Stats{Capacity: capacity},
	}

	if compressionLevel > 0 {
		var err error
		d.encoder, err = zstd.NewWriter(nil,
			zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(compressionLevel)))
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
		}
	}
	// Always able to read what an earlier, compressing run wrote.
	var err error
	d.decoder, err = zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}

	if err := d.loadIndex(); err != nil {
		log.Warn("Discarding unreadable cache index", "dir", dir, "error", err)
		d.index = make(map[string]*diskEntry)
	}
	for _, e := range d.index {
		d.size += e.Size
	}
	return d, nil
}

// Dir returns the directory backing the cache.
func (d *Disk) Dir() string { return d.dir }

// Get implements Store.
func (d *Disk) Get(key string) (Item, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	e, ok := d.index[key]
	if !ok {
		d.stats.Misses++
		return Item{}, false
	}

	data, err := d.read(e)
	if err != nil {
		log.Debug("Dropping unreadable cache entry", "key", key, "error", err)
		d.removeLocked(key, e)
		d.stats.Misses++
		return Item{}, false
	}

	e.LastAccess = time.Now()
	e.Hits++
	d.stats.Hits++
	d.stats.LastAccess = e.LastAccess
	return Item{Data: data, MIMEType: e.MIMEType}, true
}

func (d *Disk) read(e *diskEntry) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(d.dir, e.File))
	if err != nil {
		return nil, err
	}
	if !e.Compressed {
		return data, nil
	}
	out, err := d.decoder.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupted, err)
	}
	return out, nil
}

// Put implements Store.
func (d *Disk) Put(key string, item Item) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	data, compressed := item.Data, false
	if d.encoder != nil && len(data) > compressThreshold {
		if c := d.encoder.EncodeAll(data, nil); len(c) < len(data) {
			data, compressed = c, true
		}
	}

	n := int64(len(data))
	if n > d.capacity {
		return ErrItemTooLarge
	}
	if old, ok := d.index[key]; ok {
		d.removeLocked(key, old)
	}
	for d.size+n > d.capacity && len(d.index) > 0 {
		d.evictOldest()
	}

	file := key + ".cache"
	if err := writeFile(filepath.Join(d.dir, file), data); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}

	now := time.Now()
	d.index[key] = &diskEntry{
		Key:        key,
		File:       file,
		MIMEType:   item.MIMEType,
		Size:       n,
		RawSize:    item.size(),
		Compressed: compressed,
		Created:    now,
		LastAccess: now,
	}
	d.size += n
	return d.saveIndex()
}

// Delete implements Store.
func (d *Disk) Delete(key string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if e, ok := d.index[key]; ok {
		d.removeLocked(key, e)
		return d.saveIndex()
	}
	return nil
}

// Clear implements Store.
func (d *Disk) Clear() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	for key, e := range d.index {
		d.removeLocked(key, e)
	}
	return d.saveIndex()
}

// Size implements Store.
func (d *Disk) Size() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.size
}

// Contains implements Store.
func (d *Disk) Contains(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.index[key]
	return ok
}

// Stats implements Store.
func (d *Disk) Stats() Stats {
	d.mu.Lock()
	defer d.mu.Unlock()

	s := d.stats
	s.Size = d.size
	s.Items = int64(len(d.index))
	s.computeHitRate()
	return s
}

// Prune removes artifacts created more than maxAge ago.
func (d *Disk) Prune(maxAge time.Duration) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for key, e := range d.index {
		if e.Created.Before(cutoff) {
			d.removeLocked(key, e)
			removed++
		}
	}
	if removed > 0 {
		if err := d.saveIndex(); err != nil {
			log.Warn("Unable to save cache index", "error", err)
		}
	}
	return removed
}

// Entry describes a stored artifact.
type Entry struct {
	Key        string
	MIMEType   string
	Size       int64
	RawSize    int64
	Created    time.Time
	LastAccess time.Time
	Hits       int64
}

// Entries lists stored artifacts, least recently used first.
func (d *Disk) Entries() []Entry {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]Entry, 0, len(d.index))
	for _, e := range d.index {
		out = append(out, Entry{
			Key:        e.Key,
			MIMEType:   e.MIMEType,
			Size:       e.Size,
			RawSize:    e.RawSize,
			Created:    e.Created,
			LastAccess: e.LastAccess,
			Hits:       e.Hits,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].LastAccess.Before(out[j].LastAccess)
	})
	return out
}

// Close saves the index.
func (d *Disk) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.encoder != nil {
		_ = d.encoder.Close()
	}
	d.decoder.Close()
	return d.saveIndex()
}

// must be called with the lock held
func (d *Disk) removeLocked(key string, e *diskEntry) {
	if err := os.Remove(filepath.Join(d.dir, e.File)); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Debug("Unable to remove cache file", "file", e.File, "error", err)
	}
	delete(d.index, key)
	d.size -= e.Size
}

// must be called with the lock held
func (d *Disk) evictOldest() {
	var (
		oldestKey string
		oldest    *diskEntry
	)
	for key, e := range d.index {
		if oldest == nil || e.LastAccess.Before(oldest.LastAccess) {
			oldestKey, oldest = key, e
		}
	}
	if oldest != nil {
		d.removeLocked(oldestKey, oldest)
		d.stats.Evictions++
		d.stats.LastEvict = time.Now()
	}
}

func (d *Disk) loadIndex() error {
	f, err := os.Open(filepath.Join(d.dir, indexName))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close() //nolint:errcheck
	return gob.NewDecoder(f).Decode(&d.index)
}

// must be called with the lock held
func (d *Disk) saveIndex() error {
	path := filepath.Join(d.dir, indexName)
	tmp := path + ".tmp"

	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	err = gob.NewEncoder(f).Encode(d.index)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

// writeFile writes to a temporary file and renames it into place.
func writeFile(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}
