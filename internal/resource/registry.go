// Package resource hands out transient, addressable handles for in-memory
// artifacts (generated audio containers and images). A handle stays valid
// until it is revoked; revoking drops the underlying bytes.
package resource

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const scheme = "gaia-blob:"

var (
	// ErrRevoked is returned when a handle was revoked or never existed.
	ErrRevoked = errors.New("resource handle revoked")

	// ErrInvalidHandle is returned for strings that are not handles.
	ErrInvalidHandle = errors.New("invalid resource handle")
)

// Handle addresses a registered artifact.
type Handle string

// IsZero reports whether h is the empty handle.
func (h Handle) IsZero() bool { return h == "" }

// Valid reports whether h is syntactically a handle.
func (h Handle) Valid() bool {
	id, ok := strings.CutPrefix(string(h), scheme)
	if !ok {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}

// Info describes a registered artifact.
type Info struct {
	MIMEType string
	Size     int
	Created  time.Time
}

type entry struct {
	data []byte
	info Info
}

// Registry owns registered artifacts. It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	entries map[Handle]*entry
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[Handle]*entry)}
}

// Create registers data and returns a fresh handle for it. The registry
// takes ownership of data.
func (r *Registry) Create(data []byte, mime string) Handle {
	h := Handle(scheme + uuid.NewString())

	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[h] = &entry{
		data: data,
		info: Info{MIMEType: mime, Size: len(data), Created: time.Now()},
	}
	return h
}

// Open returns a reader over the artifact.
func (r *Registry) Open(h Handle) (*bytes.Reader, error) {
	data, err := r.Bytes(h)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(data), nil
}

// Bytes returns the artifact's bytes. Callers must not modify them.
func (r *Registry) Bytes(h Handle) ([]byte, error) {
	if !h.Valid() {
		return nil, ErrInvalidHandle
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[h]
	if !ok {
		return nil, ErrRevoked
	}
	return e.data, nil
}

// Info returns metadata about the artifact.
func (r *Registry) Info(h Handle) (Info, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[h]
	if !ok {
		return Info{}, ErrRevoked
	}
	return e.info, nil
}

// Revoke invalidates h. Revoking an unknown handle is a no-op.
func (r *Registry) Revoke(h Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[h]; ok {
		e.data = nil
		delete(r.entries, h)
	}
}

// Len returns the number of live handles.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Size returns the total bytes held by live handles.
func (r *Registry) Size() int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var n int64
	for _, e := range r.entries {
		n += int64(e.info.Size)
	}
	return n
}
