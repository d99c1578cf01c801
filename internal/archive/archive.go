// Package archive builds the in-memory image bundle attached to a finished
// scrape. Entries are keyed by their internal path (images/<filename>) and
// written at most once; the final artifact is a zip, optionally base64
// encoded for transport inside a JSON event.
package archive

import (
	"archive/zip"
	"bytes"
	"encoding/base64"
	"fmt"
	"sync"
)

// Archive is a path-keyed set of file contents. It is safe for concurrent
// use; the downloader's image workers store entries as their fetches finish.
type Archive struct {
	mu      sync.Mutex
	entries map[string][]byte
	order   []string
}

// New creates an empty Archive.
func New() *Archive {
	return &Archive{entries: make(map[string][]byte)}
}

// Contains reports whether an entry exists at path.
func (a *Archive) Contains(path string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.entries[path]
	return ok
}

// Add stores data at path. A second add for the same path is refused, which
// keeps the no-duplicate-paths invariant; the caller treats that as
// "already archived".
func (a *Archive) Add(path string, data []byte) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.entries[path]; ok {
		return false
	}
	a.entries[path] = append([]byte(nil), data...)
	a.order = append(a.order, path)
	return true
}

// Len returns the number of stored entries.
func (a *Archive) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.entries)
}

// Paths returns the entry paths in insertion order.
func (a *Archive) Paths() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.order...)
}

// Zip serializes all entries into a zip archive, in insertion order.
func (a *Archive) Zip() ([]byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, path := range a.order {
		f, err := zw.Create(path)
		if err != nil {
			return nil, fmt.Errorf("create zip entry %s: %w", path, err)
		}
		if _, err := f.Write(a.entries[path]); err != nil {
			return nil, fmt.Errorf("write zip entry %s: %w", path, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close zip: %w", err)
	}
	return buf.Bytes(), nil
}

// Base64Zip returns the zip artifact base64 encoded for embedding in a JSON
// progress event.
func (a *Archive) Base64Zip() (string, error) {
	raw, err := a.Zip()
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}
