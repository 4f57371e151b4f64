// Package vendors resolves vendor identities owned by the external vendor directory.
package vendors

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrVendorNotFound indicates the directory has no vendor with the given id.
	ErrVendorNotFound = errors.New("vendor not found")
	// ErrInvalidVendor is returned when a vendor lacks an id or name.
	ErrInvalidVendor = errors.New("vendor id and name required")
)

// Directory looks up vendor display names.
type Directory interface {
	VendorName(ctx context.Context, vendorID string) (string, error)
}

// Vendor is a directory entry.
type Vendor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// MemoryDirectory is a Directory backed by a map, used for demos and tests.
type MemoryDirectory struct {
	mu    sync.RWMutex
	names map[string]string
}

// NewMemoryDirectory builds a directory preloaded with vendors.
func NewMemoryDirectory(vendors ...Vendor) *MemoryDirectory {
	d := &MemoryDirectory{names: make(map[string]string, len(vendors))}
	for _, v := range vendors {
		d.names[v.ID] = v.Name
	}
	return d
}

// Put adds or renames a vendor.
func (d *MemoryDirectory) Put(v Vendor) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.names[v.ID] = v.Name
}

func (d *MemoryDirectory) VendorName(ctx context.Context, vendorID string) (string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	name, ok := d.names[vendorID]
	if !ok {
		return "", ErrVendorNotFound
	}
	return name, nil
}
