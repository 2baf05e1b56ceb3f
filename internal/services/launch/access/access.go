// Package access decides who may read a record held by the private
// executor. A permission with no members is public.
package access

import (
	"errors"
	"sync"

	"github.com/vestige-labs/vestige/internal/services/launch/domain/address"
)

// ErrDenied indicates the viewer is not a member of the record's permission.
var ErrDenied = errors.New("record is not visible to this viewer")

// Permission lists who may read a record.
type Permission struct {
	Record  address.Key
	Members []address.Key
}

// Public reports whether anyone may read the record.
func (p Permission) Public() bool {
	return len(p.Members) == 0
}

// Allows reports whether viewer may read the record.
func (p Permission) Allows(viewer address.Key) bool {
	if p.Public() {
		return true
	}
	for _, member := range p.Members {
		if member == viewer {
			return true
		}
	}
	return false
}

// Registry stores permissions by record key.
type Registry struct {
	mu          sync.RWMutex
	permissions map[address.Key]Permission
}

// NewRegistry returns an empty registry. Records without a permission are
// visible to nobody but the executor itself.
func NewRegistry() *Registry {
	return &Registry{permissions: make(map[address.Key]Permission)}
}

// CreatePermission grants members visibility into record. A nil or empty
// member list makes the record public. Calling it again replaces the grant.
func (r *Registry) CreatePermission(record address.Key, members []address.Key) Permission {
	p := Permission{Record: record, Members: append([]address.Key(nil), members...)}
	r.mu.Lock()
	r.permissions[record] = p
	r.mu.Unlock()
	return p
}

// Revoke removes the permission of a record.
func (r *Registry) Revoke(record address.Key) {
	r.mu.Lock()
	delete(r.permissions, record)
	r.mu.Unlock()
}

// Check returns ErrDenied unless viewer may read record.
func (r *Registry) Check(record, viewer address.Key) error {
	r.mu.RLock()
	p, ok := r.permissions[record]
	r.mu.RUnlock()
	if !ok || !p.Allows(viewer) {
		return ErrDenied
	}
	return nil
}
