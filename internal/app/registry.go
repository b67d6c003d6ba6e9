package app

import (
	"errors"
	"fmt"

	"github.com/yourusername/flix-offline-go/internal/domain"
)

// ErrOwnerMismatch is returned when a record is filed under a different owner than its own
var ErrOwnerMismatch = errors.New("download owner does not match bucket")

// Registry maps owner keys to their downloads in insertion order.
// Ids are unique across owners. Not safe for concurrent use.
type Registry struct {
	buckets map[domain.OwnerKey][]*domain.Download
	index   map[string]domain.OwnerKey
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		buckets: make(map[domain.OwnerKey][]*domain.Download),
		index:   make(map[string]domain.OwnerKey),
	}
}

// Upsert appends download to the owner's bucket, or replaces the record
// with the same id in place.
func (r *Registry) Upsert(owner domain.OwnerKey, download *domain.Download) error {
	if download.Owner != owner {
		return fmt.Errorf("%w: record %s belongs to %s, not %s", ErrOwnerMismatch, download.ID, download.Owner, owner)
	}

	if existing, ok := r.index[download.ID]; ok {
		if existing != owner {
			return fmt.Errorf("%w: record %s is already filed under %s", ErrOwnerMismatch, download.ID, existing)
		}
		bucket := r.buckets[owner]
		for i, d := range bucket {
			if d.ID == download.ID {
				bucket[i] = download
				return nil
			}
		}
	}

	r.buckets[owner] = append(r.buckets[owner], download)
	r.index[download.ID] = owner
	return nil
}

// Find looks a record up by id across all owners
func (r *Registry) Find(id string) *domain.Download {
	owner, ok := r.index[id]
	if !ok {
		return nil
	}
	for _, d := range r.buckets[owner] {
		if d.ID == id {
			return d
		}
	}
	return nil
}

// Remove deletes the record with id from whichever bucket holds it
func (r *Registry) Remove(id string) (*domain.Download, bool) {
	owner, ok := r.index[id]
	if !ok {
		return nil, false
	}
	delete(r.index, id)

	bucket := r.buckets[owner]
	for i, d := range bucket {
		if d.ID != id {
			continue
		}
		bucket = append(bucket[:i], bucket[i+1:]...)
		if len(bucket) == 0 {
			delete(r.buckets, owner)
		} else {
			r.buckets[owner] = bucket
		}
		return d, true
	}
	return nil, false
}

// ListFor returns copies of the owner's records in insertion order.
// Unknown owners get an empty, non-nil slice.
func (r *Registry) ListFor(owner domain.OwnerKey) []domain.Download {
	bucket := r.buckets[owner]
	downloads := make([]domain.Download, 0, len(bucket))
	for _, d := range bucket {
		downloads = append(downloads, d.Clone())
	}
	return downloads
}

// ClearFor drops every record of owner and returns their ids
func (r *Registry) ClearFor(owner domain.OwnerKey) []string {
	bucket := r.buckets[owner]
	ids := make([]string, 0, len(bucket))
	for _, d := range bucket {
		ids = append(ids, d.ID)
		delete(r.index, d.ID)
	}
	delete(r.buckets, owner)
	return ids
}

// Len returns the number of records across all owners
func (r *Registry) Len() int {
	return len(r.index)
}

// Snapshot returns a deep copy of all buckets
func (r *Registry) Snapshot() domain.Snapshot {
	snapshot := make(domain.Snapshot, len(r.buckets))
	for owner := range r.buckets {
		snapshot[owner] = r.ListFor(owner)
	}
	return snapshot
}

// Load replaces the registry contents with a snapshot. Records filed under
// the wrong owner or carrying duplicate ids are skipped and returned.
func (r *Registry) Load(snapshot domain.Snapshot) []error {
	r.buckets = make(map[domain.OwnerKey][]*domain.Download, len(snapshot))
	r.index = make(map[string]domain.OwnerKey, snapshot.Len())

	var skipped []error
	for owner, downloads := range snapshot {
		for i := range downloads {
			d := downloads[i].Clone()
			if _, dup := r.index[d.ID]; dup {
				skipped = append(skipped, fmt.Errorf("duplicate download id %s under %s", d.ID, owner))
				continue
			}
			if err := r.Upsert(owner, &d); err != nil {
				skipped = append(skipped, err)
			}
		}
	}
	return skipped
}
