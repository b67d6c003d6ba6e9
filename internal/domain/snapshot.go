package domain

import "errors"

// Snapshot is a point-in-time copy of every owner's downloads,
// each bucket in insertion order.
type Snapshot map[OwnerKey][]Download

// Len returns the number of records across all owners
func (s Snapshot) Len() int {
	n := 0
	for _, downloads := range s {
		n += len(downloads)
	}
	return n
}

// ErrCorruptSnapshot is returned by a SnapshotStore whose stored payload cannot be decoded.
// The accompanying snapshot is empty.
var ErrCorruptSnapshot = errors.New("corrupt download snapshot")
