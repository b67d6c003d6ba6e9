package infrastructure

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/yourusername/flix-offline-go/internal/domain"
)

// snapshotVersion is the current document version written by SnapshotStore
const snapshotVersion = 1

type snapshotDocument struct {
	Version int           `json:"version"`
	SavedAt time.Time     `json:"saved_at"`
	Owners  []ownerBucket `json:"owners"`
}

type ownerBucket struct {
	Owner     domain.OwnerKey   `json:"owner"`
	Downloads []domain.Download `json:"downloads"`
}

// SnapshotStore implements domain.SnapshotStore as a JSON document in a Slot
type SnapshotStore struct {
	slot Slot
	now  func() time.Time
}

// NewSnapshotStore creates a snapshot store on top of slot
func NewSnapshotStore(slot Slot) *SnapshotStore {
	return &SnapshotStore{
		slot: slot,
		now:  time.Now,
	}
}

// Load reads and decodes the stored snapshot. An empty slot yields an empty
// snapshot. A payload that cannot be decoded yields an empty snapshot and an
// error wrapping domain.ErrCorruptSnapshot.
func (s *SnapshotStore) Load() (domain.Snapshot, error) {
	data, err := s.slot.Read()
	if err != nil {
		if errors.Is(err, ErrSlotEmpty) {
			return domain.Snapshot{}, nil
		}
		return domain.Snapshot{}, fmt.Errorf("failed to read snapshot: %w", err)
	}
	if len(data) == 0 {
		return domain.Snapshot{}, nil
	}

	snapshot, err := decodeSnapshot(data)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("%w: %v", domain.ErrCorruptSnapshot, err)
	}
	return snapshot, nil
}

// Save encodes snapshot and overwrites the slot
func (s *SnapshotStore) Save(snapshot domain.Snapshot) error {
	data, err := encodeSnapshot(snapshot, s.now())
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := s.slot.Write(data); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}

// Close closes the underlying slot
func (s *SnapshotStore) Close() error {
	return s.slot.Close()
}

func encodeSnapshot(snapshot domain.Snapshot, savedAt time.Time) ([]byte, error) {
	doc := snapshotDocument{
		Version: snapshotVersion,
		SavedAt: savedAt.UTC(),
		Owners:  make([]ownerBucket, 0, len(snapshot)),
	}

	for owner, downloads := range snapshot {
		if len(downloads) == 0 {
			continue
		}
		doc.Owners = append(doc.Owners, ownerBucket{Owner: owner, Downloads: downloads})
	}

	// Map order is random; keep the document stable between saves
	sort.Slice(doc.Owners, func(i, j int) bool {
		a, b := doc.Owners[i].Owner, doc.Owners[j].Owner
		if a.AccountID != b.AccountID {
			return a.AccountID < b.AccountID
		}
		return a.ProfileID < b.ProfileID
	})

	return json.Marshal(doc)
}

func decodeSnapshot(data []byte) (domain.Snapshot, error) {
	var doc snapshotDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Version < 1 || doc.Version > snapshotVersion {
		return nil, fmt.Errorf("unsupported snapshot version %d", doc.Version)
	}

	snapshot := domain.Snapshot{}
	for _, bucket := range doc.Owners {
		if bucket.Owner.AccountID == "" || bucket.Owner.ProfileID == "" {
			return nil, fmt.Errorf("owner key is incomplete: %+v", bucket.Owner)
		}
		for _, d := range bucket.Downloads {
			if err := validateRecord(d); err != nil {
				return nil, err
			}
		}
		snapshot[bucket.Owner] = append(snapshot[bucket.Owner], bucket.Downloads...)
	}
	return snapshot, nil
}

func validateRecord(d domain.Download) error {
	if d.ID == "" {
		return errors.New("download without id")
	}
	if !domain.ValidateState(d.State) {
		return fmt.Errorf("download %s has unknown state %q", d.ID, d.State)
	}
	if d.ProgressPercent < 0 || d.ProgressPercent > 100 {
		return fmt.Errorf("download %s has progress %d out of range", d.ID, d.ProgressPercent)
	}
	return nil
}
