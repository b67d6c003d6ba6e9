package infrastructure

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/flix-offline-go/internal/domain"
)

type failingSlot struct {
	err error
}

func (s failingSlot) Read() ([]byte, error) { return nil, s.err }
func (s failingSlot) Write([]byte) error    { return s.err }
func (s failingSlot) Close() error          { return nil }

func newMemStore(t *testing.T) (*SnapshotStore, *FileSlot) {
	t.Helper()
	slot, err := NewFileSlot(afero.NewMemMapFs(), "/data", "downloads")
	require.NoError(t, err)
	return NewSnapshotStore(slot), slot
}

func sampleSnapshot() domain.Snapshot {
	now := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
	season := "Season 2"
	a := domain.ResolveOwner("acct-1", "kids")
	b := domain.ResolveOwner("acct-1", "main")

	first := domain.NewDownload(domain.ContentDescriptor{ContentID: "tt1", Title: "Heat", SizeLabel: "1.2 GB"}, a, now)
	second := domain.NewDownload(domain.ContentDescriptor{ContentID: "tt2", Title: "Dark", SeasonLabel: &season}, a, now)
	second.Advance(40, 6)
	second.Pause(6)
	third := domain.NewDownload(domain.ContentDescriptor{ContentID: "tt3", Title: "Alien"}, b, now)
	third.Advance(100, 6)

	return domain.Snapshot{
		a: {first.Clone(), second.Clone()},
		b: {third.Clone()},
	}
}

func TestSnapshotStore_EmptySlot(t *testing.T) {
	store, _ := newMemStore(t)

	snapshot, err := store.Load()
	require.NoError(t, err)
	assert.NotNil(t, snapshot)
	assert.Equal(t, 0, snapshot.Len())
}

func TestSnapshotStore_RoundTrip(t *testing.T) {
	store, _ := newMemStore(t)
	want := sampleSnapshot()

	require.NoError(t, store.Save(want))
	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, want, got)

	b := got[domain.ResolveOwner("acct-1", "main")][0]
	assert.Equal(t, domain.StateCompleted, b.State)
	assert.Nil(t, b.RemainingEstimate)
}

func TestSnapshotStore_DocumentIsStable(t *testing.T) {
	store, slot := newMemStore(t)
	fixed := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return fixed }

	require.NoError(t, store.Save(sampleSnapshot()))
	first, err := slot.Read()
	require.NoError(t, err)

	require.NoError(t, store.Save(sampleSnapshot()))
	second, err := slot.Read()
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))

	var doc snapshotDocument
	require.NoError(t, json.Unmarshal(first, &doc))
	assert.Equal(t, snapshotVersion, doc.Version)
	require.Len(t, doc.Owners, 2)
	assert.Equal(t, "kids", doc.Owners[0].Owner.ProfileID)
	assert.Equal(t, "main", doc.Owners[1].Owner.ProfileID)
}

func TestSnapshotStore_SkipsEmptyBuckets(t *testing.T) {
	store, slot := newMemStore(t)
	snapshot := sampleSnapshot()
	snapshot[domain.ResolveOwner("acct-2", "p")] = nil

	require.NoError(t, store.Save(snapshot))
	data, err := slot.Read()
	require.NoError(t, err)

	var doc snapshotDocument
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Len(t, doc.Owners, 2)
}

func TestSnapshotStore_CorruptPayload(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"not json", "{downloads"},
		{"wrong version", `{"version":99,"owners":[]}`},
		{"missing version", `{"owners":[]}`},
		{"unknown state", `{"version":1,"owners":[{"owner":{"account_id":"a","profile_id":"p"},"downloads":[{"id":"x","state":"exploded"}]}]}`},
		{"progress out of range", `{"version":1,"owners":[{"owner":{"account_id":"a","profile_id":"p"},"downloads":[{"id":"x","state":"paused","progress_percent":140}]}]}`},
		{"incomplete owner", `{"version":1,"owners":[{"owner":{"account_id":"a"},"downloads":[]}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, slot := newMemStore(t)
			require.NoError(t, slot.Write([]byte(tt.payload)))

			snapshot, err := store.Load()
			assert.ErrorIs(t, err, domain.ErrCorruptSnapshot)
			assert.NotNil(t, snapshot)
			assert.Equal(t, 0, snapshot.Len())
		})
	}
}

func TestSnapshotStore_ZeroLengthPayload(t *testing.T) {
	store, slot := newMemStore(t)
	require.NoError(t, slot.Write(nil))

	snapshot, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, 0, snapshot.Len())
}

func TestSnapshotStore_SlotErrors(t *testing.T) {
	boom := errors.New("disk gone")
	store := NewSnapshotStore(failingSlot{err: boom})

	snapshot, err := store.Load()
	assert.ErrorIs(t, err, boom)
	assert.False(t, errors.Is(err, domain.ErrCorruptSnapshot))
	assert.Equal(t, 0, snapshot.Len())

	assert.ErrorIs(t, store.Save(sampleSnapshot()), boom)
}
