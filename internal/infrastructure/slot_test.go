package infrastructure

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupSQLiteSlot(t *testing.T, name string) *SQLiteSlot {
	t.Helper()
	slot, err := NewSQLiteSlot(filepath.Join(t.TempDir(), "nested", "test.db"), name)
	require.NoError(t, err)
	t.Cleanup(func() { slot.Close() })
	return slot
}

func TestSQLiteSlot_ReadWrite(t *testing.T) {
	slot := setupSQLiteSlot(t, "downloads")

	_, err := slot.Read()
	assert.ErrorIs(t, err, ErrSlotEmpty)
	_, err = slot.UpdatedAt()
	assert.ErrorIs(t, err, ErrSlotEmpty)

	require.NoError(t, slot.Write([]byte(`{"version":1}`)))
	require.NoError(t, slot.Write([]byte(`{"version":1,"owners":[]}`)))

	data, err := slot.Read()
	require.NoError(t, err)
	assert.Equal(t, `{"version":1,"owners":[]}`, string(data))

	updated, err := slot.UpdatedAt()
	require.NoError(t, err)
	assert.False(t, updated.IsZero())

	var count int64
	require.NoError(t, slot.db.Model(&slotRecord{}).Count(&count).Error)
	assert.Equal(t, int64(1), count, "writes upsert a single row")
}

func TestSQLiteSlot_NamesAreIsolated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shared.db")
	first, err := NewSQLiteSlot(path, "first")
	require.NoError(t, err)
	defer first.Close()
	second, err := NewSQLiteSlot(path, "second")
	require.NoError(t, err)
	defer second.Close()

	require.NoError(t, first.Write([]byte("one")))
	_, err = second.Read()
	assert.ErrorIs(t, err, ErrSlotEmpty)
}

func TestSQLiteSlot_RequiresName(t *testing.T) {
	_, err := NewSQLiteSlot(filepath.Join(t.TempDir(), "test.db"), "")
	assert.Error(t, err)
}

func TestFileSlot_MemFs(t *testing.T) {
	fs := afero.NewMemMapFs()
	slot, err := NewFileSlot(fs, "/var/flix", "downloads")
	require.NoError(t, err)
	assert.Nil(t, slot.lock)

	_, err = slot.Read()
	assert.ErrorIs(t, err, ErrSlotEmpty)

	require.NoError(t, slot.Write([]byte("first")))
	require.NoError(t, slot.Write([]byte("second")))

	data, err := slot.Read()
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	exists, err := afero.Exists(fs, slot.Path()+".tmp")
	require.NoError(t, err)
	assert.False(t, exists, "temp file is renamed away")
	assert.NoError(t, slot.Close())
}

func TestFileSlot_OsFsUsesLock(t *testing.T) {
	dir := t.TempDir()
	slot, err := NewFileSlot(afero.NewOsFs(), dir, "downloads")
	require.NoError(t, err)
	defer slot.Close()
	require.NotNil(t, slot.lock)

	require.NoError(t, slot.Write([]byte("payload")))
	data, err := slot.Read()
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))
	assert.Equal(t, filepath.Join(dir, "downloads.json"), slot.Path())
	assert.False(t, slot.lock.Locked(), "lock is released after each call")
}
