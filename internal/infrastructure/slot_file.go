package infrastructure

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/spf13/afero"
)

// FileSlot implements Slot as a JSON file. Writes go to a temp file that is
// renamed over the slot, so readers never see a partial payload.
type FileSlot struct {
	fs   afero.Fs
	path string
	lock *flock.Flock // nil unless fs is the OS filesystem
}

// NewFileSlot creates a slot stored at dir/name.json on fs
func NewFileSlot(fs afero.Fs, dir, name string) (*FileSlot, error) {
	if name == "" {
		return nil, errors.New("slot name is required")
	}
	if err := fs.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create slot directory: %w", err)
	}

	slot := &FileSlot{
		fs:   fs,
		path: filepath.Join(dir, name+".json"),
	}
	// Other processes only share the real filesystem
	if _, ok := fs.(*afero.OsFs); ok {
		slot.lock = flock.New(slot.path + ".lock")
	}
	return slot, nil
}

// Path returns the slot file path
func (s *FileSlot) Path() string {
	return s.path
}

// Read returns the stored payload or ErrSlotEmpty
func (s *FileSlot) Read() ([]byte, error) {
	if s.lock != nil {
		if err := s.lock.RLock(); err != nil {
			return nil, fmt.Errorf("failed to lock slot: %w", err)
		}
		defer s.lock.Unlock()
	}

	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrSlotEmpty
		}
		return nil, err
	}
	return data, nil
}

// Write replaces the payload
func (s *FileSlot) Write(data []byte) error {
	if s.lock != nil {
		if err := s.lock.Lock(); err != nil {
			return fmt.Errorf("failed to lock slot: %w", err)
		}
		defer s.lock.Unlock()
	}

	tmp := s.path + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, data, 0644); err != nil {
		return err
	}
	if err := s.fs.Rename(tmp, s.path); err != nil {
		_ = s.fs.Remove(tmp)
		return err
	}
	return nil
}

// Close releases the lock file handle
func (s *FileSlot) Close() error {
	if s.lock == nil {
		return nil
	}
	return s.lock.Close()
}
