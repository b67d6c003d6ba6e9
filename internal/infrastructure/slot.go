package infrastructure

import "errors"

// ErrSlotEmpty is returned by Slot.Read when nothing has been written yet
var ErrSlotEmpty = errors.New("slot is empty")

// Slot is a named, durable key-value cell holding one opaque payload.
// Write replaces the previous payload as a whole.
type Slot interface {
	Read() ([]byte, error)
	Write(data []byte) error
	Close() error
}
