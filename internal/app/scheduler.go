package app

import (
	"sort"
	"time"
)

// TickFunc receives a timer fire for a download. generation identifies the
// timer that fired so that fires from a replaced timer can be ignored.
type TickFunc func(id string, generation uint64)

// slot is the scheduler bookkeeping for one non-terminal download.
// A suspended slot has no running timer but keeps its place until the
// download is resumed, removed or cleared.
type slot struct {
	timer      Timer
	generation uint64
	suspended  bool
}

// Scheduler keeps exactly one slot per non-terminal download.
// It is not safe for concurrent use; DownloadManager serializes access.
type Scheduler struct {
	interval   time.Duration
	newTimer   TimerFactory
	onTick     TickFunc
	slots      map[string]*slot
	generation uint64
}

// NewScheduler creates a scheduler that fires onTick every interval per running slot
func NewScheduler(interval time.Duration, newTimer TimerFactory, onTick TickFunc) *Scheduler {
	if newTimer == nil {
		newTimer = NewTickerTimer
	}
	return &Scheduler{
		interval: interval,
		newTimer: newTimer,
		onTick:   onTick,
		slots:    make(map[string]*slot),
	}
}

// Start opens a running slot for id. Returns false if id already has a slot.
func (s *Scheduler) Start(id string) bool {
	if _, ok := s.slots[id]; ok {
		return false
	}
	sl := &slot{}
	s.slots[id] = sl
	s.run(id, sl)
	return true
}

// StartSuspended opens a slot for id without a running timer
func (s *Scheduler) StartSuspended(id string) bool {
	if _, ok := s.slots[id]; ok {
		return false
	}
	s.slots[id] = &slot{suspended: true}
	return true
}

// Suspend stops the timer of id but keeps its slot
func (s *Scheduler) Suspend(id string) bool {
	sl, ok := s.slots[id]
	if !ok || sl.suspended {
		return false
	}
	sl.timer.Stop()
	sl.timer = nil
	sl.suspended = true
	return true
}

// Resume restarts the timer of a suspended slot
func (s *Scheduler) Resume(id string) bool {
	sl, ok := s.slots[id]
	if !ok || !sl.suspended {
		return false
	}
	s.run(id, sl)
	return true
}

// Cancel stops and forgets the slot of id. Cancelling an unknown id is a no-op.
func (s *Scheduler) Cancel(id string) bool {
	sl, ok := s.slots[id]
	if !ok {
		return false
	}
	if sl.timer != nil {
		sl.timer.Stop()
	}
	delete(s.slots, id)
	return true
}

// CancelAll stops every timer and returns how many slots were dropped
func (s *Scheduler) CancelAll() int {
	n := len(s.slots)
	for id := range s.slots {
		s.Cancel(id)
	}
	return n
}

// Has reports whether id owns a slot, running or suspended
func (s *Scheduler) Has(id string) bool {
	_, ok := s.slots[id]
	return ok
}

// Running reports whether id owns a slot with a live timer
func (s *Scheduler) Running(id string) bool {
	sl, ok := s.slots[id]
	return ok && !sl.suspended
}

// IsCurrent reports whether a fire with this generation belongs to the live timer of id
func (s *Scheduler) IsCurrent(id string, generation uint64) bool {
	sl, ok := s.slots[id]
	return ok && !sl.suspended && sl.generation == generation
}

// Len returns the number of slots
func (s *Scheduler) Len() int {
	return len(s.slots)
}

// IDs returns the ids owning a slot, sorted
func (s *Scheduler) IDs() []string {
	ids := make([]string, 0, len(s.slots))
	for id := range s.slots {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (s *Scheduler) run(id string, sl *slot) {
	s.generation++
	generation := s.generation
	sl.generation = generation
	sl.suspended = false
	sl.timer = s.newTimer(s.interval, func() {
		s.onTick(id, generation)
	})
}
