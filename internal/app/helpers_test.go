package app

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yourusername/flix-offline-go/internal/domain"
)

// manualClock hands out timers that only fire when the test says so
type manualClock struct {
	mu     sync.Mutex
	timers []*manualTimer
}

type manualTimer struct {
	clock   *manualClock
	fire    func()
	stopped bool
}

func (t *manualTimer) Stop() {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	t.stopped = true
}

func (c *manualClock) NewTimer(_ time.Duration, fire func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTimer{clock: c, fire: fire}
	c.timers = append(c.timers, t)
	return t
}

// Tick fires every live timer once
func (c *manualClock) Tick() {
	for _, t := range c.liveTimers() {
		t.fire()
	}
}

// TickN fires every live timer n times
func (c *manualClock) TickN(n int) {
	for i := 0; i < n; i++ {
		c.Tick()
	}
}

func (c *manualClock) Live() int {
	return len(c.liveTimers())
}

func (c *manualClock) liveTimers() []*manualTimer {
	c.mu.Lock()
	defer c.mu.Unlock()
	var live []*manualTimer
	for _, t := range c.timers {
		if !t.stopped {
			live = append(live, t)
		}
	}
	return live
}

// fixedSource always draws the same offset
type fixedSource struct{ n int }

func (f fixedSource) IntN(bound int) int {
	if f.n >= bound {
		return bound - 1
	}
	return f.n
}

// memStore is an in-memory SnapshotStore
type memStore struct {
	mu      sync.Mutex
	saved   domain.Snapshot
	saves   int
	saveErr error
	loadErr error
}

func (s *memStore) Load() (domain.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return domain.Snapshot{}, s.loadErr
	}
	return copySnapshot(s.saved), nil
}

func (s *memStore) Save(snapshot domain.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved = copySnapshot(snapshot)
	return nil
}

func (s *memStore) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

func (s *memStore) Saved() domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copySnapshot(s.saved)
}

func copySnapshot(snapshot domain.Snapshot) domain.Snapshot {
	out := make(domain.Snapshot, len(snapshot))
	for owner, downloads := range snapshot {
		out[owner] = cloneView(downloads)
	}
	return out
}

type recordingNotifier struct {
	mu        sync.Mutex
	completed []domain.Download
}

func (n *recordingNotifier) NotifyDownloadCompleted(download domain.Download) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.completed = append(n.completed, download)
}

func testSimulationConfig() *domain.SimulationConfig {
	return &domain.SimulationConfig{
		TickInterval:      time.Second,
		MinStep:           5,
		MaxStep:           14,
		SecondsPerPercent: 6,
	}
}

// newTestManager builds a manager whose every tick adds exactly 10 percent
func newTestManager(t *testing.T, store *memStore) (*DownloadManager, *manualClock) {
	t.Helper()
	clock := &manualClock{}
	m := NewDownloadManager(store, nil, nil, testSimulationConfig(), zap.NewNop(),
		WithTimerFactory(clock.NewTimer),
		WithStepSource(fixedSource{n: 5}),
		WithClock(func() time.Time { return time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC) }),
	)
	t.Cleanup(m.Close)
	return m, clock
}

func movie(id string) domain.ContentDescriptor {
	return domain.ContentDescriptor{
		ContentID: id,
		Title:     "Title " + id,
		ImageURL:  "https://img.example/" + id + ".jpg",
		MediaType: "movie",
	}
}

// assertTimerInvariant checks that non-terminal records own exactly one
// scheduler slot and terminal records own none
func assertTimerInvariant(t *testing.T, m *DownloadManager) {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()

	active := 0
	for _, bucket := range m.registry.buckets {
		for _, d := range bucket {
			switch d.State {
			case domain.StateDownloading:
				active++
				assert.True(t, m.scheduler.Running(d.ID), "downloading %s must have a running timer", d.ID)
			case domain.StatePaused:
				active++
				assert.True(t, m.scheduler.Has(d.ID), "paused %s must keep its slot", d.ID)
				assert.False(t, m.scheduler.Running(d.ID), "paused %s must not tick", d.ID)
			case domain.StateCompleted:
				assert.False(t, m.scheduler.Has(d.ID), "completed %s must not have a slot", d.ID)
			}
		}
	}
	assert.Equal(t, active, m.scheduler.Len(), "no slots for records outside the registry")
}

func mustStart(t *testing.T, m *DownloadManager, contentID, account, profile string) string {
	t.Helper()
	id, ok := m.Start(movie(contentID), account, profile)
	require.True(t, ok)
	require.NotEmpty(t, id)
	return id
}
