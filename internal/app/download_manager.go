package app

import (
	"errors"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/yourusername/flix-offline-go/internal/domain"
	"github.com/yourusername/flix-offline-go/pkg/logger"
)

// StepSource draws the random numbers behind progress steps and size labels
type StepSource interface {
	IntN(n int) int
}

const (
	minSizeBytes = 300 * 1000 * 1000
	sizeSpreadMB = 2200
)

// DownloadManager owns the registry and the scheduler and applies every
// lifecycle operation and progress tick under one lock, so they never
// interleave. Every mutation is persisted before the call returns.
type DownloadManager struct {
	mu          sync.Mutex
	registry    *Registry
	scheduler   *Scheduler
	projector   *ViewProjector
	store       domain.SnapshotStore
	notifier    domain.Notifier
	config      domain.SimulationConfig
	logger      *zap.Logger
	multiLogger *logger.MultiLogger
	rng         StepSource
	now         func() time.Time
	active      domain.OwnerKey
	closed      bool
}

// ManagerOption customizes a DownloadManager
type ManagerOption func(*DownloadManager)

// WithTimerFactory replaces the ticker-backed timers
func WithTimerFactory(factory TimerFactory) ManagerOption {
	return func(m *DownloadManager) {
		m.scheduler.newTimer = factory
	}
}

// WithStepSource replaces the random source
func WithStepSource(rng StepSource) ManagerOption {
	return func(m *DownloadManager) {
		m.rng = rng
	}
}

// WithClock replaces time.Now for creation dates
func WithClock(now func() time.Time) ManagerOption {
	return func(m *DownloadManager) {
		m.now = now
	}
}

// WithMultiLogger routes lifecycle events and persistence errors to category logs
func WithMultiLogger(multiLogger *logger.MultiLogger) ManagerOption {
	return func(m *DownloadManager) {
		m.multiLogger = multiLogger
	}
}

// NewDownloadManager creates a download manager
func NewDownloadManager(
	store domain.SnapshotStore,
	projector *ViewProjector,
	notifier domain.Notifier,
	config *domain.SimulationConfig,
	logger *zap.Logger,
	opts ...ManagerOption,
) *DownloadManager {
	if projector == nil {
		projector = NewViewProjector()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	m := &DownloadManager{
		registry:  NewRegistry(),
		projector: projector,
		store:     store,
		notifier:  notifier,
		config:    *config,
		logger:    logger,
		rng:       rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x5eed)),
		now:       time.Now,
		active:    domain.ResolveOwner("", ""),
	}
	m.scheduler = NewScheduler(config.TickInterval, NewTickerTimer, m.tick)

	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Projector returns the active-owner view projector
func (m *DownloadManager) Projector() *ViewProjector {
	return m.projector
}

// Restore loads the persisted snapshot into an empty registry and opens
// scheduler slots for every non-terminal record. Downloading records resume
// ticking; paused records stay paused. Returns the number of records loaded.
func (m *DownloadManager) Restore() int {
	snapshot, err := m.store.Load()
	if err != nil {
		if errors.Is(err, domain.ErrCorruptSnapshot) {
			m.logger.Warn("Discarding unreadable download snapshot", zap.Error(err))
		} else {
			m.logger.Error("Failed to load download snapshot", zap.Error(err))
			m.logAppError("Failed to load download snapshot", zap.Error(err))
		}
		snapshot = domain.Snapshot{}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.scheduler.CancelAll()
	for _, skipErr := range m.registry.Load(snapshot) {
		m.logger.Warn("Skipping download from snapshot", zap.Error(skipErr))
	}

	running, paused := 0, 0
	for owner := range snapshot {
		for _, d := range m.registry.buckets[owner] {
			switch d.State {
			case domain.StateDownloading:
				m.scheduler.Start(d.ID)
				running++
			case domain.StatePaused:
				m.scheduler.StartSuspended(d.ID)
				paused++
			}
		}
	}

	m.publishLocked()

	m.logEvent("snapshot_restored",
		zap.Int("downloads", m.registry.Len()),
		zap.Int("running", running),
		zap.Int("paused", paused))
	return m.registry.Len()
}

// Start creates a download for the given owner and starts its timer.
// Returns false without touching the registry when no profile is given.
func (m *DownloadManager) Start(desc domain.ContentDescriptor, accountID, profileID string) (string, bool) {
	owner := domain.ResolveOwner(accountID, profileID)
	if !owner.HasProfile() {
		m.logger.Debug("Refusing download without a profile",
			zap.String("content_id", desc.ContentID),
			zap.String("account_id", owner.AccountID))
		return "", false
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return "", false
	}

	if desc.SizeLabel == "" {
		desc.SizeLabel = m.randomSizeLabel()
	}
	download := domain.NewDownload(desc, owner, m.now())
	if err := m.registry.Upsert(owner, download); err != nil {
		m.mu.Unlock()
		m.logger.Error("Failed to register download", zap.Error(err))
		return "", false
	}
	m.scheduler.Start(download.ID)
	m.commitLocked()
	m.mu.Unlock()

	m.logEvent("download_started",
		zap.String("id", download.ID),
		zap.String("content_id", download.ContentID),
		zap.String("owner", owner.String()))
	return download.ID, true
}

// StartActive starts a download for the active owner
func (m *DownloadManager) StartActive(desc domain.ContentDescriptor) (string, bool) {
	owner := m.ActiveOwner()
	return m.Start(desc, owner.AccountID, owner.ProfileID)
}

// Toggle pauses a downloading record or resumes a paused one.
// Completed and unknown ids are ignored, as is every id once the manager
// is closed. Returns the resulting state and whether anything changed.
func (m *DownloadManager) Toggle(id string) (domain.DownloadState, bool) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return "", false
	}
	download := m.registry.Find(id)
	if download == nil || download.IsTerminal() {
		m.mu.Unlock()
		return "", false
	}

	event := ""
	switch download.State {
	case domain.StateDownloading:
		download.Pause(m.config.SecondsPerPercent)
		if !m.scheduler.Suspend(id) && !m.scheduler.Has(id) {
			m.scheduler.StartSuspended(id)
		}
		event = "download_paused"
	case domain.StatePaused:
		download.Resume()
		if !m.scheduler.Resume(id) && !m.scheduler.Has(id) {
			m.scheduler.Start(id)
		}
		event = "download_resumed"
	}
	state := download.State
	progress := download.ProgressPercent
	m.commitLocked()
	m.mu.Unlock()

	m.logEvent(event, zap.String("id", id), zap.Int("progress", progress))
	return state, true
}

// Remove cancels the timer of id and deletes the record. Unknown ids are ignored.
func (m *DownloadManager) Remove(id string) bool {
	m.mu.Lock()
	m.scheduler.Cancel(id)
	download, ok := m.registry.Remove(id)
	if !ok {
		m.mu.Unlock()
		return false
	}
	m.commitLocked()
	m.mu.Unlock()

	m.logEvent("download_removed",
		zap.String("id", id),
		zap.String("owner", download.Owner.String()))
	return true
}

// ClearAll removes every download of one (account, profile) pair and
// cancels their timers. Other owners are untouched. Returns how many were removed.
func (m *DownloadManager) ClearAll(accountID, profileID string) int {
	owner := domain.ResolveOwner(accountID, profileID)

	m.mu.Lock()
	ids := m.registry.ClearFor(owner)
	for _, id := range ids {
		m.scheduler.Cancel(id)
	}
	if len(ids) > 0 {
		m.commitLocked()
	}
	m.mu.Unlock()

	if len(ids) > 0 {
		m.logEvent("downloads_cleared",
			zap.String("owner", owner.String()),
			zap.Int("count", len(ids)))
	}
	return len(ids)
}

// ClearActive clears the downloads of the active owner
func (m *DownloadManager) ClearActive() int {
	owner := m.ActiveOwner()
	if !owner.HasProfile() {
		return 0
	}
	return m.ClearAll(owner.AccountID, owner.ProfileID)
}

// SetActiveOwner switches the owner whose downloads the view shows
func (m *DownloadManager) SetActiveOwner(accountID, profileID string) domain.OwnerKey {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.active = domain.ResolveOwner(accountID, profileID)
	m.publishLocked()
	return m.active
}

// ClearActiveOwner forgets the active owner; the view becomes empty
func (m *DownloadManager) ClearActiveOwner() {
	m.SetActiveOwner("", "")
}

// ActiveOwner returns the active owner key
func (m *DownloadManager) ActiveOwner() domain.OwnerKey {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

// Downloads returns the active owner's downloads, derived from the registry
func (m *DownloadManager) Downloads() []domain.Download {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.viewLocked()
}

// ListFor returns the downloads of one (account, profile) pair
func (m *DownloadManager) ListFor(accountID, profileID string) []domain.Download {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.registry.ListFor(domain.ResolveOwner(accountID, profileID))
}

// Get returns a copy of the download with id
func (m *DownloadManager) Get(id string) (domain.Download, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	download := m.registry.Find(id)
	if download == nil {
		return domain.Download{}, false
	}
	return download.Clone(), true
}

// Stats counts the active owner's downloads by state
func (m *DownloadManager) Stats() domain.DownloadStats {
	return domain.CountStats(m.Downloads())
}

// ActiveTimers returns the number of scheduler slots
func (m *DownloadManager) ActiveTimers() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.scheduler.Len()
}

// Close stops every timer. Later Start calls are refused.
func (m *DownloadManager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	n := m.scheduler.CancelAll()
	m.logger.Info("Download manager stopped", zap.Int("timers_cancelled", n))
}

// IsRunning reports whether Close has not been called yet
func (m *DownloadManager) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.closed
}

// tick advances one download. It is the scheduler callback.
func (m *DownloadManager) tick(id string, generation uint64) {
	m.mu.Lock()
	if m.closed || !m.scheduler.IsCurrent(id, generation) {
		m.mu.Unlock()
		return
	}

	download := m.registry.Find(id)
	if download == nil || download.IsTerminal() {
		m.scheduler.Cancel(id)
		m.mu.Unlock()
		return
	}
	if download.State != domain.StateDownloading {
		m.mu.Unlock()
		return
	}

	completed := download.Advance(m.nextStep(), m.config.SecondsPerPercent)
	var finished domain.Download
	if completed {
		m.scheduler.Cancel(id)
		finished = download.Clone()
	}
	m.commitLocked()
	m.mu.Unlock()

	if completed {
		m.logEvent("download_completed",
			zap.String("id", id),
			zap.String("content_id", finished.ContentID),
			zap.String("owner", finished.Owner.String()))
		if m.notifier != nil {
			m.notifier.NotifyDownloadCompleted(finished)
		}
	}
}

// commitLocked writes the snapshot through to the store and republishes the view.
// A failed write is logged; the in-memory registry stays authoritative.
func (m *DownloadManager) commitLocked() {
	if err := m.store.Save(m.registry.Snapshot()); err != nil {
		m.logger.Error("Failed to persist downloads", zap.Error(err))
		m.logAppError("Failed to persist downloads", zap.Error(err))
	}
	m.publishLocked()
}

func (m *DownloadManager) publishLocked() {
	m.projector.Publish(m.active, m.viewLocked())
}

func (m *DownloadManager) viewLocked() []domain.Download {
	if !m.active.HasProfile() {
		return []domain.Download{}
	}
	return m.registry.ListFor(m.active)
}

func (m *DownloadManager) nextStep() int {
	lo, hi := m.config.MinStep, m.config.MaxStep
	if lo < 1 {
		lo = 1
	}
	if hi < lo {
		hi = lo
	}
	return lo + m.rng.IntN(hi-lo+1)
}

func (m *DownloadManager) randomSizeLabel() string {
	size := uint64(minSizeBytes) + uint64(m.rng.IntN(sizeSpreadMB))*1000*1000
	return humanize.Bytes(size)
}

func (m *DownloadManager) logEvent(event string, fields ...zap.Field) {
	if event == "" {
		return
	}
	m.logger.Debug(event, fields...)
	if m.multiLogger != nil {
		m.multiLogger.LogEngineEvent(event, fields...)
	}
}

func (m *DownloadManager) logAppError(msg string, fields ...zap.Field) {
	if m.multiLogger != nil {
		m.multiLogger.LogAppError(msg, fields...)
	}
}
