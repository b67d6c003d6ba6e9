package app

import (
	"sync"

	"github.com/yourusername/flix-offline-go/internal/domain"
)

// View is the downloads of one owner as published together
type View struct {
	Owner     domain.OwnerKey
	Downloads []domain.Download
}

// ViewProjector holds the downloads visible to the active owner and pushes
// every new view to its subscribers. Subscribers only ever get the latest
// view; intermediate views are dropped for slow readers.
type ViewProjector struct {
	mu          sync.RWMutex
	owner       domain.OwnerKey
	current     []domain.Download
	subscribers map[int]chan View
	nextID      int
}

// NewViewProjector creates a projector with no active owner and an empty view
func NewViewProjector() *ViewProjector {
	return &ViewProjector{
		owner:       domain.ResolveOwner("", ""),
		current:     []domain.Download{},
		subscribers: make(map[int]chan View),
	}
}

// Publish replaces the current view for owner and notifies subscribers.
// It never blocks.
func (p *ViewProjector) Publish(owner domain.OwnerKey, downloads []domain.Download) {
	if downloads == nil {
		downloads = []domain.Download{}
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.owner = owner
	p.current = downloads
	for _, ch := range p.subscribers {
		offer(ch, View{Owner: owner, Downloads: cloneView(downloads)})
	}
}

// Owner returns the owner the current view belongs to
func (p *ViewProjector) Owner() domain.OwnerKey {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.owner
}

// Current returns a copy of the current view
func (p *ViewProjector) Current() []domain.Download {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return cloneView(p.current)
}

// Subscribe returns a channel that receives the current view immediately
// and every later one, each paired with the owner it was published for.
// Call cancel to unsubscribe; the channel is closed.
func (p *ViewProjector) Subscribe() (<-chan View, func()) {
	p.mu.Lock()
	defer p.mu.Unlock()

	id := p.nextID
	p.nextID++
	ch := make(chan View, 1)
	ch <- View{Owner: p.owner, Downloads: cloneView(p.current)}
	p.subscribers[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			p.mu.Lock()
			defer p.mu.Unlock()
			delete(p.subscribers, id)
			close(ch)
		})
	}
	return ch, cancel
}

// SubscriberCount returns the number of live subscriptions
func (p *ViewProjector) SubscriberCount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.subscribers)
}

// offer replaces whatever view is still pending in ch with view
func offer(ch chan View, view View) {
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- view:
	default:
	}
}

func cloneView(downloads []domain.Download) []domain.Download {
	view := make([]domain.Download, len(downloads))
	for i := range downloads {
		view[i] = downloads[i].Clone()
	}
	return view
}
