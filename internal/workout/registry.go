package workout

import (
	"sync"

	"backend-pacetrail/internal/location"
)

// Registry hands out one Manager per user, each wired to its own location
// Feed. The single-active-session invariant therefore holds per user.
type Registry struct {
	mu    sync.Mutex
	store Store
	hub   Broadcaster
	users map[string]*userEntry
}

type userEntry struct {
	manager *Manager
	feed    *location.Feed
}

func NewRegistry(store Store, hub Broadcaster) *Registry {
	return &Registry{
		store: store,
		hub:   hub,
		users: map[string]*userEntry{},
	}
}

// ManagerFor returns the user's manager and the feed its provider reads
// from, creating both on first use.
func (r *Registry) ManagerFor(userID string) (*Manager, *location.Feed) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.users[userID]
	if !ok {
		feed := location.NewFeed()
		entry = &userEntry{
			manager: NewManager(feed, r.store, r.hub),
			feed:    feed,
		}
		r.users[userID] = entry
	}
	return entry.manager, entry.feed
}
