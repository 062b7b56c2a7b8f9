package session

import (
	"context"
	"log"
	"sync"

	"learnhub/models"

	"github.com/google/uuid"
)

// Snapshot is the store state visible to consumers. IsLoading is true while
// the identity is unresolved or the profile of a resolved identity has not
// hydrated yet; role-gated decisions must not be made from a loading snapshot.
type Snapshot struct {
	Viewer    *models.Viewer
	Profile   *models.Profile
	IsLoading bool
}

type subscriber struct {
	id int
	fn func(Snapshot)
}

// Store owns the viewer identity and profile for the lifetime of the process.
// It subscribes to the identity service exactly once in Start and unsubscribes
// in Close. All transitions are driven by identity-service notifications and
// explicit SignOut calls.
type Store struct {
	identity IdentityService
	logger   *log.Logger

	mu          sync.Mutex
	viewer      *models.Viewer
	profile     *models.Profile
	loading     bool
	epoch       int
	subscribers []subscriber
	nextSub     int
	unsubscribe func()

	// deliverMu serializes notification delivery so subscribers never observe
	// snapshots out of emission order.
	deliverMu sync.Mutex
}

func NewStore(identity IdentityService, logger *log.Logger) *Store {
	return &Store{
		identity: identity,
		logger:   logger,
		loading:  true,
	}
}

// Start subscribes to identity change notifications. Calling Start twice is a
// no-op.
func (s *Store) Start() {
	s.mu.Lock()
	started := s.unsubscribe != nil
	s.mu.Unlock()
	if started {
		return
	}

	unsubscribe := s.identity.OnAuthChange(s.handleAuthChange)

	s.mu.Lock()
	s.unsubscribe = unsubscribe
	s.mu.Unlock()
}

func (s *Store) Close() {
	s.mu.Lock()
	unsubscribe := s.unsubscribe
	s.unsubscribe = nil
	s.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Subscribe registers a listener invoked on every state change. The returned
// function removes the listener.
func (s *Store) Subscribe(fn func(Snapshot)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subscribers = append(s.subscribers, subscriber{id: id, fn: fn})
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.subscribers {
			if sub.id == id {
				s.subscribers = append(s.subscribers[:i], s.subscribers[i+1:]...)
				return
			}
		}
	}
}

// SignOut asks the identity service to end the session. A failure is logged
// and the local state still transitions to anonymous: the safe default after
// a sign-out attempt is de-authentication.
func (s *Store) SignOut(ctx context.Context) error {
	if err := s.identity.SignOut(ctx); err != nil {
		s.logger.Printf("sign-out failed, forcing local sign-out: %v", err)
	}
	s.handleAuthChange(AuthEvent{Viewer: nil})
	return nil
}

func (s *Store) handleAuthChange(ev AuthEvent) {
	s.deliverMu.Lock()
	defer s.deliverMu.Unlock()

	s.mu.Lock()
	s.epoch++
	epoch := s.epoch

	if ev.Viewer == nil {
		s.viewer = nil
		s.profile = nil
		s.loading = false
		snap := s.snapshotLocked()
		subs := s.subscribersLocked()
		s.mu.Unlock()

		notify(subs, snap)
		return
	}

	viewer := *ev.Viewer
	s.viewer = &viewer
	s.profile = nil
	s.loading = true
	snap := s.snapshotLocked()
	subs := s.subscribersLocked()
	s.mu.Unlock()

	notify(subs, snap)

	go s.hydrateProfile(viewer.ID, epoch)
}

// hydrateProfile loads the profile for the current viewer. A result arriving
// after another auth change is discarded: it belongs to a stale identity.
func (s *Store) hydrateProfile(viewerID uuid.UUID, epoch int) {
	profile, err := s.identity.GetProfile(context.Background(), viewerID)

	s.deliverMu.Lock()
	defer s.deliverMu.Unlock()

	s.mu.Lock()
	if s.epoch != epoch {
		s.mu.Unlock()
		return
	}

	if err != nil {
		s.logger.Printf("profile fetch failed for viewer %s: %v", viewerID, err)
	}

	s.profile = profile
	s.loading = false
	snap := s.snapshotLocked()
	subs := s.subscribersLocked()
	s.mu.Unlock()

	notify(subs, snap)
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{
		Viewer:    s.viewer,
		Profile:   s.profile,
		IsLoading: s.loading,
	}
}

func (s *Store) subscribersLocked() []subscriber {
	subs := make([]subscriber, len(s.subscribers))
	copy(subs, s.subscribers)
	return subs
}

func notify(subs []subscriber, snap Snapshot) {
	for _, sub := range subs {
		sub.fn(snap)
	}
}
