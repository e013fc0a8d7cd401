package session

import (
	"context"
	"sync"
	"time"

	"datadash/internal"

	"github.com/google/uuid"
)

// CookieName is the cookie carrying the session id
const CookieName = "datadash_session"

// State is what the dashboard remembers between requests of one browser
// session: the last form inputs and the cache key of the last upload.
type State struct {
	ID         string
	RepoURL    string
	FilePath   string
	UseRemote  bool
	UploadKey  string
	UploadName string
	X          string
	Y          string
	UpdatedAt  time.Time
}

// HasUpload reports whether the session holds an uploaded dataset
func (s State) HasUpload() bool {
	return s.UploadKey != ""
}

// UploadTracker is told when a session starts or stops holding an upload
type UploadTracker interface {
	Retain(key string)
	Release(key string)
}

// Store keeps session state in memory and forgets sessions idle for longer than ttl
type Store struct {
	mu       sync.RWMutex
	sessions map[string]State
	ttl      time.Duration
	now      func() time.Time
	uploads  UploadTracker
	logger   *internal.Logger
}

// NewStore creates a session store
func NewStore(ttl time.Duration) *Store {
	return &Store{
		sessions: make(map[string]State),
		ttl:      ttl,
		now:      time.Now,
		logger:   internal.NewLogger("Session"),
	}
}

// TrackUploads reports every change of a session's upload key to tracker,
// including the release of keys held by swept sessions.
func (s *Store) TrackUploads(tracker UploadTracker) {
	s.mu.Lock()
	s.uploads = tracker
	s.mu.Unlock()
}

// Create starts a new session seeded with defaults and returns it
func (s *Store) Create(defaults State) State {
	state := defaults
	state.ID = uuid.NewString()
	state.UpdatedAt = s.now()

	s.mu.Lock()
	s.sessions[state.ID] = state
	s.swapUpload("", state.UploadKey)
	s.mu.Unlock()
	s.logger.Debugf("created %s", state.ID)
	return state
}

// Get returns the session with id if it exists and has not expired
func (s *Store) Get(id string) (State, bool) {
	if _, err := uuid.Parse(id); err != nil {
		return State{}, false
	}
	s.mu.RLock()
	state, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok || s.expired(state) {
		return State{}, false
	}
	return state, true
}

// Save stores state under its id and refreshes its idle timer
func (s *Store) Save(state State) {
	state.UpdatedAt = s.now()
	s.mu.Lock()
	prev := s.sessions[state.ID].UploadKey
	s.sessions[state.ID] = state
	s.swapUpload(prev, state.UploadKey)
	s.mu.Unlock()
}

// Len returns the number of stored sessions, expired or not
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Sweep removes expired sessions, releasing their uploads, and returns how
// many were removed
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, state := range s.sessions {
		if s.expired(state) {
			delete(s.sessions, id)
			s.swapUpload(state.UploadKey, "")
			removed++
		}
	}
	return removed
}

// Run sweeps expired sessions every interval until ctx is done
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := s.Sweep(); removed > 0 {
				s.logger.Infof("Swept %d expired sessions (%d remaining)", removed, s.Len())
			}
		}
	}
}

// swapUpload must be called with s.mu held
func (s *Store) swapUpload(prev, next string) {
	if s.uploads == nil || prev == next {
		return
	}
	if next != "" {
		s.uploads.Retain(next)
	}
	if prev != "" {
		s.uploads.Release(prev)
	}
}

func (s *Store) expired(state State) bool {
	return s.ttl > 0 && s.now().Sub(state.UpdatedAt) > s.ttl
}
