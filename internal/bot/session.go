package bot

import (
	"sync"
	"time"
)

// conversationState is the step a multi-turn exchange is waiting on.
type conversationState string

const (
	stateAwaitingWord   conversationState = "awaiting_word"
	stateAwaitingBulk   conversationState = "awaiting_bulk"
	stateAwaitingPhoto  conversationState = "awaiting_photo"
	stateReviewingPhoto conversationState = "reviewing_photo"
	stateAwaitingImport conversationState = "awaiting_import"
	stateAwaitingAnswer conversationState = "awaiting_answer"
)

// Session is the volatile per-user state of one multi-turn exchange.
// It is lost on restart.
type Session struct {
	State     conversationState
	EntryID   int64
	Tokens    []string
	UpdatedAt time.Time
}

// SessionStore keeps sessions in memory and forgets them after ttl of inactivity.
type SessionStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[int64]Session
}

// NewSessionStore creates an empty store.
func NewSessionStore(ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &SessionStore{
		ttl:      ttl,
		sessions: make(map[int64]Session),
	}
}

// Get returns the live session of a user. An expired session is dropped.
func (s *SessionStore) Get(userID int64, now time.Time) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[userID]
	if !ok {
		return Session{}, false
	}
	if now.Sub(session.UpdatedAt) > s.ttl {
		delete(s.sessions, userID)
		return Session{}, false
	}
	return session, true
}

// Set replaces the user's session and stamps it with now.
func (s *SessionStore) Set(userID int64, session Session, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session.UpdatedAt = now
	s.sessions[userID] = session
}

// Clear ends the user's exchange. It reports whether one was in progress.
func (s *SessionStore) Clear(userID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.sessions[userID]
	delete(s.sessions, userID)
	return ok
}

// PurgeExpired removes idle sessions and returns how many were dropped.
func (s *SessionStore) PurgeExpired(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	purged := 0
	for userID, session := range s.sessions {
		if now.Sub(session.UpdatedAt) > s.ttl {
			delete(s.sessions, userID)
			purged++
		}
	}
	return purged
}

// Len returns the number of stored sessions, expired ones included.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
