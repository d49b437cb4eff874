// Package conversation holds the session registry and the orchestrator that
// runs exchanges against the generation client.
package conversation

import (
	"sort"
	"sync"
	"time"

	"github.com/xiaot623/gogo/chatapi/internal/domain"
)

// Session is the accumulated state of one conversation.
type Session struct {
	id        string
	createdAt time.Time

	// exchangeMu serialises exchanges on this session. It is held across the
	// generation call, so turn reads use mu instead.
	exchangeMu sync.Mutex

	mu        sync.RWMutex
	turns     []domain.Turn
	updatedAt time.Time
}

func newSession(id string, now time.Time) *Session {
	return &Session{id: id, createdAt: now, updatedAt: now}
}

// ID returns the conversation identifier.
func (s *Session) ID() string {
	return s.id
}

// CreatedAt returns when the session was created.
func (s *Session) CreatedAt() time.Time {
	return s.createdAt
}

// UpdatedAt returns when the last exchange was committed.
func (s *Session) UpdatedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.updatedAt
}

// Turns returns a copy of the session's turns in order.
func (s *Session) Turns() []domain.Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Turn, len(s.turns))
	copy(out, s.turns)
	return out
}

// Len returns the number of turns.
func (s *Session) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.turns)
}

// Snapshot returns a read-only copy of the session.
func (s *Session) Snapshot() *domain.ConversationSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	turns := make([]domain.Turn, len(s.turns))
	copy(turns, s.turns)
	return &domain.ConversationSnapshot{
		ConversationID: s.id,
		Turns:          turns,
		CreatedAt:      s.createdAt,
		UpdatedAt:      s.updatedAt,
	}
}

// appendTurns commits turns. Callers hold exchangeMu.
func (s *Session) appendTurns(now time.Time, turns ...domain.Turn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns = append(s.turns, turns...)
	s.updatedAt = now
}

// Registry maps conversation identifiers to sessions. It is process-local:
// separate processes never share a Registry.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	now      func() time.Time
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		now:      time.Now,
	}
}

// GetOrCreate returns the session for id, creating an empty one if needed.
func (r *Registry) GetOrCreate(id string) *Session {
	r.mu.RLock()
	sess, ok := r.sessions[id]
	r.mu.RUnlock()
	if ok {
		return sess
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if sess, ok := r.sessions[id]; ok {
		return sess
	}
	sess = newSession(id, r.now())
	r.sessions[id] = sess
	return sess
}

// Get returns the session for id or a *domain.NotFoundError.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sess, ok := r.sessions[id]
	if !ok {
		return nil, &domain.NotFoundError{Resource: "Conversation", Key: id}
	}
	return sess, nil
}

// Delete removes the session for id. Deleting an absent id returns a
// *domain.NotFoundError, including on repeated calls.
func (r *Registry) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return &domain.NotFoundError{Resource: "Conversation", Key: id}
	}
	delete(r.sessions, id)
	return nil
}

// ListIDs returns all session identifiers, sorted.
func (r *Registry) ListIDs() []string {
	r.mu.RLock()
	ids := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	r.mu.RUnlock()

	sort.Strings(ids)
	return ids
}

// Len returns the number of sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
