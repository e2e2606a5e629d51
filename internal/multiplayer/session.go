package multiplayer

import (
	"sync"
	"sync/atomic"
)

// SessionHandle is how the coordinator and matches reach one connected
// player. It knows nothing about SSH or Bubble Tea.
type SessionHandle interface {
	ID() SessionID

	// Send must not block.
	Send(evt SessionEvent)

	// Done closes when the player disconnects.
	Done() <-chan struct{}
}

// ChannelSession delivers events through a buffered channel read by the
// player's terminal program.
//
// Snapshots are superseded by the next tick, so a full buffer drops the
// incoming snapshot. Lobby and match events are never dropped in favour of
// a snapshot: the oldest queued event makes room for them instead.
type ChannelSession struct {
	id       SessionID
	events   chan SessionEvent
	done     chan struct{}
	doneOnce sync.Once
	dropped  atomic.Int64
}

// NewChannelSession creates a session with room for size pending events.
func NewChannelSession(id SessionID, size int) *ChannelSession {
	if size < 1 {
		size = 64
	}
	return &ChannelSession{
		id:     id,
		events: make(chan SessionEvent, size),
		done:   make(chan struct{}),
	}
}

func (s *ChannelSession) ID() SessionID {
	return s.id
}

// Send queues evt for the player. It is a no-op once the session is closed.
func (s *ChannelSession) Send(evt SessionEvent) {
	select {
	case <-s.done:
		return
	default:
	}

	select {
	case s.events <- evt:
		return
	default:
	}

	if _, ok := evt.(SnapshotEvent); ok {
		s.dropped.Add(1)
		return
	}

	select {
	case <-s.events:
		s.dropped.Add(1)
	default:
	}
	select {
	case s.events <- evt:
	default:
		s.dropped.Add(1)
	}
}

// Events is read by the terminal program, one event at a time.
func (s *ChannelSession) Events() <-chan SessionEvent {
	return s.events
}

func (s *ChannelSession) Done() <-chan struct{} {
	return s.done
}

// Dropped reports how many events were discarded because the player fell
// behind.
func (s *ChannelSession) Dropped() int64 {
	return s.dropped.Load()
}

// Close ends the session. Safe to call more than once.
func (s *ChannelSession) Close() {
	s.doneOnce.Do(func() {
		close(s.done)
	})
}

// SessionRegistry maps session ids to connected players.
type SessionRegistry struct {
	mu       sync.RWMutex
	sessions map[SessionID]SessionHandle
}

func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{
		sessions: make(map[SessionID]SessionHandle),
	}
}

func (r *SessionRegistry) Register(session SessionHandle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.ID()] = session
}

func (r *SessionRegistry) Unregister(id SessionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

func (r *SessionRegistry) Get(id SessionID) (SessionHandle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	return s, ok
}

// Count is the number of connected players.
func (r *SessionRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
