package session

import (
	"sync"
	"sync/atomic"
)

// Store maps chat IDs to sessions.
//
// Every operation on one chat ID holds that chat's lock for its whole duration,
// so read-modify-write cycles never interleave. The map-wide mutex is only held
// long enough to find or create the per-chat entry, which keeps unrelated
// chats from waiting on each other.
type Store struct {
	mu      sync.Mutex
	entries map[int64]*entry
	active  atomic.Int64
}

type entry struct {
	mu      sync.Mutex
	session *Session
	refs    int // guarded by Store.mu
}

func NewStore() *Store {
	return &Store{entries: make(map[int64]*entry)}
}

// Get returns a copy of the session for id.
func (s *Store) Get(id int64) (*Session, bool) {
	e := s.acquire(id)
	defer s.release(id, e)

	if e.session == nil {
		return nil, false
	}
	return e.session.Clone(), true
}

// Put stores sess under id, replacing any existing session.
func (s *Store) Put(id int64, sess *Session) {
	s.Update(id, func(*Session) *Session { return sess })
}

// Remove deletes the session for id, if any.
func (s *Store) Remove(id int64) {
	s.Update(id, func(*Session) *Session { return nil })
}

// Update runs fn with exclusive access to the session for id. fn receives nil
// when no session exists; whatever it returns is stored, nil meaning removal.
// fn may block (it is how handlers make external calls for a chat) but must not
// call back into the Store for the same id.
func (s *Store) Update(id int64, fn func(cur *Session) *Session) {
	e := s.acquire(id)
	defer s.release(id, e)

	had := e.session != nil
	e.session = fn(e.session)
	has := e.session != nil

	switch {
	case !had && has:
		s.active.Add(1)
	case had && !has:
		s.active.Add(-1)
	}
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	return int(s.active.Load())
}

func (s *Store) acquire(id int64) *entry {
	s.mu.Lock()
	e, ok := s.entries[id]
	if !ok {
		e = &entry{}
		s.entries[id] = e
	}
	e.refs++
	s.mu.Unlock()

	e.mu.Lock()
	return e
}

func (s *Store) release(id int64, e *entry) {
	s.mu.Lock()
	e.refs--
	if e.refs == 0 && e.session == nil {
		delete(s.entries, id)
	}
	s.mu.Unlock()

	e.mu.Unlock()
}
