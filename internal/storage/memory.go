package storage

import (
	"context"
	"sync"
)

// Memory is a process-local backing shared by any number of sessions. A write
// through one session is reported to the watchers of every other session,
// never to its own.
type Memory struct {
	mu       sync.RWMutex
	values   map[string]string
	sessions map[*MemorySession]struct{}
}

func NewMemory() *Memory {
	return &Memory{
		values:   map[string]string{},
		sessions: map[*MemorySession]struct{}{},
	}
}

// Session opens a new writer on the shared backing.
func (m *Memory) Session() *MemorySession {
	s := &MemorySession{backing: m, watchers: map[chan Change]struct{}{}}
	m.mu.Lock()
	m.sessions[s] = struct{}{}
	m.mu.Unlock()
	return s
}

// Raw writes directly to the backing and notifies every session. Tests use it
// to plant content as if another writer produced it.
func (m *Memory) Raw(key, value string) {
	m.mu.Lock()
	m.values[key] = value
	sessions := m.snapshotSessions()
	m.mu.Unlock()

	for _, s := range sessions {
		s.notify(Change{Key: key, Value: value, Present: true})
	}
}

func (m *Memory) Remove(key string) {
	m.mu.Lock()
	delete(m.values, key)
	sessions := m.snapshotSessions()
	m.mu.Unlock()

	for _, s := range sessions {
		s.notify(Change{Key: key})
	}
}

func (m *Memory) snapshotSessions() []*MemorySession {
	out := make([]*MemorySession, 0, len(m.sessions))
	for s := range m.sessions {
		out = append(out, s)
	}
	return out
}

type MemorySession struct {
	backing *Memory

	mu       sync.Mutex
	watchers map[chan Change]struct{}
	closed   bool
}

func (s *MemorySession) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	if s.isClosed() {
		return "", false, ErrClosed
	}
	s.backing.mu.RLock()
	defer s.backing.mu.RUnlock()
	v, ok := s.backing.values[key]
	return v, ok, nil
}

func (s *MemorySession) Set(ctx context.Context, key string, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !validKey(key) {
		return ErrInvalidKey
	}
	if s.isClosed() {
		return ErrClosed
	}

	s.backing.mu.Lock()
	s.backing.values[key] = value
	sessions := s.backing.snapshotSessions()
	s.backing.mu.Unlock()

	for _, other := range sessions {
		if other == s {
			continue
		}
		other.notify(Change{Key: key, Value: value, Present: true})
	}
	return nil
}

func (s *MemorySession) Watch(ctx context.Context) (<-chan Change, error) {
	ch := make(chan Change, watchBuffer)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrClosed
	}
	s.watchers[ch] = struct{}{}
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.dropWatcher(ch)
	}()
	return ch, nil
}

func (s *MemorySession) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	for ch := range s.watchers {
		close(ch)
	}
	s.watchers = map[chan Change]struct{}{}
	s.mu.Unlock()

	s.backing.mu.Lock()
	delete(s.backing.sessions, s)
	s.backing.mu.Unlock()
	return nil
}

func (s *MemorySession) notify(c Change) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.watchers {
		emit(ch, c)
	}
}

func (s *MemorySession) dropWatcher(ch chan Change) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.watchers[ch]; ok {
		delete(s.watchers, ch)
		close(ch)
	}
}

func (s *MemorySession) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
