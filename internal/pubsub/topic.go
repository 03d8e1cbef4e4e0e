// Package pubsub carries in-process change notifications between the editors
// and the viewers of one process.
package pubsub

import (
	"sync"

	"portfolio-sync/internal/domain/content"
)

// Topic delivers a full list to every subscriber, synchronously and in
// subscription order. Publish from inside a handler is allowed.
type Topic[T any] struct {
	name string

	mu     sync.RWMutex
	nextID int
	subs   []subscriber[T]
}

type subscriber[T any] struct {
	id int
	fn func([]T)
}

func NewTopic[T any](name string) *Topic[T] {
	return &Topic[T]{name: name}
}

func (t *Topic[T]) Name() string { return t.name }

// Subscribe registers fn and returns a function that removes it. The returned
// function may be called more than once.
func (t *Topic[T]) Subscribe(fn func(items []T)) func() {
	if t == nil || fn == nil {
		return func() {}
	}

	t.mu.Lock()
	t.nextID++
	id := t.nextID
	t.subs = append(t.subs, subscriber[T]{id: id, fn: fn})
	t.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { t.remove(id) })
	}
}

// Publish hands every subscriber its own copy of items.
func (t *Topic[T]) Publish(items []T) {
	if t == nil {
		return
	}
	t.mu.RLock()
	subs := make([]subscriber[T], len(t.subs))
	copy(subs, t.subs)
	t.mu.RUnlock()

	for _, s := range subs {
		s.fn(clone(items))
	}
}

func (t *Topic[T]) Subscribers() int {
	if t == nil {
		return 0
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.subs)
}

func (t *Topic[T]) remove(id int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, s := range t.subs {
		if s.id == id {
			t.subs = append(t.subs[:i:i], t.subs[i+1:]...)
			return
		}
	}
}

func clone[T any](items []T) []T {
	out := make([]T, len(items))
	copy(out, items)
	return out
}

// Bus groups the per-domain topics.
type Bus struct {
	WorkEntries  *Topic[content.WorkEntry]
	Certificates *Topic[content.Certificate]
	Projects     *Topic[content.Project]
}

func NewBus() *Bus {
	return &Bus{
		WorkEntries:  NewTopic[content.WorkEntry](content.DomainWorkEntries.String()),
		Certificates: NewTopic[content.Certificate](content.DomainCertificates.String()),
		Projects:     NewTopic[content.Project](content.DomainProjects.String()),
	}
}
