package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"portfolio-sync/internal/domain/content"
	"portfolio-sync/internal/metrics"
	"portfolio-sync/internal/storage"
)

var ErrMalformedContent = errors.New("malformed stored content")

// Slot is the typed view of one domain's storage slot: an ordered list of
// records encoded as a JSON array.
type Slot[T content.Record[T]] struct {
	domain   content.Domain
	store    storage.Store
	defaults func() []T
	logger   *log.Logger
	metrics  *metrics.Metrics
}

func NewSlot[T content.Record[T]](domain content.Domain, store storage.Store, defaults func() []T, logger *log.Logger, m *metrics.Metrics) *Slot[T] {
	if logger == nil {
		logger = log.Default()
	}
	return &Slot[T]{domain: domain, store: store, defaults: defaults, logger: logger, metrics: m}
}

func NewWorkEntrySlot(store storage.Store, logger *log.Logger, m *metrics.Metrics) *Slot[content.WorkEntry] {
	return NewSlot(content.DomainWorkEntries, store, content.DefaultWorkEntries, logger, m)
}

func NewCertificateSlot(store storage.Store, logger *log.Logger, m *metrics.Metrics) *Slot[content.Certificate] {
	return NewSlot(content.DomainCertificates, store, content.DefaultCertificates, logger, m)
}

func NewProjectSlot(store storage.Store, logger *log.Logger, m *metrics.Metrics) *Slot[content.Project] {
	return NewSlot(content.DomainProjects, store, content.DefaultProjects, logger, m)
}

func (s *Slot[T]) Domain() content.Domain { return s.domain }

func (s *Slot[T]) Key() string { return s.domain.Key() }

func (s *Slot[T]) Store() storage.Store { return s.store }

func (s *Slot[T]) Defaults() []T {
	if s.defaults == nil {
		return []T{}
	}
	return s.defaults()
}

// Read returns the stored list without seeding. present is false when the slot
// has never been written.
func (s *Slot[T]) Read(ctx context.Context) ([]T, bool, error) {
	raw, ok, err := s.store.Get(ctx, s.Key())
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}
	items, err := s.Decode(raw)
	if err != nil {
		return nil, true, err
	}
	return items, true, nil
}

// Load reads the slot and falls back to the defaults when it is absent or
// malformed; in that case the defaults are also written back so every later
// reader sees the same list. Only a failing read is returned as an error.
func (s *Slot[T]) Load(ctx context.Context) ([]T, error) {
	items, present, err := s.Read(ctx)
	switch {
	case err == nil && present:
		return items, nil
	case err != nil && !errors.Is(err, ErrMalformedContent):
		return nil, err
	}

	reason := "absent"
	if err != nil {
		reason = "malformed"
		s.logger.Printf("[Content] stored list unreadable, seeding defaults | domain=%s err=%v", s.domain, err)
	}
	s.metrics.SeedFallback(s.domain.String(), reason)

	defaults := s.Defaults()
	if err := s.Save(ctx, defaults); err != nil {
		s.logger.Printf("[Content] seeding defaults failed | domain=%s err=%v", s.domain, err)
	}
	return defaults, nil
}

func (s *Slot[T]) Save(ctx context.Context, items []T) error {
	raw, err := s.Encode(items)
	if err != nil {
		return err
	}
	return s.store.Set(ctx, s.Key(), raw)
}

func (s *Slot[T]) Encode(items []T) (string, error) {
	if items == nil {
		items = []T{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Decode parses a stored value. A JSON null, a non-array or a list with a
// repeated or empty id is reported as ErrMalformedContent.
func (s *Slot[T]) Decode(raw string) ([]T, error) {
	trimmed := bytes.TrimSpace([]byte(raw))
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, fmt.Errorf("%w: %s is not a JSON array", ErrMalformedContent, s.domain)
	}

	var items []T
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedContent, s.domain, err)
	}
	if items == nil {
		items = []T{}
	}

	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		id := it.RecordID()
		if id == "" {
			return nil, fmt.Errorf("%w: %s: record without id", ErrMalformedContent, s.domain)
		}
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("%w: %s: duplicate id %q", ErrMalformedContent, s.domain, id)
		}
		seen[id] = struct{}{}
	}
	return items, nil
}

// ContentSlots bundles the slot of every domain over one store.
type ContentSlots struct {
	WorkEntries  *Slot[content.WorkEntry]
	Certificates *Slot[content.Certificate]
	Projects     *Slot[content.Project]
}

func NewContentSlots(store storage.Store, logger *log.Logger, m *metrics.Metrics) ContentSlots {
	return ContentSlots{
		WorkEntries:  NewWorkEntrySlot(store, logger, m),
		Certificates: NewCertificateSlot(store, logger, m),
		Projects:     NewProjectSlot(store, logger, m),
	}
}
