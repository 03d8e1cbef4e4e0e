package usecase

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/google/uuid"

	"portfolio-sync/internal/domain/content"
	"portfolio-sync/internal/metrics"
	"portfolio-sync/internal/pubsub"
	"portfolio-sync/internal/repository"
)

// AdminSession is one admin's editing workspace: an editor per domain and the
// tab currently shown. Editors keep their drafts across tab switches.
type AdminSession struct {
	UserID uuid.UUID

	WorkEntries  *Editor[content.WorkEntry]
	Certificates *Editor[content.Certificate]
	Projects     *Editor[content.Project]

	mu        sync.RWMutex
	activeTab content.Domain
}

type SessionSnapshot struct {
	ActiveTab content.Domain                 `json:"active_tab"`
	Editors   map[content.Domain]EditorState `json:"editors"`
}

func NewAdminSession(userID uuid.UUID, slots repository.ContentSlots, bus *pubsub.Bus, logger *log.Logger, m *metrics.Metrics) *AdminSession {
	return &AdminSession{
		UserID:       userID,
		WorkEntries:  NewEditor(slots.WorkEntries, bus.WorkEntries, logger, m),
		Certificates: NewEditor(slots.Certificates, bus.Certificates, logger, m),
		Projects:     NewEditor(slots.Projects, bus.Projects, logger, m),
		activeTab:    content.DomainWorkEntries,
	}
}

// Open loads every editor. A domain that fails to load does not keep the
// others from opening.
func (s *AdminSession) Open(ctx context.Context) error {
	return errors.Join(
		s.WorkEntries.Open(ctx),
		s.Certificates.Open(ctx),
		s.Projects.Open(ctx),
	)
}

func (s *AdminSession) ActiveTab() content.Domain {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeTab
}

func (s *AdminSession) SetActiveTab(d content.Domain) error {
	if _, err := content.ParseDomain(d.String()); err != nil {
		return err
	}
	s.mu.Lock()
	s.activeTab = d
	s.mu.Unlock()
	return nil
}

func (s *AdminSession) Snapshot() SessionSnapshot {
	return SessionSnapshot{
		ActiveTab: s.ActiveTab(),
		Editors: map[content.Domain]EditorState{
			content.DomainWorkEntries:  s.WorkEntries.State(),
			content.DomainCertificates: s.Certificates.State(),
			content.DomainProjects:     s.Projects.State(),
		},
	}
}

// SessionRegistry keeps one AdminSession per authenticated admin.
type SessionRegistry struct {
	slots   repository.ContentSlots
	bus     *pubsub.Bus
	logger  *log.Logger
	metrics *metrics.Metrics

	mu       sync.Mutex
	sessions map[uuid.UUID]*AdminSession
}

func NewSessionRegistry(slots repository.ContentSlots, bus *pubsub.Bus, logger *log.Logger, m *metrics.Metrics) *SessionRegistry {
	if logger == nil {
		logger = log.Default()
	}
	return &SessionRegistry{
		slots:    slots,
		bus:      bus,
		logger:   logger,
		metrics:  m,
		sessions: map[uuid.UUID]*AdminSession{},
	}
}

// Get returns the admin's session, opening a new one on first use.
func (r *SessionRegistry) Get(ctx context.Context, userID uuid.UUID) (*AdminSession, error) {
	r.mu.Lock()
	s, ok := r.sessions[userID]
	r.mu.Unlock()
	if ok {
		return s, nil
	}

	s = NewAdminSession(userID, r.slots, r.bus, r.logger, r.metrics)
	if err := s.Open(ctx); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.sessions[userID]; ok {
		return existing, nil
	}
	r.sessions[userID] = s
	r.logger.Printf("[Admin] session opened | user_id=%s", userID)
	return s, nil
}

// Drop discards the admin's session and every unsaved draft in it.
func (r *SessionRegistry) Drop(userID uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[userID]; !ok {
		return false
	}
	delete(r.sessions, userID)
	r.logger.Printf("[Admin] session dropped | user_id=%s", userID)
	return true
}

func (r *SessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
