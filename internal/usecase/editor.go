package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"portfolio-sync/internal/domain/content"
	"portfolio-sync/internal/metrics"
	"portfolio-sync/internal/pubsub"
	"portfolio-sync/internal/repository"
)

var (
	ErrInvalidTransition  = errors.New("invalid editor transition")
	ErrDeleteNotConfirmed = errors.New("delete not confirmed")
	ErrRecordNotFound     = errors.New("record not found")
	ErrEditorNotOpen      = errors.New("editor not open")
)

type Mode string

const (
	ModeBrowsing Mode = "browsing"
	ModeCreating Mode = "creating"
	ModeEditing  Mode = "editing"
)

// EditorState is the position of an editor in its state machine. EditingID is
// set only in ModeEditing.
type EditorState struct {
	Mode      Mode   `json:"mode"`
	EditingID string `json:"editing_id,omitempty"`
}

// Confirmer asks the operator to approve a destructive action.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

type ConfirmFunc func(ctx context.Context, prompt string) bool

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) bool { return f(ctx, prompt) }

// Confirmed is a Confirmer with a fixed answer, for callers that collected the
// approval up front (a query flag, a CLI prompt).
type Confirmed bool

func (c Confirmed) Confirm(context.Context, string) bool { return bool(c) }

// Editor is the CRUD surface of one content domain. Every successful save or
// delete writes the full list to the slot and then publishes it on the
// domain topic.
type Editor[T content.Record[T]] struct {
	slot    *repository.Slot[T]
	topic   *pubsub.Topic[T]
	logger  *log.Logger
	metrics *metrics.Metrics

	mu     sync.Mutex
	opened bool
	items  []T
	state  EditorState
	draft  T
}

func NewEditor[T content.Record[T]](slot *repository.Slot[T], topic *pubsub.Topic[T], logger *log.Logger, m *metrics.Metrics) *Editor[T] {
	if logger == nil {
		logger = log.Default()
	}
	return &Editor[T]{
		slot:    slot,
		topic:   topic,
		logger:  logger,
		metrics: m,
		state:   EditorState{Mode: ModeBrowsing},
	}
}

func (e *Editor[T]) Domain() content.Domain { return e.slot.Domain() }

// Open loads the list, seeding the defaults when the slot is empty. An
// in-progress draft survives a reopen.
func (e *Editor[T]) Open(ctx context.Context) error {
	items, err := e.slot.Load(ctx)
	if err != nil {
		return err
	}
	e.mu.Lock()
	e.items = items
	e.opened = true
	e.mu.Unlock()
	return nil
}

func (e *Editor[T]) Items() []T {
	e.mu.Lock()
	defer e.mu.Unlock()
	return cloneList(e.items)
}

func (e *Editor[T]) State() EditorState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Draft returns the record being composed. ok is false while browsing.
func (e *Editor[T]) Draft() (T, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state.Mode == ModeBrowsing {
		var zero T
		return zero, false
	}
	return e.draft, true
}

func (e *Editor[T]) Add() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.require(ModeBrowsing, "add"); err != nil {
		return err
	}
	var blank T
	e.draft = blank.Normalize()
	e.state = EditorState{Mode: ModeCreating}
	return nil
}

func (e *Editor[T]) Edit(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.require(ModeBrowsing, "edit"); err != nil {
		return err
	}
	idx := content.IndexOf(e.items, id)
	if idx < 0 {
		return fmt.Errorf("%w: %s %q", ErrRecordNotFound, e.slot.Domain(), id)
	}
	e.draft = e.items[idx]
	e.state = EditorState{Mode: ModeEditing, EditingID: id}
	return nil
}

// Compose replaces the draft. The draft's id is ignored on save.
func (e *Editor[T]) Compose(draft T) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state.Mode == ModeBrowsing {
		return fmt.Errorf("%w: compose while %s", ErrInvalidTransition, e.state.Mode)
	}
	e.draft = draft
	return nil
}

func (e *Editor[T]) Cancel() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state.Mode == ModeBrowsing {
		return fmt.Errorf("%w: cancel while %s", ErrInvalidTransition, e.state.Mode)
	}
	e.reset()
	return nil
}

// Save commits the draft. Creating appends it under a fresh id; Editing
// replaces the record with the editing id and leaves the others in place.
func (e *Editor[T]) Save(ctx context.Context) (T, error) {
	var zero T

	e.mu.Lock()
	if !e.opened {
		e.mu.Unlock()
		return zero, ErrEditorNotOpen
	}

	op := "create"
	rec := e.draft.Normalize()
	next := cloneList(e.items)

	switch e.state.Mode {
	case ModeCreating:
		if err := rec.Validate(); err != nil {
			e.mu.Unlock()
			return zero, err
		}
		taken := content.IDSet(e.items)
		rec = rec.WithID(content.NewID(func(id string) bool {
			_, ok := taken[id]
			return ok
		}))
		next = append(next, rec)
	case ModeEditing:
		op = "update"
		rec = rec.WithID(e.state.EditingID)
		if err := rec.Validate(); err != nil {
			e.mu.Unlock()
			return zero, err
		}
		idx := content.IndexOf(next, e.state.EditingID)
		if idx < 0 {
			e.mu.Unlock()
			return zero, fmt.Errorf("%w: %s %q", ErrRecordNotFound, e.slot.Domain(), e.state.EditingID)
		}
		next[idx] = rec
	default:
		e.mu.Unlock()
		return zero, fmt.Errorf("%w: save while %s", ErrInvalidTransition, e.state.Mode)
	}

	if err := e.persist(ctx, op, next); err != nil {
		e.mu.Unlock()
		return zero, err
	}
	e.items = next
	e.reset()
	e.mu.Unlock()

	e.topic.Publish(next)
	return rec, nil
}

// Delete removes the record with the given id once confirm approves it. It is
// only available while browsing.
func (e *Editor[T]) Delete(ctx context.Context, id string, confirm Confirmer) error {
	e.mu.Lock()
	if !e.opened {
		e.mu.Unlock()
		return ErrEditorNotOpen
	}
	if err := e.require(ModeBrowsing, "delete"); err != nil {
		e.mu.Unlock()
		return err
	}
	e.mu.Unlock()

	prompt := fmt.Sprintf("Delete %s record %q?", e.slot.Domain(), id)
	if confirm == nil || !confirm.Confirm(ctx, prompt) {
		return ErrDeleteNotConfirmed
	}

	e.mu.Lock()
	if err := e.require(ModeBrowsing, "delete"); err != nil {
		e.mu.Unlock()
		return err
	}
	idx := content.IndexOf(e.items, id)
	if idx < 0 {
		e.mu.Unlock()
		return fmt.Errorf("%w: %s %q", ErrRecordNotFound, e.slot.Domain(), id)
	}
	next := make([]T, 0, len(e.items)-1)
	next = append(next, e.items[:idx]...)
	next = append(next, e.items[idx+1:]...)

	if err := e.persist(ctx, "delete", next); err != nil {
		e.mu.Unlock()
		return err
	}
	e.items = next
	e.mu.Unlock()

	e.topic.Publish(next)
	return nil
}

func (e *Editor[T]) persist(ctx context.Context, op string, next []T) error {
	err := e.slot.Save(ctx, next)
	e.metrics.ContentWrite(e.slot.Domain().String(), op, err)
	if err != nil {
		e.logger.Printf("[Editor] %s failed | domain=%s err=%v", op, e.slot.Domain(), err)
		return err
	}
	e.logger.Printf("[Editor] %s | domain=%s items=%d", op, e.slot.Domain(), len(next))
	return nil
}

func (e *Editor[T]) require(mode Mode, action string) error {
	if e.state.Mode != mode {
		return fmt.Errorf("%w: %s while %s", ErrInvalidTransition, action, e.state.Mode)
	}
	return nil
}

func (e *Editor[T]) reset() {
	var zero T
	e.draft = zero
	e.state = EditorState{Mode: ModeBrowsing}
}

func cloneList[T any](items []T) []T {
	out := make([]T, len(items))
	copy(out, items)
	return out
}
