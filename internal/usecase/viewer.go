package usecase

import (
	"context"
	"log"
	"sync"

	"portfolio-sync/internal/domain/content"
	"portfolio-sync/internal/metrics"
	"portfolio-sync/internal/pubsub"
	"portfolio-sync/internal/repository"
	"portfolio-sync/internal/storage"
)

// Viewer holds the publicly displayed list of one domain. Once mounted it
// follows two feeds: the in-process domain topic and the store's change feed
// for writes made elsewhere.
type Viewer[T content.Record[T]] struct {
	slot    *repository.Slot[T]
	topic   *pubsub.Topic[T]
	logger  *log.Logger
	metrics *metrics.Metrics

	observers *pubsub.Topic[T]

	mu      sync.RWMutex
	items   []T
	mounted bool
	unsub   func()
	cancel  context.CancelFunc
	done    chan struct{}
}

func NewViewer[T content.Record[T]](slot *repository.Slot[T], topic *pubsub.Topic[T], logger *log.Logger, m *metrics.Metrics) *Viewer[T] {
	if logger == nil {
		logger = log.Default()
	}
	return &Viewer[T]{
		slot:      slot,
		topic:     topic,
		logger:    logger,
		metrics:   m,
		observers: pubsub.NewTopic[T](slot.Domain().String()),
	}
}

func (v *Viewer[T]) Domain() content.Domain { return v.slot.Domain() }

// Mount loads the list (seeding the defaults if needed) and starts following
// both feeds until Unmount or ctx is done. Mounting twice is a no-op.
func (v *Viewer[T]) Mount(ctx context.Context) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.mounted {
		return nil
	}

	items, err := v.slot.Load(ctx)
	if err != nil {
		return err
	}
	v.items = items

	watchCtx, cancel := context.WithCancel(ctx)
	changes, err := v.slot.Store().Watch(watchCtx)
	if err != nil {
		cancel()
		return err
	}

	v.unsub = v.topic.Subscribe(func(items []T) { v.replace(items, "topic") })
	v.cancel = cancel
	v.done = make(chan struct{})
	v.mounted = true

	go v.follow(changes, v.done)
	return nil
}

// Unmount stops both feeds. It is safe to call more than once.
func (v *Viewer[T]) Unmount() {
	v.mu.Lock()
	if !v.mounted {
		v.mu.Unlock()
		return
	}
	v.mounted = false
	unsub, cancel, done := v.unsub, v.cancel, v.done
	v.unsub, v.cancel, v.done = nil, nil, nil
	v.mu.Unlock()

	unsub()
	cancel()
	<-done
}

func (v *Viewer[T]) Mounted() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.mounted
}

func (v *Viewer[T]) Items() []T {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return cloneList(v.items)
}

// Empty reports whether the viewer should render its empty-state message.
func (v *Viewer[T]) Empty() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.items) == 0
}

// Subscribe registers fn for every replacement of the displayed list.
func (v *Viewer[T]) Subscribe(fn func(items []T)) func() {
	return v.observers.Subscribe(fn)
}

func (v *Viewer[T]) follow(changes <-chan storage.Change, done chan struct{}) {
	defer close(done)
	for c := range changes {
		if c.Key != v.slot.Key() || !c.Present {
			continue
		}
		items, err := v.slot.Decode(c.Value)
		if err != nil {
			v.logger.Printf("[Viewer] ignoring unreadable change | domain=%s err=%v", v.slot.Domain(), err)
			continue
		}
		v.replace(items, "store")
	}
}

func (v *Viewer[T]) replace(items []T, source string) {
	v.mu.Lock()
	v.items = cloneList(items)
	v.mu.Unlock()

	v.metrics.ViewerUpdate(v.slot.Domain().String(), source)
	v.observers.Publish(items)
}

// Viewers groups the viewer of every domain.
type Viewers struct {
	WorkEntries  *Viewer[content.WorkEntry]
	Certificates *Viewer[content.Certificate]
	Projects     *Viewer[content.Project]
}

func NewViewers(slots repository.ContentSlots, bus *pubsub.Bus, logger *log.Logger, m *metrics.Metrics) *Viewers {
	return &Viewers{
		WorkEntries:  NewViewer(slots.WorkEntries, bus.WorkEntries, logger, m),
		Certificates: NewViewer(slots.Certificates, bus.Certificates, logger, m),
		Projects:     NewViewer(slots.Projects, bus.Projects, logger, m),
	}
}

// Mount mounts every viewer; on failure the ones already mounted are
// unmounted again.
func (vs *Viewers) Mount(ctx context.Context) error {
	if err := vs.WorkEntries.Mount(ctx); err != nil {
		return err
	}
	if err := vs.Certificates.Mount(ctx); err != nil {
		vs.WorkEntries.Unmount()
		return err
	}
	if err := vs.Projects.Mount(ctx); err != nil {
		vs.WorkEntries.Unmount()
		vs.Certificates.Unmount()
		return err
	}
	return nil
}

func (vs *Viewers) Unmount() {
	vs.WorkEntries.Unmount()
	vs.Certificates.Unmount()
	vs.Projects.Unmount()
}

// DomainView is the displayed state of one domain in transport form.
type DomainView struct {
	Domain content.Domain `json:"domain"`
	Items  any            `json:"items"`
	Empty  bool           `json:"empty"`
}

func (vs *Viewers) View(d content.Domain) (DomainView, error) {
	switch d {
	case content.DomainWorkEntries:
		return DomainView{Domain: d, Items: vs.WorkEntries.Items(), Empty: vs.WorkEntries.Empty()}, nil
	case content.DomainCertificates:
		return DomainView{Domain: d, Items: vs.Certificates.Items(), Empty: vs.Certificates.Empty()}, nil
	case content.DomainProjects:
		return DomainView{Domain: d, Items: vs.Projects.Items(), Empty: vs.Projects.Empty()}, nil
	default:
		_, err := content.ParseDomain(d.String())
		return DomainView{}, err
	}
}

func (vs *Viewers) ViewAll() []DomainView {
	out := make([]DomainView, 0, 3)
	for _, d := range content.AllDomains() {
		view, _ := vs.View(d)
		out = append(out, view)
	}
	return out
}
