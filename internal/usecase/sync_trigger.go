package usecase

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"portfolio-sync/internal/domain/content"
	"portfolio-sync/internal/metrics"
	"portfolio-sync/internal/pubsub"
	"portfolio-sync/internal/repository"
)

const (
	SyncRebroadcast = "rebroadcast"
	SyncAbsent      = "absent"
	SyncFailed      = "failed"
)

type DomainSync struct {
	Domain content.Domain `json:"domain"`
	Result string         `json:"result"`
	Items  int            `json:"items"`
	Error  string         `json:"error,omitempty"`

	err error
}

type SyncReport struct {
	Trigger string       `json:"trigger"`
	At      time.Time    `json:"at"`
	Domains []DomainSync `json:"domains"`
}

// Err joins the per-domain failures of the refresh.
func (r SyncReport) Err() error {
	var errs []error
	for _, d := range r.Domains {
		if d.err != nil {
			errs = append(errs, d.err)
		}
	}
	return errors.Join(errs...)
}

// SyncTrigger re-reads every domain slot and republishes what it finds, so
// viewers that missed a change notification converge on the stored state. It
// keeps no state beyond whether it was mounted.
type SyncTrigger struct {
	slots   repository.ContentSlots
	bus     *pubsub.Bus
	logger  *log.Logger
	metrics *metrics.Metrics
	now     func() time.Time

	once sync.Once
}

func NewSyncTrigger(slots repository.ContentSlots, bus *pubsub.Bus, logger *log.Logger, m *metrics.Metrics) *SyncTrigger {
	if logger == nil {
		logger = log.Default()
	}
	return &SyncTrigger{slots: slots, bus: bus, logger: logger, metrics: m, now: time.Now}
}

// Mount refreshes on first call only. ran is false for later calls.
func (t *SyncTrigger) Mount(ctx context.Context) (report SyncReport, ran bool) {
	t.once.Do(func() {
		report = t.refresh(ctx, "mount")
		ran = true
	})
	return report, ran
}

func (t *SyncTrigger) OnFocus(ctx context.Context) SyncReport {
	return t.refresh(ctx, "focus")
}

// OnVisibilityChange refreshes when the page becomes visible again.
func (t *SyncTrigger) OnVisibilityChange(ctx context.Context, hidden bool) (SyncReport, bool) {
	if hidden {
		return SyncReport{}, false
	}
	return t.refresh(ctx, "visibility"), true
}

func (t *SyncTrigger) Refresh(ctx context.Context) SyncReport {
	return t.refresh(ctx, "manual")
}

// Run refreshes every interval until ctx is done. A non-positive interval
// disables it.
func (t *SyncTrigger) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.refresh(ctx, "interval")
		}
	}
}

func (t *SyncTrigger) refresh(ctx context.Context, trigger string) SyncReport {
	report := SyncReport{
		Trigger: trigger,
		At:      t.now().UTC(),
		Domains: []DomainSync{
			rebroadcast(ctx, t.slots.WorkEntries, t.bus.WorkEntries),
			rebroadcast(ctx, t.slots.Certificates, t.bus.Certificates),
			rebroadcast(ctx, t.slots.Projects, t.bus.Projects),
		},
	}
	for _, d := range report.Domains {
		t.metrics.Rebroadcast(d.Domain.String(), d.Result)
		if d.err != nil {
			t.logger.Printf("[Sync] refresh failed | trigger=%s domain=%s err=%v", trigger, d.Domain, d.err)
		}
	}
	return report
}

func rebroadcast[T content.Record[T]](ctx context.Context, slot *repository.Slot[T], topic *pubsub.Topic[T]) DomainSync {
	res := DomainSync{Domain: slot.Domain()}
	items, present, err := slot.Read(ctx)
	switch {
	case err != nil:
		res.Result = SyncFailed
		res.Error = err.Error()
		res.err = err
	case !present:
		res.Result = SyncAbsent
	default:
		res.Result = SyncRebroadcast
		res.Items = len(items)
		topic.Publish(items)
	}
	return res
}
