package ws

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"portfolio-sync/internal/domain/content"
	"portfolio-sync/internal/usecase"
)

const EventContentUpdated = "content_updated"

type ContentUpdatedEvent struct {
	Type      string `json:"type"`
	Domain    string `json:"domain"`
	Items     any    `json:"items"`
	Empty     bool   `json:"empty"`
	Timestamp string `json:"timestamp"`
}

func encodeContentUpdated(d content.Domain, items any, empty bool, now time.Time) ([]byte, error) {
	return json.Marshal(ContentUpdatedEvent{
		Type:      EventContentUpdated,
		Domain:    d.String(),
		Items:     items,
		Empty:     empty,
		Timestamp: now.UTC().Format(time.RFC3339),
	})
}

// Notifier pushes every change of the displayed lists to the hub.
type Notifier struct {
	hub     *Hub
	viewers *usecase.Viewers
	logger  *log.Logger
	now     func() time.Time

	mu     sync.Mutex
	unsubs []func()
}

func NewNotifier(hub *Hub, viewers *usecase.Viewers, logger *log.Logger) *Notifier {
	if logger == nil {
		logger = log.Default()
	}
	return &Notifier{hub: hub, viewers: viewers, logger: logger, now: time.Now}
}

func (n *Notifier) Start() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.unsubs) > 0 {
		return
	}
	n.unsubs = []func(){
		n.viewers.WorkEntries.Subscribe(func(items []content.WorkEntry) {
			n.publish(content.DomainWorkEntries, items, len(items) == 0)
		}),
		n.viewers.Certificates.Subscribe(func(items []content.Certificate) {
			n.publish(content.DomainCertificates, items, len(items) == 0)
		}),
		n.viewers.Projects.Subscribe(func(items []content.Project) {
			n.publish(content.DomainProjects, items, len(items) == 0)
		}),
	}
}

func (n *Notifier) Stop() {
	n.mu.Lock()
	unsubs := n.unsubs
	n.unsubs = nil
	n.mu.Unlock()
	for _, u := range unsubs {
		u()
	}
}

// Snapshot encodes the current state of every domain, one event each.
func (n *Notifier) Snapshot() [][]byte {
	views := n.viewers.ViewAll()
	out := make([][]byte, 0, len(views))
	for _, v := range views {
		b, err := encodeContentUpdated(v.Domain, v.Items, v.Empty, n.now())
		if err != nil {
			n.logger.Printf("WS snapshot encode error | domain=%s err=%v", v.Domain, err)
			continue
		}
		out = append(out, b)
	}
	return out
}

func (n *Notifier) publish(d content.Domain, items any, empty bool) {
	b, err := encodeContentUpdated(d, items, empty, n.now())
	if err != nil {
		n.logger.Printf("WS event encode error | domain=%s err=%v", d, err)
		return
	}
	n.hub.Broadcast(b)
}
