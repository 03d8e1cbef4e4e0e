package ws

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"testing"
	"time"

	"portfolio-sync/internal/domain/content"
	"portfolio-sync/internal/pubsub"
	"portfolio-sync/internal/repository"
	"portfolio-sync/internal/storage"
	"portfolio-sync/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *log.Logger { return log.New(io.Discard, "", 0) }

func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub(quietLogger(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return hub
}

func next(t *testing.T, c *Client) []byte {
	t.Helper()
	select {
	case msg, ok := <-c.send:
		require.True(t, ok, "send channel closed")
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("no message")
		return nil
	}
}

func TestHub_BroadcastReachesRegisteredClients(t *testing.T) {
	hub := startHub(t)
	a := NewClient(hub, nil, nil)
	b := NewClient(hub, nil, nil)
	hub.Register(a)
	hub.Register(b)
	require.Eventually(t, func() bool { return hub.ClientCount() == 2 }, time.Second, 5*time.Millisecond)

	hub.Broadcast([]byte("hello"))
	assert.Equal(t, "hello", string(next(t, a)))
	assert.Equal(t, "hello", string(next(t, b)))

	hub.Unregister(a)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)
	_, ok := <-a.send
	assert.False(t, ok)
}

func TestHub_NilSafe(t *testing.T) {
	var hub *Hub
	assert.NotPanics(t, func() {
		hub.Broadcast([]byte("x"))
		hub.Register(nil)
	})
	assert.Zero(t, hub.ClientCount())
}

type fixture struct {
	mem      *storage.Memory
	bus      *pubsub.Bus
	viewers  *usecase.Viewers
	trigger  *usecase.SyncTrigger
	notifier *Notifier
	hub      *Hub
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mem := storage.NewMemory()
	slots := repository.NewContentSlots(mem.Session(), quietLogger(), nil)
	bus := pubsub.NewBus()
	viewers := usecase.NewViewers(slots, bus, quietLogger(), nil)
	require.NoError(t, viewers.Mount(context.Background()))
	t.Cleanup(viewers.Unmount)

	hub := startHub(t)
	n := NewNotifier(hub, viewers, quietLogger())
	n.Start()
	t.Cleanup(n.Stop)
	return &fixture{
		mem:      mem,
		bus:      bus,
		viewers:  viewers,
		trigger:  usecase.NewSyncTrigger(slots, bus, quietLogger(), nil),
		notifier: n,
		hub:      hub,
	}
}

func TestNotifier_SnapshotCoversEveryDomain(t *testing.T) {
	f := newFixture(t)

	snap := f.notifier.Snapshot()
	require.Len(t, snap, 3)

	var evt ContentUpdatedEvent
	require.NoError(t, json.Unmarshal(snap[2], &evt))
	assert.Equal(t, EventContentUpdated, evt.Type)
	assert.Equal(t, "projects", evt.Domain)
	assert.Len(t, evt.Items, 6)
	assert.False(t, evt.Empty)
}

func TestNotifier_BroadcastsViewerChanges(t *testing.T) {
	f := newFixture(t)
	client := NewClient(f.hub, nil, nil)
	f.hub.Register(client)
	require.Eventually(t, func() bool { return f.hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	f.bus.Certificates.Publish([]content.Certificate{})

	var evt ContentUpdatedEvent
	require.NoError(t, json.Unmarshal(next(t, client), &evt))
	assert.Equal(t, "certificates", evt.Domain)
	assert.True(t, evt.Empty)
}

func TestHandler_FocusMessageRefreshesViewers(t *testing.T) {
	f := newFixture(t)
	h := NewHandler(context.Background(), f.hub, f.notifier, f.trigger, quietLogger())

	// another writer replaces projects; the refresh must pick it up even if the
	// change feed has not delivered it yet
	other := repository.NewProjectSlot(f.mem.Session(), quietLogger(), nil)
	require.NoError(t, other.Save(context.Background(), []content.Project{{ID: "x", Title: "New"}}))

	h.HandleMessage([]byte(`{"type":"focus"}`))
	items := f.viewers.Projects.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "x", items[0].ID)
}

func TestHandler_IgnoresHiddenAndGarbage(t *testing.T) {
	f := newFixture(t)
	h := NewHandler(context.Background(), f.hub, f.notifier, f.trigger, quietLogger())

	calls := 0
	f.bus.Projects.Subscribe(func([]content.Project) { calls++ })

	h.HandleMessage([]byte(`{"type":"visibility","hidden":true}`))
	h.HandleMessage([]byte(`not json`))
	h.HandleMessage([]byte(`{"type":"resize"}`))
	assert.Zero(t, calls)

	h.HandleMessage([]byte(`{"type":"visibility","hidden":false}`))
	assert.Equal(t, 1, calls)
}
