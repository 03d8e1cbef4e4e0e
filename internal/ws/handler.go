package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gorilla/websocket"

	"portfolio-sync/internal/usecase"
)

const (
	MessageFocus      = "focus"
	MessageVisibility = "visibility"
)

// InboundMessage is what a viewer page reports about itself.
type InboundMessage struct {
	Type   string `json:"type"`
	Hidden bool   `json:"hidden"`
}

type Handler struct {
	hub      *Hub
	notifier *Notifier
	trigger  *usecase.SyncTrigger
	logger   *log.Logger
	ctx      context.Context
}

// NewHandler wires the websocket endpoint. ctx bounds the refreshes that
// inbound messages trigger.
func NewHandler(ctx context.Context, hub *Hub, notifier *Notifier, trigger *usecase.SyncTrigger, logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.Default()
	}
	return &Handler{hub: hub, notifier: notifier, trigger: trigger, logger: logger, ctx: ctx}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func (h *Handler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Get("/ws", h.HandleContentWS)
}

func (h *Handler) HandleContentWS(c fiber.Ctx) error {
	if h == nil || h.hub == nil {
		return fiber.ErrServiceUnavailable
	}

	fiberHandler := adaptor.HTTPHandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			h.logger.Printf("WS upgrade error | error=%v", err)
			return
		}

		client := NewClient(h.hub, conn, h.HandleMessage)
		if h.notifier != nil {
			for _, msg := range h.notifier.Snapshot() {
				client.Enqueue(msg)
			}
		}
		h.hub.Register(client)
		go client.WritePump()
		go client.ReadPump()
	})

	return fiberHandler(c)
}

// HandleMessage turns focus and visibility reports into sync refreshes.
// Unknown or unreadable messages are ignored.
func (h *Handler) HandleMessage(message []byte) {
	if h.trigger == nil {
		return
	}
	var in InboundMessage
	if err := json.Unmarshal(message, &in); err != nil {
		h.logger.Printf("WS inbound ignored | error=%v", err)
		return
	}

	switch in.Type {
	case MessageFocus:
		h.trigger.OnFocus(h.ctx)
	case MessageVisibility:
		h.trigger.OnVisibilityChange(h.ctx, in.Hidden)
	}
}
