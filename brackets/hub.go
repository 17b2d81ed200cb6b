package brackets

import (
	"encoding/json"
	"log/slog"
	"strconv"
	"sync"
)

// Event update types pushed to subscribed draw viewers.
const (
	MessageMatchUpdated   = "MATCH_UPDATED"
	MessageBracketSeeded  = "BRACKET_SEEDED"
	MessageRoundCompleted = "ROUND_COMPLETED"
	MessageAnnouncement   = "ANNOUNCEMENT_POSTED"
)

type Message struct {
	Type    string      `json:"type"`
	EventID int         `json:"event_id"`
	Payload interface{} `json:"payload"`
}

// Hub fans event updates out to websocket clients grouped per event.
type Hub struct {
	Register   chan *Client
	Unregister chan *Client

	rooms  map[string]map[*Client]bool
	mu     sync.RWMutex
	logger *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		rooms:      make(map[string]map[*Client]bool),
		logger:     logger,
	}
}

func EventRoom(eventID int) string {
	return "event_" + strconv.Itoa(eventID)
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			if h.rooms[client.Room] == nil {
				h.rooms[client.Room] = make(map[*Client]bool)
			}
			h.rooms[client.Room][client] = true
			h.mu.Unlock()
			h.logger.Debug("ws client joined", slog.String("room", client.Room))

		case client := <-h.Unregister:
			h.mu.Lock()
			if clients, ok := h.rooms[client.Room]; ok {
				if clients[client] {
					client.closeSend()
					delete(clients, client)
					if len(clients) == 0 {
						delete(h.rooms, client.Room)
					}
				}
			}
			h.mu.Unlock()
			h.logger.Debug("ws client left", slog.String("room", client.Room))
		}
	}
}

// BroadcastEvent sends a typed message to every client watching the event.
// Slow clients are skipped rather than allowed to block the caller.
func (h *Hub) BroadcastEvent(eventID int, msgType string, payload interface{}) {
	data, err := json.Marshal(Message{Type: msgType, EventID: eventID, Payload: payload})
	if err != nil {
		h.logger.Error("ws marshal failed", slog.Any("error", err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.rooms[EventRoom(eventID)] {
		client.mu.Lock()
		if !client.closed {
			select {
			case client.Send <- data:
			default:
			}
		}
		client.mu.Unlock()
	}
}
