package realtime

import (
	"context"

	"github.com/rs/zerolog/log"
)

type broadcast struct {
	storeID string
	payload []byte
}

// Hub tracks connected order panels, grouped by store. All map access
// happens on the Run goroutine; other goroutines talk to it via channels.
type Hub struct {
	rooms      map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	events     chan broadcast
}

func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		events:     make(chan broadcast, 64),
	}
}

// BroadcastToStore queues a payload for every panel watching the store.
// Drops the event when the hub is saturated rather than blocking the caller.
func (h *Hub) BroadcastToStore(storeID string, payload []byte) {
	select {
	case h.events <- broadcast{storeID: storeID, payload: payload}:
	default:
		log.Warn().Str("store_id", storeID).Msg("hub saturated, dropping order event")
	}
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			for _, room := range h.rooms {
				for client := range room {
					close(client.send)
				}
			}
			return

		case client := <-h.register:
			room := h.rooms[client.storeID]
			if room == nil {
				room = make(map[*Client]bool)
				h.rooms[client.storeID] = room
			}
			room[client] = true
			log.Debug().Str("store_id", client.storeID).Int("clients", len(room)).Msg("panel connected")

		case client := <-h.unregister:
			if room, ok := h.rooms[client.storeID]; ok {
				if _, ok := room[client]; ok {
					delete(room, client)
					close(client.send)
					if len(room) == 0 {
						delete(h.rooms, client.storeID)
					}
				}
			}

		case ev := <-h.events:
			for client := range h.rooms[ev.storeID] {
				select {
				case client.send <- ev.payload:
				default:
					// Slow consumer; drop it so one stuck panel cannot
					// back up the whole store.
					delete(h.rooms[ev.storeID], client)
					close(client.send)
				}
			}
		}
	}
}
