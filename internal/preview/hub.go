package preview

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/inamate/diagrams/internal/engine"
)

// Hub owns the rooms. Each room takes its engine from pages and tears it down
// when the last viewer leaves.
type Hub struct {
	mu         sync.RWMutex
	rooms      map[string]*Room // pageID -> room
	pages      *engine.Pages
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	stopOnce   sync.Once
}

func NewHub(pages *engine.Pages) *Hub {
	return &Hub{
		rooms:      make(map[string]*Room),
		pages:      pages,
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case <-h.done:
			return
		}
	}
}

// Stop ends Run, disconnects every client and clears every page cache.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() {
		close(h.done)

		h.mu.Lock()
		for pageID, room := range h.rooms {
			for _, c := range room.clients {
				c.closeSend()
			}
			delete(h.rooms, pageID)
			h.pages.Teardown(pageID)
		}
		h.mu.Unlock()
		slog.Info("preview hub stopped")
	})
}

func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		client.closeSend()
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Room returns the open room for a page.
func (h *Hub) Room(pageID string) (*Room, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	r, ok := h.rooms[pageID]
	return r, ok
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	room, ok := h.rooms[client.PageID]
	if !ok {
		room = NewRoom(client.PageID, h.pages.For(client.PageID))
		h.rooms[client.PageID] = room
	}
	room.clients[client.ClientID] = client
	h.mu.Unlock()

	room.presence.Update(client.UserID, &PresencePayload{DisplayName: client.DisplayName, Anonymous: client.Anonymous})

	client.Send(newMessage(TypeWelcome, WelcomePayload{ClientID: client.ClientID, UserID: client.UserID}))
	client.Send(newMessage(TypePageState, room.State()))
	if stateMsg := room.presence.StateMessage(); stateMsg != nil {
		client.Send(stateMsg)
	}

	join := newMessage(TypePresenceJoin, PresenceJoinPayload{
		UserID:      client.UserID,
		DisplayName: client.DisplayName,
		Anonymous:   client.Anonymous,
	})
	join.UserID = client.UserID
	h.broadcastToRoom(client.PageID, join, client.ClientID)

	slog.Info("viewer joined", "user", client.UserID, "page", client.PageID)
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	room, ok := h.rooms[client.PageID]
	if !ok || room.clients[client.ClientID] != client {
		h.mu.Unlock()
		return
	}

	delete(room.clients, client.ClientID)
	// the same author may have the page open twice
	stillHere := false
	for _, c := range room.clients {
		if c.UserID == client.UserID {
			stillHere = true
			break
		}
	}
	if !stillHere {
		room.presence.Remove(client.UserID)
	}

	empty := len(room.clients) == 0
	if empty {
		delete(h.rooms, client.PageID)
		h.pages.Teardown(client.PageID)
	}
	client.closeSend()
	h.mu.Unlock()

	if empty {
		slog.Info("page closed", "page", client.PageID)
		return
	}
	if !stillHere {
		leave := newMessage(TypePresenceLeave, PresenceLeavePayload{UserID: client.UserID})
		leave.UserID = client.UserID
		h.broadcastToRoom(client.PageID, leave, "")
	}
	slog.Info("viewer left", "user", client.UserID, "page", client.PageID)
}

func (h *Hub) handleMessage(sender *Client, msg *Message) {
	switch msg.Type {
	case TypeDiagramRender:
		h.handleRender(sender, msg)
	case TypeDiagramRemove:
		h.handleRemove(sender, msg)
	case TypePresenceUpdate:
		h.handlePresenceUpdate(sender, msg)
	default:
		slog.Warn("unknown message type", "type", msg.Type, "user", sender.UserID)
		sender.Send(newMessage(TypeError, ErrorPayload{Message: "unknown message type " + msg.Type}))
	}
}

func (h *Hub) handleRender(sender *Client, msg *Message) {
	room, ok := h.Room(sender.PageID)
	if !ok {
		return
	}
	var p RenderPayload
	if err := json.Unmarshal(msg.Payload, &p); err != nil {
		sender.Send(newMessage(TypeError, ErrorPayload{Message: "invalid render payload"}))
		return
	}

	result, err := room.Render(p.Slot, p.Spec)
	if err != nil {
		sender.Send(newMessage(TypeError, ErrorPayload{Message: err.Error(), Slot: p.Slot}))
		return
	}
	if result.Error != nil {
		slog.Debug("preview render failed", "page", sender.PageID, "slot", p.Slot, "kind", result.Error.Kind)
	}

	out := newMessage(TypeDiagramResult, result)
	out.UserID = sender.UserID
	out.Seq = result.Updated
	h.broadcastToRoom(sender.PageID, out, "")
}

func (h *Hub) handleRemove(sender *Client, msg *Message) {
	room, ok := h.Room(sender.PageID)
	if !ok {
		return
	}
	var p RemovePayload
	if err := json.Unmarshal(msg.Payload, &p); err != nil || p.Slot == "" {
		sender.Send(newMessage(TypeError, ErrorPayload{Message: "invalid remove payload"}))
		return
	}
	seq, removed := room.Remove(p.Slot)
	if !removed {
		return
	}
	out := newMessage(TypeDiagramRemoved, p)
	out.UserID = sender.UserID
	out.Seq = seq
	h.broadcastToRoom(sender.PageID, out, "")
}

func (h *Hub) handlePresenceUpdate(sender *Client, msg *Message) {
	var presence PresencePayload
	if err := json.Unmarshal(msg.Payload, &presence); err != nil {
		slog.Warn("invalid presence payload", "error", err)
		return
	}
	presence.DisplayName = sender.DisplayName
	presence.Anonymous = sender.Anonymous

	room, ok := h.Room(sender.PageID)
	if !ok {
		return
	}
	room.presence.Update(sender.UserID, &presence)

	out := newMessage(TypePresenceUpdate, presence)
	out.UserID = sender.UserID
	h.broadcastToRoom(sender.PageID, out, sender.ClientID)
}

func (h *Hub) broadcastToRoom(pageID string, msg *Message, excludeClientID string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	room, ok := h.rooms[pageID]
	if !ok {
		return
	}
	for _, c := range room.clients {
		if c.ClientID != excludeClientID {
			c.Send(msg)
		}
	}
}
