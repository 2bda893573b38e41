package preview

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/inamate/diagrams/internal/diagram"
	"github.com/inamate/diagrams/internal/engine"
	"github.com/inamate/diagrams/internal/render"
)

const (
	maxSlots   = 200
	maxSlotLen = 64
)

var (
	ErrNoSlot       = errors.New("slot is required")
	ErrSlotTooLong  = fmt.Errorf("slot longer than %d bytes", maxSlotLen)
	ErrTooManySlots = fmt.Errorf("page already holds %d diagrams", maxSlots)
)

// Room is one open lesson page. Its engine, and so its cache, lives exactly as
// long as the room.
type Room struct {
	pageID   string
	clients  map[string]*Client // clientID -> client, guarded by Hub.mu
	presence *PresenceManager
	engine   *engine.Engine

	mu    sync.Mutex
	slots map[string]ResultPayload
	seq   int64
}

func NewRoom(pageID string, eng *engine.Engine) *Room {
	return &Room{
		pageID:   pageID,
		clients:  make(map[string]*Client),
		presence: NewPresenceManager(),
		engine:   eng,
		slots:    make(map[string]ResultPayload),
	}
}

func checkSlot(slot string) error {
	switch {
	case slot == "":
		return ErrNoSlot
	case len(slot) > maxSlotLen:
		return ErrSlotTooLong
	}
	return nil
}

// Render draws spec into slot and records the result. A spec that fails to draw
// still fills the slot, with the placeholder and the error.
func (r *Room) Render(slot string, spec diagram.Spec) (ResultPayload, error) {
	if err := checkSlot(slot); err != nil {
		return ResultPayload{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.slots[slot]; !ok && len(r.slots) >= maxSlots {
		return ResultPayload{}, ErrTooManySlots
	}

	before := r.engine.Cache().Stats().Hits
	res, err := r.engine.Render(spec)
	out := ResultPayload{Slot: slot, Tool: spec.Tool}
	if err != nil {
		out.Error = diagram.AsRenderError(spec.Tool, err)
		res = engine.Placeholder(out.Error)
	} else {
		out.Key = res.Key
		out.Cached = r.engine.Cache().Stats().Hits > before
	}
	out.SVG = string(render.SVG(res))
	out.Width, out.Height = res.Width, res.Height

	r.seq++
	out.Updated = r.seq
	r.slots[slot] = out
	return out, nil
}

// Remove empties a slot. It reports whether the slot was filled.
func (r *Room) Remove(slot string) (int64, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.slots[slot]; !ok {
		return r.seq, false
	}
	delete(r.slots, slot)
	r.seq++
	return r.seq, true
}

// State lists every filled slot in slot order.
func (r *Room) State() PageStatePayload {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := PageStatePayload{Slots: make([]ResultPayload, 0, len(r.slots))}
	for _, s := range r.slots {
		out.Slots = append(out.Slots, s)
	}
	sort.Slice(out.Slots, func(i, j int) bool { return out.Slots[i].Slot < out.Slots[j].Slot })
	return out
}
