// Package preview runs live preview rooms: every viewer of a lesson page shares
// one page cache, and each diagram an author edits is re-rendered and pushed to
// everyone on the page.
package preview

import (
	"encoding/json"

	"github.com/inamate/diagrams/internal/diagram"
)

type Message struct {
	Type     string          `json:"type"`
	PageID   string          `json:"pageId,omitempty"`
	ClientID string          `json:"clientId,omitempty"`
	UserID   string          `json:"userId,omitempty"`
	Seq      int64           `json:"seq,omitempty"`
	Payload  json.RawMessage `json:"payload,omitempty"`
}

const (
	TypeWelcome = "welcome"
	TypeError   = "error"

	TypePresenceUpdate = "presence.update"
	TypePresenceState  = "presence.state"
	TypePresenceJoin   = "presence.join"
	TypePresenceLeave  = "presence.leave"

	TypePageState      = "page.state"
	TypeDiagramRender  = "diagram.render"
	TypeDiagramResult  = "diagram.result"
	TypeDiagramRemove  = "diagram.remove"
	TypeDiagramRemoved = "diagram.removed"
)

type WelcomePayload struct {
	ClientID string `json:"clientId"`
	UserID   string `json:"userId"`
}

type ErrorPayload struct {
	Message string `json:"message"`
	Slot    string `json:"slot,omitempty"`
}

// PresencePayload tells the room which diagram slot a viewer is looking at.
type PresencePayload struct {
	Focus       string `json:"focus,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
	Anonymous   bool   `json:"anonymous,omitempty"`
}

type PresenceStatePayload struct {
	Presences map[string]*PresencePayload `json:"presences"`
}

type PresenceJoinPayload struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
	Anonymous   bool   `json:"anonymous,omitempty"`
}

type PresenceLeavePayload struct {
	UserID string `json:"userId"`
}

// RenderPayload asks the room to draw spec into a slot. Slots are the places on
// a page that hold one diagram each.
type RenderPayload struct {
	Slot string       `json:"slot"`
	Spec diagram.Spec `json:"spec"`
}

// ResultPayload is the drawn form of a slot. Failed specs carry the error and
// the placeholder SVG.
type ResultPayload struct {
	Slot    string               `json:"slot"`
	Tool    diagram.Tool         `json:"toolName,omitempty"`
	Key     string               `json:"key,omitempty"`
	SVG     string               `json:"svg"`
	Width   float64              `json:"width"`
	Height  float64              `json:"height"`
	Cached  bool                 `json:"cached,omitempty"`
	Error   *diagram.RenderError `json:"error,omitempty"`
	Updated int64                `json:"seq"`
}

type RemovePayload struct {
	Slot string `json:"slot"`
}

type PageStatePayload struct {
	Slots []ResultPayload `json:"slots"`
}

func newMessage(typ string, payload any) *Message {
	data, _ := json.Marshal(payload)
	return &Message{Type: typ, Payload: data}
}
