package chat

import "time"

// Roles for a conversation turn.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is a single conversation entry. ResetMarker turns partition the
// history: backward searches for context never cross them.
type Turn struct {
	Role        string      `json:"role"`
	Text        string      `json:"text"`
	ImageRef    string      `json:"imageRef,omitempty"`
	ResetMarker bool        `json:"resetMarker,omitempty"`
	References  []Reference `json:"references,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
}
