package chat

import "time"

// Session holds per-user conversational and workflow state, keyed by an
// opaque identifier. A session receives at most one turn at a time; only the
// registry that owns it needs locking.
type Session struct {
	ID                string            `json:"id"`
	History           History           `json:"history"`
	SelectedReference *Reference        `json:"selectedReference,omitempty"`
	ProductImagePath  string            `json:"productImagePath,omitempty"`
	TextSpec          *TextSpec         `json:"textSpec,omitempty"`
	SkipText          bool              `json:"skipText,omitempty"`
	AwaitingTextInput bool              `json:"awaitingTextInput,omitempty"`
	DesignGuidelines  *DesignGuidelines `json:"designGuidelines,omitempty"`
	ProductAnalysis   *ProductAnalysis  `json:"productAnalysis,omitempty"`
	CreatedAt         time.Time         `json:"createdAt"`
	LastUsedAt        time.Time         `json:"lastUsedAt"`
}

// Reset clears every workflow field except identity and history, and appends
// a reset marker so backward history searches stop at this point.
func (s *Session) Reset(now time.Time) {
	s.SelectedReference = nil
	s.ProductImagePath = ""
	s.TextSpec = nil
	s.SkipText = false
	s.AwaitingTextInput = false
	s.DesignGuidelines = nil
	s.ProductAnalysis = nil
	s.History.Append(Turn{
		Role:        RoleAssistant,
		Text:        "-- conversación reiniciada --",
		ResetMarker: true,
		CreatedAt:   now,
	})
}

// Touch refreshes the idle-eviction timestamp.
func (s *Session) Touch(now time.Time) {
	s.LastUsedAt = now
}
