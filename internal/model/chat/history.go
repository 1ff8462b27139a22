package chat

import (
	"strings"
)

// PromptTurnLimit bounds how many recent turns are rendered into the model
// prompt. Older turns stay stored but never reach the model.
const PromptTurnLimit = 12

// History is the ordered conversation log owned by a single session.
type History struct {
	Turns []Turn `json:"turns"`
}

// Append adds a turn at the end of the log.
func (h *History) Append(t Turn) {
	h.Turns = append(h.Turns, t)
}

// Len returns the number of stored turns.
func (h *History) Len() int {
	return len(h.Turns)
}

// LastReferences walks backward through the current segment (stopping at the
// most recent reset marker) and returns the reference list attached to the
// newest reference-bearing turn, or nil when none exists.
func (h *History) LastReferences() []Reference {
	for i := len(h.Turns) - 1; i >= 0; i-- {
		if h.Turns[i].ResetMarker {
			return nil
		}
		if len(h.Turns[i].References) > 0 {
			return h.Turns[i].References
		}
	}
	return nil
}

// Render formats the most recent turns as "ROLE: text [Image: ref]" lines for
// inclusion in the model prompt. Reset markers are rendered like any other
// turn so the model sees that the flow restarted.
func (h *History) Render(limit int) string {
	if limit < 1 {
		limit = PromptTurnLimit
	}
	start := len(h.Turns) - limit
	if start < 0 {
		start = 0
	}

	lines := make([]string, 0, len(h.Turns)-start)
	for _, t := range h.Turns[start:] {
		var b strings.Builder
		b.WriteString(strings.ToUpper(t.Role))
		b.WriteString(": ")
		b.WriteString(t.Text)
		if t.ImageRef != "" {
			b.WriteString(" [Image: ")
			b.WriteString(t.ImageRef)
			b.WriteString("]")
		}
		lines = append(lines, b.String())
	}
	return strings.Join(lines, "\n")
}
