package agent

import "github.com/postty/showcase-agent/internal/model/chat"

// ResultKind discriminates the agent reply shape.
type ResultKind string

const (
	KindText             ResultKind = "text"
	KindImage            ResultKind = "image"
	KindReferenceOptions ResultKind = "reference_options"
)

// Result is the outcome of one processed turn.
type Result struct {
	Kind       ResultKind       `json:"type"`
	Text       string           `json:"text,omitempty"`
	File       string           `json:"file,omitempty"`
	References []chat.Reference `json:"references,omitempty"`
}

func textResult(text string) Result {
	return Result{Kind: KindText, Text: text}
}
