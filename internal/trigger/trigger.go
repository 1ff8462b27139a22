// Package trigger interprets model output for embedded tool-call markers.
// The model signals side-effecting actions with literal bracketed tokens
// followed by a small KEY: value block; everything before the first marker is
// conversational lead-in surfaced to the user.
package trigger

import (
	"strconv"
	"strings"
)

// Kind identifies which workflow action the model requested.
type Kind string

const (
	KindNone             Kind = "none"
	KindSearchReferences Kind = "search_references"
	KindGeneratePipeline Kind = "generate_pipeline"
	KindGenerateReel     Kind = "generate_reel"
	KindGenerateImage    Kind = "generate_image"
)

// Markers in dispatch priority order. The first marker present in the output
// wins regardless of position; the legacy CALL_TOOL form maps to the direct
// image kind.
var markers = []struct {
	token string
	kind  Kind
}{
	{"[TRIGGER_SEARCH_REFERENCES]", KindSearchReferences},
	{"[TRIGGER_GENERATE_PIPELINE]", KindGeneratePipeline},
	{"[TRIGGER_GENERATE_REEL]", KindGenerateReel},
	{"[TRIGGER_GENERATE_NANOBANANA]", KindGenerateImage},
	{"CALL_TOOL: GENERATE_IMAGE", KindGenerateImage},
}

// Invocation is the parsed form of one model reply.
type Invocation struct {
	Kind   Kind
	LeadIn string
	Fields map[string]string
}

// Parse scans model output for the highest-priority marker and its KEY: value
// block. Without a marker the whole text is a plain conversational reply
// (KindNone, LeadIn carries the full text).
func Parse(output string) Invocation {
	trimmed := strings.TrimSpace(output)

	for _, m := range markers {
		idx := strings.Index(trimmed, m.token)
		if idx < 0 {
			continue
		}
		return Invocation{
			Kind:   m.kind,
			LeadIn: strings.TrimSpace(trimmed[:idx]),
			Fields: parseFields(trimmed[idx+len(m.token):]),
		}
	}

	return Invocation{Kind: KindNone, LeadIn: trimmed, Fields: map[string]string{}}
}

// Field returns the value for key, or def when absent or empty.
func (inv Invocation) Field(key, def string) string {
	if v, ok := inv.Fields[key]; ok && v != "" {
		return v
	}
	return def
}

// IntField parses the value for key as an integer, falling back to def on
// absence or parse failure.
func (inv Invocation) IntField(key string, def int) int {
	v, ok := inv.Fields[key]
	if !ok {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return n
}

// parseFields reads KEY: value pairs from the lines following a marker. Key
// names are case-sensitive uppercase identifiers; the first occurrence of a
// key wins and unknown keys are simply carried along for callers to ignore.
func parseFields(block string) map[string]string {
	fields := map[string]string{}
	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimSpace(line)
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if !isFieldKey(key) {
			continue
		}
		if _, exists := fields[key]; exists {
			continue
		}
		fields[key] = strings.TrimSpace(value)
	}
	return fields
}

func isFieldKey(key string) bool {
	if key == "" {
		return false
	}
	for _, r := range key {
		if (r < 'A' || r > 'Z') && r != '_' && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}
