package chat

import (
	"encoding/json"
	"strings"
)

// Reference is a candidate visual style returned by the backend search.
type Reference struct {
	Filename         string            `json:"filename"`
	Tags             TagList           `json:"tags,omitempty"`
	Industry         string            `json:"industry,omitempty"`
	Aesthetic        string            `json:"aesthetic,omitempty"`
	Mood             string            `json:"mood,omitempty"`
	DesignGuidelines *DesignGuidelines `json:"design_guidelines,omitempty"`
	RankingScore     float64           `json:"ranking_score,omitempty"`
}

// Description derives a short human-readable label from the style fields,
// falling back to the filename when nothing descriptive is available.
func (r Reference) Description() string {
	parts := make([]string, 0, 3)
	for _, s := range []string{r.Industry, r.Aesthetic, r.Mood} {
		if v := strings.TrimSpace(s); v != "" {
			parts = append(parts, v)
		}
	}
	if len(parts) == 0 {
		return r.Filename
	}
	return strings.Join(parts, ", ")
}

// TagList normalizes tags that arrive either as a JSON array or as a single
// comma-joined string.
type TagList []string

func (t *TagList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*t = normalizeTags(list)
		return nil
	}

	var joined string
	if err := json.Unmarshal(data, &joined); err != nil {
		return err
	}
	*t = normalizeTags(strings.Split(joined, ","))
	return nil
}

func normalizeTags(raw []string) []string {
	tags := make([]string, 0, len(raw))
	for _, tag := range raw {
		if v := strings.TrimSpace(tag); v != "" {
			tags = append(tags, v)
		}
	}
	return tags
}

// DesignGuidelines carries typography and layout hints attached to a
// reference, copied onto the session when the user picks that reference.
type DesignGuidelines struct {
	Typography *Typography `json:"typography,omitempty"`
	CTAButton  *CTAButton  `json:"cta_button,omitempty"`
}

// Typography declares which overlay text roles the reference layout expects.
type Typography struct {
	Headline    *TextRole `json:"headline,omitempty"`
	Subheadline *TextRole `json:"subheadline,omitempty"`
	Badge       *TextRole `json:"badge,omitempty"`
	CTA         *TextRole `json:"cta,omitempty"`
}

// TextRole describes one overlay text slot.
type TextRole struct {
	Purpose string `json:"purpose,omitempty"`
	Style   string `json:"style,omitempty"`
}

// CTAButton describes the call-to-action button layout, when present.
type CTAButton struct {
	Shape    string `json:"shape,omitempty"`
	Position string `json:"position,omitempty"`
}
