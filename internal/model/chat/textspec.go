package chat

// TextSpec is the structured overlay text captured from the user. At least
// one field is set; a session where the user declined text carries SkipText
// on the session instead of a TextSpec.
type TextSpec struct {
	Headline    string `json:"headline,omitempty"`
	Subheadline string `json:"subheadline,omitempty"`
	CTA         string `json:"cta,omitempty"`
}

// Ordered returns the non-empty fields in headline, subheadline, cta order,
// the shape the generation pipeline expects.
func (t TextSpec) Ordered() []string {
	out := make([]string, 0, 3)
	for _, v := range []string{t.Headline, t.Subheadline, t.CTA} {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// Empty reports whether no field was captured.
func (t TextSpec) Empty() bool {
	return t.Headline == "" && t.Subheadline == "" && t.CTA == ""
}
