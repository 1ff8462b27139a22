// Package textspec turns a free-text user reply into structured overlay-text
// roles. It is a best-effort heuristic over fragment position and a fixed
// call-to-action keyword set, not a grammar; ambiguous input (more than three
// fragments, unclear CTA phrasing) resolves by position.
package textspec

import (
	"regexp"
	"strings"

	"github.com/postty/showcase-agent/internal/model/chat"
)

// Fragments split on the Spanish conjunction " y " (either case) or on
// newlines.
var splitPattern = regexp.MustCompile(`\s+[yY]\s+|\r?\n`)

var ctaKeywords = []string{
	"buy", "shop", "link in bio", "visit", "discover", "order",
	"compra", "comprá", "compre", "tienda", "visita", "visitá",
	"descubre", "descubrí", "pedí", "pedi", "link en bio", "aprovecha",
}

// Phrases and words that mean the user wants no overlay text at all.
var (
	noTextPhrases = []string{"sin texto", "no text", "imagen sola", "no quiero texto", "sin letras"}
	noTextWords   = []string{"ninguno", "ninguna", "nada", "skip", "no"}
)

// Parse splits the raw reply into fragments and assigns them to overlay
// roles by count: three or more map positionally to headline, subheadline and
// cta; two map to headline plus cta-or-subheadline depending on keywords; one
// becomes the headline. When everything trims away, the whole original
// message becomes the headline.
func Parse(raw string) chat.TextSpec {
	fragments := splitFragments(raw)

	switch {
	case len(fragments) >= 3:
		return chat.TextSpec{Headline: fragments[0], Subheadline: fragments[1], CTA: fragments[2]}
	case len(fragments) == 2:
		spec := chat.TextSpec{Headline: fragments[0]}
		if containsCTAKeyword(fragments[1]) {
			spec.CTA = fragments[1]
		} else {
			spec.Subheadline = fragments[1]
		}
		return spec
	case len(fragments) == 1:
		return chat.TextSpec{Headline: fragments[0]}
	default:
		return chat.TextSpec{Headline: strings.TrimSpace(raw)}
	}
}

// IsNoText reports whether the reply declines overlay text entirely.
func IsNoText(raw string) bool {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	if normalized == "" {
		return false
	}
	for _, phrase := range noTextPhrases {
		if strings.Contains(normalized, phrase) {
			return true
		}
	}
	for _, word := range noTextWords {
		if normalized == word {
			return true
		}
	}
	return false
}

func splitFragments(raw string) []string {
	parts := splitPattern.Split(raw, -1)
	fragments := make([]string, 0, len(parts))
	for _, part := range parts {
		cleaned := strings.TrimSpace(part)
		cleaned = strings.Trim(cleaned, `"'“”‘’,`)
		cleaned = strings.TrimSpace(cleaned)
		if len([]rune(cleaned)) <= 1 {
			continue
		}
		fragments = append(fragments, cleaned)
	}
	return fragments
}

func containsCTAKeyword(fragment string) bool {
	normalized := strings.ToLower(fragment)
	for _, keyword := range ctaKeywords {
		if strings.Contains(normalized, keyword) {
			return true
		}
	}
	return false
}
