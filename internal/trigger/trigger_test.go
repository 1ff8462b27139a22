package trigger

import "testing"

func TestParsePlainReply(t *testing.T) {
	inv := Parse("¡Hola! Contame sobre tu producto.")
	if inv.Kind != KindNone {
		t.Fatalf("unexpected kind: %s", inv.Kind)
	}
	if inv.LeadIn != "¡Hola! Contame sobre tu producto." {
		t.Fatalf("unexpected lead-in: %q", inv.LeadIn)
	}
}

func TestParseSearchWithFields(t *testing.T) {
	out := "Voy a buscar estilos.\n[TRIGGER_SEARCH_REFERENCES]\nQUERY: velas minimalistas\nLIMIT: 5\n"
	inv := Parse(out)
	if inv.Kind != KindSearchReferences {
		t.Fatalf("unexpected kind: %s", inv.Kind)
	}
	if inv.LeadIn != "Voy a buscar estilos." {
		t.Fatalf("unexpected lead-in: %q", inv.LeadIn)
	}
	if got := inv.Field("QUERY", ""); got != "velas minimalistas" {
		t.Fatalf("unexpected QUERY: %q", got)
	}
	if got := inv.IntField("LIMIT", 3); got != 5 {
		t.Fatalf("unexpected LIMIT: %d", got)
	}
}

func TestParsePriorityOrderOverPosition(t *testing.T) {
	out := "[TRIGGER_GENERATE_REEL]\nPROMPT: algo\n[TRIGGER_SEARCH_REFERENCES]\nQUERY: velas"
	inv := Parse(out)
	if inv.Kind != KindSearchReferences {
		t.Fatalf("expected search to win by priority, got %s", inv.Kind)
	}
}

func TestParseFirstFieldOccurrenceWins(t *testing.T) {
	out := "[TRIGGER_GENERATE_PIPELINE]\nREFERENCE_IMAGE: a.jpg\nREFERENCE_IMAGE: b.jpg"
	inv := Parse(out)
	if got := inv.Field("REFERENCE_IMAGE", ""); got != "a.jpg" {
		t.Fatalf("unexpected value: %q", got)
	}
}

func TestParseLegacyCallTool(t *testing.T) {
	out := "Listo.\nCALL_TOOL: GENERATE_IMAGE\nIMAGE_PROMPT: candle on marble"
	inv := Parse(out)
	if inv.Kind != KindGenerateImage {
		t.Fatalf("unexpected kind: %s", inv.Kind)
	}
	if got := inv.Field("IMAGE_PROMPT", ""); got != "candle on marble" {
		t.Fatalf("unexpected prompt: %q", got)
	}
}

func TestIntFieldParseFailureFallsBack(t *testing.T) {
	out := "[TRIGGER_SEARCH_REFERENCES]\nLIMIT: muchas"
	inv := Parse(out)
	if got := inv.IntField("LIMIT", 3); got != 3 {
		t.Fatalf("expected fallback 3, got %d", got)
	}
}

func TestParseIgnoresNonKeyLines(t *testing.T) {
	out := "[TRIGGER_GENERATE_REEL]\nPROMPT: producto girando\nEsto es solo prosa: no es campo"
	inv := Parse(out)
	if _, ok := inv.Fields["Esto es solo prosa"]; ok {
		t.Fatal("prose line should not become a field")
	}
	if got := inv.Field("PROMPT", ""); got != "producto girando" {
		t.Fatalf("unexpected PROMPT: %q", got)
	}
}
