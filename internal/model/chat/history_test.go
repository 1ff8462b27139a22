package chat

import (
	"strings"
	"testing"
	"time"
)

func TestLastReferencesStopsAtResetMarker(t *testing.T) {
	var h History
	h.Append(Turn{Role: RoleAssistant, Text: "opciones", References: []Reference{{Filename: "old.jpg"}}})
	h.Append(Turn{Role: RoleAssistant, Text: "--", ResetMarker: true})
	h.Append(Turn{Role: RoleUser, Text: "hola"})

	if refs := h.LastReferences(); refs != nil {
		t.Fatalf("expected nil references past reset marker, got %v", refs)
	}

	h.Append(Turn{Role: RoleAssistant, Text: "opciones", References: []Reference{{Filename: "new.jpg"}}})
	refs := h.LastReferences()
	if len(refs) != 1 || refs[0].Filename != "new.jpg" {
		t.Fatalf("unexpected references: %v", refs)
	}
}

func TestRenderLimitsAndFormatsTurns(t *testing.T) {
	var h History
	for i := 0; i < 20; i++ {
		h.Append(Turn{Role: RoleUser, Text: "mensaje"})
	}
	h.Append(Turn{Role: RoleUser, Text: "Quiero vender mis velas", ImageRef: "https://shop.com/candle.jpg"})

	rendered := h.Render(PromptTurnLimit)
	lines := strings.Split(rendered, "\n")
	if len(lines) != PromptTurnLimit {
		t.Fatalf("expected %d lines, got %d", PromptTurnLimit, len(lines))
	}
	last := lines[len(lines)-1]
	want := "USER: Quiero vender mis velas [Image: https://shop.com/candle.jpg]"
	if last != want {
		t.Fatalf("unexpected last line: %q", last)
	}
}

func TestSessionResetClearsWorkflowFields(t *testing.T) {
	s := &Session{
		ID:                "s1",
		SelectedReference: &Reference{Filename: "ref.jpg"},
		ProductImagePath:  "/tmp/product.jpg",
		TextSpec:          &TextSpec{Headline: "Hola"},
		AwaitingTextInput: true,
		DesignGuidelines:  &DesignGuidelines{},
		ProductAnalysis:   &ProductAnalysis{Category: CategoryBold},
	}
	s.History.Append(Turn{Role: RoleUser, Text: "anterior"})

	s.Reset(time.Now())

	if s.SelectedReference != nil || s.ProductImagePath != "" || s.TextSpec != nil ||
		s.AwaitingTextInput || s.DesignGuidelines != nil || s.ProductAnalysis != nil {
		t.Fatalf("reset left workflow state behind: %+v", s)
	}
	if s.History.Len() != 2 {
		t.Fatalf("expected history preserved plus marker, got %d turns", s.History.Len())
	}
	if !s.History.Turns[1].ResetMarker {
		t.Fatal("expected trailing reset marker turn")
	}
}

func TestTagListNormalizesJoinedString(t *testing.T) {
	var ref Reference
	if err := ref.Tags.UnmarshalJSON([]byte(`"minimal, warm , cozy"`)); err != nil {
		t.Fatalf("unmarshal err: %v", err)
	}
	if len(ref.Tags) != 3 || ref.Tags[1] != "warm" {
		t.Fatalf("unexpected tags: %v", ref.Tags)
	}
}

func TestReferenceDescriptionFallsBackToFilename(t *testing.T) {
	ref := Reference{Filename: "style_04.jpg"}
	if got := ref.Description(); got != "style_04.jpg" {
		t.Fatalf("unexpected description: %q", got)
	}

	ref = Reference{Filename: "x.jpg", Industry: "velas", Mood: "cálido"}
	if got := ref.Description(); got != "velas, cálido" {
		t.Fatalf("unexpected description: %q", got)
	}
}
