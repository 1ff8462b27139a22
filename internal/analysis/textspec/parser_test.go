package textspec

import "testing"

func TestParseSingleFragment(t *testing.T) {
	spec := Parse("Comprá ahora")
	if spec.Headline != "Comprá ahora" || spec.Subheadline != "" || spec.CTA != "" {
		t.Fatalf("unexpected spec: %+v", spec)
	}
}

func TestParseThreeQuotedFragments(t *testing.T) {
	spec := Parse(`"Frío" y "Rico" y "Comprá ya"`)
	if spec.Headline != "Frío" {
		t.Fatalf("unexpected headline: %q", spec.Headline)
	}
	if spec.Subheadline != "Rico" {
		t.Fatalf("unexpected subheadline: %q", spec.Subheadline)
	}
	if spec.CTA != "Comprá ya" {
		t.Fatalf("unexpected cta: %q", spec.CTA)
	}
}

func TestParseTwoFragmentsWithCTAKeyword(t *testing.T) {
	spec := Parse("Velas artesanales y Visitá la tienda")
	if spec.Headline != "Velas artesanales" {
		t.Fatalf("unexpected headline: %q", spec.Headline)
	}
	if spec.CTA != "Visitá la tienda" {
		t.Fatalf("expected second fragment as cta, got %+v", spec)
	}
	if spec.Subheadline != "" {
		t.Fatalf("subheadline should be empty, got %q", spec.Subheadline)
	}
}

func TestParseTwoFragmentsWithoutCTAKeyword(t *testing.T) {
	spec := Parse("Velas artesanales y Hechas a mano")
	if spec.Subheadline != "Hechas a mano" {
		t.Fatalf("expected second fragment as subheadline, got %+v", spec)
	}
	if spec.CTA != "" {
		t.Fatalf("cta should be empty, got %q", spec.CTA)
	}
}

func TestParseNewlineSeparatedFragments(t *testing.T) {
	spec := Parse("Frío\nRico\nComprá ya\nExtra descartado")
	if spec.Headline != "Frío" || spec.Subheadline != "Rico" || spec.CTA != "Comprá ya" {
		t.Fatalf("unexpected spec: %+v", spec)
	}
}

func TestParseEverythingTrimsAway(t *testing.T) {
	spec := Parse(`"a" y "b"`)
	if spec.Headline != `"a" y "b"` {
		t.Fatalf("expected whole message as headline, got %+v", spec)
	}
}

func TestIsNoText(t *testing.T) {
	for _, msg := range []string{"sin texto", "Sin texto por favor", "no text", "imagen sola", "ninguno", "nada", "skip"} {
		if !IsNoText(msg) {
			t.Fatalf("expected %q to decline text", msg)
		}
	}
	for _, msg := range []string{"Comprá ahora", "", "nada mal este producto"} {
		if IsNoText(msg) {
			t.Fatalf("did not expect %q to decline text", msg)
		}
	}
}
