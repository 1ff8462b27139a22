package agent

import (
	"fmt"
	"strings"

	"github.com/postty/showcase-agent/internal/model/chat"
)

// User-visible copy. The assistant speaks Spanish, matching its merchant
// audience.
const (
	msgResetGreeting = "¡Perfecto, empecemos de nuevo! 📸 Subí una foto de tu producto (o pasame una URL) y te ayudo a crear una imagen lista para Instagram."

	msgTextConfirmedSuffix = "Cuando quieras, decime \"generá la imagen\" y armo todo."

	msgNoTextConfirmed = "¡Listo! Voy a generar la imagen sin texto. Decime \"generá la imagen\" cuando quieras."

	msgPipelineNeedsProduct = "Todavía no tengo la foto de tu producto. 📸 Subila o pasame una URL y la uso para generar la imagen."

	msgPipelineFailed = "Uy, no pude generar la imagen esta vez. 😅 Probá de nuevo en un momento, o decime si querés cambiar el estilo o el texto."

	msgReelNeedsPrompt = "Me falta la descripción del video. Contame qué querés mostrar en el reel y lo genero."

	msgReelFailed = "No pude encolar el video ahora. 😅 Probá de nuevo en unos minutos."

	msgSearchFallback = "No encontré referencias para tu producto esta vez. Podemos seguir sin referencia: decime qué estilo te imaginás y genero la imagen igual."

	msgImageGenFailed = "No pude generar la imagen: el modelo no devolvió ninguna. Probá de nuevo con otra descripción."

	msgModelUnavailable = "Tuve un problema para responder ahora mismo. 😅 Probá de nuevo en un momento."

	defaultSearchQuery = "product photography instagram"
)

// Reset-intent phrases, matched against the lowercased raw message before any
// other processing for the turn.
var resetKeywords = []string{
	"otro producto",
	"nuevo producto",
	"empezar de nuevo",
	"empecemos de nuevo",
	"desde cero",
	"reiniciar",
	"start over",
	"reset",
}

func isResetIntent(message string) bool {
	normalized := strings.ToLower(message)
	for _, kw := range resetKeywords {
		if strings.Contains(normalized, kw) {
			return true
		}
	}
	return false
}

// buildPrompt assembles the composite model prompt: system instructions, the
// rendered recent history, and the fixed task instructions describing the
// trigger protocol.
func buildPrompt(systemInstructions, conversation string) string {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(systemInstructions))
	b.WriteString("\n\n---\n\nCONVERSATION SO FAR:\n")
	b.WriteString(conversation)
	b.WriteString("\n\n---\n\nINSTRUCTIONS:\n")
	b.WriteString(`Follow your workflow as defined in the system instructions above. Have a natural conversation with the user.

When you need to act, use exactly one of these formats:

[TRIGGER_SEARCH_REFERENCES]
QUERY: <short search query for visual references>
LIMIT: <how many references, default 3>

[TRIGGER_GENERATE_PIPELINE]
REFERENCE_IMAGE: <reference filename, only if the user has not picked one>

[TRIGGER_GENERATE_REEL]
PROMPT: <detailed single-line prompt for the video>
CAPTION: <short caption for the post>

[TRIGGER_GENERATE_NANOBANANA]
IMAGE_PROMPT: <detailed single-line prompt for image generation>

Otherwise, respond naturally to continue the conversation.`)
	return b.String()
}

// buildReferenceList formats search results as an enumerated list with up to
// five tags each, ending with the selection prompt.
func buildReferenceList(refs []chat.Reference) string {
	var b strings.Builder
	b.WriteString("Encontré estos estilos para tu producto:\n\n")
	for i, ref := range refs {
		fmt.Fprintf(&b, "%d. %s", i+1, ref.Description())
		if len(ref.Tags) > 0 {
			tags := ref.Tags
			if len(tags) > 5 {
				tags = tags[:5]
			}
			fmt.Fprintf(&b, " (%s)", strings.Join(tags, ", "))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n¿Cuál te gusta? Respondé 1, 2 o 3, o \"ninguna\" para seguir sin referencia.")
	return b.String()
}

// buildTextRequirementsPrompt derives the overlay-text question from the
// selected reference's typography hints. Each declared role becomes one
// localized bullet; without hints a generic three-bullet prompt is used.
func buildTextRequirementsPrompt(guidelines *chat.DesignGuidelines) string {
	var bullets []string
	if guidelines != nil && guidelines.Typography != nil {
		t := guidelines.Typography
		if t.Headline != nil {
			bullets = append(bullets, bulletFor("un titular principal", t.Headline.Purpose))
		}
		if t.Subheadline != nil {
			bullets = append(bullets, bulletFor("un subtítulo", t.Subheadline.Purpose))
		}
		if t.Badge != nil {
			bullets = append(bullets, bulletFor("un texto corto de insignia (ej. \"NUEVO\", \"-20%\")", t.Badge.Purpose))
		}
		if t.CTA != nil {
			bullets = append(bullets, bulletFor("una llamada a la acción (ej. \"Comprá ya\")", t.CTA.Purpose))
		}
	}

	if len(bullets) == 0 {
		bullets = []string{
			"• un titular principal",
			"• un subtítulo (opcional)",
			"• una llamada a la acción (ej. \"Comprá ya\")",
		}
	}

	var b strings.Builder
	b.WriteString("¡Buena elección! ✨ Este estilo lleva texto sobre la imagen. Decime:\n")
	b.WriteString(strings.Join(bullets, "\n"))
	b.WriteString("\n\nSepará cada texto con \" y \" o con saltos de línea. Si no querés texto, respondé \"sin texto\".")
	return b.String()
}

func bulletFor(role, purpose string) string {
	if purpose = strings.TrimSpace(purpose); purpose != "" {
		return fmt.Sprintf("• %s (%s)", role, purpose)
	}
	return "• " + role
}

// buildTextConfirmation summarizes the captured overlay text.
func buildTextConfirmation(spec *chat.TextSpec) string {
	var b strings.Builder
	b.WriteString("¡Anotado! Voy a usar:\n")
	if spec.Headline != "" {
		fmt.Fprintf(&b, "• Titular: %q\n", spec.Headline)
	}
	if spec.Subheadline != "" {
		fmt.Fprintf(&b, "• Subtítulo: %q\n", spec.Subheadline)
	}
	if spec.CTA != "" {
		fmt.Fprintf(&b, "• Llamada a la acción: %q\n", spec.CTA)
	}
	b.WriteString("\n")
	b.WriteString(msgTextConfirmedSuffix)
	return b.String()
}
