package agent

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/postty/showcase-agent/internal/backend"
	"github.com/postty/showcase-agent/internal/model/chat"
	"github.com/postty/showcase-agent/internal/trigger"
)

// handleSearch queries the backend for visual references and offers up to
// three of them. The raw list rides on the history turn so a later bare
// integer can select from it.
func (s *Service) handleSearch(ctx context.Context, sess *chat.Session, inv trigger.Invocation) Result {
	query := inv.Field("QUERY", defaultSearchQuery)
	limit := inv.IntField("LIMIT", 3)
	if limit < 1 {
		limit = 3
	}

	refs, err := s.backend.SearchReferences(ctx, query, limit)
	if err != nil {
		log.Printf("[agent] session=%s reference search failed: %v", sess.ID, err)
		return s.reply(sess, textResult(msgSearchFallback))
	}
	if len(refs) == 0 {
		return s.reply(sess, textResult(msgSearchFallback))
	}

	text := buildReferenceList(refs)
	if inv.LeadIn != "" {
		text = inv.LeadIn + "\n\n" + text
	}
	return s.reply(sess, Result{Kind: KindReferenceOptions, Text: text, References: refs})
}

// handlePipeline submits the composed generation job: product photo,
// reference style, overlay text, typography hints and product analysis.
func (s *Service) handlePipeline(ctx context.Context, sess *chat.Session, inv trigger.Invocation) Result {
	if sess.ProductImagePath == "" {
		return s.reply(sess, textResult(msgPipelineNeedsProduct))
	}

	// The session's selection is authoritative; the trigger block may only
	// name a reference when none was picked, so a hallucinated filename
	// cannot override the user's choice.
	referenceImage := inv.Field("REFERENCE_IMAGE", "")
	if sess.SelectedReference != nil {
		referenceImage = sess.SelectedReference.Filename
	}

	req := backend.PipelineRequest{
		ProductImagePath: sess.ProductImagePath,
		ReferenceImage:   referenceImage,
		TextPrompt:       inv.Field("TEXT_PROMPT", ""),
		SkipText:         sess.SkipText,
		Language:         s.cfg.Language,
		AspectRatio:      s.cfg.AspectRatio,
		ProductAnalysis:  sess.ProductAnalysis,
	}
	if sess.TextSpec != nil {
		req.UserText = sess.TextSpec.Ordered()
	}
	if sess.DesignGuidelines != nil {
		req.Typography = sess.DesignGuidelines.Typography
	}

	finalPath, err := s.backend.GeneratePipeline(ctx, req)
	if err != nil {
		log.Printf("[agent] session=%s pipeline generation failed: %v", sess.ID, err)
		return s.reply(sess, textResult(msgPipelineFailed))
	}

	if sess.SelectedReference != nil {
		s.incrementRanking(sess.ID, sess.SelectedReference.Filename)
	}

	leadIn := inv.LeadIn
	if leadIn == "" {
		leadIn = "✨ ¡Acá está tu imagen lista para Instagram!"
	}
	return s.reply(sess, Result{Kind: KindImage, File: finalPath, Text: leadIn})
}

// incrementRanking notifies the backend that the chosen reference produced a
// generation. Fire-and-forget: failures are logged only.
func (s *Service) incrementRanking(sessionID, filename string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.backend.IncrementReferenceRanking(ctx, filename); err != nil {
			log.Printf("[agent] session=%s ranking increment failed for %s: %v", sessionID, filename, err)
		}
	}()
}

// handleReel submits the asynchronous video job.
func (s *Service) handleReel(ctx context.Context, sess *chat.Session, inv trigger.Invocation) Result {
	prompt := inv.Field("PROMPT", "")
	if prompt == "" {
		return s.reply(sess, textResult(msgReelNeedsPrompt))
	}

	productImage := inv.Field("PRODUCT_IMAGE", sess.ProductImagePath)

	postID, err := s.backend.GenerateReel(ctx, backend.ReelRequest{
		Prompt:           prompt,
		Caption:          inv.Field("CAPTION", ""),
		UserID:           s.userID,
		ProductImagePath: productImage,
	})
	if err != nil {
		log.Printf("[agent] session=%s reel submission failed: %v", sess.ID, err)
		return s.reply(sess, textResult(msgReelFailed))
	}

	text := fmt.Sprintf("🎬 ¡Tu reel ya está en camino! Lo vas a ver publicado en unos minutos (id: %s).", postID)
	if inv.LeadIn != "" {
		text = inv.LeadIn + "\n\n" + text
	}
	return s.reply(sess, textResult(text))
}

// handleDirectImage is the legacy single-shot image generation path: no
// backend composition, just the image model and a timestamped file on disk.
func (s *Service) handleDirectImage(ctx context.Context, sess *chat.Session, inv trigger.Invocation, userMessage string) Result {
	prompt := inv.Field("IMAGE_PROMPT", inv.Field("PROMPT", ""))
	if prompt == "" {
		prompt = "Professional product photography: " + userMessage
	}

	data, err := s.gen.GenerateImage(ctx, prompt)
	if err != nil {
		log.Printf("[agent] session=%s direct image generation failed: %v", sess.ID, err)
		return s.reply(sess, textResult(msgImageGenFailed))
	}

	filename := s.clock().Format("20060102_150405") + ".png"
	path := filepath.Join(s.cfg.OutputDir, filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		log.Printf("[agent] session=%s write generated image: %v", sess.ID, err)
		return s.reply(sess, textResult(msgImageGenFailed))
	}

	leadIn := inv.LeadIn
	if leadIn == "" {
		leadIn = fmt.Sprintf("✨ Imagen generada y guardada en %s", filename)
	}
	return s.reply(sess, Result{Kind: KindImage, File: path, Text: leadIn})
}
