package agent

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strings"

	"github.com/postty/showcase-agent/internal/imageref"
	"github.com/postty/showcase-agent/internal/model/chat"
)

const productAnalysisPrompt = `Analyze this product photo for social media composition. Reply with ONLY a JSON object, no prose:
{"colors": ["#RRGGBB", up to 3 dominant colors], "category": one of "luxury"|"casual"|"tech"|"organic"|"minimal"|"bold"|"neutral", "composition": {"product_position": one of "center"|"left"|"right"|"top"|"bottom", "available_zones": subset of ["top","bottom","left","right"]}}`

// analyzeProduct derives dominant colors, category and composition from the
// stored product photo via the text model. Any failure returns nil; the
// pipeline works without the analysis.
func (s *Service) analyzeProduct(ctx context.Context, sess *chat.Session) *chat.ProductAnalysis {
	if sess.ProductImagePath == "" {
		return nil
	}

	img, err := imageref.Load(ctx, sess.ProductImagePath)
	if err != nil {
		log.Printf("[agent] session=%s product analysis skipped, image load failed: %v", sess.ID, err)
		return nil
	}

	output, err := s.gen.GenerateText(ctx, productAnalysisPrompt, img)
	if err != nil {
		log.Printf("[agent] session=%s product analysis failed: %v", sess.ID, err)
		return nil
	}

	analysis, err := parseProductAnalysis(output)
	if err != nil {
		log.Printf("[agent] session=%s product analysis parse failed: %v", sess.ID, err)
		return nil
	}
	return analysis
}

// parseProductAnalysis extracts the JSON object from the model reply,
// tolerating surrounding prose or code fences, and normalizes the fields.
func parseProductAnalysis(output string) (*chat.ProductAnalysis, error) {
	trimmed := strings.TrimSpace(output)
	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start == -1 || end <= start {
		return nil, errNoJSONObject
	}

	var analysis chat.ProductAnalysis
	if err := json.Unmarshal([]byte(trimmed[start:end+1]), &analysis); err != nil {
		return nil, err
	}

	if !chat.KnownCategory(analysis.Category) {
		analysis.Category = chat.CategoryNeutral
	}
	if len(analysis.Colors) > 3 {
		analysis.Colors = analysis.Colors[:3]
	}
	return &analysis, nil
}

var errNoJSONObject = errors.New("no json object in model output")
