// Package ai adapts the chat-model endpoints into the two capabilities the
// workflow needs: prompted text generation with an optional attached image,
// and direct image generation.
package ai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/postty/showcase-agent/internal/config"
	"github.com/postty/showcase-agent/internal/imageref"
)

// ErrNoImage is returned when the image model reply carried no image data.
var ErrNoImage = errors.New("no image bytes in model response")

// Generator is the capability surface consumed by the workflow. Tests swap
// in a fake.
type Generator interface {
	GenerateText(ctx context.Context, prompt string, img *imageref.Image) (string, error)
	GenerateImage(ctx context.Context, prompt string) ([]byte, error)
}

// Service implements Generator over two chat models: one for reasoning and
// tool routing, one for image synthesis.
type Service struct {
	textModel  model.ChatModel
	imageModel model.ChatModel
}

// NewService builds both models from configuration.
func NewService(ctx context.Context, cfg config.AIConfig) (*Service, error) {
	textModel, err := cfg.NewChatModel(ctx, cfg.TextModel)
	if err != nil {
		return nil, fmt.Errorf("create text model: %w", err)
	}

	imageModel := textModel
	if cfg.ImageModel != cfg.TextModel {
		imageModel, err = cfg.NewChatModel(ctx, cfg.ImageModel)
		if err != nil {
			return nil, fmt.Errorf("create image model: %w", err)
		}
	}

	return &Service{textModel: textModel, imageModel: imageModel}, nil
}

// GenerateText sends the composite prompt, attaching the image as an inline
// data part when present.
func (s *Service) GenerateText(ctx context.Context, prompt string, img *imageref.Image) (string, error) {
	msg := &schema.Message{Role: schema.User, Content: prompt}
	if img != nil {
		msg = &schema.Message{
			Role: schema.User,
			MultiContent: []schema.ChatMessagePart{
				{Type: schema.ChatMessagePartTypeText, Text: prompt},
				{Type: schema.ChatMessagePartTypeImageURL, ImageURL: &schema.ChatMessageImageURL{
					URL:      dataURL(img),
					MIMEType: img.MIME,
				}},
			},
		}
	}

	resp, err := s.textModel.Generate(ctx, []*schema.Message{msg})
	if err != nil {
		return "", fmt.Errorf("text generation: %w", err)
	}

	log.Printf("[ai] text model replied, length=%d", len(resp.Content))
	return resp.Content, nil
}

// GenerateImage asks the image model for a picture and extracts the inline
// image bytes from the reply parts.
func (s *Service) GenerateImage(ctx context.Context, prompt string) ([]byte, error) {
	resp, err := s.imageModel.Generate(ctx, []*schema.Message{schema.UserMessage(prompt)})
	if err != nil {
		return nil, fmt.Errorf("image generation: %w", err)
	}

	data := extractImageBytes(resp)
	if data == nil {
		return nil, ErrNoImage
	}
	return data, nil
}

func extractImageBytes(msg *schema.Message) []byte {
	if msg == nil {
		return nil
	}
	for _, part := range msg.MultiContent {
		if part.Type != schema.ChatMessagePartTypeImageURL || part.ImageURL == nil {
			continue
		}
		if data, ok := decodeDataURL(part.ImageURL.URL); ok {
			return data
		}
	}
	return nil
}

func dataURL(img *imageref.Image) string {
	return "data:" + img.MIME + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
}

func decodeDataURL(url string) ([]byte, bool) {
	if !strings.HasPrefix(url, "data:") {
		return nil, false
	}
	_, encoded, ok := strings.Cut(url, ",")
	if !ok {
		return nil, false
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, false
	}
	return data, true
}
