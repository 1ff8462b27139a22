// Package backend wraps the composition backend's HTTP endpoints: reference
// search, pipeline image generation, reel submission and ranking increments.
// Calls are synchronous with fixed per-operation timeouts and no retries; a
// failed call surfaces as a *CallError for the agent to translate into a
// graceful message.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/postty/showcase-agent/internal/imageref"
	"github.com/postty/showcase-agent/internal/model/chat"
)

const (
	searchTimeout   = 15 * time.Second
	pipelineTimeout = 60 * time.Second
	reelTimeout     = 30 * time.Second
	rankingTimeout  = 5 * time.Second
)

// CallError describes a failed backend call.
type CallError struct {
	Op     string
	Status int
	Err    error
}

func (e *CallError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("backend %s: status %d: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("backend %s: %v", e.Op, e.Err)
}

func (e *CallError) Unwrap() error { return e.Err }

// Client is a thin typed wrapper over the backend HTTP API.
type Client struct {
	baseURL string
	http    *http.Client
}

// New builds a client for the backend at baseURL.
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
	}
}

// SearchReferences queries stored style references.
func (c *Client) SearchReferences(ctx context.Context, query string, limit int) ([]chat.Reference, error) {
	ctx, cancel := context.WithTimeout(ctx, searchTimeout)
	defer cancel()

	payload, _ := json.Marshal(map[string]any{"query": query, "limit": limit})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search-references", bytes.NewReader(payload))
	if err != nil {
		return nil, &CallError{Op: "search-references", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	var resp struct {
		Status  string           `json:"status"`
		Results []chat.Reference `json:"results"`
	}
	if status, err := c.doJSON(req, &resp); err != nil {
		return nil, &CallError{Op: "search-references", Status: status, Err: err}
	}
	return resp.Results, nil
}

// PipelineRequest carries everything the composition pipeline needs.
type PipelineRequest struct {
	ProductImagePath string
	ReferenceImage   string
	TextPrompt       string
	UserText         []string
	SkipText         bool
	Language         string
	AspectRatio      string
	Typography       *chat.Typography
	ProductAnalysis  *chat.ProductAnalysis
}

// GeneratePipeline submits a multipart pipeline job and returns the final
// image path.
func (c *Client) GeneratePipeline(ctx context.Context, preq PipelineRequest) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, pipelineTimeout)
	defer cancel()

	var body bytes.Buffer
	form := multipart.NewWriter(&body)

	if err := attachProductImage(ctx, form, preq.ProductImagePath); err != nil {
		return "", &CallError{Op: "pipeline", Err: err}
	}

	form.WriteField("textPrompt", preq.TextPrompt)
	form.WriteField("skipText", strconv.FormatBool(preq.SkipText))
	form.WriteField("language", preq.Language)
	form.WriteField("aspectRatio", preq.AspectRatio)
	if preq.ReferenceImage != "" {
		form.WriteField("referenceImage", preq.ReferenceImage)
	}
	if len(preq.UserText) > 0 {
		userText, _ := json.Marshal(preq.UserText)
		form.WriteField("userText", string(userText))
	}
	if preq.Typography != nil {
		typography, _ := json.Marshal(preq.Typography)
		form.WriteField("typographyStyle", string(typography))
	}
	if preq.ProductAnalysis != nil {
		analysis, _ := json.Marshal(preq.ProductAnalysis)
		form.WriteField("productAnalysis", string(analysis))
	}
	if err := form.Close(); err != nil {
		return "", &CallError{Op: "pipeline", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/pipeline", &body)
	if err != nil {
		return "", &CallError{Op: "pipeline", Err: err}
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	var resp struct {
		Success        bool   `json:"success"`
		FinalImagePath string `json:"finalImagePath"`
		Error          string `json:"error"`
	}
	if status, err := c.doJSON(req, &resp); err != nil {
		return "", &CallError{Op: "pipeline", Status: status, Err: err}
	}
	if !resp.Success || resp.FinalImagePath == "" {
		return "", &CallError{Op: "pipeline", Err: fmt.Errorf("pipeline did not succeed: %s", resp.Error)}
	}
	return resp.FinalImagePath, nil
}

// ReelRequest describes an asynchronous video generation job.
type ReelRequest struct {
	Prompt           string
	Caption          string
	UserID           string
	ProductImagePath string
}

// GenerateReel submits a reel job. The endpoint always receives multipart
// form data; when no product image is attached an empty placeholder field
// keeps the encoding multipart. A backend "accepted" status is success and
// yields the post identifier.
func (c *Client) GenerateReel(ctx context.Context, rreq ReelRequest) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, reelTimeout)
	defer cancel()

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	form.WriteField("prompt", rreq.Prompt)
	form.WriteField("caption", rreq.Caption)
	form.WriteField("userId", rreq.UserID)

	if rreq.ProductImagePath != "" {
		if err := attachProductImage(ctx, form, rreq.ProductImagePath); err != nil {
			return "", &CallError{Op: "video/generate", Err: err}
		}
	} else {
		form.WriteField("productImage", "")
	}
	if err := form.Close(); err != nil {
		return "", &CallError{Op: "video/generate", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/video/generate", &body)
	if err != nil {
		return "", &CallError{Op: "video/generate", Err: err}
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	var resp struct {
		Status string `json:"status"`
		PostID string `json:"postId"`
	}
	if status, err := c.doJSON(req, &resp); err != nil {
		return "", &CallError{Op: "video/generate", Status: status, Err: err}
	}
	if resp.Status != "accepted" {
		return "", &CallError{Op: "video/generate", Err: fmt.Errorf("unexpected status %q", resp.Status)}
	}
	return resp.PostID, nil
}

// IncrementReferenceRanking bumps the ranking score of a chosen reference.
// Fire-and-forget: callers log failures and move on.
func (c *Client) IncrementReferenceRanking(ctx context.Context, referenceFilename string) error {
	ctx, cancel := context.WithTimeout(ctx, rankingTimeout)
	defer cancel()

	payload, _ := json.Marshal(map[string]string{"referenceFilename": referenceFilename})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/increment-reference-ranking", bytes.NewReader(payload))
	if err != nil {
		return &CallError{Op: "increment-reference-ranking", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	if status, err := c.doJSON(req, &struct{}{}); err != nil {
		return &CallError{Op: "increment-reference-ranking", Status: status, Err: err}
	}
	return nil
}

// attachProductImage writes the product photo into the form. The stored
// reference may be a URL (the photo was uploaded by link) or a local path;
// URLs are fetched first so the backend always receives raw bytes.
func attachProductImage(ctx context.Context, form *multipart.Writer, source string) error {
	if imageref.IsURL(source) {
		img, err := imageref.Load(ctx, source)
		if err != nil {
			return fmt.Errorf("fetch product image: %w", err)
		}
		part, err := form.CreateFormFile("productImage", urlFilename(source))
		if err != nil {
			return err
		}
		_, err = part.Write(img.Data)
		return err
	}

	file, err := os.Open(source)
	if err != nil {
		return fmt.Errorf("open product image: %w", err)
	}
	defer file.Close()

	part, err := form.CreateFormFile("productImage", filepath.Base(source))
	if err != nil {
		return err
	}
	_, err = io.Copy(part, file)
	return err
}

func urlFilename(source string) string {
	if u, err := url.Parse(source); err == nil {
		if name := path.Base(u.Path); name != "" && name != "." && name != "/" {
			return name
		}
	}
	return "product.jpg"
}

// doJSON executes the request and decodes a JSON body, returning the HTTP
// status alongside any error.
func (c *Client) doJSON(req *http.Request, out any) (int, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// 202 Accepted responses still land in this success range.
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return resp.StatusCode, fmt.Errorf("unexpected status: %s", strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("decode response: %w", err)
	}
	return resp.StatusCode, nil
}
