package backend

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestSearchReferencesNormalizesTags(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search-references" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		var payload map[string]any
		json.NewDecoder(r.Body).Decode(&payload)
		if payload["query"] != "velas" {
			t.Fatalf("unexpected query: %v", payload["query"])
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","results":[
			{"filename":"a.jpg","tags":"minimal, warm","industry":"velas"},
			{"filename":"b.jpg","tags":["bold","dark"],"mood":"dramático"}
		]}`))
	}))
	defer srv.Close()

	client := New(srv.URL)
	refs, err := client.SearchReferences(context.Background(), "velas", 3)
	if err != nil {
		t.Fatalf("SearchReferences err: %v", err)
	}
	if len(refs) != 2 {
		t.Fatalf("expected 2 references, got %d", len(refs))
	}
	if len(refs[0].Tags) != 2 || refs[0].Tags[1] != "warm" {
		t.Fatalf("comma-joined tags not normalized: %v", refs[0].Tags)
	}
	if len(refs[1].Tags) != 2 || refs[1].Tags[0] != "bold" {
		t.Fatalf("list tags not normalized: %v", refs[1].Tags)
	}
}

func TestGeneratePipelineSuccess(t *testing.T) {
	dir := t.TempDir()
	productPath := filepath.Join(dir, "product.jpg")
	if err := os.WriteFile(productPath, []byte("jpeg"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("expected multipart request: %v", err)
		}
		if r.FormValue("skipText") != "false" {
			t.Fatalf("unexpected skipText: %q", r.FormValue("skipText"))
		}
		if r.FormValue("referenceImage") != "ref.jpg" {
			t.Fatalf("unexpected referenceImage: %q", r.FormValue("referenceImage"))
		}
		var userText []string
		if err := json.Unmarshal([]byte(r.FormValue("userText")), &userText); err != nil || len(userText) != 2 {
			t.Fatalf("unexpected userText: %q", r.FormValue("userText"))
		}
		if _, _, err := r.FormFile("productImage"); err != nil {
			t.Fatalf("missing product image file: %v", err)
		}
		w.Write([]byte(`{"success":true,"finalImagePath":"/out/final.png"}`))
	}))
	defer srv.Close()

	client := New(srv.URL)
	path, err := client.GeneratePipeline(context.Background(), PipelineRequest{
		ProductImagePath: productPath,
		ReferenceImage:   "ref.jpg",
		TextPrompt:       "estilo minimal",
		UserText:         []string{"Frío", "Comprá ya"},
		Language:         "es",
		AspectRatio:      "4:5",
	})
	if err != nil {
		t.Fatalf("GeneratePipeline err: %v", err)
	}
	if path != "/out/final.png" {
		t.Fatalf("unexpected path: %q", path)
	}
}

func TestGeneratePipelineFetchesURLProductImage(t *testing.T) {
	imgSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write([]byte("remote-jpeg-bytes"))
	}))
	defer imgSrv.Close()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("expected multipart request: %v", err)
		}
		file, header, err := r.FormFile("productImage")
		if err != nil {
			t.Fatalf("missing product image file: %v", err)
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		if string(data) != "remote-jpeg-bytes" {
			t.Fatalf("product image bytes not fetched from URL: %q", data)
		}
		if header.Filename != "candle.jpg" {
			t.Fatalf("unexpected filename: %q", header.Filename)
		}
		w.Write([]byte(`{"success":true,"finalImagePath":"/out/final.png"}`))
	}))
	defer srv.Close()

	client := New(srv.URL)
	path, err := client.GeneratePipeline(context.Background(), PipelineRequest{
		ProductImagePath: imgSrv.URL + "/candle.jpg",
	})
	if err != nil {
		t.Fatalf("GeneratePipeline err: %v", err)
	}
	if path != "/out/final.png" {
		t.Fatalf("unexpected path: %q", path)
	}
}

func TestGenerateReelFetchesURLProductImage(t *testing.T) {
	imgSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("reel-jpeg-bytes"))
	}))
	defer imgSrv.Close()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("expected multipart request: %v", err)
		}
		file, _, err := r.FormFile("productImage")
		if err != nil {
			t.Fatalf("missing product image file: %v", err)
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		if string(data) != "reel-jpeg-bytes" {
			t.Fatalf("product image bytes not fetched from URL: %q", data)
		}
		w.WriteHeader(http.StatusAccepted)
		w.Write([]byte(`{"status":"accepted","postId":"post-7"}`))
	}))
	defer srv.Close()

	client := New(srv.URL)
	postID, err := client.GenerateReel(context.Background(), ReelRequest{
		Prompt:           "velas girando",
		UserID:           "u1",
		ProductImagePath: imgSrv.URL + "/final.jpg",
	})
	if err != nil {
		t.Fatalf("GenerateReel err: %v", err)
	}
	if postID != "post-7" {
		t.Fatalf("unexpected post id: %q", postID)
	}
}

func TestGeneratePipelineFailureResponse(t *testing.T) {
	dir := t.TempDir()
	productPath := filepath.Join(dir, "product.jpg")
	os.WriteFile(productPath, []byte("jpeg"), 0o644)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":false,"error":"composition failed"}`))
	}))
	defer srv.Close()

	client := New(srv.URL)
	if _, err := client.GeneratePipeline(context.Background(), PipelineRequest{ProductImagePath: productPath}); err == nil {
		t.Fatal("expected error for unsuccessful pipeline")
	}
}

func TestGenerateReelAcceptedWithoutImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("expected multipart even without image: %v", err)
		}
		if _, ok := r.MultipartForm.Value["productImage"]; !ok {
			t.Fatal("expected placeholder productImage field")
		}
		w.WriteHeader(http.StatusAccepted)
		w.Write([]byte(`{"status":"accepted","postId":"post-42"}`))
	}))
	defer srv.Close()

	client := New(srv.URL)
	postID, err := client.GenerateReel(context.Background(), ReelRequest{Prompt: "velas girando", UserID: "u1"})
	if err != nil {
		t.Fatalf("GenerateReel err: %v", err)
	}
	if postID != "post-42" {
		t.Fatalf("unexpected post id: %q", postID)
	}
}

func TestGenerateReelRejectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"queued"}`))
	}))
	defer srv.Close()

	client := New(srv.URL)
	if _, err := client.GenerateReel(context.Background(), ReelRequest{Prompt: "x"}); err == nil {
		t.Fatal("expected error for non-accepted status")
	}
}

func TestIncrementReferenceRanking(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]string
		json.NewDecoder(r.Body).Decode(&payload)
		got = payload["referenceFilename"]
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := New(srv.URL)
	if err := client.IncrementReferenceRanking(context.Background(), "ref.jpg"); err != nil {
		t.Fatalf("IncrementReferenceRanking err: %v", err)
	}
	if got != "ref.jpg" {
		t.Fatalf("unexpected filename: %q", got)
	}
}

func TestCallErrorCarriesHTTPStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	client := New(srv.URL)
	_, err := client.SearchReferences(context.Background(), "velas", 3)
	callErr, ok := err.(*CallError)
	if !ok {
		t.Fatalf("expected *CallError, got %T", err)
	}
	if callErr.Status != http.StatusBadGateway {
		t.Fatalf("unexpected status: %d", callErr.Status)
	}
}
