package agenthttp

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/postty/showcase-agent/internal/service/agent"
)

type stubAgent struct {
	lastSessionID string
	lastMessage   string
	result        agent.Result
	resets        []string
}

func (s *stubAgent) Chat(_ context.Context, sessionID, message string) (agent.Result, error) {
	s.lastSessionID = sessionID
	s.lastMessage = message
	return s.result, nil
}

func (s *stubAgent) ResetSession(_ context.Context, sessionID string) {
	s.resets = append(s.resets, sessionID)
}

func (s *stubAgent) AgentID() string { return "test-agent" }

func setupRouter(stub *stubAgent) *chi.Mux {
	r := chi.NewRouter()
	New(stub).RegisterRoutes(r)
	return r
}

func TestChatReturnsResultEnvelope(t *testing.T) {
	stub := &stubAgent{result: agent.Result{Kind: agent.KindText, Text: "¡Hola!"}}
	r := setupRouter(stub)

	payload, _ := json.Marshal(map[string]string{"message": "Hola", "session_id": "tab-1"})
	req := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var body struct {
		Status    string       `json:"status"`
		SessionID string       `json:"session_id"`
		Result    agent.Result `json:"result"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Status != "success" || body.SessionID != "tab-1" {
		t.Fatalf("unexpected envelope: %+v", body)
	}
	if body.Result.Text != "¡Hola!" {
		t.Fatalf("unexpected result: %+v", body.Result)
	}
	if stub.lastSessionID != "tab-1" {
		t.Fatalf("session id not forwarded: %q", stub.lastSessionID)
	}
}

func TestChatGeneratesSessionIDWhenMissing(t *testing.T) {
	stub := &stubAgent{result: agent.Result{Kind: agent.KindText, Text: "ok"}}
	r := setupRouter(stub)

	payload, _ := json.Marshal(map[string]string{"message": "Hola"})
	req := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewReader(payload))
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if stub.lastSessionID == "" {
		t.Fatal("expected a generated session id")
	}
}

func TestChatRejectsEmptyBody(t *testing.T) {
	r := setupRouter(&stubAgent{})

	payload, _ := json.Marshal(map[string]string{})
	req := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewReader(payload))
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestResetForwardsSessionID(t *testing.T) {
	stub := &stubAgent{}
	r := setupRouter(stub)

	payload, _ := json.Marshal(map[string]string{"session_id": "tab-1"})
	req := httptest.NewRequest(http.MethodPost, "/reset", bytes.NewReader(payload))
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if len(stub.resets) != 1 || stub.resets[0] != "tab-1" {
		t.Fatalf("unexpected resets: %v", stub.resets)
	}
}

func TestHealthReportsAgentID(t *testing.T) {
	r := setupRouter(&stubAgent{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var body map[string]string
	json.Unmarshal(resp.Body.Bytes(), &body)
	if body["agent_id"] != "test-agent" {
		t.Fatalf("unexpected body: %v", body)
	}
}
