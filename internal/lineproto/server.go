// Package lineproto serves the agent over stdin/stdout, one JSON object
// per line. It exists for process-embedding callers that spawn the agent
// as a child process instead of talking HTTP.
package lineproto

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/postty/showcase-agent/internal/service/agent"
)

// maxLineBytes bounds a single request line. Image-bearing messages carry
// paths or URLs, never inline payloads, so 1 MiB is generous.
const maxLineBytes = 1 << 20

// Agent is the subset of the agent service the line server drives.
type Agent interface {
	Chat(ctx context.Context, sessionID, message string) (agent.Result, error)
	ResetSession(ctx context.Context, sessionID string)
	AgentID() string
}

type request struct {
	Message   string `json:"message"`
	ImagePath string `json:"image_path,omitempty"`
	SessionID string `json:"session_id,omitempty"`
}

type response struct {
	Status    string        `json:"status"`
	SessionID string        `json:"session_id,omitempty"`
	Result    *agent.Result `json:"result,omitempty"`
	Message   string        `json:"message,omitempty"`
}

// WriteStartupError emits the machine-readable failure line an embedding
// parent expects on stdout when the agent cannot start at all.
func WriteStartupError(out io.Writer, msg string) {
	data, err := json.Marshal(response{Status: "error", Message: msg})
	if err != nil {
		return
	}
	out.Write(append(data, '\n'))
}

// Server reads one request per line from in and writes one response per
// line to out. Errors in a single request are reported on that line and
// do not terminate the loop.
type Server struct {
	agent Agent
	in    io.Reader
	out   io.Writer
}

func New(a Agent, in io.Reader, out io.Writer) *Server {
	return &Server{agent: a, in: in, out: out}
}

// Run announces readiness, then serves requests until EOF or ctx
// cancellation. EOF is a clean shutdown and returns nil.
func (s *Server) Run(ctx context.Context) error {
	if err := s.write(map[string]string{
		"status":   "ready",
		"agent_id": s.agent.AgentID(),
	}); err != nil {
		return fmt.Errorf("write ready line: %w", err)
	}

	scanner := bufio.NewScanner(s.in)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var req request
		if err := json.Unmarshal([]byte(line), &req); err != nil {
			s.writeError("", "invalid JSON request")
			continue
		}
		s.handle(ctx, req)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read request line: %w", err)
	}
	return nil
}

func (s *Server) handle(ctx context.Context, req request) {
	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	message := composeMessage(req.Message, req.ImagePath)
	if message == "" {
		s.writeError(sessionID, "message or image_path required")
		return
	}

	result, err := s.agent.Chat(ctx, sessionID, message)
	if err != nil {
		log.Printf("[lineproto] session=%s chat failed: %v", sessionID, err)
		s.writeError(sessionID, "internal error")
		return
	}

	if err := s.write(response{
		Status:    "success",
		SessionID: sessionID,
		Result:    &result,
	}); err != nil {
		log.Printf("[lineproto] session=%s write response failed: %v", sessionID, err)
	}
}

func (s *Server) write(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = s.out.Write(data)
	return err
}

func (s *Server) writeError(sessionID, msg string) {
	if err := s.write(response{
		Status:    "error",
		SessionID: sessionID,
		Message:   msg,
	}); err != nil {
		log.Printf("[lineproto] write error line failed: %v", err)
	}
}

func composeMessage(message, imagePath string) string {
	message = strings.TrimSpace(message)
	imagePath = strings.TrimSpace(imagePath)
	switch {
	case imagePath == "":
		return message
	case message == "":
		return imagePath
	default:
		return message + " " + imagePath
	}
}
