// Package agent drives the guided workflow: product upload, reference
// selection, overlay-text capture and generation. Each turn runs to
// completion before the session sees the next one; all state lives on the
// session owned by the registry.
package agent

import (
	"context"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/postty/showcase-agent/internal/analysis/textspec"
	"github.com/postty/showcase-agent/internal/backend"
	"github.com/postty/showcase-agent/internal/config"
	"github.com/postty/showcase-agent/internal/imageref"
	"github.com/postty/showcase-agent/internal/model/chat"
	"github.com/postty/showcase-agent/internal/service/ai"
	"github.com/postty/showcase-agent/internal/service/session"
	"github.com/postty/showcase-agent/internal/trigger"
)

// Backend is the slice of the composition backend the workflow uses.
type Backend interface {
	SearchReferences(ctx context.Context, query string, limit int) ([]chat.Reference, error)
	GeneratePipeline(ctx context.Context, req backend.PipelineRequest) (string, error)
	GenerateReel(ctx context.Context, req backend.ReelRequest) (string, error)
	IncrementReferenceRanking(ctx context.Context, referenceFilename string) error
}

// Service is the conversation state machine.
type Service struct {
	sessions *session.Store
	gen      ai.Generator
	backend  Backend
	cfg      config.AgentConfig
	userID   string
	clock    func() time.Time
}

// New wires the workflow over its collaborators.
func New(sessions *session.Store, gen ai.Generator, b Backend, cfg config.AgentConfig, userID string) *Service {
	return &Service{
		sessions: sessions,
		gen:      gen,
		backend:  b,
		cfg:      cfg,
		userID:   userID,
		clock:    time.Now,
	}
}

// WithClock overrides the clock, for deterministic tests.
func (s *Service) WithClock(clock func() time.Time) *Service {
	s.clock = clock
	return s
}

// Chat processes one user turn and returns the assistant-visible result.
// Recoverable failures (image load, upstream calls) become graceful messages;
// the error return is reserved for broken invariants, not steady-state turns.
func (s *Service) Chat(ctx context.Context, sessionID, message string) (Result, error) {
	sess := s.sessions.GetOrCreate(ctx, sessionID)
	defer s.sessions.Save(ctx, sess)

	// The frontend opens conversations with a sentinel first message.
	if message == "START_CONVERSATION" {
		message = "Hola"
	}

	// Rule 1: reset intent short-circuits everything else this turn.
	if isResetIntent(message) {
		sess.Reset(s.clock())
		return s.reply(sess, textResult(msgResetGreeting)), nil
	}

	clean, source := imageref.Extract(message)
	text := clean
	if text == "" {
		text = message
	}
	sess.History.Append(chat.Turn{
		Role:      chat.RoleUser,
		Text:      text,
		ImageRef:  source,
		CreatedAt: s.clock(),
	})
	if source != "" {
		sess.ProductImagePath = source
	}

	// Rule 2: a bare 1-3 against a visible reference list is a selection.
	if n, ok := bareInteger(message); ok {
		if result, selected := s.selectReference(ctx, sess, n); selected {
			return result, nil
		}
	}

	// Rule 3: the turn after the text-requirements question is the text spec.
	if sess.AwaitingTextInput {
		return s.consumeTextSpec(sess, message), nil
	}

	// Rule 4: everything else goes through the model.
	return s.converse(ctx, sess, message, source)
}

// ResetSession clears workflow state for an explicit reset command.
func (s *Service) ResetSession(ctx context.Context, sessionID string) {
	if sess, ok := s.sessions.Get(sessionID); ok {
		sess.Reset(s.clock())
		s.sessions.Save(ctx, sess)
	}
}

// AgentID exposes the configured identity for health/startup reporting.
func (s *Service) AgentID() string {
	return s.cfg.AgentID
}

func (s *Service) converse(ctx context.Context, sess *chat.Session, message, source string) (Result, error) {
	prompt := buildPrompt(s.cfg.SystemInstructions, sess.History.Render(chat.PromptTurnLimit))

	img := s.loadTurnImage(ctx, sess, source)
	output, err := s.gen.GenerateText(ctx, prompt, img)
	if err != nil {
		log.Printf("[agent] session=%s text generation failed: %v", sess.ID, err)
		return s.reply(sess, textResult(msgModelUnavailable)), nil
	}

	inv := trigger.Parse(output)
	switch inv.Kind {
	case trigger.KindSearchReferences:
		return s.handleSearch(ctx, sess, inv), nil
	case trigger.KindGeneratePipeline:
		return s.handlePipeline(ctx, sess, inv), nil
	case trigger.KindGenerateReel:
		return s.handleReel(ctx, sess, inv), nil
	case trigger.KindGenerateImage:
		return s.handleDirectImage(ctx, sess, inv, message), nil
	default:
		return s.reply(sess, textResult(inv.LeadIn)), nil
	}
}

// loadTurnImage resolves the image to attach to the model call: the current
// turn's extracted source, else the stored product image. Load failures
// degrade to text-only.
func (s *Service) loadTurnImage(ctx context.Context, sess *chat.Session, source string) *imageref.Image {
	if source == "" {
		source = sess.ProductImagePath
	}
	if source == "" {
		return nil
	}

	img, err := imageref.Load(ctx, source)
	if err != nil {
		log.Printf("[agent] session=%s image load failed, proceeding text-only: %v", sess.ID, err)
		return nil
	}
	return img
}

// selectReference binds the n-th offered reference (1-based). Out-of-range
// picks and turns without a visible reference list fall through to normal
// handling.
func (s *Service) selectReference(ctx context.Context, sess *chat.Session, n int) (Result, bool) {
	refs := sess.History.LastReferences()
	limit := len(refs)
	if limit > 3 {
		limit = 3
	}
	if refs == nil || n < 1 || n > limit {
		return Result{}, false
	}

	ref := refs[n-1]
	sess.SelectedReference = &ref
	sess.DesignGuidelines = ref.DesignGuidelines
	sess.TextSpec = nil
	sess.SkipText = false
	sess.AwaitingTextInput = true

	// Best-effort visual analysis; a failure leaves it unset.
	sess.ProductAnalysis = s.analyzeProduct(ctx, sess)

	log.Printf("[agent] session=%s selected reference %s", sess.ID, ref.Filename)
	return s.reply(sess, textResult(buildTextRequirementsPrompt(sess.DesignGuidelines))), true
}

func (s *Service) consumeTextSpec(sess *chat.Session, message string) Result {
	sess.AwaitingTextInput = false

	if textspec.IsNoText(message) {
		sess.TextSpec = nil
		sess.SkipText = true
		return s.reply(sess, textResult(msgNoTextConfirmed))
	}

	spec := textspec.Parse(message)
	sess.TextSpec = &spec
	sess.SkipText = false
	return s.reply(sess, textResult(buildTextConfirmation(&spec)))
}

// reply appends the assistant-visible message to history and passes the
// result through.
func (s *Service) reply(sess *chat.Session, res Result) Result {
	sess.History.Append(chat.Turn{
		Role:       chat.RoleAssistant,
		Text:       res.Text,
		ImageRef:   res.File,
		References: res.References,
		CreatedAt:  s.clock(),
	})
	return res
}

func bareInteger(message string) (int, bool) {
	trimmed := strings.TrimSpace(message)
	trimmed = strings.TrimSuffix(trimmed, ".")
	n, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, false
	}
	return n, true
}
