package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"safedose-api/internal/platform/logger"
	"safedose-api/internal/platform/metrics"
	"safedose-api/internal/ports/llm"
)

const (
	DefaultHistoryLimit = 10

	BrainFogReply   = "I'm having a little brain fog! Can we try that again? ✨"
	SupportiveReply = "I'm here for you! Please check with your doctor about those symptoms, but I'm sending you positive vibes! ✨"

	chatTemperature = 0.8
)

var ErrInvalidInput = errors.New("invalid input")

type Options struct {
	PrimaryModel string
	LegacyModel  string
	HistoryLimit int
	Timeout      time.Duration
	Logger       logger.Logger
}

// Service es el acompañante conversacional. Nunca devuelve error por el modelo:
// en el peor caso responde BrainFogReply.
type Service struct {
	repo Repository
	gen  llm.Generator
	opts Options
	log  logger.Logger
	now  func() time.Time
}

func NewService(repo Repository, gen llm.Generator, opts Options) *Service {
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = DefaultHistoryLimit
	}
	log := opts.Logger
	if log == nil {
		log = logger.NewNop()
	}
	return &Service{
		repo: repo,
		gen:  gen,
		opts: opts,
		log:  log.With(map[string]any{"component": "chat"}),
		now:  time.Now,
	}
}

func (s *Service) Reply(ctx context.Context, userID, text string, medications []string) (Reply, error) {
	userID = strings.TrimSpace(userID)
	text = strings.TrimSpace(text)
	if userID == "" || text == "" {
		return Reply{}, ErrInvalidInput
	}

	if err := s.repo.Append(ctx, Message{
		ID:        uuid.NewString(),
		UserID:    userID,
		Role:      RoleUser,
		Text:      text,
		CreatedAt: s.now().UTC(),
	}); err != nil {
		return Reply{}, fmt.Errorf("save user message: %w", err)
	}

	history, err := s.repo.Recent(ctx, userID, s.opts.HistoryLimit)
	if err != nil {
		return Reply{}, fmt.Errorf("load history: %w", err)
	}

	system := systemPrompt(medications)

	answer, source := s.askPrimary(ctx, system, history)
	if source == "" {
		answer, source = s.askLegacy(ctx, system, text)
	}
	metrics.ChatReplies.WithLabelValues(source).Inc()

	if source == "canned" {
		return Reply{Text: answer, Role: RoleModel}, nil
	}

	if err := s.repo.Append(ctx, Message{
		ID:        uuid.NewString(),
		UserID:    userID,
		Role:      RoleModel,
		Text:      answer,
		CreatedAt: s.now().UTC(),
	}); err != nil {
		s.log.Warn("save model reply failed", map[string]any{"user_id": userID, "error": err})
	}
	return Reply{Text: answer, Role: RoleModel}, nil
}

// askPrimary usa todo el historial; source vacío significa que hay que caer al legacy.
func (s *Service) askPrimary(ctx context.Context, system string, history []Message) (string, string) {
	if s.gen == nil || s.opts.PrimaryModel == "" {
		return "", ""
	}

	msgs := make([]llm.Message, 0, len(history))
	for _, m := range history {
		role := llm.RoleUser
		if m.Role == RoleModel {
			role = llm.RoleModel
		}
		msgs = append(msgs, llm.TextMessage(role, m.Text))
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.gen.Generate(ctx, llm.Request{
		Model:       s.opts.PrimaryModel,
		System:      system,
		Messages:    msgs,
		JSON:        true,
		Temperature: llm.Temperature(chatTemperature),
	})
	if err != nil && !errors.Is(err, llm.ErrEmptyResponse) {
		s.log.Warn("primary chat model failed, trying legacy", map[string]any{"model": s.opts.PrimaryModel, "error": err})
		return "", ""
	}
	if strings.TrimSpace(resp.Text) == "" {
		return SupportiveReply, "primary"
	}
	return responseText(resp.Text), "primary"
}

// askLegacy solo manda el último texto del usuario.
func (s *Service) askLegacy(ctx context.Context, system, text string) (string, string) {
	if s.gen == nil || s.opts.LegacyModel == "" {
		return BrainFogReply, "canned"
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.gen.Generate(ctx, llm.Request{
		Model:    s.opts.LegacyModel,
		System:   system,
		Messages: []llm.Message{llm.TextMessage(llm.RoleUser, text)},
	})
	if err != nil || strings.TrimSpace(resp.Text) == "" {
		s.log.Warn("legacy chat model failed", map[string]any{"model": s.opts.LegacyModel, "error": err})
		return BrainFogReply, "canned"
	}
	return responseText(resp.Text), "legacy"
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opts.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.opts.Timeout)
}

// History devuelve los últimos limit mensajes (default HistoryLimit).
func (s *Service) History(ctx context.Context, userID string, limit int) ([]Message, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrInvalidInput
	}
	if limit <= 0 {
		limit = s.opts.HistoryLimit
	}
	return s.repo.Recent(ctx, userID, limit)
}

func (s *Service) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return s.repo.DeleteBefore(ctx, cutoff)
}

// responseText extrae response_text si la respuesta es JSON; si no, usa el texto crudo.
func responseText(raw string) string {
	var out struct {
		ResponseText *string `json:"response_text"`
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &out); err != nil || out.ResponseText == nil {
		return strings.TrimSpace(raw)
	}
	return strings.TrimSpace(*out.ResponseText)
}

func systemPrompt(medications []string) string {
	meds := make([]string, 0, len(medications))
	for _, m := range medications {
		if m = strings.TrimSpace(m); m != "" {
			meds = append(meds, m)
		}
	}
	medContext := "No medications listed"
	if len(meds) > 0 {
		medContext = strings.Join(meds, ", ")
	}

	return `You are MediBuddy, a compassionate and knowledgeable health companion. ✨
USER MEDICATIONS: ` + medContext + `.

TONE: Bubbly, warm, and supportive. Use emojis occasionally!

GUIDELINES:
1. Answer the user's specific questions directly using their clinical context.
2. If they ask about their meds, list them and explain their general purpose simply.
3. DO NOT repeat the "consult a doctor" disclaimer in every message.
4. ONLY suggest a doctor/988 if the user describes severe pain (chest pain, breathing issues), suicidal thoughts or self-harm, or dangerous medication side effects.
5. Keep responses concise (2-4 sentences).

FORMAT: Respond in JSON with a "response_text" field.`
}
