package diagnosis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"safedose-api/internal/platform/logger"
	"safedose-api/internal/platform/metrics"
	"safedose-api/internal/ports/llm"
)

const (
	DefaultQuery        = "The user provided a document for analysis."
	DefaultHistoryLimit = 20

	summaryRunes = 60
)

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrUnsupportedMedia = errors.New("unsupported media type")
	// ErrUpstream: el modelo falló o no devolvió análisis.
	ErrUpstream = errors.New("diagnosis upstream error")
)

const systemPrompt = "You are a professional AI Diagnostic Assistant. Analyze the image or document provided. " +
	"Provide a differential analysis and suggest specialists. Use one compassionate paragraph. No markdown."

type Options struct {
	Model   string
	Timeout time.Duration
	Logger  logger.Logger
}

type Service struct {
	repo Repository
	gen  llm.Generator
	opts Options
	log  logger.Logger
	now  func() time.Time
}

func NewService(repo Repository, gen llm.Generator, opts Options) *Service {
	log := opts.Logger
	if log == nil {
		log = logger.NewNop()
	}
	return &Service{
		repo: repo,
		gen:  gen,
		opts: opts,
		log:  log.With(map[string]any{"component": "diagnosis"}),
		now:  time.Now,
	}
}

func (s *Service) Diagnose(ctx context.Context, userID string, in Input) (Result, error) {
	userID = strings.TrimSpace(userID)
	query := strings.TrimSpace(in.Query)
	if userID == "" {
		return Result{}, ErrInvalidInput
	}
	if query == "" && len(in.File) == 0 && len(in.Audio) == 0 {
		return Result{}, fmt.Errorf("%w: query, file or audio required", ErrInvalidInput)
	}

	fileMIME := normalizeMIME(in.FileMIME)
	if len(in.File) > 0 && !strings.HasPrefix(fileMIME, "image/") && fileMIME != "application/pdf" {
		return Result{}, fmt.Errorf("%w: file %q", ErrUnsupportedMedia, fileMIME)
	}
	audioMIME := normalizeMIME(in.AudioMIME)
	if len(in.Audio) > 0 && !strings.HasPrefix(audioMIME, "audio/") {
		return Result{}, fmt.Errorf("%w: audio %q", ErrUnsupportedMedia, audioMIME)
	}
	if query == "" {
		query = DefaultQuery
	}

	if s.gen == nil {
		metrics.DiagnosesTotal.WithLabelValues("upstream_error").Inc()
		return Result{}, fmt.Errorf("%w: %v", ErrUpstream, llm.ErrNotConfigured)
	}

	parts := []llm.Part{{Text: userPrompt(query, len(in.Audio) > 0)}}
	if len(in.File) > 0 {
		parts = append(parts, llm.Part{MIMEType: fileMIME, Data: in.File})
	}
	if len(in.Audio) > 0 {
		parts = append(parts, llm.Part{MIMEType: audioMIME, Data: in.Audio})
	}

	gctx := ctx
	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		gctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}

	resp, err := s.gen.Generate(gctx, llm.Request{
		Model:           s.opts.Model,
		System:          systemPrompt,
		Messages:        []llm.Message{{Role: llm.RoleUser, Parts: parts}},
		JSON:            true,
		Temperature:     llm.Temperature(0.3),
		MaxOutputTokens: 600,
	})
	if err != nil {
		metrics.DiagnosesTotal.WithLabelValues("upstream_error").Inc()
		s.log.Warn("diagnosis model failed", map[string]any{"model": s.opts.Model, "error": err})
		return Result{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	transcription, analysis := parseAnswer(resp.Text, query)
	if analysis == "" {
		metrics.DiagnosesTotal.WithLabelValues("upstream_error").Inc()
		return Result{}, fmt.Errorf("%w: %v", ErrUpstream, llm.ErrEmptyResponse)
	}

	rec := Record{
		ID:            uuid.NewString(),
		UserID:        userID,
		Query:         query,
		Transcription: transcription,
		Analysis:      analysis,
		Summary:       Summarize(analysis),
		FileType:      fileMIME,
		CreatedAt:     s.now().UTC(),
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		return Result{}, fmt.Errorf("save diagnosis: %w", err)
	}
	metrics.DiagnosesTotal.WithLabelValues("ok").Inc()

	return Result{
		RecordID:      rec.ID,
		Transcription: transcription,
		Analysis:      analysis,
		Summary:       rec.Summary,
	}, nil
}

func (s *Service) History(ctx context.Context, userID string, limit int) ([]Record, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrInvalidInput
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return s.repo.ListByUser(ctx, userID, limit)
}

func (s *Service) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return s.repo.DeleteBefore(ctx, cutoff)
}

// Summarize corta en 60 runas (no bytes) y agrega "...".
func Summarize(analysis string) string {
	analysis = strings.TrimSpace(analysis)
	if utf8.RuneCountInString(analysis) > summaryRunes {
		analysis = string([]rune(analysis)[:summaryRunes])
	}
	return strings.TrimSpace(analysis) + "..."
}

func userPrompt(query string, hasAudio bool) string {
	var b strings.Builder
	b.WriteString("User query: ")
	b.WriteString(query)
	b.WriteString("\n\n")
	if hasAudio {
		b.WriteString("An audio clip from the user is attached. Transcribe it verbatim into \"transcription\" and treat it as their question.\n")
	} else {
		b.WriteString("Copy the user query into \"transcription\".\n")
	}
	b.WriteString(`Respond only with JSON: {"transcription": string, "analysis": string}.`)
	return b.String()
}

// parseAnswer tolera texto plano: en ese caso todo es el análisis.
func parseAnswer(raw, query string) (string, string) {
	raw = strings.TrimSpace(raw)
	var out struct {
		Transcription string `json:"transcription"`
		Analysis      string `json:"analysis"`
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return query, raw
	}
	transcription := strings.TrimSpace(out.Transcription)
	if transcription == "" {
		transcription = query
	}
	return transcription, strings.TrimSpace(out.Analysis)
}

func normalizeMIME(m string) string {
	m = strings.ToLower(strings.TrimSpace(m))
	if i := strings.IndexByte(m, ';'); i >= 0 {
		m = strings.TrimSpace(m[:i])
	}
	return m
}
