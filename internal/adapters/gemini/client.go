// Package gemini implementa llm.Generator contra la API REST generateContent de Google.
// Cada modelo tiene su propio circuit breaker; el rate limit es compartido por el cliente.
package gemini

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/sony/gobreaker"

	"safedose-api/internal/platform/httpclient"
	"safedose-api/internal/platform/logger"
	"safedose-api/internal/ports/llm"
)

const DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

var (
	// ErrBlocked: el prompt o la respuesta fue bloqueada por los filtros de seguridad.
	ErrBlocked = errors.New("gemini: content blocked")
)

type BreakerSettings struct {
	MaxRequests  uint32
	Interval     time.Duration
	Timeout      time.Duration
	FailureRatio float64
	MinRequests  uint32
}

type Config struct {
	APIKey            string
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	Breaker           BreakerSettings

	// Transport opcional (tests).
	Transport http.RoundTripper
}

type Client struct {
	apiKey  string
	http    *httpclient.Client
	log     logger.Logger
	breaker BreakerSettings

	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker
}

func New(cfg Config, log logger.Logger) (*Client, error) {
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		base = DefaultBaseURL
	}

	opts := []httpclient.Option{httpclient.WithRateLimit(cfg.RequestsPerSecond, cfg.Burst)}
	if cfg.Transport != nil {
		opts = append(opts, httpclient.WithTransport(cfg.Transport))
	}
	hc, err := httpclient.NewWithBaseURL(base, cfg.Timeout, opts...)
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}

	if log == nil {
		log = logger.NewNop()
	}

	return &Client{
		apiKey:   strings.TrimSpace(cfg.APIKey),
		http:     hc,
		log:      log.With(map[string]any{"component": "gemini"}),
		breaker:  withBreakerDefaults(cfg.Breaker),
		breakers: make(map[string]*gobreaker.CircuitBreaker),
	}, nil
}

func withBreakerDefaults(s BreakerSettings) BreakerSettings {
	if s.MaxRequests == 0 {
		s.MaxRequests = 5
	}
	if s.Interval <= 0 {
		s.Interval = 30 * time.Second
	}
	if s.Timeout <= 0 {
		s.Timeout = 60 * time.Second
	}
	if s.FailureRatio <= 0 {
		s.FailureRatio = 0.6
	}
	if s.MinRequests == 0 {
		s.MinRequests = 3
	}
	return s
}

func (c *Client) Configured() bool {
	return c != nil && c.apiKey != ""
}

// Generate ejecuta un generateContent. Los errores de transporte y 5xx/429 cuentan
// para el breaker del modelo; bloqueos de contenido y respuestas vacías no.
func (c *Client) Generate(ctx context.Context, req llm.Request) (llm.Response, error) {
	if !c.Configured() {
		return llm.Response{}, llm.ErrNotConfigured
	}
	model := strings.TrimSpace(req.Model)
	if model == "" {
		return llm.Response{}, errors.New("gemini: model required")
	}

	out, err := c.breakerFor(model).Execute(func() (interface{}, error) {
		return c.call(ctx, model, req)
	})
	if err != nil {
		return llm.Response{}, err
	}
	return out.(llm.Response), nil
}

func (c *Client) breakerFor(model string) *gobreaker.CircuitBreaker {
	c.mu.Lock()
	defer c.mu.Unlock()

	if cb, ok := c.breakers[model]; ok {
		return cb
	}

	s := c.breaker
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "gemini:" + model,
		MaxRequests: s.MaxRequests,
		Interval:    s.Interval,
		Timeout:     s.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < s.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= s.FailureRatio
		},
		IsSuccessful: func(err error) bool {
			return err == nil ||
				errors.Is(err, llm.ErrEmptyResponse) ||
				errors.Is(err, ErrBlocked) ||
				errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.log.Warn("circuit breaker state change", map[string]any{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			})
		},
	})
	c.breakers[model] = cb
	return cb
}

func (c *Client) call(ctx context.Context, model string, req llm.Request) (llm.Response, error) {
	body := buildRequest(req)

	path := "/models/" + url.PathEscape(model) + ":generateContent"
	headers := map[string]string{"x-goog-api-key": c.apiKey}

	var resp generateResponse
	start := time.Now()
	if err := c.http.DoJSON(ctx, http.MethodPost, path, headers, body, &resp); err != nil {
		c.log.Debug("generateContent failed", map[string]any{
			"model":       model,
			"duration_ms": time.Since(start).Milliseconds(),
			"error":       err,
		})
		return llm.Response{}, fmt.Errorf("gemini %s: %w", model, err)
	}

	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return llm.Response{}, fmt.Errorf("%w: %s", ErrBlocked, resp.PromptFeedback.BlockReason)
	}
	if len(resp.Candidates) == 0 {
		return llm.Response{}, llm.ErrEmptyResponse
	}

	cand := resp.Candidates[0]
	if cand.FinishReason == "SAFETY" {
		return llm.Response{}, fmt.Errorf("%w: finish reason SAFETY", ErrBlocked)
	}

	var sb strings.Builder
	for _, p := range cand.Content.Parts {
		sb.WriteString(p.Text)
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return llm.Response{}, llm.ErrEmptyResponse
	}

	c.log.Debug("generateContent ok", map[string]any{
		"model":       model,
		"duration_ms": time.Since(start).Milliseconds(),
	})
	return llm.Response{Text: text, Model: model}, nil
}

// ---- wire types ----

type generateRequest struct {
	Contents          []content         `json:"contents"`
	SystemInstruction *content          `json:"systemInstruction,omitempty"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
	SafetySettings    []safetySetting   `json:"safetySettings,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type generationConfig struct {
	Temperature      *float64 `json:"temperature,omitempty"`
	ResponseMimeType string   `json:"responseMimeType,omitempty"`
	MaxOutputTokens  int      `json:"maxOutputTokens,omitempty"`
}

type safetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback,omitempty"`
}

func buildRequest(req llm.Request) generateRequest {
	out := generateRequest{
		Contents: make([]content, 0, len(req.Messages)),
		// Contenido farmacológico dispara el filtro de "dangerous content" con facilidad.
		SafetySettings: []safetySetting{
			{Category: "HARM_CATEGORY_DANGEROUS_CONTENT", Threshold: "BLOCK_NONE"},
		},
	}

	for _, m := range req.Messages {
		role := llm.RoleUser
		if m.Role == llm.RoleModel || m.Role == "assistant" {
			role = llm.RoleModel
		}
		out.Contents = append(out.Contents, content{Role: role, Parts: toParts(m.Parts)})
	}

	if s := strings.TrimSpace(req.System); s != "" {
		out.SystemInstruction = &content{Parts: []part{{Text: s}}}
	}

	gc := generationConfig{
		Temperature:     req.Temperature,
		MaxOutputTokens: req.MaxOutputTokens,
	}
	if req.JSON {
		gc.ResponseMimeType = "application/json"
	}
	if gc != (generationConfig{}) {
		out.GenerationConfig = &gc
	}
	return out
}

func toParts(in []llm.Part) []part {
	out := make([]part, 0, len(in))
	for _, p := range in {
		if len(p.Data) > 0 {
			out = append(out, part{InlineData: &inlineData{
				MimeType: p.MIMEType,
				Data:     base64.StdEncoding.EncodeToString(p.Data),
			}})
			continue
		}
		out = append(out, part{Text: p.Text})
	}
	return out
}
