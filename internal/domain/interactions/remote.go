package interactions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"safedose-api/internal/platform/logger"
	"safedose-api/internal/ports/llm"
)

// ErrSchemaViolation: el modelo respondió JSON que no cumple el contrato.
var ErrSchemaViolation = errors.New("classifier payload violates schema")

// RemoteStrategy consulta un modelo generativo con el contrato JSON de clasificación.
type RemoteStrategy struct {
	name    string
	model   string
	gen     llm.Generator
	timeout time.Duration
	log     logger.Logger
}

func NewRemoteStrategy(name, model string, gen llm.Generator, timeout time.Duration) *RemoteStrategy {
	return &RemoteStrategy{
		name:    name,
		model:   strings.TrimSpace(model),
		gen:     gen,
		timeout: timeout,
		log:     logger.NewNop(),
	}
}

// WithLogger registra en log los detalles descartados del modelo.
func (s *RemoteStrategy) WithLogger(log logger.Logger) *RemoteStrategy {
	if log != nil {
		s.log = log.With(map[string]any{"strategy": s.name, "model": s.model})
	}
	return s
}

func (s *RemoteStrategy) Name() string { return s.name }

func (s *RemoteStrategy) Remote() bool { return true }

func (s *RemoteStrategy) Applicable(drugs []string) bool {
	if s.gen == nil || s.model == "" {
		return false
	}
	if c, ok := s.gen.(interface{ Configured() bool }); ok && !c.Configured() {
		return false
	}
	return len(distinct(drugs)) >= 2
}

func (s *RemoteStrategy) Classify(ctx context.Context, drugs []string) (ClassifierResult, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	resp, err := s.gen.Generate(ctx, llm.Request{
		Model:       s.model,
		System:      classifierSystemPrompt,
		Messages:    []llm.Message{llm.TextMessage(llm.RoleUser, classifierPrompt(drugs))},
		JSON:        true,
		Temperature: llm.Temperature(0),
	})
	if err != nil {
		return ClassifierResult{}, err
	}
	if strings.TrimSpace(resp.Text) == "" {
		return ClassifierResult{}, llm.ErrEmptyResponse
	}
	res, skipped, err := parseClassifierPayload(resp.Text, drugs)
	if err != nil {
		return ClassifierResult{}, err
	}
	for _, reason := range skipped {
		s.log.Warn("classifier detail skipped", map[string]any{"reason": reason})
	}
	return res, nil
}

const classifierSystemPrompt = "You are a clinical pharmacology reference. " +
	"You only answer with JSON that matches the requested schema, with no prose and no markdown."

func classifierPrompt(drugs []string) string {
	var b strings.Builder
	b.WriteString("Identify pharmacokinetic and pharmacodynamic interactions between every pair of these compounds: ")
	b.WriteString(strings.Join(drugs, ", "))
	b.WriteString(".\n\nReturn JSON with exactly this shape:\n")
	b.WriteString(`{
  "risk_level": "HIGH" | "MODERATE" | "LOW",
  "interaction_count": <number of entries in details>,
  "details": [
    {
      "drug1": "<one of the compounds above>",
      "drug2": "<another compound above>",
      "severity": "HIGH" | "MODERATE" | "LOW",
      "description": "<mechanism, e.g. CYP450 inhibition or platelet interference>",
      "advice": "<one plain-language sentence for the patient>"
    }
  ]
}`)
	b.WriteString("\nOnly list pairs with a documented interaction. Use an empty details list when there are none.")
	return b.String()
}

type classifierPayload struct {
	RiskLevel        *string          `json:"risk_level"`
	InteractionCount *int             `json:"interaction_count"`
	Details          *[]payloadDetail `json:"details"`
}

// payloadDetail acepta también las claves del prompt anterior
// (risk_level / clinical_info / simple_explanation).
type payloadDetail struct {
	Drug1             string `json:"drug1"`
	Drug2             string `json:"drug2"`
	Severity          string `json:"severity"`
	Description       string `json:"description"`
	Advice            string `json:"advice"`
	RiskLevel         string `json:"risk_level"`
	ClinicalInfo      string `json:"clinical_info"`
	SimpleExplanation string `json:"simple_explanation"`
}

// ParseClassifierPayload decodifica y valida la respuesta del modelo. Los nombres de
// fármacos se normalizan; un detalle con un fármaco fuera de requested, o que empareja
// un fármaco consigo mismo, se descarta sin invalidar el resto. risk_level e
// interaction_count del modelo se validan pero no se usan: se recalculan desde details.
func ParseClassifierPayload(text string, requested []string) (ClassifierResult, error) {
	res, _, err := parseClassifierPayload(text, requested)
	return res, err
}

// parseClassifierPayload devuelve además el motivo de cada detalle descartado.
func parseClassifierPayload(text string, requested []string) (ClassifierResult, []string, error) {
	raw := stripCodeFence(text)
	if raw == "" {
		return ClassifierResult{}, nil, llm.ErrEmptyResponse
	}

	var p classifierPayload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return ClassifierResult{}, nil, fmt.Errorf("%w: %v", ErrSchemaViolation, err)
	}
	if p.RiskLevel == nil {
		return ClassifierResult{}, nil, fmt.Errorf("%w: risk_level missing", ErrSchemaViolation)
	}
	if _, ok := ParseSeverity(*p.RiskLevel); !ok {
		return ClassifierResult{}, nil, fmt.Errorf("%w: risk_level %q", ErrSchemaViolation, *p.RiskLevel)
	}
	if p.Details == nil {
		return ClassifierResult{}, nil, fmt.Errorf("%w: details missing", ErrSchemaViolation)
	}
	if p.InteractionCount != nil && *p.InteractionCount < 0 {
		return ClassifierResult{}, nil, fmt.Errorf("%w: negative interaction_count", ErrSchemaViolation)
	}

	allowed := make(map[string]bool, len(requested))
	for _, d := range requested {
		allowed[d] = true
	}

	var skipped []string
	seen := map[pairKey]bool{}
	findings := make([]Finding, 0, len(*p.Details))
	for i, d := range *p.Details {
		a, b := Normalize(d.Drug1), Normalize(d.Drug2)
		if a == "" || b == "" {
			return ClassifierResult{}, nil, fmt.Errorf("%w: details[%d] missing drug names", ErrSchemaViolation, i)
		}
		if !allowed[a] || !allowed[b] {
			skipped = append(skipped, fmt.Sprintf("details[%d] names unknown drug %q/%q", i, d.Drug1, d.Drug2))
			continue
		}
		if a == b {
			skipped = append(skipped, fmt.Sprintf("details[%d] pairs %q with itself", i, a))
			continue
		}

		sevText := firstNonEmpty(d.Severity, d.RiskLevel)
		sev, ok := ParseSeverity(sevText)
		if !ok {
			return ClassifierResult{}, nil, fmt.Errorf("%w: details[%d].severity %q", ErrSchemaViolation, i, sevText)
		}

		desc := strings.TrimSpace(firstNonEmpty(d.Description, d.ClinicalInfo))
		if desc == "" {
			return ClassifierResult{}, nil, fmt.Errorf("%w: details[%d].description missing", ErrSchemaViolation, i)
		}

		key := unordered(a, b)
		if seen[key] {
			continue
		}
		seen[key] = true

		findings = append(findings, Finding{
			Drug1:       a,
			Drug2:       b,
			Severity:    sev,
			Description: desc,
			Advice:      strings.TrimSpace(firstNonEmpty(d.Advice, d.SimpleExplanation)),
		})
	}

	return NewClassifierResult(findings), skipped, nil
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// distinct conserva el orden de primera aparición y descarta vacíos.
func distinct(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
