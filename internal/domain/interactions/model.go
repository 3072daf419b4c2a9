package interactions

import "strings"

// Severity es ordinal: HIGH > MODERATE > LOW.
type Severity string

const (
	SeverityHigh     Severity = "HIGH"
	SeverityModerate Severity = "MODERATE"
	SeverityLow      Severity = "LOW"
)

func (s Severity) rank() int {
	switch s {
	case SeverityHigh:
		return 3
	case SeverityModerate:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

func (s Severity) Valid() bool {
	return s.rank() > 0
}

// ParseSeverity acepta mayúsculas/minúsculas y espacios.
func ParseSeverity(s string) (Severity, bool) {
	sev := Severity(strings.ToUpper(strings.TrimSpace(s)))
	return sev, sev.Valid()
}

// MaxSeverity reduce a la severidad más alta; sin elementos es LOW.
func MaxSeverity(items ...Severity) Severity {
	out := SeverityLow
	for _, s := range items {
		if s.rank() > out.rank() {
			out = s
		}
	}
	return out
}

// InteractionRecord es un par peligroso, con los nombres tal como los escribió el usuario.
type InteractionRecord struct {
	Drug1       string   `json:"drug1"`
	Drug2       string   `json:"drug2"`
	Severity    Severity `json:"severity"`
	Description string   `json:"description"`
	Advice      string   `json:"advice"`
}

type MedicationEntry struct {
	Name           string `json:"name"`
	NormalizedName string `json:"normalized_name"`
	Category       string `json:"category"`
	IsRecognized   bool   `json:"is_recognized"`
}

// AnalysisResult: RiskLevel e InteractionCount se derivan de Details en newAnalysisResult.
type AnalysisResult struct {
	MedicationCount  int                 `json:"medication_count"`
	RiskLevel        Severity            `json:"risk_level"`
	InteractionCount int                 `json:"interaction_count"`
	Details          []InteractionRecord `json:"details"`
	Medications      []MedicationEntry   `json:"medications"`
}

func newAnalysisResult(medicationCount int, details []InteractionRecord, meds []MedicationEntry) AnalysisResult {
	if details == nil {
		details = []InteractionRecord{}
	}
	if meds == nil {
		meds = []MedicationEntry{}
	}

	sevs := make([]Severity, 0, len(details))
	for _, d := range details {
		sevs = append(sevs, d.Severity)
	}

	return AnalysisResult{
		MedicationCount:  medicationCount,
		RiskLevel:        MaxSeverity(sevs...),
		InteractionCount: len(details),
		Details:          details,
		Medications:      meds,
	}
}

// Finding es una interacción expresada con nombres normalizados (salida del clasificador).
type Finding struct {
	Drug1       string   `json:"drug1"`
	Drug2       string   `json:"drug2"`
	Severity    Severity `json:"severity"`
	Description string   `json:"description"`
	Advice      string   `json:"advice"`
}

// ClassifierResult tiene la misma forma que los campos de riesgo de AnalysisResult.
type ClassifierResult struct {
	RiskLevel        Severity  `json:"risk_level"`
	InteractionCount int       `json:"interaction_count"`
	Details          []Finding `json:"details"`
}

func NewClassifierResult(findings []Finding) ClassifierResult {
	if findings == nil {
		findings = []Finding{}
	}
	sevs := make([]Severity, 0, len(findings))
	for _, f := range findings {
		sevs = append(sevs, f.Severity)
	}
	return ClassifierResult{
		RiskLevel:        MaxSeverity(sevs...),
		InteractionCount: len(findings),
		Details:          findings,
	}
}

// pairKey identifica un par no ordenado.
type pairKey struct{ a, b string }

func unordered(a, b string) pairKey {
	if b < a {
		a, b = b, a
	}
	return pairKey{a, b}
}
