package interactions

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"safedose-api/internal/platform/logger"
	"safedose-api/internal/platform/metrics"
)

const (
	ModeHybrid = "hybrid"
	ModeTable  = "table"

	sourceCache = "cache"
)

type Options struct {
	// Mode: "hybrid" (tabla + clasificador) o "table" (solo tabla). Default hybrid.
	Mode   string
	Table  *Table
	Chain  *Chain
	Cache  ResultCache
	Logger logger.Logger
}

// Service es el agregador de interacciones. No guarda estado entre requests
// salvo el cache de resultados remotos.
type Service struct {
	mode  string
	table *Table
	chain *Chain
	cache ResultCache
	log   logger.Logger
	now   func() time.Time
}

func NewService(opts Options) *Service {
	log := opts.Logger
	if log == nil {
		log = logger.NewNop()
	}
	table := opts.Table
	if table == nil {
		table = DefaultTable()
	}
	chain := opts.Chain
	if chain == nil {
		chain = NewChain(log, NewTableStrategy(table))
	}
	mode := strings.ToLower(strings.TrimSpace(opts.Mode))
	if mode != ModeTable {
		mode = ModeHybrid
	}

	return &Service{
		mode:  mode,
		table: table,
		chain: chain,
		cache: opts.Cache,
		log:   log.With(map[string]any{"component": "interactions"}),
		now:   time.Now,
	}
}

func (s *Service) Mode() string { return s.mode }

// Entry normaliza un nombre y reporta reconocimiento y categoría.
func (s *Service) Entry(raw string) MedicationEntry {
	n := Normalize(raw)
	return MedicationEntry{
		Name:           raw,
		NormalizedName: n,
		Category:       Category(n),
		IsRecognized:   IsRecognized(n),
	}
}

// Lookup normaliza ambos nombres antes de consultar la tabla.
func (s *Service) Lookup(a, b string) (InteractionInfo, bool) {
	return s.table.Lookup(Normalize(a), Normalize(b))
}

func (s *Service) Table() *Table { return s.table }

// Analyze normaliza, cruza pares y reduce a un nivel de riesgo. Solo devuelve
// *ValidationError; los fallos del clasificador quedan absorbidos por la cadena.
func (s *Service) Analyze(ctx context.Context, raw []string) (AnalysisResult, error) {
	for i, name := range raw {
		if !utf8.ValidString(name) {
			return AnalysisResult{}, &ValidationError{
				Field:  fmt.Sprintf("medication_list[%d]", i),
				Reason: "must be valid UTF-8 text",
			}
		}
	}

	start := s.now()
	meds := make([]MedicationEntry, 0, len(raw))
	normalized := make([]string, 0, len(raw))
	for _, name := range raw {
		e := s.Entry(name)
		meds = append(meds, e)
		normalized = append(normalized, e.NormalizedName)
	}

	unique := distinct(normalized)
	if len(unique) < 2 {
		return newAnalysisResult(len(raw), nil, meds), nil
	}

	pairs, covered := s.tablePass(raw, normalized)

	source := ModeTable
	if s.mode == ModeHybrid {
		out := s.classify(ctx, unique)
		source = out.Strategy
		pairs = mergeFindings(pairs, covered, out.Result.Details, raw, normalized)
	}

	details := make([]InteractionRecord, 0, len(pairs))
	for _, p := range pairs {
		details = append(details, p.rec)
	}
	res := newAnalysisResult(len(raw), details, meds)

	metrics.AnalysesTotal.WithLabelValues(s.mode, string(res.RiskLevel)).Inc()
	s.log.Info("analysis completed", map[string]any{
		"medications":  res.MedicationCount,
		"distinct":     len(unique),
		"interactions": res.InteractionCount,
		"risk_level":   res.RiskLevel,
		"source":       source,
		"duration_ms":  s.now().Sub(start).Milliseconds(),
	})
	return res, nil
}

// indexedRecord guarda los índices de entrada (i<j) del par para ordenar details.
type indexedRecord struct {
	i, j int
	rec  InteractionRecord
}

// tablePass recorre pares (i,j), i<j, en orden de entrada.
func (s *Service) tablePass(raw, normalized []string) ([]indexedRecord, map[pairKey]bool) {
	pairs := make([]indexedRecord, 0)
	covered := map[pairKey]bool{}

	for i := 0; i < len(normalized); i++ {
		for j := i + 1; j < len(normalized); j++ {
			info, ok := s.table.Lookup(normalized[i], normalized[j])
			if !ok {
				continue
			}
			covered[unordered(normalized[i], normalized[j])] = true
			pairs = append(pairs, indexedRecord{i: i, j: j, rec: InteractionRecord{
				Drug1:       raw[i],
				Drug2:       raw[j],
				Severity:    info.Severity,
				Description: info.Description,
				Advice:      info.Advice,
			}})
		}
	}
	return pairs, covered
}

func (s *Service) classify(ctx context.Context, drugs []string) Outcome {
	var key string
	if s.cache != nil {
		key = CacheKey(drugs)
		if res, ok := s.cache.Get(ctx, key); ok {
			metrics.ClassifierCache.WithLabelValues("hit").Inc()
			return Outcome{Result: res, Strategy: sourceCache}
		}
		metrics.ClassifierCache.WithLabelValues("miss").Inc()
	}

	out := s.chain.Classify(ctx, drugs)
	if out.Remote && s.cache != nil {
		s.cache.Set(ctx, key, out.Result)
	}
	return out
}

// mergeFindings agrega hallazgos del clasificador que la tabla no cubre. Cada hallazgo
// se ubica en el par (i,j) de la primera aparición de sus fármacos, con el índice menor
// en drug1. La tabla curada gana en pares repetidos y el resultado queda ordenado por (i,j).
func mergeFindings(pairs []indexedRecord, covered map[pairKey]bool, findings []Finding, raw, normalized []string) []indexedRecord {
	first := make(map[string]int, len(normalized))
	for i, n := range normalized {
		if _, ok := first[n]; !ok {
			first[n] = i
		}
	}

	for _, f := range findings {
		i, ok1 := first[f.Drug1]
		j, ok2 := first[f.Drug2]
		if !ok1 || !ok2 || i == j {
			continue
		}
		if i > j {
			i, j = j, i
		}
		key := unordered(f.Drug1, f.Drug2)
		if covered[key] {
			continue
		}
		covered[key] = true
		pairs = append(pairs, indexedRecord{i: i, j: j, rec: InteractionRecord{
			Drug1:       raw[i],
			Drug2:       raw[j],
			Severity:    f.Severity,
			Description: f.Description,
			Advice:      f.Advice,
		}})
	}

	sort.SliceStable(pairs, func(a, b int) bool {
		if pairs[a].i != pairs[b].i {
			return pairs[a].i < pairs[b].i
		}
		return pairs[a].j < pairs[b].j
	})
	return pairs
}
