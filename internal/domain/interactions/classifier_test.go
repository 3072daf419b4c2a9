package interactions

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChainSkipsNonApplicableAndFallsThroughErrors(t *testing.T) {
	skipped := &stubStrategy{name: "skipped", applicable: false}
	failing := &stubStrategy{name: "failing", applicable: true, err: errors.New("boom")}
	winner := &stubStrategy{name: "winner", applicable: true, result: NewClassifierResult([]Finding{
		{Drug1: "a", Drug2: "b", Severity: SeverityModerate, Description: "x"},
	})}
	never := &stubStrategy{name: "never", applicable: true}

	chain := NewChain(nil, skipped, failing, winner, never)
	assert.Equal(t, []string{"skipped", "failing", "winner", "never"}, chain.Strategies())

	out := chain.Classify(context.Background(), []string{"a", "b"})

	assert.Equal(t, "winner", out.Strategy)
	assert.False(t, out.Remote)
	assert.Equal(t, SeverityModerate, out.Result.RiskLevel)
	assert.Equal(t, 0, skipped.calls)
	assert.Equal(t, 1, failing.calls)
	assert.Equal(t, 1, winner.calls)
	assert.Equal(t, 0, never.calls)
}

func TestChainWithoutSuccessReturnsZeroResult(t *testing.T) {
	chain := NewChain(nil, &stubStrategy{name: "f", applicable: true, err: errors.New("x")})

	out := chain.Classify(context.Background(), []string{"a", "b"})
	assert.Equal(t, StrategyNone, out.Strategy)
	assert.Equal(t, SeverityLow, out.Result.RiskLevel)
	assert.Equal(t, 0, out.Result.InteractionCount)
	assert.NotNil(t, out.Result.Details)
}

func TestTableStrategyEnumeratesPairsInOrder(t *testing.T) {
	s := NewTableStrategy(DefaultTable())
	assert.True(t, s.Applicable(nil))

	res, err := s.Classify(context.Background(), []string{"lisinopril", "warfarin", "metformin", "ibuprofen"})
	require.NoError(t, err)
	require.Equal(t, 2, res.InteractionCount)

	// (0,3) lisinopril+ibuprofen antes que (1,3) warfarin+ibuprofen
	assert.Equal(t, "lisinopril", res.Details[0].Drug1)
	assert.Equal(t, SeverityModerate, res.Details[0].Severity)
	assert.Equal(t, "warfarin", res.Details[1].Drug1)
	assert.Equal(t, SeverityHigh, res.Details[1].Severity)
	assert.Equal(t, SeverityHigh, res.RiskLevel)
}

func TestNewClassifierResultDerivesRisk(t *testing.T) {
	res := NewClassifierResult(nil)
	assert.Equal(t, SeverityLow, res.RiskLevel)
	assert.Equal(t, 0, res.InteractionCount)
	assert.Equal(t, []Finding{}, res.Details)

	res = NewClassifierResult([]Finding{
		{Severity: SeverityLow}, {Severity: SeverityHigh}, {Severity: SeverityModerate},
	})
	assert.Equal(t, SeverityHigh, res.RiskLevel)
	assert.Equal(t, 3, res.InteractionCount)
}

func TestMaxSeverity(t *testing.T) {
	assert.Equal(t, SeverityLow, MaxSeverity())
	assert.Equal(t, SeverityModerate, MaxSeverity(SeverityLow, SeverityModerate))
	assert.Equal(t, SeverityHigh, MaxSeverity(SeverityModerate, SeverityHigh, SeverityLow))
	assert.Equal(t, SeverityLow, MaxSeverity(Severity("bogus")))
}
