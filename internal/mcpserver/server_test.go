package mcpserver

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"safedose-api/internal/domain/interactions"
)

func newTestServer() *Server {
	return New(interactions.NewService(interactions.Options{Mode: interactions.ModeTable}), "test", nil)
}

func textOf(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.Len(t, res.Content, 1)
	tc, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	return tc.Text
}

func TestCheckInteractionsTool(t *testing.T) {
	s := newTestServer()

	res, out, err := s.handleCheckInteractions(context.Background(), nil, CheckInteractionsParams{
		Medications: []string{"Coumadin", "Advil"},
	})
	require.NoError(t, err)
	assert.False(t, res.IsError)

	analysis, ok := out.(interactions.AnalysisResult)
	require.True(t, ok)
	assert.Equal(t, interactions.SeverityHigh, analysis.RiskLevel)

	var decoded interactions.AnalysisResult
	require.NoError(t, json.Unmarshal([]byte(textOf(t, res)), &decoded))
	assert.Equal(t, analysis.InteractionCount, decoded.InteractionCount)
}

func TestCheckInteractionsToolRejectsInvalidUTF8(t *testing.T) {
	s := newTestServer()

	res, out, err := s.handleCheckInteractions(context.Background(), nil, CheckInteractionsParams{
		Medications: []string{"warfarin", string([]byte{0xff, 0xfe})},
	})
	require.NoError(t, err)
	assert.Nil(t, out)
	assert.True(t, res.IsError)
	assert.Contains(t, textOf(t, res), "UTF-8")
}

func TestNormalizeTool(t *testing.T) {
	s := newTestServer()

	res, out, err := s.handleNormalize(context.Background(), nil, NormalizeParams{Name: "Tylenol"})
	require.NoError(t, err)
	entry, ok := out.(interactions.MedicationEntry)
	require.True(t, ok)
	assert.Equal(t, "acetaminophen", entry.NormalizedName)
	assert.True(t, entry.IsRecognized)
	assert.Contains(t, textOf(t, res), `"normalized_name":"acetaminophen"`)

	res, _, err = s.handleNormalize(context.Background(), nil, NormalizeParams{Name: "  "})
	require.NoError(t, err)
	assert.True(t, res.IsError)
}
