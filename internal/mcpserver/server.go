// Package mcpserver expone el analizador de interacciones como herramientas MCP.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"safedose-api/internal/domain/interactions"
	"safedose-api/internal/platform/logger"
)

const (
	ToolCheckInteractions = "check_drug_interactions"
	ToolNormalize         = "normalize_medication"
)

type CheckInteractionsParams struct {
	Medications []string `json:"medications" jsonschema:"medication names as the user wrote them (brand, generic or misspelled)"`
}

type NormalizeParams struct {
	Name string `json:"name" jsonschema:"medication name to normalize"`
}

type Server struct {
	svc *interactions.Service
	log logger.Logger
	mcp *mcp.Server
}

func New(svc *interactions.Service, version string, log logger.Logger) *Server {
	if log == nil {
		log = logger.NewNop()
	}
	s := &Server{
		svc: svc,
		log: log.With(map[string]any{"component": "mcp"}),
	}

	s.mcp = mcp.NewServer(&mcp.Implementation{Name: "safedose", Version: version}, nil)
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        ToolCheckInteractions,
		Description: "Check a medication list for dangerous drug-drug interactions and return the overall risk level.",
	}, s.handleCheckInteractions)
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        ToolNormalize,
		Description: "Map a brand or misspelled medication name to its canonical generic name and category.",
	}, s.handleNormalize)

	return s
}

// Run atiende por stdio hasta que ctx se cancela o el cliente cierra.
func (s *Server) Run(ctx context.Context) error {
	s.log.Info("mcp server listening on stdio", nil)
	if err := s.mcp.Run(ctx, &mcp.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("mcp server: %w", err)
	}
	return nil
}

func (s *Server) handleCheckInteractions(ctx context.Context, _ *mcp.CallToolRequest, params CheckInteractionsParams) (*mcp.CallToolResult, any, error) {
	s.log.Debug("tool invoked", map[string]any{"tool": ToolCheckInteractions, "medications": len(params.Medications)})

	res, err := s.svc.Analyze(ctx, params.Medications)
	if err != nil {
		var ve *interactions.ValidationError
		if errors.As(err, &ve) {
			return errorResult(ve.Error()), nil, nil
		}
		return nil, nil, err
	}
	return jsonResult(res), res, nil
}

func (s *Server) handleNormalize(_ context.Context, _ *mcp.CallToolRequest, params NormalizeParams) (*mcp.CallToolResult, any, error) {
	s.log.Debug("tool invoked", map[string]any{"tool": ToolNormalize})

	if strings.TrimSpace(params.Name) == "" {
		return errorResult("name is required"), nil, nil
	}
	entry := s.svc.Entry(params.Name)
	return jsonResult(entry), entry, nil
}

func jsonResult(v any) *mcp.CallToolResult {
	b, err := json.Marshal(v)
	if err != nil {
		return errorResult(err.Error())
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(b)}},
	}
}

func errorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: "Error: " + msg}},
		IsError: true,
	}
}
