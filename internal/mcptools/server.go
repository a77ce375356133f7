package mcptools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dusk-indust/fireline/internal/analysis"
	"github.com/dusk-indust/fireline/internal/completion"
)

// version is set by the linker at build time.
var version = "dev"

// NewServer creates an MCP server with the 4 fireline tools registered:
// validate_template, classify_sections, plan_order, and analyze_transcript.
func NewServer(svc completion.Service, cfg analysis.Config) *mcp.Server {
	service := NewAnalysisService(svc, cfg)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "fireline",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "validate_template",
		Description: "Validate an analysis template: structure, dependency resolution, and cycles. Returns graph statistics and lenient-mode warnings.",
	}, service.ValidateTemplate)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "classify_sections",
		Description: "Classify a template's sections into the three coarse batch stages, with the signal and confidence behind each placement.",
	}, service.ClassifySections)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "plan_order",
		Description: "Compute the cascade processing order, the concurrent waves, and a Mermaid diagram of the dependency graph.",
	}, service.PlanOrder)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "analyze_transcript",
		Description: "Run a full multi-pass analysis of an incident transcript and return the structured results.",
	}, service.AnalyzeTranscript)

	return server
}

// RunStdio runs the MCP server on stdio transport, blocking until stdin is
// closed or the context is cancelled.
func RunStdio(ctx context.Context, server *mcp.Server) error {
	return server.Run(ctx, &mcp.StdioTransport{})
}
