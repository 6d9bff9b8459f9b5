// Package mcpserver exposes rental terms question answering as an MCP tool over stdio.
package mcpserver

import (
	"context"
	"fmt"
	"strings"

	"rental-terms-qa/internal/models"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
)

const ToolName = "ask_rental_terms"

// Answerer is the part of service.QAService the tool needs.
type Answerer interface {
	AnswerWithTopK(ctx context.Context, question string, topK int) (*models.QueryAnswer, error)
}

type handler struct {
	qa          Answerer
	defaultTopK int
	logger      *zap.Logger
}

// New builds an MCP server with the ask_rental_terms tool registered.
func New(qa Answerer, version string, defaultTopK int, logger *zap.Logger) *server.MCPServer {
	s := server.NewMCPServer(
		"rental-terms-qa",
		version,
		server.WithToolCapabilities(true),
	)

	askTool := mcp.NewTool(ToolName,
		mcp.WithDescription("Answer a question about car rental terms and conditions (age limits, payment, insurance, driving areas, extras, fees, VAT). Returns the answer and the rental terms sections it was based on."),
		mcp.WithString("question",
			mcp.Required(),
			mcp.Description("The customer's question about rental terms")),
		mcp.WithNumber("top_k",
			mcp.Description(fmt.Sprintf("Number of rental terms sections to retrieve (default: %d)", defaultTopK))),
	)

	h := &handler{qa: qa, defaultTopK: defaultTopK, logger: logger}
	s.AddTool(askTool, h.handleAsk)

	return s
}

// Serve blocks serving s on stdin/stdout until the client disconnects.
func Serve(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

func (h *handler) handleAsk(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("invalid arguments"), nil
	}

	question, ok := args["question"].(string)
	if !ok || strings.TrimSpace(question) == "" {
		return mcp.NewToolResultError("question parameter is required"), nil
	}

	topK := h.defaultTopK
	if v, ok := args["top_k"].(float64); ok && v >= 1 {
		topK = int(v)
	}

	answer, err := h.qa.AnswerWithTopK(ctx, question, topK)
	if err != nil {
		h.logger.Error("MCP ask failed", zap.Error(err))
		return mcp.NewToolResultError(fmt.Sprintf("failed to answer question: %v", err)), nil
	}

	return mcp.NewToolResultText(formatAnswer(answer)), nil
}

func formatAnswer(answer *models.QueryAnswer) string {
	var b strings.Builder
	fmt.Fprintf(&b, "question: %s\n\n", answer.Question)
	fmt.Fprintf(&b, "answer:\n%s\n\n", answer.Answer)
	fmt.Fprintf(&b, "status: %s\n", answer.Status)
	if answer.Error != "" {
		fmt.Fprintf(&b, "error: %s\n", answer.Error)
	}

	b.WriteString("\nsources:\n")
	if len(answer.Sources) == 0 {
		b.WriteString("  none\n")
	}
	for i, s := range answer.Sources {
		fmt.Fprintf(&b, "  [%d] %s / %s - %s (similarity: %.3f)\n",
			i+1, s.Country, s.VehicleType, s.Section.Title(), s.SimilarityScore)
	}
	return b.String()
}
