package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"rental-terms-qa/internal/app"
	"rental-terms-qa/internal/dto"
	"rental-terms-qa/internal/mcpserver"
	"rental-terms-qa/internal/models"
	"rental-terms-qa/internal/tui"
	"rental-terms-qa/pkg/config"
	"rental-terms-qa/pkg/logger"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const version = "1.0.0"

var (
	jsonOutput bool
	topK       int
	chatLog    string
)

var rootCmd = &cobra.Command{
	Use:          "rentalqa",
	Short:        "Ask questions about car rental terms",
	SilenceUsage: true,
}

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a single question and exit",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive chat in the terminal",
	RunE:  runChat,
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the ask_rental_terms tool over MCP stdio",
	RunE:  runMCP,
}

func init() {
	askCmd.Flags().BoolVar(&jsonOutput, "json", false, "print the answer as JSON")
	askCmd.Flags().IntVar(&topK, "top-k", 0, "number of sections to retrieve (default: RAG_TOP_K)")
	chatCmd.Flags().StringVar(&chatLog, "log-file", "rentalqa-chat.log", "log destination while the chat owns the terminal")

	rootCmd.AddCommand(askCmd, chatCmd, mcpCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// setup loads configuration and builds the application. logOutput overrides LOG_OUTPUT when set.
func setup(ctx context.Context, logOutput string) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if logOutput != "" {
		cfg.Logger.Output = logOutput
	}

	if err := logger.Init(cfg.Logger.Level, cfg.Logger.Output); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return app.New(ctx, cfg, logger.Get())
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	application, err := setup(ctx, "")
	if err != nil {
		return err
	}
	defer logger.Sync()
	defer application.Close()

	k := topK
	if k < 1 {
		k = application.Config.RAG.TopK
	}

	question := strings.Join(args, " ")
	answer, err := application.QA.AnswerWithTopK(ctx, question, k)
	if err != nil {
		application.Logger.Error("Failed to answer question", zap.Error(err))
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(dto.NewAskResponse(answer))
	}

	printAnswer(cmd, answer)
	return nil
}

func printAnswer(cmd *cobra.Command, answer *models.QueryAnswer) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, answer.Answer)
	fmt.Fprintln(out)
	if len(answer.Sources) == 0 {
		fmt.Fprintf(out, "No sources (%s)\n", answer.Status)
		return
	}
	fmt.Fprintln(out, "Sources:")
	for i, s := range answer.Sources {
		fmt.Fprintf(out, "  [%d] %s / %s - %s (similarity: %.3f)\n",
			i+1, s.Country, s.VehicleType, s.Section.Title(), s.SimilarityScore)
	}
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	application, err := setup(ctx, chatLog)
	if err != nil {
		return err
	}
	defer logger.Sync()
	defer application.Close()

	model := tui.New(ctx, application.QA, application.Index.Load)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = program.Run()
	return err
}

func runMCP(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	// stdout carries JSON-RPC, so logs must never go there
	application, err := setup(ctx, "stderr")
	if err != nil {
		return err
	}
	defer logger.Sync()
	defer application.Close()

	if application.Config.Embedding.Preload {
		application.Preload(ctx)
	}

	s := mcpserver.New(application.QA, version, application.Config.RAG.TopK, application.Logger)
	application.Logger.Info("MCP server listening on stdio", zap.String("tool", mcpserver.ToolName))
	return mcpserver.Serve(s)
}
