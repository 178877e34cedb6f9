package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"alfredoptarigan/resume-tailor/internal/logger"
	"alfredoptarigan/resume-tailor/internal/services"
)

var parseCmd = &cobra.Command{
	Use:   "parse <file>",
	Short: "Extract a résumé with the configured model",
	Long:  "Extract a résumé file and print the validated summary, skills, jobs and education as JSON. Nothing is stored.",
	Args:  cobra.ExactArgs(1),
	RunE:  runParse,
}

var parseProvider string

func init() {
	parseCmd.Flags().StringVar(&parseProvider, "provider", "", "LLM provider (gemini or openai); overrides LLM_PROVIDER")
	rootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	cfg, zl, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = zl.Sync() }()

	if parseProvider != "" {
		cfg.LLM.Provider = parseProvider
	}

	text, err := readDocument(args[0])
	if err != nil {
		return err
	}

	gateway, err := services.NewLLMGateway(cfg.LLM, logger.WithCommonFields(zl, cfg.LLM.Provider, cfg.LLM.Model))
	if err != nil {
		return err
	}

	parsed, err := services.ParseResumeText(cmd.Context(), gateway, services.MustNewResponseValidator(), text)
	if err != nil {
		if raw, ok := services.RawPayload(err); ok {
			zl.Error("❌ model output rejected", zap.Error(err), logger.RawPayload(raw))
		}
		return err
	}

	out, err := json.MarshalIndent(parsed, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return err
}
