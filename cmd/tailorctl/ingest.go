package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"alfredoptarigan/resume-tailor/internal/config"
	"alfredoptarigan/resume-tailor/internal/logger"
	"alfredoptarigan/resume-tailor/internal/repositories"
	"alfredoptarigan/resume-tailor/internal/services"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <file-or-dir>...",
	Short: "Parse résumé files and store them as resumes",
	Long:  "Parse every PDF and DOCX given (directories are walked) and store each as a resume record awaiting payment.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runIngest,
}

var ingestConcurrency int

func init() {
	ingestCmd.Flags().IntVarP(&ingestConcurrency, "concurrency", "c", 0, "Files parsed in parallel (default INGEST_CONCURRENCY)")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg, zl, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = zl.Sync() }()

	paths, err := collectDocuments(args)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no PDF or DOCX files found")
	}

	db, err := config.InitDatabase(cfg)
	if err != nil {
		return err
	}

	resumeRepo := repositories.NewResumeRepository(db)
	payments := services.NewPaymentService(
		resumeRepo,
		repositories.NewPurchaseRepository(db),
		cfg.Payment.TokenSecret,
		cfg.Payment.TokenTTL,
		cfg.Payment.StripeWebhookSecret,
		zl,
	)

	llmLog := logger.WithCommonFields(zl, cfg.LLM.Provider, cfg.LLM.Model)
	gateway, err := services.NewLLMGateway(cfg.LLM, llmLog)
	if err != nil {
		return err
	}

	resumes := services.NewResumeService(
		resumeRepo,
		services.NewTextExtractor(),
		gateway,
		services.MustNewResponseValidator(),
		payments,
		llmLog,
	)

	concurrency := ingestConcurrency
	if concurrency <= 0 {
		concurrency = cfg.Ingest.Concurrency
	}

	results := services.NewIngestWorker(resumes, concurrency, zl).Run(cmd.Context(), paths)

	failed := 0
	out := cmd.OutOrStdout()
	for _, res := range results {
		if res.Err != nil {
			failed++
			fmt.Fprintf(out, "FAIL  %s  %v\n", res.Path, res.Err)
			continue
		}
		fmt.Fprintf(out, "OK    %s  resume=%s jobs=%d\n", res.Path, res.ResumeID, res.Jobs)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(results))
	}
	return nil
}

// collectDocuments expands directories into the PDF and DOCX files they contain.
func collectDocuments(args []string) ([]string, error) {
	var paths []string

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", arg, err)
		}

		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}

		err = filepath.WalkDir(arg, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			switch strings.ToLower(filepath.Ext(path)) {
			case ".pdf", ".docx":
				paths = append(paths, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk %s: %w", arg, err)
		}
	}

	return paths, nil
}
