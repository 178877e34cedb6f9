// Command tailorctl runs the résumé pipeline stages from the command line.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"alfredoptarigan/resume-tailor/internal/config"
	"alfredoptarigan/resume-tailor/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:   "tailorctl",
	Short: "Resume Tailor command line tools",
	Long:  "tailorctl extracts, structures and parses résumé files locally, and bulk-ingests them into the resume store.",
}

var verbose bool

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// setup loads configuration and builds the CLI logger.
func setup() (*config.Config, *zap.Logger, error) {
	cfg := config.Load()

	zl, err := logger.New(false, verbose || cfg.Log.Debug)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return cfg, zl, nil
}

func readDocument(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return extractText(data, path)
}
