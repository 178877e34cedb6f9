package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"alfredoptarigan/resume-tailor/internal/services"
)

var extractCmd = &cobra.Command{
	Use:   "extract <file>",
	Short: "Print the normalized text of a PDF or DOCX résumé",
	Args:  cobra.ExactArgs(1),
	RunE:  runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	text, err := readDocument(args[0])
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), text)
	return err
}

func extractText(data []byte, path string) (string, error) {
	mimeType := services.ResolveMimeType("", filepath.Base(path), data)
	return services.NewTextExtractor().Extract(data, mimeType)
}
