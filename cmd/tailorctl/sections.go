package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"alfredoptarigan/resume-tailor/internal/services"
)

var sectionsCmd = &cobra.Command{
	Use:   "sections <file>",
	Short: "Split a résumé into titled sections",
	Long:  "Extract a résumé and print its heading-based section breakdown as JSON.",
	Args:  cobra.ExactArgs(1),
	RunE:  runSections,
}

func init() {
	rootCmd.AddCommand(sectionsCmd)
}

func runSections(cmd *cobra.Command, args []string) error {
	text, err := readDocument(args[0])
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(services.StructuredResume{
		Sections: services.StructureResume(text),
		RawText:  text,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return err
}
