package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mekonnen/cv-studio/internal/batch"
	"github.com/mekonnen/cv-studio/internal/compose"
	"github.com/mekonnen/cv-studio/internal/layout"
	"github.com/mekonnen/cv-studio/internal/record"
)

var (
	generateOut    string
	generateAgency string
)

var generateCmd = &cobra.Command{
	Use:   "generate <record.json> <template.json>...",
	Short: "Generate documents offline",
	Long:  `Generate one PDF per template file from a candidate record file, without a database or server.`,
	Args:  cobra.MinimumNArgs(2),
	RunE:  runGenerate,
}

func init() {
	generateCmd.Flags().StringVar(&generateOut, "out", "out", "Output directory for generated PDFs")
	generateCmd.Flags().StringVar(&generateAgency, "agency", "PIXEL", "Agency label used in output filenames")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	rec := record.New()
	if err := readJSON(args[0], rec); err != nil {
		return fmt.Errorf("failed to read record: %w", err)
	}

	var templates []*layout.Template
	for _, path := range args[1:] {
		var tpl layout.Template
		if err := readJSON(path, &tpl); err != nil {
			return fmt.Errorf("failed to read template %s: %w", path, err)
		}
		templates = append(templates, &tpl)
	}

	run := batch.New(compose.New(compose.NewHTTPResolver()), batch.DirSink{Dir: generateOut}, nil)
	summary := run.Run(context.Background(), templates, rec, nil, generateAgency, "")

	fmt.Fprintf(cmd.OutOrStdout(), "Generated %d document(s), %d failed\n", summary.Generated, summary.Failed)
	for _, f := range summary.Failures {
		fmt.Fprintf(cmd.ErrOrStderr(), "  %s (%s): %v\n", f.TemplateName, f.TemplateID, f.Err)
	}
	if summary.Generated == 0 && summary.Failed > 0 {
		return fmt.Errorf("all templates failed")
	}
	return nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}
