package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/raildocs-labs/raildocs-cli/internal/core/domain"
	"github.com/raildocs-labs/raildocs-cli/internal/core/ports/driving"
)

var (
	analyzeLanguage string
	analyzeMode     string
	analyzeJSON     bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file...>",
	Short: "Analyse OCR-extracted document text",
	Long: `Runs the analysis pipeline over one or more pre-extracted text files:
chunked summarisation, railway category classification, and key
information extraction. Without model credentials the deterministic
rule-based pipeline is used.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeLanguage, "language", "l", "eng+mal", "OCR language the text was extracted with")
	analyzeCmd.Flags().StringVarP(&analyzeMode, "classification", "c", "railway", "classification mode (railway or none)")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "output the result as JSON")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	if analysisService == nil || textExtractor == nil {
		return errors.New("analysis service not configured")
	}

	ctx := context.Background()

	doc, err := textExtractor.Extract(ctx, args, analyzeLanguage)
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	result, err := analysisService.Process(ctx, doc, driving.ProcessOptions{
		OCRLanguage:        analyzeLanguage,
		ClassificationMode: analyzeMode,
		FilesProcessed:     len(args),
	})
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	if analyzeJSON {
		return outputResultJSON(cmd, result)
	}
	return outputResultText(cmd, result)
}

func outputResultJSON(cmd *cobra.Command, result *domain.AnalysisResult) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputResultText(cmd *cobra.Command, result *domain.AnalysisResult) error {
	cmd.Printf("Result ID:     %s\n", result.ID)
	cmd.Printf("Document type: %s\n", result.DocumentType)
	cmd.Printf("Mode:          %s", result.Metadata.ProcessingMode)
	if result.Degraded() {
		cmd.Printf(" (degraded)")
	}
	cmd.Println()
	cmd.Println()

	cmd.Println("Summary:")
	cmd.Println(result.Summary)
	cmd.Println()

	if len(result.Classification) > 0 {
		cmd.Println("Classification:")
		for _, cs := range result.Classification {
			cmd.Printf("  %-28s %5.1f%%", cs.Category.Display(), cs.Confidence*100)
			if cs.MetroRelevance > 0 {
				cmd.Printf("  (metro relevance %.0f%%)", cs.MetroRelevance*100)
			}
			cmd.Println()
		}
		cmd.Println()
	}

	printed := false
	for _, label := range []string{"names", "dates", "organizations", "locations", "contact_info"} {
		values := result.KeyInformation[label]
		if len(values) == 0 {
			continue
		}
		if !printed {
			cmd.Println("Key information:")
			printed = true
		}
		cmd.Printf("  %s:", label)
		for _, v := range values {
			cmd.Printf(" %s;", v)
		}
		cmd.Println()
	}

	return nil
}
