// Package cli implements the raildocs command line interface with cobra.
// Commands delegate to the core services injected via SetServices; the
// package itself holds no business logic.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/raildocs-labs/raildocs-cli/internal/core/ports/driven"
	"github.com/raildocs-labs/raildocs-cli/internal/core/ports/driving"
	"github.com/raildocs-labs/raildocs-cli/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

var verbose bool

// Injected collaborators. Nil services make the affected commands fail
// with a clear error instead of panicking.
var (
	analysisService driving.AnalysisService
	chatService     driving.ChatService
	resultStore     driven.AnalysisStore
	textExtractor   driven.TextExtractor
	modelName       string
)

// Services bundles everything the commands need.
type Services struct {
	Analysis  driving.AnalysisService
	Chat      driving.ChatService
	Store     driven.AnalysisStore
	Extractor driven.TextExtractor

	// ModelName is reported by health and version output; empty means the
	// pipeline runs in fallback mode.
	ModelName string
}

// SetServices injects the service implementations used by the commands.
// Must be called before Execute.
func SetServices(s Services) {
	analysisService = s.Analysis
	chatService = s.Chat
	resultStore = s.Store
	textExtractor = s.Extractor
	modelName = s.ModelName
}

var rootCmd = &cobra.Command{
	Use:   "raildocs",
	Short: "Railway document analysis toolkit",
	Long: `raildocs analyses OCR-extracted railway documents: it produces a
document summary, classifies the content against railway operations
categories, extracts key information, and answers questions about the
result. Without model credentials it runs a deterministic rule-based
pipeline instead of failing.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
