package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/raildocs-labs/raildocs-cli/internal/core/domain"
)

var chatResultID string

var chatCmd = &cobra.Command{
	Use:   "chat <message>",
	Short: "Ask a question about an analysed document",
	Long: `Answers a question against a stored analysis result. With --result
the question targets that result; otherwise the most recent stored
result is used. Without model credentials the deterministic responder
answers from the stored fields.`,
	Args: cobra.ExactArgs(1),
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVarP(&chatResultID, "result", "r", "", "analysis result ID to ask about")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	if chatService == nil {
		return errors.New("chat service not configured")
	}

	ctx := context.Background()

	result, err := lookupResult(ctx, chatResultID)
	if err != nil {
		return err
	}

	answer, err := chatService.Respond(ctx, args[0], result, nil)
	if err != nil {
		return fmt.Errorf("chat failed: %w", err)
	}

	cmd.Println(answer)
	return nil
}

// lookupResult resolves the target analysis result: by ID when given,
// otherwise the most recent stored one. A missing store or an empty store
// yields nil, which the chat service answers with generic guidance.
func lookupResult(ctx context.Context, id string) (*domain.AnalysisResult, error) {
	if resultStore == nil {
		return nil, nil
	}

	if id != "" {
		result, err := resultStore.Get(ctx, id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, fmt.Errorf("no analysis result with ID %s", id)
			}
			return nil, err
		}
		return result, nil
	}

	results, err := resultStore.List(ctx)
	if err != nil || len(results) == 0 {
		return nil, err
	}
	return &results[0], nil
}
