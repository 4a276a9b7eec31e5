package cli

import (
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Printf("raildocs version %s\n", version)
		if modelName != "" {
			cmd.Printf("model: %s\n", modelName)
		}
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
