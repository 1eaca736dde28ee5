package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Forget scan progress and review decisions",
	Long: `Deletes every draft, the record of accepted and rejected photos and the
scan checkpoint, so the next scan starts from scratch. Life events are kept.

With --progress-only only the scan checkpoint is cleared.`,
	RunE: runReset,
}

func init() {
	rootCmd.AddCommand(resetCmd)

	resetCmd.Flags().Bool("progress-only", false, "Only clear the scan checkpoint")
}

func runReset(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a, err := newApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	if mustGetBool(cmd, "progress-only") {
		if err := a.engine.ResetProgress(ctx); err != nil {
			return err
		}
		fmt.Println("Scan progress cleared")
		return nil
	}

	if err := a.engine.ResetAnalysisHistory(ctx); err != nil {
		return err
	}
	fmt.Println("Drafts, review decisions and scan progress cleared")
	return nil
}
