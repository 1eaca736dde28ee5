package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/photo-memories/internal/database"
	"github.com/kozaktomas/photo-memories/internal/importer"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show scan progress and review counts",
	Long:  `Displays the saved scan checkpoint and the number of pending drafts, decided photos and life events.`,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().Bool("json", false, "Output as JSON")
}

// statusReport is the output of the status command.
type statusReport struct {
	Scan           importer.ScanState `json:"scan"`
	PendingDrafts  int                `json:"pendingDrafts"`
	ImportedAssets int                `json:"importedAssets"`
	LifeEvents     int                `json:"lifeEvents"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	jsonOutput := mustGetBool(cmd, "json")
	ctx := context.Background()

	a, err := newApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	state, err := a.engine.Status(ctx)
	if err != nil {
		return fmt.Errorf("failed to read scan state: %w", err)
	}

	drafts, err := a.store.ListDrafts(ctx, database.StatusPending)
	if err != nil {
		return fmt.Errorf("failed to list drafts: %w", err)
	}
	imported, err := a.store.CountImportedAssets(ctx)
	if err != nil {
		return fmt.Errorf("failed to count imported photos: %w", err)
	}
	events, err := a.store.ListEvents(ctx)
	if err != nil {
		return fmt.Errorf("failed to list events: %w", err)
	}

	report := statusReport{
		Scan:           state,
		PendingDrafts:  len(drafts),
		ImportedAssets: imported,
		LifeEvents:     len(events),
	}
	if jsonOutput {
		return outputJSON(report)
	}

	switch {
	case state.IsScanning:
		fmt.Println("Scan:            interrupted (process stopped while scanning)")
	case state.Resuming():
		fmt.Println("Scan:            paused, the next scan resumes")
	default:
		fmt.Println("Scan:            idle")
	}
	if state.LastScannedDate != nil {
		fmt.Printf("Resume before:   %s\n", state.LastScannedDate.Local().Format("2006-01-02 15:04"))
	}
	fmt.Printf("Photos scanned:  %d\n", state.ScannedCount)
	fmt.Printf("Pending drafts:  %d\n", report.PendingDrafts)
	fmt.Printf("Decided photos:  %d\n", report.ImportedAssets)
	fmt.Printf("Life events:     %d\n", report.LifeEvents)
	return nil
}
