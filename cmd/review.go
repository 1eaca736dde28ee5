package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/photo-memories/internal/database"
	"github.com/kozaktomas/photo-memories/internal/review"
)

var acceptCmd = &cobra.Command{
	Use:   "accept <draft-id>",
	Short: "Accept a draft as a life event",
	Long: `Turns a draft into a permanent life event. The selected photos are
recorded as imported and never drafted again; unselected photos of the
draft become eligible for future scans.

Examples:
  # Accept with the default selection (first 20 photos)
  photo-memories accept 0b7c1f0e-...

  # Pick photos, category and notes
  photo-memories accept 0b7c1f0e-... --assets pq1,pq7 --category Travel --notes "Summer holiday"`,
	Args: cobra.ExactArgs(1),
	RunE: runAccept,
}

var rejectCmd = &cobra.Command{
	Use:   "reject <draft-id>",
	Short: "Reject a draft",
	Long:  `Deletes a draft and records all of its photos so they are never drafted again.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runReject,
}

func init() {
	rootCmd.AddCommand(acceptCmd)
	rootCmd.AddCommand(rejectCmd)

	categories := make([]string, len(database.Categories))
	for i, c := range database.Categories {
		categories[i] = string(c)
	}
	acceptCmd.Flags().StringSlice("assets", nil, "Photo IDs to keep (default: the draft's photos)")
	acceptCmd.Flags().String("category", string(database.CategoryEvent), "Event category: "+strings.Join(categories, ", "))
	acceptCmd.Flags().String("notes", "", "Notes to put before the generated notes")
	acceptCmd.Flags().Bool("json", false, "Output the created event as JSON")
}

func runAccept(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a, err := newApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	event, err := a.review.Accept(ctx, args[0], review.AcceptOptions{
		AssetIDs: mustGetStringSlice(cmd, "assets"),
		Category: mustGetString(cmd, "category"),
		Notes:    mustGetString(cmd, "notes"),
	})
	if err != nil {
		return fmt.Errorf("failed to accept draft: %w", err)
	}

	if mustGetBool(cmd, "json") {
		return outputJSON(event)
	}
	fmt.Printf("Created event %s: %s (%s, %d photos)\n", event.ID, event.Title, event.Category, len(event.PhotoIDs))
	return nil
}

func runReject(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a, err := newApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.review.Reject(ctx, args[0]); err != nil {
		return fmt.Errorf("failed to reject draft: %w", err)
	}
	fmt.Printf("Rejected draft %s\n", args[0])
	return nil
}
