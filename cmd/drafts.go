package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/photo-memories/internal/database"
)

var draftsCmd = &cobra.Command{
	Use:   "drafts [draft-id]",
	Short: "List draft memories awaiting review",
	Long: `Lists the pending drafts newest first. With a draft ID, shows that draft
and all of its photos.

Examples:
  # List pending drafts
  photo-memories drafts

  # Show a single draft
  photo-memories drafts 0b7c1f0e-...`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDrafts,
}

func init() {
	rootCmd.AddCommand(draftsCmd)

	draftsCmd.Flags().Bool("json", false, "Output as JSON")
}

func draftTitle(d database.DraftEvent) string {
	if d.LocationName != nil && *d.LocationName != "" {
		return *d.LocationName
	}
	return "(no location)"
}

func runDrafts(cmd *cobra.Command, args []string) error {
	jsonOutput := mustGetBool(cmd, "json")
	ctx := context.Background()

	a, err := newApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	if len(args) == 1 {
		draft, err := a.review.Get(ctx, args[0])
		if err != nil {
			return err
		}
		if jsonOutput {
			return outputJSON(draft)
		}
		printDraft(a, *draft)
		return nil
	}

	drafts, err := a.review.ListPending(ctx)
	if err != nil {
		return err
	}
	if jsonOutput {
		if drafts == nil {
			drafts = []database.DraftEvent{}
		}
		return outputJSON(drafts)
	}

	if len(drafts) == 0 {
		fmt.Println("No drafts awaiting review. Run: photo-memories scan")
		return nil
	}

	fmt.Printf("%-36s  %-10s  %6s  %s\n", "ID", "DATE", "PHOTOS", "TITLE")
	for _, d := range drafts {
		fmt.Printf("%-36s  %-10s  %6d  %s\n", d.ID, d.Date.Local().Format("2006-01-02"), len(d.AssetIdentifiers), draftTitle(d))
	}
	fmt.Printf("\n%d drafts\n", len(drafts))
	return nil
}

func printDraft(a *app, d database.DraftEvent) {
	fmt.Printf("Draft:    %s\n", d.ID)
	fmt.Printf("Title:    %s\n", draftTitle(d))
	fmt.Printf("Date:     %s\n", d.Date.Local().Format("2006-01-02 15:04"))
	if d.Coordinate != nil {
		fmt.Printf("Location: %.5f, %.5f\n", d.Coordinate.Lat, d.Coordinate.Lng)
	}
	if d.Notes != nil {
		fmt.Printf("Notes:    %s\n", strings.ReplaceAll(*d.Notes, "\n", "\n          "))
	}
	fmt.Printf("Photos:   %d\n", len(d.AssetIdentifiers))
	for _, id := range d.AssetIdentifiers {
		if link := a.cfg.PhotoPrism.PhotoURL(id); link != "" {
			fmt.Printf("  %s\n", link)
		} else {
			fmt.Printf("  %s\n", id)
		}
	}
}
