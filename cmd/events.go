package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/photo-memories/internal/database"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "List accepted life events",
	RunE:  runEvents,
}

func init() {
	rootCmd.AddCommand(eventsCmd)

	eventsCmd.Flags().Bool("json", false, "Output as JSON")
}

func runEvents(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a, err := newApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	events, err := a.review.Events(ctx)
	if err != nil {
		return err
	}
	if mustGetBool(cmd, "json") {
		if events == nil {
			events = []database.LifeEvent{}
		}
		return outputJSON(events)
	}

	if len(events) == 0 {
		fmt.Println("No life events yet")
		return nil
	}
	for _, e := range events {
		fmt.Printf("%s  %-12s  %-30s  %d photos\n", e.Date.Local().Format("2006-01-02"), e.Category, e.Title, len(e.PhotoIDs))
	}
	return nil
}
