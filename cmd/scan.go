package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/kozaktomas/photo-memories/internal/importer"
	"github.com/kozaktomas/photo-memories/internal/photos"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan the photo library for new memories",
	Long: `Scan the PhotoPrism library newest first and create a draft memory for
every day with enough photos. Photos that were already accepted, rejected or
drafted are skipped.

The scan checkpoints its progress. Interrupt it with Ctrl+C and the next run
resumes where it stopped.

Examples:
  # Scan with a progress bar
  photo-memories scan

  # Print the result as JSON
  photo-memories scan --json`,
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().Bool("json", false, "Output the scan result as JSON")
}

// scanProgress renders engine progress as a progress bar created once the
// number of fetched assets is known.
type scanProgress struct {
	bar *progressbar.ProgressBar
}

func (p *scanProgress) update(info importer.ProgressInfo) {
	switch info.Phase {
	case "fetching":
		fmt.Println(info.Message)
	case "scanning":
		if p.bar == nil {
			p.bar = progressbar.NewOptions(info.Total,
				progressbar.OptionSetDescription("Scanning library"),
				progressbar.OptionShowCount(),
				progressbar.OptionShowIts(),
				progressbar.OptionSetItsString("photos"),
				progressbar.OptionShowElapsedTimeOnFinish(),
				progressbar.OptionSetPredictTime(true),
				progressbar.OptionFullWidth(),
			)
		}
		_ = p.bar.Set(info.Current)
	case "done":
		if p.bar != nil {
			_ = p.bar.Finish()
			fmt.Println()
		}
	}
}

func runScan(cmd *cobra.Command, args []string) error {
	jsonOutput := mustGetBool(cmd, "json")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	var opts importer.ScanOptions
	if !jsonOutput {
		progress := &scanProgress{}
		opts.OnProgress = progress.update
	}

	result, err := a.engine.ScanLibrary(ctx, opts)
	switch {
	case errors.Is(err, context.Canceled):
		fmt.Println("\nScan interrupted, progress saved. Run scan again to resume.")
		return nil
	case errors.Is(err, photos.ErrPermissionDenied):
		return errors.New("PhotoPrism refused access to the library, check PHOTOPRISM_USERNAME and PHOTOPRISM_PASSWORD")
	case err != nil:
		return fmt.Errorf("scan failed: %w", err)
	}

	if jsonOutput {
		return outputJSON(result)
	}

	if result.Resumed {
		fmt.Println("Resumed an interrupted scan")
	}
	fmt.Printf("Photos fetched:     %d\n", result.Fetched)
	fmt.Printf("Photos skipped:     %d\n", result.Skipped)
	fmt.Printf("Days processed:     %d\n", result.ClustersProcessed)
	fmt.Printf("Days discarded:     %d\n", result.ClustersDiscarded)
	fmt.Printf("Drafts created:     %d\n", result.DraftsCreated)
	if result.DraftsFailed > 0 {
		fmt.Printf("Drafts not stored:  %d (retried on the next full scan)\n", result.DraftsFailed)
	}
	fmt.Printf("Duration:           %s\n", result.Duration.Round(time.Millisecond))
	if result.DraftsCreated > 0 {
		fmt.Println("\nReview them with: photo-memories drafts")
	}
	return nil
}
