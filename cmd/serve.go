package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/photo-memories/internal/scheduler"
	"github.com/kozaktomas/photo-memories/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web API",
	Long: `Start the Photo Memories web API.
The API runs library scans with live progress over server-sent events and
exposes the draft review queue. With SCAN_SCHEDULE set (a cron spec such as
"0 3 * * *" or "@every 6h") scans also run periodically.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 0, "Port to listen on (default WEB_PORT or 8080)")
	serveCmd.Flags().String("host", "", "Host to bind to (default WEB_HOST or 0.0.0.0)")
	serveCmd.Flags().String("schedule", "", "Cron spec for periodic scans (default SCAN_SCHEDULE)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := newApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	if port := mustGetInt(cmd, "port"); port > 0 {
		a.cfg.Web.Port = port
	}
	if host := mustGetString(cmd, "host"); host != "" {
		a.cfg.Web.Host = host
	}
	if schedule := mustGetString(cmd, "schedule"); schedule != "" {
		a.cfg.ScanSchedule = schedule
	}

	var sched *scheduler.Service
	if a.cfg.ScanSchedule != "" {
		sched, err = scheduler.New(a.cfg.ScanSchedule, a.engine, a.log)
		if err != nil {
			return err
		}
		if err := sched.Start(ctx); err != nil {
			return fmt.Errorf("starting scheduler: %w", err)
		}
		fmt.Printf("Scheduled scans: %s (next %s)\n", a.cfg.ScanSchedule, sched.Next().Local().Format(time.DateTime))
	}

	deps := web.Dependencies{
		Engine:   a.engine,
		Store:    a.store,
		Review:   a.review,
		Gatherer: a.registry,
		Log:      a.log,
	}
	if a.thumbs != nil {
		deps.Thumbnails = a.thumbs
	}
	server := web.NewServer(a.cfg, deps)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")
		if sched != nil {
			sched.Stop()
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			fmt.Printf("Error during shutdown: %v\n", err)
		}
	}()

	fmt.Printf("Starting Photo Memories API on http://%s:%d\n", a.cfg.Web.Host, a.cfg.Web.Port)
	fmt.Println("Press Ctrl+C to stop")

	if err := server.Start(); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	waitForScan(a, 30*time.Second)
	return nil
}

// waitForScan gives a cancelled scan time to store its checkpoint before the
// store is closed.
func waitForScan(a *app, timeout time.Duration) {
	deadline := time.Now().Add(timeout)
	for a.engine.IsScanning() && time.Now().Before(deadline) {
		time.Sleep(100 * time.Millisecond)
	}
	if a.engine.IsScanning() {
		a.log.Warn("Scan still running at exit, its last batch will be rescanned")
	}
}
