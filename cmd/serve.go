package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kozaktomas/photo-faces/internal/faces"
	"github.com/kozaktomas/photo-faces/internal/scheduler"
	"github.com/kozaktomas/photo-faces/internal/web"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web server",
	Long: `Start the Photo Faces web server.
The browser UI lists processed photos, streams new ones as they are
scanned and lets you label faces. Orphaned records are cleaned up
periodically while the server runs.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 0, "Port to listen on (overrides WEB_PORT)")
	serveCmd.Flags().String("host", "", "Host to bind to (overrides WEB_HOST)")
	serveCmd.Flags().Bool("detector", true, "Load the face detector so scans can be started from the UI")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	a, err := newApp(ctx, mustGetBool(cmd, "detector"))
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

	listing := faces.NewListing(a.repo)
	listing.Start(ctx)

	sched := scheduler.New(a.log.With("component", "scheduler"))
	if err := sched.Every("cleanup", a.cfg.Cleanup.Interval, func() {
		if removed := a.repo.CleanupOrphanedImages(ctx); removed > 0 {
			a.log.Info("periodic cleanup removed records", "removed", removed)
		}
	}); err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	server := web.NewServer(a.cfg, a.repo, listing, a.log.With("component", "web"))

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case <-sigChan:
		case <-ctx.Done():
			return
		}
		fmt.Println("\nShutting down...")
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			fmt.Printf("Error during shutdown: %v\n", err)
		}
	}()

	fmt.Printf("Starting Photo Faces Web UI on http://%s:%d\n", a.cfg.Web.Host, a.cfg.Web.Port)
	fmt.Println("Press Ctrl+C to stop")

	if err := server.Start(); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	<-listing.Done()
	return nil
}
