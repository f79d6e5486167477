package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/yeremiapane/reservation-app/router"
	"github.com/yeremiapane/reservation-app/services"
	"github.com/yeremiapane/reservation-app/utils"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer closeDB(db)

	svc := router.NewServices(db, cfg)
	monitor := services.NewSweepMonitor(svc.Assignments, cfg.SweepInterval)
	monitor.Start()
	defer monitor.Stop()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router.SetupRouter(svc, cfg),
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		utils.InfoLogger.Printf("Listening on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-serveErr:
		return err
	case <-quit:
		utils.InfoLogger.Println("Shutdown signal received, shutting down server...")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := drain(ctx, srv, monitor, svc.Dispatcher); err != nil {
		return err
	}

	utils.InfoLogger.Println("Server stopped gracefully")
	return nil
}

type shutdowner interface {
	Shutdown(ctx context.Context) error
}

type stopper interface {
	Stop()
}

type waiter interface {
	Wait()
}

// drain stops accepting requests, then stops the sweep monitor so no new
// deliveries start, then waits for the in-flight ones.
func drain(ctx context.Context, srv shutdowner, monitor stopper, deliveries waiter) error {
	if err := srv.Shutdown(ctx); err != nil {
		return err
	}
	monitor.Stop()
	deliveries.Wait()
	return nil
}
