package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mockwell/mockwell/internal/storage"
	"github.com/mockwell/mockwell/pkg/admin"
	"github.com/mockwell/mockwell/pkg/engine"
	"github.com/mockwell/mockwell/pkg/logging"
	"github.com/spf13/cobra"
)

// shutdownTimeout is the maximum time to wait for graceful shutdown.
const shutdownTimeout = 30 * time.Second

var (
	serveAddr string
	serveSeed string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the mock server (foreground)",
	Long: `Start the mock server. Mock endpoints and the admin API share one
listener: everything under /admin/ is the management surface, everything
else is matched against configured endpoints.`,
	Example: `  # Start with defaults
  mockwell serve

  # Start on a custom address with a seed file
  mockwell serve --addr :3000 --config seed.yaml

  # Start with JSON logs at debug level
  mockwell serve --log-level debug --log-format json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", ":4280", "Listen address")
	serveCmd.Flags().StringVarP(&serveSeed, "config", "c", "", "Path to YAML seed file loaded at startup")
}

func runServe() error {
	log := logging.New(logging.Config{
		Level:  logging.ParseLevel(logLevel),
		Format: logging.ParseFormat(logFormat),
	})

	store := storage.NewMemoryStore()

	if serveSeed != "" {
		loaded, err := LoadSeed(serveSeed, store)
		if err != nil {
			return fmt.Errorf("loading seed file: %w", err)
		}
		log.Info("seed file loaded", "file", serveSeed, "endpoints", loaded)
	}

	handler := engine.NewHandler(store)
	handler.SetLogger(log)

	api := admin.New(store,
		admin.WithLogger(log),
		admin.WithTemplateInvalidator(handler),
	)

	mux := http.NewServeMux()
	api.Register(mux)
	mux.Handle("/", handler)

	server := engine.NewServer(serveAddr, mux, engine.WithLogger(log))

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case sig := <-sigCh:
		log.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info("server stopped", "uptime", server.Uptime().Round(time.Second).String())
	return nil
}
