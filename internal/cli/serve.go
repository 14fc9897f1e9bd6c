package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mmynk/storefront/internal/catalog"
	"github.com/mmynk/storefront/internal/metrics"
	"github.com/mmynk/storefront/internal/storage/sqlite"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Port     int
	Database string
	NoImport bool
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the storefront web server",
		Long: `Start the storefront HTTP server.

On startup the database is created if needed and the catalog import runs once
in the background; the server starts accepting requests immediately.

Example:
  storefront serve
  storefront serve --port 9000 --db /tmp/shop.db --no-import`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().IntVarP(&opts.Port, "port", "p", 0, "listen port (overrides server.port)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (overrides database.path)")
	cmd.Flags().BoolVar(&opts.NoImport, "no-import", false, "skip the catalog import at startup")

	return cmd
}

func runServe(ctx context.Context, opts *ServeOptions) error {
	cfg, logger, err := opts.load()
	if err != nil {
		return err
	}
	if opts.Port != 0 {
		cfg.Server.Port = opts.Port
	}
	if opts.Database != "" {
		cfg.Database.Path = opts.Database
	}
	if opts.NoImport {
		cfg.Catalog.ImportOnStart = false
	}
	if err := revalidate(cfg); err != nil {
		return err
	}
	if cfg.Auth.GeneratedSecret {
		logger.Warn("No auth.jwt_secret configured, using a random per-process secret; sessions end on restart")
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to initialize storage", err)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			logger.Error("Error closing database", "error", closeErr)
		}
	}()
	logger.Info("Storage initialized", "database", cfg.Database.Path)

	reg := metrics.New()
	handler, err := newHandler(cfg, store, reg, logger)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to build handler", err)
	}

	var imports sync.WaitGroup
	if cfg.Catalog.ImportOnStart {
		imports.Add(1)
		go func() {
			defer imports.Done()
			importInBackground(ctx, newImporter(cfg, store, reg, logger), logger)
		}()
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server starting", "address", srv.Addr, "url", fmt.Sprintf("http://localhost%s", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		stop()
		imports.Wait()
		return WrapExitError(ExitCommandError, "server failed", err)
	case <-ctx.Done():
	}

	logger.Info("Shutting down", "timeout", cfg.Server.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Graceful shutdown failed", "error", err)
	}
	imports.Wait()
	return nil
}

// importInBackground runs one import. A batch failure is logged and
// swallowed so the server keeps serving whatever the table already holds.
func importInBackground(ctx context.Context, importer *catalog.Importer, logger *slog.Logger) {
	report, err := importer.Run(ctx)
	if err != nil {
		logger.Error("Catalog import failed", "error", err)
		return
	}
	if report.Failed > 0 {
		logger.Warn("Catalog import finished with failed rows", "failed", report.Failed, "total", report.Total)
	}
}
