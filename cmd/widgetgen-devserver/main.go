// Command widgetgen-devserver serves the reference widget catalog so the
// generator and the widgetgen CLI can be exercised without an admin backend.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	addr        string
	basePath    string
	catalogPath string
	verbose     bool
)

var rootCmd = &cobra.Command{
	Use:           "widgetgen-devserver",
	Short:         "Serve the reference widget catalog",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		logger, err := zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		defer func() { _ = logger.Sync() }()

		app, err := newApp(appConfig{
			BasePath:    basePath,
			CatalogPath: catalogPath,
			Logger:      logger,
		})
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			logger.Info("catalog server listening", zap.String("addr", addr), zap.String("base_path", basePath))
			errCh <- app.Listen(addr)
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return app.ShutdownWithContext(shutdownCtx)
	},
}

func init() {
	rootCmd.Flags().StringVar(&addr, "addr", ":8383", "listen address")
	rootCmd.Flags().StringVar(&basePath, "base-path", "", "path prefix for every catalog route")
	rootCmd.Flags().StringVar(&catalogPath, "catalog", "", "catalog YAML file (embedded catalog when empty)")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
