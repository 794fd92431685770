package serve

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"media2text/internal/app"
	"media2text/internal/app/logging"
	"media2text/internal/config"
)

const shutdownTimeout = 30 * time.Second

// Cmd represents the serve command
var Cmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the transcription HTTP API",
	Long: `Start the HTTP API. POST /transcribe accepts a JSON body with api_key,
language_sign and exactly one of youtube_url or file_path, and answers with
transcription_results.zip.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if port != "" {
			cfg.Server.Port = port
		}

		logger, err := logging.NewLogger(!cfg.IsProduction())
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}
		defer func() { _ = logger.Sync() }()

		return serve(cmd.Context(), cfg, logger)
	},
}

var port string

func init() {
	Cmd.Flags().StringVarP(&port, "port", "p", "", "listen port (overrides config)")
}

func serve(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	a, err := app.InitializeApp(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	if err := a.Server.Start(); err != nil {
		return err
	}
	if a.Sweeper != nil {
		if err := a.Sweeper.Start(); err != nil {
			return err
		}
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var serveErr error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case serveErr = <-a.Server.Errors():
		logger.Error("server stopped unexpectedly", zap.Error(serveErr))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if a.Sweeper != nil {
		<-a.Sweeper.Stop().Done()
	}
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
		return err
	}
	logger.Info("server exited")
	return serveErr
}
