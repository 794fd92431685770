package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"media2text/internal/api/server"
	v1routes "media2text/internal/api/v1/routes"
	"media2text/internal/app/acquire"
	"media2text/internal/app/api/openai/whisper"
	"media2text/internal/app/api/tafrigh"
	"media2text/internal/app/audio"
	"media2text/internal/app/command"
	"media2text/internal/app/metrics"
	"media2text/internal/app/packager"
	"media2text/internal/app/pipeline"
	"media2text/internal/app/retention"
	"media2text/internal/app/storage"
	"media2text/internal/app/transcribe"
	"media2text/internal/app/workspace"
	"media2text/internal/config"
	"media2text/internal/downloader"
)

// App bundles everything the serve command runs.
type App struct {
	Server  *server.Server
	Sweeper *retention.Sweeper
	Logger  *zap.Logger
}

func provideWorkspace(cfg *config.Config, logger *zap.Logger) (*workspace.Manager, error) {
	root, err := cfg.AbsWorkRoot()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve work root: %w", err)
	}
	return workspace.NewManager(root, logger)
}

func provideDownloader(cfg *config.Config, runner command.Runner, logger *zap.Logger) *downloader.YtDlp {
	return downloader.NewYtDlp(cfg.Tools.Downloader, runner, logger)
}

func provideTranscoder(cfg *config.Config, runner command.Runner, logger *zap.Logger) *audio.Transcoder {
	return audio.NewTranscoder(cfg.Tools.Transcoder, runner, logger)
}

func provideAcquirer(d *downloader.YtDlp, t *audio.Transcoder, logger *zap.Logger) *acquire.Acquirer {
	return acquire.NewAcquirer(d, t, logger)
}

// provideTranscriptionService selects the recogniser backend.
func provideTranscriptionService(cfg *config.Config, runner command.LineRunner, logger *zap.Logger) (transcribe.Service, error) {
	switch cfg.Transcriber.Backend {
	case config.BackendTafrigh:
		return tafrigh.NewCLIService(cfg.Tools.Transcriber, runner, logger), nil
	case config.BackendOpenAI:
		return whisper.NewRemoteService(cfg.Transcriber.OpenAIBaseURL, logger), nil
	default:
		return nil, fmt.Errorf("unknown transcriber backend %q", cfg.Transcriber.Backend)
	}
}

func providePackager(cfg *config.Config, runner command.Runner, ws *workspace.Manager, logger *zap.Logger) *packager.Packager {
	return packager.NewPackager(cfg.Tools.Compressor, runner, ws, logger)
}

// provideArchiveStore returns nil when mirroring is disabled.
func provideArchiveStore(cfg *config.Config, logger *zap.Logger) (storage.ArchiveStore, error) {
	if !cfg.Storage.Enabled {
		return nil, nil
	}
	return storage.NewMinioArchiveStore(context.Background(), cfg.Storage, logger)
}

func provideDependencies(
	ws *workspace.Manager,
	acquirer *acquire.Acquirer,
	transcriber *transcribe.Runner,
	pkg *packager.Packager,
	prober *audio.Transcoder,
	store storage.ArchiveStore,
	m *metrics.Metrics,
) pipeline.Dependencies {
	return pipeline.Dependencies{
		Workspace:   ws,
		Acquirer:    acquirer,
		Transcriber: transcriber,
		Packager:    pkg,
		Prober:      prober,
		Store:       store,
		Metrics:     m,
	}
}

func provideOrchestrator(deps pipeline.Dependencies, cfg *config.Config, logger *zap.Logger) *pipeline.Orchestrator {
	return pipeline.NewOrchestrator(deps, cfg.Pipeline, logger)
}

func provideServer(cfg *config.Config, orch *pipeline.Orchestrator, m *metrics.Metrics, logger *zap.Logger) *server.Server {
	return server.NewServer(cfg.Server, &v1routes.ServiceContainer{JobRunner: orch, Logger: logger}, m, logger)
}

// provideSweeper returns nil when retention is disabled.
func provideSweeper(cfg *config.Config, ws *workspace.Manager, m *metrics.Metrics, logger *zap.Logger) *retention.Sweeper {
	if !cfg.Retention.Enabled {
		return nil
	}
	return retention.NewSweeper(ws.Root(), cfg.Retention, m, logger)
}
