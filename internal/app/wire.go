//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"
	"go.uber.org/zap"
	"media2text/internal/app/command"
	"media2text/internal/app/metrics"
	"media2text/internal/app/pipeline"
	"media2text/internal/app/transcribe"
	"media2text/internal/config"
)

var pipelineSet = wire.NewSet(
	command.NewExecRunner,
	wire.Bind(new(command.Runner), new(*command.ExecRunner)),
	wire.Bind(new(command.LineRunner), new(*command.ExecRunner)),
	provideWorkspace,
	provideDownloader,
	provideTranscoder,
	provideAcquirer,
	provideTranscriptionService,
	transcribe.NewRunner,
	providePackager,
	provideArchiveStore,
	provideDependencies,
	provideOrchestrator,
)

// InitializeOrchestrator builds a pipeline for one-shot use.
func InitializeOrchestrator(cfg *config.Config, logger *zap.Logger) (*pipeline.Orchestrator, error) {
	wire.Build(pipelineSet, metrics.New)
	return &pipeline.Orchestrator{}, nil
}

// InitializeApp builds the HTTP server and the retention sweeper.
func InitializeApp(cfg *config.Config, logger *zap.Logger) (*App, error) {
	wire.Build(
		pipelineSet,
		metrics.New,
		provideServer,
		provideSweeper,
		wire.Struct(new(App), "*"),
	)
	return &App{}, nil
}
