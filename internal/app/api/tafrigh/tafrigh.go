package tafrigh

import (
	"context"
	"fmt"
	"iter"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"media2text/internal/app/command"
	"media2text/internal/app/transcribe"
)

// CLIService implements transcribe.Service by running the tafrigh command
// line tool. Each non-empty stdout line is reported as one progress item.
type CLIService struct {
	binary string
	runner command.LineRunner
	logger *zap.Logger
}

// NewCLIService creates the service for binary.
func NewCLIService(binary string, runner command.LineRunner, logger *zap.Logger) *CLIService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CLIService{binary: binary, runner: runner, logger: logger}
}

// Args renders cfg as tafrigh command line arguments.
func Args(cfg transcribe.Config) []string {
	args := append([]string{}, cfg.Inputs...)

	if len(cfg.AccessTokens) > 0 {
		args = append(args, "--wit_client_access_tokens")
		args = append(args, cfg.AccessTokens...)
	}
	if cfg.ModelNameOrPath != "" {
		args = append(args, "--model_name_or_path", cfg.ModelNameOrPath)
	}
	if cfg.Language != "" {
		args = append(args, "--language", cfg.Language)
	}

	args = append(args, "--output_dir", cfg.OutputDir)
	if len(cfg.OutputFormats) > 0 {
		args = append(args, "--output_formats")
		for _, f := range cfg.OutputFormats {
			args = append(args, string(f))
		}
	}

	args = append(args,
		"--max_cutting_duration", strconv.Itoa(cfg.MaxCuttingDuration),
		"--min_words_per_segment", strconv.Itoa(cfg.MinWordsPerSegment),
	)
	args = append(args, boolFlag("skip_if_output_exist", cfg.SkipIfOutputExist))
	args = append(args, boolFlag("save_files_before_compact", cfg.SaveFilesBeforeCompact))
	args = append(args, boolFlag("save_yt_dlp_responses", cfg.SaveYtDlpResponses))
	if cfg.Verbose {
		args = append(args, "--verbose")
	}
	return args
}

func boolFlag(name string, on bool) string {
	if on {
		return "--" + name
	}
	return "--no-" + name
}

// Run starts tafrigh and streams its progress.
func (s *CLIService) Run(ctx context.Context, cfg transcribe.Config) iter.Seq2[transcribe.Progress, error] {
	return func(yield func(transcribe.Progress, error) bool) {
		if len(cfg.Inputs) == 0 {
			yield(transcribe.Progress{}, fmt.Errorf("no input files"))
			return
		}
		cmd := command.Command{Name: s.binary, Args: Args(cfg)}
		s.logger.Debug("starting tafrigh", zap.String("output_dir", cfg.OutputDir))

		step := 0
		for line, err := range s.runner.Lines(ctx, cmd) {
			if err != nil {
				yield(transcribe.Progress{}, fmt.Errorf("tafrigh failed: %w", err))
				return
			}
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			step++
			if !yield(transcribe.Progress{Step: step, Message: line}, nil) {
				return
			}
		}
	}
}
