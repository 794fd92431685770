package transcribe

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	apperrors "media2text/internal/app/errors"
)

const stage = "transcribe"

// Fixed segmentation settings handed to the service unmodified.
const (
	MaxCuttingDuration = 5
	MinWordsPerSegment = 1
)

// ArtifactSet holds one transcript file per requested format, in request
// order.
type ArtifactSet []string

// Observer receives every progress item while a job drains the service.
type Observer func(Progress)

// Runner drives the transcription service for one audio file.
type Runner struct {
	service Service
	logger  *zap.Logger
}

// NewRunner creates a Runner.
func NewRunner(service Service, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{service: service, logger: logger}
}

// BuildConfig returns the fixed service configuration for one job.
func BuildConfig(audioPath, credential, language string, formats []Format, ws string) Config {
	return Config{
		Inputs:                 []string{audioPath},
		OutputDir:              ws,
		OutputFormats:          append([]Format(nil), formats...),
		AccessTokens:           []string{credential},
		Language:               language,
		MaxCuttingDuration:     MaxCuttingDuration,
		MinWordsPerSegment:     MinWordsPerSegment,
		SkipIfOutputExist:      false,
		SaveFilesBeforeCompact: false,
		SaveYtDlpResponses:     false,
		Verbose:                false,
	}
}

// ArtifactPath is where the service writes format for audioPath.
func ArtifactPath(audioPath string, format Format, ws string) string {
	base := filepath.Base(audioPath)
	return filepath.Join(ws, strings.TrimSuffix(base, filepath.Ext(base))+"."+string(format))
}

// Transcribe runs the service to completion and returns the artifacts. The
// progress sequence is consumed until exhaustion; its items only matter to
// observe.
func (r *Runner) Transcribe(ctx context.Context, audioPath, credential, language string, formats []Format, ws string, observe Observer) (ArtifactSet, error) {
	if len(formats) == 0 {
		formats = DefaultFormats
	}
	cfg := BuildConfig(audioPath, credential, language, formats, ws)

	r.logger.Info("transcribing file", zap.String("file", filepath.Base(audioPath)))
	steps := 0
	for p, err := range r.service.Run(ctx, cfg) {
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.KindTranscription, stage, "transcription failed")
		}
		steps++
		if observe != nil {
			observe(p)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.KindTranscription, stage, "transcription failed")
	}
	r.logger.Info("transcription completed", zap.Int("steps", steps))

	artifacts := make(ArtifactSet, 0, len(formats))
	for _, f := range formats {
		path := ArtifactPath(audioPath, f, ws)
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			return nil, apperrors.Newf(apperrors.KindTranscription, stage, "transcription produced no %s output", f)
		}
		artifacts = append(artifacts, path)
	}
	return artifacts, nil
}
