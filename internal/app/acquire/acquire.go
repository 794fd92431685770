package acquire

import (
	"context"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"media2text/internal/app/audio"
	apperrors "media2text/internal/app/errors"
	"media2text/internal/app/workspace"
)

const stage = "acquire"

// Downloader fetches remote media audio into a directory.
type Downloader interface {
	Fetch(ctx context.Context, url, dir string) error
}

// Converter transcodes a local media file to canonical audio.
type Converter interface {
	Convert(ctx context.Context, input, output string) error
}

// Acquirer turns a source into exactly one canonical audio file inside the
// job workspace.
type Acquirer struct {
	downloader Downloader
	converter  Converter
	logger     *zap.Logger
}

// NewAcquirer creates an Acquirer.
func NewAcquirer(downloader Downloader, converter Converter, logger *zap.Logger) *Acquirer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Acquirer{downloader: downloader, converter: converter, logger: logger}
}

// AcquireRemote downloads the audio of url into ws and returns its path.
// When the download leaves more than one candidate, the lexicographically
// first is used.
func (a *Acquirer) AcquireRemote(ctx context.Context, url, ws string) (string, error) {
	if err := a.downloader.Fetch(ctx, url, ws); err != nil {
		return "", apperrors.Wrap(err, apperrors.KindAcquisition, stage, "failed to download or process the YouTube video")
	}

	candidates, err := workspace.FindFiles(ws, audio.Extension)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.KindAcquisition, stage, "failed to download or process the YouTube video")
	}
	if len(candidates) == 0 {
		return "", apperrors.New(apperrors.KindAcquisition, stage, "failed to download or process the YouTube video")
	}
	if len(candidates) > 1 {
		a.logger.Warn("download produced several audio files, using the first",
			zap.Int("count", len(candidates)),
			zap.String("chosen", filepath.Base(candidates[0])),
		)
	}
	return candidates[0], nil
}

// AcquireLocal transcodes the media file at path into ws. Paths outside the
// extension allow-list are rejected before any tool runs.
func (a *Acquirer) AcquireLocal(ctx context.Context, path, ws string) (string, error) {
	if !audio.IsSupported(path) {
		return "", apperrors.Newf(apperrors.KindUnsupportedFormat, stage,
			"unsupported file format %q", filepath.Ext(path))
	}

	info, err := os.Stat(path)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.KindConversion, stage, "failed to process the local file")
	}
	if !info.Mode().IsRegular() {
		return "", apperrors.New(apperrors.KindConversion, stage, "failed to process the local file")
	}

	output := audio.OutputPath(path, ws)
	if err := a.converter.Convert(ctx, path, output); err != nil {
		return "", apperrors.Wrap(err, apperrors.KindConversion, stage, "failed to process the local file")
	}
	if _, err := os.Stat(output); err != nil {
		return "", apperrors.Wrap(err, apperrors.KindConversion, stage, "failed to process the local file")
	}
	return output, nil
}
