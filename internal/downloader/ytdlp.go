package downloader

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"media2text/internal/app/command"
)

// OutputTemplate names downloaded files after the media id so the result
// does not depend on the remote title.
const OutputTemplate = "%(id)s.%(ext)s"

// YtDlp fetches the best audio track of a remote video and extracts it as
// WAV using yt-dlp (which delegates extraction to ffmpeg).
type YtDlp struct {
	binary string
	runner command.Runner
	logger *zap.Logger
}

// NewYtDlp creates a downloader using binary.
func NewYtDlp(binary string, runner command.Runner, logger *zap.Logger) *YtDlp {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &YtDlp{binary: binary, runner: runner, logger: logger}
}

// ParseURL accepts absolute http(s) URLs only.
func ParseURL(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported url scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("url has no host")
	}
	return u, nil
}

// Args builds the yt-dlp invocation writing into dir.
func Args(rawURL, dir string) []string {
	return []string{
		"--no-playlist",
		"--no-progress",
		"--restrict-filenames",
		"-x",
		"--audio-format", "wav",
		"-o", filepath.Join(dir, OutputTemplate),
		rawURL,
	}
}

// Fetch downloads the audio of rawURL into dir.
func (y *YtDlp) Fetch(ctx context.Context, rawURL, dir string) error {
	u, err := ParseURL(rawURL)
	if err != nil {
		return err
	}

	y.logger.Info("downloading remote audio", zap.String("host", u.Host))
	if _, err := y.runner.Run(ctx, command.Command{Name: y.binary, Args: Args(u.String(), dir)}); err != nil {
		return fmt.Errorf("yt-dlp failed: %w", err)
	}
	return nil
}
