package audio

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"media2text/internal/app/command"
	"media2text/internal/app/model"
)

// Canonical audio parameters every acquired file is normalised to.
const (
	Codec      = "pcm_s16le"
	SampleRate = 44100
	Channels   = 2
	Extension  = ".wav"
)

// SupportedExtensions is the allow-list of local media containers the
// transcoder accepts.
var SupportedExtensions = []string{
	".mp3", ".mp4", ".mkv", ".avi",
	".wav", ".m4a", ".mov", ".webm", ".flac", ".ogg",
}

// IsSupported reports whether path has an allow-listed extension.
func IsSupported(path string) bool {
	return lo.Contains(SupportedExtensions, strings.ToLower(filepath.Ext(path)))
}

// OutputPath is the canonical audio file for input inside dir.
func OutputPath(input, dir string) string {
	base := filepath.Base(input)
	return filepath.Join(dir, strings.TrimSuffix(base, filepath.Ext(base))+Extension)
}

// Transcoder wraps ffmpeg and ffprobe.
type Transcoder struct {
	ffmpeg  string
	ffprobe string
	runner  command.Runner
	logger  *zap.Logger
}

// NewTranscoder creates a transcoder. ffprobe is looked up next to ffmpeg
// when ffmpeg is given as a path.
func NewTranscoder(ffmpegBinary string, runner command.Runner, logger *zap.Logger) *Transcoder {
	ffprobe := "ffprobe"
	if dir := filepath.Dir(ffmpegBinary); dir != "." {
		ffprobe = filepath.Join(dir, "ffprobe")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Transcoder{
		ffmpeg:  ffmpegBinary,
		ffprobe: ffprobe,
		runner:  runner,
		logger:  logger,
	}
}

// ConvertArgs builds the ffmpeg arguments for extracting canonical audio.
func ConvertArgs(input, output string) []string {
	return []string{
		"-y",
		"-i", input,
		"-vn",
		"-acodec", Codec,
		"-ar", fmt.Sprint(SampleRate),
		"-ac", fmt.Sprint(Channels),
		output,
	}
}

// Convert drops any video stream from input and writes canonical audio to
// output.
func (t *Transcoder) Convert(ctx context.Context, input, output string) error {
	t.logger.Info("converting to wav", zap.String("input", filepath.Base(input)))

	cmd := command.Command{Name: t.ffmpeg, Args: ConvertArgs(input, output)}
	if _, err := t.runner.Run(ctx, cmd); err != nil {
		return fmt.Errorf("FFmpeg error: %w", err)
	}

	t.logger.Info("wav conversion completed", zap.String("output", filepath.Base(output)))
	return nil
}

// Probe runs ffprobe on path.
func (t *Transcoder) Probe(ctx context.Context, path string) (model.FFProbeOutput, error) {
	cmd := command.Command{
		Name: t.ffprobe,
		Args: []string{"-v", "quiet", "-print_format", "json", "-show_streams", "-show_format", path},
	}
	result, err := t.runner.Run(ctx, cmd)
	if err != nil {
		return model.FFProbeOutput{}, err
	}
	return ParseProbeOutput(result.Stdout)
}

// Duration returns the audio length of path in seconds.
func (t *Transcoder) Duration(ctx context.Context, path string) (float64, error) {
	probe, err := t.Probe(ctx, path)
	if err != nil {
		return 0, err
	}
	return probe.Format.Duration, nil
}

// ParseProbeOutput decodes ffprobe's JSON output.
func ParseProbeOutput(output string) (model.FFProbeOutput, error) {
	var probe model.FFProbeOutput
	if err := json.Unmarshal([]byte(output), &probe); err != nil {
		return model.FFProbeOutput{}, fmt.Errorf("parse ffprobe output: %w", err)
	}
	return probe, nil
}
