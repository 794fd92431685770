package whisper

import (
	"context"
	"fmt"
	"iter"
	"os"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
	openaiclient "media2text/internal/app/api/openai"
	"media2text/internal/app/transcribe"
)

var responseFormats = map[transcribe.Format]openai.AudioResponseFormat{
	transcribe.FormatTXT: openai.AudioResponseFormatText,
	transcribe.FormatSRT: openai.AudioResponseFormatSRT,
}

// RemoteService implements transcribe.Service with the OpenAI transcription
// API. The job credential is used as the API key, so every job gets its own
// client.
type RemoteService struct {
	baseURL string
	logger  *zap.Logger
}

// NewRemoteService creates the service. baseURL may be empty.
func NewRemoteService(baseURL string, logger *zap.Logger) *RemoteService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RemoteService{baseURL: baseURL, logger: logger}
}

// Run requests one transcription per input and format, writing each
// response to the output directory. One progress item is yielded per file
// written.
func (s *RemoteService) Run(ctx context.Context, cfg transcribe.Config) iter.Seq2[transcribe.Progress, error] {
	return func(yield func(transcribe.Progress, error) bool) {
		if len(cfg.AccessTokens) == 0 || cfg.AccessTokens[0] == "" {
			yield(transcribe.Progress{}, fmt.Errorf("no access token configured"))
			return
		}
		client := openaiclient.NewClient(cfg.AccessTokens[0], s.baseURL)

		step := 0
		for _, input := range cfg.Inputs {
			for _, format := range cfg.OutputFormats {
				responseFormat, ok := responseFormats[format]
				if !ok {
					yield(transcribe.Progress{}, fmt.Errorf("unsupported output format %q", format))
					return
				}

				out := transcribe.ArtifactPath(input, format, cfg.OutputDir)
				if cfg.SkipIfOutputExist {
					if _, err := os.Stat(out); err == nil {
						continue
					}
				}

				req := openai.AudioRequest{
					Model:    openai.Whisper1,
					FilePath: input,
					Format:   responseFormat,
					Language: cfg.Language,
				}
				resp, err := client.CreateTranscription(ctx, req)
				if err != nil {
					yield(transcribe.Progress{}, fmt.Errorf("createTranscription failed: %w", err))
					return
				}
				if err := os.WriteFile(out, []byte(resp.Text), 0o644); err != nil {
					yield(transcribe.Progress{}, fmt.Errorf("write %s output: %w", format, err))
					return
				}

				step++
				if !yield(transcribe.Progress{Step: step, Message: string(format) + " written"}, nil) {
					return
				}
			}
		}
	}
}
