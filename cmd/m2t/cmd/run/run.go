package run

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"media2text/internal/app"
	apperrors "media2text/internal/app/errors"
	"media2text/internal/app/logging"
	"media2text/internal/app/model"
	"media2text/internal/app/pipeline"
	"media2text/internal/app/progress"
	"media2text/internal/app/transcribe"
	"media2text/internal/config"
)

// APIKeyEnv is read when --api-key is not given.
const APIKeyEnv = "M2T_API_KEY"

type options struct {
	url          string
	file         string
	apiKey       string
	language     string
	formats      []string
	out          string
	showProgress bool
}

var opts options

// Cmd represents the run command
var Cmd = &cobra.Command{
	Use:   "run",
	Short: "Transcribe one YouTube video or local media file",
	Example: `  m2t run --url https://www.youtube.com/watch?v=dQw4w9WgXcQ --language ar
  m2t run --file ./lecture.mp4 --out lecture.zip`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		logger, err := logging.NewLogger(!cfg.IsProduction())
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}
		defer func() { _ = logger.Sync() }()

		orch, err := app.InitializeOrchestrator(cfg, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize pipeline: %w", err)
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		return execute(ctx, orch, opts, cmd.ErrOrStderr(), logger)
	},
}

func init() {
	Cmd.Flags().StringVarP(&opts.url, "url", "u", "", "YouTube video URL")
	Cmd.Flags().StringVarP(&opts.file, "file", "f", "", "Local media file path")
	Cmd.Flags().StringVarP(&opts.apiKey, "api-key", "k", "", "Speech recognition API key (default $"+APIKeyEnv+")")
	Cmd.Flags().StringVarP(&opts.language, "language", "l", "", "Language hint, e.g. ar or en")
	Cmd.Flags().StringSliceVar(&opts.formats, "format", nil, "Transcript formats (default txt,srt)")
	Cmd.Flags().StringVarP(&opts.out, "out", "o", "transcription_results.zip", "Where to write the archive")
	Cmd.Flags().BoolVar(&opts.showProgress, "progress", false, "Force the progress bar even when not attached to a terminal")
	Cmd.MarkFlagsMutuallyExclusive("url", "file")
}

// JobRunner is the part of the pipeline the command drives.
type JobRunner interface {
	Run(ctx context.Context, req pipeline.Request, deliver pipeline.Deliver) (*model.Job, error)
}

func execute(ctx context.Context, runner JobRunner, o options, stderr io.Writer, logger *zap.Logger) error {
	req := buildRequest(o)

	label := lo.Ternary(o.url != "", o.url, filepath.Base(o.file))
	tracker := progress.NewTracker(progress.Config{
		Enabled: progress.ShouldShowProgress(o.showProgress),
		Writer:  stderr,
	}, label)
	req.Observe = tracker.Observe

	out, err := filepath.Abs(o.out)
	if err != nil {
		return fmt.Errorf("invalid output path: %w", err)
	}

	job, err := runner.Run(ctx, req, func(archivePath string) error {
		return copyFile(archivePath, out)
	})
	tracker.Wait()
	if err != nil {
		return errors.New(apperrors.PublicMessage(err))
	}

	logger.Info("transcription written",
		zap.String("job_id", job.ID),
		zap.String("archive", out),
	)
	return nil
}

func buildRequest(o options) pipeline.Request {
	apiKey := o.apiKey
	if apiKey == "" {
		apiKey = os.Getenv(APIKeyEnv)
	}
	return pipeline.Request{
		Source:     model.SourceDescriptor{RemoteURL: o.url, LocalPath: o.file},
		Credential: apiKey,
		Language:   o.language,
		Formats: lo.Map(o.formats, func(f string, _ int) transcribe.Format {
			return transcribe.Format(f)
		}),
	}
}

// copyFile writes src to dst through a temporary sibling so a failed copy
// never leaves a truncated archive behind.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".m2t-*.zip")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, in); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), dst)
}
