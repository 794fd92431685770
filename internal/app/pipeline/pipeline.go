package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
	apperrors "media2text/internal/app/errors"
	"media2text/internal/app/metrics"
	"media2text/internal/app/model"
	"media2text/internal/app/storage"
	"media2text/internal/app/transcribe"
	"media2text/internal/app/workspace"
	"media2text/internal/config"
	"media2text/internal/downloader"
)

// Acquirer produces the canonical audio file of a job.
type Acquirer interface {
	AcquireRemote(ctx context.Context, url, ws string) (string, error)
	AcquireLocal(ctx context.Context, path, ws string) (string, error)
}

// Transcriber runs speech recognition over one audio file.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath, credential, language string, formats []transcribe.Format, ws string, observe transcribe.Observer) (transcribe.ArtifactSet, error)
}

// Packager bundles a workspace into an archive.
type Packager interface {
	Package(ctx context.Context, ws, jobID string) (string, error)
}

// DurationProber reports the length of an audio file in seconds.
type DurationProber interface {
	Duration(ctx context.Context, path string) (float64, error)
}

// Dependencies are the collaborators of an Orchestrator. Prober and Store
// are optional.
type Dependencies struct {
	Workspace   *workspace.Manager
	Acquirer    Acquirer
	Transcriber Transcriber
	Packager    Packager
	Prober      DurationProber
	Store       storage.ArchiveStore
	Metrics     *metrics.Metrics
}

// Event is reported to a request's observer on every state change and for
// every transcription progress item.
type Event struct {
	JobID    string
	State    model.JobState
	Progress *transcribe.Progress
}

// Observer receives job events.
type Observer func(Event)

// Request is one transcription job as submitted by a caller.
type Request struct {
	Source     model.SourceDescriptor
	Credential string
	Language   string
	Formats    []transcribe.Format
	Observe    Observer
}

// Deliver hands the finished archive to the caller. The file is removed as
// soon as Deliver returns.
type Deliver func(archivePath string) error

// Orchestrator runs jobs through acquire, transcribe, package and deliver,
// always destroying the job's workspace and archive afterwards.
type Orchestrator struct {
	deps   Dependencies
	cfg    config.PipelineConfig
	sem    *semaphore.Weighted
	logger *zap.Logger
}

// NewOrchestrator creates an Orchestrator. A positive MaxConcurrentJobs
// bounds the number of jobs holding a workspace at once.
func NewOrchestrator(deps Dependencies, cfg config.PipelineConfig, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.New()
	}
	o := &Orchestrator{deps: deps, cfg: cfg, logger: logger}
	if cfg.MaxConcurrentJobs > 0 {
		o.sem = semaphore.NewWeighted(int64(cfg.MaxConcurrentJobs))
	}
	return o
}

// Run executes one job. The returned job is always non-nil and ends in the
// Cleaned state unless it was rejected during validation, in which case it
// stays Failed and nothing was written to disk.
func (o *Orchestrator) Run(ctx context.Context, req Request, deliver Deliver) (*model.Job, error) {
	job := model.NewJob(req.Source, req.Credential, req.Language)
	logger := o.logger.With(zap.String("job_id", job.ID))

	lang, err := o.validate(req, logger)
	if err != nil {
		_ = job.Fail(err)
		o.deps.Metrics.RecordRejected(string(apperrors.KindOf(err)))
		logger.Warn("job rejected", zap.Error(err))
		o.notify(req, job, nil)
		return job, err
	}
	job.Language = lang
	o.transition(req, job, model.StateValidated, logger)

	if o.sem != nil {
		if err := o.sem.Acquire(ctx, 1); err != nil {
			if cause := context.Cause(ctx); cause != nil {
				err = cause
			}
			err = apperrors.Wrap(err, apperrors.KindCancelled, "schedule", "job was cancelled while waiting for a free slot")
			_ = job.Fail(err)
			o.deps.Metrics.RecordRejected(string(apperrors.KindOf(err)))
			logger.Warn("job cancelled before start", zap.Error(err))
			return job, err
		}
		defer o.sem.Release(1)
	}

	ws, err := o.deps.Workspace.Create(job.ID)
	if err != nil {
		_ = job.Fail(err)
		o.deps.Metrics.RecordRejected(string(apperrors.KindOf(err)))
		logger.Error("failed to create workspace", zap.Error(err))
		return job, err
	}
	job.Workspace = ws
	o.deps.Metrics.JobStarted()
	defer o.cleanup(req, job, logger)

	if err := o.execute(ctx, req, job, deliver, logger); err != nil {
		_ = job.Fail(err)
		o.notify(req, job, nil)
		logger.Error("job failed",
			zap.String("kind", string(apperrors.KindOf(err))),
			zap.Error(err),
		)
		return job, err
	}
	return job, nil
}

func (o *Orchestrator) validate(req Request, logger *zap.Logger) (string, error) {
	if req.Credential == "" {
		return "", apperrors.New(apperrors.KindMissingCredential, "validate", "API key is required")
	}
	if req.Source.Populated() > 1 {
		return "", apperrors.New(apperrors.KindValidation, "validate", "Provide either youtube_url or file_path, not both")
	}
	switch req.Source.Kind() {
	case model.SourceNone:
		return "", apperrors.New(apperrors.KindValidation, "validate", "No YouTube URL or file path provided")
	case model.SourceRemote:
		if _, err := downloader.ParseURL(req.Source.RemoteURL); err != nil {
			return "", apperrors.Wrap(err, apperrors.KindValidation, "validate", "youtube_url is not a valid URL")
		}
	}
	// An unrecognised sign falls back to language detection.
	lang, err := NormalizeLanguage(req.Language)
	if err != nil {
		logger.Warn("ignoring language_sign", zap.String("language_sign", req.Language), zap.Error(err))
		return "", nil
	}
	return lang, nil
}

func (o *Orchestrator) execute(ctx context.Context, req Request, job *model.Job, deliver Deliver, logger *zap.Logger) error {
	o.transition(req, job, model.StateAcquiring, logger)
	err := o.stage(ctx, "acquire", o.cfg.AcquireTimeout, func(ctx context.Context) error {
		var err error
		if job.Source.Kind() == model.SourceRemote {
			job.AudioPath, err = o.deps.Acquirer.AcquireRemote(ctx, job.Source.RemoteURL, job.Workspace)
		} else {
			job.AudioPath, err = o.deps.Acquirer.AcquireLocal(ctx, job.Source.LocalPath, job.Workspace)
		}
		return err
	})
	if err != nil {
		return err
	}
	o.transition(req, job, model.StateAcquired, logger)
	o.recordAudio(ctx, job, logger)

	o.transition(req, job, model.StateTranscribing, logger)
	err = o.stage(ctx, "transcribe", o.cfg.TranscribeTimeout, func(ctx context.Context) error {
		observe := func(p transcribe.Progress) {
			logger.Debug("transcription progress", zap.Int("step", p.Step), zap.String("message", p.Message))
			o.notify(req, job, &p)
		}
		artifacts, err := o.deps.Transcriber.Transcribe(ctx, job.AudioPath, job.Credential, job.Language, req.Formats, job.Workspace, observe)
		job.Artifacts = artifacts
		return err
	})
	if err != nil {
		return err
	}
	o.transition(req, job, model.StateTranscribed, logger)

	o.transition(req, job, model.StatePackaging, logger)
	err = o.stage(ctx, "package", o.cfg.PackageTimeout, func(ctx context.Context) error {
		var err error
		job.ArchivePath, err = o.deps.Packager.Package(ctx, job.Workspace, job.ID)
		return err
	})
	if err != nil {
		return err
	}
	o.transition(req, job, model.StatePackaged, logger)
	o.mirror(ctx, job, logger)

	if deliver != nil {
		if err := deliver(job.ArchivePath); err != nil {
			return apperrors.Wrap(err, apperrors.KindDelivery, "deliver", "failed to deliver archive")
		}
	}
	o.transition(req, job, model.StateDelivered, logger)
	return nil
}

// stage runs fn under the stage deadline and records its duration.
func (o *Orchestrator) stage(ctx context.Context, name string, timeout time.Duration, fn func(context.Context) error) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	start := time.Now()
	err := fn(ctx)
	o.deps.Metrics.ObserveStage(name, time.Since(start))
	return err
}

func (o *Orchestrator) recordAudio(ctx context.Context, job *model.Job, logger *zap.Logger) {
	if o.deps.Prober == nil {
		return
	}
	seconds, err := o.deps.Prober.Duration(ctx, job.AudioPath)
	if err != nil {
		logger.Debug("could not probe audio duration", zap.Error(err))
		return
	}
	o.deps.Metrics.AddAudio(seconds)
}

// mirror copies the archive to object storage. Failures are logged and do
// not affect the job.
func (o *Orchestrator) mirror(ctx context.Context, job *model.Job, logger *zap.Logger) {
	if o.deps.Store == nil {
		return
	}
	if _, err := o.deps.Store.Put(ctx, job.ID, job.ArchivePath); err != nil {
		logger.Warn("failed to mirror archive", zap.Error(err))
	}
}

func (o *Orchestrator) cleanup(req Request, job *model.Job, logger *zap.Logger) {
	if job.ArchivePath != "" {
		if err := o.deps.Workspace.RemoveArchive(job.ArchivePath); err != nil {
			o.deps.Metrics.CleanupFailed()
			logger.Error("failed to remove archive", zap.Error(apperrors.Wrap(err, apperrors.KindCleanup, "cleanup", "archive removal failed")))
		}
	}
	if err := o.deps.Workspace.Destroy(job.Workspace); err != nil {
		o.deps.Metrics.CleanupFailed()
		logger.Error("failed to destroy workspace", zap.Error(err))
	}

	succeeded := job.Succeeded()
	o.transition(req, job, model.StateCleaned, logger)
	if succeeded {
		o.deps.Metrics.RecordSuccess()
	} else {
		o.deps.Metrics.RecordFailure(string(apperrors.KindOf(job.Cause)))
	}
	logger.Info("job finished",
		zap.Bool("succeeded", succeeded),
		zap.Duration("elapsed", time.Since(job.CreatedAt)),
	)
}

func (o *Orchestrator) transition(req Request, job *model.Job, to model.JobState, logger *zap.Logger) {
	from := job.State
	if err := job.Transition(to); err != nil {
		logger.Error("illegal state transition", zap.Error(err))
		return
	}
	logger.Debug("job state changed", zap.String("from", string(from)), zap.String("state", string(to)))
	o.notify(req, job, nil)
}

func (o *Orchestrator) notify(req Request, job *model.Job, p *transcribe.Progress) {
	if req.Observe != nil {
		req.Observe(Event{JobID: job.ID, State: job.State, Progress: p})
	}
}
