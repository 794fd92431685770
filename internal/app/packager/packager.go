package packager

import (
	"context"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"media2text/internal/app/command"
	apperrors "media2text/internal/app/errors"
	"media2text/internal/app/workspace"
)

const stage = "package"

// Packager compresses a job workspace into a zip archive with the external
// zip tool.
type Packager struct {
	binary    string
	runner    command.Runner
	workspace *workspace.Manager
	logger    *zap.Logger
}

// NewPackager creates a Packager writing archives next to the workspaces
// managed by ws.
func NewPackager(binary string, runner command.Runner, ws *workspace.Manager, logger *zap.Logger) *Packager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Packager{binary: binary, runner: runner, workspace: ws, logger: logger}
}

// Args returns the zip arguments. The tool runs from the work root so the
// entries are stored under the job directory name.
func Args(archive, jobID string) []string {
	return []string{"-r", "-q", archive, jobID}
}

// Package archives the workspace of jobID and returns the archive path. The
// archive is a sibling of the workspace so it never contains itself.
func (p *Packager) Package(ctx context.Context, ws, jobID string) (string, error) {
	empty, err := p.workspace.IsEmpty(ws)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.KindPackaging, stage, "failed to package transcription results")
	}
	if empty {
		return "", apperrors.New(apperrors.KindPackaging, stage, "no transcription results to package")
	}

	archive := p.workspace.ArchivePath(jobID)
	cmd := command.Command{
		Name: p.binary,
		Args: Args(archive, filepath.Base(ws)),
		Dir:  filepath.Dir(ws),
	}
	p.logger.Debug("packaging workspace", zap.String("command", cmd.String()))

	if _, err := p.runner.Run(ctx, cmd); err != nil {
		return "", apperrors.Wrap(err, apperrors.KindPackaging, stage, "failed to package transcription results")
	}

	info, err := os.Stat(archive)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.KindPackaging, stage, "failed to package transcription results")
	}
	p.logger.Info("archive created", zap.String("archive", filepath.Base(archive)), zap.Int64("bytes", info.Size()))
	return archive, nil
}
