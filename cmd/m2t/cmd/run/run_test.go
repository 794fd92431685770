package run

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	apperrors "media2text/internal/app/errors"
	"media2text/internal/app/model"
	"media2text/internal/app/pipeline"
	"media2text/internal/app/transcribe"
)

type stubRunner struct {
	archive string
	err     error
	got     pipeline.Request
}

func (s *stubRunner) Run(ctx context.Context, req pipeline.Request, deliver pipeline.Deliver) (*model.Job, error) {
	s.got = req
	job := model.NewJob(req.Source, req.Credential, req.Language)
	if s.err != nil {
		return job, s.err
	}
	req.Observe(pipeline.Event{JobID: job.ID, State: model.StateValidated})
	if err := deliver(s.archive); err != nil {
		return job, err
	}
	req.Observe(pipeline.Event{JobID: job.ID, State: model.StateDelivered})
	return job, nil
}

func TestBuildRequest(t *testing.T) {
	t.Setenv(APIKeyEnv, "from-env")

	req := buildRequest(options{url: "https://youtu.be/dQw4w9WgXcQ", language: "ar", formats: []string{"srt"}})
	assert.Equal(t, "from-env", req.Credential)
	assert.Equal(t, model.SourceRemote, req.Source.Kind())
	assert.Equal(t, []transcribe.Format{transcribe.FormatSRT}, req.Formats)

	req = buildRequest(options{file: "clip.mp4", apiKey: "flag"})
	assert.Equal(t, "flag", req.Credential)
	assert.Equal(t, model.SourceLocal, req.Source.Kind())
	assert.Empty(t, req.Formats)
}

func TestExecute_WritesArchive(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "transcription_results_job.zip")
	require.NoError(t, os.WriteFile(archive, []byte("PK\x03\x04zip"), 0o644))
	out := filepath.Join(dir, "out.zip")

	runner := &stubRunner{archive: archive}
	err := execute(context.Background(), runner, options{file: "clip.mp4", apiKey: "k", out: out}, &bytes.Buffer{}, zap.NewNop())
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "PK\x03\x04zip", string(data))
	assert.Equal(t, "k", runner.got.Credential)
}

func TestExecute_ReturnsPublicMessage(t *testing.T) {
	runner := &stubRunner{err: apperrors.Wrap(os.ErrNotExist, apperrors.KindConversion, "acquire", "failed to process the local file")}
	out := filepath.Join(t.TempDir(), "out.zip")

	err := execute(context.Background(), runner, options{file: "clip.mp4", apiKey: "k", out: out}, &bytes.Buffer{}, zap.NewNop())
	require.Error(t, err)
	assert.Equal(t, "failed to process the local file", err.Error())
	assert.NoFileExists(t, out)
}

func TestCopyFile_MissingSource(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out.zip")

	require.Error(t, copyFile(filepath.Join(dir, "absent.zip"), out))
	assert.NoFileExists(t, out)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
