package test

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"media2text/internal/api/middleware"
	"media2text/internal/api/v1/handlers"
	"media2text/internal/app/acquire"
	"media2text/internal/app/api/tafrigh"
	"media2text/internal/app/audio"
	"media2text/internal/app/packager"
	"media2text/internal/app/pipeline"
	"media2text/internal/app/testutil"
	"media2text/internal/app/transcribe"
	"media2text/internal/app/workspace"
	"media2text/internal/config"
	"media2text/internal/downloader"
)

// setupPipelineRouter serves /transcribe backed by a real orchestrator whose
// external tools are emulated.
func setupPipelineRouter(t *testing.T) (*gin.Engine, string, *testutil.FakeRunner) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mgr, err := workspace.NewManager(t.TempDir(), nil)
	require.NoError(t, err)

	runner := testutil.NewFakeRunner().
		Handle("ffmpeg", testutil.FFmpegHandler()).
		Handle("yt-dlp", testutil.YtDlpHandler("dQw4w9WgXcQ")).
		Handle("tafrigh", testutil.TafrighHandler()).
		Handle("zip", testutil.ZipHandler())

	orch := pipeline.NewOrchestrator(pipeline.Dependencies{
		Workspace: mgr,
		Acquirer: acquire.NewAcquirer(
			downloader.NewYtDlp("yt-dlp", runner, nil),
			audio.NewTranscoder("ffmpeg", runner, nil),
			nil,
		),
		Transcriber: transcribe.NewRunner(tafrigh.NewCLIService("tafrigh", runner, nil), nil),
		Packager:    packager.NewPackager("zip", runner, mgr, nil),
	}, config.PipelineConfig{}, nil)

	router := gin.New()
	router.Use(middleware.RequestID())
	router.POST("/transcribe", handlers.NewTranscribeHandler(orch, nil).Transcribe)
	return router, mgr.Root(), runner
}

func assertRootEmpty(t *testing.T, root string) {
	t.Helper()
	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Empty(t, entries, "no workspace or archive may outlive the response")
}

func TestTranscribePipeline_LocalClip(t *testing.T) {
	router, root, runner := setupPipelineRouter(t)
	input := testutil.MediaFile(t, "clip.mp4")

	w := post(router, `{"api_key":"secret","file_path":"`+input+`"}`)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "application/zip", w.Header().Get("Content-Type"))
	assert.Equal(t, "attachment; filename=transcription_results.zip", w.Header().Get("Content-Disposition"))
	assert.NotEmpty(t, w.Header().Get("X-Job-ID"))

	archive := filepath.Join(t.TempDir(), "response.zip")
	require.NoError(t, os.WriteFile(archive, w.Body.Bytes(), 0o644))
	assert.Equal(t, []string{"clip.srt", "clip.txt", "clip.wav"}, testutil.ZipEntries(t, archive))

	assert.Len(t, runner.CallsTo("ffmpeg"), 1)
	assertRootEmpty(t, root)
}

func TestTranscribePipeline_RemoteURL(t *testing.T) {
	router, root, runner := setupPipelineRouter(t)

	w := post(router, `{"api_key":"secret","language_sign":"ar","youtube_url":"https://www.youtube.com/watch?v=dQw4w9WgXcQ"}`)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	archive := filepath.Join(t.TempDir(), "response.zip")
	require.NoError(t, os.WriteFile(archive, w.Body.Bytes(), 0o644))
	assert.Equal(t, []string{"dQw4w9WgXcQ.srt", "dQw4w9WgXcQ.txt", "dQw4w9WgXcQ.wav"}, testutil.ZipEntries(t, archive))

	calls := runner.CallsTo("tafrigh")
	require.Len(t, calls, 1)
	assert.Equal(t, "ar", testutil.ArgAfter(calls[0], "--language"))
	assertRootEmpty(t, root)
}

func TestTranscribePipeline_Rejections(t *testing.T) {
	testCases := []struct {
		name   string
		body   string
		status int
		error  string
	}{
		{
			name:   "missing api key",
			body:   `{"file_path":"clip.mp4"}`,
			status: http.StatusUnauthorized,
			error:  "API key is required",
		},
		{
			name:   "no source",
			body:   `{"api_key":"secret"}`,
			status: http.StatusBadRequest,
			error:  "No YouTube URL or file path provided",
		},
		{
			name:   "both sources",
			body:   `{"api_key":"secret","file_path":"clip.mp4","youtube_url":"https://youtu.be/dQw4w9WgXcQ"}`,
			status: http.StatusBadRequest,
			error:  "Provide either youtube_url or file_path, not both",
		},
		{
			name:   "unsupported extension",
			body:   `{"api_key":"secret","file_path":"notes.docx"}`,
			status: http.StatusInternalServerError,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			router, root, runner := setupPipelineRouter(t)

			w := post(router, tc.body)

			assert.Equal(t, tc.status, w.Code)
			if tc.error != "" {
				assert.Equal(t, tc.error, errorBody(t, w)["error"])
			}
			assert.Empty(t, runner.Calls(), "no external tool may run")
			assertRootEmpty(t, root)
		})
	}
}

func TestTranscribePipeline_ToolFailureCleansUp(t *testing.T) {
	router, root, runner := setupPipelineRouter(t)
	runner.Handle("tafrigh", testutil.Fail(1, "wit.ai: invalid token"))
	input := testutil.MediaFile(t, "clip.mp4")

	w := post(router, `{"api_key":"secret","file_path":"`+input+`"}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), root)
	assert.NotContains(t, w.Body.String(), "invalid token")
	assertRootEmpty(t, root)
}
