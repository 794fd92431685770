package acquire

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"media2text/internal/app/audio"
	apperrors "media2text/internal/app/errors"
	"media2text/internal/app/testutil"
)

type mockDownloader struct {
	mock.Mock
}

func (m *mockDownloader) Fetch(ctx context.Context, url, dir string) error {
	args := m.Called(ctx, url, dir)
	return args.Error(0)
}

type mockConverter struct {
	mock.Mock
}

func (m *mockConverter) Convert(ctx context.Context, input, output string) error {
	args := m.Called(ctx, input, output)
	return args.Error(0)
}

func writeWAV(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, n := range names {
		testutil.WriteFile(t, filepath.Join(dir, n), testutil.FakeWAV)
	}
}

func TestAcquireRemote(t *testing.T) {
	ws := t.TempDir()
	dl := new(mockDownloader)
	dl.On("Fetch", mock.Anything, "https://youtu.be/abc", ws).
		Run(func(args mock.Arguments) { writeWAV(t, ws, "abc.wav") }).
		Return(nil)

	a := NewAcquirer(dl, new(mockConverter), nil)
	path, err := a.AcquireRemote(context.Background(), "https://youtu.be/abc", ws)

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(ws, "abc.wav"), path)
	dl.AssertExpectations(t)
}

func TestAcquireRemote_TieBreakIsLexicographic(t *testing.T) {
	ws := t.TempDir()
	dl := new(mockDownloader)
	dl.On("Fetch", mock.Anything, mock.Anything, ws).
		Run(func(args mock.Arguments) { writeWAV(t, ws, "zeta.wav", "alpha.wav", "mid.wav") }).
		Return(nil)

	path, err := NewAcquirer(dl, nil, nil).AcquireRemote(context.Background(), "https://youtu.be/x", ws)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(ws, "alpha.wav"), path)
}

func TestAcquireRemote_NoFiles(t *testing.T) {
	ws := t.TempDir()
	dl := new(mockDownloader)
	dl.On("Fetch", mock.Anything, mock.Anything, ws).
		Run(func(args mock.Arguments) { testutil.WriteFile(t, filepath.Join(ws, "abc.webm"), "x") }).
		Return(nil)

	_, err := NewAcquirer(dl, nil, nil).AcquireRemote(context.Background(), "https://youtu.be/abc", ws)
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, apperrors.ErrAcquisition))
}

func TestAcquireRemote_DownloaderFails(t *testing.T) {
	dl := new(mockDownloader)
	dl.On("Fetch", mock.Anything, mock.Anything, mock.Anything).Return(fmt.Errorf("yt-dlp failed: exit 1"))

	_, err := NewAcquirer(dl, nil, nil).AcquireRemote(context.Background(), "https://youtu.be/abc", t.TempDir())
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, apperrors.ErrAcquisition))
	assert.Equal(t, "failed to download or process the YouTube video", apperrors.PublicMessage(err))
}

func TestAcquireLocal(t *testing.T) {
	ws := t.TempDir()
	input := testutil.MediaFile(t, "clip.mp4")
	runner := testutil.NewFakeRunner().Handle("ffmpeg", testutil.FFmpegHandler())

	a := NewAcquirer(nil, audio.NewTranscoder("ffmpeg", runner, nil), nil)
	path, err := a.AcquireLocal(context.Background(), input, ws)

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(ws, "clip.wav"), path)
	assert.FileExists(t, path)

	entries, err := os.ReadDir(ws)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "exactly one audio file is written")
}

func TestAcquireLocal_UnsupportedFormatRunsNoTool(t *testing.T) {
	conv := new(mockConverter)
	input := testutil.MediaFile(t, "notes.txt")

	_, err := NewAcquirer(nil, conv, nil).AcquireLocal(context.Background(), input, t.TempDir())
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, apperrors.ErrUnsupportedFormat))
	conv.AssertNotCalled(t, "Convert", mock.Anything, mock.Anything, mock.Anything)
}

func TestAcquireLocal_MissingInput(t *testing.T) {
	conv := new(mockConverter)
	_, err := NewAcquirer(nil, conv, nil).AcquireLocal(context.Background(), filepath.Join(t.TempDir(), "gone.mp4"), t.TempDir())
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, apperrors.ErrConversion))
	conv.AssertNotCalled(t, "Convert", mock.Anything, mock.Anything, mock.Anything)
}

func TestAcquireLocal_DirectoryInput(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "folder.mp4")
	require.NoError(t, os.Mkdir(dir, 0o755))

	_, err := NewAcquirer(nil, new(mockConverter), nil).AcquireLocal(context.Background(), dir, t.TempDir())
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, apperrors.ErrConversion))
}

func TestAcquireLocal_ConverterFails(t *testing.T) {
	conv := new(mockConverter)
	conv.On("Convert", mock.Anything, mock.Anything, mock.Anything).Return(fmt.Errorf("FFmpeg error: exit 1"))
	input := testutil.MediaFile(t, "clip.mkv")

	_, err := NewAcquirer(nil, conv, nil).AcquireLocal(context.Background(), input, t.TempDir())
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, apperrors.ErrConversion))
	conv.AssertExpectations(t)
}

func TestAcquireLocal_ConverterLeavesNoOutput(t *testing.T) {
	conv := new(mockConverter)
	conv.On("Convert", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	input := testutil.MediaFile(t, "clip.avi")

	_, err := NewAcquirer(nil, conv, nil).AcquireLocal(context.Background(), input, t.TempDir())
	assert.True(t, stderrors.Is(err, apperrors.ErrConversion))
}
