package downloader

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"media2text/internal/app/testutil"
)

func TestParseURL(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expectError bool
	}{
		{"https", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", false},
		{"http with spaces", "  http://youtu.be/dQw4w9WgXcQ ", false},
		{"file scheme", "file:///etc/passwd", true},
		{"no scheme", "youtube.com/watch?v=x", true},
		{"no host", "https://", true},
		{"garbage", "%zz", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseURL(tt.input)
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestArgs(t *testing.T) {
	args := Args("https://youtu.be/abc", "/work/job")
	assert.Equal(t, "https://youtu.be/abc", args[len(args)-1])
	assert.Contains(t, args, "--no-playlist")
	assert.Contains(t, args, "-x")

	cmdTemplate := ""
	for i, a := range args {
		if a == "-o" {
			cmdTemplate = args[i+1]
		}
	}
	assert.Equal(t, filepath.Join("/work/job", "%(id)s.%(ext)s"), cmdTemplate)
}

func TestYtDlp_Fetch(t *testing.T) {
	dir := t.TempDir()
	runner := testutil.NewFakeRunner().Handle("yt-dlp", testutil.YtDlpHandler("abc123"))
	y := NewYtDlp("yt-dlp", runner, nil)

	require.NoError(t, y.Fetch(context.Background(), "https://youtu.be/abc123", dir))
	assert.FileExists(t, filepath.Join(dir, "abc123.wav"))
	require.Len(t, runner.CallsTo("yt-dlp"), 1)
	assert.Equal(t, "wav", testutil.ArgAfter(runner.CallsTo("yt-dlp")[0], "--audio-format"))
}

func TestYtDlp_FetchToolFailure(t *testing.T) {
	runner := testutil.NewFakeRunner().Handle("yt-dlp", testutil.Fail(1, "ERROR: Video unavailable"))
	y := NewYtDlp("yt-dlp", runner, nil)

	err := y.Fetch(context.Background(), "https://youtu.be/gone", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Video unavailable")
}

func TestYtDlp_FetchRejectsBadURLWithoutRunning(t *testing.T) {
	runner := testutil.NewFakeRunner()
	y := NewYtDlp("yt-dlp", runner, nil)

	require.Error(t, y.Fetch(context.Background(), "file:///etc/passwd", t.TempDir()))
	assert.Empty(t, runner.Calls())
}
