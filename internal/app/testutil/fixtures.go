package testutil

import (
	"archive/zip"
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"media2text/internal/app/command"
)

// FakeWAV is the content written for emulated audio files.
const FakeWAV = "RIFF\x24\x00\x00\x00WAVEfmt "

// WriteFile creates path (and parents) with content.
func WriteFile(t testing.TB, path, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// MediaFile creates a fake local media file named name in a temp dir.
func MediaFile(t testing.TB, name string) string {
	t.Helper()
	return WriteFile(t, filepath.Join(t.TempDir(), name), "\x00\x00\x00\x18ftypmp42")
}

// ZipEntries lists the base names of the files inside archive, sorted.
func ZipEntries(t testing.TB, archive string) []string {
	t.Helper()
	r, err := zip.OpenReader(archive)
	require.NoError(t, err)
	defer r.Close()

	var names []string
	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		names = append(names, filepath.Base(f.Name))
	}
	sort.Strings(names)
	return names
}

// FFmpegHandler emulates ffmpeg: the input must exist and the last argument
// receives a fake WAV.
func FFmpegHandler() CommandHandler {
	return func(ctx context.Context, cmd command.Command) (command.Result, error) {
		input := ArgAfter(cmd, "-i")
		if _, err := os.Stat(input); err != nil {
			return Fail(1, input+": No such file or directory")(ctx, cmd)
		}
		if err := os.WriteFile(LastArg(cmd), []byte(FakeWAV), 0o644); err != nil {
			return Fail(1, err.Error())(ctx, cmd)
		}
		return command.Result{}, nil
	}
}

// YtDlpHandler emulates yt-dlp extracting audio: one wav per id is written
// following the -o template.
func YtDlpHandler(ids ...string) CommandHandler {
	return func(ctx context.Context, cmd command.Command) (command.Result, error) {
		template := ArgAfter(cmd, "-o")
		for _, id := range ids {
			name := strings.NewReplacer("%(id)s", id, "%(ext)s", "wav").Replace(template)
			if err := os.WriteFile(name, []byte(FakeWAV), 0o644); err != nil {
				return Fail(1, err.Error())(ctx, cmd)
			}
		}
		return command.Result{}, nil
	}
}

// TafrighHandler emulates the recogniser writing one file per requested
// format next to the input stem.
func TafrighHandler() CommandHandler {
	return func(ctx context.Context, cmd command.Command) (command.Result, error) {
		input := cmd.Args[0]
		dir := ArgAfter(cmd, "--output_dir")
		stem := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
		for i, arg := range cmd.Args {
			if arg != "--output_formats" {
				continue
			}
			for _, ext := range cmd.Args[i+1:] {
				if strings.HasPrefix(ext, "--") {
					break
				}
				if err := os.WriteFile(filepath.Join(dir, stem+"."+ext), []byte("transcript of "+stem), 0o644); err != nil {
					return Fail(1, err.Error())(ctx, cmd)
				}
			}
		}
		return command.Result{}, nil
	}
}

// ZipHandler emulates `zip -r -q <archive> <dir>` run from cmd.Dir.
func ZipHandler() CommandHandler {
	return func(ctx context.Context, cmd command.Command) (command.Result, error) {
		n := len(cmd.Args)
		if n < 2 {
			return Fail(16, "zip error: Invalid command arguments")(ctx, cmd)
		}
		archive := resolve(cmd.Dir, cmd.Args[n-2])
		source := resolve(cmd.Dir, cmd.Args[n-1])
		if err := writeZip(archive, source, cmd.Dir); err != nil {
			return Fail(15, err.Error())(ctx, cmd)
		}
		return command.Result{}, nil
	}
}

func resolve(dir, p string) string {
	if filepath.IsAbs(p) || dir == "" {
		return p
	}
	return filepath.Join(dir, p)
}

func writeZip(archive, source, base string) error {
	out, err := os.Create(archive)
	if err != nil {
		return err
	}
	defer out.Close()

	zw := zip.NewWriter(out)
	err = filepath.Walk(source, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}
		rel, err := filepath.Rel(base, path)
		if err != nil {
			return err
		}
		w, err := zw.Create(filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		in, err := os.Open(path)
		if err != nil {
			return err
		}
		defer in.Close()
		_, err = io.Copy(w, in)
		return err
	})
	if err != nil {
		return err
	}
	return zw.Close()
}
