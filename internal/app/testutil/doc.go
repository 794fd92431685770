// Package testutil provides fakes and fixtures shared by the pipeline tests.
//
// FakeRunner stands in for external tools (yt-dlp, ffmpeg, zip, tafrigh):
// tests register a handler per binary that inspects the command and writes
// whatever files the real tool would have produced. Fixtures help read back
// archives and lay out media files in temporary directories.
package testutil
