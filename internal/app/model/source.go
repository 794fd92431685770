package model

import "strings"

// SourceKind tags which SourceDescriptor variant is populated.
type SourceKind string

const (
	SourceNone   SourceKind = ""
	SourceRemote SourceKind = "remote"
	SourceLocal  SourceKind = "local"
)

// SourceDescriptor names the media to transcribe: either a remote URL or a
// local file path, never both.
type SourceDescriptor struct {
	RemoteURL string
	LocalPath string
}

// RemoteSource builds a descriptor for a remote media URL.
func RemoteSource(url string) SourceDescriptor {
	return SourceDescriptor{RemoteURL: url}
}

// LocalSource builds a descriptor for a local media file.
func LocalSource(path string) SourceDescriptor {
	return SourceDescriptor{LocalPath: path}
}

// Kind returns the populated variant, or SourceNone when zero or two
// variants are set.
func (s SourceDescriptor) Kind() SourceKind {
	remote := strings.TrimSpace(s.RemoteURL) != ""
	local := strings.TrimSpace(s.LocalPath) != ""
	switch {
	case remote && !local:
		return SourceRemote
	case local && !remote:
		return SourceLocal
	default:
		return SourceNone
	}
}

// Populated counts the variants that are set.
func (s SourceDescriptor) Populated() int {
	n := 0
	if strings.TrimSpace(s.RemoteURL) != "" {
		n++
	}
	if strings.TrimSpace(s.LocalPath) != "" {
		n++
	}
	return n
}
