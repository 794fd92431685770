package transcribe

import (
	"context"
	"iter"
)

// Format is a transcript output format.
type Format string

const (
	FormatTXT Format = "txt"
	FormatSRT Format = "srt"
)

// DefaultFormats is the fixed artifact set every job produces, in order.
var DefaultFormats = []Format{FormatTXT, FormatSRT}

// Config is the recognised option set of the speech recognition service.
type Config struct {
	Inputs                 []string
	OutputDir              string
	OutputFormats          []Format
	AccessTokens           []string
	Language               string
	ModelNameOrPath        string
	MaxCuttingDuration     int
	MinWordsPerSegment     int
	SkipIfOutputExist      bool
	SaveFilesBeforeCompact bool
	SaveYtDlpResponses     bool
	Verbose                bool
}

// Progress is one processing step reported by the service.
type Progress struct {
	Step    int
	Message string
}

// Service is the external speech recognition engine. Run starts processing
// and returns its lazy progress sequence; outputs land in cfg.OutputDir and
// are complete only once the sequence is exhausted. An error ends the
// sequence.
type Service interface {
	Run(ctx context.Context, cfg Config) iter.Seq2[Progress, error]
}
