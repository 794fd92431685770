package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// Kind classifies a pipeline failure. The kind decides the HTTP status a
// caller sees, never the message.
type Kind string

const (
	KindValidation        Kind = "validation"
	KindMissingCredential Kind = "missing_credential"
	KindAcquisition       Kind = "acquisition"
	KindUnsupportedFormat Kind = "unsupported_format"
	KindConversion        Kind = "conversion"
	KindTranscription     Kind = "transcription"
	KindPackaging         Kind = "packaging"
	KindWorkspaceCreation Kind = "workspace_creation"
	KindCleanup           Kind = "cleanup"
	KindDelivery          Kind = "delivery"
	KindCancelled         Kind = "cancelled"
)

// Sentinel errors usable with errors.Is. A *PipelineError matches the
// sentinel of its kind.
var (
	ErrValidation        = New(KindValidation, "", "invalid request")
	ErrMissingCredential = New(KindMissingCredential, "", "API key is required")
	ErrAcquisition       = New(KindAcquisition, "", "failed to download or process the remote media")
	ErrUnsupportedFormat = New(KindUnsupportedFormat, "", "unsupported media format")
	ErrConversion        = New(KindConversion, "", "failed to process the local file")
	ErrTranscription     = New(KindTranscription, "", "transcription failed")
	ErrPackaging         = New(KindPackaging, "", "failed to package transcription results")
	ErrWorkspaceCreation = New(KindWorkspaceCreation, "", "failed to create job workspace")
	ErrCleanup           = New(KindCleanup, "", "cleanup failed")
	ErrDelivery          = New(KindDelivery, "", "failed to deliver archive")
	ErrCancelled         = New(KindCancelled, "", "job was cancelled")
)

// PipelineError is a failure raised by one pipeline stage.
type PipelineError struct {
	Kind    Kind
	Stage   string
	Message string
	Err     error
}

// New creates a PipelineError without an underlying cause.
func New(kind Kind, stage, message string) *PipelineError {
	return &PipelineError{Kind: kind, Stage: stage, Message: message}
}

// Newf creates a PipelineError with a formatted message.
func Newf(kind Kind, stage, format string, args ...interface{}) *PipelineError {
	return &PipelineError{Kind: kind, Stage: stage, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches kind and stage context to err. Returns nil for a nil err.
func Wrap(err error, kind Kind, stage, message string) error {
	if err == nil {
		return nil
	}
	return &PipelineError{Kind: kind, Stage: stage, Message: message, Err: err}
}

// Wrapf is Wrap with a formatted message.
func Wrapf(err error, kind Kind, stage, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return &PipelineError{Kind: kind, Stage: stage, Message: fmt.Sprintf(format, args...), Err: err}
}

func (e *PipelineError) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Message
	if e.Stage != "" {
		msg = e.Stage + ": " + msg
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *PipelineError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is reports whether target is a PipelineError of the same kind.
func (e *PipelineError) Is(target error) bool {
	t, ok := target.(*PipelineError)
	if !ok || e == nil {
		return false
	}
	return e.Kind == t.Kind
}

// KindOf returns the kind of the outermost PipelineError in err's chain, or
// the empty kind when there is none.
func KindOf(err error) Kind {
	var pe *PipelineError
	if stderrors.As(err, &pe) {
		return pe.Kind
	}
	return ""
}

// PublicMessage returns the message that is safe to show a caller. Causes
// are dropped since they may carry local paths or tool output.
func PublicMessage(err error) string {
	var pe *PipelineError
	if stderrors.As(err, &pe) && pe.Message != "" {
		return pe.Message
	}
	return "Internal server error"
}

// HTTPStatus maps an error kind to the response status.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindMissingCredential:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
