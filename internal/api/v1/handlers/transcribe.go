package handlers

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"media2text/internal/api/errors"
	"media2text/internal/api/middleware"
	"media2text/internal/api/v1/dto"
	"media2text/internal/app/model"
	"media2text/internal/app/pipeline"
	"media2text/internal/app/workspace"
)

// JobRunner runs one transcription job to completion.
type JobRunner interface {
	Run(ctx context.Context, req pipeline.Request, deliver pipeline.Deliver) (*model.Job, error)
}

// TranscribeHandler serves POST /transcribe.
type TranscribeHandler struct {
	runner JobRunner
	logger *zap.Logger
}

// NewTranscribeHandler creates a new transcribe handler
func NewTranscribeHandler(runner JobRunner, logger *zap.Logger) *TranscribeHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TranscribeHandler{runner: runner, logger: logger}
}

// Transcribe handles POST /transcribe
// Runs the whole pipeline for one media source and streams back the archive
//
// @Summary Transcribe a remote video or a local media file
// @Description Downloads or converts the media, transcribes it to txt and srt, and returns both in a zip archive
// @Tags transcription
// @Accept json
// @Produce application/zip
// @Produce json
// @Param request body dto.TranscribeRequest true "Media source and credential"
// @Success 200 {file} file "transcription_results.zip"
// @Failure 400 {object} errors.APIError "Bad request - missing or conflicting source"
// @Failure 401 {object} errors.APIError "Missing API key"
// @Failure 500 {object} errors.APIError "Pipeline stage failed"
// @Router /transcribe [post]
func (h *TranscribeHandler) Transcribe(c *gin.Context) {
	var req dto.TranscribeRequest
	err := middleware.ValidateRequest(c, &req)

	// A missing credential is reported before field problems.
	var apiErr *errors.APIError
	if strings.TrimSpace(req.APIKey) == "" && (err == nil || stderrors.As(err, &apiErr) && apiErr.Kind == errors.KindValidation) {
		err = errors.NewUnauthorizedError("API key is required")
	}
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	job, err := h.runner.Run(c.Request.Context(), req.ToPipeline(), h.deliver(c))
	if err == nil {
		return
	}
	if c.Writer.Written() {
		h.logger.Error("archive delivery interrupted",
			zap.String("request_id", c.GetString(middleware.RequestIDKey)),
			zap.String("job_id", jobID(job)),
			zap.Error(err),
		)
		_ = c.Error(err)
		return
	}
	middleware.HandleError(c, err)
}

func (h *TranscribeHandler) deliver(c *gin.Context) pipeline.Deliver {
	return func(archivePath string) error {
		f, err := os.Open(archivePath)
		if err != nil {
			return err
		}
		defer f.Close()

		info, err := f.Stat()
		if err != nil {
			return err
		}

		if id, ok := workspace.JobIDFromArchive(archivePath); ok {
			c.Header(middleware.JobIDHeader, id)
		}
		c.DataFromReader(http.StatusOK, info.Size(), "application/zip", f, map[string]string{
			"Content-Disposition": fmt.Sprintf("attachment; filename=%s", dto.ArchiveFilename),
		})
		if len(c.Errors) > 0 {
			return c.Errors.Last().Err
		}
		return nil
	}
}

func jobID(job *model.Job) string {
	if job == nil {
		return ""
	}
	return job.ID
}
