package dto

import (
	"strings"

	"media2text/internal/app/model"
	"media2text/internal/app/pipeline"
)

// ArchiveFilename is the download name of every delivered archive.
const ArchiveFilename = "transcription_results.zip"

// TranscribeRequest represents the request body of POST /transcribe.
// Exactly one of YouTubeURL and FilePath must be set.
type TranscribeRequest struct {
	APIKey       string `json:"api_key" example:"WIT_AI_TOKEN"`
	LanguageSign string `json:"language_sign,omitempty" binding:"omitempty,max=35" example:"ar"`
	YouTubeURL   string `json:"youtube_url,omitempty" binding:"omitempty,url" example:"https://www.youtube.com/watch?v=dQw4w9WgXcQ"`
	FilePath     string `json:"file_path,omitempty" example:"/media/lectures/clip.mp4"`
}

// ToPipeline converts the request into a pipeline job request.
func (r TranscribeRequest) ToPipeline() pipeline.Request {
	return pipeline.Request{
		Source: model.SourceDescriptor{
			RemoteURL: strings.TrimSpace(r.YouTubeURL),
			LocalPath: strings.TrimSpace(r.FilePath),
		},
		Credential: strings.TrimSpace(r.APIKey),
		Language:   r.LanguageSign,
	}
}
