package config

import "time"

// Default configuration constants
const (
	// Server defaults
	DefaultHost         = "0.0.0.0"
	DefaultHTTPPort     = "5000"
	DefaultEnvironment  = "development"
	DefaultReadTimeout  = 30 * time.Second
	DefaultWriteTimeout = 60 * time.Minute
	DefaultIdleTimeout  = 120 * time.Second

	// Work area
	DefaultWorkRoot = "downloads"

	// External tools
	DefaultDownloaderBinary  = "yt-dlp"
	DefaultTranscoderBinary  = "ffmpeg"
	DefaultCompressorBinary  = "zip"
	DefaultTranscriberBinary = "tafrigh"

	// Transcription backends
	BackendTafrigh = "tafrigh"
	BackendOpenAI  = "openai"

	// Stage deadlines
	DefaultAcquireTimeout    = 15 * time.Minute
	DefaultTranscribeTimeout = 30 * time.Minute
	DefaultPackageTimeout    = 5 * time.Minute

	// Retention
	DefaultRetentionTTL   = 6 * time.Hour
	DefaultRetentionSweep = "@every 30m"

	// Object storage
	DefaultMinioBucket = "transcription-archives"
	DefaultMinioRegion = "us-east-1"
)
