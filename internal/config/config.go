package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// ConfigPathEnv names the variable pointing at an optional YAML file.
const ConfigPathEnv = "M2T_CONFIG"

// Config is the complete runtime configuration.
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	WorkRoot    string            `yaml:"work_root"`
	Tools       ToolsConfig       `yaml:"tools"`
	Transcriber TranscriberConfig `yaml:"transcriber"`
	Pipeline    PipelineConfig    `yaml:"pipeline"`
	Retention   RetentionConfig   `yaml:"retention"`
	Storage     StorageConfig     `yaml:"storage"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         string        `yaml:"port"`
	Environment  string        `yaml:"environment"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
}

// ToolsConfig holds the external binaries the pipeline shells out to.
type ToolsConfig struct {
	Downloader  string `yaml:"downloader"`
	Transcoder  string `yaml:"transcoder"`
	Compressor  string `yaml:"compressor"`
	Transcriber string `yaml:"transcriber"`
}

// TranscriberConfig selects the speech recognition backend.
type TranscriberConfig struct {
	Backend       string `yaml:"backend"`
	OpenAIBaseURL string `yaml:"openai_base_url,omitempty"`
}

// PipelineConfig holds per-stage deadlines and the concurrency cap.
type PipelineConfig struct {
	AcquireTimeout    time.Duration `yaml:"acquire_timeout"`
	TranscribeTimeout time.Duration `yaml:"transcribe_timeout"`
	PackageTimeout    time.Duration `yaml:"package_timeout"`
	MaxConcurrentJobs int           `yaml:"max_concurrent_jobs"`
}

// MaxJobDuration is the longest a job can hold its workspace: the sum of the
// stage deadlines.
func (p PipelineConfig) MaxJobDuration() time.Duration {
	return p.AcquireTimeout + p.TranscribeTimeout + p.PackageTimeout
}

// RetentionConfig controls the sweep of stale archives and workspaces.
type RetentionConfig struct {
	Enabled  bool          `yaml:"enabled"`
	TTL      time.Duration `yaml:"ttl"`
	Schedule string        `yaml:"schedule"`
}

// StorageConfig enables the optional object storage mirror of archives.
type StorageConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	UseSSL    bool   `yaml:"use_ssl"`
}

// Default returns a configuration populated with defaults only.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         DefaultHost,
			Port:         DefaultHTTPPort,
			Environment:  DefaultEnvironment,
			ReadTimeout:  DefaultReadTimeout,
			WriteTimeout: DefaultWriteTimeout,
			IdleTimeout:  DefaultIdleTimeout,
		},
		WorkRoot: DefaultWorkRoot,
		Tools: ToolsConfig{
			Downloader:  DefaultDownloaderBinary,
			Transcoder:  DefaultTranscoderBinary,
			Compressor:  DefaultCompressorBinary,
			Transcriber: DefaultTranscriberBinary,
		},
		Transcriber: TranscriberConfig{
			Backend: BackendTafrigh,
		},
		Pipeline: PipelineConfig{
			AcquireTimeout:    DefaultAcquireTimeout,
			TranscribeTimeout: DefaultTranscribeTimeout,
			PackageTimeout:    DefaultPackageTimeout,
		},
		Retention: RetentionConfig{
			Enabled:  true,
			TTL:      DefaultRetentionTTL,
			Schedule: DefaultRetentionSweep,
		},
		Storage: StorageConfig{
			Bucket: DefaultMinioBucket,
			Region: DefaultMinioRegion,
		},
	}
}

// Load builds the configuration: defaults, then the YAML file named by
// M2T_CONFIG (if any), then M2T_* environment overrides. The result is
// validated before it is returned.
func Load() (*Config, error) {
	cfg := Default()

	if path := getEnvOrDefault(ConfigPathEnv, ""); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, fmt.Errorf("invalid environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	path = os.ExpandEnv(path)

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	c.Storage.AccessKey = os.ExpandEnv(c.Storage.AccessKey)
	c.Storage.SecretKey = os.ExpandEnv(c.Storage.SecretKey)
	return nil
}

func (c *Config) applyEnv() error {
	overrideString(&c.Server.Host, "M2T_HOST")
	overrideString(&c.Server.Port, "M2T_PORT")
	overrideString(&c.Server.Environment, "M2T_ENV")
	overrideString(&c.WorkRoot, "M2T_WORK_ROOT")
	overrideString(&c.Tools.Downloader, "M2T_YTDLP_BINARY")
	overrideString(&c.Tools.Transcoder, "M2T_FFMPEG_BINARY")
	overrideString(&c.Tools.Compressor, "M2T_ZIP_BINARY")
	overrideString(&c.Tools.Transcriber, "M2T_TAFRIGH_BINARY")
	overrideString(&c.Transcriber.Backend, "M2T_TRANSCRIBER")
	overrideString(&c.Transcriber.OpenAIBaseURL, "M2T_OPENAI_BASE_URL")
	overrideString(&c.Retention.Schedule, "M2T_RETENTION_SCHEDULE")
	overrideString(&c.Storage.Endpoint, "MINIO_ENDPOINT")
	overrideString(&c.Storage.AccessKey, "MINIO_ACCESS_KEY")
	overrideString(&c.Storage.SecretKey, "MINIO_SECRET_KEY")
	overrideString(&c.Storage.Bucket, "MINIO_BUCKET")
	overrideString(&c.Storage.Region, "MINIO_REGION")

	setters := []func() error{
		func() error { return overrideDuration(&c.Server.ReadTimeout, "M2T_READ_TIMEOUT") },
		func() error { return overrideDuration(&c.Server.WriteTimeout, "M2T_WRITE_TIMEOUT") },
		func() error { return overrideDuration(&c.Pipeline.AcquireTimeout, "M2T_ACQUIRE_TIMEOUT") },
		func() error { return overrideDuration(&c.Pipeline.TranscribeTimeout, "M2T_TRANSCRIBE_TIMEOUT") },
		func() error { return overrideDuration(&c.Pipeline.PackageTimeout, "M2T_PACKAGE_TIMEOUT") },
		func() error { return overrideInt(&c.Pipeline.MaxConcurrentJobs, "M2T_MAX_CONCURRENT_JOBS") },
		func() error { return overrideBool(&c.Retention.Enabled, "M2T_RETENTION_ENABLED") },
		func() error { return overrideDuration(&c.Retention.TTL, "M2T_RETENTION_TTL") },
		func() error { return overrideBool(&c.Storage.Enabled, "M2T_ARCHIVE_MIRROR") },
		func() error { return overrideBool(&c.Storage.UseSSL, "MINIO_USE_SSL") },
	}
	for _, set := range setters {
		if err := set(); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks the configuration, failing on the first problem.
func (c *Config) Validate() error {
	if err := ValidatePort(c.Server.Port, "server"); err != nil {
		return err
	}
	if err := ValidateRequired(c.WorkRoot, "work_root"); err != nil {
		return err
	}
	for name, bin := range map[string]string{
		"tools.downloader": c.Tools.Downloader,
		"tools.transcoder": c.Tools.Transcoder,
		"tools.compressor": c.Tools.Compressor,
	} {
		if err := ValidateRequired(bin, name); err != nil {
			return err
		}
	}

	switch c.Transcriber.Backend {
	case BackendTafrigh:
		if err := ValidateRequired(c.Tools.Transcriber, "tools.transcriber"); err != nil {
			return err
		}
	case BackendOpenAI:
		if c.Transcriber.OpenAIBaseURL != "" {
			if err := ValidateURL(c.Transcriber.OpenAIBaseURL, "openai base"); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("unknown transcriber backend %q", c.Transcriber.Backend)
	}

	if err := ValidateTimeout(c.Pipeline.AcquireTimeout, "acquire"); err != nil {
		return err
	}
	if err := ValidateTimeout(c.Pipeline.TranscribeTimeout, "transcribe"); err != nil {
		return err
	}
	if err := ValidateTimeout(c.Pipeline.PackageTimeout, "package"); err != nil {
		return err
	}
	if err := ValidateConcurrency(c.Pipeline.MaxConcurrentJobs, "pipeline"); err != nil {
		return err
	}

	if c.Retention.Enabled {
		if c.Retention.TTL <= 0 {
			return fmt.Errorf("retention ttl must be positive")
		}
		// A sweep must never catch a workspace whose job can still be running.
		if lifetime := c.Pipeline.MaxJobDuration(); c.Retention.TTL <= lifetime {
			return fmt.Errorf("retention ttl %s must exceed the longest job duration %s", c.Retention.TTL, lifetime)
		}
		if _, err := cron.ParseStandard(c.Retention.Schedule); err != nil {
			return fmt.Errorf("invalid retention schedule %q: %w", c.Retention.Schedule, err)
		}
	}

	if c.Storage.Enabled {
		if err := ValidateRequired(c.Storage.Endpoint, "storage.endpoint"); err != nil {
			return err
		}
		if err := ValidateRequired(c.Storage.Bucket, "storage.bucket"); err != nil {
			return err
		}
	}

	return nil
}

// AbsWorkRoot resolves the work root against the current directory.
func (c *Config) AbsWorkRoot() (string, error) {
	return filepath.Abs(c.WorkRoot)
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}
