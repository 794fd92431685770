package retention

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"media2text/internal/app/metrics"
	"media2text/internal/app/workspace"
	"media2text/internal/config"
)

// Sweeper periodically removes archives and workspaces left in the work root
// longer than the TTL, such as those of a process that crashed mid-job.
type Sweeper struct {
	root     string
	ttl      time.Duration
	schedule string
	cron     *cron.Cron
	metrics  *metrics.Metrics
	logger   *zap.Logger
	now      func() time.Time
}

// NewSweeper creates a sweeper for root.
func NewSweeper(root string, cfg config.RetentionConfig, m *metrics.Metrics, logger *zap.Logger) *Sweeper {
	if logger == nil {
		logger = zap.NewNop()
	}
	if m == nil {
		m = metrics.New()
	}
	cronLogger := cronLogger{logger.Sugar()}
	return &Sweeper{
		root:     root,
		ttl:      cfg.TTL,
		schedule: cfg.Schedule,
		cron:     cron.New(cron.WithLogger(cronLogger), cron.WithChain(cron.SkipIfStillRunning(cronLogger))),
		metrics:  m,
		logger:   logger,
		now:      time.Now,
	}
}

// Start schedules the sweep and starts the cron runner.
func (s *Sweeper) Start() error {
	_, err := s.cron.AddFunc(s.schedule, func() {
		if _, err := s.Sweep(); err != nil {
			s.logger.Error("retention sweep failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("invalid retention schedule %q: %w", s.schedule, err)
	}
	s.cron.Start()
	s.logger.Info("retention sweeper started",
		zap.String("schedule", s.schedule),
		zap.Duration("ttl", s.ttl),
	)
	return nil
}

// Stop stops scheduling; the returned context is done once a running sweep
// has finished.
func (s *Sweeper) Stop() context.Context {
	return s.cron.Stop()
}

// Sweep removes expired entries and returns how many were removed. Only
// archive files and job workspaces are considered; anything else in the root
// is left alone.
func (s *Sweeper) Sweep() (int, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return 0, fmt.Errorf("failed to read work root: %w", err)
	}

	cutoff := s.now().Add(-s.ttl)
	removed := 0
	var errs []error
	for _, entry := range entries {
		if !isManaged(entry) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}

		path := filepath.Join(s.root, entry.Name())
		if err := os.RemoveAll(path); err != nil {
			errs = append(errs, err)
			continue
		}
		removed++
		s.logger.Info("removed expired entry",
			zap.String("name", entry.Name()),
			zap.Time("modified", info.ModTime()),
		)
	}

	s.metrics.Swept(removed)
	return removed, errors.Join(errs...)
}

func isManaged(entry os.DirEntry) bool {
	name := entry.Name()
	if entry.IsDir() {
		_, err := uuid.Parse(name)
		return err == nil
	}
	if !entry.Type().IsRegular() {
		return false
	}
	_, ok := workspace.JobIDFromArchive(name)
	return ok
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	l *zap.SugaredLogger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debugw(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Errorw(msg, append(keysAndValues, "error", err)...)
}
