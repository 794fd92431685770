package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
	apperrors "media2text/internal/app/errors"
)

const stage = "workspace"

// ArchivePrefix starts every archive file name in the root.
const ArchivePrefix = "transcription_results_"

// Manager owns the root working area and the per-job directories in it.
type Manager struct {
	root   string
	logger *zap.Logger
}

// NewManager creates the root working area if needed.
func NewManager(root string, logger *zap.Logger) (*Manager, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve work root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create work root: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{root: abs, logger: logger}, nil
}

// Root returns the absolute root working area.
func (m *Manager) Root() string {
	return m.root
}

// Create makes a fresh empty directory for jobID. It fails if the directory
// already exists, so two live jobs can never share one.
func (m *Manager) Create(jobID string) (string, error) {
	if jobID == "" || strings.ContainsAny(jobID, `/\`) || jobID == "." || jobID == ".." {
		return "", apperrors.Newf(apperrors.KindWorkspaceCreation, stage, "invalid job id %q", jobID)
	}
	path := filepath.Join(m.root, jobID)
	if err := os.Mkdir(path, 0o755); err != nil {
		return "", apperrors.Wrap(err, apperrors.KindWorkspaceCreation, stage, "failed to create job workspace")
	}
	m.logger.Debug("workspace created", zap.String("job_id", jobID), zap.String("path", path))
	return path, nil
}

// Destroy removes the workspace and everything in it. Removing a path that
// is already gone is not an error.
func (m *Manager) Destroy(path string) error {
	if path == "" {
		return nil
	}
	if err := m.checkInRoot(path); err != nil {
		return err
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		m.logger.Debug("workspace already removed", zap.String("path", path))
		return nil
	}
	if err := os.RemoveAll(path); err != nil {
		return apperrors.Wrap(err, apperrors.KindCleanup, stage, "failed to remove workspace")
	}
	return nil
}

// ArchivePath is where the archive for jobID is written: a sibling of the
// workspace, never inside it.
func (m *Manager) ArchivePath(jobID string) string {
	return filepath.Join(m.root, ArchivePrefix+jobID+".zip")
}

// JobIDFromArchive extracts the job ID from an archive file name.
func JobIDFromArchive(path string) (string, bool) {
	name := filepath.Base(path)
	if !strings.HasPrefix(name, ArchivePrefix) || !strings.HasSuffix(name, ".zip") {
		return "", false
	}
	id := strings.TrimSuffix(strings.TrimPrefix(name, ArchivePrefix), ".zip")
	return id, id != ""
}

// RemoveArchive deletes an archive file, tolerating one that is missing.
func (m *Manager) RemoveArchive(path string) error {
	if path == "" {
		return nil
	}
	if err := m.checkInRoot(path); err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return apperrors.Wrap(err, apperrors.KindCleanup, stage, "failed to remove archive")
	}
	return nil
}

// Find lists regular files directly under dir with the given extension,
// matched case-insensitively and sorted lexicographically.
func (m *Manager) Find(dir, ext string) ([]string, error) {
	return FindFiles(dir, ext)
}

// IsEmpty reports whether dir has no entries.
func (m *Manager) IsEmpty(dir string) (bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false, err
	}
	return len(entries) == 0, nil
}

// FindFiles is Find without a manager.
func FindFiles(dir, ext string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	ext = strings.ToLower(ext)
	var found []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if strings.ToLower(filepath.Ext(entry.Name())) == ext {
			found = append(found, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(found)
	return found, nil
}

func (m *Manager) checkInRoot(path string) error {
	rel, err := filepath.Rel(m.root, path)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return apperrors.Newf(apperrors.KindCleanup, stage, "refusing to remove %q outside the work root", path)
	}
	return nil
}
