package workspace

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	apperrors "media2text/internal/app/errors"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(filepath.Join(t.TempDir(), "downloads"), zap.NewNop())
	require.NoError(t, err)
	return m
}

func TestNewManager_CreatesRoot(t *testing.T) {
	m := newTestManager(t)
	info, err := os.Stat(m.Root())
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.True(t, filepath.IsAbs(m.Root()))
}

func TestCreate(t *testing.T) {
	m := newTestManager(t)

	path, err := m.Create("job-1")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(m.Root(), "job-1"), path)

	empty, err := m.IsEmpty(path)
	require.NoError(t, err)
	assert.True(t, empty)
}

func TestCreate_ExistingDirectoryFails(t *testing.T) {
	m := newTestManager(t)

	_, err := m.Create("job-1")
	require.NoError(t, err)

	_, err = m.Create("job-1")
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, apperrors.ErrWorkspaceCreation))
}

func TestCreate_RejectsPathLikeIDs(t *testing.T) {
	m := newTestManager(t)
	for _, id := range []string{"", ".", "..", "../escape", "a/b"} {
		_, err := m.Create(id)
		assert.True(t, stderrors.Is(err, apperrors.ErrWorkspaceCreation), id)
	}
}

func TestCreate_ConcurrentUniqueIDs(t *testing.T) {
	m := newTestManager(t)

	const n = 64
	paths := make([]string, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			paths[i], errs[i] = m.Create(uuid.NewString())
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool)
	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		assert.False(t, seen[paths[i]], "duplicate workspace %s", paths[i])
		seen[paths[i]] = true
	}
}

func TestDestroy(t *testing.T) {
	m := newTestManager(t)
	path, err := m.Create("job-1")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(path, "clip.wav"), []byte("RIFF"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(path, "nested"), 0o755))

	require.NoError(t, m.Destroy(path))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestDestroy_Idempotent(t *testing.T) {
	m := newTestManager(t)
	path, err := m.Create("job-1")
	require.NoError(t, err)

	require.NoError(t, m.Destroy(path))
	assert.NoError(t, m.Destroy(path))
	assert.NoError(t, m.Destroy(filepath.Join(m.Root(), "never-created")))
	assert.NoError(t, m.Destroy(""))
}

func TestDestroy_RefusesOutsideRoot(t *testing.T) {
	m := newTestManager(t)
	outside := t.TempDir()

	err := m.Destroy(outside)
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, apperrors.ErrCleanup))
	_, statErr := os.Stat(outside)
	assert.NoError(t, statErr)

	assert.Error(t, m.Destroy(m.Root()), "root itself is never removed")
}

func TestArchivePath_IsSiblingOfWorkspace(t *testing.T) {
	m := newTestManager(t)
	ws, err := m.Create("abc")
	require.NoError(t, err)

	archive := m.ArchivePath("abc")
	assert.Equal(t, filepath.Join(m.Root(), "transcription_results_abc.zip"), archive)
	assert.Equal(t, filepath.Dir(ws), filepath.Dir(archive))
}

func TestRemoveArchive(t *testing.T) {
	m := newTestManager(t)
	archive := m.ArchivePath("abc")
	require.NoError(t, os.WriteFile(archive, []byte("PK"), 0o644))

	require.NoError(t, m.RemoveArchive(archive))
	_, err := os.Stat(archive)
	assert.True(t, os.IsNotExist(err))
	assert.NoError(t, m.RemoveArchive(archive))
}

func TestFind_SortedAndCaseInsensitive(t *testing.T) {
	m := newTestManager(t)
	ws, err := m.Create("job")
	require.NoError(t, err)
	for _, name := range []string{"b.wav", "A.WAV", "c.txt", "a.wav"} {
		require.NoError(t, os.WriteFile(filepath.Join(ws, name), nil, 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(ws, "dir.wav"), 0o755))

	found, err := m.Find(ws, ".wav")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(ws, "A.WAV"),
		filepath.Join(ws, "a.wav"),
		filepath.Join(ws, "b.wav"),
	}, found)
}

func TestJobIDFromArchive(t *testing.T) {
	m := newTestManager(t)

	id, ok := JobIDFromArchive(m.ArchivePath("abc-123"))
	assert.True(t, ok)
	assert.Equal(t, "abc-123", id)

	_, ok = JobIDFromArchive("/tmp/notes.zip")
	assert.False(t, ok)
	_, ok = JobIDFromArchive("/tmp/transcription_results_.zip")
	assert.False(t, ok)
}
