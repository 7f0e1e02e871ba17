package engine

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestJournal(t *testing.T, now time.Time) (*Journal, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "journal")
	j := &Journal{
		dir:    dir,
		now:    func() time.Time { return now },
		logger: zaptest.NewLogger(t).Sugar(),
	}
	require.NoError(t, j.ensureCorrectFileOpen())
	t.Cleanup(func() { _ = j.Close() })
	return j, dir
}

func TestJournal_AddEntry(t *testing.T) {
	now := time.Date(2024, 3, 5, 10, 30, 0, 0, time.UTC)
	j, dir := newTestJournal(t, now)

	require.NoError(t, j.AddEntry(JournalMerge, "diagrams", "d1", "fields=name\nupdatedAt"))
	j.Record(JournalDelete, "diagram-filters", "d1", "")

	data, err := os.ReadFile(filepath.Join(dir, "mutations_2024-03-05.journal"))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "2024-03-05T10:30:00Z | MERGE | diagrams | d1 | fields=name updatedAt", lines[0])
	assert.Equal(t, "2024-03-05T10:30:00Z | DELETE | diagram-filters | d1 | ", lines[1])
}

func TestJournal_RotatesDaily(t *testing.T) {
	day := time.Date(2024, 3, 5, 23, 59, 0, 0, time.UTC)
	j, dir := newTestJournal(t, day)

	require.NoError(t, j.AddEntry(JournalSave, "diagrams", "d1", ""))
	j.now = func() time.Time { return day.Add(2 * time.Minute) }
	require.NoError(t, j.AddEntry(JournalSave, "diagrams", "d2", ""))

	assert.FileExists(t, filepath.Join(dir, "mutations_2024-03-05.journal"))
	assert.FileExists(t, filepath.Join(dir, "mutations_2024-03-06.journal"))
}

func TestJournal_CleanupOldJournals(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	j, dir := newTestJournal(t, now)

	for _, name := range []string{
		"mutations_2024-02-01.journal",
		"mutations_2024-03-08.journal",
		"mutations_garbage.journal",
		"notes.txt",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
	}

	removed, err := j.CleanupOldJournals(7)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.NoFileExists(t, filepath.Join(dir, "mutations_2024-02-01.journal"))
	assert.FileExists(t, filepath.Join(dir, "mutations_2024-03-08.journal"))
	assert.FileExists(t, filepath.Join(dir, "mutations_2024-03-10.journal"))
}

func TestJournal_NilRecordIsNoop(t *testing.T) {
	var j *Journal
	assert.NotPanics(t, func() {
		j.Record(JournalSave, "diagrams", "d1", "")
	})
}
