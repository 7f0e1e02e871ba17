package engine

// The journal is an append-only, human readable record of every successful mutation.
// It is written after the document store has renamed the new file into place, so it
// describes what happened and is never replayed.

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// JournalEntry represents a single entry in the journal.
type JournalEntry struct {
	Timestamp  time.Time `json:"timestamp"`
	Command    string    `json:"command"`
	Collection string    `json:"collection"`
	Key        string    `json:"key"`
	Details    string    `json:"details"`
}

// Journal commands
const (
	JournalSave   = "SAVE"
	JournalMerge  = "MERGE"
	JournalDelete = "DELETE"
	JournalImport = "IMPORT"
)

// Recorder receives mutation notices. A nil Recorder is valid and records nothing.
type Recorder interface {
	Record(command, collection, key, details string)
}

// Journal writes one file per day: {dir}/mutations_YYYY-MM-DD.journal
type Journal struct {
	mu          sync.Mutex
	file        *os.File
	dir         string
	currentDate time.Time
	now         func() time.Time
	logger      *zap.SugaredLogger
}

// NewJournal opens today's journal file under dir.
func NewJournal(dir string, logger *zap.SugaredLogger) (*Journal, error) {
	journal := &Journal{
		dir:    dir,
		now:    time.Now,
		logger: logger,
	}

	if err := journal.ensureCorrectFileOpen(); err != nil {
		return nil, err
	}

	return journal, nil
}

func (j *Journal) fileNameFor(day time.Time) string {
	return filepath.Join(j.dir, fmt.Sprintf("mutations_%s.journal", day.Format("2006-01-02")))
}

// ensureCorrectFileOpen switches to a new file when the date has changed. Caller holds mu.
func (j *Journal) ensureCorrectFileOpen() error {
	today := j.now().UTC().Truncate(24 * time.Hour)

	if j.file != nil && j.currentDate.Equal(today) {
		return nil
	}

	if j.file != nil {
		if err := j.file.Close(); err != nil {
			return fmt.Errorf("failed to close previous journal file: %w", err)
		}
		j.file = nil
	}

	if err := os.MkdirAll(j.dir, 0755); err != nil {
		return fmt.Errorf("failed to create journal directory: %w", err)
	}

	fileName := j.fileNameFor(today)
	file, err := os.OpenFile(fileName, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open journal file %s: %w", fileName, err)
	}

	j.file = file
	j.currentDate = today

	return nil
}

// AddEntry appends an entry to the journal.
func (j *Journal) AddEntry(command, collection, key, details string) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if err := j.ensureCorrectFileOpen(); err != nil {
		return err
	}

	entry := JournalEntry{
		Timestamp:  j.now().UTC(),
		Command:    command,
		Collection: collection,
		Key:        key,
		Details:    strings.ReplaceAll(details, "\n", " "),
	}

	line := fmt.Sprintf("%s | %s | %s | %s | %s\n",
		entry.Timestamp.Format(time.RFC3339Nano), entry.Command, entry.Collection, entry.Key, entry.Details)

	if _, err := j.file.WriteString(line); err != nil {
		return fmt.Errorf("failed to write to journal file: %w", err)
	}

	return nil
}

// Record implements Recorder. Failures are logged, the mutation itself already succeeded.
func (j *Journal) Record(command, collection, key, details string) {
	if j == nil {
		return
	}
	if err := j.AddEntry(command, collection, key, details); err != nil && j.logger != nil {
		j.logger.Warnw("Failed to record journal entry",
			"command", command,
			"collection", collection,
			"key", key,
			"error", err)
	}
}

// Close closes the journal file.
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.file != nil {
		if err := j.file.Close(); err != nil {
			return fmt.Errorf("failed to close journal file: %w", err)
		}
		j.file = nil
	}
	return nil
}

// CleanupOldJournals removes journal files dated before retentionDays ago.
func (j *Journal) CleanupOldJournals(retentionDays int) (int, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	cutoff := j.now().UTC().Truncate(24*time.Hour).AddDate(0, 0, -retentionDays)

	files, err := os.ReadDir(j.dir)
	if err != nil {
		return 0, fmt.Errorf("error reading journal directory %s: %w", j.dir, err)
	}

	removed := 0
	for _, file := range files {
		name := file.Name()
		if file.IsDir() || !strings.HasPrefix(name, "mutations_") || !strings.HasSuffix(name, ".journal") {
			continue
		}
		day, err := time.Parse("2006-01-02", strings.TrimSuffix(strings.TrimPrefix(name, "mutations_"), ".journal"))
		if err != nil {
			continue
		}
		if day.Before(cutoff) {
			if err := os.Remove(filepath.Join(j.dir, name)); err != nil {
				return removed, fmt.Errorf("failed to remove journal %s: %w", name, err)
			}
			removed++
		}
	}

	return removed, nil
}
