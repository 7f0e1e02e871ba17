package engine

import (
	"fmt"
	"os"
	"path/filepath"

	"diagramdb/src/helpers"
	"diagramdb/src/models"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// TempSuffix is appended to a document path while it is being written.
// Readers only ever open the path without it.
const TempSuffix = ".tmp"

// AtomicFileWriter replaces files so that readers see either the old or the new content.
//
// Protocol: encode, write {path}.tmp, fsync it, rename over {path}, fsync the directory,
// then optionally read the file back and parse it.
type AtomicFileWriter struct {
	verify   bool
	registry *PathRegistry
	logger   *zap.SugaredLogger

	// beforeRename runs after the temp file is durable and before it is renamed.
	beforeRename func(tmpPath string) error
}

func NewAtomicFileWriter(verify bool, logger *zap.SugaredLogger) *AtomicFileWriter {
	return &AtomicFileWriter{
		verify:   verify,
		registry: NewPathRegistry(),
		logger:   logger,
	}
}

// Write persists doc at path and returns the bytes that were written.
func (w *AtomicFileWriter) Write(path string, doc models.Document) ([]byte, error) {
	data, err := EncodeDocument(doc)
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(path)
	if err := helpers.EnsureDir(dir); err != nil {
		return nil, err
	}

	w.registry.Lock(path)
	defer w.registry.Unlock(path)

	tmpPath := path + TempSuffix
	if err := writeTempFile(tmpPath, data); err != nil {
		return nil, w.abandon(tmpPath, err)
	}

	if w.beforeRename != nil {
		if err := w.beforeRename(tmpPath); err != nil {
			return nil, w.abandon(tmpPath, err)
		}
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return nil, w.abandon(tmpPath, fmt.Errorf("error renaming %s into place: %w", tmpPath, err))
	}

	if err := helpers.SyncDir(dir); err != nil {
		// The rename already happened; the document is readable, only its durability is unknown.
		if w.logger != nil {
			w.logger.Warnw("Failed to sync directory after rename", "dir", dir, "error", err)
		}
	}

	if w.verify {
		if err := verifyDocument(path); err != nil {
			return nil, err
		}
	}

	return data, nil
}

func writeTempFile(tmpPath string, data []byte) (err error) {
	file, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("error creating temp file %s: %w", tmpPath, err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			err = multierr.Append(err, fmt.Errorf("error closing temp file %s: %w", tmpPath, cerr))
		}
	}()

	fileLen, err := file.Write(data)
	if err != nil {
		return fmt.Errorf("error writing temp file %s: %w", tmpPath, err)
	}
	if fileLen != len(data) {
		return fmt.Errorf("error writing temp file %s: wrote %d bytes, expected %d", tmpPath, fileLen, len(data))
	}

	if err := helpers.SyncFile(file); err != nil {
		return fmt.Errorf("error syncing temp file %s: %w", tmpPath, err)
	}
	return nil
}

// abandon removes a temp file left by a failed write and folds any removal error into cause.
func (w *AtomicFileWriter) abandon(tmpPath string, cause error) error {
	if err := helpers.DeleteDataFile(tmpPath); err != nil {
		cause = multierr.Append(cause, fmt.Errorf("error removing temp file %s: %w", tmpPath, err))
	}
	if w.logger != nil {
		w.logger.Errorw("Atomic write failed", "tmp", tmpPath, "error", cause)
	}
	return cause
}

func verifyDocument(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrWriteVerification, path, err)
	}
	if _, err := DecodeDocument(data); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrWriteVerification, path, err)
	}
	return nil
}
