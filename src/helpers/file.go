package helpers

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

// EnsureDir creates dir and its parents. Concurrent callers racing on the same path are fine.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating directory %s: %w", dir, err)
	}
	return nil
}

// DeleteDataFile removes a file. A file that is already gone is not an error.
func DeleteDataFile(filePath string) error {
	err := os.Remove(filePath)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// FileExists checks if a file exists and is not a directory
func FileExists(filename string, logger *zap.SugaredLogger) bool {
	info, err := os.Stat(filename)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) && logger != nil {
			logger.Warnw("Error checking file for existence", "file", filename, "error", err)
		}
		return false
	}

	return !info.IsDir()
}

// SyncDir flushes the directory entry table of dir, making a completed rename durable.
func SyncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer d.Close()

	if err := unix.Fsync(int(d.Fd())); err != nil {
		// Some filesystems (tmpfs on older kernels, some FUSE mounts) refuse fsync on directories.
		if errors.Is(err, unix.EINVAL) || errors.Is(err, unix.ENOTSUP) {
			return nil
		}
		return err
	}
	return nil
}

// SyncFile flushes f's data to stable storage.
func SyncFile(f *os.File) error {
	return unix.Fsync(int(f.Fd()))
}

// DataFilePath joins a directory and a document key into the document's file name.
func DataFilePath(dir, key string) string {
	return filepath.Join(dir, key+".json")
}

func EncodeBSON(data interface{}) ([]byte, error) {
	bsonData, err := bson.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("error encoding BSON: %w", err)
	}
	return bsonData, nil
}

func DecodeBSON(bsonData []byte, out interface{}) error {
	if err := bson.Unmarshal(bsonData, out); err != nil {
		return fmt.Errorf("error decoding BSON: %w", err)
	}
	return nil
}
