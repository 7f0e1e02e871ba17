package engine

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"diagramdb/src/helpers"
	"diagramdb/src/models"

	"go.uber.org/zap"
)

const (
	DiagramsDirName = "diagrams"
	FiltersDirName  = "diagram_filters"
	ConfigFileName  = models.ConfigKey + ".json"
)

// DocumentStore defines the storage operations on JSON documents grouped by collection.
//
// Consistency: each Put is atomic for its key and readers always see a whole document,
// but there is no version check. Two callers that read, modify and Put the same key
// concurrently race, and the one whose rename lands last wins in full; the other update
// is lost. Reads across several keys are not a consistent snapshot.
type DocumentStore interface {
	Get(collection models.Collection, key string) (models.Document, error)

	// Read returns the document together with the entity tag of its stored bytes.
	Read(collection models.Collection, key string) (*StoredDocument, error)

	// List returns every readable document of the collection in key order.
	// Unreadable or corrupt files are logged and skipped.
	List(collection models.Collection) ([]models.Document, error)

	Keys(collection models.Collection) ([]string, error)

	// Put atomically replaces the document stored under key and returns its entity tag.
	Put(collection models.Collection, key string, doc models.Document) (string, error)

	// Delete removes key. Removing a key that does not exist succeeds.
	Delete(collection models.Collection, key string) error
}

// StoredDocument is a document as read from disk.
type StoredDocument struct {
	Key      string
	Document models.Document
	ETag     string
}

type collectionLayout struct {
	dir string
	// idField is overwritten with the key on every read. Empty for collections whose
	// documents do not carry their own key.
	idField string
	// singleKey is set for collections that hold exactly one document.
	singleKey string
	fileName  string
}

// DocumentStorageEngine stores one JSON file per document under DataDirectory.
type DocumentStorageEngine struct {
	DataDirectory string
	writer        *AtomicFileWriter
	layouts       map[models.Collection]collectionLayout
	logger        *zap.SugaredLogger
}

func NewDocumentStore(dataDir string, writer *AtomicFileWriter, logger *zap.SugaredLogger) (*DocumentStorageEngine, error) {
	store := &DocumentStorageEngine{
		DataDirectory: dataDir,
		writer:        writer,
		logger:        logger,
		layouts: map[models.Collection]collectionLayout{
			models.Diagrams: {
				dir:     filepath.Join(dataDir, DiagramsDirName),
				idField: models.IDField,
			},
			models.DiagramFilters: {
				dir: filepath.Join(dataDir, FiltersDirName),
			},
			models.Config: {
				dir:       dataDir,
				singleKey: models.ConfigKey,
				fileName:  ConfigFileName,
			},
		},
	}

	// Ensure the data directory exists
	if err := os.MkdirAll(store.DataDirectory, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory %s: %w", store.DataDirectory, err)
	}

	return store, nil
}

func (s *DocumentStorageEngine) Get(collection models.Collection, key string) (models.Document, error) {
	stored, err := s.Read(collection, key)
	if err != nil {
		return nil, err
	}
	return stored.Document, nil
}

func (s *DocumentStorageEngine) Read(collection models.Collection, key string) (*StoredDocument, error) {
	layout, filePath, err := s.resolve(collection, key)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, collection, key)
		}
		return nil, fmt.Errorf("error reading document %s: %w", filePath, err)
	}

	doc, err := DecodeDocument(data)
	if err != nil {
		return nil, &CorruptDocumentError{Path: filePath, Err: err}
	}
	if layout.idField != "" {
		doc[layout.idField] = key
	}

	return &StoredDocument{
		Key:      key,
		Document: doc,
		ETag:     helpers.ContentETag(data),
	}, nil
}

func (s *DocumentStorageEngine) List(collection models.Collection) ([]models.Document, error) {
	keys, err := s.Keys(collection)
	if err != nil {
		return nil, err
	}

	documents := make([]models.Document, 0, len(keys))
	for _, key := range keys {
		doc, err := s.Get(collection, key)
		if err != nil {
			// A file removed between ReadDir and ReadFile is simply gone.
			if !errors.Is(err, ErrNotFound) && s.logger != nil {
				s.logger.Warnw("Skipping unreadable document",
					"collection", collection,
					"key", key,
					"error", err)
			}
			continue
		}
		documents = append(documents, doc)
	}

	return documents, nil
}

func (s *DocumentStorageEngine) Keys(collection models.Collection) ([]string, error) {
	layout, ok := s.layouts[collection]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCollection, collection)
	}

	if layout.singleKey != "" {
		if helpers.FileExists(filepath.Join(layout.dir, layout.fileName), s.logger) {
			return []string{layout.singleKey}, nil
		}
		return []string{}, nil
	}

	if err := helpers.EnsureDir(layout.dir); err != nil {
		return nil, err
	}

	// ReadDir returns entries sorted by file name, which makes key order deterministic.
	files, err := os.ReadDir(layout.dir)
	if err != nil {
		return nil, fmt.Errorf("error reading data directory %s: %w", layout.dir, err)
	}

	keys := make([]string, 0, len(files))
	for _, file := range files {
		// Skip directories, hidden files and anything that is not a finished document,
		// including {key}.json.tmp left behind by an interrupted write.
		name := file.Name()
		if file.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, ".json") {
			continue
		}
		keys = append(keys, strings.TrimSuffix(name, ".json"))
	}

	return keys, nil
}

func (s *DocumentStorageEngine) Put(collection models.Collection, key string, doc models.Document) (string, error) {
	layout, filePath, err := s.resolve(collection, key)
	if err != nil {
		return "", err
	}

	if layout.idField != "" {
		doc = CloneDocument(doc)
		doc[layout.idField] = key
	}

	data, err := s.writer.Write(filePath, doc)
	if err != nil {
		return "", err
	}

	if s.logger != nil {
		s.logger.Debugw("Stored document",
			"collection", collection,
			"key", key,
			"bytes", len(data))
	}

	return helpers.ContentETag(data), nil
}

func (s *DocumentStorageEngine) Delete(collection models.Collection, key string) error {
	_, filePath, err := s.resolve(collection, key)
	if err != nil {
		return err
	}

	if err := helpers.DeleteDataFile(filePath); err != nil {
		return fmt.Errorf("error removing document %s: %w", filePath, err)
	}
	return nil
}

func (s *DocumentStorageEngine) resolve(collection models.Collection, key string) (collectionLayout, string, error) {
	layout, ok := s.layouts[collection]
	if !ok {
		return collectionLayout{}, "", fmt.Errorf("%w: %s", ErrUnknownCollection, collection)
	}

	if layout.singleKey != "" {
		if key != layout.singleKey {
			return collectionLayout{}, "", fmt.Errorf("%w: %q", helpers.ErrInvalidKey, key)
		}
		return layout, filepath.Join(layout.dir, layout.fileName), nil
	}

	if err := helpers.ValidateKey(key); err != nil {
		return collectionLayout{}, "", fmt.Errorf("%w: %q", err, key)
	}
	return layout, helpers.DataFilePath(layout.dir, key), nil
}
