package directors

import (
	"fmt"
	"time"

	"diagramdb/src/engine"
	"diagramdb/src/helpers"
	"diagramdb/src/models"

	"go.uber.org/zap"
)

// ArchiveService exports the whole store to a BSON archive and restores it.
type ArchiveService struct {
	store   engine.DocumentStore
	journal engine.Recorder
	logger  *zap.SugaredLogger
	now     func() time.Time
}

func NewArchiveService(store engine.DocumentStore, journal engine.Recorder, logger *zap.SugaredLogger) *ArchiveService {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &ArchiveService{store: store, journal: journal, logger: logger, now: time.Now}
}

// Export returns the BSON encoding of every config, diagram and filter document.
func (s *ArchiveService) Export() ([]byte, *models.Archive, error) {
	archive, err := engine.BuildArchive(s.store, s.now())
	if err != nil {
		return nil, nil, err
	}

	data, err := engine.EncodeArchive(archive)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Infow("Exported archive",
		"archiveId", archive.ArchiveID,
		"entries", len(archive.Entries),
		"bytes", len(data))
	return data, archive, nil
}

// Import restores a BSON archive. Every entry is decoded and validated before the first
// write, so a malformed archive changes nothing. Entries overwrite existing documents with
// the same key; documents absent from the archive are left alone. Writes are individually
// atomic but the import as a whole is not.
func (s *ArchiveService) Import(data []byte) (int, error) {
	archive, err := engine.DecodeArchive(data)
	if err != nil {
		return 0, err
	}

	type pending struct {
		collection models.Collection
		key        string
		doc        models.Document
	}

	writes := make([]pending, 0, len(archive.Entries))
	for _, entry := range archive.Entries {
		collection := models.Collection(entry.Collection)

		doc, err := engine.EntryDocument(entry)
		if err != nil {
			return 0, err
		}

		switch collection {
		case models.Diagrams:
			if err := helpers.ValidateKey(entry.Key); err != nil {
				return 0, &engine.ValidationError{Reason: fmt.Sprintf("archive diagram key %q: %v", entry.Key, err)}
			}
			if err := engine.NormalizeDiagram(doc); err != nil {
				return 0, err
			}
		case models.DiagramFilters:
			if err := helpers.ValidateKey(entry.Key); err != nil {
				return 0, &engine.ValidationError{Reason: fmt.Sprintf("archive filter key %q: %v", entry.Key, err)}
			}
		case models.Config:
			if entry.Key != models.ConfigKey {
				return 0, &engine.ValidationError{Reason: fmt.Sprintf("archive config key %q", entry.Key)}
			}
		default:
			return 0, &engine.ValidationError{Reason: fmt.Sprintf("archive entry has unknown collection %q", entry.Collection)}
		}

		writes = append(writes, pending{collection: collection, key: entry.Key, doc: doc})
	}

	for i, w := range writes {
		if _, err := s.store.Put(w.collection, w.key, w.doc); err != nil {
			return i, fmt.Errorf("error restoring %s/%s: %w", w.collection, w.key, err)
		}
		if s.journal != nil {
			s.journal.Record(engine.JournalImport, string(w.collection), w.key, "archive "+archive.ArchiveID)
		}
	}

	s.logger.Infow("Imported archive", "archiveId", archive.ArchiveID, "entries", len(writes))
	return len(writes), nil
}
