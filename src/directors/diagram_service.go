package directors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"diagramdb/src/engine"
	"diagramdb/src/helpers"
	"diagramdb/src/models"

	"go.uber.org/zap"
)

// DiagramService manages whole-diagram operations on top of the document store.
type DiagramService struct {
	store   engine.DocumentStore
	journal engine.Recorder
	logger  *zap.SugaredLogger
	now     func() time.Time
}

// NewDiagramService creates a new DiagramService. journal may be nil.
func NewDiagramService(store engine.DocumentStore, journal engine.Recorder, logger *zap.SugaredLogger) *DiagramService {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &DiagramService{
		store:   store,
		journal: journal,
		logger:  logger,
		now:     time.Now,
	}
}

// ListDiagrams returns every readable diagram in id order.
func (s *DiagramService) ListDiagrams() ([]models.Document, error) {
	diagrams, err := s.store.List(models.Diagrams)
	if err != nil {
		return nil, fmt.Errorf("failed to list diagrams: %w", err)
	}
	return diagrams, nil
}

// GetDiagram returns one diagram and its entity tag.
func (s *DiagramService) GetDiagram(id string) (*engine.StoredDocument, error) {
	return s.store.Read(models.Diagrams, id)
}

// SaveDiagram is create-or-update: patch is deep-merged over the stored diagram, or over
// nothing when the id is new. patch must carry every field of RequiredDiagramFields;
// otherwise nothing is read or written.
func (s *DiagramService) SaveDiagram(id string, patch models.Document) (*engine.StoredDocument, error) {
	if err := helpers.ValidateKey(id); err != nil {
		return nil, err
	}
	if err := engine.RequireFields(patch, models.RequiredDiagramFields); err != nil {
		return nil, err
	}

	existing, err := s.store.Get(models.Diagrams, id)
	switch {
	case err == nil:
	case errors.Is(err, engine.ErrNotFound):
		existing = models.Document{}
	case engine.IsCorrupt(err):
		// The incoming patch holds a complete root, so an unreadable file is replaced.
		s.logger.Warnw("Replacing corrupt diagram", "id", id, "error", err)
		existing = models.Document{}
	default:
		return nil, err
	}

	merged := engine.MergeWithKey(existing, patch, id)
	stored, err := s.persist(id, merged)
	if err != nil {
		return nil, err
	}

	s.record(engine.JournalMerge, id, "fields="+joinKeys(patch))
	return stored, nil
}

// ReplaceDiagram stores doc as the complete new content of the diagram.
func (s *DiagramService) ReplaceDiagram(id string, doc models.Document) (*engine.StoredDocument, error) {
	if err := helpers.ValidateKey(id); err != nil {
		return nil, err
	}
	if err := engine.RequireFields(doc, models.RequiredDiagramFields); err != nil {
		return nil, err
	}

	replacement := engine.CloneDocument(doc)
	replacement[models.IDField] = id

	stored, err := s.persist(id, replacement)
	if err != nil {
		return nil, err
	}

	s.record(engine.JournalSave, id, "replace")
	return stored, nil
}

// UpdateDiagram merges attributes into an existing diagram and stamps updatedAt.
func (s *DiagramService) UpdateDiagram(id string, attributes models.Document) (*engine.StoredDocument, error) {
	stored, err := s.MutateDiagram(id, func(doc models.Document) (models.Document, error) {
		return engine.MergeDocuments(doc, attributes), nil
	})
	if err != nil {
		return nil, err
	}

	s.record(engine.JournalMerge, id, "attributes="+joinKeys(attributes))
	return stored, nil
}

// DeleteDiagram removes the diagram and its filter. Missing documents are not an error.
func (s *DiagramService) DeleteDiagram(id string) error {
	if err := s.store.Delete(models.Diagrams, id); err != nil {
		return err
	}

	if err := s.store.Delete(models.DiagramFilters, id); err != nil {
		s.logger.Warnw("Failed to remove filter of deleted diagram", "id", id, "error", err)
	}

	s.record(engine.JournalDelete, id, "")
	return nil
}

// MutateDiagram reads a diagram, lets mutate produce its new content, stamps updatedAt
// and writes it back. The read and the write are not atomic together: a concurrent
// writer of the same diagram can be overwritten.
func (s *DiagramService) MutateDiagram(id string, mutate func(doc models.Document) (models.Document, error)) (*engine.StoredDocument, error) {
	existing, err := s.store.Get(models.Diagrams, id)
	if err != nil {
		return nil, err
	}

	updated, err := mutate(engine.CloneDocument(existing))
	if err != nil {
		return nil, err
	}
	updated[models.IDField] = id
	updated[models.FieldUpdatedAt] = helpers.FormatTimestamp(s.now())

	return s.persist(id, updated)
}

func (s *DiagramService) persist(id string, doc models.Document) (*engine.StoredDocument, error) {
	if err := engine.NormalizeDiagram(doc); err != nil {
		return nil, err
	}

	etag, err := s.store.Put(models.Diagrams, id, doc)
	if err != nil {
		s.logger.Errorw("Failed to store diagram", "id", id, "error", err)
		return nil, err
	}

	return &engine.StoredDocument{Key: id, Document: doc, ETag: etag}, nil
}

func (s *DiagramService) record(command, id, details string) {
	if s.journal != nil {
		s.journal.Record(command, string(models.Diagrams), id, details)
	}
}

func joinKeys(doc models.Document) string {
	keys := make([]string, 0, len(doc))
	for k := range doc {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return strings.Join(keys, ",")
}
