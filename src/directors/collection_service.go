package directors

import (
	"fmt"

	"diagramdb/src/engine"
	"diagramdb/src/models"

	"go.uber.org/zap"
)

// CollectionService manipulates the item collections (tables, relationships, dependencies,
// areas, customTypes) nested inside diagrams. Every mutation rewrites the owning diagram
// through DiagramService.MutateDiagram.
type CollectionService struct {
	diagrams *DiagramService
	index    *engine.CollectionIndex
	journal  engine.Recorder
	logger   *zap.SugaredLogger
}

func NewCollectionService(diagrams *DiagramService, index *engine.CollectionIndex, journal engine.Recorder, logger *zap.SugaredLogger) *CollectionService {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &CollectionService{
		diagrams: diagrams,
		index:    index,
		journal:  journal,
		logger:   logger,
	}
}

// ListItems returns the collection of one diagram. A diagram without the collection yields
// an empty list.
func (s *CollectionService) ListItems(diagramID, collection string) ([]interface{}, error) {
	if err := checkCollection(collection); err != nil {
		return nil, err
	}

	stored, err := s.diagrams.GetDiagram(diagramID)
	if err != nil {
		return nil, err
	}

	items, ok := stored.Document.Items(collection)
	if !ok {
		return nil, &engine.ValidationError{Reason: fmt.Sprintf("%s of diagram %s is not an array", collection, diagramID)}
	}
	if items == nil {
		items = []interface{}{}
	}
	return items, nil
}

// GetItem returns one item of a diagram's collection.
func (s *CollectionService) GetItem(diagramID, collection, itemID string) (interface{}, error) {
	items, err := s.ListItems(diagramID, collection)
	if err != nil {
		return nil, err
	}

	i := engine.IndexOfItem(items, itemID)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s item %s in diagram %s", engine.ErrNotFound, collection, itemID, diagramID)
	}
	return items[i], nil
}

// AddItem appends item to the collection. The item must carry a string id that is not
// already used in that collection.
func (s *CollectionService) AddItem(diagramID, collection string, item models.Document) (interface{}, error) {
	if err := checkCollection(collection); err != nil {
		return nil, err
	}

	itemID := models.ItemID(item)
	if itemID == "" {
		return nil, &engine.ValidationError{Missing: []string{models.IDField}}
	}
	added := map[string]interface{}(engine.CloneDocument(item))

	stored, err := s.diagrams.MutateDiagram(diagramID, func(doc models.Document) (models.Document, error) {
		items, err := itemsOf(doc, collection)
		if err != nil {
			return nil, err
		}
		if engine.IndexOfItem(items, itemID) >= 0 {
			return nil, fmt.Errorf("%w: %s item %s in diagram %s", engine.ErrDuplicateItem, collection, itemID, diagramID)
		}
		doc[collection] = append(items, added)
		return doc, nil
	})
	if err != nil {
		return nil, err
	}

	s.record(engine.JournalSave, diagramID, collection+" add "+itemID)
	return findItem(stored.Document, collection, itemID), nil
}

// PutItem replaces the item with itemID, or appends it when absent. The stored item's id is
// always itemID. It reports whether the item was newly created.
func (s *CollectionService) PutItem(diagramID, collection, itemID string, item models.Document) (interface{}, bool, error) {
	if err := checkCollection(collection); err != nil {
		return nil, false, err
	}
	if itemID == "" {
		return nil, false, &engine.ValidationError{Missing: []string{models.IDField}}
	}

	replacement := map[string]interface{}(engine.CloneDocument(item))
	if replacement == nil {
		replacement = map[string]interface{}{}
	}
	replacement[models.IDField] = itemID

	created := false
	stored, err := s.diagrams.MutateDiagram(diagramID, func(doc models.Document) (models.Document, error) {
		items, err := itemsOf(doc, collection)
		if err != nil {
			return nil, err
		}
		if i := engine.IndexOfItem(items, itemID); i >= 0 {
			items[i] = replacement
		} else {
			items = append(items, replacement)
			created = true
		}
		doc[collection] = items
		return doc, nil
	})
	if err != nil {
		return nil, false, err
	}

	s.record(engine.JournalSave, diagramID, collection+" put "+itemID)
	return findItem(stored.Document, collection, itemID), created, nil
}

// DeleteItem removes the item from the diagram's collection. An absent item is not an error.
func (s *CollectionService) DeleteItem(diagramID, collection, itemID string) error {
	if err := checkCollection(collection); err != nil {
		return err
	}

	_, err := s.diagrams.MutateDiagram(diagramID, func(doc models.Document) (models.Document, error) {
		items, err := itemsOf(doc, collection)
		if err != nil {
			return nil, err
		}
		kept := make([]interface{}, 0, len(items))
		for _, item := range items {
			if models.ItemID(item) != itemID {
				kept = append(kept, item)
			}
		}
		doc[collection] = kept
		return doc, nil
	})
	if err != nil {
		return err
	}

	s.record(engine.JournalDelete, diagramID, collection+" item "+itemID)
	return nil
}

// ClearItems empties a diagram's collection.
func (s *CollectionService) ClearItems(diagramID, collection string) error {
	if err := checkCollection(collection); err != nil {
		return err
	}

	_, err := s.diagrams.MutateDiagram(diagramID, func(doc models.Document) (models.Document, error) {
		doc[collection] = []interface{}{}
		return doc, nil
	})
	if err != nil {
		return err
	}

	s.record(engine.JournalDelete, diagramID, collection+" all")
	return nil
}

// FindOwner returns the id of the first diagram that holds itemID in collection.
func (s *CollectionService) FindOwner(collection, itemID string) (string, error) {
	return s.index.FindOwner(itemID, collection)
}

// UpdateItemByID merges attributes into an item addressed only by its id. The owner diagram
// is found by scanning all diagrams; the first match wins. The item keeps its id.
// It returns the owner diagram id and the updated item.
func (s *CollectionService) UpdateItemByID(collection, itemID string, attributes models.Document) (string, interface{}, error) {
	owner, err := s.index.FindOwner(itemID, collection)
	if err != nil {
		return "", nil, err
	}

	stored, err := s.diagrams.MutateDiagram(owner, func(doc models.Document) (models.Document, error) {
		items, err := itemsOf(doc, collection)
		if err != nil {
			return nil, err
		}
		i := engine.IndexOfItem(items, itemID)
		if i < 0 {
			// The owner changed between the scan and the read.
			return nil, fmt.Errorf("%w: %s item %s in diagram %s", engine.ErrNotFound, collection, itemID, owner)
		}
		current, _ := items[i].(map[string]interface{})
		merged := engine.MergeWithKey(models.Document(current), attributes, itemID)
		items[i] = map[string]interface{}(merged)
		doc[collection] = items
		return doc, nil
	})
	if err != nil {
		return "", nil, err
	}

	s.record(engine.JournalMerge, owner, collection+" update "+itemID)
	return owner, findItem(stored.Document, collection, itemID), nil
}

func (s *CollectionService) record(command, diagramID, details string) {
	if s.journal != nil {
		s.journal.Record(command, string(models.Diagrams), diagramID, details)
	}
}

func checkCollection(collection string) error {
	if !models.IsItemCollection(collection) {
		return fmt.Errorf("%w: %s", engine.ErrUnknownCollection, collection)
	}
	return nil
}

func itemsOf(doc models.Document, collection string) ([]interface{}, error) {
	items, ok := doc.Items(collection)
	if !ok {
		return nil, &engine.ValidationError{Reason: fmt.Sprintf("%s must be an array", collection)}
	}
	return items, nil
}

func findItem(doc models.Document, collection, itemID string) interface{} {
	items, _ := doc.Items(collection)
	if i := engine.IndexOfItem(items, itemID); i >= 0 {
		return items[i]
	}
	return nil
}
