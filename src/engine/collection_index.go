package engine

import (
	"fmt"

	"diagramdb/src/models"
)

// CollectionIndex locates items by id across every stored diagram.
//
// There is no maintained index: each lookup lists all diagrams and scans the named
// collection, so the cost is proportional to the total number of items. The answer
// reflects whatever each diagram file held when it was read and can be stale by the
// time the caller acts on it.
type CollectionIndex struct {
	store DocumentStore
}

func NewCollectionIndex(store DocumentStore) *CollectionIndex {
	return &CollectionIndex{store: store}
}

// ItemLocation identifies an item inside its owner diagram.
type ItemLocation struct {
	DiagramKey string
	Diagram    models.Document
	Index      int
}

// FindOwner returns the key of the first diagram, in key order, whose collection holds itemID.
func (ci *CollectionIndex) FindOwner(itemID, collection string) (string, error) {
	loc, err := ci.Locate(itemID, collection)
	if err != nil {
		return "", err
	}
	return loc.DiagramKey, nil
}

// Locate is FindOwner that also returns the owner document and the item's position in it.
func (ci *CollectionIndex) Locate(itemID, collection string) (*ItemLocation, error) {
	if !models.IsItemCollection(collection) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCollection, collection)
	}

	diagrams, err := ci.store.List(models.Diagrams)
	if err != nil {
		return nil, err
	}

	for _, diagram := range diagrams {
		items, ok := diagram.Items(collection)
		if !ok {
			continue
		}
		if i := IndexOfItem(items, itemID); i >= 0 {
			key, _ := diagram[models.IDField].(string)
			return &ItemLocation{DiagramKey: key, Diagram: diagram, Index: i}, nil
		}
	}

	return nil, fmt.Errorf("%w: %s item %s", ErrNotFound, collection, itemID)
}

// IndexOfItem returns the position of the first item whose id is itemID, or -1.
func IndexOfItem(items []interface{}, itemID string) int {
	if itemID == "" {
		return -1
	}
	for i, item := range items {
		if models.ItemID(item) == itemID {
			return i
		}
	}
	return -1
}
