package engine

import (
	"encoding/json"
	"fmt"

	"diagramdb/src/models"
)

// NormalizeDiagram enforces the stored shape of a diagram, in place:
// every item collection is an array (missing or null becomes empty), and every table
// has fields/indexes arrays and numeric x/y. A collection held as anything other than
// an array is a *ValidationError; the store never converts a keyed map into a sequence.
func NormalizeDiagram(doc models.Document) error {
	for _, name := range models.ItemCollections {
		items, ok := doc.Items(name)
		if !ok {
			return &ValidationError{Reason: fmt.Sprintf("%s must be an array, got %s", name, jsonKind(doc[name]))}
		}
		if items == nil {
			items = []interface{}{}
		}
		doc[name] = items
	}

	tables, _ := doc.Items(models.CollectionTables)
	for i, t := range tables {
		table, ok := asObject(t)
		if !ok {
			return &ValidationError{Reason: fmt.Sprintf("tables[%d] must be an object, got %s", i, jsonKind(t))}
		}
		normalizeTable(table)
	}
	return nil
}

func normalizeTable(table map[string]interface{}) {
	for _, field := range []string{models.TableFields, models.TableIndexes} {
		if v, ok := table[field]; !ok || v == nil {
			table[field] = []interface{}{}
		}
	}
	for _, coord := range []string{models.TableX, models.TableY} {
		if v, ok := table[coord]; !ok || v == nil {
			table[coord] = json.Number("0")
		}
	}
}
