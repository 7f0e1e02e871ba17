package models

// Document is a single JSON root object as decoded from disk or from a request body.
// Numbers are held as json.Number so that a read-merge-write cycle does not change them.
type Document map[string]interface{}

// Collection names a logical group of documents in the store.
type Collection string

const (
	// Diagrams holds one document per diagram, keyed by diagram id.
	Diagrams Collection = "diagrams"

	// DiagramFilters holds one filter document per diagram id.
	DiagramFilters Collection = "diagram-filters"

	// Config is a single document stored under ConfigKey.
	Config Collection = "config"
)

// ConfigKey is the only key the Config collection accepts.
const ConfigKey = "config"

// IDField is the identifier field of diagrams and of every collection item.
const IDField = "id"

const (
	FieldName         = "name"
	FieldDatabaseType = "databaseType"
	FieldCreatedAt    = "createdAt"
	FieldUpdatedAt    = "updatedAt"
)

// Item collections nested inside a diagram.
const (
	CollectionTables        = "tables"
	CollectionRelationships = "relationships"
	CollectionDependencies  = "dependencies"
	CollectionAreas         = "areas"
	CollectionCustomTypes   = "customTypes"
)

// RequiredDiagramFields must all be present in a create-or-update patch.
var RequiredDiagramFields = []string{FieldName, FieldDatabaseType, FieldCreatedAt, FieldUpdatedAt}

// ItemCollections lists every sequence-valued field of a diagram, in storage order.
var ItemCollections = []string{
	CollectionTables,
	CollectionRelationships,
	CollectionDependencies,
	CollectionAreas,
	CollectionCustomTypes,
}

// IsItemCollection reports whether name is one of ItemCollections.
func IsItemCollection(name string) bool {
	for _, c := range ItemCollections {
		if c == name {
			return true
		}
	}
	return false
}

// Table field defaults applied on persist.
const (
	TableFields  = "fields"
	TableIndexes = "indexes"
	TableX       = "x"
	TableY       = "y"
)

// ItemID returns the string id of a collection item, or "" when item is not an object
// or carries no string id.
func ItemID(item interface{}) string {
	m, ok := item.(map[string]interface{})
	if !ok {
		if d, isDoc := item.(Document); isDoc {
			m = d
		} else {
			return ""
		}
	}
	id, _ := m[IDField].(string)
	return id
}

// Items returns the named collection of d as a slice. A missing or null collection yields nil.
func (d Document) Items(collection string) ([]interface{}, bool) {
	v, present := d[collection]
	if !present || v == nil {
		return nil, true
	}
	items, ok := v.([]interface{})
	return items, ok
}

// ArchiveEntry is one stored document inside an export archive.
type ArchiveEntry struct {
	Collection string `bson:"collection"`
	Key        string `bson:"key"`
	// Body is the canonical JSON of the document.
	Body string `bson:"body"`
}

// Archive is the BSON envelope written by an export.
type Archive struct {
	ArchiveID  string         `bson:"archiveId"`
	Version    int            `bson:"version"`
	ExportedAt string         `bson:"exportedAt"`
	Entries    []ArchiveEntry `bson:"entries"`
}

// ArchiveVersion is bumped whenever the archive layout changes incompatibly.
const ArchiveVersion = 1
