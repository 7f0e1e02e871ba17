package engine

import (
	"fmt"
	"time"

	"diagramdb/src/helpers"
	"diagramdb/src/models"
)

// ArchiveCollections are exported in this order and restored in the same order.
var ArchiveCollections = []models.Collection{models.Config, models.Diagrams, models.DiagramFilters}

// BuildArchive snapshots every document of ArchiveCollections. Documents that cannot be read
// are skipped the same way List skips them.
func BuildArchive(store DocumentStore, now time.Time) (*models.Archive, error) {
	archive := &models.Archive{
		ArchiveID:  helpers.GenerateUUID(),
		Version:    models.ArchiveVersion,
		ExportedAt: helpers.FormatTimestamp(now),
		Entries:    []models.ArchiveEntry{},
	}

	for _, collection := range ArchiveCollections {
		keys, err := store.Keys(collection)
		if err != nil {
			return nil, fmt.Errorf("error listing %s: %w", collection, err)
		}
		for _, key := range keys {
			doc, err := store.Get(collection, key)
			if err != nil {
				continue
			}
			body, err := EncodeDocument(doc)
			if err != nil {
				return nil, err
			}
			archive.Entries = append(archive.Entries, models.ArchiveEntry{
				Collection: string(collection),
				Key:        key,
				Body:       string(body),
			})
		}
	}

	return archive, nil
}

// EncodeArchive serializes an archive to BSON.
func EncodeArchive(archive *models.Archive) ([]byte, error) {
	return helpers.EncodeBSON(archive)
}

// DecodeArchive parses a BSON archive and checks its version.
func DecodeArchive(data []byte) (*models.Archive, error) {
	var archive models.Archive
	if err := helpers.DecodeBSON(data, &archive); err != nil {
		return nil, &ValidationError{Reason: err.Error()}
	}
	if archive.Version != models.ArchiveVersion {
		return nil, &ValidationError{Reason: fmt.Sprintf("unsupported archive version %d", archive.Version)}
	}
	return &archive, nil
}

// EntryDocument parses the body of an archive entry.
func EntryDocument(entry models.ArchiveEntry) (models.Document, error) {
	doc, err := DecodeDocument([]byte(entry.Body))
	if err != nil {
		return nil, &ValidationError{Reason: fmt.Sprintf("archive entry %s/%s: %v", entry.Collection, entry.Key, err)}
	}
	return doc, nil
}
