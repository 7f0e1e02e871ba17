package directors

import (
	"testing"

	"diagramdb/src/engine"
	"diagramdb/src/helpers"
	"diagramdb/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArchiveService_ExportImport(t *testing.T) {
	source := newTestEnv(t)
	seedDiagram(t, source, "d1", "t1")
	seedDiagram(t, source, "d2")
	require.NoError(t, source.services.FilterService.SaveFilter("d1", models.Document{"hidden": []interface{}{"t1"}}))
	require.NoError(t, source.services.ConfigService.SaveConfig(models.Document{"theme": "dark"}))

	data, archive, err := source.services.ArchiveService.Export()
	require.NoError(t, err)
	assert.Len(t, archive.Entries, 4)

	target := newTestEnv(t)
	imported, err := target.services.ArchiveService.Import(data)
	require.NoError(t, err)
	assert.Equal(t, 4, imported)

	want, err := source.services.DiagramService.GetDiagram("d1")
	require.NoError(t, err)
	got, err := target.services.DiagramService.GetDiagram("d1")
	require.NoError(t, err)
	assert.Equal(t, want.Document, got.Document)
	assert.Equal(t, want.ETag, got.ETag)

	config, err := target.services.ConfigService.GetConfig()
	require.NoError(t, err)
	assert.Equal(t, models.Document{"theme": "dark"}, config)

	importEntries := 0
	for _, e := range target.journal.entries {
		if e.command == engine.JournalImport {
			importEntries++
		}
	}
	assert.Equal(t, 4, importEntries)
}

func TestArchiveService_InvalidArchiveWritesNothing(t *testing.T) {
	env := newTestEnv(t)

	archive := &models.Archive{
		ArchiveID: "a1",
		Version:   models.ArchiveVersion,
		Entries: []models.ArchiveEntry{
			{Collection: "diagrams", Key: "good", Body: `{"name": "ok"}`},
			{Collection: "diagrams", Key: "../bad", Body: `{"name": "escape"}`},
		},
	}
	data, err := helpers.EncodeBSON(archive)
	require.NoError(t, err)

	imported, err := env.services.ArchiveService.Import(data)
	assert.True(t, engine.IsValidation(err))
	assert.Equal(t, 0, imported)

	keys, err := env.store.Keys(models.Diagrams)
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestArchiveService_RejectsUnknownCollection(t *testing.T) {
	env := newTestEnv(t)
	data, err := helpers.EncodeBSON(&models.Archive{
		ArchiveID: "a1",
		Version:   models.ArchiveVersion,
		Entries:   []models.ArchiveEntry{{Collection: "users", Key: "u1", Body: `{}`}},
	})
	require.NoError(t, err)

	_, err = env.services.ArchiveService.Import(data)
	assert.True(t, engine.IsValidation(err))
}
