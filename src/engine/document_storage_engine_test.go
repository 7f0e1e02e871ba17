package engine

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"testing/quick"

	"diagramdb/src/engine/enginetest"
	"diagramdb/src/helpers"
	"diagramdb/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestStore(t *testing.T) (*DocumentStorageEngine, string) {
	t.Helper()
	dir := t.TempDir()
	logger := zaptest.NewLogger(t).Sugar()
	store, err := NewDocumentStore(dir, NewAtomicFileWriter(true, logger), logger)
	require.NoError(t, err)
	return store, dir
}

func writeRaw(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestDocumentStore_RoundTrip(t *testing.T) {
	store, dir := newTestStore(t)
	doc := models.Document{
		"name":   "Shop",
		"width":  json.Number("1024.5"),
		"tables": []interface{}{map[string]interface{}{"id": "t1", "name": "users"}},
		"meta":   map[string]interface{}{"tags": []interface{}{"a", "b"}, "draft": false},
	}

	etag, err := store.Put(models.Diagrams, "d1", doc)
	require.NoError(t, err)
	assert.NotEmpty(t, etag)
	assert.FileExists(t, filepath.Join(dir, DiagramsDirName, "d1.json"))

	stored, err := store.Read(models.Diagrams, "d1")
	require.NoError(t, err)
	assert.Equal(t, etag, stored.ETag)
	for k, v := range doc {
		assert.Equal(t, v, stored.Document[k], k)
	}
	assert.Equal(t, "d1", stored.Document["id"])

	_, hasID := doc["id"]
	assert.False(t, hasID, "Put must not modify the caller's document")
}

func TestDocumentStore_InjectsIDFromFileName(t *testing.T) {
	store, dir := newTestStore(t)
	writeRaw(t, filepath.Join(dir, DiagramsDirName, "from-disk.json"), `{"id": "stale", "name": "x"}`)

	doc, err := store.Get(models.Diagrams, "from-disk")
	require.NoError(t, err)
	assert.Equal(t, "from-disk", doc["id"])

	diagrams, err := store.List(models.Diagrams)
	require.NoError(t, err)
	require.Len(t, diagrams, 1)
	assert.Equal(t, "from-disk", diagrams[0]["id"])
}

func TestDocumentStore_GetMissing(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Get(models.Diagrams, "nope")

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDocumentStore_CorruptDocument(t *testing.T) {
	store, dir := newTestStore(t)
	writeRaw(t, filepath.Join(dir, DiagramsDirName, "bad.json"), `{"name": `)
	writeRaw(t, filepath.Join(dir, DiagramsDirName, "array.json"), `[1, 2]`)
	_, err := store.Put(models.Diagrams, "good", models.Document{"name": "ok"})
	require.NoError(t, err)

	_, err = store.Get(models.Diagrams, "bad")
	assert.True(t, IsCorrupt(err))
	_, err = store.Get(models.Diagrams, "array")
	assert.True(t, IsCorrupt(err))

	diagrams, err := store.List(models.Diagrams)
	require.NoError(t, err)
	require.Len(t, diagrams, 1)
	assert.Equal(t, "good", diagrams[0]["id"])
}

func TestDocumentStore_KeysSkipNonDocuments(t *testing.T) {
	store, dir := newTestStore(t)
	diagrams := filepath.Join(dir, DiagramsDirName)
	for _, key := range []string{"c", "a", "b"} {
		_, err := store.Put(models.Diagrams, key, models.Document{"name": key})
		require.NoError(t, err)
	}
	writeRaw(t, filepath.Join(diagrams, "a.json"+TempSuffix), `{"name": "half`)
	writeRaw(t, filepath.Join(diagrams, ".hidden.json"), `{}`)
	writeRaw(t, filepath.Join(diagrams, "notes.txt"), `hello`)
	require.NoError(t, os.MkdirAll(filepath.Join(diagrams, "sub.json"), 0755))

	keys, err := store.Keys(models.Diagrams)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, keys)
}

func TestDocumentStore_ListEmptyCreatesDirectory(t *testing.T) {
	store, dir := newTestStore(t)

	filters, err := store.List(models.DiagramFilters)
	require.NoError(t, err)
	assert.Empty(t, filters)
	assert.DirExists(t, filepath.Join(dir, FiltersDirName))
}

func TestDocumentStore_DeleteIsIdempotent(t *testing.T) {
	store, _ := newTestStore(t)
	_, err := store.Put(models.DiagramFilters, "d1", models.Document{"hidden": []interface{}{"t1"}})
	require.NoError(t, err)

	require.NoError(t, store.Delete(models.DiagramFilters, "d1"))
	require.NoError(t, store.Delete(models.DiagramFilters, "d1"))

	_, err = store.Get(models.DiagramFilters, "d1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDocumentStore_FiltersKeepTheirContent(t *testing.T) {
	store, _ := newTestStore(t)
	_, err := store.Put(models.DiagramFilters, "d1", models.Document{"hidden": []interface{}{"t1"}})
	require.NoError(t, err)

	doc, err := store.Get(models.DiagramFilters, "d1")
	require.NoError(t, err)
	assert.Equal(t, models.Document{"hidden": []interface{}{"t1"}}, doc)
}

func TestDocumentStore_InvalidKeys(t *testing.T) {
	store, _ := newTestStore(t)

	for _, key := range []string{"../escape", "a/b", `a\b`, ".hidden"} {
		_, err := store.Put(models.Diagrams, key, models.Document{})
		assert.ErrorIs(t, err, helpers.ErrInvalidKey, key)
	}

	_, err := store.Get(models.Diagrams, "../escape")
	assert.ErrorIs(t, err, helpers.ErrInvalidKey)
	_, err = store.Get(models.Diagrams, "")
	assert.ErrorIs(t, err, helpers.ErrEmptyKey)
}

func TestDocumentStore_Config(t *testing.T) {
	store, dir := newTestStore(t)

	keys, err := store.Keys(models.Config)
	require.NoError(t, err)
	assert.Empty(t, keys)

	_, err = store.Put(models.Config, models.ConfigKey, models.Document{"theme": "dark"})
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, ConfigFileName))

	doc, err := store.Get(models.Config, models.ConfigKey)
	require.NoError(t, err)
	assert.Equal(t, models.Document{"theme": "dark"}, doc)

	keys, err = store.Keys(models.Config)
	require.NoError(t, err)
	assert.Equal(t, []string{models.ConfigKey}, keys)

	_, err = store.Put(models.Config, "other", models.Document{})
	assert.ErrorIs(t, err, helpers.ErrInvalidKey)
}

func TestDocumentStore_UnknownCollection(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Get(models.Collection("users"), "u1")
	assert.ErrorIs(t, err, ErrUnknownCollection)

	_, err = store.List(models.Collection("users"))
	assert.ErrorIs(t, err, ErrUnknownCollection)
}

type randomDocument struct {
	doc models.Document
}

func (randomDocument) Generate(r *rand.Rand, size int) reflect.Value {
	return reflect.ValueOf(randomDocument{doc: enginetest.RandomDocument(r, 3, models.IDField)})
}

func TestDocumentStore_RandomRoundTrip(t *testing.T) {
	store, _ := newTestStore(t)
	n := 0

	roundTrip := func(in randomDocument) bool {
		n++
		key := fmt.Sprintf("doc-%d", n)

		etag, err := store.Put(models.DiagramFilters, key, in.doc)
		require.NoError(t, err)
		filter, err := store.Read(models.DiagramFilters, key)
		require.NoError(t, err)
		assert.Equal(t, etag, filter.ETag)
		if !assert.Equal(t, in.doc, filter.Document) {
			return false
		}

		_, err = store.Put(models.Diagrams, key, in.doc)
		require.NoError(t, err)
		diagram, err := store.Get(models.Diagrams, key)
		require.NoError(t, err)
		assert.Equal(t, key, diagram[models.IDField])
		delete(diagram, models.IDField)
		return assert.Equal(t, in.doc, diagram)
	}

	require.NoError(t, quick.Check(roundTrip, &quick.Config{
		MaxCount: 200,
		Rand:     rand.New(rand.NewSource(20240601)),
	}))
}
