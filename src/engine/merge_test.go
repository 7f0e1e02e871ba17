package engine

import (
	"encoding/json"
	"testing"

	"diagramdb/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func existingDiagram() models.Document {
	return models.Document{
		"id":           "d1",
		"name":         "Shop",
		"databaseType": "postgres",
		"createdAt":    "2024-01-01T00:00:00.000Z",
		"updatedAt":    "2024-01-01T00:00:00.000Z",
		"tables": []interface{}{
			map[string]interface{}{"id": "t1", "name": "users", "x": json.Number("10")},
		},
		"settings": map[string]interface{}{"theme": "dark", "grid": true},
	}
}

func TestMergeDocuments_PreservesOmittedCollections(t *testing.T) {
	existing := existingDiagram()
	patch := models.Document{"updatedAt": "2024-02-02T00:00:00.000Z"}

	result := MergeDocuments(existing, patch)

	assert.Equal(t, existing["tables"], result["tables"])
	assert.Equal(t, "2024-02-02T00:00:00.000Z", result["updatedAt"])
	assert.Equal(t, "Shop", result["name"])
}

func TestMergeDocuments_EmptyArrayReplaces(t *testing.T) {
	result := MergeDocuments(existingDiagram(), models.Document{"tables": []interface{}{}})

	assert.Equal(t, []interface{}{}, result["tables"])
}

func TestMergeDocuments_ArraysAreReplacedNotConcatenated(t *testing.T) {
	patch := models.Document{
		"tables": []interface{}{map[string]interface{}{"id": "t2"}},
	}

	result := MergeDocuments(existingDiagram(), patch)

	tables := result["tables"].([]interface{})
	require.Len(t, tables, 1)
	assert.Equal(t, "t2", models.ItemID(tables[0]))
}

func TestMergeDocuments_NestedObjectsMergeRecursively(t *testing.T) {
	patch := models.Document{"settings": map[string]interface{}{"theme": "light"}}

	result := MergeDocuments(existingDiagram(), patch)

	assert.Equal(t, map[string]interface{}{"theme": "light", "grid": true}, result["settings"])
}

func TestMergeDocuments_TypeMismatchReplaces(t *testing.T) {
	tests := []struct {
		name     string
		existing interface{}
		patch    interface{}
	}{
		{"object over string", "plain", map[string]interface{}{"a": "b"}},
		{"string over object", map[string]interface{}{"a": "b"}, "plain"},
		{"array over object", map[string]interface{}{"a": "b"}, []interface{}{"x"}},
		{"null over object", map[string]interface{}{"a": "b"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := MergeDocuments(models.Document{"v": tt.existing}, models.Document{"v": tt.patch})

			v, present := result["v"]
			assert.True(t, present)
			assert.Equal(t, tt.patch, v)
		})
	}
}

func TestMergeDocuments_DoesNotAliasInputs(t *testing.T) {
	existing := existingDiagram()
	patch := models.Document{
		"areas": []interface{}{map[string]interface{}{"id": "a1", "color": "red"}},
	}

	result := MergeDocuments(existing, patch)

	result["tables"].([]interface{})[0].(map[string]interface{})["name"] = "changed"
	result["settings"].(map[string]interface{})["theme"] = "changed"
	result["areas"].([]interface{})[0].(map[string]interface{})["color"] = "blue"

	assert.Equal(t, "users", existing["tables"].([]interface{})[0].(map[string]interface{})["name"])
	assert.Equal(t, "dark", existing["settings"].(map[string]interface{})["theme"])
	assert.Equal(t, "red", patch["areas"].([]interface{})[0].(map[string]interface{})["color"])
}

func TestMergeDocuments_NilExisting(t *testing.T) {
	result := MergeDocuments(nil, models.Document{"name": "New"})

	assert.Equal(t, models.Document{"name": "New"}, result)
}

func TestMergeWithKey_PinsID(t *testing.T) {
	result := MergeWithKey(existingDiagram(), models.Document{"id": "other"}, "d1")

	assert.Equal(t, "d1", result["id"])
}

func TestRequireFields(t *testing.T) {
	err := RequireFields(models.Document{"name": "x", "updatedAt": nil}, models.RequiredDiagramFields)

	require.Error(t, err)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, []string{"databaseType", "createdAt"}, ve.Missing)
	assert.Equal(t, "Missing required fields: databaseType, createdAt", err.Error())

	assert.NoError(t, RequireFields(existingDiagram(), models.RequiredDiagramFields))
}
