package engine

import (
	"diagramdb/src/models"
)

// MergeDocuments applies patch onto existing and returns a new document.
//
// For each key in patch: an object merged over an object (or over nothing) is merged
// field by field; anything else, arrays included, replaces the existing value outright.
// Arrays are never concatenated, so an empty array in a patch empties that collection
// and a caller that wants to keep a collection must leave its key out of the patch.
// Keys missing from patch keep their existing values.
//
// Neither argument is modified and the result shares no maps or slices with them.
func MergeDocuments(existing, patch models.Document) models.Document {
	result := cloneObject(existing)
	mergeInto(result, patch)
	return models.Document(result)
}

// MergeWithKey merges like MergeDocuments and then pins the id field to key.
func MergeWithKey(existing, patch models.Document, key string) models.Document {
	result := MergeDocuments(existing, patch)
	result[models.IDField] = key
	return result
}

// RequireFields returns a *ValidationError naming every field of required absent from doc.
// A field that is present with a null value counts as present.
func RequireFields(doc models.Document, required []string) error {
	var missing []string
	for _, field := range required {
		if _, ok := doc[field]; !ok {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return &ValidationError{Missing: missing}
	}
	return nil
}

// mergeInto merges patch into dst in place. dst must not be shared with any caller.
func mergeInto(dst, patch map[string]interface{}) {
	for key, patchValue := range patch {
		patchObj, isObj := asObject(patchValue)
		if !isObj {
			dst[key] = cloneValue(patchValue)
			continue
		}

		if existingObj, ok := asObject(dst[key]); ok {
			mergeInto(existingObj, patchObj)
			dst[key] = existingObj
			continue
		}

		dst[key] = cloneObject(patchObj)
	}
}

func asObject(v interface{}) (map[string]interface{}, bool) {
	switch t := v.(type) {
	case map[string]interface{}:
		return t, true
	case models.Document:
		return map[string]interface{}(t), true
	default:
		return nil, false
	}
}

func cloneObject(src map[string]interface{}) map[string]interface{} {
	dst := make(map[string]interface{}, len(src))
	for k, v := range src {
		dst[k] = cloneValue(v)
	}
	return dst
}

func cloneValue(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		return cloneObject(t)
	case models.Document:
		return cloneObject(t)
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, item := range t {
			out[i] = cloneValue(item)
		}
		return out
	default:
		// strings, json.Number, float64, bool and nil are immutable
		return v
	}
}

// CloneDocument returns a deep copy of doc.
func CloneDocument(doc models.Document) models.Document {
	if doc == nil {
		return nil
	}
	return models.Document(cloneObject(doc))
}
