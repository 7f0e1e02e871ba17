package engine

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"diagramdb/src/models"
)

// EncodeDocument renders doc as canonical JSON: object keys sorted, two-space indentation.
func EncodeDocument(doc models.Document) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("error encoding document: %w", err)
	}
	return data, nil
}

// DecodeDocument parses data as a single JSON object, keeping numbers as json.Number.
func DecodeDocument(data []byte) (models.Document, error) {
	return DecodeDocumentFrom(bytes.NewReader(data))
}

// DecodeDocumentFrom parses exactly one JSON object from r.
func DecodeDocumentFrom(r io.Reader) (models.Document, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after JSON object")
	}

	obj, ok := raw.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("expected a JSON object, got %s", jsonKind(raw))
	}
	return models.Document(obj), nil
}

func jsonKind(v interface{}) string {
	switch v.(type) {
	case nil:
		return "null"
	case []interface{}:
		return "array"
	case string:
		return "string"
	case bool:
		return "boolean"
	case json.Number, float64:
		return "number"
	default:
		return fmt.Sprintf("%T", v)
	}
}
