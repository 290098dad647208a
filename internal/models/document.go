// Package models contains the document shapes read from the backend and the
// view models handed to the UI.
package models

// Document is a raw record as returned by the backend, before projection.
type Document map[string]any

// Has reports whether key is present with a non-nil value.
func (d Document) Has(key string) bool {
	v, ok := d[key]
	return ok && v != nil
}

// Bool returns the value under key when it is a bool, false otherwise.
func (d Document) Bool(key string) bool {
	b, _ := d[key].(bool)
	return b
}

// String returns the value under key when it is a string.
func (d Document) String(key string) (string, bool) {
	s, ok := d[key].(string)
	return s, ok
}

// AsDocument converts decoded JSON/BSON objects into a Document.
func AsDocument(v any) (Document, bool) {
	switch m := v.(type) {
	case Document:
		return m, true
	case map[string]any:
		return Document(m), true
	}
	return nil, false
}
