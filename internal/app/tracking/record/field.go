package record

import (
	"encoding/json"

	"github.com/cockroachdb/errors"
)

// Field declares one field of a record type.
type Field struct {
	Name string
	// Decode turns a stored element payload into an element. Fields without
	// a decoder cannot be loaded lazily.
	Decode func(raw []byte) (any, error)
}

// JSONField declares a field whose elements are stored as JSON documents of
// type E.
func JSONField[E any](name string) Field {
	return Field{Name: name, Decode: DecodeJSON[E]}
}

// DecodeJSON decodes one JSON payload into an E.
func DecodeJSON[E any](raw []byte) (any, error) {
	var v E
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, errors.Wrapf(err, "decode %T", v)
	}
	return v, nil
}
