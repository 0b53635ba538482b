package record

import "github.com/cockroachdb/errors"

var (
	// ErrUnknownField is returned for a field index or name the record does
	// not declare.
	ErrUnknownField = errors.New("unknown field")
	// ErrDuplicateKey is returned when a key is registered twice in a table.
	ErrDuplicateKey = errors.New("record key already registered")
	// ErrNotLoadable is returned when a delayed field has no loader or decoder.
	ErrNotLoadable = errors.New("field is not loadable")
	// ErrDetached is returned when a detached record is asked to load
	// without a session.
	ErrDetached = errors.New("record is detached")
)
