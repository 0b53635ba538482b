package proxy

import "github.com/cockroachdb/errors"

// Proxy errors as sentinel values
var (
	// ErrTypeMismatch is returned when a value is not allowed in a typed container.
	ErrTypeMismatch = errors.New("value type not allowed in container")

	// ErrUnsupported is returned at creation time for containers that cannot be proxied.
	ErrUnsupported = errors.New("unsupported container configuration")

	// ErrOwnershipConflict is returned when an owned proxy is given to another record field.
	ErrOwnershipConflict = errors.New("proxy is owned by another record field")

	// ErrNoLoadOwner is returned when a delayed proxy must load but its owner is gone.
	ErrNoLoadOwner = errors.New("delayed proxy has no owner to load from")

	ErrIndexOutOfRange = errors.New("index out of range")
)

func indexError(i, size int) error {
	return errors.Wrapf(ErrIndexOutOfRange, "index %d, size %d", i, size)
}
