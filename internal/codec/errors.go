package codec

import "errors"

// Sentinel errors returned by the codecs. Callers wrap them with context and
// match with errors.Is.
var (
	// ErrConfigurationMissing is returned at construction when a required
	// delimiter, enclosure or escape character is not set.
	ErrConfigurationMissing = errors.New("codec configuration missing")

	// ErrInvalidDelimiters is returned at construction when the configured
	// characters collide (e.g. delimiter equals enclosure).
	ErrInvalidDelimiters = errors.New("invalid delimiter configuration")

	// ErrEntityTypeNotFound is returned by a Directory when an entity type
	// code is unknown.
	ErrEntityTypeNotFound = errors.New("entity type not found")

	// ErrAttributeNotFound is returned by a Directory when an attribute code
	// is unknown for the entity type.
	ErrAttributeNotFound = errors.New("attribute not found")

	// ErrUnsupported is returned by operations a codec deliberately does not
	// implement.
	ErrUnsupported = errors.New("operation not supported")

	// ErrValueKind is returned when a value's kind does not match what the
	// attribute's input type requires.
	ErrValueKind = errors.New("value kind does not match input type")
)
