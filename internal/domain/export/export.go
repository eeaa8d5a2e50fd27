// Package export provides domain types and interfaces for assembling and
// rendering a customer's personal data into a downloadable document.
package export

import (
	"context"
	"errors"
)

// ErrUnknownRenderer indicates the configured renderer code does not match any
// registered renderer. This is a configuration defect.
var ErrUnknownRenderer = errors.New("unknown export renderer")

// Document aggregates one customer's personal data, keyed by data-domain
// section name (e.g. "customer", "subscriber").
type Document map[string]any

// Processor collects the personal data held by a single data domain for one
// customer. The returned section may be nil when the domain holds nothing for
// that customer, in which case it is omitted from the document.
type Processor interface {
	Export(ctx context.Context, customerID int64) (any, error)
}

// Renderer serializes an assembled document into a byte stream.
type Renderer interface {
	// Render serializes the document.
	Render(doc Document) ([]byte, error)

	// Extension returns the file extension for the rendered format, without
	// the leading dot.
	Extension() string
}
