// Package ingesterr classifies the failure modes of the ingestion
// pipeline into the taxonomy described for the core: configuration,
// vendor transport, vendor data, parser, writer and auth errors.
package ingesterr

import (
	"errors"
	"fmt"
)

// Tag identifies which branch of the error taxonomy an error belongs to.
type Tag int

const (
	// TagUnknown is the zero value; it should never be intentionally produced.
	TagUnknown Tag = iota
	TagConfig
	TagVendorTransport
	TagVendorData
	TagParser
	TagWriter
	TagAuth
)

func (t Tag) String() string {
	switch t {
	case TagConfig:
		return "config"
	case TagVendorTransport:
		return "vendor_transport"
	case TagVendorData:
		return "vendor_data"
	case TagParser:
		return "parser"
	case TagWriter:
		return "writer"
	case TagAuth:
		return "auth"
	default:
		return "unknown"
	}
}

// Retryable reports whether errors of this tag are recovered by the
// component that raises them under a bounded retry budget.
func (t Tag) Retryable() bool {
	switch t {
	case TagVendorTransport, TagVendorData:
		return true
	default:
		return false
	}
}

// IngestError is the single tagged error type the coordinator's entry
// points surface for fatal failures. Recoverable errors are handled
// inside the component that detects them and never reach this type.
type IngestError struct {
	Tag    Tag
	Code   int    // originating vendor or driver code, 0 if not applicable
	Remedy string // human remedy hint
	Err    error
}

func (e *IngestError) Error() string {
	if e.Remedy != "" {
		return fmt.Sprintf("%s error (code=%d): %v — %s", e.Tag, e.Code, e.Err, e.Remedy)
	}
	return fmt.Sprintf("%s error (code=%d): %v", e.Tag, e.Code, e.Err)
}

func (e *IngestError) Unwrap() error { return e.Err }

// New builds a fatal IngestError.
func New(tag Tag, code int, remedy string, err error) *IngestError {
	return &IngestError{Tag: tag, Code: code, Remedy: remedy, Err: err}
}

// Wrap attaches a tag and remedy hint to an existing error while
// preserving it for errors.Is/As.
func Wrap(tag Tag, code int, remedy string, err error, context string) *IngestError {
	return New(tag, code, remedy, fmt.Errorf("%s: %w", context, err))
}

// AuthRemedy builds the remedy hint for the two documented auth-failure
// codes (spec §6.1, codes -100 and -301).
func AuthRemedy(feedIsRegional bool) string {
	if feedIsRegional {
		return `init key must be the literal string "UNKNOWN"`
	}
	return "verify the configured service key with the vendor and re-run setup"
}

// As is a thin re-export of errors.As kept here so callers of this
// package rarely need a second import for the common case of
// extracting an *IngestError.
func As(err error, target **IngestError) bool {
	return errors.As(err, target)
}
