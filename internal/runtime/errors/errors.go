package errors

import (
	sterrors "errors"
	"fmt"
)

var (
	ErrServiceRequired = sterrors.New("fieldflow: service is required")
	ErrHandlerRequired = sterrors.New("fieldflow: handler function is required")
	ErrQueueRequired   = sterrors.New("fieldflow: consume queue is required")
	ErrNameRequired    = sterrors.New("fieldflow: handler name is required")
	ErrLoggerRequired  = sterrors.New("fieldflow: logger is required")
	ErrConfigRequired  = sterrors.New("fieldflow: configuration is required")
	ErrRecordRequired  = sterrors.New("fieldflow: record pointer is required")
	ErrNilRecordType   = sterrors.New("fieldflow: record type cannot be determined from a nil value")

	ErrPublisherRequired = sterrors.New("fieldflow: publisher is required")
	ErrTopicRequired     = sterrors.New("fieldflow: topic is required")
	ErrPayloadRequired   = sterrors.New("fieldflow: event payload is required")
)

// SchemaError reports a record layout that can never be dispatched: a
// non-struct record, a parameter field without an extractor, or a duplicate
// discriminator. It is raised once while a registry is being built and is
// expected to abort startup.
type SchemaError struct {
	Record string // record type name
	Field  string // offending field, empty when the record itself is at fault
	Reason string
}

func (e *SchemaError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("fieldflow: invalid record %s: %s", e.Record, e.Reason)
	}
	return fmt.Sprintf("fieldflow: invalid record %s: field %s: %s", e.Record, e.Field, e.Reason)
}

// NewSchemaError builds a SchemaError for the given record type and field.
func NewSchemaError(record, field, reason string) *SchemaError {
	return &SchemaError{Record: record, Field: field, Reason: reason}
}

// ExtractError wraps a failure produced while populating a single parameter
// field. Status is a response status hint; zero means the dispatcher default.
type ExtractError struct {
	Field  string
	Status int
	Err    error
}

func (e *ExtractError) Error() string {
	return fmt.Sprintf("fieldflow: extracting field %s: %v", e.Field, e.Err)
}

func (e *ExtractError) Unwrap() error { return e.Err }

// ResponseStatus returns the status hint carried by the extraction failure,
// falling back to the supplied default.
func (e *ExtractError) ResponseStatus(fallback int) int {
	if e.Status > 0 {
		return e.Status
	}
	return fallback
}

// DataError reports a message that could not be dispatched: an unknown
// discriminator, or a payload that does not decode into the matched variant.
// The discriminator is always carried for diagnostics.
type DataError struct {
	Discriminator string
	Err           error
}

func (e *DataError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("fieldflow: unknown variant %q", e.Discriminator)
	}
	return fmt.Sprintf("fieldflow: variant %q: %v", e.Discriminator, e.Err)
}

func (e *DataError) Unwrap() error { return e.Err }

// NewUnknownVariantError reports a discriminator with no registry entry.
func NewUnknownVariantError(discriminator string) *DataError {
	return &DataError{Discriminator: discriminator}
}

// NewVariantDecodeError reports a payload that failed to decode into the
// variant selected by the discriminator.
func NewVariantDecodeError(discriminator string, err error) *DataError {
	return &DataError{Discriminator: discriminator, Err: err}
}

// ConfigValidationError wraps configuration validation failures so callers can
// detect them with errors.As.
type ConfigValidationError struct {
	Err error
}

func (e ConfigValidationError) Error() string {
	return fmt.Sprintf("fieldflow: invalid configuration: %v", e.Err)
}

func (e ConfigValidationError) Unwrap() error { return e.Err }

// NewConfigValidationError wraps err in a ConfigValidationError. Returns nil
// when err is nil.
func NewConfigValidationError(err error) error {
	if err == nil {
		return nil
	}
	return ConfigValidationError{Err: err}
}
