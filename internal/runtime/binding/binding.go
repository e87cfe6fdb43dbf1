// Package binding defines the capability contracts a parameter field may
// implement and the request handle passed to them. A field type opts into
// exactly the capabilities it needs; nothing here forces a field to stub out
// behaviour it does not have.
package binding

import (
	"net/http"
	"strings"

	loggingpkg "github.com/drblury/fieldflow/internal/runtime/logging"
)

// Request is the inbound-request handle handed to extractors. It wraps the
// transport request together with the registry-side context for the one field
// being populated: the field's name and its `bind` tag.
type Request struct {
	HTTP *http.Request

	// FieldName is the struct field currently being extracted.
	FieldName string

	// Tag is the raw `bind` tag of the field, empty when the field has none.
	Tag string

	// RequestID is the ULID assigned to this request by the dispatcher.
	RequestID string

	Log loggingpkg.Logger
}

// Extractor is implemented by field types that populate themselves from an
// inbound request. Extract is always called on an addressable, zero-valued
// instance and must not assume any prior state.
type Extractor interface {
	Extract(req *Request) error
}

// Finalizer is implemented by field types with cleanup to run after a
// response has been produced. Finalize is called exactly once per successful
// extraction, in reverse extraction order.
type Finalizer interface {
	Finalize() error
}

// Renderer is implemented by handler outputs that control their own response
// serialization. When present it fully supersedes the default encoding path.
type Renderer interface {
	Render(w http.ResponseWriter) error
}

// StatusCarrier advertises a response status code. It is advisory and only
// consulted when Renderer is absent.
type StatusCarrier interface {
	StatusCode() int
}

// TagName returns the first comma-separated token of a `bind` tag, the
// value's name in the request (query key, header name, path variable).
func TagName(tag string) string {
	name, _, _ := strings.Cut(tag, ",")
	return name
}

// TagHas reports whether a `bind` tag carries the given attribute after the
// name, e.g. TagHas("id,required", "required").
func TagHas(tag, attr string) bool {
	_, rest, ok := strings.Cut(tag, ",")
	if !ok {
		return false
	}
	for _, tok := range strings.Split(rest, ",") {
		if strings.TrimSpace(tok) == attr {
			return true
		}
	}
	return false
}
