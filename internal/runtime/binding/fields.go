package binding

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	jsoncodec "github.com/drblury/fieldflow/internal/runtime/jsoncodec"
	loggingpkg "github.com/drblury/fieldflow/internal/runtime/logging"
)

// JSON decodes the request body into Value. The declared success status is
// 200; handlers that need a different code return a StatusCarrier output.
type JSON[T any] struct {
	Value T
}

func (f *JSON[T]) Extract(req *Request) error {
	defer func() { _, _ = io.Copy(io.Discard, req.HTTP.Body) }()
	if err := jsoncodec.Decode(req.HTTP.Body, &f.Value); err != nil {
		return fmt.Errorf("decoding JSON body: %w", err)
	}
	return nil
}

func (f *JSON[T]) StatusCode() int { return http.StatusOK }

// Query extracts a single query-string value named by the field's `bind` tag.
// The "required" tag attribute makes a missing value an extraction error.
type Query struct {
	Value string
}

func (f *Query) Extract(req *Request) error {
	name := TagName(req.Tag)
	if name == "" {
		name = req.FieldName
	}
	f.Value = req.HTTP.URL.Query().Get(name)
	if f.Value == "" && TagHas(req.Tag, "required") {
		return fmt.Errorf("missing required query parameter %q", name)
	}
	return nil
}

// Header extracts a single header value named by the field's `bind` tag.
type Header struct {
	Value string
}

func (f *Header) Extract(req *Request) error {
	name := TagName(req.Tag)
	if name == "" {
		name = req.FieldName
	}
	f.Value = req.HTTP.Header.Get(name)
	if f.Value == "" && TagHas(req.Tag, "required") {
		return fmt.Errorf("missing required header %q", name)
	}
	return nil
}

// PathParam extracts a mux route variable named by the field's `bind` tag.
type PathParam struct {
	Value string
}

func (f *PathParam) Extract(req *Request) error {
	name := TagName(req.Tag)
	if name == "" {
		name = req.FieldName
	}
	vars := mux.Vars(req.HTTP)
	value, ok := vars[name]
	if !ok {
		return fmt.Errorf("no path variable %q on route", name)
	}
	f.Value = value
	return nil
}

// RawBody captures the request body bytes without decoding them. The body
// is closed at finalization, after the response has been written.
type RawBody struct {
	Data []byte

	body io.Closer
}

func (f *RawBody) Extract(req *Request) error {
	data, err := io.ReadAll(req.HTTP.Body)
	if err != nil {
		return fmt.Errorf("reading request body: %w", err)
	}
	f.Data = data
	f.body = req.HTTP.Body
	return nil
}

func (f *RawBody) Finalize() error {
	if f.body == nil {
		return nil
	}
	return f.body.Close()
}

// RequestLog carries a per-request logger seeded with the request ID and
// logs the request lifecycle: started at extraction, finished at
// finalization. Because extraction runs in field declaration order, placing a
// RequestLog first guarantees the start line precedes any later field's
// logging.
type RequestLog struct {
	Log       loggingpkg.Logger
	RequestID string

	started time.Time
}

func (f *RequestLog) Extract(req *Request) error {
	f.RequestID = req.RequestID
	f.Log = req.Log.With(loggingpkg.LogFields{"request_id": req.RequestID})
	f.started = time.Now()
	f.Log.Debug("request started", loggingpkg.LogFields{
		"method": req.HTTP.Method,
		"path":   req.HTTP.URL.Path,
	})
	return nil
}

func (f *RequestLog) Finalize() error {
	if f.Log == nil {
		return nil
	}
	f.Log.Debug("request finished", loggingpkg.LogFields{
		"duration_ms": time.Since(f.started).Milliseconds(),
	})
	return nil
}
