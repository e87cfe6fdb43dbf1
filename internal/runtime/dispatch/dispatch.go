// Package dispatch turns a typed handler function into an http.HandlerFunc.
// The parameter record's field layout, introspected once at construction,
// drives everything that happens per request: extraction order, the closer
// chain, and response conversion.
package dispatch

import (
	"context"
	"errors"
	"net/http"
	"reflect"
	"time"

	bindingpkg "github.com/drblury/fieldflow/internal/runtime/binding"
	errspkg "github.com/drblury/fieldflow/internal/runtime/errors"
	idspkg "github.com/drblury/fieldflow/internal/runtime/ids"
	loggingpkg "github.com/drblury/fieldflow/internal/runtime/logging"
	registrypkg "github.com/drblury/fieldflow/internal/runtime/registry"
)

// Default response statuses. Extraction failures are the caller's fault,
// handler failures are ours; either can be overridden by a status hint on
// the error.
const (
	DefaultSuccessStatus = http.StatusOK
	DefaultExtractStatus = http.StatusBadRequest
	DefaultHandlerStatus = http.StatusInternalServerError
)

// HandlerFunc is the typed handler signature. P is the parameter record; the
// dispatcher allocates it, populates every field, and hands it over fully
// extracted. The returned value becomes the response body.
type HandlerFunc[P any] func(ctx context.Context, params *P) (any, error)

type options struct {
	name string
	log  loggingpkg.Logger
}

// Option tunes handler construction.
type Option func(*options)

// WithName sets the handler name used in log fields, metrics labels, and
// trace spans. Defaults to the parameter record's type name.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithLogger sets the observation channel for this handler's extraction and
// finalization errors.
func WithLogger(log loggingpkg.Logger) Option {
	return func(o *options) { o.log = log }
}

// NewHandler builds an http.HandlerFunc from a typed handler. The parameter
// registry for P is built (or fetched) here: a P that is not a struct, or
// has a field without an Extractor, is a schema error returned now, never at
// request time.
func NewHandler[P any](fn HandlerFunc[P], opts ...Option) (http.HandlerFunc, error) {
	if fn == nil {
		return nil, errspkg.ErrHandlerRequired
	}

	o := options{log: loggingpkg.Nop()}
	for _, opt := range opts {
		opt(&o)
	}

	reg, err := registrypkg.ForParams(reflect.TypeFor[P]())
	if err != nil {
		return nil, err
	}
	if o.name == "" {
		o.name = reg.Type.String()
	}

	return func(w http.ResponseWriter, r *http.Request) {
		serve(w, r, reg, func(ctx context.Context, params any) (any, error) {
			return fn(ctx, params.(*P))
		}, o)
	}, nil
}

// MustHandler is NewHandler for call sites that treat schema errors as
// programmer mistakes and want startup to abort.
func MustHandler[P any](fn HandlerFunc[P], opts ...Option) http.HandlerFunc {
	h, err := NewHandler(fn, opts...)
	if err != nil {
		panic(err)
	}
	return h
}

type closerEntry struct {
	name string
	fin  bindingpkg.Finalizer
}

func serve(
	w http.ResponseWriter,
	r *http.Request,
	reg *registrypkg.ParamRegistry,
	invoke func(context.Context, any) (any, error),
	o options,
) {
	start := time.Now()
	requestID := idspkg.NewID()
	log := o.log.With(loggingpkg.LogFields{"handler": o.name, "request_id": requestID})

	ctx, span := startSpan(r.Context(), o.name)
	defer span.End()

	record, ptr := reg.New()

	// The closer chain collects finalizers as fields complete extraction.
	// It always runs, in reverse, after the response is written; a failed
	// sibling extraction does not skip it.
	closers := make([]closerEntry, 0, len(reg.Entries))
	defer func() {
		runClosers(closers, log)
	}()

	var failure error
	for i := range reg.Entries {
		entry := &reg.Entries[i]
		handle := entry.Resolve(record)

		err := handle.Extractor().Extract(&bindingpkg.Request{
			HTTP:      r,
			FieldName: entry.Name,
			Tag:       entry.Tag,
			RequestID: requestID,
			Log:       log,
		})
		if err != nil {
			failure = asExtractError(entry.Name, err)
			break
		}
		if entry.Finalizes {
			if fin, ok := handle.Finalizer(); ok {
				closers = append(closers, closerEntry{name: entry.Name, fin: fin})
			}
		}
	}

	var status int
	if failure == nil {
		out, err := invoke(ctx, ptr)
		if err != nil {
			failure = err
		} else {
			status = writeSuccess(w, out, record, reg, requestID, log)
		}
	}
	if failure != nil {
		status = writeFailure(w, failure, requestID, log)
		spanRecordError(span, failure)
	}

	observeRequest(o.name, status, time.Since(start))
}

func asExtractError(field string, err error) error {
	var extractErr *errspkg.ExtractError
	if errors.As(err, &extractErr) {
		if extractErr.Field == "" {
			extractErr.Field = field
		}
		return extractErr
	}

	status := 0
	var carrier bindingpkg.StatusCarrier
	if errors.As(err, &carrier) {
		status = carrier.StatusCode()
	}
	return &errspkg.ExtractError{Field: field, Status: status, Err: err}
}

// runClosers finalizes in reverse acquisition order. One failure does not
// stop the rest; each failure is reported to the observation channel exactly
// once and never alters the response already sent.
func runClosers(closers []closerEntry, log loggingpkg.Logger) {
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i].fin.Finalize(); err != nil {
			log.Error("finalization failed", err, loggingpkg.LogFields{"field": closers[i].name})
		}
	}
}
