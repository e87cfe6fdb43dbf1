package dispatch

import (
	"errors"
	"net/http"
	"reflect"

	bindingpkg "github.com/drblury/fieldflow/internal/runtime/binding"
	errspkg "github.com/drblury/fieldflow/internal/runtime/errors"
	jsoncodec "github.com/drblury/fieldflow/internal/runtime/jsoncodec"
	loggingpkg "github.com/drblury/fieldflow/internal/runtime/logging"
	registrypkg "github.com/drblury/fieldflow/internal/runtime/registry"
)

const headerRequestID = "X-Request-Id"

type errorBody struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id"`
}

// writeSuccess converts a handler output into the response. An output that
// renders itself supersedes everything else; otherwise the body is the
// default JSON encoding and the status comes from the output's StatusCarrier,
// then from the first status-carrying parameter field, then 200.
func writeSuccess(
	w http.ResponseWriter,
	out any,
	record reflect.Value,
	reg *registrypkg.ParamRegistry,
	requestID string,
	log loggingpkg.Logger,
) int {
	w.Header().Set(headerRequestID, requestID)

	if renderer, ok := out.(bindingpkg.Renderer); ok {
		if err := renderer.Render(w); err != nil {
			// The renderer owns the wire format; by the time it fails we may
			// have already written. Observation only.
			log.Error("render failed", err, nil)
		}
		return successStatus(out, record, reg)
	}

	status := successStatus(out, record, reg)

	if out == nil {
		w.WriteHeader(status)
		return status
	}

	payload, err := jsoncodec.Marshal(out)
	if err != nil {
		log.Error("encoding response failed", err, nil)
		return writeJSONError(w, http.StatusInternalServerError, "response encoding failed", requestID, log)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(payload); err != nil {
		log.Error("writing response failed", err, nil)
	}
	return status
}

func successStatus(out any, record reflect.Value, reg *registrypkg.ParamRegistry) int {
	if carrier, ok := out.(bindingpkg.StatusCarrier); ok {
		return carrier.StatusCode()
	}
	for i := range reg.Entries {
		entry := &reg.Entries[i]
		if !entry.CarriesStatus {
			continue
		}
		if carrier, ok := entry.Resolve(record).StatusCarrier(); ok {
			return carrier.StatusCode()
		}
	}
	return DefaultSuccessStatus
}

// writeFailure produces the error response. Extraction failures default to
// 400, handler failures to 500; either is overridden when the failure
// carries its own status. The failure is reported to the observation channel
// exactly once, here.
func writeFailure(w http.ResponseWriter, failure error, requestID string, log loggingpkg.Logger) int {
	status := DefaultHandlerStatus

	var extractErr *errspkg.ExtractError
	if errors.As(failure, &extractErr) {
		status = extractErr.ResponseStatus(DefaultExtractStatus)
		log.Error("extraction failed", failure, loggingpkg.LogFields{"field": extractErr.Field})
	} else {
		var carrier bindingpkg.StatusCarrier
		if errors.As(failure, &carrier) {
			status = carrier.StatusCode()
		}
		log.Error("handler failed", failure, nil)
	}

	return writeJSONError(w, status, failure.Error(), requestID, log)
}

func writeJSONError(w http.ResponseWriter, status int, msg, requestID string, log loggingpkg.Logger) int {
	payload, err := jsoncodec.Marshal(errorBody{Error: msg, RequestID: requestID})

	w.Header().Set(headerRequestID, requestID)
	if err != nil {
		log.Error("encoding error response failed", err, nil)
		w.WriteHeader(status)
		return status
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(payload); err != nil {
		log.Error("writing error response failed", err, nil)
	}
	return status
}
