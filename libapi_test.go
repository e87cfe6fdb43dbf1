package fieldflow

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type userPayload struct {
	Name string `json:"name"`
}

type facadeParams struct {
	Log  RequestLog
	Body JSON[userPayload]
}

func TestNewHandlerDispatchesTypedParams(t *testing.T) {
	handler, err := NewHandler(func(ctx context.Context, p *facadeParams) (any, error) {
		return map[string]string{"hello": p.Body.Value.Name}, nil
	}, WithName("facade-test"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(`{"name":"lena"}`))
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "lena") {
		t.Fatalf("expected handler output, got %s", rec.Body.String())
	}
	if rec.Header().Get("X-Request-Id") == "" {
		t.Fatal("expected request ID header")
	}
}

func TestMustHandlerPanicsOnBadParams(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for non-extractable parameter field")
		}
	}()
	type badParams struct {
		N int
	}
	MustHandler(func(ctx context.Context, p *badParams) (any, error) { return nil, nil })
}

type crab struct {
	Claws int `json:"claws"`
}

type gopherNest struct {
	Depth int `json:"depth"`
}

type menagerie struct {
	Kind    string       `discriminator:"type"`
	Crabs   []crab       `variant:"crab"`
	Gophers []gopherNest `variant:"gopher"`
}

func TestDecodeUnionSelectsVariant(t *testing.T) {
	payload := []byte(`{"type":"gopher","items":[{"depth":3}]}`)

	var record menagerie
	kind, err := DecodeUnion(payload, &record)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if kind != "gopher" {
		t.Fatalf("expected gopher, got %q", kind)
	}
	if record.Kind != "gopher" {
		t.Fatalf("expected discriminator to be mirrored, got %q", record.Kind)
	}
	if len(record.Gophers) != 1 || record.Gophers[0].Depth != 3 {
		t.Fatalf("unexpected variant contents: %+v", record)
	}
	if len(record.Crabs) != 0 {
		t.Fatal("expected non-matching variants to stay empty")
	}
}

func TestDecodeUnionUnknownDiscriminator(t *testing.T) {
	var record menagerie
	_, err := DecodeUnion([]byte(`{"type":"camel","items":[]}`), &record)

	var dataErr *DataError
	if !errors.As(err, &dataErr) {
		t.Fatalf("expected DataError, got %v", err)
	}
	if dataErr.Discriminator != "camel" {
		t.Fatalf("expected discriminator in error, got %q", dataErr.Discriminator)
	}
}

func TestDecodeUnionNewAllocatesRecord(t *testing.T) {
	record, kind, err := DecodeUnionNew[menagerie]([]byte(`{"type":"crab","items":[{"claws":2}]}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if kind != "crab" || len(record.Crabs) != 1 {
		t.Fatalf("unexpected decode result: kind=%q record=%+v", kind, record)
	}
}

func TestValidateConfigRejectsBrokerlessKafka(t *testing.T) {
	err := ValidateConfig(&Config{PubSubSystem: "kafka"})

	var validationErr ConfigValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ConfigValidationError, got %v", err)
	}
}

func TestFacadeSentinels(t *testing.T) {
	if err := RegisterMessageHandler(nil, MessageHandlerRegistration{}); !errors.Is(err, ErrServiceRequired) {
		t.Fatalf("expected ErrServiceRequired, got %v", err)
	}
	if _, err := DecodeUnion([]byte(`{}`), nil); !errors.Is(err, ErrRecordRequired) {
		t.Fatalf("expected ErrRecordRequired, got %v", err)
	}
}

func TestMetadataHelpers(t *testing.T) {
	md := NewMetadata(MetadataKeyCorrelationID, "corr-1").With("extra", "v")
	if md[MetadataKeyCorrelationID] != "corr-1" || md["extra"] != "v" {
		t.Fatalf("unexpected metadata: %v", md)
	}
	if id := NewID(); len(id) != 26 {
		t.Fatalf("expected ULID length 26, got %d (%s)", len(id), id)
	}
}
