package binding

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"

	loggingpkg "github.com/drblury/fieldflow/internal/runtime/logging"
)

func newTestRequest(method, target, body string) *Request {
	return &Request{
		HTTP:      httptest.NewRequest(method, target, strings.NewReader(body)),
		RequestID: "01TEST",
		Log:       loggingpkg.Nop(),
	}
}

func TestJSONExtract(t *testing.T) {
	type user struct {
		Name string `json:"name"`
	}

	t.Run("valid body", func(t *testing.T) {
		req := newTestRequest("POST", "/users", `{"name":"x"}`)
		var f JSON[user]
		if err := f.Extract(req); err != nil {
			t.Fatalf("Extract: %v", err)
		}
		if f.Value.Name != "x" {
			t.Fatalf("unexpected value: %#v", f.Value)
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		req := newTestRequest("POST", "/users", `{"name":`)
		var f JSON[user]
		if err := f.Extract(req); err == nil {
			t.Fatal("expected extraction error")
		}
	})

	t.Run("declares success status", func(t *testing.T) {
		var f JSON[user]
		if got := f.StatusCode(); got != 200 {
			t.Fatalf("StatusCode = %d, want 200", got)
		}
	})
}

func TestQueryExtract(t *testing.T) {
	t.Run("by tag name", func(t *testing.T) {
		req := newTestRequest("GET", "/search?q=crab", "")
		req.Tag = "q"
		var f Query
		if err := f.Extract(req); err != nil {
			t.Fatalf("Extract: %v", err)
		}
		if f.Value != "crab" {
			t.Fatalf("Value = %q, want %q", f.Value, "crab")
		}
	})

	t.Run("missing optional is empty", func(t *testing.T) {
		req := newTestRequest("GET", "/search", "")
		req.Tag = "q"
		var f Query
		if err := f.Extract(req); err != nil {
			t.Fatalf("Extract: %v", err)
		}
		if f.Value != "" {
			t.Fatalf("Value = %q, want empty", f.Value)
		}
	})

	t.Run("missing required fails", func(t *testing.T) {
		req := newTestRequest("GET", "/search", "")
		req.Tag = "q,required"
		var f Query
		if err := f.Extract(req); err == nil {
			t.Fatal("expected extraction error")
		}
	})
}

func TestHeaderExtract(t *testing.T) {
	req := newTestRequest("GET", "/", "")
	req.HTTP.Header.Set("X-Tenant", "acme")
	req.Tag = "X-Tenant,required"

	var f Header
	if err := f.Extract(req); err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if f.Value != "acme" {
		t.Fatalf("Value = %q, want %q", f.Value, "acme")
	}
}

func TestPathParamExtract(t *testing.T) {
	req := newTestRequest("GET", "/users/42", "")
	req.HTTP = mux.SetURLVars(req.HTTP, map[string]string{"id": "42"})
	req.Tag = "id"

	var f PathParam
	if err := f.Extract(req); err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if f.Value != "42" {
		t.Fatalf("Value = %q, want %q", f.Value, "42")
	}

	t.Run("missing variable fails", func(t *testing.T) {
		req.Tag = "other"
		var missing PathParam
		if err := missing.Extract(req); err == nil {
			t.Fatal("expected extraction error")
		}
	})
}

type closableBody struct {
	io.Reader
	closed int
}

func (b *closableBody) Close() error {
	b.closed++
	return nil
}

func TestRawBodyExtract(t *testing.T) {
	req := newTestRequest("POST", "/", "payload-bytes")
	var f RawBody
	if err := f.Extract(req); err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if string(f.Data) != "payload-bytes" {
		t.Fatalf("Data = %q", f.Data)
	}
}

func TestRawBodyFinalizeClosesBody(t *testing.T) {
	body := &closableBody{Reader: strings.NewReader("payload")}
	req := newTestRequest("POST", "/", "")
	req.HTTP.Body = body

	var f RawBody
	if err := f.Extract(req); err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if err := f.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if body.closed != 1 {
		t.Fatalf("body closed %d times, want 1", body.closed)
	}
}

func TestRawBodyFinalizeWithoutExtract(t *testing.T) {
	var f RawBody
	if err := f.Finalize(); err != nil {
		t.Fatalf("Finalize on zero value: %v", err)
	}
}

func TestRequestLogLifecycle(t *testing.T) {
	req := newTestRequest("GET", "/", "")
	var f RequestLog
	if err := f.Extract(req); err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if f.RequestID != "01TEST" {
		t.Fatalf("RequestID = %q", f.RequestID)
	}
	if f.Log == nil {
		t.Fatal("expected seeded logger")
	}
	if err := f.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
}

func TestTagHelpers(t *testing.T) {
	tests := []struct {
		tag      string
		name     string
		required bool
	}{
		{"q", "q", false},
		{"q,required", "q", true},
		{"q, required", "q", true},
		{"", "", false},
		{",required", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			if got := TagName(tt.tag); got != tt.name {
				t.Errorf("TagName(%q) = %q, want %q", tt.tag, got, tt.name)
			}
			if got := TagHas(tt.tag, "required"); got != tt.required {
				t.Errorf("TagHas(%q) = %v, want %v", tt.tag, got, tt.required)
			}
		})
	}
}
