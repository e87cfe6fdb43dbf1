package union

import (
	"errors"
	"strings"
	"testing"

	errspkg "github.com/drblury/fieldflow/internal/runtime/errors"
)

type crustacean struct {
	Claws int `json:"claws"`
}

type rodent struct {
	Teeth int `json:"teeth"`
}

type menagerie struct {
	Kind    string       `discriminator:"type"`
	Crabs   []crustacean `variant:"crab,page_size=1000"`
	Gophers []rodent     `variant:"gopher"`
}

func TestDecodeSelectsOnlyMatchingVariant(t *testing.T) {
	var m menagerie
	discriminator, err := Decode([]byte(`{"type":"gopher","items":[{"teeth":2}]}`), &m)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if discriminator != "gopher" {
		t.Fatalf("discriminator = %q, want %q", discriminator, "gopher")
	}
	if len(m.Gophers) != 1 || m.Gophers[0].Teeth != 2 {
		t.Fatalf("gophers = %#v", m.Gophers)
	}
	if len(m.Crabs) != 0 {
		t.Fatalf("crab slice must stay empty, got %#v", m.Crabs)
	}
	if m.Kind != "gopher" {
		t.Fatalf("discriminator not mirrored onto record: %q", m.Kind)
	}
}

func TestDecodeUnknownDiscriminator(t *testing.T) {
	var m menagerie
	discriminator, err := Decode([]byte(`{"type":"camel","items":[]}`), &m)

	var dataErr *errspkg.DataError
	if !errors.As(err, &dataErr) {
		t.Fatalf("expected DataError, got %v", err)
	}
	if dataErr.Discriminator != "camel" || discriminator != "camel" {
		t.Fatalf("discriminator = %q / %q, want %q", dataErr.Discriminator, discriminator, "camel")
	}
	if !strings.Contains(err.Error(), "camel") {
		t.Fatalf("error must name the discriminator: %v", err)
	}
	if len(m.Crabs) != 0 || len(m.Gophers) != 0 || m.Kind != "" {
		t.Fatalf("record mutated on unknown discriminator: %#v", m)
	}
}

func TestDecodePayloadFailure(t *testing.T) {
	var m menagerie
	_, err := Decode([]byte(`{"type":"crab","items":[{"claws":"many"}]}`), &m)

	var dataErr *errspkg.DataError
	if !errors.As(err, &dataErr) {
		t.Fatalf("expected DataError, got %v", err)
	}
	if dataErr.Discriminator != "crab" {
		t.Fatalf("discriminator = %q, want %q", dataErr.Discriminator, "crab")
	}
	if dataErr.Err == nil {
		t.Fatal("decode failure must carry the underlying error")
	}
}

func TestDecodeMissingDiscriminator(t *testing.T) {
	var m menagerie
	_, err := Decode([]byte(`{"items":[]}`), &m)

	var dataErr *errspkg.DataError
	if !errors.As(err, &dataErr) {
		t.Fatalf("expected DataError, got %v", err)
	}
}

func TestDecodeRejectsNonPointerTargets(t *testing.T) {
	if _, err := Decode([]byte(`{}`), nil); !errors.Is(err, errspkg.ErrRecordRequired) {
		t.Fatalf("nil target: %v", err)
	}

	var nilPtr *menagerie
	if _, err := Decode([]byte(`{}`), nilPtr); !errors.Is(err, errspkg.ErrRecordRequired) {
		t.Fatalf("nil pointer target: %v", err)
	}
}

func TestDecodeSchemaErrorForNonStructRecord(t *testing.T) {
	var n int
	_, err := Decode([]byte(`{"type":"x"}`), &n)

	var schemaErr *errspkg.SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected SchemaError, got %v", err)
	}
}

func TestDecodeUntaggedRecordKnowsNoVariants(t *testing.T) {
	type plain struct {
		Name string
	}
	var p plain
	_, err := Decode([]byte(`{"type":"x"}`), &p)

	var dataErr *errspkg.DataError
	if !errors.As(err, &dataErr) {
		t.Fatalf("expected DataError, got %v", err)
	}
	if dataErr.Discriminator != "x" {
		t.Fatalf("discriminator = %q", dataErr.Discriminator)
	}
}

func TestDecodeFieldCustomPayloadKey(t *testing.T) {
	var m menagerie
	discriminator, err := DecodeField([]byte(`{"type":"crab","records":[{"claws":8}]}`), &m, "records")
	if err != nil {
		t.Fatalf("DecodeField: %v", err)
	}
	if discriminator != "crab" || len(m.Crabs) != 1 || m.Crabs[0].Claws != 8 {
		t.Fatalf("crabs = %#v", m.Crabs)
	}
}

func TestDecodeNew(t *testing.T) {
	record, discriminator, err := DecodeNew[menagerie]([]byte(`{"type":"crab","items":[{"claws":2},{"claws":4}]}`))
	if err != nil {
		t.Fatalf("DecodeNew: %v", err)
	}
	if discriminator != "crab" {
		t.Fatalf("discriminator = %q", discriminator)
	}
	if len(record.Crabs) != 2 {
		t.Fatalf("crabs = %#v", record.Crabs)
	}
}
