package registry

import (
	"reflect"
	"strconv"
	"strings"
	"sync"

	errspkg "github.com/drblury/fieldflow/internal/runtime/errors"
)

// DefaultEnvelopeKey is the JSON key the discriminator is read from when the
// record does not name one through a `discriminator` tag.
const DefaultEnvelopeKey = "type"

// AttrPageSize is the recognized variant tag attribute naming the page size
// hint for consumers that page through a variant's payload.
const AttrPageSize = "page_size"

var recognizedAttrs = map[string]bool{
	AttrPageSize: true,
}

// Options tunes variant registry construction.
type Options struct {
	// StrictAttributes makes unrecognized attribute names in a variant tag a
	// schema error. When false (the default) they are parsed and kept but
	// otherwise ignored.
	StrictAttributes bool
}

// VariantEntry describes one tagged variant field: the discriminator that
// selects it, the slice field it decodes into, and the free-form attributes
// carried by the tag.
type VariantEntry struct {
	// Key is the discriminator string, the first token of the variant tag.
	Key string

	// Name is the struct field holding this variant's payload.
	Name string

	// Elem is the slice element type the payload decodes into.
	Elem reflect.Type

	// Attrs holds the tag's name=value attributes.
	Attrs map[string]string

	acc accessor
}

// Resolve returns a Handle on the entry's slice field inside the given
// record instance.
func (e *VariantEntry) Resolve(record reflect.Value) Handle {
	return Handle{value: e.acc.field(record)}
}

// PageSize parses the page_size attribute. The second return is false when
// the attribute is absent or malformed.
func (e *VariantEntry) PageSize() (int, bool) {
	raw, ok := e.Attrs[AttrPageSize]
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// VariantRegistry is the immutable dispatch table for one union record type:
// discriminator string to variant slice field. Safe for concurrent read-only
// use.
type VariantRegistry struct {
	// Type is the record type the registry was built from.
	Type reflect.Type

	// EnvelopeKey is the JSON key the discriminator is read from.
	EnvelopeKey string

	entries map[string]*VariantEntry
	keys    []string

	// discriminator addresses the optional string field that records which
	// variant was selected; nil when the record has none.
	discriminator *accessor
}

// Entry looks up the variant selected by a discriminator.
func (r *VariantRegistry) Entry(key string) (*VariantEntry, bool) {
	e, ok := r.entries[key]
	return e, ok
}

// Keys returns the registered discriminators in field declaration order.
func (r *VariantRegistry) Keys() []string {
	return r.keys
}

// New allocates a fresh zero-valued record instance and returns its
// addressable struct value alongside the record pointer.
func (r *VariantRegistry) New() (reflect.Value, any) {
	ptr := reflect.New(r.Type)
	return ptr.Elem(), ptr.Interface()
}

// RecordDiscriminator mirrors the discriminator onto the record's tagged
// string field, when the record declares one.
func (r *VariantRegistry) RecordDiscriminator(record reflect.Value, key string) {
	if r.discriminator == nil {
		return
	}
	r.discriminator.field(record).SetString(key)
}

var variantCache sync.Map // reflect.Type -> *VariantRegistry

// ForVariants returns the variant registry for t with default options,
// building it on first use. Racing first builds are safe; the first
// published table wins.
func ForVariants(t reflect.Type) (*VariantRegistry, error) {
	if cached, ok := variantCache.Load(t); ok {
		return cached.(*VariantRegistry), nil
	}

	built, err := BuildVariants(t, Options{})
	if err != nil {
		return nil, err
	}

	published, _ := variantCache.LoadOrStore(t, built)
	return published.(*VariantRegistry), nil
}

// BuildVariants constructs a variant registry without consulting the cache.
// Use this when non-default Options are needed.
func BuildVariants(t reflect.Type, opts Options) (*VariantRegistry, error) {
	if t == nil {
		return nil, errspkg.ErrNilRecordType
	}
	if t.Kind() != reflect.Struct {
		return nil, errspkg.NewSchemaError(t.String(), "", "union record must be a struct")
	}

	reg := &VariantRegistry{
		Type:        t,
		EnvelopeKey: DefaultEnvelopeKey,
		entries:     make(map[string]*VariantEntry),
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if key, ok := field.Tag.Lookup("discriminator"); ok {
			if field.Type.Kind() != reflect.String {
				return nil, errspkg.NewSchemaError(t.String(), field.Name, "discriminator field must be a string")
			}
			if reg.discriminator != nil {
				return nil, errspkg.NewSchemaError(t.String(), field.Name, "duplicate discriminator field")
			}
			acc := accessor{index: []int{i}}
			reg.discriminator = &acc
			if key != "" {
				reg.EnvelopeKey = key
			}
			continue
		}

		tag, ok := field.Tag.Lookup("variant")
		if !ok || tag == "-" {
			continue
		}
		if field.Type.Kind() != reflect.Slice {
			return nil, errspkg.NewSchemaError(t.String(), field.Name, "variant field must be a slice")
		}

		key, attrs, err := parseVariantTag(t, field.Name, tag, opts)
		if err != nil {
			return nil, err
		}
		if _, dup := reg.entries[key]; dup {
			return nil, errspkg.NewSchemaError(t.String(), field.Name, "duplicate discriminator "+strconv.Quote(key))
		}

		reg.entries[key] = &VariantEntry{
			Key:   key,
			Name:  field.Name,
			Elem:  field.Type.Elem(),
			Attrs: attrs,
			acc:   accessor{index: []int{i}},
		}
		reg.keys = append(reg.keys, key)
	}

	return reg, nil
}

// parseVariantTag splits `key[,attr=value]*`. The first token is the
// discriminator; the rest are attributes.
func parseVariantTag(t reflect.Type, fieldName, tag string, opts Options) (string, map[string]string, error) {
	tokens := strings.Split(tag, ",")
	key := strings.TrimSpace(tokens[0])
	if key == "" {
		return "", nil, errspkg.NewSchemaError(t.String(), fieldName, "variant tag needs a discriminator")
	}

	var attrs map[string]string
	for _, tok := range tokens[1:] {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		name, value, ok := strings.Cut(tok, "=")
		if !ok {
			return "", nil, errspkg.NewSchemaError(t.String(), fieldName, "malformed variant attribute "+strconv.Quote(tok))
		}
		name = strings.TrimSpace(name)
		if opts.StrictAttributes && !recognizedAttrs[name] {
			return "", nil, errspkg.NewSchemaError(t.String(), fieldName, "unknown variant attribute "+strconv.Quote(name))
		}
		if attrs == nil {
			attrs = make(map[string]string)
		}
		attrs[name] = strings.TrimSpace(value)
	}
	return key, attrs, nil
}
