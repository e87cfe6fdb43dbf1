package registry

import (
	"reflect"
	"sync"

	bindingpkg "github.com/drblury/fieldflow/internal/runtime/binding"
	errspkg "github.com/drblury/fieldflow/internal/runtime/errors"
)

var (
	extractorType     = reflect.TypeOf((*bindingpkg.Extractor)(nil)).Elem()
	finalizerType     = reflect.TypeOf((*bindingpkg.Finalizer)(nil)).Elem()
	statusCarrierType = reflect.TypeOf((*bindingpkg.StatusCarrier)(nil)).Elem()
)

// ParamEntry describes one extractable field of a parameter record. Entries
// are ordered by field declaration; that order is the extraction order
// contract.
type ParamEntry struct {
	// Name is the field's path inside the record, dotted for fields reached
	// through nested structs.
	Name string

	// Tag is the field's raw `bind` tag, empty when absent.
	Tag string

	// Type is the field's declared type.
	Type reflect.Type

	// Finalizes is true when a pointer to the field type implements
	// Finalizer.
	Finalizes bool

	// CarriesStatus is true when a pointer to the field type implements
	// StatusCarrier.
	CarriesStatus bool

	acc accessor
}

// Resolve returns a Handle for this entry's field inside the given record
// instance. record must be the addressable struct value this registry was
// built for.
func (e *ParamEntry) Resolve(record reflect.Value) Handle {
	return Handle{value: e.acc.field(record)}
}

// ParamRegistry is the immutable extraction table for one parameter record
// type: one entry per extractable field, in declaration order. Safe for
// concurrent read-only use.
type ParamRegistry struct {
	// Type is the record type the registry was built from.
	Type reflect.Type

	// Entries holds the extraction plan in field declaration order.
	Entries []ParamEntry
}

// New allocates a fresh zero-valued record instance and returns its
// addressable struct value alongside the pointer to pass to handlers.
func (r *ParamRegistry) New() (reflect.Value, any) {
	ptr := reflect.New(r.Type)
	return ptr.Elem(), ptr.Interface()
}

var paramCache sync.Map // reflect.Type -> *ParamRegistry

// ForParams returns the parameter registry for t, building it on first use.
// Concurrent first calls may race to build; the first published table wins
// and redundant builds are discarded.
func ForParams(t reflect.Type) (*ParamRegistry, error) {
	if cached, ok := paramCache.Load(t); ok {
		return cached.(*ParamRegistry), nil
	}

	built, err := buildParams(t)
	if err != nil {
		return nil, err
	}

	published, _ := paramCache.LoadOrStore(t, built)
	return published.(*ParamRegistry), nil
}

func buildParams(t reflect.Type) (*ParamRegistry, error) {
	if t == nil {
		return nil, errspkg.ErrNilRecordType
	}
	if t.Kind() != reflect.Struct {
		return nil, errspkg.NewSchemaError(t.String(), "", "parameter record must be a struct")
	}

	entries, err := collectParamEntries(t, "", accessor{})
	if err != nil {
		return nil, err
	}

	return &ParamRegistry{Type: t, Entries: entries}, nil
}

func collectParamEntries(t reflect.Type, prefix string, base accessor) ([]ParamEntry, error) {
	entries := make([]ParamEntry, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		name := field.Name
		if prefix != "" {
			name = prefix + "." + field.Name
		}

		if !field.IsExported() {
			return nil, errspkg.NewSchemaError(t.String(), name, "parameter fields must be exported")
		}

		acc := base.join(accessor{index: []int{i}})
		ptr := reflect.PointerTo(field.Type)

		if ptr.Implements(extractorType) {
			entries = append(entries, ParamEntry{
				Name:          name,
				Tag:           field.Tag.Get("bind"),
				Type:          field.Type,
				Finalizes:     ptr.Implements(finalizerType),
				CarriesStatus: ptr.Implements(statusCarrierType),
				acc:           acc,
			})
			continue
		}

		// A non-extractable struct field is treated as a nested group:
		// descend into its own layout and compose the access paths.
		if field.Type.Kind() == reflect.Struct {
			nested, err := collectParamEntries(field.Type, name, acc)
			if err != nil {
				return nil, err
			}
			entries = append(entries, nested...)
			continue
		}

		return nil, errspkg.NewSchemaError(t.String(), name, "does not implement Extractor")
	}
	return entries, nil
}
