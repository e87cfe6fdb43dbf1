// Package union dispatches tagged JSON messages of the shape
// {discriminator, payload} into the matching variant slice of a record,
// driven by the record's variant registry.
package union

import (
	"fmt"
	"reflect"

	errspkg "github.com/drblury/fieldflow/internal/runtime/errors"
	jsoncodec "github.com/drblury/fieldflow/internal/runtime/jsoncodec"
	registrypkg "github.com/drblury/fieldflow/internal/runtime/registry"
)

// DefaultPayloadKey is the envelope key the variant payload is read from.
const DefaultPayloadKey = "items"

// Decode reads the discriminator out of data, selects the matching variant
// slice on the record target points to, and deserializes the payload into
// that slice only. All other variant fields keep their zero value, and the
// record's discriminator field, when it declares one, is set to the value
// that drove the dispatch. The discriminator is returned either way so
// callers can report it.
//
// An unknown discriminator or a payload that does not decode is a *DataError
// carrying the discriminator; the target is never touched on an unknown one.
func Decode(data []byte, target any) (string, error) {
	return DecodeField(data, target, DefaultPayloadKey)
}

// DecodeField is Decode with an explicit envelope key for the payload.
func DecodeField(data []byte, target any, payloadKey string) (string, error) {
	if target == nil {
		return "", errspkg.ErrRecordRequired
	}
	v := reflect.ValueOf(target)
	if v.Kind() != reflect.Pointer || v.IsNil() {
		return "", errspkg.ErrRecordRequired
	}

	reg, err := registrypkg.ForVariants(v.Type().Elem())
	if err != nil {
		return "", err
	}

	// Only the discriminator is parsed up front; the payload stays an
	// opaque byte span until the target slice is known.
	discriminator, err := jsoncodec.FieldString(data, reg.EnvelopeKey)
	if err != nil {
		return "", &errspkg.DataError{Err: fmt.Errorf("reading discriminator %q: %w", reg.EnvelopeKey, err)}
	}

	entry, ok := reg.Entry(discriminator)
	if !ok {
		return discriminator, errspkg.NewUnknownVariantError(discriminator)
	}

	payload, err := jsoncodec.FieldRaw(data, payloadKey)
	if err != nil {
		return discriminator, errspkg.NewVariantDecodeError(discriminator, fmt.Errorf("reading payload %q: %w", payloadKey, err))
	}

	record := v.Elem()
	if err := jsoncodec.Unmarshal(payload, entry.Resolve(record).Addr()); err != nil {
		return discriminator, errspkg.NewVariantDecodeError(discriminator, err)
	}

	reg.RecordDiscriminator(record, discriminator)
	return discriminator, nil
}

// DecodeNew allocates a fresh record, dispatches data into it, and returns it
// together with the discriminator that selected the variant.
func DecodeNew[T any](data []byte) (*T, string, error) {
	record := new(T)
	discriminator, err := Decode(data, record)
	if err != nil {
		return nil, discriminator, err
	}
	return record, discriminator, nil
}
