package handlers

import (
	"context"
	"reflect"

	"github.com/ThreeDotsLabs/watermill/message"

	errspkg "github.com/drblury/fieldflow/internal/runtime/errors"
	loggingpkg "github.com/drblury/fieldflow/internal/runtime/logging"
	metadatapkg "github.com/drblury/fieldflow/internal/runtime/metadata"
	registrypkg "github.com/drblury/fieldflow/internal/runtime/registry"
	unionpkg "github.com/drblury/fieldflow/internal/runtime/union"
)

// UnionMessageContext exposes a record populated by tagged dispatch: exactly
// one of its variant slices holds the payload, selected by Discriminator.
type UnionMessageContext[T any] struct {
	MessageContextBase
	Record        *T
	Discriminator string

	variant *registrypkg.VariantEntry
}

// VariantPageSize reports the page_size attribute declared on the matched
// variant's tag, when one was set.
func (m UnionMessageContext[T]) VariantPageSize() (int, bool) {
	if m.variant == nil {
		return 0, false
	}
	return m.variant.PageSize()
}

// UnionMessageHandler processes one dispatched union record and returns the
// events to publish.
type UnionMessageHandler[T any, O any] func(ctx context.Context, msg UnionMessageContext[T]) ([]MessageOutput[O], error)

// BuildUnionHandler converts a typed union handler into a Watermill handler.
// The record type's variant registry is built here, so a record that cannot
// be dispatched fails handler construction rather than the first message.
func BuildUnionHandler[T any, O any](handler UnionMessageHandler[T, O], logger loggingpkg.Logger) (message.HandlerFunc, error) {
	return BuildUnionHandlerForKey(handler, logger, unionpkg.DefaultPayloadKey)
}

// BuildUnionHandlerForKey behaves like BuildUnionHandler with a custom
// envelope payload key.
func BuildUnionHandlerForKey[T any, O any](handler UnionMessageHandler[T, O], logger loggingpkg.Logger, payloadKey string) (message.HandlerFunc, error) {
	if handler == nil {
		return nil, errspkg.ErrHandlerRequired
	}
	if logger == nil {
		logger = loggingpkg.Nop()
	}
	if payloadKey == "" {
		payloadKey = unionpkg.DefaultPayloadKey
	}

	reg, err := registrypkg.ForVariants(reflect.TypeFor[T]())
	if err != nil {
		return nil, err
	}

	return func(msg *message.Message) ([]*message.Message, error) {
		record := new(T)
		discriminator, err := unionpkg.DecodeField(msg.Payload, record, payloadKey)
		if err != nil {
			return nil, err
		}

		// Stamped on the message itself so downstream middleware (tracing,
		// poison queue) sees which variant was dispatched.
		msg.Metadata.Set(metadatapkg.KeyDiscriminator, discriminator)
		md := metadatapkg.FromWatermill(msg.Metadata)

		entry, _ := reg.Entry(discriminator)
		mctx := UnionMessageContext[T]{
			MessageContextBase: MessageContextBase{
				Metadata: md,
				Logger:   logger.With(loggingpkg.LogFields{"discriminator": discriminator}),
			},
			Record:        record,
			Discriminator: discriminator,
			variant:       entry,
		}

		outgoing, err := handler(msg.Context(), mctx)
		if err != nil {
			return nil, err
		}

		return convertOutputs(outgoing, mctx.Metadata)
	}, nil
}
