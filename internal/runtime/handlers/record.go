package handlers

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"

	errspkg "github.com/drblury/fieldflow/internal/runtime/errors"
	jsoncodec "github.com/drblury/fieldflow/internal/runtime/jsoncodec"
	loggingpkg "github.com/drblury/fieldflow/internal/runtime/logging"
	metadatapkg "github.com/drblury/fieldflow/internal/runtime/metadata"
)

// RecordMessageContext exposes a fully-decoded record and its metadata.
type RecordMessageContext[T any] struct {
	MessageContextBase
	Record *T
}

// RecordMessageHandler processes one decoded record and returns the events
// to publish.
type RecordMessageHandler[T any, O any] func(ctx context.Context, msg RecordMessageContext[T]) ([]MessageOutput[O], error)

// BuildRecordHandler converts a typed record handler into a Watermill
// handler. The whole message payload decodes into a fresh record; for
// tagged payloads use BuildUnionHandler instead.
func BuildRecordHandler[T any, O any](handler RecordMessageHandler[T, O], logger loggingpkg.Logger) (message.HandlerFunc, error) {
	if handler == nil {
		return nil, errspkg.ErrHandlerRequired
	}
	if logger == nil {
		logger = loggingpkg.Nop()
	}

	return func(msg *message.Message) ([]*message.Message, error) {
		record := new(T)
		if err := jsoncodec.Unmarshal(msg.Payload, record); err != nil {
			return nil, fmt.Errorf("failed to unmarshal record payload: %w", err)
		}

		mctx := RecordMessageContext[T]{
			MessageContextBase: MessageContextBase{
				Metadata: metadatapkg.FromWatermill(msg.Metadata),
				Logger:   logger,
			},
			Record: record,
		}

		outgoing, err := handler(msg.Context(), mctx)
		if err != nil {
			return nil, err
		}

		return convertOutputs(outgoing, mctx.Metadata)
	}, nil
}
