package runtime

import (
	"context"
	"errors"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"

	errspkg "github.com/drblury/fieldflow/internal/runtime/errors"
	handlerpkg "github.com/drblury/fieldflow/internal/runtime/handlers"
	idspkg "github.com/drblury/fieldflow/internal/runtime/ids"
	"github.com/drblury/fieldflow/internal/runtime/jsoncodec"
	metadatapkg "github.com/drblury/fieldflow/internal/runtime/metadata"
)

// Producer emits typed records onto the configured transport.
type Producer interface {
	PublishRecord(ctx context.Context, topic string, record any, metadata metadatapkg.Metadata) error
}

// NewMessageFromRecord serializes the record as JSON and wraps it in a
// Watermill message carrying the standard metadata, including the record
// schema key consumed by typed handlers downstream.
func NewMessageFromRecord(record any, metadata metadatapkg.Metadata) (*message.Message, error) {
	if record == nil {
		return nil, errspkg.ErrPayloadRequired
	}

	payload, err := jsoncodec.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal record payload: %w", err)
	}

	msg := message.NewMessage(idspkg.NewID(), payload)
	msg.Metadata = metadatapkg.ToWatermill(metadata)
	msg.Metadata[handlerpkg.MetadataKeyRecordSchema] = fmt.Sprintf("%T", record)
	return msg, nil
}

// PublishRecord marshals the record and publishes it to the provided topic.
func PublishRecord(ctx context.Context, publisher message.Publisher, topic string, record any, metadata metadatapkg.Metadata) error {
	if publisher == nil {
		return errspkg.ErrPublisherRequired
	}
	if topic == "" {
		return errspkg.ErrTopicRequired
	}

	msg, err := NewMessageFromRecord(record, metadata)
	if err != nil {
		return err
	}

	if ctx != nil {
		msg.SetContext(ctx)
	}

	return publisher.Publish(topic, msg)
}

// PublishRecord emits the record using the Service publisher so HTTP handlers
// can create events without touching the internal Watermill APIs directly.
func (s *Service) PublishRecord(ctx context.Context, topic string, record any, metadata metadatapkg.Metadata) error {
	if s == nil {
		return errors.New("fieldflow: service is nil")
	}
	return PublishRecord(ctx, s.publisher, topic, record, metadata)
}
