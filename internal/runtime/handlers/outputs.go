package handlers

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/ThreeDotsLabs/watermill/message"

	idspkg "github.com/drblury/fieldflow/internal/runtime/ids"
	jsoncodec "github.com/drblury/fieldflow/internal/runtime/jsoncodec"
	metadatapkg "github.com/drblury/fieldflow/internal/runtime/metadata"
)

// MetadataKeyRecordSchema names the Go type of an outgoing event.
const MetadataKeyRecordSchema = "record_schema"

// MessageOutput represents an event emitted by a typed handler.
type MessageOutput[O any] struct {
	Message  O
	Metadata metadatapkg.Metadata
}

// convertOutputs encodes handler outputs into Watermill messages. Outputs
// without their own metadata inherit the incoming message's.
func convertOutputs[O any](outputs []MessageOutput[O], fallback metadatapkg.Metadata) ([]*message.Message, error) {
	if len(outputs) == 0 {
		return nil, nil
	}

	result := make([]*message.Message, len(outputs))
	for i, out := range outputs {
		if v := reflect.ValueOf(out.Message); !v.IsValid() || v.IsZero() {
			return nil, errors.New("handler emitted zero-value message")
		}

		payload, err := jsoncodec.Marshal(out.Message)
		if err != nil {
			return nil, err
		}

		md := out.Metadata
		if md == nil {
			md = fallback
		}
		if md == nil {
			md = metadatapkg.Metadata{}
		}
		md = md.Clone()
		md[MetadataKeyRecordSchema] = fmt.Sprintf("%T", out.Message)

		msg := message.NewMessage(idspkg.NewID(), payload)
		msg.Metadata = metadatapkg.ToWatermill(md)
		result[i] = msg
	}

	return result, nil
}
