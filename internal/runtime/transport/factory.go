// Package transport bridges the runtime's config to the modular transport
// registry in github.com/drblury/fieldflow/transport.
package transport

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/drblury/fieldflow/internal/runtime/config"
	ffransport "github.com/drblury/fieldflow/transport"

	// Register the built-in transports.
	_ "github.com/drblury/fieldflow/transport/channel"
	_ "github.com/drblury/fieldflow/transport/http"
	_ "github.com/drblury/fieldflow/transport/jetstream"
	_ "github.com/drblury/fieldflow/transport/kafka"
	_ "github.com/drblury/fieldflow/transport/nats"
	_ "github.com/drblury/fieldflow/transport/rabbitmq"
)

// Transport combines a publisher and subscriber pair produced by a factory.
type Transport struct {
	Publisher  message.Publisher
	Subscriber message.Subscriber
}

// Factory abstracts how the Service initialises message transports.
type Factory interface {
	Build(ctx context.Context, conf *config.Config, logger watermill.LoggerAdapter) (Transport, error)
}

// DefaultFactory returns the built-in factory backed by the transport
// registry.
func DefaultFactory() Factory {
	return defaultFactory{}
}

type defaultFactory struct{}

func (defaultFactory) Build(ctx context.Context, conf *config.Config, logger watermill.LoggerAdapter) (Transport, error) {
	if conf == nil {
		return Transport{}, fmt.Errorf("config is required")
	}

	t, err := ffransport.Build(ctx, conf, logger)
	if err != nil {
		return Transport{}, err
	}

	return Transport{
		Publisher:  t.Publisher,
		Subscriber: t.Subscriber,
	}, nil
}
