// Package transports imports every built-in transport for side-effect
// registration with the default registry.
package transports

import (
	_ "github.com/drblury/fieldflow/transport/channel"
	_ "github.com/drblury/fieldflow/transport/http"
	_ "github.com/drblury/fieldflow/transport/jetstream"
	_ "github.com/drblury/fieldflow/transport/kafka"
	_ "github.com/drblury/fieldflow/transport/nats"
	_ "github.com/drblury/fieldflow/transport/rabbitmq"
)
