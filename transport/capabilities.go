package transport

// Capabilities describes the delivery guarantees of a transport backend.
// Callers use it to decide how much reliability the application layer has to
// add on top.
type Capabilities struct {
	// Name is the registered name of the transport.
	Name string

	// SupportsOrdering indicates messages within a partition or stream are
	// delivered in publish order.
	SupportsOrdering bool

	// SupportsAck indicates the transport supports explicit acknowledgment.
	SupportsAck bool

	// SupportsNack indicates the transport supports negative acknowledgment
	// with redelivery.
	SupportsNack bool

	// SupportsBatching indicates the transport can batch published messages.
	SupportsBatching bool

	// SupportsPartitioning indicates the transport partitions messages.
	SupportsPartitioning bool

	// MaxMessageSize is the maximum message size in bytes. Zero means
	// unlimited or unknown.
	MaxMessageSize int64
}

// SupportsReliableDelivery reports whether the transport gives at-least-once
// semantics (ack plus nack).
func (c Capabilities) SupportsReliableDelivery() bool {
	return c.SupportsAck && c.SupportsNack
}

// Capability sets for the built-in transports.
var (
	// ChannelCapabilities for the in-memory Go channel transport.
	ChannelCapabilities = Capabilities{
		Name:             "channel",
		SupportsOrdering: true,
		SupportsAck:      true,
		SupportsNack:     true,
	}

	// KafkaCapabilities for the Apache Kafka transport.
	KafkaCapabilities = Capabilities{
		Name:                 "kafka",
		SupportsOrdering:     true,
		SupportsAck:          true,
		SupportsBatching:     true,
		SupportsPartitioning: true,
		MaxMessageSize:       1048576,
	}

	// RabbitMQCapabilities for the RabbitMQ/AMQP transport.
	RabbitMQCapabilities = Capabilities{
		Name:             "rabbitmq",
		SupportsOrdering: true,
		SupportsAck:      true,
		SupportsNack:     true,
	}

	// NATSCapabilities for the NATS Core transport.
	NATSCapabilities = Capabilities{
		Name:           "nats",
		MaxMessageSize: 1048576,
	}

	// NATSJetStreamCapabilities for the NATS JetStream transport.
	NATSJetStreamCapabilities = Capabilities{
		Name:             "nats-jetstream",
		SupportsOrdering: true,
		SupportsAck:      true,
		SupportsNack:     true,
		SupportsBatching: true,
		MaxMessageSize:   1048576,
	}

	// HTTPCapabilities for the HTTP webhook transport.
	HTTPCapabilities = Capabilities{
		Name: "http",
	}
)

// GetCapabilities returns the capabilities registered for a transport name.
// Unknown names get a zero Capabilities carrying only the name.
func GetCapabilities(name string) Capabilities {
	return DefaultRegistry.GetCapabilities(name)
}
