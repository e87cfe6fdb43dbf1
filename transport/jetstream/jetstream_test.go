package jetstream

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/drblury/fieldflow/transport"
)

func TestRegistered(t *testing.T) {
	caps := transport.GetCapabilities(TransportName)
	assert.Equal(t, "nats-jetstream", caps.Name)
	assert.True(t, caps.SupportsReliableDelivery())
	assert.True(t, caps.SupportsOrdering)
}

func TestCapabilities(t *testing.T) {
	assert.Equal(t, transport.NATSJetStreamCapabilities, Capabilities())
}

func TestConfigDefaults(t *testing.T) {
	cfg := Config{}.withDefaults()

	assert.Equal(t, "FIELDFLOW", cfg.StreamName)
	assert.Equal(t, DefaultMaxDeliver, cfg.MaxDeliver)
	assert.Equal(t, DefaultAckWait, cfg.AckWait)
	assert.Equal(t, 1, cfg.Replicas)
}

func TestConfigDefaultsKeepExplicitValues(t *testing.T) {
	cfg := Config{
		StreamName: "ORDERS",
		MaxDeliver: 7,
		AckWait:    5 * time.Second,
		Replicas:   3,
	}.withDefaults()

	assert.Equal(t, "ORDERS", cfg.StreamName)
	assert.Equal(t, 7, cfg.MaxDeliver)
	assert.Equal(t, 5*time.Second, cfg.AckWait)
	assert.Equal(t, 3, cfg.Replicas)
}

func TestTopicToSubject(t *testing.T) {
	tr := &Transport{config: Config{StreamName: "FIELDFLOW"}}
	assert.Equal(t, "FIELDFLOW.orders", tr.topicToSubject("orders"))
}
