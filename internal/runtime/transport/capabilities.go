package transport

import (
	ffransport "github.com/drblury/fieldflow/transport"
)

// Capabilities is an alias for the modular transport Capabilities.
type Capabilities = ffransport.Capabilities

// CapabilitiesProvider is an alias for the modular transport
// CapabilitiesProvider.
type CapabilitiesProvider = ffransport.CapabilitiesProvider

// GetCapabilities returns the capabilities for a transport by name.
func GetCapabilities(name string) Capabilities {
	return ffransport.GetCapabilities(name)
}
