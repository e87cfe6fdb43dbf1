// Package handlers converts typed record handlers into Watermill handler
// functions, so the same records served over HTTP can also be consumed from
// a message queue.
package handlers

import (
	loggingpkg "github.com/drblury/fieldflow/internal/runtime/logging"
	metadatapkg "github.com/drblury/fieldflow/internal/runtime/metadata"
)

// MessageContextBase holds the metadata and logger shared by every message
// context handed to a typed handler.
type MessageContextBase struct {
	Metadata metadatapkg.Metadata
	Logger   loggingpkg.Logger
}

// CloneMetadata returns a copy of the current metadata map so handlers can
// safely mutate headers for outgoing events without touching the original.
func (b MessageContextBase) CloneMetadata() metadatapkg.Metadata {
	return b.Metadata.Clone()
}

// Get retrieves a metadata value by key.
func (b MessageContextBase) Get(key string) string {
	return b.Metadata[key]
}

// CorrelationID returns the correlation ID from metadata, if present.
func (b MessageContextBase) CorrelationID() string {
	return b.Metadata[metadatapkg.KeyCorrelationID]
}
