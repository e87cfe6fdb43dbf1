/*
Package runtime provides the core processing infrastructure for fieldflow.

# Architecture Overview

The runtime package implements a message-driven architecture built on top of
Watermill, paired with an HTTP dispatch layer. It provides typed record and
discriminated-union handlers, along with a middleware chain for cross-cutting
concerns.

# Package Structure

## Core Service (service.go)

The Service struct is the central orchestrator that wires together:
  - Message router (Watermill)
  - Publisher and subscriber connections
  - Middleware chain
  - API router for HTTP dispatch endpoints
  - Auxiliary HTTP servers for metrics

## Handler Registration (registration.go)

Typed wrappers for message handlers:
  - RegisterMessageHandler: raw Watermill handlers
  - RegisterRecordHandler: JSON-decoded typed records
  - RegisterUnionHandler: discriminated-union payloads routed by variant tag

## Middleware (middleware.go)

The middleware system provides composable message processing stages:
  - CorrelationID: Ensures message traceability
  - LogMessages: Debug logging of message payloads
  - Outbox: Transactional outbox pattern support
  - Tracer: OpenTelemetry distributed tracing
  - Metrics: Prometheus metrics collection
  - Retry: Exponential backoff retry logic
  - PoisonQueue: Dead letter queue for failed messages

## Subpackages

  - registry: one-time struct introspection for parameter and variant layouts
  - dispatch: HTTP handler construction from typed parameter structs
  - binding: stock parameter field types (JSON, Query, Header, RawBody, ...)
  - union: discriminated-union envelope decoding
  - handlers: Watermill adapters for typed record and union consumers
*/
package runtime
