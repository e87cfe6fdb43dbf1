package fieldflow

import (
	"context"
	"net/http"

	runtimepkg "github.com/drblury/fieldflow/internal/runtime"
	bindingpkg "github.com/drblury/fieldflow/internal/runtime/binding"
	configpkg "github.com/drblury/fieldflow/internal/runtime/config"
	dispatchpkg "github.com/drblury/fieldflow/internal/runtime/dispatch"
	errspkg "github.com/drblury/fieldflow/internal/runtime/errors"
	handlerpkg "github.com/drblury/fieldflow/internal/runtime/handlers"
	idspkg "github.com/drblury/fieldflow/internal/runtime/ids"
	jsoncodec "github.com/drblury/fieldflow/internal/runtime/jsoncodec"
	loggingpkg "github.com/drblury/fieldflow/internal/runtime/logging"
	metadatapkg "github.com/drblury/fieldflow/internal/runtime/metadata"
	registrypkg "github.com/drblury/fieldflow/internal/runtime/registry"
	transportpkg "github.com/drblury/fieldflow/internal/runtime/transport"
	unionpkg "github.com/drblury/fieldflow/internal/runtime/union"
	newtransport "github.com/drblury/fieldflow/transport"
)

type (
	Config              = configpkg.Config
	Service             = runtimepkg.Service
	ServiceDependencies = runtimepkg.ServiceDependencies
	OutboxStore         = runtimepkg.OutboxStore
	Transport           = transportpkg.Transport
	TransportFactory    = transportpkg.Factory

	// HTTP dispatch.
	HandlerFunc[P any] = dispatchpkg.HandlerFunc[P]
	HandlerOption      = dispatchpkg.Option

	// Parameter field capabilities. Any struct field type implementing
	// Extractor participates in dispatch; the remaining interfaces are
	// optional refinements.
	Request       = bindingpkg.Request
	Extractor     = bindingpkg.Extractor
	Finalizer     = bindingpkg.Finalizer
	Renderer      = bindingpkg.Renderer
	StatusCarrier = bindingpkg.StatusCarrier

	// Stock parameter field types.
	JSON[T any] = bindingpkg.JSON[T]
	Query       = bindingpkg.Query
	Header      = bindingpkg.Header
	PathParam   = bindingpkg.PathParam
	RawBody     = bindingpkg.RawBody
	RequestLog  = bindingpkg.RequestLog

	// Message handler registration.
	MessageHandlerRegistration             = runtimepkg.MessageHandlerRegistration
	RecordHandlerRegistration[T, O any]    = runtimepkg.RecordHandlerRegistration[T, O]
	UnionHandlerRegistration[T, O any]     = runtimepkg.UnionHandlerRegistration[T, O]
	RecordMessageContext[T any]            = handlerpkg.RecordMessageContext[T]
	RecordMessageHandler[T any, O any]     = handlerpkg.RecordMessageHandler[T, O]
	UnionMessageContext[T any]             = handlerpkg.UnionMessageContext[T]
	UnionMessageHandler[T any, O any]      = handlerpkg.UnionMessageHandler[T, O]
	MessageOutput[O any]                   = handlerpkg.MessageOutput[O]
	MessageContextBase                     = handlerpkg.MessageContextBase

	MiddlewareBuilder      = runtimepkg.MiddlewareBuilder
	MiddlewareRegistration = runtimepkg.MiddlewareRegistration
	RetryMiddlewareConfig  = runtimepkg.RetryMiddlewareConfig

	Producer = runtimepkg.Producer

	Metadata = metadatapkg.Metadata

	LogFields = loggingpkg.LogFields
	Logger    = loggingpkg.Logger

	// Error taxonomy.
	SchemaError             = errspkg.SchemaError
	ExtractError            = errspkg.ExtractError
	DataError               = errspkg.DataError
	ConfigValidationError   = errspkg.ConfigValidationError
	UnprocessableEventError = runtimepkg.UnprocessableEventError

	HandlerInfo  = runtimepkg.HandlerInfo
	HandlerStats = runtimepkg.HandlerStats

	// Job lifecycle hooks.
	JobContext = runtimepkg.JobContext
	JobHooks   = runtimepkg.JobHooks

	// Error classification.
	ErrorClassifier = runtimepkg.ErrorClassifier
	ErrorCategory   = runtimepkg.ErrorCategory

	// Modular transport types.
	TransportBuilder      = newtransport.Builder
	TransportConfig       = newtransport.Config
	TransportRegistry     = newtransport.Registry
	TransportCapabilities = newtransport.Capabilities
)

var (
	NewService     = runtimepkg.NewService
	ValidateConfig = configpkg.ValidateConfig

	RegisterMessageHandler = runtimepkg.RegisterMessageHandler

	DefaultMiddlewares      = runtimepkg.DefaultMiddlewares
	CorrelationIDMiddleware = runtimepkg.CorrelationIDMiddleware
	LogMessagesMiddleware   = runtimepkg.LogMessagesMiddleware
	OutboxMiddleware        = runtimepkg.OutboxMiddleware
	TracerMiddleware        = runtimepkg.TracerMiddleware
	MetricsMiddleware       = runtimepkg.MetricsMiddleware
	RetryMiddleware         = runtimepkg.RetryMiddleware
	PoisonQueueMiddleware   = runtimepkg.PoisonQueueMiddleware
	RecovererMiddleware     = runtimepkg.RecovererMiddleware

	// Job lifecycle hooks.
	JobHooksMiddleware = runtimepkg.JobHooksMiddleware
	LoggingHooks       = runtimepkg.LoggingHooks
	MetricsHooks       = runtimepkg.MetricsHooks
	AlertingHooks      = runtimepkg.AlertingHooks

	// Dispatch options.
	WithName   = dispatchpkg.WithName
	WithLogger = dispatchpkg.WithLogger

	// Transport capabilities.
	GetCapabilities = transportpkg.GetCapabilities

	// Modular transport registry. Import individual transports via:
	// _ "github.com/drblury/fieldflow/transport/kafka"
	DefaultTransportRegistry = newtransport.DefaultRegistry
	RegisterTransport        = newtransport.Register
	BuildTransport           = newtransport.Build

	Marshal       = jsoncodec.Marshal
	MarshalIndent = jsoncodec.MarshalIndent
	Unmarshal     = jsoncodec.Unmarshal
	Encode        = jsoncodec.Encode
	JSONDecode    = jsoncodec.Decode

	ErrServiceRequired   = errspkg.ErrServiceRequired
	ErrHandlerRequired   = errspkg.ErrHandlerRequired
	ErrQueueRequired     = errspkg.ErrQueueRequired
	ErrNameRequired      = errspkg.ErrNameRequired
	ErrLoggerRequired    = errspkg.ErrLoggerRequired
	ErrConfigRequired    = errspkg.ErrConfigRequired
	ErrRecordRequired    = errspkg.ErrRecordRequired
	ErrPublisherRequired = errspkg.ErrPublisherRequired
	ErrTopicRequired     = errspkg.ErrTopicRequired
	ErrPayloadRequired   = errspkg.ErrPayloadRequired

	NewSlogLogger      = loggingpkg.NewSlogLogger
	NewWatermillLogger = loggingpkg.NewWatermillLogger
	NopLogger          = loggingpkg.Nop

	NewMetadata = metadatapkg.New

	NewID = idspkg.NewID

	NewUnprocessableEventError = runtimepkg.NewUnprocessableEventError
)

// Metadata keys - use these constants for standard metadata fields.
const (
	MetadataKeyCorrelationID = metadatapkg.KeyCorrelationID
	MetadataKeyRequestID     = metadatapkg.KeyRequestID
	MetadataKeyDiscriminator = metadatapkg.KeyDiscriminator
	MetadataKeyRecordSchema  = handlerpkg.MetadataKeyRecordSchema
)

// Union envelope defaults.
const (
	DefaultEnvelopeKey = registrypkg.DefaultEnvelopeKey
	DefaultPayloadKey  = unionpkg.DefaultPayloadKey
)

// Error category constants for ErrorClassifier.
const (
	ErrorCategoryNone       = runtimepkg.ErrorCategoryNone
	ErrorCategoryValidation = runtimepkg.ErrorCategoryValidation
	ErrorCategoryTransport  = runtimepkg.ErrorCategoryTransport
	ErrorCategoryDownstream = runtimepkg.ErrorCategoryDownstream
	ErrorCategoryOther      = runtimepkg.ErrorCategoryOther
)

// NewHandler introspects P once and returns an http.HandlerFunc that extracts
// every declared parameter field, invokes fn, and renders the result. The
// returned error is a SchemaError when P cannot be dispatched.
func NewHandler[P any](fn HandlerFunc[P], opts ...HandlerOption) (http.HandlerFunc, error) {
	return dispatchpkg.NewHandler(fn, opts...)
}

// MustHandler is NewHandler, panicking on schema errors. Intended for
// registration at program start where a bad parameter struct should abort.
func MustHandler[P any](fn HandlerFunc[P], opts ...HandlerOption) http.HandlerFunc {
	return dispatchpkg.MustHandler(fn, opts...)
}

// DecodeUnion routes a discriminated-union envelope into the matching variant
// slice of target and reports the discriminator that was selected.
func DecodeUnion(data []byte, target any) (string, error) {
	return unionpkg.Decode(data, target)
}

// DecodeUnionField behaves like DecodeUnion with a custom payload key.
func DecodeUnionField(data []byte, target any, payloadKey string) (string, error) {
	return unionpkg.DecodeField(data, target, payloadKey)
}

// DecodeUnionNew allocates the record, decodes into it, and returns it
// together with the selected discriminator.
func DecodeUnionNew[T any](data []byte) (*T, string, error) {
	return unionpkg.DecodeNew[T](data)
}

// RegisterRecordHandler registers a typed record consumer on the service router.
func RegisterRecordHandler[T any, O any](svc *Service, cfg RecordHandlerRegistration[T, O]) error {
	return runtimepkg.RegisterRecordHandler(svc, cfg)
}

// RegisterUnionHandler registers a discriminated-union consumer on the service
// router. Schema problems in T surface here, before any message is consumed.
func RegisterUnionHandler[T any, O any](svc *Service, cfg UnionHandlerRegistration[T, O]) error {
	return runtimepkg.RegisterUnionHandler(svc, cfg)
}

// PublishRecord serializes the record and publishes it on the given topic
// using the supplied context for cancellation.
func PublishRecord(ctx context.Context, svc *Service, topic string, record any, metadata Metadata) error {
	if svc == nil {
		return errspkg.ErrServiceRequired
	}
	return svc.PublishRecord(ctx, topic, record, metadata)
}
