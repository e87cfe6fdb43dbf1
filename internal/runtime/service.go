package runtime

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/plugin"
	"github.com/gorilla/mux"

	configpkg "github.com/drblury/fieldflow/internal/runtime/config"
	"github.com/drblury/fieldflow/internal/runtime/jsoncodec"
	loggingpkg "github.com/drblury/fieldflow/internal/runtime/logging"
	transportpkg "github.com/drblury/fieldflow/internal/runtime/transport"
)

var routerRun = func(router *message.Router, ctx context.Context) error {
	return router.Run(ctx)
}

// OutboxStore persists processed messages so they can be forwarded reliably.
type OutboxStore interface {
	StoreOutgoingMessage(ctx context.Context, recordType, uuid, payload string) error
}

// ServiceDependencies holds the optional collaborators that the Service can use.
// Leave fields nil to skip the related middleware.
type ServiceDependencies struct {
	Outbox                    OutboxStore
	Middlewares               []MiddlewareRegistration // Appended after the default middleware chain.
	DisableDefaultMiddlewares bool                     // Skips registering the default middleware chain when true.
	TransportFactory          transportpkg.Factory
	ErrorClassifier           ErrorClassifier
}

// Service wires a Watermill router, publisher, subscriber, middleware chain,
// and an HTTP API router for dispatch endpoints.
type Service struct {
	Conf   *configpkg.Config
	Logger loggingpkg.Logger

	publisher  message.Publisher
	subscriber message.Subscriber
	router     *message.Router

	outbox OutboxStore

	handlers   []*HandlerInfo
	handlersMu sync.RWMutex

	apiRouter   *mux.Router
	apiRouterMu sync.Mutex

	httpServers   map[int]*http.ServeMux
	httpServersMu sync.Mutex

	errorClassifier ErrorClassifier
}

// NewService constructs a Service for the supplied configuration. Register
// handlers and endpoints on the returned Service before calling Start.
func NewService(conf *configpkg.Config, log loggingpkg.Logger, ctx context.Context, deps ServiceDependencies) *Service {
	if err := configpkg.ValidateConfig(conf); err != nil {
		panic(err)
	}
	if log == nil {
		log = loggingpkg.Nop()
	}

	wmLogger := loggingpkg.NewWatermillAdapter(log)
	log.Info("Creating fieldflow service",
		loggingpkg.LogFields{
			"pubsub_system": conf.PubSubSystem,
			"config":        conf,
		})

	s := &Service{
		Conf:   conf,
		Logger: log,
		outbox: deps.Outbox,
	}

	if deps.ErrorClassifier != nil {
		s.errorClassifier = deps.ErrorClassifier
	} else {
		s.errorClassifier = defaultErrorClassifier
	}

	factory := deps.TransportFactory
	if factory == nil {
		factory = transportpkg.DefaultFactory()
	}
	transport, err := factory.Build(ctx, conf, wmLogger)
	if err != nil {
		panic(err)
	}

	s.publisher = transport.Publisher
	s.subscriber = transport.Subscriber

	router, err := message.NewRouter(message.RouterConfig{}, wmLogger)
	if err != nil {
		panic(err)
	}

	s.router = router
	s.router.AddPlugin(plugin.SignalsHandler)

	s.registerConfiguredMiddlewares(deps)

	return s
}

// Start runs the HTTP servers and the underlying Watermill router until the
// provided context is cancelled.
func (s *Service) Start(ctx context.Context) error {
	s.startAPIServer()
	s.startHTTPServers()
	return routerRun(s.router, ctx)
}

func (s *Service) registerConfiguredMiddlewares(deps ServiceDependencies) {
	var defaults []MiddlewareRegistration
	if !deps.DisableDefaultMiddlewares {
		defaults = DefaultMiddlewares()
	}
	registrations := make([]MiddlewareRegistration, 0, len(defaults)+len(deps.Middlewares))
	registrations = append(registrations, defaults...)
	registrations = append(registrations, deps.Middlewares...)

	for _, reg := range registrations {
		if err := s.RegisterMiddleware(reg); err != nil {
			name := reg.Name
			if name == "" {
				name = "anonymous_middleware"
			}
			panic(fmt.Sprintf("failed to register middleware %s: %v", name, err))
		}
	}
}

func (s *Service) getErrorClassifier() ErrorClassifier {
	if s.errorClassifier == nil {
		return defaultErrorClassifier
	}
	return s.errorClassifier
}

// RegisterEndpoint binds an HTTP handler, typically one built with
// dispatch.NewHandler, to the API router under the given method and path.
func (s *Service) RegisterEndpoint(method, path string, handler http.Handler) {
	s.apiRouterMu.Lock()
	defer s.apiRouterMu.Unlock()

	if s.apiRouter == nil {
		s.apiRouter = mux.NewRouter()
	}
	s.apiRouter.Handle(path, handler).Methods(method)
}

func (s *Service) startAPIServer() {
	s.apiRouterMu.Lock()
	defer s.apiRouterMu.Unlock()

	if s.apiRouter == nil {
		s.apiRouter = mux.NewRouter()
	}
	s.apiRouter.HandleFunc("/api/handlers", s.handleGetHandlers).Methods(http.MethodGet)

	addr := s.Conf.APIServerAddress
	if addr == "" {
		addr = configpkg.DefaultAPIServerAddress
	}

	s.Logger.Info("Starting API server", loggingpkg.LogFields{"address": addr})
	go func(addr string, handler http.Handler) {
		if err := http.ListenAndServe(addr, handler); err != nil {
			s.Logger.Error("Failed to start API server", err, loggingpkg.LogFields{"address": addr})
		}
	}(addr, s.apiRouter)
}

// handleGetHandlers reports the registered message handlers and their stats.
func (s *Service) handleGetHandlers(w http.ResponseWriter, r *http.Request) {
	s.handlersMu.RLock()
	defer s.handlersMu.RUnlock()

	w.Header().Set("Content-Type", "application/json")

	payload, err := jsoncodec.Marshal(s.handlers)
	if err != nil {
		http.Error(w, "failed to serialize handler stats", http.StatusInternalServerError)
		return
	}
	_, _ = w.Write(payload)
}

// RegisterHTTPHandler attaches a handler to an auxiliary HTTP server on the
// given port. Servers are started lazily by Start.
func (s *Service) RegisterHTTPHandler(port int, pattern string, handler http.Handler) {
	s.httpServersMu.Lock()
	defer s.httpServersMu.Unlock()

	if s.httpServers == nil {
		s.httpServers = make(map[int]*http.ServeMux)
	}

	mux, ok := s.httpServers[port]
	if !ok {
		mux = http.NewServeMux()
		s.httpServers[port] = mux
	}

	mux.Handle(pattern, handler)
}

func (s *Service) startHTTPServers() {
	s.httpServersMu.Lock()
	defer s.httpServersMu.Unlock()

	for port, mux := range s.httpServers {
		addr := fmt.Sprintf(":%d", port)
		s.Logger.Info("Starting HTTP server", loggingpkg.LogFields{"address": addr})
		go func(addr string, handler http.Handler) {
			if err := http.ListenAndServe(addr, handler); err != nil {
				s.Logger.Error("Failed to start HTTP server", err, loggingpkg.LogFields{"address": addr})
			}
		}(addr, mux)
	}
}
