package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/nerrad567/sensorhub-core/internal/infrastructure/config"
	"github.com/nerrad567/sensorhub-core/internal/infrastructure/logging"
	"github.com/nerrad567/sensorhub-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/sensorhub-core/internal/sensor"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// SensorService is the subset of coordinator operations the HTTP handlers
// need. Declaring it here keeps the server testable without a live store
// stack behind it.
type SensorService interface {
	Register(ctx context.Context, spec *sensor.RegistrationSpec) (*sensor.Identity, error)
	Get(ctx context.Context, id int64) (*sensor.Identity, error)
	List(ctx context.Context, offset, limit int) ([]sensor.Identity, error)
	Delete(ctx context.Context, id int64) (*sensor.Identity, error)
	RecordTelemetry(ctx context.Context, id int64, sample *sensor.Telemetry) error
	GetTelemetry(ctx context.Context, id int64) (*sensor.TelemetryView, error)
	FindNear(ctx context.Context, latitude, longitude, radiusMeters float64) ([]sensor.CompositeView, error)
}

// HealthFunc pings one backing component. A nil error means healthy.
type HealthFunc func(ctx context.Context) error

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config      config.APIConfig
	WS          config.WebSocketConfig
	Logger      *logging.Logger
	Sensors     SensorService
	MQTT        *mqtt.Client          // optional: reported in metrics when set
	Health      map[string]HealthFunc // optional: per-component health checks
	ExternalHub *Hub                  // If set, the server uses this hub instead of creating its own
	Version     string
}

// Server is the HTTP API server.
//
// It manages the HTTP listener, routes, middleware, and WebSocket hub.
// The server is created with New() and started with Start().
type Server struct {
	cfg         config.APIConfig
	wsCfg       config.WebSocketConfig
	logger      *logging.Logger
	sensors     SensorService
	mqtt        *mqtt.Client
	health      map[string]HealthFunc
	version     string
	startTime   time.Time
	server      *http.Server
	hub         *Hub
	externalHub bool               // true if hub was injected externally
	cancel      context.CancelFunc // cancels background goroutines on Close()
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Sensors == nil {
		return nil, fmt.Errorf("sensor service is required")
	}

	s := &Server{
		cfg:       deps.Config,
		wsCfg:     deps.WS,
		logger:    deps.Logger,
		sensors:   deps.Sensors,
		mqtt:      deps.MQTT,
		health:    deps.Health,
		version:   deps.Version,
		startTime: time.Now(),
	}

	// Use externally-provided hub if available (needed when the ingest
	// pipeline also requires the hub for WebSocket broadcasting).
	if deps.ExternalHub != nil {
		s.hub = deps.ExternalHub
		s.externalHub = true
	}

	return s, nil
}

// Hub returns the server's WebSocket hub, creating it on first use.
// Callers that wire the hub into the ingest pipeline should fetch it
// before Start().
func (s *Server) Hub() *Hub {
	if s.hub == nil {
		s.hub = NewHub(s.wsCfg, s.logger)
	}
	return s.hub
}

// Start begins listening for HTTP connections.
//
// It sets up the router, starts the WebSocket hub, and launches the HTTP
// listener in a background goroutine. The server can be stopped with Close().
func (s *Server) Start(ctx context.Context) error {
	// Create internal context so Close() can stop background goroutines
	// independently of the parent context.
	var srvCtx context.Context
	srvCtx, s.cancel = context.WithCancel(ctx)

	// Create WebSocket hub (unless one was injected externally, in which
	// case its lifecycle belongs to the caller)
	if s.hub == nil {
		s.hub = NewHub(s.wsCfg, s.logger)
	}
	if !s.externalHub {
		go s.hub.Run(srvCtx)
	}

	// Build router
	router := s.buildRouter()

	// Create HTTP server
	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           router,
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	// Start listening in background
	go func() {
		var err error
		if s.cfg.TLS.Enabled {
			s.logger.Info("API server starting with TLS",
				"address", s.server.Addr,
				"cert", s.cfg.TLS.CertFile,
			)
			err = s.server.ListenAndServeTLS(s.cfg.TLS.CertFile, s.cfg.TLS.KeyFile)
		} else {
			err = s.server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Close gracefully shuts down the API server.
//
// It waits up to 10 seconds for in-flight requests to complete,
// then forcefully closes remaining connections.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	// Cancel background goroutines (hub)
	if s.cancel != nil {
		s.cancel()
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck verifies the API server is running and responsive.
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return fmt.Errorf("api server not started")
	}

	return nil
}
