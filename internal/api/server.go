package api

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	apimw "github.com/slipstream/mona/internal/api/middleware"
	"github.com/slipstream/mona/internal/config"
	"github.com/slipstream/mona/internal/metrics"
	"github.com/slipstream/mona/internal/release"
	"github.com/slipstream/mona/internal/resolver"
	"github.com/slipstream/mona/internal/scheduler"
)

// Resolver resolves queries into artwork.
type Resolver interface {
	ResolvePoster(ctx context.Context, q release.Parsed) (resolver.Artwork, bool, error)
	RandomFanart(ctx context.Context, q release.Parsed) (resolver.Artwork, bool, error)
	ResolveTorrentArt(ctx context.Context, pageURL string) (resolver.Artwork, bool, error)
	ResolveShowArt(ctx context.Context, name string) (resolver.Artwork, bool, error)
	Forget(kind, key string) error
	ClearCache()
}

// QueryParser turns raw queries into their structured form.
type QueryParser interface {
	Parse(name string) release.Parsed
}

// URLPolicy decides which torrent pages may be fetched.
type URLPolicy interface {
	AllowedURL(pageURL string) bool
}

// Dependencies are the services the server routes to. Metrics and
// Scheduler are optional.
type Dependencies struct {
	Resolver  Resolver
	Parser    QueryParser
	Torrents  URLPolicy
	Metrics   *metrics.Manager
	Scheduler *scheduler.Scheduler
}

// Server handles HTTP requests for the artwork redirect API.
type Server struct {
	echo   *echo.Echo
	logger zerolog.Logger
	cfg    *config.Config

	resolver  Resolver
	parser    QueryParser
	torrents  URLPolicy
	metrics   *metrics.Manager
	scheduler *scheduler.Scheduler
}

// NewServer creates a new API server instance.
func NewServer(cfg *config.Config, deps Dependencies, logger zerolog.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:      e,
		logger:    logger.With().Str("component", "api").Logger(),
		cfg:       cfg,
		resolver:  deps.Resolver,
		parser:    deps.Parser,
		torrents:  deps.Torrents,
		metrics:   deps.Metrics,
		scheduler: deps.Scheduler,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// setupMiddleware configures Echo middleware.
func (s *Server) setupMiddleware() {
	s.echo.Use(middleware.Recover())

	s.echo.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))

	s.echo.Use(apimw.SecurityHeaders())

	s.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogMethod:    true,
		LogError:     true,
		LogRequestID: true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			if v.Error != nil {
				s.logger.Error().
					Str("method", v.Method).
					Str("uri", v.URI).
					Str("requestId", v.RequestID).
					Int("status", v.Status).
					Dur("latency", v.Latency).
					Err(v.Error).
					Msg("request error")
			} else {
				s.logger.Info().
					Str("method", v.Method).
					Str("uri", v.URI).
					Str("requestId", v.RequestID).
					Int("status", v.Status).
					Dur("latency", v.Latency).
					Msg("request")
			}
			return nil
		},
	}))

	s.echo.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Level: 5,
	}))
}

// Start begins listening for HTTP requests.
func (s *Server) Start(address string) error {
	s.logger.Info().Str("address", address).Msg("starting HTTP server")
	return s.echo.Start(address)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("shutting down HTTP server")
	return s.echo.Shutdown(ctx)
}

// Echo returns the underlying Echo instance.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

// ServeHTTP lets the server be mounted or tested as a plain handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}
