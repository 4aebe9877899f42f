package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/slipstream/mona/internal/api/handlers"
)

// setupRoutes configures API routes.
func (s *Server) setupRoutes() {
	s.echo.GET("/healthcheck", s.healthCheck)
	s.echo.HEAD("/healthcheck", s.healthCheck)

	s.echo.GET("/poster", s.poster)
	s.echo.GET("/fanart", s.fanart)
	s.echo.GET("/torrent-art", s.torrentArt)
	s.echo.GET("/art/:name", s.showArt)

	s.echo.DELETE("/cache", s.clearCache)
	s.echo.DELETE("/cache/:kind", s.forgetCache)

	if s.metrics != nil {
		s.echo.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(s.metrics.GetRegistry(), promhttp.HandlerOpts{})))
	}

	if s.scheduler != nil {
		schedulerHandlers := handlers.NewSchedulerHandler(s.scheduler)
		tasks := s.echo.Group("/tasks")
		tasks.GET("", schedulerHandlers.ListTasks)
		tasks.POST("/:id/run", schedulerHandlers.RunTask)
	}
}

func (s *Server) healthCheck(c echo.Context) error {
	if c.Request().Method == http.MethodHead {
		return c.NoContent(http.StatusOK)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
