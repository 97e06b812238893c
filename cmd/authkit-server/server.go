package main

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"

	"github.com/MrEthical07/authkit"
	"github.com/MrEthical07/authkit/config"
	"github.com/MrEthical07/authkit/metrics/export/prometheus"
	"github.com/MrEthical07/authkit/middleware"
)

type httpServerParams struct {
	fx.In
	fx.Lifecycle

	Settings *config.Settings
	Logger   *slog.Logger
	Engine   *authkit.Engine
	Handler  *authHandler
}

type httpServer struct {
	port            int
	shutdownTimeout time.Duration
	logger          *slog.Logger
	echo            *echo.Echo
}

func newHTTPServer(params httpServerParams) *httpServer {
	server := &httpServer{
		port:            params.Settings.HTTP.Port,
		shutdownTimeout: params.Settings.HTTP.ShutdownTimeout,
		logger:          params.Logger,
		echo:            newEcho(params.Engine, params.Handler, params.Logger),
	}

	params.Append(fx.Hook{
		OnStop: server.stop,
	})
	return server
}

// newEcho builds the router. /api/auth is public; everything else under /api
// requires a bearer token.
func newEcho(engine *authkit.Engine, handler *authHandler, logger *slog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = newRequestValidator()
	e.HTTPErrorHandler = newErrorHandler(logger)
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.BodyLimit("64K"))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status": "ok",
			"date":   time.Now().UTC().Format(time.RFC3339),
		})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(newRegistry(engine), promhttp.HandlerOpts{})))

	api := e.Group("/api", middleware.EchoGuard(engine))
	api.POST("/auth/register", handler.Register)
	api.POST("/auth/login", handler.Login)
	api.GET("/me", handler.Me)

	return e
}

// newRegistry exposes the engine counters next to the Go runtime and process
// collectors.
func newRegistry(engine *authkit.Engine) *promclient.Registry {
	reg := promclient.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		prometheus.NewCollector(engine),
	)
	return reg
}

func (s *httpServer) Serve() error {
	hostPort := net.JoinHostPort("0.0.0.0", strconv.Itoa(s.port))
	s.logger.Info("Starting HTTP server", slog.String("hostPort", hostPort))
	if err := s.echo.Start(hostPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "failed to serve http")
	}
	return nil
}

func (s *httpServer) stop(ctx context.Context) error {
	shutdownCtx := ctx
	if s.shutdownTimeout > 0 {
		var cancel context.CancelFunc
		shutdownCtx, cancel = context.WithTimeout(ctx, s.shutdownTimeout)
		defer cancel()
	}

	s.logger.Info("Shutting down HTTP server")
	return errors.WithStack(s.echo.Shutdown(shutdownCtx))
}
