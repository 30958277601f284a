// Package api is the HTTP delivery of the authentication service.
package api

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strconv"

	"gatekeeper/config"
	"gatekeeper/internal/delivery"
	apimiddleware "gatekeeper/internal/delivery/api/middleware"
	"gatekeeper/internal/delivery/api/router"
	"gatekeeper/internal/delivery/middleware"
	"gatekeeper/internal/domain/lifecycle"
	"gatekeeper/internal/errors"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/fx"
	"golang.org/x/net/http2"
)

type apiServer struct {
	cfg    *config.Config
	logger *slog.Logger
	echo   *echo.Echo
}

type ServerParams struct {
	fx.In

	Lc           fx.Lifecycle
	Cfg          *config.Config
	Logger       *slog.Logger
	RouterParams router.RouterParams
}

func NewServer(params ServerParams) (delivery.Delivery, error) {
	srv := &apiServer{
		cfg:    params.Cfg,
		logger: params.Logger,
		echo:   newEcho(params.Cfg, params.Logger, params.RouterParams),
	}
	params.Lc.Append(fx.Hook{OnStop: srv.stop})

	return srv, nil
}

// newEcho returns the routed echo instance; it does not listen.
func newEcho(cfg *config.Config, logger *slog.Logger, routerParams router.RouterParams) *echo.Echo {
	e := echo.New()
	e.HideBanner, e.HidePort = true, true

	timeouts := cfg.HTTP.Timeouts
	e.Server.ReadTimeout = timeouts.ReadTimeout
	e.Server.ReadHeaderTimeout = timeouts.ReadHeaderTimeout
	e.Server.WriteTimeout = timeouts.WriteTimeout
	e.Server.IdleTimeout = timeouts.IdleTimeout

	// Order matters: the request id must exist before the access log runs,
	// and the access log must see the body limit's 413.
	e.Use(
		echomiddleware.Recover(),
		middleware.NewRequestIDMiddleware(logger).Process,
		middleware.NewLoggerMiddleware(logger, cfg).Handle,
		echomiddleware.CORS(),
		echomiddleware.BodyLimit(cfg.HTTP.MaxRequestBodySize),
	)
	e.HTTPErrorHandler = apimiddleware.NewErrorMiddleware(logger).HandleHTTPError

	router.Register(e, routerParams)

	return e
}

// Serve listens with cleartext HTTP/2 and returns once the server is shut down.
func (s *apiServer) Serve(context.Context) error {
	addr := net.JoinHostPort("0.0.0.0", strconv.Itoa(s.cfg.HTTP.Port))
	s.logger.Info("HTTP server listening", slog.String("addr", addr))

	err := s.echo.StartH2CServer(addr, &http2.Server{IdleTimeout: s.cfg.HTTP.Timeouts.IdleTimeout})
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}

	return errors.WithStack(err)
}

func (s *apiServer) stop(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, lifecycle.DefaultTimeout)
	defer cancel()

	s.logger.Info("HTTP server shutting down")

	return errors.WithStack(s.echo.Shutdown(ctx))
}
