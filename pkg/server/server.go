// Package server exposes the churn Engine over HTTP.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/PanchangniDhangar/churn-prediction-system-hybrid-cloud/pkg/churn"
)

const (
	defaultGracefulPeriod = 10 * time.Second
	maxBodyBytes          = 1 << 20
)

type Server struct {
	engine         *churn.Engine
	echo           *echo.Echo
	validate       *validator.Validate
	logger         *slog.Logger
	gracefulPeriod time.Duration
}

type Option func(*Server)

func WithLogger(l *slog.Logger) Option { return func(s *Server) { s.logger = l } }

// WithGracefulPeriod bounds how long Run waits for in-flight requests on shutdown.
func WithGracefulPeriod(d time.Duration) Option {
	return func(s *Server) { s.gracefulPeriod = d }
}

func New(engine *churn.Engine, opts ...Option) *Server {
	s := &Server{
		engine:         engine,
		validate:       validator.New(),
		logger:         slog.Default(),
		gracefulPeriod: defaultGracefulPeriod,
	}
	for _, o := range opts {
		o(s)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.handleError
	e.Use(s.logRequests)

	e.POST("/predict", s.predict)
	e.GET("/healthz", s.health)
	e.GET("/profile", s.profile)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	s.echo = e
	return s
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.echo }

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	errc := make(chan error, 1)
	go func() {
		s.logger.Info("server started", "address", addr)
		errc <- s.echo.Start(addr)
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrapf(err, "listen on %s", addr)
	case <-ctx.Done():
	}

	s.logger.Info("server stopping")
	sctx, cancel := context.WithTimeout(context.Background(), s.gracefulPeriod)
	defer cancel()
	var err error
	if serr := s.echo.Shutdown(sctx); serr != nil {
		s.echo.Close() // close forcefully
		err = errors.Wrap(serr, "shutdown")
	}
	<-errc
	return err
}

func (s *Server) logRequests(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		begin := time.Now()
		err := next(c)
		if err != nil {
			c.Error(err)
		}
		req := c.Request()
		s.logger.Debug("request",
			"method", req.Method,
			"path", req.URL.Path,
			"status", c.Response().Status,
			"duration", time.Since(begin),
		)
		return nil
	}
}
