package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/caesium-cloud/lgflow/api/gql"
	"github.com/caesium-cloud/lgflow/api/rest/bind"
	"github.com/caesium-cloud/lgflow/internal/event"
	"github.com/caesium-cloud/lgflow/pkg/env"
	"github.com/caesium-cloud/lgflow/pkg/log"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// the middleware registers its collectors once per process.
var metricsMiddleware = sync.OnceValue(func() echo.MiddlewareFunc {
	return echoprometheus.NewMiddleware("lgflow")
})

// New builds lgflow's HTTP server without starting it.
func New(bus event.Bus) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())

	// health
	e.GET("/health", Health)

	// metrics
	e.Use(metricsMiddleware())
	e.GET("/metrics", echoprometheus.NewHandler())

	// REST
	bind.All(e.Group("/v1"), bus)

	// GraphQL
	e.GET("/gql", gql.Handler())
	e.POST("/gql", gql.Handler())

	return e
}

// Start launches lgflow's API and blocks until ctx is done.
func Start(ctx context.Context, bus event.Bus) error {
	e := New(bus)

	errc := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%v", env.Variables().Port)
		log.Info("api listening", "addr", addr)
		errc <- e.Start(addr)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	timeout := env.Variables().ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
