package server

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/orgkit/presence/pkg/application"
	"github.com/orgkit/presence/pkg/configuration"
	"github.com/orgkit/presence/pkg/httpapi"
	"github.com/orgkit/presence/pkg/metrics"
	"github.com/orgkit/presence/pkg/middleware"
	"github.com/orgkit/presence/pkg/server"
)

type DefaultOptions struct {
	Logger        *logrus.Logger
	Configuration *configuration.Configuration
	Application   application.Application
	Pool          *pgxpool.Pool
}

func Default(options *DefaultOptions) (*server.HTTPServer, error) {
	app := options.Application

	middlewares := []mux.MiddlewareFunc{
		middleware.WithLogger(options.Logger),
		metrics.RequestMetrics(),
		middleware.ProvidePool(options.Pool),
	}
	app.RegisterMiddleware(middlewares...)

	if options.Configuration.Prometheus.Enabled {
		app.RegisterControllers(
			metrics.NewPrometheusController(options.Configuration.Prometheus.Path),
		)
	}

	notFound := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = httpapi.WriteError(w, http.StatusNotFound, "NOT_FOUND", "resource not found", nil)
	})
	methodNotAllowed := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = httpapi.WriteError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed", nil)
	})
	return server.NewHTTPServer(app, notFound, methodNotAllowed), nil
}
