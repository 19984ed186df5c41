package main

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"

	"github.com/shuliakovsky/proxy-sync/pkg/api"
	"github.com/shuliakovsky/proxy-sync/pkg/broadcast"
	"github.com/shuliakovsky/proxy-sync/pkg/docs"
	"github.com/shuliakovsky/proxy-sync/pkg/events"
	"github.com/shuliakovsky/proxy-sync/pkg/health"
	"github.com/shuliakovsky/proxy-sync/pkg/metrics"
	"github.com/shuliakovsky/proxy-sync/pkg/registry"
)

func registerRoutes(
	reg *registry.Service,
	enroller *registry.Enroller,
	engine *broadcast.Engine,
	checker *health.Checker,
	hub *events.Hub,
	logger *zap.Logger,
) http.Handler {
	mux := http.NewServeMux()

	api.Mount(mux,
		api.NewProxies(reg, enroller, hub, logger),
		api.NewSync(engine, checker, hub, logger),
		api.NewEvents(hub, logger),
	)

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	// Swagger
	mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/swagger.json"),
		httpSwagger.InstanceName("swagger"),
	))
	mux.HandleFunc("GET /swagger/swagger.json", docs.JSONHandler)

	// Metrics
	metrics.Init()
	mux.Handle("GET /metrics", metrics.Handler())

	return withCORS(api.WithLogging(logger, mux))
}
