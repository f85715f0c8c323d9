package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/YaoxuanLiu37/transitpapers/internal/app"
	"github.com/YaoxuanLiu37/transitpapers/internal/appconf"
	"github.com/YaoxuanLiu37/transitpapers/internal/cache"
	"github.com/YaoxuanLiu37/transitpapers/internal/clock"
	"github.com/YaoxuanLiu37/transitpapers/internal/logging"
	"github.com/YaoxuanLiu37/transitpapers/internal/metrics"
	"github.com/YaoxuanLiu37/transitpapers/internal/papers"
	"github.com/YaoxuanLiu37/transitpapers/internal/restapi"
	"github.com/YaoxuanLiu37/transitpapers/internal/webui"
)

// BuildApplication wires the store, logger, clock and metrics together.
func BuildApplication(cfg appconf.Config) (*app.Application, error) {
	logger := logging.NewLogger(cfg.Verbose)

	m := metrics.NewWithLogger(logger)

	store, err := papers.Open(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("unable to open paper store: %w", err)
	}
	store.SetMetrics(m)
	m.StartDBStatsCollector(store.DB, 15*time.Second)

	return &app.Application{
		Config:     cfg,
		Logger:     logger,
		PaperStore: store,
		Clock:      clock.RealClock{},
		Metrics:    m,
	}, nil
}

// CreateServer assembles the route table and middleware chain and returns
// the configured HTTP server along with the rate limiter for shutdown.
func CreateServer(application *app.Application) (*http.Server, *restapi.RateLimitMiddleware, *cache.Cache[[]papers.PaperItem]) {
	responseCache := cache.New[[]papers.PaperItem](application.Config.CacheTTL, application.Clock)

	api := restapi.NewRestAPI(application, responseCache)
	ui := webui.NewWebUI(application)

	mux := http.NewServeMux()
	api.SetRoutes(mux)
	ui.SetRoutes(mux)
	if application.Metrics != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(
			application.Metrics.Registry, promhttp.HandlerOpts{}))
	}

	rateLimiter := restapi.NewRateLimitMiddleware(
		application.Config.RateLimit, time.Second, application.Clock)

	var handler http.Handler = mux
	handler = restapi.CacheControlMiddleware(int(application.Config.CacheTTL.Seconds()), handler)
	handler = restapi.GzipMiddleware(handler)
	handler = restapi.MetricsHandler(application.Metrics)(handler)
	handler = restapi.NewRequestLoggingMiddleware(application.Logger)(handler)
	handler = rateLimiter.Handler()(handler)
	handler = restapi.RequestIDMiddleware(handler)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", application.Config.Port),
		Handler:      handler,
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		ErrorLog:     slog.NewLogLogger(application.Logger.Handler(), slog.LevelError),
	}

	return srv, rateLimiter, responseCache
}
