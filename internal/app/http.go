package app

import (
	"context"

	"admission-service/internal/admission"
	"admission-service/internal/admission/handler"
	"admission-service/internal/config"
	"admission-service/internal/liveness"
	"admission-service/internal/metrics"
	"admission-service/internal/middleware"
	"admission-service/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func setupHTTP(_ context.Context, cfg config.Config) (*gin.Engine, func() error, error) {

	infra, err := setupInfra(cfg)
	if err != nil {
		return nil, nil, err
	}

	// ----------------------------
	// Dependencies
	// ----------------------------

	registry := prometheus.NewRegistry()
	m, err := metrics.New(registry)
	if err != nil {
		return nil, nil, err
	}

	kv := store.NewRedisStore(infra.Redis.Client)

	tracker := liveness.New(kv, cfg.LivenessTTL, cfg.StalenessWindow, m)

	engine := admission.NewEngine(
		kv,
		tracker,
		m,
		cfg.DailyLimit,
		cfg.ConcurrentLimit,
	)

	admissionHandler := handler.New(engine, tracker, kv, m, cfg)

	// ----------------------------
	// Router
	// ----------------------------

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())

	// ----------------------------
	// Public Routes
	// ----------------------------

	admissionHandler.RegisterRoutes(router)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(
		registry,
		promhttp.HandlerOpts{},
	)))

	// ----------------------------
	// Cleanup
	// ----------------------------

	return router, func() error {
		return infra.Redis.Close()
	}, nil
}
