// cmd/notify-server/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"taskflow-backend/internal/common/config"
	"taskflow-backend/internal/common/logger"
	"taskflow-backend/internal/common/metrics"
	"taskflow-backend/internal/common/observability"
	"taskflow-backend/internal/realtime"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("config load failed: " + err.Error())
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting notify server...")

	obs := observability.New("notify-server")
	defer obs.Shutdown()

	registry := realtime.NewRegistry(log)
	gateway := realtime.NewGateway(registry, log,
		cfg.Notify.ReadBufferSize,
		time.Duration(cfg.Notify.WriteTimeout)*time.Millisecond)
	deliverer := realtime.NewDeliverer(registry, log, obs)

	if cfg.App.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(metrics.RequestDuration("notify-server"))
	router.GET("/ws", gateway.Handler())
	router.POST("/notify", deliverer.Handler())
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "healthy",
			"connections": registry.Size(),
			"time":        time.Now().Format(time.RFC3339),
		})
	})

	srv := &http.Server{
		Addr:    cfg.Servers.NotifyAPI.Addr(),
		Handler: router,
	}
	go func() {
		zapLog.Info("Notify server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("notify server failed", zap.Error(err))
		}
	}()

	// --- Metrics Server ---
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		zapLog.Info("Metrics server listening", zap.String("addr", cfg.Servers.Metrics.Addr()))
		if err := http.ListenAndServe(cfg.Servers.Metrics.Addr(), mux); err != nil {
			zapLog.Error("metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, closing connections...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("shutdown error", zap.Error(err))
	}
	zapLog.Info("Notify server stopped gracefully")
}
