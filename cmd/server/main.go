package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/shedserver/shedserver/internal/v1/bus"
	"github.com/shedserver/shedserver/internal/v1/config"
	"github.com/shedserver/shedserver/internal/v1/game"
	"github.com/shedserver/shedserver/internal/v1/health"
	"github.com/shedserver/shedserver/internal/v1/lobby"
	"github.com/shedserver/shedserver/internal/v1/logging"
	"github.com/shedserver/shedserver/internal/v1/middleware"
	"github.com/shedserver/shedserver/internal/v1/protocol"
	"github.com/shedserver/shedserver/internal/v1/ratelimit"
	"github.com/shedserver/shedserver/internal/v1/tracing"
)

func main() {
	envPaths := []string{".env", "../../.env"}
	for _, path := range envPaths {
		if err := godotenv.Load(path); err == nil {
			break
		}
	}

	cfg, err := config.ValidateEnv()
	if err != nil {
		panic(err)
	}

	if err := logging.Initialize(cfg.GoEnv != "production"); err != nil {
		panic(err)
	}
	ctx := context.Background()
	logging.Info(ctx, "starting shed-game server")

	if collectorAddr := os.Getenv("OTEL_COLLECTOR_ADDR"); collectorAddr != "" {
		tp, err := tracing.InitTracer(ctx, "shed-game", collectorAddr)
		if err != nil {
			logging.Warn(ctx, "failed to initialize tracer, continuing without tracing")
		} else {
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = tp.Shutdown(shutdownCtx)
			}()
		}
	}

	var busService *bus.Service
	var redisClient *redis.Client
	if cfg.RedisEnabled {
		busService, err = bus.NewService(cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			logging.Warn(ctx, "failed to connect to redis, continuing in single-instance mode")
			busService = nil
		} else {
			redisClient = busService.Client()
			logging.Info(ctx, "connected to redis")
		}
	}

	limiter, err := ratelimit.NewRateLimiter(cfg, redisClient)
	if err != nil {
		panic(err)
	}

	busFactory := func(roomID game.RoomIdType) game.BusService {
		if busService == nil {
			return nil
		}
		return &game.BusAdapter{Service: busService}
	}
	l := lobby.New(busFactory)

	var allowedOrigins []string
	if cfg.AllowedOrigins != "" {
		for _, origin := range strings.Split(cfg.AllowedOrigins, ",") {
			allowedOrigins = append(allowedOrigins, strings.TrimSpace(origin))
		}
	} else {
		allowedOrigins = []string{"http://localhost:3000"}
	}

	adapter := protocol.New(l, allowedOrigins, limiter)
	healthHandler := health.NewHandler(busService)

	if cfg.GoEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("shed-game"))
	router.Use(middleware.CorrelationID())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = allowedOrigins
	router.Use(cors.New(corsConfig))

	router.GET("/ws/lobby", adapter.ServeWs)
	router.GET("/health/live", healthHandler.Liveness)
	router.GET("/health/ready", healthHandler.Readiness)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logging.Info(ctx, "server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Error(ctx, "server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logging.Info(ctx, "shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Error(shutdownCtx, "server forced to shutdown")
	}
	l.Shutdown(shutdownCtx)
	if busService != nil {
		_ = busService.Close()
	}

	logging.Info(ctx, "server exited")
}
