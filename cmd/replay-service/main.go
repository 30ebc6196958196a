// Command replay-service runs the stream replay HTTP service: list,
// replay-by-timeframe and replay-by-header against a RabbitMQ stream
// queue, fronted by Echo with tracing, request-id and rate-limit
// middleware.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	redisrl "github.com/streamops/replay-service/pkg/api/ratelimit/adapters/redis"
	"github.com/streamops/replay-service/pkg/algorithms/ratelimit"
	"github.com/streamops/replay-service/pkg/config"
	"github.com/streamops/replay-service/pkg/logger"
	"github.com/streamops/replay-service/pkg/replay"
	"github.com/streamops/replay-service/pkg/replay/pool"

	"github.com/streamops/replay-service/internal/httpapi"
)

// appConfig is the full set of environment variables this service reads,
// composed from each collaborator's own config struct.
type appConfig struct {
	HTTPPort string `env:"HTTP_PORT" env-default:"8080"`

	AMQPHost string `env:"AMQP_HOST" env-default:"localhost"`
	AMQPPort string `env:"AMQP_PORT" env-default:"5672"`
	AMQPUser string `env:"AMQP_USERNAME" env-default:"guest"`
	AMQPPass string `env:"AMQP_PASSWORD" env-default:"guest"`

	PoolAcquireTimeout time.Duration `env:"AMQP_POOL_ACQUIRE_TIMEOUT" env-default:"5s"`

	Pool       pool.Config
	Management replay.ManagementConfig
	Republish  replay.RepublishConfig
	Log        logger.Config
	RateLimit  httpapi.RateLimitConfig

	RateLimitRedisAddr string `env:"RATE_LIMIT_REDIS_ADDR" env-default:"localhost:6379"`
}

func main() {
	var cfg appConfig
	if err := config.Load(&cfg); err != nil {
		fmt.Fprintln(os.Stderr, "config error:", err)
		os.Exit(1)
	}

	logger.Init(cfg.Log)
	log := logger.L()

	cfg.Pool.URL = fmt.Sprintf("amqp://%s:%s@%s:%s/", cfg.AMQPUser, cfg.AMQPPass, cfg.AMQPHost, cfg.AMQPPort)
	cfg.Management.Host = cfg.AMQPHost
	cfg.Management.Username = cfg.AMQPUser
	cfg.Management.Password = cfg.AMQPPass

	connPool := pool.New(cfg.Pool)
	defer func() {
		if err := connPool.Close(); err != nil {
			log.Error("error closing pool", "error", err)
		}
	}()

	prober := replay.NewProber(cfg.Management)
	engine := replay.NewEngine(connPool, prober, cfg.Republish, cfg.PoolAcquireTimeout)
	handler := httpapi.NewHandler(engine, connPool)

	var limiter ratelimit.Limiter
	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.Distributed {
			client := goredis.NewClient(&goredis.Options{Addr: cfg.RateLimitRedisAddr})
			limiter = redisrl.New(client, redisrl.StrategySlidingWindow)
		} else {
			limiter = ratelimit.NewInMemLimiter()
		}
	}

	e := httpapi.New(handler, limiter, cfg.RateLimit)

	go func() {
		addr := ":" + cfg.HTTPPort
		log.Info("starting replay-service", "addr", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Error("server stopped unexpectedly", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
}
