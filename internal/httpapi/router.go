package httpapi

import (
	"time"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/v4/otelecho"

	apimw "github.com/streamops/replay-service/pkg/api/middleware"
	"github.com/streamops/replay-service/pkg/algorithms/ratelimit"
)

// RateLimitConfig configures the rate limiter in front of /messages and
// /replay.
type RateLimitConfig struct {
	Enabled  bool          `env:"RATE_LIMIT_ENABLED" env-default:"false"`
	Requests int64         `env:"RATE_LIMIT_REQUESTS" env-default:"30"`
	Period   time.Duration `env:"RATE_LIMIT_PERIOD" env-default:"1m"`

	// Distributed selects the Redis-backed limiter, shared across every
	// instance of the service. Disable it for a single-instance deployment
	// that has no Redis to talk to; the in-process limiter is then used.
	Distributed bool `env:"RATE_LIMIT_DISTRIBUTED" env-default:"true"`
}

// New builds an Echo instance with the full middleware chain and the
// replay routes wired to h.
func New(h *Handler, limiter ratelimit.Limiter, rlCfg RateLimitConfig) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = newRequestValidator()
	e.HTTPErrorHandler = httpErrorHandler

	e.Use(otelecho.Middleware("replay-service"))
	e.Use(echo.WrapMiddleware(apimw.RequestIDMiddleware()))

	var limited []echo.MiddlewareFunc
	if rlCfg.Enabled && limiter != nil {
		limited = append(limited, echo.WrapMiddleware(apimw.RateLimitMiddleware(limiter, rlCfg.Requests, rlCfg.Period)))
	}

	e.GET("/messages", h.List, limited...)
	e.POST("/replay", h.Replay, limited...)
	e.GET("/health", h.Health)

	return e
}
